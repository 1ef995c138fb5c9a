package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request statuses
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// Loan statuses. Overdue is derived from due_at; the persisted column
// only catches up at transition points and in the nightly sweep.
const (
	LoanStatusActive   = "active"
	LoanStatusReturned = "returned"
	LoanStatusOverdue  = "overdue"
)

// BookRequest is a reader's pending ask for a book. Approving it does not
// move any copies; FulfilledAt is stamped when the approved request is
// actually converted into a loan.
type BookRequest struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	BookID      uuid.UUID  `json:"book_id" db:"book_id"`
	Status      string     `json:"status" db:"status"`
	Notes       *string    `json:"notes" db:"notes"`
	RequestedAt time.Time  `json:"requested_at" db:"requested_at"`
	ApprovedAt  *time.Time `json:"approved_at" db:"approved_at"`
	RejectedAt  *time.Time `json:"rejected_at" db:"rejected_at"`
	FulfilledAt *time.Time `json:"fulfilled_at" db:"fulfilled_at"`

	// Denormalized for list responses
	BookTitle string `json:"book_title,omitempty" db:"book_title"`
	UserEmail string `json:"user_email,omitempty" db:"user_email"`
}

// IsActive reports whether this request still blocks a new request for
// the same (user, book): pending, or approved but not yet borrowed.
func (r *BookRequest) IsActive() bool {
	switch r.Status {
	case RequestStatusPending:
		return true
	case RequestStatusApproved:
		return r.FulfilledAt == nil
	}
	return false
}

// Loan is one borrowed copy of a book
type Loan struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     uuid.UUID       `json:"user_id" db:"user_id"`
	BookID     uuid.UUID       `json:"book_id" db:"book_id"`
	Status     string          `json:"status" db:"status"`
	BorrowedAt time.Time       `json:"borrowed_at" db:"borrowed_at"`
	DueAt      time.Time       `json:"due_at" db:"due_at"`
	ReturnedAt *time.Time      `json:"returned_at" db:"returned_at"`
	RenewCount int             `json:"renew_count" db:"renew_count"`
	FineAmount decimal.Decimal `json:"fine_amount" db:"fine_amount"`

	// Denormalized for list responses
	BookTitle string `json:"book_title,omitempty" db:"book_title"`
	UserEmail string `json:"user_email,omitempty" db:"user_email"`
}

// IsOpen reports whether the loan still holds a copy
func (l *Loan) IsOpen() bool {
	return l.ReturnedAt == nil
}

// EffectiveStatus derives the loan's real status at the given time.
// The persisted status may lag behind this between sweeps.
func (l *Loan) EffectiveStatus(now time.Time) string {
	if l.ReturnedAt != nil {
		return LoanStatusReturned
	}
	if now.After(l.DueAt) {
		return LoanStatusOverdue
	}
	return LoanStatusActive
}

// DaysOverdue returns whole days past due at the given time, zero when
// the loan is not overdue. Partial days round up.
func (l *Loan) DaysOverdue(now time.Time) int {
	if !now.After(l.DueAt) {
		return 0
	}
	overdue := now.Sub(l.DueAt)
	days := int(overdue / (24 * time.Hour))
	if overdue%(24*time.Hour) > 0 {
		days++
	}
	return days
}
