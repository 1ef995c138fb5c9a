package model

import (
	"time"

	"github.com/google/uuid"
)

// Action kinds recorded in the audit log
const (
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionBorrow         = "borrow"
	ActionReturn         = "return"
	ActionRenew          = "renew"
	ActionRequestBook    = "request_book"
	ActionApproveRequest = "approve_request"
	ActionRejectRequest  = "reject_request"
	ActionAddBook        = "add_book"
	ActionEditBook       = "edit_book"
	ActionDeleteBook     = "delete_book"
	ActionAddUser        = "add_user"
	ActionEditUser       = "edit_user"
	ActionViewReport     = "view_report"
)

// AuditLog is an append-only record of one lifecycle or admin action.
// Rows are never updated or deleted by normal flow.
type AuditLog struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Action      string    `json:"action" db:"action"`
	Description string    `json:"description" db:"description"`
	IPAddress   *string   `json:"ip_address" db:"ip_address"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ActivityCount is one bucket of the borrow/return activity report
type ActivityCount struct {
	Period  time.Time `json:"period"`
	Borrows int       `json:"borrows"`
	Returns int       `json:"returns"`
}

// TopBook is one row of the most-borrowed-books report
type TopBook struct {
	BookID      uuid.UUID `json:"book_id"`
	Title       string    `json:"title"`
	BorrowCount int       `json:"borrow_count"`
}

// OverdueLoanReport is one row of the current overdue list
type OverdueLoanReport struct {
	LoanID      uuid.UUID `json:"loan_id"`
	BookID      uuid.UUID `json:"book_id"`
	BookTitle   string    `json:"book_title"`
	UserID      uuid.UUID `json:"user_id"`
	UserEmail   string    `json:"user_email"`
	DueAt       time.Time `json:"due_at"`
	DaysOverdue int       `json:"days_overdue"`
}
