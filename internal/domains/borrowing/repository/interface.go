package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/borrowing/model"
)

// RepositoryInterface persists requests and loans. The lifecycle
// mutations (Borrow, Return, Renew) are atomic: each runs its own
// transaction covering the loan write and the copy-count change.
type RepositoryInterface interface {
	// Requests
	CreateRequest(ctx context.Context, req *model.BookRequest) error
	GetRequestByID(ctx context.Context, id uuid.UUID) (*model.BookRequest, error)
	ListRequests(ctx context.Context, q model.ListRequestsQuery) ([]model.BookRequest, int, error)
	ListRequestsByUser(ctx context.Context, userID uuid.UUID) ([]model.BookRequest, error)
	HasActiveRequest(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	// DecideRequest moves a pending request to approved or rejected.
	// Returns ErrRequestNotPending when the request was already decided.
	DecideRequest(ctx context.Context, id uuid.UUID, status string, notes *string, decidedAt time.Time) error

	// Loans
	GetLoanByID(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	HasOpenLoan(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	ListLoansByUser(ctx context.Context, userID uuid.UUID) ([]model.Loan, error)
	ListOpenLoans(ctx context.Context) ([]model.Loan, error)

	// Borrow creates an active loan and decrements the book's available
	// copies in one transaction. When requestID is set, the approved
	// request is stamped fulfilled in the same transaction.
	Borrow(ctx context.Context, loan *model.Loan, requestID *uuid.UUID) error
	// Return closes the loan, stamps the fine and gives the copy back.
	Return(ctx context.Context, loanID uuid.UUID, fine decimal.Decimal, returnedAt time.Time) (*model.Loan, error)
	// Renew extends the due date and bumps renew_count.
	Renew(ctx context.Context, loanID uuid.UUID, newDue time.Time) error

	// Worker support
	MarkOverdueLoans(ctx context.Context, now time.Time) (int64, error)
	ListDueSoon(ctx context.Context, from, to time.Time) ([]model.Loan, error)
}
