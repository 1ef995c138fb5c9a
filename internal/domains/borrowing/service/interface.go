package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/borrowing/model"
)

// ServiceInterface coordinates the borrowing lifecycle:
// request -> approve/reject -> borrow -> return, plus renewals.
type ServiceInterface interface {
	// Reader flow
	RequestBook(ctx context.Context, userID, bookID uuid.UUID) (*model.BookRequest, error)
	BorrowApproved(ctx context.Context, userID, requestID uuid.UUID) (*model.Loan, error)
	RenewLoan(ctx context.Context, actorID, loanID uuid.UUID) (*model.Loan, error)
	MyRequests(ctx context.Context, userID uuid.UUID) ([]model.BookRequest, error)
	MyLoans(ctx context.Context, userID uuid.UUID) ([]model.Loan, error)

	// ReturnLoan closes a loan. returnAny lets staff return on behalf of
	// any reader; otherwise the actor must own the loan.
	ReturnLoan(ctx context.Context, actorID, loanID uuid.UUID, returnAny bool) (*model.Loan, error)

	// Librarian flow
	ApproveRequest(ctx context.Context, actorID, requestID uuid.UUID, notes *string) (*model.BookRequest, error)
	RejectRequest(ctx context.Context, actorID, requestID uuid.UUID, notes *string) (*model.BookRequest, error)
	BorrowDirect(ctx context.Context, actorID, userID, bookID uuid.UUID) (*model.Loan, error)
	ListRequests(ctx context.Context, q model.ListRequestsQuery) ([]model.BookRequest, int, error)
	ActiveLoans(ctx context.Context) ([]model.Loan, error)
}
