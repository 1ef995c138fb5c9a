package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/config"
	auditmodel "library-backend/internal/domains/audit/model"
	audit "library-backend/internal/domains/audit/service"
	"library-backend/internal/domains/borrowing/model"
	"library-backend/internal/domains/borrowing/repository"
	catalogrepo "library-backend/internal/domains/catalog/repository"
)

type lifecycleService struct {
	repo    repository.RepositoryInterface
	catalog catalogrepo.RepositoryInterface
	audit   audit.ServiceInterface
	loanCfg config.LoanConfig
	now     func() time.Time
}

// NewLifecycleService wires the borrowing coordinator. The clock is
// injectable for tests.
func NewLifecycleService(
	repo repository.RepositoryInterface,
	catalog catalogrepo.RepositoryInterface,
	audit audit.ServiceInterface,
	loanCfg config.LoanConfig,
) ServiceInterface {
	return &lifecycleService{
		repo:    repo,
		catalog: catalog,
		audit:   audit,
		loanCfg: loanCfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ========================= READER FLOW =========================

func (s *lifecycleService) RequestBook(ctx context.Context, userID, bookID uuid.UUID) (*model.BookRequest, error) {
	book, err := s.catalog.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if active, err := s.repo.HasActiveRequest(ctx, userID, bookID); err != nil {
		return nil, err
	} else if active {
		return nil, model.ErrDuplicateRequest
	}

	if open, err := s.repo.HasOpenLoan(ctx, userID, bookID); err != nil {
		return nil, err
	} else if open {
		return nil, model.ErrDuplicateLoan
	}

	req := &model.BookRequest{
		ID:          uuid.New(),
		UserID:      userID,
		BookID:      bookID,
		Status:      model.RequestStatusPending,
		RequestedAt: s.now(),
		BookTitle:   book.Title,
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, auditmodel.ActionRequestBook,
		fmt.Sprintf("requested book %q (%s)", book.Title, book.ID))

	return req, nil
}

func (s *lifecycleService) BorrowApproved(ctx context.Context, userID, requestID uuid.UUID) (*model.Loan, error) {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, model.ErrRequestNotFound
	}
	if req.Status != model.RequestStatusApproved || req.FulfilledAt != nil {
		return nil, model.ErrNoApprovedRequest
	}

	if open, err := s.repo.HasOpenLoan(ctx, userID, req.BookID); err != nil {
		return nil, err
	} else if open {
		return nil, model.ErrDuplicateLoan
	}

	loan, err := s.createLoan(ctx, userID, req.BookID, &requestID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, auditmodel.ActionBorrow,
		fmt.Sprintf("borrowed book %q (%s) against request %s", req.BookTitle, req.BookID, requestID))

	return loan, nil
}

func (s *lifecycleService) ReturnLoan(ctx context.Context, actorID, loanID uuid.UUID, returnAny bool) (*model.Loan, error) {
	loan, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !returnAny && loan.UserID != actorID {
		return nil, model.ErrNotLoanOwner
	}
	if loan.ReturnedAt != nil {
		return nil, model.ErrLoanAlreadyReturned
	}

	now := s.now()
	fine := decimal.Zero
	if days := loan.DaysOverdue(now); days > 0 {
		fine = s.loanCfg.DailyFine.Mul(decimal.NewFromInt(int64(days)))
	}

	returned, err := s.repo.Return(ctx, loanID, fine, now)
	if err != nil {
		return nil, err
	}
	returned.BookTitle = loan.BookTitle
	returned.UserEmail = loan.UserEmail

	s.audit.Record(ctx, actorID, auditmodel.ActionReturn,
		fmt.Sprintf("returned loan %s for book %q (fine %s)", loanID, loan.BookTitle, fine))

	return returned, nil
}

func (s *lifecycleService) RenewLoan(ctx context.Context, actorID, loanID uuid.UUID) (*model.Loan, error) {
	loan, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.UserID != actorID {
		return nil, model.ErrNotLoanOwner
	}

	now := s.now()
	switch loan.EffectiveStatus(now) {
	case model.LoanStatusReturned:
		return nil, model.ErrLoanAlreadyReturned
	case model.LoanStatusOverdue:
		return nil, model.ErrLoanOverdue
	}
	if loan.RenewCount >= s.loanCfg.MaxRenewals {
		return nil, model.ErrRenewLimitReached
	}

	newDue := loan.DueAt.AddDate(0, 0, s.loanCfg.RenewalDays)
	if err := s.repo.Renew(ctx, loanID, newDue); err != nil {
		return nil, err
	}
	loan.DueAt = newDue
	loan.RenewCount++

	s.audit.Record(ctx, actorID, auditmodel.ActionRenew,
		fmt.Sprintf("renewed loan %s for book %q until %s", loanID, loan.BookTitle, newDue.Format("2006-01-02")))

	return loan, nil
}

func (s *lifecycleService) MyRequests(ctx context.Context, userID uuid.UUID) ([]model.BookRequest, error) {
	return s.repo.ListRequestsByUser(ctx, userID)
}

func (s *lifecycleService) MyLoans(ctx context.Context, userID uuid.UUID) ([]model.Loan, error) {
	return s.repo.ListLoansByUser(ctx, userID)
}

// ========================= LIBRARIAN FLOW =========================

func (s *lifecycleService) ApproveRequest(ctx context.Context, actorID, requestID uuid.UUID, notes *string) (*model.BookRequest, error) {
	return s.decideRequest(ctx, actorID, requestID, model.RequestStatusApproved, notes)
}

func (s *lifecycleService) RejectRequest(ctx context.Context, actorID, requestID uuid.UUID, notes *string) (*model.BookRequest, error) {
	return s.decideRequest(ctx, actorID, requestID, model.RequestStatusRejected, notes)
}

func (s *lifecycleService) decideRequest(ctx context.Context, actorID, requestID uuid.UUID, status string, notes *string) (*model.BookRequest, error) {
	if err := s.repo.DecideRequest(ctx, requestID, status, notes, s.now()); err != nil {
		return nil, err
	}

	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	action := auditmodel.ActionApproveRequest
	if status == model.RequestStatusRejected {
		action = auditmodel.ActionRejectRequest
	}
	s.audit.Record(ctx, actorID, action,
		fmt.Sprintf("%s request %s for book %q by %s", status, requestID, req.BookTitle, req.UserEmail))

	return req, nil
}

// BorrowDirect hands a copy straight to a reader at the desk, no
// request involved.
func (s *lifecycleService) BorrowDirect(ctx context.Context, actorID, userID, bookID uuid.UUID) (*model.Loan, error) {
	book, err := s.catalog.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if open, err := s.repo.HasOpenLoan(ctx, userID, bookID); err != nil {
		return nil, err
	} else if open {
		return nil, model.ErrDuplicateLoan
	}

	loan, err := s.createLoan(ctx, userID, bookID, nil)
	if err != nil {
		return nil, err
	}
	loan.BookTitle = book.Title

	s.audit.Record(ctx, actorID, auditmodel.ActionBorrow,
		fmt.Sprintf("issued book %q (%s) to user %s", book.Title, bookID, userID))

	return loan, nil
}

func (s *lifecycleService) ListRequests(ctx context.Context, q model.ListRequestsQuery) ([]model.BookRequest, int, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}
	return s.repo.ListRequests(ctx, q)
}

func (s *lifecycleService) ActiveLoans(ctx context.Context) ([]model.Loan, error) {
	return s.repo.ListOpenLoans(ctx)
}

// ========================= HELPERS =========================

func (s *lifecycleService) createLoan(ctx context.Context, userID, bookID uuid.UUID, requestID *uuid.UUID) (*model.Loan, error) {
	now := s.now()
	loan := &model.Loan{
		ID:         uuid.New(),
		UserID:     userID,
		BookID:     bookID,
		Status:     model.LoanStatusActive,
		BorrowedAt: now,
		DueAt:      now.AddDate(0, 0, s.loanCfg.PeriodDays),
		FineAmount: decimal.Zero,
	}
	if err := s.repo.Borrow(ctx, loan, requestID); err != nil {
		return nil, err
	}
	return loan, nil
}
