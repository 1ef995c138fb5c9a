package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/config"
	auditmodel "library-backend/internal/domains/audit/model"
	"library-backend/internal/domains/borrowing/model"
	catalogmodel "library-backend/internal/domains/catalog/model"
)

// ========================= MOCKS =========================

type mockBorrowingRepo struct {
	createRequestFn    func(ctx context.Context, req *model.BookRequest) error
	getRequestByIDFn   func(ctx context.Context, id uuid.UUID) (*model.BookRequest, error)
	hasActiveRequestFn func(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	decideRequestFn    func(ctx context.Context, id uuid.UUID, status string, notes *string, decidedAt time.Time) error
	getLoanByIDFn      func(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	hasOpenLoanFn      func(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	borrowFn           func(ctx context.Context, loan *model.Loan, requestID *uuid.UUID) error
	returnFn           func(ctx context.Context, loanID uuid.UUID, fine decimal.Decimal, returnedAt time.Time) (*model.Loan, error)
	renewFn            func(ctx context.Context, loanID uuid.UUID, newDue time.Time) error
}

func (m *mockBorrowingRepo) CreateRequest(ctx context.Context, req *model.BookRequest) error {
	return m.createRequestFn(ctx, req)
}
func (m *mockBorrowingRepo) GetRequestByID(ctx context.Context, id uuid.UUID) (*model.BookRequest, error) {
	return m.getRequestByIDFn(ctx, id)
}
func (m *mockBorrowingRepo) ListRequests(ctx context.Context, q model.ListRequestsQuery) ([]model.BookRequest, int, error) {
	return nil, 0, nil
}
func (m *mockBorrowingRepo) ListRequestsByUser(ctx context.Context, userID uuid.UUID) ([]model.BookRequest, error) {
	return nil, nil
}
func (m *mockBorrowingRepo) HasActiveRequest(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	return m.hasActiveRequestFn(ctx, userID, bookID)
}
func (m *mockBorrowingRepo) DecideRequest(ctx context.Context, id uuid.UUID, status string, notes *string, decidedAt time.Time) error {
	return m.decideRequestFn(ctx, id, status, notes, decidedAt)
}
func (m *mockBorrowingRepo) GetLoanByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	return m.getLoanByIDFn(ctx, id)
}
func (m *mockBorrowingRepo) HasOpenLoan(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	return m.hasOpenLoanFn(ctx, userID, bookID)
}
func (m *mockBorrowingRepo) ListLoansByUser(ctx context.Context, userID uuid.UUID) ([]model.Loan, error) {
	return nil, nil
}
func (m *mockBorrowingRepo) ListOpenLoans(ctx context.Context) ([]model.Loan, error) {
	return nil, nil
}
func (m *mockBorrowingRepo) Borrow(ctx context.Context, loan *model.Loan, requestID *uuid.UUID) error {
	return m.borrowFn(ctx, loan, requestID)
}
func (m *mockBorrowingRepo) Return(ctx context.Context, loanID uuid.UUID, fine decimal.Decimal, returnedAt time.Time) (*model.Loan, error) {
	return m.returnFn(ctx, loanID, fine, returnedAt)
}
func (m *mockBorrowingRepo) Renew(ctx context.Context, loanID uuid.UUID, newDue time.Time) error {
	return m.renewFn(ctx, loanID, newDue)
}
func (m *mockBorrowingRepo) MarkOverdueLoans(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
func (m *mockBorrowingRepo) ListDueSoon(ctx context.Context, from, to time.Time) ([]model.Loan, error) {
	return nil, nil
}

type mockCatalogRepo struct {
	getBookByIDFn func(ctx context.Context, id uuid.UUID) (*catalogmodel.Book, error)
}

func (m *mockCatalogRepo) CreateAuthor(ctx context.Context, author *catalogmodel.Author) error {
	return nil
}
func (m *mockCatalogRepo) UpdateAuthor(ctx context.Context, author *catalogmodel.Author) error {
	return nil
}
func (m *mockCatalogRepo) DeleteAuthor(ctx context.Context, id uuid.UUID) error { return nil }
func (m *mockCatalogRepo) GetAuthorByID(ctx context.Context, id uuid.UUID) (*catalogmodel.Author, error) {
	return nil, nil
}
func (m *mockCatalogRepo) ListAuthors(ctx context.Context) ([]catalogmodel.Author, error) {
	return nil, nil
}
func (m *mockCatalogRepo) CreateGenre(ctx context.Context, genre *catalogmodel.Genre) error {
	return nil
}
func (m *mockCatalogRepo) UpdateGenre(ctx context.Context, genre *catalogmodel.Genre) error {
	return nil
}
func (m *mockCatalogRepo) DeleteGenre(ctx context.Context, id uuid.UUID) error { return nil }
func (m *mockCatalogRepo) GetGenreByID(ctx context.Context, id uuid.UUID) (*catalogmodel.Genre, error) {
	return nil, nil
}
func (m *mockCatalogRepo) ListGenres(ctx context.Context) ([]catalogmodel.Genre, error) {
	return nil, nil
}
func (m *mockCatalogRepo) CreateBook(ctx context.Context, book *catalogmodel.Book) error { return nil }
func (m *mockCatalogRepo) UpdateBook(ctx context.Context, book *catalogmodel.Book) error { return nil }
func (m *mockCatalogRepo) DeleteBook(ctx context.Context, id uuid.UUID) error            { return nil }
func (m *mockCatalogRepo) GetBookByID(ctx context.Context, id uuid.UUID) (*catalogmodel.Book, error) {
	return m.getBookByIDFn(ctx, id)
}
func (m *mockCatalogRepo) SearchBooks(ctx context.Context, q catalogmodel.SearchBooksQuery) ([]catalogmodel.Book, int, error) {
	return nil, 0, nil
}

type recordingAudit struct {
	actions []string
}

func (m *recordingAudit) Record(ctx context.Context, userID uuid.UUID, action, description string) {
	m.actions = append(m.actions, action)
}
func (m *recordingAudit) ListLogs(ctx context.Context, action string, userID *uuid.UUID, page, limit int) ([]auditmodel.AuditLog, int, error) {
	return nil, 0, nil
}
func (m *recordingAudit) ActivityReport(ctx context.Context, from, to time.Time) ([]auditmodel.ActivityCount, error) {
	return nil, nil
}
func (m *recordingAudit) TopBooksReport(ctx context.Context, from, to time.Time, limit int) ([]auditmodel.TopBook, error) {
	return nil, nil
}
func (m *recordingAudit) OverdueReport(ctx context.Context) ([]auditmodel.OverdueLoanReport, error) {
	return nil, nil
}

// ========================= FIXTURES =========================

var testNow = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo *mockBorrowingRepo, catalog *mockCatalogRepo, audit *recordingAudit) *lifecycleService {
	return &lifecycleService{
		repo:    repo,
		catalog: catalog,
		audit:   audit,
		loanCfg: config.LoanConfig{
			PeriodDays:  14,
			MaxRenewals: 2,
			RenewalDays: 7,
			DailyFine:   decimal.RequireFromString("0.50"),
		},
		now: func() time.Time { return testNow },
	}
}

func availableBook(id uuid.UUID) *catalogmodel.Book {
	return &catalogmodel.Book{
		ID:              id,
		Title:           "The Master and Margarita",
		TotalCopies:     3,
		AvailableCopies: 2,
	}
}

// ========================= REQUEST TESTS =========================

func TestRequestBookCreatesPendingRequest(t *testing.T) {
	userID := uuid.New()
	bookID := uuid.New()

	var created *model.BookRequest
	repo := &mockBorrowingRepo{
		hasActiveRequestFn: func(ctx context.Context, u, b uuid.UUID) (bool, error) { return false, nil },
		hasOpenLoanFn:      func(ctx context.Context, u, b uuid.UUID) (bool, error) { return false, nil },
		createRequestFn: func(ctx context.Context, req *model.BookRequest) error {
			created = req
			return nil
		},
	}
	catalog := &mockCatalogRepo{
		getBookByIDFn: func(ctx context.Context, id uuid.UUID) (*catalogmodel.Book, error) {
			return availableBook(id), nil
		},
	}
	audit := &recordingAudit{}
	svc := newTestService(repo, catalog, audit)

	req, err := svc.RequestBook(context.Background(), userID, bookID)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, model.RequestStatusPending, req.Status)
	assert.Equal(t, userID, req.UserID)
	assert.Equal(t, bookID, req.BookID)
	assert.Equal(t, testNow, req.RequestedAt)
	assert.Contains(t, audit.actions, "request_book")
}

func TestRequestBookRejectsDuplicateActiveRequest(t *testing.T) {
	repo := &mockBorrowingRepo{
		hasActiveRequestFn: func(ctx context.Context, u, b uuid.UUID) (bool, error) { return true, nil },
	}
	catalog := &mockCatalogRepo{
		getBookByIDFn: func(ctx context.Context, id uuid.UUID) (*catalogmodel.Book, error) {
			return availableBook(id), nil
		},
	}
	svc := newTestService(repo, catalog, &recordingAudit{})

	_, err := svc.RequestBook(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, model.ErrDuplicateRequest)
}

func TestRequestBookRejectsWhenCopyAlreadyBorrowed(t *testing.T) {
	repo := &mockBorrowingRepo{
		hasActiveRequestFn: func(ctx context.Context, u, b uuid.UUID) (bool, error) { return false, nil },
		hasOpenLoanFn:      func(ctx context.Context, u, b uuid.UUID) (bool, error) { return true, nil },
	}
	catalog := &mockCatalogRepo{
		getBookByIDFn: func(ctx context.Context, id uuid.UUID) (*catalogmodel.Book, error) {
			return availableBook(id), nil
		},
	}
	svc := newTestService(repo, catalog, &recordingAudit{})

	_, err := svc.RequestBook(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, model.ErrDuplicateLoan)
}

func TestRequestBookUnknownBook(t *testing.T) {
	catalog := &mockCatalogRepo{
		getBookByIDFn: func(ctx context.Context, id uuid.UUID) (*catalogmodel.Book, error) {
			return nil, catalogmodel.ErrBookNotFound
		},
	}
	svc := newTestService(&mockBorrowingRepo{}, catalog, &recordingAudit{})

	_, err := svc.RequestBook(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, catalogmodel.ErrBookNotFound)
}

// ========================= BORROW TESTS =========================

func TestBorrowApprovedSetsDueDateFromPolicy(t *testing.T) {
	userID := uuid.New()
	bookID := uuid.New()
	requestID := uuid.New()

	var borrowed *model.Loan
	repo := &mockBorrowingRepo{
		getRequestByIDFn: func(ctx context.Context, id uuid.UUID) (*model.BookRequest, error) {
			return &model.BookRequest{
				ID:     requestID,
				UserID: userID,
				BookID: bookID,
				Status: model.RequestStatusApproved,
			}, nil
		},
		hasOpenLoanFn: func(ctx context.Context, u, b uuid.UUID) (bool, error) { return false, nil },
		borrowFn: func(ctx context.Context, loan *model.Loan, reqID *uuid.UUID) error {
			borrowed = loan
			require.NotNil(t, reqID)
			assert.Equal(t, requestID, *reqID)
			return nil
		},
	}
	audit := &recordingAudit{}
	svc := newTestService(repo, &mockCatalogRepo{}, audit)

	loan, err := svc.BorrowApproved(context.Background(), userID, requestID)
	require.NoError(t, err)
	require.NotNil(t, borrowed)
	assert.Equal(t, model.LoanStatusActive, loan.Status)
	assert.Equal(t, testNow, loan.BorrowedAt)
	assert.Equal(t, testNow.AddDate(0, 0, 14), loan.DueAt)
	assert.Contains(t, audit.actions, "borrow")
}

func TestBorrowApprovedRejectsPendingRequest(t *testing.T) {
	userID := uuid.New()
	requestID := uuid.New()

	repo := &mockBorrowingRepo{
		getRequestByIDFn: func(ctx context.Context, id uuid.UUID) (*model.BookRequest, error) {
			return &model.BookRequest{ID: requestID, UserID: userID, Status: model.RequestStatusPending}, nil
		},
	}
	svc := newTestService(repo, &mockCatalogRepo{}, &recordingAudit{})

	_, err := svc.BorrowApproved(context.Background(), userID, requestID)
	assert.ErrorIs(t, err, model.ErrNoApprovedRequest)
}

func TestBorrowApprovedRejectsAlreadyFulfilledRequest(t *testing.T) {
	userID := uuid.New()
	requestID := uuid.New()
	fulfilled := testNow.Add(-time.Hour)

	repo := &mockBorrowingRepo{
		getRequestByIDFn: func(ctx context.Context, id uuid.UUID) (*model.BookRequest, error) {
			return &model.BookRequest{
				ID:          requestID,
				UserID:      userID,
				Status:      model.RequestStatusApproved,
				FulfilledAt: &fulfilled,
			}, nil
		},
	}
	svc := newTestService(repo, &mockCatalogRepo{}, &recordingAudit{})

	_, err := svc.BorrowApproved(context.Background(), userID, requestID)
	assert.ErrorIs(t, err, model.ErrNoApprovedRequest)
}

func TestBorrowApprovedHidesOtherUsersRequests(t *testing.T) {
	repo := &mockBorrowingRepo{
		getRequestByIDFn: func(ctx context.Context, id uuid.UUID) (*model.BookRequest, error) {
			return &model.BookRequest{ID: id, UserID: uuid.New(), Status: model.RequestStatusApproved}, nil
		},
	}
	svc := newTestService(repo, &mockCatalogRepo{}, &recordingAudit{})

	_, err := svc.BorrowApproved(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, model.ErrRequestNotFound)
}

func TestBorrowDirectPropagatesNoCopies(t *testing.T) {
	repo := &mockBorrowingRepo{
		hasOpenLoanFn: func(ctx context.Context, u, b uuid.UUID) (bool, error) { return false, nil },
		borrowFn: func(ctx context.Context, loan *model.Loan, reqID *uuid.UUID) error {
			return model.ErrNoCopiesAvailable
		},
	}
	catalog := &mockCatalogRepo{
		getBookByIDFn: func(ctx context.Context, id uuid.UUID) (*catalogmodel.Book, error) {
			book := availableBook(id)
			book.AvailableCopies = 0
			return book, nil
		},
	}
	svc := newTestService(repo, catalog, &recordingAudit{})

	_, err := svc.BorrowDirect(context.Background(), uuid.New(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, model.ErrNoCopiesAvailable)
}

// ========================= RETURN TESTS =========================

func TestReturnLoanOnTimeHasNoFine(t *testing.T) {
	loanID := uuid.New()
	ownerID := uuid.New()

	var chargedFine decimal.Decimal
	repo := &mockBorrowingRepo{
		getLoanByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return &model.Loan{
				ID:     loanID,
				UserID: ownerID,
				Status: model.LoanStatusActive,
				DueAt:  testNow.Add(48 * time.Hour),
			}, nil
		},
		returnFn: func(ctx context.Context, id uuid.UUID, fine decimal.Decimal, returnedAt time.Time) (*model.Loan, error) {
			chargedFine = fine
			return &model.Loan{ID: id, UserID: ownerID, Status: model.LoanStatusReturned, ReturnedAt: &returnedAt, FineAmount: fine}, nil
		},
	}
	audit := &recordingAudit{}
	svc := newTestService(repo, &mockCatalogRepo{}, audit)

	loan, err := svc.ReturnLoan(context.Background(), ownerID, loanID, false)
	require.NoError(t, err)
	assert.True(t, chargedFine.IsZero())
	assert.Equal(t, model.LoanStatusReturned, loan.Status)
	assert.Contains(t, audit.actions, "return")
}

func TestReturnLoanChargesFinePerOverdueDay(t *testing.T) {
	loanID := uuid.New()
	ownerID := uuid.New()

	var chargedFine decimal.Decimal
	repo := &mockBorrowingRepo{
		getLoanByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return &model.Loan{
				ID:     loanID,
				UserID: ownerID,
				Status: model.LoanStatusActive,
				DueAt:  testNow.AddDate(0, 0, -4), // four full days late
			}, nil
		},
		returnFn: func(ctx context.Context, id uuid.UUID, fine decimal.Decimal, returnedAt time.Time) (*model.Loan, error) {
			chargedFine = fine
			return &model.Loan{ID: id, UserID: ownerID, Status: model.LoanStatusReturned, ReturnedAt: &returnedAt, FineAmount: fine}, nil
		},
	}
	svc := newTestService(repo, &mockCatalogRepo{}, &recordingAudit{})

	_, err := svc.ReturnLoan(context.Background(), ownerID, loanID, false)
	require.NoError(t, err)
	assert.True(t, chargedFine.Equal(decimal.RequireFromString("2.00")), "4 days x 0.50 = 2.00, got %s", chargedFine)
}

func TestReturnLoanRejectsNonOwnerWithoutStaffOverride(t *testing.T) {
	loanID := uuid.New()

	repo := &mockBorrowingRepo{
		getLoanByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return &model.Loan{ID: loanID, UserID: uuid.New(), Status: model.LoanStatusActive, DueAt: testNow.Add(time.Hour)}, nil
		},
	}
	svc := newTestService(repo, &mockCatalogRepo{}, &recordingAudit{})

	_, err := svc.ReturnLoan(context.Background(), uuid.New(), loanID, false)
	assert.ErrorIs(t, err, model.ErrNotLoanOwner)
}

func TestReturnLoanAllowsStaffForAnyOwner(t *testing.T) {
	loanID := uuid.New()

	repo := &mockBorrowingRepo{
		getLoanByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return &model.Loan{ID: loanID, UserID: uuid.New(), Status: model.LoanStatusActive, DueAt: testNow.Add(time.Hour)}, nil
		},
		returnFn: func(ctx context.Context, id uuid.UUID, fine decimal.Decimal, returnedAt time.Time) (*model.Loan, error) {
			return &model.Loan{ID: id, Status: model.LoanStatusReturned, ReturnedAt: &returnedAt}, nil
		},
	}
	svc := newTestService(repo, &mockCatalogRepo{}, &recordingAudit{})

	_, err := svc.ReturnLoan(context.Background(), uuid.New(), loanID, true)
	assert.NoError(t, err)
}

func TestReturnLoanRejectsDoubleReturn(t *testing.T) {
	loanID := uuid.New()
	ownerID := uuid.New()
	returnedAt := testNow.Add(-time.Hour)

	repo := &mockBorrowingRepo{
		getLoanByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return &model.Loan{ID: loanID, UserID: ownerID, Status: model.LoanStatusReturned, ReturnedAt: &returnedAt}, nil
		},
	}
	svc := newTestService(repo, &mockCatalogRepo{}, &recordingAudit{})

	_, err := svc.ReturnLoan(context.Background(), ownerID, loanID, false)
	assert.ErrorIs(t, err, model.ErrLoanAlreadyReturned)
}

// ========================= RENEW TESTS =========================

func TestRenewLoanExtendsDueDate(t *testing.T) {
	loanID := uuid.New()
	ownerID := uuid.New()
	due := testNow.Add(72 * time.Hour)

	var renewedUntil time.Time
	repo := &mockBorrowingRepo{
		getLoanByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return &model.Loan{ID: loanID, UserID: ownerID, Status: model.LoanStatusActive, DueAt: due, RenewCount: 1}, nil
		},
		renewFn: func(ctx context.Context, id uuid.UUID, newDue time.Time) error {
			renewedUntil = newDue
			return nil
		},
	}
	svc := newTestService(repo, &mockCatalogRepo{}, &recordingAudit{})

	loan, err := svc.RenewLoan(context.Background(), ownerID, loanID)
	require.NoError(t, err)
	assert.Equal(t, due.AddDate(0, 0, 7), renewedUntil)
	assert.Equal(t, 2, loan.RenewCount)
}

func TestRenewLoanRejectsOverdueLoan(t *testing.T) {
	loanID := uuid.New()
	ownerID := uuid.New()

	repo := &mockBorrowingRepo{
		getLoanByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return &model.Loan{ID: loanID, UserID: ownerID, Status: model.LoanStatusActive, DueAt: testNow.Add(-time.Hour)}, nil
		},
	}
	svc := newTestService(repo, &mockCatalogRepo{}, &recordingAudit{})

	_, err := svc.RenewLoan(context.Background(), ownerID, loanID)
	assert.ErrorIs(t, err, model.ErrLoanOverdue)
}

func TestRenewLoanHonorsRenewalLimit(t *testing.T) {
	loanID := uuid.New()
	ownerID := uuid.New()

	repo := &mockBorrowingRepo{
		getLoanByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return &model.Loan{ID: loanID, UserID: ownerID, Status: model.LoanStatusActive, DueAt: testNow.Add(time.Hour), RenewCount: 2}, nil
		},
	}
	svc := newTestService(repo, &mockCatalogRepo{}, &recordingAudit{})

	_, err := svc.RenewLoan(context.Background(), ownerID, loanID)
	assert.ErrorIs(t, err, model.ErrRenewLimitReached)
}

// ========================= DECIDE TESTS =========================

func TestApproveRequestPropagatesNotPending(t *testing.T) {
	repo := &mockBorrowingRepo{
		decideRequestFn: func(ctx context.Context, id uuid.UUID, status string, notes *string, decidedAt time.Time) error {
			return model.ErrRequestNotPending
		},
	}
	svc := newTestService(repo, &mockCatalogRepo{}, &recordingAudit{})

	_, err := svc.ApproveRequest(context.Background(), uuid.New(), uuid.New(), nil)
	assert.ErrorIs(t, err, model.ErrRequestNotPending)
}

func TestRejectRequestRecordsAudit(t *testing.T) {
	requestID := uuid.New()

	repo := &mockBorrowingRepo{
		decideRequestFn: func(ctx context.Context, id uuid.UUID, status string, notes *string, decidedAt time.Time) error {
			assert.Equal(t, model.RequestStatusRejected, status)
			assert.Equal(t, testNow, decidedAt)
			return nil
		},
		getRequestByIDFn: func(ctx context.Context, id uuid.UUID) (*model.BookRequest, error) {
			return &model.BookRequest{ID: requestID, Status: model.RequestStatusRejected}, nil
		},
	}
	audit := &recordingAudit{}
	svc := newTestService(repo, &mockCatalogRepo{}, audit)

	_, err := svc.RejectRequest(context.Background(), uuid.New(), requestID, nil)
	require.NoError(t, err)
	assert.Contains(t, audit.actions, "reject_request")
}
