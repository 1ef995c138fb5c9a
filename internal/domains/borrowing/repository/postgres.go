package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/borrowing/model"
	catalogmodel "library-backend/internal/domains/catalog/model"
	"library-backend/pkg/database"
)

// postgresRepository - raw SQL with pgxpool. The book row is locked
// FOR UPDATE whenever available_copies changes; unique indexes on
// requests (user_id, book_id, status) and on open loans back up the
// application-level duplicate checks under concurrency.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository - Constructor
func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// ========================= REQUESTS =========================

func (r *postgresRepository) CreateRequest(ctx context.Context, req *model.BookRequest) error {
	query := `
		INSERT INTO book_requests (id, user_id, book_id, status, notes, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		req.ID, req.UserID, req.BookID, req.Status, req.Notes, req.RequestedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation on (user_id, book_id, status)
				return model.ErrDuplicateRequest
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return fmt.Errorf("request references missing row: %w", err)
			}
		}
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetRequestByID(ctx context.Context, id uuid.UUID) (*model.BookRequest, error) {
	query := `
		SELECT r.id, r.user_id, r.book_id, r.status, r.notes,
		       r.requested_at, r.approved_at, r.rejected_at, r.fulfilled_at,
		       b.title, u.email
		FROM book_requests r
		JOIN books b ON r.book_id = b.id
		JOIN users u ON r.user_id = u.id
		WHERE r.id = $1
	`
	var req model.BookRequest
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.UserID, &req.BookID, &req.Status, &req.Notes,
		&req.RequestedAt, &req.ApprovedAt, &req.RejectedAt, &req.FulfilledAt,
		&req.BookTitle, &req.UserEmail,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &req, nil
}

func (r *postgresRepository) ListRequests(ctx context.Context, q model.ListRequestsQuery) ([]model.BookRequest, int, error) {
	where := ""
	args := []interface{}{}
	if q.Status != "" {
		where = "WHERE r.status = $1"
		args = append(args, q.Status)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM book_requests r %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if q.Page > 1 {
		offset = (q.Page - 1) * limit
	}

	query := fmt.Sprintf(`
		SELECT r.id, r.user_id, r.book_id, r.status, r.notes,
		       r.requested_at, r.approved_at, r.rejected_at, r.fulfilled_at,
		       b.title, u.email
		FROM book_requests r
		JOIN books b ON r.book_id = b.id
		JOIN users u ON r.user_id = u.id
		%s
		ORDER BY r.requested_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	requests, err := scanRequests(rows)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *postgresRepository) ListRequestsByUser(ctx context.Context, userID uuid.UUID) ([]model.BookRequest, error) {
	query := `
		SELECT r.id, r.user_id, r.book_id, r.status, r.notes,
		       r.requested_at, r.approved_at, r.rejected_at, r.fulfilled_at,
		       b.title, u.email
		FROM book_requests r
		JOIN books b ON r.book_id = b.id
		JOIN users u ON r.user_id = u.id
		WHERE r.user_id = $1
		ORDER BY r.requested_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// HasActiveRequest reports whether the user already has a request for
// this book that is pending, or approved but not yet borrowed.
func (r *postgresRepository) HasActiveRequest(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM book_requests
			WHERE user_id = $1 AND book_id = $2
			  AND (status = 'pending' OR (status = 'approved' AND fulfilled_at IS NULL))
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, bookID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active request: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) DecideRequest(ctx context.Context, id uuid.UUID, status string, notes *string, decidedAt time.Time) error {
	var stampColumn string
	switch status {
	case model.RequestStatusApproved:
		stampColumn = "approved_at"
	case model.RequestStatusRejected:
		stampColumn = "rejected_at"
	default:
		return fmt.Errorf("invalid decision status %q", status)
	}

	// The status = 'pending' guard makes the transition idempotent-safe:
	// a second decision sees zero rows.
	query := fmt.Sprintf(`
		UPDATE book_requests
		SET status = $2, notes = COALESCE($3, notes), %s = $4
		WHERE id = $1 AND status = 'pending'
	`, stampColumn)

	tag, err := r.pool.Exec(ctx, query, id, status, notes, decidedAt)
	if err != nil {
		return fmt.Errorf("failed to decide request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish missing from already-decided
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM book_requests WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check request: %w", err)
		}
		if !exists {
			return model.ErrRequestNotFound
		}
		return model.ErrRequestNotPending
	}
	return nil
}

// ========================= LOANS =========================

func (r *postgresRepository) GetLoanByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	query := `
		SELECT l.id, l.user_id, l.book_id, l.status, l.borrowed_at, l.due_at,
		       l.returned_at, l.renew_count, l.fine_amount, b.title, u.email
		FROM loans l
		JOIN books b ON l.book_id = b.id
		JOIN users u ON l.user_id = u.id
		WHERE l.id = $1
	`
	var loan model.Loan
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&loan.ID, &loan.UserID, &loan.BookID, &loan.Status, &loan.BorrowedAt, &loan.DueAt,
		&loan.ReturnedAt, &loan.RenewCount, &loan.FineAmount, &loan.BookTitle, &loan.UserEmail,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrLoanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return &loan, nil
}

func (r *postgresRepository) HasOpenLoan(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM loans
			WHERE user_id = $1 AND book_id = $2 AND returned_at IS NULL
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, bookID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check open loan: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) ListLoansByUser(ctx context.Context, userID uuid.UUID) ([]model.Loan, error) {
	query := `
		SELECT l.id, l.user_id, l.book_id, l.status, l.borrowed_at, l.due_at,
		       l.returned_at, l.renew_count, l.fine_amount, b.title, u.email
		FROM loans l
		JOIN books b ON l.book_id = b.id
		JOIN users u ON l.user_id = u.id
		WHERE l.user_id = $1
		ORDER BY l.returned_at IS NOT NULL, l.borrowed_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

func (r *postgresRepository) ListOpenLoans(ctx context.Context) ([]model.Loan, error) {
	query := `
		SELECT l.id, l.user_id, l.book_id, l.status, l.borrowed_at, l.due_at,
		       l.returned_at, l.renew_count, l.fine_amount, b.title, u.email
		FROM loans l
		JOIN books b ON l.book_id = b.id
		JOIN users u ON l.user_id = u.id
		WHERE l.returned_at IS NULL
		ORDER BY l.borrowed_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

// Borrow is the critical section of the whole lifecycle: lock the book
// row, verify a copy is free, optionally consume the approved request,
// insert the loan and decrement the count. All or nothing.
func (r *postgresRepository) Borrow(ctx context.Context, loan *model.Loan, requestID *uuid.UUID) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		var available int
		err := tx.QueryRow(ctx,
			`SELECT available_copies FROM books WHERE id = $1 FOR UPDATE`,
			loan.BookID,
		).Scan(&available)
		if errors.Is(err, pgx.ErrNoRows) {
			return catalogmodel.ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock book: %w", err)
		}
		if available <= 0 {
			return model.ErrNoCopiesAvailable
		}

		if requestID != nil {
			tag, err := tx.Exec(ctx, `
				UPDATE book_requests
				SET fulfilled_at = $3
				WHERE id = $1 AND user_id = $2 AND status = 'approved' AND fulfilled_at IS NULL
			`, *requestID, loan.UserID, loan.BorrowedAt)
			if err != nil {
				return fmt.Errorf("failed to fulfil request: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return model.ErrNoApprovedRequest
			}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO loans (id, user_id, book_id, status, borrowed_at, due_at, renew_count, fine_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			loan.ID, loan.UserID, loan.BookID, loan.Status,
			loan.BorrowedAt, loan.DueAt, loan.RenewCount, loan.FineAmount,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				// partial unique index on (user_id, book_id) WHERE returned_at IS NULL
				return model.ErrDuplicateLoan
			}
			return fmt.Errorf("failed to insert loan: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE books SET available_copies = available_copies - 1, updated_at = $2 WHERE id = $1`,
			loan.BookID, loan.BorrowedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to decrement available copies: %w", err)
		}
		return nil
	})
}

// Return closes the loan and gives the copy back. The increment is
// clamped to total_copies in case the total was shrunk while the copy
// was out.
func (r *postgresRepository) Return(ctx context.Context, loanID uuid.UUID, fine decimal.Decimal, returnedAt time.Time) (*model.Loan, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Loan, error) {
		var loan model.Loan
		err := tx.QueryRow(ctx, `
			SELECT id, user_id, book_id, status, borrowed_at, due_at,
			       returned_at, renew_count, fine_amount
			FROM loans WHERE id = $1 FOR UPDATE
		`, loanID).Scan(
			&loan.ID, &loan.UserID, &loan.BookID, &loan.Status, &loan.BorrowedAt, &loan.DueAt,
			&loan.ReturnedAt, &loan.RenewCount, &loan.FineAmount,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrLoanNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to lock loan: %w", err)
		}
		if loan.ReturnedAt != nil {
			return nil, model.ErrLoanAlreadyReturned
		}

		_, err = tx.Exec(ctx, `
			UPDATE loans SET status = $2, returned_at = $3, fine_amount = $4 WHERE id = $1
		`, loanID, model.LoanStatusReturned, returnedAt, fine)
		if err != nil {
			return nil, fmt.Errorf("failed to close loan: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE books
			SET available_copies = LEAST(available_copies + 1, total_copies), updated_at = $2
			WHERE id = $1
		`, loan.BookID, returnedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to increment available copies: %w", err)
		}

		loan.Status = model.LoanStatusReturned
		loan.ReturnedAt = &returnedAt
		loan.FineAmount = fine
		return &loan, nil
	})
}

func (r *postgresRepository) Renew(ctx context.Context, loanID uuid.UUID, newDue time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE loans
		SET due_at = $2, renew_count = renew_count + 1
		WHERE id = $1 AND returned_at IS NULL
	`, loanID, newDue)
	if err != nil {
		return fmt.Errorf("failed to renew loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLoanAlreadyReturned
	}
	return nil
}

// ========================= WORKER SUPPORT =========================

// MarkOverdueLoans persists the derived overdue status in bulk
func (r *postgresRepository) MarkOverdueLoans(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE loans
		SET status = 'overdue'
		WHERE status = 'active' AND returned_at IS NULL AND due_at < $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue loans: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *postgresRepository) ListDueSoon(ctx context.Context, from, to time.Time) ([]model.Loan, error) {
	query := `
		SELECT l.id, l.user_id, l.book_id, l.status, l.borrowed_at, l.due_at,
		       l.returned_at, l.renew_count, l.fine_amount, b.title, u.email
		FROM loans l
		JOIN books b ON l.book_id = b.id
		JOIN users u ON l.user_id = u.id
		WHERE l.returned_at IS NULL AND l.due_at >= $1 AND l.due_at < $2
		ORDER BY l.due_at
	`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list due loans: %w", err)
	}
	defer rows.Close()

	return scanLoans(rows)
}

// ========================= SCAN HELPERS =========================

func scanRequests(rows pgx.Rows) ([]model.BookRequest, error) {
	var requests []model.BookRequest
	for rows.Next() {
		var req model.BookRequest
		if err := rows.Scan(
			&req.ID, &req.UserID, &req.BookID, &req.Status, &req.Notes,
			&req.RequestedAt, &req.ApprovedAt, &req.RejectedAt, &req.FulfilledAt,
			&req.BookTitle, &req.UserEmail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func scanLoans(rows pgx.Rows) ([]model.Loan, error) {
	var loans []model.Loan
	for rows.Next() {
		var loan model.Loan
		if err := rows.Scan(
			&loan.ID, &loan.UserID, &loan.BookID, &loan.Status, &loan.BorrowedAt, &loan.DueAt,
			&loan.ReturnedAt, &loan.RenewCount, &loan.FineAmount, &loan.BookTitle, &loan.UserEmail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}
