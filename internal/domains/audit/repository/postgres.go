package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/audit/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// Insert appends one entry. There are no update or delete paths.
func (r *postgresRepository) Insert(ctx context.Context, entry *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, user_id, action, description, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.UserID, entry.Action, entry.Description, entry.IPAddress, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, action string, userID *uuid.UUID, limit, offset int) ([]model.AuditLog, int, error) {
	conditions := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if action != "" {
		conditions += fmt.Sprintf(" AND action = $%d", argIndex)
		args = append(args, action)
		argIndex++
	}
	if userID != nil {
		conditions += fmt.Sprintf(" AND user_id = $%d", argIndex)
		args = append(args, *userID)
		argIndex++
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM audit_logs %s`, conditions)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, action, description, ip_address, created_at
		FROM audit_logs
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, conditions, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditLog
	for rows.Next() {
		var entry model.AuditLog
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Action, &entry.Description,
			&entry.IPAddress, &entry.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, total, rows.Err()
}

// ActivityCounts buckets borrows and returns per day over the window
func (r *postgresRepository) ActivityCounts(ctx context.Context, from, to time.Time) ([]model.ActivityCount, error) {
	query := `
		SELECT date_trunc('day', created_at) AS period,
		       COUNT(*) FILTER (WHERE action = 'borrow') AS borrows,
		       COUNT(*) FILTER (WHERE action = 'return') AS returns
		FROM audit_logs
		WHERE action IN ('borrow', 'return') AND created_at >= $1 AND created_at < $2
		GROUP BY period
		ORDER BY period
	`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity counts: %w", err)
	}
	defer rows.Close()

	var counts []model.ActivityCount
	for rows.Next() {
		var count model.ActivityCount
		if err := rows.Scan(&count.Period, &count.Borrows, &count.Returns); err != nil {
			return nil, fmt.Errorf("failed to scan activity count: %w", err)
		}
		counts = append(counts, count)
	}
	return counts, rows.Err()
}

func (r *postgresRepository) TopBooks(ctx context.Context, from, to time.Time, limit int) ([]model.TopBook, error) {
	query := `
		SELECT b.id, b.title, COUNT(*) AS borrow_count
		FROM loans l
		JOIN books b ON l.book_id = b.id
		WHERE l.borrowed_at >= $1 AND l.borrowed_at < $2
		GROUP BY b.id, b.title
		ORDER BY borrow_count DESC, b.title
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top books: %w", err)
	}
	defer rows.Close()

	var books []model.TopBook
	for rows.Next() {
		var book model.TopBook
		if err := rows.Scan(&book.BookID, &book.Title, &book.BorrowCount); err != nil {
			return nil, fmt.Errorf("failed to scan top book: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// OverdueLoans lists open loans past due, whether or not the persisted
// status has been swept to overdue yet.
func (r *postgresRepository) OverdueLoans(ctx context.Context, now time.Time) ([]model.OverdueLoanReport, error) {
	query := `
		SELECT l.id, b.id, b.title, u.id, u.email, l.due_at,
		       GREATEST(0, EXTRACT(DAY FROM $1::timestamptz - l.due_at))::int
		FROM loans l
		JOIN books b ON l.book_id = b.id
		JOIN users u ON l.user_id = u.id
		WHERE l.status <> 'returned' AND l.due_at < $1
		ORDER BY l.due_at
	`
	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue loans: %w", err)
	}
	defer rows.Close()

	var reports []model.OverdueLoanReport
	for rows.Next() {
		var report model.OverdueLoanReport
		if err := rows.Scan(
			&report.LoanID, &report.BookID, &report.BookTitle,
			&report.UserID, &report.UserEmail, &report.DueAt, &report.DaysOverdue,
		); err != nil {
			return nil, fmt.Errorf("failed to scan overdue loan: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
