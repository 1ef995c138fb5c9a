package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/audit/model"
)

// RepositoryInterface covers the append-only log plus read-only
// aggregation over the loan ledger.
type RepositoryInterface interface {
	Insert(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, action string, userID *uuid.UUID, limit, offset int) ([]model.AuditLog, int, error)

	ActivityCounts(ctx context.Context, from, to time.Time) ([]model.ActivityCount, error)
	TopBooks(ctx context.Context, from, to time.Time, limit int) ([]model.TopBook, error)
	OverdueLoans(ctx context.Context, now time.Time) ([]model.OverdueLoanReport, error)
}
