package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/audit/model"
)

// ServiceInterface exposes best-effort audit recording and the
// read-only admin reports.
type ServiceInterface interface {
	// Record appends one audit entry. Failures are logged and swallowed:
	// an audit write must never roll back the transition it describes.
	Record(ctx context.Context, userID uuid.UUID, action, description string)

	ListLogs(ctx context.Context, action string, userID *uuid.UUID, page, limit int) ([]model.AuditLog, int, error)
	ActivityReport(ctx context.Context, from, to time.Time) ([]model.ActivityCount, error)
	TopBooksReport(ctx context.Context, from, to time.Time, limit int) ([]model.TopBook, error)
	OverdueReport(ctx context.Context) ([]model.OverdueLoanReport, error)
}
