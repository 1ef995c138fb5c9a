package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/audit/model"
	"library-backend/internal/domains/audit/repository"
	"library-backend/internal/shared/middleware"
	"library-backend/pkg/logger"
)

type auditService struct {
	repo repository.RepositoryInterface
}

func NewAuditService(repo repository.RepositoryInterface) ServiceInterface {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, userID uuid.UUID, action, description string) {
	entry := &model.AuditLog{
		ID:          uuid.New(),
		UserID:      userID,
		Action:      action,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	if ip := middleware.GetClientIPFromContext(ctx); ip != "" {
		entry.IPAddress = &ip
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		logger.Error("audit write failed", err)
	}
}

func (s *auditService) ListLogs(ctx context.Context, action string, userID *uuid.UUID, page, limit int) ([]model.AuditLog, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}
	return s.repo.List(ctx, action, userID, limit, offset)
}

func (s *auditService) ActivityReport(ctx context.Context, from, to time.Time) ([]model.ActivityCount, error) {
	return s.repo.ActivityCounts(ctx, from, to)
}

func (s *auditService) TopBooksReport(ctx context.Context, from, to time.Time, limit int) ([]model.TopBook, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.repo.TopBooks(ctx, from, to, limit)
}

func (s *auditService) OverdueReport(ctx context.Context) ([]model.OverdueLoanReport, error) {
	return s.repo.OverdueLoans(ctx, time.Now().UTC())
}
