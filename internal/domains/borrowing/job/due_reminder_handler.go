package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"library-backend/internal/domains/borrowing/repository"
	"library-backend/internal/shared"
	"library-backend/pkg/logger"
)

// ================================================
// DUE REMINDER JOB HANDLER
// ================================================

// DueReminderHandler surfaces loans coming due within the configured
// window. There is no outbound mail channel, so the reminder is a
// structured log line per loan that operators can route from there.
type DueReminderHandler struct {
	repo repository.RepositoryInterface
}

// NewDueReminderHandler creates the reminder handler
func NewDueReminderHandler(repo repository.RepositoryInterface) *DueReminderHandler {
	return &DueReminderHandler{repo: repo}
}

// ProcessTask lists loans due inside the window and logs each one
func (h *DueReminderHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.DueReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logger.Error("Failed to unmarshal due reminder payload, using default window", err)
	}
	withinDays := payload.WithinDays
	if withinDays <= 0 {
		withinDays = 3
	}

	now := time.Now().UTC()
	loans, err := h.repo.ListDueSoon(ctx, now, now.AddDate(0, 0, withinDays))
	if err != nil {
		return fmt.Errorf("due reminder: %w", err)
	}

	for _, loan := range loans {
		logger.Info("Loan due soon", map[string]interface{}{
			"loan_id":    loan.ID.String(),
			"user_email": loan.UserEmail,
			"book_title": loan.BookTitle,
			"due_at":     loan.DueAt.Format(time.RFC3339),
		})
	}

	logger.Info("Completed due reminder run", map[string]interface{}{
		"within_days": withinDays,
		"loans_due":   len(loans),
	})

	return nil
}
