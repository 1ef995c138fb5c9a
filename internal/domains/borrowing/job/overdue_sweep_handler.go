package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"library-backend/internal/domains/borrowing/repository"
	"library-backend/pkg/logger"
)

// ================================================
// OVERDUE SWEEP JOB HANDLER
// ================================================

// OverdueSweepHandler persists the derived overdue status for every
// active loan past its due date. Reads between sweeps already see the
// right status through the pure derivation; this keeps the stored
// column and the reports honest.
type OverdueSweepHandler struct {
	repo repository.RepositoryInterface
}

// NewOverdueSweepHandler creates the sweep handler
func NewOverdueSweepHandler(repo repository.RepositoryInterface) *OverdueSweepHandler {
	return &OverdueSweepHandler{repo: repo}
}

// ProcessTask runs one sweep. The payload is empty; the cutoff is now.
func (h *OverdueSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	now := time.Now().UTC()

	marked, err := h.repo.MarkOverdueLoans(ctx, now)
	if err != nil {
		// Returning the error lets asynq retry the whole sweep; the
		// UPDATE is idempotent so retries are safe.
		return fmt.Errorf("overdue sweep: %w", err)
	}

	logger.Info("Completed overdue sweep", map[string]interface{}{
		"marked_overdue": marked,
	})

	return nil
}
