package main

import (
	"github.com/hibiken/asynq"

	borrowingJob "library-backend/internal/domains/borrowing/job"
	"library-backend/internal/shared"
	"library-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	overdueSweep *borrowingJob.OverdueSweepHandler
	dueReminder  *borrowingJob.DueReminderHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		overdueSweep: borrowingJob.NewOverdueSweepHandler(c.BorrowingRepo),
		dueReminder:  borrowingJob.NewDueReminderHandler(c.BorrowingRepo),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeOverdueSweep, h.overdueSweep.ProcessTask)
	mux.HandleFunc(shared.TypeDueReminder, h.dueReminder.ProcessTask)
}
