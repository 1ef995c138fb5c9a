package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"library-backend/internal/shared"
	"library-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddress string) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

// RegisterLoanJobs registers the recurring loan maintenance jobs
func (s *Scheduler) RegisterLoanJobs() error {
	if err := s.registerOverdueSweepJob(); err != nil {
		return err
	}
	if err := s.registerDueReminderJob(); err != nil {
		return err
	}
	return nil
}

// ================================================
// JOB 1: Overdue Sweep (Daily at 1 AM)
// ================================================
func (s *Scheduler) registerOverdueSweepJob() error {
	payload, err := json.Marshal(shared.OverdueSweepPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeOverdueSweep, payload)

	_, err = s.scheduler.Register(
		"0 1 * * *", // Daily at 1 AM, right after the library day closes
		task,
		asynq.Queue(shared.QueueLoans),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register OverdueSweep job", err)
		return err
	}

	logger.Info("Registered OverdueSweep: daily at 1 AM", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 2: Due Reminder (Daily at 8 AM)
// ================================================
func (s *Scheduler) registerDueReminderJob() error {
	payload, err := json.Marshal(shared.DueReminderPayload{WithinDays: 3})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeDueReminder, payload)

	_, err = s.scheduler.Register(
		"0 8 * * *", // Daily at 8 AM so reminders land in the morning
		task,
		asynq.Queue(shared.QueueLoans),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register DueReminder job", err)
		return err
	}

	logger.Info("Registered DueReminder: daily at 8 AM", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
