package shared

// Asynq task types
const (
	TypeOverdueSweep = "loan:overdue_sweep"
	TypeDueReminder  = "loan:due_reminder"
)

// Asynq queue names
const (
	QueueLoans = "loans"
)

// OverdueSweepPayload is the (empty) payload for the nightly status sweep
type OverdueSweepPayload struct{}

// DueReminderPayload carries how far ahead the reminder looks
type DueReminderPayload struct {
	WithinDays int `json:"within_days"`
}
