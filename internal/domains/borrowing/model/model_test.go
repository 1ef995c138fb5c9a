package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoanEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	returned := now.Add(-time.Hour)

	tests := []struct {
		name string
		loan Loan
		want string
	}{
		{
			name: "active before due date",
			loan: Loan{Status: LoanStatusActive, DueAt: now.Add(24 * time.Hour)},
			want: LoanStatusActive,
		},
		{
			name: "overdue after due date even if stored status is stale",
			loan: Loan{Status: LoanStatusActive, DueAt: now.Add(-time.Minute)},
			want: LoanStatusOverdue,
		},
		{
			name: "returned wins over overdue",
			loan: Loan{Status: LoanStatusReturned, DueAt: now.Add(-48 * time.Hour), ReturnedAt: &returned},
			want: LoanStatusReturned,
		},
		{
			name: "due exactly now is not overdue",
			loan: Loan{Status: LoanStatusActive, DueAt: now},
			want: LoanStatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loan.EffectiveStatus(now))
		})
	}
}

func TestLoanDaysOverdue(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	loan := Loan{DueAt: due}

	assert.Equal(t, 0, loan.DaysOverdue(due))
	assert.Equal(t, 0, loan.DaysOverdue(due.Add(-time.Hour)))
	// Partial days round up
	assert.Equal(t, 1, loan.DaysOverdue(due.Add(time.Hour)))
	assert.Equal(t, 1, loan.DaysOverdue(due.Add(24*time.Hour)))
	assert.Equal(t, 2, loan.DaysOverdue(due.Add(25*time.Hour)))
	assert.Equal(t, 7, loan.DaysOverdue(due.Add(7*24*time.Hour)))
}

func TestBookRequestIsActive(t *testing.T) {
	now := time.Now().UTC()

	pending := BookRequest{Status: RequestStatusPending}
	assert.True(t, pending.IsActive())

	approved := BookRequest{Status: RequestStatusApproved}
	assert.True(t, approved.IsActive(), "approved but not borrowed still blocks a new request")

	fulfilled := BookRequest{Status: RequestStatusApproved, FulfilledAt: &now}
	assert.False(t, fulfilled.IsActive(), "borrowing the approved request frees the slot")

	rejected := BookRequest{Status: RequestStatusRejected}
	assert.False(t, rejected.IsActive())
}
