// Package followup models the automated outreach schedule an estimate may be
// enrolled in. Acceptance retires any remaining steps so no further automated
// message fires after a customer has signed.
package followup

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/shared"
)

// StepStatus represents the state of a single scheduled step
type StepStatus string

const (
	StepPending StepStatus = "PENDING"
	StepSent    StepStatus = "SENT"
	StepSkipped StepStatus = "SKIPPED"
)

// Step is one scheduled outreach touch.
type Step struct {
	ID         uuid.UUID
	ScheduleID uuid.UUID
	StepNumber int
	SendAt     time.Time
	Status     StepStatus
	SentAt     *time.Time
}

// Schedule is the follow-up aggregate for one estimate.
type Schedule struct {
	shared.BaseAggregateRoot
	EstimateID  uuid.UUID
	CurrentStep int
	Steps       []Step
}

// NewSchedule creates a schedule with pending steps at the given offsets.
func NewSchedule(estimateID uuid.UUID, sendTimes []time.Time) *Schedule {
	sched := &Schedule{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EstimateID:        estimateID,
	}
	for i, at := range sendTimes {
		sched.Steps = append(sched.Steps, Step{
			ID:         uuid.New(),
			ScheduleID: sched.ID,
			StepNumber: i + 1,
			SendAt:     at,
			Status:     StepPending,
		})
	}
	return sched
}

// Retire marks every still-pending step as skipped and advances the step
// pointer past the end so no further automated step will fire. Steps already
// sent keep their history.
func (s *Schedule) Retire() {
	for i := range s.Steps {
		if s.Steps[i].Status == StepPending {
			s.Steps[i].Status = StepSkipped
		}
	}
	s.CurrentStep = len(s.Steps)
	s.UpdatedAt = time.Now()
}

// PendingSteps returns the steps that have not been sent or skipped.
func (s *Schedule) PendingSteps() []Step {
	var pending []Step
	for _, step := range s.Steps {
		if step.Status == StepPending {
			pending = append(pending, step)
		}
	}
	return pending
}

// Repository defines persistence for follow-up schedules
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	Save(ctx context.Context, sched *Schedule) error
}
