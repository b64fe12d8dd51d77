// Package followup contains the application service that retires automated
// outreach schedules once their estimate no longer needs them.
package followup

import (
	"context"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/followup"
	"go.uber.org/zap"
)

// RetirementService retires follow-up schedules after acceptance.
type RetirementService struct {
	repo   followup.Repository
	logger *zap.Logger
}

// NewRetirementService creates a new retirement service
func NewRetirementService(repo followup.Repository, logger *zap.Logger) *RetirementService {
	return &RetirementService{repo: repo, logger: logger}
}

// Retire marks every pending step of the schedule as skipped and advances
// its step pointer past the end so no further automated step fires.
func (s *RetirementService) Retire(ctx context.Context, scheduleID uuid.UUID) error {
	sched, err := s.repo.FindByID(ctx, scheduleID)
	if err != nil {
		return err
	}

	pending := len(sched.PendingSteps())
	sched.Retire()
	if err := s.repo.Save(ctx, sched); err != nil {
		return err
	}

	s.logger.Info("Follow-up schedule retired",
		zap.String("schedule_id", scheduleID.String()),
		zap.Int("steps_skipped", pending))
	return nil
}
