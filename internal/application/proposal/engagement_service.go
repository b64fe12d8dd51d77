package proposal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/engagement"
	"github.com/tierquote/backend/internal/domain/estimate"
	"go.uber.org/zap"
)

// SessionStore tracks live page sessions so the per-proposal dwell time can
// be read cheaply from the dashboard. Backed by Redis in production; losing
// a session record only loses telemetry.
type SessionStore interface {
	Touch(ctx context.Context, estimateID uuid.UUID, sessionID string, duration time.Duration) error
}

// EngagementService records customer interaction with the proposal page.
// Everything here is fire-and-forget: once the token resolves and the event
// type is known, storage failures are logged and swallowed so telemetry can
// never surface an error to the customer.
type EngagementService struct {
	estimateRepo estimate.Repository
	eventRepo    engagement.Repository
	sessions     SessionStore
	logger       *zap.Logger
}

// NewEngagementService creates a new engagement service
func NewEngagementService(
	estimateRepo estimate.Repository,
	eventRepo engagement.Repository,
	sessions SessionStore,
	logger *zap.Logger,
) *EngagementService {
	return &EngagementService{
		estimateRepo: estimateRepo,
		eventRepo:    eventRepo,
		sessions:     sessions,
		logger:       logger,
	}
}

// Record appends one interaction event for the proposal addressed by token.
func (s *EngagementService) Record(ctx context.Context, token string, req RecordEventRequest, clientIP string) error {
	est, err := s.estimateRepo.FindByToken(ctx, token)
	if err != nil {
		return err
	}

	event, err := engagement.NewEvent(est.ID, engagement.EventType(req.Type), req.SessionID, req.Metadata, clientIP)
	if err != nil {
		// Unknown event types from stale or tampered pages are dropped,
		// not surfaced. Only an unresolvable token is an error here.
		s.logger.Warn("Engagement event dropped",
			zap.String("estimate_number", est.Number),
			zap.String("type", req.Type),
			zap.Error(err))
		return nil
	}

	if err := s.eventRepo.Append(ctx, event); err != nil {
		s.logger.Warn("Engagement event dropped",
			zap.String("estimate_number", est.Number),
			zap.String("type", req.Type),
			zap.Error(err))
	}
	return nil
}

// RecordSession handles the duration beacon sent on page hide or unload.
func (s *EngagementService) RecordSession(ctx context.Context, token string, req SessionBeaconRequest, clientIP string) error {
	est, err := s.estimateRepo.FindByToken(ctx, token)
	if err != nil {
		return err
	}

	duration := time.Duration(req.DurationSeconds) * time.Second
	if s.sessions != nil {
		if err := s.sessions.Touch(ctx, est.ID, req.SessionID, duration); err != nil {
			s.logger.Warn("Session touch dropped",
				zap.String("estimate_number", est.Number),
				zap.Error(err))
		}
	}

	event, err := engagement.NewEvent(est.ID, engagement.EventSession, req.SessionID,
		fmt.Sprintf(`{"duration_seconds":%d}`, req.DurationSeconds), clientIP)
	if err != nil {
		return err
	}
	if err := s.eventRepo.Append(ctx, event); err != nil {
		s.logger.Warn("Session event dropped",
			zap.String("estimate_number", est.Number),
			zap.Error(err))
	}
	return nil
}

// Timeline returns the recorded events for an estimate, newest first as
// stored. Dashboard use only.
func (s *EngagementService) Timeline(ctx context.Context, estimateID uuid.UUID) ([]engagement.Event, error) {
	return s.eventRepo.FindByEstimate(ctx, estimateID)
}
