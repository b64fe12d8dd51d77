package proposal

import (
	"context"
	"time"

	"github.com/tierquote/backend/internal/domain/estimate"
	"github.com/tierquote/backend/internal/domain/financing"
	"github.com/tierquote/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ViewService serves the customer-facing proposal projection. It shares the
// token-resolution and expiry discipline of the acceptance path, but a signed
// proposal stays viewable so the customer can revisit their confirmation.
type ViewService struct {
	estimateRepo estimate.Repository
	planRepo     financing.Repository
	settings     CompanySettingsSource
	logger       *zap.Logger
}

// NewViewService creates a new view service
func NewViewService(
	estimateRepo estimate.Repository,
	planRepo financing.Repository,
	settings CompanySettingsSource,
	logger *zap.Logger,
) *ViewService {
	return &ViewService{
		estimateRepo: estimateRepo,
		planRepo:     planRepo,
		settings:     settings,
		logger:       logger,
	}
}

// GetByToken resolves a proposal token to its customer view.
func (s *ViewService) GetByToken(ctx context.Context, token string) (*ProposalView, error) {
	est, err := s.estimateRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if !est.IsSigned() {
		if est.IsExpired(time.Now()) {
			return nil, shared.ErrExpired
		}
		if est.Status.IsTerminalForAcceptance() {
			return nil, shared.ErrUnavailable
		}
	}

	plans, err := s.planRepo.FindActive(ctx)
	if err != nil {
		s.logger.Warn("Financing plans unavailable for proposal view",
			zap.String("estimate_number", est.Number),
			zap.Error(err))
		plans = nil
	}

	view := ToProposalView(est, plans)

	if settings, err := s.settings.Settings(ctx); err == nil {
		view.CompanyName = settings.Name
		view.CompanyPhone = settings.Phone
		view.CompanyLogoURL = settings.LogoURL
		view.ProposalTerms = settings.ProposalTerms
	}

	// First open moves a sent estimate to viewed. Best effort; the page
	// renders either way. The update is conditional on the row still
	// being sent and unsigned, so a stale read here can never clobber an
	// acceptance that committed after it.
	if est.Status == estimate.StatusSent {
		if _, err := s.estimateRepo.MarkViewed(ctx, est.ID); err != nil {
			s.logger.Warn("Failed to mark estimate viewed",
				zap.String("estimate_number", est.Number),
				zap.Error(err))
		}
	}

	return &view, nil
}
