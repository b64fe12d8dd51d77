package proposal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tierquote/backend/internal/domain/estimate"
	"github.com/tierquote/backend/internal/domain/financing"
	"github.com/tierquote/backend/internal/domain/pricing"
	"github.com/tierquote/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AcceptanceServiceConfig contains configuration for the acceptance service
type AcceptanceServiceConfig struct {
	// DocumentURLExpiry is the lifetime of the signed retrieval URL handed
	// back to the customer.
	DocumentURLExpiry time.Duration
}

// DefaultAcceptanceServiceConfig returns default configuration
func DefaultAcceptanceServiceConfig() AcceptanceServiceConfig {
	return AcceptanceServiceConfig{
		DocumentURLExpiry: 7 * 24 * time.Hour,
	}
}

// AcceptanceService runs the synchronous acceptance critical path: guard
// evaluation, totals computation, the conditional sign write, and best-effort
// document generation. Everything after the response is the fan-out runner's
// job, seeded by the PostSignContext this service assembles.
type AcceptanceService struct {
	estimateRepo estimate.Repository
	planRepo     financing.Repository
	generator    DocumentGenerator
	store        DocumentStore
	settings     CompanySettingsSource
	config       AcceptanceServiceConfig
	logger       *zap.Logger
}

// NewAcceptanceService creates a new acceptance service
func NewAcceptanceService(
	estimateRepo estimate.Repository,
	planRepo financing.Repository,
	generator DocumentGenerator,
	store DocumentStore,
	settings CompanySettingsSource,
	logger *zap.Logger,
) *AcceptanceService {
	return &AcceptanceService{
		estimateRepo: estimateRepo,
		planRepo:     planRepo,
		generator:    generator,
		store:        store,
		settings:     settings,
		config:       DefaultAcceptanceServiceConfig(),
		logger:       logger,
	}
}

// SetConfig sets the service configuration
func (s *AcceptanceService) SetConfig(config AcceptanceServiceConfig) {
	s.config = config
}

// Accept processes one acceptance submission for the proposal addressed by
// token. On success it returns the customer response plus the post-sign
// context the caller hands to the fan-out runner after the response has been
// dispatched. All guard failures come back as domain errors; the only fatal
// backend failure is the conditional sign write itself.
func (s *AcceptanceService) Accept(ctx context.Context, token string, req AcceptProposalRequest, signerIP, sessionID string) (*AcceptProposalResponse, *PostSignContext, error) {
	est, err := s.estimateRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	sub := req.Submission()
	if err := est.EvaluateAcceptance(sub, now); err != nil {
		return nil, nil, err
	}

	// Reconcile add-on selection as a targeted diff so concurrent edits to
	// unrelated fields of the same rows are not clobbered.
	selected := make(map[uuid.UUID]bool, len(sub.SelectedAddonIDs))
	for _, id := range sub.SelectedAddonIDs {
		selected[id] = true
	}
	for i := range est.Items {
		item := &est.Items[i]
		if !item.IsAddon {
			continue
		}
		want := selected[item.ID]
		if item.IsSelected == want {
			continue
		}
		if err := s.estimateRepo.SetLineItemSelected(ctx, item.ID, want); err != nil {
			return nil, nil, err
		}
		item.IsSelected = want
	}

	totals := pricing.ComputeTotals(estimate.PricingInputs(est.Items), sub.SelectedTier, selected, est.TaxRate)

	plan := s.resolvePlan(ctx, sub.FinancingPlanID)
	var planID *uuid.UUID
	if plan != nil {
		planID = &plan.ID
	}

	patch := estimate.SignPatch{
		SignerName:      sub.SignerName,
		SignatureData:   sub.SignatureData,
		SignerIP:        signerIP,
		SignedAt:        now,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.TaxAmount,
		Total:           totals.Total,
		SelectedTier:    sub.SelectedTier,
		FinancingPlanID: planID,
	}
	signed, err := s.estimateRepo.Sign(ctx, est.ID, patch)
	if err != nil {
		s.logger.Error("Acceptance write failed",
			zap.String("estimate_number", est.Number),
			zap.Error(err))
		return nil, nil, err
	}
	if !signed {
		// Lost the race: another submission committed between our guard
		// read and the conditional update.
		return nil, nil, shared.ErrAlreadyAccepted
	}

	est.SignerName = sub.SignerName
	est.SignatureData = sub.SignatureData
	est.SignerIP = signerIP
	est.SignedAt = &now
	est.Status = estimate.StatusWon
	est.SelectedTier = &sub.SelectedTier
	est.FinancingPlanID = planID

	psc := s.buildPostSignContext(est, sub.SelectedTier, totals, plan, signerIP, sessionID, now)

	// Document generation is synchronous so the customer leaves with a
	// usable reference, but its failure never unwinds the acceptance.
	pdf, url := s.generateDocument(ctx, est, totals, plan, psc)
	psc.DocumentPDF = pdf
	psc.DocumentURL = url

	return &AcceptProposalResponse{OK: true, ProposalPDFURL: url}, psc, nil
}

// resolvePlan resolves the chosen financing plan. An identifier that fails
// to resolve, or resolves to a retired plan, means "no financing selected",
// not an error.
func (s *AcceptanceService) resolvePlan(ctx context.Context, id *uuid.UUID) *financing.Plan {
	if id == nil {
		return nil
	}
	plan, err := s.planRepo.FindByID(ctx, *id)
	if err != nil {
		s.logger.Warn("Financing plan did not resolve, accepting without financing",
			zap.String("plan_id", id.String()),
			zap.Error(err))
		return nil
	}
	if !plan.IsActive {
		s.logger.Warn("Financing plan is retired, accepting without financing",
			zap.String("plan_id", id.String()))
		return nil
	}
	return plan
}

func (s *AcceptanceService) buildPostSignContext(est *estimate.Estimate, tier int, totals pricing.Totals, plan *financing.Plan, signerIP, sessionID string, signedAt time.Time) *PostSignContext {
	psc := &PostSignContext{
		EstimateID:     est.ID,
		Number:         est.Number,
		CustomerName:   est.CustomerName,
		CustomerEmail:  est.CustomerEmail,
		AssignedUserID: est.AssignedUserID,
		FollowUpID:     est.FollowUpID,
		SignerName:     est.SignerName,
		SignerIP:       signerIP,
		SignedAt:       signedAt,
		SessionID:      sessionID,
		SelectedTier:   tier,
		TierName:       est.TierName(tier),
		Totals:         totals,
		ExternalJobID:  est.ExternalJobID,
		DocumentName:   fmt.Sprintf("%s-signed.pdf", est.Number),
	}

	if plan != nil {
		psc.FinancingLabel = plan.Label
		psc.MonthlyPayment = monthlyFor(totals.Total, plan)
	}

	if est.ExternalJobID != nil {
		approved := est.ExternalOptionForTier(tier)
		psc.ApprovedOptionID = approved
		exclude := ""
		if approved != nil {
			exclude = *approved
		}
		psc.DeclinedOptionIDs = est.ExternalOptionIDs(exclude)
	}

	return psc
}

// generateDocument renders, uploads, and records the signed document. Any
// failure is logged and swallowed; the acceptance already committed.
func (s *AcceptanceService) generateDocument(ctx context.Context, est *estimate.Estimate, totals pricing.Totals, plan *financing.Plan, psc *PostSignContext) ([]byte, *string) {
	data := DocumentData{
		Number:          est.Number,
		CustomerName:    est.CustomerName,
		CustomerEmail:   est.CustomerEmail,
		CustomerPhone:   est.CustomerPhone,
		CustomerAddress: est.CustomerAddress,
		TierName:        psc.TierName,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.TaxAmount,
		Total:           totals.Total,
		FinancingLabel:  psc.FinancingLabel,
		MonthlyPayment:  psc.MonthlyPayment,
		SignerName:      est.SignerName,
		SignatureData:   est.SignatureData,
		SignedAt:        psc.SignedAt,
	}
	for _, item := range est.Items {
		if item.IsAddon && !item.IsSelected {
			continue
		}
		if !item.IsAddon && item.Tier != psc.SelectedTier {
			continue
		}
		data.Lines = append(data.Lines, DocumentLine{
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			IsAddon:     item.IsAddon,
		})
	}

	if settings, err := s.settings.Settings(ctx); err == nil {
		data.Company = settings
	} else {
		s.logger.Warn("Company settings unavailable for document render",
			zap.String("estimate_number", est.Number),
			zap.Error(err))
	}

	pdf, err := s.generator.RenderSignedProposal(ctx, data)
	if err != nil {
		s.logger.Error("Signed document generation failed",
			zap.String("estimate_number", est.Number),
			zap.Error(err))
		return nil, nil
	}

	key := fmt.Sprintf("proposals/%s/%s.pdf", est.ID, est.Number)
	if err := s.store.Upload(ctx, key, pdf, "application/pdf"); err != nil {
		s.logger.Error("Signed document upload failed",
			zap.String("estimate_number", est.Number),
			zap.String("key", key),
			zap.Error(err))
		return pdf, nil
	}

	url, err := s.store.SignedURL(ctx, key, s.config.DocumentURLExpiry)
	if err != nil {
		s.logger.Error("Signed document URL issue failed",
			zap.String("estimate_number", est.Number),
			zap.String("key", key),
			zap.Error(err))
		return pdf, nil
	}

	if err := s.estimateRepo.SetDocument(ctx, est.ID, key, url); err != nil {
		s.logger.Error("Failed to record signed document reference",
			zap.String("estimate_number", est.Number),
			zap.String("key", key),
			zap.Error(err))
	}

	return pdf, &url
}

func monthlyFor(total decimal.Decimal, plan *financing.Plan) *decimal.Decimal {
	_, monthly, err := pricing.MonthlyPayment(total, plan.PricingPlan())
	if err != nil {
		return nil
	}
	return &monthly
}
