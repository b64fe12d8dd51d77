// Package quote backs the internal quote-authoring surface. It computes
// preview numbers through the shared pricing engine so the builder, the
// customer page, and the acceptance path can never disagree.
package quote

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tierquote/backend/internal/domain/estimate"
	"github.com/tierquote/backend/internal/domain/financing"
	"github.com/tierquote/backend/internal/domain/pricing"
	"go.uber.org/zap"
)

// PreviewLineInput is one draft line in a preview request.
type PreviewLineInput struct {
	ID        uuid.UUID       `json:"id"`
	Tier      int             `json:"tier"`
	IsAddon   bool            `json:"is_addon"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// PreviewRequest asks for the numbers a draft selection would produce.
type PreviewRequest struct {
	Items            []PreviewLineInput `json:"items" binding:"required,dive"`
	SelectedTier     int                `json:"selected_tier"`
	SelectedAddonIDs []uuid.UUID        `json:"selected_addon_ids"`
	TaxRate          *decimal.Decimal   `json:"tax_rate"`
	FinancingPlanID  *uuid.UUID         `json:"financing_plan_id"`
}

// PreviewResponse carries the computed figures, including the cost-side
// margin the customer never sees.
type PreviewResponse struct {
	TierSubtotal decimal.Decimal  `json:"tier_subtotal"`
	AddonTotal   decimal.Decimal  `json:"addon_total"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	TaxAmount    *decimal.Decimal `json:"tax_amount"`
	Total        decimal.Decimal  `json:"total"`
	Financed     *decimal.Decimal `json:"financed,omitempty"`
	Monthly      *decimal.Decimal `json:"monthly,omitempty"`
	Cost         decimal.Decimal  `json:"cost"`
	MarginPct    *decimal.Decimal `json:"margin_pct"`
}

// Service computes quote previews for the dashboard.
type Service struct {
	planRepo financing.Repository
	logger   *zap.Logger
}

// NewService creates a new quote service
func NewService(planRepo financing.Repository, logger *zap.Logger) *Service {
	return &Service{planRepo: planRepo, logger: logger}
}

// Preview computes totals, financing, and margin for a draft selection.
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (*PreviewResponse, error) {
	inputs := make([]pricing.LineInput, len(req.Items))
	for i, item := range req.Items {
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		inputs[i] = pricing.LineInput{
			ID:        id,
			Tier:      item.Tier,
			IsAddon:   item.IsAddon,
			LineTotal: item.Quantity.Mul(item.UnitPrice).Round(2),
			UnitCost:  item.UnitCost,
			Quantity:  item.Quantity,
		}
	}

	selected := make(map[uuid.UUID]bool, len(req.SelectedAddonIDs))
	for _, id := range req.SelectedAddonIDs {
		selected[id] = true
	}

	totals := pricing.ComputeTotals(inputs, req.SelectedTier, selected, req.TaxRate)
	cost := pricing.SelectedCost(inputs, req.SelectedTier, selected)

	resp := &PreviewResponse{
		TierSubtotal: totals.TierSubtotal,
		AddonTotal:   totals.AddonTotal,
		Subtotal:     totals.Subtotal,
		TaxAmount:    totals.TaxAmount,
		Total:        totals.Total,
		Cost:         cost,
	}

	if pct, ok := pricing.Margin(totals.Total, cost); ok {
		resp.MarginPct = &pct
	}

	if req.FinancingPlanID != nil {
		plan, err := s.planRepo.FindByID(ctx, *req.FinancingPlanID)
		if err != nil {
			return nil, err
		}
		financed, monthly, err := pricing.MonthlyPayment(totals.Total, plan.PricingPlan())
		if err != nil {
			return nil, err
		}
		resp.Financed = &financed
		resp.Monthly = &monthly
	}

	return resp, nil
}

// PreviewEstimate computes the same figures for a persisted estimate's
// current selection, reusing the stored items as engine input.
func (s *Service) PreviewEstimate(ctx context.Context, est *estimate.Estimate, selectedTier int, selectedAddonIDs []uuid.UUID) *PreviewResponse {
	selected := make(map[uuid.UUID]bool, len(selectedAddonIDs))
	for _, id := range selectedAddonIDs {
		selected[id] = true
	}

	inputs := estimate.PricingInputs(est.Items)
	totals := pricing.ComputeTotals(inputs, selectedTier, selected, est.TaxRate)
	cost := pricing.SelectedCost(inputs, selectedTier, selected)

	resp := &PreviewResponse{
		TierSubtotal: totals.TierSubtotal,
		AddonTotal:   totals.AddonTotal,
		Subtotal:     totals.Subtotal,
		TaxAmount:    totals.TaxAmount,
		Total:        totals.Total,
		Cost:         cost,
	}
	if pct, ok := pricing.Margin(totals.Total, cost); ok {
		resp.MarginPct = &pct
	}
	return resp
}
