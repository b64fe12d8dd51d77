package proposal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tierquote/backend/internal/domain/estimate"
	"github.com/tierquote/backend/internal/domain/financing"
	"github.com/tierquote/backend/internal/domain/pricing"
)

// AcceptProposalRequest is the public acceptance payload.
type AcceptProposalRequest struct {
	SignerName       string      `json:"signer_name" binding:"required"`
	SignatureData    string      `json:"signature_data" binding:"required,datauri_image"`
	SelectedTier     int         `json:"selected_tier" binding:"min=0"`
	SelectedAddonIDs []uuid.UUID `json:"selected_addon_ids"`
	FinancingPlanID  *uuid.UUID  `json:"financing_plan_id"`
}

// AcceptProposalResponse acknowledges a committed acceptance. ProposalPDFURL
// is null when document generation failed; the acceptance itself still stands.
type AcceptProposalResponse struct {
	OK             bool    `json:"ok"`
	ProposalPDFURL *string `json:"proposal_pdf_url"`
}

// RecordEventRequest is one telemetry event from the proposal page.
type RecordEventRequest struct {
	Type      string `json:"type" binding:"required"`
	SessionID string `json:"session_id"`
	Metadata  string `json:"metadata"`
}

// SessionBeaconRequest is the duration beacon sent on page hide or unload.
type SessionBeaconRequest struct {
	SessionID       string `json:"session_id" binding:"required"`
	DurationSeconds int    `json:"duration_seconds" binding:"min=0"`
}

// LineItemView is one line item on the customer-facing page.
type LineItemView struct {
	ID          uuid.UUID       `json:"id"`
	Tier        int             `json:"tier"`
	IsAddon     bool            `json:"is_addon"`
	IsSelected  bool            `json:"is_selected"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// TierView is one offered tier with its items and precomputed totals.
type TierView struct {
	Tier      int              `json:"tier"`
	Name      string           `json:"name"`
	Tagline   string           `json:"tagline,omitempty"`
	Items     []LineItemView   `json:"items"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	TaxAmount *decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal  `json:"total"`
}

// FinancingPlanView is one selectable financing option with the monthly
// payment precomputed against a tier total.
type FinancingPlanView struct {
	ID     uuid.UUID       `json:"id"`
	Label  string          `json:"label"`
	FeePct decimal.Decimal `json:"fee_pct"`
	Months int             `json:"months"`
}

// ProposalView is the customer-facing projection of an estimate. It never
// exposes internal identifiers beyond what the page needs, and never cost
// or margin figures.
type ProposalView struct {
	Number          string              `json:"number"`
	CustomerName    string              `json:"customer_name"`
	TaxRate         *decimal.Decimal    `json:"tax_rate"`
	Tiers           []TierView          `json:"tiers"`
	Addons          []LineItemView      `json:"addons"`
	FinancingPlans  []FinancingPlanView `json:"financing_plans"`
	IsSigned        bool                `json:"is_signed"`
	SignedAt        *time.Time          `json:"signed_at,omitempty"`
	SignerName      string              `json:"signer_name,omitempty"`
	SelectedTier    *int                `json:"selected_tier,omitempty"`
	Total           *decimal.Decimal    `json:"total,omitempty"`
	ProposalPDFURL  *string             `json:"proposal_pdf_url,omitempty"`
	ExpiresAt       *time.Time          `json:"expires_at,omitempty"`
	CompanyName     string              `json:"company_name,omitempty"`
	CompanyPhone    string              `json:"company_phone,omitempty"`
	CompanyLogoURL  string              `json:"company_logo_url,omitempty"`
	ProposalTerms   string              `json:"proposal_terms,omitempty"`
}

// Submission converts the request into the domain submission value.
func (r AcceptProposalRequest) Submission() estimate.AcceptanceSubmission {
	return estimate.AcceptanceSubmission{
		SignerName:       r.SignerName,
		SignatureData:    r.SignatureData,
		SelectedTier:     r.SelectedTier,
		SelectedAddonIDs: r.SelectedAddonIDs,
		FinancingPlanID:  r.FinancingPlanID,
	}
}

// ToLineItemView converts a domain line item.
func ToLineItemView(item estimate.LineItem) LineItemView {
	return LineItemView{
		ID:          item.ID,
		Tier:        item.Tier,
		IsAddon:     item.IsAddon,
		IsSelected:  item.IsSelected,
		Name:        item.Name,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		LineTotal:   item.LineTotal,
	}
}

// ToProposalView builds the customer-facing projection. Per-tier totals are
// computed through the shared engine with no add-ons selected so the page and
// the acceptance path can never disagree on base pricing.
func ToProposalView(est *estimate.Estimate, plans []financing.Plan) ProposalView {
	inputs := estimate.PricingInputs(est.Items)

	view := ProposalView{
		Number:       est.Number,
		CustomerName: est.CustomerName,
		TaxRate:      est.TaxRate,
		IsSigned:     est.IsSigned(),
		SignedAt:     est.SignedAt,
		SelectedTier: est.SelectedTier,
		ExpiresAt:    est.AutoDeclineAt,
	}
	if est.IsSigned() {
		view.SignerName = est.SignerName
		view.Total = est.Total
		view.ProposalPDFURL = est.DocumentURL
	}

	for _, tier := range pricing.OfferedTiers(inputs) {
		tv := TierView{
			Tier: tier,
			Name: est.TierName(tier),
		}
		for _, info := range est.TierLabels {
			if info.Tier == tier {
				tv.Tagline = info.Tagline
			}
		}
		for _, item := range est.Items {
			if !item.IsAddon && item.Tier == tier {
				tv.Items = append(tv.Items, ToLineItemView(item))
			}
		}
		totals := pricing.ComputeTotals(inputs, tier, nil, est.TaxRate)
		tv.Subtotal = totals.Subtotal
		tv.TaxAmount = totals.TaxAmount
		tv.Total = totals.Total
		view.Tiers = append(view.Tiers, tv)
	}

	for _, item := range est.AddonItems() {
		view.Addons = append(view.Addons, ToLineItemView(item))
	}

	for _, plan := range plans {
		view.FinancingPlans = append(view.FinancingPlans, FinancingPlanView{
			ID:     plan.ID,
			Label:  plan.Label,
			FeePct: plan.FeePct,
			Months: plan.Months,
		})
	}

	return view
}
