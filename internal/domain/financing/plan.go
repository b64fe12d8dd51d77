// Package financing holds the immutable financing-plan reference data
// offered on proposals. Plans are read-only during acceptance.
package financing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tierquote/backend/internal/domain/pricing"
	"github.com/tierquote/backend/internal/domain/shared"
)

// Plan is a financing option a customer may select at acceptance.
type Plan struct {
	ID       uuid.UUID
	Label    string
	FeePct   decimal.Decimal
	Months   int
	IsActive bool
}

// NewPlan creates a financing plan. A non-positive term can never be
// persisted as selectable.
func NewPlan(label string, feePct decimal.Decimal, months int) (*Plan, error) {
	if label == "" {
		return nil, shared.NewDomainError("INVALID_PLAN", "Financing plan label cannot be empty")
	}
	if months <= 0 {
		return nil, shared.NewDomainError("INVALID_PLAN", "Financing plan term must be positive")
	}
	if feePct.IsNegative() || feePct.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_PLAN", "Financing plan fee must be in [0, 1)")
	}
	return &Plan{
		ID:       uuid.New(),
		Label:    label,
		FeePct:   feePct,
		Months:   months,
		IsActive: true,
	}, nil
}

// PricingPlan converts the plan into the engine's projection.
func (p *Plan) PricingPlan() pricing.Plan {
	return pricing.Plan{FeePct: p.FeePct, Months: p.Months}
}

// Repository defines read access to financing plans
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	FindActive(ctx context.Context) ([]Plan, error)
}
