package estimate

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tierquote/backend/internal/domain/pricing"
	"github.com/tierquote/backend/internal/domain/shared"
)

// LineItem belongs to exactly one estimate. Non-add-on items form a tier's
// package; add-ons are toggled independently by the customer. Line items are
// never deleted during acceptance, only their IsSelected flag moves.
type LineItem struct {
	ID               uuid.UUID
	EstimateID       uuid.UUID
	Tier             int
	IsAddon          bool
	IsSelected       bool
	Name             string
	Description      string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	UnitCost         decimal.Decimal
	LineTotal        decimal.Decimal
	ExternalOptionID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewLineItem creates a line item and computes its line total.
func NewLineItem(estimateID uuid.UUID, tier int, name string, quantity, unitPrice decimal.Decimal) (*LineItem, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "Line item name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &LineItem{
		ID:         uuid.New(),
		EstimateID: estimateID,
		Tier:       tier,
		Name:       name,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		LineTotal:  quantity.Mul(unitPrice).Round(2),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// PricingInput converts the item into the engine's projection.
func (i *LineItem) PricingInput() pricing.LineInput {
	return pricing.LineInput{
		ID:        i.ID,
		Tier:      i.Tier,
		IsAddon:   i.IsAddon,
		LineTotal: i.LineTotal,
		UnitCost:  i.UnitCost,
		Quantity:  i.Quantity,
	}
}

// PricingInputs converts a slice of items into engine projections.
func PricingInputs(items []LineItem) []pricing.LineInput {
	inputs := make([]pricing.LineInput, len(items))
	for idx := range items {
		inputs[idx] = items[idx].PricingInput()
	}
	return inputs
}
