// Package pricing is the single source of truth for proposal arithmetic.
// It is pure: no I/O, no request or storage types. The acceptance pipeline,
// the customer-facing proposal page, and the internal quote builder all call
// into this package so their numbers can never drift apart.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tierquote/backend/internal/domain/shared"
)

// LineInput is the projection of a line item the engine needs.
type LineInput struct {
	ID        uuid.UUID
	Tier      int
	IsAddon   bool
	LineTotal decimal.Decimal
	UnitCost  decimal.Decimal
	Quantity  decimal.Decimal
}

// Plan is the projection of a financing plan the engine needs.
type Plan struct {
	FeePct decimal.Decimal // e.g. 0.03 for a 3% dealer fee
	Months int
}

// Totals is the result of a full computation pass.
// TaxAmount is nil when no tax rate is configured; absent tax is a distinct
// state from zero tax and is preserved all the way to the wire.
type Totals struct {
	TierSubtotal decimal.Decimal
	AddonTotal   decimal.Decimal
	Subtotal     decimal.Decimal
	TaxAmount    *decimal.Decimal
	Total        decimal.Decimal
}

// ComputeTotals computes the subtotal, tax, and total for a tier selection.
//
// The tier subtotal sums line totals of non-add-on items in the selected
// tier. The add-on total sums add-on items whose ID is in selectedAddons,
// regardless of group. Items outside the selected tier never contribute.
// All rounding is half-up at the cent.
func ComputeTotals(items []LineInput, selectedTier int, selectedAddons map[uuid.UUID]bool, taxRate *decimal.Decimal) Totals {
	tierSubtotal := decimal.Zero
	addonTotal := decimal.Zero

	for _, item := range items {
		if item.IsAddon {
			if selectedAddons[item.ID] {
				addonTotal = addonTotal.Add(item.LineTotal)
			}
			continue
		}
		if item.Tier == selectedTier {
			tierSubtotal = tierSubtotal.Add(item.LineTotal)
		}
	}

	subtotal := tierSubtotal.Add(addonTotal).Round(2)

	totals := Totals{
		TierSubtotal: tierSubtotal,
		AddonTotal:   addonTotal,
		Subtotal:     subtotal,
		Total:        subtotal,
	}

	if taxRate != nil {
		tax := subtotal.Mul(*taxRate).Round(2)
		totals.TaxAmount = &tax
		totals.Total = subtotal.Add(tax).Round(2)
	}

	return totals
}

// MonthlyPayment computes the financed amount and monthly payment for a plan.
//
// financed = total / (1 - feePct), rounded to the cent; a zero fee yields
// financed == total exactly. monthly = round(financed / months) in whole
// dollars, ordinary rounding. A plan with months <= 0 is invalid input.
func MonthlyPayment(total decimal.Decimal, plan Plan) (financed decimal.Decimal, monthly decimal.Decimal, err error) {
	if plan.Months <= 0 {
		return decimal.Zero, decimal.Zero, shared.NewDomainError("INVALID_FINANCING_PLAN", "Financing plan term must be positive")
	}
	divisor := decimal.NewFromInt(1).Sub(plan.FeePct)
	if divisor.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, shared.NewDomainError("INVALID_FINANCING_PLAN", "Financing plan fee must be below 100%")
	}

	financed = total.Div(divisor).Round(2)
	monthly = financed.Div(decimal.NewFromInt(int64(plan.Months))).Round(0)
	return financed, monthly, nil
}

// SelectedCost sums unit costs of exactly the items that fed the total:
// the selected tier's non-add-on items plus the checked add-ons. Feeding
// Margin with any other cost basis would misstate the margin.
func SelectedCost(items []LineInput, selectedTier int, selectedAddons map[uuid.UUID]bool) decimal.Decimal {
	cost := decimal.Zero
	for _, item := range items {
		if item.IsAddon {
			if selectedAddons[item.ID] {
				cost = cost.Add(item.UnitCost.Mul(quantityOrOne(item)))
			}
			continue
		}
		if item.Tier == selectedTier {
			cost = cost.Add(item.UnitCost.Mul(quantityOrOne(item)))
		}
	}
	return cost
}

// Margin returns (total - cost) / total as a percentage rounded to one
// decimal place. It is undefined for a non-positive total; ok reports
// whether the margin is defined.
func Margin(total, cost decimal.Decimal) (pct decimal.Decimal, ok bool) {
	if !total.IsPositive() {
		return decimal.Zero, false
	}
	pct = total.Sub(cost).Div(total).Mul(decimal.NewFromInt(100)).Round(1)
	return pct, true
}

// OfferedTiers returns the distinct tier numbers present among non-add-on
// items, i.e. the tiers a customer may select.
func OfferedTiers(items []LineInput) []int {
	seen := make(map[int]bool)
	var tiers []int
	for _, item := range items {
		if item.IsAddon || seen[item.Tier] {
			continue
		}
		seen[item.Tier] = true
		tiers = append(tiers, item.Tier)
	}
	return tiers
}

func quantityOrOne(item LineInput) decimal.Decimal {
	if item.Quantity.IsZero() {
		return decimal.NewFromInt(1)
	}
	return item.Quantity
}
