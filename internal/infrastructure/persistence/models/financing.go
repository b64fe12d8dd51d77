package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tierquote/backend/internal/domain/financing"
)

// FinancingPlanModel is the GORM model for financing plans
type FinancingPlanModel struct {
	ID       uuid.UUID       `gorm:"type:uuid;primary_key"`
	Label    string          `gorm:"size:200;not null"`
	FeePct   decimal.Decimal `gorm:"type:decimal(6,4);not null"`
	Months   int             `gorm:"not null"`
	// No default tag here. GORM omits zero-valued fields that carry one,
	// which would persist a retired plan as active.
	IsActive bool `gorm:"not null;index"`
}

// TableName returns the table name for FinancingPlanModel
func (FinancingPlanModel) TableName() string {
	return "financing_plans"
}

// ToDomain converts the model to a domain plan
func (m *FinancingPlanModel) ToDomain() *financing.Plan {
	return &financing.Plan{
		ID:       m.ID,
		Label:    m.Label,
		FeePct:   m.FeePct,
		Months:   m.Months,
		IsActive: m.IsActive,
	}
}

// FromDomain populates the model from a domain plan
func (m *FinancingPlanModel) FromDomain(p *financing.Plan) {
	m.ID = p.ID
	m.Label = p.Label
	m.FeePct = p.FeePct
	m.Months = p.Months
	m.IsActive = p.IsActive
}
