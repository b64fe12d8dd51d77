package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tierquote/backend/internal/domain/estimate"
)

// EstimateModel is the GORM model for estimates
type EstimateModel struct {
	AggregateModel
	Number          string `gorm:"size:50;not null;uniqueIndex"`
	Token           string `gorm:"size:64;not null;uniqueIndex"`
	Status          string `gorm:"size:20;not null;index"`
	CustomerName    string `gorm:"size:200;not null"`
	CustomerEmail   string `gorm:"size:200"`
	CustomerPhone   string `gorm:"size:50"`
	CustomerAddress string `gorm:"size:500"`
	TaxRate         *decimal.Decimal `gorm:"type:decimal(8,5)"`
	Subtotal        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TaxAmount       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Total           *decimal.Decimal `gorm:"type:decimal(12,2)"`
	SelectedTier    *int
	FinancingPlanID *uuid.UUID `gorm:"type:uuid"`
	SignerName      string     `gorm:"size:200"`
	SignatureData   string     `gorm:"type:text"`
	SignerIP        string     `gorm:"size:45"`
	SignedAt        *time.Time `gorm:"index"`
	AutoDeclineAt   *time.Time
	SnoozedUntil    *time.Time
	AssignedUserID  *uuid.UUID `gorm:"type:uuid;index"`
	FollowUpID      *uuid.UUID `gorm:"type:uuid"`
	ExternalJobID   *string    `gorm:"size:100"`
	TierLabels      string     `gorm:"type:jsonb;default:'[]'"`
	DocumentKey     *string    `gorm:"size:300"`
	DocumentURL     *string    `gorm:"size:2000"`

	Items []LineItemModel `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for EstimateModel
func (EstimateModel) TableName() string {
	return "estimates"
}

// LineItemModel is the GORM model for estimate line items
type LineItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	EstimateID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tier             int             `gorm:"not null;default:0"`
	IsAddon          bool            `gorm:"not null;default:false"`
	IsSelected       bool            `gorm:"not null;default:false"`
	Name             string          `gorm:"size:300;not null"`
	Description      string          `gorm:"type:text"`
	Quantity         decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ExternalOptionID *string         `gorm:"size:100"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for LineItemModel
func (LineItemModel) TableName() string {
	return "line_items"
}

// ToDomain converts the model to a domain estimate
func (m *EstimateModel) ToDomain() *estimate.Estimate {
	est := &estimate.Estimate{
		Number:          m.Number,
		Token:           m.Token,
		Status:          estimate.Status(m.Status),
		CustomerName:    m.CustomerName,
		CustomerEmail:   m.CustomerEmail,
		CustomerPhone:   m.CustomerPhone,
		CustomerAddress: m.CustomerAddress,
		TaxRate:         m.TaxRate,
		Subtotal:        m.Subtotal,
		TaxAmount:       m.TaxAmount,
		Total:           m.Total,
		SelectedTier:    m.SelectedTier,
		FinancingPlanID: m.FinancingPlanID,
		SignerName:      m.SignerName,
		SignatureData:   m.SignatureData,
		SignerIP:        m.SignerIP,
		SignedAt:        m.SignedAt,
		AutoDeclineAt:   m.AutoDeclineAt,
		SnoozedUntil:    m.SnoozedUntil,
		AssignedUserID:  m.AssignedUserID,
		FollowUpID:      m.FollowUpID,
		ExternalJobID:   m.ExternalJobID,
		DocumentKey:     m.DocumentKey,
		DocumentURL:     m.DocumentURL,
	}
	m.PopulateAggregateRoot(&est.BaseAggregateRoot)

	if m.TierLabels != "" {
		// A corrupt labels column degrades to unlabeled tiers.
		_ = json.Unmarshal([]byte(m.TierLabels), &est.TierLabels)
	}

	est.Items = make([]estimate.LineItem, len(m.Items))
	for i := range m.Items {
		est.Items[i] = *m.Items[i].ToDomain()
	}
	return est
}

// FromDomain populates the model from a domain estimate
func (m *EstimateModel) FromDomain(est *estimate.Estimate) {
	m.FromDomainAggregateRoot(est.BaseAggregateRoot)
	m.Number = est.Number
	m.Token = est.Token
	m.Status = est.Status.String()
	m.CustomerName = est.CustomerName
	m.CustomerEmail = est.CustomerEmail
	m.CustomerPhone = est.CustomerPhone
	m.CustomerAddress = est.CustomerAddress
	m.TaxRate = est.TaxRate
	m.Subtotal = est.Subtotal
	m.TaxAmount = est.TaxAmount
	m.Total = est.Total
	m.SelectedTier = est.SelectedTier
	m.FinancingPlanID = est.FinancingPlanID
	m.SignerName = est.SignerName
	m.SignatureData = est.SignatureData
	m.SignerIP = est.SignerIP
	m.SignedAt = est.SignedAt
	m.AutoDeclineAt = est.AutoDeclineAt
	m.SnoozedUntil = est.SnoozedUntil
	m.AssignedUserID = est.AssignedUserID
	m.FollowUpID = est.FollowUpID
	m.ExternalJobID = est.ExternalJobID
	m.DocumentKey = est.DocumentKey
	m.DocumentURL = est.DocumentURL

	labels, err := json.Marshal(est.TierLabels)
	if err != nil || est.TierLabels == nil {
		labels = []byte("[]")
	}
	m.TierLabels = string(labels)

	m.Items = make([]LineItemModel, len(est.Items))
	for i := range est.Items {
		m.Items[i].FromDomain(&est.Items[i])
	}
}

// ToDomain converts the model to a domain line item
func (m *LineItemModel) ToDomain() *estimate.LineItem {
	return &estimate.LineItem{
		ID:               m.ID,
		EstimateID:       m.EstimateID,
		Tier:             m.Tier,
		IsAddon:          m.IsAddon,
		IsSelected:       m.IsSelected,
		Name:             m.Name,
		Description:      m.Description,
		Quantity:         m.Quantity,
		UnitPrice:        m.UnitPrice,
		UnitCost:         m.UnitCost,
		LineTotal:        m.LineTotal,
		ExternalOptionID: m.ExternalOptionID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain line item
func (m *LineItemModel) FromDomain(item *estimate.LineItem) {
	m.ID = item.ID
	m.EstimateID = item.EstimateID
	m.Tier = item.Tier
	m.IsAddon = item.IsAddon
	m.IsSelected = item.IsSelected
	m.Name = item.Name
	m.Description = item.Description
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.UnitCost = item.UnitCost
	m.LineTotal = item.LineTotal
	m.ExternalOptionID = item.ExternalOptionID
	m.CreatedAt = item.CreatedAt
	m.UpdatedAt = item.UpdatedAt
}
