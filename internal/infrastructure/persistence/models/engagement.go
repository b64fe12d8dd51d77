package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/engagement"
)

// EngagementEventModel is the GORM model for engagement events
type EngagementEventModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	EstimateID uuid.UUID `gorm:"type:uuid;not null;index"`
	Type       string    `gorm:"size:40;not null"`
	SessionID  string    `gorm:"size:64;index"`
	Metadata   string    `gorm:"type:jsonb;default:'{}'"`
	ClientIP   string    `gorm:"size:45"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for EngagementEventModel
func (EngagementEventModel) TableName() string {
	return "engagement_events"
}

// ToDomain converts the model to a domain event
func (m *EngagementEventModel) ToDomain() *engagement.Event {
	return &engagement.Event{
		ID:         m.ID,
		EstimateID: m.EstimateID,
		Type:       engagement.EventType(m.Type),
		SessionID:  m.SessionID,
		Metadata:   m.Metadata,
		ClientIP:   m.ClientIP,
		CreatedAt:  m.CreatedAt,
	}
}

// FromDomain populates the model from a domain event
func (m *EngagementEventModel) FromDomain(e *engagement.Event) {
	m.ID = e.ID
	m.EstimateID = e.EstimateID
	m.Type = string(e.Type)
	m.SessionID = e.SessionID
	m.Metadata = e.Metadata
	m.ClientIP = e.ClientIP
	m.CreatedAt = e.CreatedAt
	if m.Metadata == "" {
		m.Metadata = "{}"
	}
}
