package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/notification"
)

// NotificationModel is the GORM model for internal notifications
type NotificationModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	EstimateID uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind       string    `gorm:"size:40;not null"`
	Title      string    `gorm:"size:300;not null"`
	Body       string    `gorm:"type:text"`
	ReadAt     *time.Time
	CreatedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for NotificationModel
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the model to a domain notification
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		ID:         m.ID,
		UserID:     m.UserID,
		EstimateID: m.EstimateID,
		Kind:       notification.Kind(m.Kind),
		Title:      m.Title,
		Body:       m.Body,
		ReadAt:     m.ReadAt,
		CreatedAt:  m.CreatedAt,
	}
}

// FromDomain populates the model from a domain notification
func (m *NotificationModel) FromDomain(n *notification.Notification) {
	m.ID = n.ID
	m.UserID = n.UserID
	m.EstimateID = n.EstimateID
	m.Kind = string(n.Kind)
	m.Title = n.Title
	m.Body = n.Body
	m.ReadAt = n.ReadAt
	m.CreatedAt = n.CreatedAt
}
