// Package notification holds internal staff notification records, one row
// per recipient.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/shared"
)

// Kind enumerates internal notification kinds
type Kind string

const (
	KindProposalAccepted Kind = "proposal_accepted"
)

// Notification is one internal notification addressed to one staff user.
type Notification struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	EstimateID uuid.UUID
	Kind       Kind
	Title      string
	Body       string
	ReadAt     *time.Time
	CreatedAt  time.Time
}

// NewNotification creates an unread notification.
func NewNotification(userID, estimateID uuid.UUID, kind Kind, title, body string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Notification recipient cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
	}
	return &Notification{
		ID:         uuid.New(),
		UserID:     userID,
		EstimateID: estimateID,
		Kind:       kind,
		Title:      title,
		Body:       body,
		CreatedAt:  time.Now(),
	}, nil
}

// Repository defines persistence for internal notifications
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Notification, int64, error)
}
