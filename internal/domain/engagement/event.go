// Package engagement records customer interaction with the hosted proposal
// page. Recording is best-effort everywhere it is called.
package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/shared"
)

// EventType enumerates the interaction events the proposal page reports
type EventType string

const (
	EventPageView       EventType = "page_view"
	EventOptionHover    EventType = "option_hover"
	EventAddonToggle    EventType = "addon_toggle"
	EventFinancingPick  EventType = "financing_select"
	EventSignatureStart EventType = "signature_start"
	EventSigned         EventType = "signed"
	EventSession        EventType = "session"
)

// IsValid checks if the event type is known
func (t EventType) IsValid() bool {
	switch t {
	case EventPageView, EventOptionHover, EventAddonToggle, EventFinancingPick, EventSignatureStart, EventSigned, EventSession:
		return true
	}
	return false
}

// Event is one recorded interaction.
type Event struct {
	ID         uuid.UUID
	EstimateID uuid.UUID
	Type       EventType
	SessionID  string
	Metadata   string
	ClientIP   string
	CreatedAt  time.Time
}

// NewEvent creates an engagement event.
func NewEvent(estimateID uuid.UUID, eventType EventType, sessionID, metadata, clientIP string) (*Event, error) {
	if !eventType.IsValid() {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", "Unknown engagement event type")
	}
	return &Event{
		ID:         uuid.New(),
		EstimateID: estimateID,
		Type:       eventType,
		SessionID:  sessionID,
		Metadata:   metadata,
		ClientIP:   clientIP,
		CreatedAt:  time.Now(),
	}, nil
}

// Repository defines append-oriented persistence for engagement events
type Repository interface {
	Append(ctx context.Context, event *Event) error
	FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]Event, error)
}
