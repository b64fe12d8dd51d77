package estimate

import (
	"time"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/shared"
)

// Event types for the estimate aggregate
const (
	EventTypeEstimateSigned = "estimate.signed"
)

// SignedEvent is published when a customer accepts a proposal.
type SignedEvent struct {
	shared.BaseDomainEvent
	EstimateNumber string    `json:"estimate_number"`
	SignerName     string    `json:"signer_name"`
	SelectedTier   int       `json:"selected_tier"`
	Total          string    `json:"total"`
	SignedAt       time.Time `json:"signed_at"`
}

// NewSignedEvent creates a SignedEvent for the given estimate.
func NewSignedEvent(estimateID uuid.UUID, number, signerName string, tier int, total string, signedAt time.Time) *SignedEvent {
	return &SignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEstimateSigned, estimateID, "Estimate"),
		EstimateNumber:  number,
		SignerName:      signerName,
		SelectedTier:    tier,
		Total:           total,
		SignedAt:        signedAt,
	}
}
