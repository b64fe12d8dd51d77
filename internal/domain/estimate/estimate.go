package estimate

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tierquote/backend/internal/domain/shared"
)

// Status represents the lifecycle state of an estimate
type Status string

const (
	StatusDraft   Status = "DRAFT"
	StatusSent    Status = "SENT"
	StatusViewed  Status = "VIEWED"
	StatusWon     Status = "WON"
	StatusLost    Status = "LOST"
	StatusDormant Status = "DORMANT"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusViewed, StatusWon, StatusLost, StatusDormant:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminalForAcceptance reports whether an estimate in this status can
// never be accepted. WON is handled separately through signed_at.
func (s Status) IsTerminalForAcceptance() bool {
	return s == StatusLost || s == StatusDormant
}

// TierInfo carries the display metadata for one offered tier.
type TierInfo struct {
	Tier    int    `json:"tier"`
	Name    string `json:"name"`
	Tagline string `json:"tagline,omitempty"`
}

// Estimate is the proposal aggregate root. A customer reviews its tiered
// packages on the hosted page addressed by Token and accepts exactly once;
// once SignedAt is set the record is terminal for acceptance.
type Estimate struct {
	shared.BaseAggregateRoot
	Number          string
	Token           string
	Status          Status
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	TaxRate         *decimal.Decimal
	Subtotal        *decimal.Decimal
	TaxAmount       *decimal.Decimal
	Total           *decimal.Decimal
	SelectedTier    *int
	FinancingPlanID *uuid.UUID
	SignerName      string
	SignatureData   string
	SignerIP        string
	SignedAt        *time.Time
	AutoDeclineAt   *time.Time
	SnoozedUntil    *time.Time
	AssignedUserID  *uuid.UUID
	FollowUpID      *uuid.UUID
	ExternalJobID   *string
	TierLabels      []TierInfo
	DocumentKey     *string
	DocumentURL     *string
	Items           []LineItem
}

// NewEstimate creates a new draft estimate with a fresh opaque token.
func NewEstimate(number, customerName string) (*Estimate, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Estimate number cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer name cannot be empty")
	}

	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	return &Estimate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Token:             token,
		Status:            StatusDraft,
		CustomerName:      customerName,
	}, nil
}

// NewToken generates an opaque proposal token. The token is the sole
// authentication for the public page and must never be derivable from the
// estimate's identifier.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", shared.NewDomainError("TOKEN_GENERATION", "Failed to generate proposal token")
	}
	return hex.EncodeToString(buf), nil
}

// IsSigned reports whether the estimate has been accepted.
func (e *Estimate) IsSigned() bool {
	return e.SignedAt != nil
}

// IsExpired reports whether the auto-decline date has passed.
func (e *Estimate) IsExpired(now time.Time) bool {
	return e.AutoDeclineAt != nil && e.AutoDeclineAt.Before(now)
}

// TierName returns the display name configured for a tier, or an empty
// string when the tier has no label row.
func (e *Estimate) TierName(tier int) string {
	for _, info := range e.TierLabels {
		if info.Tier == tier {
			return info.Name
		}
	}
	return ""
}

// AddonItems returns the selectable add-on line items.
func (e *Estimate) AddonItems() []LineItem {
	var addons []LineItem
	for _, item := range e.Items {
		if item.IsAddon {
			addons = append(addons, item)
		}
	}
	return addons
}

// ExternalOptionForTier resolves the external field-service option id for a
// tier from its non-add-on items. The relationship is modeled as an explicit
// optional value here, the single normalization point for the join.
func (e *Estimate) ExternalOptionForTier(tier int) *string {
	for _, item := range e.Items {
		if item.IsAddon || item.Tier != tier {
			continue
		}
		if item.ExternalOptionID != nil && *item.ExternalOptionID != "" {
			return item.ExternalOptionID
		}
	}
	return nil
}

// ExternalOptionIDs returns the deduplicated external option ids across all
// tiers, excluding the given id.
func (e *Estimate) ExternalOptionIDs(exclude string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, item := range e.Items {
		if item.ExternalOptionID == nil || *item.ExternalOptionID == "" {
			continue
		}
		id := *item.ExternalOptionID
		if id == exclude || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// Snooze parks the estimate until the given time. Staff action only.
func (e *Estimate) Snooze(until time.Time) error {
	if e.IsSigned() {
		return shared.ErrAlreadyAccepted
	}
	e.SnoozedUntil = &until
	e.UpdatedAt = time.Now()
	return nil
}

// OverrideStatus applies a manual staff status change. Signed estimates are
// immutable; anything else may be moved freely (staff override is the escape
// hatch for the automated lifecycle).
func (e *Estimate) OverrideStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown estimate status")
	}
	if e.IsSigned() {
		return shared.ErrAlreadyAccepted
	}
	e.Status = status
	e.UpdatedAt = time.Now()
	return nil
}
