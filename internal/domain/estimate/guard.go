package estimate

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/pricing"
	"github.com/tierquote/backend/internal/domain/shared"
)

// AcceptanceSubmission is the untrusted payload of a public acceptance
// request, after transport-level binding.
type AcceptanceSubmission struct {
	SignerName       string
	SignatureData    string
	SelectedTier     int
	SelectedAddonIDs []uuid.UUID
	FinancingPlanID  *uuid.UUID
}

const minSignerNameLen = 2

// signature payloads must be embedded images, e.g. "data:image/png;base64,..."
const signatureDataPrefix = "data:image/"

// EvaluateAcceptance validates an inbound acceptance against the current
// state of the estimate. It is a pure read-then-decide step: no mutation
// happens here, and the checks run in a fixed precedence order so a signed
// estimate always reports "already accepted" even when the payload is also
// malformed. Token resolution (the not-found case) happens before this is
// called.
func (e *Estimate) EvaluateAcceptance(sub AcceptanceSubmission, now time.Time) error {
	if e.IsSigned() {
		return shared.ErrAlreadyAccepted
	}
	if e.IsExpired(now) {
		return shared.ErrExpired
	}
	if e.Status.IsTerminalForAcceptance() {
		return shared.ErrUnavailable
	}
	return e.validateSubmission(sub)
}

func (e *Estimate) validateSubmission(sub AcceptanceSubmission) error {
	if len(strings.TrimSpace(sub.SignerName)) < minSignerNameLen {
		return shared.NewDomainError("INVALID_INPUT", "Signer name must be at least 2 characters")
	}
	if !strings.HasPrefix(sub.SignatureData, signatureDataPrefix) {
		return shared.NewDomainError("INVALID_INPUT", "Signature must be an embedded image")
	}

	for _, tier := range pricing.OfferedTiers(PricingInputs(e.Items)) {
		if tier == sub.SelectedTier {
			return nil
		}
	}
	return shared.NewDomainError("INVALID_INPUT", "Selected tier is not offered on this proposal")
}
