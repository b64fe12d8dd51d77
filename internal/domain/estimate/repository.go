package estimate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tierquote/backend/internal/domain/shared"
)

// SignPatch is the one-shot state transition applied when an acceptance
// commits: signature fields, computed amounts, selection, and the WON status
// move together or not at all.
type SignPatch struct {
	SignerName      string
	SignatureData   string
	SignerIP        string
	SignedAt        time.Time
	Subtotal        decimal.Decimal
	TaxAmount       *decimal.Decimal
	Total           decimal.Decimal
	SelectedTier    int
	FinancingPlanID *uuid.UUID
}

// Repository defines persistence operations for estimates
type Repository interface {
	// FindByToken resolves the opaque proposal token to its estimate,
	// line items included. Returns shared.ErrNotFound when the token does
	// not resolve.
	FindByToken(ctx context.Context, token string) (*Estimate, error)

	// FindByID loads an estimate with its line items.
	FindByID(ctx context.Context, id uuid.UUID) (*Estimate, error)

	// FindAll lists estimates for the dashboard.
	FindAll(ctx context.Context, filter shared.Filter) ([]Estimate, int64, error)

	// Save creates or updates an estimate and its line items. It writes
	// the full row from the in-memory copy, so lifecycle transitions on a
	// possibly stale load go through the conditional updates below
	// instead.
	Save(ctx context.Context, est *Estimate) error

	// SetLineItemSelected toggles exactly one add-on's selection flag.
	// Targeted by item id so concurrent catalog edits to other fields of
	// the same row are not clobbered.
	SetLineItemSelected(ctx context.Context, itemID uuid.UUID, selected bool) error

	// MarkViewed moves a sent, unsigned estimate to VIEWED with a
	// conditional update. Returns false when the row is no longer in that
	// state, which the read path treats as nothing to do.
	MarkViewed(ctx context.Context, estimateID uuid.UUID) (bool, error)

	// SetSnooze parks an unsigned estimate until the given time.
	// Conditional on signed_at being unset so a stale staff view cannot
	// touch a committed acceptance.
	SetSnooze(ctx context.Context, estimateID uuid.UUID, until time.Time) (bool, error)

	// SetStatus applies a staff status override, guarded the same way as
	// SetSnooze.
	SetStatus(ctx context.Context, estimateID uuid.UUID, status Status) (bool, error)

	// Sign applies the patch with a conditional update guarded on the
	// estimate id and signed_at being unset. It returns false when the
	// row was already signed, which is how the loser of a concurrent
	// acceptance race finds out.
	Sign(ctx context.Context, estimateID uuid.UUID, patch SignPatch) (bool, error)

	// SetDocument stores the signed document reference after upload.
	SetDocument(ctx context.Context, estimateID uuid.UUID, key, url string) error
}
