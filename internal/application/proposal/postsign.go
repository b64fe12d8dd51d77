package proposal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tierquote/backend/internal/domain/pricing"
)

// PostSignContext is the in-memory bundle assembled once per committed
// acceptance. It carries every field the fan-out tasks need so no task has
// to re-query the estimate. It has no persisted identity; its lifetime is
// the request plus the deferred tasks it seeds.
type PostSignContext struct {
	EstimateID     uuid.UUID
	Number         string
	CustomerName   string
	CustomerEmail  string
	AssignedUserID *uuid.UUID
	FollowUpID     *uuid.UUID

	SignerName string
	SignerIP   string
	SignedAt   time.Time
	SessionID  string

	SelectedTier int
	TierName     string
	Totals       pricing.Totals

	FinancingLabel string
	MonthlyPayment *decimal.Decimal

	// External field-service linkage. ExternalJobID nil means no sync.
	ExternalJobID     *string
	ApprovedOptionID  *string
	DeclinedOptionIDs []string

	// Signed document, present only when generation succeeded.
	DocumentPDF  []byte
	DocumentName string
	DocumentURL  *string
}

// HasDocument reports whether a signed document was produced.
func (c *PostSignContext) HasDocument() bool {
	return len(c.DocumentPDF) > 0
}
