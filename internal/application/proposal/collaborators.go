package proposal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// FieldServiceClient defines the operations consumed against the external
// field-service management system. Implemented by the infrastructure layer;
// all calls are made from the post-acceptance fan-out only.
type FieldServiceClient interface {
	// ApproveOption approves an option by its external id. The external
	// system may create a job as a side effect and return its identifier.
	ApproveOption(ctx context.Context, jobID, optionID string) (createdJobID *string, err error)

	// DeclineOptions declines a set of option ids under a job.
	DeclineOptions(ctx context.Context, jobID string, optionIDs []string) error

	// UploadAttachment uploads a named binary attachment to an option.
	UploadAttachment(ctx context.Context, jobID, optionID, fileName string, content []byte) error

	// AddNote appends a free-text note to an option.
	AddNote(ctx context.Context, jobID, optionID, note string) error
}

// DocumentStore persists generated proposal documents and issues retrieval
// URLs for them.
type DocumentStore interface {
	// Upload stores a binary object at the given key.
	Upload(ctx context.Context, key string, content []byte, contentType string) error

	// SignedURL issues a time-limited retrieval URL for a stored object.
	SignedURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
}

// DocumentGenerator renders the signed proposal document.
type DocumentGenerator interface {
	RenderSignedProposal(ctx context.Context, data DocumentData) ([]byte, error)
}

// EmailMessage is one outbound email, optionally with a binary attachment.
type EmailMessage struct {
	To             string
	Subject        string
	HTMLBody       string
	AttachmentName string
	Attachment     []byte
}

// EmailSender delivers transactional email.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// CompanySettings carries the company identity and legal terms rendered into
// generated documents and confirmation emails.
type CompanySettings struct {
	Name          string
	Phone         string
	Email         string
	Address       string
	LicenseNumber string
	LogoURL       string
	ProposalTerms string
}

// CompanySettingsSource is a read-only lookup of company settings.
type CompanySettingsSource interface {
	Settings(ctx context.Context) (CompanySettings, error)
}

// DocumentLine is one rendered line of the signed document.
type DocumentLine struct {
	Name        string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	IsAddon     bool
}

// DocumentData is everything the generator needs to render the final signed
// document. It is assembled from already-computed values; the generator never
// reads storage.
type DocumentData struct {
	Number          string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	TierName        string
	Lines           []DocumentLine
	Subtotal        decimal.Decimal
	TaxAmount       *decimal.Decimal
	Total           decimal.Decimal
	FinancingLabel  string
	MonthlyPayment  *decimal.Decimal
	SignerName      string
	SignatureData   string
	SignedAt        time.Time
	Company         CompanySettings
}
