// Package estimate backs the internal dashboard's read and override surface
// for the proposal pipeline.
package estimate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tierquote/backend/internal/domain/estimate"
	"github.com/tierquote/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ListQuery filters the dashboard estimate list.
type ListQuery struct {
	Page           int
	PageSize       int
	OrderBy        string
	OrderDir       string
	Search         string
	Status         string
	AssignedUserID *uuid.UUID
}

// Summary is one row in the dashboard list.
type Summary struct {
	ID            uuid.UUID        `json:"id"`
	Number        string           `json:"number"`
	Status        string           `json:"status"`
	CustomerName  string           `json:"customer_name"`
	Total         *decimal.Decimal `json:"total"`
	SelectedTier  *int             `json:"selected_tier"`
	SignedAt      *time.Time       `json:"signed_at"`
	AutoDeclineAt *time.Time       `json:"auto_decline_at"`
	SnoozedUntil  *time.Time       `json:"snoozed_until"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// LineItemDetail is one line on the staff detail view, cost included.
type LineItemDetail struct {
	ID          uuid.UUID       `json:"id"`
	Tier        int             `json:"tier"`
	IsAddon     bool            `json:"is_addon"`
	IsSelected  bool            `json:"is_selected"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Detail is the staff-facing projection of an estimate. Unlike the public
// proposal payload it carries costs, tokens, and assignment data.
type Detail struct {
	ID              uuid.UUID           `json:"id"`
	Number          string              `json:"number"`
	Token           string              `json:"token"`
	Status          string              `json:"status"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   string              `json:"customer_email,omitempty"`
	CustomerPhone   string              `json:"customer_phone,omitempty"`
	CustomerAddress string              `json:"customer_address,omitempty"`
	TaxRate         *decimal.Decimal    `json:"tax_rate"`
	Subtotal        *decimal.Decimal    `json:"subtotal"`
	TaxAmount       *decimal.Decimal    `json:"tax_amount"`
	Total           *decimal.Decimal    `json:"total"`
	SelectedTier    *int                `json:"selected_tier"`
	FinancingPlanID *uuid.UUID          `json:"financing_plan_id"`
	SignerName      string              `json:"signer_name,omitempty"`
	SignerIP        string              `json:"signer_ip,omitempty"`
	SignedAt        *time.Time          `json:"signed_at"`
	AutoDeclineAt   *time.Time          `json:"auto_decline_at"`
	SnoozedUntil    *time.Time          `json:"snoozed_until"`
	AssignedUserID  *uuid.UUID          `json:"assigned_user_id"`
	ExternalJobID   *string             `json:"external_job_id"`
	TierLabels      []estimate.TierInfo `json:"tier_labels"`
	DocumentURL     *string             `json:"document_url"`
	Items           []LineItemDetail    `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// Service exposes the dashboard operations on estimates.
type Service struct {
	estimateRepo estimate.Repository
	logger       *zap.Logger
}

// NewService creates a new estimate service
func NewService(estimateRepo estimate.Repository, logger *zap.Logger) *Service {
	return &Service{estimateRepo: estimateRepo, logger: logger}
}

// Get loads one estimate with its line items.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	est, err := s.estimateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := toDetail(est)
	return &detail, nil
}

// List pages through estimates for the dashboard.
func (s *Service) List(ctx context.Context, query ListQuery) (*shared.Paginated[Summary], error) {
	filter := shared.DefaultFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}
	if query.OrderBy != "" {
		filter.OrderBy = query.OrderBy
	}
	if query.OrderDir != "" {
		filter.OrderDir = query.OrderDir
	}
	filter.Search = query.Search
	filter.Filters = map[string]interface{}{}
	if query.Status != "" {
		filter.Filters["status"] = query.Status
	}
	if query.AssignedUserID != nil {
		filter.Filters["assigned_user_id"] = *query.AssignedUserID
	}

	estimates, total, err := s.estimateRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, len(estimates))
	for i := range estimates {
		summaries[i] = toSummary(&estimates[i])
	}

	result := shared.NewPaginated(summaries, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Snooze parks an estimate until the given time.
func (s *Service) Snooze(ctx context.Context, id uuid.UUID, until time.Time) error {
	est, err := s.estimateRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := est.Snooze(until); err != nil {
		return err
	}
	ok, err := s.estimateRepo.SetSnooze(ctx, id, until)
	if err != nil {
		s.logger.Error("Failed to snooze estimate",
			zap.String("estimate_id", id.String()),
			zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to save estimate")
	}
	if !ok {
		// Signed between our read and the write.
		return shared.ErrAlreadyAccepted
	}
	return nil
}

// SetStatus applies a manual status override.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	est, err := s.estimateRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := est.OverrideStatus(estimate.Status(status)); err != nil {
		return err
	}
	ok, err := s.estimateRepo.SetStatus(ctx, id, estimate.Status(status))
	if err != nil {
		s.logger.Error("Failed to save status override",
			zap.String("estimate_id", id.String()),
			zap.String("status", status),
			zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to save estimate")
	}
	if !ok {
		return shared.ErrAlreadyAccepted
	}
	return nil
}

func toSummary(est *estimate.Estimate) Summary {
	return Summary{
		ID:            est.ID,
		Number:        est.Number,
		Status:        est.Status.String(),
		CustomerName:  est.CustomerName,
		Total:         est.Total,
		SelectedTier:  est.SelectedTier,
		SignedAt:      est.SignedAt,
		AutoDeclineAt: est.AutoDeclineAt,
		SnoozedUntil:  est.SnoozedUntil,
		CreatedAt:     est.CreatedAt,
		UpdatedAt:     est.UpdatedAt,
	}
}

func toDetail(est *estimate.Estimate) Detail {
	items := make([]LineItemDetail, len(est.Items))
	for i, item := range est.Items {
		items[i] = LineItemDetail{
			ID:          item.ID,
			Tier:        item.Tier,
			IsAddon:     item.IsAddon,
			IsSelected:  item.IsSelected,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			UnitCost:    item.UnitCost,
			LineTotal:   item.LineTotal,
		}
	}

	return Detail{
		ID:              est.ID,
		Number:          est.Number,
		Token:           est.Token,
		Status:          est.Status.String(),
		CustomerName:    est.CustomerName,
		CustomerEmail:   est.CustomerEmail,
		CustomerPhone:   est.CustomerPhone,
		CustomerAddress: est.CustomerAddress,
		TaxRate:         est.TaxRate,
		Subtotal:        est.Subtotal,
		TaxAmount:       est.TaxAmount,
		Total:           est.Total,
		SelectedTier:    est.SelectedTier,
		FinancingPlanID: est.FinancingPlanID,
		SignerName:      est.SignerName,
		SignerIP:        est.SignerIP,
		SignedAt:        est.SignedAt,
		AutoDeclineAt:   est.AutoDeclineAt,
		SnoozedUntil:    est.SnoozedUntil,
		AssignedUserID:  est.AssignedUserID,
		ExternalJobID:   est.ExternalJobID,
		TierLabels:      est.TierLabels,
		DocumentURL:     est.DocumentURL,
		Items:           items,
		CreatedAt:       est.CreatedAt,
		UpdatedAt:       est.UpdatedAt,
	}
}
