package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/estimate"
	"github.com/tierquote/backend/internal/domain/shared"
	"github.com/tierquote/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormEstimateRepository implements estimate.Repository using GORM
type GormEstimateRepository struct {
	db *gorm.DB
}

// NewGormEstimateRepository creates a new GormEstimateRepository
func NewGormEstimateRepository(db *gorm.DB) *GormEstimateRepository {
	return &GormEstimateRepository{db: db}
}

// estimateSortFields contains allowed sort fields for estimates
var estimateSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"number":          true,
	"status":          true,
	"customer_name":   true,
	"total":           true,
	"signed_at":       true,
	"auto_decline_at": true,
}

// FindByToken resolves the opaque proposal token, line items included.
func (r *GormEstimateRepository) FindByToken(ctx context.Context, token string) (*estimate.Estimate, error) {
	if token == "" {
		return nil, shared.ErrNotFound
	}
	var model models.EstimateModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("token = ?", token).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds an estimate by its ID, line items included.
func (r *GormEstimateRepository) FindByID(ctx context.Context, id uuid.UUID) (*estimate.Estimate, error) {
	var model models.EstimateModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds estimates matching the filter, without line items.
func (r *GormEstimateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]estimate.Estimate, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.EstimateModel{})

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if userID, ok := filter.Filters["assigned_user_id"]; ok {
		query = query.Where("assigned_user_id = ?", userID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, estimateSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var estimateModels []models.EstimateModel
	if err := query.Find(&estimateModels).Error; err != nil {
		return nil, 0, err
	}

	estimates := make([]estimate.Estimate, len(estimateModels))
	for i := range estimateModels {
		estimates[i] = *estimateModels[i].ToDomain()
	}
	return estimates, total, nil
}

// Save creates or updates an estimate and its line items.
func (r *GormEstimateRepository) Save(ctx context.Context, est *estimate.Estimate) error {
	var model models.EstimateModel
	model.FromDomain(est)
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(&model).Error
}

// SetLineItemSelected toggles exactly one add-on's selection flag with a
// targeted single-column update.
func (r *GormEstimateRepository) SetLineItemSelected(ctx context.Context, itemID uuid.UUID, selected bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.LineItemModel{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"is_selected": selected,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkViewed moves a sent, unsigned estimate to VIEWED. The guard keeps a
// first-open bump from ever touching a row an acceptance has committed to.
func (r *GormEstimateRepository) MarkViewed(ctx context.Context, estimateID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.EstimateModel{}).
		Where("id = ? AND status = ? AND signed_at IS NULL", estimateID, estimate.StatusSent.String()).
		Updates(map[string]interface{}{
			"status":     estimate.StatusViewed.String(),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetSnooze parks an unsigned estimate until the given time.
func (r *GormEstimateRepository) SetSnooze(ctx context.Context, estimateID uuid.UUID, until time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.EstimateModel{}).
		Where("id = ? AND signed_at IS NULL", estimateID).
		Updates(map[string]interface{}{
			"snoozed_until": until,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetStatus applies a staff status override to an unsigned estimate.
func (r *GormEstimateRepository) SetStatus(ctx context.Context, estimateID uuid.UUID, status estimate.Status) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.EstimateModel{}).
		Where("id = ? AND signed_at IS NULL", estimateID).
		Updates(map[string]interface{}{
			"status":     status.String(),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Sign applies the acceptance patch with one conditional update. The
// signed_at IS NULL guard is the whole concurrency story for at-most-once
// acceptance: of two racing submissions only one update matches, and the
// loser sees zero rows affected.
func (r *GormEstimateRepository) Sign(ctx context.Context, estimateID uuid.UUID, patch estimate.SignPatch) (bool, error) {
	updates := map[string]interface{}{
		"status":            estimate.StatusWon.String(),
		"signer_name":       patch.SignerName,
		"signature_data":    patch.SignatureData,
		"signer_ip":         patch.SignerIP,
		"signed_at":         patch.SignedAt,
		"subtotal":          patch.Subtotal,
		"tax_amount":        patch.TaxAmount,
		"total":             patch.Total,
		"selected_tier":     patch.SelectedTier,
		"financing_plan_id": patch.FinancingPlanID,
		"updated_at":        time.Now(),
	}

	result := r.db.WithContext(ctx).
		Model(&models.EstimateModel{}).
		Where("id = ? AND signed_at IS NULL", estimateID).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetDocument stores the signed document reference after upload.
func (r *GormEstimateRepository) SetDocument(ctx context.Context, estimateID uuid.UUID, key, url string) error {
	result := r.db.WithContext(ctx).
		Model(&models.EstimateModel{}).
		Where("id = ?", estimateID).
		Updates(map[string]interface{}{
			"document_key": key,
			"document_url": url,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
