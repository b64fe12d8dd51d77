package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/financing"
	"github.com/tierquote/backend/internal/domain/shared"
	"github.com/tierquote/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFinancingPlanRepository implements financing.Repository using GORM
type GormFinancingPlanRepository struct {
	db *gorm.DB
}

// NewGormFinancingPlanRepository creates a new GormFinancingPlanRepository
func NewGormFinancingPlanRepository(db *gorm.DB) *GormFinancingPlanRepository {
	return &GormFinancingPlanRepository{db: db}
}

// FindByID finds a financing plan by its ID
func (r *GormFinancingPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*financing.Plan, error) {
	var model models.FinancingPlanModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive returns all plans currently offered to customers.
func (r *GormFinancingPlanRepository) FindActive(ctx context.Context) ([]financing.Plan, error) {
	var planModels []models.FinancingPlanModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("months ASC").
		Find(&planModels).Error; err != nil {
		return nil, err
	}

	plans := make([]financing.Plan, len(planModels))
	for i := range planModels {
		plans[i] = *planModels[i].ToDomain()
	}
	return plans, nil
}
