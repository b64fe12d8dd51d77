package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/followup"
	"github.com/tierquote/backend/internal/domain/shared"
	"github.com/tierquote/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFollowUpRepository implements followup.Repository using GORM
type GormFollowUpRepository struct {
	db *gorm.DB
}

// NewGormFollowUpRepository creates a new GormFollowUpRepository
func NewGormFollowUpRepository(db *gorm.DB) *GormFollowUpRepository {
	return &GormFollowUpRepository{db: db}
}

// FindByID finds a follow-up schedule by its ID, steps included.
func (r *GormFollowUpRepository) FindByID(ctx context.Context, id uuid.UUID) (*followup.Schedule, error) {
	var model models.FollowUpScheduleModel
	if err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_number ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a schedule together with its steps.
func (r *GormFollowUpRepository) Save(ctx context.Context, sched *followup.Schedule) error {
	var model models.FollowUpScheduleModel
	model.FromDomain(sched)
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(&model).Error
}
