package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/engagement"
	"github.com/tierquote/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormEngagementRepository implements engagement.Repository using GORM
type GormEngagementRepository struct {
	db *gorm.DB
}

// NewGormEngagementRepository creates a new GormEngagementRepository
func NewGormEngagementRepository(db *gorm.DB) *GormEngagementRepository {
	return &GormEngagementRepository{db: db}
}

// Append records one engagement event. Events are append-only.
func (r *GormEngagementRepository) Append(ctx context.Context, event *engagement.Event) error {
	var model models.EngagementEventModel
	model.FromDomain(event)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByEstimate returns the engagement timeline for one estimate,
// oldest first.
func (r *GormEngagementRepository) FindByEstimate(ctx context.Context, estimateID uuid.UUID) ([]engagement.Event, error) {
	var eventModels []models.EngagementEventModel
	if err := r.db.WithContext(ctx).
		Where("estimate_id = ?", estimateID).
		Order("created_at ASC").
		Find(&eventModels).Error; err != nil {
		return nil, err
	}

	events := make([]engagement.Event, len(eventModels))
	for i := range eventModels {
		events[i] = *eventModels[i].ToDomain()
	}
	return events, nil
}
