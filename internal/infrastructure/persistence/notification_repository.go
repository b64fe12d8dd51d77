package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/notification"
	"github.com/tierquote/backend/internal/domain/shared"
	"github.com/tierquote/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// notificationSortFields contains allowed sort fields for notifications
var notificationSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"kind":       true,
	"read_at":    true,
}

// Create stores a new notification
func (r *GormNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	var model models.NotificationModel
	model.FromDomain(n)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByUser returns a user's notifications, newest first by default.
func (r *GormNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]notification.Notification, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("user_id = ?", userID)

	if unread, ok := filter.Filters["unread"]; ok && unread == true {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, notificationSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var notificationModels []models.NotificationModel
	if err := query.Find(&notificationModels).Error; err != nil {
		return nil, 0, err
	}

	notifications := make([]notification.Notification, len(notificationModels))
	for i := range notificationModels {
		notifications[i] = *notificationModels[i].ToDomain()
	}
	return notifications, total, nil
}
