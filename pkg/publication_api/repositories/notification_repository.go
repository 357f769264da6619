package repositories

import (
	"context"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"gorm.io/gorm"
)

// NotificationRepository records per-recipient delivery outcomes.
type NotificationRepository interface {
	Save(ctx context.Context, n *models.Notification) error
	FindByArtefact(ctx context.Context, artefactID string) ([]models.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Save(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) FindByArtefact(ctx context.Context, artefactID string) ([]models.Notification, error) {
	var rows []models.Notification
	err := r.db.WithContext(ctx).Where("artefact_id = ?", artefactID).Order("created_at").Find(&rows).Error
	return rows, err
}
