package repositories

import (
	"context"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"gorm.io/gorm"
)

// IngestionLogRepository appends audit records; nothing updates or deletes
// them.
type IngestionLogRepository interface {
	Append(ctx context.Context, entry *models.IngestionLog) error
	FindRecent(ctx context.Context, limit int) ([]models.IngestionLog, error)
}

type ingestionLogRepository struct {
	db *gorm.DB
}

func NewIngestionLogRepository(db *gorm.DB) IngestionLogRepository {
	return &ingestionLogRepository{db: db}
}

func (r *ingestionLogRepository) Append(ctx context.Context, entry *models.IngestionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ingestionLogRepository) FindRecent(ctx context.Context, limit int) ([]models.IngestionLog, error) {
	if limit < 1 {
		limit = 50
	}
	var rows []models.IngestionLog
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
