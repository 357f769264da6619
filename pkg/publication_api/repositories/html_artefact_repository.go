package repositories

import (
	"context"
	"errors"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"gorm.io/gorm"
)

// HtmlArtefactRepository stores uploaded pdda HTML blobs.
type HtmlArtefactRepository interface {
	Save(ctx context.Context, artefact *models.HtmlArtefact) error
	GetByKey(ctx context.Context, storageKey string) (*models.HtmlArtefact, error)
}

type htmlArtefactRepository struct {
	db *gorm.DB
}

func NewHtmlArtefactRepository(db *gorm.DB) HtmlArtefactRepository {
	return &htmlArtefactRepository{db: db}
}

func (r *htmlArtefactRepository) Save(ctx context.Context, artefact *models.HtmlArtefact) error {
	return r.db.WithContext(ctx).Create(artefact).Error
}

func (r *htmlArtefactRepository) GetByKey(ctx context.Context, storageKey string) (*models.HtmlArtefact, error) {
	var artefact models.HtmlArtefact
	err := r.db.WithContext(ctx).First(&artefact, "storage_key = ?", storageKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &artefact, nil
}
