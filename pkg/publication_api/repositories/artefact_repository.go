package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"gorm.io/gorm"
)

// ArtefactRepository persists publications. Save is a plain insert:
// repeated ingestion of logically-identical content produces a new row
// with a new id, never a merge.
type ArtefactRepository interface {
	Save(ctx context.Context, artefact *models.Artefact) error
	GetByID(ctx context.Context, artefactID string) (*models.Artefact, error)
	FindByLocation(ctx context.Context, locationID string, now time.Time) ([]models.Artefact, error)
	FindExpired(ctx context.Context, now time.Time) ([]models.Artefact, error)
	MarkExpired(ctx context.Context, artefactIDs []string) error
}

type artefactRepository struct {
	db *gorm.DB
}

func NewArtefactRepository(db *gorm.DB) ArtefactRepository {
	return &artefactRepository{db: db}
}

func (r *artefactRepository) Save(ctx context.Context, artefact *models.Artefact) error {
	return r.db.WithContext(ctx).Create(artefact).Error
}

// GetByID returns nil, nil when the artefact does not exist; absence is a
// normal outcome, not an error.
func (r *artefactRepository) GetByID(ctx context.Context, artefactID string) (*models.Artefact, error) {
	var artefact models.Artefact
	err := r.db.WithContext(ctx).First(&artefact, "artefact_id = ?", artefactID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &artefact, nil
}

func (r *artefactRepository) FindByLocation(ctx context.Context, locationID string, now time.Time) ([]models.Artefact, error) {
	var artefacts []models.Artefact
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND expired = ? AND display_from <= ? AND display_to >= ?", locationID, false, now, now).
		Order("content_date DESC").
		Find(&artefacts).Error
	return artefacts, err
}

func (r *artefactRepository) FindExpired(ctx context.Context, now time.Time) ([]models.Artefact, error) {
	var artefacts []models.Artefact
	err := r.db.WithContext(ctx).
		Where("expired = ? AND display_to < ?", false, now).
		Find(&artefacts).Error
	return artefacts, err
}

func (r *artefactRepository) MarkExpired(ctx context.Context, artefactIDs []string) error {
	if len(artefactIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Artefact{}).
		Where("artefact_id IN ?", artefactIDs).
		Update("expired", true).Error
}
