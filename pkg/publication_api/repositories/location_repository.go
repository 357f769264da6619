package repositories

import (
	"context"
	"errors"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocationRepository serves court/tribunal reference data.
type LocationRepository interface {
	GetByID(ctx context.Context, locationID string) (*models.Location, error)
	Exists(ctx context.Context, locationID string) (bool, error)
	All(ctx context.Context) ([]models.Location, error)
	Upsert(ctx context.Context, locations []models.Location) error
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) GetByID(ctx context.Context, locationID string) (*models.Location, error) {
	var loc models.Location
	err := r.db.WithContext(ctx).First(&loc, "location_id = ?", locationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepository) Exists(ctx context.Context, locationID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Location{}).Where("location_id = ?", locationID).Count(&n).Error
	return n > 0, err
}

func (r *locationRepository) All(ctx context.Context) ([]models.Location, error) {
	var locs []models.Location
	err := r.db.WithContext(ctx).Order("name").Find(&locs).Error
	return locs, err
}

// Upsert is used by the CSV reference-data importer.
func (r *locationRepository) Upsert(ctx context.Context, locations []models.Location) error {
	if len(locations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "location_id"}},
		UpdateAll: true,
	}).Create(&locations).Error
}
