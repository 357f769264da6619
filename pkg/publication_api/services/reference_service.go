package services

import (
	"context"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/listtypes"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/repositories"
)

// ReferenceService serves the read-only reference data endpoints.
type ReferenceService struct {
	locations repositories.LocationRepository
	listTypes *listtypes.Config
}

func NewReferenceService(locations repositories.LocationRepository, listTypes *listtypes.Config) *ReferenceService {
	return &ReferenceService{locations: locations, listTypes: listTypes}
}

func (s *ReferenceService) ListLocations(ctx context.Context) ([]models.Location, error) {
	return s.locations.All(ctx)
}

func (s *ReferenceService) GetLocation(ctx context.Context, locationID string) (*models.Location, error) {
	return s.locations.GetByID(ctx, locationID)
}

func (s *ReferenceService) ListListTypes() []models.ListTypeSummary {
	return s.listTypes.Summaries()
}
