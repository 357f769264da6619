package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/helpers/problem"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/services"
)

// ReferenceController serves locations and list types.
type ReferenceController struct {
	Service *services.ReferenceService
}

func NewReferenceController(s *services.ReferenceService) *ReferenceController {
	return &ReferenceController{Service: s}
}

// ListLocations handles GET /locations
func (c *ReferenceController) ListLocations(ctx *gin.Context) ([]models.Location, error) {
	return c.Service.ListLocations(ctx.Request.Context())
}

// GetLocation handles GET /locations/:locationId
func (c *ReferenceController) GetLocation(ctx *gin.Context, params *models.LocationParams) (*models.Location, error) {
	loc, err := c.Service.GetLocation(ctx.Request.Context(), params.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, problem.NewNotFound(params.LocationID, "Location not found")
	}
	return loc, nil
}

// ListListTypes handles GET /list-types
func (c *ReferenceController) ListListTypes(ctx *gin.Context) ([]models.ListTypeSummary, error) {
	return c.Service.ListListTypes(), nil
}
