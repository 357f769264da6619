package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/helpers/problem"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/services"
)

// PublicationController binds HTTP requests to the PublicationService
type PublicationController struct {
	Service *services.PublicationService
}

// NewPublicationController creates a new controller
func NewPublicationController(s *services.PublicationService) *PublicationController {
	return &PublicationController{Service: s}
}

// IngestPublication handles POST /publication
func (c *PublicationController) IngestPublication(ctx *gin.Context, body *models.Submission) (*models.IngestResponse, error) {
	size := int(ctx.Request.ContentLength)
	if size < 0 {
		size = 0
	}
	return c.Service.Ingest(ctx.Request.Context(), body, size)
}

// RetrieveArtefact handles GET /publication/:artefactId
func (c *PublicationController) RetrieveArtefact(ctx *gin.Context, params *models.ArtefactParams) (*models.Artefact, error) {
	artefact, err := c.Service.RetrieveArtefact(ctx.Request.Context(), params.ArtefactID)
	if err != nil {
		return nil, err
	}
	if artefact == nil {
		return nil, problem.NewNotFound(params.ArtefactID, "Artefact not found")
	}
	return artefact, nil
}

// RetrievePayload handles GET /publication/:artefactId/payload
func (c *PublicationController) RetrievePayload(ctx *gin.Context, params *models.ArtefactParams) (json.RawMessage, error) {
	payload, err := c.Service.RetrievePayload(ctx.Request.Context(), params.ArtefactID)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, problem.NewNotFound(params.ArtefactID, "Artefact not found")
	}
	return payload, nil
}

// ListByLocation handles GET /publication/locationId/:locationId
func (c *PublicationController) ListByLocation(ctx *gin.Context, params *models.ArtefactsByLocationParams) ([]models.Artefact, error) {
	return c.Service.ListByLocation(ctx.Request.Context(), params.LocationID)
}

// SearchCases handles GET /publication/search
func (c *PublicationController) SearchCases(ctx *gin.Context, params *models.CaseSearchParams) ([]models.ArtefactSearch, error) {
	return c.Service.SearchCases(ctx.Request.Context(), *params)
}

// Resubmit handles POST /publication/:artefactId/resubmit
func (c *PublicationController) Resubmit(ctx *gin.Context, params *models.ArtefactParams) (*models.DispatchResult, error) {
	return c.Service.Resubmit(ctx.Request.Context(), params.ArtefactID)
}

// ListNotifications handles GET /publication/:artefactId/notifications
func (c *PublicationController) ListNotifications(ctx *gin.Context, params *models.ArtefactParams) ([]models.Notification, error) {
	return c.Service.NotificationsForArtefact(ctx.Request.Context(), params.ArtefactID)
}
