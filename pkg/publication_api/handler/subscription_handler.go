package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/services"
)

// SubscriptionController binds HTTP requests to the SubscriptionService
type SubscriptionController struct {
	Service *services.SubscriptionService
}

func NewSubscriptionController(s *services.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{Service: s}
}

// CreateSubscription handles POST /subscription
func (c *SubscriptionController) CreateSubscription(ctx *gin.Context, body *models.SubscriptionPost) (*models.Subscription, error) {
	return c.Service.CreateSubscription(ctx.Request.Context(), body)
}

// DeleteSubscription handles DELETE /subscription/:id
func (c *SubscriptionController) DeleteSubscription(ctx *gin.Context, params *models.SubscriptionParams) error {
	return c.Service.DeleteSubscription(ctx.Request.Context(), params.ID)
}

// ListSubscriptions handles GET /subscription
func (c *SubscriptionController) ListSubscriptions(ctx *gin.Context, params *models.ListSubscriptionsParams) ([]models.Subscription, error) {
	return c.Service.ListSubscriptions(ctx.Request.Context(), params.UserID)
}

// CreateListTypeSubscription handles POST /subscription/list-type
func (c *SubscriptionController) CreateListTypeSubscription(ctx *gin.Context, body *models.SubscriptionListTypePost) (*models.SubscriptionListType, error) {
	return c.Service.CreateListTypeSubscription(ctx.Request.Context(), body)
}

// DeleteListTypeSubscription handles DELETE /subscription/list-type/:id
func (c *SubscriptionController) DeleteListTypeSubscription(ctx *gin.Context, params *models.SubscriptionParams) error {
	return c.Service.DeleteListTypeSubscription(ctx.Request.Context(), params.ID)
}

// ListListTypeSubscriptions handles GET /subscription/list-type
func (c *SubscriptionController) ListListTypeSubscriptions(ctx *gin.Context, params *models.ListSubscriptionsParams) ([]models.SubscriptionListType, error) {
	return c.Service.ListListTypeSubscriptions(ctx.Request.Context(), params.UserID)
}
