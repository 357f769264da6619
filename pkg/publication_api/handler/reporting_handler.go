package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/services"
)

// ReportingController serves ingestion statistics.
type ReportingController struct {
	Service *services.ReportingService
}

func NewReportingController(s *services.ReportingService) *ReportingController {
	return &ReportingController{Service: s}
}

// GetIngestionReport handles GET /reporting/ingestion
func (c *ReportingController) GetIngestionReport(ctx *gin.Context, p *models.ReportingParams) (*services.IngestionReport, error) {
	var start, end time.Time
	if p.StartDate != "" {
		start, _ = time.Parse("2006-01-02", p.StartDate)
	}
	if p.EndDate != "" {
		// inclusive end of day
		parsed, err := time.Parse("2006-01-02", p.EndDate)
		if err == nil {
			end = parsed.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return c.Service.IngestionReport(ctx.Request.Context(), start, end, p.Granularity)
}
