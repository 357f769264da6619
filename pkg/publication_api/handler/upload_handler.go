package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/helpers/problem"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/services"
)

// UploadController accepts rendered HTML artefacts via multipart form.
// This endpoint is plain gin rather than tonic: tonic cannot bind
// multipart file parts.
type UploadController struct {
	Service *services.UploadService
}

func NewUploadController(s *services.UploadService) *UploadController {
	return &UploadController{Service: s}
}

// Upload handles POST /pdda-html
func (c *UploadController) Upload(ctx *gin.Context) {
	correlationID := ctx.GetHeader("x-correlation-id")

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing form file part", "correlationId": correlationID})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open uploaded file", "correlationId": correlationID})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file", "correlationId": correlationID})
		return
	}

	resp, err := c.Service.StoreHTML(
		ctx.Request.Context(),
		ctx.PostForm("artefact_type"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
		correlationID,
	)
	if err != nil {
		if apiErr, ok := err.(problem.APIError); ok {
			ctx.Header("x-correlation-id", correlationID)
			ctx.JSON(apiErr.Status, apiErr)
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "correlationId": correlationID})
		return
	}

	ctx.Header("x-correlation-id", resp.CorrelationID)
	ctx.JSON(http.StatusCreated, resp)
}
