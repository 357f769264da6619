package services

import (
	"bytes"
	"context"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/helpers/problem"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/repositories"
	"github.com/teris-io/shortid"
)

// ArtefactTypeLCSU is the only artefact type accepted on the pdda upload
// endpoint.
const ArtefactTypeLCSU = "LCSU"

// UploadService stores pdda HTML artefacts.
type UploadService struct {
	htmlArtefacts repositories.HtmlArtefactRepository
}

func NewUploadService(htmlArtefacts repositories.HtmlArtefactRepository) *UploadService {
	return &UploadService{htmlArtefacts: htmlArtefacts}
}

// StoreHTML validates and persists an uploaded HTML document, returning
// the storage key and the correlation id (echoed from the request header,
// or generated when absent).
func (s *UploadService) StoreHTML(ctx context.Context, artefactType, filename, contentType string, data []byte, correlationID string) (*models.UploadResponse, error) {
	if correlationID == "" {
		correlationID, _ = shortid.Generate()
	}

	if !strings.EqualFold(artefactType, ArtefactTypeLCSU) {
		return nil, problem.NewBadRequest("artefact_type", "artefact_type must be LCSU",
			problem.InvalidParam{Name: "artefact_type", Reason: "unsupported artefact type " + artefactType})
	}
	lower := strings.ToLower(filename)
	if !strings.HasSuffix(lower, ".html") && !strings.HasSuffix(lower, ".htm") {
		return nil, problem.NewBadRequest("file", "file must be an HTML or HTM document",
			problem.InvalidParam{Name: "file", Reason: "unsupported file extension"})
	}
	if len(data) == 0 {
		return nil, problem.NewBadRequest("file", "uploaded file is empty",
			problem.InvalidParam{Name: "file", Reason: "empty file"})
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, problem.NewBadRequest("file", "file is not parseable HTML",
			problem.InvalidParam{Name: "file", Reason: err.Error()})
	}
	if strings.TrimSpace(doc.Find("body").Text()) == "" && strings.TrimSpace(doc.Find("title").Text()) == "" {
		return nil, problem.NewBadRequest("file", "HTML document has no content",
			problem.InvalidParam{Name: "file", Reason: "empty body and title"})
	}

	key, err := shortid.Generate()
	if err != nil {
		return nil, problem.NewInternalServerError("failed to generate storage key: " + err.Error())
	}

	artefact := &models.HtmlArtefact{
		StorageKey:    key,
		ArtefactType:  ArtefactTypeLCSU,
		Filename:      filename,
		ContentType:   contentType,
		Data:          data,
		CorrelationID: correlationID,
		CreatedAt:     time.Now(),
	}
	if err := s.htmlArtefacts.Save(ctx, artefact); err != nil {
		return nil, problem.NewInternalServerError("failed to store artefact: " + err.Error())
	}

	log.Printf("[upload] stored html artefact key=%s correlation=%s bytes=%d", key, correlationID, len(data))
	return &models.UploadResponse{StorageKey: key, CorrelationID: correlationID}, nil
}
