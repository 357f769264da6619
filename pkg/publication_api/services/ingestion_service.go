package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/helpers/problem"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/listtypes"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/repositories"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/services/pdf"
)

// PublicationService runs the ingestion pipeline: validate, persist,
// index, render, notify. Each step commits independently; there is no
// transaction spanning the pipeline, so a crash mid-way leaves the
// artefact persisted and later stages unrun (recoverable via resubmit).
type PublicationService struct {
	validator     *ValidationService
	artefacts     repositories.ArtefactRepository
	ingestionLogs repositories.IngestionLogRepository
	locations     repositories.LocationRepository
	search        repositories.SearchRepository
	notifications repositories.NotificationRepository
	extractor     *SearchExtractor
	renderer      *pdf.Renderer
	dispatcher    *Dispatcher
	listTypes     *listtypes.Config
}

func NewPublicationService(
	validator *ValidationService,
	artefacts repositories.ArtefactRepository,
	ingestionLogs repositories.IngestionLogRepository,
	locations repositories.LocationRepository,
	search repositories.SearchRepository,
	notifications repositories.NotificationRepository,
	extractor *SearchExtractor,
	renderer *pdf.Renderer,
	dispatcher *Dispatcher,
	listTypes *listtypes.Config,
) *PublicationService {
	return &PublicationService{
		validator:     validator,
		artefacts:     artefacts,
		ingestionLogs: ingestionLogs,
		locations:     locations,
		search:        search,
		notifications: notifications,
		extractor:     extractor,
		renderer:      renderer,
		dispatcher:    dispatcher,
		listTypes:     listTypes,
	}
}

// Ingest validates and persists a submission, then runs the fail-soft
// downstream stages. The artefact is always persisted before indexing,
// rendering or notification are attempted.
func (s *PublicationService) Ingest(ctx context.Context, sub *models.Submission, rawSize int) (*models.IngestResponse, error) {
	result := s.validator.Validate(ctx, sub, rawSize)
	if !result.IsValid {
		s.appendLog(ctx, models.IngestionValidationError, sub, joinFieldErrors(result.Errors), nil)

		invalids := make([]problem.InvalidParam, 0, len(result.Errors))
		for _, fe := range result.Errors {
			invalids = append(invalids, problem.InvalidParam{Name: fe.Field, Reason: fe.Message})
		}
		return nil, problem.NewBadRequest("body", "publication failed validation", invalids...)
	}

	artefact, err := buildArtefact(sub, result)
	if err != nil {
		// Dates were validated already, so this indicates a programming
		// error rather than bad input.
		s.appendLog(ctx, models.IngestionSystemError, sub, err.Error(), nil)
		return nil, problem.NewInternalServerError("failed to build artefact: " + err.Error())
	}

	if err := s.artefacts.Save(ctx, artefact); err != nil {
		s.appendLog(ctx, models.IngestionSystemError, sub, err.Error(), nil)
		return nil, problem.NewInternalServerError("failed to persist artefact: " + err.Error())
	}
	s.appendLog(ctx, models.IngestionSuccess, sub, "", &artefact.ArtefactID)
	log.Printf("[ingest] artefact=%s list_type=%s location=%s no_match=%t",
		artefact.ArtefactID, artefact.ListTypeID, artefact.LocationID, artefact.NoMatch)

	s.runDownstream(ctx, artefact)

	return &models.IngestResponse{ArtefactID: artefact.ArtefactID, NoMatch: artefact.NoMatch}, nil
}

// Resubmit re-runs the downstream stages for an already persisted
// artefact. This is the manual recovery path for a crash or a failed
// fan-out.
func (s *PublicationService) Resubmit(ctx context.Context, artefactID string) (*models.DispatchResult, error) {
	artefact, err := s.artefacts.GetByID(ctx, artefactID)
	if err != nil {
		return nil, err
	}
	if artefact == nil {
		return nil, problem.NewNotFound(artefactID, "Artefact not found")
	}

	log.Printf("[ingest] resubmit artefact=%s", artefactID)
	result := s.runDownstream(ctx, artefact)
	return &result, nil
}

// runDownstream executes index, render and notify. Every stage fails soft:
// an error is logged and the remaining stages still run.
func (s *PublicationService) runDownstream(ctx context.Context, artefact *models.Artefact) models.DispatchResult {
	s.extractor.Extract(ctx, artefact.ArtefactID, artefact.ListTypeID, artefact.Payload)

	pdfPath := ""
	listType := s.listTypes.ByID(artefact.ListTypeID)
	renderResult := s.renderer.Render(artefact.ArtefactID, listType, artefact.Payload, s.renderContext(ctx, artefact, listType))
	switch {
	case renderResult.Error != "":
		log.Printf("[ingest] artefact=%s pdf: %s", artefact.ArtefactID, renderResult.Error)
	case renderResult.ExceedsMaxSize:
		// Oversize output is kept on disk but not attached.
		log.Printf("[ingest] artefact=%s pdf too large (%d bytes), attachment suppressed", artefact.ArtefactID, renderResult.SizeBytes)
	case renderResult.PDFPath != "":
		pdfPath = renderResult.PDFPath
	}

	return s.dispatcher.Dispatch(ctx, DispatchRequest{
		ArtefactID:  artefact.ArtefactID,
		LocationID:  artefact.LocationID,
		ListTypeID:  artefact.ListTypeID,
		Language:    artefact.Language,
		ContentDate: artefact.ContentDate,
		PDFPath:     pdfPath,
	})
}

func (s *PublicationService) renderContext(ctx context.Context, artefact *models.Artefact, listType *listtypes.ListType) pdf.RenderContext {
	rc := pdf.RenderContext{
		LocationName: artefact.LocationID,
		ListTypeName: artefact.ListTypeID,
		ContentDate:  artefact.ContentDate,
		Language:     artefact.Language,
	}
	if listType != nil {
		rc.ListTypeName = listType.FriendlyName
	}
	if loc, err := s.locations.GetByID(ctx, artefact.LocationID); err == nil && loc != nil {
		rc.LocationName = loc.Name
	}
	return rc
}

func (s *PublicationService) appendLog(ctx context.Context, status string, sub *models.Submission, errMsg string, artefactID *string) {
	entry := &models.IngestionLog{
		ID:           uuid.New().String(),
		Status:       status,
		Provenance:   sub.Provenance,
		ListTypeName: sub.ListType,
		LocationID:   sub.CourtID,
		ErrorMessage: errMsg,
		ArtefactID:   artefactID,
		CreatedAt:    time.Now(),
	}
	if err := s.ingestionLogs.Append(ctx, entry); err != nil {
		// Audit logging is best-effort; a failed append never blocks ingestion.
		log.Printf("[ingest] append ingestion log failed: %v", err)
	}
}

func buildArtefact(sub *models.Submission, result models.ValidationResult) (*models.Artefact, error) {
	contentDate, err := time.Parse("2006-01-02", sub.ContentDate)
	if err != nil {
		return nil, fmt.Errorf("parse content_date: %w", err)
	}
	displayFrom, err := parseDisplayDateTime(sub.DisplayFrom)
	if err != nil {
		return nil, fmt.Errorf("parse display_from: %w", err)
	}
	displayTo, err := parseDisplayDateTime(sub.DisplayTo)
	if err != nil {
		return nil, fmt.Errorf("parse display_to: %w", err)
	}

	sensitivity := sub.Sensitivity
	if sensitivity == "" {
		// Most restrictive classification wins when the source omits one.
		sensitivity = models.SensitivityClassified
	}

	return &models.Artefact{
		ArtefactID:   uuid.New().String(),
		ListTypeID:   result.ListTypeID,
		LocationID:   sub.CourtID,
		Provenance:   sub.Provenance,
		Sensitivity:  sensitivity,
		Language:     sub.Language,
		ContentDate:  contentDate,
		DisplayFrom:  displayFrom,
		DisplayTo:    displayTo,
		Payload:      sub.HearingList,
		NoMatch:      !result.LocationExists,
		LastReceived: time.Now(),
	}, nil
}

func joinFieldErrors(errs []models.FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// RetrieveArtefact returns artefact metadata; nil when unknown.
func (s *PublicationService) RetrieveArtefact(ctx context.Context, artefactID string) (*models.Artefact, error) {
	return s.artefacts.GetByID(ctx, artefactID)
}

// RetrievePayload returns the stored hearing list payload.
func (s *PublicationService) RetrievePayload(ctx context.Context, artefactID string) ([]byte, error) {
	artefact, err := s.artefacts.GetByID(ctx, artefactID)
	if err != nil || artefact == nil {
		return nil, err
	}
	return artefact.Payload, nil
}

// ListByLocation returns the artefacts currently displayable for a court.
func (s *PublicationService) ListByLocation(ctx context.Context, locationID string) ([]models.Artefact, error) {
	return s.artefacts.FindByLocation(ctx, locationID, time.Now())
}

// SearchCases queries the derived case index.
func (s *PublicationService) SearchCases(ctx context.Context, params models.CaseSearchParams) ([]models.ArtefactSearch, error) {
	if strings.TrimSpace(params.CaseNumber) == "" && strings.TrimSpace(params.CaseName) == "" {
		return []models.ArtefactSearch{}, nil
	}
	return s.search.Search(ctx, params)
}

// ExpireOutdated flags artefacts whose display window has closed and
// drops their case index rows so they stop surfacing in search.
func (s *PublicationService) ExpireOutdated(ctx context.Context) error {
	expired, err := s.artefacts.FindExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		return nil
	}

	ids := make([]string, 0, len(expired))
	for _, artefact := range expired {
		ids = append(ids, artefact.ArtefactID)
	}

	if err := s.artefacts.MarkExpired(ctx, ids); err != nil {
		return err
	}
	if err := s.search.DeleteForArtefacts(ctx, ids); err != nil {
		return err
	}
	log.Printf("[expiry] expired %d artefacts", len(ids))
	return nil
}

// NotificationsForArtefact lists the per-recipient delivery records.
func (s *PublicationService) NotificationsForArtefact(ctx context.Context, artefactID string) ([]models.Notification, error) {
	return s.notifications.FindByArtefact(ctx, artefactID)
}
