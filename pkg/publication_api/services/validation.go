package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/listtypes"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/repositories"
)

// MaxPayloadBytes caps an inbound submission at 10 MB.
const MaxPayloadBytes = 10 << 20

// ValidationService checks inbound submissions. It is a pure function of
// its inputs plus a read-only location lookup; it never accumulates state
// and never short-circuits, so callers receive every violated rule in one
// pass.
type ValidationService struct {
	listTypes *listtypes.Config
	locations repositories.LocationRepository
}

func NewValidationService(cfg *listtypes.Config, locations repositories.LocationRepository) *ValidationService {
	return &ValidationService{listTypes: cfg, locations: locations}
}

// Validate checks a submission and its raw byte size. A non-existent
// location is reported through LocationExists, not as an error: orphaned
// submissions are accepted and marked no-match by the caller.
func (v *ValidationService) Validate(ctx context.Context, sub *models.Submission, rawSize int) models.ValidationResult {
	result := models.ValidationResult{LocationExists: true}

	if rawSize > MaxPayloadBytes {
		result.Errors = append(result.Errors, models.FieldError{
			Field:   "body",
			Message: fmt.Sprintf("payload exceeds maximum size of %d bytes", MaxPayloadBytes),
		})
	}

	required := []struct {
		field string
		value string
	}{
		{"court_id", sub.CourtID},
		{"provenance", sub.Provenance},
		{"content_date", sub.ContentDate},
		{"list_type", sub.ListType},
		{"language", sub.Language},
		{"display_from", sub.DisplayFrom},
		{"display_to", sub.DisplayTo},
	}
	for _, req := range required {
		if strings.TrimSpace(req.value) == "" {
			result.Errors = append(result.Errors, models.FieldError{
				Field:   req.field,
				Message: req.field + " is required",
			})
		}
	}
	if len(sub.HearingList) == 0 {
		result.Errors = append(result.Errors, models.FieldError{
			Field:   "hearing_list",
			Message: "hearing_list is required",
		})
	}

	if sub.Provenance != "" && !contains(models.AllProvenances(), sub.Provenance) {
		result.Errors = append(result.Errors, models.FieldError{
			Field:   "provenance",
			Message: fmt.Sprintf("provenance must be one of %s", strings.Join(models.AllProvenances(), ", ")),
		})
	}
	if sub.Sensitivity != "" && !contains(models.AllSensitivities(), sub.Sensitivity) {
		result.Errors = append(result.Errors, models.FieldError{
			Field:   "sensitivity",
			Message: fmt.Sprintf("sensitivity must be one of %s", strings.Join(models.AllSensitivities(), ", ")),
		})
	}
	if sub.Language != "" && !contains(models.AllLanguages(), sub.Language) {
		result.Errors = append(result.Errors, models.FieldError{
			Field:   "language",
			Message: fmt.Sprintf("language must be one of %s", strings.Join(models.AllLanguages(), ", ")),
		})
	}

	var listType *listtypes.ListType
	if sub.ListType != "" {
		listType = v.listTypes.ByName(sub.ListType)
		if listType == nil {
			result.Errors = append(result.Errors, models.FieldError{
				Field:   "list_type",
				Message: fmt.Sprintf("unknown list type %q; valid list types: %s", sub.ListType, strings.Join(v.listTypes.Names(), ", ")),
			})
		} else {
			result.ListTypeID = listType.ID
			if len(listType.AllowedProvenances) > 0 && sub.Provenance != "" &&
				contains(models.AllProvenances(), sub.Provenance) &&
				!contains(listType.AllowedProvenances, sub.Provenance) {
				result.Errors = append(result.Errors, models.FieldError{
					Field:   "provenance",
					Message: fmt.Sprintf("provenance %s is not allowed for list type %s", sub.Provenance, sub.ListType),
				})
			}
		}
	}

	result.Errors = append(result.Errors, v.validateDates(sub)...)

	if sub.CourtID != "" {
		exists, err := v.locations.Exists(ctx, sub.CourtID)
		if err != nil {
			// Reference-data lookup failure must not reject the submission.
			log.Printf("[validate] location lookup failed for %s: %v", sub.CourtID, err)
			exists = false
		}
		result.LocationExists = exists
	}

	// Schema validation runs only when nothing structural is wrong already,
	// to avoid cascading noise on top of field errors.
	if listType != nil && listType.Schema != nil && len(sub.HearingList) > 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, validateAgainstSchema(listType.Schema, sub.HearingList)...)
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func (v *ValidationService) validateDates(sub *models.Submission) []models.FieldError {
	var errs []models.FieldError

	if sub.ContentDate != "" {
		if _, err := time.Parse("2006-01-02", sub.ContentDate); err != nil {
			errs = append(errs, models.FieldError{
				Field:   "content_date",
				Message: "content_date must be an ISO-8601 date (YYYY-MM-DD)",
			})
		}
	}

	from, fromErr := parseDisplayDateTime(sub.DisplayFrom)
	if sub.DisplayFrom != "" && fromErr != nil {
		errs = append(errs, models.FieldError{Field: "display_from", Message: fromErr.Error()})
	}
	to, toErr := parseDisplayDateTime(sub.DisplayTo)
	if sub.DisplayTo != "" && toErr != nil {
		errs = append(errs, models.FieldError{Field: "display_to", Message: toErr.Error()})
	}

	if fromErr == nil && toErr == nil && sub.DisplayFrom != "" && sub.DisplayTo != "" && to.Before(from) {
		errs = append(errs, models.FieldError{
			Field:   "display_to",
			Message: "display_to must not be before display_from",
		})
	}

	return errs
}

// parseDisplayDateTime requires a full ISO-8601 date-time with a literal
// time component; a bare date is not enough to bound a display window.
func parseDisplayDateTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("value is empty")
	}
	if !strings.Contains(value, "T") {
		return time.Time{}, errors.New("must be an ISO-8601 date-time including a time component")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("must be an ISO-8601 date-time including a time component")
}

func validateAgainstSchema(schema *openapi3.Schema, payload json.RawMessage) []models.FieldError {
	var value any
	if err := json.Unmarshal(payload, &value); err != nil {
		return []models.FieldError{{Field: "hearing_list", Message: "hearing_list is not valid JSON"}}
	}

	err := schema.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		out := make([]models.FieldError, 0, len(multi))
		for _, e := range multi {
			out = append(out, models.FieldError{Field: "hearing_list", Message: schemaErrorMessage(e)})
		}
		return out
	}
	return []models.FieldError{{Field: "hearing_list", Message: schemaErrorMessage(err)}}
}

func schemaErrorMessage(err error) string {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		if ptr := schemaErr.JSONPointer(); len(ptr) > 0 {
			return fmt.Sprintf("/%s: %s", strings.Join(ptr, "/"), schemaErr.Reason)
		}
		return schemaErr.Reason
	}
	return err.Error()
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
