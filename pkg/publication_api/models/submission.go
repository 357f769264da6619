package models

import "encoding/json"

// Submission is the inbound body of POST /v1/publication. Field-level
// validation happens in the validation service so that every violated rule
// is reported in one pass; binding only requires well-formed JSON.
type Submission struct {
	CourtID     string          `json:"court_id"`
	Provenance  string          `json:"provenance"`
	ContentDate string          `json:"content_date"`
	ListType    string          `json:"list_type"`
	Sensitivity string          `json:"sensitivity"`
	Language    string          `json:"language"`
	DisplayFrom string          `json:"display_from"`
	DisplayTo   string          `json:"display_to"`
	HearingList json.RawMessage `json:"hearing_list"`
}

// FieldError is one accumulated validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the full outcome of validating a submission.
// LocationExists is a flag, not an error: orphaned submissions are
// accepted and marked no-match rather than rejected.
type ValidationResult struct {
	IsValid        bool         `json:"isValid"`
	Errors         []FieldError `json:"errors,omitempty"`
	LocationExists bool         `json:"locationExists"`
	ListTypeID     string       `json:"listTypeId,omitempty"`
}

type IngestResponse struct {
	ArtefactID string `json:"artefactId"`
	NoMatch    bool   `json:"noMatch"`
}

type ArtefactParams struct {
	ArtefactID string `path:"artefactId" validate:"required"`
}

type ArtefactsByLocationParams struct {
	LocationID string `path:"locationId" validate:"required"`
}

type UploadResponse struct {
	StorageKey    string `json:"storageKey"`
	CorrelationID string `json:"correlationId"`
}
