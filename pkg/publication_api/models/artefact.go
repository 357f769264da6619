package models

import "time"

// Provenance identifies the source system that produced a publication.
const (
	ProvenanceXhibit         = "XHIBIT"
	ProvenanceManualUpload   = "MANUAL_UPLOAD"
	ProvenanceSNL            = "SNL"
	ProvenanceCommonPlatform = "COMMON_PLATFORM"
)

// Sensitivity classifies who may view a publication.
const (
	SensitivityPublic     = "PUBLIC"
	SensitivityPrivate    = "PRIVATE"
	SensitivityClassified = "CLASSIFIED"
)

const (
	LanguageEnglish   = "ENGLISH"
	LanguageWelsh     = "WELSH"
	LanguageBilingual = "BI_LINGUAL"
)

func AllProvenances() []string {
	return []string{ProvenanceXhibit, ProvenanceManualUpload, ProvenanceSNL, ProvenanceCommonPlatform}
}

func AllSensitivities() []string {
	return []string{SensitivityPublic, SensitivityPrivate, SensitivityClassified}
}

func AllLanguages() []string {
	return []string{LanguageEnglish, LanguageWelsh, LanguageBilingual}
}

// Artefact is one persisted list publication. Rows are never mutated after
// creation; a resubmission creates a new artefact or triggers a re-notify.
type Artefact struct {
	ArtefactID   string    `gorm:"column:artefact_id;primaryKey" json:"artefactId"`
	ListTypeID   string    `gorm:"column:list_type_id;index" json:"listTypeId"`
	LocationID   string    `gorm:"column:location_id;index" json:"locationId"`
	Provenance   string    `gorm:"column:provenance" json:"provenance"`
	Sensitivity  string    `gorm:"column:sensitivity" json:"sensitivity"`
	Language     string    `gorm:"column:language" json:"language"`
	ContentDate  time.Time `gorm:"column:content_date" json:"contentDate"`
	DisplayFrom  time.Time `gorm:"column:display_from" json:"displayFrom"`
	DisplayTo    time.Time `gorm:"column:display_to;index" json:"displayTo"`
	Payload      []byte    `gorm:"column:payload;type:jsonb" json:"-"`
	NoMatch      bool      `gorm:"column:no_match" json:"noMatch"`
	Expired      bool      `gorm:"column:expired" json:"expired"`
	LastReceived time.Time `gorm:"column:last_received" json:"lastReceivedDate"`
}

// Ingestion log statuses.
const (
	IngestionSuccess         = "SUCCESS"
	IngestionValidationError = "VALIDATION_ERROR"
	IngestionSystemError     = "SYSTEM_ERROR"
)

// IngestionLog records one ingestion attempt. Append-only, audit use only.
type IngestionLog struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	Status       string    `gorm:"column:status;index" json:"status"`
	Provenance   string    `gorm:"column:provenance" json:"provenance"`
	ListTypeName string    `gorm:"column:list_type_name" json:"listTypeName,omitempty"`
	LocationID   string    `gorm:"column:location_id" json:"locationId,omitempty"`
	ErrorMessage string    `gorm:"column:error_message" json:"errorMessage,omitempty"`
	ArtefactID   *string   `gorm:"column:artefact_id" json:"artefactId,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
}

// HtmlArtefact stores an uploaded pdda HTML document as a blob.
type HtmlArtefact struct {
	StorageKey    string    `gorm:"column:storage_key;primaryKey" json:"storageKey"`
	ArtefactType  string    `gorm:"column:artefact_type;index" json:"artefactType"`
	Filename      string    `gorm:"column:filename" json:"filename"`
	ContentType   string    `gorm:"column:content_type" json:"contentType"`
	Data          []byte    `gorm:"column:data;type:bytea" json:"-"`
	CorrelationID string    `gorm:"column:correlation_id" json:"correlationId"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"createdAt"`
}
