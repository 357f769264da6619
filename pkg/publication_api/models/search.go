package models

// ArtefactSearch is a derived, disposable index row used only for
// case-number/case-name search. Fully recomputed per artefact on each
// ingestion, so staleness cannot accumulate.
type ArtefactSearch struct {
	ID         string `gorm:"column:id;primaryKey" json:"id"`
	ArtefactID string `gorm:"column:artefact_id;index" json:"artefactId"`
	CaseNumber string `gorm:"column:case_number;index" json:"caseNumber,omitempty"`
	CaseName   string `gorm:"column:case_name;index" json:"caseName,omitempty"`
}

type CaseSearchParams struct {
	CaseNumber string `query:"caseNumber"`
	CaseName   string `query:"caseName"`
	Limit      int    `query:"limit"`
}

const DefaultSearchLimit = 25
