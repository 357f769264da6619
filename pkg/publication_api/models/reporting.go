package models

// ReportingParams are the query parameters of the ingestion report endpoint.
// Dates are ISO-8601 (yyyy-mm-dd); the window defaults to the last 30 days.
type ReportingParams struct {
	StartDate   string `query:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `query:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Granularity string `query:"granularity" validate:"omitempty,oneof=day week month"`
}
