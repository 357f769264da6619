package services

import (
	"context"
	"time"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/repositories"
)

// IngestionReport is the aggregate returned by the reporting endpoint.
type IngestionReport struct {
	Summary    repositories.IngestionSummary `json:"summary"`
	Provenance []repositories.ProvenanceRow  `json:"provenance"`
	Timeline   []repositories.TimelineRow    `json:"timeline"`
	Window     map[string]time.Time          `json:"window"`
}

// ReportingService aggregates ingestion statistics for the admin surface.
type ReportingService struct {
	reporting repositories.ReportingRepository
}

func NewReportingService(reporting repositories.ReportingRepository) *ReportingService {
	return &ReportingService{reporting: reporting}
}

// IngestionReport builds the full report for a window. A zero start
// defaults to the last 30 days.
func (s *ReportingService) IngestionReport(ctx context.Context, start, end time.Time, granularity string) (*IngestionReport, error) {
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -30)
	}

	params := repositories.ReportingQueryParams{StartDate: start, EndDate: end}

	summary, err := s.reporting.GetSummary(ctx, params)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.reporting.GetProvenanceBreakdown(ctx, params)
	if err != nil {
		return nil, err
	}
	timeline, err := s.reporting.GetTimeline(ctx, repositories.TimelineQueryParams{
		ReportingQueryParams: params,
		Granularity:          granularity,
	})
	if err != nil {
		return nil, err
	}

	return &IngestionReport{
		Summary:    summary,
		Provenance: breakdown,
		Timeline:   timeline,
		Window:     map[string]time.Time{"start": start, "end": end},
	}, nil
}
