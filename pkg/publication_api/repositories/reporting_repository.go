package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ReportingRepository provides methods for querying ingestion statistics.
type ReportingRepository interface {
	GetSummary(ctx context.Context, params ReportingQueryParams) (IngestionSummary, error)
	GetProvenanceBreakdown(ctx context.Context, params ReportingQueryParams) ([]ProvenanceRow, error)
	GetTimeline(ctx context.Context, params TimelineQueryParams) ([]TimelineRow, error)
}

type ReportingQueryParams struct {
	StartDate   time.Time
	EndDate     time.Time
	Provenances []string
	LocationID  *string
}

type TimelineQueryParams struct {
	ReportingQueryParams
	Granularity string
}

type IngestionSummary struct {
	TotalAttempts    int
	Succeeded        int
	ValidationErrors int
	SystemErrors     int
	SuccessRate      float64
}

type ProvenanceRow struct {
	Provenance string
	Attempts   int
	Succeeded  int
	ListTypes  pq.StringArray `gorm:"type:text[]"`
}

type TimelineRow struct {
	Period    string
	Attempts  int
	Succeeded int
}

type reportingRepository struct {
	db *gorm.DB
}

func NewReportingRepository(db *gorm.DB) ReportingRepository {
	return &reportingRepository{db: db}
}

// windowFilter builds the shared WHERE clause over the ingestion log.
func windowFilter(params ReportingQueryParams) (string, []interface{}) {
	where := "il.created_at BETWEEN ? AND ?"
	args := []interface{}{params.StartDate, params.EndDate}

	if len(params.Provenances) > 0 {
		placeholders := make([]string, len(params.Provenances))
		for i, p := range params.Provenances {
			placeholders[i] = "?"
			args = append(args, p)
		}
		where += " AND il.provenance IN (" + strings.Join(placeholders, ",") + ")"
	}
	if params.LocationID != nil && strings.TrimSpace(*params.LocationID) != "" {
		where += " AND il.location_id = ?"
		args = append(args, strings.TrimSpace(*params.LocationID))
	}

	return where, args
}

func (r *reportingRepository) GetSummary(ctx context.Context, params ReportingQueryParams) (IngestionSummary, error) {
	where, args := windowFilter(params)

	query := fmt.Sprintf(`SELECT
    COUNT(*) AS total_attempts,
    COUNT(*) FILTER (WHERE il.status = 'SUCCESS') AS succeeded,
    COUNT(*) FILTER (WHERE il.status = 'VALIDATION_ERROR') AS validation_errors,
    COUNT(*) FILTER (WHERE il.status = 'SYSTEM_ERROR') AS system_errors,
    COALESCE(ROUND(
        (COUNT(*) FILTER (WHERE il.status = 'SUCCESS')::numeric / NULLIF(COUNT(*), 0)) * 100,
        1
    ), 0) AS success_rate
FROM v1_ingestion_logs il
WHERE %s`, where)

	var result IngestionSummary
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&result).Error; err != nil {
		return IngestionSummary{}, fmt.Errorf("summary query failed: %w", err)
	}
	return result, nil
}

func (r *reportingRepository) GetProvenanceBreakdown(ctx context.Context, params ReportingQueryParams) ([]ProvenanceRow, error) {
	where, args := windowFilter(params)

	query := fmt.Sprintf(`WITH window_logs AS (
    SELECT il.provenance, il.status, il.list_type_name
    FROM v1_ingestion_logs il
    WHERE %s
)
SELECT
    wl.provenance,
    COUNT(*) AS attempts,
    COUNT(*) FILTER (WHERE wl.status = 'SUCCESS') AS succeeded,
    COALESCE(ARRAY_AGG(DISTINCT wl.list_type_name ORDER BY wl.list_type_name)
        FILTER (WHERE wl.list_type_name <> ''), ARRAY[]::text[]) AS list_types
FROM window_logs wl
GROUP BY wl.provenance
ORDER BY wl.provenance`, where)

	var rows []ProvenanceRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("provenance breakdown query failed: %w", err)
	}

	for i := range rows {
		if rows[i].ListTypes == nil {
			rows[i].ListTypes = pq.StringArray{}
		}
	}
	return rows, nil
}

func (r *reportingRepository) GetTimeline(ctx context.Context, params TimelineQueryParams) ([]TimelineRow, error) {
	// Granularity is interpolated as a SQL literal, so it must be whitelisted.
	granularity := params.Granularity
	if granularity != "day" && granularity != "week" && granularity != "month" {
		granularity = "day"
	}

	periodFormat := map[string]string{
		"day":   "YYYY-MM-DD",
		"week":  `IYYY-"W"IW`,
		"month": "YYYY-MM",
	}

	where, args := windowFilter(params.ReportingQueryParams)

	query := fmt.Sprintf(`SELECT
    TO_CHAR(date_trunc('%s', il.created_at), '%s') AS period,
    COUNT(*) AS attempts,
    COUNT(*) FILTER (WHERE il.status = 'SUCCESS') AS succeeded
FROM v1_ingestion_logs il
WHERE %s
GROUP BY 1
ORDER BY 1`, granularity, periodFormat[granularity], where)

	var rows []TimelineRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("timeline query failed: %w", err)
	}
	return rows, nil
}
