package refimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/repositories"
)

type Logger interface {
	Printf(format string, v ...any)
}

type Options struct {
	CSVPath string
	DryRun  bool
	Logger  Logger
}

type Result struct {
	Processed   int
	Upserted    int
	ParseErrors int
}

type headerIndex struct {
	locationID   int
	name         int
	welshName    int
	region       int
	jurisdiction int
}

// ImportCSV loads court reference data from a semicolon separated CSV and
// upserts it keyed on location_id. Rows with parse errors are skipped.
func ImportCSV(ctx context.Context, db *gorm.DB, opts Options) (Result, error) {
	if db == nil {
		return Result{}, errors.New("db is nil")
	}
	csvPath := strings.TrimSpace(opts.CSVPath)
	if csvPath == "" {
		return Result{}, errors.New("csv path is empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read csv header: %w", err)
	}
	idx, err := mapHeaders(headers)
	if err != nil {
		return Result{}, fmt.Errorf("invalid csv header: %w", err)
	}

	result := Result{}
	line := 1
	var batch []models.Location

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			logger.Printf("line %d: read error: %v", line, err)
			result.ParseErrors++
			continue
		}
		loc, err := parseRow(record, idx)
		if err != nil {
			logger.Printf("line %d: %v", line, err)
			result.ParseErrors++
			continue
		}
		result.Processed++
		batch = append(batch, *loc)
	}

	if opts.DryRun {
		result.Upserted = len(batch)
		logger.Printf("dry run: processed=%d would_upsert=%d parse_errors=%d", result.Processed, result.Upserted, result.ParseErrors)
		return result, nil
	}

	repo := repositories.NewLocationRepository(db)
	if err := repo.Upsert(ctx, batch); err != nil {
		return result, fmt.Errorf("upsert locations: %w", err)
	}
	result.Upserted = len(batch)

	logger.Printf("done: processed=%d upserted=%d parse_errors=%d", result.Processed, result.Upserted, result.ParseErrors)
	return result, nil
}

func mapHeaders(headers []string) (headerIndex, error) {
	idx := map[string]int{}
	for i, h := range headers {
		key := strings.TrimSpace(strings.ToLower(h))
		idx[key] = i
	}
	required := []string{"location_id", "name"}
	for _, key := range required {
		if _, ok := idx[key]; !ok {
			return headerIndex{}, fmt.Errorf("missing column %q", key)
		}
	}
	optional := func(key string) int {
		if value, ok := idx[key]; ok {
			return value
		}
		return -1
	}
	return headerIndex{
		locationID:   idx["location_id"],
		name:         idx["name"],
		welshName:    optional("welsh_name"),
		region:       optional("region"),
		jurisdiction: optional("jurisdiction"),
	}, nil
}

func parseRow(record []string, idx headerIndex) (*models.Location, error) {
	field := func(i int) string {
		if i >= 0 && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	locationID := field(idx.locationID)
	if locationID == "" {
		return nil, fmt.Errorf("missing location_id value")
	}
	name := field(idx.name)
	if name == "" {
		return nil, fmt.Errorf("missing name value for location_id=%q", locationID)
	}

	return &models.Location{
		LocationID:   locationID,
		Name:         name,
		WelshName:    field(idx.welshName),
		Region:       field(idx.region),
		Jurisdiction: field(idx.jurisdiction),
	}, nil
}
