package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/listtypes"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/repositories"
)

// maxTraversalDepth bounds the payload walk so an adversarial deeply
// nested payload cannot exhaust resources.
const maxTraversalDepth = 250

// SearchExtractor derives the flat case index from a stored payload.
// Indexing is best-effort: every failure is logged and swallowed, never
// returned, so a broken payload can not block ingestion.
type SearchExtractor struct {
	listTypes *listtypes.Config
	search    repositories.SearchRepository
}

func NewSearchExtractor(cfg *listtypes.Config, search repositories.SearchRepository) *SearchExtractor {
	return &SearchExtractor{listTypes: cfg, search: search}
}

// Extract rewrites the search rows for artefactID. Delete-then-insert
// inside the repository makes re-extraction idempotent.
func (e *SearchExtractor) Extract(ctx context.Context, artefactID, listTypeID string, payload []byte) {
	listType := e.listTypes.ByID(listTypeID)
	if listType == nil {
		log.Printf("[search] skip artefact=%s: unknown list type %s", artefactID, listTypeID)
		return
	}
	fields := listType.SearchFields
	if fields.CaseNumberField == "" && fields.CaseNameField == "" {
		log.Printf("[search] skip artefact=%s: list type %s has no search fields", artefactID, listType.Name)
		return
	}

	var root any
	if err := json.Unmarshal(payload, &root); err != nil {
		log.Printf("[search] skip artefact=%s: malformed payload: %v", artefactID, err)
		return
	}

	rows := extractRows(artefactID, fields, root)

	if err := e.search.ReplaceForArtefact(ctx, artefactID, rows); err != nil {
		log.Printf("[search] replace rows failed artefact=%s: %v", artefactID, err)
		return
	}
	log.Printf("[search] indexed artefact=%s rows=%d", artefactID, len(rows))
}

func extractRows(artefactID string, fields listtypes.SearchFields, root any) []models.ArtefactSearch {
	// Flat payload shape: the case fields sit at the top level.
	if obj, ok := root.(map[string]any); ok {
		if row, ok := caseRow(artefactID, fields, obj); ok {
			return []models.ArtefactSearch{row}
		}
	}

	// Otherwise walk the whole value with an explicit stack; recursion is
	// avoided so payload depth can be bounded.
	type frame struct {
		value any
		depth int
	}

	var rows []models.ArtefactSearch
	depthExceeded := false
	stack := []frame{{value: root, depth: 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > maxTraversalDepth {
			depthExceeded = true
			continue
		}

		switch v := f.value.(type) {
		case map[string]any:
			if f.depth > 0 {
				if row, ok := caseRow(artefactID, fields, v); ok {
					rows = append(rows, row)
				}
			}
			for _, child := range v {
				stack = append(stack, frame{value: child, depth: f.depth + 1})
			}
		case []any:
			for _, child := range v {
				stack = append(stack, frame{value: child, depth: f.depth + 1})
			}
		}
	}

	if depthExceeded {
		log.Printf("[search] artefact=%s payload deeper than %d levels; deeper nodes skipped", artefactID, maxTraversalDepth)
	}
	return rows
}

// caseRow emits a record only when at least one configured field holds a
// non-empty string. Numeric and boolean values are treated as absent.
func caseRow(artefactID string, fields listtypes.SearchFields, obj map[string]any) (models.ArtefactSearch, bool) {
	number := stringField(obj, fields.CaseNumberField)
	name := stringField(obj, fields.CaseNameField)
	if number == "" && name == "" {
		return models.ArtefactSearch{}, false
	}
	return models.ArtefactSearch{
		ID:         uuid.New().String(),
		ArtefactID: artefactID,
		CaseNumber: number,
		CaseName:   name,
	}, true
}

func stringField(obj map[string]any, field string) string {
	if field == "" {
		return ""
	}
	if s, ok := obj[field].(string); ok {
		return s
	}
	return ""
}
