package listtypes

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"gopkg.in/yaml.v3"
)

// CivilAndFamilyDailyCauseList is the only list type that gets a PDF
// rendered at ingestion time.
const CivilAndFamilyDailyCauseList = "CIVIL_AND_FAMILY_DAILY_CAUSE_LIST"

// SearchFields names the payload fields that identify a case for a given
// list type. Either may be empty.
type SearchFields struct {
	CaseNumberField string `yaml:"caseNumber"`
	CaseNameField   string `yaml:"caseName"`
}

// ListType is one configured publication category.
type ListType struct {
	ID                 string
	Name               string
	FriendlyName       string
	WelshFriendlyName  string
	AllowedProvenances []string
	SearchFields       SearchFields
	Schema             *openapi3.Schema
}

type rawListType struct {
	ID                 string         `yaml:"id"`
	Name               string         `yaml:"name"`
	FriendlyName       string         `yaml:"friendlyName"`
	WelshFriendlyName  string         `yaml:"welshFriendlyName"`
	AllowedProvenances []string       `yaml:"allowedProvenances"`
	SearchFields       SearchFields   `yaml:"searchFields"`
	Schema             map[string]any `yaml:"schema"`
}

type rawConfig struct {
	ListTypes []rawListType `yaml:"listTypes"`
}

// Config holds the full list-type reference set. It is constructed once at
// startup and injected into every component that needs it; nothing reads
// it as ambient global state.
type Config struct {
	byName map[string]*ListType
	byID   map[string]*ListType
}

// Load reads and compiles a YAML list-type configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read list type config: %w", err)
	}
	return Parse(data)
}

// Parse compiles YAML list-type configuration bytes.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse list type config: %w", err)
	}
	if len(raw.ListTypes) == 0 {
		return nil, fmt.Errorf("list type config contains no list types")
	}

	cfg := &Config{
		byName: make(map[string]*ListType, len(raw.ListTypes)),
		byID:   make(map[string]*ListType, len(raw.ListTypes)),
	}
	for _, r := range raw.ListTypes {
		if r.Name == "" || r.ID == "" {
			return nil, fmt.Errorf("list type entry missing id or name")
		}
		// A provenance outside the enum would silently lock the list type
		// out of ingestion, so misconfiguration fails here instead.
		for _, p := range r.AllowedProvenances {
			if !knownProvenance(p) {
				return nil, fmt.Errorf("list type %s: unknown provenance %s (valid: %s)",
					r.Name, p, strings.Join(models.AllProvenances(), ", "))
			}
		}
		lt := &ListType{
			ID:                 r.ID,
			Name:               r.Name,
			FriendlyName:       r.FriendlyName,
			WelshFriendlyName:  r.WelshFriendlyName,
			AllowedProvenances: r.AllowedProvenances,
			SearchFields:       r.SearchFields,
		}
		if r.Schema != nil {
			schema, err := compileSchema(r.Schema)
			if err != nil {
				return nil, fmt.Errorf("list type %s: %w", r.Name, err)
			}
			lt.Schema = schema
		}
		if _, dup := cfg.byName[lt.Name]; dup {
			return nil, fmt.Errorf("duplicate list type name %s", lt.Name)
		}
		cfg.byName[lt.Name] = lt
		cfg.byID[lt.ID] = lt
	}
	return cfg, nil
}

func knownProvenance(p string) bool {
	for _, valid := range models.AllProvenances() {
		if p == valid {
			return true
		}
	}
	return false
}

func compileSchema(m map[string]any) (*openapi3.Schema, error) {
	buf, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var schema openapi3.Schema
	if err := schema.UnmarshalJSON(buf); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &schema, nil
}

// ByName resolves a list type by its canonical name; nil when unknown.
func (c *Config) ByName(name string) *ListType {
	return c.byName[name]
}

// ByID resolves a list type by id; nil when unknown.
func (c *Config) ByID(id string) *ListType {
	return c.byID[id]
}

// Names returns all configured list type names, sorted. Used to build the
// unknown-list-type validation message.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summaries returns the external view of every configured list type.
func (c *Config) Summaries() []models.ListTypeSummary {
	out := make([]models.ListTypeSummary, 0, len(c.byName))
	for _, name := range c.Names() {
		lt := c.byName[name]
		out = append(out, models.ListTypeSummary{
			ID:                 lt.ID,
			Name:               lt.Name,
			FriendlyName:       lt.FriendlyName,
			WelshFriendlyName:  lt.WelshFriendlyName,
			AllowedProvenances: lt.AllowedProvenances,
		})
	}
	return out
}
