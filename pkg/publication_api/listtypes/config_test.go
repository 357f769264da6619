package listtypes_test

import (
	"testing"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/listtypes"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
listTypes:
  - id: crown-daily-list
    name: CROWN_DAILY_LIST
    friendlyName: Crown Court Daily List
    allowedProvenances: [XHIBIT]
    searchFields:
      caseNumber: caseNumber
    schema:
      type: object
      required: [document]
  - id: magistrates-public-list
    name: MAGISTRATES_PUBLIC_LIST
    friendlyName: Magistrates Public List
`

func TestParse_LookupsAndNames(t *testing.T) {
	cfg, err := listtypes.Parse([]byte(sampleYAML))
	require.NoError(t, err)

	byName := cfg.ByName("CROWN_DAILY_LIST")
	require.NotNil(t, byName)
	assert.Equal(t, "crown-daily-list", byName.ID)
	assert.Equal(t, "caseNumber", byName.SearchFields.CaseNumberField)
	assert.NotNil(t, byName.Schema)

	byID := cfg.ByID("magistrates-public-list")
	require.NotNil(t, byID)
	assert.Nil(t, byID.Schema)

	assert.Nil(t, cfg.ByName("UNKNOWN"))
	assert.Nil(t, cfg.ByID("unknown"))

	assert.Equal(t, []string{"CROWN_DAILY_LIST", "MAGISTRATES_PUBLIC_LIST"}, cfg.Names())
}

func TestParse_Summaries(t *testing.T) {
	cfg, err := listtypes.Parse([]byte(sampleYAML))
	require.NoError(t, err)

	summaries := cfg.Summaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, "Crown Court Daily List", summaries[0].FriendlyName)
	assert.Equal(t, []string{"XHIBIT"}, summaries[0].AllowedProvenances)
}

func TestParse_RejectsEmptyConfig(t *testing.T) {
	_, err := listtypes.Parse([]byte(`listTypes: []`))
	assert.Error(t, err)
}

func TestParse_RejectsDuplicateNames(t *testing.T) {
	_, err := listtypes.Parse([]byte(`
listTypes:
  - id: a
    name: SAME
  - id: b
    name: SAME
`))
	assert.Error(t, err)
}

func TestParse_RejectsUnknownProvenance(t *testing.T) {
	_, err := listtypes.Parse([]byte(`
listTypes:
  - id: a
    name: A_LIST
    allowedProvenances: [CRIME_IDAM]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CRIME_IDAM")
	assert.Contains(t, err.Error(), models.ProvenanceXhibit)
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := listtypes.Load("../../../config/listtypes.yaml")
	require.NoError(t, err)

	crown := cfg.ByName("CROWN_DAILY_LIST")
	require.NotNil(t, crown)
	assert.Contains(t, crown.AllowedProvenances, models.ProvenanceXhibit)

	for _, name := range cfg.Names() {
		for _, p := range cfg.ByName(name).AllowedProvenances {
			assert.Contains(t, models.AllProvenances(), p, "list type %s", name)
		}
	}
}

func TestParse_RejectsMissingName(t *testing.T) {
	_, err := listtypes.Parse([]byte(`
listTypes:
  - id: a
`))
	assert.Error(t, err)
}
