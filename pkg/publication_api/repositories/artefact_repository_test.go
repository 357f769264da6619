package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/database"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{TablePrefix: "v1_"},
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func makeArtefact(id, locationID string, from, to time.Time) *models.Artefact {
	return &models.Artefact{
		ArtefactID:   id,
		ListTypeID:   "crown-daily-list",
		LocationID:   locationID,
		Provenance:   models.ProvenanceXhibit,
		Sensitivity:  models.SensitivityPublic,
		Language:     models.LanguageEnglish,
		ContentDate:  from,
		DisplayFrom:  from,
		DisplayTo:    to,
		Payload:      []byte(`{}`),
		LastReceived: time.Now(),
	}
}

func TestArtefactRepository_SaveAndGet(t *testing.T) {
	repo := repositories.NewArtefactRepository(setupDB(t))
	now := time.Now()

	require.NoError(t, repo.Save(context.Background(), makeArtefact("a1", "100", now, now.Add(24*time.Hour))))

	got, err := repo.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "100", got.LocationID)
	assert.Equal(t, []byte(`{}`), got.Payload)
}

func TestArtefactRepository_GetByID_Absent(t *testing.T) {
	repo := repositories.NewArtefactRepository(setupDB(t))

	got, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestArtefactRepository_FindByLocation_WindowFilter(t *testing.T) {
	repo := repositories.NewArtefactRepository(setupDB(t))
	now := time.Now()

	require.NoError(t, repo.Save(context.Background(), makeArtefact("current", "100", now.Add(-time.Hour), now.Add(time.Hour))))
	require.NoError(t, repo.Save(context.Background(), makeArtefact("past", "100", now.Add(-48*time.Hour), now.Add(-24*time.Hour))))
	require.NoError(t, repo.Save(context.Background(), makeArtefact("future", "100", now.Add(24*time.Hour), now.Add(48*time.Hour))))
	require.NoError(t, repo.Save(context.Background(), makeArtefact("elsewhere", "200", now.Add(-time.Hour), now.Add(time.Hour))))

	got, err := repo.FindByLocation(context.Background(), "100", now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "current", got[0].ArtefactID)
}

func TestArtefactRepository_ExpiryRoundTrip(t *testing.T) {
	repo := repositories.NewArtefactRepository(setupDB(t))
	now := time.Now()

	require.NoError(t, repo.Save(context.Background(), makeArtefact("old", "100", now.Add(-48*time.Hour), now.Add(-24*time.Hour))))
	require.NoError(t, repo.Save(context.Background(), makeArtefact("live", "100", now.Add(-time.Hour), now.Add(time.Hour))))

	expired, err := repo.FindExpired(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "old", expired[0].ArtefactID)

	require.NoError(t, repo.MarkExpired(context.Background(), []string{"old"}))

	expired, err = repo.FindExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, expired, "flagged artefacts are not reported again")

	got, err := repo.GetByID(context.Background(), "old")
	require.NoError(t, err)
	assert.True(t, got.Expired)
}
