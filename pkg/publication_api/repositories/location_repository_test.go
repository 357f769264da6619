package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationRepository_UpsertUpdatesExisting(t *testing.T) {
	repo := repositories.NewLocationRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, []models.Location{
		{LocationID: "100", Name: "Old Name"},
	}))
	require.NoError(t, repo.Upsert(ctx, []models.Location{
		{LocationID: "100", Name: "New Name", Region: "London"},
		{LocationID: "200", Name: "Other Court"},
	}))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := repo.GetByID(ctx, "100")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "New Name", got.Name)
	assert.Equal(t, "London", got.Region)
}

func TestLocationRepository_Exists(t *testing.T) {
	repo := repositories.NewLocationRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, []models.Location{{LocationID: "100", Name: "Court"}}))

	exists, err := repo.Exists(ctx, "100")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIngestionLogRepository_FindRecent(t *testing.T) {
	repo := repositories.NewIngestionLogRepository(setupDB(t))
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"l1", "l2", "l3"} {
		require.NoError(t, repo.Append(ctx, &models.IngestionLog{
			ID:        id,
			Status:    models.IngestionSuccess,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	rows, err := repo.FindRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "l3", rows[0].ID, "newest first")
}

func TestNotificationRepository_FindByArtefact(t *testing.T) {
	repo := repositories.NewNotificationRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Notification{
		ID: "n1", ArtefactID: "a1", UserID: "u1", Status: models.NotificationSent, CreatedAt: time.Now(),
	}))
	require.NoError(t, repo.Save(ctx, &models.Notification{
		ID: "n2", ArtefactID: "a2", UserID: "u2", Status: models.NotificationFailed, CreatedAt: time.Now(),
	}))

	rows, err := repo.FindByArtefact(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationSent, rows[0].Status)
}

func TestHtmlArtefactRepository_RoundTrip(t *testing.T) {
	repo := repositories.NewHtmlArtefactRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.HtmlArtefact{
		StorageKey:    "key1",
		ArtefactType:  "LCSU",
		Filename:      "list.html",
		ContentType:   "text/html",
		Data:          []byte("<html><body>x</body></html>"),
		CorrelationID: "corr-1",
		CreatedAt:     time.Now(),
	}))

	got, err := repo.GetByKey(ctx, "key1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "corr-1", got.CorrelationID)

	missing, err := repo.GetByKey(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
