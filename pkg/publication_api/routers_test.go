package publication_api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	api "github.com/opencourt-uk/publication-service/pkg/publication_api"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/database"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/handler"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/helpers/notify"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/listtypes"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/repositories"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/services"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/services/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wI2L/fizz"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const routerListTypes = `
listTypes:
  - id: crown-daily-list
    name: CROWN_DAILY_LIST
    friendlyName: Crown Court Daily List
    searchFields:
      caseNumber: caseNumber
`

type noopSender struct{}

func (noopSender) SendEmail(ctx context.Context, req notify.EmailRequest) (string, error) {
	return "noop", nil
}

func newTestRouter(t *testing.T) *fizz.Fizz {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{TablePrefix: "v1_"},
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg, err := listtypes.Parse([]byte(routerListTypes))
	require.NoError(t, err)

	artefactRepo := repositories.NewArtefactRepository(db)
	logRepo := repositories.NewIngestionLogRepository(db)
	locationRepo := repositories.NewLocationRepository(db)
	searchRepo := repositories.NewSearchRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	require.NoError(t, locationRepo.Upsert(context.Background(), []models.Location{
		{LocationID: "100", Name: "Test Crown Court"},
	}))

	dispatcher := services.NewDispatcher(
		subscriptionRepo, notificationRepo, locationRepo, searchRepo, cfg, noopSender{},
		services.DispatcherConfig{RetryBaseDelay: time.Millisecond},
	)
	publicationService := services.NewPublicationService(
		services.NewValidationService(cfg, locationRepo),
		artefactRepo, logRepo, locationRepo, searchRepo, notificationRepo,
		services.NewSearchExtractor(cfg, searchRepo),
		pdf.NewRenderer(t.TempDir()),
		dispatcher, cfg,
	)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, locationRepo, cfg, 0)

	return api.NewRouter("test", api.Controllers{
		Publication:  handler.NewPublicationController(publicationService),
		Subscription: handler.NewSubscriptionController(subscriptionService),
		Reference:    handler.NewReferenceController(services.NewReferenceService(locationRepo, cfg)),
		Reporting:    handler.NewReportingController(services.NewReportingService(repositories.NewReportingRepository(db))),
	})
}

func bearerToken(t *testing.T, scope string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"scope": scope})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return "Bearer " + signed
}

func submissionBody() string {
	return `{
		"court_id": "100",
		"provenance": "XHIBIT",
		"content_date": "2026-03-01",
		"list_type": "CROWN_DAILY_LIST",
		"language": "ENGLISH",
		"display_from": "2026-03-01T00:00:00Z",
		"display_to": "2026-03-02T00:00:00Z",
		"hearing_list": {"hearings": [{"caseNumber": "C-1"}]}
	}`
}

func TestRouter_MissingAuthIs401(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/locations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_APIKeyIsReadOnly(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/publication", strings.NewReader(submissionBody()))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", "gateway-key")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_WrongScopeIs403(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/publication", strings.NewReader(submissionBody()))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, "publications:read"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_IngestThenRetrieve(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/publication", strings.NewReader(submissionBody()))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, "publications:write"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "test", rec.Header().Get("API-Version"))

	var created models.IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ArtefactID)
	assert.False(t, created.NoMatch)

	get := httptest.NewRequest(http.MethodGet, "/v1/publication/"+created.ArtefactID, nil)
	get.Header.Set("Authorization", bearerToken(t, "publications:read"))
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, get)

	require.Equal(t, http.StatusOK, getRec.Code, getRec.Body.String())
	var artefact models.Artefact
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &artefact))
	assert.Equal(t, "100", artefact.LocationID)
	assert.Equal(t, models.SensitivityClassified, artefact.Sensitivity)
}

func TestRouter_InvalidSubmissionIsProblemJSON(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/publication", strings.NewReader(`{"court_id": "100"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, "publications:write"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
	assert.Contains(t, rec.Body.String(), "list_type")
}

func TestRouter_UnknownArtefactIs404(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/publication/does-not-exist", nil)
	req.Header.Set("Authorization", bearerToken(t, "publications:read"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_OpenAPIDocumentServed(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hearing List Publication API")
}
