package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/opencourt-uk/publication-service/pkg/jobs"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/handler"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/helpers/notify"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	api "github.com/opencourt-uk/publication-service/pkg/publication_api"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/database"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/listtypes"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/repositories"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/services"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/services/pdf"
)

const apiVersion = "1.0.0"

func main() {
	_ = godotenv.Load()

	listTypeConfig, err := listtypes.Load(envOr("LIST_TYPES_CONFIG", "./config/listtypes.yaml"))
	if err != nil {
		log.Fatalf("failed to load list type config: %v", err)
	}

	dbcon := "postgres://" +
		os.Getenv("DB_USERNAME") + ":" +
		os.Getenv("DB_PASSWORD") + "@" +
		os.Getenv("DB_HOSTNAME") + "/" +
		os.Getenv("DB_DBNAME") + "?search_path=" +
		os.Getenv("DB_SCHEMA")
	db, err := database.Connect(dbcon)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	artefactRepo := repositories.NewArtefactRepository(db)
	ingestionLogRepo := repositories.NewIngestionLogRepository(db)
	locationRepo := repositories.NewLocationRepository(db)
	searchRepo := repositories.NewSearchRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	reportingRepo := repositories.NewReportingRepository(db)
	htmlArtefactRepo := repositories.NewHtmlArtefactRepository(db)

	sender := notify.NewClient(
		envOr("NOTIFY_API_BASE", "https://api.notifications.service.gov.uk"),
		os.Getenv("NOTIFY_SERVICE_ID"),
		os.Getenv("NOTIFY_API_KEY"),
	)
	dispatcher := services.NewDispatcher(
		subscriptionRepo, notificationRepo, locationRepo, searchRepo, listTypeConfig, sender,
		services.DispatcherConfig{
			TemplateID:     os.Getenv("NOTIFY_TEMPLATE_ID"),
			MaxRetries:     envUint("NOTIFY_MAX_RETRIES", 1),
			RetryBaseDelay: time.Duration(envUint("NOTIFY_RETRY_BASE_MS", 1000)) * time.Millisecond,
			MaxConcurrent:  int64(envUint("NOTIFY_MAX_CONCURRENT", 8)),
		},
	)

	validationService := services.NewValidationService(listTypeConfig, locationRepo)
	extractor := services.NewSearchExtractor(listTypeConfig, searchRepo)
	renderer := pdf.NewRenderer(envOr("PDF_TEMP_DIR", os.TempDir()))
	publicationService := services.NewPublicationService(
		validationService, artefactRepo, ingestionLogRepo, locationRepo,
		searchRepo, notificationRepo, extractor, renderer, dispatcher, listTypeConfig,
	)
	subscriptionService := services.NewSubscriptionService(
		subscriptionRepo, locationRepo, listTypeConfig,
		int64(envUint("MAX_SUBSCRIPTIONS_PER_USER", services.DefaultMaxSubscriptionsPerUser)),
	)

	controllers := api.Controllers{
		Publication:  handler.NewPublicationController(publicationService),
		Subscription: handler.NewSubscriptionController(subscriptionService),
		Reference:    handler.NewReferenceController(services.NewReferenceService(locationRepo, listTypeConfig)),
		Reporting:    handler.NewReportingController(services.NewReportingService(reportingRepo)),
		Upload:       handler.NewUploadController(services.NewUploadService(htmlArtefactRepo)),
	}

	jobs.ScheduleDailyExpiry(context.Background(), publicationService)

	router := api.NewRouter(apiVersion, controllers)

	port := envOr("PORT", "1337")
	log.Println("Server is running on port " + port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
