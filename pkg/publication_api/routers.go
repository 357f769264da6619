package publication_api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/loopfz/gadgeto/tonic"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/handler"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/helpers/problem"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/middleware"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/wI2L/fizz"
	"github.com/wI2L/fizz/openapi"
)

var (
	apiVersionHeader = fizz.Header(
		"API-Version",
		"The API version of the response",
		"", // empty string means: primitive string in the spec
	)

	notFoundResponse = fizz.Response(
		"404",
		"Not Found",
		nil, // no inline schema
		nil, // no content media type
		nil, // no extra headers
	)
)

// Controllers bundles all HTTP controllers for the router.
type Controllers struct {
	Publication  *handler.PublicationController
	Subscription *handler.SubscriptionController
	Reference    *handler.ReferenceController
	Reporting    *handler.ReportingController
	Upload       *handler.UploadController
}

func init() {
	tonic.SetErrorHook(func(c *gin.Context, err error) (int, interface{}) {
		// Bind/validate errors become 400 with invalid params
		var be tonic.BindError
		if errors.As(err, &be) || isValidationErr(err) {
			invalids := invalidParamsFromBinding(err, models.Submission{})
			apiErr := problem.NewBadRequest("body", "Invalid request", invalids...)
			c.Header("Content-Type", "application/problem+json")
			return apiErr.Status, apiErr
		}

		// APIError passes through unchanged
		if apiErr, ok := err.(problem.APIError); ok {
			c.Header("Content-Type", "application/problem+json")
			return apiErr.Status, apiErr
		}

		internal := problem.NewInternalServerError(err.Error())
		c.Header("Content-Type", "application/problem+json")
		return internal.Status, internal
	})
}

func isValidationErr(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

func invalidParamsFromBinding(err error, sample any) []problem.InvalidParam {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []problem.InvalidParam{{Name: "body", Reason: err.Error()}}
	}

	t := reflect.TypeOf(sample)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	out := make([]problem.InvalidParam, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		// StructField -> json tag
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if tag := f.Tag.Get("json"); tag != "" && tag != "-" {
				name = strings.Split(tag, ",")[0]
			}
		}
		out = append(out, problem.InvalidParam{
			Name:   name,
			Reason: humanReason(fe),
		})
	}
	return out
}

func humanReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fe.Error()
	}
}

func NewRouter(apiVersion string, c Controllers) *fizz.Fizz {
	g := gin.Default()
	g.Use(APIVersionMiddleware(apiVersion))
	f := fizz.NewFromEngine(g)

	f.Generator().SetServers([]*openapi.Server{
		{
			URL:         "https://publication.opencourt.uk/v1",
			Description: "Production",
		},
	})

	gen := f.Generator()

	gen.API().Components.Headers["API-Version"] = &openapi.HeaderOrRef{
		Header: &openapi.Header{
			Description: "The API version of the response",
			Schema: &openapi.SchemaOrRef{
				Schema: &openapi.Schema{
					Type: "string",
				},
			},
		},
	}

	info := &openapi.Info{
		Title:       "Hearing List Publication API v1",
		Description: "Ingestion, search and notification API for court and tribunal hearing lists",
		Version:     apiVersion,
		Contact: &openapi.Contact{
			Name:  "OpenCourt publication team",
			Email: "publication@opencourt.uk",
			URL:   "https://opencourt.uk",
		},
	}

	root := f.Group("/v1", "API v1", "Publication API V1 routes")

	// Read-only publication endpoints
	read := root.Group("", "Read", "Read-only endpoints", middleware.RequireAccess("publications:read"))
	read.GET("/publication/:artefactId",
		[]fizz.OperationOption{
			fizz.Summary("Retrieve artefact metadata"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(c.Publication.RetrieveArtefact, 200),
	)

	read.GET("/publication/:artefactId/payload",
		[]fizz.OperationOption{
			fizz.Summary("Retrieve the raw hearing list payload of an artefact"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(c.Publication.RetrievePayload, 200),
	)

	read.GET("/publication/:artefactId/notifications",
		[]fizz.OperationOption{
			fizz.Summary("List the notification outcomes of an artefact"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(c.Publication.ListNotifications, 200),
	)

	read.GET("/publication/locationId/:locationId",
		[]fizz.OperationOption{
			fizz.Summary("List artefacts currently displayable for a location"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(c.Publication.ListByLocation, 200),
	)

	read.GET("/publication/search",
		[]fizz.OperationOption{
			fizz.Summary("Search extracted cases by case number or case name"),
			apiVersionHeader,
		},
		tonic.Handler(c.Publication.SearchCases, 200),
	)

	read.GET("/locations",
		[]fizz.OperationOption{
			fizz.Summary("List known court and tribunal locations"),
			apiVersionHeader,
		},
		tonic.Handler(c.Reference.ListLocations, 200),
	)

	read.GET("/locations/:locationId",
		[]fizz.OperationOption{
			fizz.Summary("Retrieve a single location"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(c.Reference.GetLocation, 200),
	)

	read.GET("/list-types",
		[]fizz.OperationOption{
			fizz.Summary("List configured hearing list types"),
			apiVersionHeader,
		},
		tonic.Handler(c.Reference.ListListTypes, 200),
	)

	read.GET("/reporting/ingestion",
		[]fizz.OperationOption{
			fizz.Summary("Ingestion statistics over a reporting window"),
			apiVersionHeader,
		},
		tonic.Handler(c.Reporting.GetIngestionReport, 200),
	)

	// Write endpoints
	write := root.Group("", "Write", "Publication ingestion and resubmission", middleware.RequireAccess("publications:write"))
	write.POST("/publication",
		[]fizz.OperationOption{
			fizz.Summary("Submit a hearing list publication"),
			apiVersionHeader,
		},
		tonic.Handler(c.Publication.IngestPublication, 201),
	)

	write.POST("/publication/:artefactId/resubmit",
		[]fizz.OperationOption{
			fizz.Summary("Re-run downstream processing for an existing artefact"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(c.Publication.Resubmit, 200),
	)

	// Subscription endpoints
	subRead := root.Group("", "Subscriptions read", "List subscriptions", middleware.RequireAccess("subscriptions:read"))
	subRead.GET("/subscription",
		[]fizz.OperationOption{
			fizz.Summary("List the subscriptions of a user"),
			apiVersionHeader,
		},
		tonic.Handler(c.Subscription.ListSubscriptions, 200),
	)

	subRead.GET("/subscription/list-type",
		[]fizz.OperationOption{
			fizz.Summary("List the list type subscriptions of a user"),
			apiVersionHeader,
		},
		tonic.Handler(c.Subscription.ListListTypeSubscriptions, 200),
	)

	subWrite := root.Group("", "Subscriptions write", "Create and delete subscriptions", middleware.RequireAccess("subscriptions:write"))
	subWrite.POST("/subscription",
		[]fizz.OperationOption{
			fizz.Summary("Create a location or case subscription"),
			apiVersionHeader,
		},
		tonic.Handler(c.Subscription.CreateSubscription, 201),
	)

	subWrite.DELETE("/subscription/:id",
		[]fizz.OperationOption{
			fizz.Summary("Delete a subscription"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(c.Subscription.DeleteSubscription, 204),
	)

	subWrite.POST("/subscription/list-type",
		[]fizz.OperationOption{
			fizz.Summary("Create a list type subscription"),
			apiVersionHeader,
		},
		tonic.Handler(c.Subscription.CreateListTypeSubscription, 201),
	)

	subWrite.DELETE("/subscription/list-type/:id",
		[]fizz.OperationOption{
			fizz.Summary("Delete a list type subscription"),
			apiVersionHeader,
			notFoundResponse,
		},
		tonic.Handler(c.Subscription.DeleteListTypeSubscription, 204),
	)

	// Multipart HTML upload; bypasses tonic because of the file part.
	if c.Upload != nil {
		g.POST("/api/v1/pdda-html", middleware.RequireAccess("publications:write"), c.Upload.Upload)
	}

	// OpenAPI documentation
	f.GET("/v1/openapi.json", []fizz.OperationOption{}, f.OpenAPI(info, "json"))

	return f
}

type apiVersionWriter struct {
	gin.ResponseWriter
	version string
}

func (w *apiVersionWriter) WriteHeader(code int) {
	if code >= 200 && code < 300 {
		w.Header().Set("API-Version", w.version)
	}
	w.ResponseWriter.WriteHeader(code)
}

func APIVersionMiddleware(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &apiVersionWriter{c.Writer, version}
		c.Next()
	}
}
