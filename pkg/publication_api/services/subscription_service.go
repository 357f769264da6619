package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/helpers/problem"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/listtypes"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/repositories"
)

// DefaultMaxSubscriptionsPerUser caps the standing subscriptions a single
// user may hold, counted separately for each subscription kind.
const DefaultMaxSubscriptionsPerUser = 50

// SubscriptionService manages location/case and list-type subscriptions.
type SubscriptionService struct {
	subscriptions repositories.SubscriptionRepository
	locations     repositories.LocationRepository
	listTypes     *listtypes.Config
	maxPerUser    int64
}

func NewSubscriptionService(
	subscriptions repositories.SubscriptionRepository,
	locations repositories.LocationRepository,
	listTypes *listtypes.Config,
	maxPerUser int64,
) *SubscriptionService {
	if maxPerUser <= 0 {
		maxPerUser = DefaultMaxSubscriptionsPerUser
	}
	return &SubscriptionService{
		subscriptions: subscriptions,
		locations:     locations,
		listTypes:     listTypes,
		maxPerUser:    maxPerUser,
	}
}

// CreateSubscription stores a new location or case subscription after
// checking target validity, uniqueness and the per-user cap.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, body *models.SubscriptionPost) (*models.Subscription, error) {
	searchType := strings.ToUpper(strings.TrimSpace(body.SearchType))
	if !contains(models.AllSearchTypes(), searchType) {
		return nil, problem.NewBadRequest("searchType",
			fmt.Sprintf("searchType must be one of %s", strings.Join(models.AllSearchTypes(), ", ")),
			problem.InvalidParam{Name: "searchType", Reason: "unknown search type " + body.SearchType})
	}

	if searchType == models.SearchTypeLocationID {
		exists, err := s.locations.Exists(ctx, body.SearchValue)
		if err != nil {
			return nil, problem.NewInternalServerError("location lookup failed: " + err.Error())
		}
		if !exists {
			return nil, problem.NewNotFound(body.SearchValue, "Location not found",
				problem.InvalidParam{Name: "searchValue", Reason: "no location with id " + body.SearchValue})
		}
	}

	taken, err := s.subscriptions.ExistsForTarget(ctx, body.UserID, searchType, body.SearchValue)
	if err != nil {
		return nil, problem.NewInternalServerError("subscription lookup failed: " + err.Error())
	}
	if taken {
		return nil, problem.NewBadRequest("searchValue", "subscription already exists for this target",
			problem.InvalidParam{Name: "searchValue", Reason: "duplicate subscription"})
	}

	count, err := s.subscriptions.CountByUser(ctx, body.UserID)
	if err != nil {
		return nil, problem.NewInternalServerError("subscription count failed: " + err.Error())
	}
	if count >= s.maxPerUser {
		return nil, problem.NewBadRequest("userId",
			fmt.Sprintf("subscription limit of %d reached", s.maxPerUser),
			problem.InvalidParam{Name: "userId", Reason: "too many subscriptions"})
	}

	sub := &models.Subscription{
		ID:          uuid.New().String(),
		UserID:      body.UserID,
		Email:       body.Email,
		SearchType:  searchType,
		SearchValue: body.SearchValue,
		Channel:     body.Channel,
		CreatedAt:   time.Now(),
	}
	if err := s.subscriptions.SaveSubscription(ctx, sub); err != nil {
		return nil, problem.NewInternalServerError("failed to save subscription: " + err.Error())
	}
	return sub, nil
}

func (s *SubscriptionService) DeleteSubscription(ctx context.Context, id string) error {
	sub, err := s.subscriptions.GetSubscription(ctx, id)
	if err != nil {
		return problem.NewInternalServerError("subscription lookup failed: " + err.Error())
	}
	if sub == nil {
		return problem.NewNotFound(id, "Subscription not found")
	}
	return s.subscriptions.DeleteSubscription(ctx, id)
}

func (s *SubscriptionService) ListSubscriptions(ctx context.Context, userID string) ([]models.Subscription, error) {
	return s.subscriptions.FindByUser(ctx, userID)
}

// CreateListTypeSubscription stores a list-type + language subscription.
func (s *SubscriptionService) CreateListTypeSubscription(ctx context.Context, body *models.SubscriptionListTypePost) (*models.SubscriptionListType, error) {
	if s.listTypes.ByID(body.ListTypeID) == nil {
		return nil, problem.NewNotFound(body.ListTypeID, "List type not found",
			problem.InvalidParam{Name: "listTypeId", Reason: "no list type with id " + body.ListTypeID})
	}
	language := strings.ToUpper(strings.TrimSpace(body.Language))
	if !contains(models.AllLanguages(), language) {
		return nil, problem.NewBadRequest("language",
			fmt.Sprintf("language must be one of %s", strings.Join(models.AllLanguages(), ", ")),
			problem.InvalidParam{Name: "language", Reason: "unknown language " + body.Language})
	}

	taken, err := s.subscriptions.ExistsForListType(ctx, body.UserID, body.ListTypeID, language)
	if err != nil {
		return nil, problem.NewInternalServerError("subscription lookup failed: " + err.Error())
	}
	if taken {
		return nil, problem.NewBadRequest("listTypeId", "subscription already exists for this list type",
			problem.InvalidParam{Name: "listTypeId", Reason: "duplicate subscription"})
	}

	count, err := s.subscriptions.CountListTypeByUser(ctx, body.UserID)
	if err != nil {
		return nil, problem.NewInternalServerError("subscription count failed: " + err.Error())
	}
	if count >= s.maxPerUser {
		return nil, problem.NewBadRequest("userId",
			fmt.Sprintf("subscription limit of %d reached", s.maxPerUser),
			problem.InvalidParam{Name: "userId", Reason: "too many subscriptions"})
	}

	sub := &models.SubscriptionListType{
		ID:         uuid.New().String(),
		UserID:     body.UserID,
		Email:      body.Email,
		ListTypeID: body.ListTypeID,
		Language:   language,
		CreatedAt:  time.Now(),
	}
	if err := s.subscriptions.SaveListTypeSubscription(ctx, sub); err != nil {
		return nil, problem.NewInternalServerError("failed to save subscription: " + err.Error())
	}
	return sub, nil
}

func (s *SubscriptionService) DeleteListTypeSubscription(ctx context.Context, id string) error {
	sub, err := s.subscriptions.GetListTypeSubscription(ctx, id)
	if err != nil {
		return problem.NewInternalServerError("subscription lookup failed: " + err.Error())
	}
	if sub == nil {
		return problem.NewNotFound(id, "Subscription not found")
	}
	return s.subscriptions.DeleteListTypeSubscription(ctx, id)
}

func (s *SubscriptionService) ListListTypeSubscriptions(ctx context.Context, userID string) ([]models.SubscriptionListType, error) {
	return s.subscriptions.FindListTypeByUser(ctx, userID)
}
