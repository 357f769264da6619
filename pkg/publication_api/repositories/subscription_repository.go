package repositories

import (
	"context"
	"errors"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"gorm.io/gorm"
)

// SubscriptionRepository stores location/case and list-type subscriptions.
type SubscriptionRepository interface {
	SaveSubscription(ctx context.Context, sub *models.Subscription) error
	DeleteSubscription(ctx context.Context, id string) error
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	FindByUser(ctx context.Context, userID string) ([]models.Subscription, error)
	FindByLocation(ctx context.Context, locationID string) ([]models.Subscription, error)
	FindByCases(ctx context.Context, caseNumbers, caseNames []string) ([]models.Subscription, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	ExistsForTarget(ctx context.Context, userID, searchType, searchValue string) (bool, error)

	SaveListTypeSubscription(ctx context.Context, sub *models.SubscriptionListType) error
	DeleteListTypeSubscription(ctx context.Context, id string) error
	GetListTypeSubscription(ctx context.Context, id string) (*models.SubscriptionListType, error)
	FindListTypeByUser(ctx context.Context, userID string) ([]models.SubscriptionListType, error)
	FindByListType(ctx context.Context, listTypeID, language string) ([]models.SubscriptionListType, error)
	CountListTypeByUser(ctx context.Context, userID string) (int64, error)
	ExistsForListType(ctx context.Context, userID, listTypeID, language string) (bool, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepository) DeleteSubscription(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Subscription{}, "id = ?", id).Error
}

func (r *subscriptionRepository) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) FindByLocation(ctx context.Context, locationID string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("search_type = ? AND search_value = ?", models.SearchTypeLocationID, locationID).
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) FindByCases(ctx context.Context, caseNumbers, caseNames []string) ([]models.Subscription, error) {
	if len(caseNumbers) == 0 && len(caseNames) == 0 {
		return nil, nil
	}

	q := r.db.WithContext(ctx).Model(&models.Subscription{})
	switch {
	case len(caseNumbers) > 0 && len(caseNames) > 0:
		q = q.Where(
			"(search_type = ? AND search_value IN ?) OR (search_type = ? AND search_value IN ?)",
			models.SearchTypeCaseNumber, caseNumbers, models.SearchTypeCaseName, caseNames,
		)
	case len(caseNumbers) > 0:
		q = q.Where("search_type = ? AND search_value IN ?", models.SearchTypeCaseNumber, caseNumbers)
	default:
		q = q.Where("search_type = ? AND search_value IN ?", models.SearchTypeCaseName, caseNames)
	}

	var subs []models.Subscription
	err := q.Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *subscriptionRepository) ExistsForTarget(ctx context.Context, userID, searchType, searchValue string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND search_type = ? AND search_value = ?", userID, searchType, searchValue).
		Count(&n).Error
	return n > 0, err
}

func (r *subscriptionRepository) SaveListTypeSubscription(ctx context.Context, sub *models.SubscriptionListType) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepository) DeleteListTypeSubscription(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.SubscriptionListType{}, "id = ?", id).Error
}

func (r *subscriptionRepository) GetListTypeSubscription(ctx context.Context, id string) (*models.SubscriptionListType, error) {
	var sub models.SubscriptionListType
	err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindListTypeByUser(ctx context.Context, userID string) ([]models.SubscriptionListType, error) {
	var subs []models.SubscriptionListType
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) FindByListType(ctx context.Context, listTypeID, language string) ([]models.SubscriptionListType, error) {
	var subs []models.SubscriptionListType
	err := r.db.WithContext(ctx).Where("list_type_id = ? AND language = ?", listTypeID, language).Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) CountListTypeByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.SubscriptionListType{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *subscriptionRepository) ExistsForListType(ctx context.Context, userID, listTypeID, language string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.SubscriptionListType{}).
		Where("user_id = ? AND list_type_id = ? AND language = ?", userID, listTypeID, language).Count(&n).Error
	return n > 0, err
}
