package models

import "time"

// Subscription search types. A location subscription targets a court;
// case subscriptions target a case number or case name appearing in a
// published list.
const (
	SearchTypeLocationID = "LOCATION_ID"
	SearchTypeCaseNumber = "CASE_NUMBER"
	SearchTypeCaseName   = "CASE_NAME"
)

func AllSearchTypes() []string {
	return []string{SearchTypeLocationID, SearchTypeCaseNumber, SearchTypeCaseName}
}

// Subscription is a user's standing interest in a target. At most one
// subscription per (user, search type, search value); total count per user
// is capped at creation time.
type Subscription struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	UserID      string    `gorm:"column:user_id;index;uniqueIndex:idx_user_target" json:"userId"`
	Email       string    `gorm:"column:email" json:"email,omitempty"`
	SearchType  string    `gorm:"column:search_type;uniqueIndex:idx_user_target" json:"searchType"`
	SearchValue string    `gorm:"column:search_value;index;uniqueIndex:idx_user_target" json:"searchValue"`
	Channel     string    `gorm:"column:channel" json:"channel,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
}

// SubscriptionListType is a user's standing interest in a list type in a
// given language. Same uniqueness and cap rules as Subscription.
type SubscriptionListType struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	UserID     string    `gorm:"column:user_id;index;uniqueIndex:idx_user_list_type" json:"userId"`
	Email      string    `gorm:"column:email" json:"email,omitempty"`
	ListTypeID string    `gorm:"column:list_type_id;index;uniqueIndex:idx_user_list_type" json:"listTypeId"`
	Language   string    `gorm:"column:language;uniqueIndex:idx_user_list_type" json:"language"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"createdAt"`
}

type SubscriptionPost struct {
	UserID      string `json:"userId" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	SearchType  string `json:"searchType" binding:"required"`
	SearchValue string `json:"searchValue" binding:"required"`
	Channel     string `json:"channel"`
}

type SubscriptionListTypePost struct {
	UserID     string `json:"userId" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	ListTypeID string `json:"listTypeId" binding:"required"`
	Language   string `json:"language" binding:"required"`
}

type SubscriptionParams struct {
	ID string `path:"id" validate:"required"`
}

type ListSubscriptionsParams struct {
	UserID string `query:"userId" validate:"required"`
}
