package models

import "time"

// Notification delivery statuses.
const (
	NotificationSent    = "Sent"
	NotificationSkipped = "Skipped"
	NotificationFailed  = "Failed"
)

// Notification is one row per (artefact, subscription) pairing, written
// once after the synchronous send attempt completes. Never retried
// afterwards; recovery goes through the resubmit endpoint.
type Notification struct {
	ID             string    `gorm:"column:id;primaryKey" json:"id"`
	ArtefactID     string    `gorm:"column:artefact_id;index" json:"artefactId"`
	SubscriptionID string    `gorm:"column:subscription_id" json:"subscriptionId"`
	UserID         string    `gorm:"column:user_id" json:"userId"`
	Status         string    `gorm:"column:status" json:"status"`
	GovNotifyID    *string   `gorm:"column:gov_notify_id" json:"govNotifyId,omitempty"`
	ErrorMessage   string    `gorm:"column:error_message" json:"errorMessage,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"createdAt"`
}

// DispatchResult aggregates the outcome of one notification fan-out.
type DispatchResult struct {
	Success            bool `json:"success"`
	TotalSubscriptions int  `json:"totalSubscriptions"`
	Sent               int  `json:"sent"`
	Failed             int  `json:"failed"`
	Skipped            int  `json:"skipped"`
}
