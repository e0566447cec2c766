package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Subscription is a per-user plan record. Billing logic lives elsewhere; this
// service only stores the row (unique per user).
type Subscription struct {
	ID               string         `db:"id" json:"id"`
	UserID           string         `db:"user_id" json:"user_id"`
	SubscriptionType string         `db:"subscription_type" json:"subscription_type"`
	StartDate        *time.Time     `db:"start_date" json:"start_date,omitempty"`
	EndDate          *time.Time     `db:"end_date" json:"end_date,omitempty"`
	Status           string         `db:"status" json:"status"`
	PaymentInfo      types.JSONText `db:"payment_info" json:"payment_info,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// UserMessageCount tracks how many messages a user has sent since StartDate.
type UserMessageCount struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Count     int64     `db:"count" json:"count"`
	StartDate time.Time `db:"start_date" json:"start_date"`
}
