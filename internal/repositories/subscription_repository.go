package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"chat-backend/internal/models"
)

// SubscriptionRepository stores per-user subscription rows and message
// counters. Billing and entitlement logic live upstream.
type SubscriptionRepository interface {
	UpsertSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error)
	IncrementMessageCount(ctx context.Context, userID string) error
}

// SubscriptionRepo is a sqlx-backed implementation.
type SubscriptionRepo struct {
	db *sqlx.DB
}

// NewSubscriptionRepo constructs a SubscriptionRepo.
func NewSubscriptionRepo(db *sqlx.DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

// UpsertSubscription creates or replaces the user's subscription row.
func (r *SubscriptionRepo) UpsertSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	var stored models.Subscription
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO subscriptions (id, user_id, subscription_type, start_date, end_date, status, payment_info)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         ON CONFLICT (user_id) DO UPDATE SET
             subscription_type = EXCLUDED.subscription_type,
             start_date = EXCLUDED.start_date,
             end_date = EXCLUDED.end_date,
             status = EXCLUDED.status,
             payment_info = EXCLUDED.payment_info
         RETURNING id, user_id, subscription_type, start_date, end_date, status, payment_info, created_at`,
		uuid.NewString(), sub.UserID, sub.SubscriptionType, sub.StartDate, sub.EndDate, sub.Status, sub.PaymentInfo).
		StructScan(&stored)
	return stored, err
}

// IncrementMessageCount bumps the user's sent-message counter, creating the
// row on first use.
func (r *SubscriptionRepo) IncrementMessageCount(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_message_counts (id, user_id, count)
         VALUES ($1, $2, 1)
         ON CONFLICT (user_id) DO UPDATE SET count = user_message_counts.count + 1`,
		uuid.NewString(), userID)
	return err
}
