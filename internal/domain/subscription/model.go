package subscription

import (
	"time"

	"github.com/vedawell/vedawell/internal/types"
)

// Plan is a purchasable subscription plan for one treatment vertical.
type Plan struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Vertical       types.Vertical `db:"vertical" json:"vertical"`
	DurationMonths int            `db:"duration_months" json:"duration_months"`
	// Price in minor currency units.
	Price    int64 `db:"price" json:"price"`
	IsActive bool  `db:"is_active" json:"is_active"`
	types.BaseModel
}

func (p *Plan) TableName() string {
	return "subscription_plans"
}

// Subscription is owned and mutated exclusively by the billing engine.
// Created on successful initial charge; terminal rows are retained for audit.
type Subscription struct {
	ID                     string                   `db:"id" json:"id"`
	UserID                 string                   `db:"user_id" json:"user_id"`
	PlanID                 string                   `db:"plan_id" json:"plan_id"`
	Vertical               types.Vertical           `db:"vertical" json:"vertical"`
	SubscriptionStatus     types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	ExternalSubscriptionID string                   `db:"external_subscription_id" json:"external_subscription_id"`
	CurrentPeriodStart     time.Time                `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd       time.Time                `db:"current_period_end" json:"current_period_end"`
	FailedPaymentCount     int                      `db:"failed_payment_count" json:"failed_payment_count"`
	GracePeriodEndAt       *time.Time               `db:"grace_period_end_at" json:"grace_period_end_at,omitempty"`
	NextRetryAt            *time.Time               `db:"next_retry_at" json:"next_retry_at,omitempty"`
	CancelledAt            *time.Time               `db:"cancelled_at" json:"cancelled_at,omitempty"`
	ActiveUntil            *time.Time               `db:"active_until" json:"active_until,omitempty"`
	PausedAt               *time.Time               `db:"paused_at" json:"paused_at,omitempty"`
	ResumedAt              *time.Time               `db:"resumed_at" json:"resumed_at,omitempty"`
	types.BaseModel
}

func (s *Subscription) TableName() string {
	return "subscriptions"
}

// IsOwnedBy reports whether the subscription belongs to the user.
func (s *Subscription) IsOwnedBy(userID string) bool {
	return s.UserID == userID
}
