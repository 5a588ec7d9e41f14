package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vedawell/vedawell/internal/domain/subscription"
	"github.com/vedawell/vedawell/internal/types"
)

// CreateSubscriptionRequest represents the request to create a subscription
type CreateSubscriptionRequest struct {
	UserID string `json:"user_id" validate:"required"`
	PlanID string `json:"plan_id" validate:"required"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	return validator.New().Struct(r)
}

// SubscriptionResponse represents a subscription in API responses
type SubscriptionResponse struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	PlanID             string     `json:"plan_id"`
	Vertical           string     `json:"vertical"`
	Status             string     `json:"status"`
	CurrentPeriodStart time.Time  `json:"current_period_start"`
	CurrentPeriodEnd   time.Time  `json:"current_period_end"`
	FailedPaymentCount int        `json:"failed_payment_count"`
	GracePeriodEndAt   *time.Time `json:"grace_period_end_at,omitempty"`
	NextRetryAt        *time.Time `json:"next_retry_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	ActiveUntil        *time.Time `json:"active_until,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// FromSubscription converts a subscription to an API response
func FromSubscription(s *subscription.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:                 s.ID,
		UserID:             s.UserID,
		PlanID:             s.PlanID,
		Vertical:           string(s.Vertical),
		Status:             string(s.SubscriptionStatus),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		FailedPaymentCount: s.FailedPaymentCount,
		GracePeriodEndAt:   s.GracePeriodEndAt,
		NextRetryAt:        s.NextRetryAt,
		CancelledAt:        s.CancelledAt,
		ActiveUntil:        s.ActiveUntil,
		CreatedAt:          s.CreatedAt,
	}
}

// PlanResponse represents a purchasable plan in API responses
type PlanResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Vertical       string `json:"vertical"`
	DurationMonths int    `json:"duration_months"`
	Price          int64  `json:"price"`
	DisplayPrice   int64  `json:"display_price"`
}

// FromPlan converts a plan to an API response
func FromPlan(p *subscription.Plan) *PlanResponse {
	return &PlanResponse{
		ID:             p.ID,
		Name:           p.Name,
		Vertical:       string(p.Vertical),
		DurationMonths: p.DurationMonths,
		Price:          p.Price,
		DisplayPrice:   types.DisplayAmount(p.Price),
	}
}

// RenewalResult reports the outcome of one auto-renewal attempt
type RenewalResult struct {
	SubscriptionID    string `json:"subscription_id"`
	Renewed           bool   `json:"renewed"`
	FailureReason     string `json:"failure_reason,omitempty"`
	ReorderOrderID    string `json:"reorder_order_id,omitempty"`
	ReorderSkipReason string `json:"reorder_skip_reason,omitempty"`
}

// FailedPaymentResult reports the state transition after a failed renewal charge
type FailedPaymentResult struct {
	SubscriptionID     string     `json:"subscription_id"`
	Status             string     `json:"status"`
	FailedPaymentCount int        `json:"failed_payment_count"`
	NextRetryAt        *time.Time `json:"next_retry_at,omitempty"`
	GracePeriodEndAt   *time.Time `json:"grace_period_end_at,omitempty"`
}

// ReorderResult reports the outcome of an auto-reorder attempt
type ReorderResult struct {
	OrderID                string `json:"order_id,omitempty"`
	Skipped                bool   `json:"skipped"`
	SkipReason             string `json:"skip_reason,omitempty"`
	NeedsCoordinatorReview bool   `json:"needs_coordinator_review"`
}
