package subscription

import (
	"context"
	"time"

	"github.com/vedawell/vedawell/internal/types"
)

// Repository defines the interface for subscription persistence operations
type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	GetByID(ctx context.Context, id string) (*Subscription, error)
	Update(ctx context.Context, s *Subscription) error
	// GetActiveByUserAndVertical returns the user's non-terminal
	// subscription for the vertical, if any.
	GetActiveByUserAndVertical(ctx context.Context, userID string, vertical types.Vertical) (*Subscription, error)
	// ListDueForRenewal returns ACTIVE subscriptions whose current period
	// has ended as of the given time.
	ListDueForRenewal(ctx context.Context, asOf time.Time) ([]*Subscription, error)
	// ListDueForRetry returns subscriptions whose next payment retry is due.
	ListDueForRetry(ctx context.Context, asOf time.Time) ([]*Subscription, error)
}

// PlanRepository defines the interface for plan lookups
type PlanRepository interface {
	GetPlan(ctx context.Context, id string) (*Plan, error)
	// ListActivePlans returns purchasable plans.
	ListActivePlans(ctx context.Context) ([]*Plan, error)
}
