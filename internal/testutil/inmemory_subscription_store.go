package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vedawell/vedawell/internal/domain/subscription"
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription.Subscription
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		subscriptions: make(map[string]*subscription.Subscription),
	}
}

func (r *InMemorySubscriptionStore) Create(ctx context.Context, s *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subscriptions[s.ID]; exists {
		return ierr.NewError("subscription already exists").Mark(ierr.ErrAlreadyExists)
	}
	cp := *s
	r.subscriptions[s.ID] = &cp
	return nil
}

func (r *InMemorySubscriptionStore) GetByID(ctx context.Context, id string) (*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, exists := r.subscriptions[id]; exists {
		cp := *s
		return &cp, nil
	}
	return nil, ierr.NewError("subscription not found").Mark(ierr.ErrNotFound)
}

func (r *InMemorySubscriptionStore) Update(ctx context.Context, s *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subscriptions[s.ID]; !exists {
		return ierr.NewError("subscription not found").Mark(ierr.ErrNotFound)
	}
	cp := *s
	r.subscriptions[s.ID] = &cp
	return nil
}

func (r *InMemorySubscriptionStore) GetActiveByUserAndVertical(ctx context.Context, userID string, vertical types.Vertical) (*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.subscriptions {
		if s.UserID == userID && s.Vertical == vertical && !s.SubscriptionStatus.IsTerminal() {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ierr.NewError("subscription not found").Mark(ierr.ErrNotFound)
}

func (r *InMemorySubscriptionStore) ListDueForRenewal(ctx context.Context, asOf time.Time) ([]*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*subscription.Subscription
	for _, s := range r.subscriptions {
		if s.SubscriptionStatus == types.SubscriptionStatusActive && !s.CurrentPeriodEnd.After(asOf) {
			cp := *s
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *InMemorySubscriptionStore) ListDueForRetry(ctx context.Context, asOf time.Time) ([]*subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*subscription.Subscription
	for _, s := range r.subscriptions {
		if s.SubscriptionStatus == types.SubscriptionStatusActive && s.NextRetryAt != nil && !s.NextRetryAt.After(asOf) {
			cp := *s
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *InMemorySubscriptionStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions = make(map[string]*subscription.Subscription)
}

// InMemoryPlanStore implements subscription.PlanRepository. Plans are
// catalog data; tests seed them directly with AddPlan.
type InMemoryPlanStore struct {
	mu    sync.RWMutex
	plans map[string]*subscription.Plan
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		plans: make(map[string]*subscription.Plan),
	}
}

func (r *InMemoryPlanStore) GetPlan(ctx context.Context, id string) (*subscription.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, exists := r.plans[id]; exists {
		cp := *p
		return &cp, nil
	}
	return nil, ierr.NewError("plan not found").Mark(ierr.ErrNotFound)
}

func (r *InMemoryPlanStore) ListActivePlans(ctx context.Context) ([]*subscription.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*subscription.Plan
	for _, p := range r.plans {
		if p.IsActive {
			cp := *p
			result = append(result, &cp)
		}
	}
	return result, nil
}

// AddPlan seeds a plan for tests
func (r *InMemoryPlanStore) AddPlan(p *subscription.Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.plans[p.ID] = &cp
}

func (r *InMemoryPlanStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans = make(map[string]*subscription.Plan)
}
