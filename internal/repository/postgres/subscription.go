package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vedawell/vedawell/internal/domain/subscription"
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/logger"
	"github.com/vedawell/vedawell/internal/postgres"
	"github.com/vedawell/vedawell/internal/types"
)

type subscriptionRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewSubscriptionRepository(db postgres.IClient, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	query := `
	INSERT INTO subscriptions (
		id, user_id, plan_id, vertical, subscription_status, external_subscription_id,
		current_period_start, current_period_end, failed_payment_count,
		grace_period_end_at, next_retry_at, cancelled_at, active_until, paused_at, resumed_at,
		status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :user_id, :plan_id, :vertical, :subscription_status, :external_subscription_id,
		:current_period_start, :current_period_end, :failed_payment_count,
		:grace_period_end_at, :next_retry_at, :cancelled_at, :active_until, :paused_at, :resumed_at,
		:status, :created_at, :updated_at, :created_by, :updated_by
	)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, s)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id string) (*subscription.Subscription, error) {
	// Row is locked inside a transaction so a user cancel and a renewal
	// attempt on the same subscription serialize.
	query := `SELECT * FROM subscriptions WHERE id = $1`
	if r.db.TxFromContext(ctx) != nil {
		query += ` FOR UPDATE`
	}

	var s subscription.Subscription
	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &s, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("subscription not found").
				WithHint("Subscription not found").
				WithReportableDetails(map[string]interface{}{
					"subscription_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	query := `
	UPDATE subscriptions SET
		subscription_status = :subscription_status,
		current_period_start = :current_period_start,
		current_period_end = :current_period_end,
		failed_payment_count = :failed_payment_count,
		grace_period_end_at = :grace_period_end_at,
		next_retry_at = :next_retry_at,
		cancelled_at = :cancelled_at,
		active_until = :active_until,
		paused_at = :paused_at,
		resumed_at = :resumed_at,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id
	`

	_, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, s)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) GetActiveByUserAndVertical(ctx context.Context, userID string, vertical types.Vertical) (*subscription.Subscription, error) {
	query := `
	SELECT * FROM subscriptions
	WHERE user_id = $1
	  AND vertical = $2
	  AND subscription_status IN ('ACTIVE', 'PAUSED')
	ORDER BY created_at DESC
	LIMIT 1
	`

	var s subscription.Subscription
	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &s, query, userID, vertical)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("no active subscription for vertical").
				WithHint("No active subscription found").
				WithReportableDetails(map[string]interface{}{
					"user_id":  userID,
					"vertical": vertical,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

func (r *subscriptionRepository) ListDueForRenewal(ctx context.Context, asOf time.Time) ([]*subscription.Subscription, error) {
	query := `
	SELECT * FROM subscriptions
	WHERE subscription_status = 'ACTIVE'
	  AND current_period_end <= $1
	ORDER BY current_period_end ASC
	`

	subs := []*subscription.Subscription{}
	err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &subs, query, asOf)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return subs, nil
}

func (r *subscriptionRepository) ListDueForRetry(ctx context.Context, asOf time.Time) ([]*subscription.Subscription, error) {
	query := `
	SELECT * FROM subscriptions
	WHERE subscription_status = 'ACTIVE'
	  AND next_retry_at IS NOT NULL
	  AND next_retry_at <= $1
	ORDER BY next_retry_at ASC
	`

	subs := []*subscription.Subscription{}
	err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &subs, query, asOf)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return subs, nil
}

type planRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewPlanRepository(db postgres.IClient, logger *logger.Logger) subscription.PlanRepository {
	return &planRepository{db: db, logger: logger}
}

func (r *planRepository) GetPlan(ctx context.Context, id string) (*subscription.Plan, error) {
	query := `SELECT * FROM subscription_plans WHERE id = $1`

	var p subscription.Plan
	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("plan not found").
				WithHint("Plan not found").
				WithReportableDetails(map[string]interface{}{
					"plan_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *planRepository) ListActivePlans(ctx context.Context) ([]*subscription.Plan, error) {
	query := `SELECT * FROM subscription_plans WHERE is_active = true ORDER BY vertical, duration_months`

	plans := []*subscription.Plan{}
	err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &plans, query)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return plans, nil
}
