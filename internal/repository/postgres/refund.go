package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/vedawell/vedawell/internal/domain/refund"
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/logger"
	"github.com/vedawell/vedawell/internal/postgres"
)

type refundRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewRefundRepository(db postgres.IClient, logger *logger.Logger) refund.Repository {
	return &refundRepository{db: db, logger: logger}
}

func (r *refundRepository) Create(ctx context.Context, rf *refund.Refund) error {
	query := `
	INSERT INTO refunds (
		id, reference_number, user_id, payment_id, order_id, consultation_id,
		trigger, method, amount, refund_status, external_refund_id, processed_at,
		status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :reference_number, :user_id, :payment_id, :order_id, :consultation_id,
		:trigger, :method, :amount, :refund_status, :external_refund_id, :processed_at,
		:status, :created_at, :updated_at, :created_by, :updated_by
	)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, rf)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create refund").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *refundRepository) GetByID(ctx context.Context, id string) (*refund.Refund, error) {
	query := `SELECT * FROM refunds WHERE id = $1`

	var rf refund.Refund
	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &rf, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("refund not found").
				WithHint("Refund not found").
				WithReportableDetails(map[string]interface{}{
					"refund_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &rf, nil
}

func (r *refundRepository) ListByUser(ctx context.Context, userID string) ([]*refund.Refund, error) {
	query := `SELECT * FROM refunds WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	refunds := []*refund.Refund{}
	err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &refunds, query, userID)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return refunds, nil
}

func (r *refundRepository) Update(ctx context.Context, rf *refund.Refund) error {
	query := `
	UPDATE refunds SET
		refund_status = :refund_status,
		external_refund_id = :external_refund_id,
		processed_at = :processed_at,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id
	`

	_, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, rf)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update refund").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
