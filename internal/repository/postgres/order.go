package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/vedawell/vedawell/internal/domain/order"
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/logger"
	"github.com/vedawell/vedawell/internal/postgres"
)

type orderRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewOrderRepository(db postgres.IClient, logger *logger.Logger) order.Repository {
	return &orderRepository{db: db, logger: logger}
}

func (r *orderRepository) CreateOrder(ctx context.Context, o *order.Order) error {
	query := `
	INSERT INTO orders (
		id, patient_id, prescription_id, consultation_id,
		delivery_address, delivery_city, delivery_pincode,
		medication_cost, delivery_cost, total_amount,
		is_reorder, parent_order_id, needs_coordinator_review,
		status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :patient_id, :prescription_id, :consultation_id,
		:delivery_address, :delivery_city, :delivery_pincode,
		:medication_cost, :delivery_cost, :total_amount,
		:is_reorder, :parent_order_id, :needs_coordinator_review,
		:status, :created_at, :updated_at, :created_by, :updated_by
	)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, o)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create order").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *orderRepository) FindLatestOrder(ctx context.Context, patientID string) (*order.Order, error) {
	query := `
	SELECT * FROM orders
	WHERE patient_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT 1
	`

	var o order.Order
	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &o, query, patientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &o, nil
}
