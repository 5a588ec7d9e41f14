package order

import (
	"context"
)

// Repository is the fulfillment collaborator's creation interface.
// FindLatestOrder returns nil, nil when the user has no orders.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	FindLatestOrder(ctx context.Context, patientID string) (*Order, error)
}
