package refund

import (
	"context"
)

// Repository defines the interface for refund persistence operations
type Repository interface {
	Create(ctx context.Context, r *Refund) error
	GetByID(ctx context.Context, id string) (*Refund, error)
	// ListByUser returns the user's refunds newest first.
	ListByUser(ctx context.Context, userID string) ([]*Refund, error)
	Update(ctx context.Context, r *Refund) error
}
