package prescription

import (
	"context"

	"github.com/vedawell/vedawell/internal/types"
)

// Repository is read-only. FindLatestActivePrescription returns nil, nil
// when the user has no active prescription for the vertical.
type Repository interface {
	FindLatestActivePrescription(ctx context.Context, userID string, vertical types.Vertical) (*Prescription, error)
}
