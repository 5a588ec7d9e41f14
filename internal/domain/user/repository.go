package user

import (
	"context"
)

// Repository is read-only from this core's perspective.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}
