package testutil

import (
	"context"
	"sync"

	"github.com/vedawell/vedawell/internal/domain/refund"
	ierr "github.com/vedawell/vedawell/internal/errors"
)

// InMemoryRefundStore implements refund.Repository
type InMemoryRefundStore struct {
	mu      sync.RWMutex
	refunds map[string]*refund.Refund
	order   []string
}

func NewInMemoryRefundStore() *InMemoryRefundStore {
	return &InMemoryRefundStore{
		refunds: make(map[string]*refund.Refund),
	}
}

func (r *InMemoryRefundStore) Create(ctx context.Context, rf *refund.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.refunds[rf.ID]; exists {
		return ierr.NewError("refund already exists").Mark(ierr.ErrAlreadyExists)
	}
	cp := *rf
	r.refunds[rf.ID] = &cp
	r.order = append(r.order, rf.ID)
	return nil
}

func (r *InMemoryRefundStore) GetByID(ctx context.Context, id string) (*refund.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rf, exists := r.refunds[id]; exists {
		cp := *rf
		return &cp, nil
	}
	return nil, ierr.NewError("refund not found").Mark(ierr.ErrNotFound)
}

func (r *InMemoryRefundStore) ListByUser(ctx context.Context, userID string) ([]*refund.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*refund.Refund
	for i := len(r.order) - 1; i >= 0; i-- {
		rf := r.refunds[r.order[i]]
		if rf.UserID == userID {
			cp := *rf
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *InMemoryRefundStore) Update(ctx context.Context, rf *refund.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.refunds[rf.ID]; !exists {
		return ierr.NewError("refund not found").Mark(ierr.ErrNotFound)
	}
	cp := *rf
	r.refunds[rf.ID] = &cp
	return nil
}

func (r *InMemoryRefundStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunds = make(map[string]*refund.Refund)
	r.order = nil
}
