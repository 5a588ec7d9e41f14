package testutil

import (
	"context"
	"sync"

	"github.com/vedawell/vedawell/internal/domain/order"
	ierr "github.com/vedawell/vedawell/internal/errors"
)

// InMemoryOrderStore implements order.Repository
type InMemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
	seq    []string
}

func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		orders: make(map[string]*order.Order),
	}
}

func (r *InMemoryOrderStore) CreateOrder(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[o.ID]; exists {
		return ierr.NewError("order already exists").Mark(ierr.ErrAlreadyExists)
	}
	cp := *o
	r.orders[o.ID] = &cp
	r.seq = append(r.seq, o.ID)
	return nil
}

func (r *InMemoryOrderStore) FindLatestOrder(ctx context.Context, patientID string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.seq) - 1; i >= 0; i-- {
		o := r.orders[r.seq[i]]
		if o.PatientID == patientID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *InMemoryOrderStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = make(map[string]*order.Order)
	r.seq = nil
}
