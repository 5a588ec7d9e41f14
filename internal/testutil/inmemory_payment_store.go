package testutil

import (
	"context"
	"sync"

	"github.com/vedawell/vedawell/internal/domain/payment"
	ierr "github.com/vedawell/vedawell/internal/errors"
)

// InMemoryPaymentStore implements payment.Repository. Payments are
// collaborator data; tests seed them directly with AddPayment.
type InMemoryPaymentStore struct {
	mu       sync.RWMutex
	payments map[string]*payment.Payment
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		payments: make(map[string]*payment.Payment),
	}
}

func (r *InMemoryPaymentStore) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, exists := r.payments[id]; exists {
		cp := *p
		return &cp, nil
	}
	return nil, ierr.NewError("payment not found").Mark(ierr.ErrNotFound)
}

// AddPayment seeds a payment for tests
func (r *InMemoryPaymentStore) AddPayment(p *payment.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.ID] = &cp
}

func (r *InMemoryPaymentStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = make(map[string]*payment.Payment)
}
