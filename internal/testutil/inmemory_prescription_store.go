package testutil

import (
	"context"
	"sync"

	"github.com/vedawell/vedawell/internal/domain/prescription"
	"github.com/vedawell/vedawell/internal/types"
)

// InMemoryPrescriptionStore implements prescription.Repository
type InMemoryPrescriptionStore struct {
	mu            sync.RWMutex
	prescriptions []*prescription.Prescription
}

func NewInMemoryPrescriptionStore() *InMemoryPrescriptionStore {
	return &InMemoryPrescriptionStore{}
}

func (r *InMemoryPrescriptionStore) FindLatestActivePrescription(ctx context.Context, userID string, vertical types.Vertical) (*prescription.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *prescription.Prescription
	for _, p := range r.prescriptions {
		if p.UserID != userID || p.Vertical != vertical || !p.IsActive {
			continue
		}
		if latest == nil || p.UpdatedAt.After(latest.UpdatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

// AddPrescription seeds a prescription for tests
func (r *InMemoryPrescriptionStore) AddPrescription(p *prescription.Prescription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.prescriptions = append(r.prescriptions, &cp)
}

func (r *InMemoryPrescriptionStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prescriptions = nil
}
