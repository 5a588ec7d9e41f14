package prescription

import (
	"time"

	"github.com/vedawell/vedawell/internal/types"
)

// Prescription is collaborator data owned by the consultation subsystem.
type Prescription struct {
	ID             string         `db:"id" json:"id"`
	UserID         string         `db:"user_id" json:"user_id"`
	Vertical       types.Vertical `db:"vertical" json:"vertical"`
	ConsultationID string         `db:"consultation_id" json:"consultation_id"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

func (p *Prescription) TableName() string {
	return "prescriptions"
}
