package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/vedawell/vedawell/internal/domain/prescription"
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/logger"
	"github.com/vedawell/vedawell/internal/postgres"
	"github.com/vedawell/vedawell/internal/types"
)

type prescriptionRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewPrescriptionRepository(db postgres.IClient, logger *logger.Logger) prescription.Repository {
	return &prescriptionRepository{db: db, logger: logger}
}

func (r *prescriptionRepository) FindLatestActivePrescription(ctx context.Context, userID string, vertical types.Vertical) (*prescription.Prescription, error) {
	query := `
	SELECT * FROM prescriptions
	WHERE user_id = $1
	  AND vertical = $2
	  AND is_active = true
	ORDER BY updated_at DESC
	LIMIT 1
	`

	var p prescription.Prescription
	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &p, query, userID, vertical)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &p, nil
}
