package refund

import (
	"time"

	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/types"
)

// Refund records one refund request and its processing state. Rows are
// created once and updated only to attach an external refund id or mark
// completion.
type Refund struct {
	ID string `db:"id" json:"id"`
	// ReferenceNumber is the short id quoted to the user in support
	// conversations, e.g. RF3X8KQ2.
	ReferenceNumber  string              `db:"reference_number" json:"reference_number"`
	UserID           string              `db:"user_id" json:"user_id"`
	PaymentID        string              `db:"payment_id" json:"payment_id"`
	OrderID          string              `db:"order_id" json:"order_id,omitempty"`
	ConsultationID   string              `db:"consultation_id" json:"consultation_id,omitempty"`
	Trigger          types.RefundTrigger `db:"trigger" json:"trigger"`
	Method           types.RefundMethod  `db:"method" json:"method"`
	Amount           int64               `db:"amount" json:"amount"`
	RefundStatus     types.RefundStatus  `db:"refund_status" json:"refund_status"`
	ExternalRefundID string              `db:"external_refund_id" json:"external_refund_id,omitempty"`
	ProcessedAt      *time.Time          `db:"processed_at" json:"processed_at,omitempty"`
	types.BaseModel
}

func (r *Refund) TableName() string {
	return "refunds"
}

// ValidateAgainstPayment enforces that a refund can never exceed the
// payment it refunds.
func (r *Refund) ValidateAgainstPayment(paymentAmount int64) error {
	if r.Amount > paymentAmount {
		return ierr.NewError("refund amount exceeds payment amount").
			WithHint("Refund cannot exceed the original payment").
			WithReportableDetails(map[string]interface{}{
				"refund_amount":  r.Amount,
				"payment_amount": paymentAmount,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
