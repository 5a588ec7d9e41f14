package payment

import (
	"github.com/vedawell/vedawell/internal/types"
)

// Payment is collaborator data owned by the checkout/payments subsystem.
// This core only reads it to size refunds.
type Payment struct {
	ID                string              `db:"id" json:"id"`
	UserID            string              `db:"user_id" json:"user_id"`
	Amount            int64               `db:"amount" json:"amount"`
	ExternalPaymentID string              `db:"external_payment_id" json:"external_payment_id"`
	PaymentStatus     types.PaymentStatus `db:"payment_status" json:"payment_status"`
	types.BaseModel
}

func (p *Payment) TableName() string {
	return "payments"
}
