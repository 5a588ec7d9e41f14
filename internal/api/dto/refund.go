package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vedawell/vedawell/internal/domain/refund"
	"github.com/vedawell/vedawell/internal/types"
)

// InitiateRefundRequest represents the request to initiate a refund
// against a captured payment.
type InitiateRefundRequest struct {
	UserID         string              `json:"user_id" validate:"required"`
	PaymentID      string              `json:"payment_id" validate:"required"`
	Trigger        types.RefundTrigger `json:"trigger" validate:"required"`
	Method         types.RefundMethod  `json:"method" validate:"required"`
	OrderID        string              `json:"order_id,omitempty"`
	ConsultationID string              `json:"consultation_id,omitempty"`
	Notes          string              `json:"notes,omitempty"`
}

func (r *InitiateRefundRequest) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return err
	}
	if err := r.Trigger.Validate(); err != nil {
		return err
	}
	return r.Method.Validate()
}

// RefundResponse represents a refund in API responses.
// ExpectedSettlementDays is set only for gateway refunds.
type RefundResponse struct {
	ID                     string     `json:"id"`
	ReferenceNumber        string     `json:"reference_number"`
	UserID                 string     `json:"user_id"`
	PaymentID              string     `json:"payment_id"`
	Trigger                string     `json:"trigger"`
	Method                 string     `json:"method"`
	Status                 string     `json:"status"`
	Percentage             int64      `json:"percentage"`
	Amount                 int64      `json:"amount"`
	ExternalRefundID       string     `json:"external_refund_id,omitempty"`
	ExpectedSettlementDays string     `json:"expected_settlement_days,omitempty"`
	ProcessedAt            *time.Time `json:"processed_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
}

// FromRefund converts a refund to an API response
func FromRefund(r *refund.Refund) *RefundResponse {
	pct, _ := r.Trigger.Percentage()
	resp := &RefundResponse{
		ID:               r.ID,
		ReferenceNumber:  r.ReferenceNumber,
		UserID:           r.UserID,
		PaymentID:        r.PaymentID,
		Trigger:          string(r.Trigger),
		Method:           string(r.Method),
		Status:           string(r.RefundStatus),
		Percentage:       pct,
		Amount:           r.Amount,
		ExternalRefundID: r.ExternalRefundID,
		ProcessedAt:      r.ProcessedAt,
		CreatedAt:        r.CreatedAt,
	}
	if r.Method == types.RefundMethodOriginalPayment {
		resp.ExpectedSettlementDays = types.GatewayRefundSettlementDays
	}
	return resp
}
