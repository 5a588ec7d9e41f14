package types

import (
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/samber/lo"
)

// RefundTrigger is the business event that entitles a user to a refund
type RefundTrigger string

const (
	RefundTriggerDoctorNotSuitable       RefundTrigger = "DOCTOR_NOT_SUITABLE"
	RefundTriggerPatientDeclinesReferral RefundTrigger = "PATIENT_DECLINES_REFERRAL"
	RefundTriggerCancelBeforeReview      RefundTrigger = "CANCEL_BEFORE_REVIEW"
	RefundTriggerCancelAfterReview       RefundTrigger = "CANCEL_AFTER_REVIEW"
	RefundTriggerTechnicalError          RefundTrigger = "TECHNICAL_ERROR"
	RefundTriggerDeliveryIssue           RefundTrigger = "DELIVERY_ISSUE"
)

// refundPercentages maps each trigger to the percentage of the original
// payment that is refunded.
var refundPercentages = map[RefundTrigger]int64{
	RefundTriggerDoctorNotSuitable:       100,
	RefundTriggerPatientDeclinesReferral: 100,
	RefundTriggerCancelBeforeReview:      100,
	RefundTriggerCancelAfterReview:       50,
	RefundTriggerTechnicalError:          100,
	RefundTriggerDeliveryIssue:           100,
}

// Percentage returns the refund percentage for the trigger. Unknown
// triggers are a validation error, checked before any write happens.
func (t RefundTrigger) Percentage() (int64, error) {
	pct, ok := refundPercentages[t]
	if !ok {
		return 0, ierr.NewError("unknown refund trigger").
			WithHint("No refund policy exists for this trigger").
			WithReportableDetails(map[string]any{
				"trigger": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return pct, nil
}

func (t RefundTrigger) Validate() error {
	_, err := t.Percentage()
	return err
}

// RefundMethod is where the refunded money goes
type RefundMethod string

const (
	RefundMethodWallet          RefundMethod = "WALLET"
	RefundMethodOriginalPayment RefundMethod = "ORIGINAL_PAYMENT"
)

func (m RefundMethod) Validate() error {
	allowedValues := []string{
		string(RefundMethodWallet),
		string(RefundMethodOriginalPayment),
	}
	if !lo.Contains(allowedValues, string(m)) {
		return ierr.NewError("invalid refund method").
			WithHint("Invalid refund method").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"method":  m,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RefundStatus is the processing state of a refund
type RefundStatus string

const (
	RefundStatusPending    RefundStatus = "PENDING"
	RefundStatusProcessing RefundStatus = "PROCESSING"
	RefundStatusCompleted  RefundStatus = "COMPLETED"
	RefundStatusFailed     RefundStatus = "FAILED"
)

// GatewayRefundSettlementDays is the settlement window communicated to the
// caller for ORIGINAL_PAYMENT refunds. Informational, not enforced locally.
const GatewayRefundSettlementDays = "5-7"

// PaymentStatus is the state of an upstream payment (collaborator data)
type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)
