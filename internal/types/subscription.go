package types

import (
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus is the lifecycle state of a subscription.
// CANCELLED and EXPIRED are terminal.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPaused    SubscriptionStatus = "PAUSED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
)

func (s SubscriptionStatus) Validate() error {
	allowedValues := []string{
		string(SubscriptionStatusActive),
		string(SubscriptionStatusPaused),
		string(SubscriptionStatusCancelled),
		string(SubscriptionStatusExpired),
	}
	if !lo.Contains(allowedValues, string(s)) {
		return ierr.NewError("invalid subscription status").
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"status":  s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether no further transitions are allowed.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionStatusCancelled || s == SubscriptionStatusExpired
}

// Vertical is a treatment vertical the service operates in
type Vertical string

const (
	VerticalHair       Vertical = "HAIR"
	VerticalSkin       Vertical = "SKIN"
	VerticalWeight     Vertical = "WEIGHT"
	VerticalSexualCare Vertical = "SEXUAL_CARE"
)

func (v Vertical) Validate() error {
	allowedValues := []string{
		string(VerticalHair),
		string(VerticalSkin),
		string(VerticalWeight),
		string(VerticalSexualCare),
	}
	if !lo.Contains(allowedValues, string(v)) {
		return ierr.NewError("invalid vertical").
			WithHint("Invalid vertical").
			WithReportableDetails(map[string]any{
				"allowed":  allowedValues,
				"vertical": v,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Failed payment handling constants. The schedule is a business retry
// schedule driven by the external scheduler, not a network retry policy.
const (
	// MaxFailedPayments is the number of failures after which a
	// subscription expires.
	MaxFailedPayments = 3
	// GracePeriodDays is the window after a failed payment during which
	// service access continues.
	GracePeriodDays = 3
)

// RetryDaysSchedule is indexed by the pre-increment failure count: the 1st
// failure retries after 1 day, the 2nd after 3, the 3rd after 7.
var RetryDaysSchedule = [MaxFailedPayments]int{1, 3, 7}

// RenewalFailureReason explains why ProcessAutoRenewal did not renew
type RenewalFailureReason string

const (
	RenewalFailureGatewayNotActive RenewalFailureReason = "RAZORPAY_NOT_ACTIVE"
)

// ReorderSkipReason explains why TriggerAutoReorder created no order
type ReorderSkipReason string

const (
	ReorderSkipNoActivePrescription ReorderSkipReason = "NO_ACTIVE_PRESCRIPTION"
	ReorderSkipNoPreviousOrder      ReorderSkipReason = "NO_PREVIOUS_ORDER"
)
