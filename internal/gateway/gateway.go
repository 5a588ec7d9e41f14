package gateway

import (
	"context"

	ierr "github.com/vedawell/vedawell/internal/errors"
)

// SubscriptionState is the gateway-side state of a recurring billing
// registration.
type SubscriptionState string

const (
	SubscriptionStateActive    SubscriptionState = "active"
	SubscriptionStateHalted    SubscriptionState = "halted"
	SubscriptionStateCancelled SubscriptionState = "cancelled"
	SubscriptionStateCompleted SubscriptionState = "completed"
)

// GatewaySubscription is the gateway's view of a recurring registration.
type GatewaySubscription struct {
	Status SubscriptionState
	// CurrentPeriodEndEpoch is the unix epoch second at which the
	// gateway-billed period ends.
	CurrentPeriodEndEpoch int64
}

// BillingGateway is the narrow capability interface this core depends on.
// Implementations wrap a concrete vendor client; the core never references
// a vendor type. All calls are blocking network I/O with unbounded latency
// and must happen outside any held ledger lock. Failures surface
// immediately; the core performs no network-level retries.
type BillingGateway interface {
	// Refund issues a refund against the original payment and returns the
	// gateway's refund id.
	Refund(ctx context.Context, externalPaymentID string, amount int64) (string, error)

	// SubscriptionCreate registers a recurring billing subscription and
	// returns the gateway's subscription id.
	SubscriptionCreate(ctx context.Context, planRef string, maxCycles int) (string, error)

	// SubscriptionCancel stops the recurring registration.
	SubscriptionCancel(ctx context.Context, externalSubscriptionID string) error

	// SubscriptionFetch returns the gateway's current view of the
	// registration.
	SubscriptionFetch(ctx context.Context, externalSubscriptionID string) (*GatewaySubscription, error)
}

// notConfigured is the default wiring when no vendor adapter is installed.
// Every call fails with a gateway error; deployments provide their own
// BillingGateway implementation.
type notConfigured struct{}

// NewNotConfigured returns a BillingGateway that rejects every call.
func NewNotConfigured() BillingGateway {
	return notConfigured{}
}

func (notConfigured) Refund(ctx context.Context, externalPaymentID string, amount int64) (string, error) {
	return "", errNotConfigured()
}

func (notConfigured) SubscriptionCreate(ctx context.Context, planRef string, maxCycles int) (string, error) {
	return "", errNotConfigured()
}

func (notConfigured) SubscriptionCancel(ctx context.Context, externalSubscriptionID string) error {
	return errNotConfigured()
}

func (notConfigured) SubscriptionFetch(ctx context.Context, externalSubscriptionID string) (*GatewaySubscription, error) {
	return nil, errNotConfigured()
}

func errNotConfigured() error {
	return ierr.NewError("billing gateway not configured").
		WithHint("Install a billing gateway adapter before using gateway-backed operations").
		Mark(ierr.ErrGateway)
}
