package testutil

import (
	"context"
	"fmt"
	"sync"

	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/gateway"
)

var _ gateway.BillingGateway = (*FakeBillingGateway)(nil)

// FakeBillingGateway is a deterministic in-memory gateway for tests.
// Behavior is steered per test with the Fail* flags and the subscription
// state map.
type FakeBillingGateway struct {
	mu sync.Mutex

	FailRefunds            bool
	FailSubscriptionCreate bool
	FailSubscriptionCancel bool

	// Subscriptions is the gateway-side view keyed by external id.
	Subscriptions map[string]*gateway.GatewaySubscription

	RefundCalls []FakeRefundCall
	seq         int
}

// FakeRefundCall records one Refund invocation
type FakeRefundCall struct {
	ExternalPaymentID string
	Amount            int64
}

func NewFakeBillingGateway() *FakeBillingGateway {
	return &FakeBillingGateway{
		Subscriptions: make(map[string]*gateway.GatewaySubscription),
	}
}

func (g *FakeBillingGateway) Refund(ctx context.Context, externalPaymentID string, amount int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailRefunds {
		return "", ierr.NewError("gateway refund declined").Mark(ierr.ErrGateway)
	}
	g.RefundCalls = append(g.RefundCalls, FakeRefundCall{
		ExternalPaymentID: externalPaymentID,
		Amount:            amount,
	})
	g.seq++
	return fmt.Sprintf("rfnd_fake_%d", g.seq), nil
}

func (g *FakeBillingGateway) SubscriptionCreate(ctx context.Context, planRef string, maxCycles int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailSubscriptionCreate {
		return "", ierr.NewError("gateway rejected subscription").Mark(ierr.ErrGateway)
	}
	g.seq++
	id := fmt.Sprintf("sub_fake_%d", g.seq)
	g.Subscriptions[id] = &gateway.GatewaySubscription{
		Status: gateway.SubscriptionStateActive,
	}
	return id, nil
}

func (g *FakeBillingGateway) SubscriptionCancel(ctx context.Context, externalSubscriptionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailSubscriptionCancel {
		return ierr.NewError("gateway cancel failed").Mark(ierr.ErrGateway)
	}
	if sub, ok := g.Subscriptions[externalSubscriptionID]; ok {
		sub.Status = gateway.SubscriptionStateCancelled
	}
	return nil
}

func (g *FakeBillingGateway) SubscriptionFetch(ctx context.Context, externalSubscriptionID string) (*gateway.GatewaySubscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sub, ok := g.Subscriptions[externalSubscriptionID]
	if !ok {
		return nil, ierr.NewError("gateway subscription not found").Mark(ierr.ErrGateway)
	}
	cp := *sub
	return &cp, nil
}

// SetSubscriptionState overrides the gateway-side state for a registration
func (g *FakeBillingGateway) SetSubscriptionState(id string, state gateway.SubscriptionState, periodEndEpoch int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Subscriptions[id] = &gateway.GatewaySubscription{
		Status:                state,
		CurrentPeriodEndEpoch: periodEndEpoch,
	}
}

func (g *FakeBillingGateway) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.FailRefunds = false
	g.FailSubscriptionCreate = false
	g.FailSubscriptionCancel = false
	g.Subscriptions = make(map[string]*gateway.GatewaySubscription)
	g.RefundCalls = nil
	g.seq = 0
}
