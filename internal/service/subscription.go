package service

import (
	"context"
	"time"

	"github.com/vedawell/vedawell/internal/api/dto"
	"github.com/vedawell/vedawell/internal/cache"
	"github.com/vedawell/vedawell/internal/domain/order"
	"github.com/vedawell/vedawell/internal/domain/subscription"
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/gateway"
	"github.com/vedawell/vedawell/internal/types"
)

const planCacheExpiry = 5 * time.Minute

// SubscriptionService owns the subscription lifecycle. Status transitions
// happen only here; the scheduler and webhook handlers call in, they never
// write subscription rows themselves.
type SubscriptionService interface {
	// CreateSubscription registers the recurring billing with the gateway
	// and opens the first period, anchored to calendar months.
	CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)

	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)

	// GetActiveSubscriptionForVertical returns the user's non-terminal
	// subscription in the vertical, or ErrNotFound.
	GetActiveSubscriptionForVertical(ctx context.Context, userID string, vertical types.Vertical) (*dto.SubscriptionResponse, error)

	// GetAvailablePlans returns purchasable plans, cached briefly.
	GetAvailablePlans(ctx context.Context) ([]*dto.PlanResponse, error)

	// ProcessAutoRenewal verifies the gateway charged the next period and
	// advances the subscription into it, triggering an auto-reorder.
	ProcessAutoRenewal(ctx context.Context, subscriptionID string) (*dto.RenewalResult, error)

	// HandleFailedPayment records a failed renewal charge: schedules the
	// next retry and grace window, or expires the subscription after the
	// final failure.
	HandleFailedPayment(ctx context.Context, subscriptionID string) (*dto.FailedPaymentResult, error)

	// CancelSubscription stops billing immediately; access continues until
	// the end of the paid period.
	CancelSubscription(ctx context.Context, userID, subscriptionID string) (*dto.SubscriptionResponse, error)

	PauseSubscription(ctx context.Context, userID, subscriptionID string) (*dto.SubscriptionResponse, error)
	ResumeSubscription(ctx context.Context, userID, subscriptionID string) (*dto.SubscriptionResponse, error)

	// TriggerAutoReorder creates the next period's medication order from
	// the latest active prescription and the previous order's delivery
	// details.
	TriggerAutoReorder(ctx context.Context, subscriptionID string) (*dto.ReorderResult, error)

	// ProcessDueRenewals runs ProcessAutoRenewal for every subscription
	// whose period has ended. Invoked by the scheduler.
	ProcessDueRenewals(ctx context.Context, asOf time.Time) ([]*dto.RenewalResult, error)

	// ProcessDueRetries re-attempts renewal for subscriptions whose retry
	// time has arrived. Invoked by the scheduler.
	ProcessDueRetries(ctx context.Context, asOf time.Time) ([]*dto.RenewalResult, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
	}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid subscription request").
			Mark(ierr.ErrValidation)
	}

	if _, err := s.UserRepo.GetByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	plan, err := s.PlanRepo.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, ierr.NewError("plan is not purchasable").
			WithHint("This plan is no longer available").
			WithReportableDetails(map[string]interface{}{
				"plan_id": plan.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	existing, err := s.SubRepo.GetActiveByUserAndVertical(ctx, req.UserID, plan.Vertical)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, ierr.NewError("user already has a subscription in this vertical").
			WithHint("You already have a subscription for this treatment").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": existing.ID,
				"vertical":        plan.Vertical,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	// Gateway registration happens first; a local row only exists once
	// the gateway accepted the recurring mandate.
	externalID, err := s.Gateway.SubscriptionCreate(ctx, plan.ID, s.maxRenewalCycles())
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("The payment gateway rejected the subscription").
			Mark(ierr.ErrGateway)
	}

	now := time.Now().UTC()
	sub := &subscription.Subscription{
		ID:                     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		UserID:                 req.UserID,
		PlanID:                 plan.ID,
		Vertical:               plan.Vertical,
		SubscriptionStatus:     types.SubscriptionStatusActive,
		ExternalSubscriptionID: externalID,
		CurrentPeriodStart:     now,
		CurrentPeriodEnd:       now.AddDate(0, plan.DurationMonths, 0),
		BaseModel:              types.GetDefaultBaseModel(ctx),
	}
	if err := s.SubRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription created",
		"subscription_id", sub.ID,
		"user_id", sub.UserID,
		"plan_id", plan.ID,
		"vertical", sub.Vertical,
		"period_end", sub.CurrentPeriodEnd,
	)
	return dto.FromSubscription(sub), nil
}

func (s *subscriptionService) maxRenewalCycles() int {
	if s.Config.Billing.MaxRenewalCycles > 0 {
		return s.Config.Billing.MaxRenewalCycles
	}
	return 12
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromSubscription(sub), nil
}

func (s *subscriptionService) GetActiveSubscriptionForVertical(ctx context.Context, userID string, vertical types.Vertical) (*dto.SubscriptionResponse, error) {
	if err := vertical.Validate(); err != nil {
		return nil, err
	}
	sub, err := s.SubRepo.GetActiveByUserAndVertical(ctx, userID, vertical)
	if err != nil {
		return nil, err
	}
	return dto.FromSubscription(sub), nil
}

func (s *subscriptionService) GetAvailablePlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	cacheKey := cache.GenerateKey(cache.PrefixPlan, "active")
	if cached, ok := s.Cache.Get(ctx, cacheKey); ok {
		if plans, ok := cached.([]*dto.PlanResponse); ok {
			return plans, nil
		}
	}

	plans, err := s.PlanRepo.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, dto.FromPlan(p))
	}
	s.Cache.Set(ctx, cacheKey, resp, planCacheExpiry)
	return resp, nil
}

func (s *subscriptionService) ProcessAutoRenewal(ctx context.Context, subscriptionID string) (*dto.RenewalResult, error) {
	sub, err := s.SubRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.SubscriptionStatus != types.SubscriptionStatusActive {
		return nil, ierr.NewError("subscription is not active").
			WithHint("Only active subscriptions renew").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": sub.ID,
				"status":          sub.SubscriptionStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	// The gateway call stays outside the transaction below so slow
	// network I/O never holds a row lock.
	gwSub, err := s.Gateway.SubscriptionFetch(ctx, sub.ExternalSubscriptionID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not fetch the subscription from the payment gateway").
			Mark(ierr.ErrGateway)
	}

	result := &dto.RenewalResult{SubscriptionID: sub.ID}
	if gwSub.Status != gateway.SubscriptionStateActive {
		result.FailureReason = string(types.RenewalFailureGatewayNotActive)
		s.Logger.Warnw("renewal skipped, gateway subscription not active",
			"subscription_id", sub.ID,
			"gateway_status", gwSub.Status,
		)
		return result, nil
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		// Re-read under lock: a concurrent cancel wins over renewal.
		locked, err := s.SubRepo.GetByID(ctx, sub.ID)
		if err != nil {
			return err
		}
		if locked.SubscriptionStatus != types.SubscriptionStatusActive {
			result.FailureReason = string(locked.SubscriptionStatus)
			return nil
		}

		locked.CurrentPeriodStart = locked.CurrentPeriodEnd
		locked.CurrentPeriodEnd = time.Unix(gwSub.CurrentPeriodEndEpoch, 0).UTC()
		locked.FailedPaymentCount = 0
		locked.GracePeriodEndAt = nil
		locked.NextRetryAt = nil
		if err := s.SubRepo.Update(ctx, locked); err != nil {
			return err
		}

		sub = locked
		result.Renewed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Renewed {
		return result, nil
	}

	s.Logger.Infow("subscription renewed",
		"subscription_id", sub.ID,
		"period_start", sub.CurrentPeriodStart,
		"period_end", sub.CurrentPeriodEnd,
	)

	// A reorder failure never rolls back the renewal; fulfillment issues
	// are handled by coordinators.
	reorder, err := s.TriggerAutoReorder(ctx, sub.ID)
	if err != nil {
		s.Logger.Errorw("auto reorder failed after renewal",
			"subscription_id", sub.ID,
			"error", err,
		)
		return result, nil
	}
	result.ReorderOrderID = reorder.OrderID
	result.ReorderSkipReason = reorder.SkipReason
	return result, nil
}

func (s *subscriptionService) HandleFailedPayment(ctx context.Context, subscriptionID string) (*dto.FailedPaymentResult, error) {
	var result *dto.FailedPaymentResult
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub, err := s.SubRepo.GetByID(ctx, subscriptionID)
		if err != nil {
			return err
		}
		if sub.SubscriptionStatus.IsTerminal() {
			return ierr.NewError("subscription is no longer billable").
				WithHint("This subscription has already ended").
				WithReportableDetails(map[string]interface{}{
					"subscription_id": sub.ID,
					"status":          sub.SubscriptionStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		now := time.Now().UTC()
		failures := sub.FailedPaymentCount

		if failures >= types.MaxFailedPayments {
			sub.SubscriptionStatus = types.SubscriptionStatusExpired
			sub.FailedPaymentCount = failures + 1
			sub.NextRetryAt = nil
			sub.GracePeriodEndAt = nil
		} else {
			retryAt := now.AddDate(0, 0, types.RetryDaysSchedule[failures])
			graceEnd := now.AddDate(0, 0, types.GracePeriodDays)
			sub.FailedPaymentCount = failures + 1
			sub.NextRetryAt = &retryAt
			sub.GracePeriodEndAt = &graceEnd
		}

		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return err
		}

		result = &dto.FailedPaymentResult{
			SubscriptionID:     sub.ID,
			Status:             string(sub.SubscriptionStatus),
			FailedPaymentCount: sub.FailedPaymentCount,
			NextRetryAt:        sub.NextRetryAt,
			GracePeriodEndAt:   sub.GracePeriodEndAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Warnw("failed payment recorded",
		"subscription_id", result.SubscriptionID,
		"status", result.Status,
		"failed_payment_count", result.FailedPaymentCount,
		"next_retry_at", result.NextRetryAt,
	)
	return result, nil
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, userID, subscriptionID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.loadOwnedSubscription(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.SubscriptionStatus.IsTerminal() {
		return nil, invalidTransitionError(sub, "cancel")
	}

	// Stop gateway billing before recording the cancellation; if this
	// fails the subscription stays as it was and the user can retry.
	if err := s.Gateway.SubscriptionCancel(ctx, sub.ExternalSubscriptionID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The payment gateway could not cancel the subscription").
			Mark(ierr.ErrGateway)
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		locked, err := s.SubRepo.GetByID(ctx, sub.ID)
		if err != nil {
			return err
		}
		if locked.SubscriptionStatus.IsTerminal() {
			sub = locked
			return nil
		}

		now := time.Now().UTC()
		activeUntil := locked.CurrentPeriodEnd
		locked.SubscriptionStatus = types.SubscriptionStatusCancelled
		locked.CancelledAt = &now
		locked.ActiveUntil = &activeUntil
		if err := s.SubRepo.Update(ctx, locked); err != nil {
			return err
		}
		sub = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription cancelled",
		"subscription_id", sub.ID,
		"user_id", userID,
		"active_until", sub.ActiveUntil,
	)
	return dto.FromSubscription(sub), nil
}

func (s *subscriptionService) PauseSubscription(ctx context.Context, userID, subscriptionID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.loadOwnedSubscription(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.SubscriptionStatus != types.SubscriptionStatusActive {
		return nil, invalidTransitionError(sub, "pause")
	}

	now := time.Now().UTC()
	sub.SubscriptionStatus = types.SubscriptionStatusPaused
	sub.PausedAt = &now
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription paused", "subscription_id", sub.ID, "user_id", userID)
	return dto.FromSubscription(sub), nil
}

func (s *subscriptionService) ResumeSubscription(ctx context.Context, userID, subscriptionID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.loadOwnedSubscription(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.SubscriptionStatus != types.SubscriptionStatusPaused {
		return nil, invalidTransitionError(sub, "resume")
	}

	now := time.Now().UTC()
	sub.SubscriptionStatus = types.SubscriptionStatusActive
	sub.ResumedAt = &now
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription resumed", "subscription_id", sub.ID, "user_id", userID)
	return dto.FromSubscription(sub), nil
}

func (s *subscriptionService) loadOwnedSubscription(ctx context.Context, userID, subscriptionID string) (*subscription.Subscription, error) {
	sub, err := s.SubRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !sub.IsOwnedBy(userID) {
		return nil, ierr.NewError("subscription does not belong to user").
			WithHint("You can only manage your own subscriptions").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
			}).
			Mark(ierr.ErrPermissionDenied)
	}
	return sub, nil
}

func invalidTransitionError(sub *subscription.Subscription, action string) error {
	return ierr.NewError("invalid subscription state for " + action).
		WithHint("This subscription cannot be " + action + "d in its current state").
		WithReportableDetails(map[string]interface{}{
			"subscription_id": sub.ID,
			"status":          sub.SubscriptionStatus,
		}).
		Mark(ierr.ErrInvalidOperation)
}

func (s *subscriptionService) TriggerAutoReorder(ctx context.Context, subscriptionID string) (*dto.ReorderResult, error) {
	sub, err := s.SubRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	rx, err := s.PrescriptionRepo.FindLatestActivePrescription(ctx, sub.UserID, sub.Vertical)
	if err != nil {
		return nil, err
	}
	if rx == nil {
		s.Logger.Warnw("auto reorder skipped",
			"subscription_id", sub.ID,
			"reason", types.ReorderSkipNoActivePrescription,
		)
		return &dto.ReorderResult{
			Skipped:    true,
			SkipReason: string(types.ReorderSkipNoActivePrescription),
		}, nil
	}

	lastOrder, err := s.OrderRepo.FindLatestOrder(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}
	if lastOrder == nil {
		s.Logger.Warnw("auto reorder skipped",
			"subscription_id", sub.ID,
			"reason", types.ReorderSkipNoPreviousOrder,
		)
		return &dto.ReorderResult{
			Skipped:    true,
			SkipReason: string(types.ReorderSkipNoPreviousOrder),
		}, nil
	}

	// A prescription change since the last shipment routes the reorder
	// through coordinator review instead of auto-shipping.
	needsReview := rx.ID != lastOrder.PrescriptionID

	o := &order.Order{
		ID:                     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ORDER),
		PatientID:              sub.UserID,
		PrescriptionID:         rx.ID,
		ConsultationID:         rx.ConsultationID,
		DeliveryAddress:        lastOrder.DeliveryAddress,
		DeliveryCity:           lastOrder.DeliveryCity,
		DeliveryPincode:        lastOrder.DeliveryPincode,
		MedicationCost:         lastOrder.MedicationCost,
		DeliveryCost:           lastOrder.DeliveryCost,
		TotalAmount:            lastOrder.TotalAmount,
		IsReorder:              true,
		ParentOrderID:          lastOrder.ID,
		NeedsCoordinatorReview: needsReview,
		BaseModel:              types.GetDefaultBaseModel(ctx),
	}
	if err := s.OrderRepo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	s.Logger.Infow("auto reorder created",
		"subscription_id", sub.ID,
		"order_id", o.ID,
		"parent_order_id", lastOrder.ID,
		"needs_coordinator_review", needsReview,
	)
	return &dto.ReorderResult{
		OrderID:                o.ID,
		NeedsCoordinatorReview: needsReview,
	}, nil
}

func (s *subscriptionService) ProcessDueRenewals(ctx context.Context, asOf time.Time) ([]*dto.RenewalResult, error) {
	due, err := s.SubRepo.ListDueForRenewal(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return s.renewBatch(ctx, due)
}

func (s *subscriptionService) ProcessDueRetries(ctx context.Context, asOf time.Time) ([]*dto.RenewalResult, error) {
	due, err := s.SubRepo.ListDueForRetry(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return s.renewBatch(ctx, due)
}

// renewBatch processes subscriptions independently: one failure never
// stops the sweep.
func (s *subscriptionService) renewBatch(ctx context.Context, subs []*subscription.Subscription) ([]*dto.RenewalResult, error) {
	results := make([]*dto.RenewalResult, 0, len(subs))
	for _, sub := range subs {
		res, err := s.ProcessAutoRenewal(ctx, sub.ID)
		if err != nil {
			s.Logger.Errorw("renewal failed",
				"subscription_id", sub.ID,
				"error", err,
			)
			results = append(results, &dto.RenewalResult{
				SubscriptionID: sub.ID,
				FailureReason:  err.Error(),
			})
			continue
		}
		results = append(results, res)
	}
	return results, nil
}
