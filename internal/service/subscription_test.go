package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vedawell/vedawell/internal/api/dto"
	"github.com/vedawell/vedawell/internal/domain/order"
	"github.com/vedawell/vedawell/internal/domain/prescription"
	"github.com/vedawell/vedawell/internal/domain/subscription"
	"github.com/vedawell/vedawell/internal/domain/user"
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/gateway"
	"github.com/vedawell/vedawell/internal/testutil"
	"github.com/vedawell/vedawell/internal/types"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	subscriptionService SubscriptionService
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.subscriptionService = NewSubscriptionService(s.newParams())

	s.GetStores().UserRepo.(*testutil.InMemoryUserStore).AddUser(&user.User{
		ID:    "user-1",
		Email: "user-1@example.com",
	})
	s.GetStores().PlanRepo.(*testutil.InMemoryPlanStore).AddPlan(&subscription.Plan{
		ID:             "plan-hair-1m",
		Name:           "Hair Care Monthly",
		Vertical:       types.VerticalHair,
		DurationMonths: 1,
		Price:          99900,
		IsActive:       true,
	})
}

func (s *SubscriptionServiceSuite) newParams() ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		WalletRepo:       stores.WalletRepo,
		PaymentRepo:      stores.PaymentRepo,
		RefundRepo:       stores.RefundRepo,
		SubRepo:          stores.SubRepo,
		PlanRepo:         stores.PlanRepo,
		UserRepo:         stores.UserRepo,
		OrderRepo:        stores.OrderRepo,
		PrescriptionRepo: stores.PrescriptionRepo,
		Gateway:          s.GetGateway(),
		Cache:            s.GetCache(),
	}
}

func (s *SubscriptionServiceSuite) createSubscription() *dto.SubscriptionResponse {
	resp, err := s.subscriptionService.CreateSubscription(s.GetContext(), &dto.CreateSubscriptionRequest{
		UserID: "user-1",
		PlanID: "plan-hair-1m",
	})
	s.Require().NoError(err)
	return resp
}

func (s *SubscriptionServiceSuite) TestCreateSubscription() {
	before := time.Now().UTC()
	resp := s.createSubscription()

	s.Equal("user-1", resp.UserID)
	s.Equal(string(types.VerticalHair), resp.Vertical)
	s.Equal(string(types.SubscriptionStatusActive), resp.Status)
	s.Equal(0, resp.FailedPaymentCount)

	// Period end is exactly one calendar month after the start.
	s.Equal(resp.CurrentPeriodStart.AddDate(0, 1, 0), resp.CurrentPeriodEnd)
	s.WithinDuration(before.AddDate(0, 1, 0), resp.CurrentPeriodEnd, time.Minute)
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionUnknownUser() {
	_, err := s.subscriptionService.CreateSubscription(s.GetContext(), &dto.CreateSubscriptionRequest{
		UserID: "user-missing",
		PlanID: "plan-hair-1m",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionInactivePlan() {
	s.GetStores().PlanRepo.(*testutil.InMemoryPlanStore).AddPlan(&subscription.Plan{
		ID:             "plan-retired",
		Name:           "Retired Plan",
		Vertical:       types.VerticalSkin,
		DurationMonths: 1,
		Price:          49900,
		IsActive:       false,
	})

	_, err := s.subscriptionService.CreateSubscription(s.GetContext(), &dto.CreateSubscriptionRequest{
		UserID: "user-1",
		PlanID: "plan-retired",
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionDuplicateVertical() {
	s.createSubscription()

	_, err := s.subscriptionService.CreateSubscription(s.GetContext(), &dto.CreateSubscriptionRequest{
		UserID: "user-1",
		PlanID: "plan-hair-1m",
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *SubscriptionServiceSuite) TestCreateSubscriptionGatewayFailure() {
	s.GetGateway().FailSubscriptionCreate = true

	_, err := s.subscriptionService.CreateSubscription(s.GetContext(), &dto.CreateSubscriptionRequest{
		UserID: "user-1",
		PlanID: "plan-hair-1m",
	})
	s.Error(err)
	s.True(ierr.IsGateway(err))

	// No local row without a gateway registration.
	_, err = s.subscriptionService.GetActiveSubscriptionForVertical(s.GetContext(), "user-1", types.VerticalHair)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriptionServiceSuite) TestFailedPaymentRetrySchedule() {
	created := s.createSubscription()

	// The first three failures schedule retries after 1, 3, and 7 days.
	for i, wantDays := range []int{1, 3, 7} {
		now := time.Now().UTC()
		result, err := s.subscriptionService.HandleFailedPayment(s.GetContext(), created.ID)
		s.NoError(err)
		s.Equal(string(types.SubscriptionStatusActive), result.Status)
		s.Equal(i+1, result.FailedPaymentCount)
		s.Require().NotNil(result.NextRetryAt)
		s.Require().NotNil(result.GracePeriodEndAt)
		s.WithinDuration(now.AddDate(0, 0, wantDays), *result.NextRetryAt, time.Minute)
		s.WithinDuration(now.AddDate(0, 0, types.GracePeriodDays), *result.GracePeriodEndAt, time.Minute)
	}

	// The fourth failure expires the subscription and is still counted.
	result, err := s.subscriptionService.HandleFailedPayment(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(string(types.SubscriptionStatusExpired), result.Status)
	s.Equal(types.MaxFailedPayments+1, result.FailedPaymentCount)
	s.Nil(result.NextRetryAt)
	s.Nil(result.GracePeriodEndAt)

	// A fifth call is rejected outright.
	_, err = s.subscriptionService.HandleFailedPayment(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestCancelSubscription() {
	created := s.createSubscription()

	resp, err := s.subscriptionService.CancelSubscription(s.GetContext(), "user-1", created.ID)
	s.NoError(err)
	s.Equal(string(types.SubscriptionStatusCancelled), resp.Status)
	s.NotNil(resp.CancelledAt)
	s.Require().NotNil(resp.ActiveUntil)
	// Access continues until the end of the paid period.
	s.Equal(created.CurrentPeriodEnd, *resp.ActiveUntil)

	// Gateway billing was stopped.
	gwSub, err := s.GetGateway().SubscriptionFetch(s.GetContext(), "sub_fake_1")
	s.NoError(err)
	s.Equal(gateway.SubscriptionStateCancelled, gwSub.Status)
}

func (s *SubscriptionServiceSuite) TestCancelSubscriptionNotOwner() {
	created := s.createSubscription()

	_, err := s.subscriptionService.CancelSubscription(s.GetContext(), "user-2", created.ID)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *SubscriptionServiceSuite) TestCancelSubscriptionTwice() {
	created := s.createSubscription()

	_, err := s.subscriptionService.CancelSubscription(s.GetContext(), "user-1", created.ID)
	s.NoError(err)

	_, err = s.subscriptionService.CancelSubscription(s.GetContext(), "user-1", created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestCancelSubscriptionGatewayFailure() {
	created := s.createSubscription()
	s.GetGateway().FailSubscriptionCancel = true

	_, err := s.subscriptionService.CancelSubscription(s.GetContext(), "user-1", created.ID)
	s.Error(err)
	s.True(ierr.IsGateway(err))

	// Subscription unchanged; the user can retry.
	resp, err := s.subscriptionService.GetSubscription(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(string(types.SubscriptionStatusActive), resp.Status)
}

func (s *SubscriptionServiceSuite) TestPauseAndResume() {
	created := s.createSubscription()

	paused, err := s.subscriptionService.PauseSubscription(s.GetContext(), "user-1", created.ID)
	s.NoError(err)
	s.Equal(string(types.SubscriptionStatusPaused), paused.Status)

	// Pausing twice is invalid.
	_, err = s.subscriptionService.PauseSubscription(s.GetContext(), "user-1", created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	resumed, err := s.subscriptionService.ResumeSubscription(s.GetContext(), "user-1", created.ID)
	s.NoError(err)
	s.Equal(string(types.SubscriptionStatusActive), resumed.Status)

	// Resuming an active subscription is invalid.
	_, err = s.subscriptionService.ResumeSubscription(s.GetContext(), "user-1", created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestResumeRequiresPaused() {
	created := s.createSubscription()

	_, err := s.subscriptionService.CancelSubscription(s.GetContext(), "user-1", created.ID)
	s.NoError(err)

	_, err = s.subscriptionService.ResumeSubscription(s.GetContext(), "user-1", created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) seedFulfillmentHistory(prescriptionID string) {
	s.GetStores().PrescriptionRepo.(*testutil.InMemoryPrescriptionStore).AddPrescription(&prescription.Prescription{
		ID:             prescriptionID,
		UserID:         "user-1",
		Vertical:       types.VerticalHair,
		ConsultationID: "cons-1",
		IsActive:       true,
		UpdatedAt:      time.Now().UTC(),
	})
	s.Require().NoError(s.GetStores().OrderRepo.CreateOrder(s.GetContext(), &order.Order{
		ID:              "order-1",
		PatientID:       "user-1",
		PrescriptionID:  "rx-old",
		DeliveryAddress: "12 Lake View Road",
		DeliveryCity:    "Bengaluru",
		DeliveryPincode: "560001",
		MedicationCost:  80000,
		DeliveryCost:    5000,
		TotalAmount:     85000,
	}))
}

func (s *SubscriptionServiceSuite) TestAutoRenewal() {
	created := s.createSubscription()
	s.seedFulfillmentHistory("rx-old")

	periodEnd := time.Now().UTC().AddDate(0, 1, 0)
	s.GetGateway().SetSubscriptionState("sub_fake_1", gateway.SubscriptionStateActive, periodEnd.Unix())

	result, err := s.subscriptionService.ProcessAutoRenewal(s.GetContext(), created.ID)
	s.NoError(err)
	s.True(result.Renewed)
	s.NotEmpty(result.ReorderOrderID)

	resp, err := s.subscriptionService.GetSubscription(s.GetContext(), created.ID)
	s.NoError(err)
	// New period starts where the old one ended and runs to the
	// gateway-reported end.
	s.Equal(created.CurrentPeriodEnd, resp.CurrentPeriodStart)
	s.Equal(periodEnd.Unix(), resp.CurrentPeriodEnd.Unix())
	s.Equal(0, resp.FailedPaymentCount)
	s.Nil(resp.NextRetryAt)
	s.Nil(resp.GracePeriodEndAt)
}

func (s *SubscriptionServiceSuite) TestAutoRenewalResetsFailureState() {
	created := s.createSubscription()
	s.seedFulfillmentHistory("rx-old")

	_, err := s.subscriptionService.HandleFailedPayment(s.GetContext(), created.ID)
	s.NoError(err)

	periodEnd := time.Now().UTC().AddDate(0, 1, 0)
	s.GetGateway().SetSubscriptionState("sub_fake_1", gateway.SubscriptionStateActive, periodEnd.Unix())

	result, err := s.subscriptionService.ProcessAutoRenewal(s.GetContext(), created.ID)
	s.NoError(err)
	s.True(result.Renewed)

	resp, err := s.subscriptionService.GetSubscription(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(0, resp.FailedPaymentCount)
	s.Nil(resp.NextRetryAt)
	s.Nil(resp.GracePeriodEndAt)
}

func (s *SubscriptionServiceSuite) TestAutoRenewalGatewayNotActive() {
	created := s.createSubscription()

	s.GetGateway().SetSubscriptionState("sub_fake_1", gateway.SubscriptionStateHalted, 0)

	result, err := s.subscriptionService.ProcessAutoRenewal(s.GetContext(), created.ID)
	s.NoError(err)
	s.False(result.Renewed)
	s.Equal("RAZORPAY_NOT_ACTIVE", result.FailureReason)

	// Subscription untouched.
	resp, err := s.subscriptionService.GetSubscription(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(created.CurrentPeriodEnd.Unix(), resp.CurrentPeriodEnd.Unix())
}

func (s *SubscriptionServiceSuite) TestAutoRenewalRequiresActive() {
	created := s.createSubscription()

	_, err := s.subscriptionService.CancelSubscription(s.GetContext(), "user-1", created.ID)
	s.NoError(err)

	_, err = s.subscriptionService.ProcessAutoRenewal(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestAutoReorderPrescriptionChanged() {
	created := s.createSubscription()
	// Current prescription differs from the one on the last order.
	s.seedFulfillmentHistory("rx-new")

	result, err := s.subscriptionService.TriggerAutoReorder(s.GetContext(), created.ID)
	s.NoError(err)
	s.False(result.Skipped)
	s.True(result.NeedsCoordinatorReview)

	o, err := s.GetStores().OrderRepo.FindLatestOrder(s.GetContext(), "user-1")
	s.NoError(err)
	s.Require().NotNil(o)
	s.True(o.IsReorder)
	s.True(o.NeedsCoordinatorReview)
	s.Equal("rx-new", o.PrescriptionID)
	s.Equal("order-1", o.ParentOrderID)
	// Delivery and cost details copied from the previous order.
	s.Equal("12 Lake View Road", o.DeliveryAddress)
	s.Equal("Bengaluru", o.DeliveryCity)
	s.Equal("560001", o.DeliveryPincode)
	s.Equal(int64(85000), o.TotalAmount)
}

func (s *SubscriptionServiceSuite) TestAutoReorderPrescriptionUnchanged() {
	created := s.createSubscription()
	s.seedFulfillmentHistory("rx-old")

	result, err := s.subscriptionService.TriggerAutoReorder(s.GetContext(), created.ID)
	s.NoError(err)
	s.False(result.Skipped)
	s.False(result.NeedsCoordinatorReview)
}

func (s *SubscriptionServiceSuite) TestAutoReorderNoActivePrescription() {
	created := s.createSubscription()

	result, err := s.subscriptionService.TriggerAutoReorder(s.GetContext(), created.ID)
	s.NoError(err)
	s.True(result.Skipped)
	s.Equal(string(types.ReorderSkipNoActivePrescription), result.SkipReason)
}

func (s *SubscriptionServiceSuite) TestAutoReorderNoPreviousOrder() {
	created := s.createSubscription()
	s.GetStores().PrescriptionRepo.(*testutil.InMemoryPrescriptionStore).AddPrescription(&prescription.Prescription{
		ID:        "rx-1",
		UserID:    "user-1",
		Vertical:  types.VerticalHair,
		IsActive:  true,
		UpdatedAt: time.Now().UTC(),
	})

	result, err := s.subscriptionService.TriggerAutoReorder(s.GetContext(), created.ID)
	s.NoError(err)
	s.True(result.Skipped)
	s.Equal(string(types.ReorderSkipNoPreviousOrder), result.SkipReason)
}

func (s *SubscriptionServiceSuite) TestProcessDueRenewals() {
	created := s.createSubscription()
	s.seedFulfillmentHistory("rx-old")

	nextPeriodEnd := time.Now().UTC().AddDate(0, 2, 0)
	s.GetGateway().SetSubscriptionState("sub_fake_1", gateway.SubscriptionStateActive, nextPeriodEnd.Unix())

	// Nothing due before the period ends.
	results, err := s.subscriptionService.ProcessDueRenewals(s.GetContext(), time.Now().UTC())
	s.NoError(err)
	s.Empty(results)

	// After the period end the subscription renews.
	results, err = s.subscriptionService.ProcessDueRenewals(s.GetContext(), created.CurrentPeriodEnd.Add(time.Hour))
	s.NoError(err)
	s.Len(results, 1)
	s.True(results[0].Renewed)
}

func (s *SubscriptionServiceSuite) TestProcessDueRetries() {
	created := s.createSubscription()
	s.seedFulfillmentHistory("rx-old")

	_, err := s.subscriptionService.HandleFailedPayment(s.GetContext(), created.ID)
	s.NoError(err)

	nextPeriodEnd := time.Now().UTC().AddDate(0, 1, 0)
	s.GetGateway().SetSubscriptionState("sub_fake_1", gateway.SubscriptionStateActive, nextPeriodEnd.Unix())

	// Not due yet: the first retry is a day out.
	results, err := s.subscriptionService.ProcessDueRetries(s.GetContext(), time.Now().UTC())
	s.NoError(err)
	s.Empty(results)

	results, err = s.subscriptionService.ProcessDueRetries(s.GetContext(), time.Now().UTC().AddDate(0, 0, 2))
	s.NoError(err)
	s.Len(results, 1)
	s.True(results[0].Renewed)
}

func (s *SubscriptionServiceSuite) TestGetAvailablePlans() {
	plans, err := s.subscriptionService.GetAvailablePlans(s.GetContext())
	s.NoError(err)
	s.Len(plans, 1)
	s.Equal("plan-hair-1m", plans[0].ID)
	s.Equal(int64(999), plans[0].DisplayPrice)

	// Newly added plans are invisible until the cache expires.
	s.GetStores().PlanRepo.(*testutil.InMemoryPlanStore).AddPlan(&subscription.Plan{
		ID:             "plan-skin-1m",
		Name:           "Skin Care Monthly",
		Vertical:       types.VerticalSkin,
		DurationMonths: 1,
		Price:          79900,
		IsActive:       true,
	})
	plans, err = s.subscriptionService.GetAvailablePlans(s.GetContext())
	s.NoError(err)
	s.Len(plans, 1)
}
