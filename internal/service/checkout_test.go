package service

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vedawell/vedawell/internal/api/dto"
	"github.com/vedawell/vedawell/internal/testutil"
	"github.com/vedawell/vedawell/internal/types"
)

type CheckoutServiceSuite struct {
	testutil.BaseServiceTestSuite
	checkoutService CheckoutService
	walletService   WalletService
}

func TestCheckoutService(t *testing.T) {
	suite.Run(t, new(CheckoutServiceSuite))
}

func (s *CheckoutServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := s.newParams()
	s.checkoutService = NewCheckoutService(params)
	s.walletService = NewWalletService(params)
}

func (s *CheckoutServiceSuite) newParams() ServiceParams {
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

func (s *CheckoutServiceSuite) seedBalance(userID string, amount int64) {
	_, err := s.walletService.CreditWallet(s.GetContext(), &dto.CreditWalletRequest{
		UserID:     userID,
		Amount:     amount,
		CreditType: types.CreditTypeRefund,
	})
	s.NoError(err)
}

func (s *CheckoutServiceSuite) TestPartialCoverage() {
	s.seedBalance("user-1", 30000)

	resp, err := s.checkoutService.ApplyWalletAtCheckout(s.GetContext(), &dto.CheckoutAllocationRequest{
		UserID:      "user-1",
		TotalAmount: 99900,
		UseWallet:   true,
	})
	s.NoError(err)
	s.Equal(int64(30000), resp.WalletAmountUsed)
	s.Equal(int64(69900), resp.RemainingAmount)
	s.False(resp.WalletFullyCovered)
}

func (s *CheckoutServiceSuite) TestFullCoverage() {
	s.seedBalance("user-1", 150000)

	resp, err := s.checkoutService.ApplyWalletAtCheckout(s.GetContext(), &dto.CheckoutAllocationRequest{
		UserID:      "user-1",
		TotalAmount: 99900,
		UseWallet:   true,
	})
	s.NoError(err)
	s.Equal(int64(99900), resp.WalletAmountUsed)
	s.Equal(int64(0), resp.RemainingAmount)
	s.True(resp.WalletFullyCovered)
}

func (s *CheckoutServiceSuite) TestWalletOptedOut() {
	s.seedBalance("user-1", 150000)

	resp, err := s.checkoutService.ApplyWalletAtCheckout(s.GetContext(), &dto.CheckoutAllocationRequest{
		UserID:      "user-1",
		TotalAmount: 99900,
		UseWallet:   false,
	})
	s.NoError(err)
	s.Equal(int64(0), resp.WalletAmountUsed)
	s.Equal(int64(99900), resp.RemainingAmount)
	s.False(resp.WalletFullyCovered)
}

func (s *CheckoutServiceSuite) TestNoWalletReadsAsZero() {
	resp, err := s.checkoutService.ApplyWalletAtCheckout(s.GetContext(), &dto.CheckoutAllocationRequest{
		UserID:      "user-without-wallet",
		TotalAmount: 99900,
		UseWallet:   true,
	})
	s.NoError(err)
	s.Equal(int64(0), resp.WalletAmountUsed)
	s.Equal(int64(99900), resp.RemainingAmount)
}

func (s *CheckoutServiceSuite) TestExactCoverage() {
	s.seedBalance("user-1", 99900)

	resp, err := s.checkoutService.ApplyWalletAtCheckout(s.GetContext(), &dto.CheckoutAllocationRequest{
		UserID:      "user-1",
		TotalAmount: 99900,
		UseWallet:   true,
	})
	s.NoError(err)
	s.Equal(int64(99900), resp.WalletAmountUsed)
	s.Equal(int64(0), resp.RemainingAmount)
	s.True(resp.WalletFullyCovered)
}

func (s *CheckoutServiceSuite) TestPreviewNeverDebits() {
	s.seedBalance("user-1", 30000)

	_, err := s.checkoutService.ApplyWalletAtCheckout(s.GetContext(), &dto.CheckoutAllocationRequest{
		UserID:      "user-1",
		TotalAmount: 99900,
		UseWallet:   true,
	})
	s.NoError(err)

	balance, err := s.walletService.GetBalance(s.GetContext(), "user-1")
	s.NoError(err)
	s.Equal(int64(30000), balance.Amount)

	history, err := s.walletService.GetTransactionHistory(s.GetContext(), "user-1")
	s.NoError(err)
	s.Len(history, 1)
}
