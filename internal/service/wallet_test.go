package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vedawell/vedawell/internal/api/dto"
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/testutil"
	"github.com/vedawell/vedawell/internal/types"
)

type WalletServiceSuite struct {
	testutil.BaseServiceTestSuite
	walletService WalletService
}

func TestWalletService(t *testing.T) {
	suite.Run(t, new(WalletServiceSuite))
}

func (s *WalletServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.walletService = NewWalletService(s.newParams())
}

func (s *WalletServiceSuite) newParams() ServiceParams {
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

func (s *WalletServiceSuite) TestGetOrCreateWalletCreatesLazily() {
	w, err := s.walletService.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.NotNil(w)
	s.Equal("user-1", w.UserID)
	s.Equal(int64(0), w.Balance)

	// Second call returns the same wallet.
	again, err := s.walletService.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.Equal(w.ID, again.ID)
}

func (s *WalletServiceSuite) TestCreditWallet() {
	txn, err := s.walletService.CreditWallet(s.GetContext(), &dto.CreditWalletRequest{
		UserID:     "user-1",
		Amount:     5000,
		CreditType: types.CreditTypeRefund,
	})
	s.NoError(err)
	s.Equal(int64(5000), txn.Amount)
	s.Equal(int64(5000), txn.BalanceAfter)
	s.Equal(int64(5000), txn.CreditsAvailable)
	s.Nil(txn.ExpiresAt)

	balance, err := s.walletService.GetBalance(s.GetContext(), "user-1")
	s.NoError(err)
	s.Equal(int64(5000), balance.Amount)
	s.Equal(int64(50), balance.DisplayAmount)
}

func (s *WalletServiceSuite) TestCreditWalletPromoGetsExpiry() {
	txn, err := s.walletService.CreditWallet(s.GetContext(), &dto.CreditWalletRequest{
		UserID:     "user-1",
		Amount:     10000,
		CreditType: types.CreditTypePromo,
	})
	s.NoError(err)
	s.NotNil(txn.ExpiresAt)

	expected := time.Now().UTC().AddDate(0, 0, types.PromoCreditExpiryDays)
	s.WithinDuration(expected, *txn.ExpiresAt, time.Minute)
}

func (s *WalletServiceSuite) TestDebitWallet() {
	_, err := s.walletService.CreditWallet(s.GetContext(), &dto.CreditWalletRequest{
		UserID:     "user-1",
		Amount:     5000,
		CreditType: types.CreditTypeRefund,
	})
	s.NoError(err)

	txn, err := s.walletService.DebitWallet(s.GetContext(), &dto.DebitWalletRequest{
		UserID: "user-1",
		Amount: 2000,
	})
	s.NoError(err)
	s.Equal(int64(3000), txn.BalanceAfter)

	balance, err := s.walletService.GetBalance(s.GetContext(), "user-1")
	s.NoError(err)
	s.Equal(int64(3000), balance.Amount)
}

func (s *WalletServiceSuite) TestDebitInsufficientBalance() {
	_, err := s.walletService.CreditWallet(s.GetContext(), &dto.CreditWalletRequest{
		UserID:     "user-1",
		Amount:     1000,
		CreditType: types.CreditTypeRefund,
	})
	s.NoError(err)

	_, err = s.walletService.DebitWallet(s.GetContext(), &dto.DebitWalletRequest{
		UserID: "user-1",
		Amount: 1500,
	})
	s.Error(err)
	s.True(ierr.IsInsufficientBalance(err))

	// Balance untouched, no debit row appended.
	balance, err := s.walletService.GetBalance(s.GetContext(), "user-1")
	s.NoError(err)
	s.Equal(int64(1000), balance.Amount)

	history, err := s.walletService.GetTransactionHistory(s.GetContext(), "user-1")
	s.NoError(err)
	s.Len(history, 1)
}

func (s *WalletServiceSuite) TestBalanceEqualsLedgerSum() {
	ctx := s.GetContext()
	for _, amount := range []int64{5000, 2500, 125} {
		_, err := s.walletService.CreditWallet(ctx, &dto.CreditWalletRequest{
			UserID:     "user-1",
			Amount:     amount,
			CreditType: types.CreditTypeComeback,
		})
		s.NoError(err)
	}
	_, err := s.walletService.DebitWallet(ctx, &dto.DebitWalletRequest{
		UserID: "user-1",
		Amount: 3000,
	})
	s.NoError(err)

	history, err := s.walletService.GetTransactionHistory(ctx, "user-1")
	s.NoError(err)
	s.Len(history, 4)

	var sum int64
	// History is newest first; walk backwards to replay in order.
	for i := len(history) - 1; i >= 0; i-- {
		t := history[i]
		if t.Type == string(types.TransactionTypeCredit) {
			sum += t.Amount
		} else {
			sum -= t.Amount
		}
		s.Equal(sum, t.BalanceAfter)
	}

	balance, err := s.walletService.GetBalance(ctx, "user-1")
	s.NoError(err)
	s.Equal(sum, balance.Amount)
	s.Equal(int64(4625), balance.Amount)
}

func (s *WalletServiceSuite) TestDebitConsumesNearestExpiryFirst() {
	ctx := s.GetContext()

	// Non-expiring refund credit first, expiring promo credit second.
	refundTxn, err := s.walletService.CreditWallet(ctx, &dto.CreditWalletRequest{
		UserID:     "user-1",
		Amount:     4000,
		CreditType: types.CreditTypeRefund,
	})
	s.NoError(err)
	promoTxn, err := s.walletService.CreditWallet(ctx, &dto.CreditWalletRequest{
		UserID:     "user-1",
		Amount:     3000,
		CreditType: types.CreditTypePromo,
	})
	s.NoError(err)

	_, err = s.walletService.DebitWallet(ctx, &dto.DebitWalletRequest{
		UserID: "user-1",
		Amount: 2000,
	})
	s.NoError(err)

	// The promo lot expires, so it is drawn down before the refund lot.
	store := s.GetStores().WalletRepo
	promo, err := store.GetTransactionByID(ctx, promoTxn.ID)
	s.NoError(err)
	s.Equal(int64(1000), promo.CreditsAvailable)

	rf, err := store.GetTransactionByID(ctx, refundTxn.ID)
	s.NoError(err)
	s.Equal(int64(4000), rf.CreditsAvailable)
}

func (s *WalletServiceSuite) TestGetBalanceWithoutWallet() {
	balance, err := s.walletService.GetBalance(s.GetContext(), "user-without-wallet")
	s.NoError(err)
	s.Equal(int64(0), balance.Amount)
}

func (s *WalletServiceSuite) TestGetTransactionHistoryWithoutWallet() {
	history, err := s.walletService.GetTransactionHistory(s.GetContext(), "user-without-wallet")
	s.NoError(err)
	s.Empty(history)
}

func (s *WalletServiceSuite) TestCreditRequiresCreditType() {
	_, err := s.walletService.CreditWallet(s.GetContext(), &dto.CreditWalletRequest{
		UserID: "user-1",
		Amount: 1000,
	})
	s.Error(err)
}

func (s *WalletServiceSuite) TestReconcileWalletRepairsDrift() {
	ctx := s.GetContext()
	_, err := s.walletService.CreditWallet(ctx, &dto.CreditWalletRequest{
		UserID:     "user-1",
		Amount:     5000,
		CreditType: types.CreditTypeRefund,
	})
	s.NoError(err)

	w, err := s.GetStores().WalletRepo.GetWalletByUserID(ctx, "user-1")
	s.NoError(err)

	// Corrupt the cached projection.
	s.NoError(s.GetStores().WalletRepo.UpdateWalletBalance(ctx, w.ID, 9999))

	resp, err := s.walletService.ReconcileWallet(ctx, "user-1")
	s.NoError(err)
	s.True(resp.DriftDetected)
	s.True(resp.Repaired)
	s.Equal(int64(5000), resp.ComputedBalance)

	balance, err := s.walletService.GetBalance(ctx, "user-1")
	s.NoError(err)
	s.Equal(int64(5000), balance.Amount)
}
