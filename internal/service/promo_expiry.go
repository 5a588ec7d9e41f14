package service

import (
	"context"
	"time"

	"github.com/vedawell/vedawell/internal/domain/wallet"
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/types"
)

// PromoExpiryService removes expired promotional credits. Only the
// unconsumed remainder of each promo lot is debited, so credits already
// spent are never expired a second time.
type PromoExpiryService interface {
	// ExpirePromoCredits expires the user's due promo lots and returns the
	// total amount removed. A wallet with nothing to expire gets no
	// transaction and returns 0.
	ExpirePromoCredits(ctx context.Context, userID string) (int64, error)

	// ExpireDuePromoCredits sweeps every wallet holding expired promo
	// credits. Invoked by the scheduler.
	ExpireDuePromoCredits(ctx context.Context, asOf time.Time) (int64, error)
}

type promoExpiryService struct {
	ServiceParams
}

func NewPromoExpiryService(params ServiceParams) PromoExpiryService {
	return &promoExpiryService{
		ServiceParams: params,
	}
}

func (s *promoExpiryService) ExpirePromoCredits(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ierr.NewError("user id is required").
			WithHint("User ID is required").
			Mark(ierr.ErrValidation)
	}

	var expired int64
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		w, err := s.WalletRepo.GetWalletByUserID(ctx, userID)
		if err != nil {
			if ierr.IsNotFound(err) {
				return nil
			}
			return err
		}

		amount, err := s.expireWalletCredits(ctx, w, time.Now().UTC())
		if err != nil {
			return err
		}
		expired = amount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

// expireWalletCredits runs inside a transaction with the wallet row locked.
func (s *promoExpiryService) expireWalletCredits(ctx context.Context, w *wallet.Wallet, asOf time.Time) (int64, error) {
	lots, err := s.WalletRepo.FindExpiredCredits(ctx, w.ID, asOf)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, lot := range lots {
		total += lot.CreditsAvailable
	}
	if total == 0 {
		return 0, nil
	}

	if err := s.WalletRepo.ConsumeCredits(ctx, lots, total); err != nil {
		return 0, err
	}

	newBalance := w.Balance - total
	txn := &wallet.Transaction{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET_TRANSACTION),
		WalletID:     w.ID,
		Type:         types.TransactionTypeDebit,
		Amount:       total,
		BalanceAfter: newBalance,
		Description:  "Expired promotional credits",
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	if err := s.WalletRepo.CreateTransaction(ctx, txn); err != nil {
		return 0, err
	}
	if err := s.WalletRepo.UpdateWalletBalance(ctx, w.ID, newBalance); err != nil {
		return 0, err
	}

	s.Logger.Infow("expired promo credits",
		"wallet_id", w.ID,
		"lots", len(lots),
		"amount", total,
		"balance_after", newBalance,
	)
	return total, nil
}

func (s *promoExpiryService) ExpireDuePromoCredits(ctx context.Context, asOf time.Time) (int64, error) {
	wallets, err := s.WalletRepo.ListWalletsWithExpiredCredits(ctx, asOf)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, w := range wallets {
		wID := w.ID
		err := s.DB.WithTx(ctx, func(ctx context.Context) error {
			// Re-read under lock; the balance may have moved since the
			// sweep listed this wallet.
			locked, err := s.WalletRepo.GetWalletByID(ctx, wID)
			if err != nil {
				return err
			}
			amount, err := s.expireWalletCredits(ctx, locked, asOf)
			if err != nil {
				return err
			}
			total += amount
			return nil
		})
		if err != nil {
			s.Logger.Errorw("promo expiry failed for wallet",
				"wallet_id", wID,
				"error", err,
			)
		}
	}

	s.Logger.Infow("promo expiry sweep complete",
		"wallets", len(wallets),
		"amount_expired", total,
	)
	return total, nil
}
