package service

import (
	"context"
	"time"

	"github.com/vedawell/vedawell/internal/api/dto"
	"github.com/vedawell/vedawell/internal/domain/wallet"
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/types"
)

// WalletService is the per-user ledger. Every balance change appends a
// transaction row; the wallet balance is a cached projection repaired by
// ReconcileWallet.
type WalletService interface {
	// GetOrCreateWallet returns the user's wallet, creating a zero-balance
	// wallet on first access.
	GetOrCreateWallet(ctx context.Context, userID string) (*wallet.Wallet, error)

	// CreditWallet appends a CREDIT transaction and raises the balance.
	// PROMO credits carry an expiry date.
	CreditWallet(ctx context.Context, req *dto.CreditWalletRequest) (*wallet.Transaction, error)

	// DebitWallet appends a DEBIT transaction, consuming credit lots
	// nearest-expiry-first. Fails with ErrInsufficientBalance when the
	// wallet cannot cover the amount; no partial debit ever happens.
	DebitWallet(ctx context.Context, req *dto.DebitWalletRequest) (*wallet.Transaction, error)

	// GetBalance returns the user's current balance. Users without a
	// wallet read as zero.
	GetBalance(ctx context.Context, userID string) (*dto.WalletBalanceResponse, error)

	// GetTransactionHistory returns the user's ledger newest first. Users
	// without a wallet get an empty history, not an error.
	GetTransactionHistory(ctx context.Context, userID string) ([]*dto.WalletTransactionResponse, error)

	// ReconcileWallet recomputes the balance from the transaction log and
	// repairs the cached projection if it drifted.
	ReconcileWallet(ctx context.Context, userID string) (*dto.ReconciliationResponse, error)
}

type walletService struct {
	ServiceParams
}

func NewWalletService(params ServiceParams) WalletService {
	return &walletService{
		ServiceParams: params,
	}
}

func (s *walletService) GetOrCreateWallet(ctx context.Context, userID string) (*wallet.Wallet, error) {
	if userID == "" {
		return nil, ierr.NewError("user id is required").
			WithHint("User ID is required").
			Mark(ierr.ErrValidation)
	}

	w, err := s.WalletRepo.GetWalletByUserID(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	w = wallet.NewWallet(ctx, userID)
	if err := s.WalletRepo.CreateWallet(ctx, w); err != nil {
		// Concurrent first access can race wallet creation; the loser
		// reads the winner's row.
		if ierr.IsAlreadyExists(err) {
			return s.WalletRepo.GetWalletByUserID(ctx, userID)
		}
		return nil, err
	}

	s.Logger.Infow("created wallet", "wallet_id", w.ID, "user_id", userID)
	return w, nil
}

func (s *walletService) CreditWallet(ctx context.Context, req *dto.CreditWalletRequest) (*wallet.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid credit request").
			Mark(ierr.ErrValidation)
	}
	return s.processWalletOperation(ctx, req.ToOperation())
}

func (s *walletService) DebitWallet(ctx context.Context, req *dto.DebitWalletRequest) (*wallet.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid debit request").
			Mark(ierr.ErrValidation)
	}
	return s.processWalletOperation(ctx, req.ToOperation())
}

// processWalletOperation applies a credit or debit atomically: the wallet
// row is locked for the duration of the transaction, so concurrent
// operations on the same wallet serialize.
func (s *walletService) processWalletOperation(ctx context.Context, op *wallet.Operation) (*wallet.Transaction, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}

	var txn *wallet.Transaction
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		w, err := s.GetOrCreateWallet(ctx, op.UserID)
		if err != nil {
			return err
		}

		switch op.Type {
		case types.TransactionTypeCredit:
			txn, err = s.applyCredit(ctx, w, op)
		case types.TransactionTypeDebit:
			txn, err = s.applyDebit(ctx, w, op)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("wallet operation applied",
		"transaction_id", txn.ID,
		"wallet_id", txn.WalletID,
		"user_id", op.UserID,
		"type", op.Type,
		"amount", op.Amount,
		"balance_after", txn.BalanceAfter,
	)
	return txn, nil
}

func (s *walletService) applyCredit(ctx context.Context, w *wallet.Wallet, op *wallet.Operation) (*wallet.Transaction, error) {
	newBalance := w.Balance + op.Amount

	txn := &wallet.Transaction{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET_TRANSACTION),
		WalletID:         w.ID,
		Type:             types.TransactionTypeCredit,
		CreditType:       op.CreditType,
		Amount:           op.Amount,
		BalanceAfter:     newBalance,
		Description:      op.Description,
		ReferenceType:    op.ReferenceType,
		ReferenceID:      op.ReferenceID,
		CreditsAvailable: op.Amount,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}

	if op.CreditType.Expires() {
		expiryDays := s.Config.Billing.PromoExpiryDays
		if expiryDays <= 0 {
			expiryDays = types.PromoCreditExpiryDays
		}
		expiresAt := time.Now().UTC().AddDate(0, 0, expiryDays)
		txn.ExpiresAt = &expiresAt
	}

	if err := s.WalletRepo.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	if err := s.WalletRepo.UpdateWalletBalance(ctx, w.ID, newBalance); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *walletService) applyDebit(ctx context.Context, w *wallet.Wallet, op *wallet.Operation) (*wallet.Transaction, error) {
	if w.Balance < op.Amount {
		return nil, ierr.NewError("insufficient wallet balance").
			WithHint("Wallet balance is too low for this debit").
			WithReportableDetails(map[string]interface{}{
				"wallet_id": w.ID,
				"balance":   w.Balance,
				"amount":    op.Amount,
			}).
			Mark(ierr.ErrInsufficientBalance)
	}

	credits, err := s.WalletRepo.FindEligibleCredits(ctx, w.ID, op.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.WalletRepo.ConsumeCredits(ctx, credits, op.Amount); err != nil {
		return nil, err
	}

	newBalance := w.Balance - op.Amount
	txn := &wallet.Transaction{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET_TRANSACTION),
		WalletID:      w.ID,
		Type:          types.TransactionTypeDebit,
		Amount:        op.Amount,
		BalanceAfter:  newBalance,
		Description:   op.Description,
		ReferenceType: op.ReferenceType,
		ReferenceID:   op.ReferenceID,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}

	if err := s.WalletRepo.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	if err := s.WalletRepo.UpdateWalletBalance(ctx, w.ID, newBalance); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *walletService) GetBalance(ctx context.Context, userID string) (*dto.WalletBalanceResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user id is required").
			WithHint("User ID is required").
			Mark(ierr.ErrValidation)
	}

	w, err := s.WalletRepo.GetWalletByUserID(ctx, userID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return &dto.WalletBalanceResponse{UserID: userID}, nil
		}
		return nil, err
	}

	return &dto.WalletBalanceResponse{
		WalletID:      w.ID,
		UserID:        w.UserID,
		Amount:        w.Balance,
		DisplayAmount: types.DisplayAmount(w.Balance),
	}, nil
}

func (s *walletService) GetTransactionHistory(ctx context.Context, userID string) ([]*dto.WalletTransactionResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user id is required").
			WithHint("User ID is required").
			Mark(ierr.ErrValidation)
	}

	w, err := s.WalletRepo.GetWalletByUserID(ctx, userID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return []*dto.WalletTransactionResponse{}, nil
		}
		return nil, err
	}

	txns, err := s.WalletRepo.ListTransactions(ctx, w.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.WalletTransactionResponse, 0, len(txns))
	for _, t := range txns {
		resp = append(resp, dto.FromWalletTransaction(t))
	}
	return resp, nil
}

func (s *walletService) ReconcileWallet(ctx context.Context, userID string) (*dto.ReconciliationResponse, error) {
	var resp *dto.ReconciliationResponse
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		w, err := s.WalletRepo.GetWalletByUserID(ctx, userID)
		if err != nil {
			return err
		}

		txns, err := s.WalletRepo.ListTransactions(ctx, w.ID)
		if err != nil {
			return err
		}

		var computed int64
		for _, t := range txns {
			switch t.Type {
			case types.TransactionTypeCredit:
				computed += t.Amount
			case types.TransactionTypeDebit:
				computed -= t.Amount
			}
		}

		resp = &dto.ReconciliationResponse{
			WalletID:        w.ID,
			CachedBalance:   w.Balance,
			ComputedBalance: computed,
			DriftDetected:   computed != w.Balance,
		}

		if resp.DriftDetected {
			s.Logger.Warnw("wallet balance drift detected",
				"wallet_id", w.ID,
				"cached_balance", w.Balance,
				"computed_balance", computed,
			)
			if err := s.WalletRepo.UpdateWalletBalance(ctx, w.ID, computed); err != nil {
				return err
			}
			resp.Repaired = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
