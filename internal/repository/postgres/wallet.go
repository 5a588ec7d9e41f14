package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vedawell/vedawell/internal/domain/wallet"
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/logger"
	"github.com/vedawell/vedawell/internal/postgres"
)

type walletRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewWalletRepository(db postgres.IClient, logger *logger.Logger) wallet.Repository {
	return &walletRepository{db: db, logger: logger}
}

func (r *walletRepository) CreateWallet(ctx context.Context, w *wallet.Wallet) error {
	query := `
	INSERT INTO wallets (id, user_id, balance, status, created_at, updated_at, created_by, updated_by)
	VALUES (:id, :user_id, :balance, :status, :created_at, :updated_at, :created_by, :updated_by)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, w)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create wallet").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *walletRepository) GetWalletByID(ctx context.Context, id string) (*wallet.Wallet, error) {
	query := `SELECT * FROM wallets WHERE id = $1`

	var w wallet.Wallet
	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &w, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("wallet not found").
				WithHint("Wallet not found").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &w, nil
}

func (r *walletRepository) GetWalletByUserID(ctx context.Context, userID string) (*wallet.Wallet, error) {
	// Lock the wallet row when called inside a transaction so concurrent
	// mutations on the same wallet serialize.
	query := `SELECT * FROM wallets WHERE user_id = $1`
	if r.db.TxFromContext(ctx) != nil {
		query += ` FOR UPDATE`
	}

	var w wallet.Wallet
	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &w, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("wallet not found").
				WithHint("Wallet not found").
				WithReportableDetails(map[string]interface{}{
					"user_id": userID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &w, nil
}

func (r *walletRepository) UpdateWalletBalance(ctx context.Context, walletID string, newBalance int64) error {
	query := `UPDATE wallets SET balance = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.Querier(ctx).ExecContext(ctx, query, newBalance, time.Now().UTC(), walletID)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update wallet balance").
			Mark(ierr.ErrDatabase)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *walletRepository) CreateTransaction(ctx context.Context, tx *wallet.Transaction) error {
	query := `
	INSERT INTO wallet_transactions (
		id, wallet_id, type, credit_type, amount, balance_after, description,
		reference_type, reference_id, expires_at, credits_available,
		status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :wallet_id, :type, :credit_type, :amount, :balance_after, :description,
		:reference_type, :reference_id, :expires_at, :credits_available,
		:status, :created_at, :updated_at, :created_by, :updated_by
	)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db.Querier(ctx), query, tx)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create wallet transaction").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *walletRepository) GetTransactionByID(ctx context.Context, id string) (*wallet.Transaction, error) {
	query := `SELECT * FROM wallet_transactions WHERE id = $1`

	var tx wallet.Transaction
	err := sqlx.GetContext(ctx, r.db.Querier(ctx), &tx, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("wallet transaction not found").
				WithHint("Transaction not found").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &tx, nil
}

func (r *walletRepository) ListTransactions(ctx context.Context, walletID string) ([]*wallet.Transaction, error) {
	query := `
	SELECT * FROM wallet_transactions
	WHERE wallet_id = $1
	ORDER BY created_at DESC, id DESC
	`

	txns := []*wallet.Transaction{}
	err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &txns, query, walletID)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return txns, nil
}

func (r *walletRepository) FindEligibleCredits(ctx context.Context, walletID string, requiredAmount int64) ([]*wallet.Transaction, error) {
	// Nearest expiry first so expiring lots are spent before evergreen
	// ones; never-expiring lots sort last, oldest first.
	query := `
	SELECT * FROM wallet_transactions
	WHERE wallet_id = $1
	  AND type = 'CREDIT'
	  AND credits_available > 0
	ORDER BY expires_at ASC NULLS LAST, created_at ASC
	FOR UPDATE
	`

	credits := []*wallet.Transaction{}
	err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &credits, query, walletID)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return credits, nil
}

func (r *walletRepository) ConsumeCredits(ctx context.Context, credits []*wallet.Transaction, amount int64) error {
	query := `UPDATE wallet_transactions SET credits_available = $1, updated_at = $2 WHERE id = $3`

	remaining := amount
	now := time.Now().UTC()
	for _, c := range credits {
		if remaining <= 0 {
			break
		}
		consume := c.CreditsAvailable
		if consume > remaining {
			consume = remaining
		}
		newAvailable := c.CreditsAvailable - consume

		if _, err := r.db.Querier(ctx).ExecContext(ctx, query, newAvailable, now, c.ID); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to consume credits").
				Mark(ierr.ErrDatabase)
		}
		c.CreditsAvailable = newAvailable
		remaining -= consume
	}

	if remaining > 0 {
		return ierr.NewError("insufficient credits to consume").
			WithHint("Insufficient balance").
			WithReportableDetails(map[string]interface{}{
				"remaining": remaining,
			}).
			Mark(ierr.ErrInsufficientBalance)
	}
	return nil
}

func (r *walletRepository) FindExpiredCredits(ctx context.Context, walletID string, asOf time.Time) ([]*wallet.Transaction, error) {
	query := `
	SELECT * FROM wallet_transactions
	WHERE wallet_id = $1
	  AND type = 'CREDIT'
	  AND credit_type = 'PROMO'
	  AND expires_at IS NOT NULL
	  AND expires_at <= $2
	  AND credits_available > 0
	ORDER BY expires_at ASC, created_at ASC
	FOR UPDATE
	`

	credits := []*wallet.Transaction{}
	err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &credits, query, walletID, asOf)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return credits, nil
}

func (r *walletRepository) ListWalletsWithExpiredCredits(ctx context.Context, asOf time.Time) ([]*wallet.Wallet, error) {
	query := `
	SELECT DISTINCT w.* FROM wallets w
	JOIN wallet_transactions t ON t.wallet_id = w.id
	WHERE t.type = 'CREDIT'
	  AND t.credit_type = 'PROMO'
	  AND t.expires_at IS NOT NULL
	  AND t.expires_at <= $1
	  AND t.credits_available > 0
	`

	wallets := []*wallet.Wallet{}
	err := sqlx.SelectContext(ctx, r.db.Querier(ctx), &wallets, query, asOf)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return wallets, nil
}
