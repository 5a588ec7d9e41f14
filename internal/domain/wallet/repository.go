package wallet

import (
	"context"
	"time"
)

// Repository defines the interface for wallet persistence operations.
// All mutations invoked inside postgres.IClient.WithTx run against the
// transaction bound to the context.
type Repository interface {
	// Wallet operations
	CreateWallet(ctx context.Context, w *Wallet) error
	GetWalletByID(ctx context.Context, id string) (*Wallet, error)
	GetWalletByUserID(ctx context.Context, userID string) (*Wallet, error)
	// UpdateWalletBalance writes the cached balance projection. Postgres
	// implementations lock the wallet row for the duration of the
	// surrounding transaction.
	UpdateWalletBalance(ctx context.Context, walletID string, newBalance int64) error

	// Transaction operations
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*Transaction, error)
	// ListTransactions returns the wallet's ledger newest first.
	ListTransactions(ctx context.Context, walletID string) ([]*Transaction, error)

	// Credit lot operations
	// FindEligibleCredits returns credit lots with remaining credits,
	// ordered nearest-expiry-first then oldest-first.
	FindEligibleCredits(ctx context.Context, walletID string, requiredAmount int64) ([]*Transaction, error)
	// ConsumeCredits draws amount down across the given lots in order.
	ConsumeCredits(ctx context.Context, credits []*Transaction, amount int64) error
	// FindExpiredCredits returns PROMO credit lots whose expiry has passed
	// and which still have an unconsumed remainder.
	FindExpiredCredits(ctx context.Context, walletID string, asOf time.Time) ([]*Transaction, error)
	// ListWalletsWithExpiredCredits returns the wallets that currently
	// hold at least one expired, unconsumed promo lot. Used by the sweep.
	ListWalletsWithExpiredCredits(ctx context.Context, asOf time.Time) ([]*Wallet, error)
}
