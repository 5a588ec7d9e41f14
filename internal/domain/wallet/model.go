package wallet

import (
	"context"

	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/types"
)

// Wallet holds a user's balance in minor currency units. The balance is a
// cached projection of the transaction log; the log is the source of truth.
type Wallet struct {
	ID      string `db:"id" json:"id"`
	UserID  string `db:"user_id" json:"user_id"`
	Balance int64  `db:"balance" json:"balance"`
	types.BaseModel
}

func (w *Wallet) TableName() string {
	return "wallets"
}

func (w *Wallet) Validate() error {
	if w.Balance < 0 {
		return ierr.NewError("wallet balance cannot be negative").
			WithHint("Wallet balance must be zero or positive").
			WithReportableDetails(map[string]interface{}{
				"wallet_id": w.ID,
				"balance":   w.Balance,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// NewWallet returns a zero-balance wallet for the user. Wallets are created
// lazily on first access and never deleted.
func NewWallet(ctx context.Context, userID string) *Wallet {
	return &Wallet{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET),
		UserID:    userID,
		Balance:   0,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}
