package wallet

import (
	"time"

	"github.com/vedawell/vedawell/internal/types"
)

// Transaction is one append-only entry in a wallet's ledger. Rows are never
// mutated or deleted after creation, with one exception: CreditsAvailable on
// CREDIT rows is drawn down as later debits consume the credit lot.
type Transaction struct {
	ID            string                      `db:"id" json:"id"`
	WalletID      string                      `db:"wallet_id" json:"wallet_id"`
	Type          types.TransactionType       `db:"type" json:"type"`
	CreditType    types.CreditType            `db:"credit_type" json:"credit_type,omitempty"`
	Amount        int64                       `db:"amount" json:"amount"`
	BalanceAfter  int64                       `db:"balance_after" json:"balance_after"`
	Description   string                      `db:"description" json:"description"`
	ReferenceType types.WalletTxReferenceType `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID   string                      `db:"reference_id" json:"reference_id,omitempty"`
	// ExpiresAt is set only for PROMO credits.
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	// CreditsAvailable is the unconsumed remainder of a credit lot.
	// Always 0 for DEBIT rows.
	CreditsAvailable int64 `db:"credits_available" json:"credits_available"`
	types.BaseModel
}

func (t *Transaction) TableName() string {
	return "wallet_transactions"
}

// IsExpirableCredit reports whether the row is a credit lot that can still
// expire: a PROMO credit with an expiry date and an unconsumed remainder.
func (t *Transaction) IsExpirableCredit(now time.Time) bool {
	return t.Type == types.TransactionTypeCredit &&
		t.CreditType == types.CreditTypePromo &&
		t.ExpiresAt != nil &&
		!t.ExpiresAt.After(now) &&
		t.CreditsAvailable > 0
}
