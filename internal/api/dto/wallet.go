package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vedawell/vedawell/internal/domain/wallet"
	"github.com/vedawell/vedawell/internal/types"
)

// CreditWalletRequest represents the request to credit a user's wallet
type CreditWalletRequest struct {
	UserID        string                      `json:"user_id" validate:"required"`
	Amount        int64                       `json:"amount" validate:"required,gt=0"`
	CreditType    types.CreditType            `json:"credit_type" validate:"required"`
	Description   string                      `json:"description,omitempty"`
	ReferenceType types.WalletTxReferenceType `json:"reference_type,omitempty"`
	ReferenceID   string                      `json:"reference_id,omitempty"`
}

func (r *CreditWalletRequest) Validate() error {
	return validator.New().Struct(r)
}

// ToOperation converts the request to a wallet operation
func (r *CreditWalletRequest) ToOperation() *wallet.Operation {
	return &wallet.Operation{
		UserID:        r.UserID,
		Type:          types.TransactionTypeCredit,
		CreditType:    r.CreditType,
		Amount:        r.Amount,
		Description:   r.Description,
		ReferenceType: r.ReferenceType,
		ReferenceID:   r.ReferenceID,
	}
}

// DebitWalletRequest represents the request to debit a user's wallet
type DebitWalletRequest struct {
	UserID        string                      `json:"user_id" validate:"required"`
	Amount        int64                       `json:"amount" validate:"required,gt=0"`
	Description   string                      `json:"description,omitempty"`
	ReferenceType types.WalletTxReferenceType `json:"reference_type,omitempty"`
	ReferenceID   string                      `json:"reference_id,omitempty"`
}

func (r *DebitWalletRequest) Validate() error {
	return validator.New().Struct(r)
}

// ToOperation converts the request to a wallet operation
func (r *DebitWalletRequest) ToOperation() *wallet.Operation {
	return &wallet.Operation{
		UserID:        r.UserID,
		Type:          types.TransactionTypeDebit,
		Amount:        r.Amount,
		Description:   r.Description,
		ReferenceType: r.ReferenceType,
		ReferenceID:   r.ReferenceID,
	}
}

// WalletBalanceResponse represents a wallet balance in API responses.
// DisplayAmount is the balance in whole major currency units.
type WalletBalanceResponse struct {
	WalletID      string `json:"wallet_id"`
	UserID        string `json:"user_id"`
	Amount        int64  `json:"amount"`
	DisplayAmount int64  `json:"display_amount"`
}

// WalletTransactionResponse represents a wallet transaction in API responses
type WalletTransactionResponse struct {
	ID            string     `json:"id"`
	WalletID      string     `json:"wallet_id"`
	Type          string     `json:"type"`
	CreditType    string     `json:"credit_type,omitempty"`
	Amount        int64      `json:"amount"`
	BalanceAfter  int64      `json:"balance_after"`
	Description   string     `json:"description,omitempty"`
	ReferenceType string     `json:"reference_type,omitempty"`
	ReferenceID   string     `json:"reference_id,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// FromWalletTransaction converts a wallet transaction to a response
func FromWalletTransaction(t *wallet.Transaction) *WalletTransactionResponse {
	return &WalletTransactionResponse{
		ID:            t.ID,
		WalletID:      t.WalletID,
		Type:          string(t.Type),
		CreditType:    string(t.CreditType),
		Amount:        t.Amount,
		BalanceAfter:  t.BalanceAfter,
		Description:   t.Description,
		ReferenceType: string(t.ReferenceType),
		ReferenceID:   t.ReferenceID,
		ExpiresAt:     t.ExpiresAt,
		CreatedAt:     t.CreatedAt,
	}
}

// ReconciliationResponse reports a wallet reconciliation run
type ReconciliationResponse struct {
	WalletID        string `json:"wallet_id"`
	CachedBalance   int64  `json:"cached_balance"`
	ComputedBalance int64  `json:"computed_balance"`
	DriftDetected   bool   `json:"drift_detected"`
	Repaired        bool   `json:"repaired"`
}
