package dto

import (
	"github.com/go-playground/validator/v10"
)

// CheckoutAllocationRequest asks how a checkout total would be split
// between wallet funds and the payment gateway. It never moves money.
type CheckoutAllocationRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	TotalAmount int64  `json:"total_amount" validate:"required,gt=0"`
	UseWallet   bool   `json:"use_wallet"`
}

func (r *CheckoutAllocationRequest) Validate() error {
	return validator.New().Struct(r)
}

// CheckoutAllocationResponse is the computed fund split for a checkout
type CheckoutAllocationResponse struct {
	WalletAmountUsed   int64 `json:"wallet_amount_used"`
	RemainingAmount    int64 `json:"remaining_amount"`
	WalletFullyCovered bool  `json:"wallet_fully_covered"`
}
