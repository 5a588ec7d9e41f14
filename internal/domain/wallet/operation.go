package wallet

import (
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/types"
)

// Operation represents the request to credit or debit a wallet
type Operation struct {
	UserID        string                      `json:"user_id"`
	Type          types.TransactionType       `json:"type"`
	CreditType    types.CreditType            `json:"credit_type,omitempty"`
	Amount        int64                       `json:"amount"`
	Description   string                      `json:"description,omitempty"`
	ReferenceType types.WalletTxReferenceType `json:"reference_type,omitempty"`
	ReferenceID   string                      `json:"reference_id,omitempty"`
}

func (o *Operation) Validate() error {
	if err := o.Type.Validate(); err != nil {
		return err
	}

	if o.UserID == "" {
		return ierr.NewError("user id is required").
			WithHint("User ID is required").
			Mark(ierr.ErrValidation)
	}

	if o.Amount <= 0 {
		return ierr.NewError("wallet transaction amount must be greater than 0").
			WithHint("Wallet transaction amount must be greater than 0").
			WithReportableDetails(map[string]interface{}{
				"amount": o.Amount,
			}).
			Mark(ierr.ErrValidation)
	}

	if o.Type == types.TransactionTypeCredit {
		if o.CreditType == "" {
			return ierr.NewError("credit type is required for credit operations").
				WithHint("Credit type is required").
				Mark(ierr.ErrValidation)
		}
		if err := o.CreditType.Validate(); err != nil {
			return err
		}
	}

	if err := o.ReferenceType.Validate(); err != nil {
		return err
	}

	return nil
}
