package types

import (
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/samber/lo"
)

// TransactionType is the direction of a wallet transaction
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

func (t TransactionType) Validate() error {
	allowedValues := []string{
		string(TransactionTypeCredit),
		string(TransactionTypeDebit),
	}
	if !lo.Contains(allowedValues, string(t)) {
		return ierr.NewError("invalid transaction type").
			WithHint("Invalid transaction type").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"type":    t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CreditType classifies why a wallet was credited and governs expiry:
// PROMO credits expire, REFUND and COMEBACK credits never do.
type CreditType string

const (
	CreditTypeRefund   CreditType = "REFUND"
	CreditTypePromo    CreditType = "PROMO"
	CreditTypeComeback CreditType = "COMEBACK"
)

func (t CreditType) Validate() error {
	if t == "" {
		return nil
	}

	allowedValues := []string{
		string(CreditTypeRefund),
		string(CreditTypePromo),
		string(CreditTypeComeback),
	}
	if !lo.Contains(allowedValues, string(t)) {
		return ierr.NewError("invalid credit type").
			WithHint("Invalid credit type").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"type":    t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Expires reports whether credits of this type are time-boxed.
func (t CreditType) Expires() bool {
	return t == CreditTypePromo
}

// PromoCreditExpiryDays is the default lifetime of a promotional credit lot.
const PromoCreditExpiryDays = 90

// WalletTxReferenceType identifies what a wallet transaction refers to
type WalletTxReferenceType string

const (
	WalletTxReferenceTypePayment      WalletTxReferenceType = "PAYMENT"
	WalletTxReferenceTypeOrder        WalletTxReferenceType = "ORDER"
	WalletTxReferenceTypeRefund       WalletTxReferenceType = "REFUND"
	WalletTxReferenceTypeConsultation WalletTxReferenceType = "CONSULTATION"
	// WalletTxReferenceTypeRequest is used for auto generated reference IDs
	WalletTxReferenceTypeRequest WalletTxReferenceType = "REQUEST"
)

func (t WalletTxReferenceType) Validate() error {
	if t == "" {
		return nil
	}

	allowedValues := []string{
		string(WalletTxReferenceTypePayment),
		string(WalletTxReferenceTypeOrder),
		string(WalletTxReferenceTypeRefund),
		string(WalletTxReferenceTypeConsultation),
		string(WalletTxReferenceTypeRequest),
	}
	if !lo.Contains(allowedValues, string(t)) {
		return ierr.NewError("invalid wallet transaction reference type").
			WithHint("Invalid reference type").
			WithReportableDetails(map[string]any{
				"allowed": allowedValues,
				"type":    t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
