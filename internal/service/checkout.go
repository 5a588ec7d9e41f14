package service

import (
	"context"

	"github.com/vedawell/vedawell/internal/api/dto"
	ierr "github.com/vedawell/vedawell/internal/errors"
)

// CheckoutService computes how a checkout total splits between wallet funds
// and the payment gateway. It is a pure read: the actual debit happens only
// after the gateway confirms payment capture, through WalletService.
type CheckoutService interface {
	// ApplyWalletAtCheckout previews the fund allocation for a checkout
	// total. It never moves money.
	ApplyWalletAtCheckout(ctx context.Context, req *dto.CheckoutAllocationRequest) (*dto.CheckoutAllocationResponse, error)
}

type checkoutService struct {
	ServiceParams
}

func NewCheckoutService(params ServiceParams) CheckoutService {
	return &checkoutService{
		ServiceParams: params,
	}
}

func (s *checkoutService) ApplyWalletAtCheckout(ctx context.Context, req *dto.CheckoutAllocationRequest) (*dto.CheckoutAllocationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid checkout allocation request").
			Mark(ierr.ErrValidation)
	}

	if !req.UseWallet {
		return &dto.CheckoutAllocationResponse{
			WalletAmountUsed:   0,
			RemainingAmount:    req.TotalAmount,
			WalletFullyCovered: false,
		}, nil
	}

	balance, err := s.WalletRepo.GetWalletByUserID(ctx, req.UserID)
	if err != nil {
		if ierr.IsNotFound(err) {
			// No wallet yet reads as a zero balance.
			return &dto.CheckoutAllocationResponse{
				WalletAmountUsed:   0,
				RemainingAmount:    req.TotalAmount,
				WalletFullyCovered: false,
			}, nil
		}
		return nil, err
	}

	used := balance.Balance
	if used > req.TotalAmount {
		used = req.TotalAmount
	}

	return &dto.CheckoutAllocationResponse{
		WalletAmountUsed:   used,
		RemainingAmount:    req.TotalAmount - used,
		WalletFullyCovered: used == req.TotalAmount,
	}, nil
}
