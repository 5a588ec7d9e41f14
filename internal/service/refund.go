package service

import (
	"context"
	"time"

	"github.com/vedawell/vedawell/internal/api/dto"
	"github.com/vedawell/vedawell/internal/domain/refund"
	ierr "github.com/vedawell/vedawell/internal/errors"
	"github.com/vedawell/vedawell/internal/types"
)

// RefundService resolves business triggers into refunds. The trigger alone
// determines the percentage; callers never pass an amount.
type RefundService interface {
	// InitiateRefund computes the refund amount from the trigger's policy
	// and routes it: WALLET refunds credit the wallet synchronously and
	// complete immediately, ORIGINAL_PAYMENT refunds go through the
	// gateway and settle asynchronously.
	InitiateRefund(ctx context.Context, req *dto.InitiateRefundRequest) (*dto.RefundResponse, error)

	GetRefund(ctx context.Context, id string) (*dto.RefundResponse, error)

	// ListUserRefunds returns the user's refunds newest first.
	ListUserRefunds(ctx context.Context, userID string) ([]*dto.RefundResponse, error)

	// MarkRefundCompleted records gateway settlement of a PROCESSING
	// refund, driven by the gateway's webhook.
	MarkRefundCompleted(ctx context.Context, id string) (*dto.RefundResponse, error)
}

type refundService struct {
	ServiceParams
	walletService WalletService
}

func NewRefundService(params ServiceParams, walletService WalletService) RefundService {
	return &refundService{
		ServiceParams: params,
		walletService: walletService,
	}
}

func (s *refundService) InitiateRefund(ctx context.Context, req *dto.InitiateRefundRequest) (*dto.RefundResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid refund request").
			Mark(ierr.ErrValidation)
	}

	pct, err := req.Trigger.Percentage()
	if err != nil {
		return nil, err
	}

	pmt, err := s.PaymentRepo.GetByID(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if pmt.UserID != req.UserID {
		return nil, ierr.NewError("payment does not belong to user").
			WithHint("You can only refund your own payments").
			WithReportableDetails(map[string]interface{}{
				"payment_id": req.PaymentID,
			}).
			Mark(ierr.ErrPermissionDenied)
	}

	amount := types.PercentOf(pmt.Amount, pct)

	r := &refund.Refund{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REFUND),
		ReferenceNumber: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_REFUND),
		UserID:          req.UserID,
		PaymentID:       req.PaymentID,
		OrderID:         req.OrderID,
		ConsultationID:  req.ConsultationID,
		Trigger:         req.Trigger,
		Method:          req.Method,
		Amount:          amount,
		RefundStatus:    types.RefundStatusPending,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	if err := r.ValidateAgainstPayment(pmt.Amount); err != nil {
		return nil, err
	}

	switch req.Method {
	case types.RefundMethodWallet:
		if err := s.processWalletRefund(ctx, r); err != nil {
			return nil, err
		}
	case types.RefundMethodOriginalPayment:
		if err := s.processGatewayRefund(ctx, r, pmt.ExternalPaymentID); err != nil {
			return nil, err
		}
	}

	s.Logger.Infow("refund initiated",
		"refund_id", r.ID,
		"payment_id", r.PaymentID,
		"trigger", r.Trigger,
		"method", r.Method,
		"amount", r.Amount,
		"status", r.RefundStatus,
	)
	return dto.FromRefund(r), nil
}

// processWalletRefund credits the wallet and records the refund in one
// transaction. The credit never expires.
func (s *refundService) processWalletRefund(ctx context.Context, r *refund.Refund) error {
	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.RefundRepo.Create(ctx, r); err != nil {
			return err
		}

		_, err := s.walletService.CreditWallet(ctx, &dto.CreditWalletRequest{
			UserID:        r.UserID,
			Amount:        r.Amount,
			CreditType:    types.CreditTypeRefund,
			Description:   "Refund for payment " + r.PaymentID,
			ReferenceType: types.WalletTxReferenceTypeRefund,
			ReferenceID:   r.ID,
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		r.RefundStatus = types.RefundStatusCompleted
		r.ProcessedAt = &now
		return s.RefundRepo.Update(ctx, r)
	})
}

// processGatewayRefund calls the gateway first, outside any transaction,
// then records the refund. A gateway failure leaves no refund row, so the
// request can simply be retried.
func (s *refundService) processGatewayRefund(ctx context.Context, r *refund.Refund, externalPaymentID string) error {
	externalRefundID, err := s.Gateway.Refund(ctx, externalPaymentID, r.Amount)
	if err != nil {
		return ierr.WithError(err).
			WithHint("The payment gateway rejected the refund").
			WithReportableDetails(map[string]interface{}{
				"payment_id": r.PaymentID,
				"amount":     r.Amount,
			}).
			Mark(ierr.ErrGateway)
	}

	r.RefundStatus = types.RefundStatusProcessing
	r.ExternalRefundID = externalRefundID
	return s.RefundRepo.Create(ctx, r)
}

func (s *refundService) GetRefund(ctx context.Context, id string) (*dto.RefundResponse, error) {
	r, err := s.RefundRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromRefund(r), nil
}

func (s *refundService) ListUserRefunds(ctx context.Context, userID string) ([]*dto.RefundResponse, error) {
	if userID == "" {
		return nil, ierr.NewError("user id is required").
			WithHint("User ID is required").
			Mark(ierr.ErrValidation)
	}

	refunds, err := s.RefundRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.RefundResponse, 0, len(refunds))
	for _, r := range refunds {
		resp = append(resp, dto.FromRefund(r))
	}
	return resp, nil
}

func (s *refundService) MarkRefundCompleted(ctx context.Context, id string) (*dto.RefundResponse, error) {
	r, err := s.RefundRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.RefundStatus == types.RefundStatusCompleted {
		return dto.FromRefund(r), nil
	}
	if r.RefundStatus != types.RefundStatusProcessing {
		return nil, ierr.NewError("refund is not awaiting settlement").
			WithHint("Only processing refunds can be completed").
			WithReportableDetails(map[string]interface{}{
				"refund_id": r.ID,
				"status":    r.RefundStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	r.RefundStatus = types.RefundStatusCompleted
	r.ProcessedAt = &now
	if err := s.RefundRepo.Update(ctx, r); err != nil {
		return nil, err
	}

	s.Logger.Infow("refund settled", "refund_id", r.ID, "external_refund_id", r.ExternalRefundID)
	return dto.FromRefund(r), nil
}
