package service

import (
	"github.com/vedawell/vedawell/internal/cache"
	"github.com/vedawell/vedawell/internal/config"
	"github.com/vedawell/vedawell/internal/domain/order"
	"github.com/vedawell/vedawell/internal/domain/payment"
	"github.com/vedawell/vedawell/internal/domain/prescription"
	"github.com/vedawell/vedawell/internal/domain/refund"
	"github.com/vedawell/vedawell/internal/domain/subscription"
	"github.com/vedawell/vedawell/internal/domain/user"
	"github.com/vedawell/vedawell/internal/domain/wallet"
	"github.com/vedawell/vedawell/internal/gateway"
	"github.com/vedawell/vedawell/internal/logger"
	"github.com/vedawell/vedawell/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	WalletRepo       wallet.Repository
	PaymentRepo      payment.Repository
	RefundRepo       refund.Repository
	SubRepo          subscription.Repository
	PlanRepo         subscription.PlanRepository
	UserRepo         user.Repository
	OrderRepo        order.Repository
	PrescriptionRepo prescription.Repository

	// Collaborators
	Gateway gateway.BillingGateway
	Cache   cache.Cache
}
