package repository

import (
	"github.com/vedawell/vedawell/internal/domain/order"
	"github.com/vedawell/vedawell/internal/domain/payment"
	"github.com/vedawell/vedawell/internal/domain/prescription"
	"github.com/vedawell/vedawell/internal/domain/refund"
	"github.com/vedawell/vedawell/internal/domain/subscription"
	"github.com/vedawell/vedawell/internal/domain/user"
	"github.com/vedawell/vedawell/internal/domain/wallet"
	"github.com/vedawell/vedawell/internal/logger"
	"github.com/vedawell/vedawell/internal/postgres"
	postgresRepo "github.com/vedawell/vedawell/internal/repository/postgres"
)

func NewWalletRepository(db postgres.IClient, logger *logger.Logger) wallet.Repository {
	return postgresRepo.NewWalletRepository(db, logger)
}

func NewPaymentRepository(db postgres.IClient, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}

func NewRefundRepository(db postgres.IClient, logger *logger.Logger) refund.Repository {
	return postgresRepo.NewRefundRepository(db, logger)
}

func NewSubscriptionRepository(db postgres.IClient, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewPlanRepository(db postgres.IClient, logger *logger.Logger) subscription.PlanRepository {
	return postgresRepo.NewPlanRepository(db, logger)
}

func NewUserRepository(db postgres.IClient, logger *logger.Logger) user.Repository {
	return postgresRepo.NewUserRepository(db, logger)
}

func NewOrderRepository(db postgres.IClient, logger *logger.Logger) order.Repository {
	return postgresRepo.NewOrderRepository(db, logger)
}

func NewPrescriptionRepository(db postgres.IClient, logger *logger.Logger) prescription.Repository {
	return postgresRepo.NewPrescriptionRepository(db, logger)
}
