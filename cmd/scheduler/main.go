package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
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
	"github.com/vedawell/vedawell/internal/repository"
	"github.com/vedawell/vedawell/internal/service"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Best effort; config comes from config.yaml and VEDAWELL_* env vars.
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			cache.Initialize,
		),
		postgres.Module(),
		fx.Provide(
			repository.NewWalletRepository,
			repository.NewPaymentRepository,
			repository.NewRefundRepository,
			repository.NewSubscriptionRepository,
			repository.NewPlanRepository,
			repository.NewUserRepository,
			repository.NewOrderRepository,
			repository.NewPrescriptionRepository,
		),
		// Deployments with a vendor gateway adapter replace this provider.
		fx.Provide(gateway.NewNotConfigured),
		fx.Provide(newServiceParams),
		fx.Provide(
			service.NewSubscriptionService,
			service.NewPromoExpiryService,
		),
		fx.Invoke(startScheduler),
	)

	app.Run()
}

func newServiceParams(
	cfg *config.Configuration,
	log *logger.Logger,
	db postgres.IClient,
	c *cache.InMemoryCache,
	gw gateway.BillingGateway,
	walletRepo wallet.Repository,
	paymentRepo payment.Repository,
	refundRepo refund.Repository,
	subRepo subscription.Repository,
	planRepo subscription.PlanRepository,
	userRepo user.Repository,
	orderRepo order.Repository,
	prescriptionRepo prescription.Repository,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:           log,
		Config:           cfg,
		DB:               db,
		WalletRepo:       walletRepo,
		PaymentRepo:      paymentRepo,
		RefundRepo:       refundRepo,
		SubRepo:          subRepo,
		PlanRepo:         planRepo,
		UserRepo:         userRepo,
		OrderRepo:        orderRepo,
		PrescriptionRepo: prescriptionRepo,
		Gateway:          gw,
		Cache:            c,
	}
}

// startScheduler registers the billing sweeps with cron and ties the cron
// runner to the fx lifecycle.
func startScheduler(
	lc fx.Lifecycle,
	log *logger.Logger,
	subscriptionService service.SubscriptionService,
	promoExpiryService service.PromoExpiryService,
) error {
	c := cron.New()

	// Renewals sweep hourly; failed-payment retries every 15 minutes so a
	// due retry is picked up promptly; promo expiry once a day.
	jobs := []struct {
		spec string
		name string
		run  func(ctx context.Context) error
	}{
		{"0 * * * *", "process_due_renewals", func(ctx context.Context) error {
			_, err := subscriptionService.ProcessDueRenewals(ctx, time.Now().UTC())
			return err
		}},
		{"*/15 * * * *", "process_due_retries", func(ctx context.Context) error {
			_, err := subscriptionService.ProcessDueRetries(ctx, time.Now().UTC())
			return err
		}},
		{"30 0 * * *", "expire_promo_credits", func(ctx context.Context) error {
			_, err := promoExpiryService.ExpireDuePromoCredits(ctx, time.Now().UTC())
			return err
		}},
	}

	for _, job := range jobs {
		job := job
		_, err := c.AddFunc(job.spec, func() {
			log.Infow("running scheduled job", "job", job.name)
			if err := job.run(context.Background()); err != nil {
				log.Errorw("scheduled job failed", "job", job.name, "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting billing scheduler", "jobs", len(jobs))
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
			log.Info("billing scheduler stopped")
			return nil
		},
	})
	return nil
}
