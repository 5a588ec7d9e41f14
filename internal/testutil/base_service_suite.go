package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vedawell/vedawell/internal/cache"
	"github.com/vedawell/vedawell/internal/config"
	"github.com/vedawell/vedawell/internal/domain/order"
	"github.com/vedawell/vedawell/internal/domain/payment"
	"github.com/vedawell/vedawell/internal/domain/prescription"
	"github.com/vedawell/vedawell/internal/domain/refund"
	"github.com/vedawell/vedawell/internal/domain/subscription"
	"github.com/vedawell/vedawell/internal/domain/user"
	"github.com/vedawell/vedawell/internal/domain/wallet"
	"github.com/vedawell/vedawell/internal/logger"
	"github.com/vedawell/vedawell/internal/postgres"
	"github.com/vedawell/vedawell/internal/types"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	WalletRepo       wallet.Repository
	PaymentRepo      payment.Repository
	RefundRepo       refund.Repository
	SubRepo          subscription.Repository
	PlanRepo         subscription.PlanRepository
	UserRepo         user.Repository
	OrderRepo        order.Repository
	PrescriptionRepo prescription.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  Stores
	db      postgres.IClient
	gateway *FakeBillingGateway
	cache   cache.Cache
	logger  *logger.Logger
	config  *config.Configuration
	now     time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := config.GetDefaultConfig()
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxUserID, types.DefaultUserID)
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		WalletRepo:       NewInMemoryWalletStore(),
		PaymentRepo:      NewInMemoryPaymentStore(),
		RefundRepo:       NewInMemoryRefundStore(),
		SubRepo:          NewInMemorySubscriptionStore(),
		PlanRepo:         NewInMemoryPlanStore(),
		UserRepo:         NewInMemoryUserStore(),
		OrderRepo:        NewInMemoryOrderStore(),
		PrescriptionRepo: NewInMemoryPrescriptionStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.gateway = NewFakeBillingGateway()
	s.cache = cache.NewInMemoryCache()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.WalletRepo.(*InMemoryWalletStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.stores.RefundRepo.(*InMemoryRefundStore).Clear()
	s.stores.SubRepo.(*InMemorySubscriptionStore).Clear()
	s.stores.PlanRepo.(*InMemoryPlanStore).Clear()
	s.stores.UserRepo.(*InMemoryUserStore).Clear()
	s.stores.OrderRepo.(*InMemoryOrderStore).Clear()
	s.stores.PrescriptionRepo.(*InMemoryPrescriptionStore).Clear()
	s.gateway.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetGateway returns the fake billing gateway
func (s *BaseServiceTestSuite) GetGateway() *FakeBillingGateway {
	return s.gateway
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
