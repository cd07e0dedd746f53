package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gridmarket/ms-go-settlement/app/entity"
	"github.com/gridmarket/ms-go-settlement/app/factory"
	"github.com/gridmarket/ms-go-settlement/app/provider"
	"github.com/gridmarket/ms-go-settlement/app/repository"
	"github.com/gridmarket/ms-go-settlement/config"
)

type txRunner interface {
	DB() repository.DBTX
	InTx(ctx context.Context, fn func(q repository.DBTX) error) error
}

type paymentRepository interface {
	Create(ctx context.Context, q repository.DBTX, payment *entity.Payment) error
	Update(ctx context.Context, q repository.DBTX, payment *entity.Payment) error
	FindByReference(ctx context.Context, q repository.DBTX, reference string) (*entity.Payment, error)
	FindByReferenceForUpdate(ctx context.Context, q repository.DBTX, reference string) (*entity.Payment, error)
	List(ctx context.Context, q repository.DBTX, filter repository.PaymentFilter) ([]*entity.Payment, error)
}

type walletRepository interface {
	Create(ctx context.Context, q repository.DBTX, wallet *entity.Wallet) error
	FindByVendor(ctx context.Context, q repository.DBTX, vendorID string) (*entity.Wallet, error)
	FindByVendorForUpdate(ctx context.Context, q repository.DBTX, vendorID string) (*entity.Wallet, error)
	UpdateBalance(ctx context.Context, q repository.DBTX, wallet *entity.Wallet) error
}

type payoutRepository interface {
	Create(ctx context.Context, q repository.DBTX, payout *entity.Payout) error
	Update(ctx context.Context, q repository.DBTX, payout *entity.Payout) error
	FindByOrderVendorForUpdate(ctx context.Context, q repository.DBTX, orderID, vendorID string) (*entity.Payout, error)
	FindByIDForUpdate(ctx context.Context, q repository.DBTX, id uint64) (*entity.Payout, error)
	List(ctx context.Context, q repository.DBTX, filter repository.PayoutFilter) ([]*entity.Payout, error)
	ListPendingUnsettledForUpdate(ctx context.Context, q repository.DBTX, vendorID string) ([]*entity.Payout, error)
	FindItem(ctx context.Context, q repository.DBTX, payoutID uint64, orderLineID string) (*entity.PayoutItem, error)
	CreateItem(ctx context.Context, q repository.DBTX, item *entity.PayoutItem) error
	ListItems(ctx context.Context, q repository.DBTX, payoutID uint64) ([]*entity.PayoutItem, error)
}

type webhookEventRepository interface {
	Create(ctx context.Context, q repository.DBTX, event *entity.WebhookEvent) error
	ListUnprocessed(ctx context.Context, q repository.DBTX, maxAttempts, limit int32) ([]*entity.WebhookEvent, error)
	RecordAttempt(ctx context.Context, q repository.DBTX, id uint64, lastError string, now time.Time) error
	MarkProcessed(ctx context.Context, q repository.DBTX, id uint64, note *string, now time.Time) error
}

type paymentEventRepository interface {
	Create(ctx context.Context, q repository.DBTX, event *entity.PaymentEvent) error
}

type orderRepository interface {
	ListLines(ctx context.Context, q repository.DBTX, orderID string) ([]repository.OrderLine, error)
}

type bookingRepository interface {
	FindByID(ctx context.Context, q repository.DBTX, id string) (*repository.Booking, error)
}

type subscriptionRepository interface {
	FindByID(ctx context.Context, q repository.DBTX, id string) (*repository.Subscription, error)
	UpdateDates(ctx context.Context, q repository.DBTX, id string, startDate, endDate time.Time) error
}

// SettlementService owns the settlement state machine: payment status
// transitions, the idempotent effect applier, payout fan-out, webhook
// ingestion, and replay of queued deliveries.
type SettlementService struct {
	tx            txRunner
	payments      paymentRepository
	wallets       walletRepository
	payouts       payoutRepository
	webhookEvents webhookEventRepository
	events        paymentEventRepository
	orders        orderRepository
	bookings      bookingRepository
	subscriptions subscriptionRepository
	gateway       provider.Gateway
	cfg           config.SettlementConfig
	logger        *logrus.Entry
}

func NewSettlementService(
	tx txRunner,
	payments paymentRepository,
	wallets walletRepository,
	payouts payoutRepository,
	webhookEvents webhookEventRepository,
	events paymentEventRepository,
	orders orderRepository,
	bookings bookingRepository,
	subscriptions subscriptionRepository,
	gateway provider.Gateway,
	cfg config.SettlementConfig,
) *SettlementService {
	return &SettlementService{
		tx:            tx,
		payments:      payments,
		wallets:       wallets,
		payouts:       payouts,
		webhookEvents: webhookEvents,
		events:        events,
		orders:        orders,
		bookings:      bookings,
		subscriptions: subscriptions,
		gateway:       gateway,
		cfg:           cfg,
		logger:        factory.NewModuleLogger("settlement-service"),
	}
}
