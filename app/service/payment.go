package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridmarket/ms-go-settlement/app/entity"
	"github.com/gridmarket/ms-go-settlement/app/provider"
	"github.com/gridmarket/ms-go-settlement/app/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

type orderPaymentRequest interface {
	GetOrderID() string
	GetCustomerEmail() string
}

type bookingPaymentRequest interface {
	GetBookingID() string
	GetCustomerEmail() string
}

type subscriptionRenewalRequest interface {
	GetSubscriptionID() string
	GetCustomerEmail() string
}

type cashoutRequest interface {
	GetVendorID() string
	GetAmount() decimal.Decimal
	GetRecipientEmail() string
}

type listPaymentsRequest interface {
	GetVendorID() string
	GetStatus() string
	GetLimit() int32
	GetOffset() int32
}

// InitiationResult carries the persisted payment plus the gateway checkout
// handle the caller redirects the customer to.
type InitiationResult struct {
	Payment     *entity.Payment
	RedirectURL string
	AccessCode  string
}

// InitiateOrderPayment prices the order from its lines and opens a gateway
// checkout for the total. The payment starts PENDING; settlement arrives
// later by webhook or status poll.
func (s *SettlementService) InitiateOrderPayment(ctx context.Context, req orderPaymentRequest) (*InitiationResult, error) {
	lines, err := s.orders.ListLines(ctx, s.tx.DB(), req.GetOrderID())
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrOrderNotFound
	}

	amount := decimal.Zero
	for _, line := range lines {
		amount = amount.Add(line.Total())
	}

	orderID := req.GetOrderID()
	payment := &entity.Payment{
		Reference:  newReference(),
		Amount:     amount,
		Direction:  entity.DirectionDebit,
		TargetKind: entity.TargetOrder,
		TargetID:   &orderID,
		Status:     entity.PaymentStatusPending,
	}
	return s.initiate(ctx, payment, req.GetCustomerEmail())
}

func (s *SettlementService) InitiateBookingPayment(ctx context.Context, req bookingPaymentRequest) (*InitiationResult, error) {
	booking, err := s.bookings.FindByID(ctx, s.tx.DB(), req.GetBookingID())
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	bookingID := booking.ID
	vendorID := booking.VendorID
	payment := &entity.Payment{
		Reference:  newReference(),
		Amount:     booking.Price,
		Direction:  entity.DirectionDebit,
		TargetKind: entity.TargetBooking,
		TargetID:   &bookingID,
		VendorID:   &vendorID,
		Status:     entity.PaymentStatusPending,
	}
	return s.initiate(ctx, payment, req.GetCustomerEmail())
}

func (s *SettlementService) InitiateSubscriptionRenewal(ctx context.Context, req subscriptionRenewalRequest) (*InitiationResult, error) {
	sub, err := s.subscriptions.FindByID(ctx, s.tx.DB(), req.GetSubscriptionID())
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}

	subID := sub.ID
	vendorID := sub.VendorID
	payment := &entity.Payment{
		Reference:  newReference(),
		Amount:     sub.Price,
		Direction:  entity.DirectionDebit,
		TargetKind: entity.TargetSubscription,
		TargetID:   &subID,
		VendorID:   &vendorID,
		Status:     entity.PaymentStatusPending,
	}
	return s.initiate(ctx, payment, req.GetCustomerEmail())
}

// InitiateCashout opens an outbound payment against the vendor wallet. The
// balance is only checked here as an admission gate; the actual debit
// happens when the gateway confirms the transfer settled.
func (s *SettlementService) InitiateCashout(ctx context.Context, req cashoutRequest) (*InitiationResult, error) {
	amount := req.GetAmount()
	if !amount.IsPositive() {
		return nil, ErrInvalidRequest
	}

	wallet, err := s.wallets.FindByVendor(ctx, s.tx.DB(), req.GetVendorID())
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	if !wallet.CanTransfer(amount) {
		return nil, ErrInsufficientFunds
	}

	vendorID := req.GetVendorID()
	payment := &entity.Payment{
		Reference:  newReference(),
		Amount:     amount,
		Direction:  entity.DirectionCredit,
		TargetKind: entity.TargetNone,
		VendorID:   &vendorID,
		Status:     entity.PaymentStatusPending,
	}
	return s.initiate(ctx, payment, req.GetRecipientEmail())
}

func (s *SettlementService) initiate(ctx context.Context, payment *entity.Payment, email string) (*InitiationResult, error) {
	result, err := s.gateway.Initialize(ctx, provider.InitializeInput{
		Reference:   payment.Reference,
		Amount:      payment.Amount,
		Currency:    s.cfg.Currency,
		Email:       email,
		CallbackURL: s.cfg.CallbackURL,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	if email = strings.TrimSpace(email); email != "" {
		payment.CustomerRef = &email
	}

	err = s.tx.InTx(ctx, func(q repository.DBTX) error {
		if err := s.payments.Create(ctx, q, payment); err != nil {
			return err
		}
		return s.recordEvent(ctx, q, payment, "payment_initiated", nil, nil, now)
	})
	if err != nil {
		return nil, err
	}

	return &InitiationResult{
		Payment:     payment,
		RedirectURL: result.RedirectURL,
		AccessCode:  result.AccessCode,
	}, nil
}

// CheckStatus is the poll path: re-verify with the gateway and run the
// observation through the effect applier. A payment that already settled is
// returned as-is without a gateway round trip, since SUCCESS is sticky.
func (s *SettlementService) CheckStatus(ctx context.Context, reference string) (*entity.Payment, error) {
	payment, err := s.payments.FindByReference(ctx, s.tx.DB(), reference)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Status == entity.PaymentStatusSuccess {
		return payment, nil
	}
	return s.VerifyAndApply(ctx, reference)
}

func (s *SettlementService) ListPayments(ctx context.Context, req listPaymentsRequest) ([]*entity.Payment, error) {
	filter := repository.PaymentFilter{
		VendorID: req.GetVendorID(),
		Limit:    pageSize(req.GetLimit()),
		Offset:   req.GetOffset(),
	}
	if status := strings.ToUpper(strings.TrimSpace(req.GetStatus())); status != "" {
		filter.HasStatus = true
		filter.Status = entity.PaymentStatus(status)
	}
	return s.payments.List(ctx, s.tx.DB(), filter)
}

func pageSize(limit int32) int32 {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func newReference() string {
	return "stl-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
