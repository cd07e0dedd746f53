package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gridmarket/ms-go-settlement/app/entity"
)

type testOrderPayment struct {
	orderID string
	email   string
}

func (r testOrderPayment) GetOrderID() string { return r.orderID }

func (r testOrderPayment) GetCustomerEmail() string { return r.email }

type testCashout struct {
	vendorID string
	amount   decimal.Decimal
	email    string
}

func (r testCashout) GetVendorID() string { return r.vendorID }

func (r testCashout) GetAmount() decimal.Decimal { return r.amount }

func (r testCashout) GetRecipientEmail() string { return r.email }

type testListPayments struct {
	vendorID string
	status   string
}

func (r testListPayments) GetVendorID() string { return r.vendorID }

func (r testListPayments) GetStatus() string { return r.status }

func (r testListPayments) GetLimit() int32 { return 0 }

func (r testListPayments) GetOffset() int32 { return 0 }

func TestInitiateOrderPaymentPricesFromLines(t *testing.T) {
	e := newEnv()
	e.seedTwoVendorOrder("ord-1")

	result, err := e.svc.InitiateOrderPayment(context.Background(), testOrderPayment{orderID: "ord-1", email: "buyer@example.com"})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if !result.Payment.Amount.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected amount 50.00, got %s", result.Payment.Amount)
	}
	if result.Payment.Status != entity.PaymentStatusPending {
		t.Fatalf("new payment must be PENDING, got %s", result.Payment.Status)
	}
	if result.RedirectURL == "" {
		t.Fatal("expected a checkout redirect URL")
	}
	if e.payments.get(result.Payment.Reference) == nil {
		t.Fatal("payment not persisted")
	}
	if len(e.events.ofType("payment_initiated")) != 1 {
		t.Fatal("expected a payment_initiated event")
	}
}

func TestInitiateOrderPaymentUnknownOrder(t *testing.T) {
	e := newEnv()
	_, err := e.svc.InitiateOrderPayment(context.Background(), testOrderPayment{orderID: "ghost"})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if e.gateway.initCalls != 0 {
		t.Fatal("unknown order must not open a checkout")
	}
}

func TestInitiateCashoutChecksBalance(t *testing.T) {
	e := newEnv()
	e.seedWallet("vendor-a", "30.00")

	_, err := e.svc.InitiateCashout(context.Background(), testCashout{vendorID: "vendor-a", amount: decimal.RequireFromString("50.00")})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	_, err = e.svc.InitiateCashout(context.Background(), testCashout{vendorID: "ghost", amount: decimal.RequireFromString("10.00")})
	if !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("expected ErrWalletNotFound, got %v", err)
	}

	result, err := e.svc.InitiateCashout(context.Background(), testCashout{vendorID: "vendor-a", amount: decimal.RequireFromString("20.00")})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if result.Payment.Direction != entity.DirectionCredit || result.Payment.TargetKind != entity.TargetNone {
		t.Fatalf("unexpected cashout payment: %+v", result.Payment)
	}
	// admission check only: the balance moves at settlement, not initiation
	if got := e.wallets.balance("vendor-a"); !got.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("initiation must not touch the wallet, got %s", got)
	}
}

func TestCheckStatusUnknownReference(t *testing.T) {
	e := newEnv()
	_, err := e.svc.CheckStatus(context.Background(), "ghost")
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
	if e.gateway.verifyCalls != 0 {
		t.Fatal("unknown reference must not reach the gateway")
	}
}

func TestCheckStatusSkipsGatewayWhenSettled(t *testing.T) {
	e := newEnv()
	payment := e.seedPayment("abc123", "50.00", entity.DirectionDebit, entity.TargetNone, nil, strPtr("vendor-a"))
	payment.Status = entity.PaymentStatusSuccess
	if err := e.payments.Update(context.Background(), nil, payment); err != nil {
		t.Fatalf("seed update failed: %v", err)
	}

	got, err := e.svc.CheckStatus(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if got.Status != entity.PaymentStatusSuccess {
		t.Fatalf("expected SUCCESS, got %s", got.Status)
	}
	if e.gateway.verifyCalls != 0 {
		t.Fatal("settled payment must not trigger a verify round trip")
	}
}

func TestListPaymentsFilters(t *testing.T) {
	e := newEnv()
	e.seedPayment("p-1", "10.00", entity.DirectionDebit, entity.TargetNone, nil, strPtr("vendor-a"))
	e.seedPayment("p-2", "20.00", entity.DirectionDebit, entity.TargetNone, nil, strPtr("vendor-b"))

	payments, err := e.svc.ListPayments(context.Background(), testListPayments{vendorID: "vendor-a"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(payments) != 1 || payments[0].Reference != "p-1" {
		t.Fatalf("unexpected result: %+v", payments)
	}

	payments, err = e.svc.ListPayments(context.Background(), testListPayments{status: "pending"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected both pending payments, got %d", len(payments))
	}
}
