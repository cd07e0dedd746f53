package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridmarket/ms-go-settlement/app/entity"
	"github.com/gridmarket/ms-go-settlement/app/provider"
	"github.com/gridmarket/ms-go-settlement/app/repository"
	"github.com/gridmarket/ms-go-settlement/config"
)

type fakeTxRunner struct{}

func (fakeTxRunner) DB() repository.DBTX { return nil }

func (fakeTxRunner) InTx(_ context.Context, fn func(q repository.DBTX) error) error {
	return fn(nil)
}

type fakePaymentStore struct {
	byRef  map[string]*entity.Payment
	nextID uint64
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{byRef: make(map[string]*entity.Payment)}
}

func (f *fakePaymentStore) Create(_ context.Context, _ repository.DBTX, p *entity.Payment) error {
	if _, ok := f.byRef[p.Reference]; ok {
		return repository.ErrPaymentAlreadyExists
	}
	f.nextID++
	p.ID = f.nextID
	stored := *p
	f.byRef[p.Reference] = &stored
	return nil
}

func (f *fakePaymentStore) Update(_ context.Context, _ repository.DBTX, p *entity.Payment) error {
	for ref, stored := range f.byRef {
		if stored.ID == p.ID {
			updated := *p
			f.byRef[ref] = &updated
			return nil
		}
	}
	return repository.ErrPaymentNotFound
}

func (f *fakePaymentStore) FindByReference(_ context.Context, _ repository.DBTX, reference string) (*entity.Payment, error) {
	stored, ok := f.byRef[reference]
	if !ok {
		return nil, nil
	}
	clone := *stored
	return &clone, nil
}

func (f *fakePaymentStore) FindByReferenceForUpdate(ctx context.Context, q repository.DBTX, reference string) (*entity.Payment, error) {
	return f.FindByReference(ctx, q, reference)
}

func (f *fakePaymentStore) List(_ context.Context, _ repository.DBTX, filter repository.PaymentFilter) ([]*entity.Payment, error) {
	payments := make([]*entity.Payment, 0)
	for _, stored := range f.byRef {
		if strings.TrimSpace(filter.VendorID) != "" {
			if stored.VendorID == nil || *stored.VendorID != filter.VendorID {
				continue
			}
		}
		if filter.HasStatus && stored.Status != filter.Status {
			continue
		}
		clone := *stored
		payments = append(payments, &clone)
	}
	return payments, nil
}

func (f *fakePaymentStore) get(reference string) *entity.Payment {
	return f.byRef[reference]
}

type fakeWalletStore struct {
	byVendor map[string]*entity.Wallet
	nextID   uint64
}

func newFakeWalletStore() *fakeWalletStore {
	return &fakeWalletStore{byVendor: make(map[string]*entity.Wallet)}
}

func (f *fakeWalletStore) Create(_ context.Context, _ repository.DBTX, w *entity.Wallet) error {
	f.nextID++
	w.ID = f.nextID
	stored := *w
	f.byVendor[w.VendorID] = &stored
	return nil
}

func (f *fakeWalletStore) FindByVendor(_ context.Context, _ repository.DBTX, vendorID string) (*entity.Wallet, error) {
	stored, ok := f.byVendor[vendorID]
	if !ok {
		return nil, nil
	}
	clone := *stored
	return &clone, nil
}

func (f *fakeWalletStore) FindByVendorForUpdate(ctx context.Context, q repository.DBTX, vendorID string) (*entity.Wallet, error) {
	return f.FindByVendor(ctx, q, vendorID)
}

func (f *fakeWalletStore) UpdateBalance(_ context.Context, _ repository.DBTX, w *entity.Wallet) error {
	for vendorID, stored := range f.byVendor {
		if stored.ID == w.ID {
			updated := *w
			f.byVendor[vendorID] = &updated
			return nil
		}
	}
	return repository.ErrWalletNotFound
}

func (f *fakeWalletStore) balance(vendorID string) decimal.Decimal {
	if stored, ok := f.byVendor[vendorID]; ok {
		return stored.Balance
	}
	return decimal.Zero
}

type fakePayoutStore struct {
	payouts []*entity.Payout
	items   []*entity.PayoutItem
	nextID  uint64
}

func newFakePayoutStore() *fakePayoutStore {
	return &fakePayoutStore{}
}

func (f *fakePayoutStore) Create(_ context.Context, _ repository.DBTX, p *entity.Payout) error {
	f.nextID++
	p.ID = f.nextID
	stored := *p
	f.payouts = append(f.payouts, &stored)
	return nil
}

func (f *fakePayoutStore) Update(_ context.Context, _ repository.DBTX, p *entity.Payout) error {
	for i, stored := range f.payouts {
		if stored.ID == p.ID {
			updated := *p
			f.payouts[i] = &updated
			return nil
		}
	}
	return repository.ErrPayoutNotFound
}

func (f *fakePayoutStore) FindByOrderVendorForUpdate(_ context.Context, _ repository.DBTX, orderID, vendorID string) (*entity.Payout, error) {
	for _, stored := range f.payouts {
		if stored.OrderID == orderID && stored.VendorID == vendorID {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakePayoutStore) FindByIDForUpdate(_ context.Context, _ repository.DBTX, id uint64) (*entity.Payout, error) {
	for _, stored := range f.payouts {
		if stored.ID == id {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakePayoutStore) List(_ context.Context, _ repository.DBTX, filter repository.PayoutFilter) ([]*entity.Payout, error) {
	payouts := make([]*entity.Payout, 0)
	for _, stored := range f.payouts {
		if strings.TrimSpace(filter.VendorID) != "" && stored.VendorID != filter.VendorID {
			continue
		}
		if filter.PayoutStatus != "" && stored.PayoutStatus != filter.PayoutStatus {
			continue
		}
		if filter.Unsettled && stored.IsSettled {
			continue
		}
		clone := *stored
		payouts = append(payouts, &clone)
	}
	return payouts, nil
}

func (f *fakePayoutStore) ListPendingUnsettledForUpdate(_ context.Context, _ repository.DBTX, vendorID string) ([]*entity.Payout, error) {
	payouts := make([]*entity.Payout, 0)
	for _, stored := range f.payouts {
		if stored.PayoutStatus != entity.PayoutStatusPending || stored.IsSettled {
			continue
		}
		if strings.TrimSpace(vendorID) != "" && stored.VendorID != vendorID {
			continue
		}
		clone := *stored
		payouts = append(payouts, &clone)
	}
	return payouts, nil
}

func (f *fakePayoutStore) FindItem(_ context.Context, _ repository.DBTX, payoutID uint64, orderLineID string) (*entity.PayoutItem, error) {
	for _, stored := range f.items {
		if stored.PayoutID == payoutID && stored.OrderLineID == orderLineID {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakePayoutStore) CreateItem(_ context.Context, _ repository.DBTX, item *entity.PayoutItem) error {
	for _, stored := range f.items {
		if stored.PayoutID == item.PayoutID && stored.OrderLineID == item.OrderLineID {
			return nil
		}
	}
	f.nextID++
	item.ID = f.nextID
	stored := *item
	f.items = append(f.items, &stored)
	return nil
}

func (f *fakePayoutStore) ListItems(_ context.Context, _ repository.DBTX, payoutID uint64) ([]*entity.PayoutItem, error) {
	items := make([]*entity.PayoutItem, 0)
	for _, stored := range f.items {
		if stored.PayoutID == payoutID {
			clone := *stored
			items = append(items, &clone)
		}
	}
	return items, nil
}

func (f *fakePayoutStore) forVendor(vendorID string) *entity.Payout {
	for _, stored := range f.payouts {
		if stored.VendorID == vendorID {
			return stored
		}
	}
	return nil
}

type fakeWebhookEventStore struct {
	events []*entity.WebhookEvent
	nextID uint64
}

func newFakeWebhookEventStore() *fakeWebhookEventStore {
	return &fakeWebhookEventStore{}
}

func (f *fakeWebhookEventStore) Create(_ context.Context, _ repository.DBTX, event *entity.WebhookEvent) error {
	for _, stored := range f.events {
		if stored.Reference == event.Reference {
			return repository.ErrWebhookEventAlreadyQueued
		}
	}
	f.nextID++
	event.ID = f.nextID
	stored := *event
	f.events = append(f.events, &stored)
	return nil
}

func (f *fakeWebhookEventStore) ListUnprocessed(_ context.Context, _ repository.DBTX, maxAttempts, limit int32) ([]*entity.WebhookEvent, error) {
	events := make([]*entity.WebhookEvent, 0)
	for _, stored := range f.events {
		if stored.Processed || stored.Attempts >= maxAttempts {
			continue
		}
		clone := *stored
		events = append(events, &clone)
		if int32(len(events)) >= limit {
			break
		}
	}
	return events, nil
}

func (f *fakeWebhookEventStore) RecordAttempt(_ context.Context, _ repository.DBTX, id uint64, lastError string, now time.Time) error {
	for _, stored := range f.events {
		if stored.ID == id {
			stored.Attempts++
			stored.LastError = &lastError
			stored.UpdatedAt = now
			return nil
		}
	}
	return repository.ErrWebhookEventNotFound
}

func (f *fakeWebhookEventStore) MarkProcessed(_ context.Context, _ repository.DBTX, id uint64, note *string, now time.Time) error {
	for _, stored := range f.events {
		if stored.ID == id {
			stored.Processed = true
			stored.ProcessedAt = &now
			stored.Attempts++
			stored.LastError = note
			stored.UpdatedAt = now
			return nil
		}
	}
	return repository.ErrWebhookEventNotFound
}

func (f *fakeWebhookEventStore) forReference(reference string) *entity.WebhookEvent {
	for _, stored := range f.events {
		if stored.Reference == reference {
			return stored
		}
	}
	return nil
}

type fakeEventStore struct {
	events []*entity.PaymentEvent
}

func (f *fakeEventStore) Create(_ context.Context, _ repository.DBTX, event *entity.PaymentEvent) error {
	stored := *event
	f.events = append(f.events, &stored)
	return nil
}

func (f *fakeEventStore) ofType(eventType string) []*entity.PaymentEvent {
	matches := make([]*entity.PaymentEvent, 0)
	for _, stored := range f.events {
		if stored.EventType == eventType {
			matches = append(matches, stored)
		}
	}
	return matches
}

type fakeOrderStore struct {
	lines map[string][]repository.OrderLine
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{lines: make(map[string][]repository.OrderLine)}
}

func (f *fakeOrderStore) ListLines(_ context.Context, _ repository.DBTX, orderID string) ([]repository.OrderLine, error) {
	return f.lines[orderID], nil
}

type fakeBookingStore struct {
	bookings map[string]*repository.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[string]*repository.Booking)}
}

func (f *fakeBookingStore) FindByID(_ context.Context, _ repository.DBTX, id string) (*repository.Booking, error) {
	return f.bookings[id], nil
}

type fakeSubscriptionStore struct {
	subs        map[string]*repository.Subscription
	dateUpdates int
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{subs: make(map[string]*repository.Subscription)}
}

func (f *fakeSubscriptionStore) FindByID(_ context.Context, _ repository.DBTX, id string) (*repository.Subscription, error) {
	return f.subs[id], nil
}

func (f *fakeSubscriptionStore) UpdateDates(_ context.Context, _ repository.DBTX, id string, startDate, endDate time.Time) error {
	sub, ok := f.subs[id]
	if !ok {
		return repository.ErrSubscriptionNotFound
	}
	sub.StartDate = startDate
	sub.EndDate = endDate
	f.dateUpdates++
	return nil
}

type fakeGateway struct {
	verifyResult *provider.VerifyResult
	verifyErr    error
	initResult   *provider.InitializeResult
	initErr      error
	verifyCalls  int
	initCalls    int
}

func (g *fakeGateway) Initialize(_ context.Context, _ provider.InitializeInput) (*provider.InitializeResult, error) {
	g.initCalls++
	if g.initErr != nil {
		return nil, g.initErr
	}
	if g.initResult != nil {
		return g.initResult, nil
	}
	return &provider.InitializeResult{RedirectURL: "https://checkout.example/x", AccessCode: "ac_test"}, nil
}

func (g *fakeGateway) Verify(_ context.Context, _ string) (*provider.VerifyResult, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	if g.verifyResult != nil {
		return g.verifyResult, nil
	}
	return &provider.VerifyResult{Status: provider.VerifyStatusPending}, nil
}

func (g *fakeGateway) VerifyWebhookSignature(_ []byte, signature string) error {
	if signature != "good-sig" {
		return provider.ErrBadSignature
	}
	return nil
}

type env struct {
	svc      *SettlementService
	payments *fakePaymentStore
	wallets  *fakeWalletStore
	payouts  *fakePayoutStore
	queue    *fakeWebhookEventStore
	events   *fakeEventStore
	orders   *fakeOrderStore
	bookings *fakeBookingStore
	subs     *fakeSubscriptionStore
	gateway  *fakeGateway
}

func newEnv() *env {
	e := &env{
		payments: newFakePaymentStore(),
		wallets:  newFakeWalletStore(),
		payouts:  newFakePayoutStore(),
		queue:    newFakeWebhookEventStore(),
		events:   &fakeEventStore{},
		orders:   newFakeOrderStore(),
		bookings: newFakeBookingStore(),
		subs:     newFakeSubscriptionStore(),
		gateway:  &fakeGateway{},
	}
	e.svc = NewSettlementService(
		fakeTxRunner{},
		e.payments,
		e.wallets,
		e.payouts,
		e.queue,
		e.events,
		e.orders,
		e.bookings,
		e.subs,
		e.gateway,
		config.SettlementConfig{Currency: "GHS", ReplayLimit: 200, ReplayMaxAttempts: 10},
	)
	return e
}

func (e *env) seedPayment(reference string, amount string, direction entity.PaymentDirection, kind entity.TargetKind, targetID, vendorID *string) *entity.Payment {
	now := time.Now().UTC()
	payment := &entity.Payment{
		Reference:  reference,
		Amount:     decimal.RequireFromString(amount),
		Direction:  direction,
		TargetKind: kind,
		TargetID:   targetID,
		VendorID:   vendorID,
		Status:     entity.PaymentStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.payments.Create(context.Background(), nil, payment); err != nil {
		panic(err)
	}
	return payment
}

func (e *env) seedWallet(vendorID, balance string) *entity.Wallet {
	now := time.Now().UTC()
	wallet := &entity.Wallet{
		VendorID:  vendorID,
		Balance:   decimal.RequireFromString(balance),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.wallets.Create(context.Background(), nil, wallet); err != nil {
		panic(err)
	}
	return wallet
}

func (e *env) seedTwoVendorOrder(orderID string) {
	e.orders.lines[orderID] = []repository.OrderLine{
		{ID: "line-1", OrderID: orderID, VendorID: "vendor-a", ProductID: "prod-1", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 3},
		{ID: "line-2", OrderID: orderID, VendorID: "vendor-b", ProductID: "prod-2", UnitPrice: decimal.RequireFromString("20.00"), Quantity: 1},
	}
}

func strPtr(s string) *string { return &s }

func successObservation() Observation {
	return Observation{Status: entity.PaymentStatusSuccess, StatusCode: "Approved"}
}

func failedObservation() Observation {
	return Observation{Status: entity.PaymentStatusFailed, StatusCode: "Declined"}
}
