package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Terminal reports whether no further automatic transition is expected.
// SUCCESS is sticky; FAILED may still be promoted by a late settlement.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

type PaymentDirection string

const (
	// DirectionDebit moves money into the platform (customer pays).
	DirectionDebit PaymentDirection = "DEBIT"
	// DirectionCredit moves money out of the platform (vendor cashout).
	DirectionCredit PaymentDirection = "CREDIT"
)

// TargetKind discriminates the payment target union. Exactly one variant is
// set per payment; TargetNone means a direct vendor wallet operation.
type TargetKind string

const (
	TargetOrder        TargetKind = "order"
	TargetBooking      TargetKind = "booking"
	TargetSubscription TargetKind = "subscription"
	TargetNone         TargetKind = "none"
)

type Payment struct {
	ID uint64

	Reference string

	Amount    decimal.Decimal
	Direction PaymentDirection

	TargetKind TargetKind
	TargetID   *string

	// VendorID is required for booking, subscription, and wallet-op
	// payments; nil for order payments until fan-out resolves per-vendor
	// amounts.
	VendorID *string

	Status     PaymentStatus
	StatusCode string

	WalletEffectApplied       bool
	SubscriptionEffectApplied bool

	CustomerRef *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
