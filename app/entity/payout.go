package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutStatusPending  PayoutStatus = "PENDING"
	PayoutStatusApproved PayoutStatus = "APPROVED"
	PayoutStatusRejected PayoutStatus = "REJECTED"
)

// Payout is the settlement obligation for one (order, vendor) pair, created
// when an order payment succeeds. Settlement (crediting the vendor wallet)
// happens in a separate admin approval step, never during fan-out.
type Payout struct {
	ID uint64

	OrderID  string
	VendorID string

	PaymentReference string
	PaymentStatus    PaymentStatus

	Amount decimal.Decimal

	PayoutStatus PayoutStatus
	IsSettled    bool
	SettledAt    *time.Time
	SettledBy    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PayoutItem snapshots one order line at settlement time. Price and quantity
// are captured when the row is created and never refreshed, so later product
// price changes cannot alter a settled amount.
type PayoutItem struct {
	ID uint64

	PayoutID    uint64
	OrderLineID string
	ProductID   string

	UnitPrice decimal.Decimal
	Quantity  int32
	LineTotal decimal.Decimal

	CreatedAt time.Time
}
