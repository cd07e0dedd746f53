package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInsufficientFunds = errors.New("insufficient wallet funds")

// Wallet holds one non-negative balance per vendor. Balance mutations must
// run inside the same transaction as the payment guard-flag update that
// triggered them.
type Wallet struct {
	ID       uint64
	VendorID string
	Balance  decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credit adds amount to the balance. It always succeeds.
func (w *Wallet) Credit(amount decimal.Decimal) {
	w.Balance = w.Balance.Add(amount)
}

// Debit subtracts amount from the balance. A debit that would make the
// balance negative returns ErrInsufficientFunds and leaves it unchanged.
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if w.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

// CanTransfer reports whether the balance covers amount and is positive.
func (w *Wallet) CanTransfer(amount decimal.Decimal) bool {
	return amount.IsPositive() && w.Balance.GreaterThanOrEqual(amount)
}
