package service

import (
	"errors"

	"github.com/gridmarket/ms-go-settlement/app/entity"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrPayoutNotFound       = errors.New("payout not found")
	ErrPayoutAlreadySettled = errors.New("payout already settled")
	ErrMalformedPayload     = errors.New("malformed webhook payload")
	ErrPaymentStillPending  = errors.New("payment is not terminal yet")
	ErrInvalidRequest       = errors.New("invalid request")

	// ErrInsufficientFunds surfaces the wallet invariant to callers without
	// them importing the entity package.
	ErrInsufficientFunds = entity.ErrInsufficientFunds
)
