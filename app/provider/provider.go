package provider

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrGatewayUnavailable wraps transport-level failures talking to the
	// gateway. Callers must treat it as transient, never as a FAILED
	// payment.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	ErrBadSignature        = errors.New("invalid webhook signature")
	ErrSecretNotConfigured = errors.New("gateway secret is not configured")
)

// VerifyStatus is the gateway's answer to "did this payment settle".
type VerifyStatus string

const (
	VerifyStatusSuccess VerifyStatus = "success"
	VerifyStatusFailed  VerifyStatus = "failed"
	VerifyStatusPending VerifyStatus = "pending"
)

type InitializeInput struct {
	Reference   string
	Amount      decimal.Decimal
	Currency    string
	Email       string
	CallbackURL string
}

type InitializeResult struct {
	Reference   string
	RedirectURL string
	AccessCode  string
}

type VerifyResult struct {
	Status     VerifyStatus
	StatusCode string
	Raw        string
}

// Gateway is the external payment collaborator. Both calls are synchronous
// HTTP round trips with bounded timeouts and must run outside any payment
// row lock.
type Gateway interface {
	Initialize(ctx context.Context, input InitializeInput) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
	VerifyWebhookSignature(payload []byte, signature string) error
}
