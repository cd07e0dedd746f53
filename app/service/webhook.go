package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gridmarket/ms-go-settlement/app/entity"
	"github.com/gridmarket/ms-go-settlement/app/repository"
)

type WebhookDisposition string

const (
	// WebhookApplied means the payment existed and the observation ran
	// through the effect applier.
	WebhookApplied WebhookDisposition = "applied"
	// WebhookQueued means the payment was unknown, so the delivery was
	// persisted for replay.
	WebhookQueued WebhookDisposition = "queued"
	// WebhookIgnored means the event type or payload carried nothing
	// actionable.
	WebhookIgnored WebhookDisposition = "ignored"
)

type WebhookResult struct {
	Disposition WebhookDisposition
	Payment     *entity.Payment
}

// outcomeEvents are the gateway event types that report a payment outcome.
// Everything else (customer.*, subscription.*, ...) is acknowledged and
// dropped.
var outcomeEvents = map[string]bool{
	"charge.success":    true,
	"charge.failed":     true,
	"transfer.success":  true,
	"transfer.failed":   true,
	"transfer.reversed": true,
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// HandleWebhook processes one gateway delivery: verify the signature over
// the raw body, then either apply the observation (after re-verifying the
// status with the gateway, since webhook bodies are hints, not truth) or
// queue the delivery when the payment is not known yet.
//
// Error contract: provider.ErrBadSignature means reject with 401,
// ErrMalformedPayload means reject with 400, transient gateway errors mean
// the caller should ask the gateway to retry. Business outcomes, including
// an unknown reference, are acknowledged.
func (s *SettlementService) HandleWebhook(ctx context.Context, signature string, body []byte) (*WebhookResult, error) {
	if err := s.gateway.VerifyWebhookSignature(body, signature); err != nil {
		return nil, err
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	reference := strings.TrimSpace(payload.Data.Reference)
	if !outcomeEvents[payload.Event] || reference == "" {
		s.logger.WithFields(logrus.Fields{"event": payload.Event}).Debug("ignoring non-outcome webhook event")
		return &WebhookResult{Disposition: WebhookIgnored}, nil
	}

	payment, err := s.payments.FindByReference(ctx, s.tx.DB(), reference)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		if err := s.queueWebhookEvent(ctx, reference, string(body), signature); err != nil {
			return nil, err
		}
		s.logger.WithFields(logrus.Fields{"reference": reference, "event": payload.Event}).Info("queued webhook for unknown payment")
		return &WebhookResult{Disposition: WebhookQueued}, nil
	}

	applied, err := s.VerifyAndApply(ctx, reference)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			// raced away between lookup and lock; acknowledge
			return &WebhookResult{Disposition: WebhookIgnored}, nil
		}
		return nil, err
	}
	return &WebhookResult{Disposition: WebhookApplied, Payment: applied}, nil
}

// queueWebhookEvent stores the delivery keyed by reference. A second
// delivery for a reference already queued is a no-op.
func (s *SettlementService) queueWebhookEvent(ctx context.Context, reference, payload, signature string) error {
	now := time.Now().UTC()
	event := &entity.WebhookEvent{
		Reference: reference,
		Payload:   payload,
		Signature: signature,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.webhookEvents.Create(ctx, s.tx.DB(), event); err != nil {
		if errors.Is(err, repository.ErrWebhookEventAlreadyQueued) {
			return nil
		}
		return err
	}
	return nil
}
