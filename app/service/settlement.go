package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gridmarket/ms-go-settlement/app/entity"
	"github.com/gridmarket/ms-go-settlement/app/provider"
	"github.com/gridmarket/ms-go-settlement/app/repository"
)

// subscriptionRenewalDays is the validity window granted per renewal payment.
const subscriptionRenewalDays = 30

// Observation is one gateway report about a payment. A PENDING observation
// carries no new information and never causes a transition.
type Observation struct {
	Status     entity.PaymentStatus
	StatusCode string
	RawPayload *string
}

func observationFromVerify(result *provider.VerifyResult) Observation {
	obs := Observation{StatusCode: result.StatusCode}
	switch result.Status {
	case provider.VerifyStatusSuccess:
		obs.Status = entity.PaymentStatusSuccess
	case provider.VerifyStatusFailed:
		obs.Status = entity.PaymentStatusFailed
	default:
		obs.Status = entity.PaymentStatusPending
	}
	if result.Raw != "" {
		raw := result.Raw
		obs.RawPayload = &raw
	}
	return obs
}

// VerifyAndApply asks the gateway for the authoritative status of reference
// and feeds the answer through the effect applier. The gateway round trip
// runs before any payment row lock is taken, so a slow gateway never holds
// database locks.
func (s *SettlementService) VerifyAndApply(ctx context.Context, reference string) (*entity.Payment, error) {
	result, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}
	return s.ApplyObservation(ctx, reference, observationFromVerify(result))
}

// ApplyObservation transitions the payment per the observation and applies
// the business effect of a settlement exactly once. The status write, the
// guard flags, and every effect commit in one serializable transaction under
// a row lock on the payment, so concurrent observations for the same
// reference serialize and re-deliveries are no-ops.
//
// SUCCESS is sticky: once a payment settled, later FAILED or PENDING
// observations are discarded without a write. A FAILED payment may still be
// promoted to SUCCESS by a late settlement.
func (s *SettlementService) ApplyObservation(ctx context.Context, reference string, obs Observation) (*entity.Payment, error) {
	var applied *entity.Payment
	err := s.tx.InTx(ctx, func(q repository.DBTX) error {
		payment, err := s.payments.FindByReferenceForUpdate(ctx, q, reference)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrPaymentNotFound
		}

		oldStatus := payment.Status
		if oldStatus == entity.PaymentStatusSuccess {
			applied = payment
			return nil
		}

		next := oldStatus
		switch obs.Status {
		case entity.PaymentStatusSuccess, entity.PaymentStatusFailed:
			next = obs.Status
		}
		if next == oldStatus {
			applied = payment
			return nil
		}

		now := time.Now().UTC()
		payment.Status = next
		if obs.StatusCode != "" {
			payment.StatusCode = obs.StatusCode
		}
		payment.UpdatedAt = now

		if next == entity.PaymentStatusSuccess {
			if err := s.applyEffects(ctx, q, payment, now); err != nil {
				return err
			}
		}

		if err := s.payments.Update(ctx, q, payment); err != nil {
			return err
		}
		if err := s.recordEvent(ctx, q, payment, transitionEventType(next), &oldStatus, obs.RawPayload, now); err != nil {
			return err
		}

		applied = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

func transitionEventType(status entity.PaymentStatus) string {
	if status == entity.PaymentStatusSuccess {
		return "payment_settled"
	}
	return "payment_marked_failed"
}

// applyEffects dispatches on the payment target. Exactly one effect category
// fires per payment: order payments fan out into payouts, subscription
// payments extend the subscription, everything else moves the vendor wallet.
func (s *SettlementService) applyEffects(ctx context.Context, q repository.DBTX, payment *entity.Payment, now time.Time) error {
	switch payment.TargetKind {
	case entity.TargetOrder:
		return s.fanOutPayouts(ctx, q, payment, now)
	case entity.TargetSubscription:
		return s.applySubscriptionEffect(ctx, q, payment, now)
	default:
		return s.applyWalletEffect(ctx, q, payment, now)
	}
}

func (s *SettlementService) applySubscriptionEffect(ctx context.Context, q repository.DBTX, payment *entity.Payment, now time.Time) error {
	if payment.SubscriptionEffectApplied {
		return nil
	}
	if payment.TargetID == nil {
		return fmt.Errorf("subscription payment %s has no target id", payment.Reference)
	}

	start := now
	end := now.AddDate(0, 0, subscriptionRenewalDays)
	if err := s.subscriptions.UpdateDates(ctx, q, *payment.TargetID, start, end); err != nil {
		return err
	}

	payment.SubscriptionEffectApplied = true
	return s.recordEvent(ctx, q, payment, "subscription_renewed", nil, nil, now)
}

func (s *SettlementService) applyWalletEffect(ctx context.Context, q repository.DBTX, payment *entity.Payment, now time.Time) error {
	if payment.WalletEffectApplied {
		return nil
	}
	if payment.VendorID == nil {
		return fmt.Errorf("wallet payment %s has no vendor", payment.Reference)
	}

	wallet, err := s.wallets.FindByVendorForUpdate(ctx, q, *payment.VendorID)
	if err != nil {
		return err
	}

	if payment.Direction == entity.DirectionDebit {
		// Money came in for this vendor: credit the wallet, creating it on
		// first contact.
		if wallet == nil {
			wallet = &entity.Wallet{VendorID: *payment.VendorID, CreatedAt: now, UpdatedAt: now}
			if err := s.wallets.Create(ctx, q, wallet); err != nil {
				return err
			}
		}
		wallet.Credit(payment.Amount)
		wallet.UpdatedAt = now
		if err := s.wallets.UpdateBalance(ctx, q, wallet); err != nil {
			return err
		}
		payment.WalletEffectApplied = true
		return s.recordEvent(ctx, q, payment, "wallet_credited", nil, nil, now)
	}

	// Cashout: the gateway already moved the money out, so a debit that
	// cannot cover the amount is an operator problem, not a reason to leave
	// the payment unsettled. The guard still flips so the mismatch is booked
	// exactly once.
	if wallet == nil || wallet.Debit(payment.Amount) != nil {
		s.logger.WithFields(logrus.Fields{
			"reference": payment.Reference,
			"vendor_id": *payment.VendorID,
			"amount":    payment.Amount.String(),
		}).Error("cashout settled but vendor wallet cannot cover it")
		payment.WalletEffectApplied = true
		return s.recordEvent(ctx, q, payment, "wallet_debit_failed", nil, nil, now)
	}

	wallet.UpdatedAt = now
	if err := s.wallets.UpdateBalance(ctx, q, wallet); err != nil {
		return err
	}
	payment.WalletEffectApplied = true
	return s.recordEvent(ctx, q, payment, "wallet_debited", nil, nil, now)
}

func (s *SettlementService) recordEvent(ctx context.Context, q repository.DBTX, payment *entity.Payment, eventType string, oldStatus *entity.PaymentStatus, payload *string, now time.Time) error {
	return s.events.Create(ctx, q, &entity.PaymentEvent{
		PaymentID:   payment.ID,
		EventType:   eventType,
		OldStatus:   oldStatus,
		NewStatus:   payment.Status,
		PayloadJSON: payload,
		CreatedAt:   now,
	})
}
