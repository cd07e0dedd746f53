package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gridmarket/ms-go-settlement/app/entity"
)

type ReplayReport struct {
	Scanned               int
	Processed             int
	SkippedMissingPayment int
	Failed                int
}

// Replay drains queued webhook events: for each event whose payment now
// exists, re-verify with the gateway and run the effect applier. Events stay
// queued until the payment reaches a terminal state or the attempt ceiling
// is hit; every pass over an event bumps its attempt counter, so a
// permanently broken delivery falls out of the queue after maxAttempts.
func (s *SettlementService) Replay(ctx context.Context, limit, maxAttempts int32) (*ReplayReport, error) {
	if limit <= 0 {
		limit = s.cfg.ReplayLimit
	}
	if maxAttempts <= 0 {
		maxAttempts = s.cfg.ReplayMaxAttempts
	}

	events, err := s.webhookEvents.ListUnprocessed(ctx, s.tx.DB(), maxAttempts, limit)
	if err != nil {
		return nil, err
	}

	report := &ReplayReport{Scanned: len(events)}
	for _, event := range events {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		s.replayOne(ctx, event, report)
	}
	return report, nil
}

func (s *SettlementService) replayOne(ctx context.Context, event *entity.WebhookEvent, report *ReplayReport) {
	log := s.logger.WithFields(logrus.Fields{"reference": event.Reference, "attempts": event.Attempts})
	now := time.Now().UTC()

	payment, err := s.payments.FindByReference(ctx, s.tx.DB(), event.Reference)
	if err != nil {
		report.Failed++
		s.recordReplayFailure(ctx, event, err, now, log)
		return
	}
	if payment == nil {
		report.SkippedMissingPayment++
		if err := s.webhookEvents.RecordAttempt(ctx, s.tx.DB(), event.ID, "payment still missing", now); err != nil {
			log.WithError(err).Error("failed to record replay attempt")
		}
		return
	}

	applied, err := s.VerifyAndApply(ctx, event.Reference)
	if err != nil {
		report.Failed++
		s.recordReplayFailure(ctx, event, err, now, log)
		return
	}

	if applied.Status.Terminal() {
		var note *string
		if applied.Status == entity.PaymentStatusFailed {
			n := "payment reconciled as FAILED"
			note = &n
		}
		if err := s.webhookEvents.MarkProcessed(ctx, s.tx.DB(), event.ID, note, now); err != nil {
			log.WithError(err).Error("failed to mark webhook event processed")
			report.Failed++
			return
		}
		report.Processed++
		log.WithField("status", string(applied.Status)).Info("replayed webhook event")
		return
	}

	report.Failed++
	s.recordReplayFailure(ctx, event, ErrPaymentStillPending, now, log)
}

func (s *SettlementService) recordReplayFailure(ctx context.Context, event *entity.WebhookEvent, cause error, now time.Time, log *logrus.Entry) {
	log.WithError(cause).Warn("webhook replay attempt failed")
	if err := s.webhookEvents.RecordAttempt(ctx, s.tx.DB(), event.ID, cause.Error(), now); err != nil {
		log.WithError(err).Error("failed to record replay attempt")
	}
}
