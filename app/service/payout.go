package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gridmarket/ms-go-settlement/app/entity"
	"github.com/gridmarket/ms-go-settlement/app/repository"
)

type listPayoutsRequest interface {
	GetVendorID() string
	GetPayoutStatus() string
	GetUnsettled() bool
	GetLimit() int32
	GetOffset() int32
}

// ApprovePayout settles one payout: the vendor wallet is credited and the
// payout marked settled, atomically under row locks on both.
func (s *SettlementService) ApprovePayout(ctx context.Context, payoutID uint64, approvedBy string) (*entity.Payout, error) {
	var approved *entity.Payout
	err := s.tx.InTx(ctx, func(q repository.DBTX) error {
		payout, err := s.payouts.FindByIDForUpdate(ctx, q, payoutID)
		if err != nil {
			return err
		}
		if payout == nil {
			return ErrPayoutNotFound
		}
		if err := s.settlePayout(ctx, q, payout, approvedBy); err != nil {
			return err
		}
		approved = payout
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// ApproveAllPending settles every PENDING unsettled payout, optionally
// narrowed to one vendor, in a single transaction. Either every payout in
// the batch settles or none does.
func (s *SettlementService) ApproveAllPending(ctx context.Context, vendorID, approvedBy string) ([]*entity.Payout, error) {
	var approved []*entity.Payout
	err := s.tx.InTx(ctx, func(q repository.DBTX) error {
		payouts, err := s.payouts.ListPendingUnsettledForUpdate(ctx, q, vendorID)
		if err != nil {
			return err
		}
		for _, payout := range payouts {
			if err := s.settlePayout(ctx, q, payout, approvedBy); err != nil {
				return err
			}
		}
		approved = payouts
		return nil
	})
	if err != nil {
		return nil, err
	}
	if approved == nil {
		approved = []*entity.Payout{}
	}
	return approved, nil
}

func (s *SettlementService) settlePayout(ctx context.Context, q repository.DBTX, payout *entity.Payout, approvedBy string) error {
	if payout.IsSettled {
		return ErrPayoutAlreadySettled
	}

	wallet, err := s.wallets.FindByVendorForUpdate(ctx, q, payout.VendorID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if wallet == nil {
		wallet = &entity.Wallet{VendorID: payout.VendorID, CreatedAt: now, UpdatedAt: now}
		if err := s.wallets.Create(ctx, q, wallet); err != nil {
			return err
		}
	}

	wallet.Credit(payout.Amount)
	wallet.UpdatedAt = now
	if err := s.wallets.UpdateBalance(ctx, q, wallet); err != nil {
		return err
	}

	payout.PayoutStatus = entity.PayoutStatusApproved
	payout.IsSettled = true
	payout.SettledAt = &now
	if approvedBy = strings.TrimSpace(approvedBy); approvedBy != "" {
		payout.SettledBy = &approvedBy
	}
	payout.UpdatedAt = now
	if err := s.payouts.Update(ctx, q, payout); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"payout_id": payout.ID,
		"vendor_id": payout.VendorID,
		"amount":    payout.Amount.String(),
	}).Info("payout settled")
	return nil
}

// RejectPayout closes an unsettled payout without moving money.
func (s *SettlementService) RejectPayout(ctx context.Context, payoutID uint64, rejectedBy string) (*entity.Payout, error) {
	var rejected *entity.Payout
	err := s.tx.InTx(ctx, func(q repository.DBTX) error {
		payout, err := s.payouts.FindByIDForUpdate(ctx, q, payoutID)
		if err != nil {
			return err
		}
		if payout == nil {
			return ErrPayoutNotFound
		}
		if payout.IsSettled {
			return ErrPayoutAlreadySettled
		}

		now := time.Now().UTC()
		payout.PayoutStatus = entity.PayoutStatusRejected
		if rejectedBy = strings.TrimSpace(rejectedBy); rejectedBy != "" {
			payout.SettledBy = &rejectedBy
		}
		payout.UpdatedAt = now
		if err := s.payouts.Update(ctx, q, payout); err != nil {
			return err
		}
		rejected = payout
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

func (s *SettlementService) ListPayouts(ctx context.Context, req listPayoutsRequest) ([]*entity.Payout, error) {
	filter := repository.PayoutFilter{
		VendorID:  req.GetVendorID(),
		Unsettled: req.GetUnsettled(),
		Limit:     pageSize(req.GetLimit()),
		Offset:    req.GetOffset(),
	}
	if status := strings.ToUpper(strings.TrimSpace(req.GetPayoutStatus())); status != "" {
		filter.PayoutStatus = entity.PayoutStatus(status)
	}
	return s.payouts.List(ctx, s.tx.DB(), filter)
}

func (s *SettlementService) ListPayoutItems(ctx context.Context, payoutID uint64) ([]*entity.PayoutItem, error) {
	return s.payouts.ListItems(ctx, s.tx.DB(), payoutID)
}
