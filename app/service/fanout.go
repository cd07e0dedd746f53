package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridmarket/ms-go-settlement/app/entity"
	"github.com/gridmarket/ms-go-settlement/app/repository"
)

// fanOutPayouts splits a settled order payment into one payout per vendor
// whose lines appear on the order, with item rows snapshotting each line's
// price and quantity. The upsert keys (order, vendor) for payouts and
// (payout, order line) for items make re-runs converge on the same rows, so
// a duplicate settlement observation cannot double a vendor's obligation.
func (s *SettlementService) fanOutPayouts(ctx context.Context, q repository.DBTX, payment *entity.Payment, now time.Time) error {
	if payment.TargetID == nil {
		return fmt.Errorf("order payment %s has no target id", payment.Reference)
	}
	orderID := *payment.TargetID

	lines, err := s.orders.ListLines(ctx, q, orderID)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("order %s has no lines to fan out", orderID)
	}

	vendorOrder := make([]string, 0, 2)
	byVendor := make(map[string][]repository.OrderLine, 2)
	for _, line := range lines {
		if _, seen := byVendor[line.VendorID]; !seen {
			vendorOrder = append(vendorOrder, line.VendorID)
		}
		byVendor[line.VendorID] = append(byVendor[line.VendorID], line)
	}

	for _, vendorID := range vendorOrder {
		vendorLines := byVendor[vendorID]

		amount := decimal.Zero
		for _, line := range vendorLines {
			amount = amount.Add(line.Total())
		}

		payout, err := s.payouts.FindByOrderVendorForUpdate(ctx, q, orderID, vendorID)
		if err != nil {
			return err
		}
		if payout == nil {
			payout = &entity.Payout{
				OrderID:          orderID,
				VendorID:         vendorID,
				PaymentReference: payment.Reference,
				PaymentStatus:    payment.Status,
				Amount:           amount,
				PayoutStatus:     entity.PayoutStatusPending,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := s.payouts.Create(ctx, q, payout); err != nil {
				return err
			}
		} else {
			payout.PaymentReference = payment.Reference
			payout.PaymentStatus = payment.Status
			payout.Amount = amount
			payout.UpdatedAt = now
			if err := s.payouts.Update(ctx, q, payout); err != nil {
				return err
			}
		}

		for _, line := range vendorLines {
			existing, err := s.payouts.FindItem(ctx, q, payout.ID, line.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			item := &entity.PayoutItem{
				PayoutID:    payout.ID,
				OrderLineID: line.ID,
				ProductID:   line.ProductID,
				UnitPrice:   line.UnitPrice,
				Quantity:    line.Quantity,
				LineTotal:   line.Total(),
				CreatedAt:   now,
			}
			if err := s.payouts.CreateItem(ctx, q, item); err != nil {
				return err
			}
		}
	}

	return nil
}
