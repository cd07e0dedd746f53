package mapper

import (
	"github.com/gridmarket/ms-go-settlement/app/entity"
	"github.com/gridmarket/ms-go-settlement/app/types"
)

func ToPayoutResponse(payout *entity.Payout) types.PayoutResponse {
	return types.PayoutResponse{
		ID:               payout.ID,
		OrderID:          payout.OrderID,
		VendorID:         payout.VendorID,
		PaymentReference: payout.PaymentReference,
		Amount:           payout.Amount.StringFixed(2),
		PayoutStatus:     string(payout.PayoutStatus),
		IsSettled:        payout.IsSettled,
		SettledAt:        payout.SettledAt,
		SettledBy:        payout.SettledBy,
		CreatedAt:        payout.CreatedAt,
	}
}

func ToPayoutResponses(payouts []*entity.Payout) []types.PayoutResponse {
	responses := make([]types.PayoutResponse, 0, len(payouts))
	for _, payout := range payouts {
		responses = append(responses, ToPayoutResponse(payout))
	}
	return responses
}

func ToPayoutItemResponses(items []*entity.PayoutItem) []types.PayoutItemResponse {
	responses := make([]types.PayoutItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, types.PayoutItemResponse{
			OrderLineID: item.OrderLineID,
			ProductID:   item.ProductID,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal.StringFixed(2),
		})
	}
	return responses
}
