package mapper

import (
	"github.com/gridmarket/ms-go-settlement/app/entity"
	"github.com/gridmarket/ms-go-settlement/app/service"
	"github.com/gridmarket/ms-go-settlement/app/types"
)

func ToPaymentResponse(payment *entity.Payment) types.PaymentResponse {
	return types.PaymentResponse{
		Reference:  payment.Reference,
		Amount:     payment.Amount.StringFixed(2),
		Direction:  string(payment.Direction),
		TargetKind: string(payment.TargetKind),
		TargetID:   payment.TargetID,
		VendorID:   payment.VendorID,
		Status:     string(payment.Status),
		StatusCode: payment.StatusCode,
		CreatedAt:  payment.CreatedAt,
		UpdatedAt:  payment.UpdatedAt,
	}
}

func ToPaymentResponses(payments []*entity.Payment) []types.PaymentResponse {
	responses := make([]types.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		responses = append(responses, ToPaymentResponse(payment))
	}
	return responses
}

func ToInitiationResponse(result *service.InitiationResult) types.InitiationResponse {
	return types.InitiationResponse{
		Payment:     ToPaymentResponse(result.Payment),
		RedirectURL: result.RedirectURL,
		AccessCode:  result.AccessCode,
	}
}
