package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, payments *PaymentController, payouts *PayoutController, webhooks *WebhookController) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/webhooks/paystack", webhooks.Handle)

	e.POST("/payments/orders", payments.InitiateOrderPayment)
	e.POST("/payments/bookings", payments.InitiateBookingPayment)
	e.POST("/payments/subscriptions", payments.InitiateSubscriptionRenewal)
	e.POST("/payments/cashouts", payments.InitiateCashout)
	e.GET("/payments", payments.List)
	e.GET("/payments/:reference", payments.CheckStatus)

	e.GET("/payouts", payouts.List)
	e.GET("/payouts/:id/items", payouts.ListItems)
	e.POST("/payouts/:id/approve", payouts.Approve)
	e.POST("/payouts/:id/reject", payouts.Reject)
	e.POST("/payouts/approve-all", payouts.ApproveAll)
}
