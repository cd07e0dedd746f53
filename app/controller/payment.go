package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/gridmarket/ms-go-settlement/app/factory"
	"github.com/gridmarket/ms-go-settlement/app/mapper"
	"github.com/gridmarket/ms-go-settlement/app/service"
	"github.com/gridmarket/ms-go-settlement/app/types"
)

type PaymentController struct {
	svc    *service.SettlementService
	logger *logrus.Entry
}

func NewPaymentController(svc *service.SettlementService) *PaymentController {
	return &PaymentController{
		svc:    svc,
		logger: factory.NewModuleLogger("payment-controller"),
	}
}

func (ctl *PaymentController) InitiateOrderPayment(c echo.Context) error {
	req, err := types.OrderPaymentRequestFromContext(c)
	if err != nil {
		return badRequest(c, err)
	}
	result, err := ctl.svc.InitiateOrderPayment(c.Request().Context(), req)
	if err != nil {
		return respondServiceError(c, factory.LoggerWithContext(c, ctl.logger), err)
	}
	return c.JSON(http.StatusCreated, mapper.ToInitiationResponse(result))
}

func (ctl *PaymentController) InitiateBookingPayment(c echo.Context) error {
	req, err := types.BookingPaymentRequestFromContext(c)
	if err != nil {
		return badRequest(c, err)
	}
	result, err := ctl.svc.InitiateBookingPayment(c.Request().Context(), req)
	if err != nil {
		return respondServiceError(c, factory.LoggerWithContext(c, ctl.logger), err)
	}
	return c.JSON(http.StatusCreated, mapper.ToInitiationResponse(result))
}

func (ctl *PaymentController) InitiateSubscriptionRenewal(c echo.Context) error {
	req, err := types.SubscriptionRenewalRequestFromContext(c)
	if err != nil {
		return badRequest(c, err)
	}
	result, err := ctl.svc.InitiateSubscriptionRenewal(c.Request().Context(), req)
	if err != nil {
		return respondServiceError(c, factory.LoggerWithContext(c, ctl.logger), err)
	}
	return c.JSON(http.StatusCreated, mapper.ToInitiationResponse(result))
}

func (ctl *PaymentController) InitiateCashout(c echo.Context) error {
	req, err := types.CashoutRequestFromContext(c)
	if err != nil {
		return badRequest(c, err)
	}
	result, err := ctl.svc.InitiateCashout(c.Request().Context(), req)
	if err != nil {
		return respondServiceError(c, factory.LoggerWithContext(c, ctl.logger), err)
	}
	return c.JSON(http.StatusCreated, mapper.ToInitiationResponse(result))
}

// CheckStatus re-verifies the payment with the gateway and returns it after
// any effects were applied, so polling clients observe the same state a
// webhook would produce.
func (ctl *PaymentController) CheckStatus(c echo.Context) error {
	payment, err := ctl.svc.CheckStatus(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return respondServiceError(c, factory.LoggerWithContext(c, ctl.logger), err)
	}
	return c.JSON(http.StatusOK, mapper.ToPaymentResponse(payment))
}

func (ctl *PaymentController) List(c echo.Context) error {
	payments, err := ctl.svc.ListPayments(c.Request().Context(), types.ListPaymentsRequestFromContext(c))
	if err != nil {
		return respondServiceError(c, factory.LoggerWithContext(c, ctl.logger), err)
	}
	return c.JSON(http.StatusOK, mapper.ToPaymentResponses(payments))
}
