package controller

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/gridmarket/ms-go-settlement/app/factory"
	"github.com/gridmarket/ms-go-settlement/app/mapper"
	"github.com/gridmarket/ms-go-settlement/app/service"
	"github.com/gridmarket/ms-go-settlement/app/types"
)

type PayoutController struct {
	svc    *service.SettlementService
	logger *logrus.Entry
}

func NewPayoutController(svc *service.SettlementService) *PayoutController {
	return &PayoutController{
		svc:    svc,
		logger: factory.NewModuleLogger("payout-controller"),
	}
}

func (ctl *PayoutController) List(c echo.Context) error {
	payouts, err := ctl.svc.ListPayouts(c.Request().Context(), types.ListPayoutsRequestFromContext(c))
	if err != nil {
		return respondServiceError(c, factory.LoggerWithContext(c, ctl.logger), err)
	}
	return c.JSON(http.StatusOK, mapper.ToPayoutResponses(payouts))
}

func (ctl *PayoutController) ListItems(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, err)
	}
	items, err := ctl.svc.ListPayoutItems(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, factory.LoggerWithContext(c, ctl.logger), err)
	}
	return c.JSON(http.StatusOK, mapper.ToPayoutItemResponses(items))
}

func (ctl *PayoutController) Approve(c echo.Context) error {
	req, err := types.ApprovePayoutRequestFromContext(c)
	if err != nil {
		return badRequest(c, err)
	}
	payout, err := ctl.svc.ApprovePayout(c.Request().Context(), req.PayoutID, req.ApprovedBy)
	if err != nil {
		return respondServiceError(c, factory.LoggerWithContext(c, ctl.logger), err)
	}
	return c.JSON(http.StatusOK, mapper.ToPayoutResponse(payout))
}

func (ctl *PayoutController) Reject(c echo.Context) error {
	req, err := types.ApprovePayoutRequestFromContext(c)
	if err != nil {
		return badRequest(c, err)
	}
	payout, err := ctl.svc.RejectPayout(c.Request().Context(), req.PayoutID, req.ApprovedBy)
	if err != nil {
		return respondServiceError(c, factory.LoggerWithContext(c, ctl.logger), err)
	}
	return c.JSON(http.StatusOK, mapper.ToPayoutResponse(payout))
}

func (ctl *PayoutController) ApproveAll(c echo.Context) error {
	req, err := types.ApproveAllPayoutsRequestFromContext(c)
	if err != nil {
		return badRequest(c, err)
	}
	payouts, err := ctl.svc.ApproveAllPending(c.Request().Context(), req.VendorID, req.ApprovedBy)
	if err != nil {
		return respondServiceError(c, factory.LoggerWithContext(c, ctl.logger), err)
	}
	return c.JSON(http.StatusOK, mapper.ToPayoutResponses(payouts))
}
