package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/gridmarket/ms-go-settlement/app/provider"
	"github.com/gridmarket/ms-go-settlement/app/service"
	"github.com/gridmarket/ms-go-settlement/app/types"
)

// respondServiceError translates service sentinels into HTTP status codes.
func respondServiceError(c echo.Context, log *logrus.Entry, err error) error {
	switch {
	case errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrSubscriptionNotFound),
		errors.Is(err, service.ErrWalletNotFound),
		errors.Is(err, service.ErrPayoutNotFound):
		return c.JSON(http.StatusNotFound, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrPayoutAlreadySettled):
		return c.JSON(http.StatusConflict, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInsufficientFunds):
		return c.JSON(http.StatusUnprocessableEntity, types.ErrorResponse{Error: err.Error()})
	case provider.IsTransient(err):
		log.WithError(err).Warn("gateway unavailable")
		return c.JSON(http.StatusBadGateway, types.ErrorResponse{Error: "payment gateway unavailable"})
	default:
		log.WithError(err).Error("request failed")
		return c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
}
