package controller

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/gridmarket/ms-go-settlement/app/factory"
	"github.com/gridmarket/ms-go-settlement/app/provider"
	"github.com/gridmarket/ms-go-settlement/app/service"
	"github.com/gridmarket/ms-go-settlement/app/types"
)

type webhookHandler interface {
	HandleWebhook(ctx context.Context, signature string, body []byte) (*service.WebhookResult, error)
}

type WebhookController struct {
	svc    webhookHandler
	logger *logrus.Entry
}

func NewWebhookController(svc webhookHandler) *WebhookController {
	return &WebhookController{
		svc:    svc,
		logger: factory.NewModuleLogger("webhook-controller"),
	}
}

// Handle receives a gateway delivery. 2xx acknowledges; 5xx asks the
// gateway to redeliver later, which is the right answer for transient
// failures only.
func (ctl *WebhookController) Handle(c echo.Context) error {
	log := factory.LoggerWithContext(c, ctl.logger)

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest(c, errors.New("unreadable request body"))
	}

	signature := c.Request().Header.Get("X-Paystack-Signature")
	if signature == "" {
		signature = c.Request().Header.Get("X-Signature")
	}

	result, err := ctl.svc.HandleWebhook(c.Request().Context(), signature, body)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrBadSignature):
			log.Warn("webhook delivery with bad signature")
			return c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "invalid signature"})
		case errors.Is(err, provider.ErrSecretNotConfigured):
			log.Error("webhook secret is not configured")
			return c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
		case errors.Is(err, service.ErrMalformedPayload):
			return badRequest(c, err)
		case provider.IsTransient(err):
			log.WithError(err).Warn("webhook deferred, gateway unavailable")
			return c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "retry later"})
		default:
			log.WithError(err).Error("webhook processing failed")
			return c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
		}
	}

	return c.JSON(http.StatusOK, types.WebhookAckResponse{Status: string(result.Disposition)})
}
