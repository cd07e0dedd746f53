package controller

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/gridmarket/ms-go-settlement/app/provider"
	"github.com/gridmarket/ms-go-settlement/app/service"
)

type fakeWebhookHandler struct {
	result    *service.WebhookResult
	err       error
	signature string
	body      string
}

func (f *fakeWebhookHandler) HandleWebhook(_ context.Context, signature string, body []byte) (*service.WebhookResult, error) {
	f.signature = signature
	f.body = string(body)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func performWebhook(handler *fakeWebhookHandler, signatureHeader, signature string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paystack", strings.NewReader(`{"event":"charge.success"}`))
	if signature != "" {
		req.Header.Set(signatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ctl := NewWebhookController(handler)
	_ = ctl.Handle(c)
	return rec
}

func TestWebhookHandlerAcknowledgesOutcome(t *testing.T) {
	handler := &fakeWebhookHandler{result: &service.WebhookResult{Disposition: service.WebhookQueued}}
	rec := performWebhook(handler, "X-Paystack-Signature", "abc")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"queued"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if handler.signature != "abc" {
		t.Fatalf("signature header not forwarded, got %q", handler.signature)
	}
}

func TestWebhookHandlerAcceptsFallbackSignatureHeader(t *testing.T) {
	handler := &fakeWebhookHandler{result: &service.WebhookResult{Disposition: service.WebhookIgnored}}
	performWebhook(handler, "X-Signature", "fallback")

	if handler.signature != "fallback" {
		t.Fatalf("fallback header not used, got %q", handler.signature)
	}
}

func TestWebhookHandlerRejectsBadSignature(t *testing.T) {
	handler := &fakeWebhookHandler{err: provider.ErrBadSignature}
	rec := performWebhook(handler, "X-Paystack-Signature", "tampered")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestWebhookHandlerRejectsMalformedPayload(t *testing.T) {
	handler := &fakeWebhookHandler{err: fmt.Errorf("%w: bad json", service.ErrMalformedPayload)}
	rec := performWebhook(handler, "X-Paystack-Signature", "abc")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWebhookHandlerDefersOnGatewayOutage(t *testing.T) {
	handler := &fakeWebhookHandler{err: fmt.Errorf("%w: refused", provider.ErrGatewayUnavailable)}
	rec := performWebhook(handler, "X-Paystack-Signature", "abc")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 so the gateway redelivers, got %d", rec.Code)
	}
}
