package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultPaystackBaseURL = "https://api.paystack.co"

type PaystackConfig struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string
	HTTPTimeout   time.Duration
}

type PaystackGateway struct {
	cfg    PaystackConfig
	client *http.Client
}

func NewPaystackGateway(cfg PaystackConfig) *PaystackGateway {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultPaystackBaseURL
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		// Paystack signs webhooks with the account secret key.
		cfg.WebhookSecret = cfg.SecretKey
	}

	return &PaystackGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (g *PaystackGateway) Initialize(ctx context.Context, input InitializeInput) (*InitializeResult, error) {
	if strings.TrimSpace(g.cfg.SecretKey) == "" {
		return nil, ErrSecretNotConfigured
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	payload := map[string]interface{}{
		// Paystack expects amounts in subunits.
		"amount":    input.Amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"email":     strings.TrimSpace(input.Email),
		"reference": strings.TrimSpace(input.Reference),
		"currency":  currency,
	}
	if strings.TrimSpace(input.CallbackURL) != "" {
		payload["callback_url"] = strings.TrimSpace(input.CallbackURL)
	}

	body, err := g.postJSON(ctx, "/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Status bool   `json:"status"`
		Msg    string `json:"message"`
		Data   struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	if !parsed.Status {
		return nil, fmt.Errorf("paystack initialize rejected: %s", parsed.Msg)
	}

	return &InitializeResult{
		Reference:   parsed.Data.Reference,
		RedirectURL: parsed.Data.AuthorizationURL,
		AccessCode:  parsed.Data.AccessCode,
	}, nil
}

func (g *PaystackGateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if strings.TrimSpace(g.cfg.SecretKey) == "" {
		return nil, ErrSecretNotConfigured
	}

	endpoint := g.cfg.BaseURL + "/transaction/verify/" + url.PathEscape(strings.TrimSpace(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: verify returned status=%d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var parsed struct {
		Status bool   `json:"status"`
		Msg    string `json:"message"`
		Data   struct {
			Status          string `json:"status"`
			GatewayResponse string `json:"gateway_response"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	result := &VerifyResult{
		StatusCode: strings.TrimSpace(parsed.Data.GatewayResponse),
		Raw:        string(body),
	}
	switch strings.ToLower(strings.TrimSpace(parsed.Data.Status)) {
	case "success":
		result.Status = VerifyStatusSuccess
	case "failed", "reversed":
		result.Status = VerifyStatusFailed
	default:
		// abandoned, ongoing, queued, or an unknown reference: money may
		// still arrive, so nothing terminal is reported.
		result.Status = VerifyStatusPending
	}
	return result, nil
}

// VerifyWebhookSignature checks the hex HMAC-SHA512 of the raw body in
// constant time.
func (g *PaystackGateway) VerifyWebhookSignature(payload []byte, signature string) error {
	secret := strings.TrimSpace(g.cfg.WebhookSecret)
	if secret == "" {
		return ErrSecretNotConfigured
	}

	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrBadSignature
	}
	candidate, err := hex.DecodeString(signature)
	if err != nil {
		return ErrBadSignature
	}

	mac := hmac.New(sha512.New, []byte(secret))
	_, _ = mac.Write(payload)
	if !hmac.Equal(candidate, mac.Sum(nil)) {
		return ErrBadSignature
	}
	return nil
}

func (g *PaystackGateway) postJSON(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: path=%s status=%d", ErrGatewayUnavailable, path, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("paystack request failed: path=%s status=%d body=%s", path, resp.StatusCode, string(body))
	}
	return body, nil
}

// IsTransient reports whether err came from a transport failure rather
// than a business outcome.
func IsTransient(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable) || errors.Is(err, context.DeadlineExceeded)
}
