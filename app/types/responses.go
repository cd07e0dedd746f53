package types

import "time"

type PaymentResponse struct {
	Reference  string    `json:"reference"`
	Amount     string    `json:"amount"`
	Direction  string    `json:"direction"`
	TargetKind string    `json:"target_kind"`
	TargetID   *string   `json:"target_id,omitempty"`
	VendorID   *string   `json:"vendor_id,omitempty"`
	Status     string    `json:"status"`
	StatusCode string    `json:"status_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type InitiationResponse struct {
	Payment     PaymentResponse `json:"payment"`
	RedirectURL string          `json:"redirect_url"`
	AccessCode  string          `json:"access_code,omitempty"`
}

type PayoutResponse struct {
	ID               uint64     `json:"id"`
	OrderID          string     `json:"order_id"`
	VendorID         string     `json:"vendor_id"`
	PaymentReference string     `json:"payment_reference"`
	Amount           string     `json:"amount"`
	PayoutStatus     string     `json:"payout_status"`
	IsSettled        bool       `json:"is_settled"`
	SettledAt        *time.Time `json:"settled_at,omitempty"`
	SettledBy        *string    `json:"settled_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type PayoutItemResponse struct {
	OrderLineID string `json:"order_line_id"`
	ProductID   string `json:"product_id"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int32  `json:"quantity"`
	LineTotal   string `json:"line_total"`
}

type WebhookAckResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
