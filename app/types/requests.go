package types

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type InitiateOrderPaymentRequest struct {
	OrderID string `json:"order_id"`
	Email   string `json:"email"`
}

func OrderPaymentRequestFromContext(c echo.Context) (*InitiateOrderPaymentRequest, error) {
	req := &InitiateOrderPaymentRequest{}
	if err := c.Bind(req); err != nil {
		return nil, err
	}
	return req, req.Validate()
}

func (r *InitiateOrderPaymentRequest) Validate() error {
	if strings.TrimSpace(r.OrderID) == "" {
		return errors.New("order_id is required")
	}
	return nil
}

func (r *InitiateOrderPaymentRequest) GetOrderID() string { return strings.TrimSpace(r.OrderID) }

func (r *InitiateOrderPaymentRequest) GetCustomerEmail() string { return strings.TrimSpace(r.Email) }

type InitiateBookingPaymentRequest struct {
	BookingID string `json:"booking_id"`
	Email     string `json:"email"`
}

func BookingPaymentRequestFromContext(c echo.Context) (*InitiateBookingPaymentRequest, error) {
	req := &InitiateBookingPaymentRequest{}
	if err := c.Bind(req); err != nil {
		return nil, err
	}
	return req, req.Validate()
}

func (r *InitiateBookingPaymentRequest) Validate() error {
	if strings.TrimSpace(r.BookingID) == "" {
		return errors.New("booking_id is required")
	}
	return nil
}

func (r *InitiateBookingPaymentRequest) GetBookingID() string { return strings.TrimSpace(r.BookingID) }

func (r *InitiateBookingPaymentRequest) GetCustomerEmail() string { return strings.TrimSpace(r.Email) }

type InitiateSubscriptionRenewalRequest struct {
	SubscriptionID string `json:"subscription_id"`
	Email          string `json:"email"`
}

func SubscriptionRenewalRequestFromContext(c echo.Context) (*InitiateSubscriptionRenewalRequest, error) {
	req := &InitiateSubscriptionRenewalRequest{}
	if err := c.Bind(req); err != nil {
		return nil, err
	}
	return req, req.Validate()
}

func (r *InitiateSubscriptionRenewalRequest) Validate() error {
	if strings.TrimSpace(r.SubscriptionID) == "" {
		return errors.New("subscription_id is required")
	}
	return nil
}

func (r *InitiateSubscriptionRenewalRequest) GetSubscriptionID() string {
	return strings.TrimSpace(r.SubscriptionID)
}

func (r *InitiateSubscriptionRenewalRequest) GetCustomerEmail() string {
	return strings.TrimSpace(r.Email)
}

type InitiateCashoutRequest struct {
	VendorID string          `json:"vendor_id"`
	Amount   decimal.Decimal `json:"amount"`
	Email    string          `json:"email"`
}

func CashoutRequestFromContext(c echo.Context) (*InitiateCashoutRequest, error) {
	req := &InitiateCashoutRequest{}
	if err := c.Bind(req); err != nil {
		return nil, err
	}
	return req, req.Validate()
}

func (r *InitiateCashoutRequest) Validate() error {
	if strings.TrimSpace(r.VendorID) == "" {
		return errors.New("vendor_id is required")
	}
	if !r.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	return nil
}

func (r *InitiateCashoutRequest) GetVendorID() string { return strings.TrimSpace(r.VendorID) }

func (r *InitiateCashoutRequest) GetAmount() decimal.Decimal { return r.Amount }

func (r *InitiateCashoutRequest) GetRecipientEmail() string { return strings.TrimSpace(r.Email) }

type ListPaymentsRequest struct {
	VendorID string
	Status   string
	Limit    int32
	Offset   int32
}

func ListPaymentsRequestFromContext(c echo.Context) *ListPaymentsRequest {
	return &ListPaymentsRequest{
		VendorID: c.QueryParam("vendor_id"),
		Status:   c.QueryParam("status"),
		Limit:    queryInt32(c, "limit"),
		Offset:   queryInt32(c, "offset"),
	}
}

func (r *ListPaymentsRequest) GetVendorID() string { return strings.TrimSpace(r.VendorID) }

func (r *ListPaymentsRequest) GetStatus() string { return strings.TrimSpace(r.Status) }

func (r *ListPaymentsRequest) GetLimit() int32 { return r.Limit }

func (r *ListPaymentsRequest) GetOffset() int32 { return r.Offset }

type ListPayoutsRequest struct {
	VendorID     string
	PayoutStatus string
	Unsettled    bool
	Limit        int32
	Offset       int32
}

func ListPayoutsRequestFromContext(c echo.Context) *ListPayoutsRequest {
	return &ListPayoutsRequest{
		VendorID:     c.QueryParam("vendor_id"),
		PayoutStatus: c.QueryParam("status"),
		Unsettled:    c.QueryParam("unsettled") == "true",
		Limit:        queryInt32(c, "limit"),
		Offset:       queryInt32(c, "offset"),
	}
}

func (r *ListPayoutsRequest) GetVendorID() string { return strings.TrimSpace(r.VendorID) }

func (r *ListPayoutsRequest) GetPayoutStatus() string { return strings.TrimSpace(r.PayoutStatus) }

func (r *ListPayoutsRequest) GetUnsettled() bool { return r.Unsettled }

func (r *ListPayoutsRequest) GetLimit() int32 { return r.Limit }

func (r *ListPayoutsRequest) GetOffset() int32 { return r.Offset }

type ApprovePayoutRequest struct {
	PayoutID   uint64
	ApprovedBy string `json:"approved_by"`
}

func ApprovePayoutRequestFromContext(c echo.Context) (*ApprovePayoutRequest, error) {
	req := &ApprovePayoutRequest{}
	if err := c.Bind(req); err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return nil, errors.New("payout id must be a positive integer")
	}
	req.PayoutID = id
	return req, nil
}

type ApproveAllPayoutsRequest struct {
	VendorID   string `json:"vendor_id"`
	ApprovedBy string `json:"approved_by"`
}

func ApproveAllPayoutsRequestFromContext(c echo.Context) (*ApproveAllPayoutsRequest, error) {
	req := &ApproveAllPayoutsRequest{}
	if err := c.Bind(req); err != nil {
		return nil, err
	}
	return req, nil
}

func queryInt32(c echo.Context, name string) int32 {
	value := strings.TrimSpace(c.QueryParam(name))
	if value == "" {
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil || n < 0 {
		return 0
	}
	return int32(n)
}
