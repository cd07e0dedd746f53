package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// Booking is the service-booking read model: the core resolves only the
// vendor and the booked price from it.
type Booking struct {
	ID       string
	VendorID string
	Price    decimal.Decimal
}

type BookingRepository struct{}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

func (r *BookingRepository) FindByID(ctx context.Context, q DBTX, id string) (*Booking, error) {
	query := `SELECT id, vendor_id, price FROM bookings WHERE id = ? LIMIT 1`
	booking := &Booking{}
	err := q.QueryRowContext(ctx, query, id).Scan(&booking.ID, &booking.VendorID, &booking.Price)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}
