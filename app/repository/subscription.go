package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// Subscription is the renewal read model. The core reads the package price
// and writes only the start/end dates.
type Subscription struct {
	ID        string
	VendorID  string
	Price     decimal.Decimal
	StartDate time.Time
	EndDate   time.Time
}

type SubscriptionRepository struct{}

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{}
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, q DBTX, id string) (*Subscription, error) {
	query := `SELECT id, vendor_id, price, start_date, end_date FROM subscriptions WHERE id = ? LIMIT 1`
	sub := &Subscription{}
	err := q.QueryRowContext(ctx, query, id).Scan(&sub.ID, &sub.VendorID, &sub.Price, &sub.StartDate, &sub.EndDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *SubscriptionRepository) UpdateDates(ctx context.Context, q DBTX, id string, startDate, endDate time.Time) error {
	query := `UPDATE subscriptions SET start_date = ?, end_date = ? WHERE id = ?`
	result, err := q.ExecContext(ctx, query, startDate, endDate, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
