package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gridmarket/ms-go-settlement/app/entity"
)

var ErrPayoutNotFound = errors.New("payout not found")

type PayoutFilter struct {
	VendorID     string
	PayoutStatus entity.PayoutStatus
	Unsettled    bool
	Limit        int32
	Offset       int32
}

type PayoutRepository struct{}

func NewPayoutRepository() *PayoutRepository {
	return &PayoutRepository{}
}

const payoutColumns = `id, order_id, vendor_id, payment_reference, payment_status, amount,
	payout_status, is_settled, settled_at, settled_by, created_at, updated_at`

func (r *PayoutRepository) Create(ctx context.Context, q DBTX, payout *entity.Payout) error {
	query := `
		INSERT INTO payouts (
			order_id, vendor_id, payment_reference, payment_status, amount,
			payout_status, is_settled, settled_at, settled_by, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query,
		payout.OrderID,
		payout.VendorID,
		payout.PaymentReference,
		string(payout.PaymentStatus),
		payout.Amount,
		string(payout.PayoutStatus),
		payout.IsSettled,
		nullableTimeValue(payout.SettledAt),
		nullableStringValue(payout.SettledBy),
		payout.CreatedAt,
		payout.UpdatedAt,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payout.ID = uint64(id)
	return nil
}

func (r *PayoutRepository) Update(ctx context.Context, q DBTX, payout *entity.Payout) error {
	query := `
		UPDATE payouts SET
			payment_reference = ?,
			payment_status = ?,
			amount = ?,
			payout_status = ?,
			is_settled = ?,
			settled_at = ?,
			settled_by = ?,
			updated_at = ?
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query,
		payout.PaymentReference,
		string(payout.PaymentStatus),
		payout.Amount,
		string(payout.PayoutStatus),
		payout.IsSettled,
		nullableTimeValue(payout.SettledAt),
		nullableStringValue(payout.SettledBy),
		payout.UpdatedAt,
		payout.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPayoutNotFound
	}
	return nil
}

func (r *PayoutRepository) FindByOrderVendorForUpdate(ctx context.Context, q DBTX, orderID, vendorID string) (*entity.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE order_id = ? AND vendor_id = ? LIMIT 1 FOR UPDATE`
	return r.findOne(ctx, q, query, orderID, vendorID)
}

func (r *PayoutRepository) FindByIDForUpdate(ctx context.Context, q DBTX, id uint64) (*entity.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = ? LIMIT 1 FOR UPDATE`
	return r.findOne(ctx, q, query, id)
}

func (r *PayoutRepository) findOne(ctx context.Context, q DBTX, query string, args ...interface{}) (*entity.Payout, error) {
	payout := &entity.Payout{}
	if err := scanPayout(q.QueryRowContext(ctx, query, args...), payout); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return payout, nil
}

func (r *PayoutRepository) List(ctx context.Context, q DBTX, filter PayoutFilter) ([]*entity.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts`

	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)

	if strings.TrimSpace(filter.VendorID) != "" {
		conditions = append(conditions, "vendor_id = ?")
		args = append(args, filter.VendorID)
	}
	if filter.PayoutStatus != "" {
		conditions = append(conditions, "payout_status = ?")
		args = append(args, string(filter.PayoutStatus))
	}
	if filter.Unsettled {
		conditions = append(conditions, "is_settled = FALSE")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	return r.list(ctx, q, query, args...)
}

// ListPendingUnsettledForUpdate locks every PENDING unsettled payout for the
// bulk-approval transaction. vendorID narrows the set when non-empty.
func (r *PayoutRepository) ListPendingUnsettledForUpdate(ctx context.Context, q DBTX, vendorID string) ([]*entity.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE payout_status = ? AND is_settled = FALSE`
	args := []interface{}{string(entity.PayoutStatusPending)}
	if strings.TrimSpace(vendorID) != "" {
		query += " AND vendor_id = ?"
		args = append(args, vendorID)
	}
	query += " ORDER BY id ASC FOR UPDATE"
	return r.list(ctx, q, query, args...)
}

func (r *PayoutRepository) list(ctx context.Context, q DBTX, query string, args ...interface{}) ([]*entity.Payout, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payouts := make([]*entity.Payout, 0)
	for rows.Next() {
		item := &entity.Payout{}
		if err := scanPayout(rows, item); err != nil {
			return nil, err
		}
		payouts = append(payouts, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *PayoutRepository) FindItem(ctx context.Context, q DBTX, payoutID uint64, orderLineID string) (*entity.PayoutItem, error) {
	query := `
		SELECT id, payout_id, order_line_id, product_id, unit_price, quantity, line_total, created_at
		FROM payout_items
		WHERE payout_id = ? AND order_line_id = ?
		LIMIT 1
	`
	item := &entity.PayoutItem{}
	err := q.QueryRowContext(ctx, query, payoutID, orderLineID).Scan(
		&item.ID,
		&item.PayoutID,
		&item.OrderLineID,
		&item.ProductID,
		&item.UnitPrice,
		&item.Quantity,
		&item.LineTotal,
		&item.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// CreateItem inserts a snapshot line. The (payout_id, order_line_id) unique
// key makes a racing duplicate insert a no-op for the caller.
func (r *PayoutRepository) CreateItem(ctx context.Context, q DBTX, item *entity.PayoutItem) error {
	query := `
		INSERT INTO payout_items (payout_id, order_line_id, product_id, unit_price, quantity, line_total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query,
		item.PayoutID,
		item.OrderLineID,
		item.ProductID,
		item.UnitPrice,
		item.Quantity,
		item.LineTotal,
		item.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return nil
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = uint64(id)
	return nil
}

func (r *PayoutRepository) ListItems(ctx context.Context, q DBTX, payoutID uint64) ([]*entity.PayoutItem, error) {
	query := `
		SELECT id, payout_id, order_line_id, product_id, unit_price, quantity, line_total, created_at
		FROM payout_items
		WHERE payout_id = ?
		ORDER BY id ASC
	`
	rows, err := q.QueryContext(ctx, query, payoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.PayoutItem, 0)
	for rows.Next() {
		item := &entity.PayoutItem{}
		if err := rows.Scan(
			&item.ID,
			&item.PayoutID,
			&item.OrderLineID,
			&item.ProductID,
			&item.UnitPrice,
			&item.Quantity,
			&item.LineTotal,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanPayout(scan rowScanner, payout *entity.Payout) error {
	var paymentStatus, payoutStatus string
	var settledAt sql.NullTime
	var settledBy sql.NullString

	err := scan.Scan(
		&payout.ID,
		&payout.OrderID,
		&payout.VendorID,
		&payout.PaymentReference,
		&paymentStatus,
		&payout.Amount,
		&payoutStatus,
		&payout.IsSettled,
		&settledAt,
		&settledBy,
		&payout.CreatedAt,
		&payout.UpdatedAt,
	)
	if err != nil {
		return err
	}

	payout.PaymentStatus = entity.PaymentStatus(paymentStatus)
	payout.PayoutStatus = entity.PayoutStatus(payoutStatus)
	payout.SettledAt = timePtrFromNull(settledAt)
	payout.SettledBy = stringPtrFromNull(settledBy)
	return nil
}
