package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gridmarket/ms-go-settlement/app/entity"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentAlreadyExists = errors.New("payment already exists")
)

type PaymentFilter struct {
	VendorID  string
	HasStatus bool
	Status    entity.PaymentStatus
	Limit     int32
	Offset    int32
}

type PaymentRepository struct{}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{}
}

const paymentColumns = `id, reference, amount, direction, target_kind, target_id, vendor_id,
	status, status_code, wallet_effect_applied, subscription_effect_applied,
	customer_ref, created_at, updated_at`

func (r *PaymentRepository) Create(ctx context.Context, q DBTX, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			reference, amount, direction, target_kind, target_id, vendor_id,
			status, status_code, wallet_effect_applied, subscription_effect_applied,
			customer_ref, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := q.ExecContext(ctx, query,
		payment.Reference,
		payment.Amount,
		string(payment.Direction),
		string(payment.TargetKind),
		nullableStringValue(payment.TargetID),
		nullableStringValue(payment.VendorID),
		string(payment.Status),
		payment.StatusCode,
		payment.WalletEffectApplied,
		payment.SubscriptionEffectApplied,
		nullableStringValue(payment.CustomerRef),
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrPaymentAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = uint64(id)
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, q DBTX, payment *entity.Payment) error {
	query := `
		UPDATE payments SET
			status = ?,
			status_code = ?,
			wallet_effect_applied = ?,
			subscription_effect_applied = ?,
			vendor_id = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := q.ExecContext(ctx, query,
		string(payment.Status),
		payment.StatusCode,
		payment.WalletEffectApplied,
		payment.SubscriptionEffectApplied,
		nullableStringValue(payment.VendorID),
		payment.UpdatedAt,
		payment.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) FindByReference(ctx context.Context, q DBTX, reference string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reference = ? LIMIT 1`
	return r.findOne(ctx, q, query, reference)
}

// FindByReferenceForUpdate row-locks the payment until the surrounding
// transaction commits. Callers must hold a transaction.
func (r *PaymentRepository) FindByReferenceForUpdate(ctx context.Context, q DBTX, reference string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reference = ? LIMIT 1 FOR UPDATE`
	return r.findOne(ctx, q, query, reference)
}

func (r *PaymentRepository) findOne(ctx context.Context, q DBTX, query string, args ...interface{}) (*entity.Payment, error) {
	payment := &entity.Payment{}
	if err := scanPayment(q.QueryRowContext(ctx, query, args...), payment); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *PaymentRepository) List(ctx context.Context, q DBTX, filter PaymentFilter) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments`

	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)

	if strings.TrimSpace(filter.VendorID) != "" {
		conditions = append(conditions, "vendor_id = ?")
		args = append(args, filter.VendorID)
	}
	if filter.HasStatus {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*entity.Payment, 0)
	for rows.Next() {
		item := &entity.Payment{}
		if err := scanPayment(rows, item); err != nil {
			return nil, err
		}
		payments = append(payments, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func scanPayment(scan rowScanner, payment *entity.Payment) error {
	var direction, targetKind, status string
	var targetID sql.NullString
	var vendorID sql.NullString
	var customerRef sql.NullString

	err := scan.Scan(
		&payment.ID,
		&payment.Reference,
		&payment.Amount,
		&direction,
		&targetKind,
		&targetID,
		&vendorID,
		&status,
		&payment.StatusCode,
		&payment.WalletEffectApplied,
		&payment.SubscriptionEffectApplied,
		&customerRef,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return err
	}

	payment.Direction = entity.PaymentDirection(direction)
	payment.TargetKind = entity.TargetKind(targetKind)
	payment.Status = entity.PaymentStatus(status)
	payment.TargetID = stringPtrFromNull(targetID)
	payment.VendorID = stringPtrFromNull(vendorID)
	payment.CustomerRef = stringPtrFromNull(customerRef)
	return nil
}
