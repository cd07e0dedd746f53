package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// OrderLine is the read model the settlement core consumes from the order
// collaborator: enough to group by vendor and snapshot prices.
type OrderLine struct {
	ID        string
	OrderID   string
	VendorID  string
	ProductID string
	UnitPrice decimal.Decimal
	Quantity  int32
}

func (l OrderLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity))
}

type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) ListLines(ctx context.Context, q DBTX, orderID string) ([]OrderLine, error) {
	query := `
		SELECT id, order_id, vendor_id, product_id, unit_price, quantity
		FROM order_lines
		WHERE order_id = ?
		ORDER BY id ASC
	`
	rows, err := q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]OrderLine, 0)
	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.VendorID,
			&line.ProductID,
			&line.UnitPrice,
			&line.Quantity,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
