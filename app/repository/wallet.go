package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gridmarket/ms-go-settlement/app/entity"
)

var ErrWalletNotFound = errors.New("wallet not found")

type WalletRepository struct{}

func NewWalletRepository() *WalletRepository {
	return &WalletRepository{}
}

func (r *WalletRepository) Create(ctx context.Context, q DBTX, wallet *entity.Wallet) error {
	query := `
		INSERT INTO wallets (vendor_id, balance, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query, wallet.VendorID, wallet.Balance, wallet.CreatedAt, wallet.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	wallet.ID = uint64(id)
	return nil
}

func (r *WalletRepository) FindByVendor(ctx context.Context, q DBTX, vendorID string) (*entity.Wallet, error) {
	query := `SELECT id, vendor_id, balance, created_at, updated_at FROM wallets WHERE vendor_id = ? LIMIT 1`
	return r.findOne(ctx, q, query, vendorID)
}

// FindByVendorForUpdate row-locks the wallet so the balance update and the
// payment guard-flag update commit atomically.
func (r *WalletRepository) FindByVendorForUpdate(ctx context.Context, q DBTX, vendorID string) (*entity.Wallet, error) {
	query := `SELECT id, vendor_id, balance, created_at, updated_at FROM wallets WHERE vendor_id = ? LIMIT 1 FOR UPDATE`
	return r.findOne(ctx, q, query, vendorID)
}

func (r *WalletRepository) findOne(ctx context.Context, q DBTX, query string, args ...interface{}) (*entity.Wallet, error) {
	wallet := &entity.Wallet{}
	err := q.QueryRowContext(ctx, query, args...).Scan(
		&wallet.ID,
		&wallet.VendorID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

func (r *WalletRepository) UpdateBalance(ctx context.Context, q DBTX, wallet *entity.Wallet) error {
	query := `UPDATE wallets SET balance = ?, updated_at = ? WHERE id = ?`
	result, err := q.ExecContext(ctx, query, wallet.Balance, wallet.UpdatedAt, wallet.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWalletNotFound
	}
	return nil
}
