package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/gridmarket/ms-go-settlement/app/provider"
	"github.com/gridmarket/ms-go-settlement/app/repository"
	"github.com/gridmarket/ms-go-settlement/app/service"
	"github.com/gridmarket/ms-go-settlement/config"
)

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

func buildService(cfg *config.Config, db *sql.DB) *service.SettlementService {
	gateway := provider.NewPaystackGateway(provider.PaystackConfig{
		SecretKey:     cfg.Paystack.SecretKey,
		WebhookSecret: cfg.Paystack.WebhookSecret,
		BaseURL:       cfg.Paystack.BaseURL,
		HTTPTimeout:   cfg.Paystack.HTTPTimeout,
	})

	return service.NewSettlementService(
		repository.NewTxRunner(db),
		repository.NewPaymentRepository(),
		repository.NewWalletRepository(),
		repository.NewPayoutRepository(),
		repository.NewWebhookEventRepository(),
		repository.NewPaymentEventRepository(),
		repository.NewOrderRepository(),
		repository.NewBookingRepository(),
		repository.NewSubscriptionRepository(),
		gateway,
		cfg.Settlement,
	)
}
