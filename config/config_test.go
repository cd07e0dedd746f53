package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/settlement?parseTime=true")
	setEnv(t, "APP_SERVICE_NAME", "settlement-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "MYSQL_MAX_IDLE_CONNS", "8")
	setEnv(t, "MYSQL_CONN_MAX_LIFETIME_MINUTES", "40")
	setEnv(t, "PAYSTACK_SECRET_KEY", "sk_test_abc")
	setEnv(t, "PAYSTACK_HTTP_TIMEOUT_SECONDS", "15")
	setEnv(t, "SETTLEMENT_CURRENCY", "NGN")
	setEnv(t, "SETTLEMENT_REPLAY_LIMIT", "75")
	setEnv(t, "SETTLEMENT_REPLAY_MAX_ATTEMPTS", "4")
	setEnv(t, "SETTLEMENT_REPLAY_INTERVAL_MINUTES", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "settlement-test" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Fatalf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 || cfg.MySQL.MaxIdleConns != 8 {
		t.Fatalf("unexpected mysql pool config: %+v", cfg.MySQL)
	}
	if cfg.MySQL.ConnMaxLifetime != 40*time.Minute {
		t.Fatalf("unexpected mysql lifetime: %v", cfg.MySQL.ConnMaxLifetime)
	}
	if cfg.Paystack.SecretKey != "sk_test_abc" {
		t.Fatalf("unexpected paystack secret: %s", cfg.Paystack.SecretKey)
	}
	if cfg.Paystack.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected paystack timeout: %v", cfg.Paystack.HTTPTimeout)
	}
	if cfg.Settlement.Currency != "NGN" {
		t.Fatalf("unexpected currency: %s", cfg.Settlement.Currency)
	}
	if cfg.Settlement.ReplayLimit != 75 || cfg.Settlement.ReplayMaxAttempts != 4 {
		t.Fatalf("unexpected replay config: %+v", cfg.Settlement)
	}
	if cfg.Jobs.ReplayInterval != 7*time.Minute {
		t.Fatalf("unexpected replay interval: %v", cfg.Jobs.ReplayInterval)
	}
}
