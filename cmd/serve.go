package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/gridmarket/ms-go-settlement/app/controller"
	"github.com/gridmarket/ms-go-settlement/app/factory"
	"github.com/gridmarket/ms-go-settlement/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the settlement HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := factory.NewModuleLogger("serve")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := buildService(cfg, db)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())

	controller.RegisterRoutes(e,
		controller.NewPaymentController(svc),
		controller.NewPayoutController(svc),
		controller.NewWebhookController(svc),
	)

	address := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	go func() {
		logger.WithField("address", address).Info("starting http server")
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
