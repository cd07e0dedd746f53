package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gridmarket/ms-go-settlement/app/factory"
	"github.com/gridmarket/ms-go-settlement/app/service"
	"github.com/gridmarket/ms-go-settlement/config"
)

var (
	replayLimit       int32
	replayMaxAttempts int32
	replayWorker      bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay queued webhook events against the gateway",
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().Int32Var(&replayLimit, "limit", 200, "maximum events per pass")
	replayCmd.Flags().Int32Var(&replayMaxAttempts, "max-attempts", 10, "attempt ceiling per event")
	replayCmd.Flags().BoolVar(&replayWorker, "worker", false, "keep running on the configured interval")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	logger := factory.NewModuleLogger("replay")

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

	if !replayWorker {
		return replayPass(context.Background(), svc, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithField("interval", cfg.Jobs.ReplayInterval.String()).Info("replay worker started")
	ticker := time.NewTicker(cfg.Jobs.ReplayInterval)
	defer ticker.Stop()

	for {
		if err := replayPass(ctx, svc, logger); err != nil && ctx.Err() == nil {
			logger.WithError(err).Error("replay pass failed")
		}
		select {
		case <-ctx.Done():
			logger.Info("replay worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func replayPass(ctx context.Context, svc *service.SettlementService, logger *logrus.Entry) error {
	report, err := svc.Replay(ctx, replayLimit, replayMaxAttempts)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"scanned":                 report.Scanned,
		"processed":               report.Processed,
		"skipped_missing_payment": report.SkippedMissingPayment,
		"failed":                  report.Failed,
	}).Info("replay pass complete")
	return nil
}
