package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexbotov/gpay/internal/config"
	"github.com/alexbotov/gpay/internal/domain"
	"github.com/alexbotov/gpay/internal/logging"
	"github.com/alexbotov/gpay/internal/rng"
	"github.com/alexbotov/gpay/internal/sandbox"
	"github.com/alexbotov/gpay/internal/wallet"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const usage = `usage: gpay <command> [flags]

commands:
  sandbox                  run the local GPay server (default)
  balance                  show the wallet balance
  create-payment-request   -amount A [-reference R] [-description D]
  payment-status           -id REQUEST_ID
  send-money               -amount A -to WALLET_ID [-description D] [-reference R]
  statement                [-date YYYY-MM-DD]
  check-wallet             -id WALLET_ID
  outstanding              list unsettled transactions
  journal                  [-operation OP] [-outcome OUTCOME] [-limit N]
                           [-summary [-since DURATION]]
`

func main() {
	os.Exit(run())
}

// run executes one command and returns the process exit code, so deferred
// cleanup happens before the process exits
func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	command, args := "sandbox", []string(nil)
	if len(os.Args) > 1 {
		command, args = os.Args[1], os.Args[2:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "sandbox":
		err = runSandbox(ctx, cfg, logger)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return 0
	default:
		err = runClientCommand(ctx, cfg, logger, command, args)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		return 1
	}
	return 0
}

func runSandbox(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.ValidateSandbox(); err != nil {
		return err
	}

	opening, err := domain.ParseMoney(cfg.Sandbox.OpeningBalance)
	if err != nil {
		return errors.Wrap(err, "SANDBOX_OPENING_BALANCE")
	}
	fee, err := domain.ParseMoney(cfg.Sandbox.SenderFee)
	if err != nil {
		return errors.Wrap(err, "SANDBOX_SENDER_FEE")
	}

	ledger := wallet.New(wallet.Config{
		Username: cfg.Sandbox.Username,
		Wallet: domain.Wallet{
			GatewayID:       cfg.Sandbox.WalletID,
			Name:            cfg.Sandbox.WalletName,
			AccountName:     cfg.Sandbox.AccountName,
			CanReceiveMoney: true,
		},
		OpeningBalance: opening,
		SenderFee:      fee,
	})

	rngSvc := rng.New()
	if health, err := rngSvc.HealthCheck(); err != nil || !health.Healthy {
		return errors.New("entropy source failed its health check")
	}

	opts := []sandbox.Option{sandbox.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, sandbox.WithMetrics(reg))
	}
	srv := sandbox.New(cfg.GPay.Credentials(), ledger, rngSvc, opts...)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Sandbox.Port,
		Handler:      srv.SetupRouter(),
		ReadTimeout:  cfg.Sandbox.ReadTimeout,
		WriteTimeout: cfg.Sandbox.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("GPay sandbox starting",
			zap.String("addr", httpServer.Addr),
			zap.String("wallet", cfg.Sandbox.WalletID),
			zap.String("balance", opening.String()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
