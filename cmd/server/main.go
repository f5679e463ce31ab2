// HTTP API for the local wallet.
// Usage: go run ./cmd/server
//
// @title                       eth-wallet API
// @version                     1.0
// @description                 Local Ethereum wallet: users, keystores, message signing and transfers.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/AlexZinkM/eth-wallet/docs"
	"github.com/AlexZinkM/eth-wallet/internal/api"
	"github.com/AlexZinkM/eth-wallet/internal/config"
	"github.com/AlexZinkM/eth-wallet/internal/ledger"
	"github.com/AlexZinkM/eth-wallet/internal/logger"
	"github.com/AlexZinkM/eth-wallet/internal/registry"
	"github.com/AlexZinkM/eth-wallet/internal/session"
	"github.com/AlexZinkM/eth-wallet/internal/wallet"

	"go.uber.org/zap"
)

func main() {
	if err := config.Init(); err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	log, err := logger.New(config.GetLogLevel())
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := registry.Open(config.GetRegistryBackend(), config.GetRegistryPath(), registry.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer reg.Close()
	log.Info("registry opened",
		zap.String("backend", config.GetRegistryBackend()),
		zap.String("path", config.GetRegistryPath()))

	store := wallet.NewStore(config.GetKeystoreDir(), reg,
		wallet.WithScrypt(config.GetKeystoreScrypt()),
		wallet.WithLogger(log))

	client, err := ledger.Dial(ctx, config.GetEthRPCURL(),
		ledger.WithGasLimit(config.GetTxGasLimit()),
		ledger.WithReceiptPolling(config.GetReceiptPollInterval(), config.GetReceiptTimeout()),
		ledger.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to connect to ledger: %w", err)
	}
	defer client.Close()

	manager, err := session.NewManager(reg, store, client,
		session.WithSecret(config.GetSessionSecretBytes()),
		session.WithTTL(config.GetSessionTTL()),
		session.WithLogger(log))
	if err != nil {
		return err
	}
	go sweepSessions(ctx, manager, log)

	srv := &http.Server{
		Addr:        ":" + config.GetPort(),
		Handler:     api.SetupRouter(manager, log),
		ReadTimeout: 15 * time.Second,
		// transfers hold the request until the receipt arrives
		WriteTimeout: config.GetReceiptTimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", config.GetPort()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func sweepSessions(ctx context.Context, manager *session.Manager, log *zap.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := manager.Sweep(); n > 0 {
				log.Debug("expired sessions removed", zap.Int("count", n))
			}
		}
	}
}
