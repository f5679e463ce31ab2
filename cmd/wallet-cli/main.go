// Interactive wallet shell.
// Usage: go run ./cmd/wallet-cli
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/AlexZinkM/eth-wallet/cmd/wallet-cli/commands"
	"github.com/AlexZinkM/eth-wallet/internal/config"
	"github.com/AlexZinkM/eth-wallet/internal/ledger"
	"github.com/AlexZinkM/eth-wallet/internal/logger"
	"github.com/AlexZinkM/eth-wallet/internal/registry"
	"github.com/AlexZinkM/eth-wallet/internal/session"
	"github.com/AlexZinkM/eth-wallet/internal/wallet"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:          "wallet-cli",
	Short:        "wallet-cli is a local Ethereum wallet shell",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func run(cmd *cobra.Command, args []string) error {
	if err := config.Init(); err != nil {
		return err
	}
	log, err := logger.NewDevelopment(config.GetLogLevel())
	if err != nil {
		return err
	}
	defer log.Sync()

	reg, err := registry.Open(config.GetRegistryBackend(), config.GetRegistryPath(), registry.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer reg.Close()

	store := wallet.NewStore(config.GetKeystoreDir(), reg,
		wallet.WithScrypt(config.GetKeystoreScrypt()),
		wallet.WithLogger(log))

	client, err := ledger.Dial(cmd.Context(), config.GetEthRPCURL(),
		ledger.WithGasLimit(config.GetTxGasLimit()),
		ledger.WithReceiptPolling(config.GetReceiptPollInterval(), config.GetReceiptTimeout()),
		ledger.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", config.GetEthRPCURL(), err)
	}
	defer client.Close()

	manager, err := session.NewManager(reg, store, client,
		session.WithSecret(config.GetSessionSecretBytes()),
		session.WithTTL(config.GetSessionTTL()),
		session.WithLogger(log))
	if err != nil {
		return err
	}

	shell := commands.NewShell(manager, config.PromptForPassword, os.Stdout)
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		AutoComplete:    shell.Completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	log.Debug("shell started", zap.String("rpc", config.GetEthRPCURL()))
	shell.Run(rl, func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), os.Interrupt)
	})
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
