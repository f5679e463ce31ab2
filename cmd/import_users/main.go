// One-off: migrate a legacy users.xml into the registry. Plaintext passwords
// are bcrypt-hashed, per-wallet passwords are dropped and users that already
// exist are left untouched.
// Usage: go run ./cmd/import_users --in users.xml [--dry-run]
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlexZinkM/eth-wallet/internal/config"
	"github.com/AlexZinkM/eth-wallet/internal/registry"

	"github.com/spf13/cobra"
)

type options struct {
	in     string
	dryRun bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "import_users",
		Short:         "migrate a legacy users.xml into the registry",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(); err != nil {
				return err
			}
			reg, err := registry.Open(config.GetRegistryBackend(), config.GetRegistryPath())
			if err != nil {
				return fmt.Errorf("failed to open registry: %w", err)
			}
			defer reg.Close()

			f, err := os.Open(opts.in)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", opts.in, err)
			}
			defer f.Close()

			return importUsers(cmd.OutOrStdout(), reg, f, config.GetKeystoreDir(), opts.dryRun)
		},
	}
	cmd.Flags().StringVar(&opts.in, "in", "users.xml", "legacy users.xml to import")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "report what would be imported without writing")
	return cmd
}

func importUsers(out io.Writer, reg *registry.Registry, in io.Reader, keystoreDir string, dryRun bool) error {
	records, legacy, err := registry.ImportXML(in, registry.LegacyOptions{KeystoreDir: keystoreDir})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "parsed %d users with %d wallets\n", legacy.Users, legacy.Wallets)
	if legacy.DroppedWalletPasswords > 0 {
		fmt.Fprintf(out, "dropped %d stored wallet passwords\n", legacy.DroppedWalletPasswords)
	}
	printList(out, "skipped invalid users", legacy.SkippedUsers)
	printList(out, "skipped wallets without a readable keystore", legacy.SkippedWallets)

	if dryRun {
		for _, rec := range records {
			state := "new"
			if reg.Exists(rec.Username) {
				state = "exists"
			}
			fmt.Fprintf(out, "  %s (%d wallets): %s\n", rec.Username, len(rec.Wallets), state)
		}
		return nil
	}

	report, err := reg.Import(records)
	printList(out, "imported", report.Imported)
	printList(out, "already registered, left unchanged", report.Skipped)
	return err
}

func printList(out io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "%s (%d): %s\n", label, len(items), strings.Join(items, ", "))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
