package commands

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"
	"github.com/AlexZinkM/eth-wallet/internal/wallet"

	"github.com/spf13/cobra"
)

// Commands returns a fresh command tree bound to the shell. A new tree per
// line keeps flag state from leaking between commands.
func (s *Shell) Commands() *cobra.Command {
	root := &cobra.Command{
		Use:           "wallet",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(
		s.signupCmd(),
		s.loginCmd(),
		s.logoutCmd(),
		s.createCmd(),
		s.listCmd(),
		s.openCmd(),
		s.addressCmd(),
		s.signCmd(),
		s.balanceCmd(),
		s.transferCmd(),
		s.receiptCmd(),
	)
	return root
}

func (s *Shell) signupCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "signup",
		Short:   "register a new user",
		Example: "signup [username]",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := s.newPassword("Password: ")
			if err != nil {
				return err
			}
			defer clear(password)

			if err := s.manager.Signup(args[0], password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s registered\n", args[0])
			return nil
		},
	}
}

func (s *Shell) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "login",
		Short:   "log in as a user",
		Example: "login [username]",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := s.password("Password: ")
			if err != nil {
				return err
			}
			defer clear(password)

			token, sess, err := s.manager.Login(args[0], password)
			if err != nil {
				return err
			}
			s.setSession(token, sess)
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", sess.Username())
			return nil
		},
	}
}

func (s *Shell) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "end the session and forget the unlocked wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := s.clearSession()
			if token == "" {
				return errNotLoggedIn
			}
			if err := s.manager.Logout(token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func (s *Shell) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "create a new wallet protected by a password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := s.current()
			if err != nil {
				return err
			}
			password, err := s.newPassword("Wallet password: ")
			if err != nil {
				return err
			}
			defer clear(password)

			ref, err := sess.CreateWallet(password)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wallet created\n  name:    %s\n  address: %s\n", ref.Name, ref.Address)
			fmt.Fprintf(out, "open it with: open %s\n", ref.Name)
			return nil
		},
	}
}

func (s *Shell) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list your wallets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := s.current()
			if err != nil {
				return err
			}
			refs := sess.ListWallets()
			if len(refs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no wallets yet, run create")
				return nil
			}
			active, _ := sess.ActiveAddress()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\tNAME\tADDRESS\tCREATED")
			for _, ref := range refs {
				mark := ""
				if strings.EqualFold(ref.Address, active.Hex()) {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, ref.Name, ref.Address, ref.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func (s *Shell) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "open",
		Short:   "unlock a wallet for signing and transfers",
		Example: "open [wallet name]",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := s.current()
			if err != nil {
				return err
			}
			password, err := s.password("Wallet password: ")
			if err != nil {
				return err
			}
			defer clear(password)

			addr, err := sess.OpenWallet(args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wallet %s unlocked\n", addr.Hex())
			return nil
		},
	}
}

func (s *Shell) addressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "show the unlocked wallet's address",
		Args:  cobra.NoArgs,
	}
	qr := cmd.Flags().Bool("qr", false, "also print a base64 PNG QR code")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		sess, err := s.current()
		if err != nil {
			return err
		}
		addr, ok := sess.ActiveAddress()
		if !ok {
			return apperr.New(apperr.NoWalletLoaded, "address", nil)
		}
		fmt.Fprintln(cmd.OutOrStdout(), addr.Hex())
		if *qr {
			png, err := wallet.AddressQR(addr)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), png)
		}
		return nil
	}
	return cmd
}

func (s *Shell) signCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "sign",
		Short:   "sign a message with the unlocked wallet",
		Example: "sign [message...]",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := s.current()
			if err != nil {
				return err
			}
			sig, addr, err := sess.Sign([]byte(strings.Join(args, " ")))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signer:    %s\nsignature: %s\n", addr.Hex(), sig.Hex())
			return nil
		},
	}
}

func (s *Shell) balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "show the unlocked wallet's balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := s.current()
			if err != nil {
				return err
			}
			bal, err := sess.Balance(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s ETH (%s wei)\n", bal.Ether, bal.Wei.String())
			return nil
		},
	}
}

func (s *Shell) transferCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "transfer",
		Short:   "send ether and wait until it is mined (Ctrl-C stops waiting)",
		Example: "transfer [to address] [amount in ether]",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := s.current()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "waiting for the transaction to be mined...")
			receipt, err := sess.Transfer(cmd.Context(), args[0], args[1])
			if receipt != nil {
				printReceipt(cmd, receipt.TxHash.Hex(), receipt.BlockNumber, receipt.GasUsed, receipt.StatusString())
			}
			return err
		},
	}
}

func (s *Shell) receiptCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "receipt",
		Short:   "look up a transaction receipt",
		Example: "receipt [tx hash]",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := s.current()
			if err != nil {
				return err
			}
			receipt, err := sess.Receipt(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printReceipt(cmd, receipt.TxHash.Hex(), receipt.BlockNumber, receipt.GasUsed, receipt.StatusString())
			return nil
		},
	}
}

func printReceipt(cmd *cobra.Command, hash string, block, gas uint64, status string) {
	fmt.Fprintf(cmd.OutOrStdout(), "tx:     %s\nblock:  %d\ngas:    %d\nstatus: %s\n", hash, block, gas, status)
}

var errPasswordMismatch = errors.New("passwords do not match")

// newPassword asks twice and returns the password only when both match.
func (s *Shell) newPassword(prompt string) ([]byte, error) {
	first, err := s.password(prompt)
	if err != nil {
		return nil, err
	}
	second, err := s.password("Repeat " + strings.ToLower(prompt[:1]) + prompt[1:])
	if err != nil {
		clear(first)
		return nil, err
	}
	defer clear(second)
	if !bytes.Equal(first, second) {
		clear(first)
		return nil, errPasswordMismatch
	}
	return first, nil
}
