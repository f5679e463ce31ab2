// Package session ties a logged-in user to the wallet they unlocked.
package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"
	"github.com/AlexZinkM/eth-wallet/internal/ledger"
	"github.com/AlexZinkM/eth-wallet/internal/model"
	"github.com/AlexZinkM/eth-wallet/internal/signing"
	"github.com/AlexZinkM/eth-wallet/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
)

// Ledger is the part of the ledger client a session uses.
type Ledger interface {
	GetBalance(ctx context.Context, w *wallet.Unlocked) (ledger.Balance, error)
	SubmitTransfer(ctx context.Context, w *wallet.Unlocked, toAddress, amountEther string) (*ledger.Receipt, error)
	Receipt(ctx context.Context, txHash string) (*ledger.Receipt, error)
}

// Wallets is the part of the wallet store a session uses.
type Wallets interface {
	CreateWallet(username string, password []byte) (model.WalletRef, error)
	OpenWallet(username, name string, password []byte) (*wallet.Unlocked, error)
}

// Directory lists a user's wallets.
type Directory interface {
	ListWallets(username string) []model.WalletRef
}

// Session is one logged-in user. At most one wallet is unlocked at a time;
// opening another replaces it atomically.
type Session struct {
	id       string
	username string
	wallets  Wallets
	dir      Directory
	ledger   Ledger

	active   atomic.Pointer[wallet.Unlocked]
	lastSeen atomic.Int64 // unix nanos
}

func newSession(id, username string, wallets Wallets, dir Directory, l Ledger, now time.Time) *Session {
	s := &Session{id: id, username: username, wallets: wallets, dir: dir, ledger: l}
	s.touch(now)
	return s
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Username returns the owner of the session.
func (s *Session) Username() string { return s.username }

// ActiveAddress returns the address of the unlocked wallet.
func (s *Session) ActiveAddress() (common.Address, bool) {
	w := s.active.Load()
	if w == nil {
		return common.Address{}, false
	}
	return w.Address(), true
}

// ActiveWallet returns the unlocked wallet or nil.
func (s *Session) ActiveWallet() *wallet.Unlocked {
	return s.active.Load()
}

// ListWallets returns the user's wallet refs.
func (s *Session) ListWallets() []model.WalletRef {
	return s.dir.ListWallets(s.username)
}

// CreateWallet creates a wallet for the user. It does not unlock it.
// password must be []byte for security (caller should zero it after use)
func (s *Session) CreateWallet(password []byte) (model.WalletRef, error) {
	return s.wallets.CreateWallet(s.username, password)
}

// OpenWallet unlocks the named wallet and makes it active. On failure the
// previously active wallet stays active.
// password must be []byte for security (caller should zero it after use)
func (s *Session) OpenWallet(name string, password []byte) (common.Address, error) {
	w, err := s.wallets.OpenWallet(s.username, name, password)
	if err != nil {
		return common.Address{}, err
	}
	s.active.Store(w)
	return w.Address(), nil
}

// Sign signs message with the active wallet and returns the signer's
// address with the signature.
func (s *Session) Sign(message []byte) (signing.Signature, common.Address, error) {
	w := s.active.Load()
	sig, err := signing.Sign(w, message)
	if err != nil {
		return signing.Signature{}, common.Address{}, err
	}
	return sig, w.Address(), nil
}

// Balance returns the active wallet's balance.
func (s *Session) Balance(ctx context.Context) (ledger.Balance, error) {
	return s.ledger.GetBalance(ctx, s.active.Load())
}

// Transfer sends amountEther from the active wallet and waits for the
// receipt.
func (s *Session) Transfer(ctx context.Context, toAddress, amountEther string) (*ledger.Receipt, error) {
	return s.ledger.SubmitTransfer(ctx, s.active.Load(), toAddress, amountEther)
}

// Receipt looks up a transaction receipt. Like Transfer it requires an
// unlocked wallet.
func (s *Session) Receipt(ctx context.Context, txHash string) (*ledger.Receipt, error) {
	if s.active.Load() == nil {
		return nil, apperr.New(apperr.NoWalletLoaded, "get receipt", nil)
	}
	return s.ledger.Receipt(ctx, txHash)
}
