// Package wallet creates and opens keystore containers for registered users.
package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"
	"github.com/AlexZinkM/eth-wallet/internal/crypto"
	"github.com/AlexZinkM/eth-wallet/internal/model"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Unlocked is a decrypted key held in memory only.
type Unlocked struct {
	name    string
	address common.Address
	key     *ecdsa.PrivateKey
}

// NewUnlocked wraps key. name is the keystore file it came from, if any.
func NewUnlocked(name string, key *ecdsa.PrivateKey) *Unlocked {
	return &Unlocked{
		name:    name,
		address: ethcrypto.PubkeyToAddress(key.PublicKey),
		key:     key,
	}
}

// Name returns the keystore file name.
func (u *Unlocked) Name() string { return u.name }

// Address returns the wallet address.
func (u *Unlocked) Address() common.Address { return u.address }

// PrivateKey returns the signing key.
func (u *Unlocked) PrivateKey() *ecdsa.PrivateKey { return u.key }

// Attacher is the part of the registry the store writes to.
type Attacher interface {
	AttachWallet(username string, ref model.WalletRef) error
	FindWallet(username, name string) (model.WalletRef, bool)
}

// Store manages keystore files in one directory.
type Store struct {
	dir      string
	registry Attacher
	scrypt   crypto.ScryptParams
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithScrypt overrides the key derivation cost.
func WithScrypt(params crypto.ScryptParams) Option {
	return func(s *Store) { s.scrypt = params }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns a Store writing keystores to dir and attaching them
// through registry.
func NewStore(dir string, registry Attacher, opts ...Option) *Store {
	s := &Store{
		dir:      dir,
		registry: registry,
		scrypt:   crypto.ScryptParams{N: crypto.StandardScryptN, P: crypto.StandardScryptP},
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the keystore directory.
func (s *Store) Dir() string { return s.dir }

// CreateWallet generates a key, writes its keystore durably and then
// attaches it to username. If attaching fails the keystore is removed again;
// when that removal fails too the orphaned path is logged and included in the
// returned error.
// password must be []byte for security (caller should zero it after use)
func (s *Store) CreateWallet(username string, password []byte) (model.WalletRef, error) {
	const op = "create wallet"

	if len(password) == 0 {
		return model.WalletRef{}, apperr.Newf(apperr.KeystoreCreation, op, "password cannot be empty")
	}

	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return model.WalletRef{}, apperr.New(apperr.KeystoreCreation, op, fmt.Errorf("failed to generate key: %w", err))
	}

	createdAt := s.now().UTC()
	name, err := crypto.WriteKeystore(s.dir, key, password, s.scrypt, createdAt)
	if err != nil {
		return model.WalletRef{}, apperr.New(apperr.KeystoreCreation, op, err)
	}

	ref := model.WalletRef{
		Name:      name,
		Address:   ethcrypto.PubkeyToAddress(key.PublicKey).Hex(),
		CreatedAt: createdAt,
	}

	if err := s.registry.AttachWallet(username, ref); err != nil {
		path := filepath.Join(s.dir, name)
		if rmErr := os.Remove(path); rmErr != nil {
			s.logger.Error("orphaned keystore left on disk",
				zap.String("username", username),
				zap.String("path", path),
				zap.Error(rmErr))
			return model.WalletRef{}, apperr.New(apperr.KeystoreCreation, op,
				fmt.Errorf("%w (orphaned keystore %s)", err, path))
		}
		return model.WalletRef{}, apperr.Wrap(apperr.KeystoreCreation, op, err)
	}

	s.logger.Info("wallet created",
		zap.String("username", username),
		zap.String("wallet", name),
		zap.String("address", ref.Address))
	return ref, nil
}

// OpenWallet decrypts username's keystore called name.
// password must be []byte for security (caller should zero it after use)
func (s *Store) OpenWallet(username, name string, password []byte) (*Unlocked, error) {
	const op = "open wallet"

	ref, ok := s.registry.FindWallet(username, name)
	if !ok {
		return nil, apperr.Newf(apperr.KeystoreNotFound, op, "no wallet %q for this user", name)
	}
	// Names come from the registry, but never let one escape the keystore dir
	if strings.ContainsAny(ref.Name, `/\`) || ref.Name == ".." {
		return nil, apperr.Newf(apperr.KeystoreCorrupt, op, "invalid wallet name %q", ref.Name)
	}

	key, addr, err := crypto.ReadKeystore(filepath.Join(s.dir, ref.Name), password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KeystoreCorrupt, op, err)
	}
	if ref.Address != "" && !strings.EqualFold(ref.Address, addr.Hex()) {
		return nil, apperr.Newf(apperr.KeystoreCorrupt, op, "keystore address %s does not match %s", addr.Hex(), ref.Address)
	}

	s.logger.Debug("wallet opened", zap.String("username", username), zap.String("wallet", name))
	return &Unlocked{name: ref.Name, address: addr, key: key}, nil
}
