package commands

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"
	"github.com/AlexZinkM/eth-wallet/internal/crypto"
	"github.com/AlexZinkM/eth-wallet/internal/ledger"
	"github.com/AlexZinkM/eth-wallet/internal/ledger/mock_ledger"
	"github.com/AlexZinkM/eth-wallet/internal/registry"
	"github.com/AlexZinkM/eth-wallet/internal/session"
	"github.com/AlexZinkM/eth-wallet/internal/wallet"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// passwords hands out queued answers to password prompts.
type passwords struct {
	queue []string
}

func (p *passwords) read(string) ([]byte, error) {
	if len(p.queue) == 0 {
		return nil, errors.New("no password queued")
	}
	pw := p.queue[0]
	p.queue = p.queue[1:]
	return []byte(pw), nil
}

type shellFixture struct {
	shell     *Shell
	out       *bytes.Buffer
	passwords *passwords
	backend   *mock_ledger.MockBackend
}

func newShellFixture(t *testing.T) *shellFixture {
	t.Helper()
	dir := t.TempDir()

	reg, err := registry.Open(registry.BackendLevelDB, filepath.Join(dir, "users.db"),
		registry.WithCredentialCost(bcrypt.MinCost))
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })

	store := wallet.NewStore(filepath.Join(dir, "keystore"), reg,
		wallet.WithScrypt(crypto.ScryptParams{N: crypto.LightScryptN, P: crypto.LightScryptP}))
	backend := mock_ledger.NewMockBackend(gomock.NewController(t))

	manager, err := session.NewManager(reg, store, ledger.NewClient(backend),
		session.WithSecret([]byte("cli-test")))
	require.NoError(t, err)

	out := &bytes.Buffer{}
	pw := &passwords{}
	return &shellFixture{
		shell:     NewShell(manager, pw.read, out),
		out:       out,
		passwords: pw,
		backend:   backend,
	}
}

func (f *shellFixture) exec(t *testing.T, line string, answers ...string) error {
	t.Helper()
	f.out.Reset()
	f.passwords.queue = answers
	return f.shell.Exec(context.Background(), line)
}

func TestShellRequiresLogin(t *testing.T) {
	f := newShellFixture(t)

	for _, line := range []string{"list", "create", "balance", "sign hi", "logout"} {
		err := f.exec(t, line)
		assert.ErrorIs(t, err, errNotLoggedIn, line)
	}
}

func TestShellSignupAndLogin(t *testing.T) {
	f := newShellFixture(t)

	err := f.exec(t, "signup alice", "pw", "typo")
	assert.ErrorIs(t, err, errPasswordMismatch)

	require.NoError(t, f.exec(t, "signup alice", "pw", "pw"))
	assert.Contains(t, f.out.String(), "user alice registered")

	err = f.exec(t, "signup alice", "pw", "pw")
	assert.True(t, errors.Is(err, apperr.ErrDuplicateUsername), err)

	err = f.exec(t, "login alice", "wrong")
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials), err)

	require.NoError(t, f.exec(t, "login alice", "pw"))
	assert.Contains(t, f.out.String(), "logged in as alice")

	require.NoError(t, f.exec(t, "logout"))
	assert.ErrorIs(t, f.exec(t, "list"), errNotLoggedIn)
}

func TestShellWalletCommands(t *testing.T) {
	f := newShellFixture(t)
	require.NoError(t, f.exec(t, "signup alice", "pw", "pw"))
	require.NoError(t, f.exec(t, "login alice", "pw"))

	require.NoError(t, f.exec(t, "list"))
	assert.Contains(t, f.out.String(), "no wallets yet")

	require.NoError(t, f.exec(t, "create", "fun", "fun"))
	assert.Contains(t, f.out.String(), "wallet created")

	s, err := f.shell.current()
	require.NoError(t, err)
	refs := s.ListWallets()
	require.Len(t, refs, 1)
	ref := refs[0]

	err = f.exec(t, "sign hello world")
	assert.True(t, errors.Is(err, apperr.ErrNoWalletLoaded), err)
	err = f.exec(t, "address")
	assert.True(t, errors.Is(err, apperr.ErrNoWalletLoaded), err)

	err = f.exec(t, "open "+ref.Name, "nope")
	assert.True(t, errors.Is(err, apperr.ErrInvalidPassword), err)

	require.NoError(t, f.exec(t, "open "+ref.Name, "fun"))
	assert.Contains(t, f.out.String(), ref.Address)

	require.NoError(t, f.exec(t, "list"))
	assert.Contains(t, f.out.String(), "*")
	assert.Contains(t, f.out.String(), ref.Name)

	require.NoError(t, f.exec(t, "sign hello world"))
	assert.Contains(t, f.out.String(), "signer:    "+ref.Address)
	assert.Contains(t, f.out.String(), "signature: 0x")

	require.NoError(t, f.exec(t, "address --qr"))
	assert.Contains(t, f.out.String(), ref.Address)

	f.backend.EXPECT().BalanceAt(gomock.Any(), gomock.Any(), nil).Return(big.NewInt(100_000_000_000_000_000), nil)
	require.NoError(t, f.exec(t, "balance"))
	assert.Contains(t, f.out.String(), "0.1 ETH (100000000000000000 wei)")
}

func TestShellRejectsUnknownCommand(t *testing.T) {
	f := newShellFixture(t)
	assert.Error(t, f.exec(t, "mine"))
	assert.Error(t, f.exec(t, "login"))
	assert.NoError(t, f.exec(t, "   "))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "log in first", Describe(errNotLoggedIn))
	assert.Equal(t, "load a wallet first", Describe(apperr.New(apperr.NoWalletLoaded, "sign", nil)))
	assert.Equal(t, "network unreachable (connection refused)",
		Describe(apperr.New(apperr.Network, "get balance", errors.New("connection refused"))))
}
