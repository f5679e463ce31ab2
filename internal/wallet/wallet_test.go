package wallet

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"
	"github.com/AlexZinkM/eth-wallet/internal/crypto"
	"github.com/AlexZinkM/eth-wallet/internal/model"
	"github.com/AlexZinkM/eth-wallet/internal/registry"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var lightScrypt = crypto.ScryptParams{N: crypto.LightScryptN, P: crypto.LightScryptP}

func newTestStore(t *testing.T) (*Store, *registry.Registry) {
	t.Helper()
	dir := t.TempDir()
	fs, err := registry.NewFileStore(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	reg, err := registry.New(fs, registry.WithCredentialCost(bcrypt.MinCost))
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })

	require.NoError(t, reg.Register("alice", []byte("pw")))
	return NewStore(filepath.Join(dir, "keystore"), reg, WithScrypt(lightScrypt)), reg
}

func TestCreateAndOpenWallet(t *testing.T) {
	assert := assert.New(t)
	store, reg := newTestStore(t)

	assert.Empty(reg.ListWallets("alice"))

	ref, err := store.CreateWallet("alice", []byte("fun"))
	require.NoError(t, err)
	assert.True(common.IsHexAddress(ref.Address))

	list := reg.ListWallets("alice")
	require.Len(t, list, 1)
	assert.Equal(ref.Name, list[0].Name)

	w, err := store.OpenWallet("alice", ref.Name, []byte("fun"))
	require.NoError(t, err)
	assert.Equal(ref.Address, w.Address().Hex())
	assert.Equal(ref.Name, w.Name())
	assert.NotNil(w.PrivateKey())
}

func TestCreateWalletNamesAreUnique(t *testing.T) {
	store, reg := newTestStore(t)

	fixed := time.Date(2024, 4, 11, 23, 40, 9, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		ref, err := store.CreateWallet("alice", []byte("fun"))
		require.NoError(t, err)
		assert.False(t, seen[ref.Name], "duplicate name %s", ref.Name)
		seen[ref.Name] = true
	}
	assert.Len(t, reg.ListWallets("alice"), 3)
}

func TestCreateWalletRejectsEmptyPassword(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.CreateWallet("alice", nil)
	assert.True(t, errors.Is(err, apperr.ErrKeystoreCreation), err)
}

type failingAttacher struct {
	err    error
	before func()
}

func (f *failingAttacher) AttachWallet(string, model.WalletRef) error {
	if f.before != nil {
		f.before()
	}
	return f.err
}

func (f *failingAttacher) FindWallet(string, string) (model.WalletRef, bool) {
	return model.WalletRef{}, false
}

func TestCreateWalletRemovesKeystoreWhenAttachFails(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, &failingAttacher{err: apperr.New(apperr.Storage, "attach wallet", errors.New("disk full"))}, WithScrypt(lightScrypt))

	_, err := store.CreateWallet("alice", []byte("fun"))
	assert.True(t, errors.Is(err, apperr.ErrStorage), err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateWalletReportsOrphan(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	attacher := &failingAttacher{
		err:    errors.New("disk full"),
		before: func() { os.Chmod(dir, 0500) },
	}
	defer os.Chmod(dir, 0700)
	store := NewStore(dir, attacher, WithScrypt(lightScrypt))

	_, err := store.CreateWallet("alice", []byte("fun"))
	assert.True(t, errors.Is(err, apperr.ErrKeystoreCreation), err)
	assert.ErrorContains(t, err, "orphaned keystore "+dir)
}

func TestOpenWalletFailures(t *testing.T) {
	store, reg := newTestStore(t)
	ref, err := store.CreateWallet("alice", []byte("fun"))
	require.NoError(t, err)

	_, err = store.OpenWallet("alice", ref.Name, []byte("wrong"))
	assert.True(t, errors.Is(err, apperr.ErrInvalidPassword), err)

	_, err = store.OpenWallet("alice", "UTC--nope.json", []byte("fun"))
	assert.True(t, errors.Is(err, apperr.ErrKeystoreNotFound), err)

	// wallet of another user
	require.NoError(t, reg.Register("bob", []byte("pw")))
	_, err = store.OpenWallet("bob", ref.Name, []byte("fun"))
	assert.True(t, errors.Is(err, apperr.ErrKeystoreNotFound), err)

	// file gone from disk
	require.NoError(t, os.Remove(filepath.Join(store.Dir(), ref.Name)))
	_, err = store.OpenWallet("alice", ref.Name, []byte("fun"))
	assert.True(t, errors.Is(err, apperr.ErrKeystoreNotFound), err)
}

func TestOpenWalletAddressMismatch(t *testing.T) {
	store, reg := newTestStore(t)
	ref, err := store.CreateWallet("alice", []byte("fun"))
	require.NoError(t, err)

	// a ref whose address disagrees with the file it points at
	other := ref
	other.Name = "UTC--2024-01-01T00-00-00.000000000Z--2c7536e3605d9c16a7a3d7b1898e529396a65c23.json"
	other.Address = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
	data, err := os.ReadFile(filepath.Join(store.Dir(), ref.Name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), other.Name), data, 0600))
	require.NoError(t, reg.AttachWallet("alice", other))

	_, err = store.OpenWallet("alice", other.Name, []byte("fun"))
	assert.True(t, errors.Is(err, apperr.ErrKeystoreCorrupt), err)
}

func TestAddressQR(t *testing.T) {
	qr, err := AddressQR(common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"))
	require.NoError(t, err)

	png, err := base64.StdEncoding.DecodeString(qr)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}
