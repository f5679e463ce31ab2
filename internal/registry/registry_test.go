package registry

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"
	"github.com/AlexZinkM/eth-wallet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type flakyStore struct {
	Store
	fail bool
}

func (s *flakyStore) Put(rec model.UserRecord) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.Store.Put(rec)
}

func newTestRegistry(t *testing.T, store Store) *Registry {
	t.Helper()
	r, err := New(store, WithCredentialCost(bcrypt.MinCost))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	return s
}

func testRef(name string) model.WalletRef {
	return model.WalletRef{
		Name:      name,
		Address:   "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23",
		CreatedAt: time.Date(2024, 4, 11, 0, 0, 0, 0, time.UTC),
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry(t, newFileStore(t))

	require.NoError(t, r.Register("alice", []byte("pw")))
	assert.True(r.Exists("alice"))
	assert.False(r.Exists("Alice"))

	assert.NoError(r.Authenticate("alice", []byte("pw")))

	wrong := r.Authenticate("alice", []byte("nope"))
	unknown := r.Authenticate("bob", []byte("pw"))
	assert.True(errors.Is(wrong, apperr.ErrInvalidCredentials))
	assert.True(errors.Is(unknown, apperr.ErrInvalidCredentials))
	assert.Equal(wrong.Error(), unknown.Error())
}

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRegistry(t, newFileStore(t))

	require.NoError(t, r.Register("alice", []byte("pw")))
	err := r.Register("alice", []byte("other"))
	assert.True(t, errors.Is(err, apperr.ErrDuplicateUsername), err)

	// case-sensitive
	assert.NoError(t, r.Register("ALICE", []byte("pw")))
}

func TestRegisterLongPassword(t *testing.T) {
	r := newTestRegistry(t, newFileStore(t))
	password := []byte(strings.Repeat("p", 80))

	require.NoError(t, r.Register("bob", password))
	assert.NoError(t, r.Authenticate("bob", password))

	truncated := r.Authenticate("bob", password[:72])
	assert.True(t, errors.Is(truncated, apperr.ErrInvalidCredentials), truncated)
}

func TestRegisterRejectsEmpty(t *testing.T) {
	r := newTestRegistry(t, newFileStore(t))

	assert.True(t, errors.Is(r.Register("", []byte("pw")), apperr.ErrInvalidCredentials))
	assert.True(t, errors.Is(r.Register("alice", nil), apperr.ErrInvalidCredentials))
	assert.False(t, r.Exists("alice"))
}

func TestListWallets(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry(t, newFileStore(t))

	unknown := r.ListWallets("nobody")
	assert.NotNil(unknown)
	assert.Empty(unknown)

	require.NoError(t, r.Register("alice", []byte("pw")))
	assert.Empty(r.ListWallets("alice"))

	require.NoError(t, r.AttachWallet("alice", testRef("w1")))
	list := r.ListWallets("alice")
	require.Len(t, list, 1)
	assert.Equal("w1", list[0].Name)

	// returned slice is a copy
	list[0].Name = "mutated"
	assert.Equal("w1", r.ListWallets("alice")[0].Name)

	ref, ok := r.FindWallet("alice", "w1")
	assert.True(ok)
	assert.Equal("w1", ref.Name)
	_, ok = r.FindWallet("alice", "w2")
	assert.False(ok)
}

func TestAttachWalletErrors(t *testing.T) {
	r := newTestRegistry(t, newFileStore(t))
	require.NoError(t, r.Register("alice", []byte("pw")))

	err := r.AttachWallet("bob", testRef("w1"))
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials), err)

	require.NoError(t, r.AttachWallet("alice", testRef("w1")))
	err = r.AttachWallet("alice", testRef("w1"))
	assert.True(t, errors.Is(err, apperr.ErrDuplicateWallet), err)
	assert.Len(t, r.ListWallets("alice"), 1)

	err = r.AttachWallet("alice", model.WalletRef{})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput), err)
}

func TestFailedWriteRollsBack(t *testing.T) {
	assert := assert.New(t)
	store := &flakyStore{Store: newFileStore(t)}
	r := newTestRegistry(t, store)

	require.NoError(t, r.Register("alice", []byte("pw")))

	store.fail = true
	err := r.Register("bob", []byte("pw"))
	assert.True(errors.Is(err, apperr.ErrStorage), err)
	assert.False(r.Exists("bob"))
	assert.True(errors.Is(r.Authenticate("bob", []byte("pw")), apperr.ErrInvalidCredentials))

	err = r.AttachWallet("alice", testRef("w1"))
	assert.True(errors.Is(err, apperr.ErrStorage), err)
	assert.Empty(r.ListWallets("alice"))

	store.fail = false
	require.NoError(t, r.AttachWallet("alice", testRef("w1")))
	assert.Len(r.ListWallets("alice"), 1)
}

func testReopen(t *testing.T, open func() Store) {
	assert := assert.New(t)

	r, err := New(open(), WithCredentialCost(bcrypt.MinCost))
	require.NoError(t, err)
	require.NoError(t, r.Register("alice", []byte("pw")))
	require.NoError(t, r.Register("bob", []byte("pw2")))
	require.NoError(t, r.AttachWallet("alice", testRef("w1")))
	require.NoError(t, r.AttachWallet("alice", testRef("w2")))
	require.NoError(t, r.Close())

	r, err = New(open(), WithCredentialCost(bcrypt.MinCost))
	require.NoError(t, err)
	defer r.Close()

	assert.NoError(r.Authenticate("alice", []byte("pw")))
	assert.NoError(r.Authenticate("bob", []byte("pw2")))
	list := r.ListWallets("alice")
	require.Len(t, list, 2)
	assert.Equal("w1", list[0].Name)
	assert.Equal("w2", list[1].Name)
	assert.Empty(r.ListWallets("bob"))
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	testReopen(t, func() Store {
		s, err := NewFileStore(path)
		require.NoError(t, err)
		return s
	})
}

func TestLevelStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	testReopen(t, func() Store {
		s, err := NewLevelStore(path)
		require.NoError(t, err)
		return s
	})
}

func TestLevelStoreIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	s, err := NewLevelStore(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = NewLevelStore(path)
	assert.Error(t, err)
}

func TestCredentialIsNotPlaintext(t *testing.T) {
	store := newFileStore(t)
	r := newTestRegistry(t, store)
	require.NoError(t, r.Register("alice", []byte("secret-pw")))

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotContains(t, records[0].Credential, "secret-pw")
	assert.True(t, strings.HasPrefix(records[0].Credential, "$2"))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	r, err := Open(BackendFile, filepath.Join(dir, "users.json"), WithCredentialCost(bcrypt.MinCost))
	require.NoError(t, err)
	require.NoError(t, r.Close())

	r, err = Open(BackendLevelDB, filepath.Join(dir, "users.db"))
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = Open("xml", filepath.Join(dir, "users.xml"))
	assert.True(t, errors.Is(err, apperr.ErrStorage), err)
}
