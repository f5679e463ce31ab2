package crypto

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var lightScrypt = ScryptParams{N: LightScryptN, P: LightScryptP}

func TestCredentialHashing(t *testing.T) {
	hash, err := HashCredential([]byte("fun"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "fun", hash)
	assert.True(t, VerifyCredential(hash, []byte("fun")))
	assert.False(t, VerifyCredential(hash, []byte("Fun")))
	assert.False(t, VerifyCredential("not-a-hash", []byte("fun")))

	_, err = HashCredential(nil, bcrypt.MinCost)
	assert.Error(t, err)
}

func TestCredentialHashesAreSalted(t *testing.T) {
	a, err := HashCredential([]byte("same"), bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashCredential([]byte("same"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCredentialAcceptsLongPasswords(t *testing.T) {
	long := []byte(strings.Repeat("a", 80))
	hash, err := HashCredential(long, bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyCredential(hash, long))

	// bytes past 72 still count
	other := []byte(strings.Repeat("a", 79) + "b")
	assert.False(t, VerifyCredential(hash, other))
}

func TestKeystoreFileName(t *testing.T) {
	addr := common.HexToAddress("0xea2d2e276033772f09311e0ce64dde5f2f329c17")
	ts := time.Date(2024, 4, 11, 23, 40, 9, 892441000, time.UTC)

	name := KeystoreFileName(ts, addr)
	assert.Equal(t, "UTC--2024-04-11T23-40-09.892441000Z--ea2d2e276033772f09311e0ce64dde5f2f329c17.json", name)

	createdAt, got, err := ParseKeystoreFileName(name)
	require.NoError(t, err)
	assert.Equal(t, addr, got)
	assert.True(t, ts.Equal(createdAt))

	_, _, err = ParseKeystoreFileName("wallet.json")
	assert.Error(t, err)
	_, _, err = ParseKeystoreFileName("UTC--2024--nothex.json")
	assert.Error(t, err)
}

func TestKeystoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	name, err := WriteKeystore(dir, key, []byte("fun"), lightScrypt, time.Now())
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, addr, err := ReadKeystore(path, []byte("fun"))
	require.NoError(t, err)
	assert.Equal(t, ethcrypto.PubkeyToAddress(key.PublicKey), addr)
	assert.Equal(t, 0, key.D.Cmp(got.D))

	headerAddr, err := ReadKeystoreAddress(path)
	require.NoError(t, err)
	assert.Equal(t, addr, headerAddr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestReadKeystoreFailures(t *testing.T) {
	dir := t.TempDir()
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	name, err := WriteKeystore(dir, key, []byte("fun"), lightScrypt, time.Now())
	require.NoError(t, err)

	_, _, err = ReadKeystore(filepath.Join(dir, name), []byte("randomWrongPassword"))
	assert.True(t, errors.Is(err, apperr.ErrInvalidPassword), err)

	_, _, err = ReadKeystore(filepath.Join(dir, "missing.json"), []byte("fun"))
	assert.True(t, errors.Is(err, apperr.ErrKeystoreNotFound), err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0600))
	_, _, err = ReadKeystore(empty, []byte("fun"))
	assert.True(t, errors.Is(err, apperr.ErrKeystoreCorrupt), err)

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("{not json"), 0600))
	_, _, err = ReadKeystore(garbage, []byte("fun"))
	assert.True(t, errors.Is(err, apperr.ErrKeystoreCorrupt), err)

	_, err = ReadKeystoreAddress(garbage)
	assert.True(t, errors.Is(err, apperr.ErrKeystoreCorrupt), err)
}

func TestReadKeystoreSkipsBOM(t *testing.T) {
	dir := t.TempDir()
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	name, err := WriteKeystore(dir, key, []byte("fun"), lightScrypt, time.Now())
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, append([]byte{0xEF, 0xBB, 0xBF}, data...), 0600))

	_, addr, err := ReadKeystore(path, []byte("fun"))
	require.NoError(t, err)
	assert.True(t, strings.EqualFold(addr.Hex(), ethcrypto.PubkeyToAddress(key.PublicKey).Hex()))
}

func TestWriteKeystoreRejectsEmptyPassword(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	_, err = WriteKeystore(t.TempDir(), key, nil, lightScrypt, time.Now())
	assert.Error(t, err)
}

func TestWriteKeystoreNeverReplaces(t *testing.T) {
	dir := t.TempDir()
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	createdAt := time.Date(2024, 4, 11, 23, 40, 9, 0, time.UTC)

	name, err := WriteKeystore(dir, key, []byte("fun"), lightScrypt, createdAt)
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	_, err = WriteKeystore(dir, key, []byte("other"), lightScrypt, createdAt)
	assert.True(t, errors.Is(err, os.ErrExist), err)

	after, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be cleaned up")
}
