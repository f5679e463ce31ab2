package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

const (
	// Standard parameters follow go-ethereum (N=2^18, ~256MB, ~1s per unlock):
	// brute force stays expensive while remaining usable on laptops.
	// Light parameters (N=2^12) exist for dev chains and tests only.
	StandardScryptN = keystore.StandardScryptN
	StandardScryptP = keystore.StandardScryptP
	LightScryptN    = keystore.LightScryptN
	LightScryptP    = keystore.LightScryptP

	keystoreExt = ".json"
)

// ScryptParams selects the key derivation cost of new keystore files.
type ScryptParams struct {
	N int
	P int
}

// KeystoreFileName returns the keystore file name for address created at t,
// e.g. UTC--2024-04-11T23-40-09.892441000Z--ea2d2e27...c17.json
func KeystoreFileName(t time.Time, address common.Address) string {
	t = t.UTC()
	return "UTC--" + t.Format(keystoreTimeLayout) + "--" + hex.EncodeToString(address[:]) + keystoreExt
}

const keystoreTimeLayout = "2006-01-02T15-04-05.000000000Z"

// ParseKeystoreFileName extracts the creation time and address encoded in a
// keystore file name. A name with an unparsable timestamp yields a zero time.
func ParseKeystoreFileName(name string) (time.Time, common.Address, error) {
	base := strings.TrimSuffix(filepath.Base(name), keystoreExt)
	parts := strings.Split(base, "--")
	if len(parts) != 3 || parts[0] != "UTC" {
		return time.Time{}, common.Address{}, fmt.Errorf("keystore name %q is not UTC--<time>--<address>", name)
	}
	if !common.IsHexAddress(parts[2]) {
		return time.Time{}, common.Address{}, fmt.Errorf("keystore name %q has invalid address %q", name, parts[2])
	}
	createdAt, err := time.Parse(keystoreTimeLayout, parts[1])
	if err != nil {
		createdAt = time.Time{}
	}
	return createdAt, common.HexToAddress(parts[2]), nil
}

// WriteKeystore encrypts key into a Web3 Secret Storage (v3) container and
// durably writes it to dir. Returns the file name (not the full path).
// The file is written to a temp name, fsynced, then linked into place, so a
// crash never leaves a truncated keystore under the final name and an
// existing keystore is never replaced.
// password must be []byte for security (caller should zero it after use)
func WriteKeystore(dir string, key *ecdsa.PrivateKey, password []byte, params ScryptParams, createdAt time.Time) (string, error) {
	if key == nil {
		return "", errors.New("private key is nil")
	}
	if len(password) == 0 {
		return "", errors.New("password cannot be empty")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create keystore dir: %w", err)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate key id: %w", err)
	}
	k := &keystore.Key{
		Id:         id,
		Address:    ethcrypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
	}

	// Encrypt
	keyJSON, err := keystore.EncryptKey(k, string(password), params.N, params.P)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt key: %w", err)
	}

	name := KeystoreFileName(createdAt, k.Address)
	if err := writeFileExclusive(filepath.Join(dir, name), keyJSON); err != nil {
		return "", fmt.Errorf("keystore %s: %w", name, err)
	}
	return name, nil
}

// writeTemp writes data (mode 0600) to a fsynced temp file in dir and
// returns its name. The caller removes it.
func writeTemp(dir string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return tmpName, fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return tmpName, fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return tmpName, fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return tmpName, fmt.Errorf("failed to close file: %w", err)
	}
	return tmpName, nil
}

// writeFileExclusive publishes data under path only if path does not exist.
// The hard link fails with os.ErrExist instead of replacing a file, and the
// complete content appears under path in one step.
func writeFileExclusive(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpName, err := writeTemp(dir, data)
	if tmpName != "" {
		defer os.Remove(tmpName)
	}
	if err != nil {
		return err
	}
	if err := os.Link(tmpName, path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return os.ErrExist
		}
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return syncDir(dir)
}

// WriteFileAtomic replaces path with data (mode 0600) via temp file, fsync and
// rename, then fsyncs the parent directory.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpName, err := writeTemp(dir, data)
	if tmpName != "" {
		defer os.Remove(tmpName) // no-op after a successful rename
	}
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return syncDir(dir)
}

// syncDir makes a rename durable. Some platforms cannot fsync directories,
// which is not treated as a failure.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open dir: %w", err)
	}
	defer d.Close()
	_ = d.Sync()
	return nil
}
