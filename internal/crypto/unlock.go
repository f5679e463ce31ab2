package crypto

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
)

// readKeystoreFile reads a keystore file, mapping filesystem failures to the
// keystore error kinds.
func readKeystoreFile(op, filePath string) ([]byte, error) {
	// Check if file exists
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Newf(apperr.KeystoreNotFound, op, "file does not exist")
		}
		return nil, apperr.New(apperr.KeystoreNotFound, op, fmt.Errorf("failed to read file: %w", err))
	}

	// Check that file is not empty
	if fileInfo.Size() == 0 {
		return nil, apperr.Newf(apperr.KeystoreCorrupt, op, "file is empty")
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, apperr.New(apperr.KeystoreNotFound, op, fmt.Errorf("failed to read file: %w", err))
	}

	// Skip UTF-8 BOM if present (files edited on Windows)
	if len(fileData) >= 3 && fileData[0] == 0xEF && fileData[1] == 0xBB && fileData[2] == 0xBF {
		fileData = fileData[3:]
	}
	return fileData, nil
}

// ReadKeystore reads and decrypts a keystore file.
// password must be []byte for security (caller should zero it after use)
func ReadKeystore(filePath string, password []byte) (*ecdsa.PrivateKey, common.Address, error) {
	const op = "open keystore"

	fileData, err := readKeystoreFile(op, filePath)
	if err != nil {
		return nil, common.Address{}, err
	}

	// Reject structurally broken files before spending a KDF round on them
	if !json.Valid(fileData) {
		return nil, common.Address{}, apperr.Newf(apperr.KeystoreCorrupt, op, "file is not valid JSON")
	}

	key, err := keystore.DecryptKey(fileData, string(password))
	if err != nil {
		if errors.Is(err, keystore.ErrDecrypt) {
			return nil, common.Address{}, apperr.New(apperr.InvalidPassword, op, nil)
		}
		return nil, common.Address{}, apperr.New(apperr.KeystoreCorrupt, op, err)
	}

	return key.PrivateKey, key.Address, nil
}

// ReadKeystoreAddress reads only the address from a keystore file (without decryption)
func ReadKeystoreAddress(filePath string) (common.Address, error) {
	const op = "read keystore address"

	fileData, err := readKeystoreFile(op, filePath)
	if err != nil {
		return common.Address{}, err
	}

	var header struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(fileData, &header); err != nil {
		return common.Address{}, apperr.New(apperr.KeystoreCorrupt, op, fmt.Errorf("failed to unmarshal keystore: %w", err))
	}
	if !common.IsHexAddress(header.Address) {
		return common.Address{}, apperr.Newf(apperr.KeystoreCorrupt, op, "invalid address %q", header.Address)
	}

	return common.HexToAddress(header.Address), nil
}
