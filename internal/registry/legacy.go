package registry

import (
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/AlexZinkM/eth-wallet/internal/crypto"
	"github.com/AlexZinkM/eth-wallet/internal/model"
)

// legacyUsers is the users.xml layout written by the previous desktop
// release. Older files carry a <password> inside each <wallet>; newer ones do
// not. Both decode into the same structure.
type legacyUsers struct {
	Users []legacyUser `xml:"user"`
}

type legacyUser struct {
	Username string         `xml:"username"`
	Password string         `xml:"password"`
	Wallets  []legacyWallet `xml:"wallets>wallet"`
}

type legacyWallet struct {
	Name     string  `xml:"name"`
	Password *string `xml:"password"`
}

// LegacyOptions controls ImportXML.
type LegacyOptions struct {
	// CredentialCost is the bcrypt cost for the rehashed passwords.
	CredentialCost int
	// KeystoreDir, when set, is consulted for wallets whose file name does
	// not encode an address.
	KeystoreDir string
}

// LegacyReport lists what ImportXML converted and what it dropped.
type LegacyReport struct {
	Users                  int
	Wallets                int
	DroppedWalletPasswords int
	SkippedUsers           []string
	SkippedWallets         []string
}

// ImportXML converts a legacy users.xml into schema v2 records. Plaintext
// passwords are bcrypt-hashed and per-wallet passwords are discarded.
func ImportXML(r io.Reader, opts LegacyOptions) ([]model.UserRecord, LegacyReport, error) {
	var report LegacyReport
	if opts.CredentialCost == 0 {
		opts.CredentialCost = crypto.DefaultCredentialCost
	}

	var doc legacyUsers
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, report, fmt.Errorf("failed to parse users xml: %w", err)
	}

	seen := make(map[string]bool, len(doc.Users))
	records := make([]model.UserRecord, 0, len(doc.Users))
	for _, u := range doc.Users {
		username := strings.TrimSpace(u.Username)
		if username == "" || u.Password == "" || seen[username] {
			report.SkippedUsers = append(report.SkippedUsers, username)
			continue
		}
		seen[username] = true

		hash, err := crypto.HashCredential([]byte(u.Password), opts.CredentialCost)
		if err != nil {
			return nil, report, fmt.Errorf("failed to hash password of %q: %w", username, err)
		}

		rec := model.UserRecord{
			Username:   username,
			Credential: hash,
			Wallets:    []model.WalletRef{},
		}
		for _, w := range u.Wallets {
			if w.Password != nil {
				report.DroppedWalletPasswords++
			}
			ref, err := legacyWalletRef(strings.TrimSpace(w.Name), opts.KeystoreDir)
			if err != nil {
				report.SkippedWallets = append(report.SkippedWallets, username+"/"+w.Name)
				continue
			}
			rec.Wallets = append(rec.Wallets, ref)
			report.Wallets++
		}
		records = append(records, rec)
		report.Users++
	}
	return records, report, nil
}

func legacyWalletRef(name, keystoreDir string) (model.WalletRef, error) {
	createdAt, addr, err := crypto.ParseKeystoreFileName(name)
	if err == nil {
		return model.WalletRef{Name: name, Address: addr.Hex(), CreatedAt: createdAt}, nil
	}
	if keystoreDir == "" || name == "" {
		return model.WalletRef{}, err
	}

	headerAddr, err := crypto.ReadKeystoreAddress(filepath.Join(keystoreDir, filepath.Base(name)))
	if err != nil {
		return model.WalletRef{}, err
	}
	return model.WalletRef{Name: name, Address: headerAddr.Hex()}, nil
}
