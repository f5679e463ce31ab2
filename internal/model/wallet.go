package model

import "time"

// RegistrySchemaVersion is the version of the persisted registry layout.
// Version 2 stores a bcrypt credential and wallet refs without any password.
const RegistrySchemaVersion = 2

// WalletRef points at one keystore file owned by a user
type WalletRef struct {
	Name      string    `json:"name"`    // keystore file name, unique by construction
	Address   string    `json:"address"` // 0x-prefixed checksummed address
	CreatedAt time.Time `json:"createdAt"`
}

// UserRecord is the persisted form of a user account
type UserRecord struct {
	Username   string      `json:"username"`
	Credential string      `json:"credential"` // bcrypt hash
	Wallets    []WalletRef `json:"wallets"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// RegistryFile represents the users.json file structure
type RegistryFile struct {
	Version int          `json:"version"`
	Users   []UserRecord `json:"users"`
}

// CreateWalletRequest represents request for POST /wallets
type CreateWalletRequest struct {
	Password string `json:"password" binding:"required"`
}

// CreateWalletResponse represents response for POST /wallets
type CreateWalletResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Wallet  WalletRef `json:"wallet"`
	QR      string    `json:"QR,omitempty"` // base64 PNG of the address
}

// OpenWalletRequest represents request for POST /wallets/open
type OpenWalletRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// OpenWalletResponse represents response for POST /wallets/open
type OpenWalletResponse struct {
	Address string `json:"address"`
}

// WalletListResponse represents response for GET /wallets
type WalletListResponse struct {
	Username string      `json:"username"`
	Active   string      `json:"active,omitempty"` // address of the unlocked wallet
	Wallets  []WalletRef `json:"wallets"`
}

// QRResponse represents response for GET /wallets/qr
type QRResponse struct {
	Address string `json:"address"`
	QR      string `json:"QR"`
}
