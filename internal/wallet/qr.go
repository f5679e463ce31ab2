package wallet

import (
	"encoding/base64"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/skip2/go-qrcode"
)

// AddressQR generates QR code of address in base64 (PNG, 256px)
func AddressQR(address common.Address) (string, error) {
	qr, err := qrcode.New(address.Hex(), qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
