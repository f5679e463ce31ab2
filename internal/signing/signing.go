// Package signing produces recoverable prefixed-message signatures.
package signing

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"
	"github.com/AlexZinkM/eth-wallet/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	messagePrefix = "\x19Ethereum Signed Message:\n"

	// SignatureLength is r(32) | s(32) | v(1).
	SignatureLength = 65
)

// Signature is a packed r|s|v signature.
type Signature [SignatureLength]byte

// Hex renders the signature as 0x followed by 130 lowercase hex characters.
func (s Signature) Hex() string {
	return "0x" + hex.EncodeToString(s[:])
}

// ParseSignature decodes a 0x-prefixed or bare hex signature.
func ParseSignature(s string) (Signature, error) {
	var sig Signature
	raw, err := hex.DecodeString(trim0x(s))
	if err != nil {
		return sig, fmt.Errorf("failed to decode signature: %w", err)
	}
	if len(raw) != SignatureLength {
		return sig, fmt.Errorf("signature must be %d bytes, got %d", SignatureLength, len(raw))
	}
	copy(sig[:], raw)
	return sig, nil
}

// SignatureData holds the components of a signature. R and S may be shorter
// than 32 bytes when they have leading zeros.
type SignatureData struct {
	R []byte
	S []byte
	V []byte
}

// Pack lays the components out as r|s|v. R and S are left-padded to 32
// bytes; v is the first byte of V, or 0 when V is empty.
func (d SignatureData) Pack() Signature {
	var sig Signature
	copy(sig[32-min(len(d.R), 32):32], tail(d.R, 32))
	copy(sig[64-min(len(d.S), 32):64], tail(d.S, 32))
	if len(d.V) > 0 {
		sig[64] = d.V[0]
	}
	return sig
}

func tail(b []byte, n int) []byte {
	if len(b) > n {
		return b[len(b)-n:]
	}
	return b
}

// MessageHash is keccak256 of the raw message.
func MessageHash(message []byte) []byte {
	return ethcrypto.Keccak256(message)
}

// PrefixedDigest is the digest that gets signed: keccak256 over the prefix,
// the decimal length of h and h itself.
func PrefixedDigest(h []byte) []byte {
	return ethcrypto.Keccak256([]byte(messagePrefix+strconv.Itoa(len(h))), h)
}

// Sign signs keccak256(message) under the prefixed-message scheme with the
// wallet's key. v is the recovery id plus 27.
func Sign(w *wallet.Unlocked, message []byte) (Signature, error) {
	const op = "sign message"
	if w == nil {
		return Signature{}, apperr.New(apperr.NoWalletLoaded, op, nil)
	}

	digest := PrefixedDigest(MessageHash(message))
	raw, err := ethcrypto.Sign(digest, w.PrivateKey())
	if err != nil {
		return Signature{}, apperr.New(apperr.KeystoreCorrupt, op, err)
	}

	data := SignatureData{
		R: trimLeadingZeros(raw[:32]),
		S: trimLeadingZeros(raw[32:64]),
		V: []byte{raw[64] + 27},
	}
	return data.Pack(), nil
}

// Recover returns the address that produced sig over message.
func Recover(message []byte, sig Signature) (common.Address, error) {
	const op = "recover signer"

	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return common.Address{}, apperr.Newf(apperr.InvalidInput, op, "invalid recovery id %d", sig[64])
	}

	raw := make([]byte, SignatureLength)
	copy(raw, sig[:64])
	raw[64] = v

	pub, err := ethcrypto.SigToPub(PrefixedDigest(MessageHash(message)), raw)
	if err != nil {
		return common.Address{}, apperr.New(apperr.InvalidInput, op, err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}

func trimLeadingZeros(b []byte) []byte {
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	return b
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
