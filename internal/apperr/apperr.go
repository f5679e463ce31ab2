// Package apperr defines the closed set of failures the wallet core reports.
// Every error that leaves the core carries exactly one Kind so callers can
// branch with errors.Is against the sentinel values below.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind uint8

const (
	Unknown Kind = iota
	DuplicateUsername
	InvalidCredentials
	NoWalletLoaded
	InvalidPassword
	KeystoreNotFound
	KeystoreCorrupt
	KeystoreCreation
	Network
	TransactionRejected
	Interrupted
	Storage
	InvalidInput
	DuplicateWallet
)

var kindNames = map[Kind]string{
	Unknown:             "unknown",
	DuplicateUsername:   "duplicate_username",
	InvalidCredentials:  "invalid_credentials",
	NoWalletLoaded:      "no_wallet_loaded",
	InvalidPassword:     "invalid_password",
	KeystoreNotFound:    "keystore_not_found",
	KeystoreCorrupt:     "keystore_corrupt",
	KeystoreCreation:    "keystore_creation",
	Network:             "network",
	TransactionRejected: "transaction_rejected",
	Interrupted:         "interrupted",
	Storage:             "storage",
	InvalidInput:        "invalid_input",
	DuplicateWallet:     "duplicate_wallet",
}

// messages are what a user sees; they must be distinct enough to act on.
var messages = map[Kind]string{
	Unknown:             "unexpected error",
	DuplicateUsername:   "username already exists",
	InvalidCredentials:  "invalid username or password",
	NoWalletLoaded:      "load a wallet first",
	InvalidPassword:     "wrong wallet password",
	KeystoreNotFound:    "wallet not found",
	KeystoreCorrupt:     "wallet file is damaged",
	KeystoreCreation:    "could not create wallet",
	Network:             "network unreachable",
	TransactionRejected: "transaction rejected",
	Interrupted:         "operation interrupted",
	Storage:             "could not save account data",
	InvalidInput:        "invalid request",
	DuplicateWallet:     "wallet already attached",
}

// String returns the stable machine-readable name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error is a classified failure. Op names the operation that failed and Err
// keeps the underlying cause for logs.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := messages[e.Kind]
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *Error of the same kind, which lets
// the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// Sentinels for errors.Is.
var (
	ErrDuplicateUsername   = &Error{Kind: DuplicateUsername}
	ErrInvalidCredentials  = &Error{Kind: InvalidCredentials}
	ErrNoWalletLoaded      = &Error{Kind: NoWalletLoaded}
	ErrInvalidPassword     = &Error{Kind: InvalidPassword}
	ErrKeystoreNotFound    = &Error{Kind: KeystoreNotFound}
	ErrKeystoreCorrupt     = &Error{Kind: KeystoreCorrupt}
	ErrKeystoreCreation    = &Error{Kind: KeystoreCreation}
	ErrNetwork             = &Error{Kind: Network}
	ErrTransactionRejected = &Error{Kind: TransactionRejected}
	ErrInterrupted         = &Error{Kind: Interrupted}
	ErrStorage             = &Error{Kind: Storage}
	ErrInvalidInput        = &Error{Kind: InvalidInput}
	ErrDuplicateWallet     = &Error{Kind: DuplicateWallet}
)

// New builds a classified error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds a classified error with a formatted cause.
func Newf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err unless it already carries a kind, in which case it is
// returned unchanged so the innermost classification wins.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return New(kind, op, err)
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Unknown
}

// Message is the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return messages[KindOf(err)]
}
