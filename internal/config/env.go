package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/crypto"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: wallet passwords are never part of the config; the CLI prompts for them.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	DataDir         string `envconfig:"DATA_DIR" default:"./data"`
	KeystoreDir     string `envconfig:"KEYSTORE_DIR"`                    // defaults to DATA_DIR/keystore
	RegistryBackend string `envconfig:"REGISTRY_BACKEND" default:"file"` // "file" or "leveldb"
	RegistryPath    string `envconfig:"REGISTRY_PATH"`                   // defaults to DATA_DIR/users.json or DATA_DIR/users.db

	EthRPCURL             string `envconfig:"ETH_RPC_URL" default:"http://127.0.0.1:8545"`
	TxGasLimit            uint64 `envconfig:"TX_GAS_LIMIT" default:"21000"`
	ReceiptPollSeconds    int    `envconfig:"RECEIPT_POLL_SECONDS" default:"2"`
	ReceiptTimeoutSeconds int    `envconfig:"RECEIPT_TIMEOUT_SECONDS" default:"600"`

	SessionSecret     string `envconfig:"SESSION_SECRET"`
	SessionTTLMinutes int    `envconfig:"SESSION_TTL_MINUTES" default:"30"`

	// Light scrypt parameters make keystores fast to open but cheap to brute-force.
	// Only meant for development chains.
	KeystoreLightScrypt bool   `envconfig:"KEYSTORE_LIGHT_SCRYPT" default:"false"`
	LogLevel            string `envconfig:"LOG_LEVEL" default:"info"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads .env (if present) and then configuration from environment variables.
func Init() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

func (c *Config) validate() error {
	switch c.RegistryBackend {
	case "file", "leveldb":
	default:
		return fmt.Errorf("REGISTRY_BACKEND must be file or leveldb, got %q", c.RegistryBackend)
	}
	if c.ReceiptPollSeconds <= 0 {
		return errors.New("RECEIPT_POLL_SECONDS must be positive")
	}
	if c.ReceiptTimeoutSeconds <= 0 {
		return errors.New("RECEIPT_TIMEOUT_SECONDS must be positive")
	}
	if c.SessionTTLMinutes <= 0 {
		return errors.New("SESSION_TTL_MINUTES must be positive")
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetKeystoreDir returns the directory holding keystore files
func GetKeystoreDir() string {
	c := Get()
	if c.KeystoreDir != "" {
		return c.KeystoreDir
	}
	return filepath.Join(c.DataDir, "keystore")
}

// GetRegistryBackend returns the durable store kind for the user registry
func GetRegistryBackend() string {
	return Get().RegistryBackend
}

// GetRegistryPath returns the registry file (or leveldb directory) path
func GetRegistryPath() string {
	c := Get()
	if c.RegistryPath != "" {
		return c.RegistryPath
	}
	if c.RegistryBackend == "leveldb" {
		return filepath.Join(c.DataDir, "users.db")
	}
	return filepath.Join(c.DataDir, "users.json")
}

// GetEthRPCURL returns the ledger JSON-RPC endpoint
func GetEthRPCURL() string {
	return Get().EthRPCURL
}

// GetTxGasLimit returns the gas limit for plain value transfers
func GetTxGasLimit() uint64 {
	return Get().TxGasLimit
}

// GetReceiptPollInterval returns how often a pending transfer's receipt is polled
func GetReceiptPollInterval() time.Duration {
	return time.Duration(Get().ReceiptPollSeconds) * time.Second
}

// GetReceiptTimeout returns how long a transfer waits for its receipt
func GetReceiptTimeout() time.Duration {
	return time.Duration(Get().ReceiptTimeoutSeconds) * time.Second
}

// GetLogLevel returns the zap level name
func GetLogLevel() string {
	return Get().LogLevel
}

// GetKeystoreScrypt returns the scrypt cost for new keystores
func GetKeystoreScrypt() crypto.ScryptParams {
	if Get().KeystoreLightScrypt {
		return crypto.ScryptParams{N: crypto.LightScryptN, P: crypto.LightScryptP}
	}
	return crypto.ScryptParams{N: crypto.StandardScryptN, P: crypto.StandardScryptP}
}

// GetSessionTTL returns the idle lifetime of a login session
func GetSessionTTL() time.Duration {
	return time.Duration(Get().SessionTTLMinutes) * time.Minute
}

// GetSessionSecretBytes returns the HMAC key for session tokens.
// When SESSION_SECRET is unset the caller should generate an ephemeral one.
func GetSessionSecretBytes() []byte {
	return []byte(Get().SessionSecret)
}

// PromptForPassword prompts for a password in the terminal without echo.
// Caller must zero the returned slice after use.
func PromptForPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	out := make([]byte, len(raw))
	copy(out, raw)
	clear(raw)
	return out, nil
}
