// Package ledger talks to an Ethereum JSON-RPC node: balances, value
// transfers and receipts.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"
	"github.com/AlexZinkM/eth-wallet/internal/common"
	"github.com/AlexZinkM/eth-wallet/internal/wallet"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

const (
	defaultGasLimit       = 21000 // plain value transfer
	defaultPollInterval   = 2 * time.Second
	defaultReceiptTimeout = 10 * time.Minute
)

//go:generate mockgen -destination=mock_ledger/mock_backend.go -package=mock_ledger github.com/AlexZinkM/eth-wallet/internal/ledger Backend

// Backend is the subset of the node API the client needs. *ethclient.Client
// satisfies it.
type Backend interface {
	BalanceAt(ctx context.Context, account ethcommon.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account ethcommon.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error)
}

// Balance of one address.
type Balance struct {
	Address ethcommon.Address
	Wei     *big.Int
	Ether   string
}

// Receipt describes a mined transaction. From, To and AmountWei are only
// known for transfers submitted through this client.
type Receipt struct {
	TxHash      ethcommon.Hash
	From        ethcommon.Address
	To          ethcommon.Address
	AmountWei   *big.Int
	BlockNumber uint64
	GasUsed     uint64
	Status      uint64
}

// Succeeded reports whether the transaction executed successfully.
func (r *Receipt) Succeeded() bool {
	return r.Status == types.ReceiptStatusSuccessful
}

// StatusString is "success" or "failed".
func (r *Receipt) StatusString() string {
	if r.Succeeded() {
		return "success"
	}
	return "failed"
}

// Client is the ledger adapter.
type Client struct {
	backend        Backend
	gasLimit       uint64
	pollInterval   time.Duration
	receiptTimeout time.Duration
	logger         *zap.Logger
	closer         func()
}

// Option configures a Client.
type Option func(*Client)

// WithGasLimit sets the gas limit of transfers.
func WithGasLimit(limit uint64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.gasLimit = limit
		}
	}
}

// WithReceiptPolling sets how often and how long SubmitTransfer waits for a
// receipt.
func WithReceiptPolling(interval, timeout time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
		if timeout > 0 {
			c.receiptTimeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient wraps backend.
func NewClient(backend Backend, opts ...Option) *Client {
	c := &Client{
		backend:        backend,
		gasLimit:       defaultGasLimit,
		pollInterval:   defaultPollInterval,
		receiptTimeout: defaultReceiptTimeout,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial connects to the node at rpcURL. The connection is lazy for HTTP
// endpoints, so an unreachable node surfaces on the first call.
func Dial(ctx context.Context, rpcURL string, opts ...Option) (*Client, error) {
	ec, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, apperr.New(apperr.Network, "dial ledger", fmt.Errorf("failed to connect to %s: %w", rpcURL, err))
	}
	c := NewClient(ec, opts...)
	c.closer = ec.Close
	c.logger.Info("ledger client initialized", zap.String("rpc", rpcURL))
	return c, nil
}

// Close releases the node connection.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// GetBalance returns the latest balance of the wallet's address.
func (c *Client) GetBalance(ctx context.Context, w *wallet.Unlocked) (Balance, error) {
	const op = "get balance"
	if w == nil {
		return Balance{}, apperr.New(apperr.NoWalletLoaded, op, nil)
	}

	wei, err := c.backend.BalanceAt(ctx, w.Address(), nil)
	if err != nil {
		return Balance{}, classifyQuery(op, err)
	}
	return Balance{Address: w.Address(), Wei: wei, Ether: common.WeiToEther(wei)}, nil
}

// SubmitTransfer sends amountEther from the wallet to toAddress and blocks
// until the transaction is mined, ctx is done or the receipt timeout passes.
// Nothing local is changed, so an interrupted wait can be resumed with
// Receipt using the hash in the error.
func (c *Client) SubmitTransfer(ctx context.Context, w *wallet.Unlocked, toAddress, amountEther string) (*Receipt, error) {
	const op = "submit transfer"
	if w == nil {
		return nil, apperr.New(apperr.NoWalletLoaded, op, nil)
	}

	toAddress = strings.TrimSpace(toAddress)
	if !ethcommon.IsHexAddress(toAddress) {
		return nil, apperr.Newf(apperr.TransactionRejected, op, "invalid recipient address %q", toAddress)
	}
	to := ethcommon.HexToAddress(toAddress)

	amount, err := common.EtherToWei(amountEther)
	if err != nil {
		return nil, apperr.New(apperr.TransactionRejected, op, fmt.Errorf("invalid amount: %w", err))
	}
	if amount.Sign() <= 0 {
		return nil, apperr.Newf(apperr.TransactionRejected, op, "amount must be greater than zero")
	}

	from := w.Address()
	c.logger.Info("sending transfer",
		zap.String("from", from.Hex()),
		zap.String("to", to.Hex()),
		zap.String("amount_wei", amount.String()))

	// Get nonce
	nonce, err := c.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, classifyQuery(op, fmt.Errorf("failed to get nonce: %w", err))
	}

	// Get gas price
	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, classifyQuery(op, fmt.Errorf("failed to get gas price: %w", err))
	}

	chainID, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, classifyQuery(op, fmt.Errorf("failed to get chain id: %w", err))
	}

	tx := types.NewTransaction(nonce, to, amount, c.gasLimit, gasPrice, nil)
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), w.PrivateKey())
	if err != nil {
		return nil, apperr.New(apperr.TransactionRejected, op, fmt.Errorf("failed to sign transaction: %w", err))
	}

	if err := c.backend.SendTransaction(ctx, signedTx); err != nil {
		return nil, classify(op, fmt.Errorf("failed to send transaction: %w", err))
	}
	hash := signedTx.Hash()
	c.logger.Info("transfer sent", zap.String("tx_hash", hash.Hex()), zap.Uint64("nonce", nonce))

	receipt, err := c.waitReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	receipt.From, receipt.To, receipt.AmountWei = from, to, amount

	if !receipt.Succeeded() {
		c.logger.Warn("transfer failed on chain", zap.String("tx_hash", hash.Hex()))
		return receipt, apperr.Newf(apperr.TransactionRejected, op, "transaction %s reverted", hash.Hex())
	}
	c.logger.Info("transfer mined",
		zap.String("tx_hash", hash.Hex()),
		zap.Uint64("block", receipt.BlockNumber),
		zap.Uint64("gas_used", receipt.GasUsed))
	return receipt, nil
}

// waitReceipt polls for hash's receipt until it exists or the wait ends.
func (c *Client) waitReceipt(ctx context.Context, hash ethcommon.Hash) (*Receipt, error) {
	const op = "wait for receipt"

	ctx, cancel := context.WithTimeout(ctx, c.receiptTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		r, err := c.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			return toReceipt(r), nil
		}
		if ctx.Err() != nil {
			return nil, apperr.New(apperr.Interrupted, op, fmt.Errorf("transaction %s still pending: %w", hash.Hex(), ctx.Err()))
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, classifyQuery(op, fmt.Errorf("transaction %s: %w", hash.Hex(), err))
		}

		select {
		case <-ctx.Done():
			return nil, apperr.New(apperr.Interrupted, op, fmt.Errorf("transaction %s still pending: %w", hash.Hex(), ctx.Err()))
		case <-ticker.C:
		}
	}
}

// Receipt looks up the receipt of a transaction once.
func (c *Client) Receipt(ctx context.Context, txHash string) (*Receipt, error) {
	const op = "get receipt"

	txHash = strings.TrimSpace(txHash)
	raw := strings.TrimPrefix(strings.TrimPrefix(txHash, "0x"), "0X")
	if len(raw) != 2*ethcommon.HashLength || !isHex(raw) {
		return nil, apperr.Newf(apperr.InvalidInput, op, "malformed transaction hash %q", txHash)
	}

	r, err := c.backend.TransactionReceipt(ctx, ethcommon.HexToHash(raw))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, apperr.Newf(apperr.TransactionRejected, op, "receipt not found")
		}
		return nil, classifyQuery(op, err)
	}
	return toReceipt(r), nil
}

func toReceipt(r *types.Receipt) *Receipt {
	out := &Receipt{
		TxHash:  r.TxHash,
		GasUsed: r.GasUsed,
		Status:  r.Status,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out
}

// classify maps a node call failure: a JSON-RPC error means the node
// answered and refused, anything else is a transport failure.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.New(apperr.Interrupted, op, err)
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return apperr.New(apperr.TransactionRejected, op, err)
	}
	return apperr.New(apperr.Network, op, err)
}

// classifyQuery is classify for read-only queries, where any failure is
// reported as a network problem.
func classifyQuery(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.New(apperr.Interrupted, op, err)
	}
	return apperr.New(apperr.Network, op, err)
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
