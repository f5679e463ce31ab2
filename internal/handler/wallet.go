package handler

import (
	"net/http"
	"strings"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"
	"github.com/AlexZinkM/eth-wallet/internal/ledger"
	"github.com/AlexZinkM/eth-wallet/internal/model"
	"github.com/AlexZinkM/eth-wallet/internal/session"
	"github.com/AlexZinkM/eth-wallet/internal/signing"
	"github.com/AlexZinkM/eth-wallet/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// WalletHandler serves wallet, signing and ledger endpoints for the session
// attached by the auth middleware.
type WalletHandler struct {
	logger *zap.Logger
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(logger *zap.Logger) *WalletHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WalletHandler{logger: logger}
}

func (h *WalletHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := SessionFrom(r.Context())
	if !ok {
		WriteError(w, apperr.New(apperr.InvalidCredentials, "resolve session", nil))
	}
	return s, ok
}

// Wallets handles GET and POST /wallets
func (h *WalletHandler) Wallets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.List(w, r)
	case http.MethodPost:
		h.Create(w, r)
	default:
		methodNotAllowed(w, "GET or POST")
	}
}

// List handles GET /wallets
// @Summary      List wallets
// @Description  Lists the user's wallets and the currently unlocked one
// @Tags         wallets
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  model.WalletListResponse
// @Router       /wallets [get]
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	resp := model.WalletListResponse{
		Username: s.Username(),
		Wallets:  s.ListWallets(),
	}
	if addr, ok := s.ActiveAddress(); ok {
		resp.Active = addr.Hex()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /wallets
// @Summary      Create wallet
// @Description  Generates a new key, stores it encrypted with the password and attaches it to the user
// @Tags         wallets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateWalletRequest  true  "Wallet password"
// @Success      201      {object}  model.CreateWalletResponse
// @Failure      500      {object}  model.ErrorResponse
// @Router       /wallets [post]
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req model.CreateWalletRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	password := []byte(req.Password)
	defer clear(password) // Always clear password from memory

	ref, err := s.CreateWallet(password)
	if err != nil {
		h.logger.Warn("create wallet failed", zap.String("username", s.Username()), zap.Error(err))
		WriteError(w, err)
		return
	}

	resp := model.CreateWalletResponse{
		Success: true,
		Message: "Wallet generated successfully",
		Wallet:  ref,
	}
	// The wallet exists at this point, so a QR failure is only logged
	if qr, err := wallet.AddressQR(common.HexToAddress(ref.Address)); err == nil {
		resp.QR = qr
	} else {
		h.logger.Warn("qr generation failed", zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Open handles POST /wallets/open
// @Summary      Unlock wallet
// @Description  Decrypts a wallet and makes it the active one for signing and transfers
// @Tags         wallets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      model.OpenWalletRequest  true  "Wallet name and password"
// @Success      200      {object}  model.OpenWalletResponse
// @Failure      403      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Router       /wallets/open [post]
func (h *WalletHandler) Open(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req model.OpenWalletRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}
	password := []byte(req.Password)
	defer clear(password)

	addr, err := s.OpenWallet(req.Name, password)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.OpenWalletResponse{Address: addr.Hex()})
}

// QR handles GET /wallets/qr
// @Summary      Receive QR code
// @Description  Returns a base64 PNG QR code of the active wallet's address
// @Tags         wallets
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  model.QRResponse
// @Failure      412  {object}  model.ErrorResponse
// @Router       /wallets/qr [get]
func (h *WalletHandler) QR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	addr, ok := s.ActiveAddress()
	if !ok {
		WriteError(w, apperr.New(apperr.NoWalletLoaded, "address qr", nil))
		return
	}
	qr, err := wallet.AddressQR(addr)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.QRResponse{Address: addr.Hex(), QR: qr})
}

// Sign handles POST /sign
// @Summary      Sign message
// @Description  Signs keccak256(message) with the prefixed-message scheme; returns r|s|v as 0x + 130 hex chars
// @Tags         wallets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignRequest  true  "Message"
// @Success      200      {object}  model.SignResponse
// @Failure      412      {object}  model.ErrorResponse
// @Router       /sign [post]
func (h *WalletHandler) Sign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req model.SignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sig, addr, err := s.Sign([]byte(req.Message))
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.SignResponse{Address: addr.Hex(), Signature: sig.Hex()})
}

// Verify handles POST /verify
// @Summary      Verify signature
// @Description  Recovers the signer of a message signature and compares it with the expected address
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.VerifyRequest  true  "Message, signature and expected signer"
// @Success      200      {object}  model.VerifyResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /verify [post]
func (h *WalletHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req model.VerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !common.IsHexAddress(req.Address) {
		badRequest(w, "address is not a valid hex address")
		return
	}
	sig, err := signing.ParseSignature(req.Signature)
	if err != nil {
		WriteError(w, apperr.New(apperr.InvalidInput, "verify signature", err))
		return
	}

	signer, err := signing.Recover([]byte(req.Message), sig)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.VerifyResponse{
		Signer: signer.Hex(),
		Valid:  signer == common.HexToAddress(req.Address),
	})
}

// GetBalance handles GET /balance
// @Summary      Get wallet balance
// @Description  Gets the active wallet's balance in wei and ether
// @Tags         ledger
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  model.BalanceResponse
// @Failure      412  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /balance [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	bal, err := s.Balance(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.BalanceResponse{
		Address: bal.Address.Hex(),
		Wei:     bal.Wei.String(),
		Ether:   bal.Ether,
	})
}

// Transfer handles POST /transfer
// @Summary      Send ether
// @Description  Sends ether from the active wallet and waits until the transaction is mined
// @Tags         ledger
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      model.TransferRequest  true  "Recipient and amount in ether"
// @Success      200      {object}  model.TransferResponse
// @Failure      408      {object}  model.ErrorResponse
// @Failure      412      {object}  model.ErrorResponse
// @Failure      422      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /transfer [post]
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req model.TransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	receipt, err := s.Transfer(r.Context(), req.ToAddress, req.Amount)
	if err != nil {
		h.logger.Warn("transfer failed", zap.String("username", s.Username()), zap.Error(err))
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receiptResponse(receipt))
}

// Receipt handles GET /receipt
// @Summary      Get receipt
// @Description  Looks up the receipt of a transaction, e.g. after an interrupted transfer
// @Tags         ledger
// @Security     BearerAuth
// @Produce      json
// @Param        hash  query     string  true  "Transaction hash"
// @Success      200   {object}  model.TransferResponse
// @Failure      400   {object}  model.ErrorResponse
// @Failure      422   {object}  model.ErrorResponse
// @Router       /receipt [get]
func (h *WalletHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	hash := strings.TrimSpace(r.URL.Query().Get("hash"))
	if hash == "" {
		badRequest(w, "hash is required")
		return
	}

	receipt, err := s.Receipt(r.Context(), hash)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receiptResponse(receipt))
}

func receiptResponse(r *ledger.Receipt) model.TransferResponse {
	resp := model.TransferResponse{
		TxHash:      r.TxHash.Hex(),
		BlockNumber: r.BlockNumber,
		GasUsed:     r.GasUsed,
		Status:      r.StatusString(),
	}
	if r.AmountWei != nil {
		resp.From = r.From.Hex()
		resp.To = r.To.Hex()
		resp.AmountWei = r.AmountWei.String()
	}
	return resp
}
