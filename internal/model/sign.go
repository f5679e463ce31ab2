package model

// SignRequest represents request for POST /sign
type SignRequest struct {
	Message string `json:"message" binding:"required"`
}

// SignResponse represents response for POST /sign
type SignResponse struct {
	Address   string `json:"address"`
	Signature string `json:"signature"` // 0x + 130 hex chars, r|s|v
}

// VerifyRequest represents request for POST /verify
type VerifyRequest struct {
	Message   string `json:"message" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	Address   string `json:"address" binding:"required"` // expected signer
}

// VerifyResponse represents response for POST /verify
type VerifyResponse struct {
	Signer string `json:"signer"`
	Valid  bool   `json:"valid"`
}
