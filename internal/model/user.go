package model

// CredentialsRequest represents request for POST /auth/signup and POST /auth/login
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignupResponse represents response for POST /auth/signup
type SignupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoginResponse represents response for POST /auth/login
type LoginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresAt int64  `json:"expiresAt"` // unix seconds
}
