package handler

import (
	"net/http"

	"github.com/AlexZinkM/eth-wallet/internal/model"
	"github.com/AlexZinkM/eth-wallet/internal/session"
)

// AuthHandler serves signup, login and logout.
type AuthHandler struct {
	manager *session.Manager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(manager *session.Manager) *AuthHandler {
	return &AuthHandler{manager: manager}
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	var req model.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return "", nil, false
	}
	if req.Username == "" || req.Password == "" {
		badRequest(w, "username and password are required")
		return "", nil, false
	}
	return req.Username, []byte(req.Password), true
}

// Signup handles POST /auth/signup
// @Summary      Register a user
// @Description  Creates an account with no wallets
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.CredentialsRequest  true  "Credentials"
// @Success      201      {object}  model.SignupResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	username, password, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	defer clear(password) // Always clear password from memory

	if err := h.manager.Signup(username, password); err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.SignupResponse{
		Success: true,
		Message: "User registered successfully",
	})
}

// Login handles POST /auth/login
// @Summary      Log in
// @Description  Authenticates the user and returns a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.CredentialsRequest  true  "Credentials"
// @Success      200      {object}  model.LoginResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	username, password, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	defer clear(password)

	token, s, err := h.manager.Login(username, password)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{
		Token:     token,
		Username:  s.Username(),
		ExpiresAt: h.manager.ExpiresAt(s).Unix(),
	})
}

// Logout handles POST /auth/logout
// @Summary      Log out
// @Description  Ends the session and forgets the unlocked wallet
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if err := h.manager.Logout(tokenFrom(r.Context())); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
