package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"
	"github.com/AlexZinkM/eth-wallet/internal/model"
	"github.com/AlexZinkM/eth-wallet/internal/session"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	tokenKey
)

// WithSession returns a context carrying the caller's session and token.
func WithSession(ctx context.Context, s *session.Session, token string) context.Context {
	ctx = context.WithValue(ctx, sessionKey, s)
	return context.WithValue(ctx, tokenKey, token)
}

// SessionFrom returns the session stored by WithSession.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok && s != nil
}

func tokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.DuplicateUsername, apperr.DuplicateWallet:
		return http.StatusConflict
	case apperr.InvalidCredentials:
		return http.StatusUnauthorized
	case apperr.NoWalletLoaded:
		return http.StatusPreconditionFailed
	case apperr.InvalidPassword:
		return http.StatusForbidden
	case apperr.KeystoreNotFound:
		return http.StatusNotFound
	case apperr.KeystoreCorrupt, apperr.TransactionRejected:
		return http.StatusUnprocessableEntity
	case apperr.Network:
		return http.StatusBadGateway
	case apperr.Interrupted:
		return http.StatusRequestTimeout
	case apperr.InvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes err as a model.ErrorResponse. Only classified errors
// expose their cause; anything else is reported generically.
func WriteError(w http.ResponseWriter, err error) {
	resp := model.ErrorResponse{
		Error: apperr.Message(err),
		Code:  apperr.KindOf(err).String(),
	}
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Err != nil {
		resp.Detail = ae.Err.Error()
	}
	writeJSON(w, StatusFor(err), resp)
}

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// decodeJSON reads a size-limited JSON body into v and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, err.Error())
		return false
	}
	return true
}

func badRequest(w http.ResponseWriter, msg string) {
	WriteError(w, apperr.Newf(apperr.InvalidInput, "", "%s", msg))
}

func methodNotAllowed(w http.ResponseWriter, want string) {
	http.Error(w, "Method not allowed. Should be "+want, http.StatusMethodNotAllowed)
}
