package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"
	"github.com/AlexZinkM/eth-wallet/internal/handler"
	"github.com/AlexZinkM/eth-wallet/internal/session"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// SetupRouter sets up router with handlers
func SetupRouter(manager *session.Manager, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	authHandler := handler.NewAuthHandler(manager)
	walletHandler := handler.NewWalletHandler(logger)
	auth := RequireSession(manager)

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Auth endpoints
	mux.HandleFunc("/auth/signup", authHandler.Signup)
	mux.HandleFunc("/auth/login", authHandler.Login)
	mux.Handle("/auth/logout", auth(http.HandlerFunc(authHandler.Logout)))

	// Wallet endpoints
	mux.Handle("/wallets", auth(http.HandlerFunc(walletHandler.Wallets)))
	mux.Handle("/wallets/open", auth(http.HandlerFunc(walletHandler.Open)))
	mux.Handle("/wallets/qr", auth(http.HandlerFunc(walletHandler.QR)))
	mux.Handle("/sign", auth(http.HandlerFunc(walletHandler.Sign)))
	mux.HandleFunc("/verify", walletHandler.Verify)

	// Ledger endpoints
	mux.Handle("/balance", auth(http.HandlerFunc(walletHandler.GetBalance)))
	mux.Handle("/transfer", auth(http.HandlerFunc(walletHandler.Transfer)))
	mux.Handle("/receipt", auth(http.HandlerFunc(walletHandler.Receipt)))

	return AccessLog(logger)(mux)
}

// RequireSession resolves the bearer token and attaches its session to the
// request context.
func RequireSession(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				handler.WriteError(w, apperr.Newf(apperr.InvalidCredentials, "authorize", "missing bearer token"))
				return
			}
			s, err := manager.Resolve(token)
			if err != nil {
				handler.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(handler.WithSession(r.Context(), s, token)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// AccessLog logs one line per request.
func AccessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
