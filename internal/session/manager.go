package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tokenIssuer = "eth-wallet"

// Accounts is the part of the registry the manager needs.
type Accounts interface {
	Directory
	Register(username string, password []byte) error
	Authenticate(username string, password []byte) error
}

// Claims are carried by session tokens.
type Claims struct {
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

// Manager issues session tokens and keeps the live sessions. A user has at
// most one session; logging in again replaces it.
type Manager struct {
	accounts Accounts
	wallets  Wallets
	ledger   Ledger
	secret   []byte
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session // by session id
	byUser   map[string]string   // username -> session id
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithSecret sets the HMAC key for tokens. An empty secret makes the manager
// generate a random one, which invalidates tokens on restart.
func WithSecret(secret []byte) ManagerOption {
	return func(m *Manager) { m.secret = secret }
}

// WithTTL sets how long an idle session stays valid.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) { m.ttl = ttl }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a Manager.
func NewManager(accounts Accounts, wallets Wallets, l Ledger, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		accounts: accounts,
		wallets:  wallets,
		ledger:   l,
		ttl:      30 * time.Minute,
		logger:   zap.NewNop(),
		now:      time.Now,
		sessions: make(map[string]*Session),
		byUser:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	if len(m.secret) == 0 {
		m.secret = make([]byte, 32)
		if _, err := rand.Read(m.secret); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		m.logger.Warn("SESSION_SECRET not set, using an ephemeral key")
	}
	return m, nil
}

// Signup registers a new user.
// password must be []byte for security (caller should zero it after use)
func (m *Manager) Signup(username string, password []byte) error {
	return m.accounts.Register(username, password)
}

// Login authenticates the user and starts a session. It returns the bearer
// token for later calls.
// password must be []byte for security (caller should zero it after use)
func (m *Manager) Login(username string, password []byte) (string, *Session, error) {
	if err := m.accounts.Authenticate(username, password); err != nil {
		m.logger.Info("login failed", zap.String("username", username))
		return "", nil, err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", nil, apperr.New(apperr.Unknown, "login", err)
	}
	now := m.now()

	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       id.String(),
			Issuer:   tokenIssuer,
			Subject:  username,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, apperr.New(apperr.Unknown, "login", fmt.Errorf("failed to sign token: %w", err))
	}

	s := newSession(id.String(), username, m.wallets, m.accounts, m.ledger, now)

	m.mu.Lock()
	if old, ok := m.byUser[username]; ok {
		delete(m.sessions, old)
	}
	m.sessions[s.id] = s
	m.byUser[username] = s.id
	m.mu.Unlock()

	m.logger.Info("user logged in", zap.String("username", username), zap.String("sid", s.id))
	return token, s, nil
}

// ExpiresAt is when s expires if it stays idle from now on.
func (m *Manager) ExpiresAt(s *Session) time.Time {
	return time.Unix(0, s.lastSeen.Load()).Add(m.ttl)
}

// Resolve verifies token and returns its live session.
func (m *Manager) Resolve(token string) (*Session, error) {
	const op = "resolve session"

	claims, err := m.parse(token)
	if err != nil {
		return nil, apperr.New(apperr.InvalidCredentials, op, err)
	}

	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[claims.ID]
	if !ok || s.username != claims.Username {
		return nil, apperr.Newf(apperr.InvalidCredentials, op, "session is not active")
	}
	if s.idleSince(now) > m.ttl {
		m.drop(s)
		return nil, apperr.Newf(apperr.InvalidCredentials, op, "session expired")
	}
	s.touch(now)
	return s, nil
}

// Logout ends the session of token.
func (m *Manager) Logout(token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return apperr.New(apperr.InvalidCredentials, "logout", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[claims.ID]; ok {
		m.drop(s)
		m.logger.Info("user logged out", zap.String("username", s.username), zap.String("sid", s.id))
	}
	return nil
}

// Sweep drops every session idle for longer than the TTL and returns how
// many were dropped.
func (m *Manager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, s := range m.sessions {
		if s.idleSince(now) > m.ttl {
			m.drop(s)
			n++
		}
	}
	return n
}

// drop removes s. Callers must hold m.mu.
func (m *Manager) drop(s *Session) {
	delete(m.sessions, s.id)
	if m.byUser[s.username] == s.id {
		delete(m.byUser, s.username)
	}
}

func (m *Manager) parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("token has no session id")
	}
	return claims, nil
}
