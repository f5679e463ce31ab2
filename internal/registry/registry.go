// Package registry holds user accounts and the wallets attached to them.
//
// The in-memory map is the only view callers read. Every mutation goes
// through update, which persists a modified copy first and swaps it into the
// map only after the store reports success.
package registry

import (
	"sync"
	"time"

	"github.com/AlexZinkM/eth-wallet/internal/apperr"
	"github.com/AlexZinkM/eth-wallet/internal/crypto"
	"github.com/AlexZinkM/eth-wallet/internal/model"

	"go.uber.org/zap"
)

// Registry is the durable username -> account mapping.
type Registry struct {
	store  Store
	cost   int
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	users map[string]model.UserRecord
}

// Option configures a Registry.
type Option func(*Registry)

// WithCredentialCost sets the bcrypt cost for new credentials.
func WithCredentialCost(cost int) Option {
	return func(r *Registry) { r.cost = cost }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New loads every record from store.
func New(store Store, opts ...Option) (*Registry, error) {
	r := &Registry{
		store:  store,
		cost:   crypto.DefaultCredentialCost,
		logger: zap.NewNop(),
		now:    time.Now,
		users:  make(map[string]model.UserRecord),
	}
	for _, opt := range opts {
		opt(r)
	}

	records, err := store.Load()
	if err != nil {
		return nil, apperr.New(apperr.Storage, "load registry", err)
	}
	for _, rec := range records {
		r.users[rec.Username] = rec
	}
	r.logger.Info("registry loaded", zap.Int("users", len(r.users)))
	return r, nil
}

// Open opens the store for backend at path and loads it.
func Open(backend, path string, opts ...Option) (*Registry, error) {
	store, err := OpenStore(backend, path)
	if err != nil {
		return nil, apperr.New(apperr.Storage, "open registry", err)
	}
	r, err := New(store, opts...)
	if err != nil {
		store.Close()
		return nil, err
	}
	return r, nil
}

// update applies fn to a copy of username's record, persists the copy and
// only then publishes it. create selects whether the user must be absent
// (true) or present (false). Callers must hold r.mu for writing.
func (r *Registry) update(op, username string, create bool, fn func(rec *model.UserRecord) error) error {
	cur, exists := r.users[username]
	switch {
	case create && exists:
		return apperr.New(apperr.DuplicateUsername, op, nil)
	case !create && !exists:
		return apperr.New(apperr.InvalidCredentials, op, nil)
	}

	next := cloneRecord(cur)
	if err := fn(&next); err != nil {
		return err
	}

	if err := r.store.Put(next); err != nil {
		r.logger.Error("registry write failed",
			zap.String("op", op),
			zap.String("username", username),
			zap.Error(err))
		return apperr.New(apperr.Storage, op, err)
	}
	r.users[username] = next
	return nil
}

// Register creates an account with no wallets.
// password must be []byte for security (caller should zero it after use)
func (r *Registry) Register(username string, password []byte) error {
	const op = "register"
	if username == "" || len(password) == 0 {
		return apperr.Newf(apperr.InvalidCredentials, op, "username and password are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[username]; exists {
		return apperr.New(apperr.DuplicateUsername, op, nil)
	}

	// Hash outside update so a bcrypt failure is never reported as Storage
	hash, err := crypto.HashCredential(password, r.cost)
	if err != nil {
		return apperr.New(apperr.InvalidCredentials, op, err)
	}

	err = r.update(op, username, true, func(rec *model.UserRecord) error {
		rec.Username = username
		rec.Credential = hash
		rec.Wallets = []model.WalletRef{}
		rec.CreatedAt = r.now().UTC()
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.Info("user registered", zap.String("username", username))
	return nil
}

// Authenticate returns nil iff username exists and password matches.
// password must be []byte for security (caller should zero it after use)
func (r *Registry) Authenticate(username string, password []byte) error {
	const op = "authenticate"

	r.mu.RLock()
	rec, exists := r.users[username]
	r.mu.RUnlock()

	if !exists {
		crypto.BurnCredentialCheck(password, r.cost)
		return apperr.New(apperr.InvalidCredentials, op, nil)
	}
	if !crypto.VerifyCredential(rec.Credential, password) {
		return apperr.New(apperr.InvalidCredentials, op, nil)
	}
	return nil
}

// Exists reports whether username is registered.
func (r *Registry) Exists(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[username]
	return ok
}

// ListWallets returns a copy of the user's wallet refs. Unknown users get an
// empty list.
func (r *Registry) ListWallets(username string) []model.WalletRef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.users[username]
	out := make([]model.WalletRef, len(rec.Wallets))
	if ok {
		copy(out, rec.Wallets)
	}
	return out
}

// FindWallet returns the user's wallet ref named name.
func (r *Registry) FindWallet(username, name string) (model.WalletRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.users[username].Wallets {
		if w.Name == name {
			return w, true
		}
	}
	return model.WalletRef{}, false
}

// AttachWallet appends ref to username's wallets.
func (r *Registry) AttachWallet(username string, ref model.WalletRef) error {
	const op = "attach wallet"
	if ref.Name == "" {
		return apperr.Newf(apperr.InvalidInput, op, "wallet name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.update(op, username, false, func(rec *model.UserRecord) error {
		for _, w := range rec.Wallets {
			if w.Name == ref.Name {
				return apperr.Newf(apperr.DuplicateWallet, op, "wallet %s", ref.Name)
			}
		}
		rec.Wallets = append(rec.Wallets, ref)
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.Info("wallet attached",
		zap.String("username", username),
		zap.String("wallet", ref.Name),
		zap.String("address", ref.Address))
	return nil
}

// ImportReport summarizes Import.
type ImportReport struct {
	Imported []string
	Skipped  []string
}

// Import adds records whose username is not yet registered. Existing users
// are skipped and never overwritten. It stops at the first write failure.
func (r *Registry) Import(records []model.UserRecord) (ImportReport, error) {
	const op = "import users"
	var report ImportReport

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, in := range records {
		if _, exists := r.users[in.Username]; exists {
			report.Skipped = append(report.Skipped, in.Username)
			continue
		}
		err := r.update(op, in.Username, true, func(rec *model.UserRecord) error {
			*rec = cloneRecord(in)
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = r.now().UTC()
			}
			return nil
		})
		if err != nil {
			return report, err
		}
		report.Imported = append(report.Imported, in.Username)
	}
	return report, nil
}

// Close closes the underlying store.
func (r *Registry) Close() error {
	return r.store.Close()
}
