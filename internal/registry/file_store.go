package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/AlexZinkM/eth-wallet/internal/crypto"
	"github.com/AlexZinkM/eth-wallet/internal/model"
)

// FileStore keeps all users in one JSON document which is rewritten
// atomically on every Put.
type FileStore struct {
	path string

	mu    sync.Mutex
	users []model.UserRecord
	index map[string]int
}

// NewFileStore opens (or prepares to create) the registry file at path.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create registry dir: %w", err)
	}
	return &FileStore{path: path, index: make(map[string]int)}, nil
}

// Load reads the registry file. A missing file is an empty registry.
func (s *FileStore) Load() ([]model.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fileData, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.users, s.index = nil, make(map[string]int)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	// Skip UTF-8 BOM if present
	if len(fileData) >= 3 && fileData[0] == 0xEF && fileData[1] == 0xBB && fileData[2] == 0xBF {
		fileData = fileData[3:]
	}

	var doc model.RegistryFile
	if err := json.Unmarshal(fileData, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registry file: %w", err)
	}
	if doc.Version != model.RegistrySchemaVersion {
		return nil, fmt.Errorf("unsupported registry schema version %d (want %d)", doc.Version, model.RegistrySchemaVersion)
	}

	s.users = doc.Users
	s.index = make(map[string]int, len(doc.Users))
	for i, u := range doc.Users {
		if _, dup := s.index[u.Username]; dup {
			return nil, fmt.Errorf("registry file lists user %q twice", u.Username)
		}
		s.index[u.Username] = i
	}

	out := make([]model.UserRecord, len(s.users))
	for i, u := range s.users {
		out[i] = cloneRecord(u)
	}
	return out, nil
}

// Put inserts or replaces rec and rewrites the file. On failure the store's
// view is left as it was before the call.
func (s *FileStore) Put(rec model.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.UserRecord, len(s.users), len(s.users)+1)
	copy(next, s.users)
	i, exists := s.index[rec.Username]
	if exists {
		next[i] = cloneRecord(rec)
	} else {
		next = append(next, cloneRecord(rec))
	}

	fileData, err := json.MarshalIndent(model.RegistryFile{
		Version: model.RegistrySchemaVersion,
		Users:   next,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry file: %w", err)
	}

	if err := crypto.WriteFileAtomic(s.path, fileData); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	s.users = next
	if !exists {
		s.index[rec.Username] = len(next) - 1
	}
	return nil
}

// Close is a no-op; every Put is already on disk.
func (s *FileStore) Close() error {
	return nil
}
