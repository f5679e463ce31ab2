package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/AlexZinkM/eth-wallet/internal/model"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	userKeyPrefix = "user:"
	versionKey    = "meta:version"
)

// LevelStore keeps one JSON record per user in LevelDB under user:<name>.
type LevelStore struct {
	db *leveldb.DB
}

// NewLevelStore opens the LevelDB directory at path. LevelDB holds an
// exclusive file lock, so a second process opening the same path fails here.
func NewLevelStore(path string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry db: %w", err)
	}
	s := &LevelStore{db: db}
	if err := s.checkVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *LevelStore) checkVersion() error {
	raw, err := s.db.Get([]byte(versionKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return s.db.Put([]byte(versionKey), []byte(strconv.Itoa(model.RegistrySchemaVersion)), &opt.WriteOptions{Sync: true})
	}
	if err != nil {
		return fmt.Errorf("failed to read registry version: %w", err)
	}
	v, err := strconv.Atoi(string(raw))
	if err != nil || v != model.RegistrySchemaVersion {
		return fmt.Errorf("unsupported registry schema version %q (want %d)", raw, model.RegistrySchemaVersion)
	}
	return nil
}

func userKey(username string) []byte {
	return []byte(userKeyPrefix + username)
}

// Load returns every user record in key order.
func (s *LevelStore) Load() ([]model.UserRecord, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(userKeyPrefix)), nil)
	defer iter.Release()

	var out []model.UserRecord
	for iter.Next() {
		var rec model.UserRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user record %q: %w", iter.Key(), err)
		}
		out = append(out, rec)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate registry db: %w", err)
	}
	return out, nil
}

// Put writes rec with a synced write.
func (s *LevelStore) Put(rec model.UserRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal user record: %w", err)
	}
	batch := new(leveldb.Batch)
	batch.Put(userKey(rec.Username), data)
	if err := s.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("failed to write user record: %w", err)
	}
	return nil
}

// Close releases the database and its lock.
func (s *LevelStore) Close() error {
	return s.db.Close()
}
