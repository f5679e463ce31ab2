package registry

import (
	"fmt"

	"github.com/AlexZinkM/eth-wallet/internal/model"
)

// Store is the durable side of the registry. Put must be durable when it
// returns nil; the registry only updates its cache after that.
//
// A Store is owned by one process. Opening the same store from two processes
// is unsupported: the leveldb store refuses via its LOCK file, the file store
// does not detect it and the last writer wins.
type Store interface {
	Load() ([]model.UserRecord, error)
	Put(rec model.UserRecord) error
	Close() error
}

// Backend names accepted by OpenStore.
const (
	BackendFile    = "file"
	BackendLevelDB = "leveldb"
)

// OpenStore opens the durable store for backend at path.
func OpenStore(backend, path string) (Store, error) {
	switch backend {
	case BackendFile:
		return NewFileStore(path)
	case BackendLevelDB:
		return NewLevelStore(path)
	default:
		return nil, fmt.Errorf("unknown registry backend %q", backend)
	}
}

func cloneRecord(rec model.UserRecord) model.UserRecord {
	out := rec
	out.Wallets = make([]model.WalletRef, len(rec.Wallets))
	copy(out.Wallets, rec.Wallets)
	return out
}
