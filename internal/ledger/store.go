package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrCorrupt marks a store whose existing content cannot be trusted.
var ErrCorrupt = errors.New("ledger store is corrupt")

// CorruptPolicy selects what Append does with a corrupt store.
type CorruptPolicy string

const (
	// RepairOnCorrupt moves the corrupt store aside and starts a fresh one.
	RepairOnCorrupt CorruptPolicy = "repair"
	// FailOnCorrupt refuses to append.
	FailOnCorrupt CorruptPolicy = "fail"
)

// Backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// AppendResult reports degradations that happened while appending.
type AppendResult struct {
	Repaired   bool
	BackupPath string
}

// Snapshot is the readable content of a store.
type Snapshot struct {
	Entries   []Entry
	Malformed int
}

// Store is an append-only ledger.
type Store interface {
	Append(ctx context.Context, e Entry) (AppendResult, error)
	ReadAll(ctx context.Context) (Snapshot, error)
	Close() error
}

// Open returns the store for a backend name.
func Open(backend, path string, policy CorruptPolicy) (Store, error) {
	if path == "" {
		return nil, errors.New("ledger path is required")
	}
	switch strings.ToLower(backend) {
	case "", BackendCSV:
		return NewCSVStore(path, policy), nil
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", backend)
	}
}
