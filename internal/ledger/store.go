package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	logx "bidwatch/pkg/logx"
)

var (
	// ErrCorrupt flags existing ledger state that cannot be parsed.
	// A run must abort rather than proceed and risk re-notifying.
	ErrCorrupt = errors.New("ledger: corrupt state")

	// ErrLocked means another run holds the ledger. Two concurrent runs
	// would both decide an item is new and double-notify.
	ErrLocked = errors.New("ledger: already locked by another run")
)

// Store is the durable ledger API. A missing backing file yields an empty
// ledger, never an error; Save must be atomic (no partially-written state
// observable to a concurrent reader).
type Store interface {
	Load(ctx context.Context) (*Ledger, error)
	Save(ctx context.Context, l *Ledger) error
	Close() error
}

// Config selects and configures the ledger backend.
//
// Driver values:
//   - "file" (default): human-readable JSON file, exclusive-locked per run
//   - "sqlite": SQLite database file (build with -tags sqlite)
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Open initializes the configured store and takes exclusive ownership of the
// ledger resource for the caller's run.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown ledger driver: " + cfg.Driver)
	}
}
