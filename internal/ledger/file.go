package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	logx "bidwatch/pkg/logx"
)

// fileStore keeps the ledger as one human-readable JSON file:
//
//	{"홍길동": {"bid_notices": ["2025-001"], "pre_notices": [], "award_notices": []}}
//
// A sibling .lock file guards the whole load-mutate-save span against a
// second concurrent run. Saves go to a temp file in the same directory and
// are renamed into place.
type fileStore struct {
	log  logx.Logger
	path string
	lock *flock.Flock
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("ledger.path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	fl := flock.New(path + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("ledger: lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return &fileStore{log: log, path: path, lock: fl}, nil
}

func (s *fileStore) Close() error {
	if s.lock == nil {
		return nil
	}
	err := s.lock.Unlock()
	s.lock = nil
	return err
}

func (s *fileStore) Load(ctx context.Context) (*Ledger, error) {
	_ = ctx
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("ledger file absent; starting empty", logx.String("path", s.path))
			return New(), nil
		}
		return nil, err
	}

	l := New()
	if err := json.Unmarshal(b, l); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return l, nil
}

func (s *fileStore) Save(ctx context.Context, l *Ledger) error {
	_ = ctx
	b, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	// Same-directory temp file so the rename stays on one filesystem.
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
