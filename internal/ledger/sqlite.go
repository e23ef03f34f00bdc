//go:build sqlite
// +build sqlite

package ledger

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"bidwatch/internal/notice"
	logx "bidwatch/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers; one connection
	// also gives us the single-run exclusivity the ledger requires.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Load(ctx context.Context) (*Ledger, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user, category, id FROM notified`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	l := New()
	for rows.Next() {
		var user, category, id string
		if err := rows.Scan(&user, &category, &id); err != nil {
			return nil, err
		}
		cat, err := notice.ParseCategory(category)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		l.MarkNotified(user, cat, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *sqliteStore) Save(ctx context.Context, l *Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notified`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO notified(user, category, id) VALUES(?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for user, rec := range l.Users {
		sets := map[notice.Category]IDSet{
			notice.CategoryBid:   rec.Bid,
			notice.CategoryPre:   rec.Pre,
			notice.CategoryAward: rec.Award,
		}
		for cat, set := range sets {
			for id := range set {
				if _, err := stmt.ExecContext(ctx, user, string(cat), id); err != nil {
					return err
				}
			}
		}
	}
	return tx.Commit()
}
