// Package store persists clips in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/petems/voijix/internal/clip"
	"github.com/petems/voijix/internal/config"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrClipNotFound is returned by Load when no clip has the requested name.
var ErrClipNotFound = errors.New("clip not found")

// Dates are stored as fixed-width UTC text so that ORDER BY date is chronological.
const dateLayout = "2006-01-02T15:04:05.000000000Z"

// Store manages clips in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database described by cfg.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	db, err := openDB(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening clip store: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating clip store: %w", err)
	}
	return s, nil
}

func openDB(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cannot create database directory %q: %w", dir, err)
	}

	// _pragma=busy_timeout(5000): Wait up to 5 seconds if database is locked
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, diagnose(path, err)
	}

	// Serialize writes (SQLite limitation)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, diagnose(path, err)
	}
	return db, nil
}

// diagnose turns SQLITE_CANTOPEN into a message naming the path.
func diagnose(path string, err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CANTOPEN {
		return fmt.Errorf("cannot create database at %q: %w", path, err)
	}
	return err
}

func (s *Store) migrate(cfg config.DatabaseConfig) error {
	// page_size only takes effect before the first table is created.
	if cfg.PageSize > 0 {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA page_size = %d", cfg.PageSize)); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", cfg.UserVersion)); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS clips (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			date TEXT NOT NULL,
			sample_rate INTEGER NOT NULL,
			samples BLOB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS clips_name ON clips (name);
	`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts c, assigning c.ID, or replaces the row with c.ID if already saved.
func (s *Store) Save(ctx context.Context, c *clip.Clip) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("saving clip %q: %w", c.Name, err)
	}

	var id any
	if c.Saved() {
		id = c.ID
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO clips (id, name, date, sample_rate, samples)
		VALUES (?, ?, ?, ?, ?)
	`, id, c.Name, c.Date.UTC().Format(dateLayout), c.SampleRate, clip.EncodeSamples(c.Samples))
	if err != nil {
		return fmt.Errorf("saving clip %q: %w", c.Name, err)
	}

	if !c.Saved() {
		c.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("saving clip %q: %w", c.Name, err)
		}
	}
	return nil
}

// Load returns the first clip saved under name.
func (s *Store) Load(ctx context.Context, name string) (*clip.Clip, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, date, sample_rate, samples FROM clips
		WHERE name = ?
		ORDER BY id
		LIMIT 1
	`, name)

	var (
		c    clip.Clip
		date string
		blob []byte
	)
	if err := row.Scan(&c.ID, &c.Name, &date, &c.SampleRate, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClipNotFound
		}
		return nil, fmt.Errorf("loading clip %q: %w", name, err)
	}

	var err error
	if c.Date, err = time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("loading clip %q: bad date %q: %w", name, date, err)
	}
	if c.Samples, err = clip.DecodeSamples(blob); err != nil {
		return nil, fmt.Errorf("loading clip %q: %w", name, err)
	}
	return &c, nil
}

// List returns every stored clip, oldest first.
func (s *Store) List(ctx context.Context) ([]clip.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, date FROM clips ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("listing clips: %w", err)
	}
	defer rows.Close()

	var clips []clip.Summary
	for rows.Next() {
		var (
			sum  clip.Summary
			date string
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &date); err != nil {
			return nil, fmt.Errorf("listing clips: %w", err)
		}
		if sum.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("listing clips: bad date %q: %w", date, err)
		}
		clips = append(clips, sum)
	}
	return clips, rows.Err()
}

// Delete removes every clip named name and returns how many were removed.
func (s *Store) Delete(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clips WHERE name = ?`, name)
	if err != nil {
		return 0, fmt.Errorf("deleting clip %q: %w", name, err)
	}
	return res.RowsAffected()
}
