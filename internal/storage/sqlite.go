package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/hammamikhairi/proctor/internal/domain"
	"github.com/hammamikhairi/proctor/internal/logger"
)

// Compile-time interface check.
var _ domain.SessionStore = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	course      TEXT NOT NULL DEFAULT '',
	instructor  TEXT NOT NULL DEFAULT '',
	duration_s  INTEGER NOT NULL,
	remaining_s INTEGER NOT NULL,
	rules_read  INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	started_at  INTEGER NOT NULL DEFAULT 0,
	ended_at    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at DESC);
`

// SQLiteStore keeps exam history in a single SQLite file so past sittings
// survive restarts and can be listed with `proctor history`.
type SQLiteStore struct {
	db   *sql.DB
	path string
	log  *logger.Logger
}

// OpenSQLite opens (creating if needed) the history database at path.
func OpenSQLite(path string, log *logger.Logger) (*SQLiteStore, error) {
	log.Debug("opening history database %s", path)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	log.Info("history database ready at %s", path)
	return &SQLiteStore{db: db, path: path, log: log}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	s.log.Debug("closing history database %s", s.path)
	return s.db.Close()
}

// Save inserts or replaces a session row.
func (s *SQLiteStore) Save(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, course, instructor, duration_s, remaining_s, rules_read, status, created_at, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			course = excluded.course,
			instructor = excluded.instructor,
			duration_s = excluded.duration_s,
			remaining_s = excluded.remaining_s,
			rules_read = excluded.rules_read,
			status = excluded.status,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at`,
		session.ID, session.Course, session.Instructor,
		int64(session.Duration/time.Second), int64(session.Remaining/time.Second),
		session.RulesRead, session.Status.String(),
		toMillis(session.CreatedAt), toMillis(session.StartedAt), toMillis(session.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", session.ID, err)
	}
	s.log.Debug("saved session %s (status=%s)", session.ID, session.Status)
	return nil
}

// Load retrieves a session by ID.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, course, instructor, duration_s, remaining_s, rules_read, status, created_at, started_at, ended_at
		 FROM sessions WHERE id = ?`, id)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	return sess, nil
}

// Delete removes a session by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns sessions newest first. A limit <= 0 returns all of them.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*domain.Session, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course, instructor, duration_s, remaining_s, rules_read, status, created_at, started_at, ended_at
		 FROM sessions ORDER BY created_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*domain.Session, error) {
	var (
		sess                          domain.Session
		durationS, remainingS         int64
		status                        string
		createdMs, startedMs, endedMs int64
	)
	if err := row.Scan(&sess.ID, &sess.Course, &sess.Instructor, &durationS, &remainingS,
		&sess.RulesRead, &status, &createdMs, &startedMs, &endedMs); err != nil {
		return nil, err
	}
	sess.Duration = time.Duration(durationS) * time.Second
	sess.Remaining = time.Duration(remainingS) * time.Second
	sess.Status = domain.ParseSessionStatus(status)
	sess.CreatedAt = fromMillis(createdMs)
	sess.StartedAt = fromMillis(startedMs)
	sess.EndedAt = fromMillis(endedMs)
	return &sess, nil
}

// Zero times are stored as 0 so "not started yet" round-trips.
func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
