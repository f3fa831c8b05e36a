package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver" // database/sql driver "sqlite3"
	_ "github.com/ncruces/go-sqlite3/embed"  // embedded SQLite build

	"github.com/louib/panbuild/pkg/constants"
	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/projects"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	complete   INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_complete ON projects(complete);
`

// SQLiteStore keeps records as YAML documents in an embedded SQLite
// database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewConfigError("store", "sqlite path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("open", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, errors.WrapIO("configure", path, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("migrate", path, err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*projects.Project, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM projects WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.WrapIO("query", s.path, err)
	}
	return DecodeYAML(ctx, []byte(doc), s.path+"#"+id)
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, id string, p projects.Project) error {
	p, err := prepare(id, p)
	if err != nil {
		return err
	}
	doc, err := p.MarshalYAMLDocument()
	if err != nil {
		return errors.WrapParse("yaml", id, err)
	}

	complete := 0
	if p.IsComplete() {
		complete = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (id, document, complete, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			complete = excluded.complete,
			updated_at = excluded.updated_at`,
		id, string(doc), complete, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return errors.WrapIO("write", s.path, err)
	}

	logging.FromContext(ctx).Debug().Str("project", id).Msg("Saved project")
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	return s.ids(ctx, `SELECT id FROM projects ORDER BY id`)
}

// ListComplete implements CompleteLister using the complete column.
func (s *SQLiteStore) ListComplete(ctx context.Context) ([]string, error) {
	return s.ids(ctx, `SELECT id FROM projects WHERE complete = 1 ORDER BY id`)
}

func (s *SQLiteStore) ids(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.WrapIO("query", s.path, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.WrapIO("scan", s.path, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapIO("query", s.path, err)
	}
	return ids, nil
}

// Close implements Store. The write-ahead log is checkpointed first.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		logging.Default().Warn().Err(err).Str("path", s.path).Msg("WAL checkpoint failed")
	}
	err := s.db.Close()
	s.db = nil
	return errors.WrapIO("close", s.path, err)
}
