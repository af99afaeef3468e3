package workflow

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	pkgerrors "github.com/zach-sndr/twitcanva/pkg/errors"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS workflows (
	name       TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// SQLiteStore persists workflow documents in a single-file SQLite
// database, one row per workflow with the document stored as JSON.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, pkgerrors.NewStorageError(fmt.Sprintf("failed to open database %s", path)).WithCause(err)
	}
	// The canvas core is single-writer; one connection avoids
	// SQLITE_BUSY churn entirely.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, pkgerrors.NewStorageError("failed to initialize workflow schema").WithCause(err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, doc *Document) error {
	if err := validateName(name); err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode workflow").WithCause(err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workflows (name, document, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		name, string(data), time.Now().UTC())
	if err != nil {
		return pkgerrors.NewStorageError(fmt.Sprintf("failed to save workflow %q", name)).WithCause(err)
	}

	s.logger.Debug("workflow saved",
		zap.String("name", name),
		zap.Int("nodes", len(doc.Nodes)))
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (*Document, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM workflows WHERE name = ?`, name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("workflow %q", name))
	}
	if err != nil {
		return nil, pkgerrors.NewStorageError(fmt.Sprintf("failed to load workflow %q", name)).WithCause(err)
	}

	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, pkgerrors.NewStorageError(fmt.Sprintf("workflow %q is corrupt", name)).WithCause(err)
	}
	return &doc, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM workflows ORDER BY name`)
	if err != nil {
		return nil, pkgerrors.NewStorageError("failed to list workflows").WithCause(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, pkgerrors.NewStorageError("failed to scan workflow row").WithCause(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewStorageError("failed to iterate workflows").WithCause(err)
	}
	return names, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM workflows WHERE name = ?`, name)
	if err != nil {
		return pkgerrors.NewStorageError(fmt.Sprintf("failed to delete workflow %q", name)).WithCause(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("workflow %q", name))
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
