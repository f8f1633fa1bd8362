package sqlite

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// DefaultFilename is the name of the sqlite database found in the data
	// directory when no explicit path is configured.
	DefaultFilename = "marketd.sqlite"

	// InmemPath gives a purely in-memory database, used by tests.
	InmemPath = ":memory:"
)

// SqlStore is a wrapper around the db and provides basic functionality for
// maintaining the db including flushing the data from the db during
// end-to-end testing.
type SqlStore struct {
	Mu   sync.RWMutex
	DB   *sqlx.DB
	log  *zap.Logger
	path string
}

// NewSqlStore opens (creating if needed) the sqlite database at path.
func NewSqlStore(path string, log *zap.Logger) (*SqlStore, error) {
	s := &SqlStore{
		log:  log,
		path: path,
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open sqlite db")
	}
	log.Info("Resources opened", zap.String("path", path))

	// If using an in-memory database, don't allow more than 1 connection.
	// Each connection is given a new database, and each transaction opens a
	// new connection, so a single connection is the only way to keep state
	// consistent.
	if path == InmemPath {
		db.SetMaxOpenConns(1)
	}

	// Foreign key checks are off by default in sqlite.
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, errors.Wrap(err, "unable to enable foreign keys")
	}

	s.DB = db
	return s, nil
}

// Close the connection to the sqlite database.
func (s *SqlStore) Close() error {
	return s.DB.Close()
}

// userVersion returns the current value of the user_version pragma, which is
// used to track the migration state of the database.
func (s *SqlStore) userVersion() (int, error) {
	var v int
	if err := s.DB.Get(&v, "PRAGMA user_version;"); err != nil {
		return 0, err
	}
	return v, nil
}

// execTrans executes a script within a transaction, rolling it back entirely
// if any statement fails.
func (s *SqlStore) execTrans(ctx context.Context, stmt string) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Flush deletes all records for all tables except the migrations table.
// Used for resetting state between end-to-end tests.
func (s *SqlStore) Flush(ctx context.Context) {
	tables, err := s.tableNames()
	if err != nil {
		s.log.Fatal("unable to flush sqlite", zap.Error(err))
	}

	for _, t := range tables {
		if t == migrationsTableName {
			continue
		}
		stmt := "DELETE FROM " + t
		if err := s.execTrans(ctx, stmt); err != nil {
			s.log.Fatal("unable to flush sqlite", zap.Error(err))
		}
	}
	s.log.Debug("Flushed sqlite")
}

// tableNames returns the user-defined tables currently in the database.
func (s *SqlStore) tableNames() ([]string, error) {
	var names []string
	err := s.DB.Select(&names, `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return names, nil
}
