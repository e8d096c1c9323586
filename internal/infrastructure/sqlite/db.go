// Package sqlite provides the SQLite-backed snapshot store for vault131.
// It owns the connection lifecycle, migrations and repository implementations.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vaulttec/vault131/internal/infrastructure/migrations"
	"github.com/vaulttec/vault131/internal/log"
	"github.com/vaulttec/vault131/internal/vault/domain"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB wraps the SQLite connection used for session snapshots.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens the database at path, applies pragmas and runs migrations.
// The parent directory is created when missing, and an existing database is
// copied to {path}.bak before migrating.
//
// Example:
//
//	db, err := sqlite.NewDB("~/.vault131/vault131.db")
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
func NewDB(path string) (*DB, error) {
	log.Debug(log.CatDB, "Opening database", "path", path)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		log.ErrorErr(log.CatDB, "Failed to create database directory", err, "path", path)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		backup := path + ".bak"
		if err := copyFile(path, backup); err != nil {
			log.ErrorErr(log.CatDB, "Failed to create pre-migration backup", err, "backup", backup)
			return nil, fmt.Errorf("failed to create pre-migration backup: %w", err)
		}
	}

	conn, err := open("file:" + path)
	if err != nil {
		return nil, err
	}

	log.Info(log.CatDB, "Database initialized", "path", path)
	return &DB{conn: conn, path: path}, nil
}

// NewMemoryDB opens a private in-memory database with migrations applied.
func NewMemoryDB() (*DB, error) {
	conn, err := open("file::memory:")
	if err != nil {
		return nil, err
	}
	// Every pooled connection would get its own empty :memory: database.
	conn.SetMaxOpenConns(1)
	return &DB{conn: conn, path: ":memory:"}, nil
}

func open(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.ErrorErr(log.CatDB, "Failed to open database", err, "dsn", dsn)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			log.ErrorErr(log.CatDB, "Failed to apply pragma", err, "pragma", pragma)
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := migrations.RunMigrations(conn); err != nil {
		_ = conn.Close()
		log.ErrorErr(log.CatDB, "Failed to run migrations", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return conn, nil
}

// Close releases database resources.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	log.Debug(log.CatDB, "Closing database", "path", db.path)
	return db.conn.Close()
}

// SnapshotRepository returns a repository backed by this connection.
func (db *DB) SnapshotRepository() domain.SnapshotRepository {
	return newSnapshotRepository(db.conn)
}

// Connection returns the underlying *sql.DB for testing purposes.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// copyFile copies src over dst, reporting close errors on the destination
// so a short backup is never mistaken for a good one.
func copyFile(src, dst string) (retErr error) {
	in, err := os.Open(src) //nolint:gosec // G304: database path is application controlled
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, info.Mode()) //nolint:gosec // G304: backup path derives from database path
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close backup file: %w", closeErr)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
