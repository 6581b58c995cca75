package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps the sqlx.DB and provides additional functionality
type DB struct {
	Conn *sqlx.DB
	Path string
}

// Open creates a connection to the SQLite backing store at path.
// The store file is created on first use. ":memory:" gives an in-process
// store, used by tests.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store %s: %w", path, err)
	}

	// The store assumes a single active session: one writer, no pool.
	conn.SetMaxOpenConns(1)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping sqlite store %s: %w", path, err)
	}

	return &DB{Conn: conn, Path: path}, nil
}

// Close closes the store connection
func (db *DB) Close() {
	if db.Conn != nil {
		db.Conn.Close()
	}
}

// Ping checks if the store is accessible
func (db *DB) Ping(ctx context.Context) error {
	return db.Conn.PingContext(ctx)
}
