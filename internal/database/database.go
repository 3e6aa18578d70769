// Tunegraph - Social Music Recommendations and Leaderboards
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tunegraph

// Package database is the relational side of Tunegraph, kept in DuckDB.
//
// It records the facts the leaderboard is computed from (which tags exist,
// which tracks carry which tags, when members liked or played a track) and
// answers the windowed count queries the ranking builder runs. DuckDB's
// columnar engine makes the GROUP BY over the view log cheap even when the
// log grows to millions of rows.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"github.com/tomtom215/tunegraph/internal/logging"
)

// Config holds DuckDB settings.
type Config struct {
	// Path is the database file. Empty opens an in-memory database.
	Path string

	// Threads caps DuckDB worker threads. Zero means runtime.NumCPU().
	Threads int

	// MaxMemory is a DuckDB size string such as "1GB". Empty leaves the default.
	MaxMemory string
}

// DB wraps a DuckDB connection pool.
type DB struct {
	conn *sql.DB
	cfg  Config
}

// Open opens (or creates) the database and applies the schema.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	if cfg.Path != "" {
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dir, err)
			}
		}
	}

	conn, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}
	db.configureConnectionPool()

	settings := []string{fmt.Sprintf("SET threads = %d", threads)}
	if cfg.MaxMemory != "" {
		settings = append(settings, fmt.Sprintf("SET max_memory = '%s'", cfg.MaxMemory))
	}
	for _, stmt := range settings {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			closeQuietly(conn)
			return nil, fmt.Errorf("apply %q: %w", stmt, err)
		}
	}

	if err := db.createSchema(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logging.Info().
		Str("path", displayPath(cfg.Path)).
		Int("threads", threads).
		Msg("DuckDB opened")
	return db, nil
}

func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func displayPath(path string) string {
	if path == "" {
		return ":memory:"
	}
	return path
}

// closeQuietly closes a resource and ignores the error; for cleanup on error paths.
func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
