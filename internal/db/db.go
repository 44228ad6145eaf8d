// Package db provides PostgreSQL storage for saved resume documents.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/hash-resume/internal/storage"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// DocumentStore is a storage.Store backed by the resume_documents table.
type DocumentStore struct {
	db *DB
}

// NewDocumentStore returns a store using db's pool.
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

var _ storage.Store = (*DocumentStore)(nil)

// Get returns the content stored under key, or storage.ErrNotFound.
func (s *DocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	var content []byte
	err := s.db.pool.QueryRow(ctx,
		`SELECT content FROM resume_documents WHERE key = $1`,
		key,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document %s: %w", key, err)
	}
	return content, nil
}

// Put upserts the content stored under key.
func (s *DocumentStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO resume_documents (key, content, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET content = $2, updated_at = NOW()`,
		key, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save document %s: %w", key, err)
	}
	return nil
}

// UpdatedAt returns when key was last written.
func (s *DocumentStore) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var updatedAt time.Time
	err := s.db.pool.QueryRow(ctx,
		`SELECT updated_at FROM resume_documents WHERE key = $1`,
		key,
	).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, storage.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("failed to get document timestamp %s: %w", key, err)
	}
	return updatedAt, nil
}
