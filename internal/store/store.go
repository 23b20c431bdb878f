// Package store is the local record store: item bodies, the index that lists
// them, the settings blob and the last-modified marker every mutation stamps.
//
// All operations are serialized through one mutex, so the marker is updated
// read-modify-write without interleaving and no caller ever observes a
// half-applied write.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/scrapsync/internal/dbx"
	"github.com/dmitrijs2005/scrapsync/internal/logging"
	"github.com/dmitrijs2005/scrapsync/internal/migrations"
	"github.com/dmitrijs2005/scrapsync/internal/repositories/index"
	"github.com/dmitrijs2005/scrapsync/internal/repositories/items"
	"github.com/dmitrijs2005/scrapsync/internal/repositories/metadata"
	"github.com/dmitrijs2005/scrapsync/internal/timex"

	_ "modernc.org/sqlite"
)

// RawItem is a stored item body that has not been decoded yet.
type RawItem = items.Raw

type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	now timex.Clock
	log logging.Logger

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

type Option func(*Store)

// WithClock replaces the wall clock used to stamp mutations.
func WithClock(c timex.Clock) Option {
	return func(s *Store) { s.now = c }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open opens (creating if needed) the SQLite database at dsn and applies
// pending migrations.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite has a single writer; one connection also keeps :memory: databases
	// alive across calls.
	db.SetMaxOpenConns(1)

	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, opts...), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:   db,
		now:  timex.NowMillis,
		log:  logging.Nop(),
		subs: make(map[int]func(Event)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Close() error {
	return s.db.Close()
}

type repos struct {
	items    items.Repository
	index    index.Repository
	metadata metadata.Repository
}

func newRepos(db dbx.DBTX) repos {
	return repos{
		items:    items.NewSQLiteRepository(db),
		index:    index.NewSQLiteRepository(db),
		metadata: metadata.NewSQLiteRepository(db),
	}
}

// read runs fn against the database outside a transaction.
func (s *Store) read(ctx context.Context, fn func(ctx context.Context, r repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, newRepos(s.db))
}

// write runs fn in a transaction.
func (s *Store) write(ctx context.Context, fn func(ctx context.Context, r repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, newRepos(tx))
	})
}
