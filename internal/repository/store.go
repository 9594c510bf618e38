package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the query surface shared by *sql.DB, *sql.Tx and traced wrappers
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Repos bundles every repository bound to the same executor
type Repos struct {
	Users           UserRepo
	Invites         InviteRepo
	Lists           GiftListRepo
	Gifts           GiftRepo
	Shares          ListShareRepo
	Connections     ConnectionRepo
	Collections     CollectionRepo
	CollectionItems CollectionItemRepo
}

func newRepos(ex DBTX) *Repos {
	return &Repos{
		Users:           NewUserRepository(ex),
		Invites:         NewInviteRepository(ex),
		Lists:           NewGiftListRepository(ex),
		Gifts:           NewGiftRepository(ex),
		Shares:          NewListShareRepository(ex),
		Connections:     NewConnectionRepository(ex),
		Collections:     NewCollectionRepository(ex),
		CollectionItems: NewCollectionItemRepository(ex),
	}
}

// Transactor runs a unit of work against repositories bound to one transaction
type Transactor interface {
	RunInTx(ctx context.Context, fn func(r *Repos) error) error
}

// Store is the entity store: repositories on the pool plus transactional access
type Store struct {
	*Repos
	db   *sql.DB
	wrap func(DBTX) DBTX
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithExecutorWrapper decorates every executor the store hands to repositories
func WithExecutorWrapper(wrap func(DBTX) DBTX) StoreOption {
	return func(s *Store) {
		s.wrap = wrap
	}
}

// NewStore creates a Store over db
func NewStore(db *sql.DB, opts ...StoreOption) *Store {
	s := &Store{db: db, wrap: func(ex DBTX) DBTX { return ex }}
	for _, opt := range opts {
		opt(s)
	}
	s.Repos = newRepos(s.wrap(db))
	return s
}

// DB returns the underlying pool
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RunInTx executes fn inside a transaction. Any error from fn, or a panic,
// rolls back everything fn wrote.
func (s *Store) RunInTx(ctx context.Context, fn func(r *Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(newRepos(s.wrap(tx))); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
