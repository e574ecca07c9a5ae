package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marketmagic/market-ingest-go/config"
)

// Querier is the subset of pgx both *pgxpool.Pool and pgx.Tx satisfy. Upserts
// and resolution run against it so batch logic is the same inside and outside
// a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Connect opens the connection pool from the env config.
func Connect(ctx context.Context) (*pgxpool.Pool, error) {
	databaseUrl := fmt.Sprintf("postgres://%s:%s@%s:5432/%s",
		config.POSTGRES_USER, config.POSTGRES_PASSWORD, config.POSTGRES_HOST, config.POSTGRES_DB)

	poolConfig, err := pgxpool.ParseConfig(databaseUrl)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}
	poolConfig.MaxConns = 5

	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return dbPool, nil
}

// Store owns the pool and hands out per-batch transactions.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Begin opens the transactional scope for one logical record group. Every
// record in the group commits or rolls back together, so a mid-batch failure
// never leaves a mix of old and new rows.
func (s *Store) Begin(ctx context.Context) (*Batch, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	return NewBatch(tx), nil
}

// NewBatch wraps an already-open transaction in a Batch. Ingestion code gets
// batches from Store.Begin; handler tests supply their own transaction here.
func NewBatch(tx pgx.Tx) *Batch {
	return &Batch{q: tx, tx: tx, Refs: NewRefResolver(tx)}
}

// Batch is one in-flight record group: a transaction, its reference resolver,
// and the upsert methods in upsert.go.
type Batch struct {
	q  Querier
	tx pgx.Tx

	// Refs resolves labels to reference-entity ids inside this transaction,
	// so ids created for a rolled-back batch are never reused.
	Refs *RefResolver
}

func (b *Batch) Commit(ctx context.Context) error {
	if err := b.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (b *Batch) Rollback(ctx context.Context) {
	_ = b.tx.Rollback(ctx)
}
