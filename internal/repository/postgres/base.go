package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/allservices/marketplace-api/internal/repository"
)

type txKey struct{}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithinTx runs fn in a transaction carried by the context. Nested calls
// join the outer transaction.
func (r *BaseRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// conn returns the transaction in ctx, or the pool.
func (r *BaseRepository) conn(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return r.db
}

func (r *BaseRepository) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return mapError(sqlx.GetContext(ctx, r.conn(ctx), dest, query, args...))
}

func (r *BaseRepository) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return mapError(sqlx.SelectContext(ctx, r.conn(ctx), dest, query, args...))
}

func (r *BaseRepository) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	res, err := r.conn(ctx).ExecContext(ctx, query, args...)
	return res, mapError(err)
}

// NewTransactor exposes WithinTx to the service layer.
func NewTransactor(db *sqlx.DB) repository.Transactor {
	base := NewBaseRepository(db)
	return &base
}

const uniqueViolation = "23505"

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, pqErr.Constraint)
	}
	return err
}

// expectOne turns a zero-row update or delete into ErrNotFound.
func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
