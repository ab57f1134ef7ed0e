// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/campus-coins/backend/internal/application/adapter"
)

type txKey struct{}

// transactor implements adapter.Transactor on top of gorm.
// The active *gorm.DB is stored in context so repositories join the same transaction.
type transactor struct {
	db *gorm.DB
}

// NewTransactor creates a Transactor backed by the given connection.
func NewTransactor(db *gorm.DB) adapter.Transactor {
	return &transactor{db: db}
}

// InTransaction begins a transaction, stores it in context, and calls fn.
// Nested calls reuse the outer transaction.
func (t *transactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFromContext returns the transaction bound to ctx, or fallback when none is active.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}
