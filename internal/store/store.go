package store

import (
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Stores built on it run unchanged inside or outside a transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Stores bundles the per-collection stores over a single handle.
type Stores struct {
	Categories *CategoryStore
	Products   *ProductStore
	Sales      *SaleStore
	Pending    *PendingOpStore
}

// New creates the store bundle over db, which may be a *sql.DB or a *sql.Tx.
func New(db DBTX) *Stores {
	return &Stores{
		Categories: NewCategoryStore(db),
		Products:   NewProductStore(db),
		Sales:      NewSaleStore(db),
		Pending:    NewPendingOpStore(db),
	}
}

// WithTx runs fn inside one transaction spanning all collections.
// Everything fn does commits atomically or not at all; the transaction
// is released on every exit path, including panics.
func WithTx(db *sql.DB, fn func(s *Stores) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(New(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
