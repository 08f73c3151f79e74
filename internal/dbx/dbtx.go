// Package dbx provides the transaction envelope shared by repositories: a
// minimal interface (DBTX) implemented by both *sqlx.DB and *sqlx.Tx, and a
// helper that scopes a unit of work to one transaction.
package dbx

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DBTX is what repositories need to run statements and scan rows.
// Both *sqlx.DB and *sqlx.Tx satisfy it.
type DBTX interface {
	sqlx.ExtContext
}

// WithTx begins a transaction, runs fn with the transactional handle, and then
// commits if fn returned nil. Any error from fn rolls the transaction back, as
// does a panic, which is rethrown after the rollback.
//
// Nothing fn executes is visible to other transactions until the commit
// succeeds. Begin and commit failures are returned wrapped; callers treat them
// as infrastructure errors.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sqlx.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit tx: %w", cerr)
		}
	}()

	err = fn(ctx, tx)
	return err
}

// ReadOnly is the option set used for units of work that only read.
var ReadOnly = &sql.TxOptions{ReadOnly: true}
