// Package views provides the PostgreSQL-backed repository for view rows.
// Statements are assembled with sqlbuilder so that optional update fields
// never shift placeholder numbering.
package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/viewstore/internal/common"
	"github.com/dmitrijs2005/viewstore/internal/dbx"
	"github.com/dmitrijs2005/viewstore/internal/server/models"
	"github.com/dmitrijs2005/viewstore/internal/sqlbuilder"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const tableName = "view_table"

var columns = []string{
	"id", "belong_to_id", "name", "description", "modified_time",
	"create_time", "thumbnail", "view_type", "is_trash",
}

// PostgresRepository implements Repository over a dbx.DBTX (*sqlx.DB or *sqlx.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

// Create inserts all columns of row except is_trash, which starts false.
func (r *PostgresRepository) Create(ctx context.Context, row *models.ViewRow) error {
	query, args, err := sqlbuilder.Create(tableName).
		AddArg("id", row.ID).
		AddArg("belong_to_id", row.BelongToID).
		AddArg("name", row.Name).
		AddArg("description", row.Description).
		AddArg("modified_time", row.ModifiedTime).
		AddArg("create_time", row.CreateTime).
		AddArg("thumbnail", row.Thumbnail).
		AddArg("view_type", row.ViewType).
		Build()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return dbError("insert view", err)
	}
	return nil
}

// GetByID returns the single row with the given id. No row yields
// common.ErrorNotFound; more than one row means the primary key guarantee is
// broken and yields common.ErrInvariantViolation.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ViewRow, error) {
	b := sqlbuilder.Select(tableName)
	for _, c := range columns {
		b.AddField(c)
	}
	query, args, err := b.AndWhereEq("id", id).Build()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []models.ViewRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, dbError("select view", err)
	}

	switch len(rows) {
	case 1:
		return &rows[0], nil
	case 0:
		return nil, fmt.Errorf("view %s: %w", id, common.ErrorNotFound)
	default:
		return nil, fmt.Errorf("view %s matched %d rows: %w", id, len(rows), common.ErrInvariantViolation)
	}
}

// SelectBelongTo returns the views whose belong_to_id is parentID, oldest first.
func (r *PostgresRepository) SelectBelongTo(ctx context.Context, parentID uuid.UUID) ([]*models.ViewRow, error) {
	b := sqlbuilder.Select(tableName)
	for _, c := range columns {
		b.AddField(c)
	}
	query, args, err := b.
		AndWhereEq("belong_to_id", parentID).
		OrderBy("create_time").
		OrderBy("id").
		Build()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []*models.ViewRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, dbError("select belongings", err)
	}
	return rows, nil
}

// Update sets modified_time plus whichever optional fields are present.
// IsTrash is written whenever it is non-nil, so an explicit false clears the flag.
func (r *PostgresRepository) Update(ctx context.Context, u *models.ViewUpdate) error {
	var trash bool
	if u.IsTrash != nil {
		trash = *u.IsTrash
	}

	query, args, err := sqlbuilder.Update(tableName).
		AddSomeArg("name", u.Name).
		AddSomeArg("description", u.Desc).
		AddSomeArg("thumbnail", u.Thumbnail).
		AddArg("modified_time", u.ModifiedTime).
		AddArgIf(u.IsTrash != nil, "is_trash", trash).
		AndWhereEq("id", u.ID).
		Build()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return dbError("update view", err)
	}
	return nil
}

// Delete removes the row with the given id and reports how many rows went away.
// Zero is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	query, args, err := sqlbuilder.Delete(tableName).AndWhereEq("id", id).Build()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, dbError("delete view", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

// dbError wraps a driver error, keeping the SQLSTATE visible in logs.
func dbError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: db error (SQLSTATE %s): %w", op, pgErr.Code, err)
	}
	return fmt.Errorf("%s: db error: %w", op, err)
}
