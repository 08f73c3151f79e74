// Package services contains server-side business logic. This file implements
// ViewService, the transactional CRUD surface over the view hierarchy.
//
// Every operation validates its input completely before a transaction is
// opened; a rejected request never touches the database.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/viewstore/internal/common"
	"github.com/dmitrijs2005/viewstore/internal/dbx"
	"github.com/dmitrijs2005/viewstore/internal/logging"
	"github.com/dmitrijs2005/viewstore/internal/server/models"
	"github.com/dmitrijs2005/viewstore/internal/server/params"
	"github.com/dmitrijs2005/viewstore/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ViewService creates, reads, updates and deletes views.
type ViewService struct {
	db          *sqlx.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

// timestamp returns the current time at the precision TIMESTAMPTZ keeps, so
// a returned view equals the same view read back.
func (s *ViewService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// NewViewService constructs a ViewService over the given pool.
func NewViewService(db *sqlx.DB, m repomanager.RepositoryManager, log logging.Logger) *ViewService {
	return &ViewService{
		db:          db,
		repomanager: m,
		log:         log.With("component", "view_service"),
		now:         time.Now,
		newID:       uuid.New,
	}
}

// CreateView stores a new view under p.BelongToID and returns it with
// version 0, is_trash false and no belongings.
func (s *ViewService) CreateView(ctx context.Context, p models.CreateViewParams) (*models.View, error) {
	name, err := params.ParseViewName(p.Name)
	if err != nil {
		return nil, err
	}
	belongTo, err := params.ParseAppID(p.BelongToID)
	if err != nil {
		return nil, err
	}
	thumbnail, err := params.ParseViewThumbnail(p.Thumbnail)
	if err != nil {
		return nil, err
	}
	desc, err := params.ParseViewDesc(p.Desc)
	if err != nil {
		return nil, err
	}
	viewType, err := params.ParseViewType(p.ViewType)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	row := &models.ViewRow{
		ID:           s.newID(),
		BelongToID:   belongTo,
		Name:         string(name),
		Description:  string(desc),
		ModifiedTime: now,
		CreateTime:   now,
		Thumbnail:    string(thumbnail),
		ViewType:     viewType,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Views(tx).Create(ctx, row)
	})
	if err != nil {
		return nil, s.failed(ctx, "create view", err, "belong_to_id", belongTo)
	}

	s.log.Info(ctx, "view created", "view_id", row.ID, "belong_to_id", belongTo, "view_type", viewType)
	return row.ToView(), nil
}

// ReadView returns one view. With p.ReadBelongings its direct children are
// read in the same read-only transaction, so both reads see one snapshot.
func (s *ViewService) ReadView(ctx context.Context, p models.QueryViewParams) (*models.View, error) {
	id, err := params.ParseViewID(p.ViewID)
	if err != nil {
		return nil, err
	}

	var view *models.View
	err = dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Views(tx)

		row, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		view = row.ToView()

		if !p.ReadBelongings {
			return nil
		}
		children, err := repo.SelectBelongTo(ctx, id)
		if err != nil {
			return err
		}
		view.Belongings = toViews(children)
		return nil
	})
	if err != nil {
		return nil, s.failed(ctx, "read view", err, "view_id", id)
	}
	return view, nil
}

// UpdateView applies the supplied fields and bumps modified_time. Absent
// fields keep their stored value. Updating a view that does not exist
// succeeds without changing anything.
func (s *ViewService) UpdateView(ctx context.Context, p models.UpdateViewParams) error {
	id, err := params.ParseViewID(p.ViewID)
	if err != nil {
		return err
	}
	name, err := params.ParseOptionalViewName(p.Name)
	if err != nil {
		return err
	}
	desc, err := params.ParseOptionalViewDesc(p.Desc)
	if err != nil {
		return err
	}
	thumbnail, err := params.ParseOptionalViewThumbnail(p.Thumbnail)
	if err != nil {
		return err
	}

	u := &models.ViewUpdate{
		ID:           id,
		Name:         name,
		Desc:         desc,
		Thumbnail:    thumbnail,
		IsTrash:      p.IsTrash,
		ModifiedTime: s.timestamp(),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Views(tx).Update(ctx, u)
	})
	if err != nil {
		return s.failed(ctx, "update view", err, "view_id", id)
	}

	s.log.Info(ctx, "view updated", "view_id", id)
	return nil
}

// DeleteView removes the view row. Its belongings are left in place and
// deleting an unknown id is not an error.
func (s *ViewService) DeleteView(ctx context.Context, viewID string) error {
	id, err := params.ParseViewID(viewID)
	if err != nil {
		return err
	}

	var deleted int64
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Views(tx).Delete(ctx, id)
		deleted = n
		return err
	})
	if err != nil {
		return s.failed(ctx, "delete view", err, "view_id", id)
	}

	s.log.Info(ctx, "view deleted", "view_id", id, "rows", deleted)
	return nil
}

// ReadViewsBelongTo lists the views whose parent is parentID, oldest first.
// The parent itself need not exist; an unknown parent has no belongings.
func (s *ViewService) ReadViewsBelongTo(ctx context.Context, parentID string) ([]*models.View, error) {
	id, err := params.ParseAppID(parentID)
	if err != nil {
		return nil, err
	}

	var views []*models.View
	err = dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := s.repomanager.Views(tx).SelectBelongTo(ctx, id)
		if err != nil {
			return err
		}
		views = toViews(rows)
		return nil
	})
	if err != nil {
		return nil, s.failed(ctx, "read belongings", err, "belong_to_id", id)
	}
	return views, nil
}

// failed logs err according to its kind and returns it wrapped with op.
// Not-found is the caller's concern and is only logged at debug level.
func (s *ViewService) failed(ctx context.Context, op string, err error, args ...any) error {
	args = append(args, "op", op, "error", err)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		s.log.Debug(ctx, "view not found", args...)
	case errors.Is(err, common.ErrInvariantViolation):
		s.log.Error(ctx, "stored views violate an invariant", append(args, "kind", "invariant_violation")...)
	default:
		s.log.Error(ctx, "view operation failed", append(args, "kind", "infrastructure")...)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toViews(rows []*models.ViewRow) []*models.View {
	out := make([]*models.View, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToView())
	}
	return out
}
