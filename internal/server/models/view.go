// Package models defines server-side data models persisted in the database
// and the parameter sets accepted by the view service.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ViewType tags what a view renders. It is set at creation and never updated.
type ViewType int32

const (
	ViewTypeBlank ViewType = 0
	ViewTypeDoc   ViewType = 1
)

// Valid reports whether t is one of the known view types.
func (t ViewType) Valid() bool {
	switch t {
	case ViewTypeBlank, ViewTypeDoc:
		return true
	}
	return false
}

func (t ViewType) String() string {
	switch t {
	case ViewTypeBlank:
		return "blank"
	case ViewTypeDoc:
		return "doc"
	}
	return "unknown"
}

// ViewRow is one row of view_table as stored.
type ViewRow struct {
	ID           uuid.UUID `db:"id"`
	BelongToID   uuid.UUID `db:"belong_to_id"`
	Name         string    `db:"name"`
	Description  string    `db:"description"`
	ModifiedTime time.Time `db:"modified_time"`
	CreateTime   time.Time `db:"create_time"`
	Thumbnail    string    `db:"thumbnail"`
	ViewType     ViewType  `db:"view_type"`
	IsTrash      bool      `db:"is_trash"`
}

// View is a node in the app -> view -> child view hierarchy.
//
// Belongings holds the views whose belong_to_id equals ID. It is not stored;
// it is filled only when a read asks for it and is empty otherwise.
type View struct {
	ID           string    `json:"id"`
	BelongToID   string    `json:"belong_to_id"`
	Name         string    `json:"name"`
	Desc         string    `json:"desc"`
	Thumbnail    string    `json:"thumbnail"`
	ViewType     ViewType  `json:"view_type"`
	Version      int64     `json:"version"`
	IsTrash      bool      `json:"is_trash"`
	CreatedTime  time.Time `json:"create_time"`
	ModifiedTime time.Time `json:"modified_time"`
	Belongings   []*View   `json:"belongings"`
}

// ToView converts a stored row to a View with an empty Belongings list.
func (r *ViewRow) ToView() *View {
	return &View{
		ID:           r.ID.String(),
		BelongToID:   r.BelongToID.String(),
		Name:         r.Name,
		Desc:         r.Description,
		Thumbnail:    r.Thumbnail,
		ViewType:     r.ViewType,
		IsTrash:      r.IsTrash,
		CreatedTime:  r.CreateTime.UTC(),
		ModifiedTime: r.ModifiedTime.UTC(),
		Belongings:   []*View{},
	}
}

// CreateViewParams is the raw, unvalidated input of CreateView.
type CreateViewParams struct {
	BelongToID string   `json:"belong_to_id"`
	Name       string   `json:"name"`
	Desc       string   `json:"desc"`
	Thumbnail  string   `json:"thumbnail"`
	ViewType   ViewType `json:"view_type"`
}

// QueryViewParams is the raw input of ReadView.
type QueryViewParams struct {
	ViewID         string `json:"view_id"`
	ReadBelongings bool   `json:"read_belongings"`
}

// UpdateViewParams is the raw input of UpdateView. A nil field was not
// supplied and is left unchanged; IsTrash is applied whenever it is non-nil,
// including an explicit false.
type UpdateViewParams struct {
	ViewID    string  `json:"view_id"`
	Name      *string `json:"name,omitempty"`
	Desc      *string `json:"desc,omitempty"`
	Thumbnail *string `json:"thumbnail,omitempty"`
	IsTrash   *bool   `json:"is_trash,omitempty"`
}

// ViewUpdate is a validated update ready for the repository.
type ViewUpdate struct {
	ID           uuid.UUID
	Name         *string
	Desc         *string
	Thumbnail    *string
	IsTrash      *bool
	ModifiedTime time.Time
}
