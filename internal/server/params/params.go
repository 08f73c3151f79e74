// Package params turns untrusted request strings into constrained values.
// Every parser is pure: it performs no I/O and reports rejections as
// *common.ParamError, never by panicking.
package params

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/viewstore/internal/common"
	"github.com/dmitrijs2005/viewstore/internal/server/models"
	"github.com/google/uuid"
)

const (
	MaxViewNameLength      = 256
	MaxViewDescLength      = 1000
	MaxViewThumbnailLength = 1000
)

// ViewName is a non-empty, trimmed view name.
type ViewName string

// ViewDesc is a possibly empty view description.
type ViewDesc string

// ViewThumbnail is a possibly empty reference to the view's thumbnail object.
type ViewThumbnail string

func ParseViewName(s string) (ViewName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", common.InvalidParams("name", "view name is required")
	}
	if utf8.RuneCountInString(s) > MaxViewNameLength {
		return "", common.InvalidParams("name",
			fmt.Sprintf("view name must be %d characters or less", MaxViewNameLength))
	}
	return ViewName(s), nil
}

func ParseViewDesc(s string) (ViewDesc, error) {
	if utf8.RuneCountInString(s) > MaxViewDescLength {
		return "", common.InvalidParams("desc",
			fmt.Sprintf("view description must be %d characters or less", MaxViewDescLength))
	}
	return ViewDesc(s), nil
}

func ParseViewThumbnail(s string) (ViewThumbnail, error) {
	if utf8.RuneCountInString(s) > MaxViewThumbnailLength {
		return "", common.InvalidParams("thumbnail",
			fmt.Sprintf("view thumbnail must be %d characters or less", MaxViewThumbnailLength))
	}
	return ViewThumbnail(s), nil
}

// ParseViewID validates a view identifier.
func ParseViewID(s string) (uuid.UUID, error) {
	return parseID("view_id", s)
}

// ParseAppID validates the identifier of the entity a view belongs to. The
// parent is either an app or another view; both use the same identifier format.
func ParseAppID(s string) (uuid.UUID, error) {
	return parseID("belong_to_id", s)
}

func ParseViewType(t models.ViewType) (models.ViewType, error) {
	if !t.Valid() {
		return 0, common.InvalidParams("view_type", fmt.Sprintf("unknown view type %d", t))
	}
	return t, nil
}

// parseID accepts only the canonical 36 character hyphenated UUID form.
func parseID(field, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, common.InvalidParams(field, "identifier is required")
	}
	if len(s) != 36 {
		return uuid.Nil, common.InvalidParams(field, "identifier must be a canonical uuid")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, common.InvalidParams(field, "identifier must be a canonical uuid")
	}
	return id, nil
}

// Optional helpers: nil means "not supplied" and is returned as nil without
// validation.

func ParseOptionalViewName(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	v, err := ParseViewName(*s)
	if err != nil {
		return nil, err
	}
	out := string(v)
	return &out, nil
}

func ParseOptionalViewDesc(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	v, err := ParseViewDesc(*s)
	if err != nil {
		return nil, err
	}
	out := string(v)
	return &out, nil
}

func ParseOptionalViewThumbnail(s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	v, err := ParseViewThumbnail(*s)
	if err != nil {
		return nil, err
	}
	out := string(v)
	return &out, nil
}
