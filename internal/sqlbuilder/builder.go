// Package sqlbuilder assembles parameterized PostgreSQL statements for a single
// table. It supports exactly four shapes: INSERT, SELECT by equality, UPDATE by
// equality and DELETE by equality.
//
// Values never enter the SQL text. Every contribution is recorded in call order
// together with an inclusion flag; Build renders only the included ones and
// numbers the $n placeholders contiguously, so the returned argument slice
// always lines up with the placeholders.
//
//	query, args, err := sqlbuilder.Update("view_table").
//	    AddSomeArg("name", name).               // skipped when name == nil
//	    AddArg("modified_time", now).
//	    AddArgIf(req.IsTrash != nil, "is_trash", trash).
//	    AndWhereEq("id", id).
//	    Build()
package sqlbuilder

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrNoFields is returned when an INSERT has no columns or an UPDATE has an empty SET clause.
	ErrNoFields = errors.New("sqlbuilder: no fields")
	// ErrInvalidIdentifier is returned for table or column names that are not plain identifiers.
	ErrInvalidIdentifier = errors.New("sqlbuilder: invalid identifier")
	// ErrUnsupported is returned when a clause is used with a shape that does not accept it.
	ErrUnsupported = errors.New("sqlbuilder: unsupported clause")
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

type shape int

const (
	shapeInsert shape = iota
	shapeSelect
	shapeUpdate
	shapeDelete
)

func (s shape) String() string {
	switch s {
	case shapeInsert:
		return "insert"
	case shapeSelect:
		return "select"
	case shapeUpdate:
		return "update"
	case shapeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// contribution is one field/value pair in add order.
type contribution struct {
	field    string
	value    any
	included bool
}

// Builder collects the pieces of one statement. It is not safe for concurrent use.
type Builder struct {
	shape   shape
	table   string
	fields  []string
	values  []contribution
	where   []contribution
	orderBy []string
	err     error
}

// Create starts an INSERT into table.
func Create(table string) *Builder { return &Builder{shape: shapeInsert, table: table} }

// Select starts a SELECT from table. Without AddField it selects all columns.
func Select(table string) *Builder { return &Builder{shape: shapeSelect, table: table} }

// Update starts an UPDATE of table.
func Update(table string) *Builder { return &Builder{shape: shapeUpdate, table: table} }

// Delete starts a DELETE from table. A delete without conditions is allowed.
func Delete(table string) *Builder { return &Builder{shape: shapeDelete, table: table} }

// AddArg always includes field = value.
func (b *Builder) AddArg(field string, value any) *Builder {
	return b.addValue(field, value, true)
}

// AddSomeArg includes field only when value is present: a nil interface or a
// nil pointer is absent. For a non-nil pointer the pointee is bound.
func (b *Builder) AddSomeArg(field string, value any) *Builder {
	v, ok := some(value)
	return b.addValue(field, v, ok)
}

// AddArgIf includes field = value only when cond is true. The value itself is
// bound as given, including zero values.
func (b *Builder) AddArgIf(cond bool, field string, value any) *Builder {
	return b.addValue(field, value, cond)
}

// AddField appends a column to the SELECT list. "*" selects all columns.
func (b *Builder) AddField(field string) *Builder {
	if b.shape != shapeSelect {
		return b.fail(fmt.Errorf("%w: field list on %s", ErrUnsupported, b.shape))
	}
	b.fields = append(b.fields, field)
	return b
}

// AndWhereEq adds a "field = value" condition joined with AND.
func (b *Builder) AndWhereEq(field string, value any) *Builder {
	if b.shape == shapeInsert {
		return b.fail(fmt.Errorf("%w: where on %s", ErrUnsupported, b.shape))
	}
	b.where = append(b.where, contribution{field: field, value: value, included: true})
	return b
}

// OrderBy appends an ascending sort column to a SELECT.
func (b *Builder) OrderBy(field string) *Builder {
	if b.shape != shapeSelect {
		return b.fail(fmt.Errorf("%w: order by on %s", ErrUnsupported, b.shape))
	}
	b.orderBy = append(b.orderBy, field)
	return b
}

func (b *Builder) addValue(field string, value any, included bool) *Builder {
	if b.shape != shapeInsert && b.shape != shapeUpdate {
		return b.fail(fmt.Errorf("%w: column value on %s", ErrUnsupported, b.shape))
	}
	b.values = append(b.values, contribution{field: field, value: value, included: included})
	return b
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Build renders the SQL text and the argument list in placeholder order.
func (b *Builder) Build() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	if err := checkIdent(b.table); err != nil {
		return "", nil, err
	}

	r := renderer{}
	switch b.shape {
	case shapeInsert:
		return r.insert(b)
	case shapeSelect:
		return r.selectRows(b)
	case shapeUpdate:
		return r.update(b)
	case shapeDelete:
		return r.delete(b)
	}
	return "", nil, fmt.Errorf("%w: %s", ErrUnsupported, b.shape)
}

type renderer struct {
	sb   strings.Builder
	args []any
}

// bind records value and returns its placeholder.
func (r *renderer) bind(value any) string {
	r.args = append(r.args, value)
	return "$" + strconv.Itoa(len(r.args))
}

func (r *renderer) insert(b *Builder) (string, []any, error) {
	cols := make([]string, 0, len(b.values))
	phs := make([]string, 0, len(b.values))
	for _, c := range b.values {
		if !c.included {
			continue
		}
		if err := checkIdent(c.field); err != nil {
			return "", nil, err
		}
		cols = append(cols, c.field)
		phs = append(phs, r.bind(c.value))
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("%w: insert into %s", ErrNoFields, b.table)
	}

	fmt.Fprintf(&r.sb, "INSERT INTO %s (%s) VALUES (%s)",
		b.table, strings.Join(cols, ", "), strings.Join(phs, ", "))
	return r.sb.String(), r.args, nil
}

func (r *renderer) selectRows(b *Builder) (string, []any, error) {
	fields := b.fields
	if len(fields) == 0 {
		fields = []string{"*"}
	}
	for _, f := range fields {
		if f == "*" {
			continue
		}
		if err := checkIdent(f); err != nil {
			return "", nil, err
		}
	}

	fmt.Fprintf(&r.sb, "SELECT %s FROM %s", strings.Join(fields, ", "), b.table)
	if err := r.whereClause(b.where); err != nil {
		return "", nil, err
	}
	if len(b.orderBy) > 0 {
		for _, f := range b.orderBy {
			if err := checkIdent(f); err != nil {
				return "", nil, err
			}
		}
		r.sb.WriteString(" ORDER BY ")
		r.sb.WriteString(strings.Join(b.orderBy, ", "))
	}
	return r.sb.String(), r.args, nil
}

func (r *renderer) update(b *Builder) (string, []any, error) {
	sets := make([]string, 0, len(b.values))
	for _, c := range b.values {
		if !c.included {
			continue
		}
		if err := checkIdent(c.field); err != nil {
			return "", nil, err
		}
		sets = append(sets, c.field+" = "+r.bind(c.value))
	}
	if len(sets) == 0 {
		return "", nil, fmt.Errorf("%w: update %s", ErrNoFields, b.table)
	}

	fmt.Fprintf(&r.sb, "UPDATE %s SET %s", b.table, strings.Join(sets, ", "))
	if err := r.whereClause(b.where); err != nil {
		return "", nil, err
	}
	return r.sb.String(), r.args, nil
}

func (r *renderer) delete(b *Builder) (string, []any, error) {
	fmt.Fprintf(&r.sb, "DELETE FROM %s", b.table)
	if err := r.whereClause(b.where); err != nil {
		return "", nil, err
	}
	return r.sb.String(), r.args, nil
}

func (r *renderer) whereClause(conds []contribution) error {
	if len(conds) == 0 {
		return nil
	}
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		if err := checkIdent(c.field); err != nil {
			return err
		}
		parts = append(parts, c.field+" = "+r.bind(c.value))
	}
	r.sb.WriteString(" WHERE ")
	r.sb.WriteString(strings.Join(parts, " AND "))
	return nil
}

func checkIdent(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// some reports whether value is present and returns what should be bound.
func some(value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		return rv.Elem().Interface(), true
	}
	return value, true
}
