package sqlbuilder

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreate_ColumnsInCallOrder(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	query, args, err := Create("view_table").
		AddArg("id", "v1").
		AddArg("belong_to_id", "a1").
		AddArg("name", "Notes").
		AddArg("create_time", now).
		Build()

	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO view_table (id, belong_to_id, name, create_time) VALUES ($1, $2, $3, $4)", query)
	assert.Equal(t, []any{"v1", "a1", "Notes", now}, args)
}

func TestCreate_NoFields(t *testing.T) {
	_, _, err := Create("view_table").Build()
	require.ErrorIs(t, err, ErrNoFields)

	_, _, err = Create("view_table").AddSomeArg("name", (*string)(nil)).Build()
	require.ErrorIs(t, err, ErrNoFields)
}

func TestCreate_WhereIsUnsupported(t *testing.T) {
	_, _, err := Create("view_table").AddArg("id", 1).AndWhereEq("id", 1).Build()
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name      string
		builder   *Builder
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "all columns no conditions",
			builder:   Select("view_table").AddField("*"),
			wantQuery: "SELECT * FROM view_table",
		},
		{
			name:      "default field list",
			builder:   Select("view_table").AndWhereEq("id", "v1"),
			wantQuery: "SELECT * FROM view_table WHERE id = $1",
			wantArgs:  []any{"v1"},
		},
		{
			name: "fields conditions and order",
			builder: Select("view_table").
				AddField("id").AddField("name").
				AndWhereEq("belong_to_id", "a1").
				AndWhereEq("is_trash", false).
				OrderBy("create_time").OrderBy("id"),
			wantQuery: "SELECT id, name FROM view_table WHERE belong_to_id = $1 AND is_trash = $2 ORDER BY create_time, id",
			wantArgs:  []any{"a1", false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := tt.builder.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestUpdate_SkipsAbsentOptionalsAndKeepsNumbering(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	query, args, err := Update("view_table").
		AddSomeArg("name", (*string)(nil)).
		AddSomeArg("description", strPtr("d")).
		AddSomeArg("thumbnail", nil).
		AddSomeArg("modified_time", &now).
		AddArgIf(false, "is_trash", true).
		AndWhereEq("id", "v1").
		Build()

	require.NoError(t, err)
	assert.Equal(t, "UPDATE view_table SET description = $1, modified_time = $2 WHERE id = $3", query)
	assert.Equal(t, []any{"d", now, "v1"}, args)
}

func TestUpdate_ArgIfBindsZeroValueWhenRequested(t *testing.T) {
	query, args, err := Update("view_table").
		AddArgIf(true, "is_trash", false).
		AndWhereEq("id", "v1").
		Build()

	require.NoError(t, err)
	assert.Equal(t, "UPDATE view_table SET is_trash = $1 WHERE id = $2", query)
	assert.Equal(t, []any{false, "v1"}, args)
}

func TestUpdate_EmptySetIsRejected(t *testing.T) {
	_, _, err := Update("view_table").
		AddSomeArg("name", (*string)(nil)).
		AddArgIf(false, "is_trash", true).
		AndWhereEq("id", "v1").
		Build()
	require.ErrorIs(t, err, ErrNoFields)
}

func TestDelete(t *testing.T) {
	query, args, err := Delete("view_table").AndWhereEq("id", "v1").Build()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM view_table WHERE id = $1", query)
	assert.Equal(t, []any{"v1"}, args)

	query, args, err = Delete("view_table").Build()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM view_table", query)
	assert.Empty(t, args)
}

func TestDelete_ValuesAreUnsupported(t *testing.T) {
	_, _, err := Delete("view_table").AddArg("name", "x").Build()
	require.ErrorIs(t, err, ErrUnsupported)

	_, _, err = Delete("view_table").OrderBy("id").Build()
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestInvalidIdentifiers(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder
	}{
		{"table", Select("view_table; DROP TABLE x")},
		{"insert column", Create("view_table").AddArg("name)", 1)},
		{"update column", Update("view_table").AddArg("a = 1 --", 1)},
		{"where column", Delete("view_table").AndWhereEq("id OR 1", 1)},
		{"select field", Select("view_table").AddField("count(*)")},
		{"order by", Select("view_table").OrderBy("id DESC")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.builder.Build()
			require.ErrorIs(t, err, ErrInvalidIdentifier)
		})
	}
}

func TestSchemaQualifiedTable(t *testing.T) {
	query, _, err := Select("public.view_table").Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM public.view_table", query)
}

// Every mix of required and optional contributions must produce as many
// placeholders as arguments, numbered contiguously in add order.
func TestUpdate_PlaceholdersMatchArgsForEveryOptionalMask(t *testing.T) {
	const required, optional = 2, 4

	for mask := 0; mask < 1<<optional; mask++ {
		b := Update("t")
		var want []any
		for i := 0; i < required; i++ {
			b.AddArg(fmt.Sprintf("r%d", i), fmt.Sprintf("rv%d", i))
			want = append(want, fmt.Sprintf("rv%d", i))
		}
		for i := 0; i < optional; i++ {
			var v *string
			if mask&(1<<i) != 0 {
				v = strPtr(fmt.Sprintf("ov%d", i))
				want = append(want, *v)
			}
			b.AddSomeArg(fmt.Sprintf("o%d", i), v)
		}
		b.AndWhereEq("id", "key")
		want = append(want, "key")

		query, args, err := b.Build()
		require.NoError(t, err, "mask %b", mask)
		require.Equal(t, want, args, "mask %b", mask)

		for n := 1; n <= len(args); n++ {
			assert.Equal(t, 1, strings.Count(query, fmt.Sprintf("$%d ", n))+strings.Count(query, fmt.Sprintf("$%d,", n))+boolToInt(strings.HasSuffix(query, fmt.Sprintf("$%d", n))),
				"placeholder $%d in %q", n, query)
		}
		assert.NotContains(t, query, fmt.Sprintf("$%d", len(args)+1))
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
