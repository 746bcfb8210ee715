package cursorpaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Filter_Condition(t *testing.T) {
	tests := []struct {
		name     string
		element  QueryElement
		wantSQL  string
		wantVars []any
	}{
		{
			name:     "equal to",
			element:  Where(_userName).EqualTo("alpha"),
			wantSQL:  "name = ?",
			wantVars: []any{"alpha"},
		},
		{
			name:     "in normalizes values",
			element:  Where(_userID).In(1, int32(2), uint8(3)),
			wantSQL:  "id IN (?, ?, ?)",
			wantVars: []any{int64(1), int64(2), int64(3)},
		},
		{
			name:     "nil and empty values are dropped",
			element:  Where(_userName).In(nil, "", "beta"),
			wantSQL:  "name = ?",
			wantVars: []any{"beta"},
		},
		{
			name:     "like ignoring case",
			element:  WhereIgnoreCase(_userName).Like("%AL%", "b%"),
			wantSQL:  "(LOWER(name) LIKE ? OR LOWER(name) LIKE ?)",
			wantVars: []any{"%al%", "b%"},
		},
		{
			name:     "range filters are joined with and",
			element:  Where(_userID).GreaterThan(1, 2),
			wantSQL:  "(id > ? AND id > ?)",
			wantVars: []any{int64(1), int64(2)},
		},
		{
			name:     "ge and le",
			element:  And(Where(_userID).GreaterThanOrEqualTo(1), Where(_userID).LessThanOrEqualTo(9)),
			wantSQL:  "(id >= ? AND id <= ?)",
			wantVars: []any{int64(1), int64(9)},
		},
		{
			name: "nested lists",
			element: Or(
				Where(_userName).EqualTo("a"),
				And(Where(_userID).LessThan(5), Where(_userName).EqualTo("b")),
			),
			wantSQL:  "(name = ? OR (id < ? AND name = ?))",
			wantVars: []any{"a", int64(5), "b"},
		},
		{
			name:     "empty elements contribute nothing",
			element:  And(Or(), Where(_userName).EqualTo(nil), Where(_userID).EqualTo(3)),
			wantSQL:  "id = ?",
			wantVars: []any{int64(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := tt.element.Condition()
			require.NotNil(t, cond)

			sql, vars := cond.ToSQL()
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantVars, vars)
		})
	}
}

func Test_Filter_IsEmpty(t *testing.T) {
	assert.True(t, Where(_userName).In().IsEmpty())
	assert.True(t, Where(_userName).EqualTo("").IsEmpty())
	assert.Nil(t, Where(_userName).EqualTo(nil).Condition())
	assert.True(t, And(Or(), Where(_userName).EqualTo(nil)).IsEmpty())
	assert.Nil(t, And(Or()).Condition())
	assert.False(t, Or(Where(_userName).EqualTo("x")).IsEmpty())
}

func Test_FilterList_Traversal(t *testing.T) {
	list := And(
		Where(_userName).EqualTo("a"),
		Or(Where(_userID).In(1, 2), Where(_userEmail).Like("%@x")),
	)

	filters := list.Filters()
	require.Len(t, filters, 3)
	assert.Equal(t, []string{"name", "id", "email"}, []string{
		filters[0].Attribute.Name, filters[1].Attribute.Name, filters[2].Attribute.Name,
	})
	assert.Len(t, list.Lists(), 1)
	assert.Len(t, list.Attributes(), 3)
}

func Test_Filter_validate(t *testing.T) {
	require.NoError(t, Where(_userID).In(1, "x").Attribute.Validate())
	require.Error(t, Where(_userID).In(1, "x").validate())
	require.Error(t, Where(_userID).Like("1").validate())
	require.Error(t, Filter{Attribute: _userID, Type: "NE"}.validate())
	require.NoError(t, And(Where(_userName).Like("a%")).validate())
}
