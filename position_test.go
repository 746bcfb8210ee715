package cursorpaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustValue(t *testing.T, p Position, v any) Position {
	t.Helper()

	ret, err := p.WithValue(v)
	require.NoError(t, err)

	return ret
}

func Test_Positions_ToSQL(t *testing.T) {
	tests := []struct {
		name      string
		positions Positions
		want      string
	}{
		{
			name:      "plain columns",
			positions: Positions{Asc(_userName), Desc(_userID)},
			want:      "name ASC, id DESC",
		},
		{
			name:      "nullable ascending sorts nulls last",
			positions: Positions{Asc(_userEmail), Asc(_userID)},
			want:      "email IS NULL, email ASC, id ASC",
		},
		{
			name:      "nullable descending sorts nulls first",
			positions: Positions{Desc(_userEmail), Asc(_userID)},
			want:      "email IS NULL DESC, email DESC, id ASC",
		},
		{
			name:      "case insensitive attribute sorts by lower case",
			positions: Positions{Asc(_userName.WithIgnoreCase()), Asc(_userID.WithColumn("u.id"))},
			want:      "LOWER(name) ASC, u.id ASC",
		},
		{
			name:      "reversed positions read against their order",
			positions: Positions{Asc(_userEmail).ToReversed(), Desc(_userID).ToReversed()},
			want:      "email IS NULL DESC, email DESC, id ASC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.positions.ToSQL())
		})
	}
}

func Test_Positions_Condition(t *testing.T) {
	tests := []struct {
		name      string
		positions func(t *testing.T) Positions
		wantSQL   string
		wantVars  []any
	}{
		{
			name: "first page has no condition",
			positions: func(t *testing.T) Positions {
				return Positions{Asc(_userName), Asc(_userID)}
			},
		},
		{
			name: "single ascending position",
			positions: func(t *testing.T) Positions {
				return Positions{mustValue(t, Asc(_userID), 5)}
			},
			wantSQL:  "id > ?",
			wantVars: []any{int64(5)},
		},
		{
			name: "single descending position",
			positions: func(t *testing.T) Positions {
				return Positions{mustValue(t, Desc(_userID), 5)}
			},
			wantSQL:  "id < ?",
			wantVars: []any{int64(5)},
		},
		{
			name: "two positions expand to dnf",
			positions: func(t *testing.T) Positions {
				return Positions{mustValue(t, Asc(_userName), "abc"), mustValue(t, Asc(_userID), 10)}
			},
			wantSQL:  "(name > ? OR (name = ? AND id > ?))",
			wantVars: []any{"abc", "abc", int64(10)},
		},
		{
			name: "three positions with mixed order",
			positions: func(t *testing.T) Positions {
				return Positions{
					mustValue(t, Desc(_userName), "abc"),
					mustValue(t, Asc(Attr("age", TypeInt)), 30),
					mustValue(t, Asc(_userID), 10),
				}
			},
			wantSQL:  "(name < ? OR (name = ? AND age > ?) OR (name = ? AND age = ? AND id > ?))",
			wantVars: []any{"abc", "abc", int64(30), "abc", int64(30), int64(10)},
		},
		{
			name: "nullable ascending value also matches nulls",
			positions: func(t *testing.T) Positions {
				return Positions{mustValue(t, Asc(_userEmail), "a@b.c"), mustValue(t, Asc(_userID), 5)}
			},
			wantSQL:  "((email > ? OR email IS NULL) OR (email = ? AND id > ?))",
			wantVars: []any{"a@b.c", "a@b.c", int64(5)},
		},
		{
			name: "nullable ascending null only continues within nulls",
			positions: func(t *testing.T) Positions {
				return Positions{mustValue(t, Asc(_userEmail), nil), mustValue(t, Asc(_userID), 5)}
			},
			wantSQL:  "(email IS NULL AND id > ?)",
			wantVars: []any{int64(5)},
		},
		{
			name: "nullable descending null continues with values",
			positions: func(t *testing.T) Positions {
				return Positions{mustValue(t, Desc(_userEmail), nil), mustValue(t, Asc(_userID), 5)}
			},
			wantSQL:  "(email IS NOT NULL OR (email IS NULL AND id > ?))",
			wantVars: []any{int64(5)},
		},
		{
			name: "nullable descending value excludes nulls",
			positions: func(t *testing.T) Positions {
				return Positions{mustValue(t, Desc(_userEmail), "a@b.c"), mustValue(t, Asc(_userID), 5)}
			},
			wantSQL:  "(email < ? OR (email = ? AND id > ?))",
			wantVars: []any{"a@b.c", "a@b.c", int64(5)},
		},
		{
			name: "nothing follows a trailing ascending null",
			positions: func(t *testing.T) Positions {
				return Positions{mustValue(t, Asc(_userEmail), nil)}
			},
			wantSQL: "1 = 0",
		},
		{
			name: "case insensitive position compares lower case",
			positions: func(t *testing.T) Positions {
				return Positions{mustValue(t, Asc(_userName.WithIgnoreCase()), "ABC"), mustValue(t, Asc(_userID), 1)}
			},
			wantSQL:  "(LOWER(name) > ? OR (LOWER(name) = ? AND id > ?))",
			wantVars: []any{"abc", "abc", int64(1)},
		},
		{
			name: "reversed positions include the row they were taken from",
			positions: func(t *testing.T) Positions {
				return Positions{
					mustValue(t, Asc(_userName), "abc").ToReversed(),
					mustValue(t, Asc(_userID), 10).ToReversed(),
				}
			},
			wantSQL:  "(name < ? OR (name = ? AND id <= ?))",
			wantVars: []any{"abc", "abc", int64(10)},
		},
		{
			name: "reversed descending position",
			positions: func(t *testing.T) Positions {
				return Positions{mustValue(t, Desc(_userID), 5).ToReversed()}
			},
			wantSQL:  "id >= ?",
			wantVars: []any{int64(5)},
		},
		{
			name: "reversed nullable null position",
			positions: func(t *testing.T) Positions {
				return Positions{mustValue(t, Asc(_userEmail), nil).ToReversed()}
			},
			wantSQL: "(email IS NOT NULL OR email IS NULL)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := tt.positions(t).Condition()
			if tt.wantSQL == "" {
				require.Nil(t, cond)
				return
			}

			require.NotNil(t, cond)
			sql, vars := cond.ToSQL()
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, len(tt.wantVars), len(vars))
			for i := range tt.wantVars {
				assert.Equal(t, tt.wantVars[i], vars[i])
			}
		})
	}
}

func Test_Positions_validate(t *testing.T) {
	withID := mustValue(t, Asc(_userID), 1)

	tests := []struct {
		name      string
		positions Positions
		wantErr   bool
	}{
		{"first page", Positions{Asc(_userName), Asc(_userID)}, false},
		{"next page", Positions{mustValue(t, Asc(_userName), "a"), withID}, false},
		{"empty", nil, true},
		{"duplicate attribute", Positions{Asc(_userID), Desc(_userID)}, true},
		{"mixed values", Positions{Asc(_userName), withID}, true},
		{"null on non nullable", Positions{{Attribute: _userName, Order: OrderASC, HasValue: true}, withID}, true},
		{"invalid order", Positions{{Attribute: _userID, Order: "UP"}}, true},
		{"mixed reversal", Positions{Asc(_userName).ToReversed(), Asc(_userID)}, true},
		{"forbidden column symbols", Positions{Asc(_userID.WithColumn("id; DROP TABLE users"))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.positions.validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRequest)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func Test_Position_PositionOf(t *testing.T) {
	email := "x@y.z"

	p, err := Asc(_userEmail).PositionOf(user{ID: 1, Email: &email})
	require.NoError(t, err)
	assert.True(t, p.HasValue)
	assert.Equal(t, "x@y.z", p.Value)

	p, err = Asc(_userEmail).PositionOf(&user{ID: 1})
	require.NoError(t, err)
	assert.True(t, p.HasValue)
	assert.Nil(t, p.Value)

	assert.False(t, p.WithoutValue().HasValue)
}
