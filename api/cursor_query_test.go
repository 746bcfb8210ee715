package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alp4ka/cursorpaging"
)

func Test_CursorQuery_Validate(t *testing.T) {
	tests := []struct {
		name      string
		query     CursorQuery
		max       int
		wantField string
	}{
		{name: "empty", query: CursorQuery{}, max: 20},
		{name: "cursor and page size", query: CursorQuery{Cursor: "AbC-_9xy", PageSize: 20}, max: 20},
		{name: "padded cursor", query: CursorQuery{Cursor: "AbC-_9x="}, max: 20, wantField: "cursor"},
		{name: "standard alphabet", query: CursorQuery{Cursor: "AbC+/9xy"}, max: 20, wantField: "cursor"},
		{name: "page size above max", query: CursorQuery{PageSize: 21}, max: 20, wantField: "pageSize"},
		{name: "negative page size", query: CursorQuery{PageSize: -1}, max: 20, wantField: "pageSize"},
		{name: "default max", query: CursorQuery{PageSize: cursorpaging.MaxPageSize + 1}, wantField: "pageSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate(tt.max)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Contains(t, valErr.Fields, tt.wantField)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func Test_CursorQuery_Helpers(t *testing.T) {
	assert.Equal(t, 10, CursorQuery{}.PageSizeOrDefault(10))
	assert.Equal(t, 5, CursorQuery{PageSize: 5}.PageSizeOrDefault(10))

	assert.False(t, CursorQuery{Cursor: " "}.HasCursor())
	assert.True(t, CursorQuery{Cursor: "abc"}.HasCursor())
}

func Test_ParseSort(t *testing.T) {
	positions, err := ParseSort("name desc, id", _attrs)
	require.NoError(t, err)
	assert.Equal(t, cursorpaging.Positions{cursorpaging.Desc(_name), cursorpaging.Asc(_id)}, positions)

	positions, err = ParseSort(" , ", _attrs)
	require.NoError(t, err)
	assert.Empty(t, positions)

	_, err = ParseSort("name sideways", _attrs)
	require.ErrorIs(t, err, ErrValidation)

	_, err = ParseSort("name asc extra", _attrs)
	require.ErrorIs(t, err, ErrValidation)

	_, err = ParseSort("ranking", _attrs)
	require.ErrorIs(t, err, cursorpaging.ErrUnknownAttribute)
}
