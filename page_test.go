package cursorpaging

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewPage(t *testing.T) {
	req := NewPageRequest().Asc(_userID).WithPageSize(2)

	t.Run("last page keeps rows", func(t *testing.T) {
		page, err := NewPage(req, []user{{ID: 1}, {ID: 2}}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, page.Size())
		assert.False(t, page.HasNext())
		assert.Nil(t, page.NextWithPageSize(5))
		assert.Same(t, req, page.Self)
	})

	t.Run("extra row is trimmed", func(t *testing.T) {
		page, err := NewPage(req, []user{{ID: 1}, {ID: 2}, {ID: 3}}, nil)
		require.NoError(t, err)
		assert.Equal(t, []user{{ID: 1}, {ID: 2}}, page.Content)
		require.True(t, page.HasNext())
		assert.Equal(t, int64(2), page.Next.Positions()[0].Value)
		assert.Equal(t, 5, page.NextWithPageSize(5).PageSize())
	})

	t.Run("getter errors are returned", func(t *testing.T) {
		_, err := NewPage(req, []user{{ID: 1}, {ID: 2}, {ID: 3}}, Getters[user]{
			"id": func(u user) any { return struct{}{} },
		})
		require.ErrorIs(t, err, ErrValueType)
	})

	t.Run("reversed rows are restored to position order", func(t *testing.T) {
		reversed := req.ToReversed()

		page, err := NewPage(reversed, []user{{ID: 5}, {ID: 4}, {ID: 3}}, nil)
		require.NoError(t, err)
		assert.Equal(t, []user{{ID: 4}, {ID: 5}}, page.Content)
		require.True(t, page.HasNext())
		assert.True(t, page.Next.IsReversed())
		assert.Equal(t, int64(3), page.Next.Positions()[0].Value)

		page, err = NewPage(reversed, []user{{ID: 2}, {ID: 1}}, nil)
		require.NoError(t, err)
		assert.Equal(t, []user{{ID: 1}, {ID: 2}}, page.Content)
		assert.False(t, page.HasNext())
	})

	t.Run("nil page", func(t *testing.T) {
		var page *Page[user]
		assert.Equal(t, 0, page.Size())
		assert.False(t, page.HasNext())
		_, ok := page.TotalCount()
		assert.False(t, ok)
	})
}

func Test_MapContent(t *testing.T) {
	req := NewPageRequest().Asc(_userID)
	page := &Page[user]{Content: []user{{ID: 1, Name: "a"}}, Self: req}

	mapped := MapContent(page, func(u user) string { return fmt.Sprintf("%d:%s", u.ID, u.Name) })
	assert.Equal(t, []string{"1:a"}, mapped.Content)
	assert.Same(t, req, mapped.Self)
	assert.Nil(t, mapped.Next)
}

type counterFunc func(ctx context.Context, req *PageRequest) (int64, error)

func (f counterFunc) Count(ctx context.Context, req *PageRequest) (int64, error) {
	return f(ctx, req)
}

func Test_ResolveTotalCount(t *testing.T) {
	calls := 0
	counter := counterFunc(func(context.Context, *PageRequest) (int64, error) {
		calls++
		return 11, nil
	})

	req := NewPageRequest().Asc(_userID)
	got, err := ResolveTotalCount(context.Background(), counter, req)
	require.NoError(t, err)
	assert.Same(t, req, got)
	assert.Equal(t, 0, calls)

	got, err = ResolveTotalCount(context.Background(), counter, req.WithEnableTotalCount(true))
	require.NoError(t, err)
	count, ok := got.TotalCount()
	require.True(t, ok)
	assert.Equal(t, int64(11), count)
	assert.Equal(t, 1, calls)

	_, err = ResolveTotalCount(context.Background(), counter, got)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "carried count is not recounted")

	failing := counterFunc(func(context.Context, *PageRequest) (int64, error) {
		return 0, errors.New("boom")
	})
	_, err = ResolveTotalCount(context.Background(), failing, req.WithEnableTotalCount(true))
	require.Error(t, err)
}
