package api

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alp4ka/cursorpaging"
	"github.com/Alp4ka/cursorpaging/serializer"
)

type record struct {
	ID   int64
	Name string
}

func cursorOf(t *testing.T, link Link) string {
	t.Helper()

	u, err := url.Parse(link.Href)
	require.NoError(t, err)

	return u.Query().Get("cursor")
}

func Test_PageLinks(t *testing.T) {
	s := serializer.New().WithAttributes(_id, _name)
	links := NewPageLinks(s, "/api/v1/records").WithPageSize(2)

	first := cursorpaging.NewPageRequest().Asc(_name).Asc(_id).WithPageSize(2)
	page, err := cursorpaging.NewPage(first, []record{{1, "a"}, {2, "b"}, {3, "c"}}, nil)
	require.NoError(t, err)
	require.True(t, page.HasNext())

	got, err := Links(links, page)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, RelSelf, got[0].Rel)
	assert.Equal(t, RelNext, got[1].Rel)
	assert.True(t, strings.HasPrefix(got[0].Href, "/api/v1/records?"))
	assert.Contains(t, got[0].Href, "pageSize=2")

	next, err := s.ParseCursor(cursorOf(t, got[1]))
	require.NoError(t, err)
	assert.Equal(t, []any{"b", int64(2)}, []any{next.Positions()[0].Value, next.Positions()[1].Value})

	self, err := s.ParseCursor(cursorOf(t, got[0]))
	require.NoError(t, err)
	assert.True(t, self.IsFirstPage())
}

func Test_PageLinks_LastPage(t *testing.T) {
	s := serializer.New()
	links := NewPageLinks(s, "/records")

	page, err := cursorpaging.NewPage(cursorpaging.NewPageRequest().Asc(_id), []record{{1, "a"}}, nil)
	require.NoError(t, err)

	next, err := links.Next(page.Next)
	require.NoError(t, err)
	assert.Nil(t, next)

	got, err := Links(links, page)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotContains(t, got[0].Href, "pageSize")
}

func Test_PageLinks_WithParamDoesNotLeak(t *testing.T) {
	base := NewPageLinks(serializer.New(), "/records")
	_ = base.WithParam("filter", "x")

	link, err := base.Link(RelFirst, cursorpaging.NewPageRequest().Asc(_id))
	require.NoError(t, err)
	assert.NotContains(t, link.Href, "filter=")
	assert.Equal(t, RelFirst, link.Rel)
}

func Test_PageModel(t *testing.T) {
	s := serializer.New()
	req := cursorpaging.NewPageRequest().Asc(_id).WithPageSize(1).WithTotalCount(5)

	page, err := cursorpaging.NewPage(req, []record{{1, "a"}, {2, "b"}}, nil)
	require.NoError(t, err)

	model, err := PageModel(NewPageLinks(s, "/records"), page, func(r record) string { return r.Name })
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, model.Content)
	assert.Len(t, model.Links, 2)
	require.NotNil(t, model.TotalElements)
	assert.Equal(t, int64(5), *model.TotalElements)
}

func Test_NewCollectionModel_EmptyContent(t *testing.T) {
	model := NewCollectionModel[record](nil)
	assert.NotNil(t, model.Content)
	assert.Empty(t, model.Content)

	rep := NewRepresentationModel(map[string]int64{"totalElements": 3})
	assert.NotNil(t, rep.Links)
}
