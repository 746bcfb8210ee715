package cursorpaging

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// Page is a loaded page of a dataset.
//
// Self is the request used to load the page. Next is the request of the
// following page, nil if this is the last one.
type Page[E any] struct {
	Content []E
	Self    *PageRequest
	Next    *PageRequest
}

// NewPage builds a page from a result set fetched with a limit of
// PageSize()+1. When the extra row is present it is dropped and Next is
// positioned after the last remaining row.
//
// A reversed request reads rows backwards. Its content is restored to the
// order of the positions, and Next is the reversed request positioned at the
// extra row, which is the last row of the preceding page.
func NewPage[E any](self *PageRequest, resultSet []E, getters Getters[E]) (*Page[E], error) {
	if self.IsReversed() {
		return newReversedPage(self, resultSet, getters)
	}

	ret := &Page[E]{Content: resultSet, Self: self}
	if !HasNextPage(self, resultSet) {
		return ret, nil
	}

	ret.Content = TrimResultSet(self, resultSet)

	next, err := NextPageRequest(self, lo.LastOrEmpty(ret.Content), getters)
	if err != nil {
		return nil, err
	}
	ret.Next = next

	return ret, nil
}

func newReversedPage[E any](self *PageRequest, resultSet []E, getters Getters[E]) (*Page[E], error) {
	content := slices.Clone(TrimResultSet(self, resultSet))
	slices.Reverse(content)

	ret := &Page[E]{Content: content, Self: self}
	if !HasNextPage(self, resultSet) {
		return ret, nil
	}

	next, err := NextPageRequest(self, resultSet[self.PageSize()], getters)
	if err != nil {
		return nil, err
	}
	ret.Next = next

	return ret, nil
}

// HasNextPage reports whether a result set fetched with DatasetLimit holds
// more rows than the page size.
func HasNextPage[E any](r *PageRequest, resultSet []E) bool {
	return len(resultSet) > r.PageSize()
}

// TrimResultSet cuts a result set fetched with DatasetLimit to the page size.
func TrimResultSet[E any](r *PageRequest, resultSet []E) []E {
	if HasNextPage(r, resultSet) {
		return resultSet[:r.PageSize()]
	}

	return resultSet
}

// DatasetLimit returns the number of rows to fetch for r: one more than the
// page size to detect a following page.
func DatasetLimit(r *PageRequest) int {
	return r.PageSize() + 1
}

func (p *Page[E]) HasNext() bool {
	return p != nil && p.Next != nil
}

func (p *Page[E]) Size() int {
	if p == nil {
		return 0
	}

	return len(p.Content)
}

// NextWithPageSize returns the next page request with another page size,
// nil if there is no next page.
func (p *Page[E]) NextWithPageSize(size int) *PageRequest {
	if !p.HasNext() {
		return nil
	}

	return p.Next.WithPageSize(size)
}

// TotalCount returns the total count carried by the page request.
func (p *Page[E]) TotalCount() (int64, bool) {
	if p == nil {
		return 0, false
	}

	return p.Self.TotalCount()
}

// MapContent converts the content of a page, keeping its requests.
func MapContent[E, T any](p *Page[E], fn func(E) T) *Page[T] {
	if p == nil {
		return nil
	}

	return &Page[T]{
		Content: lo.Map(p.Content, func(item E, _ int) T {
			return fn(item)
		}),
		Self: p.Self,
		Next: p.Next,
	}
}

// Repository loads pages of entities.
type Repository[E any] interface {
	LoadPage(ctx context.Context, req *PageRequest) (*Page[E], error)
	Count(ctx context.Context, req *PageRequest) (int64, error)
}

// Counter counts the rows matching the filters and rules of a request.
type Counter interface {
	Count(ctx context.Context, req *PageRequest) (int64, error)
}

// ResolveTotalCount counts the dataset when counting is enabled and no count
// is carried yet. The count is stored in the returned request.
func ResolveTotalCount(ctx context.Context, counter Counter, req *PageRequest) (*PageRequest, error) {
	if !req.IsTotalCountEnabled() {
		return req, nil
	}

	if _, ok := req.TotalCount(); ok {
		return req, nil
	}

	count, err := counter.Count(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("cannot count total: %w", err)
	}

	return req.WithTotalCount(count), nil
}
