package cursorpaging

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// PageRequest describes a page of a dataset. It is immutable, every With*
// method returns a modified copy. Methods are nil-safe, a nil request is an
// empty first page request.
//
//	req := NewPageRequest().
//		Asc(name).
//		Asc(id).
//		WithFilter(Where(status).In("active", "pending")).
//		WithPageSize(20)
type PageRequest struct {
	positions        Positions
	filters          FilterList
	rules            []FilterRule
	pageSize         int
	enableTotalCount bool
	totalCount       *int64
}

func NewPageRequest() *PageRequest {
	return &PageRequest{
		filters:  And(),
		pageSize: DefaultPageSize,
	}
}

func (r *PageRequest) clone() *PageRequest {
	if r == nil {
		return NewPageRequest()
	}

	c := *r
	c.positions = slices.Clone(r.positions)
	c.rules = slices.Clone(r.rules)
	if r.totalCount != nil {
		c.totalCount = lo.ToPtr(*r.totalCount)
	}

	return &c
}

// Asc appends an ascending position. A previous position on the same
// attribute is removed.
func (r *PageRequest) Asc(attr Attribute) *PageRequest {
	return r.WithPosition(Asc(attr))
}

// Desc appends a descending position. A previous position on the same
// attribute is removed.
func (r *PageRequest) Desc(attr Attribute) *PageRequest {
	return r.WithPosition(Desc(attr))
}

// WithPosition appends positions without overwriting existing ones.
// Order is preserved as if calling:
//
//	OrderBy(p1).ThenBy(p2).ThenBy(p3)...
func (r *PageRequest) WithPosition(positions ...Position) *PageRequest {
	c := r.clone()

	for _, p := range positions {
		idx := slices.IndexFunc(c.positions, func(processed Position) bool {
			return processed.Attribute.Name == p.Attribute.Name
		})

		// Remove previous occurrence (avoid duplication).
		if idx != -1 {
			c.positions = slices.Delete(c.positions, idx, idx+1)
		}

		c.positions = append(c.positions, p)
	}

	return c
}

// WithPositions replaces all positions.
func (r *PageRequest) WithPositions(positions ...Position) *PageRequest {
	c := r.clone()
	c.positions = nil

	return c.WithPosition(positions...)
}

// WithFilter adds elements to the top-level filter list.
func (r *PageRequest) WithFilter(elements ...QueryElement) *PageRequest {
	c := r.clone()
	c.filters = c.filters.With(elements...)

	return c
}

// WithFilters replaces the top-level filter list.
func (r *PageRequest) WithFilters(filters FilterList) *PageRequest {
	c := r.clone()
	if filters.Type == "" {
		filters.Type = ListAND
	}
	c.filters = filters

	return c
}

func (r *PageRequest) WithRules(rules ...FilterRule) *PageRequest {
	c := r.clone()
	c.rules = append(c.rules, rules...)

	return c
}

// WithPageSize sets the page size, NormalizeLimit is applied.
func (r *PageRequest) WithPageSize(size int) *PageRequest {
	c := r.clone()
	c.pageSize = NormalizeLimit(size)

	return c
}

// WithEnableTotalCount toggles counting. Enabling it drops a carried count
// so the next load counts again.
func (r *PageRequest) WithEnableTotalCount(enabled bool) *PageRequest {
	c := r.clone()
	c.enableTotalCount = enabled
	if enabled {
		c.totalCount = nil
	}

	return c
}

// WithTotalCount stores a known total count.
func (r *PageRequest) WithTotalCount(count int64) *PageRequest {
	c := r.clone()
	c.totalCount = &count

	return c
}

// PositionOf returns the request of the page following entity.
func (r *PageRequest) PositionOf(entity any) (*PageRequest, error) {
	return NextPageRequest[any](r, entity, nil)
}

func (r *PageRequest) Positions() Positions {
	if r == nil {
		return nil
	}

	return slices.Clone(r.positions)
}

func (r *PageRequest) Filters() FilterList {
	if r == nil {
		return And()
	}

	return r.filters
}

func (r *PageRequest) Rules() []FilterRule {
	if r == nil {
		return nil
	}

	return slices.Clone(r.rules)
}

func (r *PageRequest) PageSize() int {
	if r == nil {
		return DefaultPageSize
	}

	return r.pageSize
}

// TotalCount returns the carried total count, if any.
func (r *PageRequest) TotalCount() (int64, bool) {
	if r == nil || r.totalCount == nil {
		return 0, false
	}

	return *r.totalCount, true
}

func (r *PageRequest) IsTotalCountEnabled() bool {
	return r != nil && r.enableTotalCount
}

// ToReversed returns the request reading backwards from its positions. For
// the request of a page other than the first one this addresses the
// previous page: the positions hold the last row of that page, which is
// included.
func (r *PageRequest) ToReversed() *PageRequest {
	c := r.clone()
	c.positions = lo.Map(c.positions, func(p Position, _ int) Position {
		return p.ToReversed()
	})

	return c
}

// IsReversed reports whether the request reads backwards.
func (r *PageRequest) IsReversed() bool {
	positions := r.Positions()

	return len(positions) > 0 && positions[0].Reversed
}

// IsFirstPage reports whether the request addresses the first page.
func (r *PageRequest) IsFirstPage() bool {
	return !r.Positions().HasValues()
}

// FindFilter searches the filter tree for the first filter on attribute name.
func (r *PageRequest) FindFilter(name string) (Filter, bool) {
	return lo.Find(r.Filters().Filters(), func(f Filter) bool {
		return f.Attribute.Name == name
	})
}

// FirstPage returns the request with position values removed.
func (r *PageRequest) FirstPage() *PageRequest {
	c := r.clone()
	c.positions = lo.Map(c.positions, func(p Position, _ int) Position {
		return p.WithoutValue()
	})

	return c
}

func (r *PageRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: page request is nil", ErrInvalidRequest)
	}

	if err := r.positions.validate(); err != nil {
		return err
	}

	if err := r.filters.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	for _, rl := range r.rules {
		if rl == nil || rl.Name() == "" {
			return fmt.Errorf("%w: unnamed filter rule", ErrInvalidRequest)
		}
	}

	if r.pageSize < 1 || r.pageSize > MaxPageSize {
		return fmt.Errorf("%w: page size %d out of range", ErrInvalidRequest, r.pageSize)
	}

	return nil
}

// CountCondition returns the predicate of filters and rules, nil when the
// whole dataset is selected.
func (r *PageRequest) CountCondition() Condition {
	return AllOf(r.conditions()...)
}

// PageCondition returns CountCondition restricted to the rows following the
// positions.
func (r *PageRequest) PageCondition() Condition {
	return AllOf(append(r.conditions(), r.Positions().Condition())...)
}

func (r *PageRequest) conditions() []Condition {
	conditions := []Condition{r.Filters().Condition()}
	for _, rl := range r.Rules() {
		if rl != nil {
			conditions = append(conditions, rl.Condition())
		}
	}

	return conditions
}

// Getters - map of value getters by attribute name. They take precedence
// over reflective lookup of the attribute field.
//
//	cursorpaging.Getters[models.User]{
//		"id":   func(last models.User) any { return last.ID },
//		"name": func(last models.User) any { return last.Name },
//	}
type Getters[E any] map[string]func(E) any

// NextPageRequest returns the request of the page following last.
func NextPageRequest[E any](r *PageRequest, last E, getters Getters[E]) (*PageRequest, error) {
	c := r.clone()

	for i, p := range c.positions {
		var (
			next Position
			err  error
		)

		if getter, ok := getters[p.Attribute.Name]; ok {
			next, err = p.WithValue(getter(last))
		} else {
			next, err = p.PositionOf(last)
		}

		if err != nil {
			return nil, fmt.Errorf("cannot build next page request: %w", err)
		}

		c.positions[i] = next
	}

	return c, nil
}
