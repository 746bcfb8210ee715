package cursorpaging

import (
	"fmt"

	"github.com/samber/lo"
)

// QueryElement is an element of the filter tree of a page request.
type QueryElement interface {
	// Condition returns the SQL predicate of the element, nil if it is empty.
	Condition() Condition
	// Attributes returns all attributes the element references.
	Attributes() []Attribute
	IsEmpty() bool
}

// FilterType defines how a filter compares its attribute with its values.
type FilterType string

const (
	// FilterEQ matches one value with "=" and several values with IN.
	FilterEQ FilterType = "EQ"
	// FilterGT, FilterGE, FilterLT and FilterLE combine several values with AND.
	FilterGT FilterType = "GT"
	FilterGE FilterType = "GE"
	FilterLT FilterType = "LT"
	FilterLE FilterType = "LE"
	// FilterLIKE combines several patterns with OR.
	FilterLIKE FilterType = "LIKE"
)

func (t FilterType) Valid() bool {
	switch t {
	case FilterEQ, FilterGT, FilterGE, FilterLT, FilterLE, FilterLIKE:
		return true
	default:
		return false
	}
}

func (t FilterType) operator() Operator {
	switch t {
	case FilterGT:
		return OperatorGT
	case FilterGE:
		return OperatorGTE
	case FilterLT:
		return OperatorLT
	case FilterLE:
		return OperatorLTE
	default:
		return OperatorEq
	}
}

// Filter removes elements which do not match its values.
type Filter struct {
	Attribute Attribute
	Type      FilterType
	Values    []any
}

// values returns the non-empty values normalized where possible.
func (f Filter) values() []any {
	ret := make([]any, 0, len(f.Values))
	for _, v := range f.Values {
		nv, err := f.Attribute.Normalize(v)
		if err != nil {
			nv = v
		}

		if nv == nil || nv == "" {
			continue
		}

		ret = append(ret, f.Attribute.operand(nv))
	}

	return ret
}

func (f Filter) IsEmpty() bool {
	return len(f.values()) == 0
}

func (f Filter) Attributes() []Attribute {
	return []Attribute{f.Attribute}
}

func (f Filter) Condition() Condition {
	values := f.values()
	if len(values) == 0 {
		return nil
	}

	expr := f.Attribute.expression()

	switch f.Type {
	case FilterEQ:
		return In(expr, values...)
	case FilterLIKE:
		return AnyOf(lo.Map(values, func(v any, _ int) Condition {
			return Like(expr, fmt.Sprint(v))
		})...)
	default:
		return AllOf(lo.Map(values, func(v any, _ int) Condition {
			return Compare(expr, f.Type.operator(), v)
		})...)
	}
}

func (f Filter) validate() error {
	if err := f.Attribute.Validate(); err != nil {
		return err
	}

	if !f.Type.Valid() {
		return fmt.Errorf("invalid filter type '%s'", f.Type)
	}

	if f.Type == FilterLIKE && f.Attribute.Type != TypeString {
		return fmt.Errorf("LIKE filter on non string attribute '%s'", f.Attribute.Name)
	}

	for _, v := range f.Values {
		if _, err := f.Attribute.Normalize(v); err != nil {
			return err
		}
	}

	return nil
}

// ListType defines how a FilterList joins its elements.
type ListType string

const (
	ListAND ListType = "AND"
	ListOR  ListType = "OR"
)

func (t ListType) Valid() bool {
	return t == ListAND || t == ListOR
}

// FilterList nests query elements joined by AND or OR.
type FilterList struct {
	Type     ListType
	Elements []QueryElement
}

func And(elements ...QueryElement) FilterList {
	return FilterList{Type: ListAND, Elements: elements}
}

func Or(elements ...QueryElement) FilterList {
	return FilterList{Type: ListOR, Elements: elements}
}

// With returns a copy of the list with elements appended.
func (l FilterList) With(elements ...QueryElement) FilterList {
	l.Elements = append(append([]QueryElement(nil), l.Elements...), elements...)

	return l
}

func (l FilterList) IsEmpty() bool {
	return lo.EveryBy(l.Elements, func(el QueryElement) bool {
		return el == nil || el.IsEmpty()
	})
}

func (l FilterList) Attributes() []Attribute {
	return lo.FlatMap(l.Elements, func(el QueryElement, _ int) []Attribute {
		if el == nil {
			return nil
		}

		return el.Attributes()
	})
}

func (l FilterList) Condition() Condition {
	conditions := make([]Condition, 0, len(l.Elements))
	for _, el := range l.Elements {
		if el == nil {
			continue
		}
		conditions = append(conditions, el.Condition())
	}

	if l.Type == ListOR {
		return AnyOf(conditions...)
	}

	return AllOf(conditions...)
}

// Filters returns all filters of the tree in depth-first order.
func (l FilterList) Filters() []Filter {
	ret := make([]Filter, 0, len(l.Elements))
	for _, el := range l.Elements {
		switch v := el.(type) {
		case Filter:
			ret = append(ret, v)
		case FilterList:
			ret = append(ret, v.Filters()...)
		}
	}

	return ret
}

// Lists returns the direct child lists.
func (l FilterList) Lists() []FilterList {
	ret := make([]FilterList, 0)
	for _, el := range l.Elements {
		if v, ok := el.(FilterList); ok {
			ret = append(ret, v)
		}
	}

	return ret
}

func (l FilterList) validate() error {
	if l.Type != "" && !l.Type.Valid() {
		return fmt.Errorf("invalid filter list type '%s'", l.Type)
	}

	for _, el := range l.Elements {
		var err error
		switch v := el.(type) {
		case Filter:
			err = v.validate()
		case FilterList:
			err = v.validate()
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// FilterBuilder creates filters on a single attribute.
type FilterBuilder struct {
	attr Attribute
}

// Where starts a filter on attr.
//
//	Where(name).EqualTo("alpha")
func Where(attr Attribute) FilterBuilder {
	return FilterBuilder{attr: attr}
}

// WhereIgnoreCase starts a case-insensitive filter on a string attribute.
func WhereIgnoreCase(attr Attribute) FilterBuilder {
	return FilterBuilder{attr: attr.WithIgnoreCase()}
}

func (b FilterBuilder) filter(typ FilterType, values []any) Filter {
	return Filter{Attribute: b.attr, Type: typ, Values: values}
}

func (b FilterBuilder) EqualTo(value any) Filter {
	return b.filter(FilterEQ, []any{value})
}

func (b FilterBuilder) In(values ...any) Filter {
	return b.filter(FilterEQ, values)
}

func (b FilterBuilder) Like(patterns ...string) Filter {
	return b.filter(FilterLIKE, lo.ToAnySlice(patterns))
}

func (b FilterBuilder) GreaterThan(values ...any) Filter {
	return b.filter(FilterGT, values)
}

func (b FilterBuilder) GreaterThanOrEqualTo(values ...any) Filter {
	return b.filter(FilterGE, values)
}

func (b FilterBuilder) LessThan(values ...any) Filter {
	return b.filter(FilterLT, values)
}

func (b FilterBuilder) LessThanOrEqualTo(values ...any) Filter {
	return b.filter(FilterLE, values)
}
