// Package api contains helpers to expose cursor paging in a REST API: a
// JSON page request, query parameter binding, page links and envelopes.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/Alp4ka/cursorpaging"
)

// Keys of the filter tree JSON.
const (
	FilterAND  = "AND"
	FilterOR   = "OR"
	FilterEQ   = string(cursorpaging.FilterEQ)
	FilterGT   = string(cursorpaging.FilterGT)
	FilterGE   = string(cursorpaging.FilterGE)
	FilterLT   = string(cursorpaging.FilterLT)
	FilterLE   = string(cursorpaging.FilterLE)
	FilterLIKE = string(cursorpaging.FilterLIKE)
)

// OrderByEntry is one sort key of an OrderBy.
type OrderByEntry struct {
	Attribute string             `json:"attribute" validate:"required"`
	Order     cursorpaging.Order `json:"order" validate:"order"`
}

// OrderBy is an ordered attribute → order map. It is encoded as a JSON
// object whose key order is the sort order:
//
//	{"name": "ASC", "id": "DESC"}
type OrderBy []OrderByEntry

func (o OrderBy) Get(attribute string) (cursorpaging.Order, bool) {
	entry, ok := lo.Find(o, func(e OrderByEntry) bool {
		return e.Attribute == attribute
	})

	return entry.Order, ok
}

// Set replaces the order of attribute or appends it.
func (o OrderBy) Set(attribute string, order cursorpaging.Order) OrderBy {
	ret := slices.Clone(o)

	idx := slices.IndexFunc(ret, func(e OrderByEntry) bool {
		return e.Attribute == attribute
	})
	if idx == -1 {
		return append(ret, OrderByEntry{Attribute: attribute, Order: order})
	}
	ret[idx].Order = order

	return ret
}

func (o OrderBy) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(e.Attribute)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Order)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (o *OrderBy) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("orderBy must be an object, got %v", tok)
	}

	var ret OrderBy
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}

		var order string
		if err = dec.Decode(&order); err != nil {
			return fmt.Errorf("orderBy '%v': %w", tok, err)
		}

		ret = ret.Set(tok.(string), cursorpaging.Order(order))
	}

	if _, err = dec.Token(); err != nil {
		return err
	}
	*o = ret

	return nil
}

// DtoFilter is an element of the filter tree of a DtoPageRequest, either a
// list or a filter on one attribute:
//
//	{"AND": [{"EQ": {"name": ["alpha", "beta"]}}, {"OR": [...]}]}
//	{"GT": {"id": ["666"]}}
type DtoFilter struct {
	Type      string `validate:"oneof=AND OR EQ GT GE LT LE LIKE"`
	Attribute string
	Values    []string
	Filters   []DtoFilter `validate:"dive"`
}

func AndFilter(elements ...DtoFilter) DtoFilter {
	return DtoFilter{Type: FilterAND, Filters: elements}
}

func OrFilter(elements ...DtoFilter) DtoFilter {
	return DtoFilter{Type: FilterOR, Filters: elements}
}

// NewDtoFilter creates a filter of type typ (EQ, GT, GE, LT, LE, LIKE).
func NewDtoFilter(typ string, attribute string, values ...string) DtoFilter {
	return DtoFilter{Type: typ, Attribute: attribute, Values: values}
}

func (f DtoFilter) IsList() bool {
	return f.Type == FilterAND || f.Type == FilterOR
}

func (f DtoFilter) MarshalJSON() ([]byte, error) {
	if f.IsList() {
		return json.Marshal(map[string][]DtoFilter{
			f.Type: lo.Ternary(f.Filters == nil, []DtoFilter{}, f.Filters),
		})
	}

	return json.Marshal(map[string]map[string][]string{
		f.Type: {f.Attribute: lo.Ternary(f.Values == nil, []string{}, f.Values)},
	})
}

func (f *DtoFilter) UnmarshalJSON(b []byte) error {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(b, &outer); err != nil {
		return err
	}
	if len(outer) != 1 {
		return fmt.Errorf("filter element must have exactly one key, got %d", len(outer))
	}

	for key, raw := range outer {
		*f = DtoFilter{Type: strings.ToUpper(key)}

		if f.IsList() {
			return json.Unmarshal(raw, &f.Filters)
		}

		var leaf map[string]json.RawMessage
		if err := json.Unmarshal(raw, &leaf); err != nil {
			return fmt.Errorf("filter '%s': %w", key, err)
		}
		if len(leaf) != 1 {
			return fmt.Errorf("filter '%s' must name exactly one attribute, got %d", key, len(leaf))
		}

		for attr, rawValues := range leaf {
			values, err := decodeValues(rawValues)
			if err != nil {
				return fmt.Errorf("filter '%s' on '%s': %w", key, attr, err)
			}

			f.Attribute = attr
			f.Values = values
		}
	}

	return nil
}

// decodeValues accepts a list of scalars or a single scalar.
func decodeValues(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	list, ok := v.([]any)
	if !ok {
		list = []any{v}
	}

	ret := make([]string, 0, len(list))
	for _, item := range list {
		switch vt := item.(type) {
		case nil:
			ret = append(ret, "")
		case string:
			ret = append(ret, vt)
		case json.Number:
			ret = append(ret, vt.String())
		case bool:
			ret = append(ret, strconv.FormatBool(vt))
		default:
			return nil, fmt.Errorf("unsupported value %v", item)
		}
	}

	return ret, nil
}

func (f DtoFilter) toQueryElement(attrs cursorpaging.Attributes) (cursorpaging.QueryElement, error) {
	if f.IsList() {
		elements := make([]cursorpaging.QueryElement, 0, len(f.Filters))
		for _, child := range f.Filters {
			el, err := child.toQueryElement(attrs)
			if err != nil {
				return nil, err
			}
			elements = append(elements, el)
		}

		return lo.Ternary(f.Type == FilterOR, cursorpaging.Or(elements...), cursorpaging.And(elements...)), nil
	}

	attr, err := attrs.Lookup(f.Attribute)
	if err != nil {
		return nil, err
	}

	values := make([]any, 0, len(f.Values))
	for _, s := range f.Values {
		if s == "" {
			continue
		}

		v, err := attr.Parse(s)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	return cursorpaging.Filter{Attribute: attr, Type: cursorpaging.FilterType(f.Type), Values: values}, nil
}

// DtoPageRequest is the JSON representation of a first page request.
//
//	{
//	  "orderBy": {"name": "ASC", "id": "ASC"},
//	  "filterBy": {"AND": [{"GT": {"id": ["666"]}}]},
//	  "pageSize": 10,
//	  "withTotalCount": false
//	}
type DtoPageRequest struct {
	OrderBy        OrderBy    `json:"orderBy" validate:"dive"`
	FilterBy       *DtoFilter `json:"filterBy,omitempty"`
	PageSize       int        `json:"pageSize" validate:"min=1,max=100"`
	WithTotalCount bool       `json:"withTotalCount"`
}

func NewDtoPageRequest() *DtoPageRequest {
	return &DtoPageRequest{PageSize: cursorpaging.DefaultPageSize}
}

// UnmarshalJSON defaults an absent page size.
func (r *DtoPageRequest) UnmarshalJSON(b []byte) error {
	type plain DtoPageRequest

	p := plain{PageSize: cursorpaging.DefaultPageSize}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = DtoPageRequest(p)

	return nil
}

func (r *DtoPageRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: page request is missing", ErrValidation)
	}

	return validateStruct(r)
}

// AddOrderByIfAbsent appends a sort key unless the attribute is sorted already.
func (r *DtoPageRequest) AddOrderByIfAbsent(attribute string, order cursorpaging.Order) {
	if _, ok := r.OrderBy.Get(attribute); !ok {
		r.OrderBy = r.OrderBy.Set(attribute, order)
	}
}

// ToPageRequest validates the DTO and builds the first page request, looking
// attributes up in attrs.
func (r *DtoPageRequest) ToPageRequest(attrs cursorpaging.Attributes) (*cursorpaging.PageRequest, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	req := cursorpaging.NewPageRequest().
		WithPageSize(r.PageSize).
		WithEnableTotalCount(r.WithTotalCount)

	for _, e := range r.OrderBy {
		attr, err := attrs.Lookup(e.Attribute)
		if err != nil {
			return nil, fmt.Errorf("orderBy: %w", err)
		}

		order, err := cursorpaging.ParseOrder(string(e.Order))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}

		req = req.WithPosition(cursorpaging.Position{Attribute: attr, Order: order})
	}

	if r.FilterBy == nil {
		return req, nil
	}

	el, err := r.FilterBy.toQueryElement(attrs)
	if err != nil {
		return nil, fmt.Errorf("filterBy: %w", err)
	}

	if list, ok := el.(cursorpaging.FilterList); ok {
		return req.WithFilters(list), nil
	}

	return req.WithFilter(el), nil
}
