// Package serializer turns page requests into opaque, encrypted cursors and
// back.
//
// A cursor is the protobuf encoding of the request (see cursor.proto),
// sealed with ChaCha20-Poly1305 and encoded as URL-safe base64 without
// padding.
package serializer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Alp4ka/cursorpaging"
)

var ErrSerialization = errors.New("cannot serialize page request")

// RequestSerializer converts page requests into cursors.
//
// Decoding needs the attributes of the request. They are taken from the
// registry given with WithAttributes, or remembered from requests
// serialized earlier by the same instance. Filter rules are rebuilt by the
// factory given with WithRuleFactory.
type RequestSerializer struct {
	encrypter   *Encrypter
	attributes  cursorpaging.Attributes
	ruleFactory cursorpaging.RuleFactory
	logger      *slog.Logger

	// memory holds attributes seen while serializing, by name.
	memory sync.Map
}

// New returns a serializer with a random key. Use WithEncrypter to share
// cursors between processes.
func New() *RequestSerializer {
	return &RequestSerializer{
		encrypter:  NewRandomEncrypter(),
		attributes: cursorpaging.Attributes{},
		logger:     slog.Default(),
	}
}

func (s *RequestSerializer) WithEncrypter(e *Encrypter) *RequestSerializer {
	s.encrypter = e

	return s
}

func (s *RequestSerializer) WithAttributes(attrs ...cursorpaging.Attribute) *RequestSerializer {
	for _, a := range attrs {
		s.attributes[a.Name] = a
	}

	return s
}

func (s *RequestSerializer) WithRuleFactory(f cursorpaging.RuleFactory) *RequestSerializer {
	s.ruleFactory = f

	return s
}

func (s *RequestSerializer) WithLogger(logger *slog.Logger) *RequestSerializer {
	s.logger = logger

	return s
}

// ToBytes serializes and encrypts req.
func (s *RequestSerializer) ToBytes(req *cursorpaging.PageRequest) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, cursorpaging.ErrInvalidRequest)
	}

	msg, err := s.toWire(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	s.remember(req)

	return s.encrypter.Encrypt(msg.marshal(nil)), nil
}

func (s *RequestSerializer) ToBase64(req *cursorpaging.PageRequest) (Base64String, error) {
	data, err := s.ToBytes(req)
	if err != nil {
		return "", err
	}

	return EncodeBase64(data), nil
}

// ToPageRequest decrypts and deserializes data produced by ToBytes.
func (s *RequestSerializer) ToPageRequest(data []byte) (*cursorpaging.PageRequest, error) {
	plain, err := s.encrypter.Decrypt(data)
	if err != nil {
		return nil, err
	}

	var msg pbPageRequest
	if err = msg.unmarshal(plain); err != nil {
		return nil, fmt.Errorf("%w: malformed cursor: %v", ErrSerialization, err)
	}

	req, err := s.fromWire(&msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	return req, nil
}

func (s *RequestSerializer) FromBase64(b Base64String) (*cursorpaging.PageRequest, error) {
	data, err := b.Decoded()
	if err != nil {
		return nil, err
	}

	return s.ToPageRequest(data)
}

// ParseCursor decodes a cursor received as text. A blank cursor yields
// (nil, nil), callers then fall back to their first page request.
func (s *RequestSerializer) ParseCursor(cursor string) (*cursorpaging.PageRequest, error) {
	if strings.TrimSpace(cursor) == "" {
		return nil, nil
	}

	b, err := ParseBase64String(cursor)
	if err != nil {
		return nil, err
	}

	req, err := s.FromBase64(b)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("cursor parsed", slog.Int("positions", len(req.Positions())), slog.Int("page_size", req.PageSize()))

	return req, nil
}

// remember stores the attributes of req unless an attribute with the same
// name is already known. Case folding is carried per position and filter,
// so it is not remembered.
func (s *RequestSerializer) remember(req *cursorpaging.PageRequest) {
	for _, p := range req.Positions() {
		s.rememberAttribute(p.Attribute)
	}

	for _, a := range req.Filters().Attributes() {
		s.rememberAttribute(a)
	}
}

func (s *RequestSerializer) rememberAttribute(a cursorpaging.Attribute) {
	a.IgnoreCase = false
	s.memory.LoadOrStore(a.Name, a)
}

func (s *RequestSerializer) attribute(name string) (cursorpaging.Attribute, error) {
	if a, ok := s.attributes[name]; ok {
		return a, nil
	}

	if a, ok := s.memory.Load(name); ok {
		return a.(cursorpaging.Attribute), nil
	}

	return s.attributes.Lookup(name)
}

func (s *RequestSerializer) toWire(req *cursorpaging.PageRequest) (*pbPageRequest, error) {
	msg := &pbPageRequest{
		pageSize:         int32(req.PageSize()),
		enableTotalCount: req.IsTotalCountEnabled(),
	}

	if count, ok := req.TotalCount(); ok {
		msg.totalCount = &count
	}

	for _, p := range req.Positions() {
		pos := pbPosition{
			attribute:  p.Attribute.Name,
			order:      pbOrderASC,
			ignoreCase: p.Attribute.IgnoreCase,
			reversed:   p.Reversed,
		}
		if p.Order == cursorpaging.OrderDESC {
			pos.order = pbOrderDESC
		}

		if p.HasValue {
			v, err := valueToWire(p.Attribute, p.Value)
			if err != nil {
				return nil, err
			}
			pos.value = &v
		}

		msg.positions = append(msg.positions, pos)
	}

	filters, err := listToWire(req.Filters())
	if err != nil {
		return nil, err
	}
	msg.filters = &filters

	for _, r := range req.Rules() {
		if s.ruleFactory == nil {
			return nil, fmt.Errorf("%w '%s': no rule factory configured", cursorpaging.ErrUnknownRule, r.Name())
		}

		rule := pbRule{name: r.Name()}
		params := r.Parameters()
		for _, name := range cursorpaging.ParameterNames(r) {
			rule.parameters = append(rule.parameters, pbParameter{name: name, values: params[name]})
		}

		msg.rules = append(msg.rules, rule)
	}

	return msg, nil
}

func valueToWire(attr cursorpaging.Attribute, v any) (pbValue, error) {
	if v == nil {
		return pbValue{isNull: true}, nil
	}

	text, err := attr.Format(v)
	if err != nil {
		return pbValue{}, err
	}

	return pbValue{value: text}, nil
}

var (
	_filterTypesToWire = map[cursorpaging.FilterType]int32{
		cursorpaging.FilterEQ:   pbFilterEQ,
		cursorpaging.FilterGT:   pbFilterGT,
		cursorpaging.FilterGE:   pbFilterGE,
		cursorpaging.FilterLT:   pbFilterLT,
		cursorpaging.FilterLE:   pbFilterLE,
		cursorpaging.FilterLIKE: pbFilterLIKE,
	}
	_filterTypesFromWire = map[int32]cursorpaging.FilterType{
		pbFilterEQ:   cursorpaging.FilterEQ,
		pbFilterGT:   cursorpaging.FilterGT,
		pbFilterGE:   cursorpaging.FilterGE,
		pbFilterLT:   cursorpaging.FilterLT,
		pbFilterLE:   cursorpaging.FilterLE,
		pbFilterLIKE: cursorpaging.FilterLIKE,
	}
)

func listToWire(l cursorpaging.FilterList) (pbFilterList, error) {
	ret := pbFilterList{typ: pbListAND}
	if l.Type == cursorpaging.ListOR {
		ret.typ = pbListOR
	}

	for _, el := range l.Elements {
		switch v := el.(type) {
		case nil:
		case cursorpaging.Filter:
			f, err := filterToWire(v)
			if err != nil {
				return pbFilterList{}, err
			}
			ret.filters = append(ret.filters, f)
		case cursorpaging.FilterList:
			sub, err := listToWire(v)
			if err != nil {
				return pbFilterList{}, err
			}
			ret.lists = append(ret.lists, sub)
		default:
			return pbFilterList{}, fmt.Errorf("unsupported query element %T", el)
		}
	}

	return ret, nil
}

func filterToWire(f cursorpaging.Filter) (pbFilter, error) {
	typ, ok := _filterTypesToWire[f.Type]
	if !ok {
		return pbFilter{}, fmt.Errorf("invalid filter type '%s'", f.Type)
	}

	ret := pbFilter{typ: typ, attribute: f.Attribute.Name, ignoreCase: f.Attribute.IgnoreCase}
	for _, v := range f.Values {
		wv, err := valueToWire(f.Attribute, v)
		if err != nil {
			return pbFilter{}, err
		}
		ret.values = append(ret.values, wv)
	}

	return ret, nil
}

func (s *RequestSerializer) fromWire(msg *pbPageRequest) (*cursorpaging.PageRequest, error) {
	positions := make([]cursorpaging.Position, 0, len(msg.positions))
	for _, pos := range msg.positions {
		p, err := s.positionFromWire(pos)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	req := cursorpaging.NewPageRequest().
		WithPositions(positions...).
		WithPageSize(int(msg.pageSize)).
		WithEnableTotalCount(msg.enableTotalCount)

	if msg.filters != nil {
		filters, err := s.listFromWire(*msg.filters)
		if err != nil {
			return nil, err
		}
		req = req.WithFilters(filters)
	}

	for _, r := range msg.rules {
		rule, err := s.ruleFromWire(r)
		if err != nil {
			return nil, err
		}
		req = req.WithRules(rule)
	}

	if msg.totalCount != nil {
		req = req.WithTotalCount(*msg.totalCount)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

func (s *RequestSerializer) positionFromWire(pos pbPosition) (cursorpaging.Position, error) {
	attr, err := s.attribute(pos.attribute)
	if err != nil {
		return cursorpaging.Position{}, err
	}
	attr.IgnoreCase = pos.ignoreCase

	var p cursorpaging.Position
	switch pos.order {
	case pbOrderASC:
		p = cursorpaging.Asc(attr)
	case pbOrderDESC:
		p = cursorpaging.Desc(attr)
	default:
		return cursorpaging.Position{}, fmt.Errorf("unrecognized order %d of position '%s'", pos.order, pos.attribute)
	}
	if pos.reversed {
		p = p.ToReversed()
	}

	if pos.value == nil {
		return p, nil
	}

	v, err := valueFromWire(attr, *pos.value)
	if err != nil {
		return cursorpaging.Position{}, err
	}

	return p.WithValue(v)
}

func valueFromWire(attr cursorpaging.Attribute, v pbValue) (any, error) {
	if v.isNull {
		return nil, nil
	}

	return attr.Parse(v.value)
}

func (s *RequestSerializer) listFromWire(l pbFilterList) (cursorpaging.FilterList, error) {
	elements := make([]cursorpaging.QueryElement, 0, len(l.filters)+len(l.lists))

	for _, f := range l.filters {
		filter, err := s.filterFromWire(f)
		if err != nil {
			return cursorpaging.FilterList{}, err
		}
		elements = append(elements, filter)
	}

	for _, sub := range l.lists {
		list, err := s.listFromWire(sub)
		if err != nil {
			return cursorpaging.FilterList{}, err
		}
		elements = append(elements, list)
	}

	switch l.typ {
	case pbListAND:
		return cursorpaging.And(elements...), nil
	case pbListOR:
		return cursorpaging.Or(elements...), nil
	default:
		return cursorpaging.FilterList{}, fmt.Errorf("unrecognized filter list type %d", l.typ)
	}
}

func (s *RequestSerializer) filterFromWire(f pbFilter) (cursorpaging.Filter, error) {
	typ, ok := _filterTypesFromWire[f.typ]
	if !ok {
		return cursorpaging.Filter{}, fmt.Errorf("unrecognized filter type %d", f.typ)
	}

	attr, err := s.attribute(f.attribute)
	if err != nil {
		return cursorpaging.Filter{}, err
	}
	attr.IgnoreCase = f.ignoreCase

	values := make([]any, 0, len(f.values))
	for _, wv := range f.values {
		v, err := valueFromWire(attr, wv)
		if err != nil {
			return cursorpaging.Filter{}, err
		}
		values = append(values, v)
	}

	return cursorpaging.Filter{Attribute: attr, Type: typ, Values: values}, nil
}

func (s *RequestSerializer) ruleFromWire(r pbRule) (cursorpaging.FilterRule, error) {
	if s.ruleFactory == nil {
		return nil, fmt.Errorf("%w '%s'", cursorpaging.ErrUnknownRule, r.name)
	}

	params := make(map[string][]string, len(r.parameters))
	for _, p := range r.parameters {
		params[p.name] = p.values
	}

	return s.ruleFactory(r.name, params)
}
