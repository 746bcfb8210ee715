package serializer

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Messages of cursor.proto.
type (
	pbPageRequest struct {
		positions        []pbPosition
		filters          *pbFilterList
		pageSize         int32
		totalCount       *int64
		rules            []pbRule
		enableTotalCount bool
	}

	pbPosition struct {
		attribute  string
		value      *pbValue
		order      int32
		ignoreCase bool
		reversed   bool
	}

	pbValue struct {
		value  string
		isNull bool
	}

	pbFilterList struct {
		typ     int32
		filters []pbFilter
		lists   []pbFilterList
	}

	pbFilter struct {
		typ        int32
		attribute  string
		values     []pbValue
		ignoreCase bool
	}

	pbRule struct {
		name       string
		parameters []pbParameter
	}

	pbParameter struct {
		name   string
		values []string
	}
)

const (
	pbOrderASC int32 = iota
	pbOrderDESC
)

const (
	pbListAND int32 = iota
	pbListOR
)

const (
	pbFilterEQ int32 = iota
	pbFilterGT
	pbFilterGE
	pbFilterLT
	pbFilterLE
	pbFilterLIKE
)

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendVarint(b, num, protowire.EncodeBool(v))
}

// appendAttribute writes an Attribute message holding name.
func appendAttribute(b []byte, num protowire.Number, name string) []byte {
	return appendMessage(b, num, appendString(nil, 1, name))
}

func (m *pbPageRequest) marshal(b []byte) []byte {
	for i := range m.positions {
		b = appendMessage(b, 1, m.positions[i].marshal(nil))
	}
	if m.filters != nil {
		b = appendMessage(b, 2, m.filters.marshal(nil))
	}
	b = appendVarint(b, 3, uint64(m.pageSize))
	if m.totalCount != nil {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*m.totalCount))
	}
	for i := range m.rules {
		b = appendMessage(b, 5, m.rules[i].marshal(nil))
	}

	return appendBool(b, 6, m.enableTotalCount)
}

func (m *pbPosition) marshal(b []byte) []byte {
	b = appendAttribute(b, 1, m.attribute)
	if m.value != nil {
		b = appendMessage(b, 2, m.value.marshal(nil))
	}

	b = appendVarint(b, 3, uint64(m.order))
	b = appendBool(b, 4, m.ignoreCase)

	return appendBool(b, 5, m.reversed)
}

func (m *pbValue) marshal(b []byte) []byte {
	b = appendString(b, 1, m.value)
	return appendBool(b, 2, m.isNull)
}

func (m *pbFilterList) marshal(b []byte) []byte {
	b = appendVarint(b, 1, uint64(m.typ))
	for i := range m.filters {
		b = appendMessage(b, 2, m.filters[i].marshal(nil))
	}
	for i := range m.lists {
		b = appendMessage(b, 3, m.lists[i].marshal(nil))
	}

	return b
}

func (m *pbFilter) marshal(b []byte) []byte {
	b = appendVarint(b, 1, uint64(m.typ))
	b = appendAttribute(b, 2, m.attribute)
	for i := range m.values {
		b = appendMessage(b, 3, m.values[i].marshal(nil))
	}

	return appendBool(b, 4, m.ignoreCase)
}

func (m *pbRule) marshal(b []byte) []byte {
	b = appendString(b, 1, m.name)
	for i := range m.parameters {
		b = appendMessage(b, 2, m.parameters[i].marshal(nil))
	}

	return b
}

func (m *pbParameter) marshal(b []byte) []byte {
	b = appendString(b, 1, m.name)
	for _, v := range m.values {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, v)
	}

	return b
}

// fieldFunc consumes the value of a known field and returns the number of
// bytes read. Returning 0 skips the field, a negative value is a
// protowire error code.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func consumeMessage(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return fmt.Errorf("field %d: %w", num, protowire.ParseError(m))
		}
		b = b[m:]
	}

	return nil
}

func consumeVarint(typ protowire.Type, b []byte, dst *uint64) int {
	if typ != protowire.VarintType {
		return 0
	}

	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		*dst = v
	}

	return n
}

// consumeBytes reads a length-delimited field into dst.
func consumeBytes(typ protowire.Type, b []byte, dst *[]byte) int {
	if typ != protowire.BytesType {
		return 0
	}

	v, n := protowire.ConsumeBytes(b)
	if n >= 0 {
		*dst = v
	}

	return n
}

// consumeNested reads a length-delimited field and unmarshals it with fn.
func consumeNested(typ protowire.Type, b []byte, fn func([]byte) error) (int, error) {
	var msg []byte

	n := consumeBytes(typ, b, &msg)
	if n <= 0 {
		return n, nil
	}

	return n, fn(msg)
}

func unmarshalAttribute(b []byte) (string, error) {
	var name string

	err := consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return 0, nil
		}

		var raw []byte
		n := consumeBytes(typ, b, &raw)
		name = string(raw)

		return n, nil
	})

	return name, err
}

func (m *pbPageRequest) unmarshal(b []byte) error {
	return consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var v uint64

		switch num {
		case 1:
			return consumeNested(typ, b, func(msg []byte) error {
				var p pbPosition
				if err := p.unmarshal(msg); err != nil {
					return fmt.Errorf("position: %w", err)
				}
				m.positions = append(m.positions, p)

				return nil
			})
		case 2:
			return consumeNested(typ, b, func(msg []byte) error {
				m.filters = &pbFilterList{}
				return m.filters.unmarshal(msg)
			})
		case 3:
			n := consumeVarint(typ, b, &v)
			m.pageSize = int32(v)
			return n, nil
		case 4:
			n := consumeVarint(typ, b, &v)
			if n > 0 {
				count := int64(v)
				m.totalCount = &count
			}
			return n, nil
		case 5:
			return consumeNested(typ, b, func(msg []byte) error {
				var r pbRule
				if err := r.unmarshal(msg); err != nil {
					return fmt.Errorf("rule: %w", err)
				}
				m.rules = append(m.rules, r)

				return nil
			})
		case 6:
			n := consumeVarint(typ, b, &v)
			m.enableTotalCount = protowire.DecodeBool(v)
			return n, nil
		}

		return 0, nil
	})
}

func (m *pbPosition) unmarshal(b []byte) error {
	return consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeNested(typ, b, func(msg []byte) (err error) {
				m.attribute, err = unmarshalAttribute(msg)
				return err
			})
		case 2:
			return consumeNested(typ, b, func(msg []byte) error {
				m.value = &pbValue{}
				return m.value.unmarshal(msg)
			})
		case 3:
			var v uint64
			n := consumeVarint(typ, b, &v)
			m.order = int32(v)
			return n, nil
		case 4:
			var v uint64
			n := consumeVarint(typ, b, &v)
			m.ignoreCase = protowire.DecodeBool(v)
			return n, nil
		case 5:
			var v uint64
			n := consumeVarint(typ, b, &v)
			m.reversed = protowire.DecodeBool(v)
			return n, nil
		}

		return 0, nil
	})
}

func (m *pbValue) unmarshal(b []byte) error {
	return consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			var raw []byte
			n := consumeBytes(typ, b, &raw)
			m.value = string(raw)
			return n, nil
		case 2:
			var v uint64
			n := consumeVarint(typ, b, &v)
			m.isNull = protowire.DecodeBool(v)
			return n, nil
		}

		return 0, nil
	})
}

func (m *pbFilterList) unmarshal(b []byte) error {
	return consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			var v uint64
			n := consumeVarint(typ, b, &v)
			m.typ = int32(v)
			return n, nil
		case 2:
			return consumeNested(typ, b, func(msg []byte) error {
				var f pbFilter
				if err := f.unmarshal(msg); err != nil {
					return fmt.Errorf("filter: %w", err)
				}
				m.filters = append(m.filters, f)

				return nil
			})
		case 3:
			return consumeNested(typ, b, func(msg []byte) error {
				var l pbFilterList
				if err := l.unmarshal(msg); err != nil {
					return err
				}
				m.lists = append(m.lists, l)

				return nil
			})
		}

		return 0, nil
	})
}

func (m *pbFilter) unmarshal(b []byte) error {
	return consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var v uint64

		switch num {
		case 1:
			n := consumeVarint(typ, b, &v)
			m.typ = int32(v)
			return n, nil
		case 2:
			return consumeNested(typ, b, func(msg []byte) (err error) {
				m.attribute, err = unmarshalAttribute(msg)
				return err
			})
		case 3:
			return consumeNested(typ, b, func(msg []byte) error {
				var val pbValue
				if err := val.unmarshal(msg); err != nil {
					return err
				}
				m.values = append(m.values, val)

				return nil
			})
		case 4:
			n := consumeVarint(typ, b, &v)
			m.ignoreCase = protowire.DecodeBool(v)
			return n, nil
		}

		return 0, nil
	})
}

func (m *pbRule) unmarshal(b []byte) error {
	return consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			var raw []byte
			n := consumeBytes(typ, b, &raw)
			m.name = string(raw)
			return n, nil
		case 2:
			return consumeNested(typ, b, func(msg []byte) error {
				var p pbParameter
				if err := p.unmarshal(msg); err != nil {
					return err
				}
				m.parameters = append(m.parameters, p)

				return nil
			})
		}

		return 0, nil
	})
}

func (m *pbParameter) unmarshal(b []byte) error {
	return consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var raw []byte

		switch num {
		case 1:
			n := consumeBytes(typ, b, &raw)
			m.name = string(raw)
			return n, nil
		case 2:
			n := consumeBytes(typ, b, &raw)
			if n > 0 {
				m.values = append(m.values, string(raw))
			}
			return n, nil
		}

		return 0, nil
	})
}
