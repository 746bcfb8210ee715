package cursorpaging

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Position is a sort key of a page request. For every page except the first
// one it carries the value the attribute had in the last element of the
// previous page.
//
// IMPORTANT:
// The combination of all positions of a request must uniquely address a row.
// Add the primary key as the last position.
type Position struct {
	Attribute Attribute
	Order     Order
	Value     any
	HasValue  bool
	// Reversed positions read the dataset backwards against Order, starting
	// at the row holding the position value itself.
	Reversed bool
}

func Asc(attr Attribute) Position {
	return Position{Attribute: attr, Order: OrderASC}
}

func Desc(attr Attribute) Position {
	return Position{Attribute: attr, Order: OrderDESC}
}

// WithValue returns a copy of the position continuing after v.
func (p Position) WithValue(v any) (Position, error) {
	nv, err := p.Attribute.Normalize(v)
	if err != nil {
		return Position{}, err
	}

	p.Value = nv
	p.HasValue = true

	return p, nil
}

// ToReversed returns a copy of the position traversing backwards.
func (p Position) ToReversed() Position {
	p.Reversed = true

	return p
}

// direction is the order rows are read in.
func (p Position) direction() Order {
	if p.Reversed {
		return p.Order.Reversed()
	}

	return p.Order
}

// WithoutValue returns a copy of the position addressing the first page.
func (p Position) WithoutValue() Position {
	p.Value = nil
	p.HasValue = false

	return p
}

// PositionOf returns a copy of the position continuing after entity.
func (p Position) PositionOf(entity any) (Position, error) {
	v, err := p.Attribute.ValueOf(entity)
	if err != nil {
		return Position{}, err
	}

	return p.WithValue(v)
}

func (p Position) validate() error {
	if err := p.Attribute.Validate(); err != nil {
		return err
	}

	if !p.Order.Valid() {
		return fmt.Errorf("invalid order '%s' of position '%s'", p.Order, p.Attribute.Name)
	}

	if !p.HasValue {
		return nil
	}

	if p.Value == nil && !p.Attribute.Nullable {
		return fmt.Errorf("position '%s' is not nullable", p.Attribute.Name)
	}

	if _, err := p.Attribute.Normalize(p.Value); err != nil {
		return err
	}

	return nil
}

// orderSQL renders the ORDER BY items of the position. Nullable attributes
// sort NULLs last for ascending and first for descending order on every
// dialect.
func (p Position) orderSQL() []string {
	expr, dir := p.Attribute.expression(), p.direction()
	if !p.Attribute.Nullable {
		return []string{fmt.Sprintf("%s %s", expr, dir)}
	}

	nullsFirst := lo.Ternary(dir == OrderDESC, " DESC", "")

	return []string{
		fmt.Sprintf("%s IS NULL%s", expr, nullsFirst),
		fmt.Sprintf("%s %s", expr, dir),
	}
}

// equal matches rows holding the same value as the position.
func (p Position) equal() Condition {
	if p.Value == nil {
		return IsNull(p.Attribute.expression())
	}

	return Compare(p.Attribute.expression(), OperatorEq, p.Attribute.operand(p.Value))
}

// after matches rows following the position value in its reading
// direction, nil if no row can follow.
func (p Position) after() Condition {
	expr, dir := p.Attribute.expression(), p.direction()

	switch {
	case dir == OrderASC && p.Value == nil:
		return nil
	case dir == OrderDESC && p.Value == nil:
		return IsNotNull(expr)
	}

	cmp := Compare(expr, dir.Operator(), p.Attribute.operand(p.Value))
	if dir == OrderASC && p.Attribute.Nullable {
		return AnyOf(cmp, IsNull(expr))
	}

	return cmp
}

// through is after including the rows holding the position value.
func (p Position) through() Condition {
	if p.Value == nil || p.Attribute.Nullable {
		return AnyOf(p.after(), p.equal())
	}

	return Compare(p.Attribute.expression(), p.direction().InclusiveOperator(), p.Attribute.operand(p.Value))
}

type Positions []Position

// ToSQLSlice converts Positions to a slice of strings in the form
// "<column> <order>" suitable for SQL query builders.
//
// Example: for [{"a", "ASC"}, {"b", "DESC"}] returns ["a ASC", "b DESC"].
// A nullable ascending attribute "c" yields ["c IS NULL", "c ASC"].
func (ps Positions) ToSQLSlice() []string {
	ret := make([]string, 0, len(ps))
	for _, p := range ps {
		ret = append(ret, p.orderSQL()...)
	}

	return ret
}

// ToSQL joins ToSQLSlice with commas.
//
// Usage:
//
//	query := fmt.Sprintf("SELECT * FROM table ORDER BY %s", positions.ToSQL())
func (ps Positions) ToSQL() string {
	return strings.Join(ps.ToSQLSlice(), ", ")
}

// HasValues reports whether the positions continue a previous page.
func (ps Positions) HasValues() bool {
	return lo.SomeBy(ps, func(p Position) bool {
		return p.HasValue
	})
}

// Condition expands positions with values into the keyset predicate.
//
// Positions are a compressed form of the predicate:
//
//	[(P1, V1), (P2, V2) ... (Pn, Vn)]
//
// Expanded, they select every row following the last row of the previous page:
//
//	after(P1, V1) OR (P1 = V1 AND after(P2, V2)) OR ...
//
// where after(P, V) is "P > V" for ascending and "P < V" for descending order.
// NULL values compare with IS [NOT] NULL according to the NULLs-last (ASC) and
// NULLs-first (DESC) order. Reversed positions read against their order and
// the last one also matches its own value ("P <= V" for ascending), so the
// row the positions were taken from is included. Returns nil for the first
// page.
func (ps Positions) Condition() Condition {
	if !ps.HasValues() {
		return nil
	}

	disjuncts := make([]Condition, 0, len(ps))
	for i, p := range ps {
		after := p.after()
		if p.Reversed && i == len(ps)-1 {
			after = p.through()
		}
		if after == nil {
			continue
		}

		conjuncts := lo.Map(ps[:i], func(prev Position, _ int) Condition {
			return prev.equal()
		})
		disjuncts = append(disjuncts, AllOf(append(conjuncts, after)...))
	}

	if len(disjuncts) == 0 {
		return Raw("1 = 0")
	}

	return AnyOf(disjuncts...)
}

func (ps Positions) validate() error {
	if len(ps) == 0 {
		return fmt.Errorf("%w: no positions", ErrInvalidRequest)
	}

	seen := make(map[string]struct{}, len(ps))
	for _, p := range ps {
		if _, ok := seen[p.Attribute.Name]; ok {
			return fmt.Errorf("%w: duplicate position '%s'", ErrInvalidRequest, p.Attribute.Name)
		}
		seen[p.Attribute.Name] = struct{}{}

		if err := p.validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}

		if p.HasValue != ps[0].HasValue {
			return fmt.Errorf("%w: positions must either all carry values or none", ErrInvalidRequest)
		}

		if p.Reversed != ps[0].Reversed {
			return fmt.Errorf("%w: positions must either all be reversed or none", ErrInvalidRequest)
		}
	}

	return nil
}
