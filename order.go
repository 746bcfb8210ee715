package cursorpaging

import (
	"fmt"
	"strings"
)

// Order defines the sort direction of a position.
type Order string

const (
	OrderASC  Order = "ASC"
	OrderDESC Order = "DESC"
)

func (o Order) Valid() bool {
	return o == OrderASC || o == OrderDESC
}

// Operator returns the strict comparison operator selecting the elements
// following a value in this order.
func (o Order) Operator() Operator {
	switch o {
	case OrderASC:
		return OperatorGT
	case OrderDESC:
		return OperatorLT
	default:
		panic(fmt.Errorf("cannot map order '%s' to operator", o))
	}
}

// InclusiveOperator is Operator extended to the value itself.
func (o Order) InclusiveOperator() Operator {
	switch o {
	case OrderASC:
		return OperatorGTE
	case OrderDESC:
		return OperatorLTE
	default:
		panic(fmt.Errorf("cannot map order '%s' to operator", o))
	}
}

// Reversed returns the opposite order.
func (o Order) Reversed() Order {
	if o == OrderDESC {
		return OrderASC
	}

	return OrderDESC
}

// ParseOrder parses "asc" / "desc" ignoring case and surrounding spaces.
func ParseOrder(s string) (Order, error) {
	o := Order(strings.ToUpper(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("invalid order '%s'", s)
	}

	return o, nil
}
