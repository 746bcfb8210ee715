package cursorpaging

// Operator defines a comparison operator used when building conditions.
type Operator string

const (
	OperatorGT  Operator = ">"
	OperatorLT  Operator = "<"
	OperatorGTE Operator = ">="
	OperatorLTE Operator = "<="
	OperatorEq  Operator = "="
)

func (o Operator) Valid() bool {
	switch o {
	case OperatorGT, OperatorLT, OperatorGTE, OperatorLTE, OperatorEq:
		return true
	default:
		return false
	}
}
