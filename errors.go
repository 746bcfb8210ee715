package cursorpaging

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid page request")
	ErrInvalidAttribute = errors.New("invalid attribute")
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrValueType        = errors.New("unexpected value type")
	ErrUnknownRule      = errors.New("unknown filter rule")
)
