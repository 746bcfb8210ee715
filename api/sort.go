package api

import (
	"fmt"
	"strings"

	"github.com/Alp4ka/cursorpaging"
)

// ParseSort parses a sort parameter like "name asc, id desc" into positions.
// The order defaults to ascending.
func ParseSort(s string, attrs cursorpaging.Attributes) (cursorpaging.Positions, error) {
	var ret cursorpaging.Positions

	for _, item := range strings.Split(s, ",") {
		fields := strings.Fields(item)
		if len(fields) == 0 {
			continue
		}
		if len(fields) > 2 {
			return nil, fmt.Errorf("%w: malformed sort '%s'", ErrValidation, strings.TrimSpace(item))
		}

		attr, err := attrs.Lookup(fields[0])
		if err != nil {
			return nil, err
		}

		order := cursorpaging.OrderASC
		if len(fields) == 2 {
			order, err = cursorpaging.ParseOrder(fields[1])
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrValidation, err)
			}
		}

		ret = append(ret, cursorpaging.Position{Attribute: attr, Order: order})
	}

	return ret, nil
}
