package api

import (
	"fmt"
	"strings"

	"github.com/Alp4ka/cursorpaging"
)

// CursorQuery binds the query parameters of a page endpoint:
//
//	GET /records?cursor=...&pageSize=20
type CursorQuery struct {
	Cursor   string `query:"cursor" validate:"omitempty,base64rawurl"`
	PageSize int    `query:"pageSize" validate:"omitempty,min=1"`
}

// Validate checks the cursor encoding and that PageSize does not exceed
// maxPageSize. A maxPageSize <= 0 means cursorpaging.MaxPageSize.
func (q CursorQuery) Validate(maxPageSize int) error {
	if err := validateStruct(q); err != nil {
		return err
	}

	if maxPageSize <= 0 {
		maxPageSize = cursorpaging.MaxPageSize
	}
	if q.PageSize > maxPageSize {
		return &ValidationError{Fields: map[string]string{
			"pageSize": fmt.Sprintf("pageSize must be at most %d", maxPageSize),
		}}
	}

	return nil
}

func (q CursorQuery) HasCursor() bool {
	return strings.TrimSpace(q.Cursor) != ""
}

func (q CursorQuery) PageSizeOrDefault(def int) int {
	if q.PageSize <= 0 {
		return def
	}

	return q.PageSize
}
