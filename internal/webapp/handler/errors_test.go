package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alp4ka/cursorpaging"
	"github.com/Alp4ka/cursorpaging/api"
	"github.com/Alp4ka/cursorpaging/serializer"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"validation", &api.ValidationError{Fields: map[string]string{"pageSize": "too big"}}, http.StatusBadRequest},
		{"invalid base64", serializer.ErrInvalidBase64, http.StatusBadRequest},
		{"crypto", serializer.ErrCrypto, http.StatusBadRequest},
		{"serialization", serializer.ErrSerialization, http.StatusBadRequest},
		{"invalid request", cursorpaging.ErrInvalidRequest, http.StatusBadRequest},
		{"unknown attribute", cursorpaging.ErrUnknownAttribute, http.StatusBadRequest},
		{"unknown rule", cursorpaging.ErrUnknownRule, http.StatusBadRequest},
		{"value type", cursorpaging.ErrValueType, http.StatusBadRequest},
		{"invalid attribute", cursorpaging.ErrInvalidAttribute, http.StatusInternalServerError},
		{"unknown error", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := mapDomainError(tt.err)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapDomainError_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("cannot load page: %w", cursorpaging.ErrInvalidRequest)
	httpErr := mapDomainError(wrapped)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Equal(t, wrapped.Error(), httpErr.Message)

	httpErr = mapDomainError(fmt.Errorf("select: %w", errors.New("timeout")))
	assert.Equal(t, "internal error", httpErr.Message)
}
