package serializer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidBase64 = errors.New("invalid base64 string")

// Base64String is URL-safe base64 without padding, the text form of a cursor.
type Base64String string

// ParseBase64String validates s. Trailing padding is tolerated and stripped.
func ParseBase64String(s string) (Base64String, error) {
	if s == "" {
		return "", fmt.Errorf("%w: must not be empty", ErrInvalidBase64)
	}

	b := Base64String(strings.TrimRight(s, "="))
	if _, err := b.Decoded(); err != nil {
		return "", err
	}

	return b, nil
}

func EncodeBase64(data []byte) Base64String {
	return Base64String(base64.RawURLEncoding.EncodeToString(data))
}

func (s Base64String) Decoded() ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(string(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}

	return data, nil
}

func (s Base64String) String() string {
	return string(s)
}
