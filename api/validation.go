package api

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Alp4ka/cursorpaging"
)

var ErrValidation = errors.New("validation failed")

// ValidationError maps JSON field paths to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, e.Fields[field])
	}

	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

var _validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON or query names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}

		return fld.Name
	})

	_ = v.RegisterValidation("order", func(fl validator.FieldLevel) bool {
		_, err := cursorpaging.ParseOrder(fl.Field().String())
		return err == nil
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		f, ok := sl.Current().Interface().(DtoFilter)
		if ok && !f.IsList() && f.Attribute == "" {
			sl.ReportError(f.Attribute, "Attribute", "Attribute", "required", "")
		}
	}, DtoFilter{})

	return v
}

func validateStruct(s any) error {
	err := _validate.Struct(s)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	fields := make(map[string]string, len(valErrs))
	for _, e := range valErrs {
		fields[fieldPath(e)] = validationMessage(e)
	}

	return &ValidationError{Fields: fields}
}

// fieldPath drops the struct name from the namespace.
func fieldPath(e validator.FieldError) string {
	_, path, found := strings.Cut(e.Namespace(), ".")
	if !found {
		return e.Field()
	}

	return path
}

func validationMessage(e validator.FieldError) string {
	field := fieldPath(e)

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, e.Param())
	case "order":
		return fmt.Sprintf("%s must be ASC or DESC", field)
	case "base64rawurl":
		return fmt.Sprintf("%s must be unpadded url-safe base64", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
