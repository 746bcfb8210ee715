package cursorpaging

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ValueType is the canonical type of the values an attribute holds.
type ValueType string

const (
	TypeString ValueType = "string"
	TypeInt    ValueType = "int"
	TypeUint   ValueType = "uint"
	TypeFloat  ValueType = "float"
	TypeBool   ValueType = "bool"
	TypeTime   ValueType = "time"
	TypeUUID   ValueType = "uuid"
)

func (t ValueType) Valid() bool {
	switch t {
	case TypeString, TypeInt, TypeUint, TypeFloat, TypeBool, TypeTime, TypeUUID:
		return true
	default:
		return false
	}
}

var _availableColumnNameSymbols = append([]rune("_.'`\""), lo.AlphanumericCharset...)

// Attribute addresses a sortable or filterable property of an entity.
//
//   - Name is the external name used in API payloads and serialized cursors.
//   - Column is the SQL expression of the property, Name is used when empty.
//   - Field is the path of the struct field holding the value. When empty the
//     field is looked up by its db, bun or gorm column tag and then by its name
//     ignoring case and underscores.
type Attribute struct {
	Name       string
	Column     string
	Field      []string
	Type       ValueType
	IgnoreCase bool
	Nullable   bool
}

// Attr creates an attribute whose column equals its name.
func Attr(name string, typ ValueType) Attribute {
	return Attribute{Name: name, Type: typ}
}

func (a Attribute) WithColumn(column string) Attribute {
	a.Column = column
	return a
}

func (a Attribute) WithField(path ...string) Attribute {
	a.Field = path
	return a
}

func (a Attribute) WithIgnoreCase() Attribute {
	a.IgnoreCase = true
	return a
}

func (a Attribute) WithNullable() Attribute {
	a.Nullable = true
	return a
}

// ColumnName returns the SQL column of the attribute.
func (a Attribute) ColumnName() string {
	if a.Column == "" {
		return a.Name
	}

	return a.Column
}

// expression returns the SQL expression compared against values, LOWER(column)
// for case-insensitive string attributes.
func (a Attribute) expression() string {
	if a.foldsCase() {
		return fmt.Sprintf("LOWER(%s)", a.ColumnName())
	}

	return a.ColumnName()
}

func (a Attribute) foldsCase() bool {
	return a.IgnoreCase && a.Type == TypeString
}

// operand prepares a value for comparison against expression().
func (a Attribute) operand(v any) any {
	if s, ok := v.(string); ok && a.foldsCase() {
		return strings.ToLower(s)
	}

	return v
}

func (a Attribute) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: empty attribute name", ErrInvalidAttribute)
	}

	if !a.Type.Valid() {
		return fmt.Errorf("%w: attribute '%s' has invalid type '%s'", ErrInvalidAttribute, a.Name, a.Type)
	}

	// Guard against SQL injection by restricting allowed characters in column names.
	if !lo.Every(_availableColumnNameSymbols, []rune(a.ColumnName())) {
		return fmt.Errorf("%w: column name contains forbidden symbols '%s'", ErrInvalidAttribute, a.ColumnName())
	}

	return nil
}

// Normalize coerces v to the canonical Go type of the attribute:
// string, int64, uint64, float64, bool, time.Time or uuid.UUID.
// Nil values and nil pointers normalize to nil.
func (a Attribute) Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch vt := v.(type) {
	case time.Time:
		if a.Type == TypeTime {
			return vt, nil
		}
	case uuid.UUID:
		if a.Type == TypeUUID {
			return vt, nil
		}
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	ret, ok := a.normalizeValue(rv)
	if ok {
		return ret, nil
	}

	if valuer, isValuer := rv.Interface().(driver.Valuer); isValuer {
		dv, err := valuer.Value()
		if err != nil {
			return nil, fmt.Errorf("%w: attribute '%s': %v", ErrValueType, a.Name, err)
		}

		return a.Normalize(dv)
	}

	return nil, fmt.Errorf("%w: attribute '%s' of type %s cannot hold %T", ErrValueType, a.Name, a.Type, v)
}

func (a Attribute) normalizeValue(rv reflect.Value) (any, bool) {
	kind := rv.Kind()

	switch a.Type {
	case TypeString:
		if kind == reflect.String {
			return rv.String(), true
		}
		if b, ok := rv.Interface().([]byte); ok {
			return string(b), true
		}
	case TypeInt:
		switch {
		case rv.CanInt():
			return rv.Int(), true
		case rv.CanUint() && rv.Uint() <= math.MaxInt64:
			return int64(rv.Uint()), true
		}
	case TypeUint:
		switch {
		case rv.CanUint():
			return rv.Uint(), true
		case rv.CanInt() && rv.Int() >= 0:
			return uint64(rv.Int()), true
		}
	case TypeFloat:
		switch {
		case rv.CanFloat():
			return rv.Float(), true
		case rv.CanInt():
			return float64(rv.Int()), true
		case rv.CanUint():
			return float64(rv.Uint()), true
		}
	case TypeBool:
		if kind == reflect.Bool {
			return rv.Bool(), true
		}
	case TypeTime:
		switch vt := rv.Interface().(type) {
		case time.Time:
			return vt, true
		case string:
			t, err := time.Parse(time.RFC3339Nano, vt)
			return t, err == nil
		}
	case TypeUUID:
		switch vt := rv.Interface().(type) {
		case uuid.UUID:
			return vt, true
		case [16]byte:
			return uuid.UUID(vt), true
		case string:
			id, err := uuid.Parse(vt)
			return id, err == nil
		}
	}

	return nil, false
}

// Format renders a value as text. Parse reverses it.
func (a Attribute) Format(v any) (string, error) {
	nv, err := a.Normalize(v)
	if err != nil {
		return "", err
	}

	switch vt := nv.(type) {
	case nil:
		return "", nil
	case string:
		return vt, nil
	case int64:
		return strconv.FormatInt(vt, 10), nil
	case uint64:
		return strconv.FormatUint(vt, 10), nil
	case float64:
		return strconv.FormatFloat(vt, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(vt), nil
	case time.Time:
		return vt.Format(time.RFC3339Nano), nil
	case uuid.UUID:
		return vt.String(), nil
	default:
		return "", fmt.Errorf("%w: cannot format %T", ErrValueType, nv)
	}
}

func (a Attribute) Parse(s string) (any, error) {
	var (
		ret any
		err error
	)

	switch a.Type {
	case TypeString:
		ret = s
	case TypeInt:
		ret, err = strconv.ParseInt(s, 10, 64)
	case TypeUint:
		ret, err = strconv.ParseUint(s, 10, 64)
	case TypeFloat:
		ret, err = strconv.ParseFloat(s, 64)
	case TypeBool:
		ret, err = strconv.ParseBool(s)
	case TypeTime:
		ret, err = time.Parse(time.RFC3339Nano, s)
	case TypeUUID:
		ret, err = uuid.Parse(s)
	default:
		err = fmt.Errorf("unsupported type '%s'", a.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: attribute '%s' cannot parse '%s': %v", ErrValueType, a.Name, s, err)
	}

	return ret, nil
}

// ValueOf reads the value of the attribute from entity and normalizes it.
func (a Attribute) ValueOf(entity any) (any, error) {
	rv := reflect.ValueOf(entity)

	var field reflect.Value
	if len(a.Field) > 0 {
		field = fieldByPath(rv, a.Field)
	} else {
		field = fieldByColumn(rv, a.ColumnName())
	}

	if !field.IsValid() {
		return nil, fmt.Errorf("%w: cannot find field of attribute '%s' in %T", ErrInvalidAttribute, a.Name, entity)
	}

	if field.Kind() == reflect.Pointer && field.IsNil() {
		return nil, nil
	}

	return a.Normalize(field.Interface())
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}

	return rv
}

func fieldByPath(rv reflect.Value, path []string) reflect.Value {
	for i, name := range path {
		rv = indirect(rv)
		if rv.Kind() != reflect.Struct {
			return reflect.Value{}
		}

		sf, ok := rv.Type().FieldByName(name)
		if !ok || !sf.IsExported() {
			return reflect.Value{}
		}

		rv = rv.FieldByName(name)
		if !rv.IsValid() {
			return rv
		}

		// A nil pointer in the middle of the path means a null value.
		if i < len(path)-1 && rv.Kind() == reflect.Pointer && rv.IsNil() {
			return reflect.Zero(reflect.PointerTo(rv.Type().Elem()))
		}
	}

	return rv
}

// fieldByColumn searches the struct fields of rv, and then the fields of its
// nested structs, for a field mapped to column.
func fieldByColumn(rv reflect.Value, column string) reflect.Value {
	rv = indirect(rv)
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}
	}

	// Qualified columns ("t.name") are matched by their last segment.
	if idx := strings.LastIndexByte(column, '.'); idx != -1 {
		column = column[idx+1:]
	}
	column = strings.Trim(column, "`'\"")

	rt := rv.Type()
	for i := range rt.NumField() {
		sf := rt.Field(i)
		if sf.IsExported() && fieldColumn(sf) == column {
			return rv.Field(i)
		}
	}

	for i := range rt.NumField() {
		sf := rt.Field(i)
		if sf.IsExported() && foldName(sf.Name) == foldName(column) {
			return rv.Field(i)
		}
	}

	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		ft := sf.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() != reflect.Struct {
			continue
		}

		if found := fieldByColumn(rv.Field(i), column); found.IsValid() {
			return found
		}
	}

	return reflect.Value{}
}

func fieldColumn(sf reflect.StructField) string {
	for _, tag := range []string{"db", "bun"} {
		if v, ok := sf.Tag.Lookup(tag); ok {
			name, _, _ := strings.Cut(v, ",")
			if name != "" && name != "-" {
				return name
			}
		}
	}

	for _, part := range strings.Split(sf.Tag.Get("gorm"), ";") {
		if name, ok := strings.CutPrefix(strings.TrimSpace(part), "column:"); ok {
			return name
		}
	}

	return ""
}

func foldName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

// Attributes is a registry of attributes indexed by name.
type Attributes map[string]Attribute

func NewAttributes(attrs ...Attribute) Attributes {
	return lo.SliceToMap(attrs, func(a Attribute) (string, Attribute) {
		return a.Name, a
	})
}

// Lookup returns the attribute registered under name. The error names the
// closest known attribute.
func (a Attributes) Lookup(name string) (Attribute, error) {
	attr, ok := a[name]
	if !ok {
		return Attribute{}, fmt.Errorf("%w '%s'. closest: '%s'", ErrUnknownAttribute, name, a.closest(name))
	}

	return attr, nil
}

// Names returns the sorted attribute names.
func (a Attributes) Names() []string {
	names := lo.Keys(a)
	sort.Strings(names)

	return names
}

func (a Attributes) closest(input string) string {
	minDist := math.MaxInt
	closest := ""

	for _, name := range a.Names() {
		dist := levenshtein.ComputeDistance(name, input)
		if dist < minDist {
			minDist = dist
			closest = name
		}
	}

	return closest
}
