package entities

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Row represents one loosely-typed record handed over by a source. Field
// names vary by source and vendor spelling; values are scalars or strings.
type Row map[string]any

// Field is a logical field resolved against an ordered list of accepted
// spellings. The first alias carrying a value wins.
type Field struct {
	Name    string
	Aliases []string
}

// Lookup returns the value of the first alias that is present and not blank
func (r Row) Lookup(f Field) (any, bool) {
	for _, alias := range f.Aliases {
		v, ok := r[alias]
		if !ok || isBlank(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

// String resolves a field and renders it as a trimmed string
func (r Row) String(f Field) (string, bool) {
	v, ok := r.Lookup(f)
	if !ok {
		return "", false
	}
	s, ok := stringify(v)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Bool reports whether any alias of the field holds a truthy value
func (r Row) Bool(f Field) bool {
	for _, alias := range f.Aliases {
		if truthy(r[alias]) {
			return true
		}
	}
	return false
}

// Date resolves a field and parses it as a calendar day. Unparseable or
// absent values yield nil.
func (r Row) Date(f Field) *Date {
	v, ok := r.Lookup(f)
	if !ok {
		return nil
	}
	return ParseDate(v)
}

// Clone returns a shallow copy of the row
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// scalar unwraps pointers. Nil values and nil pointers are absent.
func scalar(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}

func isBlank(v any) bool {
	val, ok := scalar(v)
	if !ok {
		return true
	}
	if b, ok := val.([]byte); ok {
		return strings.TrimSpace(string(b)) == ""
	}
	rv := reflect.ValueOf(val)
	return rv.Kind() == reflect.String && strings.TrimSpace(rv.String()) == ""
}

// stringify renders scalar values; composite values are not stringifiable
func stringify(v any) (string, bool) {
	val, ok := scalar(v)
	if !ok {
		return "", false
	}

	switch typed := val.(type) {
	case string:
		return typed, true
	case []byte:
		return string(typed), true
	case time.Time:
		return typed.Format(time.RFC3339), true
	case fmt.Stringer:
		return safeString(typed)
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	default:
		return "", false
	}
}

// safeString treats a panicking String method as unstringifiable
func safeString(s fmt.Stringer) (out string, ok bool) {
	defer func() {
		if recover() != nil {
			out, ok = "", false
		}
	}()
	return s.String(), true
}

func truthy(v any) bool {
	val, ok := scalar(v)
	if !ok {
		return false
	}
	if b, ok := val.([]byte); ok {
		return parseBoolString(string(b))
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return parseBoolString(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	default:
		return false
	}
}

func parseBoolString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true
	default:
		return false
	}
}
