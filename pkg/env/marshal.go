package env

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeFor[time.Duration]()

// MarshalEnv reflects over the struct and creates .env content from tags.
// Fields tagged secret:"true" are left out.
func MarshalEnv(c any) (string, error) {
	v := reflect.ValueOf(c)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "", fmt.Errorf("marshal env: nil %s", v.Type())
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", fmt.Errorf("marshal env: expected struct, got %s", v.Kind())
	}
	t := v.Type()

	var lines []string
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("env")

		// Skip fields without env tag or unexported fields
		if tag == "" || !field.IsExported() || field.Tag.Get("secret") == "true" {
			continue
		}

		// Parse tag: "KEY,required,notEmpty" or "KEY"
		key, _, _ := strings.Cut(tag, ",")
		if key == "" {
			continue
		}

		val := v.Field(i)
		if isZeroValue(val) {
			continue
		}

		sep := field.Tag.Get("envSeparator")
		if sep == "" {
			sep = ","
		}
		lines = append(lines, fmt.Sprintf("%s=%s", key, formatValue(val, sep)))
	}

	result := strings.Join(lines, "\n")
	if result != "" {
		result += "\n"
	}

	return result, nil
}

// isZeroValue checks if a reflect.Value is the zero value for its type
func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

// formatValue converts a reflect.Value to the form env.Parse reads back.
func formatValue(v reflect.Value, sep string) string {
	if v.Type() == durationType {
		return time.Duration(v.Int()).String()
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice:
		items := make([]string, v.Len())
		for i := range items {
			items[i] = formatValue(v.Index(i), sep)
		}
		return strings.Join(items, sep)
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
