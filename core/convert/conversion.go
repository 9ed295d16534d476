package convert

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// truthy and falsy are the recognized boolean spellings, lowercase.
// "si"/"sí" are accepted because the source files carry Spanish headers
// and cell values.
var (
	truthy = map[string]struct{}{
		"1": {}, "true": {}, "t": {}, "yes": {}, "y": {}, "si": {}, "sí": {},
	}
	falsy = map[string]struct{}{
		"0": {}, "false": {}, "f": {}, "no": {}, "n": {},
	}
)

// ToIntSafe converts raw input to an integer identifier using explicit type
// switching. Blank or unparseable input degrades to nil, never an error:
// a missing id and a garbage id are the same thing to the caller, "no id".
// Decimal-looking strings such as "3.0" truncate toward zero.
func ToIntSafe(val any) *int64 {
	switch v := val.(type) {
	case nil:
		return nil
	case int64:
		return &v
	case int:
		n := int64(v)
		return &n
	case int32:
		n := int64(v)
		return &n
	case uint:
		n := int64(v)
		return &n
	case uint64:
		n := int64(v)
		return &n
	case float64:
		n := int64(v)
		return &n
	case float32:
		n := int64(v)
		return &n
	case string:
		return parseInt(v)
	case []byte:
		return parseInt(string(v))
	default:
		return nil
	}
}

func parseInt(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n
	}
	// "3.0" style input from spreadsheet exports
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int64(f)
		return &n
	}
	return nil
}

// ToBoolSafe converts raw input to a boolean. Anything outside the
// recognized truthy/falsy sets degrades to nil; the caller must keep the
// original value in that case rather than overwrite it with null.
func ToBoolSafe(val any) *bool {
	switch v := val.(type) {
	case nil:
		return nil
	case bool:
		return &v
	case string:
		return parseBool(v)
	case []byte:
		return parseBool(string(v))
	case int:
		return parseBool(strconv.Itoa(v))
	case int64:
		return parseBool(strconv.FormatInt(v, 10))
	default:
		return nil
	}
}

func parseBool(s string) *bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := truthy[s]; ok {
		b := true
		return &b
	}
	if _, ok := falsy[s]; ok {
		b := false
		return &b
	}
	return nil
}

// ToString converts raw input to its string form. Used by the quarantine
// exporter, which needs every cell back as text.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", v)
	}
}
