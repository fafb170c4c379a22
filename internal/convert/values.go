package convert

import (
	"strconv"
	"strings"
	"time"
)

// Date layouts tried, in order, after RFC 3339. Backends are inconsistent
// about what they emit for datetime fields.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
}

// parseTime parses a backend date/datetime value. ISO-8601 "Z" suffixes are
// normalized to an explicit UTC offset first, so both forms parse under the
// RFC 3339 layout. The boolean reports whether the value was parsable.
func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if strings.HasSuffix(s, "+00:00") {
			s = strings.TrimSuffix(s, "+00:00") + "Z"
		}
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

// timeOrNow parses a date value, degrading to the current time when the
// value is absent or unparsable. The fallback is a documented imprecision:
// callers record the field as defaulted when it fires.
func timeOrNow(v any) (time.Time, bool) {
	if ts, ok := parseTime(v); ok {
		return ts, true
	}
	return time.Now().UTC(), false
}

// asString renders a backend value as a string; nil becomes "".
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// asFloat coerces money/quantity values that backends emit as numbers or
// numeric strings. The boolean reports whether a usable value was present.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// asInt coerces an integral backend value.
func asInt(v any) (int, bool) {
	if f, ok := asFloat(v); ok {
		return int(f), true
	}
	return 0, false
}

// asBool coerces a backend truthiness value. ERPNext encodes booleans as
// 0/1 integers; the cloud backend uses JSON booleans.
func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case int:
		return b != 0
	case string:
		return b == "1" || strings.EqualFold(b, "true")
	default:
		return false
	}
}
