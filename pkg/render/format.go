package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okuyamashin/querycanvas/pkg/directive"
)

// FormatValue renders one cell value according to its column options.
// NULL is always the empty string, whatever the format says.
func FormatValue(v any, col directive.Column) string {
	if v == nil {
		return ""
	}
	switch col.Format {
	case "number":
		return formatNumber(v, col)
	case "datetime":
		return formatDatetime(v, col)
	}
	return stringify(v)
}

// formatNumber applies fixed-point rounding and thousands grouping. A value
// that does not parse as a number passes through unchanged.
func formatNumber(v any, col directive.Column) string {
	s := stringify(v)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return s
	}

	var out string
	if col.Decimal != nil {
		out = strconv.FormatFloat(f, 'f', *col.Decimal, 64)
	} else {
		out = strconv.FormatFloat(f, 'f', -1, 64)
	}
	if col.Comma {
		out = groupThousands(out)
	}
	return out
}

// groupThousands inserts commas into the integer part of a plain decimal
// string. The sign and the fraction are left untouched.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	n := len(intPart)
	if n <= 3 {
		return sign + intPart + frac
	}

	var b strings.Builder
	b.Grow(n + n/3)
	if head := n % 3; head > 0 {
		b.WriteString(intPart[:head])
	}
	for i := n % 3; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}

// datetimeLayouts are tried in order when the value is a string. Naive
// layouts are interpreted in local time; zoned ones are converted to it.
var datetimeLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02T15:04:05.999999999", false},
	{"2006-01-02 15:04:05.999999999", false},
	{"2006/01/02 15:04:05", false},
	{"2006-01-02", false},
	{"2006/01/02", false},
}

// formatDatetime renders the value through the column's pattern. A value
// that cannot be read as a timestamp passes through unchanged.
func formatDatetime(v any, col directive.Column) string {
	ts, ok := toTime(v)
	if !ok {
		return stringify(v)
	}
	pattern := col.Pattern
	if pattern == "" {
		pattern = "yyyy-MM-dd HH:mm:ss"
	}
	return substitutePattern(pattern, ts)
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.Local(), true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return t.Local(), true
	}

	s := strings.TrimSpace(stringify(v))
	if s == "" {
		return time.Time{}, false
	}
	for _, dl := range datetimeLayouts {
		if dl.zoned {
			if ts, err := time.Parse(dl.layout, s); err == nil {
				return ts.Local(), true
			}
			continue
		}
		if ts, err := time.ParseInLocation(dl.layout, s, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// substitutePattern fills the yyyy MM dd HH mm ss tokens, zero-padded. Each
// token replaces only its first occurrence, in this fixed order; repeated
// tokens keep their later occurrences literal.
func substitutePattern(pattern string, t time.Time) string {
	out := pattern
	out = strings.Replace(out, "yyyy", fmt.Sprintf("%04d", t.Year()), 1)
	out = strings.Replace(out, "MM", fmt.Sprintf("%02d", int(t.Month())), 1)
	out = strings.Replace(out, "dd", fmt.Sprintf("%02d", t.Day()), 1)
	out = strings.Replace(out, "HH", fmt.Sprintf("%02d", t.Hour()), 1)
	out = strings.Replace(out, "mm", fmt.Sprintf("%02d", t.Minute()), 1)
	out = strings.Replace(out, "ss", fmt.Sprintf("%02d", t.Second()), 1)
	return out
}

// stringify is the default string conversion. Floats stay in plain decimal
// notation so large values never come out in exponent form, and []byte is
// treated as text the way database drivers hand it over.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// toFloat reads a cell value as a float for comparisons. Database drivers
// deliver numbers as int64 or float64 and text as string or []byte, so both
// native and string paths are needed.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	}

	s := strings.TrimSpace(stringify(v))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
