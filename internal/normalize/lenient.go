// Package normalize maps raw ContaHub report payloads into typed rows.
// Every extraction is lenient: missing, null or malformed input falls back
// to a defined default (empty string, zero or null) and never fails.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Str returns the field as a string, "" when missing or null.
func Str(v gjson.Result) string {
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return v.String()
}

// Float parses a numeric field, 0.0 on missing, null, "", "null" or any
// value that does not parse. Money fields arrive under $-prefixed keys and
// go through this same path.
func Float(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return v.Num
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" || s == "null" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Int parses an integer field, truncating fractional input, 0 on failure.
func Int(v gjson.Result) int64 {
	return int64(Float(v))
}

// NullableInt parses an integer field, mapping missing, unparseable and
// zero values to null (the upstream feed uses zero as "not measured").
func NullableInt(v gjson.Result) *int64 {
	n := Int(v)
	if n == 0 {
		return nil
	}
	return &n
}

// Hour normalizes an hour field that may arrive as "HH:MM" or a bare
// number to an integer hour. Missing or malformed input yields 0.
func Hour(v gjson.Result) int {
	if v.Type == gjson.String && strings.Contains(v.Str, ":") {
		n, _ := strconv.Atoi(strings.SplitN(v.Str, ":", 2)[0])
		return n
	}
	return int(Float(v))
}

// DateOnly truncates a date-time string at the T separator, yielding a
// plain calendar date. Missing or empty input yields null.
func DateOnly(v gjson.Result) *string {
	s := Str(v)
	if s == "" {
		return nil
	}
	d := strings.SplitN(s, "T", 2)[0]
	if d == "" {
		return nil
	}
	return &d
}

// LocalTimestamp truncates an ISO timestamp at the -03 offset marker,
// yielding a plain local timestamp. Missing input yields null.
func LocalTimestamp(v gjson.Result) *string {
	s := Str(v)
	if s == "" {
		return nil
	}
	t := strings.SplitN(s, "-03", 2)[0]
	if t == "" {
		t = s
	}
	return &t
}

// BirthDate truncates at T and maps the 0001-01-01 sentinel to null.
func BirthDate(v gjson.Result) *string {
	d := DateOnly(v)
	if d == nil || *d == "0001-01-01" {
		return nil
	}
	return d
}

// WeekOfYear derives the week number for a yyyy-mm-dd business date using
// the formula floor((daysSinceJan1 + jan1Weekday + 1) / 7) + 1. This is not
// ISO 8601; it is kept as-is for parity with all historically ingested
// rows. Unparseable input yields week 1.
func WeekOfYear(date string) int {
	dt, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 1
	}
	jan1 := time.Date(dt.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(dt.Sub(jan1).Hours() / 24)
	return (days+int(jan1.Weekday())+1)/7 + 1
}
