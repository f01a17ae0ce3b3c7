// Package model contains the User and Score records passed between layers
// and the coercions used to flatten upstream OData values.
package model

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	epochDigits = regexp.MustCompile(`\d{10,}`)
	dateWrapper = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)
)

// Number coerces an upstream value to a float64. Strings may carry thousands
// separators ("1,250"). Anything non-numeric is 0.
func Number(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		f = parseNumber(string(x))
	case string:
		f = parseNumber(x)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// EpochMillis extracts the epoch-millisecond value from an OData v2 date such
// as "/Date(1700000000000)/". The first run of at least ten digits wins;
// values without one are 0.
func EpochMillis(v any) int64 {
	switch x := v.(type) {
	case json.Number:
		n, _ := x.Int64()
		return n
	case float64:
		return int64(x)
	case string:
		m := epochDigits.FindString(x)
		if m == "" {
			return 0
		}
		n, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Date renders an OData v2 date wrapper as RFC 3339. An offset suffix
// ("+0120" minutes, as in "/Date(1700000000000+0120)/") selects the zone.
// Values that are not date wrappers are returned as text.
func Date(v any) string {
	s := Text(v)
	m := dateWrapper.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return s
	}
	t := time.UnixMilli(ms).UTC()
	if m[2] != "" {
		minutes, err := strconv.Atoi(m[2][1:])
		if err == nil {
			if m[2][0] == '-' {
				minutes = -minutes
			}
			t = t.In(time.FixedZone("", minutes*60))
		}
	}
	return t.Format(time.RFC3339)
}

// Text renders an upstream scalar as a string. Nil is "".
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
