package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Well-known result keys the compliance backend returns. Everything else
// in a TestResult is carried through opaquely.
const (
	ResultKeyOutcome   = "Test Result"
	ResultKeyBreakdown = "Breakdown"
	ResultKeyExcluded  = "Excluded Participants"
)

// TestResult is the loosely-typed result object returned by the compliance
// backend. Missing keys degrade to "N/A" at render time, never an error.
type TestResult map[string]any

func (r TestResult) Outcome() string {
	value, ok := r[ResultKeyOutcome]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%v", value)
}

// Failed reports whether the backend marked the test failed,
// case-insensitively. Only an explicit "failed" counts; an absent or
// unknown outcome is not a failure.
func (r TestResult) Failed() bool {
	return strings.EqualFold(r.Outcome(), "failed")
}

func (r TestResult) Passed() bool {
	return strings.EqualFold(r.Outcome(), "passed")
}

// Number coerces the value under key to a float64. JSON numbers,
// numeric strings, and integer types all coerce; anything else reports
// false.
func (r TestResult) Number(key string) (float64, bool) {
	value, ok := r[key]
	if !ok || value == nil {
		return 0, false
	}

	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func (r TestResult) String(key string) (string, bool) {
	value, ok := r[key]
	if !ok || value == nil {
		return "", false
	}
	if s, ok := value.(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", value), true
}

// Nested returns the sub-mapping under key, for the Breakdown and
// Excluded Participants sections.
func (r TestResult) Nested(key string) (map[string]any, bool) {
	value, ok := r[key]
	if !ok {
		return nil, false
	}
	nested, ok := value.(map[string]any)
	if !ok || len(nested) == 0 {
		return nil, false
	}
	return nested, true
}

// Value / Scan store the result as a JSON column through GORM.
func (r TestResult) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

func (r *TestResult) Scan(value any) error {
	if value == nil {
		*r = nil
		return nil
	}

	var payload []byte
	switch v := value.(type) {
	case []byte:
		payload = v
	case string:
		payload = []byte(v)
	default:
		return fmt.Errorf("unsupported test result column type %T", value)
	}

	return json.Unmarshal(payload, r)
}
