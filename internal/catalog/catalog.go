package catalog

import (
	"fmt"
	"sort"

	"server/internal/format"
)

// Plan year selections accepted on submission.
const (
	PlanYearMin = 2010
	PlanYearMax = 2051
)

// FieldSpec names one well-known result key and how to render it.
type FieldSpec struct {
	Key   string
	Label string
	Kind  format.Kind
}

func (f FieldSpec) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Key
}

// TestDefinition is the per-test configuration that used to be duplicated
// across one page component per test: which backend key to submit under,
// where its result lives in the response, which fields to render, and the
// advisory copy shown on failure.
type TestDefinition struct {
	Key               string
	Name              string
	Criterion         string
	ResponsePath      []string
	Fields            []FieldSpec
	CorrectiveActions []string
	Consequences      []string
	RequiresPlanYear  bool
	TemplateHeaders   []string
}

var registry = map[string]TestDefinition{}

func register(def TestDefinition) {
	if _, exists := registry[def.Key]; exists {
		panic(fmt.Sprintf("duplicate test definition %q", def.Key))
	}
	registry[def.Key] = def
}

// Lookup returns the definition for a test key.
func Lookup(key string) (TestDefinition, bool) {
	def, ok := registry[key]
	return def, ok
}

// All returns every registered definition sorted by key.
func All() []TestDefinition {
	defs := make([]TestDefinition, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Key < defs[j].Key })
	return defs
}

func ValidPlanYear(year int) bool {
	return year >= PlanYearMin && year <= PlanYearMax
}
