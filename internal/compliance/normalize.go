package compliance

import (
	"fmt"
	"strings"

	"server/internal/catalog"
	"server/internal/models"
)

// NormalizeResult unwraps the compliance engine's response into the
// bare result object for a test. The engine has grown several envelope
// shapes over time; candidates are tried in order and the first match
// wins, so a test's declared response path always takes precedence over
// the generic fallbacks.
func NormalizeResult(payload map[string]any, def catalog.TestDefinition) (models.TestResult, error) {
	if payload == nil {
		return nil, fmt.Errorf("empty response payload")
	}

	candidates := [][]string{
		def.ResponsePath,
		{"Test Results", def.Key},
		{"Result"},
		{def.Key},
	}

	for _, path := range candidates {
		if len(path) == 0 {
			continue
		}
		if result, ok := walkPath(payload, path); ok {
			return result, nil
		}
	}

	// A flat payload that already carries the outcome key is the result
	// object itself.
	if _, ok := payload[models.ResultKeyOutcome]; ok {
		return models.TestResult(payload), nil
	}

	return nil, fmt.Errorf("no result found at any known path (top-level keys: %s)",
		strings.Join(topLevelKeys(payload), ", "))
}

func walkPath(payload map[string]any, path []string) (models.TestResult, bool) {
	current := payload
	for i, key := range path {
		value, ok := current[key]
		if !ok {
			return nil, false
		}

		nested, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}

		if i == len(path)-1 {
			return models.TestResult(nested), true
		}
		current = nested
	}
	return nil, false
}

func topLevelKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	return keys
}
