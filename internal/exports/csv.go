package exports

import (
	"encoding/csv"
	"sort"
	"strconv"
	"strings"

	"server/internal/catalog"
	"server/internal/format"
	"server/internal/logger"
	"server/internal/models"
)

var log = logger.New("exports")

// TemplateCSV renders a static template (headers plus optional sample
// rows) as CSV text. Fields containing commas, quotes, or newlines are
// quoted properly.
func TemplateCSV(rows [][]string) (string, error) {
	var b strings.Builder
	writer := csv.NewWriter(&b)

	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", log.Function("TemplateCSV").Err("failed to write template row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", log.Function("TemplateCSV").Err("failed to flush template csv", err)
	}

	return b.String(), nil
}

// ResultCSV renders a test result as a Metric,Value CSV. When the test
// failed, the corrective-actions and consequences blocks from the test
// definition are appended; a passed or indeterminate result never gets
// them.
func ResultCSV(def catalog.TestDefinition, result models.TestResult, planYear *int) (string, error) {
	if result == nil {
		return "", log.Function("ResultCSV").ErrMsg("no test result to export")
	}

	rows := [][]string{{"Metric", "Value"}}

	rows = append(rows, []string{"Test Name", def.Name})
	if planYear != nil {
		rows = append(rows, []string{"Plan Year", strconv.Itoa(*planYear)})
	}

	for _, field := range def.Fields {
		rows = append(rows, []string{
			field.DisplayLabel(),
			format.Apply(field.Kind, result[field.Key]),
		})
	}

	if excluded, ok := result.Nested(models.ResultKeyExcluded); ok {
		rows = append(rows, []string{})
		rows = append(rows, []string{"Excluded Participants"})
		for _, reason := range sortedKeys(excluded) {
			rows = append(rows, []string{reason, format.Count(excluded[reason])})
		}
	}

	if result.Failed() {
		rows = append(rows, []string{})
		rows = append(rows, []string{"Corrective Actions"})
		for _, action := range def.CorrectiveActions {
			rows = append(rows, []string{action})
		}

		rows = append(rows, []string{})
		rows = append(rows, []string{"Consequences"})
		for _, consequence := range def.Consequences {
			rows = append(rows, []string{consequence})
		}
	}

	var b strings.Builder
	writer := csv.NewWriter(&b)
	// Rows intentionally vary in width (blank separators, single-cell
	// section markers).
	writer.Comma = ','

	for _, row := range rows {
		if len(row) == 0 {
			row = []string{""}
		}
		if err := writer.Write(row); err != nil {
			return "", log.Function("ResultCSV").Err("failed to write result row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", log.Function("ResultCSV").Err("failed to flush result csv", err)
	}

	return b.String(), nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ResultFileName derives the download name for a result export.
func ResultFileName(def catalog.TestDefinition, planYear *int) string {
	name := strings.ReplaceAll(def.Name, " ", "_")
	if planYear != nil {
		return name + "_" + strconv.Itoa(*planYear) + "_results.csv"
	}
	return name + "_results.csv"
}
