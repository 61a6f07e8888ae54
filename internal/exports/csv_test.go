package exports

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server/internal/catalog"
	"server/internal/models"
)

func adpDefinition(t *testing.T) catalog.TestDefinition {
	t.Helper()
	def, ok := catalog.Lookup("adpTest")
	require.True(t, ok)
	return def
}

func intPtr(i int) *int {
	return &i
}

func TestTemplateCSV(t *testing.T) {
	out, err := TemplateCSV([][]string{
		{"last_name", "first_name", "compensation"},
		{"Smith", "Jane", "85000"},
	})
	require.NoError(t, err)

	assert.Equal(t, "last_name,first_name,compensation\nSmith,Jane,85000\n", out)
}

func TestTemplateCSV_QuotesEmbeddedCommas(t *testing.T) {
	out, err := TemplateCSV([][]string{
		{"note"},
		{"refund excess, then retest"},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "refund excess, then retest", records[1][0])
}

func TestResultCSV_PassedHasNoCorrectiveBlock(t *testing.T) {
	result := models.TestResult{
		"Total Employees": float64(100),
		"HCE ADP (%)":     8.1234,
		"NHCE ADP (%)":    6.55,
		"Test Result":     "Passed",
	}

	out, err := ResultCSV(adpDefinition(t), result, intPtr(2025))
	require.NoError(t, err)

	assert.Contains(t, out, "8.12%")
	assert.Contains(t, out, "6.55%")
	assert.Contains(t, out, "Plan Year,2025")
	assert.NotContains(t, out, "Corrective Actions")
	assert.NotContains(t, out, "Consequences")
}

func TestResultCSV_FailedAppendsCorrectiveBlocks(t *testing.T) {
	result := models.TestResult{
		"Total Employees": float64(100),
		"HCE ADP (%)":     8.1234,
		"NHCE ADP (%)":    6.55,
		"Test Result":     "Failed",
	}

	out, err := ResultCSV(adpDefinition(t), result, intPtr(2025))
	require.NoError(t, err)

	assert.Contains(t, out, "Corrective Actions")
	assert.Contains(t, out, "Consequences")

	// Both blocks carry at least one non-empty line of copy. Section
	// marker rows are single-cell, so the reader must accept ragged
	// records.
	reader := csv.NewReader(strings.NewReader(out))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	var actions, consequences []string
	section := ""
	for _, record := range records {
		switch record[0] {
		case "Corrective Actions":
			section = "actions"
			continue
		case "Consequences":
			section = "consequences"
			continue
		case "":
			section = ""
			continue
		}
		switch section {
		case "actions":
			actions = append(actions, record[0])
		case "consequences":
			consequences = append(consequences, record[0])
		}
	}
	assert.NotEmpty(t, actions)
	assert.NotEmpty(t, consequences)
	for _, action := range actions {
		assert.NotEmpty(t, action)
	}
}

func TestResultCSV_OutcomeCaseInsensitive(t *testing.T) {
	tests := []struct {
		name      string
		outcome   string
		wantBlock bool
	}{
		{name: "lowercase failed", outcome: "failed", wantBlock: true},
		{name: "uppercase failed", outcome: "FAILED", wantBlock: true},
		{name: "mixed case failed", outcome: "Failed", wantBlock: true},
		{name: "passed", outcome: "Passed", wantBlock: false},
		{name: "uppercase passed", outcome: "PASSED", wantBlock: false},
		{name: "missing outcome", outcome: "", wantBlock: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := models.TestResult{"Total Employees": 10}
			if tt.outcome != "" {
				result["Test Result"] = tt.outcome
			}

			out, err := ResultCSV(adpDefinition(t), result, nil)
			require.NoError(t, err)

			if tt.wantBlock {
				assert.Contains(t, out, "Corrective Actions")
			} else {
				assert.NotContains(t, out, "Corrective Actions")
			}
		})
	}
}

func TestResultCSV_RoundTrips(t *testing.T) {
	result := models.TestResult{
		"Total Employees": float64(250),
		"Total HCEs":      float64(30),
		"Total NHCEs":     float64(220),
		"HCE ADP (%)":     7.25,
		"NHCE ADP (%)":    6.0,
		"Test Result":     "Passed",
	}

	out, err := ResultCSV(adpDefinition(t), result, intPtr(2024))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "Metric,Value", lines[0])

	byMetric := map[string]string{}
	for _, line := range lines[1:] {
		parts := strings.SplitN(line, ",", 2)
		if len(parts) == 2 {
			byMetric[parts[0]] = parts[1]
		}
	}
	assert.Equal(t, "250", byMetric["Total Employees"])
	assert.Equal(t, "7.25%", byMetric["HCE ADP (%)"])
	assert.Equal(t, "6.00%", byMetric["NHCE ADP (%)"])
	assert.Equal(t, "Passed", byMetric["Test Result"])
}

func TestResultCSV_MissingFieldsDegradeToNA(t *testing.T) {
	out, err := ResultCSV(adpDefinition(t), models.TestResult{"Test Result": "Passed"}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Total Employees,N/A")
}

func TestResultCSV_NilResultFailsFast(t *testing.T) {
	_, err := ResultCSV(adpDefinition(t), nil, nil)
	assert.Error(t, err)
}

func TestResultCSV_ExcludedParticipantsSection(t *testing.T) {
	result := models.TestResult{
		"Test Result": "Passed",
		"Excluded Participants": map[string]any{
			"Under age 21":         float64(4),
			"Less than 1 year svc": float64(9),
		},
	}

	out, err := ResultCSV(adpDefinition(t), result, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Excluded Participants")
	assert.Contains(t, out, "Under age 21,4")
	assert.Contains(t, out, "Less than 1 year svc,9")
}

func TestResultFileName(t *testing.T) {
	def := adpDefinition(t)
	assert.Equal(t, "ADP_Test_2025_results.csv", ResultFileName(def, intPtr(2025)))
	assert.Equal(t, "ADP_Test_results.csv", ResultFileName(def, nil))
}
