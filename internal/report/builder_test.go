package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server/internal/catalog"
	"server/internal/models"
)

func intPtr(i int) *int {
	return &i
}

func passedResult() models.TestResult {
	return models.TestResult{
		"Total Employees": float64(100),
		"Total HCEs":      float64(12),
		"Total NHCEs":     float64(88),
		"HCE ADP (%)":     8.1234,
		"NHCE ADP (%)":    6.55,
		"Test Result":     "Passed",
	}
}

func failedResult() models.TestResult {
	result := passedResult()
	result["Test Result"] = "Failed"
	return result
}

func buildFor(t *testing.T, result models.TestResult, opts Options) *Document {
	t.Helper()
	def, ok := catalog.Lookup("adpTest")
	require.True(t, ok)

	doc, err := Build(def, result, opts)
	require.NoError(t, err)
	require.NotEmpty(t, doc.Bytes)
	return doc
}

func sectionTitles(doc *Document) []string {
	titles := make([]string, 0, len(doc.Sections))
	for _, section := range doc.Sections {
		titles = append(titles, section.Title)
	}
	return titles
}

func TestBuild_NilResultFailsFast(t *testing.T) {
	def, ok := catalog.Lookup("adpTest")
	require.True(t, ok)

	doc, err := Build(def, nil, Options{})
	assert.Error(t, err)
	assert.Nil(t, doc)
}

func TestBuild_PassedResultSkipsCorrectiveSections(t *testing.T) {
	doc := buildFor(t, passedResult(), Options{PlanYear: intPtr(2025)})

	titles := sectionTitles(doc)
	assert.Contains(t, titles, "Metrics")
	assert.NotContains(t, titles, "Corrective Actions")
	assert.NotContains(t, titles, "Consequences")
	assert.NotContains(t, titles, "AI Compliance Review")
}

func TestBuild_FailedResultAddsCorrectiveSections(t *testing.T) {
	doc := buildFor(t, failedResult(), Options{PlanYear: intPtr(2025)})

	titles := sectionTitles(doc)
	assert.Contains(t, titles, "Corrective Actions")
	assert.Contains(t, titles, "Consequences")
}

func TestBuild_AIReviewReplacesStaticCopy(t *testing.T) {
	doc := buildFor(t, failedResult(), Options{
		AIReview: "The plan failed the ADP test by 0.3 percentage points. Refunding excess deferrals to the top two HCEs would bring the plan into compliance.",
	})

	titles := sectionTitles(doc)
	assert.Contains(t, titles, "AI Compliance Review")
	assert.NotContains(t, titles, "Corrective Actions")
	assert.NotContains(t, titles, "Consequences")
}

func TestBuild_OptionalSectionsAppearWhenPresent(t *testing.T) {
	result := failedResult()
	result["Breakdown"] = map[string]any{
		"HCE Deferrals":  float64(180000),
		"NHCE Deferrals": float64(440000),
	}
	result["Excluded Participants"] = map[string]any{
		"Under age 21": float64(4),
	}

	doc := buildFor(t, result, Options{})

	titles := sectionTitles(doc)
	assert.Equal(t, []string{
		"Metrics",
		"Breakdown",
		"Excluded Participants",
		"Corrective Actions",
		"Consequences",
	}, titles)
}

func TestBuild_StackingIsMonotonic(t *testing.T) {
	combos := []models.TestResult{
		passedResult(),
		failedResult(),
		func() models.TestResult {
			r := failedResult()
			r["Breakdown"] = map[string]any{"HCE Deferrals": float64(1)}
			return r
		}(),
		func() models.TestResult {
			r := passedResult()
			r["Excluded Participants"] = map[string]any{"Terminated": float64(2)}
			return r
		}(),
	}

	for _, result := range combos {
		doc := buildFor(t, result, Options{PlanYear: intPtr(2025)})
		require.NotEmpty(t, doc.Sections)

		for i := 1; i < len(doc.Sections); i++ {
			prev, curr := doc.Sections[i-1], doc.Sections[i]
			if curr.Page != prev.Page {
				// New page resets the cursor; ordering is by page.
				assert.Greater(t, curr.Page, prev.Page)
				continue
			}
			assert.Greater(t, curr.StartY, prev.EndY,
				"section %q must start strictly below %q", curr.Title, prev.Title)
		}
	}
}

func TestBuild_SingleSerializationPass(t *testing.T) {
	opts := Options{
		PlanYear:    intPtr(2025),
		GeneratedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	first := buildFor(t, passedResult(), opts)
	second := buildFor(t, passedResult(), opts)

	// Deterministic inputs produce identical bytes; the blob handed to
	// storage is the same render as the download.
	assert.Equal(t, first.Bytes, second.Bytes)
}

func TestBuild_FileName(t *testing.T) {
	doc := buildFor(t, passedResult(), Options{PlanYear: intPtr(2025)})
	assert.Equal(t, "adpTest_2025_report.pdf", doc.FileName)

	doc = buildFor(t, passedResult(), Options{})
	assert.Equal(t, "adpTest_report.pdf", doc.FileName)
}
