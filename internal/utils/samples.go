package utils

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// Sample census rows for downloadable templates, so a template can be
// opened with realistic values in every column.

var (
	sampleFirstNames = []string{"John", "Jane", "Bob", "Alice", "Charlie", "Diana", "Frank", "Grace", "Henry", "Ivy"}
	sampleLastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez"}
)

// SampleRows generates n plausible census rows for the given headers.
func SampleRows(headers []string, n int) [][]string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(headers))
		for j, header := range headers {
			row[j] = sampleValue(header, i, rng)
		}
		rows = append(rows, row)
	}
	return rows
}

func sampleValue(header string, i int, rng *rand.Rand) string {
	if IsDateColumn(header) {
		base := time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)
		return base.AddDate(0, 0, rng.Intn(365*50)).Format("2006-01-02")
	}

	switch header {
	case "first_name":
		return sampleFirstNames[rng.Intn(len(sampleFirstNames))]
	case "last_name":
		return sampleLastNames[rng.Intn(len(sampleLastNames))]
	case "employee_id":
		return fmt.Sprintf("E%05d", i+1)
	case "compensation", "account_balance":
		return strconv.Itoa(30000 + rng.Intn(220000))
	case "employee_deferrals", "employer_match", "benefit_amount":
		return strconv.Itoa(rng.Intn(23000))
	case "ownership_percent":
		return strconv.Itoa(rng.Intn(100))
	case "hce", "key_employee", "officer", "union_employee":
		if rng.Float32() < 0.15 {
			return "yes"
		}
		return "no"
	default:
		return ""
	}
}
