package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Census files arrive with dates in whatever format the payroll system
// exported. Everything is normalized to ISO dates before archival.

var censusDateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"01-02-2006",
	"02.01.2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// KnownDateColumns returns the census column names that get date
// normalization on intake.
func KnownDateColumns() []string {
	return []string{
		"birth_date",
		"hire_date",
		"start_date",
		"end_date",
		"termination_date",
	}
}

// NormalizeDate parses a census date value and returns it as an ISO
// date. Excel serial numbers (common in xlsx exports) are handled in a
// realistic serial range so plain years are not mistaken for serials.
func NormalizeDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial >= 20000 && serial <= 80000 {
			if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return parsed.Format("2006-01-02"), true
			}
		}
		return "", false
	}

	for _, layout := range censusDateFormats {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02"), true
		}
	}

	return "", false
}

// IsDateColumn reports whether a normalized header is a known date
// column.
func IsDateColumn(header string) bool {
	header = strings.ToLower(strings.TrimSpace(header))
	for _, col := range KnownDateColumns() {
		if header == col {
			return true
		}
	}
	return false
}
