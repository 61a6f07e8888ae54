package census

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"server/internal/utils"
)

// File is a decoded census upload: one header row and the data rows
// beneath it.
type File struct {
	Headers []string
	Rows    [][]string
}

// AllowedExtension reports whether the upload has a supported census
// file extension.
func AllowedExtension(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".xlsx":
		return true
	default:
		return false
	}
}

// Decode parses an uploaded census file by extension. Structural
// problems (no header, no rows, multiple sheets) are validation errors
// reported before anything touches the network or the database.
func Decode(fileName string, data []byte) (*File, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return decodeCSV(data)
	case ".xlsx":
		return decodeXLSX(data)
	default:
		return nil, fmt.Errorf("unsupported file extension %q: expected .csv or .xlsx", filepath.Ext(fileName))
	}
}

func decodeCSV(data []byte) (*File, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("census file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read census headers: %w", err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read census row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("census file has headers but no rows")
	}

	return &File{Headers: normalizeHeaders(headers), Rows: rows}, nil
}

func decodeXLSX(data []byte) (*File, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = workbook.Close() }()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no worksheet found")
	}
	if len(sheets) > 1 {
		return nil, fmt.Errorf("multiple worksheets found; upload a file with a single sheet")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("worksheet has no data rows")
	}

	return &File{Headers: normalizeHeaders(rows[0]), Rows: rows[1:]}, nil
}

func normalizeHeaders(headers []string) []string {
	normalized := make([]string, len(headers))
	for i, header := range headers {
		normalized[i] = strings.ToLower(strings.TrimSpace(header))
	}
	return normalized
}

// NormalizeDates rewrites known date columns to ISO dates in place.
// Values that do not parse are left as uploaded; the backend decides
// how strict to be.
func (f *File) NormalizeDates() {
	dateIndexes := make([]int, 0, len(f.Headers))
	for i, header := range f.Headers {
		if utils.IsDateColumn(header) {
			dateIndexes = append(dateIndexes, i)
		}
	}

	for _, row := range f.Rows {
		for _, idx := range dateIndexes {
			if idx < len(row) {
				if normalized, ok := utils.NormalizeDate(row[idx]); ok {
					row[idx] = normalized
				}
			}
		}
	}
}

// Cell returns the value at the given header for a row, empty when the
// column is missing or the row is short.
func (f *File) Cell(row []string, header string) string {
	for i, h := range f.Headers {
		if h == header && i < len(row) {
			return strings.TrimSpace(row[i])
		}
	}
	return ""
}
