package census

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestAllowedExtension(t *testing.T) {
	tests := []struct {
		fileName string
		allowed  bool
	}{
		{"census.csv", true},
		{"census.CSV", true},
		{"census.xlsx", true},
		{"census.XLSX", true},
		{"census.txt", false},
		{"census.xls", false},
		{"census.pdf", false},
		{"census", false},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.allowed, AllowedExtension(tt.fileName))
		})
	}
}

func TestDecodeCSV(t *testing.T) {
	data := []byte("Last_Name,First_Name,Compensation\nSmith,Jane,85000\nDoe,John,62000\n")

	file, err := Decode("census.csv", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"last_name", "first_name", "compensation"}, file.Headers)
	require.Len(t, file.Rows, 2)
	assert.Equal(t, "Jane", file.Cell(file.Rows[0], "first_name"))
	assert.Equal(t, "62000", file.Cell(file.Rows[1], "compensation"))
}

func TestDecodeCSV_Empty(t *testing.T) {
	_, err := Decode("census.csv", []byte(""))
	assert.Error(t, err)

	_, err = Decode("census.csv", []byte("last_name,first_name\n"))
	assert.Error(t, err)
}

func TestDecode_RejectsUnsupportedExtension(t *testing.T) {
	_, err := Decode("census.txt", []byte("a,b\n1,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file extension")
}

func TestDecodeXLSX(t *testing.T) {
	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	require.NoError(t, workbook.SetSheetRow(sheet, "A1", &[]string{"last_name", "first_name", "hire_date"}))
	require.NoError(t, workbook.SetSheetRow(sheet, "A2", &[]string{"Smith", "Jane", "2015-03-01"}))

	var buf bytes.Buffer
	require.NoError(t, workbook.Write(&buf))

	file, err := Decode("census.xlsx", buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, []string{"last_name", "first_name", "hire_date"}, file.Headers)
	require.Len(t, file.Rows, 1)
	assert.Equal(t, "Smith", file.Cell(file.Rows[0], "last_name"))
}

func TestDecodeXLSX_MultipleSheetsRejected(t *testing.T) {
	workbook := excelize.NewFile()
	_, err := workbook.NewSheet("Second")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, workbook.Write(&buf))

	_, err = Decode("census.xlsx", buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple worksheets")
}

func TestNormalizeDates(t *testing.T) {
	data := []byte("last_name,birth_date,hire_date,compensation\nSmith,06/15/1985,2015-03-01,85000\nDoe,bad-date,31213,62000\n")

	file, err := Decode("census.csv", data)
	require.NoError(t, err)

	file.NormalizeDates()

	assert.Equal(t, "1985-06-15", file.Cell(file.Rows[0], "birth_date"))
	assert.Equal(t, "2015-03-01", file.Cell(file.Rows[0], "hire_date"))
	// Unparseable values pass through untouched.
	assert.Equal(t, "bad-date", file.Cell(file.Rows[1], "birth_date"))
	assert.Equal(t, "1985-06-15", file.Cell(file.Rows[1], "hire_date"))
	// Non-date columns untouched.
	assert.Equal(t, "85000", file.Cell(file.Rows[0], "compensation"))
}
