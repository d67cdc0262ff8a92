package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"biasdetect/domain/table"
	"biasdetect/internal"
	"biasdetect/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader reads Excel and CSV files into a typed table
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a data reader; the format comes from the file extension
func NewDataReader(filePath string) *DataReader {
	return &DataReader{
		filePath: filePath,
		fileType: FileType(filePath),
		logger:   internal.DefaultLogger,
	}
}

// FileType maps a file name to "csv", "xlsx" or "" when unsupported
func FileType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "csv"
	case ".xlsx":
		return "xlsx"
	}
	return ""
}

// ReadTable reads the file and infers column kinds once
func (r *DataReader) ReadTable() (*table.Table, error) {
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if r.fileType == "" {
		return nil, errors.UnsupportedFormat(filepath.Ext(r.filePath))
	}

	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath))
	}
	defer f.Close()

	t, err := Read(f, r.fileType)
	if err != nil {
		return nil, err
	}
	return t.WithName(filepath.Base(r.filePath)), nil
}

// Read parses r as the given file type ("csv" or "xlsx")
func Read(r io.Reader, fileType string) (*table.Table, error) {
	switch fileType {
	case "csv":
		return ReadCSV(r)
	case "xlsx":
		return ReadXLSX(r)
	}
	return nil, errors.UnsupportedFormat(fileType)
}

// ReadCSV reads a CSV stream whose first record is the header
func ReadCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read CSV file: %w", err))
	}
	internal.DefaultLogger.Debug("[DataReader] CSV read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return processRows(rows)
}

// ReadXLSX reads the first sheet of a workbook
func ReadXLSX(r io.Reader) (*table.Table, error) {
	readStart := time.Now()
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read %s: %w", sheets[0], err))
	}
	internal.DefaultLogger.Debug("[DataReader] %s read in %.2fms (%d rows)", sheets[0], float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return processRows(rows)
}

// processRows converts raw string rows into typed columns
func processRows(rows [][]string) (*table.Table, error) {
	if len(rows) < 1 || len(rows[0]) == 0 {
		return nil, errors.InvalidInput("file must have a header row")
	}

	headers := uniqueHeaders(rows[0])
	cells := make([][]string, len(headers))
	for j := range cells {
		cells[j] = make([]string, 0, len(rows)-1)
	}
	for _, row := range rows[1:] {
		for j := range headers {
			cell := ""
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			cells[j] = append(cells[j], cell)
		}
	}

	cols := make([]*table.Column, len(headers))
	for j, name := range headers {
		cols[j] = InferColumn(name, cells[j])
	}

	t, err := table.New(cols...)
	if err != nil {
		return nil, errors.Wrap(err, "invalid table schema")
	}
	internal.DefaultLogger.Debug("[DataReader] processed %d columns, %d rows", t.Width(), t.Rows())
	return t, nil
}

// uniqueHeaders trims names, labels blank ones by position and suffixes repeats with .1, .2, ...
func uniqueHeaders(raw []string) []string {
	used := make(map[string]bool, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for n := 1; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}
