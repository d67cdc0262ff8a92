package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"biasdetect/domain/table"
	"biasdetect/internal/errors"

	"github.com/xuri/excelize/v2"
)

// WriteCSV writes t with a header row; missing cells are empty
func WriteCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(t.Names()); err != nil {
		return err
	}
	for i := 0; i < t.Rows(); i++ {
		if err := cw.Write(t.Row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes t to Sheet1 of a new workbook. Numeric cells are stored as numbers.
func WriteXLSX(w io.Writer, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, t.Width())
	for i, name := range t.Names() {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	cols := t.Columns()
	for r := 0; r < t.Rows(); r++ {
		row := make([]interface{}, len(cols))
		for c, col := range cols {
			switch {
			case col.IsNull(r):
				row[c] = nil
			case col.IsNumeric():
				row[c], _ = col.Float(r)
			default:
				row[c] = col.Label(r)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

// WriteFile writes t to path as CSV or XLSX, chosen by the extension
func WriteFile(path string, t *table.Table) error {
	fileType := FileType(path)
	if fileType == "" {
		return errors.UnsupportedFormat(filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to create %s: %w", path, err))
	}
	defer f.Close()

	if fileType == "xlsx" {
		err = WriteXLSX(f, t)
	} else {
		err = WriteCSV(f, t)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return f.Close()
}
