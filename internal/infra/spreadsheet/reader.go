package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"certmanager/internal/domain"
	"certmanager/internal/usecase"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Read loads the first sheet of an .xlsx/.xlsm workbook or a .csv file.
// The first row is the header. Fully blank rows are kept so row numbers in
// an import report line up with the source.
func Read(path string) (usecase.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readWorkbook(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return usecase.Table{}, err
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return usecase.Table{}, fmt.Errorf("%w: %w: %q", domain.ErrValidation, ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func readWorkbook(path string) (usecase.Table, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return usecase.Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()
	return ReadWorkbook(wb)
}

// ReadWorkbook reads the first sheet of an open workbook.
func ReadWorkbook(wb *excelize.File) (usecase.Table, error) {
	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return usecase.Table{}, fmt.Errorf("%w: workbook has no sheets", domain.ErrValidation)
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return usecase.Table{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return toTable(rows)
}

func ReadCSV(r io.Reader) (usecase.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return usecase.Table{}, fmt.Errorf("read csv: %w", err)
	}
	return toTable(rows)
}

func toTable(rows [][]string) (usecase.Table, error) {
	if len(rows) == 0 {
		return usecase.Table{}, fmt.Errorf("%w: spreadsheet is empty", domain.ErrValidation)
	}
	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return usecase.Table{Header: header, Rows: rows[1:]}, nil
}
