package sheet

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/univinfo/univload/pkg/univload"
)

// ErrSheetNotFound is returned when the requested worksheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Read loads one worksheet of the workbook at path. An empty sheetName selects
// the workbook's active sheet. The first row is the header; rows with no
// non-blank cell are dropped.
//
// Cells are read raw (number formats are not applied), so a code stored as
// the number 1001 reads as "1001" and a boolean cell reads as "1" or "0".
func Read(path, sheetName string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, univload.ErrFileNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	name, err := resolveSheet(f, sheetName)
	if err != nil {
		return nil, err
	}

	records, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	if len(records) == 0 {
		return NewTable(nil, nil), nil
	}

	header := records[0]
	var data [][]string
	lines := make([]int, 0, len(records)-1)
	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		data = append(data, rec)
		lines = append(lines, i+2)
	}

	t := NewTable(header, data)
	for i := range t.rows {
		t.rows[i].Line = lines[i]
	}
	return t, nil
}

// SheetNames lists the worksheets of the workbook at path.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return f.GetSheetList(), nil
}

func resolveSheet(f *excelize.File, sheetName string) (string, error) {
	if sheetName == "" {
		return f.GetSheetName(f.GetActiveSheetIndex()), nil
	}
	idx, err := f.GetSheetIndex(sheetName)
	if err != nil || idx < 0 {
		return "", fmt.Errorf("%w: %q (available: %s)",
			ErrSheetNotFound, sheetName, strings.Join(f.GetSheetList(), ", "))
	}
	return sheetName, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
