package importer

import (
	"fmt"
	"strings"

	"github.com/univinfo/univload/pkg/univload"
)

// MissingColumnsError reports required headers absent from the spreadsheet.
// It unwraps to univload.ErrSchemaMismatch.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return univload.ErrSchemaMismatch }

// FieldError attributes a row failure to one spreadsheet column.
type FieldError struct {
	Column string
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Column, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// RowFailure records a row that did not make it into the store.
type RowFailure struct {
	Index int    // 0-based position among data rows
	Line  int    // worksheet line number, 1 is the header
	Code  string // raw registry code cell, may be empty
	Err   error
}

func (f RowFailure) Error() string {
	return fmt.Sprintf("row %d (line %d): %v", f.Index, f.Line, f.Err)
}
