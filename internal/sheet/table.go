package sheet

import "strings"

// Table is a spreadsheet worksheet held in memory: one header row naming the
// columns, followed by data rows in their original order.
type Table struct {
	Header []string
	rows   []Row
	index  map[string]int
}

// Row is one data row. Line is the 1-based worksheet line it came from.
type Row struct {
	Line  int
	cells []string
	table *Table
}

// NewTable builds a Table. Header names are trimmed; when a name repeats, the
// first column wins. Data rows start at worksheet line 2.
func NewTable(header []string, records [][]string) *Table {
	t := &Table{index: make(map[string]int, len(header))}
	for i, h := range header {
		name := strings.TrimSpace(h)
		t.Header = append(t.Header, name)
		if _, dup := t.index[name]; !dup && name != "" {
			t.index[name] = i
		}
	}
	for i, rec := range records {
		t.rows = append(t.rows, Row{Line: i + 2, cells: rec, table: t})
	}
	return t
}

// HasColumn reports whether the header names col.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// MissingColumns returns the entries of required that the header lacks, in
// the order given.
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, col := range required {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Len is the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns the data rows in worksheet order.
func (t *Table) Rows() []Row { return t.rows }

// Get returns the cell under col with surrounding whitespace removed, or ""
// when the column is unknown or the row is shorter than the header.
func (r Row) Get(col string) string {
	i, ok := r.table.index[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}
