// Package importer maps registry spreadsheet rows to University records and
// writes them through a Session.
//
// Each row is isolated: a row that fails to map or to stage is logged and
// skipped without disturbing the rows before or after it. Staged rows are
// committed every batch-size rows (at indices 0, n, 2n, ...) and once more at
// the end. A corporation is committed as soon as it is first created so that
// later rows can reference it.
package importer
