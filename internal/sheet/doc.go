// Package sheet reads a worksheet of an .xlsx workbook into a Table of named
// columns.
package sheet
