// Package checksum fingerprints input files so a run can be matched to the
// exact workbook it loaded.
package checksum
