// Package registry defines the university registry domain: corporations,
// university records and the closed label sets the spreadsheet uses.
//
// Labels are stored verbatim (Korean) so the database enum types and the
// spreadsheet agree byte for byte.
package registry
