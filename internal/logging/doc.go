// Package logging provides concrete implementations of the univload.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: logrus-backed, text or JSON, writes to stderr
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging

import "github.com/univinfo/univload/pkg/univload"

var (
	_ univload.Logger = (*ConsoleLogger)(nil)
	_ univload.Logger = (*NullLogger)(nil)
)
