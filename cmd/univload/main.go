package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/univinfo/univload/internal/cli"
	"github.com/univinfo/univload/pkg/univload"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(univload.ExitPanic)
		}
	}()

	if os.Getenv("UNIVLOAD_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(univload.ExitCodeForError(err))
	}
}
