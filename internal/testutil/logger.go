package testutil

import (
	"io"

	"github.com/curiosinfo/curiosinfo/internal/logging"
)

// NullLogger returns a logger that discards all output
func NullLogger() *logging.Logger {
	return logging.NewWithOutput(logging.LevelError, io.Discard)
}
