package log

import (
	"github.com/rs/zerolog"
)

// NewNopLogger returns a Logger that discards every entry.
func NewNopLogger() Logger {
	return &defaultLogger{
		Logger: zerolog.Nop(),
	}
}
