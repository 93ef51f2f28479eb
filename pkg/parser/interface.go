package parser

import (
	"context"
	"errors"
)

// ErrNoFiles is returned when log source patterns match nothing readable.
var ErrNoFiles = errors.New("no log files matched")

// LineSource provides an iterator over raw log lines in input order.
// Implementations must be safe for sequential access (not concurrent).
type LineSource interface {
	// Next returns the next line.
	// Returns io.EOF when no more lines are available.
	Next(ctx context.Context) (*Line, error)

	// Close releases any resources held by the source.
	Close() error
}
