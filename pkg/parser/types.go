// Package parser provides log file discovery and line reading.
package parser

// Line is a single decoded line read from a log source.
type Line struct {
	// Text is the line content without the trailing newline.
	// Invalid UTF-8 has been replaced with U+FFFD.
	Text string

	// Source is the file path (or reader name) this line came from.
	Source string

	// LineNum is the 1-based line number in the source.
	LineNum int

	// Truncated is set when the line exceeded MaxLineSize and Text holds
	// only its first MaxLineSize bytes.
	Truncated bool
}
