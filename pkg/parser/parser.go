package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// MaxLineSize is the longest line a source will return. Bytes past it are
// discarded and the line is marked Truncated.
const MaxLineSize = 1024 * 1024

// lineReader splits a stream into lines. Ill-formed UTF-8 is replaced
// rather than surfaced as an error.
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{
		r: bufio.NewReaderSize(transform.NewReader(r, runes.ReplaceIllFormed()), 64*1024),
	}
}

// readLine returns the next line without its terminator.
// Returns io.EOF once the stream holds no more data.
func (lr *lineReader) readLine() (text string, truncated bool, err error) {
	var (
		buf  []byte
		read bool
	)
	for {
		chunk, rerr := lr.r.ReadSlice('\n')
		if len(chunk) > 0 {
			read = true
		}
		done := rerr == nil
		if done {
			chunk = chunk[:len(chunk)-1]
		}

		room := MaxLineSize - len(buf)
		if len(chunk) > room {
			chunk = chunk[:room]
			truncated = true
		}
		buf = append(buf, chunk...)

		switch {
		case done:
		case errors.Is(rerr, bufio.ErrBufferFull):
			continue
		case rerr == io.EOF:
			if !read {
				return "", false, io.EOF
			}
		default:
			return "", false, rerr
		}

		if truncated {
			// the cut may split a rune
			return strings.ToValidUTF8(string(buf), ""), true, nil
		}
		if len(buf) > 0 && buf[len(buf)-1] == '\r' {
			buf = buf[:len(buf)-1]
		}
		return string(buf), false, nil
	}
}

// FileSource implements LineSource for reading from log files.
// Files are read one after another in the order given.
type FileSource struct {
	files []string

	currentFile   *os.File
	currentReader *lineReader
	currentSource string
	currentLine   int
	fileIndex     int
}

// NewFileSource creates a LineSource that reads from the given files.
func NewFileSource(files []string) *FileSource {
	return &FileSource{
		files:     files,
		fileIndex: -1,
	}
}

// Next returns the next line.
// Returns io.EOF when all files have been exhausted.
func (s *FileSource) Next(ctx context.Context) (*Line, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.currentReader == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		text, truncated, err := s.currentReader.readLine()
		if err == nil {
			s.currentLine++
			return &Line{
				Text:      text,
				Source:    s.currentSource,
				LineNum:   s.currentLine,
				Truncated: truncated,
			}, nil
		}
		if err != io.EOF {
			return nil, fmt.Errorf("reading %s: %w", s.currentSource, err)
		}

		// Current file exhausted, try next
		if err := s.closeCurrentFile(); err != nil {
			return nil, err
		}
	}
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeCurrentFile()
}

func (s *FileSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", path, err)
	}

	s.currentFile = f
	s.currentReader = newLineReader(f)
	s.currentSource = path
	s.currentLine = 0

	return nil
}

func (s *FileSource) closeCurrentFile() error {
	if s.currentFile != nil {
		err := s.currentFile.Close()
		s.currentFile = nil
		s.currentReader = nil
		return err
	}
	return nil
}

// ReaderSource implements LineSource over an arbitrary reader,
// such as stdin or an in-memory fixture.
type ReaderSource struct {
	name    string
	reader  *lineReader
	lineNum int
}

// NewReaderSource creates a LineSource reading r. Name is reported as
// the Source of every line.
func NewReaderSource(name string, r io.Reader) *ReaderSource {
	return &ReaderSource{
		name:   name,
		reader: newLineReader(r),
	}
}

// Next returns the next line or io.EOF.
func (s *ReaderSource) Next(ctx context.Context) (*Line, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, truncated, err := s.reader.readLine()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.name, err)
	}
	s.lineNum++
	return &Line{Text: text, Source: s.name, LineNum: s.lineNum, Truncated: truncated}, nil
}

// Close is a no-op; the caller owns the reader.
func (s *ReaderSource) Close() error {
	return nil
}
