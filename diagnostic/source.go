// Package diagnostic holds source files, spans, and the diagnostic model
// shared by every later compilation phase (scanner, parser, binder,
// checker, loader). Nothing in this package understands CADL grammar; it
// only understands byte offsets and severities.
package diagnostic

import "strings"

// SourceFile is a loaded CADL or external-module file: a stable path plus
// the full text buffer and precomputed line starts for span decoding.
type SourceFile struct {
	Path string
	Text string

	// lineStarts[i] is the byte offset of the first character of line i
	// (0-indexed). lineStarts[0] is always 0.
	lineStarts []int
}

// NewSourceFile builds a SourceFile and precomputes its line table.
func NewSourceFile(path, text string) *SourceFile {
	f := &SourceFile{Path: path, Text: text}
	f.lineStarts = computeLineStarts(text)
	return f
}

func computeLineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			starts = append(starts, i+1)
		case '\r':
			// \r\n counts as one line break; bare \r also breaks a line.
			if i+1 < len(text) && text[i+1] == '\n' {
				continue
			}
			starts = append(starts, i+1)
		}
	}
	return starts
}

// LineAndCharacter decodes a byte position into a 0-indexed (line, char)
// pair using the precomputed line table.
func (f *SourceFile) LineAndCharacter(pos int) (line, char int) {
	// Binary search for the last lineStart <= pos.
	lo, hi := 0, len(f.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineStarts[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, pos - f.lineStarts[lo]
}

// PositionOfLineAndCharacter is the inverse of LineAndCharacter.
func (f *SourceFile) PositionOfLineAndCharacter(line, char int) int {
	if line < 0 {
		return 0
	}
	if line >= len(f.lineStarts) {
		return len(f.Text)
	}
	return f.lineStarts[line] + char
}

// TextAt returns the substring covered by a half-open [pos, end) span,
// clamped to the file's bounds.
func (f *SourceFile) TextAt(pos, end int) string {
	if pos < 0 {
		pos = 0
	}
	if end > len(f.Text) {
		end = len(f.Text)
	}
	if pos > end {
		return ""
	}
	return f.Text[pos:end]
}

// LineText returns the text of a single 0-indexed line, without its
// terminator.
func (f *SourceFile) LineText(line int) string {
	start := f.PositionOfLineAndCharacter(line, 0)
	end := len(f.Text)
	if line+1 < len(f.lineStarts) {
		end = f.lineStarts[line+1]
	}
	return strings.TrimRight(f.Text[start:end], "\r\n")
}
