package types

import "strings"

// SourceLocation is the file and 1-based line a finding was reported on.
type SourceLocation struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
}

// LineContext carries the lines surrounding a scanned line. It is handed to
// the verification hook, which may need neighbouring values (e.g. an AWS
// secret key on the line after its access key ID).
type LineContext struct {
	Before []string `json:"before,omitempty"`
	Line   string   `json:"line"`
	After  []string `json:"after,omitempty"`
}

// Text joins all lines of the context with newlines.
func (c *LineContext) Text() string {
	if c == nil {
		return ""
	}
	parts := make([]string, 0, len(c.Before)+1+len(c.After))
	parts = append(parts, c.Before...)
	parts = append(parts, c.Line)
	parts = append(parts, c.After...)
	return strings.Join(parts, "\n")
}

// NewLineContext builds the context for lines[index] with up to n lines on
// each side. index is 0-based.
func NewLineContext(lines []string, index, n int) *LineContext {
	if index < 0 || index >= len(lines) {
		return nil
	}
	lc := &LineContext{Line: lines[index]}
	if n <= 0 {
		return lc
	}
	start := index - n
	if start < 0 {
		start = 0
	}
	end := index + n + 1
	if end > len(lines) {
		end = len(lines)
	}
	lc.Before = append([]string(nil), lines[start:index]...)
	lc.After = append([]string(nil), lines[index+1:end]...)
	return lc
}
