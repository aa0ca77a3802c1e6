// Package source turns a tree of assembly files into the single line buffer
// every later stage works on.
package source

import "strings"

// Buffer is an ordered, 0-indexed sequence of lines without terminators.
// Stages replace lines in place and never insert or delete, so a line index
// stays valid across a stage.
type Buffer []string

// Split breaks text into lines on '\n'. A trailing terminator does not start
// an extra line. '\r' is kept as part of the line.
func Split(text string) Buffer {
	if text == "" {
		return Buffer{}
	}

	text = strings.TrimSuffix(text, "\n")

	return Buffer(strings.Split(text, "\n"))
}

// String joins the lines, terminating every one of them with '\n'.
func (b Buffer) String() string {
	return string(b.Bytes())
}

// Bytes is String as a byte slice.
func (b Buffer) Bytes() []byte {
	n := 0
	for _, l := range b {
		n += len(l) + 1
	}

	out := make([]byte, 0, n)
	for _, l := range b {
		out = append(out, l...)
		out = append(out, '\n')
	}

	return out
}

// Clone returns an independent copy.
func (b Buffer) Clone() Buffer {
	out := make(Buffer, len(b))
	copy(out, b)
	return out
}
