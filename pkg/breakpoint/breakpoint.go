// Package breakpoint finds lines flagged for the debugger front-end.
//
// Extraction runs on the macro-expanded buffer before comments are stripped,
// since the marker normally sits inside a comment.
package breakpoint

import (
	"strconv"
	"strings"

	"tinyrv/pkg/source"
)

// DefaultMarker is the in-source breakpoint flag.
const DefaultMarker = "#breakpoint"

// Extract returns the 1-based numbers of lines containing marker, ascending.
func Extract(buf source.Buffer, marker string) []int {
	if marker == "" {
		marker = DefaultMarker
	}

	var lines []int
	for i, l := range buf {
		if strings.Contains(l, marker) {
			lines = append(lines, i+1)
		}
	}

	return lines
}

// Format renders line numbers as the whitespace-separated artifact the
// debugger reads. No terminator is written.
func Format(lines []int) string {
	var b []byte
	for i, l := range lines {
		if i != 0 {
			b = append(b, ' ')
		}
		b = strconv.AppendInt(b, int64(l), 10)
	}

	return string(b)
}

// Parse reads an artifact written by Format.
func Parse(s string) ([]int, error) {
	var lines []int
	for _, f := range strings.Fields(s) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		lines = append(lines, n)
	}

	return lines, nil
}
