package source

import (
	"fmt"

	"tlog.app/go/errors"
)

// File is one input file.
type File struct {
	Name string
	Data []byte
}

// LineRange is the inclusive 1-based span a file occupies in the merged buffer.
type LineRange struct {
	Name  string
	Start int
	End   int
}

// Len is the number of lines in the range.
func (r LineRange) Len() int {
	return r.End - r.Start + 1
}

func (r LineRange) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Name, r.Start, r.End)
}

// EntryPolicy decides whether a jump to the entry label is placed in front
// of the merged buffer.
type EntryPolicy int

const (
	// EntryAuto injects the jump only when some file defines the entry label.
	EntryAuto EntryPolicy = iota
	// EntryAlways injects the jump even when the label is missing.
	EntryAlways
	// EntryNever leaves the buffer as the plain concatenation.
	EntryNever
)

var entryPolicyNames = [...]string{"auto", "always", "never"}

func (p EntryPolicy) String() string {
	if p < 0 || int(p) >= len(entryPolicyNames) {
		return fmt.Sprintf("EntryPolicy(%d)", int(p))
	}
	return entryPolicyNames[p]
}

// ParseEntryPolicy is the inverse of String.
func ParseEntryPolicy(s string) (EntryPolicy, error) {
	for i, n := range entryPolicyNames {
		if n == s {
			return EntryPolicy(i), nil
		}
	}

	return 0, errors.New("unknown entry policy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p EntryPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *EntryPolicy) UnmarshalText(b []byte) (err error) {
	*p, err = ParseEntryPolicy(string(b))
	return err
}

// Entry configures the injected jump.
type Entry struct {
	Label  string
	Policy EntryPolicy
}

// DefaultEntryLabel is the program start label.
const DefaultEntryLabel = "_start"

// Merged is the output of Concatenate.
type Merged struct {
	Lines  Buffer
	Ranges []LineRange

	// Prologue is the number of injected lines in front of the first file.
	Prologue int
}

// Concatenate merges files in the given order. A file whose last line has no
// terminator is terminated so it never fuses with the next file.
func Concatenate(files []File, entry Entry) Merged {
	label := entry.Label
	if label == "" {
		label = DefaultEntryLabel
	}

	var m Merged

	inject := false
	switch entry.Policy {
	case EntryAlways:
		inject = true
	case EntryAuto:
		inject = definesLabel(files, label)
	}

	if inject {
		m.Lines = append(m.Lines, "j "+label)
		m.Prologue = 1
	}

	for _, f := range files {
		lines := Split(string(f.Data))
		start := len(m.Lines) + 1

		m.Lines = append(m.Lines, lines...)
		m.Ranges = append(m.Ranges, LineRange{
			Name:  f.Name,
			Start: start,
			End:   start + len(lines) - 1,
		})
	}

	if m.Lines == nil {
		m.Lines = Buffer{}
	}

	return m
}

// RangeOf returns the file range containing the 1-based line.
func (m Merged) RangeOf(line int) (LineRange, bool) {
	for _, r := range m.Ranges {
		if line >= r.Start && line <= r.End {
			return r, true
		}
	}

	return LineRange{}, false
}

// definesLabel reports whether label is defined outside macro bodies.
// Labels are recognized exactly as the assembler recognizes them.
func definesLabel(files []File, label string) bool {
	for _, f := range files {
		inMacro := false

		for _, l := range Split(string(f.Data)) {
			if inMacro {
				inMacro = !MacroEnd(l)
				continue
			}

			if _, _, ok := MacroOpen(l); ok {
				inMacro = true
				continue
			}

			if name, ok := LabelDef(StripComments(l)); ok && name == label {
				return true
			}
		}
	}

	return false
}
