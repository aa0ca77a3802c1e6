package source

import (
	"regexp"
	"strings"
)

// Line-level syntax shared by the concatenator, the macro expander and the
// assembler, so every stage agrees on what a label or a macro block is.

var (
	// labelRe accepts at most one whitespace character after the colon.
	// Lines with more trailing blanks are not label definitions.
	labelRe = regexp.MustCompile(`^\s*(\w+):\s?$`)

	macroOpenRe = regexp.MustCompile(`^\s*\.macro(?:\s+|\s*,\s*)(\w+)`)
	macroEndRe  = regexp.MustCompile(`^\s*\.endm`)
)

// StripComments cuts the line at the first ';', '#' or '.' together with the
// blanks directly before it.
func StripComments(line string) string {
	cut := strings.IndexAny(line, ";#.")
	if cut < 0 {
		return line
	}

	return strings.TrimRight(line[:cut], " \t\r\v\f")
}

// LabelDef reports whether the comment-stripped line is a bare label
// definition and returns the label.
func LabelDef(line string) (string, bool) {
	m := labelRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}

	return m[1], true
}

// MacroOpen recognizes a .macro directive. rest is the text after the name.
func MacroOpen(line string) (name, rest string, ok bool) {
	m := macroOpenRe.FindStringSubmatchIndex(line)
	if m == nil {
		return "", "", false
	}

	return line[m[2]:m[3]], line[m[1]:], true
}

// MacroEnd recognizes the .endm directive.
func MacroEnd(line string) bool {
	return macroEndRe.MatchString(line)
}
