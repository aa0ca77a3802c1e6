// Package macro expands .macro/.endm blocks in a line buffer.
//
//	.macro push reg
//	    addi sp, sp, -4
//	    sw \reg, 0(sp)
//	.endm
//
//	    push a0
//
// Bodies are tokenized once at definition time; a \name placeholder is bound
// to the call-site argument at the same position as name in the parameter
// list.
package macro

import (
	"regexp"
	"strings"

	"tinyrv/pkg/source"
)

// Macro is one definition.
type Macro struct {
	Name   string
	Params []string
	Body   []Template

	// Line is the 1-based line of the .macro directive.
	Line int
}

// Template is a pre-tokenized body line.
type Template []piece

type piece struct {
	text  string
	param int // index into Params, -1 for literal text
}

var (
	wordRe  = regexp.MustCompile(`^\s*(\w+)`)
	splitRe = regexp.MustCompile(`\s*,\s*|\s+`)
)

// parseOpen recognizes a .macro directive and returns the name and parameters.
func parseOpen(line string) (name string, params []string, ok bool) {
	name, rest, ok := source.MacroOpen(line)
	if !ok {
		return "", nil, false
	}

	return name, splitWords(rest), true
}

// splitWords splits on commas and whitespace, dropping empty words.
func splitWords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var out []string
	for _, w := range splitRe.Split(s, -1) {
		if w != "" {
			out = append(out, w)
		}
	}

	return out
}

// compile tokenizes a raw body line against the parameter list. A placeholder
// is a backslash followed by the longest run of word characters, ended by any
// other byte, so 0(\r) and \r.x substitute too. Runs that do not name a
// parameter stay literal.
func compile(line string, params []string) Template {
	index := make(map[string]int, len(params))
	for i, p := range params {
		if _, dup := index[p]; !dup {
			index[p] = i
		}
	}

	var t Template
	lit := 0

	for i := 0; i < len(line); {
		if line[i] != '\\' {
			i++
			continue
		}

		j := i + 1
		for j < len(line) && isWordByte(line[j]) {
			j++
		}

		p, ok := index[line[i+1:j]]
		if j == i+1 || !ok {
			i = j
			continue
		}

		if lit < i {
			t = append(t, piece{text: line[lit:i], param: -1})
		}
		t = append(t, piece{text: line[i:j], param: p})

		lit = j
		i = j
	}

	if lit < len(line) || len(t) == 0 {
		t = append(t, piece{text: line[lit:], param: -1})
	}

	return t
}

// Render substitutes args positionally. Placeholders without an argument keep
// their source text.
func (t Template) Render(args []string) string {
	var sb strings.Builder

	for _, p := range t {
		if p.param >= 0 && p.param < len(args) {
			sb.WriteString(args[p.param])
			continue
		}

		sb.WriteString(p.text)
	}

	return sb.String()
}

// String returns the template's source text.
func (t Template) String() string {
	return t.Render(nil)
}

func isWordByte(c byte) bool {
	return c == '_' ||
		c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9'
}
