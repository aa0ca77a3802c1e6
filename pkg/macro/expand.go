package macro

import (
	"context"
	"sort"
	"strings"

	"tlog.app/go/tlog"

	"tinyrv/pkg/diag"
	"tinyrv/pkg/source"
)

// Stage names the expander in diagnostics.
const Stage = "macro"

const (
	// DefaultMaxDepth bounds nested expansion of distinct macros.
	DefaultMaxDepth = 16

	// DefaultMaxLines bounds the size of the expanded buffer.
	DefaultMaxLines = 1 << 20
)

// Expander holds the macro table of the last expansion run.
type Expander struct {
	MaxDepth int
	MaxLines int

	macros map[string]*Macro
	diags  diag.List

	// active is the stack of macros being expanded.
	active    []string
	reported  map[string]bool
	truncated bool
}

// New returns an Expander with an empty macro table.
func New() *Expander {
	return &Expander{
		MaxDepth: DefaultMaxDepth,
		MaxLines: DefaultMaxLines,
		macros:   make(map[string]*Macro),
	}
}

// Expand is a one-shot New().Expand.
func Expand(ctx context.Context, in source.Buffer) (source.Buffer, diag.List) {
	return New().Expand(ctx, in)
}

// Lookup returns the macro registered under name.
func (e *Expander) Lookup(name string) (*Macro, bool) {
	m, ok := e.macros[name]
	return m, ok
}

// Macros returns the table sorted by name.
func (e *Expander) Macros() []*Macro {
	out := make([]*Macro, 0, len(e.macros))
	for _, m := range e.macros {
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// Expand extracts every definition from in, blanking the definition lines,
// then replaces each invocation line with its substituted body. The input
// buffer is not modified. Definitions are collected before any invocation is
// expanded, so a macro may be used above its definition.
func (e *Expander) Expand(ctx context.Context, in source.Buffer) (source.Buffer, diag.List) {
	e.macros = make(map[string]*Macro)
	e.diags = nil
	e.active = e.active[:0]
	e.reported = make(map[string]bool)
	e.truncated = false

	work := e.define(ctx, in.Clone())

	out := make(source.Buffer, 0, len(work))
	for i, line := range work {
		out = e.expandLine(ctx, out, line, i+1)
	}

	tlog.SpanFromContext(ctx).Printw("expand macros", "macros", len(e.macros), "lines_in", len(in), "lines_out", len(out), "diagnostics", len(e.diags))

	return out, e.diags
}

// define registers definitions and blanks their lines in buf.
func (e *Expander) define(ctx context.Context, buf source.Buffer) source.Buffer {
	var cur *Macro

	for i, line := range buf {
		if cur != nil {
			if source.MacroEnd(line) {
				cur = nil
			} else {
				cur.Body = append(cur.Body, compile(line, cur.Params))
			}

			buf[i] = ""
			continue
		}

		name, params, ok := parseOpen(line)
		if !ok {
			continue
		}

		if prev, dup := e.macros[name]; dup {
			e.diags.Addf(diag.MacroDuplicate, Stage, i+1, name, "redefines macro from line %d", prev.Line)
		}

		cur = &Macro{
			Name:   name,
			Params: params,
			Line:   i + 1,
		}
		e.macros[name] = cur

		if tlog.If("macro") {
			tlog.SpanFromContext(ctx).Printw("define macro", "name", name, "params", params, "line", i+1)
		}

		buf[i] = ""
	}

	if cur != nil {
		e.diags.Addf(diag.MacroUnterminated, Stage, cur.Line, cur.Name, "missing .endm")
	}

	return buf
}

// expandLine appends line to out, replacing a macro invocation with its
// body. A macro invoked from its own expansion is reported once and left as
// written, so recursion never multiplies the output.
func (e *Expander) expandLine(ctx context.Context, out source.Buffer, line string, lineNo int) source.Buffer {
	m, args, ok := e.invocation(line)
	if !ok {
		return append(out, line)
	}

	switch {
	case e.isActive(m.Name):
		if !e.reported[m.Name] {
			e.reported[m.Name] = true
			e.diags.Addf(diag.MacroRecursion, Stage, lineNo, m.Name, "invoked from its own expansion %v", e.active)
		}

		return append(out, line)
	case len(e.active) >= e.MaxDepth:
		e.diags.Addf(diag.MacroRecursion, Stage, lineNo, m.Name, "nesting deeper than %d", e.MaxDepth)

		return append(out, line)
	case e.MaxLines > 0 && len(out) >= e.MaxLines:
		if !e.truncated {
			e.truncated = true
			e.diags.Addf(diag.MacroRecursion, Stage, lineNo, m.Name, "expansion exceeds %d lines", e.MaxLines)
		}

		return append(out, line)
	}

	if len(args) != len(m.Params) {
		e.diags.Addf(diag.MacroArity, Stage, lineNo, m.Name, "got %d arguments %q, want %d %q", len(args), args, len(m.Params), m.Params)
	}

	if tlog.If("macro") {
		tlog.SpanFromContext(ctx).Printw("expand macro", "name", m.Name, "args", args, "line", lineNo, "depth", len(e.active))
	}

	e.active = append(e.active, m.Name)

	for _, t := range m.Body {
		out = e.expandLine(ctx, out, t.Render(args), lineNo)
	}

	e.active = e.active[:len(e.active)-1]

	return out
}

func (e *Expander) isActive(name string) bool {
	for _, n := range e.active {
		if n == name {
			return true
		}
	}

	return false
}

// invocation reports whether the first word of line names a macro and
// returns the call-site arguments. A trailing ; or # comment is not part of
// the arguments.
func (e *Expander) invocation(line string) (*Macro, []string, bool) {
	sm := wordRe.FindStringSubmatchIndex(line)
	if sm == nil {
		return nil, nil, false
	}

	m, ok := e.macros[line[sm[2]:sm[3]]]
	if !ok {
		return nil, nil, false
	}

	rest := line[sm[1]:]
	if i := strings.IndexAny(rest, ";#"); i >= 0 {
		rest = rest[:i]
	}

	return m, splitWords(rest), true
}
