// Package diag collects recoverable problems found while building a program.
// A stage never stops on a diagnostic; the caller decides what to do with the
// list.
package diag

import (
	"fmt"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
)

type Kind int

const (
	MacroArity Kind = iota
	MacroDuplicate
	MacroUnterminated
	MacroRecursion
	UnknownMnemonic
	UnresolvedOperand
	ExtraOperands
)

var kindNames = [...]string{
	MacroArity:        "macro arity",
	MacroDuplicate:    "duplicate macro",
	MacroUnterminated: "unterminated macro",
	MacroRecursion:    "recursive macro",
	UnknownMnemonic:   "unknown mnemonic",
	UnresolvedOperand: "unresolved operand",
	ExtraOperands:     "extra operands",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Diagnostic is one recoverable problem. Line is 1-based in the buffer the
// reporting stage worked on.
type Diagnostic struct {
	Kind  Kind
	Stage string
	Line  int
	Token string
	Msg   string

	// From is the reporting call site.
	From loc.PC
}

func (d Diagnostic) String() string {
	var sb strings.Builder

	if d.Stage != "" {
		sb.WriteString(d.Stage)
		sb.WriteString(": ")
	}
	if d.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", d.Line)
	}

	sb.WriteString(d.Kind.String())

	if d.Token != "" {
		fmt.Fprintf(&sb, " %q", d.Token)
	}
	if d.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Msg)
	}

	return sb.String()
}

// List accumulates diagnostics in report order.
type List []Diagnostic

// Add appends a diagnostic.
func (l *List) Add(d Diagnostic) {
	*l = append(*l, d)
}

// Addf appends a diagnostic with a formatted message.
func (l *List) Addf(kind Kind, stage string, line int, token, format string, args ...any) {
	l.Add(Diagnostic{
		Kind:  kind,
		Stage: stage,
		Line:  line,
		Token: token,
		Msg:   fmt.Sprintf(format, args...),
		From:  loc.Caller(1),
	})
}

// Count returns the number of diagnostics of kind k.
func (l List) Count(k Kind) int {
	n := 0
	for _, d := range l {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Err returns nil for an empty list, otherwise an error naming the first
// diagnostic and the total count.
func (l List) Err() error {
	switch len(l) {
	case 0:
		return nil
	case 1:
		return errors.New("%v", l[0])
	}

	return errors.New("%v (and %d more)", l[0], len(l)-1)
}
