package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		d    Diagnostic
		want string
	}{
		{
			Diagnostic{Kind: UnknownMnemonic, Stage: "asm", Line: 3, Token: "HLT"},
			`asm: line 3: unknown mnemonic "HLT"`,
		},
		{
			Diagnostic{Kind: MacroArity, Stage: "macro", Line: 7, Token: "push", Msg: "got 1 arguments, want 2"},
			`macro: line 7: macro arity "push": got 1 arguments, want 2`,
		},
		{
			Diagnostic{Kind: MacroUnterminated},
			`unterminated macro`,
		},
		{
			Diagnostic{Kind: Kind(42)},
			`Kind(42)`,
		},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.d.String())
	}
}

func TestListErr(t *testing.T) {
	var l List
	assert.NoError(t, l.Err())

	l.Addf(UnresolvedOperand, "asm", 2, "foo", "not a register, literal or label")
	assert.EqualError(t, l.Err(), `asm: line 2: unresolved operand "foo": not a register, literal or label`)

	l.Add(Diagnostic{Kind: UnknownMnemonic, Line: 5, Token: "bad"})
	l.Add(Diagnostic{Kind: UnresolvedOperand, Line: 6, Token: "x99"})

	assert.ErrorContains(t, l.Err(), "(and 2 more)")
	assert.Equal(t, 2, l.Count(UnresolvedOperand))
	assert.Equal(t, 0, l.Count(MacroArity))
}

func TestAddfRecordsCaller(t *testing.T) {
	var l List
	l.Addf(MacroDuplicate, "macro", 1, "push", "redefined")

	assert.NotZero(t, l[0].From)
}
