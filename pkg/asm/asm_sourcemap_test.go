package asm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyrv/pkg/isa"
	"tinyrv/pkg/source"
)

// Output line i is always the encoding of buffer line i, so a line number in
// the buffer is also the program address / 4.
func TestAssembleLineMap(t *testing.T) {
	code := `
; line 2: comment
li a0, 10       ; line 3
                ; line 4: empty
target:         ; line 5: label
add a0, a0, a1  ; line 6
.data           ; line 7: directive
ret             ; line 8
`

	buf := source.Split(code)
	prog, labels, diags := Assemble(context.Background(), buf)
	require.Empty(t, diags)
	require.Len(t, prog, len(buf))

	tests := []struct {
		line int
		op   isa.Opcode
	}{
		{1, isa.OpEMPTY},
		{2, isa.OpEMPTY},
		{3, isa.OpLI},
		{4, isa.OpEMPTY},
		{5, isa.OpEMPTY},
		{6, isa.OpADD},
		{7, isa.OpEMPTY},
		{8, isa.OpRET},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.op, prog[tc.line-1].Op, "line %d", tc.line)
	}

	assert.Equal(t, 4, labels["target"])
}

func TestAssemblerReuse(t *testing.T) {
	a := NewAssembler()

	_, labels, _ := a.Assemble(context.Background(), source.Buffer{"first:"})
	assert.Contains(t, labels, "first")

	_, labels, diags := a.Assemble(context.Background(), source.Buffer{"j first"})
	assert.NotContains(t, labels, "first")
	assert.Len(t, diags, 1)
}
