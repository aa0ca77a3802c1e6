package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyrv/pkg/breakpoint"
	"tinyrv/pkg/build"
	"tinyrv/pkg/config"
	"tinyrv/pkg/diag"
	"tinyrv/pkg/isa"
	"tinyrv/pkg/source"
)

func buildFS(t *testing.T, fsys fstest.MapFS, policy source.EntryPolicy) *build.Result {
	t.Helper()

	c := config.Default()
	c.Entry.Policy = policy

	r, err := build.Build(context.Background(), fsys, c)
	require.NoError(t, err)

	return r
}

func encoded(r *build.Result) string {
	return string(r.Program.Bytes())
}

func TestE2E(t *testing.T) {
	tests := []struct {
		name   string
		files  fstest.MapFS
		policy source.EntryPolicy
		want   string
		diags  []diag.Kind
	}{
		{
			name:   "StartLoop",
			files:  fstest.MapFS{"main.s": {Data: []byte("_start:\nADDI x1, x0, 5\nJ _start\n")}},
			policy: source.EntryNever,
			want:   "0 0 0 0\n13 1 0 5\n54 -8 0 0\n",
		},
		{
			name:   "StartLoopInjected",
			files:  fstest.MapFS{"main.s": {Data: []byte("_start:\nADDI x1, x0, 5\nJ _start\n")}},
			policy: source.EntryAuto,
			want:   "54 4 0 0\n0 0 0 0\n13 1 0 5\n54 -8 0 0\n",
		},
		{
			name:   "UnknownMnemonicContinues",
			files:  fstest.MapFS{"main.s": {Data: []byte("start:\n  FROB x1\n  ADDI x1, x0, 5\n")}},
			policy: source.EntryAuto,
			want:   "0 0 0 0\n0 0 0 0\n13 1 0 5\n",
			diags:  []diag.Kind{diag.UnknownMnemonic},
		},
		{
			name: "MultiFile",
			files: fstest.MapFS{
				"10_macros/stack.s": {Data: []byte(".macro push reg\n  addi sp, sp, -4\n  sw \\reg, 0(sp)\n.endm\n.macro pop reg\n  lw \\reg, 0(sp)\n  addi sp, sp, 4\n.endm\n")},
				"20_main.s":         {Data: []byte("_start:\n  push ra\n  call sub\n  pop ra\n  j _start")},
				"30_sub.s":          {Data: []byte("sub:\n  li a0, 0x2a ; answer\n  ret\n")},
				"Makefile":          {Data: []byte("all:\n\tpython compiler.py\n")},
			},
			policy: source.EntryAuto,
			want: strings.Join([]string{
				"54 36 0 0",
				"0 0 0 0", "0 0 0 0", "0 0 0 0", "0 0 0 0",
				"0 0 0 0", "0 0 0 0", "0 0 0 0", "0 0 0 0",
				"0 0 0 0",
				"13 2 2 -4",
				"24 1 2 0",
				"57 16 0 0",
				"23 1 2 0",
				"13 2 2 4",
				"54 -24 0 0",
				"0 0 0 0",
				"35 10 42 0",
				"56 0 0 0",
			}, "\n") + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := buildFS(t, tt.files, tt.policy)

			assert.Equal(t, tt.want, encoded(r))
			assert.Len(t, r.Program, len(r.Expanded))

			var kinds []diag.Kind
			for _, d := range r.Diagnostics {
				kinds = append(kinds, d.Kind)
			}

			assert.Equal(t, tt.diags, kinds)
		})
	}
}

func TestE2EDeterministic(t *testing.T) {
	fsys := fstest.MapFS{
		"b.s": {Data: []byte("  j a\n")},
		"a.s": {Data: []byte("a:\n  nop #breakpoint\n")},
		"c.s": {Data: []byte("_start:\n  j b\nb:\n")},
	}

	first := buildFS(t, fsys, source.EntryAuto)
	second := buildFS(t, fsys, source.EntryAuto)

	assert.Equal(t, encoded(first), encoded(second))
	assert.Equal(t, first.Expanded, second.Expanded)
	assert.Equal(t, []int{3}, first.Breakpoints)

	assert.Equal(t, []source.LineRange{
		{Name: "a.s", Start: 2, End: 3},
		{Name: "b.s", Start: 4, End: 4},
		{Name: "c.s", Start: 5, End: 7},
	}, first.Source.Ranges)
}

func TestObjdump(t *testing.T) {
	r := buildFS(t, fstest.MapFS{"main.s": {Data: []byte("_start:\nADDI x1, x0, 5\nJ _start\n")}}, source.EntryNever)

	p, err := isa.ReadProgram(bytes.NewReader(r.Program.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, r.Program, p)

	bps, err := breakpoint.Parse("3")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, objdump(&out, p, bps))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"2", "ADDI", "1", "0", "5", "13", "1", "0", "5"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"*3", "J", "-8", "0", "0", "54", "-8", "0", "0"}, strings.Fields(lines[1]))
}

func TestExpandOnly(t *testing.T) {
	files := []source.File{
		{Name: "m.s", Data: []byte(".macro inc r\n  addi \\r, \\r, 1\n.endm\n")},
		{Name: "x.s", Data: []byte("_start:\n  inc t0 ; bump\n")},
	}

	r := expand(context.Background(), files, config.Default())

	assert.Empty(t, r.Diagnostics)
	assert.Equal(t, source.Buffer{"j _start", "", "", "", "_start:", "  addi t0, t0, 1"}, r.Expanded)
	require.Len(t, r.Macros, 1)
	assert.Equal(t, []string{"r"}, r.Macros[0].Params)
}

func TestDump(t *testing.T) {
	r := buildFS(t, fstest.MapFS{
		"a.s": {Data: []byte(".macro inc r\n  addi \\r, \\r, 1\n.endm\n_start:\n  inc a0\n")},
	}, source.EntryAuto)

	assert.Equal(t, map[string]macroDump{
		"inc": {Params: []string{"r"}, Line: 2, Body: []string{`  addi \r, \r, 1`}},
	}, macroTable(r))

	var out bytes.Buffer
	dump(&out, r, false)

	s := out.String()
	assert.Regexp(t, `"_start":\s+4,`, s)
	assert.Regexp(t, `Params:\s+\[\]string\{\s+"r",`, s)
	assert.Contains(t, s, `"a.s"`)
	assert.NotContains(t, s, "\x1b[")
}

func TestPrintDiagnostics(t *testing.T) {
	files := []source.File{
		{Name: "a.s", Data: []byte("_start:\n")},
		{Name: "b.s", Data: []byte(".macro two a b\n  add \\a, \\b, zero\n.endm\n  two t0, t1, t2\n  HLT\n")},
	}

	r := build.Compile(context.Background(), files, build.OptionsFrom(config.Default()))
	require.Len(t, r.Diagnostics, 2)

	var out bytes.Buffer
	printDiagnostics(&out, r)

	assert.Equal(t, `b.s:4: warning: macro: line 6: macro arity "two": got 3 arguments ["t0" "t1" "t2"], want 2 ["a" "b"]
expanded:7: warning: asm: line 7: unknown mnemonic "HLT": not in the instruction set
`, out.String())
}
