// Package asm encodes a macro-expanded line buffer into the simulator's
// program format: one "opcode op1 op2 op3" record per source line.
//
// Pass 1 strips comments and directives and records bare label lines.
// Pass 2 lexes every line, reorders imm(reg) operands and resolves each
// operand to an integer. Labels resolve to the byte distance
// (definition line - current line) * 4.
package asm

import (
	"context"
	"math"
	"strconv"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"tinyrv/pkg/diag"
	"tinyrv/pkg/isa"
	"tinyrv/pkg/source"
)

const stage = "asm"

// InstructionWidth is the byte distance between consecutive lines.
const InstructionWidth = 4

// Labels maps a label name to the 0-based line that defines it.
type Labels map[string]int

type Assembler struct {
	labels Labels
	diags  diag.List
}

type parsedLine struct {
	lineNo   int
	mnemonic string
	operands []Token
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(Labels),
	}
}

// Assemble is a one-shot NewAssembler().Assemble.
func Assemble(ctx context.Context, buf source.Buffer) (isa.Program, Labels, diag.List) {
	return NewAssembler().Assemble(ctx, buf)
}

// Assemble encodes buf. The program has exactly one instruction per line of
// buf. Problems are reported in the diagnostic list and never stop encoding.
func (a *Assembler) Assemble(ctx context.Context, buf source.Buffer) (isa.Program, Labels, diag.List) {
	a.labels = make(Labels)
	a.diags = nil

	lines := a.pass1(ctx, buf)
	prog := a.pass2(ctx, lines)

	tlog.SpanFromContext(ctx).Printw("assemble", "lines", len(prog), "labels", len(a.labels), "diagnostics", len(a.diags))

	return prog, a.labels, a.diags
}

func (a *Assembler) pass1(ctx context.Context, buf source.Buffer) source.Buffer {
	lines := make(source.Buffer, len(buf))

	for i, raw := range buf {
		line := source.StripComments(raw)

		if name, ok := source.LabelDef(line); ok {
			if prev, ok := a.labels[name]; ok && tlog.If("label") {
				tlog.SpanFromContext(ctx).Printw("label redefined", "label", name, "line", i+1, "prev_line", prev+1)
			}

			a.labels[name] = i
			line = ""
		}

		lines[i] = line
	}

	return lines
}

func (a *Assembler) pass2(ctx context.Context, lines source.Buffer) isa.Program {
	prog := make(isa.Program, len(lines))

	for i, raw := range lines {
		p := parseLine(raw, i+1)
		prog[i] = a.encode(p, i)

		if tlog.If("encode") {
			tlog.SpanFromContext(ctx).Printw("encode", "line", p.lineNo, "mnemonic", p.mnemonic, "operands", p.operands, "out", prog[i])
		}
	}

	return prog
}

func parseLine(raw string, lineNo int) parsedLine {
	mnemonic, ops := lexLine(raw)

	return parsedLine{
		lineNo:   lineNo,
		mnemonic: mnemonic,
		operands: normalize(ops),
	}
}

func (a *Assembler) encode(p parsedLine, cur int) isa.Instruction {
	if p.mnemonic == "" {
		return isa.Empty
	}

	op, ok := isa.LookupOpcode(p.mnemonic)
	if !ok {
		a.diags.Addf(diag.UnknownMnemonic, stage, p.lineNo, p.mnemonic, "not in the instruction set")
		return isa.Empty
	}

	in := isa.Instruction{Op: op}

	ops := p.operands
	if len(ops) > isa.NumOperands {
		a.diags.Addf(diag.ExtraOperands, stage, p.lineNo, p.mnemonic, "%d operands, only the first %d are encoded", len(ops), isa.NumOperands)
		ops = ops[:isa.NumOperands]
	}

	for j, t := range ops {
		in.Args[j] = a.resolve(t, p.lineNo, cur)
	}

	return in
}

// resolve turns one operand into its encoded value. Unresolvable operands
// are reported and encoded as 0.
func (a *Assembler) resolve(t Token, lineNo, cur int) int64 {
	switch t.Type {
	case REGISTER:
		r, _ := isa.LookupRegister(t.Lexeme)
		return int64(r)
	case IMMEDIATE:
		v, err := parseImmediate(t.Lexeme)
		if err != nil {
			a.diags.Addf(diag.UnresolvedOperand, stage, lineNo, t.Lexeme, "bad literal: %v", err)
			return 0
		}
		return v
	case LABEL:
		def, ok := a.labels[t.Lexeme]
		if !ok {
			a.diags.Addf(diag.UnresolvedOperand, stage, lineNo, t.Lexeme, "undefined label")
			return 0
		}
		return int64(def-cur) * InstructionWidth
	}

	a.diags.Addf(diag.UnresolvedOperand, stage, lineNo, t.Lexeme, "not a register, literal or label")

	return 0
}

func parseImmediate(s string) (int64, error) {
	if strings.HasPrefix(s, "0x") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, err
		}
		if v > math.MaxInt64 {
			return 0, errors.New("%v overflows int64", s)
		}

		return int64(v), nil
	}

	return strconv.ParseInt(s, 10, 64)
}
