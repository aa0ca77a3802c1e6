package isa

import (
	"strconv"
	"strings"

	"tlog.app/go/errors"
)

// NumOperands is the fixed operand count of an encoded instruction.
const NumOperands = 3

// Instruction is one line of the simulator's program file.
type Instruction struct {
	Op   Opcode
	Args [NumOperands]int64
}

// Empty is the encoding of blank and label lines.
var Empty = Instruction{Op: OpEMPTY}

// String renders the instruction as "opcode op1 op2 op3".
func (in Instruction) String() string {
	return string(in.AppendText(nil))
}

// AppendText appends the encoded form without a line terminator.
func (in Instruction) AppendText(b []byte) []byte {
	b = strconv.AppendInt(b, int64(in.Op), 10)
	for _, a := range in.Args {
		b = append(b, ' ')
		b = strconv.AppendInt(b, a, 10)
	}
	return b
}

// Disasm renders the instruction with its mnemonic, for listings.
func (in Instruction) Disasm() string {
	var sb strings.Builder
	sb.WriteString(in.Op.String())
	for _, a := range in.Args {
		sb.WriteByte(' ')
		sb.WriteString(itoa(a))
	}
	return sb.String()
}

// ParseInstruction decodes one encoded line. It accepts exactly four
// whitespace-separated decimal integers.
func ParseInstruction(line string) (Instruction, error) {
	fields := strings.Fields(line)
	if len(fields) != 1+NumOperands {
		return Instruction{}, errors.New("expected %d fields, got %d", 1+NumOperands, len(fields))
	}

	op, err := strconv.ParseInt(fields[0], 10, 32)
	if err != nil {
		return Instruction{}, errors.Wrap(err, "opcode")
	}

	in := Instruction{Op: Opcode(op)}
	if !in.Op.Valid() {
		return Instruction{}, errors.New("opcode %d out of range", op)
	}

	for i := range in.Args {
		in.Args[i], err = strconv.ParseInt(fields[1+i], 10, 64)
		if err != nil {
			return Instruction{}, errors.Wrap(err, "operand %d", i+1)
		}
	}

	return in, nil
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
