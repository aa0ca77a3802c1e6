// Package isa holds the tables shared by the assembler and the TinyRiscV
// simulator: the closed instruction enumeration, the register aliases and the
// textual encoding of one instruction.
package isa

import "strings"

// Opcode is the position of a mnemonic in the simulator's instruction enum.
type Opcode int

// The order below is the wire contract with the simulator. Never reorder;
// append only.
const (
	OpEMPTY Opcode = iota
	OpADD
	OpSUB
	OpAND
	OpOR
	OpXOR
	OpSLT
	OpSLTU
	OpSRA
	OpSRL
	OpSLL
	OpMUL
	OpSLLI
	OpADDI
	OpANDI
	OpORI
	OpXORI
	OpSLTI
	OpSLTIU
	OpSRAI
	OpSRLI
	OpLUI
	OpAUIPC
	OpLW
	OpSW
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpJAL
	OpJALR
	OpFLAG

	// pseudo instructions
	OpNOP
	OpLI
	OpLA
	OpMV
	OpNOT
	OpNEG
	OpSEQZ
	OpSNEZ
	OpSLTZ
	OpSGTZ
	OpBEQZ
	OpBNEZ
	OpBLEZ
	OpBGEZ
	OpBLTZ
	OpBGTZ
	OpBGT
	OpBLE
	OpBGTU
	OpBLEU
	OpJ
	OpJR
	OpRET
	OpCALL
	OpLEAVE

	numOpcodes
)

var mnemonics = [numOpcodes]string{
	"EMPTY", "ADD", "SUB", "AND", "OR", "XOR", "SLT", "SLTU", "SRA", "SRL", "SLL", "MUL", "SLLI",
	"ADDI", "ANDI", "ORI", "XORI", "SLTI", "SLTIU", "SRAI", "SRLI", "LUI", "AUIPC",
	"LW", "SW", "BEQ", "BNE", "BLT", "BGE", "BLTU", "BGEU", "JAL", "JALR", "FLAG",
	"NOP", "LI", "LA", "MV", "NOT", "NEG", "SEQZ", "SNEZ", "SLTZ", "SGTZ", "BEQZ", "BNEZ", "BLEZ", "BGEZ", "BLTZ", "BGTZ",
	"BGT", "BLE", "BGTU", "BLEU", "J", "JR", "RET", "CALL", "LEAVE",
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(mnemonics))
	for i, name := range mnemonics {
		m[name] = Opcode(i)
	}
	return m
}()

// LookupOpcode resolves a mnemonic, case-insensitively.
func LookupOpcode(mnemonic string) (Opcode, bool) {
	op, ok := opcodeByName[strings.ToUpper(mnemonic)]
	return op, ok
}

// Valid reports whether op is a member of the enumeration.
func (op Opcode) Valid() bool {
	return op >= 0 && op < numOpcodes
}

func (op Opcode) String() string {
	if !op.Valid() {
		return "Opcode(" + itoa(int64(op)) + ")"
	}
	return mnemonics[op]
}
