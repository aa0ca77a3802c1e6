package asm

import "fmt"

// TokenType identifies the category of an operand token.
type TokenType int

const (
	REGISTER  TokenType = iota // zero, sp, a0, x5
	IMMEDIATE                  // -12, 0x1f
	LABEL                      // loop, _start
	OFFSET                     // imm(reg)
	WORD                       // anything else; never resolves
)

var tokenNames = [...]string{
	REGISTER:  "REGISTER",
	IMMEDIATE: "IMMEDIATE",
	LABEL:     "LABEL",
	OFFSET:    "OFFSET",
	WORD:      "WORD",
}

func (t TokenType) String() string {
	if t < 0 || int(t) >= len(tokenNames) {
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
	return tokenNames[t]
}

// Token is one operand as written in the source.
type Token struct {
	Type   TokenType
	Lexeme string

	// Base is the register text inside the parentheses of an OFFSET token;
	// Lexeme then holds the displacement (possibly empty).
	Base string
}

func (t Token) String() string {
	if t.Type == OFFSET {
		return fmt.Sprintf("%v(%s(%s))", t.Type, t.Lexeme, t.Base)
	}
	return fmt.Sprintf("%v(%s)", t.Type, t.Lexeme)
}
