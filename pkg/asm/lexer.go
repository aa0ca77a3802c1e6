package asm

import (
	"strings"

	"tinyrv/pkg/isa"
)

// lexer splits one cleaned-up source line into a mnemonic and operands.
type lexer struct {
	src string
	pos int
}

// lexLine returns the mnemonic (as written) and the classified operands in
// source order.
func lexLine(line string) (mnemonic string, ops []Token) {
	l := &lexer{src: line}

	l.skip(isSpace)
	mnemonic = l.scan(func(c byte) bool { return !isSpace(c) && c != ',' })

	for {
		l.skip(isSeparator)
		if l.pos >= len(l.src) {
			return mnemonic, ops
		}

		if l.peek() == '(' {
			ops = append(ops, l.group(""))
			continue
		}

		word := l.scan(func(c byte) bool { return !isSeparator(c) && c != '(' })

		save := l.pos
		l.skip(isSpace)
		if l.peek() == '(' {
			ops = append(ops, l.group(word))
			continue
		}
		l.pos = save

		ops = append(ops, classify(word))
	}
}

// group consumes "(base)" and returns an OFFSET token. A missing closing
// parenthesis ends the group at end of line.
func (l *lexer) group(disp string) Token {
	l.pos++ // (

	base := l.scan(func(c byte) bool { return c != ')' })
	if l.peek() == ')' {
		l.pos++
	}

	return Token{Type: OFFSET, Lexeme: disp, Base: strings.TrimSpace(base)}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) skip(f func(byte) bool) {
	for l.pos < len(l.src) && f(l.src[l.pos]) {
		l.pos++
	}
}

func (l *lexer) scan(f func(byte) bool) string {
	st := l.pos
	l.skip(f)
	return l.src[st:l.pos]
}

// classify applies the resolution order: register alias, xN, decimal, hex,
// label reference.
func classify(word string) Token {
	switch {
	case isRegister(word):
		return Token{Type: REGISTER, Lexeme: word}
	case isDecimal(word), isHex(word):
		return Token{Type: IMMEDIATE, Lexeme: word}
	case isIdentifier(word):
		return Token{Type: LABEL, Lexeme: word}
	default:
		return Token{Type: WORD, Lexeme: word}
	}
}

// normalize rewrites every OFFSET operand imm(reg) into the two operands
// reg, imm. The result is the operand order the simulator expects for
// loads, stores and jalr: destination, base register, immediate.
func normalize(ops []Token) []Token {
	n := 0
	for _, t := range ops {
		if t.Type == OFFSET {
			n++
		}
	}
	if n == 0 {
		return ops
	}

	out := make([]Token, 0, len(ops)+n)
	for _, t := range ops {
		if t.Type != OFFSET {
			out = append(out, t)
			continue
		}

		disp := Token{Type: IMMEDIATE, Lexeme: "0"}
		if t.Lexeme != "" {
			disp = classify(t.Lexeme)
		}

		out = append(out, classify(t.Base), disp)
	}

	return out
}

func isRegister(s string) bool {
	_, ok := isa.LookupRegister(s)
	return ok
}

func isDecimal(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	if len(s) < 3 || s[0] != '0' || s[1] != 'x' {
		return false
	}
	for i := 2; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// isIdentifier matches label names: word characters only, not all digits.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	digits := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			digits = false
		default:
			return false
		}
	}

	return !digits
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f'
}

func isSeparator(c byte) bool {
	return isSpace(c) || c == ',' || c == ')'
}
