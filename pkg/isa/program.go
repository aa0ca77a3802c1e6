package isa

import (
	"bufio"
	"io"

	"tlog.app/go/errors"
)

// Program is an encoded program, one instruction per source line.
type Program []Instruction

// WriteTo writes one encoded instruction per line, each terminated by '\n'.
func (p Program) WriteTo(w io.Writer) (n int64, err error) {
	m, err := w.Write(p.Bytes())

	return int64(m), err
}

// Bytes returns the program file contents.
func (p Program) Bytes() []byte {
	var buf []byte

	for _, in := range p {
		buf = in.AppendText(buf)
		buf = append(buf, '\n')
	}

	return buf
}

// ReadProgram decodes a program file written by WriteTo.
func ReadProgram(r io.Reader) (Program, error) {
	var p Program

	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		in, err := ParseInstruction(sc.Text())
		if err != nil {
			return nil, errors.Wrap(err, "line %d", line)
		}

		p = append(p, in)
	}

	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	return p, nil
}
