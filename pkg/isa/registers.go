package isa

import "strconv"

// NumRegisters is the size of the integer register file.
const NumRegisters = 32

// aliases is indexed by register number (RISC-V ABI order).
var aliases = [NumRegisters]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2", "s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

var registerByAlias = func() map[string]int {
	m := make(map[string]int, NumRegisters)
	for i, name := range aliases {
		m[name] = i
	}
	return m
}()

// LookupAlias resolves a symbolic register name such as "sp" or "a0".
func LookupAlias(name string) (int, bool) {
	r, ok := registerByAlias[name]
	return r, ok
}

// LookupCanonical resolves the xN form, N in 0..31. Exactly one or two
// decimal digits must follow the x.
func LookupCanonical(name string) (int, bool) {
	if len(name) < 2 || len(name) > 3 || name[0] != 'x' {
		return 0, false
	}
	for i := 1; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n >= NumRegisters {
		return 0, false
	}
	return n, true
}

// LookupRegister tries the alias table first, then the xN form.
func LookupRegister(name string) (int, bool) {
	if r, ok := LookupAlias(name); ok {
		return r, true
	}
	return LookupCanonical(name)
}
