package vm

import (
	"fmt"
	"sort"
	"strings"
)

// Disassemble returns a human-readable listing of an instruction sequence,
// one instruction per line with its absolute address.
func Disassemble(code []Instruction) string {
	var sb strings.Builder
	for addr, in := range code {
		sb.WriteString(fmt.Sprintf("%4d  %s\n", addr, in))
	}
	return sb.String()
}

// DisassembleProgram returns a listing of a whole program, with a header
// naming each user function's entry address.
func DisassembleProgram(p *Program) string {
	var sb strings.Builder

	if len(p.Functions) > 0 {
		names := make([]string, 0, len(p.Functions))
		for name := range p.Functions {
			names = append(names, name)
		}
		sort.Strings(names)

		sb.WriteString("; Functions:\n")
		for _, name := range names {
			sb.WriteString(fmt.Sprintf(";   %s @ %d\n", name, p.Functions[name]))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(Disassemble(p.Code))
	return sb.String()
}
