package vm

import (
	"strings"
	"testing"
)

func TestDisassemble(t *testing.T) {
	listing := Disassemble([]Instruction{
		LoadConst(3.5),
		StoreVar(2),
		Jump(7),
		Call("f", 2),
		Halt,
	})
	want := []string{
		"   0  LOAD_CONST 3.5",
		"   1  STORE_VAR 2",
		"   2  JUMP 7",
		"   3  CALL f/2",
		"   4  HALT",
	}
	lines := strings.Split(strings.TrimRight(listing, "\n"), "\n")
	if len(lines) != len(want) {
		t.Fatalf("listing has %d lines, want %d:\n%s", len(lines), len(want), listing)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestDisassembleEmpty(t *testing.T) {
	if got := Disassemble(nil); got != "" {
		t.Errorf("Disassemble(nil) = %q, want empty", got)
	}
}

func TestDisassembleProgramHeader(t *testing.T) {
	p := &Program{
		Code: []Instruction{Halt},
		Functions: map[string]int{
			"zeta":  9,
			"alpha": 3,
		},
	}
	listing := DisassembleProgram(p)
	// Function names are listed sorted regardless of map order.
	alphaAt := strings.Index(listing, ";   alpha @ 3")
	zetaAt := strings.Index(listing, ";   zeta @ 9")
	if alphaAt < 0 || zetaAt < 0 {
		t.Fatalf("missing function header lines:\n%s", listing)
	}
	if alphaAt > zetaAt {
		t.Errorf("function names not sorted:\n%s", listing)
	}
	if !strings.Contains(listing, "   0  HALT") {
		t.Errorf("missing code listing:\n%s", listing)
	}
}

func TestDisassembleProgramNoFunctions(t *testing.T) {
	p := &Program{Code: []Instruction{LoadConst(1), Halt}}
	listing := DisassembleProgram(p)
	if strings.Contains(listing, "; Functions:") {
		t.Errorf("header printed for program without functions:\n%s", listing)
	}
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		in   Instruction
		want string
	}{
		{Add, "ADD"},
		{LoadConst(2), "LOAD_CONST 2"},
		{LoadVar(4), "LOAD_VAR 4"},
		{JumpIfZero(12), "JUMP_IF_ZERO 12"},
		{Call("max", 3), "CALL max/3"},
		{Instruction{Op: Opcode(0x99)}, "UNKNOWN(0x99)"},
	}
	for _, tc := range tests {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
