package weft

import (
	"testing"

	"github.com/weft-lang/weft/compiler"
	"github.com/weft-lang/weft/vm"
)

// eval is a test helper running the whole pipeline.
func eval(t *testing.T, source string) float64 {
	t.Helper()
	got, err := Eval(source)
	if err != nil {
		t.Fatalf("Eval(%q): %v", source, err)
	}
	return got
}

func TestEvalExpressions(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"10 - 4", 6},
		{"1 + 2 * (3 - 4)", -1},
		{"7 * (8 + 9) - 3", 116},
		{"-5 + 2", -3},
		{"10 - 4 - 3", 3},
		{"20 / 4 / 5", 1},
		{"2 * 3 + 4 * 5", 26},
	}
	for _, tc := range tests {
		if got := eval(t, tc.source); got != tc.want {
			t.Errorf("Eval(%q) = %v, want %v", tc.source, got, tc.want)
		}
	}
}

func TestEvalVariables(t *testing.T) {
	if got := eval(t, "x = 2; y = 3; x * y"); got != 6 {
		t.Errorf("result = %v, want 6", got)
	}
}

func TestEvalFunctions(t *testing.T) {
	if got := eval(t, "fn add1(x) { x + 1 } add1(10)"); got != 11 {
		t.Errorf("result = %v, want 11", got)
	}
}

func TestEvalNestedCallSharesSlots(t *testing.T) {
	// The memory map is flat: inner's parameter x clobbers outer's, so outer
	// reads 7 back instead of 1 after the nested call.
	source := "fn inner(x) { x + 100 } fn outer(x) { inner(7) + x } outer(1)"
	if got := eval(t, source); got != 114 {
		t.Errorf("result = %v, want 114", got)
	}
}

func TestEvalNatives(t *testing.T) {
	if got := eval(t, "sqrt(16) + abs(-2)"); got != 6 {
		t.Errorf("result = %v, want 6", got)
	}
	if got := eval(t, "max(1, min(5, 3), 2)"); got != 3 {
		t.Errorf("result = %v, want 3", got)
	}
}

func TestEvalComments(t *testing.T) {
	if got := eval(t, "// intro\n1 + 2 // trailing"); got != 3 {
		t.Errorf("result = %v, want 3", got)
	}
}

func TestEvalEmptyProgramIsZero(t *testing.T) {
	if got := eval(t, ""); got != 0 {
		t.Errorf("result = %v, want 0", got)
	}
}

func TestEvalErrors(t *testing.T) {
	for _, source := range []string{
		"1 + @",
		"(1 + 2",
		"fn f(a { a }",
	} {
		if _, err := Eval(source); err == nil {
			t.Errorf("Eval(%q): expected error", source)
		}
	}
}

func TestParse(t *testing.T) {
	expr, err := Parse("1 + 2 * 3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	bin, ok := expr.(*compiler.BinaryExpr)
	if !ok || bin.Op != compiler.TokenPlus {
		t.Errorf("expr = %v, want addition at the root", expr)
	}
}

func TestCompileThenRun(t *testing.T) {
	expr, err := Parse("6 * 7")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	code, err := Compile(expr)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if code[len(code)-1] != vm.Halt {
		t.Errorf("code = %v, want HALT-terminated", code)
	}
	got, err := Run(code)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 42 {
		t.Errorf("result = %v, want 42", got)
	}
}

func TestCompileProgramFunctionTable(t *testing.T) {
	p, err := CompileProgram("fn f() { 1 } fn g() { 2 } f() + g()")
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	if len(p.Functions) != 2 {
		t.Errorf("functions = %v, want f and g", p.Functions)
	}
	got, err := vm.RunProgram(p)
	if err != nil {
		t.Fatalf("RunProgram: %v", err)
	}
	if got != 3 {
		t.Errorf("result = %v, want 3", got)
	}
}
