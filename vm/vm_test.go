package vm

import (
	"errors"
	"reflect"
	"testing"
)

// run is a test helper executing a sequence and returning the VM for
// inspection.
func run(t *testing.T, code []Instruction) *VM {
	t.Helper()
	vm := New(code)
	if err := vm.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return vm
}

// ============ Arithmetic ============

func TestVMArithmetic(t *testing.T) {
	tests := []struct {
		name string
		code []Instruction
		want float64
	}{
		{"add", []Instruction{LoadConst(2), LoadConst(3), Add, Halt}, 5},
		{"sub", []Instruction{LoadConst(10), LoadConst(4), Sub, Halt}, 6},
		{"mul", []Instruction{LoadConst(6), LoadConst(7), Mul, Halt}, 42},
		{"div", []Instruction{LoadConst(20), LoadConst(4), Div, Halt}, 5},
		{"neg", []Instruction{LoadConst(5), Neg, Halt}, -5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Run(tc.code)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got != tc.want {
				t.Errorf("result = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestVMSubtractionOperandOrder(t *testing.T) {
	// The right-hand operand is popped first: 10 4 SUB is 10-4.
	vm := run(t, []Instruction{LoadConst(10), LoadConst(4), Sub, Halt})
	if !reflect.DeepEqual(vm.Stack, []float64{6}) {
		t.Errorf("stack = %v, want [6]", vm.Stack)
	}
}

// ============ Variables ============

func TestVMStoreAndLoadVar(t *testing.T) {
	vm := run(t, []Instruction{
		LoadConst(99),
		StoreVar(1),
		LoadVar(1),
		Halt,
	})
	if vm.Result() != 99 {
		t.Errorf("result = %v, want 99", vm.Result())
	}
	if vm.Memory[1] != 99 {
		t.Errorf("memory[1] = %v, want 99", vm.Memory[1])
	}
}

func TestVMLoadVarUnbound(t *testing.T) {
	vm := New([]Instruction{LoadVar(999), Halt})
	err := vm.Execute()
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("err = %v, want *RuntimeError", err)
	}
	if rtErr.Kind != UnboundVariable {
		t.Errorf("kind = %v, want UnboundVariable", rtErr.Kind)
	}
	if rtErr.Slot != 999 {
		t.Errorf("slot = %d, want 999", rtErr.Slot)
	}
}

// ============ Control flow ============

func TestVMJump(t *testing.T) {
	vm := run(t, []Instruction{
		LoadConst(1),
		Jump(4),
		LoadConst(2), // skipped
		LoadConst(3), // skipped
		LoadConst(4),
		Halt,
	})
	if !reflect.DeepEqual(vm.Stack, []float64{1, 4}) {
		t.Errorf("stack = %v, want [1 4]", vm.Stack)
	}
}

func TestVMJumpIfZero(t *testing.T) {
	vm := run(t, []Instruction{
		LoadConst(0),
		JumpIfZero(4),
		LoadConst(99), // skipped
		LoadConst(88), // skipped
		LoadConst(42),
		Halt,
	})
	if !reflect.DeepEqual(vm.Stack, []float64{0, 42}) {
		t.Errorf("stack = %v, want [0 42]", vm.Stack)
	}
}

func TestVMJumpIfZeroFallsThrough(t *testing.T) {
	vm := run(t, []Instruction{
		LoadConst(1),
		JumpIfZero(3),
		LoadConst(7),
		Halt,
	})
	if !reflect.DeepEqual(vm.Stack, []float64{1, 7}) {
		t.Errorf("stack = %v, want [1 7]", vm.Stack)
	}
}

func TestVMJumpIfNotZero(t *testing.T) {
	vm := run(t, []Instruction{
		LoadConst(5),
		JumpIfNotZero(4),
		LoadConst(99), // skipped
		LoadConst(88), // skipped
		LoadConst(42),
		Halt,
	})
	if !reflect.DeepEqual(vm.Stack, []float64{5, 42}) {
		t.Errorf("stack = %v, want [5 42]", vm.Stack)
	}
}

func TestVMConditionalJumpInspectsWithoutPopping(t *testing.T) {
	vm := run(t, []Instruction{
		LoadConst(0),
		JumpIfZero(2),
		Halt,
	})
	if len(vm.Stack) != 1 {
		t.Errorf("stack = %v, conditional jump must not pop", vm.Stack)
	}
}

func TestVMConditionalJumpEmptyStackFatal(t *testing.T) {
	for _, in := range []Instruction{JumpIfZero(0), JumpIfNotZero(0)} {
		vm := New([]Instruction{in, Halt})
		err := vm.Execute()
		var rtErr *RuntimeError
		if !errors.As(err, &rtErr) || rtErr.Kind != StackUnderflow {
			t.Errorf("%s on empty stack: err = %v, want StackUnderflow", in.Op, err)
		}
	}
}

func TestVMPCPastEndTerminates(t *testing.T) {
	// No HALT: execution stops when the program counter leaves the code.
	got, err := Run([]Instruction{LoadConst(3), LoadConst(4), Add})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 7 {
		t.Errorf("result = %v, want 7", got)
	}
}

// ============ Stack operations ============

func TestVMDupAndPop(t *testing.T) {
	vm := run(t, []Instruction{
		LoadConst(7),
		Dup,
		Add,
		Pop,
		Halt,
	})
	if len(vm.Stack) != 0 {
		t.Errorf("stack = %v, want empty", vm.Stack)
	}
}

func TestVMPopOnEmptyIsNoOp(t *testing.T) {
	got, err := Run([]Instruction{Pop, Pop, LoadConst(1), Halt})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 1 {
		t.Errorf("result = %v, want 1", got)
	}
}

func TestVMDupOnEmptyIsFatal(t *testing.T) {
	vm := New([]Instruction{Dup, Halt})
	err := vm.Execute()
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) || rtErr.Kind != StackUnderflow {
		t.Fatalf("err = %v, want StackUnderflow", err)
	}
}

func TestVMStackUnderflow(t *testing.T) {
	tests := []struct {
		name string
		code []Instruction
	}{
		{"add empty", []Instruction{Add, Halt}},
		{"add one operand", []Instruction{LoadConst(1), Add, Halt}},
		{"neg empty", []Instruction{Neg, Halt}},
		{"store empty", []Instruction{StoreVar(0), Halt}},
		{"return empty", []Instruction{Return}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vm := New(tc.code)
			err := vm.Execute()
			var rtErr *RuntimeError
			if !errors.As(err, &rtErr) {
				t.Fatalf("err = %v, want *RuntimeError", err)
			}
			if rtErr.Kind != StackUnderflow {
				t.Errorf("kind = %v, want StackUnderflow", rtErr.Kind)
			}
		})
	}
}

// ============ Halt ============

func TestVMHaltStopsExecution(t *testing.T) {
	// Instructions after HALT never run.
	got, err := Run([]Instruction{LoadConst(1), Halt, LoadConst(99), Add})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 1 {
		t.Errorf("result = %v, want 1", got)
	}
}

func TestVMEmptyStackResultIsZero(t *testing.T) {
	got, err := Run([]Instruction{Halt})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 0 {
		t.Errorf("result = %v, want 0", got)
	}
}

// ============ Function calls ============

func TestVMNativeCall(t *testing.T) {
	var captured []float64
	vm := New([]Instruction{
		LoadConst(1),
		LoadConst(2),
		LoadConst(3),
		Call("record", 3),
		Halt,
	})
	vm.RegisterNative("record", func(args []float64) float64 {
		captured = append([]float64(nil), args...)
		return 42
	})
	if err := vm.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// Arguments arrive in left-to-right order.
	if !reflect.DeepEqual(captured, []float64{1, 2, 3}) {
		t.Errorf("args = %v, want [1 2 3]", captured)
	}
	if vm.Result() != 42 {
		t.Errorf("result = %v, want 42", vm.Result())
	}
}

func TestVMNativeShadowsUserFunction(t *testing.T) {
	vm := New([]Instruction{
		Call("f", 0),
		Halt,
		LoadConst(1), // user f at 2, never reached
		Return,
	})
	vm.RegisterFunction("f", 2)
	vm.RegisterNative("f", func(args []float64) float64 { return 7 })
	if err := vm.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if vm.Result() != 7 {
		t.Errorf("result = %v, want 7 (native resolves first)", vm.Result())
	}
}

func TestVMUserFunctionCall(t *testing.T) {
	// add1 at address 4 computes mem[0]+1.
	vm := New([]Instruction{
		LoadConst(10),
		StoreVar(0),
		Call("add1", 1),
		Halt,
		// add1:
		LoadVar(0),
		LoadConst(1),
		Add,
		Return,
	})
	vm.RegisterFunction("add1", 4)
	if err := vm.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if vm.Result() != 11 {
		t.Errorf("result = %v, want 11", vm.Result())
	}
}

func TestVMNestedUserCalls(t *testing.T) {
	// outer calls inner; each return lands back at the right address.
	vm := New([]Instruction{
		Call("outer", 0), // 0
		Halt,             // 1
		// outer at 2: inner() + 1
		Call("inner", 0), // 2
		LoadConst(1),     // 3
		Add,              // 4
		Return,           // 5
		// inner at 6: 41
		LoadConst(41), // 6
		Return,        // 7
	})
	vm.RegisterFunction("outer", 2)
	vm.RegisterFunction("inner", 6)
	if err := vm.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if vm.Result() != 42 {
		t.Errorf("result = %v, want 42", vm.Result())
	}
}

func TestVMUnknownFunctionIsSkipped(t *testing.T) {
	// Calling an unregistered name is the one lenient failure: execution
	// continues at the next instruction with the stack unchanged.
	vm := run(t, []Instruction{
		LoadConst(5),
		Call("no_such_fn", 0),
		LoadConst(2),
		Add,
		Halt,
	})
	if vm.Result() != 7 {
		t.Errorf("result = %v, want 7", vm.Result())
	}
}

func TestVMRecursiveSlotClobbering(t *testing.T) {
	// The flat memory map is shared by all activations: a nested call that
	// stores into slot 0 clobbers the caller's slot 0. This is intentional
	// language behavior, not a bug in the VM.
	vm := New([]Instruction{
		LoadConst(1),      // 0: outer arg
		Call("outer", 1),  // 1
		Halt,              // 2
		// outer at 3: store arg, call inner(7), add arg back
		StoreVar(0),      // 3
		LoadConst(7),     // 4
		Call("inner", 1), // 5
		LoadVar(0),       // 6: reads 7, not 1
		Add,              // 7
		Return,           // 8
		// inner at 9: store arg, return arg+100
		StoreVar(0),    // 9
		LoadVar(0),     // 10
		LoadConst(100), // 11
		Add,            // 12
		Return,         // 13
	})
	vm.RegisterFunction("outer", 3)
	vm.RegisterFunction("inner", 9)
	if err := vm.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if vm.Result() != 114 {
		t.Errorf("result = %v, want 114 (107 + clobbered slot value 7)", vm.Result())
	}
}

// ============ Programs ============

func TestVMRunProgram(t *testing.T) {
	program := &Program{
		Code: []Instruction{
			LoadConst(10),
			Call("add1", 1),
			Halt,
			// add1:
			StoreVar(0),
			LoadVar(0),
			LoadConst(1),
			Add,
			Return,
		},
		Functions: map[string]int{"add1": 3},
	}
	got, err := RunProgram(program)
	if err != nil {
		t.Fatalf("RunProgram: %v", err)
	}
	if got != 11 {
		t.Errorf("result = %v, want 11", got)
	}
}

func TestVMDefaultNatives(t *testing.T) {
	tests := []struct {
		name string
		code []Instruction
		want float64
	}{
		{"sqrt", []Instruction{LoadConst(9), Call("sqrt", 1), Halt}, 3},
		{"abs", []Instruction{LoadConst(-4), Call("abs", 1), Halt}, 4},
		{"min", []Instruction{LoadConst(3), LoadConst(1), LoadConst(2), Call("min", 3), Halt}, 1},
		{"max", []Instruction{LoadConst(3), LoadConst(1), LoadConst(2), Call("max", 3), Halt}, 3},
		{"print returns zero", []Instruction{LoadConst(5), Call("print", 1), Halt}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Run(tc.code)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got != tc.want {
				t.Errorf("result = %v, want %v", got, tc.want)
			}
		})
	}
}
