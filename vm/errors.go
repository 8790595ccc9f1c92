package vm

import "fmt"

// ---------------------------------------------------------------------------
// Runtime errors
// ---------------------------------------------------------------------------

// RuntimeErrorKind classifies fatal execution failures.
type RuntimeErrorKind int

const (
	// StackUnderflow means an instruction needed more operands than the
	// stack held.
	StackUnderflow RuntimeErrorKind = iota
	// UnboundVariable means LOAD_VAR addressed a memory slot that was never
	// written.
	UnboundVariable
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case StackUnderflow:
		return "stack underflow"
	case UnboundVariable:
		return "unbound variable"
	}
	return fmt.Sprintf("RuntimeErrorKind(%d)", int(k))
}

// RuntimeError is a fatal execution failure. It aborts the whole run; no
// partial result is returned. The one lenient condition, calling an unknown
// function, does not produce a RuntimeError at all.
type RuntimeError struct {
	Kind RuntimeErrorKind
	Op   Opcode // instruction that failed
	PC   int    // program counter at the failure
	Slot int    // memory slot, for UnboundVariable
}

func (e *RuntimeError) Error() string {
	if e.Kind == UnboundVariable {
		return fmt.Sprintf("runtime error: %s (slot %d) at pc=%d (%s)", e.Kind, e.Slot, e.PC, e.Op)
	}
	return fmt.Sprintf("runtime error: %s at pc=%d (%s)", e.Kind, e.PC, e.Op)
}

func (vm *VM) underflow() error {
	return &RuntimeError{Kind: StackUnderflow, Op: vm.Code[vm.PC].Op, PC: vm.PC}
}

func (vm *VM) unbound(slot int) error {
	return &RuntimeError{Kind: UnboundVariable, Op: vm.Code[vm.PC].Op, PC: vm.PC, Slot: slot}
}
