package vm

import "fmt"

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode identifies a single bytecode instruction.
type Opcode byte

// Unary and binary arithmetic
const (
	OpNeg Opcode = 0x01 // negate top of stack
	OpAdd Opcode = 0x02 // pop two, push sum
	OpSub Opcode = 0x03 // pop two, push difference (rhs popped first)
	OpMul Opcode = 0x04 // pop two, push product
	OpDiv Opcode = 0x05 // pop two, push quotient
)

// Data movement
const (
	OpLoadConst Opcode = 0x10 // push inline float64 constant
	OpLoadVar   Opcode = 0x11 // push memory slot value
	OpStoreVar  Opcode = 0x12 // pop into memory slot
)

// Parallel execution
const (
	OpSpawn   Opcode = 0x20 // spawn a unit of work carrying the sampled top of stack
	OpSync    Opcode = 0x21 // clear stack, join all units, push results in spawn order
	OpBarrier Opcode = 0x22 // join all units in reverse spawn order, discard results
)

// Control flow
const (
	OpJump          Opcode = 0x30 // unconditional jump to absolute index
	OpJumpIfZero    Opcode = 0x31 // jump if top of stack is 0.0 (no pop)
	OpJumpIfNotZero Opcode = 0x32 // jump if top of stack is non-zero (no pop)
)

// Stack operations
const (
	OpPop Opcode = 0x40 // discard top of stack (no-op when empty)
	OpDup Opcode = 0x41 // duplicate top of stack
)

// Function calls
const (
	OpCall   Opcode = 0x50 // call function by name with N arguments
	OpReturn Opcode = 0x51 // return from a user function
)

// Halt
const (
	OpHalt Opcode = 0xFF // stop execution
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// operandKind describes which Instruction field an opcode uses.
type operandKind int

const (
	operandNone operandKind = iota
	operandValue
	operandSlot
	operandTarget
	operandCall
)

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name        string
	StackEffect int // net effect on stack depth (-1 = variable)
	operand     operandKind
}

// opcodeTable maps opcodes to their metadata.
var opcodeTable = map[Opcode]OpcodeInfo{
	OpNeg: {"NEG", 0, operandNone},
	OpAdd: {"ADD", -1, operandNone},
	OpSub: {"SUB", -1, operandNone},
	OpMul: {"MUL", -1, operandNone},
	OpDiv: {"DIV", -1, operandNone},

	OpLoadConst: {"LOAD_CONST", 1, operandValue},
	OpLoadVar:   {"LOAD_VAR", 1, operandSlot},
	OpStoreVar:  {"STORE_VAR", -1, operandSlot},

	OpSpawn:   {"SPAWN", 0, operandNone},
	OpSync:    {"SYNC", -1, operandNone},
	OpBarrier: {"BARRIER", 0, operandNone},

	OpJump:          {"JUMP", 0, operandTarget},
	OpJumpIfZero:    {"JUMP_IF_ZERO", 0, operandTarget},
	OpJumpIfNotZero: {"JUMP_IF_NOT_ZERO", 0, operandTarget},

	OpPop: {"POP", -1, operandNone},
	OpDup: {"DUP", 1, operandNone},

	OpCall:   {"CALL", -1, operandCall},
	OpReturn: {"RETURN", 0, operandNone},

	OpHalt: {"HALT", 0, operandNone},
}

// GetOpcodeInfo returns metadata for an opcode.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// ---------------------------------------------------------------------------
// Instructions
// ---------------------------------------------------------------------------

// Instruction is one VM execution step: an opcode plus its operands. Only
// the fields named by the opcode's operand kind are meaningful. A compiled
// program is an ordered sequence of instructions addressed by 0-based index;
// jump and call targets are absolute indices into that sequence.
type Instruction struct {
	Op     Opcode  `cbor:"1,keyasint"`
	Value  float64 `cbor:"2,keyasint,omitempty"` // LOAD_CONST
	Slot   int     `cbor:"3,keyasint,omitempty"` // LOAD_VAR / STORE_VAR
	Target int     `cbor:"4,keyasint,omitempty"` // JUMP*
	Name   string  `cbor:"5,keyasint,omitempty"` // CALL
	Argc   int     `cbor:"6,keyasint,omitempty"` // CALL
}

// Operand-free instructions, usable directly in instruction sequences.
var (
	Neg     = Instruction{Op: OpNeg}
	Add     = Instruction{Op: OpAdd}
	Sub     = Instruction{Op: OpSub}
	Mul     = Instruction{Op: OpMul}
	Div     = Instruction{Op: OpDiv}
	Spawn   = Instruction{Op: OpSpawn}
	Sync    = Instruction{Op: OpSync}
	Barrier = Instruction{Op: OpBarrier}
	Pop     = Instruction{Op: OpPop}
	Dup     = Instruction{Op: OpDup}
	Return  = Instruction{Op: OpReturn}
	Halt    = Instruction{Op: OpHalt}
)

// LoadConst pushes a constant value.
func LoadConst(v float64) Instruction {
	return Instruction{Op: OpLoadConst, Value: v}
}

// LoadVar pushes the value stored in a memory slot.
func LoadVar(slot int) Instruction {
	return Instruction{Op: OpLoadVar, Slot: slot}
}

// StoreVar pops the top of stack into a memory slot.
func StoreVar(slot int) Instruction {
	return Instruction{Op: OpStoreVar, Slot: slot}
}

// Jump jumps unconditionally to an absolute instruction index.
func Jump(target int) Instruction {
	return Instruction{Op: OpJump, Target: target}
}

// JumpIfZero jumps when the top of stack is exactly 0.0.
func JumpIfZero(target int) Instruction {
	return Instruction{Op: OpJumpIfZero, Target: target}
}

// JumpIfNotZero jumps when the top of stack is non-zero.
func JumpIfNotZero(target int) Instruction {
	return Instruction{Op: OpJumpIfNotZero, Target: target}
}

// Call invokes a function by name with argc arguments already on the stack.
func Call(name string, argc int) Instruction {
	return Instruction{Op: OpCall, Name: name, Argc: argc}
}

func (in Instruction) String() string {
	info := GetOpcodeInfo(in.Op)
	switch info.operand {
	case operandValue:
		return fmt.Sprintf("%s %v", info.Name, in.Value)
	case operandSlot:
		return fmt.Sprintf("%s %d", info.Name, in.Slot)
	case operandTarget:
		return fmt.Sprintf("%s %d", info.Name, in.Target)
	case operandCall:
		return fmt.Sprintf("%s %s/%d", info.Name, in.Name, in.Argc)
	}
	return info.Name
}

// Program is a compiled unit: an immutable instruction sequence plus the
// entry addresses of the user functions defined in it.
type Program struct {
	Code      []Instruction  `cbor:"1,keyasint"`
	Functions map[string]int `cbor:"2,keyasint,omitempty"`
}
