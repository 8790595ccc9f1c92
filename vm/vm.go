package vm

import (
	"fmt"
	"math"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("weft.vm")

// NativeFunc is a host function callable from bytecode. It receives the
// arguments in left-to-right order and returns a single numeric result.
type NativeFunc func(args []float64) float64

// frame is one activation of a user function. Return addresses live here
// rather than float-encoded on the value stack, so the value stack holds
// data only.
type frame struct {
	returnAddr int
}

// VM is a stack machine executing one instruction sequence. All state is
// owned exclusively by the instance for the duration of one run. Spawned
// units never touch the stack or memory; they rendezvous through channels
// at SYNC/BARRIER only.
type VM struct {
	Stack  []float64       // evaluation stack
	Memory map[int]float64 // flat slot-indexed memory, shared by all functions
	PC     int             // program counter
	Code   []Instruction

	// Trace enables per-instruction debug logging.
	Trace bool

	userFunctions map[string]int
	natives       map[string]NativeFunc
	frames        []frame
	spawns        []*spawnUnit
}

// New creates a VM for the given instruction sequence with the default
// native registry installed.
func New(code []Instruction) *VM {
	vm := &VM{
		Memory:        make(map[int]float64),
		Code:          code,
		userFunctions: make(map[string]int),
		natives:       make(map[string]NativeFunc),
	}
	vm.registerDefaultNatives()
	return vm
}

// RegisterFunction registers a user function's entry address. CALL
// instructions naming it jump there.
func (vm *VM) RegisterFunction(name string, addr int) {
	vm.userFunctions[name] = addr
}

// RegisterNative registers a host function. Natives shadow user functions of
// the same name: CALL resolves natives first.
func (vm *VM) RegisterNative(name string, fn NativeFunc) {
	vm.natives[name] = fn
}

func (vm *VM) registerDefaultNatives() {
	vm.natives["print"] = func(args []float64) float64 {
		for i, arg := range args {
			if i > 0 {
				fmt.Print(" ")
			}
			fmt.Print(arg)
		}
		fmt.Println()
		return 0.0
	}
	vm.natives["sqrt"] = func(args []float64) float64 {
		if len(args) == 0 {
			return 0.0
		}
		return math.Sqrt(args[0])
	}
	vm.natives["abs"] = func(args []float64) float64 {
		if len(args) == 0 {
			return 0.0
		}
		return math.Abs(args[0])
	}
	vm.natives["min"] = func(args []float64) float64 {
		if len(args) == 0 {
			return 0.0
		}
		m := args[0]
		for _, a := range args[1:] {
			m = math.Min(m, a)
		}
		return m
	}
	vm.natives["max"] = func(args []float64) float64 {
		if len(args) == 0 {
			return 0.0
		}
		m := args[0]
		for _, a := range args[1:] {
			m = math.Max(m, a)
		}
		return m
	}
}

// Run executes an instruction sequence in a fresh VM and returns the final
// top of stack, or 0.0 if the stack is empty at halt.
func Run(code []Instruction) (float64, error) {
	vm := New(code)
	if err := vm.Execute(); err != nil {
		return 0, err
	}
	return vm.Result(), nil
}

// RunProgram executes a compiled program, registering its function table
// first.
func RunProgram(p *Program) (float64, error) {
	vm := New(p.Code)
	for name, addr := range p.Functions {
		vm.RegisterFunction(name, addr)
	}
	if err := vm.Execute(); err != nil {
		return 0, err
	}
	return vm.Result(), nil
}

// Result returns the current top of stack, or 0.0 if the stack is empty.
func (vm *VM) Result() float64 {
	if n := len(vm.Stack); n > 0 {
		return vm.Stack[n-1]
	}
	return 0.0
}

// push appends a value to the evaluation stack.
func (vm *VM) push(v float64) {
	vm.Stack = append(vm.Stack, v)
}

// pop removes and returns the top of stack.
func (vm *VM) pop() (float64, error) {
	n := len(vm.Stack)
	if n == 0 {
		return 0, vm.underflow()
	}
	v := vm.Stack[n-1]
	vm.Stack = vm.Stack[:n-1]
	return v, nil
}

// top returns the top of stack without popping.
func (vm *VM) top() (float64, error) {
	n := len(vm.Stack)
	if n == 0 {
		return 0, vm.underflow()
	}
	return vm.Stack[n-1], nil
}

// Execute runs the fetch-decode-execute loop. HALT and a program counter
// past the end of the sequence are the only terminal conditions; every
// fatal condition aborts immediately with no partial result.
func (vm *VM) Execute() error {
	for vm.PC >= 0 && vm.PC < len(vm.Code) {
		in := vm.Code[vm.PC]
		if vm.Trace {
			log.Debugf("pc=%d %s stack=%v", vm.PC, in, vm.Stack)
		}

		switch in.Op {
		case OpNeg:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			vm.push(-v)
			vm.PC++

		case OpAdd, OpSub, OpMul, OpDiv:
			b, err := vm.pop()
			if err != nil {
				return err
			}
			a, err := vm.pop()
			if err != nil {
				return err
			}
			switch in.Op {
			case OpAdd:
				vm.push(a + b)
			case OpSub:
				vm.push(a - b)
			case OpMul:
				vm.push(a * b)
			case OpDiv:
				vm.push(a / b)
			}
			vm.PC++

		case OpLoadConst:
			vm.push(in.Value)
			vm.PC++

		case OpLoadVar:
			v, ok := vm.Memory[in.Slot]
			if !ok {
				return vm.unbound(in.Slot)
			}
			vm.push(v)
			vm.PC++

		case OpStoreVar:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			vm.Memory[in.Slot] = v
			vm.PC++

		case OpJump:
			vm.PC = in.Target

		case OpJumpIfZero:
			v, err := vm.top()
			if err != nil {
				return err
			}
			if v == 0.0 {
				vm.PC = in.Target
			} else {
				vm.PC++
			}

		case OpJumpIfNotZero:
			v, err := vm.top()
			if err != nil {
				return err
			}
			if v != 0.0 {
				vm.PC = in.Target
			} else {
				vm.PC++
			}

		case OpPop:
			// Discarding from an empty stack is a benign no-op.
			if n := len(vm.Stack); n > 0 {
				vm.Stack = vm.Stack[:n-1]
			}
			vm.PC++

		case OpDup:
			v, err := vm.top()
			if err != nil {
				return err
			}
			vm.push(v)
			vm.PC++

		case OpCall:
			if err := vm.execCall(in.Name, in.Argc); err != nil {
				return err
			}

		case OpReturn:
			result, err := vm.pop()
			if err != nil {
				return err
			}
			n := len(vm.frames)
			if n == 0 {
				return vm.underflow()
			}
			vm.PC = vm.frames[n-1].returnAddr
			vm.frames = vm.frames[:n-1]
			vm.push(result)

		case OpSpawn:
			vm.execSpawn()
			vm.PC++

		case OpSync:
			vm.execSync()
			vm.PC++

		case OpBarrier:
			vm.execBarrier()
			vm.PC++

		case OpHalt:
			return nil

		default:
			return fmt.Errorf("vm: unknown opcode 0x%02X at pc=%d", byte(in.Op), vm.PC)
		}
	}
	return nil
}

// execCall resolves a call: native registry first, then user functions.
// Calling a name bound in neither registry is deliberately lenient: the call
// is skipped and execution continues with the stack unchanged.
func (vm *VM) execCall(name string, argc int) error {
	if fn, ok := vm.natives[name]; ok {
		args := make([]float64, 0, argc)
		for i := 0; i < argc; i++ {
			n := len(vm.Stack)
			if n == 0 {
				args = append(args, 0.0)
				continue
			}
			args = append(args, vm.Stack[n-1])
			vm.Stack = vm.Stack[:n-1]
		}
		// Arguments were popped right-to-left; restore call order.
		for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
			args[i], args[j] = args[j], args[i]
		}
		vm.push(fn(args))
		vm.PC++
		return nil
	}

	if addr, ok := vm.userFunctions[name]; ok {
		vm.frames = append(vm.frames, frame{returnAddr: vm.PC + 1})
		vm.PC = addr
		return nil
	}

	log.Debugf("unknown function %q skipped at pc=%d", name, vm.PC)
	vm.PC++
	return nil
}
