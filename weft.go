// Package weft is a miniature language toolchain for parallel arithmetic
// programs: a lexical scanner, a Pratt expression parser, a bytecode
// compiler, and a stack-based virtual machine with spawn/sync/barrier
// concurrency primitives.
//
// Data flows strictly forward through the pipeline: text, tokens, AST,
// bytecode, then a single numeric result. This package is the facade over
// the compiler and vm packages; the cmd/weft CLI is a thin wrapper around
// it.
package weft

import (
	"github.com/weft-lang/weft/compiler"
	"github.com/weft-lang/weft/vm"
)

// Parse parses one expression from a complete source string. It fails on
// any lexical or syntactic error.
func Parse(source string) (compiler.Expr, error) {
	p := compiler.NewParser(source)
	return p.ParseExpression(0)
}

// ParseProgram parses a whole program: a statement sequence of expressions,
// assignments and function definitions.
func ParseProgram(source string) ([]compiler.Expr, error) {
	p := compiler.NewParser(source)
	return p.ParseProgram()
}

// Compile lowers one parsed expression to bytecode, terminated by HALT.
func Compile(expr compiler.Expr) ([]vm.Instruction, error) {
	return compiler.Compile(expr)
}

// CompileProgram parses and lowers a whole program, producing bytecode and a
// user-function table.
func CompileProgram(source string) (*vm.Program, error) {
	stmts, err := ParseProgram(source)
	if err != nil {
		return nil, err
	}
	return compiler.CompileProgram(stmts)
}

// Run executes a bytecode sequence in a fresh VM and returns the final top
// of stack, or 0.0 if the stack is empty at halt.
func Run(code []vm.Instruction) (float64, error) {
	return vm.Run(code)
}

// Eval runs the full pipeline on a program source string.
func Eval(source string) (float64, error) {
	p, err := CompileProgram(source)
	if err != nil {
		return 0, err
	}
	return vm.RunProgram(p)
}
