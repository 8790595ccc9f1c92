package compiler

import (
	"github.com/weft-lang/weft/vm"
)

// ---------------------------------------------------------------------------
// Codegen: lower AST expressions to bytecode
// ---------------------------------------------------------------------------

// Compile lowers a single expression tree into a flat instruction sequence
// ending in HALT. The lowering is deterministic: structurally equal inputs
// produce identical sequences.
//
// No binding resolution happens here, so a bare identifier fails with
// UnboundIdentifier and a function definition lowers to no instructions.
// Whole programs go through CompileProgram, which runs Resolve first.
func Compile(expr Expr) ([]vm.Instruction, error) {
	g := &codegen{}
	if err := g.expr(expr); err != nil {
		return nil, err
	}
	g.emit(vm.Halt)
	return g.code, nil
}

// CompileProgram lowers a parsed program (statements, assignments, function
// definitions) into an executable Program. Main statements are laid out
// first and HALT-terminated; function bodies follow, each registered in the
// program's function table by entry address.
func CompileProgram(stmts []Expr) (*vm.Program, error) {
	g := &codegen{binds: Resolve(stmts)}

	var mains []Expr
	var funcs []*FuncExpr
	for _, stmt := range stmts {
		if fn, ok := stmt.(*FuncExpr); ok {
			funcs = append(funcs, fn)
		} else {
			mains = append(mains, stmt)
		}
	}

	for i, stmt := range mains {
		if err := g.expr(stmt); err != nil {
			return nil, err
		}
		// Intermediate expression results are discarded; the last statement
		// leaves the program's result on the stack.
		if _, isAssign := stmt.(*AssignExpr); !isAssign && i < len(mains)-1 {
			g.emit(vm.Pop)
		}
	}
	g.emit(vm.Halt)

	functions := make(map[string]int, len(funcs))
	for _, fn := range funcs {
		functions[fn.Name] = len(g.code)
		if err := g.function(fn); err != nil {
			return nil, err
		}
	}

	return &vm.Program{Code: g.code, Functions: functions}, nil
}

type codegen struct {
	code  []vm.Instruction
	binds *Bindings
}

func (g *codegen) emit(in vm.Instruction) {
	g.code = append(g.code, in)
}

func (g *codegen) expr(e Expr) error {
	switch n := e.(type) {
	case *NumberExpr:
		g.emit(vm.LoadConst(n.Value))

	case *IdentExpr:
		if g.binds != nil {
			if slot, ok := g.binds.Slot(n.Name); ok {
				g.emit(vm.LoadVar(slot))
				return nil
			}
		}
		return &CompileError{Kind: CompileUnboundIdentifier, Name: n.Name}

	case *UnaryExpr:
		if err := g.expr(n.Operand); err != nil {
			return err
		}
		if n.Op != TokenMinus {
			return &CompileError{Kind: CompileUnsupportedOperator, Op: n.Op}
		}
		g.emit(vm.Neg)

	case *BinaryExpr:
		if err := g.expr(n.Left); err != nil {
			return err
		}
		if err := g.expr(n.Right); err != nil {
			return err
		}
		switch n.Op {
		case TokenPlus:
			g.emit(vm.Add)
		case TokenMinus:
			g.emit(vm.Sub)
		case TokenStar:
			g.emit(vm.Mul)
		case TokenSlash:
			g.emit(vm.Div)
		default:
			return &CompileError{Kind: CompileUnsupportedOperator, Op: n.Op}
		}

	case *CallExpr:
		for _, arg := range n.Args {
			if err := g.expr(arg); err != nil {
				return err
			}
		}
		g.emit(vm.Call(n.Name, len(n.Args)))

	case *AssignExpr:
		if g.binds == nil {
			return &CompileError{Kind: CompileUnboundIdentifier, Name: n.Name}
		}
		if err := g.expr(n.Value); err != nil {
			return err
		}
		slot, _ := g.binds.Slot(n.Name)
		g.emit(vm.StoreVar(slot))

	case *FuncExpr:
		// Function definitions are lowered out of band by CompileProgram;
		// in expression position they produce no instructions.
	}
	return nil
}

// function lowers one function body. The prologue pops the arguments, pushed
// left-to-right by the caller, into the parameters' memory slots; the body's
// last expression value is returned. An empty body returns 0.0.
func (g *codegen) function(fn *FuncExpr) error {
	for i := len(fn.Params) - 1; i >= 0; i-- {
		slot, _ := g.binds.Slot(fn.Params[i])
		g.emit(vm.StoreVar(slot))
	}

	produced := false
	for i, stmt := range fn.Body {
		if err := g.expr(stmt); err != nil {
			return err
		}
		_, isAssign := stmt.(*AssignExpr)
		last := i == len(fn.Body)-1
		switch {
		case last:
			produced = !isAssign
		case !isAssign:
			g.emit(vm.Pop)
		}
	}
	if !produced {
		g.emit(vm.LoadConst(0))
	}

	g.emit(vm.Return)
	return nil
}
