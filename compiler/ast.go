package compiler

// ---------------------------------------------------------------------------
// AST: expression tree produced by the parser
// ---------------------------------------------------------------------------

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// Expr is the interface for expression nodes. Nodes are built bottom-up by
// the parser, exclusively own their children, and are never mutated after
// construction.
type Expr interface {
	Span() Span
	expr() // marker method
}

// NumberExpr represents a numeric literal.
type NumberExpr struct {
	SpanVal Span
	Value   float64
}

func (n *NumberExpr) Span() Span { return n.SpanVal }
func (n *NumberExpr) expr()      {}

// IdentExpr represents a variable reference.
type IdentExpr struct {
	SpanVal Span
	Name    string
}

func (n *IdentExpr) Span() Span { return n.SpanVal }
func (n *IdentExpr) expr()      {}

// UnaryExpr represents a prefix operator application.
type UnaryExpr struct {
	SpanVal Span
	Op      TokenType
	Operand Expr
}

func (n *UnaryExpr) Span() Span { return n.SpanVal }
func (n *UnaryExpr) expr()      {}

// BinaryExpr represents an infix operator application.
type BinaryExpr struct {
	SpanVal Span
	Left    Expr
	Op      TokenType
	Right   Expr
}

func (n *BinaryExpr) Span() Span { return n.SpanVal }
func (n *BinaryExpr) expr()      {}

// CallExpr represents a function call by name.
type CallExpr struct {
	SpanVal Span
	Name    string
	Args    []Expr
}

func (n *CallExpr) Span() Span { return n.SpanVal }
func (n *CallExpr) expr()      {}

// AssignExpr represents an assignment statement: name = expr.
type AssignExpr struct {
	SpanVal Span
	Name    string
	Value   Expr
}

func (n *AssignExpr) Span() Span { return n.SpanVal }
func (n *AssignExpr) expr()      {}

// FuncExpr represents a function definition: fn name(params) { body }.
type FuncExpr struct {
	SpanVal Span
	Name    string
	Params  []string
	Body    []Expr
}

func (n *FuncExpr) Span() Span { return n.SpanVal }
func (n *FuncExpr) expr()      {}
