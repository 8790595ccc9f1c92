package compiler

// ---------------------------------------------------------------------------
// Binding resolution: assign memory slots to identifiers
// ---------------------------------------------------------------------------

// Bindings maps identifier names to memory slots. The memory map is flat and
// unscoped: top level and every function body share one slot space, so two
// functions using the same parameter name share a slot. That sharp edge is
// part of the language contract, not an accident of this pass.
type Bindings struct {
	slots map[string]int
	next  int
}

// NewBindings creates an empty slot assignment.
func NewBindings() *Bindings {
	return &Bindings{slots: make(map[string]int)}
}

// Slot returns the slot assigned to a name.
func (b *Bindings) Slot(name string) (int, bool) {
	slot, ok := b.slots[name]
	return slot, ok
}

// Define assigns a slot to a name on first sight and returns it.
func (b *Bindings) Define(name string) int {
	if slot, ok := b.slots[name]; ok {
		return slot
	}
	slot := b.next
	b.slots[name] = slot
	b.next++
	return slot
}

// Count returns the number of assigned slots.
func (b *Bindings) Count() int {
	return len(b.slots)
}

// Resolve walks a program and assigns every identifier a memory slot, in
// program order. Identifiers that are read before any write still get a
// slot; the VM reports UnboundVariable for them at run time.
func Resolve(stmts []Expr) *Bindings {
	b := NewBindings()
	for _, stmt := range stmts {
		b.resolveExpr(stmt)
	}
	return b
}

func (b *Bindings) resolveExpr(e Expr) {
	switch n := e.(type) {
	case *NumberExpr:
		// nothing to bind
	case *IdentExpr:
		b.Define(n.Name)
	case *UnaryExpr:
		b.resolveExpr(n.Operand)
	case *BinaryExpr:
		b.resolveExpr(n.Left)
		b.resolveExpr(n.Right)
	case *CallExpr:
		for _, arg := range n.Args {
			b.resolveExpr(arg)
		}
	case *AssignExpr:
		b.Define(n.Name)
		b.resolveExpr(n.Value)
	case *FuncExpr:
		for _, param := range n.Params {
			b.Define(param)
		}
		for _, stmt := range n.Body {
			b.resolveExpr(stmt)
		}
	}
}
