package kobject

import "kuro/internal/kvalue"

// Upvalue mediates access to a captured variable (§3, Glossary). Open
// upvalues index into a live stack slot; internal/kvm keeps the
// thread's open upvalues in a linked list sorted by stack position so
// it can find-or-create them in order and close them in a single pass
// on frame return or scope exit.
type Upvalue struct {
	Header
	// StackSlot is the absolute value-stack index this upvalue reads
	// from while open; meaningless once Closed.
	StackSlot int
	Closed    bool
	Value     kvalue.Value
	// Next threads the thread's open-upvalue list, sorted by StackSlot
	// descending (mirrors clox's convention so new opens near the
	// stack top insert in O(1) on the common path).
	Next *Upvalue
}

func (u *Upvalue) TypeName() string { return "upvalue" }
func (u *Upvalue) GCScan(visitValue func(kvalue.Value), visitObj func(Obj)) {
	if u.Closed {
		visitValue(u.Value)
	}
}

// Close inlines the upvalue's current stack value and detaches it from
// the stack-indexed lifetime, per the §3 invariant that a closed
// upvalue's value is reachable only via the upvalue itself.
func (u *Upvalue) Close(v kvalue.Value) {
	u.Value = v
	u.Closed = true
}

// Closure pairs a CodeObject with the upvalue cells its body captured
// (§3). Bytecode never executes a bare CodeObject; OP_CLOSURE always
// wraps one, even for top-level script bodies (with zero upvalues).
type Closure struct {
	Header
	Code     *CodeObject
	Upvalues []*Upvalue
}

func NewClosure(code *CodeObject) *Closure {
	return &Closure{Code: code, Upvalues: make([]*Upvalue, len(code.Upvalues))}
}

func (c *Closure) TypeName() string { return "function" }
func (c *Closure) GCScan(visitValue func(kvalue.Value), visitObj func(Obj)) {
	visitObj(c.Code)
	for _, uv := range c.Upvalues {
		if uv != nil {
			visitObj(uv)
		}
	}
}
