package kobject

import (
	"weak"

	"kuro/internal/kvalue"
)

// NativeCallable is implemented by functions the host exposes to
// bytecode, matching the §3 object table's NativeCallable row. It must
// respect the same calling convention bytecode callables use
// (internal/kvm builds the *Bound arguments consistently for both).
type NativeCallable interface {
	Obj
	Name() string
	Doc() string
	Flags() NativeFlags
	// Call is invoked by internal/kvm's call machinery. vmHandle is an
	// opaque handle back into the calling VM thread (kvm.Thread),
	// passed as interface{} to avoid an import cycle between kobject
	// and kvm.
	Call(vmHandle interface{}, self kvalue.Value, args []kvalue.Value, kwargs map[string]kvalue.Value) (kvalue.Value, error)
}

type NativeFlags uint8

const (
	NativeIsMethod NativeFlags = 1 << iota
	NativeIsStatic
	NativeIsClassMethod
	NativeIsProperty
)

// Slots caches the special methods the VM's dispatch loop looks up
// most often (§9), computed by walking the base chain on finalization.
// A None entry means "not defined anywhere on the base chain."
type Slots struct {
	Init     kvalue.Value
	Str      kvalue.Value
	Repr     kvalue.Value
	Eq       kvalue.Value
	Hash     kvalue.Value
	GetItem  kvalue.Value
	SetItem  kvalue.Value
	DelItem  kvalue.Value
	Iter     kvalue.Value
	Call     kvalue.Value
	Enter    kvalue.Value
	Exit     kvalue.Value
	Add, Radd   kvalue.Value
	Sub, Rsub   kvalue.Value
	Mul, Rmul   kvalue.Value
	Div, Rdiv   kvalue.Value
	GCScan   kvalue.Value // __ongcscan__
	GCSweep  kvalue.Value // __ongcsweep__
}

var slotNames = []string{
	"__init__", "__str__", "__repr__", "__eq__", "__hash__",
	"__getitem__", "__setitem__", "__delitem__", "__iter__", "__call__",
	"__enter__", "__exit__",
	"__add__", "__radd__", "__sub__", "__rsub__",
	"__mul__", "__rmul__", "__truediv__", "__rtruediv__",
	"__ongcscan__", "__ongcsweep__",
}

// DunderSlotNames lists every special-method name cached in Slots, in
// the same order computeSlots fills them, so a caller can recognize
// reserved method names without duplicating the list; no package in
// this tree calls it.
func DunderSlotNames() []string { return slotNames }

// Class is the heap object backing user-defined and built-in types
// (§3): name, base, method/field tables, the weak subclass set used to
// recompute cached slots on re-finalization, and the GC scan/sweep
// hooks instances delegate to.
type Class struct {
	Header
	Name       string
	Filename   string
	Docstring  string
	Base       *Class
	Methods    map[string]kvalue.Value
	Fields     map[string]kvalue.Value
	AllocSize  int
	Finalized  bool
	CachedSlots Slots
	subclasses []weak.Pointer[Class]
}

func NewClass(name string, base *Class) *Class {
	c := &Class{Name: name, Base: base, Methods: map[string]kvalue.Value{}, Fields: map[string]kvalue.Value{}}
	return c
}

func (c *Class) TypeName() string { return "type" }

func (c *Class) GCScan(visitValue func(kvalue.Value), visitObj func(Obj)) {
	for _, v := range c.Methods {
		visitValue(v)
	}
	for _, v := range c.Fields {
		visitValue(v)
	}
	if c.Base != nil {
		visitObj(c.Base)
	}
}

// lookup resolves a method name by walking the base chain, the same
// traversal used both by attribute access and by slot-cache
// computation.
func (c *Class) lookup(name string) (kvalue.Value, bool) {
	for cur := c; cur != nil; cur = cur.Base {
		if v, ok := cur.Methods[name]; ok {
			return v, true
		}
	}
	return kvalue.None(), false
}

// Finalize snapshots the class's cached special-method slots (§3,
// §9). Must be called exactly once per class, after the class body
// has populated Methods/Fields via OP_CLASS_PROPERTY, and is what
// OP_FINALIZE triggers. A cycle in Base must never be constructible
// (the compiler/VM enforce this when evaluating the base-class
// expression, before OP_INHERIT runs), so this walk always terminates.
func (c *Class) Finalize() {
	c.computeSlots()
	c.Finalized = true
	if c.Base != nil {
		c.Base.subclasses = append(c.Base.subclasses, weak.Make(c))
	}
}

func (c *Class) computeSlots() {
	get := func(name string) kvalue.Value {
		if v, ok := c.lookup(name); ok {
			return v
		}
		return kvalue.None()
	}
	c.CachedSlots = Slots{
		Init: get("__init__"), Str: get("__str__"), Repr: get("__repr__"),
		Eq: get("__eq__"), Hash: get("__hash__"),
		GetItem: get("__getitem__"), SetItem: get("__setitem__"), DelItem: get("__delitem__"),
		Iter: get("__iter__"), Call: get("__call__"),
		Enter: get("__enter__"), Exit: get("__exit__"),
		Add: get("__add__"), Radd: get("__radd__"),
		Sub: get("__sub__"), Rsub: get("__rsub__"),
		Mul: get("__mul__"), Rmul: get("__rmul__"),
		Div: get("__truediv__"), Rdiv: get("__rtruediv__"),
		GCScan: get("__ongcscan__"), GCSweep: get("__ongcsweep__"),
	}
}

// RefinalizeSubclasses recomputes cached slots for every still-live,
// already-finalized subclass, walking the weak subclass set (§9:
// "on base finalization, recompute cached slots of every finalized
// subclass"). Called after a base class's method table is mutated
// post-finalization (monkeypatching a dunder).
func (c *Class) RefinalizeSubclasses() {
	live := c.subclasses[:0]
	for _, wp := range c.subclasses {
		if sub := wp.Value(); sub != nil {
			live = append(live, wp)
			if sub.Finalized {
				sub.computeSlots()
				sub.RefinalizeSubclasses()
			}
		}
	}
	c.subclasses = live
}

// IsSubclassOf walks the base chain; used by isinstance-style checks
// and by except-clause filtering (§4.5).
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Base {
		if cur == other {
			return true
		}
	}
	return false
}
