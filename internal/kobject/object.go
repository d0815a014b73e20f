// Package kobject implements the heap object model of §3: strings,
// bytes, tuples, code objects, closures/upvalues, classes, instances,
// bound methods, and native callables, plus the per-class method table
// with cached special-method slots described in §9.
//
// No file here is grounded on a single teacher source — the teacher's
// own object model (internal/vm/value.go) is a two-line Value
// interface{} plus a Function struct, far short of what §3 requires.
// The design instead follows the general clox/Kuroko object-header +
// class-method-table shape spec.md describes directly, written in the
// teacher's naming idiom (PascalCase exported fields, plain structs,
// no generics).
package kobject

import (
	"kuro/internal/bytecode"
	"kuro/internal/kvalue"
)

// Header is embedded in every heap object. GC mark bits and the
// allocator's sweep-list `next` pointer live here so internal/kgc can
// walk the heap uniformly regardless of concrete object kind (§3).
type Header struct {
	marked bool
	InRepr bool // recursion guard for __repr__/__str__
	next   Obj
	class  *Class
}

// Obj is the common interface every heap object implements, letting
// internal/kgc traverse the heap without knowing concrete kinds up
// front; GCScan feeds the tracer every kvalue.Value and Obj this
// object directly references.
type Obj interface {
	kvalue.Obj
	Class() *Class
	SetClass(*Class)
	gcHeader() *Header
	// GCScan reports every value/object this object directly
	// references, for the tracing collector's mark phase (§3, §9).
	GCScan(visitValue func(kvalue.Value), visitObj func(Obj))
	// Marked/SetMarked expose the header's own mark bit so
	// internal/kgc can trace without a side table, clearing it again
	// once a collection finishes (§9: "its mark bit is cleared").
	Marked() bool
	SetMarked(bool)
}

func (h *Header) Class() *Class     { return h.class }
func (h *Header) SetClass(c *Class) { h.class = c }
func (h *Header) gcHeader() *Header { return h }
func (h *Header) Marked() bool      { return h.marked }
func (h *Header) SetMarked(m bool)  { h.marked = m }

// Next/SetNext give internal/kgc an intrusive singly-linked sweep list
// without a separate container, mirroring how small tracing
// collectors (and the teacher's own allocator-adjacent code) thread
// "all objects ever allocated" without a slice.
func (h *Header) Next() Obj      { return h.next }
func (h *Header) SetNext(o Obj)  { h.next = o }

// CodeFlags records the code object flags named in §3's object table;
// they are fixed once the compiler finalizes the code object.
type CodeFlags uint8

const (
	FlagGenerator CodeFlags = 1 << iota
	FlagCoroutine
	FlagCollectsArgs   // *args
	FlagCollectsKwargs // **kwargs
	FlagIsModule
	FlagIsClassBody
)

// LocalInfo describes one slot in a code object's locals-metadata
// table (§3).
type LocalInfo struct {
	Name       string
	IsCaptured bool
}

// UpvalueDesc records how a closure's Nth upvalue cell is obtained
// when the closure is created: from the enclosing frame's locals
// (IsLocal) or from the enclosing closure's own upvalue array.
type UpvalueDesc struct {
	Index   int
	IsLocal bool
}

// CodeObject is the immutable-after-finalization compiled
// representation of a function or module body (§3).
type CodeObject struct {
	Header
	Chunk         *bytecode.Chunk
	Name          string
	QualName      string
	Filename      string
	Docstring     string
	RequiredArgs  []string
	KeywordArgs   []string
	DefaultKwargs map[string]kvalue.Value
	Locals        []LocalInfo
	Upvalues      []UpvalueDesc
	Flags         CodeFlags
	Module        *Module
}

func NewCodeObject(name, filename string) *CodeObject {
	return &CodeObject{Chunk: bytecode.NewChunk(), Name: name, QualName: name, Filename: filename}
}

func (c *CodeObject) TypeName() string { return "function" }
func (c *CodeObject) GCScan(visitValue func(kvalue.Value), visitObj func(Obj)) {
	for _, v := range c.Chunk.Constants {
		visitValue(v)
	}
	if c.Module != nil {
		visitObj(c.Module)
	}
}

func (c *CodeObject) IsGenerator() bool   { return c.Flags&FlagGenerator != 0 }
func (c *CodeObject) IsCoroutine() bool   { return c.Flags&FlagCoroutine != 0 }
func (c *CodeObject) Arity() int          { return len(c.RequiredArgs) }
