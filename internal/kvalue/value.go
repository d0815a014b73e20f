// Package kvalue implements the uniform stack cell described in spec
// §3: a tagged sum of primitive, marker, and heap-object-reference
// kinds. The representation is intentionally opaque outside this
// package — callers use the Is*/As* predicates and extractors, never
// the Kind field directly, mirroring the spec's "only predicates and
// extractors are exposed" requirement.
package kvalue

import "fmt"

// Kind tags which arm of the Value union is live.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindNone
	KindNotImplemented
	KindObject
	// KindHandler and KindKwargs are non-value markers (§9's Open
	// Question resolution: markers get their own Kind rather than being
	// overloaded onto the integer representation).
	KindHandler
	KindKwargs
)

// HandlerKind distinguishes the four handler-marker varieties used by
// the unwinder (§4.5).
type HandlerKind uint8

const (
	HandlerTry HandlerKind = iota
	HandlerWith
	HandlerRaiseContinuation
	HandlerExceptFilter
)

// HandlerMarker is the payload of a KindHandler value: the handler
// kind and the byte offset in the owning frame's code where handling
// resumes.
type HandlerMarker struct {
	Kind         HandlerKind
	ResumeOffset int
	// StackDepth is the value-stack height to unwind to before jumping
	// to ResumeOffset, captured when the handler was pushed.
	StackDepth int
	// FrameDepth is the call-frame-stack height the handler belongs to.
	FrameDepth int
}

// Obj is implemented by every heap object kind in internal/kobject.
// kvalue only needs identity and a class pointer (itself a Value,
// typically KindObject wrapping a *kobject.Class) to implement
// dynamic dispatch without an import cycle between kvalue and
// kobject — kobject depends on kvalue, not the reverse.
type Obj interface {
	// TypeName is used for diagnostics only; dispatch goes through the
	// class method table (internal/kobject), not this method.
	TypeName() string
}

// Value is the VM's uniform stack cell.
type Value struct {
	kind    Kind
	i       int64
	f       float64
	obj     Obj
	handler HandlerMarker
	kwargs  int
}

// Int constructs an integer value. Per §3, the signed range must fit
// at least 48 bits; promotion to bigint (a heap object, §4.2) happens
// above the host int64 range and is handled by internal/kvm, not here.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

func Bool(v bool) Value {
	var i int64
	if v {
		i = 1
	}
	return Value{kind: KindBool, i: i}
}

var noneValue = Value{kind: KindNone}
var notImplementedValue = Value{kind: KindNotImplemented}

func None() Value        { return noneValue }
func NotImplemented() Value { return notImplementedValue }

func Object(o Obj) Value { return Value{kind: KindObject, obj: o} }

func Handler(h HandlerMarker) Value { return Value{kind: KindHandler, handler: h} }

func Kwargs(n int) Value { return Value{kind: KindKwargs, kwargs: n} }

func (v Value) IsInt() bool           { return v.kind == KindInt }
func (v Value) IsFloat() bool         { return v.kind == KindFloat }
func (v Value) IsBool() bool          { return v.kind == KindBool }
func (v Value) IsNone() bool          { return v.kind == KindNone }
func (v Value) IsNotImplemented() bool { return v.kind == KindNotImplemented }
func (v Value) IsObject() bool        { return v.kind == KindObject }
func (v Value) IsHandler() bool       { return v.kind == KindHandler }
func (v Value) IsKwargs() bool        { return v.kind == KindKwargs }
func (v Value) IsNumber() bool        { return v.kind == KindInt || v.kind == KindFloat }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsInt() int64 {
	if v.kind != KindInt {
		panic("kvalue: AsInt on non-int Value")
	}
	return v.i
}

func (v Value) AsFloat() float64 {
	if v.kind != KindFloat {
		panic("kvalue: AsFloat on non-float Value")
	}
	return v.f
}

func (v Value) AsBool() bool {
	if v.kind != KindBool {
		panic("kvalue: AsBool on non-bool Value")
	}
	return v.i != 0
}

func (v Value) AsObject() Obj {
	if v.kind != KindObject {
		panic("kvalue: AsObject on non-object Value")
	}
	return v.obj
}

func (v Value) AsHandler() HandlerMarker {
	if v.kind != KindHandler {
		panic("kvalue: AsHandler on non-handler Value")
	}
	return v.handler
}

func (v Value) AsKwargs() int {
	if v.kind != KindKwargs {
		panic("kvalue: AsKwargs on non-kwargs Value")
	}
	return v.kwargs
}

// Truthy implements the language's generic truthiness test used by
// JUMP_IF_FALSE and friends: none and false are falsy, zero int/float
// are falsy, everything else (including objects, whose classes may
// define __bool__/__len__ at a higher layer) is truthy by default.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNone:
		return false
	case KindBool:
		return v.i != 0
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindNotImplemented:
		return true
	default:
		return true
	}
}

// SameIdentity implements the `is` operator: bitwise identity for
// primitives, pointer identity for objects (interned strings therefore
// compare `is`-equal iff byte-equal, §3 invariant).
func SameIdentity(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindBool:
		return a.i == b.i
	case KindNone, KindNotImplemented:
		return true
	case KindObject:
		return a.obj == b.obj
	default:
		return false
	}
}

func (v Value) GoString() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("Int(%d)", v.i)
	case KindFloat:
		return fmt.Sprintf("Float(%g)", v.f)
	case KindBool:
		return fmt.Sprintf("Bool(%v)", v.i != 0)
	case KindNone:
		return "None"
	case KindNotImplemented:
		return "NotImplemented"
	case KindObject:
		return fmt.Sprintf("Object(%s)", v.obj.TypeName())
	case KindHandler:
		return fmt.Sprintf("Handler(%+v)", v.handler)
	case KindKwargs:
		return fmt.Sprintf("Kwargs(%d)", v.kwargs)
	}
	return "?"
}
