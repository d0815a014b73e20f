package kobject

import "kuro/internal/kvalue"

// Instance is a plain object of some user-defined Class (§3). Its
// class pointer is never nil — NewInstance requires one, enforcing
// the §3 invariant at construction rather than by convention.
type Instance struct {
	Header
	Fields map[string]kvalue.Value
	// Extra lets subclasses implemented as native classes (e.g. a
	// generator's suspended frame, §4.6) attach host-side state beyond
	// the Fields map; __ongcscan__/__ongcsweep__ hooks are how that
	// extra memory participates in GC (§3's Instance row).
	Extra interface{}
}

func NewInstance(class *Class) *Instance {
	if class == nil {
		panic("kobject: NewInstance requires a non-nil class")
	}
	inst := &Instance{Fields: map[string]kvalue.Value{}}
	inst.SetClass(class)
	return inst
}

func (i *Instance) TypeName() string {
	if i.Class() != nil {
		return i.Class().Name
	}
	return "instance"
}

func (i *Instance) GCScan(visitValue func(kvalue.Value), visitObj func(Obj)) {
	for _, v := range i.Fields {
		visitValue(v)
	}
	if i.Class() != nil {
		visitObj(i.Class())
	}
}

// BoundMethod is built on attribute access of a callable method read
// off an instance (§3): the receiver plus the unbound callable.
type BoundMethod struct {
	Header
	Receiver kvalue.Value
	Callable kvalue.Value
}

func NewBoundMethod(receiver, callable kvalue.Value) *BoundMethod {
	return &BoundMethod{Receiver: receiver, Callable: callable}
}

func (b *BoundMethod) TypeName() string { return "bound_method" }
func (b *BoundMethod) GCScan(visitValue func(kvalue.Value), visitObj func(Obj)) {
	visitValue(b.Receiver)
	visitValue(b.Callable)
}
