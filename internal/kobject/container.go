package kobject

import "kuro/internal/kvalue"

// List and Dict are the minimum workable container implementations
// needed to exercise the VM and stdlib surface (spec.md §1 scopes the
// tuned algorithms of these types out — "beyond the protocols the VM
// requires of them" — so these are plain Go slice/map wrappers, not a
// hash-array-mapped-trie or similar).

type List struct {
	Header
	Items []kvalue.Value
}

func NewList(items []kvalue.Value) *List {
	return &List{Items: items}
}

func (l *List) TypeName() string { return "list" }
func (l *List) GCScan(visitValue func(kvalue.Value), visitObj func(Obj)) {
	for _, v := range l.Items {
		visitValue(v)
	}
}

func (l *List) Slice(start, stop, step int) *List {
	if step == 1 {
		if start >= stop {
			return NewList(nil)
		}
		out := make([]kvalue.Value, stop-start)
		copy(out, l.Items[start:stop])
		return NewList(out)
	}
	var out []kvalue.Value
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, l.Items[i])
		}
	} else if step < 0 {
		for i := start; i > stop; i += step {
			out = append(out, l.Items[i])
		}
	}
	return NewList(out)
}

// dictEntry preserves insertion order (§3 containers "beyond the
// protocols the VM requires" are not specified further, but stable
// iteration order is the least-surprising default and what every
// Python-flavored language in the retrieval pack's domain does).
type dictEntry struct {
	key   kvalue.Value
	val   kvalue.Value
	alive bool
}

type Dict struct {
	Header
	order []kvalue.Value
	// index keys on a Go-native key built from hash+identity; strings
	// and numbers are the common case, indexed by their own Go value.
	byKey map[interface{}]*dictEntry
}

func NewDict() *Dict {
	return &Dict{byKey: map[interface{}]*dictEntry{}}
}

// dictKey reduces a kvalue.Value to a Go-comparable key for the
// backing map. Strings hash/compare by content (interning already
// guarantees identity == equality); objects without value semantics
// fall back to pointer identity.
func dictKey(v kvalue.Value) interface{} {
	switch {
	case v.IsInt():
		return v.AsInt()
	case v.IsFloat():
		return v.AsFloat()
	case v.IsBool():
		return v.AsBool()
	case v.IsNone():
		return "<none>"
	case v.IsObject():
		if s, ok := v.AsObject().(*String); ok {
			return "str:" + s.Go()
		}
		return v.AsObject()
	}
	return v
}

func (d *Dict) Get(key kvalue.Value) (kvalue.Value, bool) {
	if e, ok := d.byKey[dictKey(key)]; ok && e.alive {
		return e.val, true
	}
	return kvalue.None(), false
}

func (d *Dict) Set(key, val kvalue.Value) {
	k := dictKey(key)
	if e, ok := d.byKey[k]; ok {
		e.val = val
		return
	}
	e := &dictEntry{key: key, val: val, alive: true}
	d.byKey[k] = e
	d.order = append(d.order, key)
}

func (d *Dict) Delete(key kvalue.Value) bool {
	k := dictKey(key)
	e, ok := d.byKey[k]
	if !ok || !e.alive {
		return false
	}
	e.alive = false
	delete(d.byKey, k)
	for i, ok := range d.order {
		if dictKey(ok) == k {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

func (d *Dict) Len() int {
	n := 0
	for _, e := range d.byKey {
		if e.alive {
			n++
		}
	}
	return n
}

// Keys/Values walk insertion order, skipping deleted entries.
func (d *Dict) Keys() []kvalue.Value {
	out := make([]kvalue.Value, 0, len(d.order))
	for _, k := range d.order {
		if e, ok := d.byKey[dictKey(k)]; ok && e.alive {
			out = append(out, k)
		}
	}
	return out
}

func (d *Dict) Values() []kvalue.Value {
	keys := d.Keys()
	out := make([]kvalue.Value, 0, len(keys))
	for _, k := range keys {
		v, _ := d.Get(k)
		out = append(out, v)
	}
	return out
}

func (d *Dict) TypeName() string { return "dict" }
func (d *Dict) GCScan(visitValue func(kvalue.Value), visitObj func(Obj)) {
	for _, e := range d.byKey {
		if e.alive {
			visitValue(e.key)
			visitValue(e.val)
		}
	}
}

type Set struct {
	Header
	backing *Dict
}

func NewSet() *Set { return &Set{backing: NewDict()} }

func (s *Set) Add(v kvalue.Value)      { s.backing.Set(v, kvalue.Bool(true)) }
func (s *Set) Contains(v kvalue.Value) bool { _, ok := s.backing.Get(v); return ok }
func (s *Set) Remove(v kvalue.Value) bool   { return s.backing.Delete(v) }
func (s *Set) Len() int                     { return s.backing.Len() }
func (s *Set) Items() []kvalue.Value        { return s.backing.Keys() }

func (s *Set) TypeName() string { return "set" }
func (s *Set) GCScan(visitValue func(kvalue.Value), visitObj func(Obj)) {
	s.backing.GCScan(visitValue, visitObj)
}
