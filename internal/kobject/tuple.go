package kobject

import (
	"hash/fnv"

	"kuro/internal/kvalue"
)

// Tuple is immutable after construction (§3).
type Tuple struct {
	Header
	items      []kvalue.Value
	hash       uint64
	hashCached bool
}

func NewTuple(items []kvalue.Value) *Tuple {
	cp := make([]kvalue.Value, len(items))
	copy(cp, items)
	return &Tuple{items: cp}
}

func (t *Tuple) TypeName() string { return "tuple" }
func (t *Tuple) Len() int         { return len(t.items) }
func (t *Tuple) At(i int) kvalue.Value { return t.items[i] }
func (t *Tuple) Items() []kvalue.Value { return t.items }

func (t *Tuple) GCScan(visitValue func(kvalue.Value), visitObj func(Obj)) {
	for _, v := range t.items {
		visitValue(v)
	}
}

// Hash combines each element's hash the same way String/Bytes derive
// theirs (FNV-1a over a byte encoding), cached after first use since
// tuples are immutable. Only called when every element is itself
// hashable; internal/kvm is responsible for raising TypeError before
// reaching here otherwise.
func (t *Tuple) Hash() uint64 {
	if t.hashCached {
		return t.hash
	}
	h := fnv.New64a()
	for _, v := range t.items {
		var buf [8]byte
		switch {
		case v.IsInt():
			n := v.AsInt()
			for i := range buf {
				buf[i] = byte(n >> (8 * i))
			}
		case v.IsFloat():
			n := int64(v.AsFloat())
			for i := range buf {
				buf[i] = byte(n >> (8 * i))
			}
		case v.IsBool():
			if v.AsBool() {
				buf[0] = 1
			}
		case v.IsNone():
			buf[0] = 0xFF
		case v.IsObject():
			switch o := v.AsObject().(type) {
			case *String:
				n := o.Hash()
				for i := range buf {
					buf[i] = byte(n >> (8 * i))
				}
			case *Bytes:
				n := o.Hash()
				for i := range buf {
					buf[i] = byte(n >> (8 * i))
				}
			case *Tuple:
				n := o.Hash()
				for i := range buf {
					buf[i] = byte(n >> (8 * i))
				}
			}
		}
		h.Write(buf[:])
	}
	t.hash = h.Sum64()
	t.hashCached = true
	return t.hash
}

// Slice returns a new Tuple over [start, stop) stepping by step; see
// String.Slice for the index-normalization contract.
func (t *Tuple) Slice(start, stop, step int) *Tuple {
	if step == 1 {
		if start >= stop {
			return NewTuple(nil)
		}
		return NewTuple(t.items[start:stop])
	}
	var out []kvalue.Value
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, t.items[i])
		}
	} else if step < 0 {
		for i := start; i > stop; i += step {
			out = append(out, t.items[i])
		}
	}
	return NewTuple(out)
}
