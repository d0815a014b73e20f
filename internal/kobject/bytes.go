package kobject

import "kuro/internal/kvalue"

// Bytes is the immutable bytes object (§3): byte-length indexing and
// slicing, as opposed to String's codepoint-based semantics (§4.2).
type Bytes struct {
	Header
	data       []byte
	hash       uint64
	hashCached bool
}

func NewBytes(b []byte) *Bytes {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &Bytes{data: cp}
}

func (b *Bytes) TypeName() string { return "bytes" }
func (b *Bytes) GCScan(func(kvalue.Value), func(Obj)) {}
func (b *Bytes) Data() []byte { return b.data }
func (b *Bytes) Len() int     { return len(b.data) }

func (b *Bytes) Hash() uint64 {
	if b.hashCached {
		return b.hash
	}
	var h uint64 = 14695981039346656037
	for _, c := range b.data {
		h ^= uint64(c)
		h *= 1099511628211
	}
	b.hash = h
	b.hashCached = true
	return h
}

func (b *Bytes) Slice(start, stop, step int) []byte {
	if step == 1 {
		if start >= stop {
			return nil
		}
		out := make([]byte, stop-start)
		copy(out, b.data[start:stop])
		return out
	}
	var out []byte
	if step > 0 {
		for i := start; i < stop; i += step {
			out = append(out, b.data[i])
		}
	} else if step < 0 {
		for i := start; i > stop; i += step {
			out = append(out, b.data[i])
		}
	}
	return out
}
