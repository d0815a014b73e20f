// Package kgc implements the tracing tri-color mark-sweep collector
// described in §3 (the Class/Instance/Closure reference cycles the
// spec calls out cannot be handled by reference counting) and §9's GC
// safe-point contract. No single teacher file grounds this package —
// the teacher's own internal/memory package is unrelated
// forensics-sample data, not a language GC — so the design follows
// spec.md's own description directly, written in the teacher's plain
// exported-struct, no-generics idiom.
package kgc

import (
	"kuro/internal/kobject"
	"kuro/internal/kvalue"
)

// Roots is everything a collection cycle must start tracing from
// (§2's "walks the value stack, frame stack, open-upvalue list, module
// cache, interned-string table, and per-thread exception slot").
// internal/kvm supplies one of these per collection; kgc does not
// reach into VM internals itself, keeping the dependency one-way
// (kvm -> kgc, never the reverse).
type Roots struct {
	Values   []kvalue.Value
	Objects  []kobject.Obj
	Upvalues []*kobject.Upvalue
}

// Collector runs stop-the-world tracing mark-sweep over an intrusive
// linked list of every object ever allocated (kobject.Header.Next).
type Collector struct {
	head      kobject.Obj // allocation list head; newest first
	bytesLive int64
	threshold int64
	growth    float64
	gray      []kobject.Obj
}

func New(initialThreshold int64, growthFactor float64) *Collector {
	return &Collector{threshold: initialThreshold, growth: growthFactor}
}

// Track registers a freshly allocated object on the sweep list and
// accounts for its approximate size. internal/kvm calls this from
// every object constructor path (NewInstance, NewClosure, ...).
func (c *Collector) Track(o kobject.Obj, size int64) {
	o.SetNext(c.head)
	c.head = o
	c.bytesLive += size
}

// ShouldCollect reports whether bytesLive has crossed the watermark
// (§2: "The GC runs at allocation points when a byte-allocation
// watermark is exceeded").
func (c *Collector) ShouldCollect() bool {
	return c.bytesLive >= c.threshold
}

// Collect runs one full mark-sweep cycle against the given roots and
// grows the threshold for next time. Returns the number of objects
// freed, for diagnostics and tests. The mark bit used to decide
// reachability lives on each object's own Header (§3's GC mark bits
// row) rather than a side table, so a survivor leaves the cycle with
// its mark bit set and the sweep pass below clears it again — per §9,
// "for every heap object reachable at a GC safe point, after a
// collection, it is reachable and its mark bit is cleared."
func (c *Collector) Collect(roots Roots) int64 {
	c.gray = c.gray[:0]

	for _, o := range roots.Objects {
		c.push(o)
	}
	for _, uv := range roots.Upvalues {
		c.push(uv)
	}
	for _, v := range roots.Values {
		c.pushValue(v)
	}

	for len(c.gray) > 0 {
		o := c.gray[len(c.gray)-1]
		c.gray = c.gray[:len(c.gray)-1]
		o.GCScan(c.pushValue, c.push)
	}

	var freed int64
	var prev kobject.Obj
	var survivors int64
	for cur := c.head; cur != nil; {
		next := cur.Next()
		if cur.Marked() {
			cur.SetMarked(false)
			survivors++
			prev = cur
			cur = next
			continue
		}
		freed++
		if prev == nil {
			c.head = next
		} else {
			prev.SetNext(next)
		}
		cur = next
	}

	c.bytesLive = survivors * averageObjectSize
	c.threshold = int64(float64(c.bytesLive) * c.growth)
	if c.threshold < minThreshold {
		c.threshold = minThreshold
	}
	return freed
}

func (c *Collector) push(o kobject.Obj) {
	if o == nil || o.Marked() {
		return
	}
	o.SetMarked(true)
	if cls := o.Class(); cls != nil {
		c.push(cls)
	}
	c.gray = append(c.gray, o)
}

func (c *Collector) pushValue(v kvalue.Value) {
	if v.IsObject() {
		if obj, ok := v.AsObject().(kobject.Obj); ok {
			c.push(obj)
		}
	}
}

const (
	averageObjectSize = 48
	minThreshold       = 1 << 16
)
