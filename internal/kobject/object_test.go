package kobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kuro/internal/kvalue"
)

func TestStringInterning(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"identical literals", "hello", "hello"},
		{"built piecewise", "foo" + "bar", "foobar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Intern(tt.a)
			b := Intern(tt.b)
			assert.Same(t, a, b, "Intern(%q) and Intern(%q) should return the same pointer", tt.a, tt.b)
		})
	}
}

func TestStringWidthTracking(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  widthKind
	}{
		{"ascii", "hello", WidthASCII},
		{"latin1 range", "café", WidthUCS1},
		{"bmp", "中文", WidthUCS2},
		{"astral", "\U0001F600", WidthUCS4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newString(tt.input)
			assert.Equal(t, tt.want, s.Width())
		})
	}
}

func TestStringRuneAt(t *testing.T) {
	s := newString("aé中")
	want := []rune{'a', 'é', '中'}
	for i, w := range want {
		r, ok := s.RuneAt(i)
		require.True(t, ok, "RuneAt(%d) should succeed", i)
		assert.Equal(t, w, r)
	}
	_, ok := s.RuneAt(len(want))
	assert.False(t, ok, "RuneAt(out of range) should report false")
}

func TestTupleHashStable(t *testing.T) {
	a := NewTuple([]kvalue.Value{kvalue.Int(1), kvalue.Int(2)})
	b := NewTuple([]kvalue.Value{kvalue.Int(1), kvalue.Int(2)})
	assert.Equal(t, a.Hash(), b.Hash(), "equal tuples should hash identically")

	c := NewTuple([]kvalue.Value{kvalue.Int(2), kvalue.Int(1)})
	assert.NotEqual(t, a.Hash(), c.Hash(), "differently-ordered tuples should hash differently")
}

func TestDictSetGetDelete(t *testing.T) {
	d := NewDict()
	key := kvalue.Object(Intern("count"))
	d.Set(key, kvalue.Int(1))
	v, ok := d.Get(key)
	require.True(t, ok)
	assert.EqualValues(t, 1, v.AsInt())

	d.Set(key, kvalue.Int(2))
	v, _ = d.Get(key)
	assert.EqualValues(t, 2, v.AsInt(), "Set on an existing key should overwrite")

	require.True(t, d.Delete(key), "Delete should report true for a present key")
	_, ok = d.Get(key)
	assert.False(t, ok, "Get should miss after Delete")
}

func TestDictPreservesInsertionOrder(t *testing.T) {
	d := NewDict()
	order := []string{"z", "a", "m"}
	for _, k := range order {
		d.Set(kvalue.Object(Intern(k)), kvalue.None())
	}
	keys := d.Keys()
	require.Len(t, keys, len(order))
	for i, k := range keys {
		assert.Equal(t, order[i], k.AsObject().(*String).Go())
	}
}

func TestClassFinalizeCachesSlots(t *testing.T) {
	base := NewClass("Base", nil)
	initFn := kvalue.Object(NewNativeFunc("__init__", "", 0, nil))
	base.Methods["__init__"] = initFn
	base.Finalize()
	assert.Equal(t, initFn, base.CachedSlots.Init)

	sub := NewClass("Sub", base)
	sub.Finalize()
	assert.Equal(t, initFn, sub.CachedSlots.Init, "subclass should inherit __init__ slot through base chain")
	assert.True(t, sub.IsSubclassOf(base))
}

func TestClassRefinalizeSubclassesPicksUpMonkeypatch(t *testing.T) {
	base := NewClass("Base", nil)
	base.Finalize()

	sub := NewClass("Sub", base)
	sub.Finalize()
	assert.False(t, sub.CachedSlots.Str.IsObject(), "expected no __str__ cached before patching")

	strFn := kvalue.Object(NewNativeFunc("__str__", "", 0, nil))
	base.Methods["__str__"] = strFn
	base.RefinalizeSubclasses()

	assert.Equal(t, strFn, sub.CachedSlots.Str, "RefinalizeSubclasses should propagate the new slot to finalized subclasses")
}

func TestExceptionTraceback(t *testing.T) {
	class := NewClass("ValueError", nil)
	class.Finalize()
	exc := NewException(class, kvalue.Object(Intern("bad value")))

	code := NewCodeObject("f", "<test>")
	closure := NewClosure(code)
	exc.PushFrame(closure, 12)
	exc.PushFrame(closure, 40)

	require.Len(t, exc.Traceback, 2)
	assert.Equal(t, 12, exc.Traceback[0].Offset)
	assert.Equal(t, 40, exc.Traceback[1].Offset)
	assert.Equal(t, "ValueError", exc.TypeName())
}

func TestNewInstancePanicsOnNilClass(t *testing.T) {
	assert.Panics(t, func() { NewInstance(nil) })
}
