package kerrors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kuro/internal/bytecode"
	"kuro/internal/kobject"
	"kuro/internal/kvalue"
)

func TestSyntaxErrorFormatting(t *testing.T) {
	err := NewSyntaxError("unexpected token", "main.kuro", 3, 5).WithSourceLine("  x = +")
	msg := err.Error()
	assert.Contains(t, msg, "SyntaxError: unexpected token")
	assert.Contains(t, msg, "main.kuro:3:5")
	assert.Contains(t, msg, "^")
}

func TestFormatTracebackIncludesFrames(t *testing.T) {
	class := kobject.NewClass("ValueError", nil)
	class.Finalize()
	exc := kobject.NewException(class, kvalue.Object(kobject.Intern("bad")))

	code := kobject.NewCodeObject("compute", "main.kuro")
	code.Chunk.WriteOp(bytecode.OpNone, 7)
	code.Chunk.WriteOp(bytecode.OpReturn, 9)
	closure := kobject.NewClosure(code)
	exc.PushFrame(closure, 1)

	out := FormatTraceback(exc)
	assert.Contains(t, out, "main.kuro")
	assert.Contains(t, out, "compute")
	assert.Contains(t, out, "ValueError: bad")
}

func TestFormatTracebackChainsCause(t *testing.T) {
	class := kobject.NewClass("RuntimeError", nil)
	class.Finalize()

	inner := kobject.NewException(class, kvalue.Object(kobject.Intern("inner")))
	outer := kobject.NewException(class, kvalue.Object(kobject.Intern("outer")))
	outer.Cause = kvalue.Object(inner)

	out := FormatTraceback(outer)
	assert.Contains(t, out, "direct cause")
	assert.Contains(t, out, "inner")
	assert.Contains(t, out, "outer")
}
