package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kuro/internal/kvalue"
)

func TestWriteOpAndByteAdvancePC(t *testing.T) {
	c := NewChunk()
	pc1 := c.WriteOp(OpNone, 1)
	pc2 := c.WriteByte(0x2A, 1)
	assert.Equal(t, 0, pc1)
	assert.Equal(t, 1, pc2)
	require.Len(t, c.Code, 2)
	assert.Equal(t, byte(OpNone), c.Code[0])
	assert.Equal(t, byte(0x2A), c.Code[1])
}

func TestAddConstant(t *testing.T) {
	c := NewChunk()
	i1 := c.AddConstant(kvalue.Int(7))
	i2 := c.AddConstant(kvalue.Int(9))
	assert.Equal(t, 0, i1)
	assert.Equal(t, 1, i2)
	assert.EqualValues(t, 7, c.Constants[i1].AsInt())
	assert.EqualValues(t, 9, c.Constants[i2].AsInt())
}

func TestLineOfCoalescesRuns(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpNone, 1)
	c.WriteOp(OpPop, 1)
	c.WriteOp(OpNone, 2)
	c.WriteOp(OpPop, 2)
	c.WriteOp(OpReturn, 2)

	require.Len(t, c.lines, 2, "same-line instructions should coalesce into one run")
	want := []int{1, 1, 2, 2, 2}
	for pc, line := range want {
		assert.Equal(t, line, c.LineOf(pc), "LineOf(%d)", pc)
	}
}

func TestLineOfPastEndReturnsLastLine(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpNone, 5)
	assert.Equal(t, 5, c.LineOf(100))
}

func TestLineOfEmptyChunk(t *testing.T) {
	c := NewChunk()
	assert.Equal(t, 0, c.LineOf(0))
}

func TestPatchByte(t *testing.T) {
	c := NewChunk()
	pc := c.WriteByte(0x00, 1)
	c.PatchByte(pc, 0xFF)
	assert.Equal(t, byte(0xFF), c.Code[pc])
}

func TestOpIsLongPairing(t *testing.T) {
	tests := []struct {
		op   Op
		long bool
	}{
		{OpConstant, false},
		{OpConstantLong, true},
		{OpCall, false},
		{OpCallLong, true},
		{OpReturn, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.long, tt.op.IsLong(), "%s.IsLong()", tt.op)
	}
}

func TestOpStringUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN_OP", Op(255).String())
	assert.Equal(t, "ADD", OpAdd.String())
}
