package kgc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kuro/internal/kobject"
	"kuro/internal/kvalue"
)

func TestShouldCollectWatermark(t *testing.T) {
	c := New(100, 2.0)
	class := kobject.NewClass("Thing", nil)
	class.Finalize()

	assert.False(t, c.ShouldCollect())
	for i := 0; i < 3; i++ {
		c.Track(kobject.NewInstance(class), 48)
	}
	assert.True(t, c.ShouldCollect())
}

func TestCollectFreesUnreachableObjects(t *testing.T) {
	c := New(0, 2.0)
	class := kobject.NewClass("Thing", nil)
	class.Finalize()

	root := kobject.NewInstance(class)
	garbage := kobject.NewInstance(class)
	c.Track(root, 48)
	c.Track(garbage, 48)

	freed := c.Collect(Roots{Objects: []kobject.Obj{root}})
	assert.EqualValues(t, 1, freed)
}

func TestCollectKeepsReachableGraph(t *testing.T) {
	c := New(0, 2.0)
	class := kobject.NewClass("Node", nil)
	class.Finalize()

	parent := kobject.NewInstance(class)
	child := kobject.NewInstance(class)
	parent.Fields["child"] = kvalue.Object(child)
	c.Track(parent, 48)
	c.Track(child, 48)

	freed := c.Collect(Roots{Objects: []kobject.Obj{parent}})
	assert.EqualValues(t, 0, freed, "child reachable through parent.Fields must survive")
}

func TestCollectWalksValueStackRoots(t *testing.T) {
	c := New(0, 2.0)
	class := kobject.NewClass("Thing", nil)
	class.Finalize()

	onStack := kobject.NewInstance(class)
	garbage := kobject.NewInstance(class)
	c.Track(onStack, 48)
	c.Track(garbage, 48)

	freed := c.Collect(Roots{Values: []kvalue.Value{kvalue.Object(onStack), kvalue.Int(7)}})
	assert.EqualValues(t, 1, freed)
}

func TestCollectKeepsClassOfReachableInstance(t *testing.T) {
	c := New(0, 2.0)
	base := kobject.NewClass("Base", nil)
	base.Finalize()
	sub := kobject.NewClass("Sub", base)
	sub.Finalize()

	inst := kobject.NewInstance(sub)
	c.Track(sub, 48)
	c.Track(inst, 48)

	freed := c.Collect(Roots{Objects: []kobject.Obj{inst}})
	assert.EqualValues(t, 0, freed, "an instance's own class must survive alongside it")
}

func TestCollectGrowsThreshold(t *testing.T) {
	c := New(64, 2.0)
	class := kobject.NewClass("Thing", nil)
	class.Finalize()
	root := kobject.NewInstance(class)
	c.Track(root, 64)

	c.Collect(Roots{Objects: []kobject.Obj{root}})
	require.Greater(t, c.threshold, int64(0))
	assert.GreaterOrEqual(t, c.threshold, int64(minThreshold))
}

func TestCollectEmptyRootsFreesEverything(t *testing.T) {
	c := New(0, 2.0)
	class := kobject.NewClass("Thing", nil)
	class.Finalize()
	c.Track(kobject.NewInstance(class), 48)
	c.Track(kobject.NewInstance(class), 48)

	freed := c.Collect(Roots{})
	assert.EqualValues(t, 2, freed)
	assert.Nil(t, c.head)
}
