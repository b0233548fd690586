package quadtree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotDataChildMutualExclusion(t *testing.T) {
	p := NewPooledFieldProvider[float64]()
	defer p.Close()

	fs := p.Get()
	ds := dataSlot(fs)
	require.False(t, ds.IsChild())
	got, ok := ds.Data()
	require.True(t, ok)
	assert.Equal(t, fs, got)
	_, ok = ds.Child()
	assert.False(t, ok)

	pool := NewPool[QuadNode[float64]]()
	defer pool.Close()
	h := pool.AcquireFrom(QuadNode[float64]{})
	cs := childSlot[float64](h)
	require.True(t, cs.IsChild())
	_, ok = cs.Data()
	assert.False(t, ok)
	ch, ok := cs.Child()
	require.True(t, ok)
	assert.Equal(t, h, ch)
}

func TestQuadNodeMarkChildUpdatesBitmask(t *testing.T) {
	var n QuadNode[float64]
	for i := RelPos(0); i < 4; i++ {
		assert.False(t, n.SlotIsChild(i))
	}

	n.markChild(int(UR), true)
	assert.True(t, n.SlotIsChild(UR))
	assert.False(t, n.SlotIsChild(UL))
	assert.False(t, n.SlotIsChild(DL))
	assert.False(t, n.SlotIsChild(DR))

	n.markChild(int(UR), false)
	assert.False(t, n.SlotIsChild(UR))
}

func TestQuadNodeRootHasNoParent(t *testing.T) {
	n := QuadNode[float64]{relPos: HEAD}
	assert.True(t, n.IsRoot())
	_, ok := n.Parent()
	assert.False(t, ok)
}

func TestRelPosString(t *testing.T) {
	cases := map[RelPos]string{UL: "UL", UR: "UR", DL: "DL", DR: "DR", HEAD: "HEAD"}
	for pos, want := range cases {
		assert.Equal(t, want, pos.String())
	}
}

func TestQuadNodeDebugString(t *testing.T) {
	var n QuadNode[float64]
	n.scale = 3
	n.relPos = UL
	n.markChild(int(UR), true)

	s := n.DebugString()
	assert.True(t, strings.Contains(s, "scale=3"))
	assert.True(t, strings.Contains(s, "relPos=UL"))
	assert.True(t, strings.Contains(s, "UR: Child"))
	assert.True(t, strings.Contains(s, "UL: Data"))
}
