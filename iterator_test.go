package quadtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIteratorFreshTreeYieldsFourLeaves(t *testing.T) {
	provider := NewPooledFieldProvider[float64]()
	defer provider.Close()
	tree := New(provider, 1.0)

	it := NewIterator(tree, false)
	count := 0
	for {
		item, ok := it.Next()
		if !ok {
			break
		}
		require.False(t, item.IsReduction)
		require.EqualValues(t, 1, item.Scale)
		count++
	}
	assert.Equal(t, 4, count)
}

// TestIteratorScenario mirrors spec.md scenario S5: a tree grown to N=2
// yields exactly 16 data tiles at scale 2, one per (i/4, j/4) quadrant.
func TestIteratorScenario(t *testing.T) {
	provider := NewPooledFieldProvider[float64]()
	defer provider.Close()
	tree := New(provider, 1.0)

	require.NoError(t, tree.GrowToResolution(1.0/128))

	it := NewIterator(tree, false)
	count := 0
	positions := map[[2]float64]bool{}
	for {
		item, ok := it.Next()
		if !ok {
			break
		}
		assert.EqualValues(t, 2, item.Scale)
		positions[[2]float64{item.X, item.Y}] = true
		count++
	}
	assert.Equal(t, 16, count)
	assert.Len(t, positions, 16)
}

func TestIteratorIncludeMultigridEmitsInteriorNodes(t *testing.T) {
	provider := NewPooledFieldProvider[float64]()
	defer provider.Close()
	tree := New(provider, 1.0)

	_, err := tree.Branch(tree.Root(), UL)
	require.NoError(t, err)

	it := NewIterator(tree, true)
	var reductions, leaves int
	for {
		item, ok := it.Next()
		if !ok {
			break
		}
		if item.IsReduction {
			reductions++
		} else {
			leaves++
		}
	}
	assert.Equal(t, 1, reductions) // root is the only interior node
	assert.Equal(t, 3+4, leaves)   // 3 untouched root slots + 4 new child slots
}
