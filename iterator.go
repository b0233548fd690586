package quadtree

// Iterator walks a QuadTree depth-first, yielding every Data tile along
// with its normalized position within the domain and its absolute scale.
// Grounded on the original's recursive traverse() (original_source/Source/
// BidirQuadTree.hpp) and styled after bart's own Go 1.23 push-iterator
// convention (table_iter.go's `func(yield func(...) bool)` shape), but
// exposed as a stateful struct rather than a range-over-func: this
// traversal needs to be pausable mid-walk by Next() for callers that
// interleave iteration with tree mutation elsewhere, which a pure
// push-style iterator can't support without its own goroutine.
//
// An Iterator is single-use: once exhausted (or abandoned partway) it
// cannot be restarted. Construct a new one via NewIterator to walk again.
type Iterator[V Numeric] struct {
	stack            []frame[V]
	includeMultigrid bool
	done             bool
}

type frame[V Numeric] struct {
	node         Handle[QuadNode[V]]
	x, y         float64 // normalized origin of this node's quadrant, in [0,1)
	extent       float64 // normalized side length of this node's quadrant
	next         RelPos  // next child slot to descend into, UL..DR, or 4 if exhausted
	reduxEmitted bool
}

// IteratorItem is one step of a tree walk: either a leaf Data tile or,
// when IncludeMultigrid is set, an interior node's Redux() tile emitted
// before its children are visited.
type IteratorItem[V Numeric] struct {
	Node  Handle[QuadNode[V]]
	Field FieldSet[V]

	// X, Y are the normalized (0..1) coordinates of this tile's origin
	// within the whole domain.
	X, Y float64
	// Scale is the tile's absolute scale: the holding node's depth plus one
	// for a leaf Data tile, the node's own depth (0 at root) for a reduction.
	Scale uint8
	// IsReduction is true when Field came from an interior node's Redux()
	// rather than a leaf's Data slot.
	IsReduction bool
}

// NewIterator constructs a depth-first walk starting at root. When
// includeMultigrid is true, every interior node's multigrid-reduction
// FieldSet is yielded (as an IsReduction item) before its four children
// are visited; when false, only leaf Data tiles are yielded.
func NewIterator[V Numeric](t *QuadTree[V], includeMultigrid bool) *Iterator[V] {
	return &Iterator[V]{
		includeMultigrid: includeMultigrid,
		stack: []frame[V]{{
			node:   t.root,
			x:      0,
			y:      0,
			extent: 1,
		}},
	}
}

// Next advances the walk and returns the next item, or ok=false once the
// walk is exhausted. The tree must not be mutated between calls: Branch or
// Prune invalidate any node handles the iterator is holding partway
// through a descent, same caveat the original's traverse() carries (it
// assumes a quiescent tree for the duration of one walk).
func (it *Iterator[V]) Next() (IteratorItem[V], bool) {
	for {
		if it.done || len(it.stack) == 0 {
			it.done = true
			return IteratorItem[V]{}, false
		}

		top := &it.stack[len(it.stack)-1]
		n := top.node.Get()

		if it.includeMultigrid && n.isChild != 0 && !top.reduxEmitted {
			top.reduxEmitted = true
			return IteratorItem[V]{
				Node:        top.node,
				Field:       n.redux,
				X:           top.x,
				Y:           top.y,
				Scale:       n.scale,
				IsReduction: true,
			}, true
		}

		if top.next >= 4 {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}

		rel := top.next
		slot := n.slots[rel]
		childX, childY := childOrigin(rel, top.x, top.y, top.extent)
		top.next++

		if slot.IsChild() {
			ch, _ := slot.Child()
			it.stack = append(it.stack, frame[V]{
				node:   ch,
				x:      childX,
				y:      childY,
				extent: top.extent / 2,
			})
			continue
		}

		fs, _ := slot.Data()
		return IteratorItem[V]{
			Node:        top.node,
			Field:       fs,
			X:           childX,
			Y:           childY,
			Scale:       n.scale + 1,
			IsReduction: false,
		}, true
	}
}

// childOrigin computes the normalized origin of child quadrant rel within
// a parent quadrant spanning [x, x+extent) x [y, y+extent).
func childOrigin(rel RelPos, x, y, extent float64) (cx, cy float64) {
	half := extent / 2
	switch rel {
	case UL:
		return x, y
	case UR:
		return x + half, y
	case DL:
		return x, y + half
	default: // DR
		return x + half, y + half
	}
}
