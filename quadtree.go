package quadtree

import (
	"math"
	"sync"
)

// Direction is one of the four cardinal neighbor directions. Diagonals are
// not supported (spec.md §4.5: "Directions are cardinal only").
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "?"
	}
}

// reflect returns the opposite cardinal direction (Up<->Down, Left<->Right).
func reflect(d Direction) Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return d
	}
}

// sibling implements the Sibling[rel_pos][d] table from spec.md §4.5: given
// a node's position within its parent and a direction, returns the sibling
// slot touched in that direction, or ok=false when the neighbor lies
// outside the parent.
func sibling(rel RelPos, d Direction) (RelPos, bool) {
	switch rel {
	case UL:
		switch d {
		case Down:
			return DL, true
		case Right:
			return UR, true
		}
	case UR:
		switch d {
		case Down:
			return DR, true
		case Left:
			return UL, true
		}
	case DL:
		switch d {
		case Up:
			return UL, true
		case Right:
			return DR, true
		}
	case DR:
		switch d {
		case Up:
			return UR, true
		case Left:
			return DL, true
		}
	}
	return 0, false
}

// Qualifier describes what Neighbor found, so the caller can dispatch
// without repeating the tree walk (spec.md §4.5).
type Qualifier uint8

const (
	// SameLevelChild: the neighbor is a child node found directly via the
	// common parent's sibling slot.
	SameLevelChild Qualifier = iota + 1
	// SameLevelNode: the neighbor is a child node found one recursion
	// level up, via a cousin's sibling slot (the "descend one level"
	// step).
	SameLevelNode
	// IsData: the neighbor is a Data tile; the returned node is the
	// parent holding it, at the slot computable from the query's own
	// RelPos and Direction.
	IsData
	// InterpNeeded: the neighbor is coarser than the query node; the
	// returned node's Redux() must be prolongated before use.
	InterpNeeded
	// OutOfBounds: the walk reached the root without finding a neighbor;
	// apply the domain boundary condition instead.
	OutOfBounds
)

func (q Qualifier) String() string {
	switch q {
	case SameLevelChild:
		return "SameLevelChild"
	case SameLevelNode:
		return "SameLevelNode"
	case IsData:
		return "IsData"
	case InterpNeeded:
		return "InterpNeeded"
	case OutOfBounds:
		return "OutOfBounds"
	default:
		return "?"
	}
}

// QuadTree owns every QuadNode in the mesh (via a Pool), the field
// provider shared across Branch calls, and a neighbor-search cache.
// Mutating operations share one RWMutex: readers (Neighbor) take RLock,
// mutators (Branch/Prune/GrowToResolution) take Lock — the
// many-reader-one-writer upgrade path spec.md §5 and §9 call for, one step
// up from a single mutex. The neighbor cache's maps are guarded by the
// cache's own mutex (see neighborCache).
type QuadTree[V Numeric] struct {
	mu sync.RWMutex

	nodes    *Pool[QuadNode[V]]
	provider FieldProvider[V]

	root Handle[QuadNode[V]]

	physicalLength float64

	cache *neighborCache[V]
}

// New constructs a tree with a single root node, its four slots freshly
// populated via provider.Get() (spec.md §6: "The tree calls this on...
// root construction").
func New[V Numeric](provider FieldProvider[V], physicalLength float64) *QuadTree[V] {
	nodes := NewPool[QuadNode[V]]()

	root := nodes.AcquireEmplace(func() QuadNode[V] {
		return QuadNode[V]{
			scale:  0,
			relPos: HEAD,
			redux:  provider.Get(),
			slots: [4]Slot[V]{
				dataSlot(provider.Get()),
				dataSlot(provider.Get()),
				dataSlot(provider.Get()),
				dataSlot(provider.Get()),
			},
		}
	})

	return &QuadTree[V]{
		nodes:          nodes,
		provider:       provider,
		root:           root,
		physicalLength: physicalLength,
		cache:          newNeighborCache[V](),
	}
}

// Root returns the tree's root node handle.
func (t *QuadTree[V]) Root() Handle[QuadNode[V]] {
	return t.root
}

// Node dereferences a handle into its QuadNode, for callers that already
// validated the handle (e.g. one just returned by Branch/Neighbor).
func (t *QuadTree[V]) Node(h Handle[QuadNode[V]]) *QuadNode[V] {
	return h.Get()
}

// Close reports leak diagnostics for the node pool (spec.md §3). It does
// not recursively release field handles — a caller tearing down a tree
// that still has live data should walk it with an Iterator first and
// release each FieldSet, mirroring the original's explicit free_nodes
// recursion (original_source/Source/BidirQuadTree.hpp) rather than hiding
// that cost in a destructor.
func (t *QuadTree[V]) Close() {
	t.nodes.Close()
}

// Branch implements spec.md §4.4: promotes slots[slot] of node from Data to
// Child, moving the old FieldSet into the new child's redux and populating
// the child's four slots from the provider.
func (t *QuadTree[V]) Branch(node Handle[QuadNode[V]], slot RelPos) (Handle[QuadNode[V]], error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	parent := node.Get()
	if parent.SlotIsChild(slot) {
		return Handle[QuadNode[V]]{}, newError("Branch", AlreadyBranched)
	}

	oldData, _ := parent.slots[slot].Data()

	child := t.nodes.AcquireEmplace(func() QuadNode[V] {
		return QuadNode[V]{
			scale:     parent.scale + 1,
			relPos:    slot,
			hasParent: true,
			parent:    node,
			redux:     oldData,
			slots: [4]Slot[V]{
				dataSlot(t.provider.Get()),
				dataSlot(t.provider.Get()),
				dataSlot(t.provider.Get()),
				dataSlot(t.provider.Get()),
			},
		}
	})

	parent.slots[slot] = childSlot[V](child)
	parent.markChild(int(slot), true)

	t.invalidateCache()
	return child, nil
}

// Prune implements spec.md §4.4: collapses node (which must have four Data
// slots) back into its parent's slot at node.RelPos, using node.Redux() as
// the new Data. The caller is responsible for having folded each slot's
// data into node.Redux() beforehand via Downsample — Prune itself never
// touches tile contents.
func (t *QuadTree[V]) Prune(node Handle[QuadNode[V]]) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := node.Get()
	if !n.hasParent {
		return newError("Prune", PruneRoot)
	}
	if n.isChild != 0 {
		return newError("Prune", PruneHasChildren)
	}

	parent := n.parent.Get()
	parent.slots[n.relPos] = dataSlot(n.redux)
	parent.markChild(int(n.relPos), false)

	for i := range n.slots {
		if fs, ok := n.slots[i].Data(); ok {
			fs.Release()
		}
	}

	node.Release()

	t.invalidateCache()
	return nil
}

// targetScale computes N = max(0, ceil(log2(physical_length/h)) - p - 1),
// spec.md §4.4's grow_to_resolution target level.
func (t *QuadTree[V]) targetScale(h float64) int {
	n := math.Ceil(math.Log2(t.physicalLength/h)) - TileLenPower - 1
	if n < 0 {
		return 0
	}
	return int(n)
}

// GrowToResolution implements spec.md §4.4: branches every Data slot,
// depth-first, until the tree is a complete 4-ary refinement whose Data
// tiles all live at absolute scale N. A tree that already is exactly that
// refinement is left unchanged, so a second call with the same h is a
// no-op. Otherwise the walk is defined only on a pristine subtree — any
// Child slot encountered before reaching that depth is a precondition
// violation (GrowIntoExistingSubtree), not a signal to stop early.
//
// Data tiles are yielded at node.scale+1 (spec.md §4.7), so reaching data
// scale N means the deepest QuadNodes — the ones still holding Data slots
// rather than Child slots — must stop at node scale N-1, one level
// shallower than N itself.
func (t *QuadTree[V]) GrowToResolution(h float64) error {
	nodeTarget := t.targetScale(h) - 1

	t.mu.RLock()
	var complete func(h Handle[QuadNode[V]]) bool
	complete = func(h Handle[QuadNode[V]]) bool {
		n := h.Get()
		if int(n.scale) >= nodeTarget {
			return n.isChild == 0
		}
		for s := RelPos(0); s < 4; s++ {
			ch, ok := n.slots[s].Child()
			if !ok || !complete(ch) {
				return false
			}
		}
		return true
	}
	done := complete(t.root)
	t.mu.RUnlock()

	if done {
		return nil
	}
	return t.growNode(t.root, nodeTarget)
}

func (t *QuadTree[V]) growNode(node Handle[QuadNode[V]], target int) error {
	n := node.Get()
	if int(n.scale) >= target {
		return nil
	}

	for s := RelPos(0); s < 4; s++ {
		if n.SlotIsChild(s) {
			return newError("GrowToResolution", GrowIntoExistingSubtree)
		}
		child, err := t.Branch(node, s)
		if err != nil {
			return err
		}
		if err := t.growNode(child, target); err != nil {
			return err
		}
		n = node.Get() // re-fetch: Branch mutated node's slots
	}
	return nil
}

// Neighbor implements spec.md §4.5. Calling it on the root itself returns
// (root, OutOfBounds, nil) rather than an error, since the root bounds the
// whole domain and "no neighbor" is exactly what OutOfBounds means.
func (t *QuadTree[V]) Neighbor(c Handle[QuadNode[V]], d Direction) (Handle[QuadNode[V]], Qualifier, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	res := t.cachedLookup(c, d)
	return res.node, res.qualifier, nil
}

type lookupResult[V Numeric] struct {
	qualifier Qualifier
	node      Handle[QuadNode[V]]
	scale     uint8
}

// cachedLookup wraps lookup with the four-direction, (parent, relPos)-keyed
// cache from spec.md §4.5. Must be called with at least t.mu RLock held;
// its callers are Neighbor and the recursive step of lookup, both of which
// run under that lock.
func (t *QuadTree[V]) cachedLookup(c Handle[QuadNode[V]], d Direction) lookupResult[V] {
	n := c.Get()
	if !n.hasParent {
		return lookupResult[V]{qualifier: OutOfBounds, node: c, scale: n.scale}
	}

	key := cacheKey[V]{parent: n.parent, rel: n.relPos}
	if res, ok := t.cache.get(d, key); ok {
		return res
	}

	res := t.lookup(c, d)
	t.cache.put(d, key, res)
	return res
}

// lookup is the recursive core of Neighbor, expressed exactly as spec.md
// §4.5 describes it: "from the parent's perspective, answering the
// question 'which of my slots, if any, is my child's neighbor?'"
func (t *QuadTree[V]) lookup(c Handle[QuadNode[V]], d Direction) lookupResult[V] {
	n := c.Get()
	if !n.hasParent {
		return lookupResult[V]{qualifier: OutOfBounds, node: c, scale: n.scale}
	}

	parent := n.parent.Get()

	if s, ok := sibling(n.relPos, d); ok {
		if parent.SlotIsChild(s) {
			ch, _ := parent.slots[s].Child()
			return lookupResult[V]{qualifier: SameLevelChild, node: ch, scale: ch.Get().scale}
		}
		return lookupResult[V]{qualifier: IsData, node: n.parent, scale: parent.scale}
	}

	// No sibling within parent: the neighbor lies outside it. If parent is
	// root there is nowhere further to climb.
	if !parent.hasParent {
		return lookupResult[V]{qualifier: OutOfBounds, node: n.parent, scale: parent.scale}
	}

	nested := t.cachedLookup(n.parent, d)

	switch nested.qualifier {
	case OutOfBounds, InterpNeeded:
		return nested // propagate unchanged

	case SameLevelChild, SameLevelNode:
		if nested.scale != parent.scale {
			// Coarser than C: nested didn't resolve to a true sibling at
			// parent's own scale, so the genuine neighbor is coarser.
			return lookupResult[V]{qualifier: InterpNeeded, node: nested.node, scale: nested.scale}
		}
		anc := nested.node.Get()
		s2, ok := sibling(n.relPos, reflect(d))
		if !ok {
			// Structurally unreachable: s was "—" for d, and the sibling
			// table is symmetric under reflection for every RelPos, so the
			// reflected lookup always has an entry.
			return lookupResult[V]{qualifier: IsData, node: nested.node, scale: anc.scale}
		}
		if anc.SlotIsChild(s2) {
			ch, _ := anc.slots[s2].Child()
			return lookupResult[V]{qualifier: SameLevelNode, node: ch, scale: ch.Get().scale}
		}
		return lookupResult[V]{qualifier: IsData, node: nested.node, scale: anc.scale}

	case IsData:
		// The ancestor chain bottomed out at a Data cell: no refinement
		// exists at C's scale in that direction, so the real neighbor is
		// coarser and must be interpolated from it.
		return lookupResult[V]{qualifier: InterpNeeded, node: nested.node, scale: nested.scale}

	default:
		return lookupResult[V]{qualifier: OutOfBounds, node: n.parent, scale: parent.scale}
	}
}

// cacheKey identifies a cached neighbor-search entry by the querying
// node's parent and its position within that parent (spec.md §4.5:
// "(parent_address, child_rel_pos)"); the direction selects which of the
// four per-direction maps to use.
type cacheKey[V Numeric] struct {
	parent Handle[QuadNode[V]]
	rel    RelPos
}

// neighborCache guards its maps with its own mutex, independent of the
// tree's t.mu. Neighbor only takes t.mu.RLock(), so multiple Neighbor calls
// can run concurrently on different goroutines (the tree's many-reader
// design); without a lock of its own here, their concurrent cache.put calls
// into the same map would race. spec.md §9 calls this out explicitly: "the
// neighbor cache behind its own writer lock is a clean scaling step."
type neighborCache[V Numeric] struct {
	mu          sync.Mutex
	byDirection [4]map[cacheKey[V]]lookupResult[V]
}

func newNeighborCache[V Numeric]() *neighborCache[V] {
	c := &neighborCache[V]{}
	for i := range c.byDirection {
		c.byDirection[i] = make(map[cacheKey[V]]lookupResult[V])
	}
	return c
}

func (c *neighborCache[V]) get(d Direction, k cacheKey[V]) (lookupResult[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.byDirection[d][k]
	return res, ok
}

func (c *neighborCache[V]) put(d Direction, k cacheKey[V], res lookupResult[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byDirection[d][k] = res
}

// invalidateCache drops every cached entry. spec.md §4.5 calls for
// invalidating "every cached entry keyed by any ancestor of the modified
// node," but a mutation's effects can also surface in entries keyed by
// nodes whose recursive search passed *through* the modified node (the
// "descend one level" step reads a found ancestor's slots directly without
// its own cache entry) — the affected set is the mutated node's entire
// lineage in both directions, not just its ancestors. Tracking that
// precisely would need a reverse index from node to every query that
// recursed through it, which buys nothing: Branch/Prune are already O(1)
// and rare compared to Neighbor queries between mutations, so a full clear
// is the correctness-first choice here.
func (t *QuadTree[V]) invalidateCache() {
	t.cache = newNeighborCache[V]()
}
