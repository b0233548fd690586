package quadtree

import "strconv"

// RelPos is a node's position inside its parent's four slots. HEAD is used
// only by the root, which has no parent slot to occupy.
type RelPos uint8

const (
	UL RelPos = iota
	UR
	DL
	DR
	HEAD
)

func (p RelPos) String() string {
	switch p {
	case UL:
		return "UL"
	case UR:
		return "UR"
	case DL:
		return "DL"
	case DR:
		return "DR"
	case HEAD:
		return "HEAD"
	default:
		return "?"
	}
}

// MaxScale is the deepest scale at which 2^-scale * physical_length stays
// at or above a single cell's width at the configured TileLenPower. uint8
// scale storage (spec.md §3) caps depth at 255 regardless, but a solver
// working in single precision runs out of useful resolution long before
// that; 40 levels is already far past any floating-point-meaningful cell
// size. No operation in this package checks it: Branch and
// GrowToResolution create nodes deeper than MaxScale without error.
const MaxScale = 40

// QuadNode is a tree node: four slots, each either Data (a FieldSet) or
// Child (a reference to another QuadNode), a parent back-reference, a
// multigrid-reduction FieldSet, and bookkeeping for scale and
// position-within-parent (spec.md §3).
//
// Parent and child references are Pool handles rather than raw pointers —
// the arena-indexed-handle design from spec.md §9 ("Use an arena-indexed
// handle rather than a raw pointer... This eliminates both the cyclic-
// ownership hazard and the need for manual ring-handling during
// destruction"). The Data/Child union is a tagged struct rather than an
// unsafe union: Go has no union type, and the original's `child_ptr` union
// (original_source/Source/BidirQuadTree.hpp) is exactly the hazard those
// design notes call out — its destructor "leaves data unhandled," relying
// on external code to know which arm is live. Slot.isChild is the single
// source of truth here instead, and QuadNode.isChild is kept as a derived
// fast-scan bitmask the same way the spec requires.
type QuadNode[V Numeric] struct {
	scale  uint8
	relPos RelPos

	hasParent bool
	parent    Handle[QuadNode[V]]

	redux FieldSet[V]

	slots   [4]Slot[V]
	isChild byte // bit i set iff slots[i] is a Child; derived, not authoritative
}

// Slot is the tagged union of a QuadNode child: either Data(FieldSet) or
// Child(NodeRef). IsChild is the tag; exactly one of the accessors below is
// meaningful at a time.
type Slot[V Numeric] struct {
	isChild bool
	data    FieldSet[V]
	child   Handle[QuadNode[V]]
}

// IsChild reports whether this slot holds a child node reference.
func (s Slot[V]) IsChild() bool { return s.isChild }

// Data returns the slot's FieldSet and true, or the zero FieldSet and false
// if this slot holds a Child instead.
func (s Slot[V]) Data() (FieldSet[V], bool) {
	if s.isChild {
		return FieldSet[V]{}, false
	}
	return s.data, true
}

// Child returns the slot's child handle and true, or the zero Handle and
// false if this slot holds Data instead.
func (s Slot[V]) Child() (Handle[QuadNode[V]], bool) {
	if !s.isChild {
		return Handle[QuadNode[V]]{}, false
	}
	return s.child, true
}

func dataSlot[V Numeric](fs FieldSet[V]) Slot[V] {
	return Slot[V]{isChild: false, data: fs}
}

func childSlot[V Numeric](ref Handle[QuadNode[V]]) Slot[V] {
	return Slot[V]{isChild: true, child: ref}
}

// markChild keeps the is_child bitmask in sync with a slot's tag, the
// derived-property relationship spec.md §9 calls for.
func (n *QuadNode[V]) markChild(i int, isChild bool) {
	if isChild {
		SetBit8(&n.isChild, i)
	} else {
		ClearBit8(&n.isChild, i)
	}
}

// Scale returns the node's tree depth (0 at root).
func (n *QuadNode[V]) Scale() uint8 { return n.scale }

// RelPos returns the node's position inside its parent (HEAD at root).
func (n *QuadNode[V]) RelPos() RelPos { return n.relPos }

// IsRoot reports whether n has no parent.
func (n *QuadNode[V]) IsRoot() bool { return !n.hasParent }

// Parent returns the node's parent handle and true, or the zero handle and
// false at the root.
func (n *QuadNode[V]) Parent() (Handle[QuadNode[V]], bool) {
	if !n.hasParent {
		return Handle[QuadNode[V]]{}, false
	}
	return n.parent, true
}

// Slot returns a copy of slots[i] (i in 0..3, indexed UL/UR/DL/DR).
func (n *QuadNode[V]) Slot(i RelPos) Slot[V] {
	return n.slots[i]
}

// SlotIsChild reports whether slots[i] currently holds a Child reference.
func (n *QuadNode[V]) SlotIsChild(i RelPos) bool {
	return IsBitSet8(n.isChild, int(i))
}

// Redux returns the node's multigrid-reduction FieldSet.
func (n *QuadNode[V]) Redux() *FieldSet[V] { return &n.redux }

// DebugString renders the same per-slot introspection the original's
// print_traits() did (original_source/Source/BidirQuadTree.hpp), minus raw
// addresses — a pool Handle is opaque, so identity is reported by scale and
// relative position instead of a pointer value.
func (n *QuadNode[V]) DebugString() string {
	s := "[QuadNode] scale=" + strconv.Itoa(int(n.scale)) + " relPos=" + n.relPos.String() + "\n"
	for i, name := range [4]string{"UL", "UR", "DL", "DR"} {
		if n.SlotIsChild(RelPos(i)) {
			s += "  " + name + ": Child\n"
		} else {
			s += "  " + name + ": Data\n"
		}
	}
	return s
}
