package quadtree

import "fmt"

// ErrorKind is the closed set of error conditions this package raises
// (spec.md §7). Callers dispatch on Kind rather than string-matching, the
// same os.PathError / net.OpError convention the standard library uses for
// a similarly small, fixed set of operation failures.
type ErrorKind uint8

const (
	// AlreadyBranched: Branch's target slot is already a Child.
	AlreadyBranched ErrorKind = iota + 1
	// PruneHasChildren: Prune was asked to collapse a node that still has
	// at least one Child slot.
	PruneHasChildren
	// PruneRoot: Prune was asked to collapse the tree's root.
	PruneRoot
	// GrowIntoExistingSubtree: GrowToResolution found a non-Data slot while
	// walking what must be a pristine subtree.
	GrowIntoExistingSubtree
	// KindOutOfBounds: a neighbor search walked past the root without
	// finding a cell. Neighbor itself reports this case as the OutOfBounds
	// Qualifier with a nil error and never returns this kind.
	KindOutOfBounds
	// KindInterpNeeded: a neighbor search found a coarser ancestor whose
	// redux tile must be prolongated. Neighbor itself reports this case as
	// the InterpNeeded Qualifier with a nil error and never returns this kind.
	KindInterpNeeded
)

func (k ErrorKind) String() string {
	switch k {
	case AlreadyBranched:
		return "AlreadyBranched"
	case PruneHasChildren:
		return "PruneHasChildren"
	case PruneRoot:
		return "PruneRoot"
	case GrowIntoExistingSubtree:
		return "GrowIntoExistingSubtree"
	case KindOutOfBounds:
		return "OutOfBounds"
	case KindInterpNeeded:
		return "InterpNeeded"
	default:
		return "Unknown"
	}
}

// Error is returned by every mutating operation in this package that can
// fail. Op names the method that raised it (e.g. "Branch", "Prune"); Kind
// is one of the constants above and is what
// callers should switch on.
type Error struct {
	Op   string
	Kind ErrorKind
}

func (e *Error) Error() string {
	return fmt.Sprintf("quadtree: %s: %s", e.Op, e.Kind)
}

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, &Error{Kind: AlreadyBranched}) or, more idiomatically,
// check via errors.As and compare Kind directly.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func newError(op string, kind ErrorKind) *Error {
	return &Error{Op: op, Kind: kind}
}
