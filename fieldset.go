package quadtree

// FieldSet is a movable triple of pool handles bundling the per-node
// simulation state: potential (Phi), charge density (Rho), and the
// boundary-condition mask. Grounded directly on original_source's
// Physics.hpp PhysicsNode (MVar phi, rho; MBound bounds), generalized from
// that file's hard-coded physics types into handles over the caller's
// chosen scalar type V.
//
// Copy is forbidden by convention, matching PhysicsNode's deleted copy
// constructor: a FieldSet's handles are moved, never duplicated, when a
// node is branched or pruned. Go has no way to enforce this statically, so
// QuadTree's Branch/Prune are the only code in this package that move a
// FieldSet's handles between nodes; callers should treat a FieldSet as
// owned by whichever QuadNode currently holds it.
type FieldSet[V Numeric] struct {
	Phi    Handle[Tile[V]]
	Rho    Handle[Tile[V]]
	Bounds Handle[BoundaryMask]
}

// Release returns all three handles to their pools. QuadTree.Prune calls it
// for each Data slot of the node it destroys. QuadTree.Branch does not call
// it: when a Data slot is promoted to a Child, the old FieldSet moves into
// the new child's redux instead.
func (fs *FieldSet[V]) Release() {
	fs.Phi.Release()
	fs.Rho.Release()
	fs.Bounds.Release()
}

// FieldProvider is the capability contract (spec.md §6) the physics layer
// supplies: Get returns a freshly pool-backed FieldSet ready to seed a new
// QuadNode slot. The tree calls this on Branch and on root construction; it
// never inspects or initializes field contents itself — that's the
// provider's job, same separation as PhysicsData<T>::get() in the original.
type FieldProvider[V Numeric] interface {
	Get() FieldSet[V]
}

// PooledFieldProvider is the reference FieldProvider: three Pools, one per
// field, each handing out zero-valued tiles. It is the Go analogue of
// PhysicsData<T> minus the physics — this core doesn't discretize anything,
// it just needs somewhere for tiles to live.
type PooledFieldProvider[V Numeric] struct {
	phi    *Pool[Tile[V]]
	rho    *Pool[Tile[V]]
	bounds *Pool[BoundaryMask]
}

// NewPooledFieldProvider constructs a provider backed by three fresh pools.
func NewPooledFieldProvider[V Numeric]() *PooledFieldProvider[V] {
	return &PooledFieldProvider[V]{
		phi:    NewPool[Tile[V]](),
		rho:    NewPool[Tile[V]](),
		bounds: NewPool[BoundaryMask](),
	}
}

// Get implements FieldProvider.
func (p *PooledFieldProvider[V]) Get() FieldSet[V] {
	return FieldSet[V]{
		Phi:    p.phi.Acquire(),
		Rho:    p.rho.Acquire(),
		Bounds: p.bounds.Acquire(),
	}
}

// Close reports leak diagnostics for all three backing pools (spec.md §3).
func (p *PooledFieldProvider[V]) Close() {
	p.phi.Close()
	p.rho.Close()
	p.bounds.Close()
}
