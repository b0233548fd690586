// Package quadtree implements a bidirectional adaptive-mesh quadtree over
// fixed-size tiles, for use as the spatial backbone of a 2-D multigrid
// solver.
//
// A QuadTree owns a pool of QuadNodes; each node holds four slots that are
// either Data (a FieldSet of pooled Phi/Rho/BoundaryMask tiles) or Child (a
// reference to a finer QuadNode). Branch and Prune move a node between
// those two states one level at a time, always respecting 2:1 refinement.
// Neighbor answers "what touches this tile's north/south/east/west edge"
// across arbitrary level differences, caching its answer per (parent,
// position) pair until the next mutation.
//
// Downsample, ProlongateBilinear, and SyncGhost move data between levels:
// folding four fine tiles into one coarse tile, pushing one coarse tile
// into four fine tiles, and filling a tile's ghost perimeter from a
// same- or coarser-scale neighbor.
//
// Iterator walks every Data tile (and, optionally, every interior node's
// multigrid-reduction tile) depth-first, reporting each tile's normalized
// position and absolute scale.
package quadtree
