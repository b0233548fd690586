package quadtree

// Transfer kernels move data between a parent tile and its four children:
// Downsample folds children up into a coarser parent cell, ProlongateBilinear
// pushes a parent cell down into finer children, and SyncGhost fills a
// tile's ghost ring from a same- or coarser-scale neighbor. Downsample and
// ProlongateBilinear skip any destination cell whose BoundaryMask entry is
// non-zero (spec.md §3, §4.6): a Dirichlet or Neumann cell's value is owned
// by the boundary condition, never by a transfer kernel. SyncGhost takes no
// mask and writes every cell of the ghost edge it fills.
//
// Grounded on original_source/Source/Physics.hpp's restrict/prolongate pair
// and the ghost-fill routines in Array2D.hpp; generalized here from the
// original's hard-coded electrostatic fields to any Numeric V.

// ReductionKind selects how Downsample combines four child cells into one
// parent cell.
type ReductionKind uint8

const (
	// ReductionMean: parent = average of the four children (used for
	// intensive quantities like potential).
	ReductionMean ReductionKind = iota
	// ReductionSum: parent = sum of the four children (used for extensive
	// quantities like charge, so total charge is conserved across scales).
	ReductionSum
)

// Downsample folds the interior of four same-scale child tiles (ordered
// UL, UR, DL, DR) into one coarser destination tile, skipping any
// destination cell marked non-interior in mask.
func Downsample[V Numeric](dst *Tile[V], children [4]*Tile[V], mask *BoundaryMask, kind ReductionKind) {
	for r := 0; r < TileLen; r++ {
		for c := 0; c < TileLen; c++ {
			if mask != nil && mask.Get(r, c) != BoundaryInterior {
				continue
			}

			// Each parent cell (r, c) corresponds to a 2x2 block of child
			// cells at (2r, 2c) in whichever child quadrant the block falls
			// in, same addressing convention as original's restrict().
			childIdx, cr, cc := childQuadrant(r, c)
			ch := children[childIdx]

			sum := ch.Get(cr, cc) + ch.Get(cr, cc+1) + ch.Get(cr+1, cc) + ch.Get(cr+1, cc+1)
			if kind == ReductionSum {
				dst.Set(r, c, sum)
			} else {
				dst.Set(r, c, sum/V(4))
			}
		}
	}
}

// childQuadrant maps a coarse-tile cell (r, c), 0..L-1, to which child
// quadrant holds the corresponding fine 2x2 block and that block's local
// coordinates within the child's own L×L interior.
func childQuadrant(r, c int) (idx RelPos, cr, cc int) {
	half := TileLen / 2
	switch {
	case r < half && c < half:
		return UL, r * 2, c * 2
	case r < half && c >= half:
		return UR, r * 2, (c - half) * 2
	case r >= half && c < half:
		return DL, (r - half) * 2, c * 2
	default:
		return DR, (r - half) * 2, (c - half) * 2
	}
}

// ProlongationKind selects the interpolation scheme ProlongateBilinear uses.
type ProlongationKind uint8

const (
	// Pointwise: each fine cell takes the bilinearly interpolated value at
	// its own center, independent of neighbors' totals.
	Pointwise ProlongationKind = iota
	// Conservative: fine cell values are additionally scaled so that their
	// sum over a 2x2 block equals the coarse cell's own value (conservation
	// for extensive quantities: total mass over the four children matches
	// the coarse tile's total, not 4x it).
	Conservative
)

// ProlongateBilinear pushes the coarse tile src down into the four
// destination child tiles (ordered UL, UR, DL, DR), using bilinear
// interpolation from src's 2x2 neighborhood of each fine cell's source
// quadrant. Skips any destination cell marked non-interior in the
// corresponding child mask entry (masks may be nil to skip no cells).
func ProlongateBilinear[V Numeric](src *Tile[V], children [4]*Tile[V], masks [4]*BoundaryMask, kind ProlongationKind) {
	for childIdx := RelPos(0); childIdx < 4; childIdx++ {
		dst := children[childIdx]
		mask := masks[childIdx]

		for r := 0; r < TileLen; r++ {
			for c := 0; c < TileLen; c++ {
				if mask != nil && mask.Get(r, c) != BoundaryInterior {
					continue
				}

				sr, sc := coarseOrigin(childIdx, r, c)
				a, b, cc, d := bilinearCoeffs[V](r, c)

				v00 := src.Get(sr, sc)
				v10 := src.Get(sr+1, sc)
				v01 := src.Get(sr, sc+1)
				v11 := src.Get(sr+1, sc+1)

				dst.Set(r, c, v00*a+v10*b+v01*cc+v11*d)
			}
		}
	}

	if kind != Conservative {
		return
	}

	// Second pass: rescale each coarse cell's own 2x2 fine block (the same
	// block Downsample will later fold back with childQuadrant) so its sum
	// matches the coarse value exactly, rather than only approximately as
	// plain bilinear interpolation gives away from src's interior.
	for r := 0; r < TileLen; r++ {
		for c := 0; c < TileLen; c++ {
			childIdx, cr, cc := childQuadrant(r, c)
			dst := children[childIdx]
			mask := masks[childIdx]
			if mask != nil && (mask.Get(cr, cc) != BoundaryInterior || mask.Get(cr, cc+1) != BoundaryInterior ||
				mask.Get(cr+1, cc) != BoundaryInterior || mask.Get(cr+1, cc+1) != BoundaryInterior) {
				continue
			}

			v00 := dst.Get(cr, cc)
			v10 := dst.Get(cr, cc+1)
			v01 := dst.Get(cr+1, cc)
			v11 := dst.Get(cr+1, cc+1)
			sum := v00 + v10 + v01 + v11

			target := src.Get(r, c)
			if sum == 0 {
				quarter := src.Get(r, c) / V(4)
				dst.Set(cr, cc, quarter)
				dst.Set(cr, cc+1, quarter)
				dst.Set(cr+1, cc, quarter)
				dst.Set(cr+1, cc+1, quarter)
				continue
			}

			scale := target / sum
			dst.Set(cr, cc, v00*scale)
			dst.Set(cr, cc+1, v10*scale)
			dst.Set(cr+1, cc, v01*scale)
			dst.Set(cr+1, cc+1, v11*scale)
		}
	}
}

// coarseOrigin returns the coarse-tile cell whose 2x2 neighborhood
// (sr,sc)..(sr+1,sc+1) brackets fine cell (r,c) within the given child
// quadrant, using half-cell-offset addressing so a fine cell's interpolated
// value matches its true position within the coarse parent.
func coarseOrigin(child RelPos, r, c int) (sr, sc int) {
	half := TileLen / 2
	switch child {
	case UL:
		sr, sc = r/2, c/2
	case UR:
		sr, sc = r/2, half/2+c/2
	case DL:
		sr, sc = half/2+r/2, c/2
	default: // DR
		sr, sc = half/2+r/2, half/2+c/2
	}
	return sr, sc
}

// bilinearCoeffs returns the four bilinear weights for fine cell (r, c)
// against its bracketing coarse 2x2 neighborhood, in the order they are
// applied to (sr,sc), (sr+1,sc), (sr,sc+1), (sr+1,sc+1). They are per-corner
// weights summing to 1, not the A/B/C/D polynomial coefficients
// (A = q22-q12-q21+q11, ...) of the formula discussed below.
//
// This does not sample at the literal x,y ∈ {0, 1/3, 2/3, 1} grid spec.md
// §4.6 writes its A/B/C/D formula against: that grid assumes four fine
// cells between one coarse cell and the next, but a child tile here covers
// half its parent's domain width at the same TileLen, so there are only two
// fine cells per coarse interval. The weights below are the bilinear
// interpolant at the natural half-cell-offset position for that geometry
// (each fine cell centered a quarter or three-quarters of the way across
// its bracketing coarse pair) — see DESIGN.md's sampling-geometry note.
func bilinearCoeffs[V Numeric](r, c int) (a, b, cc, d V) {
	var wr, wc V
	if r%2 == 0 {
		wr = V(1) / V(4)
	} else {
		wr = V(3) / V(4)
	}
	if c%2 == 0 {
		wc = V(1) / V(4)
	} else {
		wc = V(3) / V(4)
	}
	a = (V(1) - wr) * (V(1) - wc)
	b = wr * (V(1) - wc)
	cc = (V(1) - wr) * wc
	d = wr * wc
	return a, b, cc, d
}

// SyncGhost fills one ghost edge of dst from a neighbor tile found via
// QuadTree.Neighbor. When the neighbor is same-scale (relativeScale == 0),
// this is a direct copy (Tile.SetGhostFromNeighbor); when the neighbor is
// coarser by one level (relativeScale == 1, the only gap 2:1 refinement
// permits; any non-zero value takes this path), the first L/2 cells of the
// neighbor's boundary row/column (indices 0..L/2-1) are linearly
// interpolated into the finer destination's L cells before copying. The
// second half of that row/column is never read, whichever half actually
// borders dst.
func SyncGhost[V Numeric](dst *Tile[V], e Edge, neighbor *Tile[V], relativeScale int) {
	if relativeScale == 0 {
		dst.SetGhostFromNeighbor(e, neighbor)
		return
	}

	// Coarser neighbor: extract its L/2 boundary cells along the shared
	// edge and linearly interpolate up to L fine cells.
	var coarseLine [TileLen / 2]V
	switch e {
	case EdgeTop:
		for i := 0; i < TileLen/2; i++ {
			coarseLine[i] = neighbor.Get(TileLen-1, i)
		}
	case EdgeBottom:
		for i := 0; i < TileLen/2; i++ {
			coarseLine[i] = neighbor.Get(0, i)
		}
	case EdgeLeft:
		for i := 0; i < TileLen/2; i++ {
			coarseLine[i] = neighbor.Get(i, TileLen-1)
		}
	case EdgeRight:
		for i := 0; i < TileLen/2; i++ {
			coarseLine[i] = neighbor.Get(i, 0)
		}
	}

	var fine [TileLen]V
	for i := 0; i < TileLen; i++ {
		coarseIdx := i / 2
		var next int
		if coarseIdx+1 < TileLen/2 {
			next = coarseIdx + 1
		} else {
			next = coarseIdx
		}
		if i%2 == 0 {
			fine[i] = coarseLine[coarseIdx]
		} else {
			fine[i] = (coarseLine[coarseIdx] + coarseLine[next]) / V(2)
		}
	}

	dst.SetGhostFromArray(e, fine)
}
