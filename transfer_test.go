package quadtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillLinear(t *Tile[float64]) {
	for r := 0; r < TileLen; r++ {
		for c := 0; c < TileLen; c++ {
			t.Set(r, c, float64(r*TileLen+c))
		}
	}
}

// TestDownsampleMean matches spec.md scenario S3: destination cell (i,j)
// equals the mean of the matching 2x2 source quadrant block.
func TestDownsampleMean(t *testing.T) {
	var ul, ur, dl, dr, dst Tile[float64]
	for _, ch := range []*Tile[float64]{&ul, &ur, &dl, &dr} {
		fillLinear(ch)
	}

	Downsample(&dst, [4]*Tile[float64]{&ul, &ur, &dl, &dr}, nil, ReductionMean)

	half := TileLen / 2
	for i := 0; i < TileLen; i++ {
		for j := 0; j < TileLen; j++ {
			var ch *Tile[float64]
			var cr, cc int
			switch {
			case i < half && j < half:
				ch, cr, cc = &ul, i*2, j*2
			case i < half:
				ch, cr, cc = &ur, i*2, (j-half)*2
			case j < half:
				ch, cr, cc = &dl, (i-half)*2, j*2
			default:
				ch, cr, cc = &dr, (i-half)*2, (j-half)*2
			}
			want := (ch.Get(cr, cc) + ch.Get(cr, cc+1) + ch.Get(cr+1, cc) + ch.Get(cr+1, cc+1)) / 4
			assert.InDelta(t, want, dst.Get(i, j), 1e-9)
		}
	}
}

func TestDownsampleMeanUniformIsIdentity(t *testing.T) {
	var ul, ur, dl, dr, dst Tile[float64]
	for _, ch := range []*Tile[float64]{&ul, &ur, &dl, &dr} {
		ch.Fill(3.5)
	}

	Downsample(&dst, [4]*Tile[float64]{&ul, &ur, &dl, &dr}, nil, ReductionMean)

	dst.Iterate(func(r, c int, v float64) {
		require.InDelta(t, 3.5, v, 1e-12)
	})
}

func TestDownsampleSkipsMaskedCells(t *testing.T) {
	var ul, ur, dl, dr, dst Tile[float64]
	var mask BoundaryMask
	for _, ch := range []*Tile[float64]{&ul, &ur, &dl, &dr} {
		ch.Fill(1)
	}
	dst.Fill(-1)
	mask.Set(0, 0, BoundaryDirichlet)

	Downsample(&dst, [4]*Tile[float64]{&ul, &ur, &dl, &dr}, &mask, ReductionMean)

	assert.Equal(t, -1.0, dst.Get(0, 0))
	assert.Equal(t, 1.0, dst.Get(1, 1))
}

// TestProlongateConservativePreservesSum matches spec.md scenario S6: the
// Conservative variant's destination sum equals the source sum (each coarse
// cell's 2x2 destination block is rescaled to sum to that one coarse
// value, so the total across all four children matches the coarse tile's
// total exactly).
func TestProlongateConservativePreservesSum(t *testing.T) {
	var src Tile[float64]
	fillLinear(&src)
	var srcSum float64
	src.Iterate(func(r, c int, v float64) { srcSum += v })

	var ul, ur, dl, dr Tile[float64]
	children := [4]*Tile[float64]{&ul, &ur, &dl, &dr}
	ProlongateBilinear(&src, children, [4]*BoundaryMask{nil, nil, nil, nil}, Conservative)

	var dstSum float64
	for _, ch := range children {
		ch.Iterate(func(r, c int, v float64) { dstSum += v })
	}

	assert.InDelta(t, srcSum, dstSum, 1e-6)
}

func TestProlongatePointwiseNoNaN(t *testing.T) {
	var src Tile[float64]
	fillLinear(&src)

	var ul, ur, dl, dr Tile[float64]
	children := [4]*Tile[float64]{&ul, &ur, &dl, &dr}
	ProlongateBilinear(&src, children, [4]*BoundaryMask{nil, nil, nil, nil}, Pointwise)

	for _, ch := range children {
		ch.Iterate(func(r, c int, v float64) {
			require.False(t, v != v, "NaN at (%d,%d)", r, c)
		})
	}
}

func TestSyncGhostDirectCopy(t *testing.T) {
	var src, dst Tile[float64]
	fillLinear(&src)

	SyncGhost(&dst, EdgeBottom, &src, 0)

	for c := 0; c < TileLen; c++ {
		assert.Equal(t, src.Get(0, c), dst.GetGhost(TileLen+1, c+1))
	}
}

func TestSyncGhostCoarserInterpolates(t *testing.T) {
	var coarse, dst Tile[float64]
	for i := 0; i < TileLen; i++ {
		coarse.Set(TileLen-1, i, float64(i))
	}

	SyncGhost(&dst, EdgeTop, &coarse, 1)

	// Even fine indices take the coarse value directly; odd indices average
	// adjacent coarse cells.
	assert.Equal(t, coarse.Get(TileLen-1, 0), dst.GetGhost(0, 1))
}
