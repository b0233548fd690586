package quadtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPooledFieldProviderGet(t *testing.T) {
	p := NewPooledFieldProvider[float64]()
	defer p.Close()

	fs := p.Get()
	require.True(t, fs.Phi.Valid())
	require.True(t, fs.Rho.Valid())
	require.True(t, fs.Bounds.Valid())
}

func TestFieldSetRelease(t *testing.T) {
	p := NewPooledFieldProvider[float64]()

	fs := p.Get()
	fs.Release()

	assert.False(t, fs.Phi.Valid())
	assert.False(t, fs.Rho.Valid())
	assert.False(t, fs.Bounds.Valid())

	p.Close() // should report no leaks
}

func TestPooledFieldProviderIndependentFieldSets(t *testing.T) {
	p := NewPooledFieldProvider[int]()
	defer p.Close()

	a := p.Get()
	b := p.Get()

	a.Phi.Get().Set(0, 0, 5)
	b.Phi.Get().Set(0, 0, 9)

	assert.Equal(t, 5, a.Phi.Get().Get(0, 0))
	assert.Equal(t, 9, b.Phi.Get().Get(0, 0))

	a.Release()
	b.Release()
}
