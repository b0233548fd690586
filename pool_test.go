package quadtree

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAcquireRelease(t *testing.T) {
	p := NewPool[int]()

	h := p.AcquireFrom(7)
	require.True(t, h.Valid())
	assert.Equal(t, 7, *h.Get())

	live, total := p.Stats()
	assert.EqualValues(t, 1, live)
	assert.EqualValues(t, 1, total)

	h.Release()
	assert.False(t, h.Valid())

	live, total = p.Stats()
	assert.EqualValues(t, 0, live)
	assert.EqualValues(t, 1, total)
}

func TestPoolReleaseIdempotent(t *testing.T) {
	p := NewPool[int]()
	h := p.Acquire()
	h.Release()
	require.NotPanics(t, func() { h.Release() })
}

func TestPoolMultipleHandlesIndependent(t *testing.T) {
	p := NewPool[string]()
	a := p.AcquireFrom("a")
	b := p.AcquireFrom("b")

	assert.Equal(t, "a", *a.Get())
	assert.Equal(t, "b", *b.Get())

	a.Release()
	assert.Equal(t, "b", *b.Get())

	live, _ := p.Stats()
	assert.EqualValues(t, 1, live)
}

func TestPoolCloseReportsLeak(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	p := NewPool[int](WithLogger[int](logger))
	p.Acquire()
	p.Close()

	assert.Contains(t, buf.String(), "resource leak")
}

func TestPoolCloseSilentWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	p := NewPool[int](WithLogger[int](logger))
	h := p.Acquire()
	h.Release()
	p.Close()

	assert.Empty(t, buf.String())
}

func TestPoolGetOnInvalidHandlePanics(t *testing.T) {
	var h Handle[int]
	assert.Panics(t, func() { h.Get() })
}
