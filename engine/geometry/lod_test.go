package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func TestLodAccuracyIsClamped(t *testing.T) {
	b := headless.New()
	assert.Equal(t, float32(0), NewLod(b, -1).Accuracy())
	assert.Equal(t, float32(1), NewLod(b, 3).Accuracy())
	assert.Equal(t, float32(0.25), NewLod(b, 0.25).Accuracy())
}

func TestLodCreateIndexBuffers(t *testing.T) {
	b := headless.New()
	l := NewLod(b, 0)
	l.SetIndices(metadata.IndexKindTriangles, []uint32{0, 1, 2})
	l.SetIndices(metadata.IndexKindFans, []uint32{0, 1, 2, 3})

	l.CreateIndexBuffers()
	triangles := l.IndexBufferHandle(metadata.IndexKindTriangles)
	assert.NotZero(t, triangles)
	assert.NotZero(t, l.IndexBufferHandle(metadata.IndexKindFans))
	assert.Zero(t, l.IndexBufferHandle(metadata.IndexKindStrips))

	gens := b.CallCount("GenBuffer")
	l.CreateIndexBuffers()
	assert.Equal(t, gens, b.CallCount("GenBuffer"))
	assert.Equal(t, triangles, l.IndexBufferHandle(metadata.IndexKindTriangles))

	assert.False(t, l.UseIndexBuffer(metadata.IndexKindStrips))
	assert.True(t, l.UseIndexBuffer(metadata.IndexKindTriangles))
	assert.Equal(t, triangles, b.Bound(metadata.BufferTargetElementArray))
}

func TestLodSetIndicesUploadsWhenCreated(t *testing.T) {
	b := headless.New()
	l := NewLod(b, 0)
	l.SetIndices(metadata.IndexKindTriangles, []uint32{0, 1, 2})
	l.CreateIndexBuffers()
	l.Upload()
	h := l.IndexBufferHandle(metadata.IndexKindTriangles)
	assert.Equal(t, indicesToBytes([]uint32{0, 1, 2}), b.BufferContents(h))

	l.SetIndices(metadata.IndexKindTriangles, []uint32{2, 1, 0, 0, 1, 3})
	assert.Equal(t, indicesToBytes([]uint32{2, 1, 0, 0, 1, 3}), b.BufferContents(h))
	assert.Equal(t, 6, l.IndexCount(metadata.IndexKindTriangles))
}

func TestLodCloneDoesNotShareBuffers(t *testing.T) {
	b := headless.New()
	l := NewLod(b, 0.5)
	l.SetIndices(metadata.IndexKindStrips, []uint32{0, 1, 2, 3})
	l.CreateIndexBuffers()

	c := l.Clone()
	assert.Equal(t, l.Accuracy(), c.Accuracy())
	assert.Equal(t, l.Indices(metadata.IndexKindStrips), c.Indices(metadata.IndexKindStrips))
	assert.Zero(t, c.IndexBufferHandle(metadata.IndexKindStrips))

	c.CreateIndexBuffers()
	require.NotEqual(t, l.IndexBufferHandle(metadata.IndexKindStrips), c.IndexBufferHandle(metadata.IndexKindStrips))

	l.Release()
	c.Release()
	assert.Zero(t, b.LiveBuffers())
}

func TestLodSetIndicesAfterCreate(t *testing.T) {
	b := headless.New()
	lod := NewLod(b, 0)
	lod.CreateIndexBuffers()
	assert.Zero(t, lod.IndexBufferHandle(metadata.IndexKindStrips))

	lod.SetIndices(metadata.IndexKindFans, nil)
	assert.Zero(t, lod.IndexBufferHandle(metadata.IndexKindFans))

	lod.SetIndices(metadata.IndexKindStrips, []uint32{0, 1, 2, 3})
	h := lod.IndexBufferHandle(metadata.IndexKindStrips)
	require.NotZero(t, h)
	assert.Equal(t, indicesToBytes([]uint32{0, 1, 2, 3}), b.BufferContents(h))

	lod.Release()
	lod.SetIndices(metadata.IndexKindTriangles, []uint32{0, 1, 2})
	assert.Zero(t, lod.IndexBufferHandle(metadata.IndexKindTriangles))
}
