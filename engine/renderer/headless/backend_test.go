package headless

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func TestBufferLifecycle(t *testing.T) {
	b := New()

	h := b.GenBuffer()
	require.NotZero(t, h)
	assert.True(t, b.IsLive(h))
	assert.Equal(t, 1, b.LiveBuffers())

	b.BindBuffer(metadata.BufferTargetArray, h)
	b.BufferData(metadata.BufferTargetArray, []byte{1, 2, 3, 4})
	assert.Equal(t, []byte{1, 2, 3, 4}, b.BufferContents(h))

	data, err := b.MapBuffer(metadata.BufferTargetArray)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
	assert.True(t, b.IsMapped(metadata.BufferTargetArray))

	_, err = b.MapBuffer(metadata.BufferTargetArray)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	assert.True(t, b.UnmapBuffer(metadata.BufferTargetArray))
	assert.NoError(t, b.CheckError())
	assert.False(t, b.UnmapBuffer(metadata.BufferTargetArray))
	assert.ErrorIs(t, b.CheckError(), ErrInvalidOperation)

	b.DeleteBuffer(h)
	assert.False(t, b.IsLive(h))
	assert.Zero(t, b.Bound(metadata.BufferTargetArray))
	assert.NoError(t, b.CheckError())

	b.DeleteBuffer(h)
	assert.Equal(t, 2, b.DeleteCount(h))
	assert.ErrorIs(t, b.CheckError(), ErrInvalidOperation)
	assert.NoError(t, b.CheckError())
}

func TestBindUnknownBuffer(t *testing.T) {
	b := New()
	b.BindBuffer(metadata.BufferTargetArray, 42)
	assert.ErrorIs(t, b.CheckError(), ErrInvalidOperation)
	assert.Zero(t, b.Bound(metadata.BufferTargetArray))

	b.BindBuffer(metadata.BufferTargetArray, 0)
	assert.NoError(t, b.CheckError())
}

func TestMatrixStack(t *testing.T) {
	b := New()
	require.Equal(t, 1, b.MatrixDepth())

	b.PushMatrix()
	b.MultMatrix(math.NewMat4Translation(math.NewVec3(1, 2, 3)))
	assert.Equal(t, 2, b.MatrixDepth())
	assert.Equal(t, float32(2), b.CurrentMatrix().Data[13])

	b.PopMatrix()
	assert.True(t, b.CurrentMatrix().IsIdentity())

	b.PopMatrix()
	assert.ErrorIs(t, b.CheckError(), ErrStackUnderflow)
}

func TestDrawElementsCapturesState(t *testing.T) {
	b := New()
	require.NoError(t, b.BeginFrame(0))

	vbo := b.GenBuffer()
	ibo := b.GenBuffer()
	b.BindBuffer(metadata.BufferTargetArray, vbo)
	b.EnableAttribute(metadata.BufferKindVertex, 3)
	b.BindBuffer(metadata.BufferTargetElementArray, ibo)
	b.PolygonMode(metadata.PolygonFaceFront, metadata.PolygonModeLine)
	b.Color3ub(1, 2, 3)
	b.DrawElements(metadata.IndexKindTriangles, 6)
	require.NoError(t, b.CheckError())

	draws := b.DrawCalls()
	require.Len(t, draws, 1)
	assert.Equal(t, int32(6), draws[0].Count)
	assert.Equal(t, ibo, draws[0].IndexBuffer)
	assert.Equal(t, vbo, draws[0].Attributes[metadata.BufferKindVertex])
	assert.Equal(t, metadata.PolygonModeLine, draws[0].Mode)
	assert.Equal(t, [4]uint8{1, 2, 3, 255}, draws[0].Color)
	assert.Equal(t, [4]uint8{1, 2, 3, 255}, b.ReadPixel(0, 0))

	require.NoError(t, b.EndFrame(0))
	assert.Equal(t, uint64(1), b.Frame())
}

func TestDrawElementsWithoutIndexBuffer(t *testing.T) {
	b := New()
	b.DrawElements(metadata.IndexKindTriangles, 3)
	assert.ErrorIs(t, b.CheckError(), ErrInvalidOperation)
	assert.Empty(t, b.DrawCalls())
}

func TestEndFrameDetectsUnbalancedStack(t *testing.T) {
	b := New()
	require.NoError(t, b.BeginFrame(0))
	b.PushMatrix()
	assert.ErrorIs(t, b.EndFrame(0), ErrInvalidOperation)
}

func TestFailNextMap(t *testing.T) {
	b := New()
	h := b.GenBuffer()
	b.BindBuffer(metadata.BufferTargetArray, h)

	boom := errors.New("boom")
	b.FailNextMap(boom)
	_, err := b.MapBuffer(metadata.BufferTargetArray)
	assert.ErrorIs(t, err, boom)

	_, err = b.MapBuffer(metadata.BufferTargetArray)
	assert.NoError(t, err)
}

func TestColor4fConversion(t *testing.T) {
	b := New()
	b.Color4f(math.NewVec4(1, 0.5, 0, 2))
	assert.Equal(t, [4]uint8{255, 128, 0, 255}, b.CurrentColor())
}

func TestClearSetsEmptyTargetColor(t *testing.T) {
	b := New()
	require.NoError(t, b.BeginFrame(0))
	b.Color3ub(9, 9, 9)
	b.DrawElements(metadata.IndexKindTriangles, 3)

	b.Clear(math.NewVec4(0, 0, 0, 0))
	assert.Empty(t, b.DrawCalls())
	assert.Equal(t, [4]uint8{}, b.ReadPixel(5, 5))

	b.Clear(math.NewVec4(1, 0, 1, 1))
	assert.Equal(t, [4]uint8{255, 0, 255, 255}, b.ReadPixel(5, 5))
	assert.Equal(t, 2, b.CallCount("Clear"))
	require.NoError(t, b.EndFrame(0))
}
