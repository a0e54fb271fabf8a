package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/prism/engine/geometry"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func TestNewInstanceDefaults(t *testing.T) {
	i := NewInstance()
	defer i.Release()

	assert.NotZero(t, i.ID())
	assert.Nil(t, i.Geometry())
	assert.True(t, i.Matrix().IsIdentity())
	assert.True(t, i.IsVisible())
	assert.False(t, i.IsSelected())
	assert.Equal(t, metadata.PolygonFaceFrontAndBack, i.PolygonFace())
	assert.Equal(t, metadata.PolygonModeFill, i.PolygonMode())
	assert.Equal(t, EncodeID(i.ID()), i.ColorID())
	assert.True(t, i.BoundingBox().IsEmpty())
	assert.False(t, i.BoundingBoxValidity())
}

func TestNewInstanceWithGeometryAdoptsName(t *testing.T) {
	g := newFakeGeometry("wheel")
	i := NewInstanceWithGeometry(g)
	assert.Equal(t, "wheel", i.Name())
	assert.Equal(t, 1, i.ShareCount())

	i.Release()
	assert.Equal(t, 1, g.released)
}

func TestSetGeometryOnEmptyInstance(t *testing.T) {
	i := NewInstance()
	defer i.Release()

	assert.False(t, i.SetGeometry(newFakeGeometry("g")))
	assert.Nil(t, i.Geometry())
}

func TestSetGeometryReleasesPrevious(t *testing.T) {
	old := newFakeGeometry("old")
	i := NewInstanceWithGeometry(old)
	copied := i.Copy()

	replacement := newFakeGeometry("new")
	require.True(t, i.SetGeometry(replacement))
	assert.Same(t, replacement, i.Geometry())
	assert.Equal(t, 1, i.ShareCount())
	assert.Zero(t, old.released)
	assert.Equal(t, 1, copied.ShareCount())

	copied.Release()
	assert.Equal(t, 1, old.released)

	i.Release()
	assert.Equal(t, 1, replacement.released)
}

func TestSetGeometrySameGeometry(t *testing.T) {
	g := newFakeGeometry("g")
	i := NewInstanceWithGeometry(g)
	assert.True(t, i.SetGeometry(g))
	assert.Zero(t, g.released)
	i.Release()
	assert.Equal(t, 1, g.released)
}

func TestLastSharingInstanceReleasesGeometry(t *testing.T) {
	g := newFakeGeometry("shared")
	first := NewInstanceWithGeometry(g)
	second := first.Copy()
	third := first.Instanciate()
	assert.Equal(t, 3, first.ShareCount())

	second.Release()
	assert.Zero(t, g.released)
	first.Release()
	assert.Zero(t, g.released)
	assert.Equal(t, 1, third.ShareCount())

	third.Release()
	assert.Equal(t, 1, g.released)
}

func TestDoubleReleasePanics(t *testing.T) {
	i := NewInstance()
	i.Release()
	assert.Panics(t, func() { i.Release() })
}

func TestCopyKeepsIdentity(t *testing.T) {
	i := NewInstanceWithGeometry(newFakeGeometry("g"))
	i.Translate(1, 2, 3)
	i.BoundingBox()

	c := i.Copy()
	assert.Equal(t, i.ID(), c.ID())
	assert.Equal(t, i.ColorID(), c.ColorID())
	assert.Equal(t, i.Matrix(), c.Matrix())
	assert.True(t, c.BoundingBoxValidity())
	assert.Equal(t, i.BoundingBox(), c.BoundingBox())

	// The box is not shared.
	i.Translate(1, 0, 0)
	assert.NotEqual(t, i.BoundingBox(), c.BoundingBox())

	c.Release()
	i.Release()
}

func TestInstanciate(t *testing.T) {
	g := newFakeGeometry("g")
	src := NewInstanceWithGeometry(g)
	src.Translate(5, 0, 0)
	src.Select()

	a := src.Instanciate()
	b := src.Instanciate()

	assert.Same(t, a.Geometry(), b.Geometry())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), src.ID())
	assert.NotEqual(t, a.ColorID(), b.ColorID())
	assert.Equal(t, EncodeID(a.ID()), a.ColorID())
	assert.Equal(t, EncodeID(src.ID()), src.ColorID())
	assert.Equal(t, src.Matrix(), a.Matrix())
	assert.True(t, a.IsSelected())

	for _, i := range []*Instance{a, b, src} {
		i.Release()
	}
	assert.Equal(t, 1, g.released)
}

func TestAssign(t *testing.T) {
	g1 := newFakeGeometry("one")
	g2 := newFakeGeometry("two")
	dst := NewInstanceWithGeometry(g1)
	src := NewInstanceWithGeometry(g2)
	src.SetPolygonMode(metadata.PolygonFaceFront, metadata.PolygonModeLine)

	dst.Assign(src)
	assert.Equal(t, 1, g1.released)
	assert.Equal(t, src.ID(), dst.ID())
	assert.Equal(t, "two", dst.Name())
	assert.Same(t, g2, dst.Geometry())
	assert.Equal(t, 2, src.ShareCount())
	assert.Equal(t, metadata.PolygonModeLine, dst.PolygonMode())

	dst.Assign(dst)
	assert.Equal(t, 2, src.ShareCount())

	dst.Release()
	src.Release()
	assert.Equal(t, 1, g2.released)
}

func TestClone(t *testing.T) {
	b := headless.New()
	mesh := geometry.NewCube(b, "cube", 1, 1, 1)
	src := NewInstanceWithGeometry(mesh)
	src.Translate(0, 3, 0)
	require.NoError(t, src.Render(renderer.NewContext(b), false))

	c, err := src.Clone()
	require.NoError(t, err)
	assert.NotEqual(t, src.ID(), c.ID())
	assert.Equal(t, EncodeID(c.ID()), c.ColorID())
	assert.NotSame(t, src.Geometry(), c.Geometry())
	assert.Equal(t, 1, c.ShareCount())
	assert.Equal(t, src.BoundingBox(), c.BoundingBox())

	clonedMesh := c.Geometry().(*geometry.Mesh)
	clonedMesh.SetPositions([]float32{9, 9, 9})
	positions, err := mesh.Engine().PositionVector()
	require.NoError(t, err)
	assert.Len(t, positions, 24*3)

	require.NoError(t, c.Render(renderer.NewContext(b), false))
	assert.NotEqual(t, mesh.Engine().VertexBufferHandle(), clonedMesh.Engine().VertexBufferHandle())

	src.Release()
	c.Release()
	assert.Zero(t, b.LiveBuffers())
}

func TestBoundingBoxInvalidation(t *testing.T) {
	g := newFakeGeometry("g")
	i := NewInstanceWithGeometry(g)
	defer i.Release()

	box := i.BoundingBox()
	assert.True(t, i.BoundingBoxValidity())
	assert.Equal(t, math.NewVec3(-1, -1, -1), box.Min)

	mutations := map[string]func(){
		"translate":  func() { i.Translate(2, 0, 0) },
		"multMatrix": func() { i.MultMatrix(math.NewMat4Scale(math.NewVec3(2, 2, 2))) },
		"setMatrix":  func() { i.SetMatrix(math.NewMat4Translation(math.NewVec3(0, 0, 4))) },
		"reset":      func() { i.ResetMatrix() },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			i.BoundingBox()
			require.True(t, i.BoundingBoxValidity())
			mutate()
			assert.False(t, i.BoundingBoxValidity())
			i.BoundingBox()
			assert.True(t, i.BoundingBoxValidity())
		})
	}
}

func TestBoundingBoxFollowsGeometryValidity(t *testing.T) {
	g := newFakeGeometry("g")
	i := NewInstanceWithGeometry(g)
	defer i.Release()

	i.Translate(10, 0, 0)
	assert.Equal(t, float32(9), i.BoundingBox().Min.X)

	g.box = math.NewBoundingBoxFromExtents(math.NewVec3(0, 0, 0), math.NewVec3(4, 4, 4))
	g.boxValid = false
	assert.False(t, i.BoundingBoxValidity())
	assert.Equal(t, float32(14), i.BoundingBox().Max.X)
	assert.True(t, i.BoundingBoxValidity())
}

func TestMeshEditInvalidatesInstanceBox(t *testing.T) {
	mesh := geometry.NewCube(headless.New(), "cube", 2, 2, 2)
	i := NewInstanceWithGeometry(mesh)
	defer i.Release()

	assert.Equal(t, float32(1), i.BoundingBox().Max.X)
	mesh.SetPositions([]float32{0, 0, 0, 5, 5, 5})
	assert.False(t, i.BoundingBoxValidity())
	assert.Equal(t, float32(5), i.BoundingBox().Max.X)
}

func TestMultMatrixComposesAfterCurrent(t *testing.T) {
	i := NewInstance()
	defer i.Release()

	i.Translate(1, 0, 0)
	i.MultMatrix(math.NewMat4Scale(math.NewVec3(2, 2, 2)))
	p := math.NewVec3Zero().Transform(i.Matrix())
	assert.InDelta(t, 2, p.X, 1e-6)
}

func TestSetPolygonMode(t *testing.T) {
	i := NewInstance()
	defer i.Release()

	i.SetPolygonMode(metadata.PolygonFaceBack, metadata.PolygonModePoint)
	assert.Equal(t, metadata.PolygonFaceBack, i.PolygonFace())
	assert.Equal(t, metadata.PolygonModePoint, i.PolygonMode())
}

func TestRenderWithoutGeometry(t *testing.T) {
	b := headless.New()
	i := NewInstance()
	defer i.Release()

	require.NoError(t, i.Render(renderer.NewContext(b), false))
	assert.Zero(t, b.CallCount("PushMatrix"))
}

func TestRenderAppliesState(t *testing.T) {
	b := headless.New()
	mesh := geometry.NewCube(b, "cube", 1, 1, 1)
	mesh.SetColor(math.NewVec4(0, 1, 0, 1))
	i := NewInstanceWithGeometry(mesh)
	defer i.Release()
	i.Translate(0, 0, -5)
	i.SetPolygonMode(metadata.PolygonFaceFront, metadata.PolygonModeLine)

	require.NoError(t, i.Render(renderer.NewContext(b), false))

	draws := b.DrawCalls()
	require.Len(t, draws, 1)
	assert.Equal(t, i.Matrix(), draws[0].Matrix)
	assert.Equal(t, metadata.PolygonFaceFront, draws[0].Face)
	assert.Equal(t, metadata.PolygonModeLine, draws[0].Mode)
	assert.Equal(t, [4]uint8{0, 255, 0, 255}, draws[0].Color)
	assert.Equal(t, 1, b.MatrixDepth())
}

func TestRenderSelectionUsesPickColor(t *testing.T) {
	b := headless.New()
	mesh := geometry.NewCube(b, "cube", 1, 1, 1)
	i := NewInstanceWithGeometry(mesh)
	defer i.Release()
	i.Select()

	ctx := renderer.NewContext(b)
	require.NoError(t, i.Render(ctx.SelectionContext(), false))

	draws := b.DrawCalls()
	require.Len(t, draws, 1)
	c := i.ColorID()
	assert.Equal(t, [4]uint8{c[0], c[1], c[2], 255}, draws[0].Color)
	assert.Equal(t, i.ID()&0x00FFFFFF, DecodeID(draws[0].Color))
}

func TestRenderPassesSelection(t *testing.T) {
	g := newFakeGeometry("g")
	i := NewInstanceWithGeometry(g)
	defer i.Release()
	i.Select()

	require.NoError(t, i.Render(renderer.NewContext(headless.New()), true))
	assert.Equal(t, 1, g.renders)
	assert.True(t, g.selected)
}

func TestRenderRestoresMatrixOnFailure(t *testing.T) {
	b := headless.New()
	g := newFakeGeometry("g")
	g.renderErr = errDraw
	i := NewInstanceWithGeometry(g)
	defer i.Release()

	err := i.Render(renderer.NewContext(b), false)
	assert.ErrorIs(t, err, errDraw)
	assert.Equal(t, 1, b.CallCount("PushMatrix"))
	assert.Equal(t, 1, b.CallCount("PopMatrix"))
	assert.Equal(t, 1, b.MatrixDepth())
}

func TestScenarioFourVerticesNoTexels(t *testing.T) {
	b := headless.New()
	mesh := geometry.NewMesh(b, "quad")
	mesh.SetPositions([]float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0})
	mesh.SetTriangles([]uint32{0, 1, 2, 0, 2, 3})
	i := NewInstanceWithGeometry(mesh)
	defer i.Release()

	e := i.Geometry().(*geometry.Mesh).Engine()
	e.CreateBuffers()
	assert.True(t, e.UseBuffer(true, metadata.BufferKindVertex))
	assert.False(t, e.UseBuffer(true, metadata.BufferKindTexel))
}
