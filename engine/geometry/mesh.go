package geometry

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Geometry is what an instance draws. Implementations own their GPU resources and free
// them in Release.
type Geometry interface {
	ID() uint32
	Name() string
	// BoundingBox returns the box in local coordinates.
	BoundingBox() math.BoundingBox
	// BoundingBoxIsValid is false whenever the local data changed since the last BoundingBox call.
	BoundingBoxIsValid() bool
	// Clone returns an independent deep copy with its own GPU resources.
	Clone() (Geometry, error)
	Render(ctx *renderer.Context, selected, transparent bool) error
	Release()
}

var _ Geometry = (*Mesh)(nil)

// Mesh is an indexed triangle geometry drawn from an Engine.
type Mesh struct {
	id          uint32
	name        string
	engine      *Engine
	color       math.Vec4
	activeLod   int
	boundingBox *math.BoundingBox
}

// NewMesh returns an empty mesh. An empty name gets a generated unique one.
func NewMesh(backend renderer.Backend, name string) *Mesh {
	return NewMeshFromEngine(name, NewEngine(backend))
}

func NewMeshFromEngine(name string, engine *Engine) *Mesh {
	if len(name) == 0 {
		name = fmt.Sprintf("mesh-%s", uuid.NewString())
	}
	return &Mesh{
		id:     core.IdentifierGenerate(),
		name:   name,
		engine: engine,
		color:  math.NewVec4One(),
	}
}

func (m *Mesh) ID() uint32 {
	return m.id
}

func (m *Mesh) Name() string {
	return m.name
}

func (m *Mesh) SetName(name string) {
	m.name = name
}

func (m *Mesh) Engine() *Engine {
	return m.engine
}

func (m *Mesh) Color() math.Vec4 {
	return m.color
}

func (m *Mesh) SetColor(c math.Vec4) {
	m.color = c
}

// IsTransparent reports whether the mesh belongs to the transparent pass.
func (m *Mesh) IsTransparent() bool {
	return m.color.W < 1.0
}

// SetPositions replaces the vertex positions and invalidates the local bounding box.
func (m *Mesh) SetPositions(positions []float32) {
	m.engine.SetPositions(positions)
	m.boundingBox = nil
}

func (m *Mesh) SetNormals(normals []float32) {
	m.engine.SetNormals(normals)
}

func (m *Mesh) SetTexels(texels []float32) {
	m.engine.SetTexels(texels)
}

// SetTriangles replaces the full detail triangle indices.
func (m *Mesh) SetTriangles(indices []uint32) {
	m.engine.lods[0].SetIndices(metadata.IndexKindTriangles, indices)
}

func (m *Mesh) ActiveLod() int {
	return m.activeLod
}

// SetActiveLod selects which level of detail Render draws.
func (m *Mesh) SetActiveLod(i int) error {
	if _, err := m.engine.Lod(i); err != nil {
		return err
	}
	m.activeLod = i
	return nil
}

func (m *Mesh) BoundingBox() math.BoundingBox {
	if m.boundingBox == nil {
		b := math.NewBoundingBoxFromPositions(m.engine.positions)
		m.boundingBox = &b
	}
	return *m.boundingBox
}

func (m *Mesh) BoundingBoxIsValid() bool {
	return m.boundingBox != nil
}

func (m *Mesh) Clone() (Geometry, error) {
	engine, err := m.engine.Clone()
	if err != nil {
		return nil, fmt.Errorf("cloning mesh '%s': %w", m.name, err)
	}
	out := NewMeshFromEngine(m.name, engine)
	out.color = m.color
	out.activeLod = m.activeLod
	return out, nil
}

// Render draws the active LOD. The mesh only draws in the pass matching its
// transparency. Buffers are created and filled on first use.
func (m *Mesh) Render(ctx *renderer.Context, selected, transparent bool) error {
	if m.IsTransparent() != transparent || m.engine.VertexCount() == 0 {
		return nil
	}
	if !m.engine.BuffersCreated() {
		m.engine.CreateBuffers()
		if err := m.engine.UploadBuffers(); err != nil {
			return err
		}
	}

	backend := ctx.Backend
	if !ctx.SelectionMode {
		if selected {
			backend.Color4f(ctx.SelectionColor)
		} else {
			backend.Color4f(m.color)
		}
	}

	enabled := make([]metadata.BufferKind, 0, 3)
	m.engine.UseBuffer(true, metadata.BufferKindVertex)
	backend.EnableAttribute(metadata.BufferKindVertex, metadata.BufferKindVertex.Components())
	enabled = append(enabled, metadata.BufferKindVertex)

	if len(m.engine.normals) > 0 {
		m.engine.UseBuffer(true, metadata.BufferKindNormal)
		backend.EnableAttribute(metadata.BufferKindNormal, metadata.BufferKindNormal.Components())
		enabled = append(enabled, metadata.BufferKindNormal)
	}
	if m.engine.UseBuffer(true, metadata.BufferKindTexel) {
		backend.EnableAttribute(metadata.BufferKindTexel, metadata.BufferKindTexel.Components())
		enabled = append(enabled, metadata.BufferKindTexel)
	}

	lod := m.engine.lods[m.activeLod]
	for _, kind := range metadata.IndexKinds {
		if lod.IndexCount(kind) > 0 && lod.UseIndexBuffer(kind) {
			backend.DrawElements(kind, int32(lod.IndexCount(kind)))
			ctx.CountDraw()
		}
	}

	m.engine.UseIndexBuffer(false, metadata.IndexKindTriangles)
	for _, kind := range enabled {
		backend.DisableAttribute(kind)
	}
	m.engine.UseBuffer(false, metadata.BufferKindVertex)

	if err := backend.CheckError(); err != nil {
		return fmt.Errorf("rendering mesh '%s': %w", m.name, err)
	}
	return nil
}

func (m *Mesh) Release() {
	core.LogDebug("releasing mesh '%s' (%d)", m.name, m.id)
	m.engine.Release()
	m.boundingBox = nil
}
