package geometry

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief BaseEngine owns the primary vertex buffer of a geometry. Engines that carry
 * more attributes embed it and add their own buffers.
 */
type BaseEngine struct {
	backend      renderer.Backend
	vertexBuffer *Buffer
}

func (e *BaseEngine) Backend() renderer.Backend {
	return e.backend
}

// VertexBufferHandle returns the vertex buffer name, 0 if it was never created.
func (e *BaseEngine) VertexBufferHandle() uint32 {
	return e.vertexBuffer.Handle()
}

// Release deletes the vertex buffer if it exists.
func (e *BaseEngine) Release() {
	e.vertexBuffer.Release()
	e.vertexBuffer = nil
}

/**
 * @brief Engine holds the flattened attribute arrays of a geometry (positions, normals,
 * texels), their GPU mirrors, and the list of levels of detail. There is always at least
 * one LOD, the full detail one created with the engine.
 */
type Engine struct {
	BaseEngine

	positions []float32
	normals   []float32
	texels    []float32

	normalBuffer *Buffer
	texelBuffer  *Buffer

	lods []*Lod
}

func NewEngine(backend renderer.Backend) *Engine {
	return &Engine{
		BaseEngine: BaseEngine{backend: backend},
		lods:       []*Lod{NewLod(backend, 0)},
	}
}

// PositionVector returns the current positions. Once the vertex buffer exists the GPU
// copy is authoritative and is read back from it.
func (e *Engine) PositionVector() ([]float32, error) {
	return e.attributeVector(e.vertexBuffer, e.positions)
}

// NormalVector returns the current normals, read back from the GPU once the normal buffer exists.
func (e *Engine) NormalVector() ([]float32, error) {
	return e.attributeVector(e.normalBuffer, e.normals)
}

func (e *Engine) attributeVector(b *Buffer, cpu []float32) ([]float32, error) {
	if b.Handle() == 0 {
		return append([]float32(nil), cpu...), nil
	}
	var out []float32
	err := b.Read(func(data []byte) error {
		out = bytesToFloats(data, len(cpu))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading back buffer %d: %w", b.Handle(), err)
	}
	return out, nil
}

func (e *Engine) Texels() []float32 {
	return append([]float32(nil), e.texels...)
}

// VertexCount is the number of xyz positions held by the engine.
func (e *Engine) VertexCount() int {
	return len(e.positions) / 3
}

// SetPositions replaces the positions, uploading them if the vertex buffer exists.
func (e *Engine) SetPositions(positions []float32) {
	e.positions = append([]float32(nil), positions...)
	if e.vertexBuffer.Handle() != 0 {
		e.vertexBuffer.Upload(floatsToBytes(e.positions))
	}
}

func (e *Engine) SetNormals(normals []float32) {
	e.normals = append([]float32(nil), normals...)
	if e.normalBuffer.Handle() != 0 {
		e.normalBuffer.Upload(floatsToBytes(e.normals))
	}
}

// SetTexels replaces the texture coordinates. When the other buffers already exist and
// this is the first non-empty texel set, the texel buffer is created here.
func (e *Engine) SetTexels(texels []float32) {
	e.texels = append([]float32(nil), texels...)
	if e.BuffersCreated() && e.texelBuffer.Handle() == 0 && len(e.texels) > 0 {
		e.texelBuffer = newBuffer(e.backend, metadata.BufferTargetArray)
	}
	if e.texelBuffer.Handle() != 0 {
		e.texelBuffer.Upload(floatsToBytes(e.texels))
	}
}

// GenerateNormals replaces the normals with flat face normals of the full detail triangles.
func (e *Engine) GenerateNormals() {
	e.SetNormals(math.GeometryGenerateNormals(e.positions, e.lods[0].indices[metadata.IndexKindTriangles]))
}

// AddLod appends a level of detail with the given triangle indices and returns its index.
func (e *Engine) AddLod(accuracy float32, triangles []uint32) int {
	lod := NewLod(e.backend, accuracy)
	lod.SetIndices(metadata.IndexKindTriangles, triangles)
	if e.vertexBuffer.Handle() != 0 {
		lod.CreateIndexBuffers()
		lod.Upload()
	}
	e.lods = append(e.lods, lod)
	return len(e.lods) - 1
}

func (e *Engine) Lod(i int) (*Lod, error) {
	if i < 0 || i >= len(e.lods) {
		return nil, fmt.Errorf("%w: %d of %d", core.ErrLodOutOfRange, i, len(e.lods))
	}
	return e.lods[i], nil
}

func (e *Engine) LodCount() int {
	return len(e.lods)
}

func (e *Engine) NormalBufferHandle() uint32 {
	return e.normalBuffer.Handle()
}

func (e *Engine) TexelBufferHandle() uint32 {
	return e.texelBuffer.Handle()
}

// BuffersCreated reports whether CreateBuffers has run.
func (e *Engine) BuffersCreated() bool {
	return e.vertexBuffer.Handle() != 0
}

// CreateBuffers creates the GPU buffers. Only the first call does anything; the vertex
// buffer handle is the marker. The texel buffer is created only when texels exist.
func (e *Engine) CreateBuffers() {
	if e.vertexBuffer.Handle() != 0 {
		return
	}
	e.vertexBuffer = newBuffer(e.backend, metadata.BufferTargetArray)
	e.normalBuffer = newBuffer(e.backend, metadata.BufferTargetArray)

	if e.texelBuffer.Handle() == 0 && len(e.texels) > 0 {
		e.texelBuffer = newBuffer(e.backend, metadata.BufferTargetArray)
	}

	for _, lod := range e.lods {
		lod.CreateIndexBuffers()
	}
}

// UploadBuffers copies the CPU attribute arrays and every LOD's indices into the created buffers.
func (e *Engine) UploadBuffers() error {
	if !e.BuffersCreated() {
		return core.ErrBufferNotCreated
	}
	e.vertexBuffer.Upload(floatsToBytes(e.positions))
	e.normalBuffer.Upload(floatsToBytes(e.normals))
	if e.texelBuffer.Handle() != 0 {
		e.texelBuffer.Upload(floatsToBytes(e.texels))
	}
	for _, lod := range e.lods {
		lod.Upload()
	}
	return nil
}

// UseBuffer binds the attribute buffer of kind to the array target, or unbinds the target
// when enable is false. Binding a texel buffer that was never created returns false.
func (e *Engine) UseBuffer(enable bool, kind metadata.BufferKind) bool {
	if !enable {
		e.backend.BindBuffer(metadata.BufferTargetArray, 0)
		return true
	}

	switch {
	case kind == metadata.BufferKindVertex:
		e.backend.BindBuffer(metadata.BufferTargetArray, e.vertexBuffer.Handle())
	case kind == metadata.BufferKindNormal:
		e.backend.BindBuffer(metadata.BufferTargetArray, e.normalBuffer.Handle())
	case kind == metadata.BufferKindTexel && e.texelBuffer.Handle() != 0:
		e.backend.BindBuffer(metadata.BufferTargetArray, e.texelBuffer.Handle())
	default:
		return false
	}
	return true
}

// UseIndexBuffer asks every LOD to bind its index buffer of kind. Disabling unbinds the
// shared index target once.
func (e *Engine) UseIndexBuffer(enable bool, kind metadata.IndexKind) {
	if !enable {
		e.backend.BindBuffer(metadata.BufferTargetElementArray, 0)
		return
	}
	for _, lod := range e.lods {
		lod.UseIndexBuffer(kind)
	}
}

// Clone returns an engine with the same attribute data and LOD index sets. The copy has
// no GPU buffers of its own until CreateBuffers is called on it.
func (e *Engine) Clone() (*Engine, error) {
	positions, err := e.PositionVector()
	if err != nil {
		return nil, err
	}
	normals, err := e.NormalVector()
	if err != nil {
		return nil, err
	}

	out := &Engine{
		BaseEngine: BaseEngine{backend: e.backend},
		positions:  positions,
		normals:    normals,
		texels:     e.Texels(),
		lods:       make([]*Lod, 0, len(e.lods)),
	}
	for _, lod := range e.lods {
		out.lods = append(out.lods, lod.Clone())
	}
	return out, nil
}

// Release frees the texel, normal and index buffers, then the vertex buffer through the
// base engine. Calling it again is harmless.
func (e *Engine) Release() {
	e.texelBuffer.Release()
	e.texelBuffer = nil
	e.normalBuffer.Release()
	e.normalBuffer = nil

	for _, lod := range e.lods {
		lod.Release()
	}

	e.BaseEngine.Release()
}
