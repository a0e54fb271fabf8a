package geometry

import (
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Lod is one level of detail of an engine: index sets per primitive topology, each with
// its own index buffer once created.
type Lod struct {
	backend renderer.Backend
	// 0 is full detail, 1 the coarsest.
	accuracy float32
	indices  map[metadata.IndexKind][]uint32
	buffers  map[metadata.IndexKind]*Buffer
	// set by CreateIndexBuffers; later index sets get their buffer on arrival
	created bool
}

func NewLod(backend renderer.Backend, accuracy float32) *Lod {
	return &Lod{
		backend:  backend,
		accuracy: math.Clamp(accuracy, 0, 1),
		indices:  make(map[metadata.IndexKind][]uint32),
		buffers:  make(map[metadata.IndexKind]*Buffer),
	}
}

func (l *Lod) Accuracy() float32 {
	return l.accuracy
}

// SetIndices replaces the index set of kind. Once the LOD's buffers were created the new
// indices are uploaded right away, creating kind's buffer if it had none.
func (l *Lod) SetIndices(kind metadata.IndexKind, indices []uint32) {
	l.indices[kind] = append([]uint32(nil), indices...)
	b, ok := l.buffers[kind]
	if !ok {
		if !l.created || len(l.indices[kind]) == 0 {
			return
		}
		b = newBuffer(l.backend, metadata.BufferTargetElementArray)
		l.buffers[kind] = b
	}
	b.Upload(indicesToBytes(l.indices[kind]))
}

func (l *Lod) Indices(kind metadata.IndexKind) []uint32 {
	return append([]uint32(nil), l.indices[kind]...)
}

func (l *Lod) IndexCount(kind metadata.IndexKind) int {
	return len(l.indices[kind])
}

// IndexBufferHandle returns the GPU name of kind's index buffer, 0 if not created.
func (l *Lod) IndexBufferHandle(kind metadata.IndexKind) uint32 {
	return l.buffers[kind].Handle()
}

// CreateIndexBuffers creates one index buffer per non-empty index set that has none yet.
func (l *Lod) CreateIndexBuffers() {
	l.created = true
	for _, kind := range metadata.IndexKinds {
		if len(l.indices[kind]) == 0 {
			continue
		}
		if _, ok := l.buffers[kind]; ok {
			continue
		}
		l.buffers[kind] = newBuffer(l.backend, metadata.BufferTargetElementArray)
	}
}

// Upload fills every created index buffer with its index set.
func (l *Lod) Upload() {
	for kind, b := range l.buffers {
		b.Upload(indicesToBytes(l.indices[kind]))
	}
}

// UseIndexBuffer binds the index buffer of kind. It returns false if there is none.
func (l *Lod) UseIndexBuffer(kind metadata.IndexKind) bool {
	b, ok := l.buffers[kind]
	if !ok {
		return false
	}
	b.Bind()
	return true
}

// Clone copies the index sets. Buffers are not shared; the copy creates its own.
func (l *Lod) Clone() *Lod {
	out := NewLod(l.backend, l.accuracy)
	for kind, indices := range l.indices {
		out.indices[kind] = append([]uint32(nil), indices...)
	}
	return out
}

func (l *Lod) Release() {
	for kind, b := range l.buffers {
		b.Release()
		delete(l.buffers, kind)
	}
	l.created = false
	core.LogDebug("released lod (accuracy %.2f)", l.accuracy)
}
