package geometry

import (
	"encoding/binary"
	stdmath "math"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Buffer owns one GPU buffer name. The name is deleted exactly once, by Release.
type Buffer struct {
	backend renderer.Backend
	target  metadata.BufferTarget
	handle  uint32
	// bytes in the store after the last Upload
	size int
}

func newBuffer(backend renderer.Backend, target metadata.BufferTarget) *Buffer {
	b := &Buffer{
		backend: backend,
		target:  target,
		handle:  backend.GenBuffer(),
	}
	core.LogDebug("created %s buffer %d", target, b.handle)
	return b
}

// Handle returns the GPU name, or 0 for a nil or released buffer.
func (b *Buffer) Handle() uint32 {
	if b == nil {
		return 0
	}
	return b.handle
}

func (b *Buffer) Bind() {
	b.backend.BindBuffer(b.target, b.handle)
}

func (b *Buffer) Unbind() {
	b.backend.BindBuffer(b.target, 0)
}

// Upload replaces the buffer store with data. The target is left unbound.
func (b *Buffer) Upload(data []byte) {
	b.Bind()
	b.backend.BufferData(b.target, data)
	b.Unbind()
	b.size = len(data)
}

// Size returns the byte length of the last upload.
func (b *Buffer) Size() int {
	if b == nil {
		return 0
	}
	return b.size
}

// Read maps the buffer for reading and hands the mapped bytes to fn. The mapping and the
// binding are released before Read returns, whatever fn does. An empty store cannot be
// mapped, so fn gets nil without touching the backend.
func (b *Buffer) Read(fn func(data []byte) error) error {
	if b.Handle() == 0 {
		return core.ErrBufferNotCreated
	}
	if b.size == 0 {
		return fn(nil)
	}
	b.Bind()
	defer b.Unbind()

	data, err := b.backend.MapBuffer(b.target)
	if err != nil {
		return err
	}
	defer b.backend.UnmapBuffer(b.target)

	return fn(data)
}

func (b *Buffer) Release() {
	if b == nil || b.handle == 0 {
		return
	}
	core.LogDebug("deleting %s buffer %d", b.target, b.handle)
	b.backend.DeleteBuffer(b.handle)
	b.handle = 0
	b.size = 0
}

func floatsToBytes(values []float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.NativeEndian.PutUint32(out[i*4:], stdmath.Float32bits(v))
	}
	return out
}

// bytesToFloats decodes up to count floats from data; missing values stay zero.
func bytesToFloats(data []byte, count int) []float32 {
	out := make([]float32, count)
	for i := 0; i < count && (i+1)*4 <= len(data); i++ {
		out[i] = stdmath.Float32frombits(binary.NativeEndian.Uint32(data[i*4:]))
	}
	return out
}

func indicesToBytes(values []uint32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.NativeEndian.PutUint32(out[i*4:], v)
	}
	return out
}
