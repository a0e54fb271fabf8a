// Package headless implements renderer.Backend without a GPU. Buffers live in host
// memory, matrix and raster state are tracked, and every call is counted so the scene
// layers can be driven from tests and from CI runs.
package headless

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

var (
	ErrInvalidOperation = errors.New("invalid operation")
	ErrStackUnderflow   = errors.New("matrix stack underflow")
)

// DrawCall is the state captured at each DrawElements.
type DrawCall struct {
	Kind        metadata.IndexKind
	Count       int32
	IndexBuffer uint32
	Attributes  map[metadata.BufferKind]uint32
	Matrix      math.Mat4
	Face        metadata.PolygonFace
	Mode        metadata.PolygonMode
	Color       [4]uint8
}

var _ renderer.Backend = (*Backend)(nil)

type Backend struct {
	lastHandle  uint32
	buffers     map[uint32][]byte
	deletes     map[uint32]int
	bound       map[metadata.BufferTarget]uint32
	mapped      map[metadata.BufferTarget]bool
	attributes  map[metadata.BufferKind]uint32
	matrixStack []math.Mat4
	face        metadata.PolygonFace
	mode        metadata.PolygonMode
	color       [4]uint8
	clearColor  [4]uint8
	calls       map[string]int
	draws       []DrawCall
	errs        []error
	failMap     error
	frame       uint64
	inFrame     bool
}

// New returns a ready to use headless backend. Initialize is optional.
func New() *Backend {
	return &Backend{
		buffers:     make(map[uint32][]byte),
		deletes:     make(map[uint32]int),
		bound:       make(map[metadata.BufferTarget]uint32),
		mapped:      make(map[metadata.BufferTarget]bool),
		attributes:  make(map[metadata.BufferKind]uint32),
		matrixStack: []math.Mat4{math.NewMat4Identity()},
		calls:       make(map[string]int),
		color:       [4]uint8{255, 255, 255, 255},
	}
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	b.count("Initialize")
	core.LogInfo("headless renderer initialized for '%s' (%dx%d)", appName, appWidth, appHeight)
	return nil
}

func (b *Backend) Shutdown() error {
	b.count("Shutdown")
	if live := len(b.buffers); live > 0 {
		core.LogWarn("headless renderer shutting down with %d live buffers", live)
	}
	return nil
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	b.count("BeginFrame")
	if b.inFrame {
		return fmt.Errorf("%w: BeginFrame called twice", ErrInvalidOperation)
	}
	b.inFrame = true
	b.draws = b.draws[:0]
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	b.count("EndFrame")
	if !b.inFrame {
		return fmt.Errorf("%w: EndFrame without BeginFrame", ErrInvalidOperation)
	}
	b.inFrame = false
	b.frame++
	if depth := len(b.matrixStack); depth != 1 {
		return fmt.Errorf("%w: matrix stack depth %d at end of frame", ErrInvalidOperation, depth)
	}
	return nil
}

// Clear forgets the draw calls captured so far in the frame and remembers c as the
// colour of the empty target.
func (b *Backend) Clear(c math.Vec4) {
	b.count("Clear")
	b.draws = b.draws[:0]
	b.clearColor = [4]uint8{toByte(c.X), toByte(c.Y), toByte(c.Z), toByte(c.W)}
}

func (b *Backend) GenBuffer() uint32 {
	b.count("GenBuffer")
	b.lastHandle++
	b.buffers[b.lastHandle] = nil
	return b.lastHandle
}

func (b *Backend) DeleteBuffer(handle uint32) {
	b.count("DeleteBuffer")
	b.deletes[handle]++
	if _, ok := b.buffers[handle]; !ok {
		b.fail(fmt.Errorf("%w: delete of unknown buffer %d", ErrInvalidOperation, handle))
		return
	}
	delete(b.buffers, handle)
	for target, h := range b.bound {
		if h == handle {
			b.bound[target] = 0
		}
	}
}

func (b *Backend) BindBuffer(target metadata.BufferTarget, handle uint32) {
	b.count("BindBuffer")
	if handle != 0 {
		if _, ok := b.buffers[handle]; !ok {
			b.fail(fmt.Errorf("%w: bind of unknown buffer %d", ErrInvalidOperation, handle))
			return
		}
	}
	b.bound[target] = handle
}

func (b *Backend) BufferData(target metadata.BufferTarget, data []byte) {
	b.count("BufferData")
	handle := b.bound[target]
	if handle == 0 {
		b.fail(fmt.Errorf("%w: BufferData with no %s buffer bound", ErrInvalidOperation, target))
		return
	}
	b.buffers[handle] = append([]byte(nil), data...)
}

func (b *Backend) MapBuffer(target metadata.BufferTarget) ([]byte, error) {
	b.count("MapBuffer")
	if b.failMap != nil {
		err := b.failMap
		b.failMap = nil
		return nil, err
	}
	handle := b.bound[target]
	if handle == 0 {
		return nil, fmt.Errorf("%w: no %s buffer bound", ErrInvalidOperation, target)
	}
	if b.mapped[target] {
		return nil, fmt.Errorf("%w: %s buffer already mapped", ErrInvalidOperation, target)
	}
	b.mapped[target] = true
	return b.buffers[handle], nil
}

func (b *Backend) UnmapBuffer(target metadata.BufferTarget) bool {
	b.count("UnmapBuffer")
	if !b.mapped[target] {
		b.fail(fmt.Errorf("%w: %s buffer is not mapped", ErrInvalidOperation, target))
		return false
	}
	b.mapped[target] = false
	return true
}

func (b *Backend) EnableAttribute(kind metadata.BufferKind, components int32) {
	b.count("EnableAttribute")
	b.attributes[kind] = b.bound[metadata.BufferTargetArray]
}

func (b *Backend) DisableAttribute(kind metadata.BufferKind) {
	b.count("DisableAttribute")
	delete(b.attributes, kind)
}

func (b *Backend) DrawElements(kind metadata.IndexKind, count int32) {
	b.count("DrawElements")
	indexBuffer := b.bound[metadata.BufferTargetElementArray]
	if indexBuffer == 0 {
		b.fail(fmt.Errorf("%w: DrawElements with no index buffer bound", ErrInvalidOperation))
		return
	}
	if _, ok := b.attributes[metadata.BufferKindVertex]; !ok {
		b.fail(fmt.Errorf("%w: DrawElements with no vertex attribute enabled", ErrInvalidOperation))
		return
	}
	attrs := make(map[metadata.BufferKind]uint32, len(b.attributes))
	for k, v := range b.attributes {
		attrs[k] = v
	}
	b.draws = append(b.draws, DrawCall{
		Kind:        kind,
		Count:       count,
		IndexBuffer: indexBuffer,
		Attributes:  attrs,
		Matrix:      b.CurrentMatrix(),
		Face:        b.face,
		Mode:        b.mode,
		Color:       b.color,
	})
}

func (b *Backend) PushMatrix() {
	b.count("PushMatrix")
	b.matrixStack = append(b.matrixStack, b.CurrentMatrix())
}

func (b *Backend) PopMatrix() {
	b.count("PopMatrix")
	if len(b.matrixStack) == 1 {
		b.fail(ErrStackUnderflow)
		return
	}
	b.matrixStack = b.matrixStack[:len(b.matrixStack)-1]
}

func (b *Backend) MultMatrix(m math.Mat4) {
	b.count("MultMatrix")
	top := len(b.matrixStack) - 1
	b.matrixStack[top] = m.Mul(b.matrixStack[top])
}

func (b *Backend) PolygonMode(face metadata.PolygonFace, mode metadata.PolygonMode) {
	b.count("PolygonMode")
	b.face = face
	b.mode = mode
}

func (b *Backend) Color3ub(r, g, bl uint8) {
	b.count("Color3ub")
	b.color = [4]uint8{r, g, bl, 255}
}

func (b *Backend) Color4f(c math.Vec4) {
	b.count("Color4f")
	b.color = [4]uint8{toByte(c.X), toByte(c.Y), toByte(c.Z), toByte(c.W)}
}

// ReadPixel has no framebuffer to sample; it reports the colour of the most recent draw
// call of the current or last frame, as if that draw covered the whole target. Without
// draws it reports the last clear colour.
func (b *Backend) ReadPixel(x, y int32) [4]uint8 {
	b.count("ReadPixel")
	if len(b.draws) == 0 {
		return b.clearColor
	}
	return b.draws[len(b.draws)-1].Color
}

func (b *Backend) CheckError() error {
	if len(b.errs) == 0 {
		return nil
	}
	err := errors.Join(b.errs...)
	b.errs = nil
	return err
}

func (b *Backend) Type() renderer.RendererType {
	return renderer.Headless
}

// Inspection helpers.

func (b *Backend) CallCount(name string) int {
	return b.calls[name]
}

func (b *Backend) LiveBuffers() int {
	return len(b.buffers)
}

func (b *Backend) IsLive(handle uint32) bool {
	_, ok := b.buffers[handle]
	return ok
}

func (b *Backend) DeleteCount(handle uint32) int {
	return b.deletes[handle]
}

func (b *Backend) Bound(target metadata.BufferTarget) uint32 {
	return b.bound[target]
}

func (b *Backend) IsMapped(target metadata.BufferTarget) bool {
	return b.mapped[target]
}

func (b *Backend) BufferContents(handle uint32) []byte {
	return append([]byte(nil), b.buffers[handle]...)
}

func (b *Backend) MatrixDepth() int {
	return len(b.matrixStack)
}

func (b *Backend) CurrentMatrix() math.Mat4 {
	return b.matrixStack[len(b.matrixStack)-1]
}

func (b *Backend) PolygonState() (metadata.PolygonFace, metadata.PolygonMode) {
	return b.face, b.mode
}

func (b *Backend) CurrentColor() [4]uint8 {
	return b.color
}

func (b *Backend) DrawCalls() []DrawCall {
	return append([]DrawCall(nil), b.draws...)
}

func (b *Backend) Frame() uint64 {
	return b.frame
}

// FailNextMap makes the next MapBuffer call return err.
func (b *Backend) FailNextMap(err error) {
	b.failMap = err
}

// InjectError queues err to be returned by the next CheckError.
func (b *Backend) InjectError(err error) {
	b.fail(err)
}

func (b *Backend) count(name string) {
	b.calls[name]++
}

func (b *Backend) fail(err error) {
	core.LogDebug("headless renderer: %s", err)
	b.errs = append(b.errs, err)
}

func toByte(f float32) uint8 {
	return uint8(math.Clamp(f, 0, 1)*255 + 0.5)
}
