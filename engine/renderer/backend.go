package renderer

import (
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Backend is the immediate-mode graphics API the geometry and scene layers draw through.
// Every call must be issued from the thread that owns the graphics context.
type Backend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	// Clear fills the colour target of the frame in progress with c and wipes the depth target.
	Clear(c math.Vec4)

	// GenBuffer allocates a new buffer name. 0 is never returned for a live buffer.
	GenBuffer() uint32
	DeleteBuffer(handle uint32)
	// BindBuffer binds handle to target; binding 0 unbinds the target.
	BindBuffer(target metadata.BufferTarget, handle uint32)
	// BufferData replaces the store of the buffer bound to target.
	BufferData(target metadata.BufferTarget, data []byte)
	// MapBuffer maps the buffer bound to target for reading. The returned slice is only
	// valid until UnmapBuffer.
	MapBuffer(target metadata.BufferTarget) ([]byte, error)
	UnmapBuffer(target metadata.BufferTarget) bool

	// EnableAttribute sources attribute kind from the buffer currently bound to the array
	// target, with the given number of float components per vertex.
	EnableAttribute(kind metadata.BufferKind, components int32)
	DisableAttribute(kind metadata.BufferKind)
	DrawElements(kind metadata.IndexKind, count int32)

	PushMatrix()
	PopMatrix()
	MultMatrix(m math.Mat4)
	PolygonMode(face metadata.PolygonFace, mode metadata.PolygonMode)
	Color3ub(r, g, b uint8)
	Color4f(c math.Vec4)
	// ReadPixel returns the RGBA colour at window coordinates x, y of the current target.
	ReadPixel(x, y int32) [4]uint8

	// CheckError returns the first pending error of the API, if any.
	CheckError() error
	Type() RendererType
}
