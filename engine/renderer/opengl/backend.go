// Package opengl implements renderer.Backend on the OpenGL 2.1 fixed-function pipeline.
package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

var _ renderer.Backend = (*Backend)(nil)

const viewExtent = 10.0

type Backend struct {
	platform    *platform.Platform
	initialized bool
}

func New(p *platform.Platform) *Backend {
	return &Backend{platform: p}
}

// NewWindowed opens a window with a GL context and returns a backend drawing into it.
func NewWindowed(name string, x, y, width, height uint32) (*Backend, *platform.Platform, error) {
	p, err := platform.New()
	if err != nil {
		return nil, nil, err
	}
	if err := p.Startup(name, x, y, width, height); err != nil {
		return nil, nil, err
	}
	return New(p), p, nil
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl.Init: %w", err)
	}
	core.LogInfo("OpenGL %s ready for '%s'", gl.GoStr(gl.GetString(gl.VERSION)), appName)

	gl.Enable(gl.DEPTH_TEST)
	gl.Viewport(0, 0, int32(appWidth), int32(appHeight))
	b.initialized = true
	return b.CheckError()
}

func (b *Backend) Shutdown() error {
	b.initialized = false
	return nil
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	if b.platform != nil {
		w, h := b.platform.FramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
	}
	b.Clear(renderer.BackgroundColor)
	b.loadProjection()
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
	return nil
}

func (b *Backend) Clear(c math.Vec4) {
	gl.ClearColor(c.X, c.Y, c.Z, c.W)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// loadProjection sets an orthographic view of viewExtent units around the origin,
// keeping the window aspect ratio.
func (b *Backend) loadProjection() {
	aspect := 1.0
	if b.platform != nil {
		if w, h := b.platform.FramebufferSize(); h > 0 {
			aspect = float64(w) / float64(h)
		}
	}
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.Ortho(-viewExtent*aspect, viewExtent*aspect, -viewExtent, viewExtent, -100*viewExtent, 100*viewExtent)
}

func (b *Backend) EndFrame(deltaTime float64) error {
	if b.platform != nil {
		b.platform.SwapBuffers()
	}
	return b.CheckError()
}

func (b *Backend) GenBuffer() uint32 {
	var handle uint32
	gl.GenBuffers(1, &handle)
	return handle
}

func (b *Backend) DeleteBuffer(handle uint32) {
	gl.DeleteBuffers(1, &handle)
}

func (b *Backend) BindBuffer(target metadata.BufferTarget, handle uint32) {
	gl.BindBuffer(glTarget(target), handle)
}

func (b *Backend) BufferData(target metadata.BufferTarget, data []byte) {
	if len(data) == 0 {
		gl.BufferData(glTarget(target), 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(glTarget(target), len(data), gl.Ptr(data), gl.STATIC_DRAW)
}

func (b *Backend) MapBuffer(target metadata.BufferTarget) ([]byte, error) {
	var size int32
	gl.GetBufferParameteriv(glTarget(target), gl.BUFFER_SIZE, &size)
	if size == 0 {
		return nil, fmt.Errorf("%w: empty buffer store", core.ErrBufferNotMapped)
	}
	ptr := gl.MapBuffer(glTarget(target), gl.READ_ONLY)
	if ptr == nil {
		return nil, fmt.Errorf("%w: glMapBuffer returned nil (%v)", core.ErrBufferNotMapped, b.CheckError())
	}
	return unsafe.Slice((*byte)(ptr), int(size)), nil
}

func (b *Backend) UnmapBuffer(target metadata.BufferTarget) bool {
	return gl.UnmapBuffer(glTarget(target))
}

func (b *Backend) EnableAttribute(kind metadata.BufferKind, components int32) {
	switch kind {
	case metadata.BufferKindVertex:
		gl.EnableClientState(gl.VERTEX_ARRAY)
		gl.VertexPointer(components, gl.FLOAT, 0, gl.PtrOffset(0))
	case metadata.BufferKindNormal:
		gl.EnableClientState(gl.NORMAL_ARRAY)
		gl.NormalPointer(gl.FLOAT, 0, gl.PtrOffset(0))
	case metadata.BufferKindTexel:
		gl.EnableClientState(gl.TEXTURE_COORD_ARRAY)
		gl.TexCoordPointer(components, gl.FLOAT, 0, gl.PtrOffset(0))
	}
}

func (b *Backend) DisableAttribute(kind metadata.BufferKind) {
	switch kind {
	case metadata.BufferKindVertex:
		gl.DisableClientState(gl.VERTEX_ARRAY)
	case metadata.BufferKindNormal:
		gl.DisableClientState(gl.NORMAL_ARRAY)
	case metadata.BufferKindTexel:
		gl.DisableClientState(gl.TEXTURE_COORD_ARRAY)
	}
}

func (b *Backend) DrawElements(kind metadata.IndexKind, count int32) {
	var mode uint32
	switch kind {
	case metadata.IndexKindStrips:
		mode = gl.TRIANGLE_STRIP
	case metadata.IndexKindFans:
		mode = gl.TRIANGLE_FAN
	default:
		mode = gl.TRIANGLES
	}
	gl.DrawElements(mode, count, gl.UNSIGNED_INT, gl.PtrOffset(0))
}

func (b *Backend) PushMatrix() {
	gl.PushMatrix()
}

func (b *Backend) PopMatrix() {
	gl.PopMatrix()
}

func (b *Backend) MultMatrix(m math.Mat4) {
	// Mat4 already has the column-major layout glMultMatrixf expects.
	gl.MultMatrixf(&m.Data[0])
}

func (b *Backend) PolygonMode(face metadata.PolygonFace, mode metadata.PolygonMode) {
	var glFace, glMode uint32
	switch face {
	case metadata.PolygonFaceFront:
		glFace = gl.FRONT
	case metadata.PolygonFaceBack:
		glFace = gl.BACK
	default:
		glFace = gl.FRONT_AND_BACK
	}
	switch mode {
	case metadata.PolygonModeLine:
		glMode = gl.LINE
	case metadata.PolygonModePoint:
		glMode = gl.POINT
	default:
		glMode = gl.FILL
	}
	gl.PolygonMode(glFace, glMode)
}

func (b *Backend) Color3ub(r, g, bl uint8) {
	gl.Color3ub(r, g, bl)
}

func (b *Backend) Color4f(c math.Vec4) {
	gl.Color4f(c.X, c.Y, c.Z, c.W)
}

func (b *Backend) ReadPixel(x, y int32) [4]uint8 {
	var pixel [4]uint8
	gl.ReadPixels(x, y, 1, 1, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&pixel[0]))
	return pixel
}

func (b *Backend) CheckError() error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("opengl error 0x%04X", code)
	}
	return nil
}

func (b *Backend) Type() renderer.RendererType {
	return renderer.OpenGL
}

func glTarget(target metadata.BufferTarget) uint32 {
	if target == metadata.BufferTargetElementArray {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}
