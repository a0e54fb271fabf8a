package renderer

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
)

type RendererType uint8

const (
	Headless RendererType = iota
	OpenGL
)

func (t RendererType) String() string {
	switch t {
	case Headless:
		return "headless"
	case OpenGL:
		return "opengl"
	default:
		return fmt.Sprintf("RendererType(%d)", uint8(t))
	}
}

// ParseRendererType maps a config value to a RendererType.
func ParseRendererType(s string) (RendererType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "headless":
		return Headless, nil
	case "opengl", "gl":
		return OpenGL, nil
	default:
		return Headless, fmt.Errorf("%w: %q", core.ErrBackendUnknown, s)
	}
}

var (
	// BackgroundColor fills the visible frame.
	BackgroundColor = math.NewVec4(0.1, 0.1, 0.12, 1.0)
	// SelectionClearColor fills the target before a pick pass. It encodes id 0, which no
	// object ever gets, so a pick on empty space finds nothing.
	SelectionClearColor = math.NewVec4(0, 0, 0, 0)
)

// Context is handed down a render traversal. It carries the backend and the render mode
// instead of a process-wide flag.
type Context struct {
	Backend Backend
	// SelectionMode is set during the pick pass: objects draw their id colour only.
	SelectionMode bool
	// SelectionColor is used for selected objects in the normal pass.
	SelectionColor math.Vec4
	drawCalls      uint32
}

func NewContext(backend Backend) *Context {
	return &Context{
		Backend:        backend,
		SelectionColor: math.NewVec4(1.0, 0.6, 0.0, 1.0),
	}
}

// SelectionContext returns a copy of ctx configured for the pick pass.
func (ctx *Context) SelectionContext() *Context {
	return &Context{
		Backend:        ctx.Backend,
		SelectionMode:  true,
		SelectionColor: ctx.SelectionColor,
	}
}

// CountDraw records one draw call for frame metrics.
func (ctx *Context) CountDraw() {
	ctx.drawCalls++
}

func (ctx *Context) DrawCalls() uint32 {
	return ctx.drawCalls
}

func (ctx *Context) ResetDrawCalls() {
	ctx.drawCalls = 0
}
