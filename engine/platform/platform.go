package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/prism/engine/core"
)

func init() {
	// GLFW event handling and the GL context must stay on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window
	width  int
	height int
	// left clicks since the last TakeClicks, in framebuffer pixels with a bottom-left origin
	clicks [][2]int32
}

func New() (*Platform, error) {
	return &Platform{
		Window: nil,
	}, nil
}

// Startup opens a window with a legacy (compatibility) OpenGL 2.1 context, which still
// carries the matrix stack and client-side vertex arrays.
func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	p.Window = window
	p.width, p.height = int(width), int(height)

	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetMouseButtonCallback(p.mouseButtonCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events. It returns false once the window was asked to close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return p.Window != nil && !p.Window.ShouldClose()
}

func (p *Platform) SwapBuffers() {
	if p.Window != nil {
		p.Window.SwapBuffers()
	}
}

// FramebufferSize returns the last known framebuffer size in pixels.
func (p *Platform) FramebufferSize() (int, int) {
	return p.width, p.height
}

// GetAbsoluteTime returns the seconds elapsed since glfw was initialized.
func (p *Platform) GetAbsoluteTime() float64 {
	return glfw.GetTime()
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	core.LogDebug("framebuffer resized to %dx%d", width, height)
	p.width, p.height = width, height
}

// TakeClicks returns the left clicks gathered by PumpMessages and forgets them.
func (p *Platform) TakeClicks() [][2]int32 {
	clicks := p.clicks
	p.clicks = nil
	return clicks
}

func (p *Platform) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft || action != glfw.Press {
		return
	}
	cx, cy := w.GetCursorPos()
	ww, wh := w.GetSize()
	if ww == 0 || wh == 0 {
		return
	}
	// cursor coordinates are in screen units from the top-left, GL reads pixels from the bottom-left
	x := int32(cx * float64(p.width) / float64(ww))
	y := int32(float64(p.height) - 1 - cy*float64(p.height)/float64(wh))
	p.clicks = append(p.clicks, [2]int32{x, y})
}
