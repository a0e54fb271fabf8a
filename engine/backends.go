package engine

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
)

// Surface is the window an on-screen backend draws into.
type Surface interface {
	// PumpMessages processes window events and returns false once the window should close.
	PumpMessages() bool
	FramebufferSize() (int, int)
	Shutdown() error
}

// ClickSource is implemented by surfaces that report pointer clicks. Every click turns
// into a pick request.
type ClickSource interface {
	TakeClicks() [][2]int32
}

// BackendFactory creates a backend for cfg. Off-screen backends return a nil Surface.
type BackendFactory func(cfg *ApplicationConfig) (renderer.Backend, Surface, error)

var (
	backendsMu sync.RWMutex
	backends   = map[renderer.RendererType]BackendFactory{
		renderer.Headless: func(*ApplicationConfig) (renderer.Backend, Surface, error) {
			return headless.New(), nil, nil
		},
	}
)

// RegisterBackend makes a renderer type available to the engine. Binaries that open a
// window register their OpenGL factory at startup; the headless one is always there.
func RegisterBackend(t renderer.RendererType, factory BackendFactory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[t] = factory
}

func backendFactory(t renderer.RendererType) (BackendFactory, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	f, ok := backends[t]
	if !ok {
		return nil, fmt.Errorf("%w: no %s backend registered", core.ErrBackendUnknown, t)
	}
	return f, nil
}
