package engine

import (
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/scene"
)

// Game is the set of callbacks the engine drives. Only FnInitialize is required.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	// FnOnSceneLoaded runs after the scene collection was (re)built, before it is first
	// drawn. Instances added here are owned by the engine like the ones from the file.
	FnOnSceneLoaded OnSceneLoaded
	FnUpdate        Update
	FnRender        Render
	// FnOnPick runs for every click on the surface that hit an instance.
	FnOnPick        OnPick
	FnOnResize      OnResize
	FnShutdown      Shutdown
}

type Initialize func(backend renderer.Backend) error
type OnSceneLoaded func(collection *scene.Collection) error
type Update func(collection *scene.Collection, deltaTime float64) error
type Render func(ctx *renderer.Context, collection *scene.Collection, deltaTime float64) error
type OnPick func(inst *scene.Instance) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
