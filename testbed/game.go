package testbed

import (
	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/geometry"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/scene"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	backend renderer.Backend
	width   uint32
	height  uint32

	// spinning instances, rotated a little every frame
	spinners []uint32
	elapsed  float64
}

// rotation speed of the spinners, in radians per second
const spinSpeed float32 = 0.5

func NewTestGame(cfg *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: cfg,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnOnSceneLoaded = tg.OnSceneLoaded
	tg.FnUpdate = tg.Update
	tg.FnOnPick = tg.OnPick
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Initialize(backend renderer.Backend) error {
	core.LogDebug("TestGame Initialize fn....")
	state := g.State.(*gameState)
	state.backend = backend
	return nil
}

// OnSceneLoaded adds a small showcase when the scene file brought nothing, and picks
// the selected instances as spinners.
func (g *TestGame) OnSceneLoaded(collection *scene.Collection) error {
	state := g.State.(*gameState)

	if collection.Len() == 0 {
		core.LogInfo("empty scene, placing the testbed showcase")
		g.placeShowcase(collection)
	}

	state.spinners = collection.SelectedIDs()
	collection.UnselectAll()
	return nil
}

func (g *TestGame) placeShowcase(collection *scene.Collection) {
	state := g.State.(*gameState)

	floor := geometry.NewPlane(state.backend, "floor", 16, 16, 4, 4)
	floor.SetColor(math.NewVec4(0.25, 0.25, 0.3, 1.0))
	floorInstance := scene.NewInstanceWithGeometry(floor)
	floorInstance.SetMatrix(math.NewMat4EulerX(math.DegToRad(-90))).Translate(0, -2, 0)
	collection.Add(floorInstance)

	crate := geometry.NewCube(state.backend, "crate", 2, 2, 2)
	crate.SetColor(math.NewVec4(0.8, 0.4, 0.1, 1.0))
	first := scene.NewInstanceWithGeometry(crate)
	first.Translate(-4, 0, 0).Select()
	collection.Add(first)

	// same mesh, placed twice more
	previous := first
	for i := 0; i < 2; i++ {
		next := previous.Instanciate()
		next.Translate(4, 0, 0)
		collection.Add(next)
		previous = next
	}

	glass := geometry.NewCube(state.backend, "glass", 3, 3, 3)
	glass.SetColor(math.NewVec4(0.2, 0.6, 0.9, 0.4))
	glassInstance := scene.NewInstanceWithGeometry(glass)
	glassInstance.Translate(0, 3, 0)
	collection.Add(glassInstance)
}

func (g *TestGame) Update(collection *scene.Collection, deltaTime float64) error {
	state := g.State.(*gameState)
	state.elapsed += deltaTime

	rotation := math.NewMat4EulerY(spinSpeed * float32(deltaTime))
	for _, id := range state.spinners {
		inst, ok := collection.Get(id)
		if !ok {
			continue
		}
		// spin in place: undo the translation, rotate, put it back
		position := math.NewVec3Zero().Transform(inst.Matrix())
		inst.Translate(-position.X, -position.Y, -position.Z).
			MultMatrix(rotation).
			Translate(position.X, position.Y, position.Z)
	}

	if state.elapsed >= 5 {
		state.elapsed = 0
		box := collection.BoundingBox()
		fps, frameTime := core.MetricsFrame()
		core.LogInfo("FPS: %5.1f(%4.1fms) instances=%d scene center=[%.2f %.2f %.2f]",
			fps, frameTime, collection.Len(), box.Center().X, box.Center().Y, box.Center().Z)
	}
	return nil
}

// OnPick starts a clicked instance spinning, or stops it when it already spins.
func (g *TestGame) OnPick(inst *scene.Instance) error {
	state := g.State.(*gameState)
	for i, id := range state.spinners {
		if id == inst.ID() {
			state.spinners = append(state.spinners[:i], state.spinners[i+1:]...)
			core.LogInfo("'%s' stops spinning", inst.Name())
			return nil
		}
	}
	state.spinners = append(state.spinners, inst.ID())
	core.LogInfo("'%s' starts spinning", inst.Name())
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogDebug("TestGame Shutdown fn....")
	return nil
}
