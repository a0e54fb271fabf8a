package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/containers"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/scene"
	"github.com/spaghettifunk/prism/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything
	EngineStageShutdown
)

// pending picks past this are dropped until the next frame drains the queue
const maxPendingPicks = 16

type pickRequest struct {
	x, y int32
	fn   func(inst *scene.Instance, ok bool)
}

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig
	isRunning    bool
	surface      Surface
	backend      renderer.Backend
	context      *renderer.Context
	collection   *scene.Collection
	watcher      *assets.Watcher
	jobs         *systems.JobSystem
	parsed       chan *assets.SceneConfig
	width        uint32
	height       uint32
	clock        *core.Clock
	lastTime     float64
	frameCount   uint64
	picks        *containers.RingQueue[pickRequest]

	quit     chan struct{}
	quitOnce sync.Once
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.FnInitialize == nil {
		return nil, fmt.Errorf("%w: game without an initialize callback", core.ErrInvalidConfig)
	}
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       g.ApplicationConfig,
		clock:        core.NewClock(),
		width:        g.ApplicationConfig.StartWidth,
		height:       g.ApplicationConfig.StartHeight,
		picks:        containers.NewRingQueue[pickRequest](maxPendingPicks),
		parsed:       make(chan *assets.SceneConfig, 1),
		quit:         make(chan struct{}),
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	core.SetLogLevel(e.config.LogLevel)
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	rendererType, err := e.config.RendererType()
	if err != nil {
		return err
	}
	factory, err := backendFactory(rendererType)
	if err != nil {
		return err
	}
	e.backend, e.surface, err = factory(e.config)
	if err != nil {
		return err
	}
	if err := e.backend.Initialize(e.config.Name, e.width, e.height); err != nil {
		return err
	}
	e.context = renderer.NewContext(e.backend)
	core.LogInfo("'%s' running on the %s renderer", e.config.Name, rendererType)

	if err := e.gameInstance.FnInitialize(e.backend); err != nil {
		return err
	}

	collection, err := e.loadScene()
	if err != nil {
		return err
	}
	e.collection = collection

	if e.config.WatchScene {
		jobs, err := systems.NewJobSystem(1, 1)
		if err != nil {
			return err
		}
		e.jobs = jobs
		w, err := assets.NewWatcher(e.config.ScenePath)
		if err != nil {
			return err
		}
		w.Start()
		e.watcher = w
		core.LogInfo("watching %s for changes", w.Path())
	}

	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

// loadScene builds a new collection from the scene file, if any, and hands it to the game.
func (e *Engine) loadScene() (*scene.Collection, error) {
	var cfg *assets.SceneConfig
	if e.config.ScenePath != "" {
		var err error
		if cfg, err = assets.LoadSceneConfig(e.config.ScenePath); err != nil {
			return nil, err
		}
	}
	return e.buildScene(cfg)
}

// buildScene must run on the render thread since it creates geometry buffers.
func (e *Engine) buildScene(cfg *assets.SceneConfig) (*scene.Collection, error) {
	collection := scene.NewCollection()
	if cfg != nil {
		if err := cfg.Build(e.backend, collection); err != nil {
			collection.Clear()
			return nil, err
		}
	}
	if e.gameInstance.FnOnSceneLoaded != nil {
		if err := e.gameInstance.FnOnSceneLoaded(collection); err != nil {
			collection.Clear()
			return nil, err
		}
	}
	core.LogDebug("scene loaded with %d instances", collection.Len())
	return collection, nil
}

// reloadScene swaps in a freshly built collection. A scene that fails to load leaves the
// current one in place.
func (e *Engine) reloadScene() {
	e.swapScene(e.loadScene())
}

func (e *Engine) swapScene(collection *scene.Collection, err error) {
	if err != nil {
		core.LogError("scene reload failed, keeping the current scene: %s", err)
		return
	}
	e.collection.Clear()
	e.collection = collection
	core.LogInfo("scene reloaded from %s", e.config.ScenePath)
}

// parseSceneAsync reads and decodes the scene file on the job system. The result lands in
// e.parsed where drainEvents builds it on the render thread; a newer parse replaces a
// pending one.
func (e *Engine) parseSceneAsync(path string) {
	queued := e.jobs.TrySubmit(systems.JobTask{
		Name: "parse " + path,
		Run: func() (any, error) {
			return assets.LoadSceneConfig(path)
		},
		OnComplete: func(result any) {
			cfg := result.(*assets.SceneConfig)
			for {
				select {
				case e.parsed <- cfg:
					return
				default:
				}
				select {
				case <-e.parsed:
				default:
				}
			}
		},
		OnFailure: func(err error) {
			core.LogError("scene reload failed, keeping the current scene: %s", err)
		},
	})
	if !queued {
		core.LogWarn("scene parse already pending, skipping change to %s", path)
	}
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("%w: engine not initialized", core.ErrInvalidConfig)
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	limit := e.config.FrameLimit()
	for e.isRunning {
		if e.surface != nil && !e.surface.PumpMessages() {
			e.isRunning = false
			break
		}
		e.drainEvents()
		e.queueClicks()
		if !e.isRunning {
			break
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := time.Now()

		if err := e.frame(delta); err != nil {
			core.LogError("frame %d failed, shutting down: %s", e.frameCount, err)
			e.isRunning = false
			return err
		}

		core.MetricsUpdate(time.Since(frameStartTime).Seconds(), e.context.DrawCalls())
		e.lastTime = currentTime
		e.frameCount++

		if e.frameCount%120 == 0 {
			fps, frameTime := core.MetricsFrame()
			core.LogDebug("FPS: %5.1f (%4.1fms) draw calls: %d", fps, frameTime, core.MetricsDrawCalls())
		}
		if limit > 0 && e.frameCount >= limit {
			core.LogInfo("frame limit %d reached", limit)
			e.isRunning = false
		}
	}
	return nil
}

func (e *Engine) drainEvents() {
	var reloads <-chan string
	if e.watcher != nil {
		reloads = e.watcher.Reloads()
	}
	select {
	case <-e.quit:
		core.LogInfo("quit requested, shutting down.")
		e.isRunning = false
	case path := <-reloads:
		e.parseSceneAsync(path)
	case cfg := <-e.parsed:
		e.swapScene(e.buildScene(cfg))
	default:
	}
}

func (e *Engine) frame(delta float64) error {
	g := e.gameInstance
	if g.FnUpdate != nil {
		if err := g.FnUpdate(e.collection, delta); err != nil {
			return fmt.Errorf("game update: %w", err)
		}
	}

	if err := e.backend.BeginFrame(delta); err != nil {
		return err
	}
	e.context.ResetDrawCalls()

	// the pick pass draws into the same target, so it runs first and is cleared away
	if !e.picks.IsEmpty() {
		e.runPicks()
		e.backend.Clear(renderer.BackgroundColor)
	}

	var errs []error
	if err := e.collection.Render(e.context); err != nil {
		errs = append(errs, err)
	}
	if g.FnRender != nil {
		if err := g.FnRender(e.context, e.collection, delta); err != nil {
			errs = append(errs, fmt.Errorf("game render: %w", err))
		}
	}

	if err := e.backend.EndFrame(delta); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (e *Engine) runPicks() {
	for !e.picks.IsEmpty() {
		p, err := e.picks.Dequeue()
		if err != nil {
			return
		}
		e.backend.Clear(renderer.SelectionClearColor)
		inst, ok, err := e.collection.PickAt(e.context, p.x, p.y)
		if err != nil {
			core.LogError("pick at %d,%d: %s", p.x, p.y, err)
		}
		if ok {
			core.LogDebug("picked instance %d '%s' at %d,%d", inst.ID(), inst.Name(), p.x, p.y)
		}
		if p.fn != nil {
			p.fn(inst, ok)
		}
	}
}

func (e *Engine) queueClicks() {
	source, ok := e.surface.(ClickSource)
	if !ok {
		return
	}
	for _, click := range source.TakeClicks() {
		e.RequestPick(click[0], click[1], e.onPick)
	}
}

func (e *Engine) onPick(inst *scene.Instance, ok bool) {
	if !ok || e.gameInstance.FnOnPick == nil {
		return
	}
	if err := e.gameInstance.FnOnPick(inst); err != nil {
		core.LogError("game pick: %s", err)
	}
}

// RequestPick queues a pick pass at window coordinates (x, y) for the next frame. fn runs
// on the render thread with the instance found there, if any. It returns false when too
// many picks are already pending.
func (e *Engine) RequestPick(x, y int32, fn func(inst *scene.Instance, ok bool)) bool {
	if err := e.picks.Enqueue(pickRequest{x: x, y: y, fn: fn}); err != nil {
		core.LogWarn("pick at %d,%d dropped: %s", x, y, err)
		return false
	}
	return true
}

// Stop asks the loop to end after the current frame. It is safe to call from any goroutine.
func (e *Engine) Stop() {
	e.quitOnce.Do(func() { close(e.quit) })
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
	}
	if e.jobs != nil {
		errs = append(errs, e.jobs.Shutdown())
	}
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	if e.collection != nil {
		e.collection.Clear()
	}
	if e.backend != nil {
		errs = append(errs, e.backend.Shutdown())
	}
	if e.surface != nil {
		errs = append(errs, e.surface.Shutdown())
	}
	e.currentStage = EngineStageShutdown
	return errors.Join(errs...)
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Backend() renderer.Backend {
	return e.backend
}

func (e *Engine) Collection() *scene.Collection {
	return e.collection
}

func (e *Engine) FrameCount() uint64 {
	return e.frameCount
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	if e.surface != nil {
		w, h := e.surface.FramebufferSize()
		return uint32(w), uint32(h)
	}
	return e.width, e.height
}
