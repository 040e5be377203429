package engine

import (
	"errors"
	"fmt"

	"github.com/prismengine/prism/engine/core"
	"github.com/prismengine/prism/engine/platform"
	"github.com/prismengine/prism/engine/renderer/framegraph"
	"github.com/prismengine/prism/engine/renderer/vulkan"
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
)

type Engine struct {
	currentStage Stage
	appInstance  *App
	isRunning    bool
	isSuspended  bool
	platform     *platform.Platform
	renderer     *vulkan.VulkanRenderer
	graph        *framegraph.FrameGraph
	width        uint32
	height       uint32
	clock        *core.Clock
	lastTime     float64
}

func New(app *App) (*Engine, error) {
	if app.ApplicationConfig == nil {
		app.ApplicationConfig = DefaultConfig()
	}

	p, err := platform.New()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		appInstance:  app,
		clock:        core.NewClock(),
		platform:     p,
		isRunning:    true,
		isSuspended:  false,
		width:        app.ApplicationConfig.StartWidth,
		height:       app.ApplicationConfig.StartHeight,
		lastTime:     0,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	if err := core.SetLogLevel(e.appInstance.ApplicationConfig.LogLevel); err != nil {
		return err
	}

	// initialize events
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}

	core.MetricsInitialize()

	// register some events
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	core.EventRegister(core.EVENT_CODE_KEY_RELEASED, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)

	if err := e.platform.Startup(e.appInstance.ApplicationConfig.Name,
		e.appInstance.ApplicationConfig.StartPosX,
		e.appInstance.ApplicationConfig.StartPosY,
		e.appInstance.ApplicationConfig.StartWidth,
		e.appInstance.ApplicationConfig.StartHeight); err != nil {
		return err
	}

	e.renderer = vulkan.New(e.platform)
	if err := e.renderer.Initialize(e.appInstance.ApplicationConfig.Name, e.width, e.height); err != nil {
		return err
	}

	e.graph = framegraph.New(e.renderer.Device(), e.renderer.Swapchain(), e.renderer.GraphicsQueue())

	if e.appInstance.FnSetup != nil {
		if err := e.appInstance.FnSetup(e.graph, e.renderer); err != nil {
			return err
		}
	}

	if err := e.graph.Initialize(); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		if !e.platform.PumpMessages() {
			e.isRunning = false
		}

		if !e.isSuspended {
			// Update clock and get delta time.
			e.clock.Update()

			currentTime := e.clock.Elapsed()
			delta := currentTime - e.lastTime
			frameStartTime := platform.GetAbsoluteTime()

			if e.appInstance.FnUpdate != nil {
				if err := e.appInstance.FnUpdate(delta); err != nil {
					core.LogError("application update failed, shutting down.")
					e.isRunning = false
					break
				}
			}

			if err := e.graph.ExecuteFrame(); err != nil {
				if errors.Is(err, core.ErrSwapchainOutOfDate) {
					// The surface no longer matches the swapchain. Recreation
					// is not handled yet, so stop cleanly instead of spinning.
					core.LogWarn("swapchain out of date, shutting down.")
				} else {
					core.LogError("frame execution failed: %s", err)
				}
				e.isRunning = false
				break
			}

			frameElapsedTime := platform.GetAbsoluteTime() - frameStartTime
			core.MetricsUpdate(frameElapsedTime)
			if e.graph.FrameNumber()%240 == 0 {
				fps, msAvg := core.MetricsFrame()
				core.LogDebug("fps: %.0f, frame avg: %.2fms", fps, msAvg)
			}

			// Deferred platform events are handled at a defined point in the
			// frame, after the frame's rendering work is submitted.
			core.EventProcessQueued()

			e.lastTime = currentTime
		}
	}

	e.isRunning = false
	return nil
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown

	if e.renderer != nil {
		e.renderer.WaitIdle()
	}
	if e.graph != nil {
		e.graph.Destroy()
	}
	if e.renderer != nil {
		if err := e.renderer.Shutdown(); err != nil {
			return err
		}
	}
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	if err := e.platform.Shutdown(); err != nil {
		return err
	}
	e.currentStage = EngineStageUninitialized
	return nil
}

// GetFramebufferSize returns the width and height (in this order) of the
// application framebuffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
	}
}

func (e *Engine) onKey(context core.EventContext) {
	ke, ok := context.Data.(core.KeyEvent)
	if !ok {
		core.LogError("wrong event data associated with the event type `%d`", context.Type)
		return
	}

	if context.Type == core.EVENT_CODE_KEY_PRESSED {
		if ke.KeyCode == core.KEY_ESCAPE {
			// NOTE: Technically firing an event to itself, but there may be other listeners.
			core.EventFire(core.EventContext{
				Type: core.EVENT_CODE_APPLICATION_QUIT,
			})
			return
		}
		core.LogDebug("key %d pressed in window.", ke.KeyCode)
	} else if context.Type == core.EVENT_CODE_KEY_RELEASED {
		core.LogDebug("key %d released in window.", ke.KeyCode)
	}
}

func (e *Engine) onResized(context core.EventContext) {
	se, ok := context.Data.(core.SystemEvent)
	if !ok {
		core.LogError("wrong event data associated with the event type `%d`", context.Type)
		return
	}

	if se.WindowWidth == e.width && se.WindowHeight == e.height {
		return
	}
	e.width = se.WindowWidth
	e.height = se.WindowHeight

	// Minimization suspends the loop until the window has a size again.
	if se.WindowWidth == 0 || se.WindowHeight == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.renderer != nil {
		e.renderer.Resized(se.WindowWidth, se.WindowHeight)
	}
}
