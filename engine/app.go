package engine

import (
	"github.com/prismengine/prism/engine/renderer/framegraph"
	"github.com/prismengine/prism/engine/renderer/vulkan"
)

// App is the user-facing application description. FnSetup registers the
// application's passes on the frame graph before the first frame; FnUpdate
// runs once per frame with the delta time in seconds.
type App struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnSetup           Setup
	FnUpdate          Update
}

type Setup func(graph *framegraph.FrameGraph, renderer *vulkan.VulkanRenderer) error
type Update func(deltaTime float64) error
