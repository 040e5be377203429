package testbed

import (
	stdmath "math"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/prismengine/prism/engine"
	"github.com/prismengine/prism/engine/core"
	"github.com/prismengine/prism/engine/renderer/framegraph"
	"github.com/prismengine/prism/engine/renderer/metadata"
	"github.com/prismengine/prism/engine/renderer/vulkan"
)

type TestApp struct {
	*engine.App
}

type appState struct {
	// Presentable image handles, captured during setup for the clear pass.
	images []vk.Image

	// Accumulated time in seconds, drives the clear color animation.
	elapsed float64
}

func NewTestApp() (*TestApp, error) {
	state := &appState{}

	ta := &TestApp{
		App: &engine.App{
			ApplicationConfig: &engine.ApplicationConfig{
				StartPosX:   100,
				StartPosY:   100,
				StartWidth:  1280,
				StartHeight: 720,
				Name:        "Prism Testbed",
				LogLevel:    "debug",
			},
			State: state,
		},
	}

	ta.FnSetup = ta.Setup
	ta.FnUpdate = ta.Update

	return ta, nil
}

// Setup registers two passes. The first transitions the acquired image into a
// transfer-writable layout and clears it with an animated color. The second
// hands the image over to the presentation engine; it records nothing itself.
func (a *TestApp) Setup(graph *framegraph.FrameGraph, renderer *vulkan.VulkanRenderer) error {
	state := a.State.(*appState)

	for _, handle := range renderer.Swapchain().ImageHandles() {
		image, ok := handle.(vk.Image)
		if !ok {
			core.LogError("presentable image handle is not a Vulkan image")
			continue
		}
		state.images = append(state.images, image)
	}

	graph.AddPass(&framegraph.PassNode{
		Name:      "clear",
		OldLayout: metadata.ImageLayoutUndefined,
		NewLayout: metadata.ImageLayoutTransferDstOptimal,
		SrcAccess: metadata.AccessNone,
		DstAccess: metadata.AccessTransferWriteBit,
		SrcStage:  metadata.PipelineStageTopOfPipeBit,
		DstStage:  metadata.PipelineStageTransferBit,
		Record: func(cmd framegraph.CommandBuffer, imageIndex uint32) error {
			return state.recordClear(cmd, imageIndex)
		},
	})

	graph.AddPass(&framegraph.PassNode{
		Name:      "present",
		OldLayout: metadata.ImageLayoutTransferDstOptimal,
		NewLayout: metadata.ImageLayoutPresentSource,
		SrcAccess: metadata.AccessTransferWriteBit,
		DstAccess: metadata.AccessMemoryReadBit,
		SrcStage:  metadata.PipelineStageTransferBit,
		DstStage:  metadata.PipelineStageBottomOfPipeBit,
	})

	return nil
}

func (a *TestApp) Update(deltaTime float64) error {
	state := a.State.(*appState)
	state.elapsed += deltaTime
	return nil
}

func (s *appState) recordClear(cmd framegraph.CommandBuffer, imageIndex uint32) error {
	vcb, ok := cmd.(*vulkan.VulkanCommandBuffer)
	if !ok {
		core.LogError("clear pass requires a Vulkan command buffer")
		return nil
	}

	// The clear value is a C union, so the float view is written through a cast.
	clearColor := vk.ClearColorValue{}
	floats := (*[4]float32)(unsafe.Pointer(&clearColor))
	floats[0] = float32(0.5 + 0.5*stdmath.Sin(s.elapsed))
	floats[1] = float32(0.5 + 0.5*stdmath.Sin(s.elapsed+2.0))
	floats[2] = float32(0.5 + 0.5*stdmath.Sin(s.elapsed+4.0))
	floats[3] = 1.0

	subresourceRange := vk.ImageSubresourceRange{
		AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
		BaseMipLevel:   0,
		LevelCount:     1,
		BaseArrayLayer: 0,
		LayerCount:     1,
	}

	vk.CmdClearColorImage(
		vcb.Handle,
		s.images[imageIndex],
		vk.ImageLayoutTransferDstOptimal,
		&clearColor,
		1,
		[]vk.ImageSubresourceRange{subresourceRange})

	return nil
}
