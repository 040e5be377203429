package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/prismengine/prism/engine/core"
	"github.com/prismengine/prism/engine/renderer/framegraph"
	"github.com/prismengine/prism/engine/renderer/metadata"
)

type VulkanQueue struct {
	Handle  vk.Queue
	context *VulkanContext
}

// Submit hands one recorded command buffer to the queue. Execution waits on the
// wait semaphore at waitStage; the signal semaphore and fence are signaled when
// the submission completes.
func (vq *VulkanQueue) Submit(cmd framegraph.CommandBuffer, wait framegraph.Semaphore, waitStage metadata.PipelineStageFlags, signal framegraph.Semaphore, fence framegraph.Fence) error {
	commandBuffer, ok := cmd.(*VulkanCommandBuffer)
	if !ok {
		err := fmt.Errorf("submit requires a Vulkan command buffer")
		core.LogError(err.Error())
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer.Handle},
	}

	if wait != nil {
		waitSemaphore, ok := wait.(*VulkanSemaphore)
		if !ok {
			err := fmt.Errorf("submit requires Vulkan semaphores")
			core.LogError(err.Error())
			return err
		}
		submitInfo.WaitSemaphoreCount = 1
		submitInfo.PWaitSemaphores = []vk.Semaphore{waitSemaphore.Handle}
		// Each wait semaphore gates the corresponding pipeline stage. 1:1 ratio.
		submitInfo.PWaitDstStageMask = []vk.PipelineStageFlags{PipelineStageFlagsToVulkan(waitStage)}
	}

	if signal != nil {
		signalSemaphore, ok := signal.(*VulkanSemaphore)
		if !ok {
			err := fmt.Errorf("submit requires Vulkan semaphores")
			core.LogError(err.Error())
			return err
		}
		submitInfo.SignalSemaphoreCount = 1
		submitInfo.PSignalSemaphores = []vk.Semaphore{signalSemaphore.Handle}
	}

	var fenceHandle vk.Fence
	if fence != nil {
		vulkanFence, ok := fence.(*VulkanFence)
		if !ok {
			err := fmt.Errorf("submit requires a Vulkan fence")
			core.LogError(err.Error())
			return err
		}
		fenceHandle = vulkanFence.Handle
	}

	if result := vk.QueueSubmit(vq.Handle, 1, []vk.SubmitInfo{submitInfo}, fenceHandle); result != vk.Success {
		err := fmt.Errorf("vkQueueSubmit failed with result: %s", VulkanResultString(result))
		core.LogError(err.Error())
		return err
	}

	commandBuffer.UpdateSubmitted()
	return nil
}

// WaitIdle blocks until the queue has drained. Used during shutdown.
func (vq *VulkanQueue) WaitIdle() error {
	if res := vk.QueueWaitIdle(vq.Handle); res != vk.Success {
		err := fmt.Errorf("queue failed to wait in idle mode with result: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	return nil
}
