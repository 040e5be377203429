package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/prismengine/prism/engine/core"
)

type VulkanFence struct {
	Handle  vk.Fence
	context *VulkanContext
}

// NewFence creates a fence, optionally in the signaled state. A signaled start
// lets the first wait on a fresh frame slot pass without a prior submission.
func NewFence(context *VulkanContext, createSignaled bool) (*VulkanFence, error) {
	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if createSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var pFence vk.Fence
	if res := vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &pFence); res != vk.Success {
		err := fmt.Errorf("failed to create fence with result: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	return &VulkanFence{
		Handle:  pFence,
		context: context,
	}, nil
}

// Wait blocks until the fence is signaled or the timeout elapses.
func (vf *VulkanFence) Wait(timeoutNS uint64) error {
	result := vk.WaitForFences(vf.context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}, vk.True, timeoutNS)
	if result != vk.Success {
		err := fmt.Errorf("fence wait failed with result: %s", VulkanResultString(result))
		core.LogError(err.Error())
		return err
	}
	return nil
}

// Reset returns the fence to the unsignaled state.
func (vf *VulkanFence) Reset() error {
	if res := vk.ResetFences(vf.context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}); res != vk.Success {
		err := fmt.Errorf("failed to reset fence with result: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (vf *VulkanFence) Destroy() {
	if vf.Handle != vk.NullFence {
		vk.DestroyFence(vf.context.Device.LogicalDevice, vf.Handle, vf.context.Allocator)
		vf.Handle = vk.NullFence
	}
}
