package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/prismengine/prism/engine/core"
	"github.com/prismengine/prism/engine/renderer/framegraph"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	// Command buffer state.
	State VulkanCommandBufferState

	context *VulkanContext
	pool    vk.CommandPool
}

func NewVulkanCommandBuffer(context *VulkanContext, pool vk.CommandPool) (*VulkanCommandBuffer, error) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: 1,
		Level:              vk.CommandBufferLevelPrimary,
		PNext:              nil,
	}

	handles := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(context.Device.LogicalDevice, &allocateInfo, handles); res != vk.Success {
		err := fmt.Errorf("failed to allocate command buffer with result: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}

	return &VulkanCommandBuffer{
		Handle:  handles[0],
		State:   COMMAND_BUFFER_STATE_READY,
		context: context,
		pool:    pool,
	}, nil
}

// Begin starts a one-time-submit recording. Beginning implicitly resets any
// previously recorded contents; the pool is created with the reset bit.
func (v *VulkanCommandBuffer) Begin() error {
	beginInfo := &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}

	if res := vk.BeginCommandBuffer(v.Handle, beginInfo); res != vk.Success {
		err := fmt.Errorf("failed to begin command buffer with result: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING

	return nil
}

func (v *VulkanCommandBuffer) End() error {
	if res := vk.EndCommandBuffer(v.Handle); res != vk.Success {
		err := fmt.Errorf("failed to end command buffer with result: %s", VulkanResultString(res))
		core.LogError(err.Error())
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

// Barrier records a single-image pipeline barrier transitioning the image
// between layouts, scoped by the access and stage masks of the description.
// Queue family ownership is never transferred.
func (v *VulkanCommandBuffer) Barrier(barrier framegraph.ImageBarrier) {
	image, ok := barrier.Image.(vk.Image)
	if !ok {
		core.LogError("image barrier target is not a Vulkan image handle, skipping barrier")
		return
	}

	imageBarrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       AccessFlagsToVulkan(barrier.SrcAccess),
		DstAccessMask:       AccessFlagsToVulkan(barrier.DstAccess),
		OldLayout:           ImageLayoutToVulkan(barrier.OldLayout),
		NewLayout:           ImageLayoutToVulkan(barrier.NewLayout),
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	vk.CmdPipelineBarrier(
		v.Handle,
		PipelineStageFlagsToVulkan(barrier.SrcStage),
		PipelineStageFlagsToVulkan(barrier.DstStage),
		0,
		0, nil,
		0, nil,
		1, []vk.ImageMemoryBarrier{imageBarrier})
}

func (v *VulkanCommandBuffer) UpdateSubmitted() {
	v.State = COMMAND_BUFFER_STATE_SUBMITTED
}

func (v *VulkanCommandBuffer) Free() {
	if v.Handle != nil {
		vk.FreeCommandBuffers(v.context.Device.LogicalDevice, v.pool, 1, []vk.CommandBuffer{v.Handle})
		v.Handle = nil
	}
	v.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}
