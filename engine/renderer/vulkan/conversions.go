package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/prismengine/prism/engine/renderer/metadata"
)

// ImageLayoutToVulkan maps a backend-agnostic layout to the Vulkan layout.
func ImageLayoutToVulkan(layout metadata.ImageLayout) vk.ImageLayout {
	switch layout {
	case metadata.ImageLayoutUndefined:
		return vk.ImageLayoutUndefined
	case metadata.ImageLayoutColorAttachmentOptimal:
		return vk.ImageLayoutColorAttachmentOptimal
	case metadata.ImageLayoutDepthStencilAttachmentOptimal:
		return vk.ImageLayoutDepthStencilAttachmentOptimal
	case metadata.ImageLayoutShaderReadOnlyOptimal:
		return vk.ImageLayoutShaderReadOnlyOptimal
	case metadata.ImageLayoutTransferSrcOptimal:
		return vk.ImageLayoutTransferSrcOptimal
	case metadata.ImageLayoutTransferDstOptimal:
		return vk.ImageLayoutTransferDstOptimal
	case metadata.ImageLayoutPresentSource:
		return vk.ImageLayoutPresentSrc
	default:
		return vk.ImageLayoutUndefined
	}
}

// AccessFlagsToVulkan maps backend-agnostic access bits to Vulkan access bits.
func AccessFlagsToVulkan(flags metadata.AccessFlags) vk.AccessFlags {
	var out vk.AccessFlags
	if flags&metadata.AccessColorAttachmentReadBit != 0 {
		out |= vk.AccessFlags(vk.AccessColorAttachmentReadBit)
	}
	if flags&metadata.AccessColorAttachmentWriteBit != 0 {
		out |= vk.AccessFlags(vk.AccessColorAttachmentWriteBit)
	}
	if flags&metadata.AccessTransferReadBit != 0 {
		out |= vk.AccessFlags(vk.AccessTransferReadBit)
	}
	if flags&metadata.AccessTransferWriteBit != 0 {
		out |= vk.AccessFlags(vk.AccessTransferWriteBit)
	}
	if flags&metadata.AccessShaderReadBit != 0 {
		out |= vk.AccessFlags(vk.AccessShaderReadBit)
	}
	if flags&metadata.AccessMemoryReadBit != 0 {
		out |= vk.AccessFlags(vk.AccessMemoryReadBit)
	}
	return out
}

// PipelineStageFlagsToVulkan maps backend-agnostic stage bits to Vulkan stage
// bits. An empty mask maps to top-of-pipe, which waits on nothing.
func PipelineStageFlagsToVulkan(flags metadata.PipelineStageFlags) vk.PipelineStageFlags {
	var out vk.PipelineStageFlags
	if flags&metadata.PipelineStageTopOfPipeBit != 0 {
		out |= vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
	}
	if flags&metadata.PipelineStageColorAttachmentOutputBit != 0 {
		out |= vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	}
	if flags&metadata.PipelineStageTransferBit != 0 {
		out |= vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	}
	if flags&metadata.PipelineStageFragmentShaderBit != 0 {
		out |= vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	}
	if flags&metadata.PipelineStageBottomOfPipeBit != 0 {
		out |= vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit)
	}
	if out == 0 {
		out = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
	}
	return out
}
