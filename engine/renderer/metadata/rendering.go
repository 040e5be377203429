package metadata

// ImageLayout describes how an image's memory is currently organized and which
// access patterns are valid against it. Values are backend-agnostic; the
// renderer backend translates them to API-specific layouts.
type ImageLayout uint32

const (
	ImageLayoutUndefined ImageLayout = iota
	ImageLayoutColorAttachmentOptimal
	ImageLayoutDepthStencilAttachmentOptimal
	ImageLayoutShaderReadOnlyOptimal
	ImageLayoutTransferSrcOptimal
	ImageLayoutTransferDstOptimal
	ImageLayoutPresentSource
)

func (il ImageLayout) String() string {
	switch il {
	case ImageLayoutUndefined:
		return "undefined"
	case ImageLayoutColorAttachmentOptimal:
		return "color_attachment_optimal"
	case ImageLayoutDepthStencilAttachmentOptimal:
		return "depth_stencil_attachment_optimal"
	case ImageLayoutShaderReadOnlyOptimal:
		return "shader_read_only_optimal"
	case ImageLayoutTransferSrcOptimal:
		return "transfer_src_optimal"
	case ImageLayoutTransferDstOptimal:
		return "transfer_dst_optimal"
	case ImageLayoutPresentSource:
		return "present_source"
	default:
		return "unknown"
	}
}

// AccessFlags is a bitmask of memory access types a barrier orders against.
type AccessFlags uint32

const (
	AccessNone                    AccessFlags = 0
	AccessColorAttachmentReadBit  AccessFlags = 0x1
	AccessColorAttachmentWriteBit AccessFlags = 0x2
	AccessTransferReadBit         AccessFlags = 0x4
	AccessTransferWriteBit        AccessFlags = 0x8
	AccessShaderReadBit           AccessFlags = 0x10
	AccessMemoryReadBit           AccessFlags = 0x20
)

// PipelineStageFlags is a bitmask of pipeline stages a barrier or queue wait
// synchronizes on.
type PipelineStageFlags uint32

const (
	PipelineStageNone                     PipelineStageFlags = 0
	PipelineStageTopOfPipeBit             PipelineStageFlags = 0x1
	PipelineStageColorAttachmentOutputBit PipelineStageFlags = 0x2
	PipelineStageTransferBit              PipelineStageFlags = 0x4
	PipelineStageFragmentShaderBit        PipelineStageFlags = 0x8
	PipelineStageBottomOfPipeBit          PipelineStageFlags = 0x10
)
