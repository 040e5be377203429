package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageLayoutString(t *testing.T) {
	assert.Equal(t, "undefined", ImageLayoutUndefined.String())
	assert.Equal(t, "transfer_dst_optimal", ImageLayoutTransferDstOptimal.String())
	assert.Equal(t, "present_source", ImageLayoutPresentSource.String())
	assert.Equal(t, "unknown", ImageLayout(99).String())
}

func TestFlagBitsAreDistinct(t *testing.T) {
	access := []AccessFlags{
		AccessColorAttachmentReadBit,
		AccessColorAttachmentWriteBit,
		AccessTransferReadBit,
		AccessTransferWriteBit,
		AccessShaderReadBit,
		AccessMemoryReadBit,
	}
	var combined AccessFlags
	for _, bit := range access {
		assert.Zero(t, combined&bit, "access bits must not overlap")
		combined |= bit
	}

	stages := []PipelineStageFlags{
		PipelineStageTopOfPipeBit,
		PipelineStageColorAttachmentOutputBit,
		PipelineStageTransferBit,
		PipelineStageFragmentShaderBit,
		PipelineStageBottomOfPipeBit,
	}
	var combinedStages PipelineStageFlags
	for _, bit := range stages {
		assert.Zero(t, combinedStages&bit, "stage bits must not overlap")
		combinedStages |= bit
	}
}
