package framegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismengine/prism/engine/renderer/metadata"
)

func TestHasTransition(t *testing.T) {
	node := &PassNode{
		OldLayout: metadata.ImageLayoutUndefined,
		NewLayout: metadata.ImageLayoutColorAttachmentOptimal,
	}
	assert.True(t, node.HasTransition())

	node.OldLayout = node.NewLayout
	assert.False(t, node.HasTransition(), "equal layouts mean no barrier")
}

func TestUIDAssignedOnRegistration(t *testing.T) {
	graph, _, _, _, _ := newTestGraph(1)

	node := &PassNode{Name: "clear"}
	assert.Empty(t, node.UID(), "uid is empty before registration")

	graph.AddPass(node)
	require.NotEmpty(t, node.UID())

	other := &PassNode{Name: "clear"}
	graph.AddPass(other)
	assert.NotEqual(t, node.UID(), other.UID(), "uids are unique even for equal names")
}

func TestBarrierDescribesNode(t *testing.T) {
	node := &PassNode{
		OldLayout: metadata.ImageLayoutTransferDstOptimal,
		NewLayout: metadata.ImageLayoutPresentSource,
		SrcAccess: metadata.AccessTransferWriteBit,
		DstAccess: metadata.AccessMemoryReadBit,
		SrcStage:  metadata.PipelineStageTransferBit,
		DstStage:  metadata.PipelineStageBottomOfPipeBit,
	}

	barrier := node.barrier("image3")

	assert.Equal(t, "image3", barrier.Image)
	assert.Equal(t, node.OldLayout, barrier.OldLayout)
	assert.Equal(t, node.NewLayout, barrier.NewLayout)
	assert.Equal(t, node.SrcAccess, barrier.SrcAccess)
	assert.Equal(t, node.DstAccess, barrier.DstAccess)
	assert.Equal(t, node.SrcStage, barrier.SrcStage)
	assert.Equal(t, node.DstStage, barrier.DstStage)
}
