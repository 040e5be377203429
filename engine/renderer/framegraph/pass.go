package framegraph

import (
	"github.com/prismengine/prism/engine/renderer/metadata"
)

// RecordFunc records the commands of one pass into the per-slot command buffer.
// imageIndex is the index of the acquired presentable image, which is not the
// same namespace as the frame slot index.
type RecordFunc func(cmd CommandBuffer, imageIndex uint32) error

// PassNode describes one unit of GPU work: an optional layout transition for
// the acquired image, followed by an optional record callback. Nodes execute in
// the order they were added and are immutable once registered.
//
// If no transition is needed, set OldLayout == NewLayout.
type PassNode struct {
	// Human-readable name, for diagnostics only.
	Name string

	OldLayout metadata.ImageLayout
	NewLayout metadata.ImageLayout

	// Access and stage masks for the barrier that moves the image from
	// OldLayout to NewLayout.
	SrcAccess metadata.AccessFlags
	DstAccess metadata.AccessFlags
	SrcStage  metadata.PipelineStageFlags
	DstStage  metadata.PipelineStageFlags

	// Record may be nil for a pass that exists purely for its transition.
	Record RecordFunc

	uid string
}

// HasTransition reports whether the node requests a layout transition.
func (pn *PassNode) HasTransition() bool {
	return pn.OldLayout != pn.NewLayout
}

// UID returns the identifier assigned when the node was registered. Empty until
// the node has been added to a graph.
func (pn *PassNode) UID() string {
	return pn.uid
}

func (pn *PassNode) barrier(image interface{}) ImageBarrier {
	return ImageBarrier{
		Image:     image,
		OldLayout: pn.OldLayout,
		NewLayout: pn.NewLayout,
		SrcAccess: pn.SrcAccess,
		DstAccess: pn.DstAccess,
		SrcStage:  pn.SrcStage,
		DstStage:  pn.DstStage,
	}
}
