package framegraph

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/prismengine/prism/engine/core"
	"github.com/prismengine/prism/engine/renderer/metadata"
)

// How long a frame cycle may block on the in-flight fence or image acquisition.
const fenceWaitTimeoutNS uint64 = math.MaxUint64

// frameSlot is the fixed set of recording/synchronization resources reused
// every slotCount-th cycle. Slot contents are overwritten each time the slot's
// round-robin turn recurs; nothing is reallocated per frame.
type frameSlot struct {
	cmd CommandBuffer

	// Signaled by image acquisition, waited on by the graphics submission.
	imageAvailable Semaphore
	// Signaled by the graphics submission, waited on by presentation.
	queueComplete Semaphore
	// Signaled when the slot's previous submission has fully executed.
	inFlight Fence
}

// FrameGraph owns an ordered list of pass nodes and drives the
// acquire/record/submit/present cycle once per ExecuteFrame call. It holds its
// collaborators by reference and must not outlive them.
type FrameGraph struct {
	device        Device
	target        PresentationTarget
	graphicsQueue Queue

	passes []*PassNode
	slots  []*frameSlot

	// Presentable image handles, captured once at Initialize. Must be refreshed
	// if the presentation surface is ever recreated, which this graph does not
	// handle.
	images []interface{}

	frameNumber uint64
	initialized bool
}

// New constructs a graph over externally owned collaborators. The present
// queue is encapsulated by the presentation target.
func New(device Device, target PresentationTarget, graphicsQueue Queue) *FrameGraph {
	return &FrameGraph{
		device:        device,
		target:        target,
		graphicsQueue: graphicsQueue,
	}
}

// AddPass appends one pass node to the execution list. Nodes execute in the
// order they are added. Call during setup only; not safe for concurrent use.
func (fg *FrameGraph) AddPass(node *PassNode) {
	node.uid = uuid.New().String()
	fg.passes = append(fg.passes, node)
	core.LogDebug("frame graph: registered pass '%s' (%s)", node.Name, node.uid)
}

// Initialize allocates per-slot resources: one command buffer, two semaphores
// and one fence per presentable image. Must be called after the presentation
// target's image set is known and before the first ExecuteFrame.
//
// Fences are created signaled so that the first wait on a slot does not block
// forever waiting for a submission that never happened.
func (fg *FrameGraph) Initialize() error {
	slotCount := fg.target.ImageCount()
	if slotCount == 0 {
		core.LogError(core.ErrNoSwapchainImages.Error())
		return core.ErrNoSwapchainImages
	}

	fg.images = fg.target.ImageHandles()

	fg.slots = make([]*frameSlot, slotCount)
	for i := uint32(0); i < slotCount; i++ {
		cmd, err := fg.device.AllocateCommandBuffer()
		if err != nil {
			return err
		}
		imageAvailable, err := fg.device.CreateSemaphore()
		if err != nil {
			return err
		}
		queueComplete, err := fg.device.CreateSemaphore()
		if err != nil {
			return err
		}
		inFlight, err := fg.device.CreateFence(true)
		if err != nil {
			return err
		}
		fg.slots[i] = &frameSlot{
			cmd:            cmd,
			imageAvailable: imageAvailable,
			queueComplete:  queueComplete,
			inFlight:       inFlight,
		}
	}

	fg.initialized = true
	core.LogInfo("frame graph initialized with %d slots and %d passes", slotCount, len(fg.passes))
	return nil
}

// ExecuteFrame runs exactly one acquire/record/submit/present cycle. Intended
// to be invoked once per iteration of the application loop. Any device failure
// is fatal to the cycle and propagates to the caller; no partial rollback is
// attempted. A surface reported out of date surfaces as
// core.ErrSwapchainOutOfDate, recreation being the caller's concern.
func (fg *FrameGraph) ExecuteFrame() error {
	if !fg.initialized {
		core.LogError(core.ErrNotInitialized.Error())
		return core.ErrNotInitialized
	}

	// Round-robin slot selection. At most len(slots) frames are in flight;
	// the fence wait below is the sole backpressure mechanism.
	slot := fg.slots[fg.frameNumber%uint64(len(fg.slots))]

	// Wait for this slot's previous submission to complete, so CPU recording
	// never races GPU execution of the same slot's resources.
	if err := slot.inFlight.Wait(fenceWaitTimeoutNS); err != nil {
		core.LogError("in-flight fence wait failure: %s", err)
		return err
	}

	// Acquire the next presentable image, signaling the slot's imageAvailable
	// semaphore on completion. The acquired index is independent of the slot
	// index: the slot indexes synchronization objects, the acquired index
	// indexes the presentable image.
	imageIndex, err := fg.target.AcquireNextImage(fenceWaitTimeoutNS, slot.imageAvailable)
	if err != nil {
		return err
	}
	if int(imageIndex) >= len(fg.images) {
		err := fmt.Errorf("acquired image index %d out of range (%d images)", imageIndex, len(fg.images))
		core.LogError(err.Error())
		return err
	}

	// Begin a one-time-submit recording, implicitly resetting the buffer.
	if err := slot.cmd.Begin(); err != nil {
		return err
	}

	// For each pass in registration order: insert the requested layout
	// transition, then invoke the record callback. The callback's commands
	// execute between this pass's barrier and the next pass's barrier.
	for _, pass := range fg.passes {
		if pass.HasTransition() {
			slot.cmd.Barrier(pass.barrier(fg.images[imageIndex]))
		}
		if pass.Record != nil {
			if err := pass.Record(slot.cmd, imageIndex); err != nil {
				core.LogError("pass '%s' record failed: %s", pass.Name, err)
				return err
			}
		}
	}

	if err := slot.cmd.End(); err != nil {
		return err
	}

	// Unsignal the fence before submit; the submission signals it again when
	// the GPU finishes this slot's work.
	if err := slot.inFlight.Reset(); err != nil {
		return err
	}

	// Submit: rendering may not write color output until the image is
	// available; queueComplete and the fence mark completion.
	if err := fg.graphicsQueue.Submit(
		slot.cmd,
		slot.imageAvailable,
		metadata.PipelineStageColorAttachmentOutputBit,
		slot.queueComplete,
		slot.inFlight); err != nil {
		return err
	}

	// Give the image back to the surface once rendering has completed.
	if err := fg.target.Present(imageIndex, slot.queueComplete); err != nil {
		return err
	}

	fg.frameNumber++
	return nil
}

// FrameNumber returns the number of completed cycles.
func (fg *FrameGraph) FrameNumber() uint64 {
	return fg.frameNumber
}

// PassCount returns the number of registered passes.
func (fg *FrameGraph) PassCount() int {
	return len(fg.passes)
}

// Destroy releases all slot resources. The caller must guarantee the device
// has finished executing submitted work before calling.
func (fg *FrameGraph) Destroy() {
	for _, slot := range fg.slots {
		if slot == nil {
			continue
		}
		slot.cmd.Free()
		slot.imageAvailable.Destroy()
		slot.queueComplete.Destroy()
		slot.inFlight.Destroy()
	}
	fg.slots = nil
	fg.images = nil
	fg.initialized = false
}
