package framegraph

import (
	"github.com/prismengine/prism/engine/renderer/metadata"
)

// The frame graph drives external collaborators through these interfaces. The
// graph does not own the device, queues or presentation target; it only owns
// what it creates through them (per-slot command buffers, semaphores, fences).

// ImageBarrier describes a single-image layout transition, scoped by the
// access and stage masks on either side. No queue ownership transfer.
type ImageBarrier struct {
	Image     interface{}
	OldLayout metadata.ImageLayout
	NewLayout metadata.ImageLayout
	SrcAccess metadata.AccessFlags
	DstAccess metadata.AccessFlags
	SrcStage  metadata.PipelineStageFlags
	DstStage  metadata.PipelineStageFlags
}

// CommandBuffer is a reusable recording surface. Begin starts a one-time-submit
// recording, implicitly resetting any previous contents.
type CommandBuffer interface {
	Begin() error
	End() error
	Barrier(barrier ImageBarrier)
	Free()
}

// Fence is a CPU-observable completion signal for submitted work.
type Fence interface {
	Wait(timeoutNS uint64) error
	Reset() error
	Destroy()
}

// Semaphore is a queue-internal ordering signal, never observed by the CPU.
type Semaphore interface {
	Destroy()
}

// Device is the subset of device operations the graph needs to allocate its
// per-slot resources.
type Device interface {
	AllocateCommandBuffer() (CommandBuffer, error)
	CreateSemaphore() (Semaphore, error)
	CreateFence(signaled bool) (Fence, error)
}

// Queue accepts command buffer submissions. The wait semaphore gates execution
// at waitStage; the signal semaphore and fence mark completion.
type Queue interface {
	Submit(cmd CommandBuffer, wait Semaphore, waitStage metadata.PipelineStageFlags, signal Semaphore, fence Fence) error
}

// PresentationTarget is the surface the graph renders to. Image handles are
// opaque to the graph; it only threads them into barriers. Present waits on the
// provided semaphore before the image is handed to the compositor.
type PresentationTarget interface {
	ImageCount() uint32
	ImageHandles() []interface{}
	AcquireNextImage(timeoutNS uint64, signal Semaphore) (uint32, error)
	Present(imageIndex uint32, wait Semaphore) error
}
