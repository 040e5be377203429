package framegraph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismengine/prism/engine/core"
	"github.com/prismengine/prism/engine/renderer/metadata"
)

// callLog records the order of operations across all fakes, so tests can
// assert on the relative ordering of the frame cycle steps.
type callLog struct {
	entries []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
}

func (l *callLog) indexOf(entry string) int {
	for i, e := range l.entries {
		if e == entry {
			return i
		}
	}
	return -1
}

type fakeCommandBuffer struct {
	log      *callLog
	id       int
	barriers []ImageBarrier
	beginErr error
	endErr   error
	freed    bool
}

func (f *fakeCommandBuffer) Begin() error {
	f.log.add("cmd%d.begin", f.id)
	return f.beginErr
}

func (f *fakeCommandBuffer) End() error {
	f.log.add("cmd%d.end", f.id)
	return f.endErr
}

func (f *fakeCommandBuffer) Barrier(barrier ImageBarrier) {
	f.log.add("cmd%d.barrier", f.id)
	f.barriers = append(f.barriers, barrier)
}

func (f *fakeCommandBuffer) Free() {
	f.log.add("cmd%d.free", f.id)
	f.freed = true
}

type fakeSemaphore struct {
	log       *callLog
	name      string
	destroyed bool
}

func (f *fakeSemaphore) Destroy() {
	f.log.add("%s.destroy", f.name)
	f.destroyed = true
}

// fakeFence tracks its signaled state. Waiting on an unsignaled fence is an
// error in the fake: with an instantly completing fake queue the fence must
// always be signaled again by the time the slot's turn recurs.
type fakeFence struct {
	log       *callLog
	id        int
	signaled  bool
	destroyed bool
	waitErr   error
	resetErr  error
}

func (f *fakeFence) Wait(timeoutNS uint64) error {
	f.log.add("fence%d.wait", f.id)
	if f.waitErr != nil {
		return f.waitErr
	}
	if !f.signaled {
		return fmt.Errorf("fence%d waited on while unsignaled", f.id)
	}
	return nil
}

func (f *fakeFence) Reset() error {
	f.log.add("fence%d.reset", f.id)
	if f.resetErr != nil {
		return f.resetErr
	}
	f.signaled = false
	return nil
}

func (f *fakeFence) Destroy() {
	f.log.add("fence%d.destroy", f.id)
	f.destroyed = true
}

type fakeDevice struct {
	log *callLog

	cmds   []*fakeCommandBuffer
	sems   []*fakeSemaphore
	fences []*fakeFence
}

func (f *fakeDevice) AllocateCommandBuffer() (CommandBuffer, error) {
	cmd := &fakeCommandBuffer{log: f.log, id: len(f.cmds)}
	f.cmds = append(f.cmds, cmd)
	return cmd, nil
}

func (f *fakeDevice) CreateSemaphore() (Semaphore, error) {
	sem := &fakeSemaphore{log: f.log, name: fmt.Sprintf("sem%d", len(f.sems))}
	f.sems = append(f.sems, sem)
	return sem, nil
}

func (f *fakeDevice) CreateFence(signaled bool) (Fence, error) {
	fence := &fakeFence{log: f.log, id: len(f.fences), signaled: signaled}
	f.fences = append(f.fences, fence)
	return fence, nil
}

type presentRecord struct {
	imageIndex uint32
	wait       Semaphore
}

type fakeTarget struct {
	log    *callLog
	images []interface{}

	// Indices handed out by successive AcquireNextImage calls. When exhausted,
	// acquisition wraps around.
	acquireSeq    []uint32
	acquireCalls  int
	acquireErr    error
	lastSignal    Semaphore
	presentErr    error
	presentations []presentRecord
}

func newFakeTarget(log *callLog, imageCount int) *fakeTarget {
	t := &fakeTarget{log: log}
	for i := 0; i < imageCount; i++ {
		t.images = append(t.images, fmt.Sprintf("image%d", i))
	}
	return t
}

func (f *fakeTarget) ImageCount() uint32 {
	return uint32(len(f.images))
}

func (f *fakeTarget) ImageHandles() []interface{} {
	return f.images
}

func (f *fakeTarget) AcquireNextImage(timeoutNS uint64, signal Semaphore) (uint32, error) {
	f.log.add("target.acquire")
	f.lastSignal = signal
	if f.acquireErr != nil {
		return 0, f.acquireErr
	}
	var index uint32
	if len(f.acquireSeq) > 0 {
		index = f.acquireSeq[f.acquireCalls%len(f.acquireSeq)]
	} else {
		index = uint32(f.acquireCalls % len(f.images))
	}
	f.acquireCalls++
	return index, nil
}

func (f *fakeTarget) Present(imageIndex uint32, wait Semaphore) error {
	f.log.add("target.present")
	if f.presentErr != nil {
		return f.presentErr
	}
	f.presentations = append(f.presentations, presentRecord{imageIndex: imageIndex, wait: wait})
	return nil
}

type submitRecord struct {
	cmd       CommandBuffer
	wait      Semaphore
	waitStage metadata.PipelineStageFlags
	signal    Semaphore
	fence     Fence
}

// fakeQueue simulates a GPU that finishes instantly: every submission signals
// its fence on the spot.
type fakeQueue struct {
	log       *callLog
	submits   []submitRecord
	submitErr error
}

func (f *fakeQueue) Submit(cmd CommandBuffer, wait Semaphore, waitStage metadata.PipelineStageFlags, signal Semaphore, fence Fence) error {
	f.log.add("queue.submit")
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submits = append(f.submits, submitRecord{
		cmd:       cmd,
		wait:      wait,
		waitStage: waitStage,
		signal:    signal,
		fence:     fence,
	})
	if ff, ok := fence.(*fakeFence); ok {
		ff.signaled = true
	}
	return nil
}

func newTestGraph(imageCount int) (*FrameGraph, *fakeDevice, *fakeTarget, *fakeQueue, *callLog) {
	log := &callLog{}
	device := &fakeDevice{log: log}
	target := newFakeTarget(log, imageCount)
	queue := &fakeQueue{log: log}
	return New(device, target, queue), device, target, queue, log
}

func transitionPass(name string) *PassNode {
	return &PassNode{
		Name:      name,
		OldLayout: metadata.ImageLayoutUndefined,
		NewLayout: metadata.ImageLayoutColorAttachmentOptimal,
		DstAccess: metadata.AccessColorAttachmentWriteBit,
		SrcStage:  metadata.PipelineStageTopOfPipeBit,
		DstStage:  metadata.PipelineStageColorAttachmentOutputBit,
	}
}

func TestInitializeAllocatesSlotResources(t *testing.T) {
	graph, device, _, _, _ := newTestGraph(3)

	require.NoError(t, graph.Initialize())

	assert.Len(t, device.cmds, 3)
	assert.Len(t, device.sems, 6, "two semaphores per slot")
	assert.Len(t, device.fences, 3)
	for _, fence := range device.fences {
		assert.True(t, fence.signaled, "in-flight fences must start signaled")
	}
}

func TestInitializeWithZeroImagesFails(t *testing.T) {
	graph, _, _, _, _ := newTestGraph(0)

	err := graph.Initialize()
	require.ErrorIs(t, err, core.ErrNoSwapchainImages)
}

func TestExecuteFrameBeforeInitializeFails(t *testing.T) {
	graph, _, _, _, _ := newTestGraph(2)

	err := graph.ExecuteFrame()
	require.ErrorIs(t, err, core.ErrNotInitialized)
}

func TestRoundRobinSlotSelection(t *testing.T) {
	graph, device, _, _, _ := newTestGraph(2)
	require.NoError(t, graph.Initialize())

	for i := 0; i < 5; i++ {
		require.NoError(t, graph.ExecuteFrame())
	}

	assert.Equal(t, []int{0, 1, 0, 1, 0}, graphFenceWaits(device))
	assert.Equal(t, uint64(5), graph.FrameNumber())
}

// graphFenceWaits extracts the per-frame fence wait order from the shared log.
func graphFenceWaits(device *fakeDevice) []int {
	var order []int
	for _, entry := range device.log.entries {
		var id int
		if _, err := fmt.Sscanf(entry, "fence%d.wait", &id); err == nil {
			order = append(order, id)
		}
	}
	return order
}

func TestFrameCycleOrdering(t *testing.T) {
	graph, _, _, _, log := newTestGraph(1)
	graph.AddPass(transitionPass("clear"))
	require.NoError(t, graph.Initialize())

	require.NoError(t, graph.ExecuteFrame())

	wait := log.indexOf("fence0.wait")
	acquire := log.indexOf("target.acquire")
	begin := log.indexOf("cmd0.begin")
	barrier := log.indexOf("cmd0.barrier")
	end := log.indexOf("cmd0.end")
	reset := log.indexOf("fence0.reset")
	submit := log.indexOf("queue.submit")
	present := log.indexOf("target.present")

	require.NotEqual(t, -1, wait)
	assert.Less(t, wait, acquire, "fence wait must precede acquisition")
	assert.Less(t, acquire, begin)
	assert.Less(t, begin, barrier)
	assert.Less(t, barrier, end)
	assert.Less(t, end, reset)
	assert.Less(t, reset, submit, "fence must be unsignaled before submission")
	assert.Less(t, submit, present)
}

func TestPassesExecuteInRegistrationOrder(t *testing.T) {
	graph, device, _, _, _ := newTestGraph(1)

	var recorded []string
	record := func(name string) RecordFunc {
		return func(cmd CommandBuffer, imageIndex uint32) error {
			recorded = append(recorded, name)
			return nil
		}
	}

	first := transitionPass("first")
	first.Record = record("first")
	graph.AddPass(first)

	// No transition, record only.
	second := &PassNode{Name: "second", Record: record("second")}
	graph.AddPass(second)

	third := transitionPass("third")
	third.Record = record("third")
	graph.AddPass(third)

	require.NoError(t, graph.Initialize())
	require.NoError(t, graph.ExecuteFrame())

	assert.Equal(t, []string{"first", "second", "third"}, recorded)
	assert.Len(t, device.cmds[0].barriers, 2, "barriers only for passes with a transition")
}

func TestNoTransitionPassEmitsNoBarrier(t *testing.T) {
	graph, device, _, _, _ := newTestGraph(1)

	graph.AddPass(&PassNode{
		Name:      "noop",
		OldLayout: metadata.ImageLayoutColorAttachmentOptimal,
		NewLayout: metadata.ImageLayoutColorAttachmentOptimal,
		Record: func(cmd CommandBuffer, imageIndex uint32) error {
			return nil
		},
	})

	require.NoError(t, graph.Initialize())
	require.NoError(t, graph.ExecuteFrame())

	assert.Empty(t, device.cmds[0].barriers)
}

func TestEmptyGraphStillCycles(t *testing.T) {
	graph, _, target, queue, log := newTestGraph(2)
	require.NoError(t, graph.Initialize())

	for i := 0; i < 3; i++ {
		require.NoError(t, graph.ExecuteFrame())
	}

	assert.Equal(t, uint64(3), graph.FrameNumber())
	assert.Len(t, queue.submits, 3, "empty graphs still submit and present")
	assert.Len(t, target.presentations, 3)
	assert.NotContains(t, log.entries, "cmd0.barrier")
}

func TestSubmitAndPresentWiring(t *testing.T) {
	graph, device, target, queue, _ := newTestGraph(3)
	graph.AddPass(transitionPass("clear"))
	require.NoError(t, graph.Initialize())

	// The acquired image index is decoupled from the slot index.
	target.acquireSeq = []uint32{2}

	require.NoError(t, graph.ExecuteFrame())

	require.Len(t, queue.submits, 1)
	submit := queue.submits[0]

	// Slot 0 resources: sem0 is imageAvailable, sem1 is queueComplete.
	assert.Same(t, device.sems[0], submit.wait)
	assert.Same(t, device.sems[1], submit.signal)
	assert.Same(t, device.cmds[0], submit.cmd)
	assert.Same(t, device.fences[0], submit.fence)
	assert.Equal(t, metadata.PipelineStageColorAttachmentOutputBit, submit.waitStage)

	// Acquisition signals the same semaphore the submission waits on.
	assert.Same(t, device.sems[0], target.lastSignal)

	require.Len(t, target.presentations, 1)
	assert.Equal(t, uint32(2), target.presentations[0].imageIndex)
	assert.Same(t, device.sems[1], target.presentations[0].wait)

	// The barrier targets the acquired image, not the slot-indexed one.
	require.Len(t, device.cmds[0].barriers, 1)
	assert.Equal(t, "image2", device.cmds[0].barriers[0].Image)
}

func TestBarrierCarriesPassMasks(t *testing.T) {
	graph, device, _, _, _ := newTestGraph(1)

	graph.AddPass(&PassNode{
		Name:      "present-handoff",
		OldLayout: metadata.ImageLayoutColorAttachmentOptimal,
		NewLayout: metadata.ImageLayoutPresentSource,
		SrcAccess: metadata.AccessColorAttachmentWriteBit,
		DstAccess: metadata.AccessMemoryReadBit,
		SrcStage:  metadata.PipelineStageColorAttachmentOutputBit,
		DstStage:  metadata.PipelineStageBottomOfPipeBit,
	})

	require.NoError(t, graph.Initialize())
	require.NoError(t, graph.ExecuteFrame())

	require.Len(t, device.cmds[0].barriers, 1)
	barrier := device.cmds[0].barriers[0]
	assert.Equal(t, metadata.ImageLayoutColorAttachmentOptimal, barrier.OldLayout)
	assert.Equal(t, metadata.ImageLayoutPresentSource, barrier.NewLayout)
	assert.Equal(t, metadata.AccessColorAttachmentWriteBit, barrier.SrcAccess)
	assert.Equal(t, metadata.AccessMemoryReadBit, barrier.DstAccess)
	assert.Equal(t, metadata.PipelineStageColorAttachmentOutputBit, barrier.SrcStage)
	assert.Equal(t, metadata.PipelineStageBottomOfPipeBit, barrier.DstStage)
}

func TestAcquiredIndexOutOfRangeFails(t *testing.T) {
	graph, _, target, _, _ := newTestGraph(2)
	require.NoError(t, graph.Initialize())

	target.acquireSeq = []uint32{7}

	err := graph.ExecuteFrame()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
	assert.Equal(t, uint64(0), graph.FrameNumber())
}

func TestAcquireErrorPropagates(t *testing.T) {
	graph, _, target, _, _ := newTestGraph(2)
	require.NoError(t, graph.Initialize())

	target.acquireErr = core.ErrSwapchainOutOfDate

	err := graph.ExecuteFrame()
	require.ErrorIs(t, err, core.ErrSwapchainOutOfDate)
	assert.Equal(t, uint64(0), graph.FrameNumber())
}

func TestRecordErrorPropagates(t *testing.T) {
	graph, _, _, queue, _ := newTestGraph(1)

	recordErr := fmt.Errorf("record exploded")
	pass := transitionPass("boom")
	pass.Record = func(cmd CommandBuffer, imageIndex uint32) error {
		return recordErr
	}
	graph.AddPass(pass)

	require.NoError(t, graph.Initialize())

	err := graph.ExecuteFrame()
	require.ErrorIs(t, err, recordErr)
	assert.Empty(t, queue.submits, "failed recording must not be submitted")
	assert.Equal(t, uint64(0), graph.FrameNumber())
}

func TestSubmitErrorPropagates(t *testing.T) {
	graph, _, target, queue, _ := newTestGraph(1)
	require.NoError(t, graph.Initialize())

	queue.submitErr = fmt.Errorf("queue submission failed")

	err := graph.ExecuteFrame()
	require.ErrorIs(t, err, queue.submitErr)
	assert.Empty(t, target.presentations, "failed submission must not present")
}

func TestPresentErrorPropagates(t *testing.T) {
	graph, _, target, _, _ := newTestGraph(1)
	require.NoError(t, graph.Initialize())

	target.presentErr = core.ErrSwapchainOutOfDate

	err := graph.ExecuteFrame()
	require.ErrorIs(t, err, core.ErrSwapchainOutOfDate)
	assert.Equal(t, uint64(0), graph.FrameNumber(), "a frame that failed to present is not completed")
}

func TestMultiFrameEndToEnd(t *testing.T) {
	graph, device, target, queue, _ := newTestGraph(2)

	var clearFrames, blitFrames int
	clear := transitionPass("clear")
	clear.Record = func(cmd CommandBuffer, imageIndex uint32) error {
		clearFrames++
		return nil
	}
	graph.AddPass(clear)

	blit := &PassNode{
		Name:      "present-handoff",
		OldLayout: metadata.ImageLayoutColorAttachmentOptimal,
		NewLayout: metadata.ImageLayoutPresentSource,
		Record: func(cmd CommandBuffer, imageIndex uint32) error {
			blitFrames++
			return nil
		},
	}
	graph.AddPass(blit)

	require.NoError(t, graph.Initialize())
	assert.Equal(t, 2, graph.PassCount())

	for i := 0; i < 6; i++ {
		require.NoError(t, graph.ExecuteFrame())
	}

	assert.Equal(t, uint64(6), graph.FrameNumber())
	assert.Equal(t, 6, clearFrames)
	assert.Equal(t, 6, blitFrames)
	assert.Len(t, queue.submits, 6)
	assert.Len(t, target.presentations, 6)

	// Alternating slots means alternating command buffers.
	assert.Same(t, device.cmds[0], queue.submits[0].cmd)
	assert.Same(t, device.cmds[1], queue.submits[1].cmd)
	assert.Same(t, device.cmds[0], queue.submits[2].cmd)
}

func TestDestroyReleasesSlotResources(t *testing.T) {
	graph, device, _, _, _ := newTestGraph(2)
	require.NoError(t, graph.Initialize())
	require.NoError(t, graph.ExecuteFrame())

	graph.Destroy()

	for _, cmd := range device.cmds {
		assert.True(t, cmd.freed)
	}
	for _, sem := range device.sems {
		assert.True(t, sem.destroyed)
	}
	for _, fence := range device.fences {
		assert.True(t, fence.destroyed)
	}

	// The graph is unusable until initialized again.
	err := graph.ExecuteFrame()
	require.ErrorIs(t, err, core.ErrNotInitialized)
}
