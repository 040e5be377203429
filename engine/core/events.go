package core

import (
	"sync"

	"github.com/prismengine/prism/engine/containers"
)

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed. Data is a KeyEvent.
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Keyboard key released. Data is a KeyEvent.
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03

	// Resized/resolution changed from the OS. Data is a SystemEvent.
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type EventContext struct {
	Type SystemEventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode Key
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

// Handler invoked when an event with the registered code fires.
type FnOnEvent func(context EventContext)

// How many fired-but-unprocessed deferred events may be pending at once.
const maxQueuedEvents = 512

type eventSystemState struct {
	registered map[SystemEventCode][]FnOnEvent

	// Deferred events, drained once per frame by EventProcessQueued.
	queue   *containers.RingQueue
	queueMu sync.Mutex
}

var onceEvent sync.Once
var eventState *eventSystemState = nil

func EventSystemInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			registered: make(map[SystemEventCode][]FnOnEvent),
			queue:      containers.NewRingQueue(maxQueuedEvents),
		}
	})
	return eventState != nil
}

func EventSystemShutdown() error {
	if eventState != nil {
		eventState.registered = nil
	}
	return nil
}

// EventRegister adds a listener for the provided code. Not thread-safe; call
// during setup.
func EventRegister(code SystemEventCode, onEvent FnOnEvent) bool {
	if eventState == nil {
		return false
	}
	eventState.registered[code] = append(eventState.registered[code], onEvent)
	return true
}

// EventFire dispatches the event synchronously to all listeners of its code.
func EventFire(context EventContext) {
	if eventState == nil {
		return
	}
	for _, cb := range eventState.registered[context.Type] {
		cb(context)
	}
}

// EventEnqueue defers an event until the next EventProcessQueued call. Safe to
// call from platform callbacks. Events fired while the queue is full are dropped
// with a warning.
func EventEnqueue(context EventContext) {
	if eventState == nil {
		return
	}
	eventState.queueMu.Lock()
	defer eventState.queueMu.Unlock()
	if err := eventState.queue.Enqueue(context); err != nil {
		LogWarn("event queue full, dropping event with code %d", context.Type)
	}
}

// EventProcessQueued drains the deferred event queue, dispatching each event in
// arrival order. Called once per frame by the engine loop.
func EventProcessQueued() {
	if eventState == nil {
		return
	}
	for {
		eventState.queueMu.Lock()
		value, err := eventState.queue.Dequeue()
		eventState.queueMu.Unlock()
		if err != nil {
			return
		}
		EventFire(value.(EventContext))
	}
}
