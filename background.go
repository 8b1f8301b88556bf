package loom

import (
	"context"
	"runtime"
	"sync"

	"github.com/zoobzio/capitan"
)

// taskEventKind discriminates messages flowing back to the TaskLoop from
// a backgrounded task's producer.
type taskEventKind int

const (
	taskEventUpdate taskEventKind = iota
	taskEventDrop
)

// taskMessage is one message sent over TaskLoop.ch: either an
// intermediate Update payload or a final Drop signaling the background
// task is complete.
type taskMessage struct {
	id      uint64
	kind    taskEventKind
	payload any
}

// RunContext is handed to Object.Run for the duration of one scheduled
// execution. An implementation that can finish synchronously simply
// returns without touching it; one that needs to suspend completion
// calls Background to obtain a handle it can hand to an async producer.
type RunContext struct {
	loop         *TaskLoop
	task         *task
	backgrounded bool
}

// Background converts this run into a suspended one: the frame is moved
// into the loop's background registry and will not be considered
// finished until the returned handle is closed (optionally preceded by
// any number of SendUpdate calls). Each call builds a new handle for the
// same task; the task finishes when the first of them is closed.
func (rc *RunContext) Background() *BackgroundHandle {
	rc.backgrounded = true
	h := &BackgroundHandle{loop: rc.loop, id: rc.task.id, name: rc.task.frame.name}
	// The Rust source relies on Drop to guarantee a background task that
	// is abandoned without an explicit close still unblocks the loop.
	// Go has no Drop; a finalizer is the closest analogue, a safety net
	// rather than the primary mechanism (the primary mechanism is the
	// producer calling Close explicitly). See DESIGN.md.
	runtime.SetFinalizer(h, func(h *BackgroundHandle) {
		h.Close()
	})
	return h
}

// BackgroundHandle is the producer side of a suspended run: an async
// worker holds one of these and uses it to deliver updates and, finally,
// to signal completion.
type BackgroundHandle struct {
	loop      *TaskLoop
	id        uint64
	name      string
	closeOnce sync.Once
}

// SendUpdate delivers one intermediate payload to the frame's Update
// method. Safe to call any number of times before Close. After Close the
// payload is still sent, but the loop has already finished the task and
// discards it without calling Update.
func (h *BackgroundHandle) SendUpdate(payload any) {
	select {
	case h.loop.ch <- taskMessage{id: h.id, kind: taskEventUpdate, payload: payload}:
	default:
		// Channel full: the producer is outrunning the loop's drain
		// rate. Block rather than drop an update silently.
		h.loop.ch <- taskMessage{id: h.id, kind: taskEventUpdate, payload: payload}
	}
}

// Close signals that this background task is finished, unblocking the
// frame's completion propagation. Idempotent; safe to call from a
// deferred statement alongside explicit SendUpdate calls.
func (h *BackgroundHandle) Close() error {
	h.closeOnce.Do(func() {
		runtime.SetFinalizer(h, nil)
		capitan.Info(context.Background(), SignalBackgroundDropped,
			FieldName.Field(h.name),
			FieldTimestamp.Field(h.loop.now()),
		)
		h.loop.ch <- taskMessage{id: h.id, kind: taskEventDrop}
	})
	return nil
}

// SwapEvent describes one completed Swap, delivered to hookz subscribers
// registered via TaskLoop.OnSwap.
type SwapEvent struct {
	FrameA string
	FrameB string
}
