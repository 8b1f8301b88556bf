package loom

// Frame is a named, owned slot that may hold an Object. Frames are the
// unit of scheduling: TaskLoop enqueues and runs frames, never objects
// directly.
type Frame struct {
	name    string
	object  Object
	owner   *System
	data    FrameData
	scheduled bool
	running   bool
}

// Name returns the frame's display name, unique within its owning
// system (see names.go).
func (f *Frame) Name() string {
	return f.name
}

// Object returns the object currently held by the frame, or nil.
func (f *Frame) Object() Object {
	return f.object
}

// Scheduled reports whether the frame is currently enqueued on some
// TaskLoop's ready FIFO, waiting to run.
func (f *Frame) Scheduled() bool {
	return f.scheduled
}

// Running reports whether the frame's Run has started but not yet
// finished (including while suspended on a background handle). Per
// spec.md §9 / §4.4, Schedule does not consult this flag — only
// Scheduled gates re-enqueueing, matching the Rust source's
// `Frame::schedule` which checks `!self.scheduled` alone.
func (f *Frame) Running() bool {
	return f.running
}

// Data returns the scratch value previously stored with SetData, or nil.
// The core never interprets it (see object.go's FrameData doc).
func (f *Frame) Data() FrameData {
	return f.data
}

// SetData stores an opaque scratch value on the frame.
func (f *Frame) SetData(d FrameData) {
	f.data = d
}

// ParentSystem returns the System that owns this frame (the system on
// which Frame() was called to create it), or nil for a frame that has
// been detached.
func (f *Frame) ParentSystem() *System {
	return f.owner
}

// adopt installs obj as the frame's held object and, if obj is itself a
// System, records this frame as that subsystem's containing frame so
// ancestor climbs (System.contains, the swap cut/heal protocol) can walk
// outward. Mirrors the Rust source's `maybe_update_frame` call inside
// `swap` and the plain assignment inside `System::frame`/`adopt`.
func (f *Frame) adopt(obj Object) {
	f.object = obj
	f.updateBackref()
}

// updateBackref re-establishes the held object's containing-frame
// back-reference after the object pointer has changed (construction,
// adopt, or the physical exchange inside Swap).
func (f *Frame) updateBackref() {
	if f.object == nil {
		return
	}
	if c := f.object.Concrete(); c.Kind == ConcreteSystem && c.System != nil {
		c.System.containingFrame = f
	}
}

// Schedule enqueues the frame on loop's ready FIFO, unless it is already
// scheduled. Matches spec.md §4.4: at-most-once scheduling, gated solely
// on the Scheduled flag.
func (f *Frame) Schedule(loop *TaskLoop) {
	if f.scheduled {
		return
	}
	f.scheduled = true
	loop.post(f)
}
