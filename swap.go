package loom

import (
	"context"

	"github.com/zoobzio/capitan"
)

// systemOf returns the System currently held by f, or nil if f holds
// something else (or nothing).
func systemOf(f *Frame) *System {
	if f == nil || f.object == nil {
		return nil
	}
	c := f.object.Concrete()
	if c.Kind != ConcreteSystem {
		return nil
	}
	return c.System
}

// contains is already defined on *System in system.go.

// breakLinkEnd rewrites e to a Symbolic reference anchored at self's own
// containing frame, if e currently points at a frame self contains.
// Called before self's containing frame's object is physically swapped
// out, so that afterward the reference can be re-resolved by name
// against whatever now occupies that slot.
func (self *System) breakLinkEnd(e *LinkEnd) {
	frame := e.outerFrame()
	if frame == nil || !self.contains(frame) {
		return
	}
	name := frame.name
	capitan.Info(context.Background(), SignalLinkCut,
		FieldName.Field(name),
	)
	e.frame = self.containingFrame
	e.name = name
}

func (self *System) breakLink(l *Link) {
	self.breakLinkEnd(&l.A)
	self.breakLinkEnd(&l.B)
}

// breakLinks cuts, across every ancestor system of self's containing
// frame, any link end that reaches into self's subtree — turning it
// into a Symbolic reference anchored at self's current containing
// frame. Must run before the physical object exchange in Swap.
func (self *System) breakLinks() {
	if self.containingFrame == nil {
		return
	}
	frame := self.containingFrame
	for {
		parent := frame.owner
		if parent == nil {
			return
		}
		for i := range parent.links {
			self.breakLink(parent.links[i])
		}
		if parent.containingFrame == nil {
			return
		}
		frame = parent.containingFrame
	}
}

// fixLinkEnd resolves e back to a Direct reference if it is a Symbolic
// end anchored at self's own (now current) containing frame and its
// name resolves within self's subtree. Left untouched (still Symbolic)
// if the name cannot be found — resolution is retried lazily wherever
// the link end is next consulted (see runFinished's panic-on-miss for
// the one place an unresolved Symbolic end is fatal).
func (self *System) fixLinkEnd(e *LinkEnd) {
	if !e.Symbolic() || e.frame != self.containingFrame {
		return
	}
	target := findElement(self, e.name)
	if target == nil {
		return
	}
	capitan.Info(context.Background(), SignalLinkHealed,
		FieldName.Field(e.name),
	)
	e.frame = target
	e.name = ""
}

func (self *System) fixLink(l *Link) {
	self.fixLinkEnd(&l.A)
	self.fixLinkEnd(&l.B)
}

// fixLinks re-resolves, across every ancestor system of self's (updated)
// containing frame, any Symbolic link end anchored there whose name now
// resolves within self's subtree. Must run after the physical object
// exchange and backref update in Swap.
func (self *System) fixLinks() {
	if self.containingFrame == nil {
		return
	}
	frame := self.containingFrame
	for {
		parent := frame.owner
		if parent == nil {
			return
		}
		for i := range parent.links {
			self.fixLink(parent.links[i])
		}
		if parent.containingFrame == nil {
			return
		}
		frame = parent.containingFrame
	}
}

// Swap exchanges the objects held by frames a and b in place. Any link,
// at any ancestor level, that referenced a frame inside whichever
// subsystem is moving is cut to a Symbolic by-name reference before the
// exchange and, where a same-named frame exists in the new occupant,
// healed back to Direct afterward — so external references follow "the
// frame named X currently in this slot" rather than a specific object
// instance (spec.md §4.5).
func Swap(a, b *Frame) error {
	if a == nil || b == nil {
		return &InvariantError{Kind: InvariantDetachedSwap, Detail: "swap requires two non-nil frames"}
	}

	if sysA := systemOf(a); sysA != nil {
		sysA.breakLinks()
	}
	if sysB := systemOf(b); sysB != nil {
		sysB.breakLinks()
	}

	a.object, b.object = b.object, a.object
	a.updateBackref()
	b.updateBackref()

	if sysA := systemOf(a); sysA != nil {
		sysA.fixLinks()
	}
	if sysB := systemOf(b); sysB != nil {
		sysB.fixLinks()
	}

	return nil
}

// Swap exchanges the objects held by a and b (see the package-level
// Swap), additionally tracing the call, recording
// taskloop.swap.total, and emitting a SwapEvent to any hookz
// subscribers registered via OnSwap.
func (l *TaskLoop) Swap(a, b *Frame) error {
	if a == nil || b == nil {
		return &InvariantError{Kind: InvariantDetachedSwap, Detail: "swap requires two non-nil frames"}
	}

	ctx, span := l.tracer.StartSpan(context.Background(), TraceRunOne)
	span.SetTag(TagBranch, "swap")
	defer span.Finish()

	capitan.Info(ctx, SignalSwapBegin,
		FieldName.Field(a.name),
		FieldTimestamp.Field(l.now()),
	)

	if err := Swap(a, b); err != nil {
		return err
	}

	l.metrics.Counter(MetricSwapTotal).Inc()
	capitan.Info(ctx, SignalSwapComplete,
		FieldName.Field(a.name),
		FieldTimestamp.Field(l.now()),
	)

	event := SwapEvent{FrameA: a.name, FrameB: b.name}
	if err := l.hooks.Emit(ctx, HookSwap, event); err != nil {
		return err
	}
	return nil
}
