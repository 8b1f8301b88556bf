package loom

import (
	"context"

	"github.com/zoobzio/capitan"
)

// System is an ordered set of frames plus the directed links between
// them. A System is itself an Object (CanRun reports false — a System
// is driven by scheduling its frames, not by being run directly), which
// is how nesting works: a frame may hold a System as its object.
type System struct {
	frames []*Frame
	links  []*Link

	// containingFrame is the frame, in some outer system, whose held
	// object is this System — nil for a root system. Kept current by
	// Frame.updateBackref, including across Swap's physical exchange.
	containingFrame *Frame
}

// NewSystem builds an empty, unattached system.
func NewSystem() *System {
	return &System{}
}

// Frame creates a new frame in sys holding obj, with a name derived from
// obj.Name() and made unique via pickName (names.go). Returns the new
// frame.
func (sys *System) Frame(obj Object) *Frame {
	base := "Frame"
	if obj != nil {
		base = obj.Name()
	}
	f := &Frame{
		name:  pickName(sys, base),
		owner: sys,
	}
	if obj != nil {
		f.adopt(obj)
	}
	sys.frames = append(sys.frames, f)
	return f
}

// Adopt replaces the object held by f, which must belong to sys, and
// re-establishes any subsystem back-reference. Panics with an
// *InvariantError if f is not owned by sys.
func (sys *System) Adopt(f *Frame, obj Object) {
	if f.owner != sys {
		panic(&InvariantError{
			Kind:   InvariantForeignFrame,
			Name:   f.name,
			Detail: "Adopt called with a frame not owned by this system",
		})
	}
	f.adopt(obj)
}

// Link records a directed relation from a to b, owned by sys. a and b
// may be Direct (DirectEnd) or Symbolic late-bound references.
func (sys *System) Link(a, b LinkEnd, relation Relation) *Link {
	l := &Link{A: a, B: b, Relation: relation}
	sys.links = append(sys.links, l)
	return l
}

// contains reports whether f is owned by sys, or by any subsystem
// nested (transitively) inside sys.
func (sys *System) contains(f *Frame) bool {
	for cur := f.owner; cur != nil; cur = cur.parentSystem() {
		if cur == sys {
			return true
		}
	}
	return false
}

// parentSystem returns the system that owns the frame holding sys as an
// object, or nil if sys is a root system.
func (sys *System) parentSystem() *System {
	if sys.containingFrame == nil {
		return nil
	}
	return sys.containingFrame.owner
}

// runFinished is invoked when frame f finishes running. sys is f's
// owning system the first time this is called (from TaskLoop.finish);
// it then walks sys's own links for a Then relation whose a-end is a
// Direct match on f, scheduling the b-end, and unconditionally
// escalates to sys's parent system — still matching against the same
// f — so that a link owned by an ancestor system directly targeting f
// also fires. Matches the Rust source's `run_finished`, which recurses
// via `self.parent_system()` passing the original frame unchanged at
// every level, with no check that sys itself has gone idle first.
//
// Symbolic a-ends are never matched here, matching the Rust source's
// `match link.a { LinkEnd::Frame(fa) => ..., _ => continue }` — only
// Symbolic b-ends are resolved. This looks asymmetric and is: see
// spec.md §9's note not to silently fix it.
func (sys *System) runFinished(f *Frame, loop *TaskLoop) {
	for _, l := range sys.links {
		if l.Relation != Then {
			continue
		}
		if l.A.Symbolic() || l.A.frame != f {
			continue
		}
		target := l.B.resolve()
		if target == nil {
			if l.B.Symbolic() {
				detail := "Then link's b-end symbolic name did not resolve to any frame"
				capitan.Info(context.Background(), SignalLinkUnresolved,
					FieldName.Field(l.B.name),
					FieldDetail.Field(detail),
				)
				panic(&InvariantError{
					Kind:   InvariantUnresolvedSymbol,
					Name:   l.B.name,
					Detail: detail,
				})
			}
			continue
		}
		target.Schedule(loop)
	}

	if parent := sys.parentSystem(); parent != nil {
		parent.runFinished(f, loop)
	}
}

// --- Object interface ---

// Name reports the fixed display name for any System object.
func (sys *System) Name() Name { return "System" }

// CanRun always reports false: a System is driven by scheduling its own
// frames, never by being run itself.
func (sys *System) CanRun() bool { return false }

// Run panics: a System is never itself scheduled and run.
func (sys *System) Run(*RunContext) {
	panic(&InvariantError{
		Kind:   InvariantNotRunnable,
		Name:   sys.Name(),
		Detail: "a System is not directly runnable; schedule its frames instead",
	})
}

// Update is a no-op: a System never holds a background handle itself.
func (sys *System) Update(any) {}

// Concrete reports this object as a System, letting callers avoid a
// type assertion.
func (sys *System) Concrete() Concrete {
	return Concrete{Kind: ConcreteSystem, System: sys}
}

// Elements returns sys's own frames, in creation order.
func (sys *System) Elements() []*Frame {
	return sys.frames
}

// Serialize is unimplemented at the core level (spec.md Non-goals).
func (sys *System) Serialize() []byte { return nil }

// Deserialize is unimplemented at the core level (spec.md Non-goals).
func (sys *System) Deserialize([]byte) {}
