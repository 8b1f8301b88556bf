package loom

// Name is a display label for a Frame or Object. Not required to be
// unique; Frame names are made unique within a System by the allocator
// in names.go.
type Name = string

// ConcreteKind discriminates the variants an Object's Concrete() can
// report. It exists so the core can recognize subsystems without a type
// switch or reflection, mirroring how pipz's Flow/FlowVariant pair gives
// callers a type-safe discriminator instead of a bare interface{} (see
// schema.go in the teacher repo).
type ConcreteKind int

const (
	// ConcreteOther marks an Object that is not a System.
	ConcreteOther ConcreteKind = iota
	// ConcreteSystem marks an Object that is a System.
	ConcreteSystem
)

// Concrete is the result of Object.Concrete(): a tagged union over
// {Other, System}. System is non-nil iff Kind == ConcreteSystem.
type Concrete struct {
	System *System
	Kind   ConcreteKind
}

// FrameData is scratch state an Object may stash on the Frame that holds
// it. The core never interprets it — same opaque stance spec.md takes on
// Serialize/Deserialize. Supplements the Rust source's unused
// `trait FrameData { fn new() -> Self; }` with an actual accessor pair.
type FrameData interface{}

// Object is the contract the engine consumes from external collaborators.
// Anything a Frame can hold implements this.
type Object interface {
	// Name returns a short display label. Not required to be unique.
	Name() Name

	// CanRun reports whether Run is meaningfully implemented. Advisory
	// only — the core does not gate scheduling on it.
	CanRun() bool

	// Run is invoked when a Frame holding this Object is scheduled and
	// popped from the ready FIFO. It may convert the RunContext into a
	// BackgroundHandle to suspend completion (see background.go).
	Run(ctx *RunContext)

	// Update is invoked once per delivered background-task payload, for
	// the Object that requested the background handle.
	Update(payload any)

	// Concrete lets the core identify subsystems without reflection.
	Concrete() Concrete

	// Elements returns this Object's owned child frames, in order. Empty
	// for leaves (non-container objects).
	Elements() []*Frame

	// Serialize and Deserialize are opaque byte hooks. The core never
	// interprets their contents; persistence and wire format are out of
	// scope (see spec Non-goals).
	Serialize() []byte
	Deserialize([]byte)
}

// BaseObject supplies no-op defaults for the optional parts of Object —
// embed it so a concrete type only needs to implement Name and Concrete.
// Mirrors the common Go embedding idiom for partial interface
// implementations; there is no Rust-trait-default-method equivalent to
// ground this on directly, so it is a stdlib-only choice (see DESIGN.md).
type BaseObject struct{}

// CanRun reports false: by default an Object cannot run.
func (BaseObject) CanRun() bool { return false }

// Run panics: embedders that are actually runnable must override it.
func (BaseObject) Run(*RunContext) {
	panic("loom: object embeds BaseObject and does not implement Run")
}

// Update is a no-op by default.
func (BaseObject) Update(any) {}

// Elements returns nil: leaves own no child frames by default.
func (BaseObject) Elements() []*Frame { return nil }

// Serialize returns nil by default.
func (BaseObject) Serialize() []byte { return nil }

// Deserialize is a no-op by default.
func (BaseObject) Deserialize([]byte) {}
