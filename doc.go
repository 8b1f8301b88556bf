// Package loom provides a hierarchical dataflow execution engine.
//
// # Overview
//
// A computation is modeled as a tree of frames (named slots). Each frame may
// hold an object, and that object may itself be a system — a container of
// further frames and the links between them. Frames within one system are
// wired by directed relations, primarily Then ("run B after A finishes").
// A TaskLoop drives scheduled frames to completion, propagating completions
// across nested systems, and supports swapping the objects held by two
// frames in place while keeping cross-system links consistent.
//
// # Core Concepts
//
//   - Object: anything a frame can hold. May be runnable, may itself be a
//     System (enabling nesting).
//   - Frame: a named, owned slot. The unit of scheduling.
//   - System: an ordered set of frames plus the links between them. A
//     System is itself an Object, which is how nesting works.
//   - Link / LinkEnd: a directed Then or Arg relation between two frames.
//     A LinkEnd may be Direct (points straight at a frame) or Symbolic
//     (a late-bound by-name reference into a frame's held object, used
//     while a subtree crosses a Swap boundary).
//   - TaskLoop: the single-threaded cooperative executor. Holds the ready
//     FIFO and the background-task registry, and owns this engine's
//     observability stack (clock, tracer, metrics, hooks).
//
// # Driving a computation
//
//	sys := loom.NewSystem()
//	a := sys.Frame(myRunnableA)
//	b := sys.Frame(myRunnableB)
//	sys.Link(loom.DirectEnd(a), loom.DirectEnd(b), loom.Then)
//
//	loop := loom.NewTaskLoop()
//	a.Schedule(loop)
//	loop.RunUntilDone()
//
// # Background work
//
// A Run implementation that needs to suspend completion until an
// asynchronous producer delivers a result converts its RunContext into a
// BackgroundHandle:
//
//	func (o *myObject) Run(ctx *loom.RunContext) {
//	    bg := ctx.Background()
//	    go func() {
//	        defer bg.Close() // signals completion
//	        result := doSlowWork()
//	        bg.SendUpdate(result)
//	    }()
//	}
//
// # Observability
//
// Every TaskLoop carries structured logging (github.com/zoobzio/capitan),
// tracing (github.com/zoobzio/tracez), metrics (github.com/zoobzio/metricz)
// and hooks (github.com/zoobzio/hookz), configured through functional
// options (WithClock, WithTracer, WithMetrics, WithChannelCapacity) rather
// than globals or environment variables — this is a library, not a CLI.
//
// # Error handling
//
// Invariant violations (running a scheduled frame that holds no object, an
// unresolvable symbolic link, Adopt with a frame of another system, running
// a System directly) are programming errors: they panic with an
// *InvariantError. Swap is the exception: given a nil frame it returns an
// *InvariantError instead of panicking. RunOneProtected /
// RunUntilDoneProtected recover exactly that type at the driving boundary
// and return it as an error, for embedders that want a panic-catching
// boundary instead of a crash; anything else still panics.
package loom
