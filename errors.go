package loom

import "fmt"

// InvariantKind discriminates the ways the engine can detect its own
// contract being violated. These are programming errors, not runtime
// conditions a well-formed caller should ever hit in production use
// (spec.md §7).
type InvariantKind int

const (
	// InvariantNoObject: a frame was run while holding no object.
	InvariantNoObject InvariantKind = iota
	// InvariantUnresolvedSymbol: a Symbolic LinkEnd's name did not
	// resolve to any frame reachable from its anchor.
	InvariantUnresolvedSymbol
	// InvariantForeignFrame: an operation was given a frame not owned
	// by the system it was called on.
	InvariantForeignFrame
	// InvariantNotRunnable: something attempted to Run a System
	// directly instead of scheduling its frames.
	InvariantNotRunnable
	// InvariantDetachedSwap: Swap was called with a nil frame, so there
	// is nothing to exchange.
	InvariantDetachedSwap
)

func (k InvariantKind) String() string {
	switch k {
	case InvariantNoObject:
		return "no-object"
	case InvariantUnresolvedSymbol:
		return "unresolved-symbol"
	case InvariantForeignFrame:
		return "foreign-frame"
	case InvariantNotRunnable:
		return "not-runnable"
	case InvariantDetachedSwap:
		return "detached-swap"
	default:
		return "unknown"
	}
}

// InvariantError reports a violated engine invariant. It is panic'd at
// the point of detection — see RunOneProtected / RunUntilDoneProtected
// for the recover boundary — except by Swap and TaskLoop.Swap, which
// return it for a nil frame.
type InvariantError struct {
	Kind   InvariantKind
	Name   string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("loom: invariant violation (%s) at %q: %s", e.Kind, e.Name, e.Detail)
}

// RunOneProtected runs RunOne, recovering an *InvariantError panic and
// returning it as an error instead of propagating the crash. Any other
// panic value is re-raised.
func (loop *TaskLoop) RunOneProtected() (ran bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*InvariantError); ok {
				err = ie
				return
			}
			panic(r)
		}
	}()
	ran = loop.RunOne()
	return
}

// RunUntilDoneProtected runs RunUntilDone, recovering an *InvariantError
// panic and returning it as an error instead of propagating the crash.
// Any other panic value is re-raised.
func (loop *TaskLoop) RunUntilDoneProtected() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*InvariantError); ok {
				err = ie
				return
			}
			panic(r)
		}
	}()
	loop.RunUntilDone()
	return
}
