package loom

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

// log is a thread-safe ordered record of strings, standing in for the
// original test suite's Rc<RefCell<Vec<String>>> — background tests
// deliver updates from a real goroutine, so a mutex replaces the
// single-threaded Rust version's interior mutability.
type log struct {
	mu     sync.Mutex
	tokens []string
}

func (l *log) push(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens = append(l.tokens, s)
}

func (l *log) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := ""
	for i, t := range l.tokens {
		if i > 0 {
			out += " "
		}
		out += t
	}
	return out
}

// mockObject is a runnable leaf that records its own name.
type mockObject struct {
	BaseObject
	name string
	log  *log
}

func newMockObject(name string, l *log) *mockObject {
	return &mockObject{name: name, log: l}
}

func (m *mockObject) Name() Name       { return "MockObject" }
func (m *mockObject) CanRun() bool     { return true }
func (m *mockObject) Run(*RunContext)  { m.log.push(m.name) }
func (m *mockObject) Concrete() Concrete {
	return Concrete{Kind: ConcreteOther}
}

// testableSystem bundles a freshly built system and its three frames,
// mirroring the original suite's TestableSystem/make_system helper.
type testableSystem struct {
	system *System
	a, b, c *Frame
}

func makeSystem(l *log, prefix string) testableSystem {
	sys := NewSystem()
	a := sys.Frame(newMockObject(prefix+":a", l))
	b := sys.Frame(newMockObject(prefix+":b", l))
	c := sys.Frame(newMockObject(prefix+":c", l))
	return testableSystem{system: sys, a: a, b: b, c: c}
}

func TestRunNothing(t *testing.T) {
	l := &log{}
	makeSystem(l, "")
	loop := NewTaskLoop()
	loop.RunUntilDone()
	if got := l.String(); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestRunOne(t *testing.T) {
	l := &log{}
	ts := makeSystem(l, "")
	loop := NewTaskLoop()
	ts.a.Schedule(loop)
	loop.RunUntilDone()
	if got, want := l.String(), ":a"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSwap(t *testing.T) {
	l := &log{}
	ts := makeSystem(l, "")
	if err := Swap(ts.a, ts.b); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	loop := NewTaskLoop()
	ts.a.Schedule(loop)
	loop.RunUntilDone()
	if got, want := l.String(), ":b"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// TestTaskLoopSwap drives the observability-wrapped TaskLoop.Swap (tracing,
// metrics, and the hookz-backed OnSwap subscription) rather than the bare
// package-level Swap, confirming the swap still takes effect and that the
// registered hook observes it exactly once.
func TestTaskLoopSwap(t *testing.T) {
	l := &log{}
	ts := makeSystem(l, "")
	loop := NewTaskLoop()

	var got SwapEvent
	calls := 0
	if _, err := loop.OnSwap(func(_ context.Context, ev SwapEvent) error {
		calls++
		got = ev
		return nil
	}); err != nil {
		t.Fatalf("OnSwap: %v", err)
	}

	if err := loop.Swap(ts.a, ts.b); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if calls != 1 {
		t.Fatalf("got %d OnSwap calls, want 1", calls)
	}
	if got.FrameA != ts.a.name || got.FrameB != ts.b.name {
		t.Fatalf("got SwapEvent %+v, want {%q %q}", got, ts.a.name, ts.b.name)
	}

	ts.a.Schedule(loop)
	loop.RunUntilDone()
	if got, want := l.String(), ":b"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// TestTaskLoopSwapNilFrame confirms a nil frame is rejected with the typed
// InvariantError before anything dereferences it.
func TestTaskLoopSwapNilFrame(t *testing.T) {
	ts := makeSystem(&log{}, "")
	loop := NewTaskLoop()

	err := loop.Swap(nil, ts.b)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	ie, ok := err.(*InvariantError)
	if !ok {
		t.Fatalf("got error of type %T, want *InvariantError", err)
	}
	if ie.Kind != InvariantDetachedSwap {
		t.Fatalf("got Kind %v, want %v", ie.Kind, InvariantDetachedSwap)
	}
}

func TestThen(t *testing.T) {
	l := &log{}
	ts := makeSystem(l, "")
	ts.system.Link(DirectEnd(ts.a), DirectEnd(ts.b), Then)
	loop := NewTaskLoop()
	ts.a.Schedule(loop)
	loop.RunUntilDone()
	if got, want := l.String(), ":a :b"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLoop(t *testing.T) {
	l := &log{}
	ts := makeSystem(l, "")
	ts.system.Link(DirectEnd(ts.a), DirectEnd(ts.a), Then)
	loop := NewTaskLoop()
	ts.a.Schedule(loop)
	loop.RunIterations(3)
	if got, want := l.String(), ":a :a :a"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSplit(t *testing.T) {
	l := &log{}
	ts := makeSystem(l, "")
	ts.system.Link(DirectEnd(ts.a), DirectEnd(ts.b), Then)
	ts.system.Link(DirectEnd(ts.a), DirectEnd(ts.c), Then)
	loop := NewTaskLoop()
	ts.a.Schedule(loop)
	loop.RunUntilDone()
	if got, want := l.String(), ":a :b :c"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMerge(t *testing.T) {
	l := &log{}
	ts := makeSystem(l, "")
	ts.system.Link(DirectEnd(ts.a), DirectEnd(ts.c), Then)
	ts.system.Link(DirectEnd(ts.b), DirectEnd(ts.c), Then)
	loop := NewTaskLoop()
	ts.a.Schedule(loop)
	ts.b.Schedule(loop)
	loop.RunUntilDone()
	if got, want := l.String(), ":a :b :c"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRepeat(t *testing.T) {
	l := &log{}
	ts := makeSystem(l, "")
	ts.system.Link(DirectEnd(ts.a), DirectEnd(ts.c), Then)
	ts.system.Link(DirectEnd(ts.b), DirectEnd(ts.c), Then)
	loop := NewTaskLoop()
	ts.a.Schedule(loop)
	loop.RunUntilDone()
	ts.b.Schedule(loop)
	loop.RunUntilDone()
	if got, want := l.String(), ":a :c :b :c"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// crossSystemTest nests a Left and a Right system inside a Top system's
// b and c frames, mirroring the original suite's CrossSystemTest.
type crossSystemTest struct {
	log   *log
	top   testableSystem
	left  testableSystem
	right testableSystem
}

func newCrossSystemTest() *crossSystemTest {
	l := &log{}
	top := makeSystem(l, "Top")
	left := makeSystem(l, "Left")
	right := makeSystem(l, "Right")
	top.system.Adopt(top.b, left.system)
	top.system.Adopt(top.c, right.system)
	return &crossSystemTest{log: l, top: top, left: left, right: right}
}

func TestEnterSystem(t *testing.T) {
	cs := newCrossSystemTest()
	cs.top.system.Link(DirectEnd(cs.top.a), DirectEnd(cs.left.a), Then)
	loop := NewTaskLoop()
	cs.top.a.Schedule(loop)
	loop.RunIterations(2)
	if got, want := cs.log.String(), "Top:a Left:a"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExitSystem(t *testing.T) {
	cs := newCrossSystemTest()
	cs.top.system.Link(DirectEnd(cs.left.a), DirectEnd(cs.top.a), Then)
	loop := NewTaskLoop()
	cs.left.a.Schedule(loop)
	loop.RunIterations(2)
	if got, want := cs.log.String(), "Left:a Top:a"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCrossSystems(t *testing.T) {
	cs := newCrossSystemTest()
	cs.top.system.Link(DirectEnd(cs.left.a), DirectEnd(cs.right.a), Then)
	cs.top.system.Link(DirectEnd(cs.right.a), DirectEnd(cs.left.a), Then)
	loop := NewTaskLoop()
	cs.left.a.Schedule(loop)
	loop.RunIterations(4)
	if got, want := cs.log.String(), "Left:a Right:a Left:a Right:a"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// TestSystemSubstitution mirrors the three-level-deep swap/heal scenario
// from the original suite: a Then link from top into a deeply nested
// leaf keeps firing correctly across repeated swaps of the intervening
// subsystems.
func TestSystemSubstitution(t *testing.T) {
	l := &log{}
	sys := NewSystem()
	top := sys.Frame(newMockObject("top", l))

	left1 := sys.Frame(NewSystem())
	leftSys1 := left1.Object().(*System)
	left2 := leftSys1.Frame(NewSystem())
	leftSys2 := left2.Object().(*System)
	left3 := leftSys2.Frame(newMockObject("left3", l))

	right1 := sys.Frame(NewSystem())
	rightSys1 := right1.Object().(*System)
	right2 := rightSys1.Frame(NewSystem())
	rightSys2 := right2.Object().(*System)
	right3 := rightSys2.Frame(newMockObject("right3", l))

	sys.Link(DirectEnd(top), DirectEnd(left3), Then)

	loop := NewTaskLoop()

	top.Schedule(loop)
	loop.RunUntilDone()
	if got, want := l.String(), "top left3"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	if err := Swap(left1, right1); err != nil {
		t.Fatalf("Swap left1/right1: %v", err)
	}
	top.Schedule(loop)
	loop.RunUntilDone()
	if got, want := l.String(), "top left3 top right3"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	if err := Swap(left2, right2); err != nil {
		t.Fatalf("Swap left2/right2: %v", err)
	}
	top.Schedule(loop)
	loop.RunUntilDone()
	if got, want := l.String(), "top left3 top right3 top left3"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	if err := Swap(left3, right3); err != nil {
		t.Fatalf("Swap left3/right3: %v", err)
	}
	top.Schedule(loop)
	loop.RunUntilDone()
	if got, want := l.String(), "top left3 top right3 top left3 top right3"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// slowObject suspends completion on a background handle, delivering one
// update before closing it.
type slowObject struct {
	BaseObject
	log *log
}

func (s *slowObject) Name() Name   { return "SlowObject" }
func (s *slowObject) CanRun() bool { return true }
func (s *slowObject) Concrete() Concrete {
	return Concrete{Kind: ConcreteOther}
}
func (s *slowObject) Run(ctx *RunContext) {
	s.log.push("start")
	bg := ctx.Background()
	go func() {
		defer bg.Close()
		bg.SendUpdate(struct{}{})
	}()
}
func (s *slowObject) Update(any) {
	s.log.push("end")
}

func TestBackground(t *testing.T) {
	l := &log{}
	sys := NewSystem()
	slow := sys.Frame(&slowObject{log: l})
	then := sys.Frame(newMockObject("mock", l))
	sys.Link(DirectEnd(slow), DirectEnd(then), Then)

	loop := NewTaskLoop()
	slow.Schedule(loop)
	loop.RunUntilDone()

	if got, want := l.String(), "start end mock"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// TestTimerObject drives a TimerObject's background delay deterministically
// with a fake clock, mirroring the teacher's "Backoff Timing With Clock"
// subtest: run the loop in a goroutine, advance the clock once the
// background goroutine has registered its timer, then wait for completion.
func TestTimerObject(t *testing.T) {
	l := &log{}
	clock := clockz.NewFakeClock()
	sys := NewSystem()
	timer := sys.Frame(NewTimerObject("timer", 50*time.Millisecond, nil))
	then := sys.Frame(newMockObject("mock", l))
	sys.Link(DirectEnd(timer), DirectEnd(then), Then)

	loop := NewTaskLoop(WithClock(clock))
	timer.Schedule(loop)

	done := make(chan struct{})
	go func() {
		loop.RunUntilDone()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond) // let the background goroutine register its timer
	clock.Advance(50 * time.Millisecond)
	clock.BlockUntilReady()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("test timed out")
	}

	if got, want := l.String(), "mock"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
