package main

import (
	"strings"
	"sync"

	"github.com/mafik/loom"
)

// journal is a thread-safe ordered log of short tokens, used by the
// demo scenarios below to make an otherwise invisible execution order
// visible on stdout.
type journal struct {
	mu     sync.Mutex
	tokens []string
}

func (j *journal) record(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.tokens = append(j.tokens, token)
}

func (j *journal) String() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return strings.Join(j.tokens, " ")
}

// step is a minimal runnable Object: it records its own name to a
// shared journal and finishes synchronously.
type step struct {
	loom.BaseObject
	label string
	log   *journal
}

func newStep(log *journal, label string) *step {
	return &step{label: label, log: log}
}

func (s *step) Name() loom.Name { return s.label }
func (s *step) CanRun() bool    { return true }
func (s *step) Concrete() loom.Concrete {
	return loom.Concrete{Kind: loom.ConcreteOther}
}
func (s *step) Run(*loom.RunContext) {
	s.log.record(":" + s.label)
}

// scenario is one named, runnable demonstration.
type scenario struct {
	name        string
	description string
	run         func() string
}

func scenarios() []scenario {
	return []scenario{
		{"run-one", "schedule a single frame and run it", scenarioRunOne},
		{"then", "two frames chained by a Then link", scenarioThen},
		{"split", "one frame fanning out to two via Then", scenarioSplit},
		{"merge", "two frames converging into one via Then", scenarioMerge},
		{"swap", "hot-swap the objects held by two frames", scenarioSwap},
		{"enter-system", "a frame links into a nested system's inner frame", scenarioEnterSystem},
		{"exit-system", "a nested system's inner frame links out to a sibling", scenarioExitSystem},
		{"background", "a frame suspends on a background handle before finishing", scenarioBackground},
	}
}

func scenarioRunOne() string {
	log := &journal{}
	sys := loom.NewSystem()
	a := sys.Frame(newStep(log, "a"))
	loop := loom.NewTaskLoop()
	a.Schedule(loop)
	loop.RunUntilDone()
	return log.String()
}

func scenarioThen() string {
	log := &journal{}
	sys := loom.NewSystem()
	a := sys.Frame(newStep(log, "a"))
	b := sys.Frame(newStep(log, "b"))
	sys.Link(loom.DirectEnd(a), loom.DirectEnd(b), loom.Then)
	loop := loom.NewTaskLoop()
	a.Schedule(loop)
	loop.RunUntilDone()
	return log.String()
}

func scenarioSplit() string {
	log := &journal{}
	sys := loom.NewSystem()
	a := sys.Frame(newStep(log, "a"))
	b := sys.Frame(newStep(log, "b"))
	c := sys.Frame(newStep(log, "c"))
	sys.Link(loom.DirectEnd(a), loom.DirectEnd(b), loom.Then)
	sys.Link(loom.DirectEnd(a), loom.DirectEnd(c), loom.Then)
	loop := loom.NewTaskLoop()
	a.Schedule(loop)
	loop.RunUntilDone()
	return log.String()
}

func scenarioMerge() string {
	log := &journal{}
	sys := loom.NewSystem()
	a := sys.Frame(newStep(log, "a"))
	b := sys.Frame(newStep(log, "b"))
	c := sys.Frame(newStep(log, "c"))
	sys.Link(loom.DirectEnd(a), loom.DirectEnd(c), loom.Then)
	sys.Link(loom.DirectEnd(b), loom.DirectEnd(c), loom.Then)
	loop := loom.NewTaskLoop()
	a.Schedule(loop)
	b.Schedule(loop)
	loop.RunUntilDone()
	return log.String()
}

func scenarioSwap() string {
	log := &journal{}
	sys := loom.NewSystem()
	a := sys.Frame(newStep(log, "a"))
	b := sys.Frame(newStep(log, "b"))
	loom.Swap(a, b)
	loop := loom.NewTaskLoop()
	a.Schedule(loop)
	loop.RunUntilDone()
	return log.String()
}

func scenarioEnterSystem() string {
	log := &journal{}
	outer := loom.NewSystem()
	inner := loom.NewSystem()
	innerA := inner.Frame(newStep(log, "inner-a"))
	_ = innerA
	outerFrame := outer.Frame(inner)
	entry := outer.Frame(newStep(log, "entry"))
	outer.Link(loom.DirectEnd(entry), loom.DirectEnd(innerA), loom.Then)
	_ = outerFrame
	loop := loom.NewTaskLoop()
	entry.Schedule(loop)
	loop.RunUntilDone()
	return log.String()
}

func scenarioExitSystem() string {
	log := &journal{}
	outer := loom.NewSystem()
	inner := loom.NewSystem()
	innerA := inner.Frame(newStep(log, "inner-a"))
	outer.Frame(inner)
	exit := outer.Frame(newStep(log, "exit"))
	outer.Link(loom.DirectEnd(innerA), loom.DirectEnd(exit), loom.Then)
	loop := loom.NewTaskLoop()
	innerA.Schedule(loop)
	loop.RunUntilDone()
	return log.String()
}

// backgroundStep suspends its Run on a background handle and finishes
// only once an external producer has delivered an update and closed the
// handle.
type backgroundStep struct {
	loom.BaseObject
	label string
	log   *journal
}

func (b *backgroundStep) Name() loom.Name { return b.label }
func (b *backgroundStep) CanRun() bool    { return true }
func (b *backgroundStep) Concrete() loom.Concrete {
	return loom.Concrete{Kind: loom.ConcreteOther}
}
func (b *backgroundStep) Update(payload any) {
	if s, ok := payload.(string); ok {
		b.log.record(s)
	}
}
func (b *backgroundStep) Run(ctx *loom.RunContext) {
	b.log.record(":" + b.label + "-start")
	handle := ctx.Background()
	go func() {
		defer handle.Close()
		handle.SendUpdate(":" + b.label + "-update")
	}()
}

func scenarioBackground() string {
	log := &journal{}
	sys := loom.NewSystem()
	a := sys.Frame(&backgroundStep{label: "a", log: log})
	loop := loom.NewTaskLoop()
	a.Schedule(loop)
	loop.RunUntilDone()
	return log.String()
}
