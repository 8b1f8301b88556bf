package loom

import "time"

// TimerObject is a runnable leaf that suspends on a background handle and
// completes only after delay has elapsed on the owning TaskLoop's clock,
// rather than completing synchronously or via an arbitrary external
// producer goroutine. Grounded on the teacher's WithClock-configurable
// connectors (ratelimiter.go, backoff.go), whose delayed retries select on
// clock.After instead of time.After so tests can drive them with a
// clockz.NewFakeClock() and Advance instead of sleeping for real.
type TimerObject struct {
	BaseObject
	name    Name
	delay   time.Duration
	payload any
}

// NewTimerObject builds a TimerObject that completes delay after being
// run, delivering payload to its own Update.
func NewTimerObject(name Name, delay time.Duration, payload any) *TimerObject {
	return &TimerObject{name: name, delay: delay, payload: payload}
}

func (t *TimerObject) Name() Name   { return t.name }
func (t *TimerObject) CanRun() bool { return true }
func (t *TimerObject) Concrete() Concrete {
	return Concrete{Kind: ConcreteOther}
}

// Run schedules the delay on the owning loop's clock and backgrounds the
// frame until it fires.
func (t *TimerObject) Run(ctx *RunContext) {
	clock := ctx.loop.clock
	bg := ctx.Background()
	go func() {
		defer bg.Close()
		<-clock.After(t.delay)
		bg.SendUpdate(t.payload)
	}()
}

// Update is a no-op by default; embedders that need the delivered payload
// override it (see BaseObject).
func (t *TimerObject) Update(any) {}
