package loom

import (
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Signals emitted via capitan.Info/Warn/Error. Namespaced <area>.<event>,
// matching the convention in the teacher's signals.go.
var (
	SignalFrameScheduled    = capitan.Signal("frame.scheduled")
	SignalFrameRunStart     = capitan.Signal("frame.run.start")
	SignalFrameRunFinish    = capitan.Signal("frame.run.finish")
	SignalLinkCut           = capitan.Signal("system.link.cut")
	SignalLinkHealed        = capitan.Signal("system.link.healed")
	SignalLinkUnresolved    = capitan.Signal("system.link.unresolved")
	SignalBackgroundStart   = capitan.Signal("background.started")
	SignalBackgroundUpdate  = capitan.Signal("background.update")
	SignalBackgroundDropped = capitan.Signal("background.dropped")
	SignalSwapBegin         = capitan.Signal("swap.begin")
	SignalSwapComplete      = capitan.Signal("swap.complete")

	// SignalBackgroundStarted is kept as an alias of SignalBackgroundStart
	// for call sites written against the longer name (SPEC_FULL.md §2.1).
	SignalBackgroundStarted = SignalBackgroundStart
)

// Typed field keys, matching the FieldName/FieldTimestamp convention in
// the teacher's signals.go. FieldTimestamp holds Unix seconds as a
// float64, not nanoseconds, matching that convention exactly.
var (
	FieldName      = capitan.NewStringKey("name")
	FieldTimestamp = capitan.NewFloat64Key("timestamp")
	FieldDetail    = capitan.NewStringKey("detail")
)

// Metric keys, registered lazily the first time they're used.
var (
	MetricScheduledTotal         = metricz.Key("taskloop.scheduled.total")
	MetricCompletedTotal         = metricz.Key("taskloop.completed.total")
	MetricBackgroundStartedTotal = metricz.Key("taskloop.background.started.total")
	MetricBackgroundActive       = metricz.Key("taskloop.background.active")
	MetricSwapTotal              = metricz.Key("taskloop.swap.total")
)

// Trace span key and tag names for RunOne's branch.
var (
	TraceRunOne = tracez.Key("taskloop.run_one")
	TagBranch   = tracez.Tag("branch")
	TagFrame    = tracez.Tag("frame")
)

// HookSwap is the hookz key under which SwapEvent subscribers register.
var HookSwap = hookz.Key("loom.swap")
