// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package suspendwatch detects when the machine has been suspended.
//
// It periodically compares how far the suspend-aware boottime clock has
// moved with how far the Go runtime's monotonic clock has moved. The
// runtime clock stops while Linux and macOS machines sleep, so any excess
// on the boottime side is time spent suspended.
package suspendwatch

import (
	"runtime"
	"sync"
	"time"

	"github.com/tailscale/boottime"
	"github.com/tailscale/boottime/clocksource"
	"github.com/tailscale/boottime/types/logger"
)

const (
	defaultInterval  = 10 * time.Second
	defaultThreshold = 2 * time.Second
)

// Clock is the pair of clocks a Watcher compares.
type Clock interface {
	// Now returns the current suspend-aware Instant.
	Now() boottime.Instant
	// Monotonic returns a reading of a monotonic clock that does not
	// advance while the machine is suspended.
	Monotonic() time.Duration
}

// systemClock pairs boottime.Now with the Go runtime's monotonic clock.
type systemClock struct {
	base time.Time
}

func (systemClock) Now() boottime.Instant { return boottime.Now() }

// Monotonic uses time.Since, which only consults the monotonic reading.
func (c systemClock) Monotonic() time.Duration { return time.Since(c.base) }

// canWatchSystem is whether the system clocks can reveal a suspend: the
// boottime clock has to count suspended time and the runtime clock must
// not. On Windows the runtime clock counts suspended time too.
var canWatchSystem = clocksource.SuspendAware() && runtime.GOOS != "windows"

// Suspend describes a detected suspend period.
type Suspend struct {
	// Detected is when the Watcher noticed the suspend, after resuming.
	Detected boottime.Instant
	// Duration is the estimated time spent suspended.
	Duration time.Duration
}

// Opts configures a Watcher. The zero value is usable.
type Opts struct {
	// Logf receives a line per detected suspend. Nil means logger.Discard.
	Logf logger.Logf

	// Interval is how often the Watcher polls when started.
	// Zero means 10 seconds.
	Interval time.Duration

	// Threshold is the smallest gap between the two clocks that is reported
	// as a suspend. Gaps below it are scheduling noise. Zero means 2 seconds.
	Threshold time.Duration

	// Clock overrides the system clocks, for tests.
	Clock Clock
}

// Watcher polls for suspend periods and reports them to registered
// callbacks.
type Watcher struct {
	logf      logger.Logf
	clock     Clock
	interval  time.Duration
	threshold time.Duration
	enabled   bool

	mu         sync.Mutex
	cbs        map[int]func(Suspend)
	nextHandle int
	lastBoot   boottime.Instant
	lastMono   time.Duration
	total      time.Duration
	timer      *time.Timer // non-nil once started
	started    bool
	closed     bool
}

// New returns a Watcher. It does not poll until Start is called, but
// Check may be used right away.
func New(opts Opts) *Watcher {
	logf := opts.Logf
	if logf == nil {
		logf = logger.Discard
	}
	// The limiter refills on the runtime clock, which stops during suspend.
	w := &Watcher{
		logf:      logger.RateLimitedFn(logger.WithPrefix(logf, "suspendwatch: "), time.Minute, 5, 10),
		clock:     opts.Clock,
		interval:  opts.Interval,
		threshold: opts.Threshold,
		enabled:   true,
		cbs:       make(map[int]func(Suspend)),
	}
	if w.clock == nil {
		w.clock = systemClock{base: time.Now()}
		w.enabled = canWatchSystem
	}
	if w.interval <= 0 {
		w.interval = defaultInterval
	}
	if w.threshold <= 0 {
		w.threshold = defaultThreshold
	}
	w.lastBoot, w.lastMono = w.clock.Now(), w.clock.Monotonic()
	return w
}

// RegisterCallback adds fn to the functions called when a suspend is
// detected. Callbacks run on the goroutine that detected the suspend and
// must not block. The returned func removes the callback.
func (w *Watcher) RegisterCallback(fn func(Suspend)) (unregister func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	handle := w.nextHandle
	w.nextHandle++
	w.cbs[handle] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.cbs, handle)
	}
}

// Start starts polling. A Watcher can only be started and closed once.
// On platforms where the system clocks cannot tell a suspend apart, Start
// does nothing.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.closed {
		return
	}
	w.started = true
	if !w.enabled {
		w.logf("%s does not count suspended time separately from the runtime clock; not watching", clocksource.Name())
		return
	}
	w.timer = time.AfterFunc(w.interval, w.poll)
}

// Close stops polling.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	return nil
}

func (w *Watcher) poll() {
	w.Check()
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.timer.Reset(w.interval)
	}
}

// Check compares the clocks now, without waiting for the next poll. It is
// useful when the caller has its own hint that the machine just woke up,
// such as a network link change. It reports whether a suspend was detected
// since the previous check. It is safe to call while the Watcher polls;
// each suspend is reported once.
func (w *Watcher) Check() (Suspend, bool) {
	if !w.enabled {
		return Suspend{}, false
	}
	// Readings are taken under mu so concurrent checks update the baseline
	// in order.
	w.mu.Lock()
	boot, mono := w.clock.Now(), w.clock.Monotonic()
	bootDelta := boot.Sub(w.lastBoot)
	monoDelta := max(mono-w.lastMono, 0)
	w.lastBoot, w.lastMono = boot, mono
	gap := bootDelta - monoDelta
	if gap < w.threshold {
		w.mu.Unlock()
		return Suspend{}, false
	}
	w.total += gap
	s := Suspend{Detected: boot, Duration: gap}
	cbs := make([]func(Suspend), 0, len(w.cbs))
	for _, cb := range w.cbs {
		cbs = append(cbs, cb)
	}
	w.mu.Unlock()

	w.logf("resumed after about %v suspended", gap.Round(time.Millisecond))
	for _, cb := range cbs {
		cb(s)
	}
	return s, true
}

// Total returns the total suspended time detected so far.
func (w *Watcher) Total() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total
}
