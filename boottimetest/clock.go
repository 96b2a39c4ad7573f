// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package boottimetest provides a fake clock for testing code that uses
// boottime.Instant, including simulated system suspend.
package boottimetest

import (
	"sync"
	"time"

	"github.com/tailscale/boottime"
	"github.com/tailscale/boottime/clocksource"
)

// ClockOpts is used to configure the initial settings for a Clock. Once the
// settings are configured as desired, call NewClock to get the resulting
// Clock.
type ClockOpts struct {
	// Start is the first reading of the Clock, as an offset from its epoch.
	// The default is one hour, so tests can step back from the first
	// Instant without leaving the range of a real clock.
	Start time.Duration

	// Step is the amount of time the Clock advances whenever Now is
	// called, except for the first call and the first call after Advance
	// or Suspend. If zero, the Clock only moves when told to.
	Step time.Duration

	// SuspendAware makes the Clock keep counting across Suspend, like
	// CLOCK_BOOTTIME. Otherwise it freezes during Suspend, like the
	// CLOCK_MONOTONIC the Go runtime reads on Linux.
	SuspendAware bool
}

// Clock is a fake clocksource.Source. It tracks two readings: the time the
// simulated machine spent awake, and the time it spent suspended. Now
// reports the awake time plus, if the Clock is suspend-aware, the suspended
// time. Monotonic always reports only the awake time.
//
// A Clock is safe for concurrent use.
type Clock struct {
	start        time.Duration
	step         time.Duration
	suspendAware bool

	mu        sync.Mutex
	awake     time.Duration // time advanced by Step and Advance
	suspended time.Duration // time advanced by Suspend
	skipStep  bool
	err       error
}

var _ clocksource.Source = (*Clock)(nil)

// NewClock creates a Clock with the specified settings.
func NewClock(co ClockOpts) *Clock {
	if co.Start == 0 {
		co.Start = time.Hour
	}
	return &Clock{
		start:        co.Start,
		step:         co.Step,
		suspendAware: co.SuspendAware,
		skipStep:     true,
	}
}

// Ticks implements clocksource.Source. Ticks are nanoseconds. Each call
// applies Step as described in ClockOpts.
func (c *Clock) Ticks() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	if !c.skipStep {
		c.awake += c.step
	}
	c.skipStep = false
	return int64(c.readingLocked()), nil
}

// TicksToDuration implements clocksource.Source.
func (c *Clock) TicksToDuration(ticks int64) time.Duration {
	return time.Duration(ticks)
}

// Describe implements clocksource.Source.
func (c *Clock) Describe() clocksource.Info {
	name := "fake CLOCK_MONOTONIC"
	if c.suspendAware {
		name = "fake CLOCK_BOOTTIME"
	}
	return clocksource.Info{
		Name:         name,
		SuspendAware: c.suspendAware,
		Frequency:    int64(time.Second),
		Resolution:   time.Nanosecond,
	}
}

func (c *Clock) readingLocked() time.Duration {
	d := c.start + c.awake
	if c.suspendAware {
		d += c.suspended
	}
	return d
}

// Now returns the current Instant, advancing the Clock by Step first if
// applicable. Like boottime.Now, it panics if the Clock was told to fail
// with SetError.
func (c *Clock) Now() boottime.Instant {
	t, err := boottime.FromSource(c)
	if err != nil {
		panic(err)
	}
	return t
}

// PeekNow returns the Instant Now would return, without applying Step.
func (c *Clock) PeekNow() boottime.Instant {
	t, err := boottime.FromSource(peekSource{c})
	if err != nil {
		panic(err)
	}
	return t
}

// Monotonic returns the time the simulated machine has spent awake since
// the Clock's epoch, as an ordinary monotonic clock would report it. It
// does not apply Step.
func (c *Clock) Monotonic() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start + c.awake
}

// Advance moves the Clock forward by d of awake time and returns the new
// Instant. The next call to Now does not apply Step.
func (c *Clock) Advance(d time.Duration) boottime.Instant {
	if d < 0 {
		panic("boottimetest: cannot Advance a monotonic clock backwards")
	}
	c.mu.Lock()
	c.awake += d
	c.skipStep = true
	c.mu.Unlock()
	return c.PeekNow()
}

// Suspend simulates the machine sleeping for d. A suspend-aware Clock
// moves forward by d; otherwise only Suspended changes. The next call to
// Now does not apply Step.
func (c *Clock) Suspend(d time.Duration) {
	if d < 0 {
		panic("boottimetest: negative suspend")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suspended += d
	c.skipStep = true
}

// Suspended returns the total simulated suspend time.
func (c *Clock) Suspended() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suspended
}

// SetError makes every subsequent read of the Clock fail with err, or
// succeed again if err is nil.
func (c *Clock) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// peekSource reads a Clock without applying Step.
type peekSource struct{ *Clock }

func (p peekSource) Ticks() (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return 0, p.err
	}
	return int64(p.readingLocked()), nil
}
