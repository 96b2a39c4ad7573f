// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package boottime provides a monotonic Instant that keeps advancing while
// the machine is suspended.
//
// The Go runtime's monotonic clock (the one behind time.Now and
// time.Since) stops while a Linux or macOS machine sleeps, so a timeout
// measured across a laptop lid close comes out short by however long the
// lid was closed. Instant reads CLOCK_BOOTTIME on Linux and the
// equivalent clock elsewhere; see package clocksource for the full list and
// the platforms where no such clock exists and an ordinary monotonic clock
// is used instead.
//
// Instants are only meaningful relative to other Instants read in the same
// process. Subtraction never yields a negative duration: the plain forms
// saturate at zero, and the Checked forms report whether the result was
// exact.
package boottime

import (
	"cmp"
	"fmt"
	"math"
	"time"

	"github.com/tailscale/boottime/clocksource"
)

// Instant is a reading of the suspend-aware monotonic clock.
//
// Instants are comparable with == and may be used as map keys. The zero
// Instant is never returned by Now and has no meaning of its own.
type Instant struct {
	d time.Duration // since the clock's epoch
}

const (
	minDuration time.Duration = math.MinInt64
	maxDuration time.Duration = math.MaxInt64
)

// Now returns the current Instant.
//
// Readings never decrease within a goroutine. Whether they are also ordered
// across threads is inherited from the OS clock; on Windows two readings
// taken on different threads may disagree by up to one tick, which
// CheckedDurationSince tolerates.
//
// Now panics if the OS clock cannot be read.
func Now() Instant {
	return Instant{clocksource.Now()}
}

// FromSource reads an Instant from src. It exists so tests can drive
// Instants from a fake clock; use Now otherwise. Instants read from
// different sources must not be compared.
func FromSource(src clocksource.Source) (Instant, error) {
	ticks, err := src.Ticks()
	if err != nil {
		return Instant{}, fmt.Errorf("clocksource: %s: %w", src.Describe().Name, err)
	}
	return Instant{src.TicksToDuration(ticks)}, nil
}

// Since returns the time elapsed since t, or zero if t is in the future.
func Since(t Instant) time.Duration {
	return Now().DurationSince(t)
}

// Until returns the duration until t, or zero if t has passed.
func Until(t Instant) time.Duration {
	return t.DurationSince(Now())
}

// Elapsed returns the time elapsed since t. It is the same as Since(t).
func (t Instant) Elapsed() time.Duration {
	return Since(t)
}

// DurationSince returns t-earlier, or zero if earlier is after t. If the
// difference does not fit in a time.Duration it returns the largest
// time.Duration.
func (t Instant) DurationSince(earlier Instant) time.Duration {
	return t.SaturatingDurationSince(earlier)
}

// SaturatingDurationSince is DurationSince.
func (t Instant) SaturatingDurationSince(earlier Instant) time.Duration {
	d, ok := t.CheckedDurationSince(earlier)
	if !ok && t.d > earlier.d {
		return maxDuration
	}
	return d
}

// Sub returns t-u, or zero if u is after t. It mirrors time.Time.Sub except
// that the result is never negative.
func (t Instant) Sub(u Instant) time.Duration {
	return t.DurationSince(u)
}

// CheckedDurationSince returns t-earlier. It reports false if earlier is
// after t, or if the difference does not fit in a time.Duration.
//
// An earlier that exceeds t by no more than the clock's cross-thread
// epsilon is treated as equal to t.
func (t Instant) CheckedDurationSince(earlier Instant) (time.Duration, bool) {
	return checkedSince(t, earlier, clocksource.Epsilon())
}

// checkedSince returns t-earlier, reading an inversion of at most eps as
// zero.
func checkedSince(t, earlier Instant, eps time.Duration) (time.Duration, bool) {
	if t.d < earlier.d {
		if back, ok := subDuration(earlier.d, t.d); ok && back <= eps {
			return 0, true
		}
		return 0, false
	}
	d, ok := subDuration(t.d, earlier.d)
	if !ok {
		return 0, false
	}
	return d, true
}

// CheckedAdd returns t+d. It reports false if the result cannot be
// represented. A negative d moves t backwards.
func (t Instant) CheckedAdd(d time.Duration) (Instant, bool) {
	sum, ok := addDuration(t.d, d)
	if !ok {
		return Instant{}, false
	}
	return Instant{sum}, true
}

// CheckedSub returns t-d. It reports false if the result cannot be
// represented.
func (t Instant) CheckedSub(d time.Duration) (Instant, bool) {
	diff, ok := subDuration(t.d, d)
	if !ok {
		return Instant{}, false
	}
	return Instant{diff}, true
}

// Add returns t+d, clamped to the latest or earliest representable
// Instant. Use CheckedAdd to detect clamping.
func (t Instant) Add(d time.Duration) Instant {
	if u, ok := t.CheckedAdd(d); ok {
		return u
	}
	if d > 0 {
		return Instant{maxDuration}
	}
	return Instant{minDuration}
}

// Before reports whether t is before u.
func (t Instant) Before(u Instant) bool { return t.d < u.d }

// After reports whether t is after u.
func (t Instant) After(u Instant) bool { return t.d > u.d }

// Equal reports whether t and u are the same reading. It is the same as
// t == u.
func (t Instant) Equal(u Instant) bool { return t.d == u.d }

// Compare returns -1 if t is before u, +1 if t is after u, and 0 if they
// are equal.
func (t Instant) Compare(u Instant) int { return cmp.Compare(t.d, u.d) }

// String returns the Instant as an offset from the clock's epoch, for
// debugging.
func (t Instant) String() string {
	return fmt.Sprintf("boottime.Instant(%v)", t.d)
}

// addDuration returns a+b, reporting false on overflow.
func addDuration(a, b time.Duration) (time.Duration, bool) {
	if (b > 0 && a > maxDuration-b) || (b < 0 && a < minDuration-b) {
		return 0, false
	}
	return a + b, true
}

// subDuration returns a-b, reporting false on overflow.
func subDuration(a, b time.Duration) (time.Duration, bool) {
	if (b > 0 && a < minDuration+b) || (b < 0 && a > maxDuration+b) {
		return 0, false
	}
	return a - b, true
}
