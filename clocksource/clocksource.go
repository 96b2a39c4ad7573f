// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package clocksource binds the clock that boottime Instants are read from.
//
// The clock is chosen at build time, one file per platform family:
//
//	linux, android                      CLOCK_BOOTTIME
//	openbsd                             CLOCK_BOOTTIME
//	darwin, ios                         CLOCK_MONOTONIC_RAW (mach_continuous_time)
//	windows                             QueryPerformanceCounter
//	freebsd, netbsd, dragonfly, solaris CLOCK_MONOTONIC
//	everything else                     the Go runtime's monotonic clock
//
// The first four keep counting while the machine is suspended. The other
// POSIX monotonic clocks and the Go runtime clock make no such promise. Building
// with the boottime_std tag forces the Go runtime clock on every platform.
//
// There is no runtime probing or fallback: a process reads exactly one
// clock for its whole lifetime.
package clocksource

import (
	"fmt"
	"math"
	"sync"
	"time"
)

const nanosPerSecond = int64(time.Second)

// Info describes the clock bound into this binary.
type Info struct {
	// Name is the OS name of the clock, such as "CLOCK_BOOTTIME".
	Name string

	// SuspendAware reports whether the clock is documented to keep
	// advancing while the system is suspended.
	SuspendAware bool

	// Frequency is the number of raw ticks per second.
	Frequency int64

	// Resolution is the granularity of the clock as reported by the OS, or
	// as measured when the OS has no way to report it. It is zero if it
	// could not be determined.
	Resolution time.Duration

	// Epsilon is the distance below which two readings taken on different
	// threads cannot be ordered. Only QueryPerformanceCounter has a
	// non-zero epsilon.
	Epsilon time.Duration
}

// Source is a clock that Instants can be read from. System is the only
// production implementation; the interface exists so tests can substitute
// a fake clock.
type Source interface {
	// Ticks returns the current raw reading of the clock.
	Ticks() (int64, error)

	// TicksToDuration converts a raw reading into the time elapsed since
	// the clock's epoch.
	TicksToDuration(ticks int64) time.Duration

	// Describe returns metadata about the clock.
	Describe() Info
}

// System is the Source bound for the platform this binary was built for.
type System struct{}

var _ Source = System{}

// Ticks reads the bound clock. Unlike the package-level Ticks, its error is
// not wrapped; boottime.FromSource adds the clock name.
func (System) Ticks() (int64, error) { return readTicks() }

func (System) TicksToDuration(ticks int64) time.Duration { return TicksToDuration(ticks) }
func (System) Describe() Info                            { return Describe() }

// Name returns the name of the bound clock.
func Name() string { return clockName }

// SuspendAware reports whether the bound clock counts time spent suspended.
func SuspendAware() bool { return suspendAware }

// Epsilon returns the bound clock's cross-thread ordering tolerance.
func Epsilon() time.Duration { return epsilon() }

// Ticks returns the raw reading of the bound clock.
func Ticks() (int64, error) {
	ticks, err := readTicks()
	if err != nil {
		return 0, fmt.Errorf("clocksource: %s: %w", clockName, err)
	}
	return ticks, nil
}

// TicksToDuration converts a raw reading of the bound clock into the time
// elapsed since the clock's epoch.
func TicksToDuration(ticks int64) time.Duration {
	return ticksToDuration(ticks)
}

// Read returns the time elapsed since the bound clock's epoch.
func Read() (time.Duration, error) {
	ticks, err := Ticks()
	if err != nil {
		return 0, err
	}
	return ticksToDuration(ticks), nil
}

// Now is like Read but panics if the clock cannot be read. It never
// returns a substitute reading.
func Now() time.Duration {
	d, err := Read()
	if err != nil {
		panic(err)
	}
	return d
}

var describe = sync.OnceValue(func() Info {
	return Info{
		Name:         clockName,
		SuspendAware: suspendAware,
		Frequency:    frequency(),
		Resolution:   resolution(),
		Epsilon:      epsilon(),
	}
})

// Describe returns metadata about the bound clock. The first call may take
// a few microseconds on platforms where the resolution has to be measured.
func Describe() Info {
	return describe()
}

// probeSamples is how many consecutive readings probeResolution compares.
const probeSamples = 1000

// probeResolution estimates the granularity of a clock as the smallest
// non-zero difference between consecutive readings. It returns zero if the
// clock fails or never moves.
func probeResolution(read func() (int64, error)) time.Duration {
	prev, err := read()
	if err != nil {
		return 0
	}
	best := int64(math.MaxInt64)
	for i := 0; i < probeSamples; i++ {
		cur, err := read()
		if err != nil {
			return 0
		}
		if d := cur - prev; d > 0 && d < best {
			best = d
		}
		prev = cur
	}
	if best == math.MaxInt64 {
		return 0
	}
	return ticksToDuration(best)
}

// mulDiv computes value*numer/denom without overflowing the intermediate
// product, provided the result and (denom-1)*numer fit in an int64.
func mulDiv(value, numer, denom int64) int64 {
	q := value / denom
	r := value % denom
	return q*numer + r*numer/denom
}
