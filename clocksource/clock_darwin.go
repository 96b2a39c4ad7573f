// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build darwin && !boottime_std

package clocksource

import (
	"time"

	"golang.org/x/sys/unix"
)

// On Darwin, CLOCK_MONOTONIC_RAW is backed by mach_continuous_time, which
// keeps counting while the machine sleeps. The Go runtime reads
// mach_absolute_time, which does not.
const (
	clockName    = "CLOCK_MONOTONIC_RAW"
	suspendAware = true
)

func readTicks() (int64, error) {
	return readClock(unix.CLOCK_MONOTONIC_RAW)
}

// The mach timebase is 1ns on Intel and 125/3ns on Apple silicon; measure
// rather than assume.
func resolution() time.Duration {
	return probeResolution(readTicks)
}
