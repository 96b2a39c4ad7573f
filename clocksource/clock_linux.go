// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build linux && !boottime_std

package clocksource

import (
	"time"

	"golang.org/x/sys/unix"
)

// CLOCK_BOOTTIME is CLOCK_MONOTONIC plus the time the system spent
// suspended. It has been available since Linux 2.6.39.
const (
	clockName    = "CLOCK_BOOTTIME"
	suspendAware = true
)

func readTicks() (int64, error) {
	return readClock(unix.CLOCK_BOOTTIME)
}

func resolution() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGetres(unix.CLOCK_BOOTTIME, &ts); err != nil || ts.Nano() <= 0 {
		return probeResolution(readTicks)
	}
	return time.Duration(ts.Nano())
}
