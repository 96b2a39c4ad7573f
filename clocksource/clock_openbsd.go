// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build openbsd && !boottime_std

package clocksource

import "time"

const (
	clockName    = "CLOCK_BOOTTIME"
	suspendAware = true
)

// clockBoottime is CLOCK_BOOTTIME from OpenBSD's <sys/_time.h>, available
// since OpenBSD 6.3.
const clockBoottime = 6

func readTicks() (int64, error) {
	return readClock(clockBoottime)
}

func resolution() time.Duration {
	return probeResolution(readTicks)
}
