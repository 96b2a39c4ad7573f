// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build (freebsd || netbsd || dragonfly || solaris) && !boottime_std

package clocksource

import (
	"time"

	"golang.org/x/sys/unix"
)

// None of these systems documents a monotonic clock that counts suspended
// time. FreeBSD does define CLOCK_BOOTTIME, but as an alias of CLOCK_UPTIME,
// which stops during suspend. On illumos, which builds with the solaris
// tag, CLOCK_MONOTONIC is CLOCK_HIGHRES.
const (
	clockName    = "CLOCK_MONOTONIC"
	suspendAware = false
)

func readTicks() (int64, error) {
	return readClock(unix.CLOCK_MONOTONIC)
}

func resolution() time.Duration {
	return probeResolution(readTicks)
}
