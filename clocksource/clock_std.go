// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build boottime_std || !(linux || openbsd || darwin || freebsd || netbsd || dragonfly || solaris || windows)

package clocksource

import "time"

// Without a clock of our own, readings are the Go runtime's monotonic time
// since package initialization. time.Since only consults the monotonic
// reading of base.
const (
	clockName    = "runtime monotonic"
	suspendAware = false
)

var base = time.Now()

func readTicks() (int64, error) {
	return int64(time.Since(base)), nil
}

func ticksToDuration(ticks int64) time.Duration { return time.Duration(ticks) }

func frequency() int64 { return nanosPerSecond }

func resolution() time.Duration {
	return probeResolution(readTicks)
}

func epsilon() time.Duration { return 0 }
