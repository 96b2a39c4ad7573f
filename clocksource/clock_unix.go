// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build (linux || openbsd || darwin || freebsd || netbsd || dragonfly || solaris) && !boottime_std

package clocksource

import (
	"time"

	"golang.org/x/sys/unix"
)

// readClock returns the reading of the POSIX clock id in nanoseconds.
func readClock(id int32) (int64, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(id, &ts); err != nil {
		return 0, err
	}
	return ts.Nano(), nil
}

// POSIX clocks tick in nanoseconds.

func ticksToDuration(ticks int64) time.Duration { return time.Duration(ticks) }

func frequency() int64 { return nanosPerSecond }

func epsilon() time.Duration { return 0 }
