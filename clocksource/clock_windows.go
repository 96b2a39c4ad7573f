// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows && !boottime_std

package clocksource

import (
	"fmt"
	"sync"
	"time"
)

// QueryPerformanceCounter includes time spent in sleep and hibernate.
const (
	clockName    = "QueryPerformanceCounter"
	suspendAware = true
)

// qpcFrequency is fixed at boot and never changes, so it is read once.
var qpcFrequency = sync.OnceValue(func() int64 {
	var freq int64
	if err := queryPerformanceFrequency(&freq); err != nil {
		panic(fmt.Errorf("clocksource: QueryPerformanceFrequency: %w", err))
	}
	if freq <= 0 {
		panic(fmt.Sprintf("clocksource: QueryPerformanceFrequency returned %d", freq))
	}
	return freq
})

func readTicks() (int64, error) {
	var counter int64
	if err := queryPerformanceCounter(&counter); err != nil {
		return 0, err
	}
	return counter, nil
}

func ticksToDuration(ticks int64) time.Duration {
	return time.Duration(mulDiv(ticks, nanosPerSecond, qpcFrequency()))
}

func frequency() int64 { return qpcFrequency() }

func resolution() time.Duration { return ticksToDuration(1) }

// Microsoft documents the cross-thread error of QueryPerformanceCounter as
// one tick (1/frequency).
func epsilon() time.Duration {
	return time.Duration(nanosPerSecond / qpcFrequency())
}
