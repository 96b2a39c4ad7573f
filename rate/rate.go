// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// This is a modified, simplified version of code from golang.org/x/time/rate.

// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rate provides rate measurement and rate limiting timed with
// boottime.Instant, so that time spent suspended counts as time passed.
package rate

import (
	"math"
	"sync"
	"time"

	"github.com/tailscale/boottime"
)

// Limit defines the maximum frequency of some events.
// Limit is represented as number of events per second.
// A zero Limit allows no events.
type Limit float64

// Inf is the infinite rate limit; it allows all events.
const Inf = Limit(math.MaxFloat64)

// Every converts a minimum time interval between events to a Limit.
func Every(interval time.Duration) Limit {
	if interval <= 0 {
		return Inf
	}
	return 1 / Limit(interval.Seconds())
}

// tokensFromDuration is a unit conversion function from a time duration to
// the number of tokens which could be accumulated during that duration at
// a rate of limit tokens per second.
func (limit Limit) tokensFromDuration(d time.Duration) float64 {
	if limit <= 0 {
		return 0
	}
	return d.Seconds() * float64(limit)
}

// A Limiter controls how frequently events are allowed to happen.
// It implements a "token bucket" of size b, initially full and refilled
// at rate r tokens per second.
//
// Unlike golang.org/x/time/rate, the bucket refills while the machine is
// suspended: a client that was throttled before a laptop went to sleep is
// not still throttled when it wakes up.
//
// The zero value is a valid Limiter, but it will reject all events.
// Use NewLimiter to create non-zero Limiters.
type Limiter struct {
	limit Limit
	burst float64

	mu     sync.Mutex
	tokens float64
	// last is the last time the limiter's tokens field was updated.
	last boottime.Instant
	// started is whether last has been set.
	started bool
}

// NewLimiter returns a new Limiter that allows events up to rate r and
// permits bursts of at most b tokens.
func NewLimiter(r Limit, b int) *Limiter {
	return &Limiter{limit: r, burst: float64(b), tokens: float64(b)}
}

// Allow reports whether an event may happen now, consuming a token if so.
func (lim *Limiter) Allow() bool {
	return lim.allow(boottime.Now())
}

func (lim *Limiter) allow(now boottime.Instant) bool {
	lim.mu.Lock()
	defer lim.mu.Unlock()
	if lim.limit == Inf {
		return true
	}
	lim.advance(now)
	if lim.tokens < 1 {
		return false
	}
	lim.tokens--
	return true
}

// Tokens returns the number of tokens available now.
func (lim *Limiter) Tokens() float64 {
	lim.mu.Lock()
	defer lim.mu.Unlock()
	if lim.limit == Inf {
		return lim.burst
	}
	lim.advance(boottime.Now())
	return lim.tokens
}

// advance refills the bucket for the time elapsed since the last update.
// A now before the last update moves last back without adding tokens.
func (lim *Limiter) advance(now boottime.Instant) {
	if !lim.started || now.Before(lim.last) {
		lim.last = now
		lim.started = true
		return
	}
	elapsed := now.Sub(lim.last)
	lim.tokens = math.Min(lim.burst, lim.tokens+lim.limit.tokensFromDuration(elapsed))
	lim.last = now
}
