// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package rate

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/tailscale/boottime"
)

// Value measures the rate at which events occur, exponentially weighted
// towards recent activity. It occupies O(1) memory, operates in O(1) time,
// and is safe for concurrent use. The zero value is ready to use.
//
// The estimate is an exponentially weighted moving average that does not
// assume samples arrive on a fixed time step: every call to Add takes into
// account exactly how long it has been since the previous one. The weight
// given to history is expressed as a half-life t½ rather than the usual
// unit-less λ. The two are related by
//
//	λ = 1 - 2^-(ΔT / t½)
//
// where ΔT is the time step of a discrete EWMA. Internally the count decays
// continuously, which is the limit of the EWMA as ΔT goes to zero.
//
// Age is measured with boottime.Instant, so a Value keeps decaying while
// the machine is suspended: after a long sleep the rate reads as idle
// instead of resuming at its pre-suspend level.
type Value struct {
	// HalfLife specifies how quickly the rate reacts to rate changes.
	//
	// If the rate has been steady at 0 events per second and jumps to N
	// events per second, the Value reports N/2 after one HalfLife, 3N/4
	// after two, and approaches N asymptotically.
	//
	// HalfLife should be longer than the typical gap between calls to Add
	// for the Value to report a steady rate steadily.
	//
	// A zero or negative HalfLife is by default 1 second.
	HalfLife time.Duration

	mu      sync.Mutex
	updated boottime.Instant
	value   float64 // decayed count of events as of updated
}

// halfLife returns the half-life period in seconds.
func (r *Value) halfLife() float64 {
	if r.HalfLife <= 0 {
		return time.Second.Seconds()
	}
	return r.HalfLife.Seconds()
}

// Add records that n events just occurred.
// It panics if n is negative, infinite or NaN.
func (r *Value) Add(n float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addNow(boottime.Now(), n)
}

func (r *Value) addNow(now boottime.Instant, n float64) {
	if n < 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		panic(fmt.Sprintf("invalid count %f; must be a finite, non-negative number", n))
	}
	r.value = r.valueNow(now) + n
	r.updated = now
}

// valueNow returns the decayed event count as of now, using
//
//	N(t) = N₀ · 2^-(t / t½)
//
// An Instant before the last update is treated as no time having passed.
func (r *Value) valueNow(now boottime.Instant) float64 {
	if r.value == 0 {
		return 0
	}
	age := now.Sub(r.updated).Seconds()
	return r.value * math.Exp2(-age/r.halfLife())
}

// Rate returns the current rate in events per second.
func (r *Value) Rate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rateNow(boottime.Now())
}

func (r *Value) rateNow(now boottime.Instant) float64 {
	// valueNow carries units of "events". Dividing by the integral of the
	// decay curve for a single event (∫ 2^-(t/t½) dt from 0 to ∞, which is
	// t½/ln 2 seconds) yields "events per second".
	return r.valueNow(now) / r.normalizedIntegral()
}

// normalizedIntegral computes the quantity t½ / ln(2).
// It carries the units of "seconds".
func (r *Value) normalizedIntegral() float64 {
	return r.halfLife() / math.Ln2
}
