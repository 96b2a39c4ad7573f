// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package clocksource

import (
	"errors"
	"math"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestReadIsMonotonic(t *testing.T) {
	prev, err := Read()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10000; i++ {
		cur, err := Read()
		if err != nil {
			t.Fatal(err)
		}
		if cur < prev {
			t.Fatalf("reading %d went backwards: %v < %v", i, cur, prev)
		}
		prev = cur
	}
}

func TestReadAdvances(t *testing.T) {
	start := Now()
	time.Sleep(50 * time.Millisecond)
	if got := Now() - start; got < 50*time.Millisecond {
		t.Errorf("clock advanced %v across a 50ms sleep", got)
	}
}

func TestTicksToDuration(t *testing.T) {
	ticks, err := Ticks()
	if err != nil {
		t.Fatal(err)
	}
	if d := TicksToDuration(ticks); d <= 0 {
		t.Errorf("TicksToDuration(%d) = %v; want positive", ticks, d)
	}
	if got := TicksToDuration(0); got != 0 {
		t.Errorf("TicksToDuration(0) = %v; want 0", got)
	}
}

func TestDescribe(t *testing.T) {
	c := qt.New(t)
	info := Describe()
	c.Assert(info.Name, qt.Equals, Name())
	c.Assert(info.SuspendAware, qt.Equals, SuspendAware())
	c.Assert(info.Epsilon, qt.Equals, Epsilon())
	c.Assert(info.Frequency > 0, qt.IsTrue, qt.Commentf("frequency %d", info.Frequency))
	c.Assert(info.Resolution >= 0, qt.IsTrue)
	c.Assert(info.Resolution < time.Second, qt.IsTrue, qt.Commentf("resolution %v", info.Resolution))
	c.Assert(Describe(), qt.Equals, info)
	t.Logf("bound clock: %+v", info)
}

func TestSystemSource(t *testing.T) {
	var src Source = System{}
	ticks, err := src.Ticks()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := src.TicksToDuration(ticks), TicksToDuration(ticks); got != want {
		t.Errorf("System.TicksToDuration = %v; want %v", got, want)
	}
	if got := src.Describe().Name; got != Name() {
		t.Errorf("System.Describe().Name = %q; want %q", got, Name())
	}
}

func TestProbeResolution(t *testing.T) {
	stepper := func(step int64) func() (int64, error) {
		var n int64
		return func() (int64, error) {
			n += step
			return n, nil
		}
	}
	stuck := func() (int64, error) { return 42, nil }
	broken := func() (int64, error) { return 0, errors.New("no clock") }

	var jitter int64
	coarse := func() (int64, error) {
		// Repeats each reading three times, stepping by 5.
		jitter++
		return (jitter / 3) * 5, nil
	}

	tests := []struct {
		name string
		read func() (int64, error)
		want time.Duration
	}{
		{"step-3", stepper(3), ticksToDuration(3)},
		{"coarse", coarse, ticksToDuration(5)},
		{"stuck", stuck, 0},
		{"broken", broken, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := probeResolution(tt.read); got != tt.want {
				t.Errorf("probeResolution = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestMulDiv(t *testing.T) {
	tests := []struct {
		value, numer, denom, want int64
	}{
		{0, nanosPerSecond, 10_000_000, 0},
		{1, nanosPerSecond, 10_000_000, 100},
		{10_000_000, nanosPerSecond, 10_000_000, nanosPerSecond},
		{3, 2, 4, 1},
		// A day of 24MHz ticks; value*numer alone overflows int64.
		{24_000_000 * 86400 * 365, nanosPerSecond, 24_000_000, nanosPerSecond * 86400 * 365},
		{math.MaxInt64, 1, 1, math.MaxInt64},
	}
	for _, tt := range tests {
		if got := mulDiv(tt.value, tt.numer, tt.denom); got != tt.want {
			t.Errorf("mulDiv(%d, %d, %d) = %d; want %d", tt.value, tt.numer, tt.denom, got, tt.want)
		}
	}
}

func BenchmarkRead(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Read()
	}
}

func BenchmarkTimeNow(b *testing.B) {
	for i := 0; i < b.N; i++ {
		time.Now()
	}
}
