// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package logger defines a type for writing to logs. It's just a
// convenience type so that we don't have to pass verbose func(...)
// types around.
package logger

import (
	"container/list"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Logf is the basic logger type: a printf-like func.
// Like log.Printf, the format need not end in a newline.
// Logf functions must be safe for concurrent use.
//
// Functions that wrap logger functions must pass through the original
// format and args, possibly augmented. Replacing the format and args
// (e.g. with fmt.Sprintf and %s) defeats RateLimitedFn, which keys on
// the format string.
type Logf func(format string, args ...any)

// WithPrefix wraps f, prefixing each format with the provided prefix.
func WithPrefix(f Logf, prefix string) Logf {
	return func(format string, args ...any) {
		f(prefix+format, args...)
	}
}

// Discard is a Logf that throws away the logs given to it.
func Discard(string, ...any) {}

// limitData tracks the rate limiting state of one format string.
type limitData struct {
	lim     *rate.Limiter
	blocked bool          // whether the "rate limited" notice has been logged
	ele     *list.Element // position in the LRU list; Value is the format
}

// RateLimitedFn returns a rate-limiting Logf wrapping the given logf.
// Messages with the same format are allowed through at a maximum of one
// every f, in bursts of up to burst messages. The first message dropped
// for a format is replaced by a notice; the rest are dropped silently until
// the format is allowed again. State for at most maxCache formats is kept,
// evicting the least recently used.
func RateLimitedFn(logf Logf, f time.Duration, burst int, maxCache int) Logf {
	var (
		mu     sync.Mutex
		byFmt  = make(map[string]*limitData)
		recent = list.New()
	)

	// judge reports whether format may be logged, and if not, whether the
	// caller should log a notice instead.
	judge := func(format string) (ok, notice bool) {
		mu.Lock()
		defer mu.Unlock()
		ld, found := byFmt[format]
		if found {
			recent.MoveToFront(ld.ele)
		} else {
			ld = &limitData{
				lim: rate.NewLimiter(rate.Every(f), burst),
				ele: recent.PushFront(format),
			}
			byFmt[format] = ld
			if recent.Len() > maxCache {
				oldest := recent.Back()
				delete(byFmt, oldest.Value.(string))
				recent.Remove(oldest)
			}
		}
		if ld.lim.Allow() {
			ld.blocked = false
			return true, false
		}
		if ld.blocked {
			return false, false
		}
		ld.blocked = true
		return false, true
	}

	return func(format string, args ...any) {
		switch ok, notice := judge(format); {
		case ok:
			logf(format, args...)
		case notice:
			logf("[RATE LIMITED] format string %q (example: %q)", format, strings.TrimSpace(fmt.Sprintf(format, args...)))
		}
	}
}
