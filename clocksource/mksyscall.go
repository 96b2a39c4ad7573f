// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package clocksource

//go:generate go run golang.org/x/sys/windows/mkwinsyscall -output zsyscall_windows.go mksyscall.go

//sys queryPerformanceCounter(counter *int64) (err error) [int32(failretval)==0] = kernel32.QueryPerformanceCounter
//sys queryPerformanceFrequency(frequency *int64) (err error) [int32(failretval)==0] = kernel32.QueryPerformanceFrequency
