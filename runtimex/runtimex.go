// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package runtimex provides the number of CPUs usable for parallel work.
package runtimex

import "runtime"

var (
	ncpu int
)

func init() {
	ncpu = getproccount()
	if ncpu == 0 {
		ncpu = runtime.NumCPU()
	}
}

// NumCPU returns the number of logical CPUs usable by the current process.
// On Windows, runtime.NumCPU() only counts a single Processor Group (up to 64),
// so GetActiveProcessorCount is used to count all Processor Groups.
func NumCPU() int {
	return ncpu
}

// Parallelism returns n if positive, or NumCPU otherwise.
func Parallelism(n int) int {
	if n > 0 {
		return n
	}
	return NumCPU()
}
