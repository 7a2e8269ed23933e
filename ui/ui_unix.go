// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !windows

package ui

// Init initializes the stderr settings.
// ANSI escape sequences need no setup outside windows.
func Init() {}

// Restore restores the stderr settings.
func Restore() {}
