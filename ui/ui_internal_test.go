// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"bytes"
	"testing"
)

func TestTermUI(t *testing.T) {
	for _, tc := range []struct {
		name   string
		report func(u *TermUI)
		want   string
	}{
		{
			name: "warn",
			report: func(u *TermUI) {
				u.Warnf("reload %s: %v", ".veridepend.star", "syntax error")
			},
			want: "\033[33mWarning:\033[0m reload .veridepend.star: syntax error\n",
		},
		{
			name: "error",
			report: func(u *TermUI) {
				u.Errorf("dependency cycle: %s", "a -> a")
			},
			want: "\033[31;1mError:\033[0m dependency cycle: a -> a\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			tc.report(&TermUI{w: &buf})
			if got := buf.String(); got != tc.want {
				t.Errorf("wrote %q; want %q", got, tc.want)
			}
		})
	}
}

func TestTermSpinnerStop(t *testing.T) {
	var buf bytes.Buffer
	u := &TermUI{w: &buf}
	s := u.NewSpinner()
	s.Start("generating %s", "build/deps")
	s.Stop(nil)
	// Short operations leave no line.
	if got, want := buf.String(), "generating build/deps... \r\033[K"; got != want {
		t.Errorf("spinner wrote %q; want %q", got, want)
	}
}
