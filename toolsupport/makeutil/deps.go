// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package makeutil provides utilities for make.
package makeutil

import (
	"bytes"
	"strings"
)

// Rule is a prerequisite declaration.
type Rule struct {
	Targets []string
	Prereqs []string
}

// ParseRules parses every rule in b.
// '#' starts a comment unless escaped. Unescapes what Escape escapes.
func ParseRules(b []byte) []Rule {
	var rules []Rule
	for _, line := range logicalLines(b) {
		line = stripComment(line)
		i := ruleColon(line)
		if i < 0 {
			continue
		}
		r := Rule{
			Targets: tokens(line[:i]),
			Prereqs: tokens(line[i+1:]),
		}
		if len(r.Targets) == 0 {
			continue
		}
		rules = append(rules, r)
	}
	return rules
}

// Escape escapes a path for use as a make target or prerequisite.
func Escape(p string) string {
	if !strings.ContainsAny(p, "$ #\t") {
		return p
	}
	var sb strings.Builder
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '$':
			sb.WriteString("$$")
		case ' ', '#', '\t':
			sb.WriteByte('\\')
			sb.WriteByte(p[i])
		default:
			sb.WriteByte(p[i])
		}
	}
	return sb.String()
}

func unescape(s string) string {
	if !strings.ContainsAny(s, "$\\") {
		return s
	}
	s = strings.ReplaceAll(s, "$$", "$")
	s = strings.ReplaceAll(s, `\#`, "#")
	return strings.ReplaceAll(s, "\\\t", "\t")
}

// logicalLines splits b into lines, joining '\'+newline continuations.
func logicalLines(b []byte) [][]byte {
	var lines [][]byte
	var cur []byte
	for len(b) > 0 {
		var line []byte
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			line, b = b, nil
		} else {
			line, b = b[:i], b[i+1:]
		}
		line = bytes.TrimSuffix(line, []byte("\r"))
		if n := trailingBackslashes(line); n%2 == 1 {
			cur = append(cur, line[:len(line)-1]...)
			cur = append(cur, ' ')
			continue
		}
		cur = append(cur, line...)
		lines = append(lines, cur)
		cur = nil
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

func trailingBackslashes(line []byte) int {
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	return n
}

func stripComment(line []byte) []byte {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '#':
			return line[:i]
		}
	}
	return line
}

// ruleColon returns the index of the first unescaped ':' in line, or -1.
func ruleColon(line []byte) int {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case ':':
			return i
		}
	}
	return -1
}

func tokens(s []byte) []string {
	var out []string
	var token string
	for len(s) > 0 {
		token, s = nextToken(s)
		if token != "" {
			out = append(out, unescape(token))
		}
	}
	return out
}

func nextToken(s []byte) (string, []byte) {
	var sb strings.Builder
	// skip spaces
skipSpaces:
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '\n' {
			i++
			continue
		}
		if s[i] == '\\' && i+2 < len(s) && s[i+1] == '\r' && s[i+2] == '\n' {
			i += 2
			continue
		}
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			s = s[i:]
			break skipSpaces
		}
	}
	// extract next space not escaped
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case ' ':
				sb.WriteByte(s[i])
			case '\r', '\n':
				// '\'+newline is space
				return sb.String(), s[i+1:]
			default:
				sb.WriteByte('\\')
				sb.WriteByte(s[i])
			}
			continue
		}
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			return sb.String(), s[i+1:]
		}
		sb.WriteByte(s[i])
	}
	return sb.String(), nil
}
