// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"bytes"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// parseIncludes scans include directives in buf of fname and resolves
// them relative to fname's directory.
func parseIncludes(fname string, buf []byte) ([]include, error) {
	var includes []include
	dir := path.Dir(fname)
	depth := 0
	lineno := 0
	for len(buf) > 0 {
		lineno++
		var line []byte
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			line = buf
			buf = nil
		} else {
			line = buf[:i]
			buf = buf[i+1:]
		}
		line, depth = stripComments(line, depth)
		line = bytes.TrimSpace(line)
		if !bytes.HasPrefix(line, []byte("include")) {
			continue
		}
		rest := line[len("include"):]
		if len(rest) == 0 || (rest[0] != ' ' && rest[0] != '\t') {
			// e.g. `includes := ...`
			continue
		}
		name, ok := quoted(bytes.TrimSpace(rest))
		if !ok {
			log.Debugf("%s:%d: skip %q", fname, lineno, line)
			continue
		}
		p := path.Clean(path.Join(dir, name))
		inc := include{
			file: fname,
			line: lineno,
			name: name,
			path: p,
		}
		if path.IsAbs(name) || !fs.ValidPath(p) || !makeSafe(p) {
			return nil, &IncludeError{File: fname, Line: lineno, Include: name, Err: ErrBadPath}
		}
		includes = append(includes, inc)
	}
	return includes, nil
}

// stripComments returns line without comments. depth is the nesting
// level of block comments open at the start of line; the level open at
// its end is returned. Comment markers inside string literals are kept.
func stripComments(line []byte, depth int) ([]byte, int) {
	code := make([]byte, 0, len(line))
	inString := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		next := byte(0)
		if i+1 < len(line) {
			next = line[i+1]
		}
		switch {
		case depth > 0:
			switch {
			case c == '*' && next == '/':
				depth--
				i++
				if depth == 0 {
					code = append(code, ' ')
				}
			case c == '/' && next == '*':
				depth++
				i++
			}
		case inString:
			code = append(code, c)
			switch c {
			case '\\':
				if next != 0 {
					code = append(code, next)
					i++
				}
			case '"':
				inString = false
			}
		case c == '"':
			inString = true
			code = append(code, c)
		case c == '/' && next == '/':
			return code, 0
		case c == '/' && next == '*':
			depth = 1
			i++
		default:
			code = append(code, c)
		}
	}
	return code, depth
}

// quoted returns the leading Go-style double quoted string of s.
func quoted(s []byte) (string, bool) {
	if len(s) == 0 || s[0] != '"' {
		return "", false
	}
	end := 1
	for end < len(s) && s[end] != '"' {
		if s[end] == '\\' {
			end++
		}
		end++
	}
	if end >= len(s) {
		return "", false
	}
	name, err := strconv.Unquote(string(s[:end+1]))
	if err != nil {
		return "", false
	}
	name = strings.TrimSpace(name)
	return name, name != ""
}
