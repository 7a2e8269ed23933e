// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseIncludes(t *testing.T) {
	for _, tc := range []struct {
		name  string
		fname string
		src   string
		want  []string
	}{
		{
			name:  "relative",
			fname: "Impl/Bundle.i.dfy",
			src:   "include \"../lib/Maps.i.dfy\"\ninclude \"./Journal.i.dfy\"\n",
			want:  []string{"lib/Maps.i.dfy", "Impl/Journal.i.dfy"},
		},
		{
			name:  "not-include",
			fname: "a.dfy",
			src:   "includes := 1\ninclude\ninclude foo\ninclude \"unterminated\n  method include() {}\n",
			want:  nil,
		},
		{
			name:  "one-line-block-comment",
			fname: "a.dfy",
			src:   "/* include \"x.dfy\" */\ninclude \"y.dfy\"\n",
			want:  []string{"y.dfy"},
		},
		{
			name:  "code-after-block-comment",
			fname: "a.dfy",
			src:   "/*\n * doc\n */ include \"z.dfy\"\n",
			want:  []string{"z.dfy"},
		},
		{
			name:  "crlf",
			fname: "a.dfy",
			src:   "include \"y.dfy\"\r\ninclude \"z.dfy\"\r\n",
			want:  []string{"y.dfy", "z.dfy"},
		},
		{
			name:  "trailing-block-comment",
			fname: "m.dfy",
			src:   "include \"a.dfy\" /* disabled:\ninclude \"gone.dfy\"\n*/\n",
			want:  []string{"a.dfy"},
		},
		{
			name:  "trailing-line-comment",
			fname: "m.dfy",
			src:   "include \"a.dfy\" // include \"gone.dfy\" /*\ninclude \"b.dfy\"\n",
			want:  []string{"a.dfy", "b.dfy"},
		},
		{
			name:  "nested-block-comment",
			fname: "m.dfy",
			src:   "/* outer /* inner */\ninclude \"gone.dfy\"\n*/ include \"a.dfy\"\n",
			want:  []string{"a.dfy"},
		},
		{
			name:  "comment-markers-in-path",
			fname: "m.dfy",
			src:   "include \"lib//a.dfy\"\ninclude \"lib/*b.dfy\"\ninclude \"c.dfy\"\n",
			want:  []string{"lib/a.dfy", "lib/*b.dfy", "c.dfy"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			incs, err := parseIncludes(tc.fname, []byte(tc.src))
			if err != nil {
				t.Fatalf("parseIncludes(%q)=_, %v; want nil err", tc.fname, err)
			}
			var got []string
			for _, inc := range incs {
				got = append(got, inc.path)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("parseIncludes(%q) -want +got:\n%s", tc.fname, diff)
			}
		})
	}
}

func TestParseIncludesBadPath(t *testing.T) {
	for _, src := range []string{
		"include \"/abs/a.dfy\"\n",
		"include \"../../up.dfy\"\n",
		"include \"c:a.dfy\"\n",
	} {
		_, err := parseIncludes("lib/m.dfy", []byte(src))
		if !errors.Is(err, ErrBadPath) {
			t.Errorf("parseIncludes(lib/m.dfy, %q)=_, %v; want %v", src, err, ErrBadPath)
		}
	}
}
