// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package nbt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func encodeNamed(t *testing.T, root Tag) []byte {
	var b Buffer
	if err := b.WriteNamed("", root); err != nil {
		t.Fatalf("re-encoding %s: %s", root, err)
	}
	return b.Bytes()
}

func FuzzDecode(f *testing.F) {
	buf, err := Marshal(sample())
	if err != nil {
		f.Fatal(err)
	}
	f.Add(buf)
	f.Add([]byte{0})
	f.Add([]byte{0x09, 0, 0, 0x01, 0, 0, 0, 2, 1, 2})
	f.Add([]byte{0x0c, 0, 0, 0x7f, 0xff, 0xff, 0xff})
	f.Fuzz(func(t *testing.T, buf []byte) {
		acc := NewAccounter(DefaultLimits)
		_, root, err := NewReader(bytes.NewReader(buf)).ReadNamed(acc)
		if err != nil {
			if !errors.Is(err, ErrMalformed) && !errors.Is(err, ErrLimit) && err != io.EOF {
				t.Fatalf("unexpected error class: %v", err)
			}
			return
		}
		if acc.Depth() != 0 {
			t.Fatalf("depth %d after decode", acc.Depth())
		}
		// decoding what we encode
		// yields the same bytes again
		enc := encodeNamed(t, root)
		_, again, err := NewReader(bytes.NewReader(enc)).ReadNamed(NewUnlimited())
		if err != nil {
			t.Fatalf("decoding re-encoded document: %s", err)
		}
		if !bytes.Equal(enc, encodeNamed(t, again)) {
			t.Fatal("encoding is not stable")
		}
		// the streaming decoder agrees
		c := &Collector{}
		if err := NewReader(bytes.NewReader(buf)).Parse(c, NewUnlimited()); err != nil {
			t.Fatalf("streaming decode: %s", err)
		}
		if !bytes.Equal(enc, encodeNamed(t, c.Result())) {
			t.Fatal("streaming decode differs")
		}
	})
}

func FuzzParse(f *testing.F) {
	f.Add(`{foo:1b,bar:[I;1,2,3]}`)
	f.Add(ToString(sample()))
	f.Add(Pretty(sample(), nil))
	f.Add(`['a',"b\\c",'d\'e']`)
	f.Add(`[1.5e3f,-.5f,2.d]`)
	f.Fuzz(func(t *testing.T, text string) {
		tag, err := ParseSNBT(text)
		if err != nil {
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("unexpected error type %T", err)
			}
			return
		}
		out := ToString(tag)
		if strings.Contains(out, "NaN") || strings.Contains(out, "Infinity") {
			// non-finite numbers print as strings
			return
		}
		for _, s := range []string{out, Pretty(tag, nil)} {
			back, err := ParseSNBT(s)
			if err != nil {
				t.Fatalf("reparsing %q: %s", s, err)
			}
			if !Equal(back, tag) {
				t.Fatalf("%q reparsed as %s", s, back)
			}
		}
	})
}
