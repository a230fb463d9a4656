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

package compr

import (
	"bytes"
	"io"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	ctl := bytes.Repeat([]byte("foo"), 1000)
	names := append(Names(), "zstd-better", "gzip-best")
	for _, name := range names {
		c, err := Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		w, err := c.NewWriter(&buf)
		if err != nil {
			t.Fatalf("%s: %s", name, err)
		}
		// write in pieces to exercise the stream
		for i := 0; i < len(ctl); i += 700 {
			end := i + 700
			if end > len(ctl) {
				end = len(ctl)
			}
			if _, err := w.Write(ctl[i:end]); err != nil {
				t.Fatalf("%s: %s", name, err)
			}
		}
		if err := w.Close(); err != nil {
			t.Fatalf("%s: %s", name, err)
		}
		if name != "none" && buf.Len() >= len(ctl) {
			t.Errorf("%s: compressed %d bytes into %d", name, len(ctl), buf.Len())
		}
		if got := Detect(buf.Bytes()); got.Name() != c.Name() {
			t.Errorf("%s: detected as %s", name, got.Name())
		}
		r, err := c.NewReader(&buf)
		if err != nil {
			t.Fatalf("%s: %s", name, err)
		}
		out, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("%s: %s", name, err)
		}
		r.Close()
		if !bytes.Equal(out, ctl) {
			t.Errorf("%s: round-trip failed", name)
		}
	}
}

func TestLookup(t *testing.T) {
	c, err := Lookup("")
	if err != nil || c != None {
		t.Errorf("empty name: %v %v", c, err)
	}
	if c, err := Lookup("zstd-better"); err != nil || c.Name() != "zstd" {
		t.Errorf("zstd-better: %v %v", c, err)
	}
	if _, err := Lookup("brotli"); err == nil {
		t.Error("expected an error for an unknown codec")
	}
}

func TestDetect(t *testing.T) {
	cases := []struct {
		prefix []byte
		want   string
	}{
		{nil, "none"},
		{[]byte{0x0a, 0x00, 0x00}, "none"},
		{[]byte{0x1f, 0x8b, 0x08}, "gzip"},
		{[]byte{0x78, 0x9c}, "zlib"},
		{[]byte{0x78, 0x01}, "zlib"},
		{[]byte{0x78, 0xda}, "zlib"},
		{[]byte{0x78, 0x00}, "none"},
		{[]byte{0x28, 0xb5, 0x2f, 0xfd}, "zstd"},
		{[]byte("\xff\x06\x00\x00sNaPpY"), "s2"},
		{[]byte("\xff\x06\x00\x00S2sTwO"), "s2"},
		{[]byte{0x04, 0x22, 0x4d, 0x18}, "lz4"},
	}
	for i := range cases {
		if got := Detect(cases[i].prefix).Name(); got != cases[i].want {
			t.Errorf("%x: got %s want %s", cases[i].prefix, got, cases[i].want)
		}
	}
}

func TestDetectReader(t *testing.T) {
	gz, _ := Lookup("gzip")
	src := []byte("hello, world")
	cmp, err := Compress(gz, src, nil)
	if err != nil {
		t.Fatal(err)
	}
	c, r, err := DetectReader(bytes.NewReader(cmp))
	if err != nil {
		t.Fatal(err)
	}
	if c.Name() != "gzip" {
		t.Fatalf("detected %s", c.Name())
	}
	dec, err := c.NewReader(r)
	if err != nil {
		t.Fatal(err)
	}
	out, err := io.ReadAll(dec)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, src) {
		t.Fatalf("got %q", out)
	}

	// short inputs are not an error
	c, r, err = DetectReader(bytes.NewReader([]byte{1}))
	if err != nil || c != None {
		t.Fatalf("short input: %v %v", c, err)
	}
	if b, _ := io.ReadAll(r); !bytes.Equal(b, []byte{1}) {
		t.Fatalf("peeked bytes lost: %x", b)
	}
}

func TestDecompress(t *testing.T) {
	src := bytes.Repeat([]byte("abcd"), 512)
	for _, name := range Names() {
		c, _ := Lookup(name)
		prefix := []byte("keep")
		cmp, err := Compress(c, src, prefix)
		if err != nil {
			t.Fatalf("%s: %s", name, err)
		}
		if !bytes.HasPrefix(cmp, prefix) {
			t.Fatalf("%s: prefix clobbered", name)
		}
		cmp = cmp[len(prefix):]
		out, err := Decompress(cmp, 0)
		if err != nil {
			t.Fatalf("%s: %s", name, err)
		}
		if !bytes.Equal(out, src) {
			t.Errorf("%s: round-trip failed", name)
		}
		if _, err := Decompress(cmp, int64(len(src)-1)); err == nil {
			t.Errorf("%s: limit not enforced", name)
		}
		if _, err := Decompress(cmp, int64(len(src))); err != nil {
			t.Errorf("%s: exact limit: %s", name, err)
		}
	}
}
