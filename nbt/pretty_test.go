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
	"testing"
)

func prettyInput(t *testing.T) *Compound {
	c, err := ParseSNBTCompound(`{b:[1,2],a:{x:1b},e:[],arr:[I;1,2]}`)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestPretty(t *testing.T) {
	got := Pretty(prettyInput(t), nil)
	want := `{
    a: {
        x: 1b
    },
    arr: [I; 1, 2],
    b: [
        1,
        2
    ],
    e: []
}`
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestPrettyOneLine(t *testing.T) {
	got := Pretty(prettyInput(t), &PrettyOptions{})
	want := `{a: {x: 1b}, arr: [I; 1, 2], b: [1, 2], e: []}`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestPrettyOptions(t *testing.T) {
	opts := &PrettyOptions{
		Indent: "  ",
		KeyOrder: map[string][]string{
			"{}":      {"e", "b", "missing"},
			"{}.a.{}": {"x"},
		},
		Inline: []string{"{}.b.[]"},
	}
	got := Pretty(prettyInput(t), opts)
	want := `{
  e: [],
  b: [1, 2],
  a: {
    x: 1b
  },
  arr: [I; 1, 2]
}`
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
	// the options only change the layout
	back, err := ParseSNBT(got)
	if err != nil {
		t.Fatal(err)
	}
	checkResult(t, back, prettyInput(t))
}

func TestPrettyListOfCompounds(t *testing.T) {
	c, err := ParseSNBTCompound(`{l:[{k:1},{k:2}]}`)
	if err != nil {
		t.Fatal(err)
	}
	opts := &PrettyOptions{Indent: "\t", Inline: []string{"{}.l.[].{}"}}
	got := Pretty(c, opts)
	want := "{\n\tl: [\n\t\t{k: 1},\n\t\t{k: 2}\n\t]\n}"
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		in     Tag
		arrays bool
		want   string
	}{
		{
			in:   CompoundOf(Field{Name: "n", Value: Int(1)}, Field{Name: "ab", Value: String("x")}),
			want: "{ \"ab\": \"x\",\n  \"n\" : 1\n}",
		},
		{
			in:   NewIntArray([]int32{1, 255}),
			want: "int[2] {\n   // Skipped, supply withBinaryBlobs true\n}",
		},
		{
			in:     NewIntArray([]int32{1, 255}),
			arrays: true,
			want:   "int[2] {\n  0x01, 0xFF\n}",
		},
		{
			in:     NewByteArray([]byte{0xab}),
			arrays: true,
			want:   "byte[1] {\n  0xAB\n}",
		},
		{
			in:   NewList(),
			want: "list<undefined>[0] []",
		},
		{
			in:   mustList(Int(1), Int(2)),
			want: "list<TAG_Int>[2] [\n  1,\n  2\n]",
		},
		{
			in:   Long(5),
			want: "5L",
		},
	}
	for i := range cases {
		got := Describe(cases[i].in, cases[i].arrays)
		if got != cases[i].want {
			t.Errorf("case %d: got\n%s\nwant\n%s", i, got, cases[i].want)
		}
	}
}

func TestDescribeLongArrayWraps(t *testing.T) {
	v := make([]int64, 17)
	got := Describe(NewLongArray(v), true)
	want := "long[17] {\n" +
		"  0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0, 0x0,\n" +
		"  0x0\n" +
		"}"
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func mustList(elems ...Tag) *List {
	l, err := ListOf(elems...)
	if err != nil {
		panic(err)
	}
	return l
}
