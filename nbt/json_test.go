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
	"math"
	"strings"
	"testing"
)

func TestToJSON(t *testing.T) {
	cases := []struct {
		in   Tag
		want string
	}{
		{End{}, "null"},
		{Byte(-1), "-1"},
		{Long(math.MinInt64), "-9223372036854775808"},
		{Float(1.5), "1.5"},
		{Double(1e21), "1e+21"},
		{Double(math.NaN()), "null"},
		{String(`a "quoted" \ string`), `"a \"quoted\" \\ string"`},
		{NewByteArray([]byte{0xff, 1}), "[-1,1]"},
		{NewIntArray(nil), "[]"},
		{NewLongArray([]int64{1, 2}), "[1,2]"},
		{mustList(String("x"), String("y")), `["x","y"]`},
		{
			// insertion order is kept
			CompoundOf(Field{Name: "z", Value: Int(1)}, Field{Name: "a", Value: NewCompound()}),
			`{"z":1,"a":{}}`,
		},
		{
			// wrapped elements are unwrapped
			mustList(
				CompoundOf(Field{Name: "", Value: Int(1)}),
				CompoundOf(Field{Name: "k", Value: Int(2)}),
			),
			`[1,{"k":2}]`,
		},
	}
	for i := range cases {
		var buf bytes.Buffer
		if err := ToJSON(&buf, cases[i].in); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != cases[i].want {
			t.Errorf("%s: got %s want %s", cases[i].in, got, cases[i].want)
		}
	}
}

func TestFromJSON(t *testing.T) {
	in := `{"a":1,"b":2.5,"c":"s","d":true,"e":null,"f":[1,2],
		"g":[1,"x"],"h":[],"i":{"j":[{"k":1},2]},"big":5000000000,"exp":1e2}`
	got, err := FromJSON(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want, err := ParseSNBT(`{a:1,b:2.5d,c:"s",d:1b,f:[1,2],
		g:[{"":1},{"":"x"}],h:[],i:{j:[{k:1},{"":2}]},big:5000000000L,exp:100.0d}`)
	if err != nil {
		t.Fatal(err)
	}
	checkResult(t, got, want)

	// back to JSON: nulls are gone,
	// booleans are bytes and wrapping is undone
	out := string(AppendJSON(nil, got))
	const back = `{"a":1,"b":2.5,"c":"s","d":1,"f":[1,2],"g":[1,"x"],"h":[],"i":{"j":[{"k":1},2]},"big":5000000000,"exp":100}`
	if out != back {
		t.Errorf("got  %s\nwant %s", out, back)
	}
}

func TestFromJSONScalars(t *testing.T) {
	cases := []struct {
		in   string
		want Tag
	}{
		{"null", End{}},
		{"false", Byte(0)},
		{"-2147483648", Int(math.MinInt32)},
		{"2147483648", Long(math.MaxInt32 + 1)},
		{"1e400", Double(math.Inf(1))},
		{"18446744073709551616", Double(18446744073709551616)},
		{`"é"`, String("é")},
	}
	for i := range cases {
		got, err := FromJSON(strings.NewReader(cases[i].in))
		if err != nil {
			t.Errorf("%s: %s", cases[i].in, err)
			continue
		}
		if !Equal(got, cases[i].want) {
			t.Errorf("%s: got %s want %s", cases[i].in, got, cases[i].want)
		}
	}
}

func TestFromJSONErrors(t *testing.T) {
	for _, in := range []string{
		``,
		`{"a":`,
		`[1,null]`,
		strings.Repeat("[", maxParseDepth+1) + strings.Repeat("]", maxParseDepth+1),
	} {
		if got, err := FromJSON(strings.NewReader(in)); err == nil {
			t.Errorf("%q: converted to %s", in, got)
		}
	}
}
