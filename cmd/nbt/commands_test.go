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

package main

import (
	"bytes"
	"testing"

	"github.com/SnellerInc/tagtree/nbt"
)

func TestParseSelector(t *testing.T) {
	sel, err := parseSelector("string:Data.Player.Name")
	if err != nil {
		t.Fatal(err)
	}
	if sel.Type != nbt.StringType || sel.Name != "Name" ||
		len(sel.Path) != 2 || sel.Path[0] != "Data" || sel.Path[1] != "Player" {
		t.Errorf("got %+v", sel)
	}
	sel, err = parseSelector("TAG_Int:x")
	if err != nil || sel.Type != nbt.IntType || len(sel.Path) != 0 {
		t.Errorf("got %+v %v", sel, err)
	}
	for _, bad := range []string{"Data.x", "int:", "widget:x", "end:x"} {
		if _, err := parseSelector(bad); err == nil {
			t.Errorf("%q: expected an error", bad)
		}
	}
}

func TestGetFields(t *testing.T) {
	doc, err := nbt.ParseSNBTCompound(`{Data:{LevelName:"world",Time:5L,Player:{Pos:[1.0d,2.0d]}},Version:3}`)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := nbt.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var sel []nbt.FieldSelector
	for _, s := range []string{"string:Data.LevelName", "list:Data.Player.Pos", "int:Version", "long:Data.Missing"} {
		fs, err := parseSelector(s)
		if err != nil {
			t.Fatal(err)
		}
		sel = append(sel, fs)
	}
	fc := nbt.CollectFields(sel...)
	if err := nbt.NewReader(bytes.NewReader(buf)).Parse(fc, nbt.NewUnlimited()); err != nil {
		t.Fatal(err)
	}
	root, _ := fc.Result().(*nbt.Compound)
	want := []string{`"world"`, `[1.0d,2.0d]`, `3`, ``}
	for i := range sel {
		v := lookup(root, &sel[i])
		got := ""
		if v != nil {
			got = nbt.ToString(v)
		}
		if got != want[i] {
			t.Errorf("%d: got %q want %q", i, got, want[i])
		}
	}
	// the wrong type is not found
	if v := lookup(root, &nbt.FieldSelector{Path: []string{"Data"}, Type: nbt.IntType, Name: "LevelName"}); v != nil {
		t.Errorf("found %s", v)
	}
}
