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
	"testing"
)

// twoDocs returns the sample document
// followed by a second, small document
func twoDocs(t *testing.T) ([]byte, int) {
	var b Buffer
	if err := b.WriteNamed("first", sample()); err != nil {
		t.Fatal(err)
	}
	first := b.Size()
	if err := b.WriteNamed("second", CompoundOf(Field{Name: "next", Value: Int(2)})); err != nil {
		t.Fatal(err)
	}
	return b.Bytes(), first
}

// parseFirst parses the first document with v,
// checks that the cursor is left at the start
// of the second document and decodes it
func parseFirst(t *testing.T, v StreamVisitor) {
	t.Helper()
	buf, first := twoDocs(t)
	r := NewReader(bytes.NewReader(buf))
	if err := r.Parse(v, NewUnlimited()); err != nil {
		t.Fatal(err)
	}
	if r.Offset() != int64(first) {
		t.Fatalf("cursor at %d after first document of %d bytes", r.Offset(), first)
	}
	name, second, err := r.ReadNamed(NewUnlimited())
	if err != nil {
		t.Fatal(err)
	}
	if name != "second" || second.(*Compound).GetInt("next") != 2 {
		t.Errorf("second document decoded as %q %s", name, second)
	}
}

func checkResult(t *testing.T, got Tag, want Tag) {
	t.Helper()
	if !Equal(got, want) {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestStreamAgreesWithLoad(t *testing.T) {
	c := &Collector{}
	parseFirst(t, c)
	checkResult(t, c.Result(), sample())

	// unnamed roots, including scalars
	for _, want := range []Tag{Int(7), String("s"), sample(), NewList(), End{}} {
		var b Buffer
		if err := b.WriteUnnamed(want); err != nil {
			t.Fatal(err)
		}
		c := &Collector{}
		if err := NewReader(bytes.NewReader(b.Bytes())).ParseUnnamed(c, NewUnlimited()); err != nil {
			t.Fatal(err)
		}
		checkResult(t, c.Result(), want)
	}
}

func TestAcceptRoot(t *testing.T) {
	for _, want := range []Tag{sample(), sample().Get("objects"), Double(2.5)} {
		c := &Collector{}
		if res := AcceptRoot(want, c); res != Continue {
			t.Errorf("result %s", res)
		}
		checkResult(t, c.Result(), want)
		if c.Result() == want && want.Type() == CompoundType {
			t.Error("collector returned the input tree")
		}
	}
}

type keySkipper struct {
	Collector
	key string
}

func (k *keySkipper) VisitEntryKey(t Type, key string) Result {
	if k.Depth() == 1 && key == k.key {
		return Skip
	}
	return k.Collector.VisitEntryKey(t, key)
}

func TestSkipEntryKey(t *testing.T) {
	for _, key := range sample().Keys() {
		v := &keySkipper{key: key}
		parseFirst(t, v)
		want := sample()
		want.Remove(key)
		checkResult(t, v.Result(), want)
	}
}

type typeSkipper struct {
	Collector
	typ Type
}

func (s *typeSkipper) VisitEntry(t Type) Result {
	if t == s.typ {
		return Skip
	}
	return Continue
}

func TestSkipEntryType(t *testing.T) {
	v := &typeSkipper{typ: StringType}
	parseFirst(t, v)
	want := sample()
	want.Remove("string")
	want.GetCompound("compound").Remove("name")
	checkResult(t, v.Result(), want)
}

type listSkipper struct {
	Collector
}

func (*listSkipper) VisitList(Type, int) Result { return Skip }

func TestSkipList(t *testing.T) {
	v := &listSkipper{}
	parseFirst(t, v)
	want := sample()
	for _, key := range []string{"empty", "list", "objects", "lists"} {
		want.Put(key, NewList())
	}
	checkResult(t, v.Result(), want)
}

type breakAfter struct {
	Collector
	n, seen int
}

func (b *breakAfter) VisitEntryKey(t Type, key string) Result {
	if b.Depth() == 1 {
		b.seen++
		if b.seen > b.n {
			return Break
		}
	}
	return b.Collector.VisitEntryKey(t, key)
}

func TestBreakEntry(t *testing.T) {
	v := &breakAfter{n: 3}
	parseFirst(t, v)
	want := NewCompound()
	want.PutByte("byte", -7)
	want.PutShort("short", 300)
	want.PutInt("int", -70000)
	checkResult(t, v.Result(), want)
	if v.seen != 4 {
		t.Errorf("visited %d keys after Break", v.seen-4)
	}
}

type elementBreaker struct {
	Collector
}

func (e *elementBreaker) VisitElement(t Type, i int) Result {
	if i == 1 {
		return Break
	}
	return e.Collector.VisitElement(t, i)
}

func TestBreakElement(t *testing.T) {
	v := &elementBreaker{}
	parseFirst(t, v)
	want := sample()
	for _, key := range []string{"list", "objects", "lists"} {
		l := want.Get(key).(*List)
		for l.Len() > 1 {
			l.Remove(l.Len() - 1)
		}
	}
	checkResult(t, v.Result(), want)
}

type leafBreaker struct {
	Collector
}

// a Break from a leaf closes the
// enclosing container after the leaf
func (l *leafBreaker) VisitShort(v int16) Result {
	l.Collector.VisitShort(v)
	return Break
}

func TestBreakLeaf(t *testing.T) {
	v := &leafBreaker{}
	parseFirst(t, v)
	want := NewCompound()
	want.PutByte("byte", -7)
	want.PutShort("short", 300)
	checkResult(t, v.Result(), want)
}

type halter struct {
	Collector
	key  string
	ends int
}

func (h *halter) VisitEntryKey(t Type, key string) Result {
	if key == h.key {
		return Halt
	}
	return h.Collector.VisitEntryKey(t, key)
}

func (h *halter) VisitContainerEnd() Result {
	h.ends++
	return h.Collector.VisitContainerEnd()
}

func TestHalt(t *testing.T) {
	buf, _ := twoDocs(t)
	v := &halter{key: "float"}
	if err := NewReader(bytes.NewReader(buf)).Parse(v, NewUnlimited()); err != nil {
		t.Fatal(err)
	}
	want := NewCompound()
	want.PutByte("byte", -7)
	want.PutShort("short", 300)
	want.PutInt("int", -70000)
	want.PutLong("long", 1<<40)
	checkResult(t, v.Result(), want)
	if v.ends != 0 {
		t.Errorf("%d containers closed after Halt", v.ends)
	}
}

type rootSkipper struct {
	Collector
	res Result
}

func (r *rootSkipper) VisitRootEntry(Type) Result { return r.res }

func TestRootEntry(t *testing.T) {
	for _, res := range []Result{Skip, Break} {
		v := &rootSkipper{res: res}
		parseFirst(t, v)
		if v.Result() != nil {
			t.Errorf("%s: collected %s", res, v.Result())
		}
	}
}

func TestStreamErrors(t *testing.T) {
	buf, err := Marshal(sample())
	if err != nil {
		t.Fatal(err)
	}
	for n := 1; n < len(buf); n++ {
		err := NewReader(bytes.NewReader(buf[:n])).Parse(&Collector{}, NewUnlimited())
		if !errors.Is(err, ErrTruncated) {
			t.Fatalf("prefix %d: got %v", n, err)
		}
	}
}

func TestCollectFields(t *testing.T) {
	v := CollectFields(
		Select(IntType, "int"),
		Select(StringType, "compound", "name"),
		Select(ByteType, "compound", "nested", ""),
		Select(ListType, "objects"),
	)
	parseFirst(t, v)
	if v.Missing() != 0 {
		t.Errorf("%d fields missing", v.Missing())
	}
	s := sample()
	want := NewCompound()
	want.PutInt("int", -70000)
	want.Put("compound", s.Get("compound"))
	want.Put("objects", s.Get("objects"))
	checkResult(t, v.Result(), want)

	// a selector with the wrong type
	// never matches
	v = CollectFields(Select(StringType, "int"), Select(IntType, "missing"))
	parseFirst(t, v)
	if v.Missing() != 2 {
		t.Errorf("%d fields missing", v.Missing())
	}
	checkResult(t, v.Result(), NewCompound())
}

func TestCollectFieldsRoot(t *testing.T) {
	var b Buffer
	if err := b.WriteNamed("", Int(3)); err != nil {
		t.Fatal(err)
	}
	v := CollectFields(Select(IntType, "x"))
	if err := NewReader(bytes.NewReader(b.Bytes())).Parse(v, NewUnlimited()); err != nil {
		t.Fatal(err)
	}
	if v.Result() != nil {
		t.Errorf("collected %s from a non-compound root", v.Result())
	}
}

func TestSkipFields(t *testing.T) {
	v := SkipFields(
		Select(ListType, "objects"),
		Select(StringType, "compound", "name"),
		// wrong type: kept
		Select(IntType, "string"),
	)
	parseFirst(t, v)
	want := sample()
	want.Remove("objects")
	want.GetCompound("compound").Remove("name")
	checkResult(t, v.Result(), want)
}
