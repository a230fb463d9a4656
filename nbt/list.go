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
	"fmt"

	"golang.org/x/exp/slices"
)

// List is an ordered sequence of tags
// that all share one type. An empty list
// is untyped (EndType) and adopts the
// type of the first element inserted.
type List struct {
	elems []Tag
	typ   Type
}

// NewList returns an empty, untyped list.
func NewList() *List { return &List{} }

// ListOf returns a list holding elems,
// which must all have the same type.
func ListOf(elems ...Tag) (*List, error) {
	l := &List{elems: make([]Tag, 0, len(elems))}
	for _, e := range elems {
		if err := l.Add(e); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *List) Type() Type { return ListType }

// ElementType returns the type of every
// element, or EndType if the list is empty
// and has not been typed by an insertion.
func (l *List) ElementType() Type { return l.typ }

func (l *List) Len() int { return len(l.elems) }

// Empty returns whether the list has no elements.
func (l *List) Empty() bool { return len(l.elems) == 0 }

func (l *List) Get(i int) Tag { return l.elems[i] }

// Each calls fn for every element in order
// until fn returns false.
func (l *List) Each(fn func(i int, t Tag) bool) {
	for i := range l.elems {
		if !fn(i, l.elems[i]) {
			return
		}
	}
}

// accept reports whether t may join the list.
// End can never be an element.
func (l *List) accept(t Tag) error {
	if t == nil {
		return fmt.Errorf("%w: nil tag", ErrElementType)
	}
	tt := t.Type()
	if tt == EndType || (l.typ != EndType && l.typ != tt) {
		return fmt.Errorf("%w: can't insert %s into list of %s",
			ErrElementType, tt.PrettyName(), l.typ.PrettyName())
	}
	return nil
}

func (l *List) Set(i int, t Tag) (Tag, error) {
	old := l.elems[i]
	if err := l.accept(t); err != nil {
		return nil, err
	}
	l.elems[i] = t
	return old, nil
}

func (l *List) Insert(i int, t Tag) error {
	if i < 0 || i > len(l.elems) {
		panic(fmt.Sprintf("nbt.List.Insert: index %d out of range [0:%d]", i, len(l.elems)))
	}
	if err := l.accept(t); err != nil {
		return err
	}
	l.typ = t.Type()
	l.elems = slices.Insert(l.elems, i, t)
	return nil
}

func (l *List) Add(t Tag) error { return l.Insert(len(l.elems), t) }

// Remove deletes element i and returns it.
// Removing the last element makes the
// list untyped again.
func (l *List) Remove(i int) Tag {
	old := l.elems[i]
	l.elems = slices.Delete(l.elems, i, i+1)
	if len(l.elems) == 0 {
		l.typ = EndType
	}
	return old
}

func (l *List) Clear() {
	l.elems = nil
	l.typ = EndType
}

func (l *List) Encode(dst *Buffer) error {
	typ := EndType
	if len(l.elems) > 0 {
		typ = l.elems[0].Type()
	}
	dst.WriteType(typ)
	dst.WriteInt32(int32(len(l.elems)))
	for i := range l.elems {
		if err := l.elems[i].Encode(dst); err != nil {
			return atIndex(err, i)
		}
	}
	return nil
}

func (l *List) SizeInBytes() int {
	n := listCost + refCost*len(l.elems)
	for i := range l.elems {
		n += l.elems[i].SizeInBytes()
	}
	return n
}

// Copy returns a deep copy of the list.
// Lists of scalars share their (immutable)
// elements with the copy.
func (l *List) Copy() Tag {
	out := &List{typ: l.typ, elems: slices.Clone(l.elems)}
	if !l.typ.IsValue() {
		for i := range out.elems {
			out.elems[i] = out.elems[i].Copy()
		}
	}
	return out
}

func (l *List) Accept(v Visitor) { v.VisitList(l) }

func (l *List) AcceptStream(v StreamVisitor) Result {
	switch v.VisitList(l.typ, len(l.elems)) {
	case Halt:
		return Halt
	case Break, Skip:
		return v.VisitContainerEnd()
	}
	for i, e := range l.elems {
		switch v.VisitElement(e.Type(), i) {
		case Halt:
			return Halt
		case Break:
			return v.VisitContainerEnd()
		case Skip:
			continue
		}
		switch e.AcceptStream(v) {
		case Halt:
			return Halt
		case Break:
			return v.VisitContainerEnd()
		}
	}
	return v.VisitContainerEnd()
}

func (l *List) String() string { return ToString(l) }

func (l *List) equal(x Tag) bool {
	o, ok := x.(*List)
	if !ok || len(o.elems) != len(l.elems) {
		return false
	}
	for i := range l.elems {
		if !l.elems[i].equal(o.elems[i]) {
			return false
		}
	}
	return true
}

// The typed getters below never fail: an index
// out of range or an element of another type
// yields the zero value (or a new empty container).

func (l *List) at(i int) Tag {
	if i < 0 || i >= len(l.elems) {
		return nil
	}
	return l.elems[i]
}

// GetCompound returns element i if it is a
// compound and a new empty compound otherwise.
func (l *List) GetCompound(i int) *Compound {
	if c, ok := l.at(i).(*Compound); ok {
		return c
	}
	return NewCompound()
}

// GetList returns element i if it is a
// list and a new empty list otherwise.
func (l *List) GetList(i int) *List {
	if c, ok := l.at(i).(*List); ok {
		return c
	}
	return NewList()
}

func (l *List) GetShort(i int) int16 {
	v, _ := l.at(i).(Short)
	return int16(v)
}

func (l *List) GetInt(i int) int32 {
	v, _ := l.at(i).(Int)
	return int32(v)
}

func (l *List) GetFloat(i int) float32 {
	v, _ := l.at(i).(Float)
	return float32(v)
}

func (l *List) GetDouble(i int) float64 {
	v, _ := l.at(i).(Double)
	return float64(v)
}

func (l *List) GetIntArray(i int) []int32 {
	if a, ok := l.at(i).(*IntArray); ok {
		return a.data
	}
	return []int32{}
}

func (l *List) GetLongArray(i int) []int64 {
	if a, ok := l.at(i).(*LongArray); ok {
		return a.data
	}
	return []int64{}
}

// GetString returns the contents of a String
// element, the SNBT form of any other element,
// or "" if i is out of range.
func (l *List) GetString(i int) string {
	t := l.at(i)
	if t == nil {
		return ""
	}
	return Text(t)
}
