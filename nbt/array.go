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
	"fmt"

	"golang.org/x/exp/slices"
)

func errInsert(t Tag, into Type) error {
	return fmt.Errorf("%w: can't insert %s into %s", ErrElementType, t.Type().PrettyName(), into.PrettyName())
}

// ByteArray is a mutable array of signed bytes.
// The elements are stored as []byte; element
// values are reported as int8 everywhere else.
type ByteArray struct {
	data []byte
}

// NewByteArray returns a ByteArray
// that takes ownership of b.
func NewByteArray(b []byte) *ByteArray { return &ByteArray{data: b} }

// Bytes returns the backing storage.
func (a *ByteArray) Bytes() []byte { return a.data }

func (a *ByteArray) Type() Type        { return ByteArrayType }
func (a *ByteArray) ElementType() Type { return ByteType }
func (a *ByteArray) Len() int          { return len(a.data) }
func (a *ByteArray) Get(i int) Tag     { return Byte(int8(a.data[i])) }

func (a *ByteArray) Set(i int, t Tag) (Tag, error) {
	b, ok := t.(Byte)
	if !ok {
		return nil, errInsert(t, ByteArrayType)
	}
	old := a.Get(i)
	a.data[i] = byte(b)
	return old, nil
}

func (a *ByteArray) Insert(i int, t Tag) error {
	b, ok := t.(Byte)
	if !ok {
		return errInsert(t, ByteArrayType)
	}
	a.data = slices.Insert(a.data, i, byte(b))
	return nil
}

func (a *ByteArray) Add(t Tag) error { return a.Insert(len(a.data), t) }

func (a *ByteArray) Remove(i int) Tag {
	old := a.Get(i)
	a.data = slices.Delete(a.data, i, i+1)
	return old
}

func (a *ByteArray) Clear() { a.data = nil }

func (a *ByteArray) Encode(dst *Buffer) error {
	dst.WriteBytes(a.data)
	return nil
}

func (a *ByteArray) SizeInBytes() int                    { return arrayCost + len(a.data) }
func (a *ByteArray) Copy() Tag                           { return NewByteArray(slices.Clone(a.data)) }
func (a *ByteArray) Accept(v Visitor)                    { v.VisitByteArray(a) }
func (a *ByteArray) AcceptStream(v StreamVisitor) Result { return v.VisitByteArray(a.data) }
func (a *ByteArray) String() string                      { return ToString(a) }

func (a *ByteArray) equal(x Tag) bool {
	o, ok := x.(*ByteArray)
	return ok && bytes.Equal(a.data, o.data)
}

// IntArray is a mutable array of int32.
type IntArray struct {
	data []int32
}

// NewIntArray returns an IntArray
// that takes ownership of v.
func NewIntArray(v []int32) *IntArray { return &IntArray{data: v} }

// Values returns the backing storage.
func (a *IntArray) Values() []int32 { return a.data }

func (a *IntArray) Type() Type        { return IntArrayType }
func (a *IntArray) ElementType() Type { return IntType }
func (a *IntArray) Len() int          { return len(a.data) }
func (a *IntArray) Get(i int) Tag     { return Int(a.data[i]) }

func (a *IntArray) Set(i int, t Tag) (Tag, error) {
	v, ok := t.(Int)
	if !ok {
		return nil, errInsert(t, IntArrayType)
	}
	old := a.Get(i)
	a.data[i] = int32(v)
	return old, nil
}

func (a *IntArray) Insert(i int, t Tag) error {
	v, ok := t.(Int)
	if !ok {
		return errInsert(t, IntArrayType)
	}
	a.data = slices.Insert(a.data, i, int32(v))
	return nil
}

func (a *IntArray) Add(t Tag) error { return a.Insert(len(a.data), t) }

func (a *IntArray) Remove(i int) Tag {
	old := a.Get(i)
	a.data = slices.Delete(a.data, i, i+1)
	return old
}

func (a *IntArray) Clear() { a.data = nil }

func (a *IntArray) Encode(dst *Buffer) error {
	dst.WriteInt32s(a.data)
	return nil
}

func (a *IntArray) SizeInBytes() int                    { return arrayCost + 4*len(a.data) }
func (a *IntArray) Copy() Tag                           { return NewIntArray(slices.Clone(a.data)) }
func (a *IntArray) Accept(v Visitor)                    { v.VisitIntArray(a) }
func (a *IntArray) AcceptStream(v StreamVisitor) Result { return v.VisitIntArray(a.data) }
func (a *IntArray) String() string                      { return ToString(a) }

func (a *IntArray) equal(x Tag) bool {
	o, ok := x.(*IntArray)
	return ok && slices.Equal(a.data, o.data)
}

// LongArray is a mutable array of int64.
type LongArray struct {
	data []int64
}

// NewLongArray returns a LongArray
// that takes ownership of v.
func NewLongArray(v []int64) *LongArray { return &LongArray{data: v} }

// Values returns the backing storage.
func (a *LongArray) Values() []int64 { return a.data }

func (a *LongArray) Type() Type        { return LongArrayType }
func (a *LongArray) ElementType() Type { return LongType }
func (a *LongArray) Len() int          { return len(a.data) }
func (a *LongArray) Get(i int) Tag     { return Long(a.data[i]) }

func (a *LongArray) Set(i int, t Tag) (Tag, error) {
	v, ok := t.(Long)
	if !ok {
		return nil, errInsert(t, LongArrayType)
	}
	old := a.Get(i)
	a.data[i] = int64(v)
	return old, nil
}

func (a *LongArray) Insert(i int, t Tag) error {
	v, ok := t.(Long)
	if !ok {
		return errInsert(t, LongArrayType)
	}
	a.data = slices.Insert(a.data, i, int64(v))
	return nil
}

func (a *LongArray) Add(t Tag) error { return a.Insert(len(a.data), t) }

func (a *LongArray) Remove(i int) Tag {
	old := a.Get(i)
	a.data = slices.Delete(a.data, i, i+1)
	return old
}

func (a *LongArray) Clear() { a.data = nil }

func (a *LongArray) Encode(dst *Buffer) error {
	dst.WriteInt64s(a.data)
	return nil
}

func (a *LongArray) SizeInBytes() int                    { return arrayCost + 8*len(a.data) }
func (a *LongArray) Copy() Tag                           { return NewLongArray(slices.Clone(a.data)) }
func (a *LongArray) Accept(v Visitor)                    { v.VisitLongArray(a) }
func (a *LongArray) AcceptStream(v StreamVisitor) Result { return v.VisitLongArray(a.data) }
func (a *LongArray) String() string                      { return ToString(a) }

func (a *LongArray) equal(x Tag) bool {
	o, ok := x.(*LongArray)
	return ok && slices.Equal(a.data, o.data)
}
