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
	"github.com/SnellerInc/tagtree/ints"
)

// per-node costs, shared by SizeInBytes
// and the decoder's accounting
const (
	endCost      = 8
	byteCost     = 9
	shortCost    = 10
	intCost      = 12
	longCost     = 16
	floatCost    = 12
	doubleCost   = 16
	stringCost   = 36
	arrayCost    = 24
	listCost     = 37
	compoundCost = 48
	entryCost    = 36 // each compound entry
	keyCost      = 28 // each compound key string
	refCost      = 4  // each list slot
)

// End marks the end of a compound on the wire.
// As a value it only appears as the
// root of an empty network document.
type End struct{}

func (End) Type() Type                          { return EndType }
func (End) Encode(*Buffer) error                { return nil }
func (End) SizeInBytes() int                    { return endCost }
func (e End) Copy() Tag                         { return e }
func (e End) Accept(v Visitor)                  { v.VisitEnd(e) }
func (End) AcceptStream(v StreamVisitor) Result { return v.VisitEnd() }
func (e End) String() string                    { return ToString(e) }

func (End) equal(x Tag) bool {
	_, ok := x.(End)
	return ok
}

// Byte is a signed 8-bit integer.
// It also represents booleans.
type Byte int8

// Bool returns Byte(1) for true
// and Byte(0) for false.
func Bool(b bool) Byte {
	if b {
		return 1
	}
	return 0
}

func (b Byte) Type() Type { return ByteType }

func (b Byte) Encode(dst *Buffer) error {
	dst.WriteInt8(int8(b))
	return nil
}

func (Byte) SizeInBytes() int                      { return byteCost }
func (b Byte) Copy() Tag                           { return b }
func (b Byte) Accept(v Visitor)                    { v.VisitByte(b) }
func (b Byte) AcceptStream(v StreamVisitor) Result { return v.VisitByte(int8(b)) }
func (b Byte) String() string                      { return ToString(b) }

func (b Byte) AsByte() int8      { return int8(b) }
func (b Byte) AsShort() int16    { return int16(b) }
func (b Byte) AsInt() int32      { return int32(b) }
func (b Byte) AsLong() int64     { return int64(b) }
func (b Byte) AsFloat() float32  { return float32(b) }
func (b Byte) AsDouble() float64 { return float64(b) }

func (b Byte) equal(x Tag) bool {
	o, ok := x.(Byte)
	return ok && o == b
}

// Short is a signed 16-bit integer.
type Short int16

func (s Short) Type() Type { return ShortType }

func (s Short) Encode(dst *Buffer) error {
	dst.WriteInt16(int16(s))
	return nil
}

func (Short) SizeInBytes() int                      { return shortCost }
func (s Short) Copy() Tag                           { return s }
func (s Short) Accept(v Visitor)                    { v.VisitShort(s) }
func (s Short) AcceptStream(v StreamVisitor) Result { return v.VisitShort(int16(s)) }
func (s Short) String() string                      { return ToString(s) }

func (s Short) AsByte() int8      { return int8(s) }
func (s Short) AsShort() int16    { return int16(s) }
func (s Short) AsInt() int32      { return int32(s) }
func (s Short) AsLong() int64     { return int64(s) }
func (s Short) AsFloat() float32  { return float32(s) }
func (s Short) AsDouble() float64 { return float64(s) }

func (s Short) equal(x Tag) bool {
	o, ok := x.(Short)
	return ok && o == s
}

// Int is a signed 32-bit integer.
type Int int32

func (i Int) Type() Type { return IntType }

func (i Int) Encode(dst *Buffer) error {
	dst.WriteInt32(int32(i))
	return nil
}

func (Int) SizeInBytes() int                      { return intCost }
func (i Int) Copy() Tag                           { return i }
func (i Int) Accept(v Visitor)                    { v.VisitInt(i) }
func (i Int) AcceptStream(v StreamVisitor) Result { return v.VisitInt(int32(i)) }
func (i Int) String() string                      { return ToString(i) }

func (i Int) AsByte() int8      { return int8(i) }
func (i Int) AsShort() int16    { return int16(i) }
func (i Int) AsInt() int32      { return int32(i) }
func (i Int) AsLong() int64     { return int64(i) }
func (i Int) AsFloat() float32  { return float32(i) }
func (i Int) AsDouble() float64 { return float64(i) }

func (i Int) equal(x Tag) bool {
	o, ok := x.(Int)
	return ok && o == i
}

// Long is a signed 64-bit integer.
type Long int64

func (l Long) Type() Type { return LongType }

func (l Long) Encode(dst *Buffer) error {
	dst.WriteInt64(int64(l))
	return nil
}

func (Long) SizeInBytes() int                      { return longCost }
func (l Long) Copy() Tag                           { return l }
func (l Long) Accept(v Visitor)                    { v.VisitLong(l) }
func (l Long) AcceptStream(v StreamVisitor) Result { return v.VisitLong(int64(l)) }
func (l Long) String() string                      { return ToString(l) }

func (l Long) AsByte() int8      { return int8(l) }
func (l Long) AsShort() int16    { return int16(l) }
func (l Long) AsInt() int32      { return int32(l) }
func (l Long) AsLong() int64     { return int64(l) }
func (l Long) AsFloat() float32  { return float32(l) }
func (l Long) AsDouble() float64 { return float64(l) }

func (l Long) equal(x Tag) bool {
	o, ok := x.(Long)
	return ok && o == l
}

// Float is an IEEE-754 single.
type Float float32

func (f Float) Type() Type { return FloatType }

func (f Float) Encode(dst *Buffer) error {
	dst.WriteFloat32(float32(f))
	return nil
}

func (Float) SizeInBytes() int                      { return floatCost }
func (f Float) Copy() Tag                           { return f }
func (f Float) Accept(v Visitor)                    { v.VisitFloat(f) }
func (f Float) AcceptStream(v StreamVisitor) Result { return v.VisitFloat(float32(f)) }
func (f Float) String() string                      { return ToString(f) }

func (f Float) AsByte() int8      { return int8(ints.Floor[int32](float64(f))) }
func (f Float) AsShort() int16    { return int16(ints.Floor[int32](float64(f))) }
func (f Float) AsInt() int32      { return ints.Floor[int32](float64(f)) }
func (f Float) AsLong() int64     { return ints.Trunc[int64](float64(f)) }
func (f Float) AsFloat() float32  { return float32(f) }
func (f Float) AsDouble() float64 { return float64(f) }

func (f Float) equal(x Tag) bool {
	o, ok := x.(Float)
	return ok && o == f
}

// Double is an IEEE-754 double.
type Double float64

func (d Double) Type() Type { return DoubleType }

func (d Double) Encode(dst *Buffer) error {
	dst.WriteFloat64(float64(d))
	return nil
}

func (Double) SizeInBytes() int                      { return doubleCost }
func (d Double) Copy() Tag                           { return d }
func (d Double) Accept(v Visitor)                    { v.VisitDouble(d) }
func (d Double) AcceptStream(v StreamVisitor) Result { return v.VisitDouble(float64(d)) }
func (d Double) String() string                      { return ToString(d) }

func (d Double) AsByte() int8      { return int8(ints.Floor[int32](float64(d))) }
func (d Double) AsShort() int16    { return int16(ints.Floor[int32](float64(d))) }
func (d Double) AsInt() int32      { return ints.Floor[int32](float64(d)) }
func (d Double) AsLong() int64     { return ints.Floor[int64](float64(d)) }
func (d Double) AsFloat() float32  { return float32(d) }
func (d Double) AsDouble() float64 { return float64(d) }

func (d Double) equal(x Tag) bool {
	o, ok := x.(Double)
	return ok && o == d
}

// String is a text tag. On the wire it is
// limited to 65535 bytes of modified UTF-8.
//
// Note that the String method returns the
// quoted SNBT form; use Text or a conversion
// to get the raw contents.
type String string

func (s String) Type() Type               { return StringType }
func (s String) Encode(dst *Buffer) error { return dst.WriteString(string(s)) }

func (s String) SizeInBytes() int {
	return stringCost + 2*utf16Len(string(s))
}

func (s String) Copy() Tag                           { return s }
func (s String) Accept(v Visitor)                    { v.VisitString(s) }
func (s String) AcceptStream(v StreamVisitor) Result { return v.VisitString(string(s)) }
func (s String) String() string                      { return ToString(s) }

func (s String) equal(x Tag) bool {
	o, ok := x.(String)
	return ok && o == s
}
