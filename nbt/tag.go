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

// Package nbt implements a compact tagged-tree
// binary format (NBT), its resource-bounded
// streaming decoder and its textual form (SNBT).
package nbt

// Tag is one node of a tree.
//
// A Tag is one of
//
//	End, Byte, Short, Int, Long, Float, Double,
//	String, *ByteArray, *IntArray, *LongArray,
//	*List, *Compound
//
// The scalars are immutable values.
// The remaining types are mutable containers
// owned by whoever holds them; a container
// that is placed into another container
// belongs to it from then on.
type Tag interface {
	// Type returns the discriminant of the tag.
	Type() Type
	// Encode appends the payload of the tag
	// (without discriminant or name) to dst.
	Encode(dst *Buffer) error
	// SizeInBytes estimates the in-memory
	// cost of the tag, including per-node
	// overhead. Decoding charges the same
	// amounts against an Accounter.
	SizeInBytes() int
	// Copy returns a deep copy. Scalars
	// return themselves.
	Copy() Tag
	// Accept calls the Visitor method
	// matching the dynamic type of the tag.
	Accept(v Visitor)
	// AcceptStream feeds the tag to a
	// StreamVisitor as if it were being
	// decoded from bytes.
	AcceptStream(v StreamVisitor) Result
	// String returns the compact SNBT form.
	String() string

	equal(Tag) bool
}

var (
	_ Tag = End{}
	_ Tag = Byte(0)
	_ Tag = Short(0)
	_ Tag = Int(0)
	_ Tag = Long(0)
	_ Tag = Float(0)
	_ Tag = Double(0)
	_ Tag = String("")
	_ Tag = &ByteArray{}
	_ Tag = &IntArray{}
	_ Tag = &LongArray{}
	_ Tag = &List{}
	_ Tag = &Compound{}

	_ Numeric = Byte(0)
	_ Numeric = Short(0)
	_ Numeric = Int(0)
	_ Numeric = Long(0)
	_ Numeric = Float(0)
	_ Numeric = Double(0)

	_ Collection = &ByteArray{}
	_ Collection = &IntArray{}
	_ Collection = &LongArray{}
	_ Collection = &List{}
)

// Numeric is implemented by the numeric
// scalars. Every numeric tag converts to
// every numeric width: integers narrow by
// truncating high bits, and floating point
// values round towards negative infinity
// and saturate when converted to integers.
type Numeric interface {
	Tag
	AsByte() int8
	AsShort() int16
	AsInt() int32
	AsLong() int64
	AsFloat() float32
	AsDouble() float64
}

// Collection is implemented by the
// homogeneous containers: *List and
// the three typed arrays.
//
// Index arguments must be in range
// (in [0, Len()] for Insert); out-of-range
// indices panic like slice indexing does.
// Set, Insert and Add return an error
// wrapping ErrElementType and leave the
// collection unchanged when the element
// does not fit the collection.
type Collection interface {
	Tag
	Len() int
	// ElementType is the type every
	// element must have, or EndType
	// for an empty untyped List.
	ElementType() Type
	Get(i int) Tag
	// Set replaces element i and
	// returns the previous value.
	Set(i int, t Tag) (Tag, error)
	Insert(i int, t Tag) error
	Add(t Tag) error
	Remove(i int) Tag
	// Clear removes every element. A List
	// also forgets its element type.
	Clear()
}

// Equal returns whether a and b are
// structurally equal. Compound key order
// is not significant. Floating point values
// compare with ==, so NaN is never equal
// to anything.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.equal(b)
}

// Text returns the string held by a String
// tag and the SNBT form of any other tag.
func Text(t Tag) string {
	if s, ok := t.(String); ok {
		return string(s)
	}
	return t.String()
}
