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
	"strings"
)

// Type is the one-byte discriminant
// that selects a tag variant on the wire
type Type byte

const (
	EndType Type = iota
	ByteType
	ShortType
	IntType
	LongType
	FloatType
	DoubleType
	ByteArrayType
	StringType
	ListType
	CompoundType
	IntArrayType
	LongArrayType

	numTypes = int(LongArrayType) + 1
)

// AnyNumeric is not a wire type;
// Compound.ContainsType accepts it
// to match any of the numeric scalars.
const AnyNumeric Type = 99

var typeNames = [numTypes]string{
	EndType:       "END",
	ByteType:      "BYTE",
	ShortType:     "SHORT",
	IntType:       "INT",
	LongType:      "LONG",
	FloatType:     "FLOAT",
	DoubleType:    "DOUBLE",
	ByteArrayType: "BYTE[]",
	StringType:    "STRING",
	ListType:      "LIST",
	CompoundType:  "COMPOUND",
	IntArrayType:  "INT[]",
	LongArrayType: "LONG[]",
}

var prettyNames = [numTypes]string{
	EndType:       "TAG_End",
	ByteType:      "TAG_Byte",
	ShortType:     "TAG_Short",
	IntType:       "TAG_Int",
	LongType:      "TAG_Long",
	FloatType:     "TAG_Float",
	DoubleType:    "TAG_Double",
	ByteArrayType: "TAG_Byte_Array",
	StringType:    "TAG_String",
	ListType:      "TAG_List",
	CompoundType:  "TAG_Compound",
	IntArrayType:  "TAG_Int_Array",
	LongArrayType: "TAG_Long_Array",
}

// Valid returns whether t is one
// of the thirteen wire discriminants.
func (t Type) Valid() bool { return int(t) < numTypes }

// Name returns the stable identifier of t,
// e.g. "COMPOUND" or "INT[]".
func (t Type) Name() string {
	if !t.Valid() {
		return fmt.Sprintf("UNKNOWN[%d]", byte(t))
	}
	return typeNames[t]
}

// PrettyName returns the diagnostic
// name of t, e.g. "TAG_Compound".
func (t Type) PrettyName() string {
	if !t.Valid() {
		return fmt.Sprintf("UNKNOWN_%d", byte(t))
	}
	return prettyNames[t]
}

func (t Type) String() string { return t.Name() }

// IsValue returns true for the immutable
// leaf scalars (including End). Lists of
// value types can be copied shallowly.
func (t Type) IsValue() bool {
	switch t {
	case EndType, ByteType, ShortType, IntType, LongType,
		FloatType, DoubleType, StringType:
		return true
	default:
		return false
	}
}

// IsNumeric returns true for
// Byte, Short, Int, Long, Float and Double.
func (t Type) IsNumeric() bool {
	return t >= ByteType && t <= DoubleType
}

// ParseType is the inverse of Type.Name.
// Matching is case-insensitive, and the
// pretty names are accepted as well.
func ParseType(s string) (Type, error) {
	for i := range typeNames {
		if strings.EqualFold(s, typeNames[i]) || strings.EqualFold(s, prettyNames[i]) {
			return Type(i), nil
		}
	}
	return EndType, fmt.Errorf("nbt: unknown tag type %q", s)
}
