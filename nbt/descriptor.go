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

// Descriptor is the codec strategy for
// one tag type. Every wire discriminant
// has exactly one Descriptor; see Lookup.
type Descriptor struct {
	typ Type
	// width is the payload size of
	// fixed-width types and 0 otherwise
	width int64
	load  func(r *Reader, acc *Accounter) (Tag, error)
	parse func(r *Reader, v StreamVisitor, acc *Accounter) (Result, error)
	skip  func(r *Reader, acc *Accounter) error
}

// Type returns the type handled by d.
func (d *Descriptor) Type() Type { return d.typ }

// FixedWidth returns the payload width
// of fixed-width types and 0 for types
// whose size depends on the data.
func (d *Descriptor) FixedWidth() int { return int(d.width) }

// Load decodes one payload of type d.Type().
func (d *Descriptor) Load(r *Reader, acc *Accounter) (Tag, error) {
	return d.load(r, acc)
}

// Parse decodes one payload of type d.Type()
// and reports it to v; see StreamVisitor.
func (d *Descriptor) Parse(r *Reader, v StreamVisitor, acc *Accounter) (Result, error) {
	return d.parse(r, v, acc)
}

// Skip advances r past one payload
// without materializing it.
func (d *Descriptor) Skip(r *Reader, acc *Accounter) error {
	return d.skip(r, acc)
}

// SkipN advances r past n consecutive payloads.
// Fixed-width types skip n*width bytes at once;
// other types walk each payload.
func (d *Descriptor) SkipN(r *Reader, n int, acc *Accounter) error {
	if n < 0 {
		return malformed("negative element count %d", n)
	}
	if d.width > 0 {
		return r.skip(d.width * int64(n))
	}
	for i := 0; i < n; i++ {
		if err := d.skip(r, acc); err != nil {
			return err
		}
	}
	return nil
}

var descriptors [numTypes]Descriptor

// this is just a copy of descriptors
// that avoids an initialization loop
// (loadList and loadCompound reach
// back into the table)
var _descriptors = [numTypes]Descriptor{
	EndType:       {typ: EndType, load: loadEnd, parse: parseLeaf(loadEnd), skip: skipFixed(0)},
	ByteType:      {typ: ByteType, width: 1, load: loadByte, parse: parseLeaf(loadByte), skip: skipFixed(1)},
	ShortType:     {typ: ShortType, width: 2, load: loadShort, parse: parseLeaf(loadShort), skip: skipFixed(2)},
	IntType:       {typ: IntType, width: 4, load: loadInt, parse: parseLeaf(loadInt), skip: skipFixed(4)},
	LongType:      {typ: LongType, width: 8, load: loadLong, parse: parseLeaf(loadLong), skip: skipFixed(8)},
	FloatType:     {typ: FloatType, width: 4, load: loadFloat, parse: parseLeaf(loadFloat), skip: skipFixed(4)},
	DoubleType:    {typ: DoubleType, width: 8, load: loadDouble, parse: parseLeaf(loadDouble), skip: skipFixed(8)},
	ByteArrayType: {typ: ByteArrayType, load: loadByteArray, parse: parseLeaf(loadByteArray), skip: skipArray(1)},
	StringType:    {typ: StringType, load: loadString, parse: parseLeaf(loadString), skip: skipString},
	ListType:      {typ: ListType, load: loadList, parse: parseList, skip: skipList},
	CompoundType:  {typ: CompoundType, load: loadCompound, parse: parseCompound, skip: skipCompound},
	IntArrayType:  {typ: IntArrayType, load: loadIntArray, parse: parseLeaf(loadIntArray), skip: skipArray(4)},
	LongArrayType: {typ: LongArrayType, load: loadLongArray, parse: parseLeaf(loadLongArray), skip: skipArray(8)},
}

func init() {
	descriptors = _descriptors
}

// Lookup returns the Descriptor for t.
// Unknown discriminants are a decode error.
func Lookup(t Type) (*Descriptor, error) {
	if !t.Valid() {
		return nil, badType(t)
	}
	return &descriptors[t], nil
}

// parseLeaf builds the streaming decoder of a
// scalar or array type: decode the value, then
// hand it to the visitor.
func parseLeaf(load func(*Reader, *Accounter) (Tag, error)) func(*Reader, StreamVisitor, *Accounter) (Result, error) {
	return func(r *Reader, v StreamVisitor, acc *Accounter) (Result, error) {
		t, err := load(r, acc)
		if err != nil {
			return Halt, err
		}
		return t.AcceptStream(v), nil
	}
}

func skipFixed(width int64) func(*Reader, *Accounter) error {
	return func(r *Reader, _ *Accounter) error { return r.skip(width) }
}

func skipArray(elem int64) func(*Reader, *Accounter) error {
	return func(r *Reader, _ *Accounter) error {
		n, err := r.readCount()
		if err != nil {
			return err
		}
		return r.skip(elem * int64(n))
	}
}

func skipString(r *Reader, _ *Accounter) error { return r.skipString() }

func loadEnd(_ *Reader, acc *Accounter) (Tag, error) {
	if err := acc.AccountBytes(endCost); err != nil {
		return nil, err
	}
	return End{}, nil
}

func loadByte(r *Reader, acc *Accounter) (Tag, error) {
	if err := acc.AccountBytes(byteCost); err != nil {
		return nil, err
	}
	c, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	return Byte(int8(c)), nil
}

func loadShort(r *Reader, acc *Accounter) (Tag, error) {
	if err := acc.AccountBytes(shortCost); err != nil {
		return nil, err
	}
	v, err := r.readInt16()
	if err != nil {
		return nil, err
	}
	return Short(v), nil
}

func loadInt(r *Reader, acc *Accounter) (Tag, error) {
	if err := acc.AccountBytes(intCost); err != nil {
		return nil, err
	}
	v, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	return Int(v), nil
}

func loadLong(r *Reader, acc *Accounter) (Tag, error) {
	if err := acc.AccountBytes(longCost); err != nil {
		return nil, err
	}
	v, err := r.readInt64()
	if err != nil {
		return nil, err
	}
	return Long(v), nil
}

func loadFloat(r *Reader, acc *Accounter) (Tag, error) {
	if err := acc.AccountBytes(floatCost); err != nil {
		return nil, err
	}
	v, err := r.readFloat32()
	if err != nil {
		return nil, err
	}
	return Float(v), nil
}

func loadDouble(r *Reader, acc *Accounter) (Tag, error) {
	if err := acc.AccountBytes(doubleCost); err != nil {
		return nil, err
	}
	v, err := r.readFloat64()
	if err != nil {
		return nil, err
	}
	return Double(v), nil
}

func loadString(r *Reader, acc *Accounter) (Tag, error) {
	if err := acc.AccountBytes(stringCost); err != nil {
		return nil, err
	}
	s, err := r.readString()
	if err != nil {
		return nil, err
	}
	if err := acc.AccountElements(2, int64(utf16Len(s))); err != nil {
		return nil, err
	}
	return String(s), nil
}

// arrays are charged in full before
// any element storage is allocated

func loadByteArray(r *Reader, acc *Accounter) (Tag, error) {
	if err := acc.AccountBytes(arrayCost); err != nil {
		return nil, err
	}
	n, err := r.readCount()
	if err != nil {
		return nil, err
	}
	if err := acc.AccountElements(1, int64(n)); err != nil {
		return nil, err
	}
	b, err := r.readFull(n)
	if err != nil {
		return nil, err
	}
	return NewByteArray(b), nil
}

func loadIntArray(r *Reader, acc *Accounter) (Tag, error) {
	if err := acc.AccountBytes(arrayCost); err != nil {
		return nil, err
	}
	n, err := r.readCount()
	if err != nil {
		return nil, err
	}
	if err := acc.AccountElements(4, int64(n)); err != nil {
		return nil, err
	}
	v, err := r.readInt32s(n)
	if err != nil {
		return nil, err
	}
	return NewIntArray(v), nil
}

func loadLongArray(r *Reader, acc *Accounter) (Tag, error) {
	if err := acc.AccountBytes(arrayCost); err != nil {
		return nil, err
	}
	n, err := r.readCount()
	if err != nil {
		return nil, err
	}
	if err := acc.AccountElements(8, int64(n)); err != nil {
		return nil, err
	}
	v, err := r.readInt64s(n)
	if err != nil {
		return nil, err
	}
	return NewLongArray(v), nil
}

// listHeader reads the element type and
// count that precede the list elements.
func listHeader(r *Reader) (*Descriptor, int, error) {
	t, err := r.readType()
	if err != nil {
		return nil, 0, err
	}
	n, err := r.readCount()
	if err != nil {
		return nil, 0, err
	}
	if t == EndType && n > 0 {
		return nil, 0, malformed("missing type on list of %d elements", n)
	}
	d, err := Lookup(t)
	if err != nil {
		return nil, 0, err
	}
	return d, n, nil
}

func loadList(r *Reader, acc *Accounter) (Tag, error) {
	if err := acc.PushDepth(); err != nil {
		return nil, err
	}
	defer acc.PopDepth()
	if err := acc.AccountBytes(listCost); err != nil {
		return nil, err
	}
	d, n, err := listHeader(r)
	if err != nil {
		return nil, err
	}
	if err := acc.AccountElements(refCost, int64(n)); err != nil {
		return nil, err
	}
	l := &List{elems: make([]Tag, 0, ints.Min(n, 1024))}
	for i := 0; i < n; i++ {
		t, err := d.load(r, acc)
		if err != nil {
			return nil, atIndex(err, i)
		}
		l.elems = append(l.elems, t)
	}
	if n > 0 {
		l.typ = d.typ
	}
	return l, nil
}

func skipList(r *Reader, acc *Accounter) error {
	if err := acc.PushDepth(); err != nil {
		return err
	}
	defer acc.PopDepth()
	d, n, err := listHeader(r)
	if err != nil {
		return err
	}
	return d.SkipN(r, n, acc)
}

// readKey reads and charges a compound key.
func readKey(r *Reader, acc *Accounter) (string, error) {
	key, err := r.readString()
	if err != nil {
		return "", err
	}
	if err := acc.AccountBytes(keyCost); err != nil {
		return "", err
	}
	if err := acc.AccountElements(2, int64(utf16Len(key))); err != nil {
		return "", err
	}
	return key, nil
}

// entryHeader reads the discriminant of the
// next compound entry; d is nil at the end.
func entryHeader(r *Reader) (*Descriptor, error) {
	t, err := r.readType()
	if err != nil || t == EndType {
		return nil, err
	}
	return Lookup(t)
}

func loadCompound(r *Reader, acc *Accounter) (Tag, error) {
	if err := acc.PushDepth(); err != nil {
		return nil, err
	}
	defer acc.PopDepth()
	if err := acc.AccountBytes(compoundCost); err != nil {
		return nil, err
	}
	c := NewCompound()
	for {
		d, err := entryHeader(r)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return c, nil
		}
		key, err := readKey(r, acc)
		if err != nil {
			return nil, err
		}
		t, err := d.load(r, acc)
		if err != nil {
			return nil, atKey(err, key)
		}
		if c.Put(key, t) == nil {
			if err := acc.AccountBytes(entryCost); err != nil {
				return nil, err
			}
		}
	}
}

func skipCompound(r *Reader, acc *Accounter) error {
	if err := acc.PushDepth(); err != nil {
		return err
	}
	defer acc.PopDepth()
	return drainEntries(r, acc)
}

// drainEntries skips compound entries up to
// and including the terminating End byte.
func drainEntries(r *Reader, acc *Accounter) error {
	for {
		d, err := entryHeader(r)
		if err != nil || d == nil {
			return err
		}
		if err := r.skipString(); err != nil {
			return err
		}
		if err := d.skip(r, acc); err != nil {
			return err
		}
	}
}
