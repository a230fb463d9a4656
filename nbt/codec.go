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
	"io"
)

// Load decodes a single payload of type t.
func (r *Reader) Load(t Type, acc *Accounter) (Tag, error) {
	d, err := Lookup(t)
	if err != nil {
		return nil, err
	}
	return d.load(r, acc)
}

// Skip advances past a single payload of type t.
func (r *Reader) Skip(t Type, acc *Accounter) error {
	d, err := Lookup(t)
	if err != nil {
		return err
	}
	return d.skip(r, acc)
}

// ReadNamed decodes a named-root document:
// a type byte, the root name and the payload.
// A document consisting of a lone End byte
// has no name and decodes as End{}.
//
// If the stream is empty, ReadNamed
// returns io.EOF.
func (r *Reader) ReadNamed(acc *Accounter) (string, Tag, error) {
	t, err := r.rootType()
	if err != nil || t == EndType {
		return "", End{}, err
	}
	d, err := Lookup(t)
	if err != nil {
		return "", nil, err
	}
	name, err := r.readString()
	if err != nil {
		return "", nil, err
	}
	tag, err := d.load(r, acc)
	if err != nil {
		return "", nil, err
	}
	return name, tag, nil
}

// ReadCompound decodes a named-root document
// whose root must be a compound.
func (r *Reader) ReadCompound(acc *Accounter) (*Compound, error) {
	_, c, err := r.ReadNamedCompound(acc)
	return c, err
}

// ReadNamedCompound is like ReadCompound,
// but it also returns the root name.
// Any other root type is an error
// wrapping ErrMalformed.
func (r *Reader) ReadNamedCompound(acc *Accounter) (string, *Compound, error) {
	name, t, err := r.ReadNamed(acc)
	if err != nil {
		return "", nil, err
	}
	c, ok := t.(*Compound)
	if !ok {
		return "", nil, malformed("root tag must be a named compound, found %s", t.Type().PrettyName())
	}
	return name, c, nil
}

// ReadUnnamed decodes the network form of
// a document: a type byte and the payload,
// with no root name. Any root type is allowed.
//
// If the stream is empty, ReadUnnamed
// returns io.EOF.
func (r *Reader) ReadUnnamed(acc *Accounter) (Tag, error) {
	t, err := r.rootType()
	if err != nil {
		return nil, err
	}
	return r.Load(t, acc)
}

// rootType reads the first byte of a document,
// distinguishing a clean end of stream.
func (r *Reader) rootType() (Type, error) {
	c, err := r.br.ReadByte()
	if err != nil {
		return EndType, err
	}
	r.off++
	return Type(c), nil
}

// WriteNamed appends a named-root document.
func (b *Buffer) WriteNamed(name string, t Tag) error {
	b.WriteType(t.Type())
	if t.Type() == EndType {
		return nil
	}
	if err := b.WriteString(name); err != nil {
		return err
	}
	return t.Encode(b)
}

// WriteUnnamed appends the network form of t.
func (b *Buffer) WriteUnnamed(t Tag) error {
	b.WriteType(t.Type())
	return t.Encode(b)
}

// Marshal returns the named-root
// encoding of c with an empty root name.
func Marshal(c *Compound) ([]byte, error) {
	var b Buffer
	if err := b.WriteNamed("", c); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Unmarshal decodes a named-root document
// from buf. Trailing bytes are ignored.
func Unmarshal(buf []byte, acc *Accounter) (*Compound, error) {
	return NewReader(bytes.NewReader(buf)).ReadCompound(acc)
}

// ReadCompound reads a named-root
// compound document from src.
func ReadCompound(src io.Reader, acc *Accounter) (*Compound, error) {
	return NewReader(src).ReadCompound(acc)
}

// WriteCompound writes c to dst as a
// named-root document with an empty name.
func WriteCompound(dst io.Writer, c *Compound) error {
	var b Buffer
	if err := b.WriteNamed("", c); err != nil {
		return err
	}
	_, err := b.WriteTo(dst)
	return err
}
