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
	"errors"

	"golang.org/x/exp/slices"
)

// Field is a key-value pair of a Compound.
type Field struct {
	Name  string
	Value Tag
}

// Compound maps unique string keys to tags.
// Iteration follows insertion order, but the
// order carries no meaning: two compounds with
// the same entries are Equal regardless of it.
type Compound struct {
	fields []Field
	index  map[string]int
}

// NewCompound returns an empty compound.
func NewCompound() *Compound { return &Compound{} }

// CompoundOf returns a compound holding
// the given fields. Later duplicates replace
// earlier ones.
func CompoundOf(fields ...Field) *Compound {
	c := &Compound{}
	for i := range fields {
		c.Put(fields[i].Name, fields[i].Value)
	}
	return c
}

func (c *Compound) Type() Type { return CompoundType }

// Len returns the number of entries.
func (c *Compound) Len() int { return len(c.fields) }

// Empty returns whether the compound has no entries.
func (c *Compound) Empty() bool { return len(c.fields) == 0 }

// Lookup returns the tag stored under key.
func (c *Compound) Lookup(key string) (Tag, bool) {
	i, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.fields[i].Value, true
}

// Get returns the tag stored under key,
// or nil if there is none.
func (c *Compound) Get(key string) Tag {
	t, _ := c.Lookup(key)
	return t
}

// Put stores t under key and returns the
// previous value, if any. The compound
// takes ownership of t.
func (c *Compound) Put(key string, t Tag) Tag {
	if t == nil {
		panic("nbt.Compound.Put: nil tag for key " + key)
	}
	if i, ok := c.index[key]; ok {
		old := c.fields[i].Value
		c.fields[i].Value = t
		return old
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	c.index[key] = len(c.fields)
	c.fields = append(c.fields, Field{Name: key, Value: t})
	return nil
}

// Remove deletes key and returns its value,
// or nil if it was absent.
func (c *Compound) Remove(key string) Tag {
	i, ok := c.index[key]
	if !ok {
		return nil
	}
	old := c.fields[i].Value
	delete(c.index, key)
	c.fields = slices.Delete(c.fields, i, i+1)
	for j := i; j < len(c.fields); j++ {
		c.index[c.fields[j].Name] = j
	}
	return old
}

// Contains returns whether key is present.
func (c *Compound) Contains(key string) bool {
	_, ok := c.index[key]
	return ok
}

// TypeOf returns the type stored under key,
// or EndType if key is absent.
func (c *Compound) TypeOf(key string) Type {
	if t, ok := c.Lookup(key); ok {
		return t.Type()
	}
	return EndType
}

// ContainsType returns whether key holds a tag
// of type t. AnyNumeric matches every numeric type.
func (c *Compound) ContainsType(key string, t Type) bool {
	got := c.TypeOf(key)
	if got == t {
		return got != EndType || c.Contains(key)
	}
	return t == AnyNumeric && got.IsNumeric()
}

// Keys returns the keys in iteration order.
func (c *Compound) Keys() []string {
	out := make([]string, len(c.fields))
	for i := range c.fields {
		out[i] = c.fields[i].Name
	}
	return out
}

// Fields appends the entries of the compound
// to dst and returns the result. The values
// are shared, not copied.
func (c *Compound) Fields(dst []Field) []Field {
	return append(dst, c.fields...)
}

// Each calls fn on each entry in iteration
// order until fn returns false.
func (c *Compound) Each(fn func(key string, t Tag) bool) {
	for i := range c.fields {
		if !fn(c.fields[i].Name, c.fields[i].Value) {
			return
		}
	}
}

// Merge copies every entry of src into c.
// Where both sides hold a compound under the
// same key the two are merged recursively;
// any other collision is overwritten with a
// deep copy of the incoming value.
func (c *Compound) Merge(src *Compound) *Compound {
	for i := range src.fields {
		key, val := src.fields[i].Name, src.fields[i].Value
		if sub, ok := val.(*Compound); ok {
			if dst, ok := c.Get(key).(*Compound); ok {
				dst.Merge(sub)
				continue
			}
		}
		c.Put(key, val.Copy())
	}
	return c
}

func (c *Compound) Encode(dst *Buffer) error {
	for i := range c.fields {
		f := &c.fields[i]
		if f.Value.Type() == EndType {
			// would terminate the compound early
			return atKey(errors.New("nbt: End tag stored in compound"), f.Name)
		}
		dst.WriteType(f.Value.Type())
		if err := dst.WriteString(f.Name); err != nil {
			return err
		}
		if err := f.Value.Encode(dst); err != nil {
			return atKey(err, f.Name)
		}
	}
	dst.WriteType(EndType)
	return nil
}

func (c *Compound) SizeInBytes() int {
	n := compoundCost
	for i := range c.fields {
		n += keyCost + 2*utf16Len(c.fields[i].Name) + entryCost
		n += c.fields[i].Value.SizeInBytes()
	}
	return n
}

func (c *Compound) Copy() Tag {
	out := &Compound{
		fields: make([]Field, len(c.fields)),
		index:  make(map[string]int, len(c.fields)),
	}
	for i := range c.fields {
		out.fields[i] = Field{Name: c.fields[i].Name, Value: c.fields[i].Value.Copy()}
		out.index[c.fields[i].Name] = i
	}
	return out
}

func (c *Compound) Accept(v Visitor) { v.VisitCompound(c) }

func (c *Compound) AcceptStream(v StreamVisitor) Result {
	for i := range c.fields {
		f := &c.fields[i]
		t := f.Value.Type()
		switch v.VisitEntry(t) {
		case Halt:
			return Halt
		case Break:
			return v.VisitContainerEnd()
		case Skip:
			continue
		}
		switch v.VisitEntryKey(t, f.Name) {
		case Halt:
			return Halt
		case Break:
			return v.VisitContainerEnd()
		case Skip:
			continue
		}
		switch f.Value.AcceptStream(v) {
		case Halt:
			return Halt
		case Break:
			return v.VisitContainerEnd()
		}
	}
	return v.VisitContainerEnd()
}

func (c *Compound) String() string { return ToString(c) }

func (c *Compound) equal(x Tag) bool {
	o, ok := x.(*Compound)
	if !ok || len(o.fields) != len(c.fields) {
		return false
	}
	for i := range c.fields {
		other, ok := o.Lookup(c.fields[i].Name)
		if !ok || !c.fields[i].Value.equal(other) {
			return false
		}
	}
	return true
}

func (c *Compound) PutByte(key string, v int8)      { c.Put(key, Byte(v)) }
func (c *Compound) PutShort(key string, v int16)    { c.Put(key, Short(v)) }
func (c *Compound) PutInt(key string, v int32)      { c.Put(key, Int(v)) }
func (c *Compound) PutLong(key string, v int64)     { c.Put(key, Long(v)) }
func (c *Compound) PutFloat(key string, v float32)  { c.Put(key, Float(v)) }
func (c *Compound) PutDouble(key string, v float64) { c.Put(key, Double(v)) }
func (c *Compound) PutString(key string, v string)  { c.Put(key, String(v)) }
func (c *Compound) PutBool(key string, v bool)      { c.Put(key, Bool(v)) }

// PutByteArray stores v under key;
// the compound takes ownership of v.
func (c *Compound) PutByteArray(key string, v []byte) { c.Put(key, NewByteArray(v)) }

func (c *Compound) PutIntArray(key string, v []int32) { c.Put(key, NewIntArray(v)) }

func (c *Compound) PutLongArray(key string, v []int64) { c.Put(key, NewLongArray(v)) }

// The getters below are lenient: a missing key
// or a value of an unrelated type yields the
// zero value or a new empty container and never
// an error. Numeric getters convert between
// numeric types.

func (c *Compound) numeric(key string) Numeric {
	n, _ := c.Get(key).(Numeric)
	return n
}

func (c *Compound) GetByte(key string) int8 {
	if n := c.numeric(key); n != nil {
		return n.AsByte()
	}
	return 0
}

func (c *Compound) GetShort(key string) int16 {
	if n := c.numeric(key); n != nil {
		return n.AsShort()
	}
	return 0
}

func (c *Compound) GetInt(key string) int32 {
	if n := c.numeric(key); n != nil {
		return n.AsInt()
	}
	return 0
}

func (c *Compound) GetLong(key string) int64 {
	if n := c.numeric(key); n != nil {
		return n.AsLong()
	}
	return 0
}

func (c *Compound) GetFloat(key string) float32 {
	if n := c.numeric(key); n != nil {
		return n.AsFloat()
	}
	return 0
}

func (c *Compound) GetDouble(key string) float64 {
	if n := c.numeric(key); n != nil {
		return n.AsDouble()
	}
	return 0
}

// GetBool returns GetByte(key) != 0.
func (c *Compound) GetBool(key string) bool { return c.GetByte(key) != 0 }

// GetString returns the contents of the String
// stored under key. Other types yield "".
func (c *Compound) GetString(key string) string {
	s, _ := c.Get(key).(String)
	return string(s)
}

func (c *Compound) GetByteArray(key string) []byte {
	if a, ok := c.Get(key).(*ByteArray); ok {
		return a.data
	}
	return []byte{}
}

func (c *Compound) GetIntArray(key string) []int32 {
	if a, ok := c.Get(key).(*IntArray); ok {
		return a.data
	}
	return []int32{}
}

func (c *Compound) GetLongArray(key string) []int64 {
	if a, ok := c.Get(key).(*LongArray); ok {
		return a.data
	}
	return []int64{}
}

// GetCompound returns the compound stored under
// key, or a new empty compound (which is not
// inserted into c).
func (c *Compound) GetCompound(key string) *Compound {
	if sub, ok := c.Get(key).(*Compound); ok {
		return sub
	}
	return NewCompound()
}

// GetList returns the list stored under key if
// its element type is elem (or it is empty).
// Otherwise it returns a new empty list.
func (c *Compound) GetList(key string, elem Type) *List {
	if l, ok := c.Get(key).(*List); ok {
		if l.Empty() || l.typ == elem {
			return l
		}
	}
	return NewList()
}
