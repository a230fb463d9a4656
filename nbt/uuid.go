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
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// UUIDs are stored as an IntArray of four
// big-endian words. Older documents store
// them as a pair of Longs named <key>Most
// and <key>Least; those are read but never
// written.

// UUIDTag returns the IntArray form of u.
func UUIDTag(u uuid.UUID) *IntArray {
	v := make([]int32, 4)
	for i := range v {
		v[i] = int32(binary.BigEndian.Uint32(u[4*i:]))
	}
	return NewIntArray(v)
}

// LoadUUID converts the IntArray form
// of a UUID back into a uuid.UUID.
func LoadUUID(t Tag) (uuid.UUID, error) {
	a, ok := t.(*IntArray)
	if !ok {
		return uuid.Nil, fmt.Errorf("nbt: expected UUID tag to be of type %s, but found %s", IntArrayType, t.Type())
	}
	if len(a.data) != 4 {
		return uuid.Nil, fmt.Errorf("nbt: expected UUID array to be of length 4, but found %d", len(a.data))
	}
	var u uuid.UUID
	for i, w := range a.data {
		binary.BigEndian.PutUint32(u[4*i:], uint32(w))
	}
	return u, nil
}

// PutUUID stores u under key.
func (c *Compound) PutUUID(key string, u uuid.UUID) { c.Put(key, UUIDTag(u)) }

// HasUUID returns whether a UUID is stored
// under key, in either the current or the
// legacy form.
func (c *Compound) HasUUID(key string) bool {
	if a, ok := c.Get(key).(*IntArray); ok && len(a.data) == 4 {
		return true
	}
	return c.ContainsType(key+"Most", AnyNumeric) && c.ContainsType(key+"Least", AnyNumeric)
}

// GetUUID returns the UUID stored under key,
// or uuid.Nil if there is none.
func (c *Compound) GetUUID(key string) uuid.UUID {
	if t := c.Get(key); t != nil {
		if u, err := LoadUUID(t); err == nil {
			return u
		}
	}
	if !c.HasUUID(key) {
		return uuid.Nil
	}
	var u uuid.UUID
	binary.BigEndian.PutUint64(u[:8], uint64(c.GetLong(key+"Most")))
	binary.BigEndian.PutUint64(u[8:], uint64(c.GetLong(key+"Least")))
	return u
}
