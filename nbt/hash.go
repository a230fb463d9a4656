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
	"github.com/dchest/siphash"
	"golang.org/x/crypto/blake2b"
)

// default siphash key
const (
	hashK0 = 0x736e656c6c657221
	hashK1 = 0x6e62742d74616773
)

// Hash returns a 64-bit hash of t that is
// consistent with Equal: equal trees hash
// equally, regardless of compound key order.
func Hash(t Tag) uint64 {
	return HashWithKey(t, hashK0, hashK1)
}

// HashWithKey is like Hash with a
// caller-chosen siphash key.
func HashWithKey(t Tag, k0, k1 uint64) uint64 {
	return siphash.Hash(k0, k1, Canonical(t))
}

// Fingerprint returns a BLAKE2b-256 digest of
// the canonical encoding of t. Unlike Hash it
// is suitable for detecting changes to
// documents across processes and machines.
func Fingerprint(t Tag) [32]byte {
	return blake2b.Sum256(Canonical(t))
}

// Canonical returns an encoding of t in which
// Equal trees have identical bytes. It resembles
// the wire format, but compound keys are sorted,
// strings carry a 32-bit length, empty lists have
// no element type and negative zero is written
// as zero. It cannot be decoded.
func Canonical(t Tag) []byte {
	var b Buffer
	b.WriteType(t.Type())
	canonical(&b, t)
	return b.Bytes()
}

func canonicalString(dst *Buffer, s string) {
	dst.WriteInt32(int32(len(s)))
	dst.buf = append(dst.buf, s...)
}

func canonical(dst *Buffer, t Tag) {
	switch t := t.(type) {
	case Float:
		if t == 0 {
			t = 0 // drop the sign of -0
		}
		dst.WriteFloat32(float32(t))
	case Double:
		if t == 0 {
			t = 0
		}
		dst.WriteFloat64(float64(t))
	case String:
		canonicalString(dst, string(t))
	case *List:
		typ := EndType
		if len(t.elems) > 0 {
			typ = t.typ
		}
		dst.WriteType(typ)
		dst.WriteInt32(int32(len(t.elems)))
		for i := range t.elems {
			canonical(dst, t.elems[i])
		}
	case *Compound:
		dst.WriteInt32(int32(t.Len()))
		for _, k := range sortedKeys(t) {
			v := t.Get(k)
			dst.WriteType(v.Type())
			canonicalString(dst, k)
			canonical(dst, v)
		}
	default:
		// fixed layouts are already canonical
		t.Encode(dst)
	}
}
