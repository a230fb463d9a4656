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
	"io"
	"math"
)

// Buffer accumulates encoded tags.
//
// The contents of Buffer can be
// inspected directly with Buffer.Bytes()
// or written to an io.Writer with
// Buffer.WriteTo.
type Buffer struct {
	buf []byte
}

// Bytes returns the encoded bytes.
// The slice aliases the buffer and is only
// valid until the next call to a Write method.
func (b *Buffer) Bytes() []byte { return b.buf }

// Size returns the number of encoded bytes.
func (b *Buffer) Size() int { return len(b.buf) }

// Reset empties the buffer, retaining its storage.
func (b *Buffer) Reset() { b.buf = b.buf[:0] }

// Set sets the buffer used by 'b'.
// Subsequent calls to Write* functions
// on 'b' will append to the given buffer.
func (b *Buffer) Set(p []byte) { b.buf = p }

// WriteTo implements io.WriterTo
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.buf)
	return int64(n), err
}

func (b *Buffer) grow(n int) []byte {
	start := len(b.buf)
	if cap(b.buf)-start < n {
		nb := make([]byte, start, 2*cap(b.buf)+n)
		copy(nb, b.buf)
		b.buf = nb
	}
	b.buf = b.buf[:start+n]
	return b.buf[start:]
}

// WriteType writes a tag discriminant.
func (b *Buffer) WriteType(t Type) { b.buf = append(b.buf, byte(t)) }

// WriteInt8 writes a single byte.
func (b *Buffer) WriteInt8(v int8) { b.buf = append(b.buf, byte(v)) }

// WriteInt16 writes a big-endian int16.
func (b *Buffer) WriteInt16(v int16) {
	binary.BigEndian.PutUint16(b.grow(2), uint16(v))
}

// WriteInt32 writes a big-endian int32.
func (b *Buffer) WriteInt32(v int32) {
	binary.BigEndian.PutUint32(b.grow(4), uint32(v))
}

// WriteInt64 writes a big-endian int64.
func (b *Buffer) WriteInt64(v int64) {
	binary.BigEndian.PutUint64(b.grow(8), uint64(v))
}

// WriteFloat32 writes the IEEE-754 bits of v.
func (b *Buffer) WriteFloat32(v float32) {
	binary.BigEndian.PutUint32(b.grow(4), math.Float32bits(v))
}

// WriteFloat64 writes the IEEE-754 bits of v.
func (b *Buffer) WriteFloat64(v float64) {
	binary.BigEndian.PutUint64(b.grow(8), math.Float64bits(v))
}

// WriteString writes s as a u16 length
// followed by its modified UTF-8 encoding.
// Strings that encode to more than
// 65535 bytes are rejected.
func (b *Buffer) WriteString(s string) error {
	n, err := checkString(s)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(b.grow(2), uint16(n))
	b.buf = appendMUTF8(b.buf, s)
	return nil
}

// WriteBytes writes an int32 count
// followed by the raw bytes.
func (b *Buffer) WriteBytes(p []byte) {
	b.WriteInt32(int32(len(p)))
	b.buf = append(b.buf, p...)
}

// WriteInt32s writes an int32 count
// followed by each element.
func (b *Buffer) WriteInt32s(v []int32) {
	b.WriteInt32(int32(len(v)))
	dst := b.grow(4 * len(v))
	for i := range v {
		binary.BigEndian.PutUint32(dst[4*i:], uint32(v[i]))
	}
}

// WriteInt64s writes an int32 count
// followed by each element.
func (b *Buffer) WriteInt64s(v []int64) {
	b.WriteInt32(int32(len(v)))
	dst := b.grow(8 * len(v))
	for i := range v {
		binary.BigEndian.PutUint64(dst[8*i:], uint64(v[i]))
	}
}
