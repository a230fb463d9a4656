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
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/SnellerInc/tagtree/ints"
)

// readChunk bounds how much is allocated
// ahead of the bytes actually arriving.
const readChunk = 64 * 1024

// Reader is the byte source for the binary
// codec. It tracks the offset of the next
// byte so that callers can verify where a
// skip left the cursor.
type Reader struct {
	br  *bufio.Reader
	off int64
	tmp [8]byte
}

// NewReader returns a Reader for r.
// If r is already a *bufio.Reader it
// is used directly.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{br: br}
}

// Offset returns the number of bytes
// consumed so far.
func (r *Reader) Offset() int64 { return r.off }

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}

// ReadByte implements io.ByteReader
func (r *Reader) ReadByte() (byte, error) {
	c, err := r.br.ReadByte()
	if err != nil {
		return 0, truncated(err)
	}
	r.off++
	return c, nil
}

func (r *Reader) readType() (Type, error) {
	c, err := r.ReadByte()
	return Type(c), err
}

// fixed reads exactly n <= 8 bytes into r.tmp
func (r *Reader) fixed(n int) ([]byte, error) {
	b := r.tmp[:n]
	if _, err := io.ReadFull(r.br, b); err != nil {
		return nil, truncated(err)
	}
	r.off += int64(n)
	return b, nil
}

func (r *Reader) readInt16() (int16, error) {
	b, err := r.fixed(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

func (r *Reader) readInt32() (int32, error) {
	b, err := r.fixed(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (r *Reader) readInt64() (int64, error) {
	b, err := r.fixed(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (r *Reader) readFloat32() (float32, error) {
	v, err := r.readInt32()
	return math.Float32frombits(uint32(v)), err
}

func (r *Reader) readFloat64() (float64, error) {
	v, err := r.readInt64()
	return math.Float64frombits(uint64(v)), err
}

// readFull reads n bytes. Large reads
// grow the result as data arrives, so a
// lying length prefix on a short stream
// fails without a large allocation.
func (r *Reader) readFull(n int) ([]byte, error) {
	out := make([]byte, 0, ints.Min(n, readChunk))
	for len(out) < n {
		want := ints.Min(n-len(out), readChunk)
		start := len(out)
		if cap(out)-start < want {
			nb := make([]byte, start, ints.Min(n, 2*cap(out)+want))
			copy(nb, out)
			out = nb
		}
		out = out[:start+want]
		got, err := io.ReadFull(r.br, out[start:])
		r.off += int64(got)
		if err != nil {
			return nil, truncated(err)
		}
	}
	return out, nil
}

func (r *Reader) readString() (string, error) {
	n, err := r.readInt16()
	if err != nil {
		return "", err
	}
	b, err := r.readFull(int(uint16(n)))
	if err != nil {
		return "", err
	}
	return decodeMUTF8(b)
}

func (r *Reader) skipString() error {
	n, err := r.readInt16()
	if err != nil {
		return err
	}
	return r.skip(int64(uint16(n)))
}

func (r *Reader) readInt32s(n int) ([]int32, error) {
	out := make([]int32, 0, ints.Min(n, readChunk/4))
	for len(out) < n {
		v, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *Reader) readInt64s(n int) ([]int64, error) {
	out := make([]int64, 0, ints.Min(n, readChunk/8))
	for len(out) < n {
		v, err := r.readInt64()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// skip advances the cursor by n bytes.
func (r *Reader) skip(n int64) error {
	if n < 0 {
		return malformed("negative skip of %d bytes", n)
	}
	for n > 0 {
		chunk := int(ints.Min(n, math.MaxInt32))
		got, err := r.br.Discard(chunk)
		r.off += int64(got)
		n -= int64(got)
		if err != nil {
			return truncated(err)
		}
	}
	return nil
}

// readCount reads a non-negative int32 element count.
func (r *Reader) readCount() (int, error) {
	n, err := r.readInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, malformed("negative length %d", n)
	}
	return int(n), nil
}
