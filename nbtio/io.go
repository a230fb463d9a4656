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

// Package nbtio reads and writes whole NBT
// documents: compressed streams, the network
// framing, files, and a directory of documents
// kept with backups.
package nbtio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/SnellerInc/tagtree/compr"
	"github.com/SnellerInc/tagtree/nbt"
)

// Read decodes an uncompressed named-root document.
// The root must be a compound; any other root
// type is an error wrapping nbt.ErrMalformed.
func Read(r io.Reader, lim nbt.Limits) (string, *nbt.Compound, error) {
	return nbt.NewReader(r).ReadNamedCompound(nbt.NewAccounter(lim))
}

// Write writes root to w as an
// uncompressed named-root document.
func Write(w io.Writer, name string, root nbt.Tag) error {
	var b nbt.Buffer
	if err := b.WriteNamed(name, root); err != nil {
		return err
	}
	_, err := b.WriteTo(w)
	return err
}

// ReadNetwork decodes the network form of a
// document, which has no root name.
func ReadNetwork(r io.Reader, lim nbt.Limits) (nbt.Tag, error) {
	return nbt.NewReader(r).ReadUnnamed(nbt.NewAccounter(lim))
}

// WriteNetwork writes the network form of t.
func WriteNetwork(w io.Writer, t nbt.Tag) error {
	var b nbt.Buffer
	if err := b.WriteUnnamed(t); err != nil {
		return err
	}
	_, err := b.WriteTo(w)
	return err
}

// ReadCompressed decodes a named-root document
// that was compressed with c.
//
// Errors produced by the decompressor itself
// mean the stream is corrupt, and they wrap
// nbt.ErrMalformed. Errors from r are
// returned as they are.
func ReadCompressed(r io.Reader, c compr.Codec, lim nbt.Limits) (string, *nbt.Compound, error) {
	src := &srcReader{r: r}
	dec, err := c.NewReader(src)
	if err != nil {
		return "", nil, src.wrap(c, err)
	}
	defer dec.Close()
	return Read(&decReader{src: src, codec: c, r: dec}, lim)
}

// srcReader remembers the last error
// returned by the compressed source.
type srcReader struct {
	r   io.Reader
	err error
}

func (s *srcReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		s.err = err
	}
	return n, err
}

// wrap marks err as corruption unless
// it came from the source.
func (s *srcReader) wrap(c compr.Codec, err error) error {
	if s.err != nil || errors.Is(err, nbt.ErrMalformed) {
		return err
	}
	if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: %v", nbt.ErrTruncated, c.Name(), err)
	}
	return fmt.Errorf("%w: %s: %v", nbt.ErrMalformed, c.Name(), err)
}

type decReader struct {
	src   *srcReader
	codec compr.Codec
	r     io.Reader
}

func (d *decReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err != nil && err != io.EOF {
		err = d.src.wrap(d.codec, err)
	}
	return n, err
}

// WriteCompressed writes root to w as a
// named-root document compressed with c.
func WriteCompressed(w io.Writer, c compr.Codec, name string, root nbt.Tag) error {
	buf, err := Encode(c, name, root)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// Encode returns the named-root encoding
// of root compressed with c.
func Encode(c compr.Codec, name string, root nbt.Tag) ([]byte, error) {
	var b nbt.Buffer
	if err := b.WriteNamed(name, root); err != nil {
		return nil, err
	}
	if c == compr.None {
		return b.Bytes(), nil
	}
	return compr.Compress(c, b.Bytes(), nil)
}

// ReadAuto decodes a named-root document,
// detecting its compression from the first
// bytes of r. The detected codec is returned
// so that the document can be written back
// the same way.
func ReadAuto(r io.Reader, lim nbt.Limits) (string, *nbt.Compound, compr.Codec, error) {
	c, br, err := compr.DetectReader(r)
	if err != nil {
		return "", nil, nil, err
	}
	name, tag, err := ReadCompressed(br, c, lim)
	if err != nil {
		return "", nil, c, err
	}
	return name, tag, c, nil
}

// ReadFile reads the document stored at path,
// detecting its compression.
func ReadFile(path string, lim nbt.Limits) (string, *nbt.Compound, compr.Codec, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, nil, err
	}
	defer f.Close()
	name, tag, c, err := ReadAuto(f, lim)
	if err != nil {
		return "", nil, c, fmt.Errorf("nbtio: %s: %w", path, err)
	}
	return name, tag, c, nil
}

// WriteFile stores root at path compressed
// with c. The document is written to a
// temporary file in the same directory
// and renamed into place, so readers never
// observe a partial document.
func WriteFile(path string, c compr.Codec, name string, root nbt.Tag) error {
	buf, err := Encode(c, name, root)
	if err != nil {
		return err
	}
	return writeAtomic(path, buf)
}

func writeAtomic(path string, buf []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, base+".tmp*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(buf)
	if err == nil {
		err = tmp.Sync()
	}
	tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	err = os.Rename(tmp.Name(), path)
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
