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

// Package compr provides a unified interface wrapping
// third-party compression libraries.
//
// Every codec is a stream format, so a compressed
// document can be decoded without knowing its
// decompressed size up front.
package compr

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"runtime"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec describes a stream compression algorithm.
type Codec interface {
	// Name is the name of the compression algorithm.
	// Lookup(c.Name()) returns a codec equivalent to c.
	Name() string
	// NewWriter returns a writer that compresses
	// into w. The compressed stream is only complete
	// once the returned writer has been closed.
	// Closing it does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
	// NewReader returns a reader that decompresses r.
	// Closing it does not close r.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// magic numbers for Detect
var (
	gzipMagic   = []byte{0x1f, 0x8b}
	zstdMagic   = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic    = []byte{0x04, 0x22, 0x4d, 0x18}
	s2Magic     = []byte("\xff\x06\x00\x00S2sTwO")
	snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")
)

// MagicLen is the number of leading bytes
// Detect needs to identify every codec.
const MagicLen = 10

type none struct{}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func (none) Name() string { return "none" }

func (none) NewWriter(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil }

func (none) NewReader(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(r), nil }

type gzipCodec struct {
	level int
}

func (gzipCodec) Name() string { return "gzip" }

func (g gzipCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, g.level)
}

func (gzipCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

type zlibCodec struct {
	level int
}

func (zlibCodec) Name() string { return "zlib" }

func (z zlibCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zlib.NewWriterLevel(w, z.level)
}

func (zlibCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return zlib.NewReader(r)
}

type zstdCodec struct {
	level zstd.EncoderLevel
}

func (zstdCodec) Name() string { return "zstd" }

func (z zstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(z.level),
		zstd.WithEncoderConcurrency(1))
}

func (zstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}

type s2Codec struct{}

func (s2Codec) Name() string { return "s2" }

func (s2Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return s2.NewWriter(w, s2.WriterConcurrency(1)), nil
}

// the s2 reader also accepts framed snappy streams
func (s2Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(s2.NewReader(r)), nil
}

type lz4Codec struct{}

func (lz4Codec) Name() string { return "lz4" }

func (lz4Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

func (lz4Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

// None is the identity codec.
var None Codec = none{}

var codecs = []Codec{
	none{},
	gzipCodec{level: gzip.DefaultCompression},
	zlibCodec{level: zlib.DefaultCompression},
	zstdCodec{level: zstd.SpeedDefault},
	s2Codec{},
	lz4Codec{},
}

// Names returns the names of the supported
// codecs, in the order Lookup knows them.
func Names() []string {
	out := make([]string, len(codecs))
	for i := range codecs {
		out[i] = codecs[i].Name()
	}
	return out
}

// Lookup selects a compression algorithm by name.
// The returned Codec will return the same value
// for Codec.Name as the specified name, with the
// exception of "zstd-better" and "gzip-best", which
// return the zstd and gzip codecs at a higher level.
// The empty string selects None.
func Lookup(name string) (Codec, error) {
	switch name {
	case "":
		return None, nil
	case "zstd-better":
		return zstdCodec{level: zstd.SpeedBetterCompression}, nil
	case "gzip-best":
		return gzipCodec{level: gzip.BestCompression}, nil
	}
	for i := range codecs {
		if codecs[i].Name() == name {
			return codecs[i], nil
		}
	}
	return nil, fmt.Errorf("compr: unknown compression %q", name)
}

// Detect identifies the codec that produced a
// stream starting with prefix. Streams that do
// not start with a known magic number are
// assumed to be uncompressed, in which case
// Detect returns None.
func Detect(prefix []byte) Codec {
	switch {
	case bytes.HasPrefix(prefix, gzipMagic):
		return codecs[1]
	case bytes.HasPrefix(prefix, zstdMagic):
		return codecs[3]
	case bytes.HasPrefix(prefix, s2Magic), bytes.HasPrefix(prefix, snappyMagic):
		return codecs[4]
	case bytes.HasPrefix(prefix, lz4Magic):
		return codecs[5]
	case isZlib(prefix):
		return codecs[2]
	}
	return None
}

// isZlib checks the two byte zlib header:
// deflate with a window of at most 32k,
// no preset dictionary and a valid check.
func isZlib(p []byte) bool {
	if len(p) < 2 {
		return false
	}
	cmf, flg := p[0], p[1]
	return cmf&0x0f == 8 && cmf>>4 <= 7 &&
		flg&0x20 == 0 && (uint(cmf)<<8|uint(flg))%31 == 0
}

// DetectReader peeks at the start of r and returns
// the codec that produced it along with a reader
// that yields the whole stream, peeked bytes included.
func DetectReader(r io.Reader) (Codec, io.Reader, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	prefix, err := br.Peek(MagicLen)
	if err != nil && err != io.EOF {
		return nil, nil, err
	}
	return Detect(prefix), br, nil
}

// Compress appends the compressed form
// of src to dst and returns the result.
func Compress(c Codec, src, dst []byte) ([]byte, error) {
	if c, ok := c.(zstdCodec); ok && c.level == zstd.SpeedDefault {
		return zstdEncoder.EncodeAll(src, dst), nil
	}
	buf := bytes.NewBuffer(dst)
	w, err := c.NewWriter(buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress detects the compression of src and
// returns its decompressed contents. At most limit
// decompressed bytes are produced; a larger stream
// is an error. A limit <= 0 means no limit.
func Decompress(src []byte, limit int64) ([]byte, error) {
	c := Detect(src)
	if c == None {
		if limit > 0 && int64(len(src)) > limit {
			return nil, fmt.Errorf("compr: %d bytes exceed the limit of %d", len(src), limit)
		}
		return src, nil
	}
	if _, ok := c.(zstdCodec); ok && limit <= 0 {
		return DecodeZstd(src, nil)
	}
	r, err := c.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("compr: %s: %w", c.Name(), err)
	}
	defer r.Close()
	var in io.Reader = r
	if limit > 0 {
		in = io.LimitReader(r, limit+1)
	}
	out, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("compr: %s: %w", c.Name(), err)
	}
	if limit > 0 && int64(len(out)) > limit {
		return nil, fmt.Errorf("compr: %s: output exceeds the limit of %d bytes", c.Name(), limit)
	}
	return out, nil
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	// by default, concurrency is set to min(4, GOMAXPROCS);
	// we'd like it to *always* be GOMAXPROCS
	z, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		panic(err)
	}
	zstdDecoder = z
	e, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		panic(err)
	}
	zstdEncoder = e
}

// DecodeZstd calls DecodeAll on the global zstd
// decoder.
//
// See: (*zstd.Decoder).DecodeAll
func DecodeZstd(src, dst []byte) ([]byte, error) {
	return zstdDecoder.DecodeAll(src, dst)
}
