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
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// wrapperKey is the key of the single-entry
// compound used to store a value of the "wrong"
// type inside a list converted from JSON.
const wrapperKey = ""

// AppendJSON appends the JSON form of t to dst.
//
// Numbers become JSON numbers (non-finite
// floating point values become null), arrays
// become JSON arrays and compounds become objects
// with their keys in insertion order. List
// elements that are single-entry compounds keyed
// by "" are unwrapped, undoing the wrapping
// performed by FromJSON for mixed arrays.
func AppendJSON(dst []byte, t Tag) []byte {
	switch t := t.(type) {
	case End:
		return append(dst, "null"...)
	case Byte:
		return strconv.AppendInt(dst, int64(t), 10)
	case Short:
		return strconv.AppendInt(dst, int64(t), 10)
	case Int:
		return strconv.AppendInt(dst, int64(t), 10)
	case Long:
		return strconv.AppendInt(dst, int64(t), 10)
	case Float:
		return appendJSONFloat(dst, float64(t), 32)
	case Double:
		return appendJSONFloat(dst, float64(t), 64)
	case String:
		return appendJSONString(dst, string(t))
	case *ByteArray:
		dst = append(dst, '[')
		for i, b := range t.data {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = strconv.AppendInt(dst, int64(int8(b)), 10)
		}
		return append(dst, ']')
	case *IntArray:
		dst = append(dst, '[')
		for i, v := range t.data {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = strconv.AppendInt(dst, int64(v), 10)
		}
		return append(dst, ']')
	case *LongArray:
		dst = append(dst, '[')
		for i, v := range t.data {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = strconv.AppendInt(dst, v, 10)
		}
		return append(dst, ']')
	case *List:
		dst = append(dst, '[')
		for i, e := range t.elems {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendJSON(dst, unwrap(e))
		}
		return append(dst, ']')
	case *Compound:
		dst = append(dst, '{')
		for i := range t.fields {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendJSONString(dst, t.fields[i].Name)
			dst = append(dst, ':')
			dst = AppendJSON(dst, t.fields[i].Value)
		}
		return append(dst, '}')
	}
	panic(fmt.Sprintf("nbt.AppendJSON: unexpected tag %T", t))
}

// ToJSON writes the JSON form of t to w.
func ToJSON(w io.Writer, t Tag) error {
	_, err := w.Write(AppendJSON(nil, t))
	return err
}

func appendJSONFloat(dst []byte, f float64, bits int) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(dst, "null"...)
	}
	return strconv.AppendFloat(dst, f, 'g', -1, bits)
}

func appendJSONString(dst []byte, s string) []byte {
	buf, err := json.Marshal(s)
	if err != nil {
		// strings always marshal
		panic(err)
	}
	return append(dst, buf...)
}

func isWrapper(c *Compound) bool {
	return c.Len() == 1 && c.Contains(wrapperKey)
}

func unwrap(t Tag) Tag {
	if c, ok := t.(*Compound); ok && isWrapper(c) {
		return c.Get(wrapperKey)
	}
	return t
}

// wrap prepares t for insertion into a list
// of compounds.
func wrap(t Tag) Tag {
	if c, ok := t.(*Compound); ok && !isWrapper(c) {
		return c
	}
	return CompoundOf(Field{Name: wrapperKey, Value: t})
}

// errJSON is wrapped by every error
// produced by FromJSON for well-formed
// JSON that has no tag representation.
var errJSON = errors.New("nbt: cannot convert JSON")

// FromJSON reads one JSON value from r
// and converts it into a tag.
//
// Objects become compounds, strings become
// String and booleans become Byte 0 or 1.
// Integral numbers become Int when they fit in
// 32 bits and Long when they fit in 64; every
// other number becomes a Double. Arrays whose
// elements all convert to the same type become a
// List of that type. Mixed arrays become a list
// of compounds in which every element that is not
// already a compound is wrapped in a single-entry
// compound keyed by "". A null becomes End at the
// top level and is dropped from objects; null
// array elements are rejected.
func FromJSON(r io.Reader) (Tag, error) {
	d := json.NewDecoder(bufio.NewReader(r))
	d.UseNumber()
	jd := jsonDecoder{dec: d}
	t, err := jd.value()
	if err != nil {
		return nil, err
	}
	if t == nil {
		return End{}, nil
	}
	return t, nil
}

type jsonDecoder struct {
	dec   *json.Decoder
	depth int
}

// value decodes the next value;
// a nil Tag means null
func (d *jsonDecoder) value() (Tag, error) {
	tok, err := d.dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch tok := tok.(type) {
	case json.Delim:
		if d.depth >= maxParseDepth {
			return nil, fmt.Errorf("%w: nested deeper than %d", errJSON, maxParseDepth)
		}
		d.depth++
		defer func() { d.depth-- }()
		switch tok {
		case '{':
			return d.object()
		case '[':
			return d.array()
		}
		return nil, fmt.Errorf("%w: unexpected %q", errJSON, tok)
	case json.Number:
		return jsonNumber(tok)
	case string:
		return String(tok), nil
	case bool:
		return Bool(tok), nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: unexpected token %v", errJSON, tok)
}

func jsonNumber(n json.Number) (Tag, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		if i >= math.MinInt32 && i <= math.MaxInt32 {
			return Int(i), nil
		}
		return Long(i), nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, fmt.Errorf("%w: number %s", errJSON, n)
	}
	return Double(f), nil
}

func (d *jsonDecoder) object() (Tag, error) {
	c := NewCompound()
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key %v", errJSON, tok)
		}
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		if v != nil {
			c.Put(key, v)
		}
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, err
	}
	return c, nil
}

func (d *jsonDecoder) array() (Tag, error) {
	var elems []Tag
	mixed := false
	for d.dec.More() {
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, fmt.Errorf("%w: null array element %d", errJSON, len(elems))
		}
		if len(elems) > 0 && v.Type() != elems[0].Type() {
			mixed = true
		}
		elems = append(elems, v)
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, err
	}
	l := NewList()
	for _, e := range elems {
		if mixed {
			e = wrap(e)
		}
		if err := l.Add(e); err != nil {
			return nil, err
		}
	}
	return l, nil
}
