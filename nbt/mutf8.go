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
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Strings are stored as "modified UTF-8":
// NUL is encoded in two bytes and characters
// outside the BMP are encoded as a surrogate
// pair of three-byte sequences.

// maxStringBytes is the largest encoded
// string that fits the u16 length prefix.
const maxStringBytes = 65535

// mutf8Len returns the encoded size of s.
func mutf8Len(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r >= 1 && r < 0x80:
			n++
		case r < 0x800:
			n += 2
		case r < 0x10000:
			n += 3
		default:
			n += 6
		}
	}
	return n
}

// utf16Len returns the length of s
// in UTF-16 code units, which is what
// the size accounting charges for.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func appendMUTF8(dst []byte, s string) []byte {
	for _, r := range s {
		switch {
		case r >= 1 && r < 0x80:
			dst = append(dst, byte(r))
		case r < 0x800:
			dst = append(dst, 0xc0|byte(r>>6), 0x80|byte(r&0x3f))
		case r < 0x10000:
			dst = append3(dst, r)
		default:
			hi, lo := utf16.EncodeRune(r)
			dst = append3(dst, hi)
			dst = append3(dst, lo)
		}
	}
	return dst
}

func append3(dst []byte, r rune) []byte {
	return append(dst, 0xe0|byte(r>>12), 0x80|byte((r>>6)&0x3f), 0x80|byte(r&0x3f))
}

// decodeMUTF8 decodes a modified UTF-8
// string. Unpaired surrogates are replaced
// with utf8.RuneError.
func decodeMUTF8(b []byte) (string, error) {
	ascii := true
	for _, c := range b {
		if c == 0 || c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b), nil
	}
	var sb strings.Builder
	sb.Grow(len(b))
	pending := rune(-1) // high surrogate awaiting its pair
	flush := func() {
		if pending >= 0 {
			sb.WriteRune(utf8.RuneError)
			pending = -1
		}
	}
	for i := 0; i < len(b); {
		c := b[i]
		var r rune
		switch {
		case c >= 1 && c < 0x80:
			r = rune(c)
			i++
		case c&0xe0 == 0xc0:
			if i+1 >= len(b) || b[i+1]&0xc0 != 0x80 {
				return "", badUTF(i)
			}
			r = rune(c&0x1f)<<6 | rune(b[i+1]&0x3f)
			i += 2
		case c&0xf0 == 0xe0:
			if i+2 >= len(b) || b[i+1]&0xc0 != 0x80 || b[i+2]&0xc0 != 0x80 {
				return "", badUTF(i)
			}
			r = rune(c&0x0f)<<12 | rune(b[i+1]&0x3f)<<6 | rune(b[i+2]&0x3f)
			i += 3
		default:
			return "", badUTF(i)
		}
		switch {
		case utf16.IsSurrogate(r) && r < 0xdc00:
			flush()
			pending = r
		case utf16.IsSurrogate(r):
			if pending >= 0 {
				sb.WriteRune(utf16.DecodeRune(pending, r))
				pending = -1
			} else {
				sb.WriteRune(utf8.RuneError)
			}
		default:
			flush()
			sb.WriteRune(r)
		}
	}
	flush()
	return sb.String(), nil
}

func badUTF(off int) error {
	return malformed("bad modified UTF-8 sequence at string offset %d", off)
}

// checkString returns the encoded size of s,
// or an error if s cannot be encoded.
// Invalid UTF-8 has no modified UTF-8 form.
func checkString(s string) (int, error) {
	if !utf8.ValidString(s) {
		return 0, ErrInvalidString
	}
	n := mutf8Len(s)
	if n > maxStringBytes {
		return 0, errStringTooLong(n)
	}
	return n, nil
}

func errStringTooLong(n int) error {
	return fmt.Errorf("nbt: encoded string too long: %d bytes", n)
}
