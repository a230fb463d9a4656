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
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// ToString returns the compact SNBT form of t.
// Compound keys are printed in sorted order,
// and ParseSNBT(ToString(t)) is equal to t.
func ToString(t Tag) string {
	var p printer
	t.Accept(&p)
	return p.sb.String()
}

// unquoted reports whether c may appear
// in an unquoted SNBT token.
func unquoted(c byte) bool {
	return c >= '0' && c <= '9' ||
		c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c == '_' || c == '-' || c == '.' || c == '+'
}

// needsQuote reports whether a compound
// key must be quoted to be read back.
func needsQuote(key string) bool {
	if key == "" {
		return true
	}
	for i := 0; i < len(key); i++ {
		if !unquoted(key[i]) {
			return true
		}
	}
	return false
}

// QuoteString returns s as a quoted SNBT string.
// The quote character is picked so that the first
// embedded quote does not need escaping: a string
// whose first quote is '"' is wrapped in single
// quotes and vice versa. Only backslashes and
// the chosen quote character are escaped.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte(' ') // replaced below
	var q byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			sb.WriteByte('\\')
		case '"', '\'':
			if q == 0 {
				if c == '"' {
					q = '\''
				} else {
					q = '"'
				}
			}
			if c == q {
				sb.WriteByte('\\')
			}
		}
		sb.WriteByte(c)
	}
	if q == 0 {
		q = '"'
	}
	sb.WriteByte(q)
	out := []byte(sb.String())
	out[0] = q
	return string(out)
}

func quoteKey(key string) string {
	if needsQuote(key) {
		return QuoteString(key)
	}
	return key
}

// formatFloat prints f the way the
// JVM's Float.toString and Double.toString
// do, so that output is stable across
// implementations of the format.
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		s := strconv.FormatFloat(f, 'f', -1, bits)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}
		return s
	}
	s := strconv.FormatFloat(f, 'e', -1, bits)
	mant, exp, _ := strings.Cut(s, "e")
	if !strings.ContainsRune(mant, '.') {
		mant += ".0"
	}
	neg := exp[0] == '-'
	exp = strings.TrimLeft(exp[1:], "0")
	if neg {
		exp = "-" + exp
	}
	return mant + "E" + exp
}

// sortedKeys returns the keys of c in
// the order the printers emit them.
func sortedKeys(c *Compound) []string {
	keys := c.Keys()
	slices.Sort(keys)
	return keys
}

// printer emits compact SNBT.
type printer struct {
	sb strings.Builder
}

func (p *printer) VisitEnd(End)         { p.sb.WriteString("END") }
func (p *printer) VisitString(s String) { p.sb.WriteString(QuoteString(string(s))) }

func (p *printer) VisitByte(b Byte) {
	p.sb.WriteString(strconv.Itoa(int(b)))
	p.sb.WriteByte('b')
}

func (p *printer) VisitShort(s Short) {
	p.sb.WriteString(strconv.Itoa(int(s)))
	p.sb.WriteByte('s')
}

func (p *printer) VisitInt(i Int) { p.sb.WriteString(strconv.Itoa(int(i))) }

func (p *printer) VisitLong(l Long) {
	p.sb.WriteString(strconv.FormatInt(int64(l), 10))
	p.sb.WriteByte('L')
}

func (p *printer) VisitFloat(f Float) {
	p.sb.WriteString(formatFloat(float64(f), 32))
	p.sb.WriteByte('f')
}

func (p *printer) VisitDouble(d Double) {
	p.sb.WriteString(formatFloat(float64(d), 64))
	p.sb.WriteByte('d')
}

func (p *printer) VisitByteArray(a *ByteArray) {
	p.sb.WriteString("[B;")
	for i, b := range a.data {
		if i != 0 {
			p.sb.WriteByte(',')
		}
		p.sb.WriteString(strconv.Itoa(int(int8(b))))
		p.sb.WriteByte('B')
	}
	p.sb.WriteByte(']')
}

func (p *printer) VisitIntArray(a *IntArray) {
	p.sb.WriteString("[I;")
	for i, v := range a.data {
		if i != 0 {
			p.sb.WriteByte(',')
		}
		p.sb.WriteString(strconv.Itoa(int(v)))
	}
	p.sb.WriteByte(']')
}

func (p *printer) VisitLongArray(a *LongArray) {
	p.sb.WriteString("[L;")
	for i, v := range a.data {
		if i != 0 {
			p.sb.WriteByte(',')
		}
		p.sb.WriteString(strconv.FormatInt(v, 10))
		p.sb.WriteByte('L')
	}
	p.sb.WriteByte(']')
}

func (p *printer) VisitList(l *List) {
	p.sb.WriteByte('[')
	for i := range l.elems {
		if i != 0 {
			p.sb.WriteByte(',')
		}
		l.elems[i].Accept(p)
	}
	p.sb.WriteByte(']')
}

func (p *printer) VisitCompound(c *Compound) {
	p.sb.WriteByte('{')
	for i, key := range sortedKeys(c) {
		if i != 0 {
			p.sb.WriteByte(',')
		}
		p.sb.WriteString(quoteKey(key))
		p.sb.WriteByte(':')
		c.Get(key).Accept(p)
	}
	p.sb.WriteByte('}')
}
