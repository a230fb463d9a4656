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
	"regexp"
	"strconv"
	"strings"
)

// maxParseDepth bounds container nesting
// in SNBT text, like DefaultMaxDepth does
// for binary input.
const maxParseDepth = DefaultMaxDepth

// contextWidth is how much input
// a SyntaxError quotes.
const contextWidth = 10

// SyntaxError describes malformed SNBT text.
type SyntaxError struct {
	Msg   string
	Pos   int // byte offset into Input
	Input string
}

func (e *SyntaxError) Error() string {
	pos := e.Pos
	if pos > len(e.Input) {
		pos = len(e.Input)
	}
	var sb strings.Builder
	sb.WriteString(e.Msg)
	sb.WriteString(" at position ")
	sb.WriteString(strconv.Itoa(pos))
	sb.WriteString(": ")
	if pos > contextWidth {
		sb.WriteString("...")
	}
	start := pos - contextWidth
	if start < 0 {
		start = 0
	}
	sb.WriteString(e.Input[start:pos])
	sb.WriteString("<--[HERE]")
	return sb.String()
}

// unquoted literals are tried against these
// in order; the first match decides the type
var (
	floatPattern   = regexp.MustCompile(`(?i)^[-+]?(?:[0-9]+[.]?|[0-9]*[.][0-9]+)(?:e[-+]?[0-9]+)?f$`)
	bytePattern    = regexp.MustCompile(`(?i)^[-+]?(?:0|[1-9][0-9]*)b$`)
	longPattern    = regexp.MustCompile(`(?i)^[-+]?(?:0|[1-9][0-9]*)l$`)
	shortPattern   = regexp.MustCompile(`(?i)^[-+]?(?:0|[1-9][0-9]*)s$`)
	intPattern     = regexp.MustCompile(`^[-+]?(?:0|[1-9][0-9]*)$`)
	doublePattern  = regexp.MustCompile(`(?i)^[-+]?(?:[0-9]+[.]?|[0-9]*[.][0-9]+)(?:e[-+]?[0-9]+)?d$`)
	decimalPattern = regexp.MustCompile(`(?i)^[-+]?(?:[0-9]+[.]|[0-9]*[.][0-9]+)(?:e[-+]?[0-9]+)?$`)
)

// ParseSNBT parses a single SNBT value.
// Leading and trailing whitespace is allowed;
// anything else after the value is an error.
func ParseSNBT(s string) (Tag, error) {
	p := &parser{in: s}
	t, err := p.value()
	if err != nil {
		return nil, err
	}
	return t, p.end()
}

// ParseSNBTCompound is like ParseSNBT,
// but the value must be a compound.
func ParseSNBTCompound(s string) (*Compound, error) {
	p := &parser{in: s}
	c, err := p.compound()
	if err != nil {
		return nil, err
	}
	return c, p.end()
}

type parser struct {
	in    string
	pos   int
	depth int
}

func (p *parser) errorf(f string, args ...interface{}) error {
	return &SyntaxError{Msg: fmt.Sprintf(f, args...), Pos: p.pos, Input: p.in}
}

func (p *parser) canRead(n int) bool { return p.pos+n <= len(p.in) }
func (p *parser) peek() byte         { return p.in[p.pos] }

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x1f:
		return true
	}
	return false
}

func isQuote(c byte) bool { return c == '"' || c == '\'' }

func (p *parser) skipSpace() {
	for p.pos < len(p.in) && isSpace(p.in[p.pos]) {
		p.pos++
	}
}

func (p *parser) end() error {
	p.skipSpace()
	if p.canRead(1) {
		return p.errorf("Unexpected trailing data")
	}
	return nil
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if !p.canRead(1) || p.peek() != c {
		return p.errorf("Expected '%c'", c)
	}
	p.pos++
	return nil
}

// separator consumes a ',' and the
// whitespace around it, if present.
func (p *parser) separator() bool {
	p.skipSpace()
	if p.canRead(1) && p.peek() == ',' {
		p.pos++
		p.skipSpace()
		return true
	}
	return false
}

func (p *parser) push() error {
	if p.depth >= maxParseDepth {
		return p.errorf("Too deeply nested")
	}
	p.depth++
	return nil
}

func (p *parser) value() (Tag, error) {
	p.skipSpace()
	if !p.canRead(1) {
		return nil, p.errorf("Expected value")
	}
	switch p.peek() {
	case '{':
		return p.compound()
	case '[':
		return p.list()
	}
	return p.scalar()
}

func (p *parser) unquotedString() string {
	start := p.pos
	for p.pos < len(p.in) && unquoted(p.in[p.pos]) {
		p.pos++
	}
	return p.in[start:p.pos]
}

// quotedString reads a string starting with
// a quote; only the quote itself and the
// backslash may be escaped.
func (p *parser) quotedString() (string, error) {
	q := p.in[p.pos]
	p.pos++
	var sb strings.Builder
	escaped := false
	for p.pos < len(p.in) {
		c := p.in[p.pos]
		p.pos++
		switch {
		case escaped:
			if c != q && c != '\\' {
				p.pos--
				return "", p.errorf("Invalid escape sequence '\\%c' in quoted string", c)
			}
			sb.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == q:
			return sb.String(), nil
		default:
			sb.WriteByte(c)
		}
	}
	return "", p.errorf("Unclosed quoted string")
}

func (p *parser) scalar() (Tag, error) {
	p.skipSpace()
	start := p.pos
	if isQuote(p.peek()) {
		s, err := p.quotedString()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	}
	s := p.unquotedString()
	if s == "" {
		p.pos = start
		return nil, p.errorf("Expected value")
	}
	return literal(s), nil
}

// literal decides the type of an unquoted token.
// A token that looks numeric but does not fit
// its type is kept as a string.
func literal(s string) Tag {
	body := s[:len(s)-1]
	switch {
	case floatPattern.MatchString(s):
		if f, ok := parseFloat(body, 32); ok {
			return Float(f)
		}
	case bytePattern.MatchString(s):
		if v, err := strconv.ParseInt(body, 10, 8); err == nil {
			return Byte(v)
		}
	case longPattern.MatchString(s):
		if v, err := strconv.ParseInt(body, 10, 64); err == nil {
			return Long(v)
		}
	case shortPattern.MatchString(s):
		if v, err := strconv.ParseInt(body, 10, 16); err == nil {
			return Short(v)
		}
	case intPattern.MatchString(s):
		if v, err := strconv.ParseInt(s, 10, 32); err == nil {
			return Int(v)
		}
	case doublePattern.MatchString(s):
		if f, ok := parseFloat(body, 64); ok {
			return Double(f)
		}
	case decimalPattern.MatchString(s):
		if f, ok := parseFloat(s, 64); ok {
			return Double(f)
		}
	case strings.EqualFold(s, "true"):
		return Byte(1)
	case strings.EqualFold(s, "false"):
		return Byte(0)
	}
	return String(s)
}

// parseFloat accepts out-of-range values
// as infinities (or zero), like the JVM does.
func parseFloat(s string, bits int) (float64, bool) {
	f, err := strconv.ParseFloat(s, bits)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// key reads a compound key. A quoted key may
// be empty; an unquoted one may not.
func (p *parser) key() (string, error) {
	p.skipSpace()
	if !p.canRead(1) {
		return "", p.errorf("Expected key")
	}
	if isQuote(p.peek()) {
		return p.quotedString()
	}
	start := p.pos
	key := p.unquotedString()
	if key == "" {
		p.pos = start
		return "", p.errorf("Expected key")
	}
	return key, nil
}

func (p *parser) compound() (*Compound, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	if err := p.push(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()
	c := NewCompound()
	p.skipSpace()
	for p.canRead(1) && p.peek() != '}' {
		key, err := p.key()
		if err != nil {
			return nil, err
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		c.Put(key, v)
		if !p.separator() {
			break
		}
		if !p.canRead(1) {
			return nil, p.errorf("Expected key")
		}
	}
	if err := p.expect('}'); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *parser) list() (Tag, error) {
	if p.canRead(3) && !isQuote(p.in[p.pos+1]) && p.in[p.pos+2] == ';' {
		return p.array()
	}
	if err := p.expect('['); err != nil {
		return nil, err
	}
	if err := p.push(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()
	p.skipSpace()
	if !p.canRead(1) {
		return nil, p.errorf("Expected value")
	}
	l := NewList()
	for p.peek() != ']' {
		start := p.pos
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		if !l.Empty() && v.Type() != l.typ {
			p.pos = start
			return nil, p.errorf("Can't insert %s into list of %s", v.Type().PrettyName(), l.typ.PrettyName())
		}
		l.appendDecoded(v)
		if !p.separator() {
			break
		}
		if !p.canRead(1) {
			return nil, p.errorf("Expected value")
		}
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	return l, nil
}

func (p *parser) array() (Tag, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	start := p.pos
	kind := p.in[p.pos]
	p.pos += 2 // kind and ';'
	p.skipSpace()
	if !p.canRead(1) {
		return nil, p.errorf("Expected value")
	}
	var arr Collection
	switch kind {
	case 'B':
		arr = NewByteArray(nil)
	case 'I':
		arr = NewIntArray(nil)
	case 'L':
		arr = NewLongArray(nil)
	default:
		p.pos = start
		return nil, p.errorf("Invalid array type '%c'", kind)
	}
	for p.peek() != ']' {
		start := p.pos
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		if v.Type() != arr.ElementType() {
			p.pos = start
			return nil, p.errorf("Can't insert %s into %s", v.Type().PrettyName(), arr.Type().PrettyName())
		}
		arr.Add(v)
		if !p.separator() {
			break
		}
		if !p.canRead(1) {
			return nil, p.errorf("Expected value")
		}
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	return arr, nil
}
