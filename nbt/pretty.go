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
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// PrettyOptions configures Pretty.
//
// Paths name a container by the chain of
// compound keys and container markers leading
// to it from the root, joined with '.', where
// "{}" stands for a compound and "[]" for a
// list. For example "{}.blocks.[].{}" is any
// compound element of the list under the
// root key "blocks".
type PrettyOptions struct {
	// Indent is repeated once per nesting level.
	// An empty Indent prints everything on one line.
	Indent string `json:"indent"`
	// KeyOrder lists, per compound path, keys
	// that are printed first and in the given
	// order. Remaining keys follow sorted.
	KeyOrder map[string][]string `json:"key_order,omitempty"`
	// Inline lists container paths whose
	// contents are printed on a single line.
	Inline []string `json:"inline,omitempty"`
}

// DefaultPrettyOptions indents with four spaces.
var DefaultPrettyOptions = PrettyOptions{Indent: "    "}

// Pretty returns an indented SNBT rendering of t.
// The output parses back to the same tree.
func Pretty(t Tag, opts *PrettyOptions) string {
	if opts == nil {
		opts = &DefaultPrettyOptions
	}
	pp := &prettyPrinter{opts: opts, indent: opts.Indent}
	t.Accept(pp)
	return pp.sb.String()
}

type prettyPrinter struct {
	opts   *PrettyOptions
	sb     strings.Builder
	indent string
	depth  int
	path   []string
}

func (p *prettyPrinter) pathString() string { return strings.Join(p.path, ".") }

// child renders t one level deeper,
// sharing the path stack with p.
func (p *prettyPrinter) child(t Tag, indent string) {
	c := &prettyPrinter{opts: p.opts, indent: indent, depth: p.depth + 1, path: p.path}
	t.Accept(c)
	p.path = c.path
	p.sb.WriteString(c.sb.String())
}

func (p *prettyPrinter) containerIndent() string {
	if slices.Contains(p.opts.Inline, p.pathString()) {
		return ""
	}
	return p.indent
}

func (p *prettyPrinter) separator(indent string) {
	p.sb.WriteByte(',')
	if indent == "" {
		p.sb.WriteByte(' ')
	} else {
		p.sb.WriteByte('\n')
	}
}

func (p *prettyPrinter) VisitEnd(End)         { p.sb.WriteString("END") }
func (p *prettyPrinter) VisitString(s String) { p.sb.WriteString(QuoteString(string(s))) }
func (p *prettyPrinter) VisitByte(b Byte)     { p.sb.WriteString(strconv.Itoa(int(b)) + "b") }
func (p *prettyPrinter) VisitShort(s Short)   { p.sb.WriteString(strconv.Itoa(int(s)) + "s") }
func (p *prettyPrinter) VisitInt(i Int)       { p.sb.WriteString(strconv.Itoa(int(i))) }
func (p *prettyPrinter) VisitLong(l Long)     { p.sb.WriteString(strconv.FormatInt(int64(l), 10) + "L") }
func (p *prettyPrinter) VisitFloat(f Float)   { p.sb.WriteString(formatFloat(float64(f), 32) + "f") }
func (p *prettyPrinter) VisitDouble(d Double) { p.sb.WriteString(formatFloat(float64(d), 64) + "d") }

// arrays always print on one line:
// "[I; 1, 2, 3]"
func (p *prettyPrinter) array(kind string, n int, elem func(i int) string) {
	p.sb.WriteByte('[')
	p.sb.WriteString(kind)
	p.sb.WriteByte(';')
	for i := 0; i < n; i++ {
		p.sb.WriteByte(' ')
		p.sb.WriteString(elem(i))
		if i != n-1 {
			p.sb.WriteByte(',')
		}
	}
	p.sb.WriteByte(']')
}

func (p *prettyPrinter) VisitByteArray(a *ByteArray) {
	p.array("B", len(a.data), func(i int) string { return strconv.Itoa(int(int8(a.data[i]))) + "B" })
}

func (p *prettyPrinter) VisitIntArray(a *IntArray) {
	p.array("I", len(a.data), func(i int) string { return strconv.Itoa(int(a.data[i])) })
}

func (p *prettyPrinter) VisitLongArray(a *LongArray) {
	p.array("L", len(a.data), func(i int) string { return strconv.FormatInt(a.data[i], 10) + "L" })
}

func (p *prettyPrinter) VisitList(l *List) {
	if l.Empty() {
		p.sb.WriteString("[]")
		return
	}
	p.path = append(p.path, "[]")
	indent := p.containerIndent()
	p.sb.WriteByte('[')
	if indent != "" {
		p.sb.WriteByte('\n')
	}
	for i := range l.elems {
		p.sb.WriteString(strings.Repeat(indent, p.depth+1))
		p.child(l.elems[i], indent)
		if i != len(l.elems)-1 {
			p.separator(indent)
		}
	}
	if indent != "" {
		p.sb.WriteByte('\n')
		p.sb.WriteString(strings.Repeat(indent, p.depth))
	}
	p.sb.WriteByte(']')
	p.path = p.path[:len(p.path)-1]
}

func (p *prettyPrinter) VisitCompound(c *Compound) {
	if c.Empty() {
		p.sb.WriteString("{}")
		return
	}
	p.path = append(p.path, "{}")
	indent := p.containerIndent()
	p.sb.WriteByte('{')
	if indent != "" {
		p.sb.WriteByte('\n')
	}
	keys := p.orderedKeys(c)
	for i, key := range keys {
		p.path = append(p.path, key)
		p.sb.WriteString(strings.Repeat(indent, p.depth+1))
		p.sb.WriteString(quoteKey(key))
		p.sb.WriteString(": ")
		p.child(c.Get(key), indent)
		p.path = p.path[:len(p.path)-1]
		if i != len(keys)-1 {
			p.separator(indent)
		}
	}
	if indent != "" {
		p.sb.WriteByte('\n')
		p.sb.WriteString(strings.Repeat(indent, p.depth))
	}
	p.sb.WriteByte('}')
	p.path = p.path[:len(p.path)-1]
}

func (p *prettyPrinter) orderedKeys(c *Compound) []string {
	first := p.opts.KeyOrder[p.pathString()]
	if len(first) == 0 {
		return sortedKeys(c)
	}
	out := make([]string, 0, c.Len())
	seen := make(map[string]bool, len(first))
	for _, k := range first {
		if c.Contains(k) && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	for _, k := range sortedKeys(c) {
		if !seen[k] {
			out = append(out, k)
		}
	}
	return out
}
