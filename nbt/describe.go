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
	"strconv"
	"strings"

	"github.com/SnellerInc/tagtree/ints"
)

// Describe returns a diagnostic dump of t
// showing the type and size of every container.
// Array contents are printed as hex words only
// when arrays is set. The output is not SNBT.
func Describe(t Tag, arrays bool) string {
	d := describer{arrays: arrays}
	d.tag(t, 0)
	return d.sb.String()
}

type describer struct {
	sb     strings.Builder
	arrays bool
	// start of the current line
	line int
}

func (d *describer) write(s string) {
	d.sb.WriteString(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		d.line = d.sb.Len() - len(s) + i + 1
	}
}

// indent pads the current line
// to column 2*level.
func (d *describer) indent(level int) {
	col := d.sb.Len() - d.line
	for i := col; i < 2*level; i++ {
		d.sb.WriteByte(' ')
	}
}

func (d *describer) tag(t Tag, level int) {
	switch t := t.(type) {
	case End:
	case *ByteArray:
		d.words("byte", level, len(t.data), 2, func(i int) uint64 { return uint64(t.data[i]) })
	case *IntArray:
		width := 0
		for _, v := range t.data {
			width = ints.Max(width, len(strconv.FormatUint(uint64(uint32(v)), 16)))
		}
		d.words("int", level, len(t.data), width, func(i int) uint64 { return uint64(uint32(t.data[i])) })
	case *LongArray:
		width := 0
		for _, v := range t.data {
			width = ints.Max(width, len(strconv.FormatUint(uint64(v), 16)))
		}
		d.words("long", level, len(t.data), width, func(i int) uint64 { return uint64(t.data[i]) })
	case *List:
		d.list(t, level)
	case *Compound:
		d.compound(t, level)
	default:
		d.write(t.String())
	}
}

func (d *describer) words(kind string, level, n, width int, word func(i int) uint64) {
	d.indent(level)
	d.write(fmt.Sprintf("%s[%d] {\n", kind, n))
	if d.arrays {
		d.indent(level + 1)
		for i := 0; i < n; i++ {
			if i != 0 {
				d.write(",")
			}
			if i%16 == 0 && i > 0 {
				d.write("\n")
				d.indent(level + 1)
			} else if i != 0 {
				d.write(" ")
			}
			d.write(fmt.Sprintf("0x%0*X", width, word(i)))
		}
	} else {
		d.indent(level + 1)
		d.write(" // Skipped, supply withBinaryBlobs true")
	}
	d.write("\n")
	d.indent(level)
	d.write("}")
}

func (d *describer) list(l *List, level int) {
	elem := "undefined"
	if l.typ != EndType {
		elem = l.typ.PrettyName()
	}
	d.indent(level)
	d.write(fmt.Sprintf("list<%s>[%d] [", elem, len(l.elems)))
	if len(l.elems) != 0 {
		d.write("\n")
	}
	for i := range l.elems {
		if i != 0 {
			d.write(",\n")
		}
		d.indent(level + 1)
		d.tag(l.elems[i], level+1)
	}
	if len(l.elems) != 0 {
		d.write("\n")
	}
	d.indent(level)
	d.write("]")
}

func (d *describer) compound(c *Compound, level int) {
	keys := sortedKeys(c)
	d.indent(level)
	d.write("{")
	if d.sb.Len()-d.line+1 > 2*(level+1) {
		d.write("\n")
		d.indent(level + 1)
	}
	width := 0
	for _, k := range keys {
		width = ints.Max(width, len(k))
	}
	for i, k := range keys {
		if i != 0 {
			d.write(",\n")
		}
		d.indent(level + 1)
		d.write(`"` + k + `"` + strings.Repeat(" ", width-len(k)) + ": ")
		d.tag(c.Get(k), level+1)
	}
	if len(keys) != 0 {
		d.write("\n")
	}
	d.indent(level)
	d.write("}")
}
