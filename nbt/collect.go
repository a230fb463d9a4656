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
	"golang.org/x/exp/slices"
)

// Collector is a StreamVisitor that builds
// the tree it is shown. Visiting a document
// with a bare Collector yields the same tree
// as decoding it with Reader.ReadNamed.
//
// Collector is meant to be embedded by
// visitors that select what to collect.
type Collector struct {
	root  Tag
	sinks []func(Tag)
	key   string
}

var _ StreamVisitor = &Collector{}

// Result returns the collected root,
// or nil if nothing was collected.
func (c *Collector) Result() Tag { return c.root }

// Depth returns the number of
// containers currently open.
func (c *Collector) Depth() int { return len(c.sinks) }

func (c *Collector) add(t Tag) Result {
	c.sinks[len(c.sinks)-1](t)
	return Continue
}

// enter creates the container that the
// next value will be decoded into.
func (c *Collector) enter(t Type) {
	switch t {
	case ListType:
		l := NewList()
		c.add(l)
		c.sinks = append(c.sinks, l.appendDecoded)
	case CompoundType:
		m := NewCompound()
		c.add(m)
		c.sinks = append(c.sinks, func(t Tag) { m.Put(c.key, t) })
	}
}

// appendDecoded adds an element whose type
// the decoder has already checked.
func (l *List) appendDecoded(t Tag) {
	l.elems = append(l.elems, t)
	l.typ = t.Type()
}

func (c *Collector) VisitEnd() Result             { return c.add(End{}) }
func (c *Collector) VisitByte(v int8) Result      { return c.add(Byte(v)) }
func (c *Collector) VisitShort(v int16) Result    { return c.add(Short(v)) }
func (c *Collector) VisitInt(v int32) Result      { return c.add(Int(v)) }
func (c *Collector) VisitLong(v int64) Result     { return c.add(Long(v)) }
func (c *Collector) VisitFloat(v float32) Result  { return c.add(Float(v)) }
func (c *Collector) VisitDouble(v float64) Result { return c.add(Double(v)) }
func (c *Collector) VisitString(s string) Result  { return c.add(String(s)) }

func (c *Collector) VisitByteArray(b []byte) Result {
	return c.add(NewByteArray(slices.Clone(b)))
}

func (c *Collector) VisitIntArray(v []int32) Result {
	return c.add(NewIntArray(slices.Clone(v)))
}

func (c *Collector) VisitLongArray(v []int64) Result {
	return c.add(NewLongArray(slices.Clone(v)))
}

func (c *Collector) VisitList(Type, int) Result { return Continue }
func (c *Collector) VisitEntry(Type) Result     { return Continue }

func (c *Collector) VisitElement(t Type, _ int) Result {
	c.enter(t)
	return Continue
}

func (c *Collector) VisitEntryKey(t Type, key string) Result {
	c.key = key
	c.enter(t)
	return Continue
}

func (c *Collector) VisitContainerEnd() Result {
	c.sinks = c.sinks[:len(c.sinks)-1]
	return Continue
}

func (c *Collector) VisitRootEntry(t Type) Result {
	switch t {
	case ListType:
		l := NewList()
		c.root = l
		c.sinks = append(c.sinks, l.appendDecoded)
	case CompoundType:
		m := NewCompound()
		c.root = m
		c.sinks = append(c.sinks, func(t Tag) { m.Put(c.key, t) })
	default:
		c.sinks = append(c.sinks, func(t Tag) { c.root = t })
	}
	return Continue
}

// FieldSelector names a typed field
// nested inside compounds.
type FieldSelector struct {
	// Path holds the keys of the
	// enclosing compounds below the root.
	Path []string
	Type Type
	Name string
}

// Select returns the selector for the field
// reached by following keys from the root.
// The last key is the field name.
func Select(t Type, keys ...string) FieldSelector {
	if len(keys) == 0 {
		panic("nbt.Select: no field name")
	}
	return FieldSelector{
		Path: keys[:len(keys)-1],
		Type: t,
		Name: keys[len(keys)-1],
	}
}

// fieldTree holds the selectors that apply
// at one compound depth (the root is depth 1).
type fieldTree struct {
	depth    int
	selected map[string]Type
	recurse  map[string]*fieldTree
}

func newFieldTree(depth int) *fieldTree {
	return &fieldTree{
		depth:    depth,
		selected: make(map[string]Type),
		recurse:  make(map[string]*fieldTree),
	}
}

func (f *fieldTree) add(sel *FieldSelector) {
	if f.depth > len(sel.Path) {
		f.selected[sel.Name] = sel.Type
		return
	}
	key := sel.Path[f.depth-1]
	sub := f.recurse[key]
	if sub == nil {
		sub = newFieldTree(f.depth + 1)
		f.recurse[key] = sub
	}
	sub.add(sel)
}

func (f *fieldTree) isSelected(t Type, name string) bool {
	got, ok := f.selected[name]
	return ok && got == t
}

// FieldCollector collects only the selected
// fields of a compound document (plus the
// compounds that lead to them) and stops
// decoding as soon as all of them were seen.
type FieldCollector struct {
	Collector
	missing int
	wanted  map[Type]bool
	trees   []*fieldTree
}

// CollectFields returns a FieldCollector
// for the given selectors.
func CollectFields(sel ...FieldSelector) *FieldCollector {
	root := newFieldTree(1)
	wanted := map[Type]bool{CompoundType: true}
	for i := range sel {
		root.add(&sel[i])
		wanted[sel[i].Type] = true
	}
	return &FieldCollector{
		missing: len(sel),
		wanted:  wanted,
		trees:   []*fieldTree{root},
	}
}

// Missing returns how many selected
// fields have not been found.
func (f *FieldCollector) Missing() int { return f.missing }

func (f *FieldCollector) top() *fieldTree { return f.trees[len(f.trees)-1] }

func (f *FieldCollector) VisitRootEntry(t Type) Result {
	if t != CompoundType {
		return Halt
	}
	return f.Collector.VisitRootEntry(t)
}

func (f *FieldCollector) VisitEntry(t Type) Result {
	if f.Depth() > f.top().depth {
		return f.Collector.VisitEntry(t)
	}
	if f.missing <= 0 {
		return Break
	}
	if !f.wanted[t] {
		return Skip
	}
	return f.Collector.VisitEntry(t)
}

func (f *FieldCollector) VisitEntryKey(t Type, key string) Result {
	tree := f.top()
	if f.Depth() > tree.depth {
		return f.Collector.VisitEntryKey(t, key)
	}
	if tree.isSelected(t, key) {
		delete(tree.selected, key)
		f.missing--
		return f.Collector.VisitEntryKey(t, key)
	}
	if t == CompoundType {
		if sub := tree.recurse[key]; sub != nil {
			f.trees = append(f.trees, sub)
			return f.Collector.VisitEntryKey(t, key)
		}
	}
	return Skip
}

func (f *FieldCollector) VisitContainerEnd() Result {
	if len(f.trees) > 0 && f.Depth() == f.top().depth {
		f.trees = f.trees[:len(f.trees)-1]
	}
	return f.Collector.VisitContainerEnd()
}

// FieldSkipper collects a whole document
// except for the selected fields.
type FieldSkipper struct {
	Collector
	trees []*fieldTree
}

// SkipFields returns a FieldSkipper
// for the given selectors.
func SkipFields(sel ...FieldSelector) *FieldSkipper {
	root := newFieldTree(1)
	for i := range sel {
		root.add(&sel[i])
	}
	return &FieldSkipper{trees: []*fieldTree{root}}
}

func (f *FieldSkipper) VisitEntryKey(t Type, key string) Result {
	tree := f.trees[len(f.trees)-1]
	if f.Depth() != tree.depth {
		return f.Collector.VisitEntryKey(t, key)
	}
	if tree.isSelected(t, key) {
		return Skip
	}
	if t == CompoundType {
		if sub := tree.recurse[key]; sub != nil {
			f.trees = append(f.trees, sub)
		}
	}
	return f.Collector.VisitEntryKey(t, key)
}

func (f *FieldSkipper) VisitContainerEnd() Result {
	if len(f.trees) > 0 && f.Depth() == f.trees[len(f.trees)-1].depth {
		f.trees = f.trees[:len(f.trees)-1]
	}
	return f.Collector.VisitContainerEnd()
}
