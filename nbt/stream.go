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

// Result is returned by every StreamVisitor
// method to steer the decoder.
type Result uint8

const (
	// Continue decodes the value (or, after a
	// leaf, moves on to the next sibling).
	Continue Result = iota
	// Skip discards the value without
	// decoding its payload.
	Skip
	// Break skips every remaining sibling in
	// the current container and then closes it.
	Break
	// Halt stops decoding immediately. The
	// position of the source is unspecified
	// afterwards.
	Halt
)

func (r Result) String() string {
	switch r {
	case Continue:
		return "continue"
	case Skip:
		return "skip"
	case Break:
		return "break"
	case Halt:
		return "halt"
	default:
		return "invalid"
	}
}

// StreamVisitor receives a document as it
// is decoded, and decides at each step how
// much of it to materialize.
//
// The decision points are, in document order:
//
//	VisitRootEntry    root type, before the root name
//	VisitEntry        compound entry type, before its key
//	VisitEntryKey     compound entry type and key
//	VisitList         list element type and count
//	VisitElement      list element type and index
//
// A decoded scalar or array is passed to the
// matching leaf method (VisitByte ... VisitLongArray,
// VisitEnd). Every container that was entered
// is closed with VisitContainerEnd, whose result
// is propagated to the enclosing container.
//
// Skip and Continue are equivalent when returned
// from leaf methods and VisitContainerEnd. For
// VisitList, Skip behaves like Break: the elements
// are skipped and VisitContainerEnd is still called.
type StreamVisitor interface {
	VisitEnd() Result
	VisitByte(v int8) Result
	VisitShort(v int16) Result
	VisitInt(v int32) Result
	VisitLong(v int64) Result
	VisitFloat(v float32) Result
	VisitDouble(v float64) Result
	VisitString(s string) Result
	// The array methods receive storage
	// owned by the caller of the visitor.
	VisitByteArray(b []byte) Result
	VisitIntArray(v []int32) Result
	VisitLongArray(v []int64) Result

	VisitList(elem Type, n int) Result
	VisitElement(t Type, i int) Result
	VisitEntry(t Type) Result
	VisitEntryKey(t Type, key string) Result
	VisitContainerEnd() Result
	VisitRootEntry(t Type) Result
}

func parseList(r *Reader, v StreamVisitor, acc *Accounter) (Result, error) {
	if err := acc.PushDepth(); err != nil {
		return Halt, err
	}
	defer acc.PopDepth()
	if err := acc.AccountBytes(listCost); err != nil {
		return Halt, err
	}
	d, n, err := listHeader(r)
	if err != nil {
		return Halt, err
	}
	switch v.VisitList(d.typ, n) {
	case Halt:
		return Halt, nil
	case Break, Skip:
		if err := d.SkipN(r, n, acc); err != nil {
			return Halt, err
		}
		return v.VisitContainerEnd(), nil
	}
	if err := acc.AccountElements(refCost, int64(n)); err != nil {
		return Halt, err
	}
	for i := 0; i < n; i++ {
		switch v.VisitElement(d.typ, i) {
		case Halt:
			return Halt, nil
		case Break:
			return closeList(r, v, d, n-i, acc)
		case Skip:
			if err := d.skip(r, acc); err != nil {
				return Halt, atIndex(err, i)
			}
			continue
		}
		res, err := d.parse(r, v, acc)
		if err != nil {
			return Halt, atIndex(err, i)
		}
		switch res {
		case Halt:
			return Halt, nil
		case Break:
			return closeList(r, v, d, n-i-1, acc)
		}
	}
	return v.VisitContainerEnd(), nil
}

// closeList skips the remaining elements
// of a list and closes it.
func closeList(r *Reader, v StreamVisitor, d *Descriptor, left int, acc *Accounter) (Result, error) {
	if err := d.SkipN(r, left, acc); err != nil {
		return Halt, err
	}
	return v.VisitContainerEnd(), nil
}

func parseCompound(r *Reader, v StreamVisitor, acc *Accounter) (Result, error) {
	if err := acc.PushDepth(); err != nil {
		return Halt, err
	}
	defer acc.PopDepth()
	if err := acc.AccountBytes(compoundCost); err != nil {
		return Halt, err
	}
	for {
		d, err := entryHeader(r)
		if err != nil {
			return Halt, err
		}
		if d == nil {
			return v.VisitContainerEnd(), nil
		}
		switch v.VisitEntry(d.typ) {
		case Halt:
			return Halt, nil
		case Break:
			if err := skipEntry(r, d, acc); err != nil {
				return Halt, err
			}
			return closeCompound(r, v, acc)
		case Skip:
			if err := skipEntry(r, d, acc); err != nil {
				return Halt, err
			}
			continue
		}
		key, err := readKey(r, acc)
		if err != nil {
			return Halt, err
		}
		switch v.VisitEntryKey(d.typ, key) {
		case Halt:
			return Halt, nil
		case Break:
			if err := d.skip(r, acc); err != nil {
				return Halt, atKey(err, key)
			}
			return closeCompound(r, v, acc)
		case Skip:
			if err := d.skip(r, acc); err != nil {
				return Halt, atKey(err, key)
			}
			continue
		}
		if err := acc.AccountBytes(entryCost); err != nil {
			return Halt, err
		}
		res, err := d.parse(r, v, acc)
		if err != nil {
			return Halt, atKey(err, key)
		}
		switch res {
		case Halt:
			return Halt, nil
		case Break:
			return closeCompound(r, v, acc)
		}
	}
}

// skipEntry skips the key and value
// of a compound entry.
func skipEntry(r *Reader, d *Descriptor, acc *Accounter) error {
	if err := r.skipString(); err != nil {
		return err
	}
	return d.skip(r, acc)
}

func closeCompound(r *Reader, v StreamVisitor, acc *Accounter) (Result, error) {
	if err := drainEntries(r, acc); err != nil {
		return Halt, err
	}
	return v.VisitContainerEnd(), nil
}

// Parse decodes a named-root document
// from r and reports it to v.
//
// When the root is a container and v returns
// anything but Halt, r is left at the first byte
// after the document.
func (r *Reader) Parse(v StreamVisitor, acc *Accounter) error {
	return r.parseRoot(v, acc, true)
}

// ParseUnnamed is like Parse for the
// unnamed (network) root form.
func (r *Reader) ParseUnnamed(v StreamVisitor, acc *Accounter) error {
	return r.parseRoot(v, acc, false)
}

func (r *Reader) parseRoot(v StreamVisitor, acc *Accounter, named bool) error {
	t, err := r.readType()
	if err != nil {
		return err
	}
	d, err := Lookup(t)
	if err != nil {
		return err
	}
	if t == EndType {
		if v.VisitRootEntry(EndType) == Continue {
			v.VisitEnd()
		}
		return nil
	}
	res := v.VisitRootEntry(t)
	if res == Halt {
		return nil
	}
	if named {
		if err := r.skipString(); err != nil {
			return err
		}
	}
	if res != Continue {
		return d.skip(r, acc)
	}
	_, err = d.parse(r, v, acc)
	return err
}

// AcceptRoot feeds t to v as if t were the
// root of a decoded document.
func AcceptRoot(t Tag, v StreamVisitor) Result {
	res := v.VisitRootEntry(t.Type())
	if res != Continue {
		return res
	}
	return t.AcceptStream(v)
}
