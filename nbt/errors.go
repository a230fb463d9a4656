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
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformed is wrapped by every error
	// produced because the input bytes are corrupt.
	ErrMalformed = errors.New("nbt: malformed input")
	// ErrTruncated is returned when the input
	// ends in the middle of a tag.
	ErrTruncated = fmt.Errorf("%w: unexpected end of input", ErrMalformed)
	// ErrLimit is wrapped by every *LimitError.
	ErrLimit = errors.New("nbt: decode limit exceeded")
	// ErrElementType is returned when a collection
	// rejects an element whose type does not match
	// the collection's element type.
	ErrElementType = errors.New("nbt: element type mismatch")
	// ErrInvalidString is returned when encoding
	// a string or key that is not valid UTF-8.
	ErrInvalidString = errors.New("nbt: string is not valid UTF-8")
)

func malformed(f string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(f, args...))
}

func badType(t Type) error {
	return malformed("invalid tag id: %d", byte(t))
}

// LimitError is returned when decoding would
// exceed the byte quota or the depth limit
// of an Accounter. It is never caused by
// corrupt input alone.
type LimitError struct {
	// Depth is set for depth violations;
	// otherwise the error is a quota violation.
	Depth bool
	// Usage, Request and Quota describe
	// a quota violation.
	Usage, Request, Quota int64
	// MaxDepth is the configured depth limit.
	MaxDepth int
}

func (e *LimitError) Error() string {
	if e.Depth {
		return fmt.Sprintf("nbt: tried to read tag with too high complexity, depth > %d", e.MaxDepth)
	}
	return fmt.Sprintf("nbt: tried to read tag that was too big; tried to allocate: %d + %d bytes where max allowed: %d",
		e.Usage, e.Request, e.Quota)
}

func (e *LimitError) Unwrap() error { return ErrLimit }

// PathError annotates a decode error
// with the location of the offending tag.
type PathError struct {
	// Path holds compound keys and
	// list indices from the root,
	// outermost first.
	Path []PathElem
	Err  error
}

// PathElem is one step of a PathError path:
// either a compound key or a list index.
type PathElem struct {
	Key   string
	Index int // valid when IsIndex is set
	// IsIndex distinguishes list indices
	// from (possibly empty) keys
	IsIndex bool
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s (at %s)", e.Err, e.Where())
}

func (e *PathError) Unwrap() error { return e.Err }

// Where returns the path in a dotted form
// like "Level.Sections[3].Palette".
func (e *PathError) Where() string {
	var sb strings.Builder
	for i := range e.Path {
		p := &e.Path[i]
		if p.IsIndex {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(p.Index))
			sb.WriteByte(']')
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		if needsQuote(p.Key) {
			sb.WriteString(QuoteString(p.Key))
		} else {
			sb.WriteString(p.Key)
		}
	}
	if sb.Len() == 0 {
		return "<root>"
	}
	return sb.String()
}

// atKey and atIndex prepend a path element
// to err while it unwinds through containers.
// Limit errors are left untouched so that
// they surface as-is.
func atKey(err error, key string) error {
	return within(err, PathElem{Key: key})
}

func atIndex(err error, i int) error {
	return within(err, PathElem{Index: i, IsIndex: true})
}

func within(err error, elem PathElem) error {
	var le *LimitError
	if errors.As(err, &le) {
		return err
	}
	if pe, ok := err.(*PathError); ok {
		pe.Path = append(pe.Path, PathElem{})
		copy(pe.Path[1:], pe.Path)
		pe.Path[0] = elem
		return pe
	}
	return &PathError{Path: []PathElem{elem}, Err: err}
}
