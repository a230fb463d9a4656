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

// Matches reports whether t contains pattern.
// Every key of a pattern compound must be
// present in the corresponding compound of t
// with a matching value; extra keys in t are
// ignored. When lists is set, every element of
// a pattern list must match some element of the
// list in t (and an empty pattern list only
// matches an empty list); otherwise lists, like
// all other values, must be Equal.
// A nil pattern matches anything.
func Matches(pattern, t Tag, lists bool) bool {
	if pattern == nil {
		return true
	}
	if t == nil || pattern.Type() != t.Type() {
		return false
	}
	switch p := pattern.(type) {
	case *Compound:
		c := t.(*Compound)
		if c.Len() < p.Len() {
			return false
		}
		for i := range p.fields {
			if !Matches(p.fields[i].Value, c.Get(p.fields[i].Name), lists) {
				return false
			}
		}
		return true
	case *List:
		if !lists {
			break
		}
		l := t.(*List)
		if p.Empty() {
			return l.Empty()
		}
		if l.Len() < p.Len() {
			return false
		}
	outer:
		for _, want := range p.elems {
			for _, got := range l.elems {
				if Matches(want, got, lists) {
					continue outer
				}
			}
			return false
		}
		return true
	}
	return Equal(pattern, t)
}
