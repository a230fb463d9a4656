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

// Package ints provides integer helpers shared
// by the numeric tag conversions.
package ints

import (
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Min returns the smaller value of x and y
func Min[T constraints.Integer](x, y T) T {
	if x <= y {
		return x
	}
	return y
}

// Max returns the greater value of x and y
func Max[T constraints.Integer](x, y T) T {
	if x >= y {
		return x
	}
	return y
}

// Bounds returns the smallest and largest
// values representable by T.
func Bounds[T constraints.Signed]() (lo, hi T) {
	var x T
	bits := unsafe.Sizeof(x) * 8
	hi = T(uint64(1)<<(bits-1) - 1)
	lo = -hi - 1
	return lo, hi
}

// Trunc converts f to T by discarding the
// fractional part. Values outside the range
// of T saturate at the nearest bound and
// NaN converts to zero.
func Trunc[T constraints.Signed](f float64) T {
	lo, hi := Bounds[T]()
	switch {
	case f != f:
		return 0
	case f >= float64(hi):
		return hi
	case f <= float64(lo):
		return lo
	}
	return T(f)
}

// Floor is like Trunc, but rounds
// towards negative infinity.
func Floor[T constraints.Signed](f float64) T {
	return Trunc[T](math.Floor(f))
}
