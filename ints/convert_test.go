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

package ints

import (
	"math"
	"testing"
)

func TestBounds(t *testing.T) {
	if lo, hi := Bounds[int8](); lo != math.MinInt8 || hi != math.MaxInt8 {
		t.Errorf("int8: %d %d", lo, hi)
	}
	if lo, hi := Bounds[int16](); lo != math.MinInt16 || hi != math.MaxInt16 {
		t.Errorf("int16: %d %d", lo, hi)
	}
	if lo, hi := Bounds[int32](); lo != math.MinInt32 || hi != math.MaxInt32 {
		t.Errorf("int32: %d %d", lo, hi)
	}
	if lo, hi := Bounds[int64](); lo != math.MinInt64 || hi != math.MaxInt64 {
		t.Errorf("int64: %d %d", lo, hi)
	}
}

func TestMinMax(t *testing.T) {
	if Min(3, -2) != -2 || Max(3, -2) != 3 {
		t.Error("int")
	}
	if Min[int64](5, 5) != 5 || Max(uint8(0), 255) != 255 {
		t.Error("equal or unsigned")
	}
}

func TestTrunc(t *testing.T) {
	testcases := []struct {
		f    float64
		want int32
	}{
		{1.9, 1},
		{-1.9, -1},
		{0, 0},
		{math.NaN(), 0},
		{1e20, math.MaxInt32},
		{-1e20, math.MinInt32},
		{math.Inf(1), math.MaxInt32},
		{math.Inf(-1), math.MinInt32},
		{2147483647, math.MaxInt32},
	}
	for _, tc := range testcases {
		if got := Trunc[int32](tc.f); got != tc.want {
			t.Errorf("Trunc(%g) = %d want %d", tc.f, got, tc.want)
		}
	}
	if got := Trunc[int64](9.3e18); got != math.MaxInt64 {
		t.Errorf("Trunc[int64](9.3e18) = %d", got)
	}
	if got := Trunc[int64](-9.3e18); got != math.MinInt64 {
		t.Errorf("Trunc[int64](-9.3e18) = %d", got)
	}
}

func TestFloor(t *testing.T) {
	testcases := []struct {
		f    float64
		want int64
	}{
		{1.5, 1},
		{-1.5, -2},
		{-0.1, -1},
		{3, 3},
		{math.NaN(), 0},
		{1e300, math.MaxInt64},
	}
	for _, tc := range testcases {
		if got := Floor[int64](tc.f); got != tc.want {
			t.Errorf("Floor(%g) = %d want %d", tc.f, got, tc.want)
		}
	}
}
