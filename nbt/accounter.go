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
	"math"
)

const (
	// DefaultMaxDepth is the nesting
	// limit used when Limits.MaxDepth is zero.
	DefaultMaxDepth = 512
	// DefaultQuota is the byte quota
	// applied to untrusted (network) input.
	DefaultQuota = 2 * 1024 * 1024
)

// Limits configures an Accounter.
type Limits struct {
	// MaxBytes is the cumulative decode cost
	// allowed for one decode call. Zero or
	// negative means unlimited.
	MaxBytes int64 `json:"max_bytes,omitempty"`
	// MaxDepth is the maximum container nesting.
	// Zero means DefaultMaxDepth.
	MaxDepth int `json:"max_depth,omitempty"`
}

var (
	// DefaultLimits are suitable for untrusted input.
	DefaultLimits = Limits{MaxBytes: DefaultQuota, MaxDepth: DefaultMaxDepth}
	// Unlimited is suitable for trusted local data.
	// The depth limit still applies.
	Unlimited = Limits{MaxBytes: math.MaxInt64, MaxDepth: DefaultMaxDepth}
)

// Accounter tracks the cost of a single decode
// call and its container nesting depth.
// Every decode path charges an Accounter, even
// when the data is trusted; use Unlimited for that.
//
// An Accounter must not be shared between
// concurrent decode calls.
type Accounter struct {
	quota    int64
	usage    int64
	maxDepth int
	depth    int
}

// NewAccounter returns an Accounter
// enforcing lim.
func NewAccounter(lim Limits) *Accounter {
	a := &Accounter{quota: lim.MaxBytes, maxDepth: lim.MaxDepth}
	if a.quota <= 0 {
		a.quota = math.MaxInt64
	}
	if a.maxDepth <= 0 {
		a.maxDepth = DefaultMaxDepth
	}
	return a
}

// NewUnlimited is shorthand for NewAccounter(Unlimited).
func NewUnlimited() *Accounter { return NewAccounter(Unlimited) }

// AccountBytes charges n bytes and returns
// a *LimitError if that would exceed the quota.
// The usage is not updated on failure.
func (a *Accounter) AccountBytes(n int64) error {
	if n < 0 {
		return fmt.Errorf("nbt: negative byte count %d", n)
	}
	if n > a.quota-a.usage {
		return &LimitError{Usage: a.usage, Request: n, Quota: a.quota}
	}
	a.usage += n
	return nil
}

// AccountElements charges per*count bytes.
// The count is validated before multiplying,
// so a huge declared count can never wrap
// around into a small charge.
func (a *Accounter) AccountElements(per int64, count int64) error {
	if count < 0 {
		return malformed("negative element count %d", count)
	}
	if per < 0 {
		return fmt.Errorf("nbt: negative element size %d", per)
	}
	if per != 0 && count > (a.quota-a.usage)/per {
		req := int64(math.MaxInt64)
		if count <= math.MaxInt64/per {
			req = per * count
		}
		return &LimitError{Usage: a.usage, Request: req, Quota: a.quota}
	}
	a.usage += per * count
	return nil
}

// PushDepth enters a container.
func (a *Accounter) PushDepth() error {
	if a.depth >= a.maxDepth {
		return &LimitError{Depth: true, MaxDepth: a.maxDepth}
	}
	a.depth++
	return nil
}

// PopDepth leaves a container entered
// with a successful PushDepth.
func (a *Accounter) PopDepth() {
	if a.depth <= 0 {
		panic("nbt.Accounter: PopDepth at top level")
	}
	a.depth--
}

// Usage returns the number of bytes
// charged so far.
func (a *Accounter) Usage() int64 { return a.usage }

// Depth returns the current nesting depth.
func (a *Accounter) Depth() int { return a.depth }

// Quota returns the configured byte quota.
func (a *Accounter) Quota() int64 { return a.quota }
