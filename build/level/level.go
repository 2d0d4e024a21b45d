// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package level defines the level types of SlicStan variables and the two
// total orders used to infer them.
//
// The correctness order (Data < Model < GenQuantity) is the direction in
// which information is allowed to flow. The performance order
// (Data < GenQuantity < Model) only breaks ties between levels that are all
// correct, preferring levels evaluated less often by the target program.
package level

import (
	"fmt"
	"slices"
)

// Level is the level type of a variable.
type Level int

// Levels of a variable.
const (
	Data Level = iota
	Model
	GenQuantity
)

// All lists every level in correctness order.
var All = []Level{Data, Model, GenQuantity}

// IsValid returns true if the level is one of the three known levels.
func (l Level) IsValid() bool {
	return l >= Data && l <= GenQuantity
}

func (l Level) String() string {
	switch l {
	case Data:
		return "data"
	case Model:
		return "model"
	case GenQuantity:
		return "genquant"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Order is a total order over levels.
type Order struct {
	name string
	rank [3]int
}

var (
	// Correctness is the information flow order: Data < Model < GenQuantity.
	Correctness = Order{name: "correctness", rank: [3]int{Data: 0, Model: 1, GenQuantity: 2}}
	// Performance is the tie-break order: Data < GenQuantity < Model.
	Performance = Order{name: "performance", rank: [3]int{Data: 0, GenQuantity: 1, Model: 2}}
)

// Rank returns the position of a level in the order.
func (o Order) Rank(l Level) int {
	return o.rank[l]
}

// Less returns true if a is strictly lower than b.
func (o Order) Less(a, b Level) bool {
	return o.rank[a] < o.rank[b]
}

// LessEq returns true if a is lower than or equal to b.
func (o Order) LessEq(a, b Level) bool {
	return o.rank[a] <= o.rank[b]
}

// Max returns the greatest level. The maximum of no level is Data, which is
// the bottom element of both orders.
func (o Order) Max(ls ...Level) Level {
	m := Data
	for _, l := range ls {
		if o.Less(m, l) {
			m = l
		}
	}
	return m
}

// Min returns the lowest level. The minimum of no level is the top element
// of the order.
func (o Order) Min(ls ...Level) Level {
	m := o.Top()
	for _, l := range ls {
		if o.Less(l, m) {
			m = l
		}
	}
	return m
}

// Top returns the greatest level of the order.
func (o Order) Top() Level {
	return o.Sort(All)[len(All)-1]
}

// Sort returns a copy of levels sorted in increasing order.
func (o Order) Sort(ls []Level) []Level {
	sorted := slices.Clone(ls)
	slices.SortFunc(sorted, func(a, b Level) int {
		return o.rank[a] - o.rank[b]
	})
	return sorted
}

func (o Order) String() string {
	return o.name
}

// Bounds is an interval of levels under the correctness order.
type Bounds struct {
	Lower, Upper Level
}

// Unbounded returns the interval containing every level.
func Unbounded() Bounds {
	return Bounds{Lower: Data, Upper: GenQuantity}
}

// Empty returns true if no level is in the interval.
func (b Bounds) Empty() bool {
	return Correctness.Less(b.Upper, b.Lower)
}

// Contains returns true if a level is in the interval.
func (b Bounds) Contains(l Level) bool {
	return Correctness.LessEq(b.Lower, l) && Correctness.LessEq(l, b.Upper)
}

// Feasible returns the levels of the interval in correctness order.
func (b Bounds) Feasible() []Level {
	var ls []Level
	for _, l := range All {
		if b.Contains(l) {
			ls = append(ls, l)
		}
	}
	return ls
}

// Pick returns the lowest level of the interval under an order.
// Returns false if the interval is empty.
func (b Bounds) Pick(o Order) (Level, bool) {
	feasible := b.Feasible()
	if len(feasible) == 0 {
		return Data, false
	}
	return o.Min(feasible...), true
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%s, %s]", b.Lower, b.Upper)
}
