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

// Package uname provides unique names.
package uname

import "fmt"

// DefaultSeparator is inserted between a root name and its counter.
const DefaultSeparator = "_"

// Allocator generates fresh names.
//
// The counter is shared by all the roots and only grows, so a name
// generated by an allocator is never generated again by the same allocator.
// An allocator is owned by one compilation: two compilations of the same
// program generate the same names.
type Allocator struct {
	sep   string
	next  int
	taken map[string]bool
}

// New returns a name allocator.
// If sep is empty, DefaultSeparator is used.
func New(sep string) *Allocator {
	if sep == "" {
		sep = DefaultSeparator
	}
	return &Allocator{sep: sep, next: 1, taken: make(map[string]bool)}
}

// Register marks names as used so that they are never returned by Fresh.
func (a *Allocator) Register(names ...string) {
	for _, name := range names {
		a.taken[name] = true
	}
}

// Taken returns true if a name has been registered or generated.
func (a *Allocator) Taken(name string) bool {
	return a.taken[name]
}

// Fresh returns a name derived from root that has never been used.
func (a *Allocator) Fresh(root string) string {
	for {
		name := fmt.Sprintf("%s%s%d", root, a.sep, a.next)
		a.next++
		if a.taken[name] {
			continue
		}
		a.taken[name] = true
		return name
	}
}

// Count returns the number of names generated so far, including the
// candidates skipped because they collided with registered names.
func (a *Allocator) Count() int {
	return a.next - 1
}
