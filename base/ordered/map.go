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

// Package ordered provides containers remembering insertion order.
//
// Iteration over the containers of this package is deterministic, which is
// required for the compiler to produce bit-identical output across runs.
package ordered

import "iter"

// Map is a map remembering the order in which keys have been inserted.
// Overwriting a value keeps the position of the key.
type Map[K comparable, V any] struct {
	index map[K]int
	keys  []K
	vals  []V
}

// NewMap returns a new empty ordered map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{index: make(map[K]int)}
}

// Store a key,value pair.
// Returns true if the key was not in the map before.
func (m *Map[K, V]) Store(k K, v V) bool {
	if i, ok := m.index[k]; ok {
		m.vals[i] = v
		return false
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
	return true
}

// Load returns the value stored for a key.
func (m *Map[K, V]) Load(k K) (v V, ok bool) {
	i, ok := m.index[k]
	if !ok {
		return
	}
	return m.vals[i], true
}

// Has returns true if the key is in the map.
func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.index[k]
	return ok
}

// Index returns the insertion position of a key, or -1.
func (m *Map[K, V]) Index(k K) int {
	i, ok := m.index[k]
	if !ok {
		return -1
	}
	return i
}

// All iterates over the key,value pairs in insertion order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i, k := range m.keys {
			if !yield(k, m.vals[i]) {
				return
			}
		}
	}
}

// Keys iterates over the keys in insertion order.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, k := range m.keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Values iterates over the values in insertion order.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.vals {
			if !yield(v) {
				return
			}
		}
	}
}

// Clone returns a shallow copy of the map.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := &Map[K, V]{
		index: make(map[K]int, len(m.keys)),
		keys:  append([]K{}, m.keys...),
		vals:  append([]V{}, m.vals...),
	}
	for k, i := range m.index {
		c.index[k] = i
	}
	return c
}

// Len returns the number of keys in the map.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}
