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

// Package scope provides flat lexical scopes of named values.
//
// SlicStan blocks do not open scopes and function bodies cannot read the
// variables of the program, so scopes do not nest.
package scope

import (
	"fmt"
	"iter"
	"strings"

	"github.com/pkg/errors"
	"github.com/slicstan/slicstan/base/ordered"
)

// Scope stores key,value pairs in declaration order.
type Scope[V any] struct {
	name  string
	local *ordered.Map[string, V]
}

// New returns a new empty scope.
func New[V any](name string) *Scope[V] {
	return &Scope[V]{
		name:  name,
		local: ordered.NewMap[string, V](),
	}
}

// Name of the scope.
func (s *Scope[V]) Name() string {
	return s.name
}

// Define maps `key` to `value`.
// Fails if the key is already defined.
func (s *Scope[V]) Define(key string, value V) error {
	if s.local.Has(key) {
		return errors.Errorf("%s already defined in scope %s", key, s.name)
	}
	s.local.Store(key, value)
	return nil
}

// Find a key in the scope.
func (s *Scope[V]) Find(key string) (V, bool) {
	return s.local.Load(key)
}

// Update replaces the value of an existing key.
func (s *Scope[V]) Update(key string, value V) error {
	if !s.local.Has(key) {
		return errors.Errorf("cannot update %s: not defined in scope %s", key, s.name)
	}
	s.local.Store(key, value)
	return nil
}

// All iterates over the key,value pairs in declaration order.
func (s *Scope[V]) All() iter.Seq2[string, V] {
	return s.local.All()
}

// Len returns the number of keys.
func (s *Scope[V]) Len() int {
	return s.local.Len()
}

// String representation of the scope.
func (s *Scope[V]) String() string {
	var kvs []string
	for k, v := range s.local.All() {
		kvs = append(kvs, fmt.Sprintf("%s: %v", k, v))
	}
	return fmt.Sprintf("scope %s\n%s", s.name, strings.Join(kvs, "\n"))
}
