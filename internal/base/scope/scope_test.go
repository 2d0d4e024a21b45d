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

package scope

import (
	"testing"
)

func TestDefine(t *testing.T) {
	s := New[int]("main")
	if err := s.Define("x", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Define("y", 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Define("x", 3); err == nil {
		t.Error("Define() of an existing key succeeded, expected failure")
	}
	if value, ok := s.Find("x"); value != 1 || !ok {
		t.Errorf("Find('x') = %v, %v, want 1, true", value, ok)
	}
	if value, ok := s.Find("z"); value != 0 || ok {
		t.Errorf("Find('z') = %v, %v, want 0, false", value, ok)
	}
	var keys []string
	for k := range s.All() {
		keys = append(keys, k)
	}
	if len(keys) != 2 || keys[0] != "x" || keys[1] != "y" {
		t.Errorf("All() = %v, want [x y]", keys)
	}
}

func TestUpdate(t *testing.T) {
	s := New[int]("f")
	s.Define("z", -1)
	if err := s.Update("z", 3); err != nil {
		t.Error(err)
	}
	if value, ok := s.Find("z"); value != 3 || !ok {
		t.Errorf("Find('z') = %v, %v, want 3, true", value, ok)
	}
	if err := s.Update("q", 42); err == nil {
		t.Error("Update() succeeded, expected failure")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}
