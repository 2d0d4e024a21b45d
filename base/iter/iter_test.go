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

package iter_test

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/slicstan/slicstan/base/iter"
)

func TestAll(t *testing.T) {
	got := slices.Collect(iter.All([]string{"mu", "sigma"}, nil, []string{"y"}))
	if diff := cmp.Diff([]string{"mu", "sigma", "y"}, got); diff != "" {
		t.Errorf("unexpected elements (-want +got):\n%s", diff)
	}
}

func TestFilter(t *testing.T) {
	even := func(i int) bool { return i%2 == 0 }
	got := slices.Collect(iter.Filter(even, []int{1, 2, 3}, []int{4, 6}))
	if diff := cmp.Diff([]int{2, 4, 6}, got); diff != "" {
		t.Errorf("unexpected elements (-want +got):\n%s", diff)
	}
	var first []int
	for i := range iter.Filter(even, []int{2, 4, 6}) {
		first = append(first, i)
		break
	}
	if diff := cmp.Diff([]int{2}, first); diff != "" {
		t.Errorf("iteration did not stop (-want +got):\n%s", diff)
	}
}
