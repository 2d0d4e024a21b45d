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

// Package stringseq joins sequences of values into strings.
package stringseq

import (
	"fmt"
	"iter"
	"strings"
)

// Append writes the string of every element of a sequence into a builder,
// separated by sep.
func Append[T fmt.Stringer](b *strings.Builder, seq iter.Seq[T], sep string) {
	first := true
	for item := range seq {
		if !first {
			b.WriteString(sep)
		}
		b.WriteString(item.String())
		first = false
	}
}

// Join returns the strings of the elements of a sequence separated by sep.
func Join[T fmt.Stringer](seq iter.Seq[T], sep string) string {
	var b strings.Builder
	Append(&b, seq, sep)
	return b.String()
}
