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

// Package fmt provides functions to format source code.
package fmt

import (
	"fmt"
	"strings"
)

// Number prefixes every line of a text with its line number.
// Numbers are padded to the width of the largest number.
func Number(x string) string {
	var lines []string
	for line := range strings.Lines(x) {
		lines = append(lines, line)
	}
	width := len(fmt.Sprint(len(lines)))
	var s strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&s, "%0*d %s", width, i+1, line)
	}
	return s.String()
}

// Indent prefixes every line of a text with a tab.
func Indent(x string) string {
	var s strings.Builder
	for line := range strings.Lines(x) {
		s.WriteString("\t")
		s.WriteString(line)
	}
	return s.String()
}
