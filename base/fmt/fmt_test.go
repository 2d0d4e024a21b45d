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

package fmt_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	basefmt "github.com/slicstan/slicstan/base/fmt"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		txt  string
		want string
	}{
		{
			txt:  "real mu;\nmu ~ normal(0, 1);\n",
			want: "1 real mu;\n2 mu ~ normal(0, 1);\n",
		},
		{
			txt:  "a\nb\nc\nd\ne\nf\ng\nh\ni\nj",
			want: "01 a\n02 b\n03 c\n04 d\n05 e\n06 f\n07 g\n08 h\n09 i\n10 j",
		},
	}
	for _, test := range tests {
		if diff := cmp.Diff(test.want, basefmt.Number(test.txt)); diff != "" {
			t.Errorf("unexpected numbering (-want +got):\n%s", diff)
		}
	}
}

func TestIndent(t *testing.T) {
	if got, want := basefmt.Indent("a;\nb;"), "\ta;\n\tb;"; got != want {
		t.Errorf("got %q but want %q", got, want)
	}
	if got := basefmt.Indent(""); got != "" {
		t.Errorf("got %q but want an empty string", got)
	}
}
