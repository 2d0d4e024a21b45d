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

package fmterr_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	h "github.com/slicstan/slicstan/build/ast/asthelper"
	"github.com/slicstan/slicstan/build/fmterr"
	"github.com/slicstan/slicstan/build/level"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want fmterr.Kind
	}{
		{
			err:  fmterr.Errorf(fmterr.UndefinedVariable, "x", h.Ident("x"), "undefined: x"),
			want: fmterr.UndefinedVariable,
		},
		{
			err:  errors.Wrap(fmterr.Errorf(fmterr.ArityMismatch, "f", nil, "arity"), "program 0"),
			want: fmterr.ArityMismatch,
		},
		{
			err:  fmterr.Internal(errors.New("boom")),
			want: fmterr.InternalInvariantViolation,
		},
		{
			err:  errors.New("not a compiler error"),
			want: fmterr.Unknown,
		},
	}
	for i, test := range tests {
		if got := fmterr.KindOf(test.err); got != test.want {
			t.Errorf("test %d: got kind %s but want %s", i, got, test.want)
		}
	}
}

func TestInconsistent(t *testing.T) {
	err := fmterr.Inconsistent("x", nil,
		fmterr.Bound{Level: level.GenQuantity, From: "z", Rule: "assignment"},
		fmterr.Bound{Level: level.Model, Rule: "sample"},
	)
	if err.Lower.Level != level.GenQuantity || err.Upper.Level != level.Model {
		t.Errorf("unexpected bounds: %v %v", err.Lower, err.Upper)
	}
	want := "InconsistentLevelConstraints: level of x must be at least genquant (assignment via z) and at most model (sample)"
	if got := err.Error(); got != want {
		t.Errorf("got\n%s\nbut want\n%s", got, want)
	}
}

func TestFormatVerbose(t *testing.T) {
	err := fmterr.NonTerminating([]string{"f", "g", "f"}, h.Call("f"), "recursive call to %s", "f")
	if got := fmt.Sprintf("%v", err); strings.Contains(got, "Error generated at") {
		t.Errorf("%%v should not print the stack trace: %s", got)
	}
	verbose := fmt.Sprintf("%+v", err)
	if !strings.Contains(verbose, "Error generated at") {
		t.Errorf("%%+v should print the stack trace: %s", verbose)
	}
	if !strings.Contains(verbose, "f -> g -> f") {
		t.Errorf("missing call chain in %s", verbose)
	}
}
