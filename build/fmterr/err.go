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

package fmterr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/slicstan/slicstan/build/ast"
	"github.com/slicstan/slicstan/build/level"
)

type (
	// Bound is a level bound together with the variable that imposed it.
	Bound struct {
		Level level.Level
		// From is the variable from which the bound has been propagated.
		// Empty for bounds imposed directly on the variable.
		From string
		// Rule is the typing rule that created the bound.
		Rule string
	}

	// Error is a compiler error.
	Error struct {
		Kind Kind
		// Name is the offending variable or function.
		Name string
		// Node is the offending statement or expression. May be nil.
		Node ast.Node
		// Lower and Upper are the conflicting bounds of
		// InconsistentLevelConstraints errors.
		Lower, Upper *Bound
		// Chain is the call chain of NonTerminatingElaboration errors.
		Chain []string

		err error
	}
)

// Errorf returns a compiler error of a given kind.
func Errorf(kind Kind, name string, node ast.Node, format string, a ...any) *Error {
	return &Error{
		Kind: kind,
		Name: name,
		Node: node,
		err:  errors.Errorf(format, a...),
	}
}

// Internalf returns an error reporting a bug in the compiler.
func Internalf(node ast.Node, format string, a ...any) *Error {
	return Errorf(InternalInvariantViolation, "", node, format, a...)
}

// Internal wraps an unexpected error as a bug in the compiler.
// Errors of the compiler are returned as is.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var cErr *Error
	if errors.As(err, &cErr) {
		return err
	}
	return &Error{Kind: InternalInvariantViolation, err: errors.WithStack(err)}
}

// Inconsistent returns an InconsistentLevelConstraints error.
func Inconsistent(name string, node ast.Node, lower, upper Bound) *Error {
	err := Errorf(InconsistentLevelConstraints, name, node,
		"level of %s must be at least %s (%s) and at most %s (%s)",
		name, lower.Level, lower.describe(), upper.Level, upper.describe())
	err.Lower, err.Upper = &lower, &upper
	return err
}

func (b Bound) describe() string {
	if b.From == "" {
		return b.Rule
	}
	return fmt.Sprintf("%s via %s", b.Rule, b.From)
}

// NonTerminating returns a NonTerminatingElaboration error given a call chain.
func NonTerminating(chain []string, node ast.Node, format string, a ...any) *Error {
	name := ""
	if len(chain) > 0 {
		name = chain[len(chain)-1]
	}
	err := Errorf(NonTerminatingElaboration, name, node, format, a...)
	err.Chain = append([]string{}, chain...)
	return err
}

// Error returns a string description of the error.
func (err *Error) Error() string {
	var b strings.Builder
	b.WriteString(err.Kind.String())
	if err.Kind == InternalInvariantViolation {
		b.WriteString(" (compiler bug)")
	}
	b.WriteString(": ")
	b.WriteString(err.err.Error())
	if len(err.Chain) > 0 {
		b.WriteString(" [call chain: ")
		b.WriteString(strings.Join(err.Chain, " -> "))
		b.WriteString("]")
	}
	if err.Node != nil {
		b.WriteString(" in `")
		b.WriteString(err.Node.String())
		b.WriteString("`")
	}
	return b.String()
}

// Unwrap the error.
func (err *Error) Unwrap() error {
	return err.err
}

// Format writes the error into the state of the formatter.
func (err *Error) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}

// KindOf returns the kind of a compiler error, or Unknown if err is not
// a compiler error.
func KindOf(err error) Kind {
	var cErr *Error
	if !errors.As(err, &cErr) {
		return Unknown
	}
	return cErr.Kind
}

// As returns the compiler error wrapped by err, if any.
func As(err error) (*Error, bool) {
	var cErr *Error
	ok := errors.As(err, &cErr)
	return cErr, ok
}
