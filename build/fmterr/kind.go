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

// Package fmterr provides structured compiler errors.
//
// Every stage of the compiler reports a failure as a single *Error value
// identifying the offending node and the rule it violates. The core does not
// build human readable diagnostics: front ends use the fields of the error.
package fmterr

import "fmt"

// Kind of compiler error.
type Kind int

// Kinds of errors reported by the compiler.
const (
	Unknown Kind = iota
	// UndefinedVariable is a reference to a variable that has not been declared.
	UndefinedVariable
	// UndefinedFunction is a call to a function that is neither user-defined nor a built-in.
	UndefinedFunction
	// ArityMismatch is a call with a number of arguments different from the number of parameters.
	ArityMismatch
	// InconsistentLevelConstraints is a variable whose lower bound exceeds its upper bound.
	InconsistentLevelConstraints
	// NonTerminatingElaboration is a call graph that cannot be statically unrolled.
	NonTerminatingElaboration
	// InternalInvariantViolation is a bug in the compiler.
	InternalInvariantViolation
	// Redeclared is a name declared twice in the same scope.
	Redeclared
	// InvalidAssignment is an assignment or a sample to a variable that cannot be the target.
	InvalidAssignment
	// InvalidStatement is a statement at a position where it is not allowed.
	InvalidStatement
)

var kindNames = map[Kind]string{
	Unknown:                      "Unknown",
	UndefinedVariable:            "UndefinedVariable",
	UndefinedFunction:            "UndefinedFunction",
	ArityMismatch:                "ArityMismatch",
	InconsistentLevelConstraints: "InconsistentLevelConstraints",
	NonTerminatingElaboration:    "NonTerminatingElaboration",
	InternalInvariantViolation:   "InternalInvariantViolation",
	Redeclared:                   "Redeclared",
	InvalidAssignment:            "InvalidAssignment",
	InvalidStatement:             "InvalidStatement",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}
