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

// Package exprdeps extracts variable dependencies from SlicStan expressions.
package exprdeps

import (
	"slices"

	"github.com/slicstan/slicstan/base/ordered"
	"github.com/slicstan/slicstan/build/ast"
)

// Deps are the dependencies of an expression.
type Deps struct {
	// Vars are the variables read by the expression outside of user calls,
	// in order of first occurrence.
	Vars []string
	// Calls are the outermost calls to user-defined functions.
	// Variables read by their arguments are not in Vars.
	Calls []*ast.CallExpr
}

type collector struct {
	isUser func(string) bool
	vars   *ordered.Map[string, struct{}]
	calls  []*ast.CallExpr
}

func (c *collector) visit(expr ast.Expr) {
	ast.Inspect(expr, func(n ast.Node) bool {
		switch nT := n.(type) {
		case *ast.Ident:
			c.vars.Store(nT.Name, struct{}{})
		case *ast.CallExpr:
			if c.isUser != nil && c.isUser(nT.Fun) {
				c.calls = append(c.calls, nT)
				return false
			}
		}
		return true
	})
}

// Of returns the dependencies of expressions.
// isUser reports whether a function name refers to a user-defined function.
// If isUser is nil, all calls are treated as built-ins.
func Of(isUser func(string) bool, exprs ...ast.Expr) Deps {
	c := &collector{isUser: isUser, vars: ordered.NewMap[string, struct{}]()}
	for _, expr := range exprs {
		if expr == nil {
			continue
		}
		c.visit(expr)
	}
	return Deps{Vars: slices.Collect(c.vars.Keys()), Calls: c.calls}
}

// Idents returns all the variables read by an expression, including the
// variables read by the arguments of any call.
func Idents(expr ast.Expr) []string {
	return Of(nil, expr).Vars
}
