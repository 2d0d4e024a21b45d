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

package infer

import (
	"github.com/slicstan/slicstan/base/ordered"
	"github.com/slicstan/slicstan/build/ast"
	"github.com/slicstan/slicstan/internal/base/scope"
)

// returnName is the name of the level variable of a function return value.
// It cannot clash with a variable since it is a keyword.
const returnName = "return"

type (
	// Var is an entry of the type environment.
	Var struct {
		// Func is the function declaring the variable. Empty for program variables.
		Func string
		Name string
		Type ast.Type
		// Data is true for variables provided externally.
		Data bool
		// Param is true for function parameters.
		Param bool
		// Assigned is true if the variable is the target of an assignment
		// anywhere in its scope. Parameters are always assigned (by the call).
		Assigned bool
		// Decl is the declaring node: a *ast.DeclStmt or a *ast.Field.
		Decl ast.Node
	}

	// Env is the type environment of a compilation unit: one scope for the
	// program and one scope per function body.
	Env struct {
		program *scope.Scope[*Var]
		funcs   *ordered.Map[string, *scope.Scope[*Var]]
	}
)

// Key returns the key of the level variable of a variable declared in a function.
// fn is empty for program variables.
func Key(fn, name string) string {
	if fn == "" {
		return name
	}
	return fn + "." + name
}

// ReturnKey returns the key of the level variable of a function return value.
func ReturnKey(fn string) string {
	return Key(fn, returnName)
}

// Key returns the key of the level variable of the variable.
func (v *Var) Key() string {
	return Key(v.Func, v.Name)
}

func newEnv() *Env {
	return &Env{
		program: scope.New[*Var]("program"),
		funcs:   ordered.NewMap[string, *scope.Scope[*Var]](),
	}
}

func (env *Env) scope(fn string) *scope.Scope[*Var] {
	if fn == "" {
		return env.program
	}
	s, ok := env.funcs.Load(fn)
	if !ok {
		s = scope.New[*Var](fn)
		env.funcs.Store(fn, s)
	}
	return s
}

// Lookup returns the variable given its scope and its name.
func (env *Env) Lookup(fn, name string) (*Var, bool) {
	if fn != "" && !env.funcs.Has(fn) {
		return nil, false
	}
	return env.scope(fn).Find(name)
}

// Vars returns the variables declared in a scope in declaration order.
func (env *Env) Vars(fn string) []*Var {
	var vars []*Var
	for _, v := range env.scope(fn).All() {
		vars = append(vars, v)
	}
	return vars
}
