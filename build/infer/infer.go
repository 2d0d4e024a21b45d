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

// Package infer infers the level type of every variable of a SlicStan program.
//
// Typing rules generate constraints between level variables:
//
//  1. a variable declared as data is exactly Data,
//  2. a variable never assigned is at least Model,
//  3. an assigned variable is at least the level of every variable read by the assigned expression,
//  4. the target and the arguments of a sample statement are at most Model.
//
// Function parameters and locals have one level variable per function,
// shared by all the call sites: a call constrains the parameters to be at
// least the level of the arguments, and the call itself has the level of the
// function return value. The constraints are solved by propagating bounds
// in a constraint graph, then by picking for every variable the cheapest
// feasible level under the performance order.
package infer

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/slicstan/slicstan/api/options"
	"github.com/slicstan/slicstan/base/ordered"
	"github.com/slicstan/slicstan/build/ast"
	"github.com/slicstan/slicstan/build/builtins"
	"github.com/slicstan/slicstan/build/fmterr"
	"github.com/slicstan/slicstan/build/level"
	"golang.org/x/exp/maps"
)

// Seeds are additional lower bounds of program variables.
type Seeds map[string]level.Level

// Engine infers levels of programs.
// An engine holds no state between two calls to Infer.
type Engine struct {
	logger *slog.Logger
	reg    *builtins.Registry
}

// New returns an inference engine given compiler options.
func New(opts *options.Options) *Engine {
	return &Engine{logger: opts.Logger, reg: opts.Registry()}
}

type checker struct {
	reg   *builtins.Registry
	funcs map[string]*ast.FuncDecl
	env   *Env
	graph *Graph
	// nExprs counts the level variables created for expressions.
	nExprs int
}

// Infer returns the level of every variable of a program.
// seeds may be nil.
func (e *Engine) Infer(prog *ast.Program, seeds Seeds) (*Result, error) {
	c := &checker{
		reg:   e.reg,
		funcs: make(map[string]*ast.FuncDecl),
		env:   newEnv(),
		graph: NewGraph(),
	}
	if err := c.program(prog); err != nil {
		return nil, err
	}
	if err := c.seed(seeds); err != nil {
		return nil, err
	}
	levels, err := c.graph.Solve()
	if err != nil {
		return nil, err
	}
	e.logger.Debug("levels inferred",
		"functions", len(prog.Funcs),
		"variables", c.graph.NumVars(),
		"constraints", len(c.graph.constraints),
	)
	return newResult(prog, c.env, c.graph, levels), nil
}

func (c *checker) program(prog *ast.Program) error {
	for _, f := range prog.Funcs {
		if _, exists := c.funcs[f.Name]; exists {
			return fmterr.Errorf(fmterr.Redeclared, f.Name, nil, "function %s defined more than once", f.Name)
		}
		if c.reg.IsFunc(f.Name) || c.reg.IsDist(f.Name) {
			return fmterr.Errorf(fmterr.Redeclared, f.Name, nil, "function %s redefines a built-in", f.Name)
		}
		if f.Result == nil {
			return fmterr.Errorf(fmterr.InvalidStatement, f.Name, nil, "function %s has no return expression", f.Name)
		}
		c.funcs[f.Name] = f
	}
	// Declare parameters first: calls may appear before the definition.
	for _, f := range prog.Funcs {
		if err := c.declareParams(f); err != nil {
			return err
		}
	}
	for _, f := range prog.Funcs {
		if err := c.funcBody(f); err != nil {
			return err
		}
	}
	for _, stmt := range prog.Stmts {
		if err := c.stmt("", stmt); err != nil {
			return err
		}
	}
	c.scopeRules("")
	for _, f := range prog.Funcs {
		c.scopeRules(f.Name)
	}
	return nil
}

func (c *checker) declareParams(f *ast.FuncDecl) error {
	s := c.env.scope(f.Name)
	for _, param := range f.Params {
		v := &Var{
			Func:     f.Name,
			Name:     param.Name,
			Type:     param.Type,
			Param:    true,
			Assigned: true,
			Decl:     param,
		}
		if err := s.Define(param.Name, v); err != nil {
			return fmterr.Errorf(fmterr.Redeclared, param.Name, f, "parameter %s declared more than once in %s", param.Name, f.Name)
		}
		c.graph.AddVar(v.Key(), fmt.Sprintf("%s (parameter of %s)", param.Name, f.Name))
		c.graph.SetSource(v.Key(), param)
	}
	c.graph.AddVar(ReturnKey(f.Name), fmt.Sprintf("return value of %s", f.Name))
	c.graph.SetSource(ReturnKey(f.Name), f)
	return nil
}

func (c *checker) funcBody(f *ast.FuncDecl) error {
	if f.Body != nil {
		for _, stmt := range f.Body.List {
			if err := c.stmt(f.Name, stmt); err != nil {
				return err
			}
		}
	}
	ret, err := c.expr(f.Name, f.Result, RuleReturn)
	if err != nil {
		return err
	}
	c.graph.Flow(ret, ReturnKey(f.Name), RuleReturn)
	return nil
}

// scopeRules applies the rules depending on the declaration of variables:
// data variables are Data and variables never assigned are at least Model.
func (c *checker) scopeRules(fn string) {
	for _, v := range c.env.Vars(fn) {
		switch {
		case v.Data:
			c.graph.Equal(v.Key(), level.Data, RuleData)
		case !v.Assigned:
			c.graph.AtLeast(v.Key(), level.Model, RuleUnassigned)
		}
	}
}

func (c *checker) seed(seeds Seeds) error {
	names := maps.Keys(seeds)
	slices.Sort(names)
	for _, name := range names {
		v, ok := c.env.Lookup("", name)
		if !ok {
			return fmterr.Internalf(nil, "seed for undeclared variable %s", name)
		}
		if !seeds[name].IsValid() {
			return fmterr.Internalf(nil, "invalid seed %s for variable %s", seeds[name], name)
		}
		c.graph.AtLeast(v.Key(), seeds[name], RuleSignature)
	}
	return nil
}

func (c *checker) lookup(fn, name string, node ast.Node) (*Var, error) {
	v, ok := c.env.Lookup(fn, name)
	if !ok {
		return nil, fmterr.Errorf(fmterr.UndefinedVariable, name, node, "undefined variable %s", name)
	}
	return v, nil
}

func (c *checker) stmt(fn string, stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		return c.decl(fn, s)
	case *ast.AssignStmt:
		return c.assign(fn, s)
	case *ast.SampleStmt:
		return c.sample(fn, s)
	case *ast.BlockStmt:
		for _, sub := range s.List {
			if err := c.stmt(fn, sub); err != nil {
				return err
			}
		}
		return nil
	case *ast.FuncDecl:
		return fmterr.Errorf(fmterr.InvalidStatement, s.Name, s, "function %s must be defined at the top-level", s.Name)
	}
	return fmterr.Internalf(stmt, "statement %T not supported", stmt)
}

func (c *checker) decl(fn string, s *ast.DeclStmt) error {
	if s.Data && s.Init != nil {
		return fmterr.Errorf(fmterr.InvalidAssignment, s.Name, s, "data variable %s cannot be initialized", s.Name)
	}
	if s.Data && fn != "" {
		return fmterr.Errorf(fmterr.InvalidStatement, s.Name, s, "data variable %s cannot be declared in function %s", s.Name, fn)
	}
	// The initializer is checked before the declaration: it cannot read the
	// variable being declared.
	var init string
	if s.Init != nil {
		var err error
		if init, err = c.expr(fn, s.Init, RuleAssign); err != nil {
			return err
		}
	}
	v := &Var{
		Func:     fn,
		Name:     s.Name,
		Type:     s.Type,
		Data:     s.Data,
		Assigned: s.Init != nil,
		Decl:     s,
	}
	if err := c.env.scope(fn).Define(s.Name, v); err != nil {
		return fmterr.Errorf(fmterr.Redeclared, s.Name, s, "%s declared more than once", s.Name)
	}
	display := s.Name
	if fn != "" {
		display = fmt.Sprintf("%s (local of %s)", s.Name, fn)
	}
	c.graph.AddVar(v.Key(), display)
	c.graph.SetSource(v.Key(), s)
	if s.Init != nil {
		c.graph.Flow(init, v.Key(), RuleAssign)
	}
	return nil
}

func (c *checker) assign(fn string, s *ast.AssignStmt) error {
	v, err := c.lookup(fn, s.Name, s)
	if err != nil {
		return err
	}
	if v.Data {
		return fmterr.Errorf(fmterr.InvalidAssignment, s.Name, s, "cannot assign data variable %s", s.Name)
	}
	val, err := c.expr(fn, s.Value, RuleAssign)
	if err != nil {
		return err
	}
	v.Assigned = true
	c.graph.Flow(val, v.Key(), RuleAssign)
	return nil
}

func (c *checker) sample(fn string, s *ast.SampleStmt) error {
	v, err := c.lookup(fn, s.Name, s)
	if err != nil {
		return err
	}
	if !c.reg.IsDist(s.Dist) {
		return fmterr.Errorf(fmterr.UndefinedFunction, s.Dist, s, "undefined distribution %s", s.Dist)
	}
	c.graph.AtMost(v.Key(), level.Model, RuleSample)
	for _, arg := range s.Args {
		key, err := c.expr(fn, arg, RuleSample)
		if err != nil {
			return err
		}
		c.graph.AtMost(key, level.Model, RuleSample)
	}
	return nil
}

// expr creates a level variable for an expression and returns its key.
// The level of the expression is at least the level of every variable it
// reads and of every user function it calls.
func (c *checker) expr(fn string, expr ast.Expr, rule string) (string, error) {
	c.nExprs++
	key := fmt.Sprintf("$%d", c.nExprs)
	c.graph.AddExprVar(key, "`"+expr.String()+"`")
	c.graph.SetSource(key, expr)
	var err error
	ast.Inspect(expr, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		switch nT := n.(type) {
		case *ast.Ident:
			var v *Var
			if v, err = c.lookup(fn, nT.Name, expr); err != nil {
				return false
			}
			c.graph.Flow(v.Key(), key, rule)
		case *ast.CallExpr:
			if f, ok := c.funcs[nT.Fun]; ok {
				err = c.call(fn, f, nT, key)
				return false
			}
			if !c.reg.IsFunc(nT.Fun) {
				err = fmterr.Errorf(fmterr.UndefinedFunction, nT.Fun, nT, "undefined function %s", nT.Fun)
				return false
			}
			if builtins.IsRNG(nT.Fun) {
				c.graph.AtLeast(key, level.GenQuantity, RuleRNG)
			}
		}
		return true
	})
	return key, err
}

// call generates the constraints of a call to a user function: every
// parameter is at least the level of its argument and the expression
// calling the function is at least the level of the return value.
func (c *checker) call(fn string, f *ast.FuncDecl, call *ast.CallExpr, exprKey string) error {
	if len(call.Args) != len(f.Params) {
		return fmterr.Errorf(fmterr.ArityMismatch, f.Name, call,
			"function %s expects %d arguments but got %d", f.Name, len(f.Params), len(call.Args))
	}
	for i, arg := range call.Args {
		argKey, err := c.expr(fn, arg, RuleCall)
		if err != nil {
			return err
		}
		c.graph.Flow(argKey, Key(f.Name, f.Params[i].Name), RuleCall)
	}
	c.graph.Flow(ReturnKey(f.Name), exprKey, RuleReturn)
	return nil
}

// Signature is the level-typed signature of a function. A signature is
// computed once per function and shared by all its call sites.
type Signature struct {
	Func string
	// Params are the levels of the parameters in order.
	Params []level.Level
	// Vars are the levels of the parameters and locals in declaration order.
	Vars *ordered.Map[string, level.Level]
	// Return is the level of the return value.
	Return level.Level
}

// Level returns the level of a parameter or a local of the function.
func (s *Signature) Level(name string) (level.Level, bool) {
	return s.Vars.Load(name)
}

func (s *Signature) String() string {
	return fmt.Sprintf("%s%v %s", s.Func, s.Params, s.Return)
}

// Result of a level inference.
type Result struct {
	env    *Env
	graph  *Graph
	levels map[string]level.Level
	sigs   *ordered.Map[string, *Signature]
}

func newResult(prog *ast.Program, env *Env, graph *Graph, levels map[string]level.Level) *Result {
	r := &Result{
		env:    env,
		graph:  graph,
		levels: levels,
		sigs:   ordered.NewMap[string, *Signature](),
	}
	for _, f := range prog.Funcs {
		sig := &Signature{
			Func:   f.Name,
			Vars:   ordered.NewMap[string, level.Level](),
			Return: levels[ReturnKey(f.Name)],
		}
		for _, v := range env.Vars(f.Name) {
			lvl := levels[v.Key()]
			sig.Vars.Store(v.Name, lvl)
			if v.Param {
				sig.Params = append(sig.Params, lvl)
			}
		}
		r.sigs.Store(f.Name, sig)
	}
	return r
}

// Level returns the level of a program variable.
func (r *Result) Level(name string) (level.Level, bool) {
	if _, ok := r.env.Lookup("", name); !ok {
		return level.Data, false
	}
	l, ok := r.levels[name]
	return l, ok
}

// Assigned returns true if a program variable is assigned anywhere.
func (r *Result) Assigned(name string) bool {
	v, ok := r.env.Lookup("", name)
	return ok && v.Assigned
}

// Var returns the environment entry of a program variable.
func (r *Result) Var(name string) (*Var, bool) {
	return r.env.Lookup("", name)
}

// Vars returns the program variables in declaration order.
func (r *Result) Vars() []*Var {
	return r.env.Vars("")
}

// Names returns the sorted names of the program variables.
func (r *Result) Names() []string {
	names := make(map[string]bool)
	for _, v := range r.Vars() {
		names[v.Name] = true
	}
	sorted := maps.Keys(names)
	slices.Sort(sorted)
	return sorted
}

// Signature returns the signature of a function.
func (r *Result) Signature(fn string) (*Signature, bool) {
	return r.sigs.Load(fn)
}

// Signatures returns the signatures of all the functions in definition order.
func (r *Result) Signatures() []*Signature {
	return slices.Collect(r.sigs.Values())
}

// Graph returns the solved constraint graph.
func (r *Result) Graph() *Graph {
	return r.graph
}
