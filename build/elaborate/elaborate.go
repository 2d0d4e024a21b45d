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

// Package elaborate statically inlines calls to user-defined functions.
//
// Every call is replaced, in evaluation order, by:
//
//	T p_N = argument;   // one declaration per parameter
//	...                 // the body of the function, renamed
//
// followed by the renamed return expression at the position of the call.
// Parameters and locals of the function receive fresh names at every call
// site so that inlined bodies never capture a variable of the caller and
// never clash with each other.
package elaborate

import (
	"log/slog"
	"slices"

	"github.com/slicstan/slicstan/api/options"
	"github.com/slicstan/slicstan/base/ordered"
	"github.com/slicstan/slicstan/base/uname"
	"github.com/slicstan/slicstan/build/ast"
	"github.com/slicstan/slicstan/build/fmterr"
	"github.com/slicstan/slicstan/build/infer"
)

type (
	// Origin is the variable of a function from which a fresh variable has
	// been inlined.
	Origin struct {
		Func string
		Name string
		// Call is the index of the inlined call, counting from 1 in
		// evaluation order over the whole program.
		Call int
	}

	// Elaborated is a program free of user-defined function calls.
	Elaborated struct {
		// Program has no function definitions and no nested blocks.
		Program *ast.Program
		// Origins maps every fresh variable to its origin, in order of creation.
		Origins *ordered.Map[string, Origin]
		// Calls is the number of inlined calls.
		Calls int
	}
)

// Seeds returns the levels computed for the function parameters and locals
// before elaboration, keyed by the name of their inlined copies.
// The levels are lower bounds for the inference on the elaborated program.
func (e *Elaborated) Seeds(res *infer.Result) (infer.Seeds, error) {
	seeds := make(infer.Seeds, e.Origins.Len())
	for name, origin := range e.Origins.All() {
		sig, ok := res.Signature(origin.Func)
		if !ok {
			return nil, fmterr.Internalf(nil, "no signature for function %s", origin.Func)
		}
		lvl, ok := sig.Level(origin.Name)
		if !ok {
			return nil, fmterr.Internalf(nil, "signature of %s has no variable %s", origin.Func, origin.Name)
		}
		seeds[name] = lvl
	}
	return seeds, nil
}

// Elaborator inlines the function calls of programs.
type Elaborator struct {
	logger   *slog.Logger
	maxDepth int
	maxCalls int
	sep      string
}

// New returns an elaborator given compiler options.
func New(opts *options.Options) *Elaborator {
	return &Elaborator{
		logger:   opts.Logger,
		maxDepth: opts.MaxInlineDepth,
		maxCalls: opts.MaxInlinedCalls,
		sep:      opts.NameSeparator,
	}
}

type inliner struct {
	funcs   map[string]*ast.FuncDecl
	names   *uname.Allocator
	origins *ordered.Map[string, Origin]
	chain   []string
	calls   int
	max     int
}

// Elaborate returns a program in which every call to a user function has
// been inlined. The call graph of the program must be bounded.
func (el *Elaborator) Elaborate(prog *ast.Program) (*Elaborated, error) {
	calls := NewCallGraph(prog)
	if err := calls.CheckBounded(el.maxDepth); err != nil {
		return nil, err
	}
	if err := calls.CheckSize(prog.Stmts, el.maxCalls); err != nil {
		return nil, err
	}
	in := &inliner{
		funcs:   make(map[string]*ast.FuncDecl),
		names:   uname.New(el.sep),
		origins: ordered.NewMap[string, Origin](),
		max:     el.maxDepth,
	}
	for _, f := range prog.Funcs {
		in.funcs[f.Name] = f
	}
	in.registerNames(prog)
	stmts, err := in.stmts(prog.Stmts)
	if err != nil {
		return nil, err
	}
	out := &Elaborated{
		Program: &ast.Program{Stmts: stmts},
		Origins: in.origins,
		Calls:   in.calls,
	}
	if err := in.checkCallFree(out.Program); err != nil {
		return nil, err
	}
	el.logger.Debug("calls inlined", "calls", in.calls, "fresh", in.origins.Len())
	return out, nil
}

// registerNames reserves every name declared by the user so that fresh
// names never capture them.
func (in *inliner) registerNames(prog *ast.Program) {
	register := func(n ast.Node) bool {
		switch nT := n.(type) {
		case *ast.DeclStmt:
			in.names.Register(nT.Name)
		case *ast.AssignStmt:
			in.names.Register(nT.Name)
		case *ast.SampleStmt:
			in.names.Register(nT.Name)
		case *ast.Ident:
			in.names.Register(nT.Name)
		}
		return true
	}
	for _, f := range prog.Funcs {
		in.names.Register(f.ParamNames()...)
		ast.Inspect(f, register)
	}
	for _, stmt := range prog.Stmts {
		ast.Inspect(stmt, register)
	}
}

func (in *inliner) checkCallFree(prog *ast.Program) error {
	for _, stmt := range prog.Stmts {
		for _, call := range ast.Calls(stmt) {
			if _, ok := in.funcs[call.Fun]; ok {
				return fmterr.Internalf(stmt, "call to %s left after elaboration", call.Fun)
			}
		}
	}
	return nil
}

func (in *inliner) stmts(list []ast.Stmt) ([]ast.Stmt, error) {
	var out []ast.Stmt
	for _, stmt := range list {
		stmts, err := in.stmt(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
	return out, nil
}

func (in *inliner) stmt(stmt ast.Stmt) ([]ast.Stmt, error) {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		pre, init, err := in.expr(s.Init)
		if err != nil {
			return nil, err
		}
		return append(pre, &ast.DeclStmt{Type: s.Type, Name: s.Name, Data: s.Data, Init: init}), nil
	case *ast.AssignStmt:
		pre, val, err := in.expr(s.Value)
		if err != nil {
			return nil, err
		}
		return append(pre, &ast.AssignStmt{Name: s.Name, Value: val}), nil
	case *ast.SampleStmt:
		pre, args, err := in.exprs(s.Args)
		if err != nil {
			return nil, err
		}
		return append(pre, &ast.SampleStmt{Name: s.Name, Dist: s.Dist, Args: args}), nil
	case *ast.BlockStmt:
		return in.stmts(s.List)
	}
	return nil, fmterr.Internalf(stmt, "statement %T not supported by the elaborator", stmt)
}

func (in *inliner) exprs(exprs []ast.Expr) ([]ast.Stmt, []ast.Expr, error) {
	if exprs == nil {
		return nil, nil, nil
	}
	var pre []ast.Stmt
	out := make([]ast.Expr, len(exprs))
	for i, expr := range exprs {
		stmts, x, err := in.expr(expr)
		if err != nil {
			return nil, nil, err
		}
		pre = append(pre, stmts...)
		out[i] = x
	}
	return pre, out, nil
}

// expr returns the statements computing the calls of an expression, in
// evaluation order, and the expression without calls.
func (in *inliner) expr(expr ast.Expr) ([]ast.Stmt, ast.Expr, error) {
	switch e := expr.(type) {
	case nil:
		return nil, nil, nil
	case *ast.BasicLit:
		c := *e
		return nil, &c, nil
	case *ast.Ident:
		return nil, &ast.Ident{Name: e.Name}, nil
	case *ast.UnaryExpr:
		pre, x, err := in.expr(e.X)
		if err != nil {
			return nil, nil, err
		}
		return pre, &ast.UnaryExpr{Op: e.Op, X: x}, nil
	case *ast.BinaryExpr:
		pre, xy, err := in.exprs([]ast.Expr{e.X, e.Y})
		if err != nil {
			return nil, nil, err
		}
		return pre, &ast.BinaryExpr{Op: e.Op, X: xy[0], Y: xy[1]}, nil
	case *ast.IndexExpr:
		pre, all, err := in.exprs(append([]ast.Expr{e.X}, e.Indices...))
		if err != nil {
			return nil, nil, err
		}
		return pre, &ast.IndexExpr{X: all[0], Indices: all[1:]}, nil
	case *ast.CallExpr:
		pre, args, err := in.exprs(e.Args)
		if err != nil {
			return nil, nil, err
		}
		f, ok := in.funcs[e.Fun]
		if !ok {
			return pre, &ast.CallExpr{Fun: e.Fun, Args: args}, nil
		}
		body, result, err := in.inline(f, e, args)
		if err != nil {
			return nil, nil, err
		}
		return append(pre, body...), result, nil
	}
	return nil, nil, fmterr.Internalf(expr, "expression %T not supported by the elaborator", expr)
}

// inline returns the statements of a call to f with arguments args
// (already free of calls) and the expression of the returned value.
func (in *inliner) inline(f *ast.FuncDecl, call *ast.CallExpr, args []ast.Expr) ([]ast.Stmt, ast.Expr, error) {
	if len(args) != len(f.Params) {
		return nil, nil, fmterr.Errorf(fmterr.ArityMismatch, f.Name, call,
			"function %s expects %d arguments but got %d", f.Name, len(f.Params), len(args))
	}
	in.chain = append(in.chain, f.Name)
	defer func() { in.chain = in.chain[:len(in.chain)-1] }()
	if len(in.chain) > in.max {
		return nil, nil, fmterr.NonTerminating(slices.Clone(in.chain), call,
			"calls nested more than %d deep", in.max)
	}
	in.calls++
	callID := in.calls
	fresh := make(map[string]string)
	rename := func(name string) string {
		if renamed, ok := fresh[name]; ok {
			return renamed
		}
		return name
	}
	alloc := func(name string) string {
		renamed := in.names.Fresh(name)
		fresh[name] = renamed
		in.origins.Store(renamed, Origin{Func: f.Name, Name: name, Call: callID})
		return renamed
	}
	var out []ast.Stmt
	for i, param := range f.Params {
		out = append(out, &ast.DeclStmt{
			Type: param.Type,
			Name: alloc(param.Name),
			Init: args[i],
		})
	}
	var body []ast.Stmt
	if f.Body != nil {
		body = ast.Flatten(f.Body.List)
	}
	for _, stmt := range body {
		if decl, ok := stmt.(*ast.DeclStmt); ok {
			alloc(decl.Name)
		}
	}
	for _, stmt := range body {
		renamed, err := ast.RenameStmt(stmt, rename)
		if err != nil {
			return nil, nil, fmterr.Internal(err)
		}
		stmts, err := in.stmt(renamed)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, stmts...)
	}
	result, err := ast.RenameExpr(f.Result, rename)
	if err != nil {
		return nil, nil, fmterr.Internal(err)
	}
	pre, result, err := in.expr(result)
	if err != nil {
		return nil, nil, err
	}
	return append(out, pre...), result, nil
}
