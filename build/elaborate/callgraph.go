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

package elaborate

import (
	"slices"

	"github.com/slicstan/slicstan/base/ordered"
	"github.com/slicstan/slicstan/build/ast"
	"github.com/slicstan/slicstan/build/fmterr"
	"golang.org/x/exp/maps"
)

// CallGraph maps every user function to the user functions it calls.
type CallGraph struct {
	funcs map[string]*ast.FuncDecl
	// callees of every function, in order of first call.
	callees map[string]*ordered.Map[string, *ast.CallExpr]
}

// NewCallGraph returns the call graph of the functions of a program.
func NewCallGraph(prog *ast.Program) *CallGraph {
	g := &CallGraph{
		funcs:   make(map[string]*ast.FuncDecl),
		callees: make(map[string]*ordered.Map[string, *ast.CallExpr]),
	}
	for _, f := range prog.Funcs {
		g.funcs[f.Name] = f
	}
	for _, f := range prog.Funcs {
		callees := ordered.NewMap[string, *ast.CallExpr]()
		for _, call := range ast.Calls(f) {
			if _, ok := g.funcs[call.Fun]; !ok || callees.Has(call.Fun) {
				continue
			}
			callees.Store(call.Fun, call)
		}
		g.callees[f.Name] = callees
	}
	return g
}

// Funcs returns the sorted names of the functions in the graph.
func (g *CallGraph) Funcs() []string {
	names := maps.Keys(g.funcs)
	slices.Sort(names)
	return names
}

// Callees returns the functions called by a function in order of first call.
func (g *CallGraph) Callees(fn string) []string {
	callees, ok := g.callees[fn]
	if !ok {
		return nil
	}
	return slices.Collect(callees.Keys())
}

type color int

const (
	white color = iota
	grey
	black
)

// CheckBounded returns a NonTerminatingElaboration error if the functions
// cannot be statically unrolled: the call graph has a cycle or a chain of
// nested calls is deeper than maxDepth.
func (g *CallGraph) CheckBounded(maxDepth int) error {
	colors := make(map[string]color)
	depths := make(map[string]int)
	var chain []string
	var visit func(fn string, via *ast.CallExpr) error
	visit = func(fn string, via *ast.CallExpr) error {
		switch colors[fn] {
		case grey:
			start := slices.Index(chain, fn)
			cycle := append(slices.Clone(chain[start:]), fn)
			return fmterr.NonTerminating(cycle, via, "recursive call to %s cannot be unrolled", fn)
		case black:
			return nil
		}
		colors[fn] = grey
		chain = append(chain, fn)
		depth := 1
		for callee, call := range g.callees[fn].All() {
			if err := visit(callee, call); err != nil {
				return err
			}
			depth = max(depth, depths[callee]+1)
		}
		chain = chain[:len(chain)-1]
		colors[fn] = black
		depths[fn] = depth
		if depth > maxDepth {
			return fmterr.NonTerminating(append(slices.Clone(chain), fn), via,
				"calls to %s are nested %d deep, more than the maximum of %d", fn, depth, maxDepth)
		}
		return nil
	}
	for _, fn := range g.Funcs() {
		if err := visit(fn, nil); err != nil {
			return err
		}
	}
	return nil
}

// CheckSize returns a NonTerminatingElaboration error if inlining the calls
// of stmts would inline more than maxCalls function bodies.
// The call graph must be bounded.
func (g *CallGraph) CheckSize(stmts []ast.Stmt, maxCalls int) error {
	// Number of bodies inlined by one call to a function, including its own.
	// Counts saturate above maxCalls.
	sizes := make(map[string]int)
	var size func(fn string) int
	size = func(fn string) int {
		if n, ok := sizes[fn]; ok {
			return n
		}
		n := 1
		for _, call := range ast.Calls(g.funcs[fn]) {
			if _, ok := g.funcs[call.Fun]; ok {
				n = min(n+size(call.Fun), maxCalls+1)
			}
		}
		sizes[fn] = n
		return n
	}
	total := 0
	for _, stmt := range stmts {
		for _, call := range ast.Calls(stmt) {
			if _, ok := g.funcs[call.Fun]; !ok {
				continue
			}
			total = min(total+size(call.Fun), maxCalls+1)
			if total > maxCalls {
				return fmterr.NonTerminating([]string{call.Fun}, call,
					"inlining calls to %s expands to more than %d function bodies", call.Fun, maxCalls)
			}
		}
	}
	return nil
}
