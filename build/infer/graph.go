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
	"fmt"

	"github.com/slicstan/slicstan/build/ast"
	"github.com/slicstan/slicstan/build/fmterr"
	"github.com/slicstan/slicstan/build/level"
)

// Rules creating constraints.
const (
	RuleData       = "data variable"
	RuleUnassigned = "never assigned"
	RuleAssign     = "assignment"
	RuleSample     = "sample"
	RuleRNG        = "random number generator"
	RuleCall       = "call argument"
	RuleReturn     = "return value"
	RuleSignature  = "function signature"
)

type (
	// Term of a constraint: either a level variable or a constant level.
	Term struct {
		// Var is the key of a level variable. Empty for constants.
		Var   string
		Const level.Level
	}

	// Constraint states that Lo is lower than or equal to Hi under the
	// correctness order.
	Constraint struct {
		Lo, Hi Term
		Rule   string
	}

	node struct {
		key     string
		display string
		// expr is true for the level variables of expressions.
		expr bool
		// source is the node declaring the variable. May be nil.
		source ast.Node
		bounds level.Bounds
		lower  fmterr.Bound
		upper  fmterr.Bound
		// succ are the nodes that must be greater or equal than this node.
		succ []int
		// pred are the nodes that must be lower or equal than this node.
		pred []int
	}

	// Graph is a constraint graph: nodes are level variables and edges are
	// inequalities under the correctness order.
	// A graph is built for one compilation and discarded once solved.
	Graph struct {
		nodes       []*node
		index       map[string]int
		constraints []Constraint
	}
)

// VarTerm returns a term for a level variable.
func VarTerm(key string) Term {
	return Term{Var: key}
}

// ConstTerm returns a term for a constant level.
func ConstTerm(l level.Level) Term {
	return Term{Const: l}
}

// IsConst returns true if the term is a constant level.
func (t Term) IsConst() bool {
	return t.Var == ""
}

func (t Term) String() string {
	if t.IsConst() {
		return t.Const.String()
	}
	return t.Var
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s <= %s (%s)", c.Lo, c.Hi, c.Rule)
}

// NewGraph returns an empty constraint graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]int)}
}

// AddVar adds a level variable to the graph if it does not exist yet.
// display is the name used in errors; if empty, the key is used.
func (g *Graph) AddVar(key, display string) {
	if _, ok := g.index[key]; ok {
		return
	}
	if display == "" {
		display = key
	}
	g.index[key] = len(g.nodes)
	g.nodes = append(g.nodes, &node{key: key, display: display})
}

// AddExprVar adds the level variable of an expression to the graph.
// Errors name the variables of expressions only when no user variable is
// at fault.
func (g *Graph) AddExprVar(key, display string) {
	g.AddVar(key, display)
	g.nodes[g.index[key]].expr = true
}

// SetSource sets the node reported by errors about a level variable.
func (g *Graph) SetSource(key string, source ast.Node) {
	if i, ok := g.index[key]; ok {
		g.nodes[i].source = source
	}
}

// Has returns true if a level variable is in the graph.
func (g *Graph) Has(key string) bool {
	_, ok := g.index[key]
	return ok
}

// Add a constraint to the graph. Variables are added if necessary.
func (g *Graph) Add(c Constraint) {
	if c.Lo.IsConst() && c.Hi.IsConst() {
		// Both sides are constant: checked by Solve.
		g.constraints = append(g.constraints, c)
		return
	}
	for _, t := range []Term{c.Lo, c.Hi} {
		if !t.IsConst() {
			g.AddVar(t.Var, "")
		}
	}
	g.constraints = append(g.constraints, c)
	if !c.Lo.IsConst() && !c.Hi.IsConst() {
		lo, hi := g.index[c.Lo.Var], g.index[c.Hi.Var]
		g.nodes[lo].succ = append(g.nodes[lo].succ, hi)
		g.nodes[hi].pred = append(g.nodes[hi].pred, lo)
	}
}

// AtLeast constrains a variable to be greater or equal than a level.
func (g *Graph) AtLeast(key string, l level.Level, rule string) {
	g.Add(Constraint{Lo: ConstTerm(l), Hi: VarTerm(key), Rule: rule})
}

// AtMost constrains a variable to be lower or equal than a level.
func (g *Graph) AtMost(key string, l level.Level, rule string) {
	g.Add(Constraint{Lo: VarTerm(key), Hi: ConstTerm(l), Rule: rule})
}

// Equal constrains a variable to be exactly a level.
func (g *Graph) Equal(key string, l level.Level, rule string) {
	g.AtLeast(key, l, rule)
	g.AtMost(key, l, rule)
}

// Flow constrains the variable lo to be lower or equal than hi:
// information flows from lo to hi.
func (g *Graph) Flow(lo, hi string, rule string) {
	g.Add(Constraint{Lo: VarTerm(lo), Hi: VarTerm(hi), Rule: rule})
}

// Constraints returns the constraints of the graph in the order they have
// been added.
func (g *Graph) Constraints() []Constraint {
	return append([]Constraint{}, g.constraints...)
}

// NumVars returns the number of level variables in the graph.
func (g *Graph) NumVars() int {
	return len(g.nodes)
}

// propagate computes, for every variable, the greatest lower bound and the
// lowest upper bound implied by all the constraints.
func (g *Graph) propagate() {
	for _, n := range g.nodes {
		n.bounds = level.Unbounded()
		n.lower = fmterr.Bound{Level: level.Data}
		n.upper = fmterr.Bound{Level: level.GenQuantity}
	}
	for _, c := range g.constraints {
		switch {
		case c.Lo.IsConst() && !c.Hi.IsConst():
			n := g.nodes[g.index[c.Hi.Var]]
			if level.Correctness.Less(n.bounds.Lower, c.Lo.Const) {
				n.bounds.Lower = c.Lo.Const
				n.lower = fmterr.Bound{Level: c.Lo.Const, Rule: c.Rule}
			}
		case !c.Lo.IsConst() && c.Hi.IsConst():
			n := g.nodes[g.index[c.Lo.Var]]
			if level.Correctness.Less(c.Hi.Const, n.bounds.Upper) {
				n.bounds.Upper = c.Hi.Const
				n.upper = fmterr.Bound{Level: c.Hi.Const, Rule: c.Rule}
			}
		}
	}
	// Worklist of nodes whose bounds have changed.
	work := make([]int, len(g.nodes))
	queued := make([]bool, len(g.nodes))
	for i := range g.nodes {
		work[i] = i
		queued[i] = true
	}
	push := func(i int) {
		if !queued[i] {
			queued[i] = true
			work = append(work, i)
		}
	}
	for len(work) > 0 {
		i := work[0]
		work = work[1:]
		queued[i] = false
		n := g.nodes[i]
		for _, s := range n.succ {
			succ := g.nodes[s]
			if level.Correctness.Less(succ.bounds.Lower, n.bounds.Lower) {
				succ.bounds.Lower = n.bounds.Lower
				succ.lower = origin(n.lower, n)
				push(s)
			}
		}
		for _, p := range n.pred {
			pred := g.nodes[p]
			if level.Correctness.Less(n.bounds.Upper, pred.bounds.Upper) {
				pred.bounds.Upper = n.bounds.Upper
				pred.upper = origin(n.upper, n)
				push(p)
			}
		}
	}
}

// origin returns the provenance of a bound propagated from a node.
func origin(b fmterr.Bound, from *node) fmterr.Bound {
	if b.From == "" {
		b.From = from.display
	}
	return b
}

// Solve the constraints. Returns the level of every variable.
//
// Bounds are first propagated through the whole graph. Only then, every
// variable takes the lowest level of its feasible interval under the
// performance order.
func (g *Graph) Solve() (map[string]level.Level, error) {
	for _, c := range g.constraints {
		if c.Lo.IsConst() && c.Hi.IsConst() && level.Correctness.Less(c.Hi.Const, c.Lo.Const) {
			return nil, fmterr.Inconsistent(c.String(), nil,
				fmterr.Bound{Level: c.Lo.Const, Rule: c.Rule},
				fmterr.Bound{Level: c.Hi.Const, Rule: c.Rule})
		}
	}
	g.propagate()
	if n := g.firstEmpty(); n != nil {
		return nil, fmterr.Inconsistent(n.display, n.source, n.lower, n.upper)
	}
	levels := make(map[string]level.Level, len(g.nodes))
	for _, n := range g.nodes {
		levels[n.key], _ = n.bounds.Pick(level.Performance)
	}
	if err := g.check(levels); err != nil {
		return nil, err
	}
	return levels, nil
}

// firstEmpty returns the first variable, in creation order, with no
// feasible level, preferring user variables over expressions.
func (g *Graph) firstEmpty() *node {
	var firstExpr *node
	for _, n := range g.nodes {
		if !n.bounds.Empty() {
			continue
		}
		if !n.expr {
			return n
		}
		if firstExpr == nil {
			firstExpr = n
		}
	}
	return firstExpr
}

func (g *Graph) value(t Term, levels map[string]level.Level) level.Level {
	if t.IsConst() {
		return t.Const
	}
	return levels[t.Var]
}

// check returns an error if a solution violates a constraint.
func (g *Graph) check(levels map[string]level.Level) error {
	for _, c := range g.constraints {
		lo, hi := g.value(c.Lo, levels), g.value(c.Hi, levels)
		if !level.Correctness.LessEq(lo, hi) {
			return fmterr.Internalf(nil, "solution violates constraint %s: %s > %s", c, lo, hi)
		}
	}
	return nil
}
