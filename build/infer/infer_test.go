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

package infer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/slicstan/slicstan/api/options"
	"github.com/slicstan/slicstan/build/ast"
	h "github.com/slicstan/slicstan/build/ast/asthelper"
	"github.com/slicstan/slicstan/build/fmterr"
	"github.com/slicstan/slicstan/build/infer"
	"github.com/slicstan/slicstan/build/level"
)

func newEngine() *infer.Engine {
	return infer.New(options.New())
}

func levelsOf(t *testing.T, res *infer.Result) map[string]level.Level {
	t.Helper()
	got := make(map[string]level.Level)
	for _, name := range res.Names() {
		lvl, ok := res.Level(name)
		if !ok {
			t.Fatalf("no level for %s", name)
		}
		got[name] = lvl
	}
	return got
}

// normalModel is a model with one data variable and two parameters.
func normalModel(extra ...ast.Stmt) *ast.Program {
	return h.Program(append([]ast.Stmt{
		h.Decl("mu"),
		h.Decl("sigma"),
		h.Data("y"),
		h.Sample("y", "normal", h.Ident("mu"), h.Ident("sigma")),
	}, extra...)...)
}

// scaledNormal returns a program calling a function twice:
//
//	f(real m, real s) { real r; r ~ normal(0, 1); return s * r + m; }
//	real y = f(0, 3);
//	real x = f(0, exp(y / 2));
func scaledNormal() *ast.Program {
	f := h.Func("f", []*ast.Field{h.Param("m"), h.Param("s")},
		h.Add(h.Mul(h.Ident("s"), h.Ident("r")), h.Ident("m")),
		h.Decl("r"),
		h.Sample("r", "normal", h.Num("0"), h.Num("1")),
	)
	return h.ProgramWithFuncs([]*ast.FuncDecl{f},
		h.DeclInit("y", h.Call("f", h.Num("0"), h.Num("3"))),
		h.DeclInit("x", h.Call("f", h.Num("0"), h.Call("exp", h.Div(h.Ident("y"), h.Num("2"))))),
	)
}

func TestInferLevels(t *testing.T) {
	tests := []struct {
		name string
		prog *ast.Program
		want map[string]level.Level
	}{
		{
			name: "normal model",
			prog: normalModel(),
			want: map[string]level.Level{
				"mu":    level.Model,
				"sigma": level.Model,
				"y":     level.Data,
			},
		},
		{
			name: "derived quantity",
			prog: normalModel(h.DeclInit("variance", h.Mul(h.Ident("sigma"), h.Ident("sigma")))),
			want: map[string]level.Level{
				"mu":       level.Model,
				"sigma":    level.Model,
				"y":        level.Data,
				"variance": level.GenQuantity,
			},
		},
		{
			name: "transformed data",
			prog: h.Program(
				h.Data("y"),
				h.DeclInit("logy", h.Call("log", h.Ident("y"))),
			),
			want: map[string]level.Level{
				"y":    level.Data,
				"logy": level.Data,
			},
		},
		{
			name: "transformed parameter",
			prog: normalModel(
				h.Decl("z"),
				h.DeclInit("tau", h.Mul(h.Ident("mu"), h.Num("2"))),
				h.Sample("z", "normal", h.Ident("tau"), h.Num("1")),
			),
			want: map[string]level.Level{
				"mu":    level.Model,
				"sigma": level.Model,
				"y":     level.Data,
				"z":     level.Model,
				"tau":   level.Model,
			},
		},
		{
			name: "random number generator",
			prog: h.Program(h.DeclInit("z", h.Call("normal_rng", h.Num("0"), h.Num("1")))),
			want: map[string]level.Level{
				"z": level.GenQuantity,
			},
		},
		{
			name: "assignment after declaration",
			prog: normalModel(
				h.Decl("t"),
				h.Assign("t", h.Ident("y")),
			),
			want: map[string]level.Level{
				"mu":    level.Model,
				"sigma": level.Model,
				"y":     level.Data,
				"t":     level.Data,
			},
		},
		{
			name: "nested block",
			prog: h.Program(
				h.Data("y"),
				h.Block(h.DeclInit("w", h.Ident("y"))),
				h.DeclInit("v", h.Ident("w")),
			),
			want: map[string]level.Level{
				"y": level.Data,
				"w": level.Data,
				"v": level.Data,
			},
		},
		{
			name: "function calls",
			prog: scaledNormal(),
			want: map[string]level.Level{
				"y": level.GenQuantity,
				"x": level.GenQuantity,
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res, err := newEngine().Infer(test.prog, nil)
			if err != nil {
				t.Fatalf("cannot infer levels:\n%+v", err)
			}
			if diff := cmp.Diff(test.want, levelsOf(t, res)); diff != "" {
				t.Errorf("unexpected levels (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	res, err := newEngine().Infer(scaledNormal(), nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	sig, ok := res.Signature("f")
	if !ok {
		t.Fatal("no signature for f")
	}
	if diff := cmp.Diff([]level.Level{level.Data, level.GenQuantity}, sig.Params); diff != "" {
		t.Errorf("unexpected parameter levels (-want +got):\n%s", diff)
	}
	if sig.Return != level.GenQuantity {
		t.Errorf("return level: got %s but want %s", sig.Return, level.GenQuantity)
	}
	wantVars := map[string]level.Level{
		"m": level.Data,
		"s": level.GenQuantity,
		"r": level.Model,
	}
	gotVars := make(map[string]level.Level)
	for name, lvl := range sig.Vars.All() {
		gotVars[name] = lvl
	}
	if diff := cmp.Diff(wantVars, gotVars); diff != "" {
		t.Errorf("unexpected variable levels (-want +got):\n%s", diff)
	}
	if got, want := sig.String(), "f[data genquant] genquant"; got != want {
		t.Errorf("got signature %q but want %q", got, want)
	}
	if got := len(res.Signatures()); got != 1 {
		t.Errorf("got %d signatures but want 1", got)
	}
}

func TestSignatureWithoutCall(t *testing.T) {
	// An uncalled function still gets a signature: parameters are Data.
	f := h.Func("twice", []*ast.Field{h.Param("a")}, h.Mul(h.Ident("a"), h.Num("2")))
	res, err := newEngine().Infer(h.ProgramWithFuncs([]*ast.FuncDecl{f}), nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	sig, _ := res.Signature("twice")
	if got, want := sig.String(), "twice[data] data"; got != want {
		t.Errorf("got signature %q but want %q", got, want)
	}
}

func TestAssigned(t *testing.T) {
	res, err := newEngine().Infer(normalModel(
		h.Decl("t"),
		h.Assign("t", h.Ident("mu")),
	), nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	for name, want := range map[string]bool{
		"y":  false,
		"mu": false,
		"t":  true,
	} {
		if got := res.Assigned(name); got != want {
			t.Errorf("%s: got assigned %v but want %v", name, got, want)
		}
	}
	v, ok := res.Var("y")
	if !ok || !v.Data {
		t.Errorf("y should be a data variable, got %+v", v)
	}
	var names []string
	for _, v := range res.Vars() {
		names = append(names, v.Name)
	}
	if diff := cmp.Diff([]string{"mu", "sigma", "y", "t"}, names); diff != "" {
		t.Errorf("unexpected declaration order (-want +got):\n%s", diff)
	}
}

func TestSeeds(t *testing.T) {
	prog := h.Program(h.DeclInit("a", h.Num("1")), h.DeclInit("b", h.Ident("a")))
	tests := []struct {
		seeds infer.Seeds
		want  map[string]level.Level
	}{
		{
			want: map[string]level.Level{"a": level.Data, "b": level.Data},
		},
		{
			seeds: infer.Seeds{"a": level.Model},
			want:  map[string]level.Level{"a": level.GenQuantity, "b": level.GenQuantity},
		},
		{
			seeds: infer.Seeds{"b": level.GenQuantity},
			want:  map[string]level.Level{"a": level.Data, "b": level.GenQuantity},
		},
	}
	for i, test := range tests {
		res, err := newEngine().Infer(prog, test.seeds)
		if err != nil {
			t.Fatalf("test %d: %+v", i, err)
		}
		if diff := cmp.Diff(test.want, levelsOf(t, res)); diff != "" {
			t.Errorf("test %d: unexpected levels (-want +got):\n%s", i, diff)
		}
	}
	_, err := newEngine().Infer(prog, infer.Seeds{"undeclared": level.Model})
	if got := fmterr.KindOf(err); got != fmterr.InternalInvariantViolation {
		t.Errorf("seed of an undeclared variable: got error kind %s but want %s", got, fmterr.InternalInvariantViolation)
	}
	_, err = newEngine().Infer(prog, infer.Seeds{"a": level.Level(7)})
	if got := fmterr.KindOf(err); got != fmterr.InternalInvariantViolation {
		t.Errorf("invalid seed: got error kind %s but want %s", got, fmterr.InternalInvariantViolation)
	}
}

func TestNamesAreSorted(t *testing.T) {
	prog := h.Program(
		h.DeclInit("zeta", h.Num("1")),
		h.Data("beta"),
		h.DeclInit("alpha", h.Ident("beta")),
		h.DeclInit("mid", h.Ident("zeta")),
	)
	res, err := newEngine().Infer(prog, infer.Seeds{"mid": level.Model, "zeta": level.Data})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if diff := cmp.Diff([]string{"alpha", "beta", "mid", "zeta"}, res.Names()); diff != "" {
		t.Errorf("unexpected names (-want +got):\n%s", diff)
	}
}

func TestInconsistentLevels(t *testing.T) {
	// g samples its parameter.
	g := h.Func("g", []*ast.Field{h.Param("a")}, h.Ident("q"),
		h.Decl("q"),
		h.Sample("q", "normal", h.Ident("a"), h.Num("1")),
	)
	tests := []struct {
		name       string
		prog       *ast.Program
		wantName   string
		wantNode   string
		wantBounds [2]level.Level
		wantRules  [2]string
	}{
		{
			name: "generated quantity in the model",
			prog: h.Program(
				h.Decl("mu"),
				h.DeclInit("z", h.Call("normal_rng", h.Num("0"), h.Num("1"))),
				h.Sample("mu", "normal", h.Ident("z"), h.Num("1")),
			),
			wantName:   "z",
			wantNode:   "real z = normal_rng(0, 1);",
			wantBounds: [2]level.Level{level.GenQuantity, level.Model},
			wantRules:  [2]string{infer.RuleRNG, infer.RuleSample},
		},
		{
			name: "generated quantity passed to a sampled parameter",
			prog: h.ProgramWithFuncs([]*ast.FuncDecl{g},
				h.DeclInit("z", h.Call("g", h.Call("normal_rng", h.Num("0"), h.Num("1")))),
			),
			wantName:   "a (parameter of g)",
			wantNode:   "real a",
			wantBounds: [2]level.Level{level.GenQuantity, level.Model},
			wantRules:  [2]string{infer.RuleRNG, infer.RuleSample},
		},
		{
			name: "generated quantity sampled",
			prog: h.Program(
				h.DeclInit("z", h.Call("normal_rng", h.Num("0"), h.Num("1"))),
				h.Sample("z", "normal", h.Num("0"), h.Num("1")),
			),
			wantName:   "z",
			wantNode:   "real z = normal_rng(0, 1);",
			wantBounds: [2]level.Level{level.GenQuantity, level.Model},
			wantRules:  [2]string{infer.RuleRNG, infer.RuleSample},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := newEngine().Infer(test.prog, nil)
			cErr, ok := fmterr.As(err)
			if !ok {
				t.Fatalf("expected a compiler error but got %v", err)
			}
			if cErr.Kind != fmterr.InconsistentLevelConstraints {
				t.Fatalf("got error kind %s but want %s: %v", cErr.Kind, fmterr.InconsistentLevelConstraints, err)
			}
			if cErr.Name != test.wantName {
				t.Errorf("error names %q but want %q", cErr.Name, test.wantName)
			}
			if cErr.Node == nil {
				t.Fatalf("error does not point to a declaration")
			}
			if got := cErr.Node.String(); got != test.wantNode {
				t.Errorf("error points to %q but want %q", got, test.wantNode)
			}
			gotBounds := [2]level.Level{cErr.Lower.Level, cErr.Upper.Level}
			if gotBounds != test.wantBounds {
				t.Errorf("got bounds %v but want %v", gotBounds, test.wantBounds)
			}
			gotRules := [2]string{cErr.Lower.Rule, cErr.Upper.Rule}
			if gotRules != test.wantRules {
				t.Errorf("got rules %v but want %v", gotRules, test.wantRules)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	twice := h.Func("twice", []*ast.Field{h.Param("a")}, h.Mul(h.Ident("a"), h.Num("2")))
	tests := []struct {
		name     string
		prog     *ast.Program
		kind     fmterr.Kind
		wantName string
	}{
		{
			name:     "undefined variable",
			prog:     h.Program(h.DeclInit("x", h.Ident("y"))),
			kind:     fmterr.UndefinedVariable,
			wantName: "y",
		},
		{
			name:     "initializer reading the declared variable",
			prog:     h.Program(h.DeclInit("x", h.Ident("x"))),
			kind:     fmterr.UndefinedVariable,
			wantName: "x",
		},
		{
			name:     "assignment to an undefined variable",
			prog:     h.Program(h.Assign("x", h.Num("1"))),
			kind:     fmterr.UndefinedVariable,
			wantName: "x",
		},
		{
			name: "function reading a program variable",
			prog: h.ProgramWithFuncs([]*ast.FuncDecl{
				h.Func("f", []*ast.Field{h.Param("a")}, h.Add(h.Ident("a"), h.Ident("y"))),
			}, h.Data("y")),
			kind:     fmterr.UndefinedVariable,
			wantName: "y",
		},
		{
			name:     "undefined function",
			prog:     h.Program(h.DeclInit("x", h.Call("foo", h.Num("1")))),
			kind:     fmterr.UndefinedFunction,
			wantName: "foo",
		},
		{
			name:     "undefined distribution",
			prog:     h.Program(h.Decl("x"), h.Sample("x", "foo", h.Num("1"))),
			kind:     fmterr.UndefinedFunction,
			wantName: "foo",
		},
		{
			name:     "distribution called as a function",
			prog:     h.Program(h.DeclInit("x", h.Call("normal", h.Num("0"), h.Num("1")))),
			kind:     fmterr.UndefinedFunction,
			wantName: "normal",
		},
		{
			name:     "arity mismatch",
			prog:     h.ProgramWithFuncs([]*ast.FuncDecl{twice}, h.DeclInit("x", h.Call("twice", h.Num("1"), h.Num("2")))),
			kind:     fmterr.ArityMismatch,
			wantName: "twice",
		},
		{
			name:     "variable declared twice",
			prog:     h.Program(h.Decl("x"), h.Decl("x")),
			kind:     fmterr.Redeclared,
			wantName: "x",
		},
		{
			name:     "variable redeclared in a block",
			prog:     h.Program(h.Decl("x"), h.Block(h.Decl("x"))),
			kind:     fmterr.Redeclared,
			wantName: "x",
		},
		{
			name:     "function defined twice",
			prog:     h.ProgramWithFuncs([]*ast.FuncDecl{twice, twice}),
			kind:     fmterr.Redeclared,
			wantName: "twice",
		},
		{
			name:     "function redefining a built-in",
			prog:     h.ProgramWithFuncs([]*ast.FuncDecl{h.Func("exp", []*ast.Field{h.Param("a")}, h.Ident("a"))}),
			kind:     fmterr.Redeclared,
			wantName: "exp",
		},
		{
			name: "parameter declared twice",
			prog: h.ProgramWithFuncs([]*ast.FuncDecl{
				h.Func("f", []*ast.Field{h.Param("a"), h.Param("a")}, h.Ident("a")),
			}),
			kind:     fmterr.Redeclared,
			wantName: "a",
		},
		{
			name:     "assignment to data",
			prog:     h.Program(h.Data("y"), h.Assign("y", h.Num("1"))),
			kind:     fmterr.InvalidAssignment,
			wantName: "y",
		},
		{
			name:     "initialized data",
			prog:     h.Program(&ast.DeclStmt{Type: ast.Real, Name: "y", Data: true, Init: h.Num("1")}),
			kind:     fmterr.InvalidAssignment,
			wantName: "y",
		},
		{
			name:     "function defined in a block",
			prog:     h.Program(h.Block(twice)),
			kind:     fmterr.InvalidStatement,
			wantName: "twice",
		},
		{
			name: "data declared in a function",
			prog: h.ProgramWithFuncs([]*ast.FuncDecl{
				h.Func("f", nil, h.Ident("d"), h.Data("d")),
			}),
			kind:     fmterr.InvalidStatement,
			wantName: "d",
		},
		{
			name:     "function without return value",
			prog:     h.ProgramWithFuncs([]*ast.FuncDecl{{Name: "f", Body: h.Block()}}),
			kind:     fmterr.InvalidStatement,
			wantName: "f",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := newEngine().Infer(test.prog, nil)
			if err == nil {
				t.Fatalf("expected an error but got nil")
			}
			cErr, ok := fmterr.As(err)
			if !ok {
				t.Fatalf("expected a compiler error but got %T: %v", err, err)
			}
			if cErr.Kind != test.kind {
				t.Errorf("got error kind %s but want %s: %v", cErr.Kind, test.kind, err)
			}
			if cErr.Name != test.wantName {
				t.Errorf("error names %q but want %q", cErr.Name, test.wantName)
			}
		})
	}
}

func TestExtraBuiltins(t *testing.T) {
	prog := h.Program(
		h.Decl("x"),
		h.Sample("x", "skew_normal", h.Call("owens_t", h.Num("1"), h.Num("2")), h.Num("1"), h.Num("0")),
	)
	if _, err := newEngine().Infer(prog, nil); fmterr.KindOf(err) != fmterr.UndefinedFunction {
		t.Errorf("expected an undefined function error but got %v", err)
	}
	engine := infer.New(options.New(
		options.WithBuiltins("owens_t"),
		options.WithDistributions("skew_normal"),
	))
	res, err := engine.Infer(prog, nil)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if lvl, _ := res.Level("x"); lvl != level.Model {
		t.Errorf("got level %s for x but want %s", lvl, level.Model)
	}
}

func TestDeterministicConstraints(t *testing.T) {
	var first []infer.Constraint
	for i := range 5 {
		res, err := newEngine().Infer(scaledNormal(), nil)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		got := res.Graph().Constraints()
		if i == 0 {
			first = got
			continue
		}
		if diff := cmp.Diff(first, got); diff != "" {
			t.Fatalf("constraints differ between two runs (-first +got):\n%s", diff)
		}
	}
}
