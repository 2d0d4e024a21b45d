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

// Package compiler compiles SlicStan programs into block-structured programs.
//
// The pipeline is:
//
//	level inference -> elaboration -> level inference -> block transformation
//
// Levels are first inferred on the source program, where every function has
// a single signature shared by all its call sites. Calls are then inlined and
// the levels are inferred again on the elaborated program, using the
// signature levels as lower bounds of the inlined variables. A compilation is
// all-or-nothing: the first error stops the pipeline.
package compiler

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/slicstan/slicstan/api/options"
	basefmt "github.com/slicstan/slicstan/base/fmt"
	"github.com/slicstan/slicstan/build/ast"
	"github.com/slicstan/slicstan/build/elaborate"
	"github.com/slicstan/slicstan/build/infer"
	"github.com/slicstan/slicstan/build/ir"
	"github.com/slicstan/slicstan/build/shred"
)

// Output of a compilation.
type Output struct {
	// IR is the partitioned program.
	IR *ir.Program
	// Source are the levels of the source program, including the function signatures.
	Source *infer.Result
	// Elaborated is the program after inlining.
	Elaborated *elaborate.Elaborated
	// Levels are the levels of the elaborated program.
	Levels *infer.Result
}

// Compiler compiles programs. A compiler can be used concurrently: every
// compilation owns its own constraint graph and name allocator.
type Compiler struct {
	logger *slog.Logger
	engine *infer.Engine
	elab   *elaborate.Elaborator
}

// New returns a compiler given a list of options.
func New(opts ...options.Option) (*Compiler, error) {
	o := options.New(opts...)
	if err := o.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid compiler options")
	}
	return &Compiler{
		logger: o.Logger,
		engine: infer.New(o),
		elab:   elaborate.New(o),
	}, nil
}

// Compile a program with a set of options.
func Compile(prog *ast.Program, opts ...options.Option) (*Output, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return c.Compile(prog)
}

// hoist moves the function definitions found in the top-level statements
// into the function list of the program.
func hoist(prog *ast.Program) *ast.Program {
	out := &ast.Program{Funcs: append([]*ast.FuncDecl{}, prog.Funcs...)}
	for _, stmt := range prog.Stmts {
		if f, ok := stmt.(*ast.FuncDecl); ok {
			out.Funcs = append(out.Funcs, f)
			continue
		}
		out.Stmts = append(out.Stmts, stmt)
	}
	return out
}

// Compile a program.
func (c *Compiler) Compile(prog *ast.Program) (*Output, error) {
	prog = hoist(prog)
	src, err := c.engine.Infer(prog, nil)
	if err != nil {
		return nil, err
	}
	for _, sig := range src.Signatures() {
		c.logger.Debug("function signature", "func", sig.Func, "params", sig.Params, "return", sig.Return)
	}
	elab, err := c.elab.Elaborate(prog)
	if err != nil {
		return nil, err
	}
	if c.logger.Enabled(context.Background(), slog.LevelDebug) {
		c.logger.Debug("elaborated program", "source", basefmt.Number(elab.Program.String()))
	}
	seeds, err := elab.Seeds(src)
	if err != nil {
		return nil, err
	}
	levels, err := c.engine.Infer(elab.Program, seeds)
	if err != nil {
		return nil, err
	}
	out, err := shred.Transform(elab.Program, levels)
	if err != nil {
		return nil, err
	}
	for blk, stmts := range out.Blocks() {
		c.logger.Debug("block", "name", blk.String(), "statements", len(stmts))
	}
	return &Output{
		IR:         out,
		Source:     src,
		Elaborated: elab,
		Levels:     levels,
	}, nil
}
