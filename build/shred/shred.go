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

// Package shred partitions an elaborated program into the blocks of the
// target language.
//
// Declarations are placed according to the level of the declared variable
// and whether the variable is assigned:
//
//	level     assigned  block
//	data      no        data
//	data      yes       transformed data
//	model     no        parameters
//	model     yes       transformed parameters
//	genquant  either    generated quantities
//
// Assignments follow the declaration of their target. Sample statements are
// placed in the model block. The relative order of statements within a
// block is the source order.
package shred

import (
	"github.com/slicstan/slicstan/base/ordered"
	"github.com/slicstan/slicstan/build/ast"
	"github.com/slicstan/slicstan/build/fmterr"
	"github.com/slicstan/slicstan/build/ir"
	"github.com/slicstan/slicstan/build/level"
	"github.com/slicstan/slicstan/internal/exprdeps"
)

// Levels gives the level type of the variables of a program.
type Levels interface {
	Level(name string) (level.Level, bool)
	Assigned(name string) bool
}

// Place returns the block of a variable declaration.
func Place(lvl level.Level, assigned bool) (ir.Block, bool) {
	if !lvl.IsValid() {
		return 0, false
	}
	switch {
	case lvl == level.Data && !assigned:
		return ir.Data, true
	case lvl == level.Data && assigned:
		return ir.TransformedData, true
	case lvl == level.Model && !assigned:
		return ir.Parameters, true
	case lvl == level.Model && assigned:
		return ir.TransformedParameters, true
	case lvl == level.GenQuantity:
		return ir.GeneratedQuantities, true
	}
	return 0, false
}

type transformer struct {
	levels Levels
	out    *ir.Program
	// blocks of the declared variables.
	blocks *ordered.Map[string, ir.Block]
}

// Transform partitions an elaborated program.
// Errors are compiler bugs: the program must have been elaborated and its
// levels inferred successfully.
func Transform(prog *ast.Program, levels Levels) (*ir.Program, error) {
	if len(prog.Funcs) > 0 {
		return nil, fmterr.Internalf(nil, "program with %d function definitions has not been elaborated", len(prog.Funcs))
	}
	t := &transformer{
		levels: levels,
		out:    &ir.Program{},
		blocks: ordered.NewMap[string, ir.Block](),
	}
	for _, stmt := range ast.Flatten(prog.Stmts) {
		if err := t.stmt(stmt); err != nil {
			return nil, err
		}
	}
	return t.out, nil
}

func (t *transformer) level(name string, node ast.Node) (level.Level, error) {
	lvl, ok := t.levels.Level(name)
	if !ok {
		return lvl, fmterr.Internalf(node, "no level for variable %s", name)
	}
	return lvl, nil
}

// checkFlow returns an error if an expression reads a variable of a level
// greater than the level of the variable it is assigned to.
func (t *transformer) checkFlow(target string, lvl level.Level, node ast.Node, exprs ...ast.Expr) error {
	for _, dep := range exprdeps.Of(nil, exprs...).Vars {
		depLvl, err := t.level(dep, node)
		if err != nil {
			return err
		}
		if !level.Correctness.LessEq(depLvl, lvl) {
			return fmterr.Internalf(node, "%s at level %s reads %s at level %s", target, lvl, dep, depLvl)
		}
	}
	return nil
}

func (t *transformer) stmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		lvl, err := t.level(s.Name, s)
		if err != nil {
			return err
		}
		assigned := t.levels.Assigned(s.Name)
		block, ok := Place(lvl, assigned)
		if !ok {
			return fmterr.Internalf(s, "no block for %s with level %s (assigned: %v)", s.Name, lvl, assigned)
		}
		if s.Init != nil {
			if err := t.checkFlow(s.Name, lvl, s, s.Init); err != nil {
				return err
			}
		}
		t.blocks.Store(s.Name, block)
		t.out.Append(block, s)
	case *ast.AssignStmt:
		block, ok := t.blocks.Load(s.Name)
		if !ok {
			return fmterr.Internalf(s, "assignment to %s before its declaration", s.Name)
		}
		lvl, err := t.level(s.Name, s)
		if err != nil {
			return err
		}
		if err := t.checkFlow(s.Name, lvl, s, s.Value); err != nil {
			return err
		}
		t.out.Append(block, s)
	case *ast.SampleStmt:
		if !t.blocks.Has(s.Name) {
			return fmterr.Internalf(s, "sample of %s before its declaration", s.Name)
		}
		if err := t.checkFlow(s.Name, level.Model, s, append([]ast.Expr{&ast.Ident{Name: s.Name}}, s.Args...)...); err != nil {
			return err
		}
		t.out.Append(ir.Model, s)
	default:
		return fmterr.Internalf(stmt, "statement %T cannot be placed in a block", stmt)
	}
	return nil
}
