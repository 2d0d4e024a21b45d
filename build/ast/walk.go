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

package ast

import (
	"github.com/pkg/errors"
)

// Inspect traverses a tree in depth-first order, calling f for each node.
// If f returns false, the children of the node are not visited.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *BasicLit, *Ident:
	case *UnaryExpr:
		Inspect(n.X, f)
	case *BinaryExpr:
		Inspect(n.X, f)
		Inspect(n.Y, f)
	case *IndexExpr:
		Inspect(n.X, f)
		for _, index := range n.Indices {
			Inspect(index, f)
		}
	case *CallExpr:
		for _, arg := range n.Args {
			Inspect(arg, f)
		}
	case *DeclStmt:
		if n.Init != nil {
			Inspect(n.Init, f)
		}
	case *AssignStmt:
		Inspect(n.Value, f)
	case *SampleStmt:
		for _, arg := range n.Args {
			Inspect(arg, f)
		}
	case *BlockStmt:
		for _, stmt := range n.List {
			Inspect(stmt, f)
		}
	case *FuncDecl:
		if n.Body != nil {
			Inspect(n.Body, f)
		}
		if n.Result != nil {
			Inspect(n.Result, f)
		}
	}
}

// Calls returns all the call expressions of a tree in evaluation order
// (arguments before the call consuming them).
func Calls(node Node) []*CallExpr {
	var calls []*CallExpr
	var visit func(Node)
	visit = func(n Node) {
		Inspect(n, func(sub Node) bool {
			call, ok := sub.(*CallExpr)
			if !ok {
				return true
			}
			for _, arg := range call.Args {
				visit(arg)
			}
			calls = append(calls, call)
			return false
		})
	}
	visit(node)
	return calls
}

// Flatten expands nested blocks into a single list of statements,
// keeping the source order.
func Flatten(stmts []Stmt) []Stmt {
	var flat []Stmt
	for _, stmt := range stmts {
		if block, ok := stmt.(*BlockStmt); ok {
			flat = append(flat, Flatten(block.List)...)
			continue
		}
		flat = append(flat, stmt)
	}
	return flat
}

// Renamer maps a variable name to a new name.
type Renamer func(string) string

func renameExprs(exprs []Expr, rn Renamer) ([]Expr, error) {
	if exprs == nil {
		return nil, nil
	}
	out := make([]Expr, len(exprs))
	for i, expr := range exprs {
		var err error
		if out[i], err = RenameExpr(expr, rn); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RenameExpr returns a deep copy of an expression with its variables renamed.
// Function names are not renamed.
func RenameExpr(expr Expr, rn Renamer) (Expr, error) {
	switch e := expr.(type) {
	case nil:
		return nil, nil
	case *BasicLit:
		c := *e
		return &c, nil
	case *Ident:
		return &Ident{Name: rn(e.Name)}, nil
	case *UnaryExpr:
		x, err := RenameExpr(e.X, rn)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: e.Op, X: x}, nil
	case *BinaryExpr:
		x, err := RenameExpr(e.X, rn)
		if err != nil {
			return nil, err
		}
		y, err := RenameExpr(e.Y, rn)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: e.Op, X: x, Y: y}, nil
	case *IndexExpr:
		x, err := RenameExpr(e.X, rn)
		if err != nil {
			return nil, err
		}
		indices, err := renameExprs(e.Indices, rn)
		if err != nil {
			return nil, err
		}
		return &IndexExpr{X: x, Indices: indices}, nil
	case *CallExpr:
		args, err := renameExprs(e.Args, rn)
		if err != nil {
			return nil, err
		}
		return &CallExpr{Fun: e.Fun, Args: args}, nil
	}
	return nil, errors.Errorf("cannot rename expression %T", expr)
}

// RenameStmt returns a deep copy of a statement with its variables renamed,
// including the variables it declares.
func RenameStmt(stmt Stmt, rn Renamer) (Stmt, error) {
	switch s := stmt.(type) {
	case *DeclStmt:
		init, err := RenameExpr(s.Init, rn)
		if err != nil {
			return nil, err
		}
		return &DeclStmt{Type: s.Type, Name: rn(s.Name), Data: s.Data, Init: init}, nil
	case *AssignStmt:
		val, err := RenameExpr(s.Value, rn)
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Name: rn(s.Name), Value: val}, nil
	case *SampleStmt:
		args, err := renameExprs(s.Args, rn)
		if err != nil {
			return nil, err
		}
		return &SampleStmt{Name: rn(s.Name), Dist: s.Dist, Args: args}, nil
	case *BlockStmt:
		list := make([]Stmt, len(s.List))
		for i, sub := range s.List {
			var err error
			if list[i], err = RenameStmt(sub, rn); err != nil {
				return nil, err
			}
		}
		return &BlockStmt{List: list}, nil
	}
	return nil, errors.Errorf("cannot rename statement %T", stmt)
}
