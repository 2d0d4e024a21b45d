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

// Package asthelper provides helper functions to build SlicStan trees programmatically.
package asthelper

import (
	"go/token"
	"strconv"
	"strings"

	"github.com/slicstan/slicstan/build/ast"
)

// Ident returns a variable reference.
func Ident(n string) *ast.Ident {
	return &ast.Ident{Name: n}
}

// Num returns a numeric literal. Literals with a dot or an exponent are floats.
func Num(v string) *ast.BasicLit {
	kind := token.INT
	if strings.ContainsAny(v, ".eE") {
		kind = token.FLOAT
	}
	return &ast.BasicLit{Kind: kind, Value: v}
}

// Int returns an integer literal.
func Int(v int) *ast.BasicLit {
	return &ast.BasicLit{Kind: token.INT, Value: strconv.Itoa(v)}
}

// Binary returns a binary expression.
func Binary(op token.Token, x, y ast.Expr) *ast.BinaryExpr {
	return &ast.BinaryExpr{Op: op, X: x, Y: y}
}

// Add returns x + y.
func Add(x, y ast.Expr) *ast.BinaryExpr { return Binary(token.ADD, x, y) }

// Mul returns x * y.
func Mul(x, y ast.Expr) *ast.BinaryExpr { return Binary(token.MUL, x, y) }

// Div returns x / y.
func Div(x, y ast.Expr) *ast.BinaryExpr { return Binary(token.QUO, x, y) }

// Neg returns -x.
func Neg(x ast.Expr) *ast.UnaryExpr {
	return &ast.UnaryExpr{Op: token.SUB, X: x}
}

// Index returns x[indices...].
func Index(x ast.Expr, indices ...ast.Expr) *ast.IndexExpr {
	return &ast.IndexExpr{X: x, Indices: indices}
}

// Call returns a call expression.
func Call(fun string, args ...ast.Expr) *ast.CallExpr {
	return &ast.CallExpr{Fun: fun, Args: args}
}

// Decl returns the declaration of a real variable.
func Decl(name string) *ast.DeclStmt {
	return &ast.DeclStmt{Type: ast.Real, Name: name}
}

// DeclInit returns the declaration of a real variable with an initializer.
func DeclInit(name string, init ast.Expr) *ast.DeclStmt {
	return &ast.DeclStmt{Type: ast.Real, Name: name, Init: init}
}

// Data returns the declaration of a real variable provided externally.
func Data(name string) *ast.DeclStmt {
	return &ast.DeclStmt{Type: ast.Real, Name: name, Data: true}
}

// Assign returns an assignment.
func Assign(name string, val ast.Expr) *ast.AssignStmt {
	return &ast.AssignStmt{Name: name, Value: val}
}

// Sample returns name ~ dist(args...).
func Sample(name, dist string, args ...ast.Expr) *ast.SampleStmt {
	return &ast.SampleStmt{Name: name, Dist: dist, Args: args}
}

// Block returns a block of statements.
func Block(stmts ...ast.Stmt) *ast.BlockStmt {
	return &ast.BlockStmt{List: stmts}
}

// Param returns a real function parameter.
func Param(name string) *ast.Field {
	return &ast.Field{Type: ast.Real, Name: name}
}

// Func returns a function definition.
func Func(name string, params []*ast.Field, result ast.Expr, body ...ast.Stmt) *ast.FuncDecl {
	return &ast.FuncDecl{
		Name:   name,
		Params: params,
		Body:   Block(body...),
		Result: result,
	}
}

// Program returns a program without functions.
func Program(stmts ...ast.Stmt) *ast.Program {
	return &ast.Program{Stmts: stmts}
}

// ProgramWithFuncs returns a program with function definitions.
func ProgramWithFuncs(funcs []*ast.FuncDecl, stmts ...ast.Stmt) *ast.Program {
	return &ast.Program{Funcs: funcs, Stmts: stmts}
}
