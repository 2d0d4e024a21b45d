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

// Package ast is the SlicStan abstract syntax tree.
//
// The tree is produced by a parser outside of this module (or built with
// the asthelper package) and consumed by the compiler stages. Stages never
// mutate a tree: they either decorate it with auxiliary maps or build a new
// tree.
//
// The structure is modeled after the go/ast package.
package ast

import "go/token"

// ----------------------------------------------------------------------------
// Types of node in the tree.
type (
	// Node in the tree.
	Node interface {
		// node marks a structure as a node structure.
		// It prevents external implementations of the interface.
		node()
		String() string
	}

	// Expr is an expression.
	Expr interface {
		Node
		exprNode()
	}

	// Stmt is a statement.
	Stmt interface {
		Node
		stmtNode()
	}
)

// Type is the base type of a variable, for example real, int, or vector[N].
// Base types do not take part in level inference: they are carried through
// to the generated declarations.
type Type string

// Base types used by the examples and tests.
const (
	Real Type = "real"
	Int  Type = "int"
)

// ----------------------------------------------------------------------------
// Expressions.
type (
	// BasicLit is a literal.
	BasicLit struct {
		Kind  token.Token // token.INT, token.FLOAT, or token.STRING
		Value string
	}

	// Ident is a reference to a variable.
	Ident struct {
		Name string
	}

	// UnaryExpr is a unary operation.
	UnaryExpr struct {
		Op token.Token
		X  Expr
	}

	// BinaryExpr is a binary operation.
	// Power is represented with token.XOR.
	BinaryExpr struct {
		Op   token.Token
		X, Y Expr
	}

	// IndexExpr indexes an expression.
	IndexExpr struct {
		X       Expr
		Indices []Expr
	}

	// CallExpr calls a built-in or a user-defined function.
	CallExpr struct {
		Fun  string
		Args []Expr
	}
)

func (*BasicLit) node()   {}
func (*Ident) node()      {}
func (*UnaryExpr) node()  {}
func (*BinaryExpr) node() {}
func (*IndexExpr) node()  {}
func (*CallExpr) node()   {}

func (*BasicLit) exprNode()   {}
func (*Ident) exprNode()      {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*IndexExpr) exprNode()  {}
func (*CallExpr) exprNode()   {}

// ----------------------------------------------------------------------------
// Statements.
type (
	// DeclStmt declares a variable.
	DeclStmt struct {
		Type Type
		Name string
		// Data marks a variable provided externally.
		Data bool
		// Init is the initializer of the variable. May be nil.
		Init Expr
	}

	// AssignStmt assigns a value to a variable.
	AssignStmt struct {
		Name  string
		Value Expr
	}

	// SampleStmt states that a variable is distributed according to a
	// distribution: Name ~ Dist(Args...).
	SampleStmt struct {
		Name string
		Dist string
		Args []Expr
	}

	// BlockStmt is a sequence of statements.
	// Blocks do not open a new scope.
	BlockStmt struct {
		List []Stmt
	}

	// Field is a function parameter.
	Field struct {
		Type Type
		Name string
	}

	// FuncDecl defines a function.
	FuncDecl struct {
		Name   string
		Params []*Field
		Body   *BlockStmt
		// Result is the returned expression. May be nil for functions
		// only used for their side effects on the density.
		Result Expr
	}
)

func (*DeclStmt) node()   {}
func (*AssignStmt) node() {}
func (*SampleStmt) node() {}
func (*BlockStmt) node()  {}
func (*Field) node()      {}
func (*FuncDecl) node()   {}

func (*DeclStmt) stmtNode()   {}
func (*AssignStmt) stmtNode() {}
func (*SampleStmt) stmtNode() {}
func (*BlockStmt) stmtNode()  {}
func (*FuncDecl) stmtNode()   {}

// HasInit returns true if the declaration has an initializer.
func (s *DeclStmt) HasInit() bool {
	return s.Init != nil
}

// ParamNames returns the names of the function parameters in order.
func (f *FuncDecl) ParamNames() []string {
	names := make([]string, len(f.Params))
	for i, param := range f.Params {
		names[i] = param.Name
	}
	return names
}

// Program is a SlicStan compilation unit.
type Program struct {
	// Funcs are the function definitions. Their order is not significant.
	Funcs []*FuncDecl
	// Stmts are the top-level statements, in source order.
	Stmts []Stmt
}

// Func returns the definition of a function given its name.
func (p *Program) Func(name string) *FuncDecl {
	for _, f := range p.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}
