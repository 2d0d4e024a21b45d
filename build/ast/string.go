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
	"fmt"
	"go/token"
	"slices"
	"strings"

	basefmt "github.com/slicstan/slicstan/base/fmt"
	"github.com/slicstan/slicstan/base/stringseq"
)

func exprList(exprs []Expr) string {
	return stringseq.Join(slices.Values(exprs), ", ")
}

func (e *BasicLit) String() string {
	if e.Kind == token.STRING {
		return fmt.Sprintf("%q", e.Value)
	}
	return e.Value
}

func (e *Ident) String() string {
	return e.Name
}

func opString(op token.Token) string {
	if op == token.XOR {
		return "^"
	}
	return op.String()
}

func (e *UnaryExpr) String() string {
	return opString(e.Op) + e.X.String()
}

// operand wraps binary sub-expressions in parentheses.
func operand(x Expr) string {
	if _, ok := x.(*BinaryExpr); ok {
		return "(" + x.String() + ")"
	}
	return x.String()
}

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("%s %s %s", operand(e.X), opString(e.Op), operand(e.Y))
}

func (e *IndexExpr) String() string {
	return fmt.Sprintf("%s[%s]", operand(e.X), exprList(e.Indices))
}

func (e *CallExpr) String() string {
	return fmt.Sprintf("%s(%s)", e.Fun, exprList(e.Args))
}

func (s *DeclStmt) String() string {
	var b strings.Builder
	if s.Data {
		b.WriteString("data ")
	}
	b.WriteString(string(s.Type))
	b.WriteString(" ")
	b.WriteString(s.Name)
	if s.Init != nil {
		b.WriteString(" = ")
		b.WriteString(s.Init.String())
	}
	b.WriteString(";")
	return b.String()
}

func (s *AssignStmt) String() string {
	return fmt.Sprintf("%s = %s;", s.Name, s.Value.String())
}

func (s *SampleStmt) String() string {
	return fmt.Sprintf("%s ~ %s(%s);", s.Name, s.Dist, exprList(s.Args))
}

func (b *BlockStmt) String() string {
	stmts := make([]string, len(b.List))
	for i, stmt := range b.List {
		stmts[i] = stmt.String()
	}
	return strings.Join(stmts, "\n")
}

func (f *Field) String() string {
	return fmt.Sprintf("%s %s", f.Type, f.Name)
}

func (f *FuncDecl) String() string {
	var body strings.Builder
	if f.Body != nil && len(f.Body.List) > 0 {
		body.WriteString(basefmt.Indent(f.Body.String()))
		body.WriteString("\n")
	}
	if f.Result != nil {
		body.WriteString("\treturn " + f.Result.String() + ";\n")
	}
	return fmt.Sprintf("%s(%s) {\n%s}", f.Name, stringseq.Join(slices.Values(f.Params), ", "), body.String())
}

// String returns the SlicStan source of the program.
func (p *Program) String() string {
	var parts []string
	for _, f := range p.Funcs {
		parts = append(parts, f.String())
	}
	for _, stmt := range p.Stmts {
		parts = append(parts, stmt.String())
	}
	return strings.Join(parts, "\n")
}
