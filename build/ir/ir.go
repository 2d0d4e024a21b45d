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

// Package ir is the block-structured output of the compiler.
//
// A program is a list of statements for each block of the target language.
// Statements are in the grammar of the elaborated SlicStan tree: they are
// free of user-defined function calls. Rendering the blocks as target
// language text is left to the caller.
package ir

import (
	"fmt"
	"iter"
	"strings"

	basefmt "github.com/slicstan/slicstan/base/fmt"
	baseiter "github.com/slicstan/slicstan/base/iter"
	"github.com/slicstan/slicstan/build/ast"
)

// Block of the target language.
type Block int

// Blocks in the order of the target language.
const (
	Data Block = iota
	TransformedData
	Parameters
	TransformedParameters
	Model
	GeneratedQuantities

	numBlocks
)

var blockNames = [numBlocks]string{
	Data:                  "data",
	TransformedData:       "transformed data",
	Parameters:            "parameters",
	TransformedParameters: "transformed parameters",
	Model:                 "model",
	GeneratedQuantities:   "generated quantities",
}

// AllBlocks lists the blocks in the order of the target language.
var AllBlocks = []Block{Data, TransformedData, Parameters, TransformedParameters, Model, GeneratedQuantities}

func (b Block) String() string {
	if b < 0 || b >= numBlocks {
		return fmt.Sprintf("Block(%d)", int(b))
	}
	return blockNames[b]
}

// Program is a partitioned program.
// Statements are only ever appended: the order of the statements of a block
// is the order in which they have been appended.
type Program struct {
	blocks [numBlocks][]ast.Stmt
}

// Append a statement to a block.
func (p *Program) Append(b Block, stmt ast.Stmt) {
	p.blocks[b] = append(p.blocks[b], stmt)
}

// Block returns the statements of a block.
func (p *Program) Block(b Block) []ast.Stmt {
	return p.blocks[b]
}

// Data returns the declarations of the variables provided externally.
func (p *Program) Data() []ast.Stmt { return p.blocks[Data] }

// TransformedData returns the statements computed once from data.
func (p *Program) TransformedData() []ast.Stmt { return p.blocks[TransformedData] }

// Parameters returns the declarations of the parameters.
func (p *Program) Parameters() []ast.Stmt { return p.blocks[Parameters] }

// TransformedParameters returns the statements computed from parameters.
func (p *Program) TransformedParameters() []ast.Stmt { return p.blocks[TransformedParameters] }

// Model returns the statements contributing to the density.
func (p *Program) Model() []ast.Stmt { return p.blocks[Model] }

// GeneratedQuantities returns the statements computed once per sample.
func (p *Program) GeneratedQuantities() []ast.Stmt { return p.blocks[GeneratedQuantities] }

// Blocks iterates over all the blocks, including empty ones, in the order
// of the target language.
func (p *Program) Blocks() iter.Seq2[Block, []ast.Stmt] {
	return func(yield func(Block, []ast.Stmt) bool) {
		for _, b := range AllBlocks {
			if !yield(b, p.blocks[b]) {
				return
			}
		}
	}
}

// Stmts iterates over the statements of all the blocks in the order of the
// target language.
func (p *Program) Stmts() iter.Seq[ast.Stmt] {
	return baseiter.All(p.blocks[:]...)
}

// Decls iterates over the declarations of all the blocks.
func (p *Program) Decls() iter.Seq[*ast.DeclStmt] {
	return func(yield func(*ast.DeclStmt) bool) {
		isDecl := func(stmt ast.Stmt) bool {
			_, ok := stmt.(*ast.DeclStmt)
			return ok
		}
		for stmt := range baseiter.Filter(isDecl, p.blocks[:]...) {
			if !yield(stmt.(*ast.DeclStmt)) {
				return
			}
		}
	}
}

// Len returns the total number of statements.
func (p *Program) Len() int {
	n := 0
	for range p.Stmts() {
		n++
	}
	return n
}

// String returns a dump of the non-empty blocks.
// The dump is stable and can be compared against golden files.
func (p *Program) String() string {
	var b strings.Builder
	for blk, stmts := range p.Blocks() {
		if len(stmts) == 0 {
			continue
		}
		b.WriteString(blk.String())
		b.WriteString(" {\n")
		for _, stmt := range stmts {
			b.WriteString(basefmt.Indent(stmt.String()))
			b.WriteString("\n")
		}
		b.WriteString("}\n")
	}
	return b.String()
}
