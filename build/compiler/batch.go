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

package compiler

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"github.com/slicstan/slicstan/api/options"
	"github.com/slicstan/slicstan/build/ast"
	"go.uber.org/multierr"
)

type job struct {
	index int
	prog  *ast.Program
}

// CompileAll compiles independent programs concurrently.
//
// The outputs are index-aligned with the programs; the output of a program
// that failed to compile is nil. The returned error combines the errors of
// all the programs, in program order, each prefixed by the program index.
func CompileAll(ctx context.Context, progs []*ast.Program, opts ...options.Option) ([]*Output, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	outs := make([]*Output, len(progs))
	errs := make([]error, len(progs))
	numWorkers := min(runtime.GOMAXPROCS(0), len(progs))
	jobs := make(chan job)
	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					errs[j.index] = err
					continue
				}
				outs[j.index], errs[j.index] = c.Compile(j.prog)
			}
		}()
	}
	for i, prog := range progs {
		jobs <- job{index: i, prog: prog}
	}
	close(jobs)
	wg.Wait()

	var all error
	for i, err := range errs {
		if err != nil {
			all = multierr.Append(all, errors.WithMessagef(err, "program %d", i))
		}
	}
	return outs, all
}
