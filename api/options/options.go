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

// Package options specifies options for the compiler.
package options

import (
	"io"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/slicstan/slicstan/base/uname"
	"github.com/slicstan/slicstan/build/builtins"
	"go.uber.org/multierr"
)

// DefaultMaxInlineDepth is the default maximum depth of nested inlined calls.
const DefaultMaxInlineDepth = 64

// DefaultMaxInlinedCalls is the default maximum number of function bodies
// inlined in a program.
const DefaultMaxInlinedCalls = 100000

type (
	// Options of a compilation.
	Options struct {
		// Logger receives debug records of the compiler stages.
		Logger *slog.Logger
		// MaxInlineDepth is the maximum depth of nested function calls.
		MaxInlineDepth int
		// MaxInlinedCalls is the maximum number of function bodies inlined
		// in a program.
		MaxInlinedCalls int
		// NameSeparator is inserted between a name and its counter
		// when generating fresh names.
		NameSeparator string
		// Builtins are functions provided by the target language in addition
		// to the default ones.
		Builtins []string
		// Distributions are distributions provided by the target language in
		// addition to the default ones.
		Distributions []string
	}

	// Option modifies the options of a compilation.
	Option func(*Options)
)

// New returns options given a list of options to apply on the defaults.
func New(opts ...Option) *Options {
	o := &Options{
		Logger:          slog.New(slog.DiscardHandler),
		MaxInlineDepth:  DefaultMaxInlineDepth,
		MaxInlinedCalls: DefaultMaxInlinedCalls,
		NameSeparator:   uname.DefaultSeparator,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Registry returns the built-in registry for the options.
func (o *Options) Registry() *builtins.Registry {
	return builtins.New(o.Builtins, o.Distributions)
}

// Validate returns all the problems found in the options.
func (o *Options) Validate() error {
	var err error
	if o.Logger == nil {
		err = multierr.Append(err, errors.New("logger cannot be nil"))
	}
	if o.MaxInlineDepth <= 0 {
		err = multierr.Append(err, errors.Errorf("maximum inline depth must be positive, got %d", o.MaxInlineDepth))
	}
	if o.MaxInlinedCalls <= 0 {
		err = multierr.Append(err, errors.Errorf("maximum number of inlined calls must be positive, got %d", o.MaxInlinedCalls))
	}
	if o.NameSeparator == "" || strings.ContainsAny(o.NameSeparator, " \t\n;~=()[]") {
		err = multierr.Append(err, errors.Errorf("invalid name separator %q", o.NameSeparator))
	}
	for _, name := range o.Builtins {
		if strings.HasSuffix(name, builtins.RNGSuffix) {
			err = multierr.Append(err, errors.Errorf("builtin %s: random number generators are derived from distributions", name))
		}
	}
	return err
}

// WithLogger sets the logger of the compiler.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithLogOutput logs text records at a given level to a writer.
func WithLogOutput(w io.Writer, level slog.Level) Option {
	return WithLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// WithMaxInlineDepth sets the maximum depth of nested function calls.
func WithMaxInlineDepth(depth int) Option {
	return func(o *Options) {
		o.MaxInlineDepth = depth
	}
}

// WithMaxInlinedCalls sets the maximum number of function bodies inlined
// in a program.
func WithMaxInlinedCalls(calls int) Option {
	return func(o *Options) {
		o.MaxInlinedCalls = calls
	}
}

// WithNameSeparator sets the separator used by fresh names.
func WithNameSeparator(sep string) Option {
	return func(o *Options) {
		o.NameSeparator = sep
	}
}

// WithBuiltins declares additional built-in functions.
func WithBuiltins(names ...string) Option {
	return func(o *Options) {
		o.Builtins = append(o.Builtins, names...)
	}
}

// WithDistributions declares additional built-in distributions.
func WithDistributions(names ...string) Option {
	return func(o *Options) {
		o.Distributions = append(o.Distributions, names...)
	}
}
