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

// Package builtins lists the functions and distributions provided by the
// target language.
//
// Calls to built-in functions are expressions: the level of a call is the
// maximum level of its arguments. Calls to random number generators (functions
// ending with _rng) can only be evaluated when generating quantities.
package builtins

import (
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

// RNGSuffix is the suffix of random number generator functions.
const RNGSuffix = "_rng"

var defaultFunctions = []string{
	"abs", "acos", "asin", "atan", "atan2", "cbrt", "ceil", "cos", "cosh",
	"cols", "dims", "dot_product", "erf", "erfc", "exp", "exp2", "expm1",
	"fabs", "floor", "fmax", "fmin", "inv", "inv_logit", "inv_sqrt", "lgamma",
	"log", "log10", "log1p", "log2", "log_sum_exp", "logit", "max", "mean",
	"min", "num_elements", "pow", "rep_array", "rep_vector", "round", "rows",
	"sd", "sin", "sinh", "size", "softmax", "sqrt", "square", "sum", "tan",
	"tanh", "tgamma", "trunc", "variance",
}

var defaultDistributions = []string{
	"bernoulli", "bernoulli_logit", "beta", "binomial", "categorical",
	"cauchy", "chi_square", "dirichlet", "double_exponential", "exponential",
	"gamma", "inv_gamma", "lognormal", "multi_normal", "neg_binomial",
	"normal", "poisson", "poisson_log", "student_t", "uniform", "weibull",
}

// Registry is a set of built-in functions and distributions.
type Registry struct {
	funcs map[string]bool
	dists map[string]bool
}

// New returns a registry with the default built-ins and additional ones.
func New(extraFuncs, extraDists []string) *Registry {
	r := &Registry{funcs: make(map[string]bool), dists: make(map[string]bool)}
	for _, name := range slices.Concat(defaultFunctions, extraFuncs) {
		r.funcs[name] = true
	}
	for _, name := range slices.Concat(defaultDistributions, extraDists) {
		r.dists[name] = true
	}
	return r
}

// IsFunc returns true if name is a built-in function.
// The random number generator of every distribution is a built-in function.
func (r *Registry) IsFunc(name string) bool {
	if r.funcs[name] {
		return true
	}
	dist, ok := strings.CutSuffix(name, RNGSuffix)
	return ok && r.dists[dist]
}

// IsDist returns true if name is a built-in distribution.
func (r *Registry) IsDist(name string) bool {
	return r.dists[name]
}

// IsRNG returns true if name is a random number generator.
func IsRNG(name string) bool {
	return strings.HasSuffix(name, RNGSuffix)
}

// Funcs returns the sorted list of built-in function names,
// excluding random number generators.
func (r *Registry) Funcs() []string {
	names := maps.Keys(r.funcs)
	slices.Sort(names)
	return names
}

// Dists returns the sorted list of built-in distributions.
func (r *Registry) Dists() []string {
	names := maps.Keys(r.dists)
	slices.Sort(names)
	return names
}
