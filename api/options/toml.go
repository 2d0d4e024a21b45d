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

package options

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// ConfigFileName is the conventional name of a compiler configuration file.
const ConfigFileName = "slicstan.toml"

// tomlFile is the configuration file as it is encoded in TOML.
type tomlFile struct {
	Compiler *tomlCompiler `toml:"compiler"`
}

type tomlCompiler struct {
	MaxInlineDepth  int      `toml:"max-inline-depth"`
	MaxInlinedCalls int      `toml:"max-inlined-calls"`
	NameSeparator   string   `toml:"name-separator"`
	Builtins        []string `toml:"builtins"`
	Distributions   []string `toml:"distributions"`
	LogLevel        string   `toml:"log-level"`
}

func parseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return lvl, errors.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// Load reads compiler options from a TOML configuration.
// Log records are written to logOut when a log level is configured.
func Load(r io.Reader, logOut io.Writer) ([]Option, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read configuration")
	}
	var file tomlFile
	if err := toml.Unmarshal(buf, &file); err != nil {
		return nil, errors.Wrap(err, "cannot parse configuration")
	}
	cfg := file.Compiler
	if cfg == nil {
		return nil, nil
	}
	var opts []Option
	if cfg.MaxInlineDepth != 0 {
		opts = append(opts, WithMaxInlineDepth(cfg.MaxInlineDepth))
	}
	if cfg.MaxInlinedCalls != 0 {
		opts = append(opts, WithMaxInlinedCalls(cfg.MaxInlinedCalls))
	}
	if cfg.NameSeparator != "" {
		opts = append(opts, WithNameSeparator(cfg.NameSeparator))
	}
	if len(cfg.Builtins) > 0 {
		opts = append(opts, WithBuiltins(cfg.Builtins...))
	}
	if len(cfg.Distributions) > 0 {
		opts = append(opts, WithDistributions(cfg.Distributions...))
	}
	if cfg.LogLevel != "" {
		lvl, err := parseLogLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		if logOut == nil {
			logOut = os.Stderr
		}
		opts = append(opts, WithLogOutput(logOut, lvl))
	}
	if err := New(opts...).Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return opts, nil
}

// LoadFile reads compiler options from a TOML file.
func LoadFile(path string, logOut io.Writer) ([]Option, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	opts, err := Load(f, logOut)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return opts, nil
}
