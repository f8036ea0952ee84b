// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/awslabs/ar-go-alias/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return LoadFile(configFile)
}

// Config contains the taint tracking problems and the options of the analysis.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// if the PkgFilter is specified
	pkgFilterRegex *regexp.Regexp

	// TaintTrackingProblems lists the taint tracking specifications
	TaintTrackingProblems []TaintSpec `yaml:"taint-tracking-problems"`

	// AliasIgnore lists the functions that the alias analysis must never explore as calling contexts
	AliasIgnore []CodeIdentifier `yaml:"alias-ignore"`
}

// TaintSpec contains code identifiers that identify a specific taint tracking problem
type TaintSpec struct {
	// Sanitizers is the list of sanitizers for the taint analysis
	Sanitizers []CodeIdentifier `yaml:"sanitizers"`

	// Sinks is the list of sinks for the taint analysis
	Sinks []CodeIdentifier `yaml:"sinks"`

	// Sources is the list of sources for the taint analysis
	Sources []CodeIdentifier `yaml:"sources"`
}

// Options holds the global options of the analyses
type Options struct {
	// PkgFilter is a filter for the taint analysis to analyze only the functions whose package match the
	// prefix or the regex
	PkgFilter string `yaml:"pkg-filter"`

	// MaxDepth sets a limit for the number of function call depth explored during the analysis
	// If provided MaxDepth is <= 0, then it is set to the default.
	MaxDepth int `yaml:"max-depth"`

	// AliasingAlgorithm selects the alias analysis used by the taint analysis on field writes and call returns.
	// One of "context-sensitive" (default), "flow-sensitive", "flow-insensitive" or "none".
	AliasingAlgorithm string `yaml:"aliasing-algorithm"`

	// AliasTimeoutMs is the time budget of a single alias query, in milliseconds. A query that runs out of time
	// returns the aliases found so far.
	AliasTimeoutMs int `yaml:"alias-timeout-ms"`

	// AccessPathLength is the maximum number of fields in an access path. Longer paths are truncated and taint
	// all their sub-fields.
	AccessPathLength int `yaml:"access-path-length"`

	// MaxThreads is the number of workers of the taint solver.
	MaxThreads int `yaml:"max-threads"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile:            "",
		TaintTrackingProblems: nil,
		AliasIgnore:           nil,
		Options: Options{
			PkgFilter:         "",
			MaxDepth:          DefaultMaxCallDepth,
			AliasingAlgorithm: AliasingContextSensitive,
			AliasTimeoutMs:    DefaultAliasTimeoutMs,
			AccessPathLength:  DefaultAccessPathLength,
			MaxThreads:        1,
			LogLevel:          int(InfoLevel),
		},
	}
}

// LoadFile reads a configuration from a file
func LoadFile(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return Load(filename, b)
}

// Load reads a configuration from the contents of a file. The filename is used to resolve relative paths.
func Load(filename string, contents []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", filename, err)
	}

	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxCallDepth
	}

	if cfg.AliasTimeoutMs <= 0 {
		cfg.AliasTimeoutMs = DefaultAliasTimeoutMs
	}

	if cfg.AccessPathLength <= 0 {
		cfg.AccessPathLength = DefaultAccessPathLength
	}

	if cfg.MaxThreads <= 0 {
		cfg.MaxThreads = 1
	}

	if cfg.AliasingAlgorithm == "" {
		cfg.AliasingAlgorithm = AliasingContextSensitive
	}
	if !isAliasingAlgorithm(cfg.AliasingAlgorithm) {
		return nil, fmt.Errorf("unknown aliasing algorithm %q in %s", cfg.AliasingAlgorithm, filename)
	}

	if cfg.PkgFilter != "" {
		r, err := regexp.Compile(cfg.PkgFilter)
		if err == nil {
			cfg.pkgFilterRegex = r
		}
	}

	for _, tSpec := range cfg.TaintTrackingProblems {
		funcutil.MapInPlace(tSpec.Sanitizers, CompileRegexes)
		funcutil.MapInPlace(tSpec.Sinks, CompileRegexes)
		funcutil.MapInPlace(tSpec.Sources, CompileRegexes)
	}
	funcutil.MapInPlace(cfg.AliasIgnore, CompileRegexes)

	return cfg, nil
}

func isAliasingAlgorithm(s string) bool {
	switch s {
	case AliasingContextSensitive, AliasingFlowSensitive, AliasingFlowInsensitive, AliasingNone:
		return true
	}
	return false
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// MatchPkgFilter returns true if the package name pkgname matches the package filter set in the config file. If no
// package filter has been set in the config file, the regex will match anything and return true. This function safely
// considers the case where a filter has been specified by the user, but it could not be compiled to a regex. The safe
// case is to check whether the package filter string is a prefix of the pkgname
func (c Config) MatchPkgFilter(pkgname string) bool {
	if c.pkgFilterRegex != nil {
		return c.pkgFilterRegex.MatchString(pkgname)
	} else if c.PkgFilter != "" {
		return strings.HasPrefix(pkgname, c.PkgFilter)
	} else {
		return true
	}
}

// IsAliasIgnored returns true if the code identifier matches an entry of the alias-ignore list
func (c Config) IsAliasIgnored(cid CodeIdentifier) bool {
	return ExistsCid(c.AliasIgnore, cid.equalOnNonEmptyFields)
}

// IsSource returns true if the code identifier matches a source specification in the config file
func (ts TaintSpec) IsSource(cid CodeIdentifier) bool {
	return ExistsCid(ts.Sources, cid.equalOnNonEmptyFields)
}

// IsSink returns true if the code identifier matches a sink specification in the config file
func (ts TaintSpec) IsSink(cid CodeIdentifier) bool {
	return ExistsCid(ts.Sinks, cid.equalOnNonEmptyFields)
}

// IsSanitizer returns true if the code identifier matches a sanitizer specification in the config file
func (ts TaintSpec) IsSanitizer(cid CodeIdentifier) bool {
	return ExistsCid(ts.Sanitizers, cid.equalOnNonEmptyFields)
}
