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
	"embed"
	"fmt"
	"path/filepath"
	"testing"
)

//go:embed testdata
var testfsys embed.FS

func loadFromTestDir(filename string) (*Config, error) {
	filename = filepath.Join("testdata", filename)
	b, err := testfsys.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %v: %v", filename, err)
	}
	return Load(filename, b)
}

func TestCodeIdentifier_equalOnNonEmptyFields(t *testing.T) {
	tests := []struct {
		name string
		cid  CodeIdentifier
		ref  CodeIdentifier
		want bool
	}{
		{"self", CodeIdentifier{Package: "a", Method: "b"}, CodeIdentifier{Package: "a", Method: "b"}, true},
		{"empty matches any", CodeIdentifier{Package: "a", Method: "b", Receiver: "T"}, CodeIdentifier{}, true},
		{"one diff", CodeIdentifier{Package: "a"}, CodeIdentifier{Package: "a", Method: "b"}, false},
		{"regex", CodeIdentifier{Package: "command-line-arguments", Method: "b"},
			CodeIdentifier{Package: "(main)|(command-line-arguments)$"}, true},
		{"regex no match", CodeIdentifier{Package: "other", Method: "b"},
			CodeIdentifier{Package: "^(main)|(command-line-arguments)$"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cid.equalOnNonEmptyFields(CompileRegexes(tt.ref)); got != tt.want {
				t.Errorf("equalOnNonEmptyFields(%v, %v) = %v, want %v", tt.cid, tt.ref, got, tt.want)
			}
		})
	}
}

func TestNewDefault(t *testing.T) {
	c := NewDefault()
	if c.AliasingAlgorithm != AliasingContextSensitive {
		t.Errorf("default aliasing algorithm should be %s", AliasingContextSensitive)
	}
	if c.AccessPathLength != DefaultAccessPathLength {
		t.Errorf("default access path length should be %d", DefaultAccessPathLength)
	}
	if c.MaxThreads != 1 {
		t.Errorf("default should run a single worker")
	}
	if !c.MatchPkgFilter("anything") {
		t.Errorf("empty package filter should match everything")
	}
}

func TestLoad(t *testing.T) {
	c, err := loadFromTestDir("config.yaml")
	if err != nil {
		t.Fatalf("could not load config: %v", err)
	}
	if c.LogLevel != int(DebugLevel) {
		t.Errorf("expected log level %d, got %d", DebugLevel, c.LogLevel)
	}
	if c.AliasingAlgorithm != AliasingFlowSensitive {
		t.Errorf("expected flow-sensitive aliasing, got %s", c.AliasingAlgorithm)
	}
	if c.AliasTimeoutMs != 250 || c.AccessPathLength != 3 || c.MaxThreads != 2 {
		t.Errorf("options not loaded: %+v", c.Options)
	}
	if len(c.TaintTrackingProblems) != 1 {
		t.Fatalf("expected one taint problem, got %d", len(c.TaintTrackingProblems))
	}
	ts := c.TaintTrackingProblems[0]
	if !ts.IsSource(NewFunctionIdentifier("main", "source", "")) {
		t.Errorf("main.source should be a source")
	}
	if !ts.IsSink(NewFunctionIdentifier("main", "sink", "")) {
		t.Errorf("main.sink should be a sink")
	}
	if !ts.IsSanitizer(NewFunctionIdentifier("main", "sanitize", "")) {
		t.Errorf("main.sanitize should be a sanitizer")
	}
	if ts.IsSink(NewFunctionIdentifier("main", "source", "")) {
		t.Errorf("main.source should not be a sink")
	}
	if !c.IsAliasIgnored(NewFunctionIdentifier("runtime", "gopanic", "")) {
		t.Errorf("runtime functions should be ignored by the alias analysis")
	}
	if c.IsAliasIgnored(NewFunctionIdentifier("main", "main", "")) {
		t.Errorf("main.main should not be ignored by the alias analysis")
	}
	if c.RelPath("x.yaml") != filepath.Join("testdata", "x.yaml") {
		t.Errorf("relative path should be relative to the config file, got %s", c.RelPath("x.yaml"))
	}
}

func TestLoadSetsDefaults(t *testing.T) {
	c, err := loadFromTestDir("defaults.yaml")
	if err != nil {
		t.Fatalf("could not load config: %v", err)
	}
	if c.LogLevel != int(InfoLevel) || c.AliasingAlgorithm != AliasingContextSensitive ||
		c.AliasTimeoutMs != DefaultAliasTimeoutMs || c.MaxDepth != DefaultMaxCallDepth {
		t.Errorf("defaults not set: %+v", c.Options)
	}
}

func TestLoadBadAlgorithmReturnsError(t *testing.T) {
	c, err := loadFromTestDir("bad_algorithm.yaml")
	if c != nil || err == nil {
		t.Errorf("expected error and nil value when loading an unknown aliasing algorithm")
	}
}

func TestLoadBadFormatFileReturnsError(t *testing.T) {
	c, err := loadFromTestDir("bad_format.yaml")
	if c != nil || err == nil {
		t.Errorf("expected error and nil value when trying to load a badly formatted file")
	}
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	c, err := LoadFile(filepath.Join("testdata", "does-not-exist.yaml"))
	if c != nil || err == nil {
		t.Errorf("expected error and nil value when trying to load non existent file")
	}
}
