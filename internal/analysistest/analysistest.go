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

// Package analysistest contains helpers to load the test programs of the analyses.
//
// A test program is a directory containing a main.go file, without imports, and optionally a config.yaml file.
// Comments of the form "// @Source(id)" and "// @Sink(id)" mark the lines of the sources and the sinks the taint
// analysis is expected to connect.
package analysistest

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-alias/analysis/config"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// LoadTest builds the program in the directory dir into SSA and loads the config.yaml of the directory (the default
// config if there is none).
func LoadTest(t *testing.T, dir string) (*ssa.Program, *ssa.Package, *config.Config) {
	t.Helper()
	fset := token.NewFileSet()
	files, err := parseDir(fset, dir)
	if err != nil {
		t.Fatalf("error parsing %s: %v", dir, err)
	}
	pkg := types.NewPackage("main", "main")
	mainPkg, _, err := ssautil.BuildPackage(&types.Config{Importer: importer.Default()}, fset, pkg, files,
		ssa.SanityCheckFunctions)
	if err != nil {
		t.Fatalf("error building %s: %v", dir, err)
	}

	cfg := config.NewDefault()
	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); err == nil {
		config.SetGlobalConfig(configFile)
		cfg, err = config.LoadGlobal()
		if err != nil {
			t.Fatalf("error loading config %s: %v", configFile, err)
		}
	}
	return mainPkg.Prog, mainPkg, cfg
}

func parseDir(fset *token.FileSet, dir string) ([]*ast.File, error) {
	names, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	var files []*ast.File
	for _, name := range names {
		f, err := parser.ParseFile(fset, name, nil, parser.ParseComments)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no go file in %s", dir)
	}
	return files, nil
}

// Function returns the function name of the package, or fails the test
func Function(t *testing.T, pkg *ssa.Package, name string) *ssa.Function {
	t.Helper()
	f := pkg.Func(name)
	if f == nil {
		t.Fatalf("function %s not found in %s", name, pkg.Pkg.Path())
	}
	return f
}

// FindInstr returns the first instruction of f that satisfies pred, or fails the test
func FindInstr(t *testing.T, f *ssa.Function, pred func(ssa.Instruction) bool) ssa.Instruction {
	t.Helper()
	for _, b := range f.Blocks {
		for _, instr := range b.Instrs {
			if pred(instr) {
				return instr
			}
		}
	}
	t.Fatalf("no matching instruction in %s", f.Name())
	return nil
}

// IsCallTo returns a predicate that matches the calls to the function name
func IsCallTo(name string) func(ssa.Instruction) bool {
	return func(instr ssa.Instruction) bool {
		call, ok := instr.(*ssa.Call)
		if !ok {
			return false
		}
		callee := call.Call.StaticCallee()
		return callee != nil && callee.Name() == name
	}
}

// IsStoreToField returns a predicate that matches the stores into the field name of a struct
func IsStoreToField(name string) func(ssa.Instruction) bool {
	return func(instr ssa.Instruction) bool {
		store, ok := instr.(*ssa.Store)
		if !ok {
			return false
		}
		fa, ok := store.Addr.(*ssa.FieldAddr)
		if !ok {
			return false
		}
		st, ok := fa.X.Type().Underlying().(*types.Pointer).Elem().Underlying().(*types.Struct)
		return ok && st.Field(fa.Field).Name() == name
	}
}

// SourceRegex matches annotations of the form "@Source(id1, id2, id3)"
var SourceRegex = regexp.MustCompile(`//.*@Source\(((?:\s*\w\s*,?)+)\)`)

// SinkRegex matches annotations of the form "@Sink(id1, id2, id3)"
var SinkRegex = regexp.MustCompile(`//.*@Sink\(((?:\s*\w\s*,?)+)\)`)

// LPos is a position without column
type LPos struct {
	Filename string
	Line     int
}

func (p LPos) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// RemoveColumn returns the position without its column, and only the base name of the file
func RemoveColumn(pos token.Position) LPos {
	return LPos{Line: pos.Line, Filename: filepath.Base(pos.Filename)}
}

// GetExpectedSourceToSink analyzes the files in dir and looks for comments @Source(id) and @Sink(id) to construct
// expected flows from sources to sink in the form of a map from sink positions to all the source position that
// reach that sink.
func GetExpectedSourceToSink(t *testing.T, dir string) map[LPos]map[LPos]bool {
	t.Helper()
	fset := token.NewFileSet()
	files, err := parseDir(fset, dir)
	if err != nil {
		t.Fatalf("error parsing %s: %v", dir, err)
	}
	sourceIds := map[string]LPos{}
	forEachAnnotation(fset, files, SourceRegex, func(id string, pos LPos) {
		sourceIds[id] = pos
	})
	source2sink := map[LPos]map[LPos]bool{}
	forEachAnnotation(fset, files, SinkRegex, func(id string, pos LPos) {
		if sourcePos, ok := sourceIds[id]; ok {
			if _, ok := source2sink[pos]; !ok {
				source2sink[pos] = map[LPos]bool{}
			}
			source2sink[pos][sourcePos] = true
		}
	})
	return source2sink
}

func forEachAnnotation(fset *token.FileSet, files []*ast.File, r *regexp.Regexp, f func(string, LPos)) {
	for _, file := range files {
		for _, c := range file.Comments {
			for _, c1 := range c.List {
				a := r.FindStringSubmatch(c1.Text)
				if len(a) <= 1 {
					continue
				}
				pos := RemoveColumn(fset.Position(c1.Pos()))
				for _, ident := range strings.Split(a[1], ",") {
					f(strings.TrimSpace(ident), pos)
				}
			}
		}
	}
}
