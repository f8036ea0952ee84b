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

package graphutil_test

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-alias/internal/analysistest"
	"github.com/awslabs/ar-go-alias/internal/funcutil"
	"github.com/awslabs/ar-go-alias/internal/graphutil"
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/ssa"
)

func loadTrivial(t *testing.T) (graphutil.CGraph, *ssa.Package) {
	prog, pkg, _ := analysistest.LoadTest(t, filepath.Join("testdata", "trivial"))
	return graphutil.NewCGraph(cha.CallGraph(prog)), pkg
}

func TestFindAllElementaryCycles(t *testing.T) {
	cg, _ := loadTrivial(t)
	stats := graph.Check(cg)
	t.Logf("Stats:\n\tsize: %d\n\tmulti: %d\n\tloops: %d\n\tisolated: %d",
		stats.Size, stats.Multi, stats.Loops, stats.Isolated)

	cycles := graphutil.FindAllElementaryCycles(cg)
	results := funcutil.Map(cycles, func(cycle []int64) string {
		if cycle[0] != cycle[len(cycle)-1] {
			t.Errorf("cycle %v does not end with its first node", cycle)
		}
		names := funcutil.Map(graphutil.CycleFunctions(cg, cycle), func(f *ssa.Function) string { return f.Name() })
		sort.Strings(names)
		return strings.Join(names, ",")
	})
	sort.Strings(results)
	expected := []string{"f1,f2", "f1,f2,f3", "f1,f4,f5", "g,g2", "g,g2,g3"}
	if !slices.Equal(results, expected) {
		t.Fatalf("expected cycles %v, got %v", expected, results)
	}
}

func TestRecursiveFunctions(t *testing.T) {
	cg, pkg := loadTrivial(t)
	recursive := graphutil.RecursiveFunctions(cg)
	for _, name := range []string{"f1", "f2", "f3", "f4", "f5", "g", "g2", "g3"} {
		if !recursive[pkg.Func(name)] {
			t.Errorf("%s should be recursive", name)
		}
	}
	for _, name := range []string{"g1", "main"} {
		if recursive[pkg.Func(name)] {
			t.Errorf("%s should not be recursive", name)
		}
	}
}

func TestReachable(t *testing.T) {
	cg, pkg := loadTrivial(t)
	entries := graphutil.EntryPoints(cg.Graph)
	if !slices.Contains(entries, pkg.Func("main")) {
		t.Fatalf("main should be an entry point, got %v", entries)
	}
	all := graphutil.Reachable(cg, entries)
	for _, name := range []string{"main", "f1", "f5", "g", "g1", "g3"} {
		if !all[pkg.Func(name)] {
			t.Errorf("%s should be reachable from main", name)
		}
	}

	fromF1 := graphutil.Reachable(cg, []*ssa.Function{pkg.Func("f1")})
	for _, name := range []string{"g", "g1", "main"} {
		if fromF1[pkg.Func(name)] {
			t.Errorf("%s should not be reachable from f1", name)
		}
	}
	if !fromF1[pkg.Func("f5")] {
		t.Errorf("f5 should be reachable from f1")
	}
}

func TestNodeSetIteration(t *testing.T) {
	cg, pkg := loadTrivial(t)
	node, ok := cg.NodeOf(pkg.Func("g"))
	if !ok {
		t.Fatalf("no node for g")
	}
	callees := cg.From(node.ID())
	if callees.Len() != 3 {
		t.Fatalf("expected 3 callees of g, got %d", callees.Len())
	}
	var names []string
	for callees.Next() {
		names = append(names, cg.Function(callees.Node().ID()).Name())
	}
	sort.Strings(names)
	if !slices.Equal(names, []string{"g1", "g2", "g3"}) {
		t.Errorf("expected callees g1, g2, g3, got %v", names)
	}
	if callees.Len() != 0 {
		t.Errorf("iterator should be exhausted")
	}
}
