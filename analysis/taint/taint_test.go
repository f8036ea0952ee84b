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

package taint

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-alias/analysis/config"
	"github.com/awslabs/ar-go-alias/internal/analysistest"
	"golang.org/x/tools/go/ssa"
)

func runTest(t *testing.T, dirName string, algorithm string) (*ssa.Program, AnalysisResult) {
	t.Helper()
	dir := filepath.Join("testdata", dirName)
	prog, _, cfg := analysistest.LoadTest(t, dir)
	cfg.AliasingAlgorithm = algorithm
	result, err := Analyze(cfg, prog)
	if err != nil {
		t.Fatalf("taint analysis of %s failed: %v", dir, err)
	}
	return prog, result
}

// checkExpectedPositions checks that the flows found are exactly the flows annotated in the test program
func checkExpectedPositions(t *testing.T, prog *ssa.Program, flows *Flows,
	expect map[analysistest.LPos]map[analysistest.LPos]bool) {
	t.Helper()
	seen := map[analysistest.LPos]map[analysistest.LPos]bool{}
	for sink, sources := range flows.ToPositions(prog) {
		sinkPos := analysistest.RemoveColumn(sink)
		for source := range sources {
			sourcePos := analysistest.RemoveColumn(source)
			if _, ok := seen[sinkPos]; !ok {
				seen[sinkPos] = map[analysistest.LPos]bool{}
			}
			seen[sinkPos][sourcePos] = true
			if !expect[sinkPos][sourcePos] {
				t.Errorf("false positive: source at %s reaches sink at %s", sourcePos, sinkPos)
			}
		}
	}
	for sinkPos, sources := range expect {
		for sourcePos := range sources {
			if !seen[sinkPos][sourcePos] {
				t.Errorf("missing flow from source at %s to sink at %s", sourcePos, sinkPos)
			}
		}
	}
}

func TestBasicFlows(t *testing.T) {
	for _, algorithm := range []string{config.AliasingContextSensitive, config.AliasingNone} {
		t.Run(algorithm, func(t *testing.T) {
			prog, result := runTest(t, "basic", algorithm)
			checkExpectedPositions(t, prog, result.TaintFlows,
				analysistest.GetExpectedSourceToSink(t, filepath.Join("testdata", "basic")))
		})
	}
}

func TestFlowsThroughAliases(t *testing.T) {
	prog, result := runTest(t, "aliasing", config.AliasingContextSensitive)
	checkExpectedPositions(t, prog, result.TaintFlows,
		analysistest.GetExpectedSourceToSink(t, filepath.Join("testdata", "aliasing")))
	if result.AliasMetrics.Queries() == 0 {
		t.Errorf("expected alias queries on field writes")
	}
}

func TestFlowsThroughAliasesFlowSensitive(t *testing.T) {
	prog, result := runTest(t, "aliasing", config.AliasingFlowSensitive)
	checkExpectedPositions(t, prog, result.TaintFlows,
		analysistest.GetExpectedSourceToSink(t, filepath.Join("testdata", "aliasing")))
}

func TestFlowsThroughAliasesFlowInsensitive(t *testing.T) {
	prog, result := runTest(t, "aliasing", config.AliasingFlowInsensitive)
	checkExpectedPositions(t, prog, result.TaintFlows,
		analysistest.GetExpectedSourceToSink(t, filepath.Join("testdata", "aliasing")))
	if result.AliasMetrics.Queries() == 0 {
		t.Errorf("expected alias queries on field writes")
	}
}

func TestAliasesEscapingToCaller(t *testing.T) {
	prog, result := runTest(t, "escape", config.AliasingContextSensitive)
	checkExpectedPositions(t, prog, result.TaintFlows,
		analysistest.GetExpectedSourceToSink(t, filepath.Join("testdata", "escape")))
	if result.AliasMetrics.CacheHits() == 0 {
		t.Errorf("expected the aliases of the caller to be replayed on return")
	}

	_, result = runTest(t, "escape", config.AliasingNone)
	if n := result.TaintFlows.Len(); n != 0 {
		t.Errorf("expected no flow without alias analysis, got %d", n)
	}
}

func TestNoAliasingMissesAliases(t *testing.T) {
	_, result := runTest(t, "aliasing", config.AliasingNone)
	if n := result.TaintFlows.Len(); n != 0 {
		t.Errorf("expected no flow without alias analysis, got %d", n)
	}
	if result.AliasMetrics.Queries() != 0 {
		t.Errorf("expected no alias query, got %d", result.AliasMetrics.Queries())
	}
}

func TestMultipleWorkers(t *testing.T) {
	dir := filepath.Join("testdata", "basic")
	prog, _, cfg := analysistest.LoadTest(t, dir)
	cfg.MaxThreads = 8
	result, err := Analyze(cfg, prog)
	if err != nil {
		t.Fatalf("taint analysis of %s failed: %v", dir, err)
	}
	checkExpectedPositions(t, prog, result.TaintFlows, analysistest.GetExpectedSourceToSink(t, dir))
	if result.NumPathEdges == 0 {
		t.Errorf("expected path edges to be computed")
	}
}

func TestNoProblem(t *testing.T) {
	prog, _, cfg := analysistest.LoadTest(t, filepath.Join("testdata", "basic"))
	cfg.TaintTrackingProblems = nil
	result, err := Analyze(cfg, prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TaintFlows.Len() != 0 {
		t.Errorf("expected no flow without taint tracking problem")
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	prog, _, cfg := analysistest.LoadTest(t, filepath.Join("testdata", "basic"))
	cfg.AliasingAlgorithm = "sparse"
	if _, err := Analyze(cfg, prog); err == nil {
		t.Errorf("expected an error for an unknown aliasing algorithm")
	}
}

func TestWriteReport(t *testing.T) {
	prog, result := runTest(t, "basic", config.AliasingContextSensitive)
	var buf bytes.Buffer
	WriteReport(&buf, prog, result)
	out := buf.String()
	if strings.Count(out, "Sink reached at") != result.TaintFlows.Len() {
		t.Errorf("expected one paragraph per sink in report:\n%s", out)
	}
	if !strings.Contains(out, "alias queries:") {
		t.Errorf("expected the alias metrics in report:\n%s", out)
	}

	buf.Reset()
	WriteReport(&buf, prog, AnalysisResult{TaintFlows: NewFlows()})
	if !strings.Contains(buf.String(), "No taint flow found") {
		t.Errorf("expected an empty report, got %q", buf.String())
	}
}
