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
	"fmt"
	"time"

	"github.com/awslabs/ar-go-alias/analysis/aliasing"
	"github.com/awslabs/ar-go-alias/analysis/config"
	"github.com/awslabs/ar-go-alias/analysis/dataflow"
	"github.com/awslabs/ar-go-alias/internal/graphutil"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/ssa"
)

// AnalysisResult contains the results of the taint analysis
type AnalysisResult struct {
	// TaintFlows contains all the data flows from the sources to the sinks detected during the analysis
	TaintFlows *Flows

	// AliasMetrics contains the counters of the alias analysis
	AliasMetrics *aliasing.Metrics

	// CallGraph is the call graph used to resolve callees
	CallGraph *callgraph.Graph

	// NumPathEdges is the number of path edges computed by the solvers of all the taint tracking problems
	NumPathEdges int
}

// Analyze runs the taint analysis on the program prog with the user-provided configuration cfg. Every taint tracking
// problem of the configuration is solved from the entry points of the program, with the alias strategy selected by
// the aliasing-algorithm option.
//
// - cfg is the configuration that determines which functions are sources, sinks and sanitizers.
//
// - prog is the built ssa representation of the program.
func Analyze(cfg *config.Config, prog *ssa.Program) (AnalysisResult, error) {
	logger := config.NewLogGroup(cfg)
	start := time.Now()
	cg := cha.CallGraph(prog)
	logger.Infof("Call graph built (%.2f s)\n", time.Since(start).Seconds())

	entries := graphutil.EntryPoints(cg)
	if len(entries) == 0 {
		return AnalysisResult{}, fmt.Errorf("no entry point in the program")
	}

	factory := dataflow.NewAccessPathFactory(cfg.AccessPathLength)
	metrics := aliasing.NewMetrics()
	result := AnalysisResult{TaintFlows: NewFlows(), AliasMetrics: metrics, CallGraph: cg}

	for i := range cfg.TaintTrackingProblems {
		spec := &cfg.TaintTrackingProblems[i]
		strategy, err := aliasing.New(cfg.AliasingAlgorithm, aliasing.Dependencies{
			Program:   prog,
			Config:    cfg,
			Logger:    logger,
			Factory:   factory,
			CallGraph: cg,
			Metrics:   metrics,
		})
		if err != nil {
			return result, fmt.Errorf("could not create alias strategy: %w", err)
		}
		start = time.Now()
		solver := NewSolver(cfg, spec, logger, cg, factory, strategy)
		flows := solver.Solve(entries, cfg.MaxThreads)
		strategy.Cleanup()
		logger.Infof("Taint tracking problem %d solved (%.2f s): %d flows\n", i+1, time.Since(start).Seconds(),
			flows.Len())
		result.TaintFlows.Merge(flows)
		result.NumPathEdges += solver.NumPathEdges()
	}
	logger.Infof("%s\n", metrics)
	return result, nil
}
