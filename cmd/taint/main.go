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

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/awslabs/ar-go-alias/analysis"
	"github.com/awslabs/ar-go-alias/analysis/config"
	"github.com/awslabs/ar-go-alias/analysis/taint"
	"github.com/awslabs/ar-go-alias/internal/formatutil"
	"github.com/awslabs/ar-go-alias/internal/funcutil"
	"github.com/awslabs/ar-go-alias/internal/graphutil"
	"golang.org/x/tools/go/ssa"
)

var (
	configPath = flag.String("config", "", "Config file path for taint analysis")
	aliasFlag  = flag.String("alias", "", "Alias strategy (context-sensitive, flow-sensitive, flow-insensitive, none)")
	maxThreads = flag.Int("max-threads", 0, "Number of workers of the taint solver")
	cycles     = flag.Bool("cycles", false, "Print the recursive functions of the program")
)

func init() {
	flag.Var(&buildmode, "build", ssa.BuilderModeDoc)
}

var (
	buildmode = ssa.BuilderMode(0)
)

const usage = ` Perform taint analysis on your packages.
Usage:
    taint [options] <package path(s)>
Examples:
% taint -config config.yaml package...
% taint -config config.yaml -alias none package...
`

func main() {
	flag.Parse()

	if flag.NArg() == 0 {
		_, _ = fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", formatutil.Red(err))
		os.Exit(1)
	}
}

func run() error {
	taintConfig := config.NewDefault()
	if *configPath != "" {
		config.SetGlobalConfig(*configPath)
		cfg, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("could not load config %s: %w", *configPath, err)
		}
		taintConfig = cfg
	}
	if *aliasFlag != "" {
		taintConfig.AliasingAlgorithm = *aliasFlag
	}
	if *maxThreads > 0 {
		taintConfig.MaxThreads = *maxThreads
	}
	logger := config.NewLogGroup(taintConfig)

	logger.Infof("%s\n", formatutil.Faint("Reading sources"))
	start := time.Now()
	loaded, err := analysis.LoadProgram(nil, "", buildmode, flag.Args())
	if err != nil {
		return fmt.Errorf("could not load program: %w", err)
	}
	logger.Infof("Loaded %d packages (%.2f s)\n", len(loaded.Packages), time.Since(start).Seconds())

	start = time.Now()
	result, err := taint.Analyze(taintConfig, loaded.Program)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	logger.Infof("Analysis took %3.4f s\n", time.Since(start).Seconds())

	if *cycles {
		printRecursiveFunctions(result)
	}
	taint.WriteReport(os.Stdout, loaded.Program, result)
	return nil
}

func printRecursiveFunctions(result taint.AnalysisResult) {
	recursive := graphutil.RecursiveFunctions(graphutil.NewCGraph(result.CallGraph))
	names := make(map[string]bool, len(recursive))
	for f := range recursive {
		names[f.String()] = true
	}
	fmt.Printf("%s\n", formatutil.Bold(fmt.Sprintf("%d recursive functions", len(names))))
	for _, name := range funcutil.SortedKeys(names) {
		fmt.Printf("  %s\n", name)
	}
}
