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
	"go/token"
	"io"
	"sort"

	"github.com/awslabs/ar-go-alias/internal/formatutil"
	"golang.org/x/tools/go/ssa"
)

// WriteReport writes the flows of the result to w, one sink per paragraph, sorted by position
func WriteReport(w io.Writer, prog *ssa.Program, result AnalysisResult) {
	positions := result.TaintFlows.ToPositions(prog)
	sinks := make([]token.Position, 0, len(positions))
	for sink := range positions {
		sinks = append(sinks, sink)
	}
	sortPositions(sinks)

	for _, sink := range sinks {
		fmt.Fprintf(w, " 💀 Sink reached at %s\n", formatutil.Red(sink))
		sources := make([]token.Position, 0, len(positions[sink]))
		for source := range positions[sink] {
			sources = append(sources, source)
		}
		sortPositions(sources)
		for _, source := range sources {
			fmt.Fprintf(w, "    from source at %s\n", formatutil.Green(source))
		}
	}
	if len(sinks) == 0 {
		fmt.Fprintf(w, "%s\n", formatutil.Faint("No taint flow found"))
	} else {
		fmt.Fprintf(w, "%s\n", formatutil.Bold(fmt.Sprintf("%d taint flows found", result.TaintFlows.Len())))
	}
	if result.AliasMetrics != nil {
		fmt.Fprintf(w, "%s\n", formatutil.Faint(result.AliasMetrics.String()))
	}
}

func sortPositions(positions []token.Position) {
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Filename != positions[j].Filename {
			return positions[i].Filename < positions[j].Filename
		}
		if positions[i].Line != positions[j].Line {
			return positions[i].Line < positions[j].Line
		}
		return positions[i].Column < positions[j].Column
	})
}
