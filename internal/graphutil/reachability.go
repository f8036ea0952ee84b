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

package graphutil

import (
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"
)

// EntryPoints returns the main and init functions of the main packages in the call graph. If there are none, it
// returns every function that has no caller.
func EntryPoints(cg *callgraph.Graph) []*ssa.Function {
	var entries []*ssa.Function
	for f := range cg.Nodes {
		if f != nil && f.Pkg != nil && f.Pkg.Pkg.Name() == "main" && f.Parent() == nil &&
			(f.Name() == "main" || f.Name() == "init") {
			entries = append(entries, f)
		}
	}
	if len(entries) > 0 {
		return entries
	}
	for f, node := range cg.Nodes {
		if f == nil {
			continue
		}
		hasCaller := false
		for _, in := range node.In {
			if in.Caller != nil && in.Caller.Func != nil {
				hasCaller = true
			}
		}
		if !hasCaller {
			entries = append(entries, f)
		}
	}
	return entries
}

// Reachable returns the functions reachable from the entries in the call graph
func Reachable(c CGraph, entries []*ssa.Function) map[*ssa.Function]bool {
	reachable := map[*ssa.Function]bool{}
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) {
			if cn, ok := n.(CNode); ok && cn.Node.Func != nil {
				reachable[cn.Node.Func] = true
			}
		},
	}
	for _, f := range entries {
		node, ok := c.NodeOf(f)
		if !ok || bf.Visited(node) {
			continue
		}
		bf.Walk(c, node, nil)
	}
	return reachable
}
