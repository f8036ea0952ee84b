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
	"sort"

	"github.com/yourbasic/graph"
	"golang.org/x/tools/go/ssa"
)

// FindAllElementaryCycles finds all elementary cycles in the graph CGraph
// This uses Donald B. Johnson's algorithm presented in
// "Finding All The Elementary Circuits of a Directed Graph", 1975
//
// Each cycle starts and ends with the same node id.
func FindAllElementaryCycles(cg CGraph) [][]int64 {
	s := &johnsonState{cycles: [][]int64{}}
	start := 0
	for start < len(cg.Keys) {
		fg := Subgraph(cg, cg.Keys[start:])
		least := int64(-1)
		for _, component := range graph.StrongComponents(fg) {
			if len(component) < 2 && !fg.Edges[int64(component[0])][int64(component[0])] {
				continue
			}
			for _, node := range component {
				if _, inGraph := fg.IDMap[int64(node)]; inGraph && (least < 0 || int64(node) < least) {
					least = int64(node)
				}
			}
		}
		if least < 0 {
			break
		}
		s.stack = nil
		s.blocked = map[int64]bool{}
		s.blist = map[int64]map[int64]bool{}
		s.circuit(least, least, fg)
		// continue with the nodes after the least node of the cycles found
		start = sort.Search(len(cg.Keys), func(i int) bool { return cg.Keys[i] > least })
	}
	return s.cycles
}

type johnsonState struct {
	blocked map[int64]bool
	blist   map[int64]map[int64]bool
	stack   []int64
	cycles  [][]int64
}

func (s *johnsonState) unblock(u int64) {
	s.blocked[u] = false
	for w := range s.blist[u] {
		delete(s.blist[u], w)
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

func (s *johnsonState) circuit(v int64, start int64, g CGraph) bool {
	found := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	for w := range g.Edges[v] {
		if w == start {
			cycle := make([]int64, len(s.stack), len(s.stack)+1)
			copy(cycle, s.stack)
			s.cycles = append(s.cycles, append(cycle, w))
			found = true
		} else if !s.blocked[w] {
			if s.circuit(w, start, g) {
				found = true
			}
		}
	}

	if found {
		s.unblock(v)
	} else {
		for w := range g.Edges[v] {
			if s.blist[w] == nil {
				s.blist[w] = map[int64]bool{}
			}
			s.blist[w][v] = true
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return found
}

// CycleFunctions returns the functions of a cycle of node ids, without the repeated last node
func CycleFunctions(cg CGraph, cycle []int64) []*ssa.Function {
	var res []*ssa.Function
	for i, id := range cycle {
		if i == len(cycle)-1 && len(cycle) > 1 && id == cycle[0] {
			break
		}
		if f := cg.Function(id); f != nil {
			res = append(res, f)
		}
	}
	return res
}

// RecursiveFunctions returns the functions that belong to a cycle of the call graph
func RecursiveFunctions(cg CGraph) map[*ssa.Function]bool {
	res := map[*ssa.Function]bool{}
	for _, component := range graph.StrongComponents(cg) {
		if len(component) == 1 && !cg.Edges[int64(component[0])][int64(component[0])] {
			continue
		}
		for _, id := range component {
			if f := cg.Function(int64(id)); f != nil {
				res[f] = true
			}
		}
	}
	return res
}
