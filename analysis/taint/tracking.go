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
	"go/token"

	"golang.org/x/tools/go/ssa"
)

// Flows stores information about where the data coming from specific instructions flows to.
type Flows struct {
	// Sinks maps the sink instructions to the source instruction from which the data flows
	// More precisely, Sinks[sink][source] <== data from source flows to sink
	Sinks map[ssa.Instruction]map[ssa.Instruction]bool
}

// PositionSetMap maps sink positions to the positions of the sources that reach them
type PositionSetMap = map[token.Position]map[token.Position]bool

// NewFlows returns a new object to track taint flows
func NewFlows() *Flows {
	return &Flows{
		Sinks: map[ssa.Instruction]map[ssa.Instruction]bool{},
	}
}

// addNewFlow adds a flow from source to sink. Returns true if the flow is new.
func (m *Flows) addNewFlow(source ssa.Instruction, sink ssa.Instruction) bool {
	if source == nil || sink == nil {
		return false
	}
	if _, ok := m.Sinks[sink]; !ok {
		m.Sinks[sink] = make(map[ssa.Instruction]bool)
	}
	if m.Sinks[sink][source] {
		return false
	}
	m.Sinks[sink][source] = true
	return true
}

// Len returns the number of (source, sink) pairs
func (m *Flows) Len() int {
	n := 0
	for _, sources := range m.Sinks {
		n += len(sources)
	}
	return n
}

// Merge merges the flows from b into a
// requires a != nil
func (m *Flows) Merge(b *Flows) {
	for x, yb := range b.Sinks {
		ya, ina := m.Sinks[x]
		if ina {
			m.Sinks[x] = unionPaths(ya, yb)
		} else {
			m.Sinks[x] = yb
		}
	}
}

// unionPaths is a utility function to merge two sets of instructions.
func unionPaths(p1 map[ssa.Instruction]bool, p2 map[ssa.Instruction]bool) map[ssa.Instruction]bool {
	for x, yb := range p2 {
		ya, ina := p1[x]
		if ina {
			p1[x] = yb || ya
		} else {
			p1[x] = yb
		}
	}
	return p1
}

// ToPositions translates Flows into the map from sink positions to source positions
func (m *Flows) ToPositions(prog *ssa.Program) PositionSetMap {
	return instrPSetToPositionSetMap(prog, m.Sinks)
}

// instrPSetToPositionSetMap converts the map of sets of instructions to a map of sets of positions using the program
// prog to resolve the positions
func instrPSetToPositionSetMap(p *ssa.Program, iMap map[ssa.Instruction]map[ssa.Instruction]bool) PositionSetMap {
	pMap := make(PositionSetMap)

	for sinkNode, sourceNodes := range iMap {
		sinkPos := sinkNode.Pos()
		sinkFile := p.Fset.File(sinkPos)
		if sinkPos != token.NoPos && sinkFile != nil {
			pMap[sinkFile.Position(sinkPos)] = map[token.Position]bool{}
			for sourceNode := range sourceNodes {
				sourcePos := sourceNode.Pos()
				sourceFile := p.Fset.File(sourcePos)
				if sourcePos != token.NoPos && sourceFile != nil {
					pMap[sinkFile.Position(sinkPos)][sourceFile.Position(sourcePos)] = true
				}
			}
		}
	}
	return pMap
}
