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

package pds

import (
	"go/token"
	"go/types"

	"github.com/awslabs/ar-go-alias/analysis/lang"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// programIndex stores the uses of package-level variables, which SSA does not record as referrers.
type programIndex struct {
	globalUses  map[*ssa.Global][]ssa.Instruction
	globalLoads map[*ssa.Global][]*ssa.UnOp
}

func newProgramIndex(prog *ssa.Program) *programIndex {
	idx := &programIndex{
		globalUses:  map[*ssa.Global][]ssa.Instruction{},
		globalLoads: map[*ssa.Global][]*ssa.UnOp{},
	}
	if prog == nil {
		return idx
	}
	for f := range ssautil.AllFunctions(prog) {
		lang.IterateInstructions(f, func(_ int, instr ssa.Instruction) {
			for _, op := range instr.Operands(nil) {
				if op == nil {
					continue
				}
				g, ok := (*op).(*ssa.Global)
				if !ok {
					continue
				}
				idx.globalUses[g] = append(idx.globalUses[g], instr)
				if load, isLoad := instr.(*ssa.UnOp); isLoad && load.Op == token.MUL {
					idx.globalLoads[g] = append(idx.globalLoads[g], load)
				}
			}
		})
	}
	return idx
}

// isCopy returns true if v holds the same pointer as one of its operands
func isCopy(v ssa.Value) bool {
	switch x := v.(type) {
	case *ssa.Phi, *ssa.ChangeType, *ssa.ChangeInterface, *ssa.Convert, *ssa.Slice:
		return true
	case *ssa.TypeAssert:
		return !x.CommaOk
	}
	return false
}

func copyOperands(v ssa.Value) []ssa.Value {
	switch x := v.(type) {
	case *ssa.Phi:
		return x.Edges
	case *ssa.ChangeType:
		return []ssa.Value{x.X}
	case *ssa.ChangeInterface:
		return []ssa.Value{x.X}
	case *ssa.Convert:
		return []ssa.Value{x.X}
	case *ssa.Slice:
		return []ssa.Value{x.X}
	case *ssa.TypeAssert:
		if !x.CommaOk {
			return []ssa.Value{x.X}
		}
	}
	return nil
}

// copyClosure returns the values of the function of v that are copies of v, or that v is a copy of, transitively.
// The result starts with v.
func copyClosure(v ssa.Value) []ssa.Value {
	seen := map[ssa.Value]bool{v: true}
	res := []ssa.Value{v}
	stack := []ssa.Value{v}
	add := func(x ssa.Value) {
		if x != nil && !seen[x] {
			seen[x] = true
			res = append(res, x)
			stack = append(stack, x)
		}
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, op := range copyOperands(cur) {
			add(op)
		}
		refs := cur.Referrers()
		if refs == nil {
			continue
		}
		for _, ref := range *refs {
			if x, ok := ref.(ssa.Value); ok && isCopy(x) {
				add(x)
			}
		}
	}
	return res
}

// isLoad returns the address loaded by v, if v is a load
func isLoad(v ssa.Value) (ssa.Value, bool) {
	if load, ok := v.(*ssa.UnOp); ok && load.Op == token.MUL {
		return load.X, true
	}
	return nil, false
}

func isTuple(v ssa.Value) bool {
	_, ok := v.Type().(*types.Tuple)
	return ok
}
