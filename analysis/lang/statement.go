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

package lang

import (
	"fmt"

	"golang.org/x/tools/go/ssa"
)

// A Statement is an instruction paired with the function that encloses it. Statements are values: two statements are
// equal when they refer to the same instruction in the same function, and they can be used as map keys.
type Statement struct {
	Instr  ssa.Instruction
	Method *ssa.Function
}

// NewStatement returns the statement of instr in its parent function
func NewStatement(instr ssa.Instruction) Statement {
	if instr == nil {
		return Statement{}
	}
	return Statement{Instr: instr, Method: instr.Parent()}
}

// IsValid returns true if the statement refers to some instruction
func (s Statement) IsValid() bool {
	return s.Instr != nil
}

func (s Statement) String() string {
	if s.Instr == nil {
		return "<no statement>"
	}
	name := "?"
	if s.Method != nil {
		name = s.Method.String()
	}
	return fmt.Sprintf("%s @ %s", FmtInstr(s.Instr), name)
}

// IsCall returns true if the statement is a call (including go and defer)
func (s Statement) IsCall() bool {
	_, ok := s.Instr.(ssa.CallInstruction)
	return ok
}

// CallInstr returns the call instruction of the statement, if it is a call
func (s Statement) CallInstr() (ssa.CallInstruction, bool) {
	c, ok := s.Instr.(ssa.CallInstruction)
	return c, ok
}

// UsesValue returns true if v is an operand of the statement's instruction or the value it defines.
func (s Statement) UsesValue(v ssa.Value) bool {
	if s.Instr == nil || v == nil {
		return false
	}
	if def, ok := s.Instr.(ssa.Value); ok && def == v {
		return true
	}
	for _, op := range s.Instr.Operands(nil) {
		if op != nil && *op == v {
			return true
		}
	}
	return false
}

// EntryStatement returns the first statement of f, or an invalid statement if f has no body.
func EntryStatement(f *ssa.Function) Statement {
	if f == nil || len(f.Blocks) == 0 || len(f.Blocks[0].Instrs) == 0 {
		return Statement{}
	}
	return Statement{Instr: f.Blocks[0].Instrs[0], Method: f}
}

// Succs returns the statements that can be executed right after s, in the same function.
func Succs(s Statement) []Statement {
	block := s.Instr.Block()
	if block == nil {
		return nil
	}
	idx := instrIndex(block, s.Instr)
	if idx >= 0 && idx < len(block.Instrs)-1 {
		return []Statement{{Instr: block.Instrs[idx+1], Method: s.Method}}
	}
	var res []Statement
	for _, succ := range block.Succs {
		if first := FirstInstr(succ); first != nil {
			res = append(res, Statement{Instr: first, Method: s.Method})
		}
	}
	return res
}

// Preds returns the statements that can be executed right before s, in the same function.
func Preds(s Statement) []Statement {
	block := s.Instr.Block()
	if block == nil {
		return nil
	}
	idx := instrIndex(block, s.Instr)
	if idx > 0 {
		return []Statement{{Instr: block.Instrs[idx-1], Method: s.Method}}
	}
	var res []Statement
	for _, pred := range block.Preds {
		if last := LastInstr(pred); last != nil {
			res = append(res, Statement{Instr: last, Method: s.Method})
		}
	}
	return res
}

// ReturnSite returns the statement that follows a call. Calls are never the last instruction of a block in SSA, so
// the return site is the next instruction of the same block.
func ReturnSite(call Statement) (Statement, bool) {
	succs := Succs(call)
	if len(succs) != 1 {
		return Statement{}, false
	}
	return succs[0], true
}

// IsExit returns true if the statement leaves the function
func IsExit(s Statement) bool {
	switch s.Instr.(type) {
	case *ssa.Return, *ssa.Panic:
		return true
	}
	return false
}

func instrIndex(block *ssa.BasicBlock, instr ssa.Instruction) int {
	for i, x := range block.Instrs {
		if x == instr {
			return i
		}
	}
	return -1
}

// LastInstr returns the last instruction in a block. There is always a last instruction for a reachable block.
// Returns nil for an empty block (a block can be empty if it is non-reachable)
func LastInstr(block *ssa.BasicBlock) ssa.Instruction {
	if len(block.Instrs) == 0 {
		return nil
	}
	return block.Instrs[len(block.Instrs)-1]
}

// FirstInstr returns the first instruction in a block, or nil for an empty block
func FirstInstr(block *ssa.BasicBlock) ssa.Instruction {
	if len(block.Instrs) == 0 {
		return nil
	}
	return block.Instrs[0]
}

// FmtInstr prints the instruction, with its value name when it defines one
func FmtInstr(instr ssa.Instruction) string {
	if v, ok := instr.(ssa.Value); ok {
		return v.Name() + " = " + instr.String()
	}
	return instr.String()
}
