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
	"time"

	"github.com/awslabs/ar-go-alias/analysis/lang"
	"golang.org/x/tools/go/ssa"
)

type backwardKey struct {
	val ssa.Value
	ctx Context
}

type backwardItem struct {
	backwardKey
	depth int
}

// findAllocationSites walks the definitions of the query variable backwards, through copies and into the callers
// the requester allows for parameters. Returns the allocation sites with their context, and whether the walk ran out
// of time.
func (e *DemandEngine) findAllocationSites(q BackwardQuery, req ContextRequester,
	deadline time.Time) (map[ForwardQuery]Context, bool) {
	sites := map[ForwardQuery]Context{}
	seen := map[backwardKey]bool{}
	worklist := []backwardItem{{backwardKey: backwardKey{val: q.Var.Value, ctx: req.InitialContext(q.Stmt)}}}

	for len(worklist) > 0 {
		if time.Now().After(deadline) {
			return sites, true
		}
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if seen[cur.backwardKey] {
			continue
		}
		seen[cur.backwardKey] = true

		next, isAllocation := e.backwardStep(cur, req)
		if isAllocation {
			fq := allocationQuery(cur.val)
			if _, ok := sites[fq]; !ok {
				sites[fq] = cur.ctx
			}
		}
		worklist = append(worklist, next...)
	}
	return sites, false
}

// backwardStep returns the values cur is a copy of, or true if cur is an allocation site.
func (e *DemandEngine) backwardStep(cur backwardItem, req ContextRequester) ([]backwardItem, bool) {
	same := func(vals ...ssa.Value) []backwardItem {
		res := make([]backwardItem, 0, len(vals))
		for _, v := range vals {
			res = append(res, backwardItem{backwardKey: backwardKey{val: v, ctx: cur.ctx}, depth: cur.depth})
		}
		return res
	}

	switch v := cur.val.(type) {
	case *ssa.Phi:
		return same(v.Edges...), false
	case *ssa.ChangeType:
		return same(v.X), false
	case *ssa.ChangeInterface:
		return same(v.X), false
	case *ssa.Convert:
		return same(v.X), false
	case *ssa.Slice:
		return same(v.X), false
	case *ssa.TypeAssert:
		if !v.CommaOk {
			return same(v.X), false
		}
		return nil, true
	case *ssa.Extract:
		if ta, ok := v.Tuple.(*ssa.TypeAssert); ok && v.Index == 0 {
			return same(ta.X), false
		}
		return nil, true
	case *ssa.Parameter:
		next := e.callerArguments(v, cur, req)
		return next, len(next) == 0
	default:
		return nil, true
	}
}

// callerArguments returns the arguments matching the parameter p in the caller contexts of cur.
func (e *DemandEngine) callerArguments(p *ssa.Parameter, cur backwardItem, req ContextRequester) []backwardItem {
	if cur.depth >= e.opts.MaxDepth {
		return nil
	}
	fn := p.Parent()
	idx := -1
	for i, param := range fn.Params {
		if param == p {
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}
	var res []backwardItem
	for _, c := range req.CallerContextsOf(cur.ctx) {
		call, ok := c.Stmt().Instr.(ssa.CallInstruction)
		if !ok {
			e.logger.Debugf("Caller context %v is not a call, ignored\n", c.Stmt())
			continue
		}
		if arg := argumentOf(call.Common(), idx); arg != nil {
			res = append(res, backwardItem{backwardKey: backwardKey{val: arg, ctx: c}, depth: cur.depth + 1})
		}
	}
	return res
}

// argumentOf returns the value passed to the parameter at index idx of the callee
func argumentOf(common *ssa.CallCommon, idx int) ssa.Value {
	if common.IsInvoke() {
		if idx == 0 {
			return common.Value
		}
		idx--
	}
	if idx < len(common.Args) {
		return common.Args[idx]
	}
	return nil
}

// allocationQuery returns the allocation site of v
func allocationQuery(v ssa.Value) ForwardQuery {
	var stmt lang.Statement
	if instr, ok := v.(ssa.Instruction); ok {
		stmt = lang.NewStatement(instr)
	} else if fn := v.Parent(); fn != nil {
		stmt = lang.EntryStatement(fn)
	}
	return ForwardQuery{Stmt: stmt, Var: ValOf(v)}
}
