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
	"sync"
	"time"

	"github.com/awslabs/ar-go-alias/analysis/lang"
	"golang.org/x/tools/go/ssa"
)

// A frame is an element of an interned stack of return sites. The nil frame is the empty stack.
type frame struct {
	site   lang.Statement
	parent *frame
	depth  int
}

type frameKey struct {
	site   lang.Statement
	parent *frame
}

// node is a value reached by the forward analysis, with the stack of return sites it is reached with, and the
// context used when the value is returned from the function of the allocation site.
type node struct {
	val   ssa.Value
	stack *frame
	ctx   Context
}

// allocationSolver solves an allocation site forward. Once solve has returned, only the listener registry of the
// automaton changes.
type allocationSolver struct {
	engine    *DemandEngine
	query     ForwardQuery
	ctx       Context
	frames    map[frameKey]*frame
	reached   map[node]bool
	order     []node
	aliases   *aliasSet
	timedOut  bool
	automaton *callAutomaton
}

func newAllocationSolver(e *DemandEngine, q ForwardQuery, ctx Context) *allocationSolver {
	s := &allocationSolver{
		engine:  e,
		query:   q,
		ctx:     ctx,
		frames:  map[frameKey]*frame{},
		reached: map[node]bool{},
		aliases: newAliasSet(),
	}
	s.automaton = &callAutomaton{solver: s}
	return s
}

func (s *allocationSolver) Query() ForwardQuery {
	return s.query
}

func (s *allocationSolver) CallAutomaton() CallAutomaton {
	return s.automaton
}

func (s *allocationSolver) PredsOf(stmt lang.Statement) []lang.Statement {
	return lang.Preds(stmt)
}

func (s *allocationSolver) ValueUsedInStatement(stmt lang.Statement, v Val) bool {
	return stmt.UsesValue(v.Value)
}

func (s *allocationSolver) AliasesAt(stmt lang.Statement) []AccessPath {
	return s.aliasesIn(stmt.Method)
}

func (s *allocationSolver) TimedOut() bool {
	return s.timedOut
}

// aliasesIn returns the aliases whose base is a value of method, or a package-level variable
func (s *allocationSolver) aliasesIn(method *ssa.Function) []AccessPath {
	var res []AccessPath
	for _, ap := range s.aliases.list() {
		if ap.base.IsStatic() || ap.base.Method == method {
			res = append(res, ap)
		}
	}
	return res
}

func (s *allocationSolver) push(stack *frame, site lang.Statement) *frame {
	k := frameKey{site: site, parent: stack}
	if f, ok := s.frames[k]; ok {
		return f
	}
	f := &frame{site: site, parent: stack, depth: stack.size() + 1}
	s.frames[k] = f
	return f
}

func (f *frame) size() int {
	if f == nil {
		return 0
	}
	return f.depth
}

func (s *allocationSolver) solve(req ContextRequester, deadline time.Time) {
	start := s.query.Var.Value
	if start == nil {
		return
	}
	s.addOrigins(start)
	worklist := []node{{val: start, ctx: s.ctx}}
	for len(worklist) > 0 {
		if time.Now().After(deadline) {
			s.timedOut = true
			return
		}
		n := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if s.reached[n] {
			continue
		}
		s.reached[n] = true
		s.order = append(s.order, n)
		if !isTuple(n.val) {
			s.aliases.add(NewAccessPath(ValOf(n.val)))
		}
		worklist = append(worklist, s.successors(n, req)...)
	}
}

// addOrigins adds the access paths an allocation site was loaded from
func (s *allocationSolver) addOrigins(v ssa.Value) {
	if addr, ok := isLoad(v); ok {
		s.addLocationAliases(addr, nil)
	}
}

func (s *allocationSolver) uses(v ssa.Value) []ssa.Instruction {
	if g, ok := v.(*ssa.Global); ok {
		return s.engine.programIndex().globalUses[g]
	}
	refs := v.Referrers()
	if refs == nil {
		return nil
	}
	return *refs
}

func (s *allocationSolver) successors(n node, req ContextRequester) []node {
	var next []node
	for _, instr := range s.uses(n.val) {
		switch instr := instr.(type) {
		case *ssa.Phi, *ssa.ChangeType, *ssa.ChangeInterface, *ssa.Convert, *ssa.MakeInterface, *ssa.Slice,
			*ssa.TypeAssert:
			next = append(next, node{val: instr.(ssa.Value), stack: n.stack, ctx: n.ctx})
		case *ssa.Extract:
			if instr.Index == 0 {
				next = append(next, node{val: instr, stack: n.stack, ctx: n.ctx})
			}
		case *ssa.Store:
			if instr.Val == n.val {
				s.addLocationAliases(instr.Addr, nil)
				next = append(next, s.locationLoads(instr.Addr, n)...)
			}
		case *ssa.MapUpdate:
			if instr.Value == n.val {
				s.addFieldAliases(instr.Map, []Field{ArrayField()})
				next = append(next, s.elementLoads(instr.Map, n)...)
			}
		case *ssa.Call:
			next = append(next, s.call(instr, n)...)
		case *ssa.Return:
			next = append(next, s.ret(instr, n, req)...)
		}
	}
	return next
}

// addLocationAliases adds the access paths of the location at addr, followed by tail
func (s *allocationSolver) addLocationAliases(addr ssa.Value, tail []Field) {
	switch addr := addr.(type) {
	case *ssa.FieldAddr:
		if f := lang.FieldAddrVar(addr); f != nil {
			s.addFieldAliases(addr.X, append([]Field{NewField(f)}, tail...))
		}
	case *ssa.IndexAddr:
		s.addFieldAliases(addr.X, append([]Field{ArrayField()}, tail...))
	case *ssa.Global:
		s.aliases.add(s.bounded(NewVal(addr, nil), tail))
	default:
		// the pointer stands for its contents
		s.addFieldAliases(addr, tail)
	}
}

// addFieldAliases adds the access paths y.tail for every copy of y, and the paths y was loaded from.
func (s *allocationSolver) addFieldAliases(y ssa.Value, tail []Field) {
	for _, z := range copyClosure(y) {
		ap := s.bounded(ValOf(z), tail)
		if !s.aliases.add(ap) || ap.overApproximated {
			continue
		}
		if addr, ok := isLoad(z); ok {
			s.addLocationAliases(addr, tail)
		}
	}
}

// bounded returns base.tail, over-approximated if tail is longer than the maximum access path length
func (s *allocationSolver) bounded(base Val, tail []Field) AccessPath {
	maxLength := s.engine.opts.AccessPathLength
	if len(tail) > maxLength {
		return NewOverApproximatedAccessPath(base, tail[:maxLength]...)
	}
	return NewAccessPath(base, tail...)
}

// locationLoads returns the values loaded from the location at addr, or from the same location through a copy of the
// base pointer.
func (s *allocationSolver) locationLoads(addr ssa.Value, n node) []node {
	switch addr := addr.(type) {
	case *ssa.FieldAddr:
		return s.fieldLoads(addr.X, addr.Field, n)
	case *ssa.IndexAddr:
		return s.elementLoads(addr.X, n)
	case *ssa.Global:
		var next []node
		for _, load := range s.engine.programIndex().globalLoads[addr] {
			// loads in other functions have no known calling context
			next = append(next, node{val: load})
		}
		return next
	default:
		var next []node
		for _, z := range copyClosure(addr) {
			next = append(next, loadsOf(z, n)...)
		}
		return next
	}
}

func (s *allocationSolver) fieldLoads(y ssa.Value, field int, n node) []node {
	var next []node
	for _, z := range copyClosure(y) {
		refs := z.Referrers()
		if refs == nil {
			continue
		}
		for _, ref := range *refs {
			if fa, ok := ref.(*ssa.FieldAddr); ok && fa.X == z && fa.Field == field {
				next = append(next, loadsOf(fa, n)...)
			}
		}
	}
	return next
}

func (s *allocationSolver) elementLoads(y ssa.Value, n node) []node {
	var next []node
	for _, z := range copyClosure(y) {
		refs := z.Referrers()
		if refs == nil {
			continue
		}
		for _, ref := range *refs {
			switch ref := ref.(type) {
			case *ssa.IndexAddr:
				if ref.X == z {
					next = append(next, loadsOf(ref, n)...)
				}
			case *ssa.Index:
				if ref.X == z {
					next = append(next, node{val: ref, stack: n.stack, ctx: n.ctx})
				}
			case *ssa.Lookup:
				if ref.X == z {
					next = append(next, node{val: ref, stack: n.stack, ctx: n.ctx})
				}
			}
		}
	}
	return next
}

func loadsOf(addr ssa.Value, n node) []node {
	refs := addr.Referrers()
	if refs == nil {
		return nil
	}
	var next []node
	for _, ref := range *refs {
		if load, ok := ref.(*ssa.UnOp); ok {
			if x, isLoadOp := isLoad(load); isLoadOp && x == addr {
				next = append(next, node{val: load, stack: n.stack, ctx: n.ctx})
			}
		}
	}
	return next
}

// call enters the static callee of the call with the value passed as argument
func (s *allocationSolver) call(call *ssa.Call, n node) []node {
	callee := call.Common().StaticCallee()
	if callee == nil || lang.IsExternal(callee) || n.stack.size() >= s.engine.opts.MaxDepth {
		return nil
	}
	site, ok := lang.ReturnSite(lang.NewStatement(call))
	if !ok {
		return nil
	}
	var next []node
	for i, arg := range call.Common().Args {
		if arg == n.val && i < len(callee.Params) {
			next = append(next, node{val: callee.Params[i], stack: s.push(n.stack, site), ctx: n.ctx})
		}
	}
	return next
}

// ret returns the value to the return site on top of the stack. With an empty stack, the value returns to the call
// sites of the caller contexts of the requester.
func (s *allocationSolver) ret(ret *ssa.Return, n node, req ContextRequester) []node {
	var next []node
	for i, res := range ret.Results {
		if res != n.val {
			continue
		}
		if n.stack != nil {
			for _, pred := range lang.Preds(n.stack.site) {
				if call, ok := pred.Instr.(*ssa.Call); ok {
					next = append(next, resultNodes(call, i, len(ret.Results), n.stack.parent, n.ctx)...)
				}
			}
			continue
		}
		if n.ctx == nil {
			continue
		}
		for _, c := range req.CallerContextsOf(n.ctx) {
			call, ok := c.Stmt().Instr.(*ssa.Call)
			if !ok {
				continue
			}
			if callee := call.Common().StaticCallee(); callee != nil && callee != ret.Parent() {
				continue
			}
			next = append(next, resultNodes(call, i, len(ret.Results), nil, c)...)
		}
	}
	return next
}

// resultNodes returns the values holding result i of a call returning n results
func resultNodes(call *ssa.Call, i int, n int, stack *frame, ctx Context) []node {
	if n == 1 {
		return []node{{val: call, stack: stack, ctx: ctx}}
	}
	refs := call.Referrers()
	if refs == nil {
		return nil
	}
	var res []node
	for _, ref := range *refs {
		if extract, ok := ref.(*ssa.Extract); ok && extract.Index == i {
			res = append(res, node{val: extract, stack: stack, ctx: ctx})
		}
	}
	return res
}

type registeredListener struct {
	val      Val
	stmt     lang.Statement
	listener StackListener
}

// callAutomaton records the listeners registered on a solver
type callAutomaton struct {
	solver    *allocationSolver
	mu        sync.Mutex
	listeners []registeredListener
}

// RegisterListener notifies l of the stacks val has been reached with: every return site on a stack is an escape
// into a caller, and an empty stack reaches the end of the query.
func (a *callAutomaton) RegisterListener(val Val, stmt lang.Statement, l StackListener) {
	a.mu.Lock()
	a.listeners = append(a.listeners, registeredListener{val: val, stmt: stmt, listener: l})
	a.mu.Unlock()

	for _, n := range a.solver.order {
		if n.val != val.Value {
			continue
		}
		if n.stack == nil {
			l.OnReachesEnd(stmt)
			continue
		}
		for f := n.stack; f != nil; f = f.parent {
			l.OnEscapeToCaller(f.site)
		}
	}
}

// NumListeners returns the number of listeners registered
func (a *callAutomaton) NumListeners() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.listeners)
}
