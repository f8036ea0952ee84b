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
	"sync"

	"github.com/awslabs/ar-go-alias/analysis/aliasing"
	"github.com/awslabs/ar-go-alias/analysis/config"
	"github.com/awslabs/ar-go-alias/analysis/dataflow"
	"github.com/awslabs/ar-go-alias/analysis/lang"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
)

// A pathEdge states that the fact d2 holds before stmt when d1 holds at the entry of the function of stmt.
type pathEdge struct {
	d1   *dataflow.Abstraction
	stmt lang.Statement
	d2   *dataflow.Abstraction
}

type edgeKey struct {
	d1    dataflow.AbstractionKey
	instr ssa.Instruction
	d2    dataflow.AbstractionKey
}

// entryKey identifies a fact at the entry of a function
type entryKey struct {
	fn *ssa.Function
	d  dataflow.AbstractionKey
}

// incomingEdge is a call site through which a fact entered a function. d1 holds at the entry of the caller and d2
// at the call site.
type incomingEdge struct {
	callSite lang.Statement
	d1       *dataflow.Abstraction
	d2       *dataflow.Abstraction
}

type incomingKey struct {
	instr ssa.Instruction
	d1    dataflow.AbstractionKey
	d2    dataflow.AbstractionKey
}

// exitFact is a fact that holds at an exit of a function
type exitFact struct {
	exit lang.Statement
	d4   *dataflow.Abstraction
}

// Solver solves one taint tracking problem.
type Solver struct {
	spec    *config.TaintSpec
	config  *config.Config
	logger  *config.LogGroup
	cg      *callgraph.Graph
	factory *dataflow.AccessPathFactory
	aliases aliasing.Strategy
	zero    *dataflow.Abstraction

	mu        sync.Mutex
	seen      map[edgeKey]bool
	facts     map[dataflow.AbstractionKey]*dataflow.Abstraction
	incoming  map[entryKey]map[incomingKey]incomingEdge
	summaries map[entryKey][]exitFact
	flows     *Flows

	work *worklist
}

// NewSolver returns a solver of the taint tracking problem spec. Callees are resolved with cg and the aliases of
// tainted values are computed by the strategy aliases.
func NewSolver(cfg *config.Config, spec *config.TaintSpec, logger *config.LogGroup, cg *callgraph.Graph,
	factory *dataflow.AccessPathFactory, aliases aliasing.Strategy) *Solver {
	return &Solver{
		spec:      spec,
		config:    cfg,
		logger:    logger,
		cg:        cg,
		factory:   factory,
		aliases:   aliases,
		zero:      dataflow.ZeroAbstraction(),
		seen:      map[edgeKey]bool{},
		facts:     map[dataflow.AbstractionKey]*dataflow.Abstraction{},
		incoming:  map[entryKey]map[incomingKey]incomingEdge{},
		summaries: map[entryKey][]exitFact{},
		flows:     NewFlows(),
		work:      newWorklist(),
	}
}

// Solve propagates the facts from the entry points until a fixpoint is reached, with numWorkers workers, and
// returns the flows from sources to sinks.
func (s *Solver) Solve(entries []*ssa.Function, numWorkers int) *Flows {
	for _, f := range entries {
		if entry := lang.EntryStatement(f); entry.IsValid() {
			s.propagate(s.zero, entry, s.zero)
		}
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	var g errgroup.Group
	for i := 0; i < numWorkers; i++ {
		g.Go(func() error {
			for {
				e, ok := s.work.pop()
				if !ok {
					return nil
				}
				s.process(e)
				s.work.done()
			}
		})
	}
	g.Wait() // workers never return errors
	s.logger.Debugf("Taint solver done: %d path edges, %d facts\n", s.NumPathEdges(), s.NumFacts())
	return s.flows
}

// NumPathEdges returns the number of path edges computed
func (s *Solver) NumPathEdges() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// NumFacts returns the number of distinct facts computed
func (s *Solver) NumFacts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.facts)
}

// intern returns the canonical abstraction equal to d. Must be called with s.mu held.
func (s *Solver) intern(d *dataflow.Abstraction) *dataflow.Abstraction {
	k := d.Key()
	if existing, ok := s.facts[k]; ok {
		return existing
	}
	s.facts[k] = d
	return d
}

func (s *Solver) propagate(d1 *dataflow.Abstraction, stmt lang.Statement, d2 *dataflow.Abstraction) {
	if d2 == nil || !stmt.IsValid() {
		return
	}
	s.mu.Lock()
	d2 = s.intern(d2)
	k := edgeKey{d1: d1.Key(), instr: stmt.Instr, d2: d2.Key()}
	if s.seen[k] {
		s.mu.Unlock()
		return
	}
	s.seen[k] = true
	s.mu.Unlock()
	s.logger.Tracef("%s: %s\n", stmt, d2)
	s.work.push(pathEdge{d1: d1, stmt: stmt, d2: d2})
}

func (s *Solver) propagateAll(d1 *dataflow.Abstraction, stmts []lang.Statement, facts []*dataflow.Abstraction) {
	for _, stmt := range stmts {
		for _, d := range facts {
			s.propagate(d1, stmt, d)
		}
	}
}

func (s *Solver) process(e pathEdge) {
	switch instr := e.stmt.Instr.(type) {
	case ssa.CallInstruction:
		s.processCall(e, instr)
	case *ssa.Return, *ssa.Panic:
		s.processExit(e)
	default:
		s.propagateAll(e.d1, lang.Succs(e.stmt), s.normalFlow(e.d1, e.stmt, e.d2))
	}
}

func (s *Solver) processCall(e pathEdge, call ssa.CallInstruction) {
	d1, stmt, d2 := e.d1, e.stmt, e.d2
	returnSites := lang.Succs(stmt)
	// facts that hold after the call, without entering the callee
	out := []*dataflow.Abstraction{d2}

	value, hasValue := call.(*ssa.Call)
	if d2.IsZero() {
		if hasValue && isSourceCall(s.spec, call) {
			ap := s.factory.New(value, nil, nil, nil, true, dataflow.ArrayTaintContents)
			out = append(out, dataflow.NewSourceAbstraction(ap, call))
		}
	} else if d2.IsActive() && isArgument(call.Common(), d2) && isSinkCall(s.spec, call) {
		s.mu.Lock()
		isNew := s.flows.addNewFlow(d2.Source(), call)
		s.mu.Unlock()
		if isNew {
			s.logger.Infof("Taint flow from %s to %s\n", lang.FmtInstr(d2.Source()), lang.FmtInstr(call))
		}
	}
	if isSanitizerCall(s.spec, call) {
		s.propagateAll(d1, returnSites, out)
		return
	}

	analyzed := false
	for _, callee := range s.callees(stmt, call) {
		if !s.shouldAnalyze(callee) {
			continue
		}
		analyzed = true
		for _, d3 := range s.callFlow(call.Common(), callee, stmt, d2) {
			s.enterCallee(stmt, d1, d2, callee, d3)
		}
	}
	if !analyzed && hasValue && !d2.IsZero() && isArgument(call.Common(), d2) {
		// the result of a function that is not analyzed is tainted by its arguments
		out = append(out, d2.DeriveNewAbstraction(
			s.factory.New(value, nil, nil, nil, true, dataflow.ArrayTaintContents), stmt))
	}
	s.propagateAll(d1, returnSites, out)
}

// enterCallee starts the analysis of callee with the fact d3 at its entry, called from callSite where d2 holds
func (s *Solver) enterCallee(callSite lang.Statement, d1 *dataflow.Abstraction, d2 *dataflow.Abstraction,
	callee *ssa.Function, d3 *dataflow.Abstraction) {
	entry := lang.EntryStatement(callee)
	if !entry.IsValid() {
		return
	}
	s.mu.Lock()
	d3 = s.intern(d3)
	k := entryKey{fn: callee, d: d3.Key()}
	if s.incoming[k] == nil {
		s.incoming[k] = map[incomingKey]incomingEdge{}
	}
	ik := incomingKey{instr: callSite.Instr, d1: d1.Key(), d2: d2.Key()}
	_, seen := s.incoming[k][ik]
	if !seen {
		s.incoming[k][ik] = incomingEdge{callSite: callSite, d1: d1, d2: d2}
	}
	summaries := append([]exitFact(nil), s.summaries[k]...)
	s.mu.Unlock()

	if !seen {
		s.aliases.InjectCallingContext(d3, callee, callSite, d2, d1)
	}
	s.propagate(d3, entry, d3)
	for _, sum := range summaries {
		s.returnFlow(callSite, d1, callee, sum.exit, sum.d4)
	}
}

func (s *Solver) processExit(e pathEdge) {
	if e.d2.IsZero() {
		return
	}
	k := entryKey{fn: e.stmt.Method, d: e.d1.Key()}
	s.mu.Lock()
	s.summaries[k] = append(s.summaries[k], exitFact{exit: e.stmt, d4: e.d2})
	callers := make([]incomingEdge, 0, len(s.incoming[k]))
	for _, c := range s.incoming[k] {
		callers = append(callers, c)
	}
	s.mu.Unlock()

	for _, c := range callers {
		s.returnFlow(c.callSite, c.d1, e.stmt.Method, e.stmt, e.d2)
	}
}

// returnFlow propagates the fact d4 at the exit of callee to the return sites of callSite. When the alias strategy
// requires it, the aliases of the returned facts in the caller are propagated too.
func (s *Solver) returnFlow(callSite lang.Statement, d1 *dataflow.Abstraction, callee *ssa.Function,
	exit lang.Statement, d4 *dataflow.Abstraction) {
	call, ok := callSite.Instr.(ssa.CallInstruction)
	if !ok {
		return
	}
	returned := s.returnedFacts(call, callSite, callee, exit, d4)
	returnSites := lang.Succs(callSite)
	for _, d := range returned {
		facts := []*dataflow.Abstraction{d}
		ap := d.AccessPath()
		if s.aliases.RequiresAnalysisOnReturn() && ap.Base() != nil &&
			(ap.FieldCount() > 0 || isReference(ap.Base().Type())) {
			facts = append(facts, s.aliases.ComputeAliasTaints(d1, callSite, ap.Base(), callSite.Method, d)...)
		}
		s.propagateAll(d1, returnSites, facts)
	}
}

// callees returns the functions that may be called by call
func (s *Solver) callees(stmt lang.Statement, call ssa.CallInstruction) []*ssa.Function {
	if f := call.Common().StaticCallee(); f != nil {
		return []*ssa.Function{f}
	}
	node := s.cg.Nodes[stmt.Method]
	if node == nil {
		return nil
	}
	var res []*ssa.Function
	for _, out := range node.Out {
		if out.Site == call && out.Callee != nil && out.Callee.Func != nil {
			res = append(res, out.Callee.Func)
		}
	}
	return res
}

// shouldAnalyze returns true if the body of f is analyzed. Other functions taint their result with their arguments.
func (s *Solver) shouldAnalyze(f *ssa.Function) bool {
	if lang.IsExternal(f) {
		return false
	}
	return s.config.PkgFilter == "" || s.config.MatchPkgFilter(lang.PackageNameFromFunction(f))
}
