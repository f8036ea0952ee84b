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

package aliasing

import (
	"go/types"
	"sync"
	"testing"

	"github.com/awslabs/ar-go-alias/analysis/config"
	"github.com/awslabs/ar-go-alias/analysis/dataflow"
	"github.com/awslabs/ar-go-alias/analysis/lang"
	"github.com/awslabs/ar-go-alias/analysis/pds"
	"github.com/awslabs/ar-go-alias/internal/analysistest"
	"golang.org/x/tools/go/ssa"
)

// stubSolver is an allocation solver with fixed results
type stubSolver struct {
	query   pds.ForwardQuery
	escapes []lang.Statement
	aliases []pds.AccessPath
}

func (s *stubSolver) Query() pds.ForwardQuery                    { return s.query }
func (s *stubSolver) CallAutomaton() pds.CallAutomaton           { return s }
func (s *stubSolver) PredsOf(st lang.Statement) []lang.Statement { return lang.Preds(st) }
func (s *stubSolver) AliasesAt(lang.Statement) []pds.AccessPath  { return s.aliases }
func (s *stubSolver) TimedOut() bool                             { return false }

func (s *stubSolver) ValueUsedInStatement(st lang.Statement, v pds.Val) bool {
	return st.UsesValue(v.Value)
}

func (s *stubSolver) RegisterListener(_ pds.Val, _ lang.Statement, l pds.StackListener) {
	for _, frame := range s.escapes {
		l.OnEscapeToCaller(frame)
	}
}

// stubEngine answers every backward query with the same aliases and allocation sites, and counts the queries
type stubEngine struct {
	mu       sync.Mutex
	queries  []pds.BackwardQuery
	timedOut bool
	aliases  []pds.AccessPath
	solvers  []*stubSolver
	explore  bool
	callers  int
}

func (e *stubEngine) BackwardSolve(q pds.BackwardQuery, req pds.ContextRequester) (*pds.BackwardResults, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queries = append(e.queries, q)
	ctx := req.InitialContext(q.Stmt)
	if e.explore {
		e.callers += len(req.CallerContextsOf(ctx))
	}
	sites := map[pds.ForwardQuery]pds.Context{}
	for _, s := range e.solvers {
		sites[s.query] = ctx
	}
	return pds.NewBackwardResults(q, e.timedOut, e.aliases, sites), nil
}

func (e *stubEngine) Solver(q pds.ForwardQuery) (pds.AllocationSolver, bool) {
	for _, s := range e.solvers {
		if s.query == q {
			return s, true
		}
	}
	return nil, false
}

func (e *stubEngine) numQueries() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queries)
}

// countingEngine counts the queries forwarded to an engine
type countingEngine struct {
	pds.Engine
	mu      sync.Mutex
	queries int
}

func (e *countingEngine) BackwardSolve(q pds.BackwardQuery, req pds.ContextRequester) (*pds.BackwardResults,
	error) {
	e.mu.Lock()
	e.queries++
	e.mu.Unlock()
	return e.Engine.BackwardSolve(q, req)
}

type bridgeProgram struct {
	prog    *ssa.Program
	pkg     *ssa.Package
	factory *dataflow.AccessPathFactory
	logger  *config.LogGroup
	fieldF  *types.Var
	fieldG  *types.Var
}

func loadBridge(t *testing.T) *bridgeProgram {
	prog, pkg, cfg := analysistest.LoadTest(t, "testdata/bridge")
	tType := pkg.Pkg.Scope().Lookup("T").Type()
	return &bridgeProgram{
		prog:    prog,
		pkg:     pkg,
		factory: dataflow.NewAccessPathFactory(cfg.AccessPathLength),
		logger:  config.NewLogGroup(cfg),
		fieldF:  lang.FieldVar(tType, 0),
		fieldG:  lang.FieldVar(tType, 1),
	}
}

// fieldWrite returns the first store into field f of fn, and the abstraction tainting base.f
func (b *bridgeProgram) fieldWrite(t *testing.T, fn string, f *types.Var) (lang.Statement, *dataflow.Abstraction) {
	t.Helper()
	store := analysistest.FindInstr(t, analysistest.Function(t, b.pkg, fn),
		analysistest.IsStoreToField(f.Name())).(*ssa.Store)
	stmt := lang.NewStatement(store)
	base := store.Addr.(*ssa.FieldAddr).X
	ap := b.factory.New(base, nil, []*types.Var{f}, nil, false, dataflow.ArrayTaintContents)
	return stmt, dataflow.NewSourceAbstraction(ap, store)
}

func (b *bridgeProgram) call(t *testing.T, fn string, callee string) lang.Statement {
	t.Helper()
	return lang.NewStatement(analysistest.FindInstr(t, analysistest.Function(t, b.pkg, fn),
		analysistest.IsCallTo(callee)))
}

func (b *bridgeProgram) strategy(engine pds.Engine) *ContextSensitive {
	return NewContextSensitive(engine, b.factory, config.NewDefault(), b.logger, NewMetrics())
}

// hasAbstraction returns the abstraction of res rooted at base with the fields given
func hasAbstraction(res []*dataflow.Abstraction, base ssa.Value, fields ...*types.Var) (*dataflow.Abstraction,
	bool) {
	for _, abs := range res {
		ap := abs.AccessPath()
		if ap == nil || ap.Base() != base || ap.FieldCount() != len(fields) {
			continue
		}
		match := true
		for i, f := range ap.Fields() {
			if f != fields[i] {
				match = false
			}
		}
		if match {
			return abs, true
		}
	}
	return nil, false
}
