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
	"errors"
	"sync"
	"time"

	"github.com/awslabs/ar-go-alias/analysis/config"
	"github.com/awslabs/ar-go-alias/analysis/dataflow"
	"github.com/awslabs/ar-go-alias/analysis/lang"
	"github.com/awslabs/ar-go-alias/analysis/pds"
	"golang.org/x/tools/go/ssa"
)

// ContextSensitive computes aliases with on-demand queries restricted to the calling contexts explored by the taint
// analysis. The aliases that escape into callers are cached at call sites and reused when the taint analysis
// returns from those calls.
type ContextSensitive struct {
	mu         sync.RWMutex
	engine     pds.Engine
	tracker    *ContextTracker
	cache      *CallSiteCache
	translator *Translator
	logger     *config.LogGroup
	metrics    *Metrics
}

// NewContextSensitive returns the context-sensitive strategy using engine. Call sites in functions of the
// alias-ignore list of cfg are never explored as calling contexts.
func NewContextSensitive(engine pds.Engine, factory *dataflow.AccessPathFactory, cfg *config.Config,
	logger *config.LogGroup, metrics *Metrics) *ContextSensitive {
	return &ContextSensitive{
		engine:     engine,
		tracker:    NewContextTracker(ignoredFunctions(cfg)),
		cache:      NewCallSiteCache(),
		translator: NewTranslator(factory),
		logger:     logger,
		metrics:    metrics,
	}
}

func ignoredFunctions(cfg *config.Config) func(*ssa.Function) bool {
	if cfg == nil || len(cfg.AliasIgnore) == 0 {
		return nil
	}
	return func(f *ssa.Function) bool {
		return cfg.IsAliasIgnored(lang.FunctionIdentifier(f))
	}
}

// Tracker returns the calling contexts recorded by the strategy
func (s *ContextSensitive) Tracker() *ContextTracker {
	return s.tracker
}

// Cache returns the call-site cache of the strategy
func (s *ContextSensitive) Cache() *CallSiteCache {
	return s.cache
}

// ComputeAliasTaints returns the aliases of the base of newAbs at stmt. At a call, the aliases are the ones cached
// at the call site by earlier queries. At a field write, a new query is issued.
func (s *ContextSensitive) ComputeAliasTaints(d1 *dataflow.Abstraction, stmt lang.Statement, _ ssa.Value,
	method *ssa.Function, newAbs *dataflow.Abstraction) []*dataflow.Abstraction {
	engine := s.currentEngine()
	if engine == nil {
		s.logger.Warnf("Alias query at %s after cleanup\n", stmt)
		return nil
	}
	ap := newAbs.AccessPath()
	if ap == nil || ap.Base() == nil {
		s.logger.Debugf("No base to query for %s at %s\n", newAbs, stmt)
		return nil
	}
	if stmt.Method == nil {
		stmt.Method = method
	}
	base := pds.NewVal(ap.Base(), stmt.Method)
	if stmt.IsCall() {
		return s.handleReturn(engine, stmt, newAbs)
	}
	return s.handleFieldWrite(engine, d1, stmt, base, newAbs)
}

func (s *ContextSensitive) handleReturn(engine pds.Engine, stmt lang.Statement,
	newAbs *dataflow.Abstraction) []*dataflow.Abstraction {
	start := time.Now()
	defer func() { s.metrics.addQueryTime(time.Since(start)) }()

	var res []*dataflow.Abstraction
	for _, entry := range s.cache.Get(stmt) {
		solver, ok := engine.Solver(entry.alloc)
		if !ok {
			continue
		}
		s.metrics.addCacheHit()
		for _, alias := range solver.AliasesAt(stmt) {
			if solver.ValueUsedInStatement(stmt, alias.Base()) {
				continue
			}
			res = s.appendTranslated(res, alias, stmt, entry.abs)
		}
	}
	s.logger.Tracef("%d aliases of %s on return at %s\n", len(res), newAbs, stmt)
	return res
}

func (s *ContextSensitive) handleFieldWrite(engine pds.Engine, d1 *dataflow.Abstraction, stmt lang.Statement,
	base pds.Val, newAbs *dataflow.Abstraction) []*dataflow.Abstraction {
	q := pds.NewBackwardQuery(stmt, base)
	s.metrics.addQuery()
	start := time.Now()
	results, err := engine.BackwardSolve(q, newTaintContextRequester(d1, s.tracker))
	if err != nil {
		s.metrics.addQueryTime(time.Since(start))
		s.logger.Debugf("Alias query %s failed: %v\n", q, err)
		return nil
	}
	if results.TimedOut() {
		s.metrics.addTimeout()
	}
	for alloc := range results.AllocationSites() {
		solver, ok := engine.Solver(alloc)
		if !ok {
			continue
		}
		solver.CallAutomaton().RegisterListener(base, stmt,
			&escapeListener{cache: s.cache, solver: solver, alloc: alloc, abs: newAbs})
	}
	s.metrics.addQueryTime(time.Since(start))

	var res []*dataflow.Abstraction
	for _, alias := range results.AllAliases() {
		if alias.Base().Value == base.Value {
			continue
		}
		res = s.appendTranslated(res, alias, stmt, newAbs)
	}
	s.logger.Tracef("%d aliases of %s at %s\n", len(res), newAbs, stmt)
	return res
}

func (s *ContextSensitive) appendTranslated(res []*dataflow.Abstraction, alias pds.AccessPath, stmt lang.Statement,
	orig *dataflow.Abstraction) []*dataflow.Abstraction {
	return appendTranslated(res, s.translator, s.metrics, s.logger, alias, stmt, orig)
}

func appendTranslated(res []*dataflow.Abstraction, t *Translator, metrics *Metrics, logger *config.LogGroup,
	alias pds.AccessPath, stmt lang.Statement, orig *dataflow.Abstraction) []*dataflow.Abstraction {
	abs, err := t.Translate(alias, stmt, orig)
	if err != nil {
		metrics.addUntranslatable()
		if errors.Is(err, ErrOverApproximated) {
			logger.Tracef("Dropping over-approximated alias %s\n", alias)
		} else {
			logger.Debugf("Could not translate alias %s: %v\n", alias, err)
		}
		return res
	}
	return append(res, abs)
}

// InjectCallingContext records the calling context of d3 in callee
func (s *ContextSensitive) InjectCallingContext(d3 *dataflow.Abstraction, callee *ssa.Function,
	callSite lang.Statement, _ *dataflow.Abstraction, d1 *dataflow.Abstraction) {
	s.tracker.RecordEdge(callee, d3, callSite, d1)
}

// IsFlowSensitive returns true
func (s *ContextSensitive) IsFlowSensitive() bool {
	return true
}

// RequiresAnalysisOnReturn returns true: aliases escaping into callers are found when returning from calls
func (s *ContextSensitive) RequiresAnalysisOnReturn() bool {
	return true
}

// Metrics returns the counters of the strategy
func (s *ContextSensitive) Metrics() *Metrics {
	return s.metrics
}

// Cleanup drops the calling contexts, the cache and the engine. Queries issued afterwards return no alias.
func (s *ContextSensitive) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Clear()
	s.cache.Clear()
	s.engine = nil
}

func (s *ContextSensitive) currentEngine() pds.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}
