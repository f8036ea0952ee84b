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
	"fmt"
	"time"

	"github.com/awslabs/ar-go-alias/analysis/config"
	"github.com/awslabs/ar-go-alias/analysis/dataflow"
	"github.com/awslabs/ar-go-alias/analysis/lang"
	"github.com/awslabs/ar-go-alias/analysis/pds"
	"github.com/awslabs/ar-go-alias/internal/graphutil"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
)

// FlowSensitive computes aliases with on-demand queries that explore every caller in the call graph. The queries
// are not restricted to the contexts of the taint analysis.
type FlowSensitive struct {
	engine     pds.Engine
	requester  *staticRequester
	translator *Translator
	logger     *config.LogGroup
	metrics    *Metrics
}

// NewFlowSensitive returns the flow-sensitive strategy using engine. Callers are the functions of cg reachable from
// the entry points of the program.
func NewFlowSensitive(engine pds.Engine, cg *callgraph.Graph, factory *dataflow.AccessPathFactory,
	logger *config.LogGroup, metrics *Metrics) *FlowSensitive {
	return &FlowSensitive{
		engine:     engine,
		requester:  newStaticRequester(cg),
		translator: NewTranslator(factory),
		logger:     logger,
		metrics:    metrics,
	}
}

// ComputeAliasTaints returns the aliases of the base of newAbs at the field write stmt. Calls are ignored.
func (s *FlowSensitive) ComputeAliasTaints(_ *dataflow.Abstraction, stmt lang.Statement, _ ssa.Value,
	method *ssa.Function, newAbs *dataflow.Abstraction) []*dataflow.Abstraction {
	if s.engine == nil {
		s.logger.Warnf("Alias query at %s after cleanup\n", stmt)
		return nil
	}
	ap := newAbs.AccessPath()
	if ap == nil || ap.Base() == nil || stmt.IsCall() {
		return nil
	}
	if stmt.Method == nil {
		stmt.Method = method
	}
	base := pds.NewVal(ap.Base(), stmt.Method)
	q := pds.NewBackwardQuery(stmt, base)
	s.metrics.addQuery()
	start := time.Now()
	results, err := s.engine.BackwardSolve(q, s.requester)
	s.metrics.addQueryTime(time.Since(start))
	if err != nil {
		s.logger.Debugf("Alias query %s failed: %v\n", q, err)
		return nil
	}
	if results.TimedOut() {
		s.metrics.addTimeout()
	}
	var res []*dataflow.Abstraction
	for _, alias := range results.AllAliases() {
		if alias.Base().Value == base.Value {
			continue
		}
		res = appendTranslated(res, s.translator, s.metrics, s.logger, alias, stmt, newAbs)
	}
	return res
}

// InjectCallingContext does nothing: calling contexts come from the call graph
func (s *FlowSensitive) InjectCallingContext(*dataflow.Abstraction, *ssa.Function, lang.Statement,
	*dataflow.Abstraction, *dataflow.Abstraction) {
}

// IsFlowSensitive returns true
func (s *FlowSensitive) IsFlowSensitive() bool {
	return true
}

// RequiresAnalysisOnReturn returns false
func (s *FlowSensitive) RequiresAnalysisOnReturn() bool {
	return false
}

// Metrics returns the counters of the strategy
func (s *FlowSensitive) Metrics() *Metrics {
	return s.metrics
}

// Cleanup drops the engine
func (s *FlowSensitive) Cleanup() {
	s.engine = nil
}

// staticContext is a calling context that only records the statement
type staticContext struct {
	stmt lang.Statement
}

func (c staticContext) Stmt() lang.Statement {
	return c.stmt
}

func (c staticContext) String() string {
	return fmt.Sprintf("StaticContext[%s]", c.stmt)
}

// staticRequester returns the call sites of the call graph in functions reachable from the entry points.
type staticRequester struct {
	cg        *callgraph.Graph
	reachable map[*ssa.Function]bool
}

func newStaticRequester(cg *callgraph.Graph) *staticRequester {
	r := &staticRequester{cg: cg}
	if cg != nil {
		r.reachable = graphutil.Reachable(graphutil.NewCGraph(cg), graphutil.EntryPoints(cg))
	}
	return r
}

func (r *staticRequester) InitialContext(stmt lang.Statement) pds.Context {
	return staticContext{stmt: stmt}
}

func (r *staticRequester) CallerContextsOf(c pds.Context) []pds.Context {
	if r.cg == nil {
		return nil
	}
	node := r.cg.Nodes[c.Stmt().Method]
	if node == nil {
		return nil
	}
	var res []pds.Context
	for _, in := range node.In {
		if in.Site == nil || in.Caller == nil || !r.reachable[in.Caller.Func] {
			continue
		}
		res = append(res, staticContext{stmt: lang.NewStatement(in.Site)})
	}
	return res
}
