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
	"sync"
	"time"

	"github.com/awslabs/ar-go-alias/analysis/config"
	"github.com/awslabs/ar-go-alias/analysis/dataflow"
	"github.com/awslabs/ar-go-alias/analysis/lang"
	"github.com/awslabs/ar-go-alias/analysis/pds"
	"golang.org/x/tools/go/pointer"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// FlowInsensitive computes aliases with a whole-program points-to analysis. The aliases of a value are the values of
// the same function that may point to the same objects, at any point of the function.
type FlowInsensitive struct {
	prog       *ssa.Program
	mains      []*ssa.Package
	translator *Translator
	logger     *config.LogGroup
	metrics    *Metrics

	mu      sync.RWMutex
	once    sync.Once
	result  *pointer.Result
	err     error
	cleaned bool
}

// NewFlowInsensitive returns the flow-insensitive strategy for prog. The points-to analysis runs on the first query.
// Returns an error if prog has no main package.
func NewFlowInsensitive(prog *ssa.Program, factory *dataflow.AccessPathFactory, logger *config.LogGroup,
	metrics *Metrics) (*FlowInsensitive, error) {
	mains := ssautil.MainPackages(prog.AllPackages())
	if len(mains) == 0 {
		return nil, fmt.Errorf("no main package for the points-to analysis")
	}
	return &FlowInsensitive{
		prog:       prog,
		mains:      mains,
		translator: NewTranslator(factory),
		logger:     logger,
		metrics:    metrics,
	}, nil
}

func (s *FlowInsensitive) pointsTo() (*pointer.Result, error) {
	s.once.Do(func() {
		start := time.Now()
		cfg := &pointer.Config{Mains: s.mains}
		for f := range ssautil.AllFunctions(s.prog) {
			lang.AddPointerQueries(cfg, f)
		}
		s.result, s.err = pointer.Analyze(cfg)
		if s.err != nil {
			s.err = fmt.Errorf("points-to analysis failed: %w", s.err)
		}
		s.logger.Infof("Points-to analysis done in %s\n", time.Since(start))
	})
	return s.result, s.err
}

// ComputeAliasTaints returns the values of method that may alias the base of newAbs
func (s *FlowInsensitive) ComputeAliasTaints(_ *dataflow.Abstraction, stmt lang.Statement, _ ssa.Value,
	method *ssa.Function, newAbs *dataflow.Abstraction) []*dataflow.Abstraction {
	ap := newAbs.AccessPath()
	if ap == nil || ap.Base() == nil || stmt.IsCall() || method == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cleaned {
		s.logger.Warnf("Alias query at %s after cleanup\n", stmt)
		return nil
	}
	s.metrics.addQuery()
	start := time.Now()
	defer func() { s.metrics.addQueryTime(time.Since(start)) }()
	res, err := s.pointsTo()
	if err != nil {
		s.logger.Errorf("%v\n", err)
		return nil
	}
	base := ap.Base()
	if !pointer.CanPoint(base.Type()) {
		return nil
	}
	var aliases []*dataflow.Abstraction
	lang.IterateValues(method, func(v ssa.Value) {
		if v == base || !lang.MayAlias(res, base, v) {
			return
		}
		alias := pds.NewAccessPath(pds.NewVal(v, method))
		aliases = appendTranslated(aliases, s.translator, s.metrics, s.logger, alias, stmt, newAbs)
	})
	return aliases
}

// InjectCallingContext does nothing
func (s *FlowInsensitive) InjectCallingContext(*dataflow.Abstraction, *ssa.Function, lang.Statement,
	*dataflow.Abstraction, *dataflow.Abstraction) {
}

// IsFlowSensitive returns false
func (s *FlowInsensitive) IsFlowSensitive() bool {
	return false
}

// RequiresAnalysisOnReturn returns false
func (s *FlowInsensitive) RequiresAnalysisOnReturn() bool {
	return false
}

// Metrics returns the counters of the strategy
func (s *FlowInsensitive) Metrics() *Metrics {
	return s.metrics
}

// Cleanup drops the points-to analysis result. Later queries return no alias.
func (s *FlowInsensitive) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleaned = true
	s.result = nil
}
