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
	"fmt"
	"sync"
	"time"

	"github.com/awslabs/ar-go-alias/analysis/config"
	"golang.org/x/sync/singleflight"
	"golang.org/x/tools/go/ssa"
)

// Options are the budgets of the engine
type Options struct {
	// Timeout is the time budget of a query, and of the forward analysis of each allocation site
	Timeout time.Duration

	// MaxDepth bounds the number of calls the engine follows, in both directions
	MaxDepth int

	// AccessPathLength bounds the number of fields of the aliases. Longer aliases are over-approximated.
	AccessPathLength int
}

// OptionsFromConfig returns the engine options set in the config
func OptionsFromConfig(c *config.Config) Options {
	return Options{
		Timeout:          time.Duration(c.AliasTimeoutMs) * time.Millisecond,
		MaxDepth:         c.MaxDepth,
		AccessPathLength: c.AccessPathLength,
	}
}

// DemandEngine is the demand-driven alias engine. It is safe for concurrent use: allocation solvers are created once
// and then only read.
type DemandEngine struct {
	prog   *ssa.Program
	opts   Options
	logger *config.LogGroup

	indexOnce sync.Once
	index     *programIndex

	group   singleflight.Group
	mu      sync.RWMutex
	solvers map[ForwardQuery]*allocationSolver
}

// NewEngine returns an engine for the program. Budgets that are not positive are set to their defaults.
func NewEngine(prog *ssa.Program, opts Options, logger *config.LogGroup) *DemandEngine {
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultAliasTimeoutMs * time.Millisecond
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = config.DefaultMaxCallDepth
	}
	if opts.AccessPathLength <= 0 {
		opts.AccessPathLength = config.DefaultAccessPathLength
	}
	if logger == nil {
		logger = config.NewLogGroup(config.NewDefault())
	}
	return &DemandEngine{
		prog:    prog,
		opts:    opts,
		logger:  logger,
		solvers: map[ForwardQuery]*allocationSolver{},
	}
}

// Options returns the options of the engine
func (e *DemandEngine) Options() Options {
	return e.opts
}

func (e *DemandEngine) programIndex() *programIndex {
	e.indexOnce.Do(func() {
		e.index = newProgramIndex(e.prog)
	})
	return e.index
}

// BackwardSolve finds the allocation sites of the query variable, solves each of them forward and returns the aliases
// visible in the function of the query. The query runs until its time budget expires, in which case the results
// are partial and marked as timed out.
func (e *DemandEngine) BackwardSolve(q BackwardQuery, req ContextRequester) (*BackwardResults, error) {
	if q.Var.Value == nil {
		return nil, fmt.Errorf("invalid query %s: no variable", q)
	}
	if req == nil {
		return nil, fmt.Errorf("invalid query %s: no context requester", q)
	}
	deadline := time.Now().Add(e.opts.Timeout)
	e.logger.Tracef("Solving %s\n", q)

	sites, timedOut := e.findAllocationSites(q, req, deadline)
	aliases := newAliasSet()
	for fq, ctx := range sites {
		if time.Now().After(deadline) {
			timedOut = true
			break
		}
		s := e.solve(fq, ctx, req, deadline)
		if s.TimedOut() {
			timedOut = true
		}
		aliases.addAll(s.aliasesIn(q.Stmt.Method))
	}
	if time.Now().After(deadline) {
		timedOut = true
	}
	if timedOut {
		e.logger.Debugf("Query %s timed out after %s\n", q, e.opts.Timeout)
	}
	return NewBackwardResults(q, timedOut, aliases.list(), sites), nil
}

// Solver returns the solver of the allocation site, if some query has found it.
func (e *DemandEngine) Solver(q ForwardQuery) (AllocationSolver, bool) {
	s, ok := e.lookup(q)
	if !ok {
		return nil, false
	}
	return s, true
}

// NumSolvers returns the number of allocation sites solved so far
func (e *DemandEngine) NumSolvers() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.solvers)
}

func (e *DemandEngine) lookup(q ForwardQuery) (*allocationSolver, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.solvers[q]
	return s, ok
}

// solve returns the solver of the allocation site, computing it if needed before the deadline of the query.
// Concurrent calls for the same allocation site compute it once.
func (e *DemandEngine) solve(q ForwardQuery, ctx Context, req ContextRequester, deadline time.Time) *allocationSolver {
	if s, ok := e.lookup(q); ok {
		return s
	}
	v, _, _ := e.group.Do(q.id(), func() (any, error) {
		if s, ok := e.lookup(q); ok {
			return s, nil
		}
		s := newAllocationSolver(e, q, ctx)
		start := time.Now()
		if budget := start.Add(e.opts.Timeout); budget.Before(deadline) {
			deadline = budget
		}
		s.solve(req, deadline)
		e.logger.Tracef("Solved %s in %s (%d aliases)\n", q, time.Since(start), len(s.aliases.order))
		e.mu.Lock()
		e.solvers[q] = s
		e.mu.Unlock()
		return s, nil
	})
	return v.(*allocationSolver)
}

// aliasSet is a set of access paths that remembers insertion order
type aliasSet struct {
	keys  map[accessPathKey]bool
	order []AccessPath
}

func newAliasSet() *aliasSet {
	return &aliasSet{keys: map[accessPathKey]bool{}}
}

func (s *aliasSet) add(ap AccessPath) bool {
	k := ap.key()
	if s.keys[k] {
		return false
	}
	s.keys[k] = true
	s.order = append(s.order, ap)
	return true
}

func (s *aliasSet) addAll(aps []AccessPath) {
	for _, ap := range aps {
		s.add(ap)
	}
}

func (s *aliasSet) list() []AccessPath {
	return s.order
}
