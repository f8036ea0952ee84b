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

	"github.com/awslabs/ar-go-alias/analysis/lang"
)

// A BackwardQuery asks for the aliases of Var at Stmt. The aliases are whole values: the fields tracked from Var by
// the caller are appended when the aliases are translated back.
type BackwardQuery struct {
	Stmt lang.Statement
	Var  Val
}

// NewBackwardQuery returns the query for the aliases of v at stmt
func NewBackwardQuery(stmt lang.Statement, v Val) BackwardQuery {
	return BackwardQuery{Stmt: stmt, Var: v}
}

func (q BackwardQuery) String() string {
	return fmt.Sprintf("BackwardQuery(%s @ %s)", q.Var, q.Stmt)
}

// A ForwardQuery identifies an allocation site: the value Var allocated at Stmt.
type ForwardQuery struct {
	Stmt lang.Statement
	Var  Val
}

func (q ForwardQuery) String() string {
	return fmt.Sprintf("ForwardQuery(%s @ %s)", q.Var, q.Stmt)
}

// id returns a string that identifies the query
func (q ForwardQuery) id() string {
	return fmt.Sprintf("%p|%p|%p", q.Var.Value, q.Var.Method, q.Stmt.Instr)
}

// A Context is a calling context of the engine, attached to a statement. Contexts are used as map keys and must be
// comparable.
type Context interface {
	Stmt() lang.Statement
}

// A ContextRequester decides which calling contexts the engine explores.
type ContextRequester interface {
	// InitialContext returns the context in which the query at stmt starts
	InitialContext(stmt lang.Statement) Context

	// CallerContextsOf returns the contexts of the call sites from which the function of the context may have been
	// called. Each returned context must be attached to a call statement.
	CallerContextsOf(c Context) []Context
}

// A StackListener is notified of the stacks of return sites with which a value is reached by an allocation solver.
type StackListener interface {
	// OnEscapeToCaller is called for every return site on a stack the value is reached with. The value is visible
	// in the caller of frame once the callee returns.
	OnEscapeToCaller(frame lang.Statement)

	// OnReachesEnd is called when the value is reached with an empty stack
	OnReachesEnd(stmt lang.Statement)
}

// A CallAutomaton records the stacks of the values reached by an allocation solver.
type CallAutomaton interface {
	// RegisterListener registers l on the stacks of val. Stacks already reached are replayed to l before
	// RegisterListener returns.
	RegisterListener(val Val, stmt lang.Statement, l StackListener)
}

// An AllocationSolver is the state of the forward analysis of an allocation site.
type AllocationSolver interface {
	// Query returns the allocation site
	Query() ForwardQuery

	// CallAutomaton returns the automaton of the stacks reached by the solver
	CallAutomaton() CallAutomaton

	// PredsOf returns the predecessors of stmt
	PredsOf(stmt lang.Statement) []lang.Statement

	// ValueUsedInStatement returns true if the value of v is used or defined by stmt
	ValueUsedInStatement(stmt lang.Statement, v Val) bool

	// AliasesAt returns the aliases of the allocation that are visible in the function of stmt
	AliasesAt(stmt lang.Statement) []AccessPath

	// TimedOut returns true if the solver ran out of time before reaching a fixpoint
	TimedOut() bool
}

// An Engine answers backward queries
type Engine interface {
	// BackwardSolve computes the aliases of q in the contexts allowed by req
	BackwardSolve(q BackwardQuery, req ContextRequester) (*BackwardResults, error)

	// Solver returns the solver of an allocation site, if it has been computed
	Solver(q ForwardQuery) (AllocationSolver, bool)
}
