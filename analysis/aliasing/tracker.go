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

	"github.com/awslabs/ar-go-alias/analysis/dataflow"
	"github.com/awslabs/ar-go-alias/analysis/lang"
	"github.com/awslabs/ar-go-alias/internal/concurrent"
	"golang.org/x/tools/go/ssa"
)

// A CallerContext is a call site with the fact at the entry of the caller.
type CallerContext struct {
	CallSite   lang.Statement
	CallerFact *dataflow.Abstraction
}

type incomingKey struct {
	callee *ssa.Function
	fact   dataflow.AbstractionKey
}

// ContextTracker records the calling contexts of the facts at the entry of functions, as explored by the taint
// analysis.
type ContextTracker struct {
	incoming *concurrent.SetMultimap[incomingKey, CallerContext]
	ignored  func(*ssa.Function) bool
}

// NewContextTracker returns an empty tracker. Call sites in functions for which ignored returns true are never
// returned as contexts.
func NewContextTracker(ignored func(*ssa.Function) bool) *ContextTracker {
	if ignored == nil {
		ignored = func(*ssa.Function) bool { return false }
	}
	return &ContextTracker{
		incoming: concurrent.NewSetMultimap[incomingKey, CallerContext](
			concurrent.StringHash(func(k incomingKey) string { return fmt.Sprintf("%p", k.callee) })),
		ignored: ignored,
	}
}

// RecordEdge records that fact holds at the entry of callee when called from callSite with callerFact at the entry
// of the caller. Recording the same edge twice has no effect.
func (t *ContextTracker) RecordEdge(callee *ssa.Function, fact *dataflow.Abstraction, callSite lang.Statement,
	callerFact *dataflow.Abstraction) {
	if callee == nil || fact == nil {
		return
	}
	t.incoming.Put(incomingKey{callee: callee, fact: fact.Key()},
		CallerContext{CallSite: callSite, CallerFact: callerFact})
}

// ContextsOf returns the calling contexts recorded for fact at the entry of the function of stmt, except the ones in
// ignored functions.
func (t *ContextTracker) ContextsOf(stmt lang.Statement, fact *dataflow.Abstraction) []CallerContext {
	if stmt.Method == nil || fact == nil {
		return nil
	}
	var res []CallerContext
	for _, c := range t.incoming.Get(incomingKey{callee: stmt.Method, fact: fact.Key()}) {
		if c.CallSite.Method != nil && t.ignored(c.CallSite.Method) {
			continue
		}
		res = append(res, c)
	}
	return res
}

// Len returns the number of calling contexts recorded
func (t *ContextTracker) Len() int {
	return t.incoming.Len()
}

// Clear drops all the calling contexts
func (t *ContextTracker) Clear() {
	t.incoming.Clear()
}
