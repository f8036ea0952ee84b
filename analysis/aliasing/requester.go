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
	"github.com/awslabs/ar-go-alias/analysis/pds"
)

// taintContext is the calling context of a query: a statement with the fact at the entry of its function.
type taintContext struct {
	stmt lang.Statement
	d1   *dataflow.Abstraction
}

func (c taintContext) Stmt() lang.Statement {
	return c.stmt
}

func (c taintContext) String() string {
	return fmt.Sprintf("TaintContext[%s, %s]", c.stmt, c.d1)
}

// taintContextRequester restricts the callers explored by the engine to the calling contexts recorded by the
// tracker.
type taintContextRequester struct {
	d1      *dataflow.Abstraction
	tracker *ContextTracker
}

func newTaintContextRequester(d1 *dataflow.Abstraction, tracker *ContextTracker) *taintContextRequester {
	return &taintContextRequester{d1: d1, tracker: tracker}
}

func (r *taintContextRequester) InitialContext(stmt lang.Statement) pds.Context {
	return taintContext{stmt: stmt, d1: r.d1}
}

// CallerContextsOf returns the call sites the taint analysis has reached the function of c from, with the fact of
// c. It panics if c was not created by the requester.
func (r *taintContextRequester) CallerContextsOf(c pds.Context) []pds.Context {
	tc, ok := c.(taintContext)
	if !ok {
		panic(fmt.Sprintf("context %v of type %T is not a taint context", c, c))
	}
	var res []pds.Context
	for _, caller := range r.tracker.ContextsOf(tc.stmt, tc.d1) {
		res = append(res, taintContext{stmt: caller.CallSite, d1: caller.CallerFact})
	}
	return res
}
