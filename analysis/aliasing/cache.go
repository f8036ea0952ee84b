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
	"github.com/awslabs/ar-go-alias/internal/concurrent"
)

// A cacheEntry is an allocation site whose aliases are visible at a call site, with the abstraction that
// triggered the query of the allocation site.
type cacheEntry struct {
	alloc pds.ForwardQuery
	abs   *dataflow.Abstraction
}

// CallSiteCache maps call sites to the allocation sites whose aliases become visible when the call returns.
type CallSiteCache struct {
	entries *concurrent.SetMultimap[lang.Statement, cacheEntry]
}

// NewCallSiteCache returns an empty cache
func NewCallSiteCache() *CallSiteCache {
	return &CallSiteCache{
		entries: concurrent.NewSetMultimap[lang.Statement, cacheEntry](
			concurrent.StringHash(func(s lang.Statement) string { return fmt.Sprintf("%p", s.Instr) })),
	}
}

// Put records that the aliases of alloc are visible at callSite, for the abstraction abs
func (c *CallSiteCache) Put(callSite lang.Statement, alloc pds.ForwardQuery, abs *dataflow.Abstraction) bool {
	return c.entries.Put(callSite, cacheEntry{alloc: alloc, abs: abs})
}

// Get returns the entries of callSite
func (c *CallSiteCache) Get(callSite lang.Statement) []cacheEntry {
	return c.entries.Get(callSite)
}

// Len returns the number of entries
func (c *CallSiteCache) Len() int {
	return c.entries.Len()
}

// Clear drops all the entries
func (c *CallSiteCache) Clear() {
	c.entries.Clear()
}

// escapeListener fills the cache with the call sites through which the queried value escapes into a caller.
type escapeListener struct {
	cache  *CallSiteCache
	solver pds.AllocationSolver
	alloc  pds.ForwardQuery
	abs    *dataflow.Abstraction
}

func (l *escapeListener) OnEscapeToCaller(frame lang.Statement) {
	for _, cs := range l.solver.PredsOf(frame) {
		l.cache.Put(cs, l.alloc, l.abs)
	}
}

func (l *escapeListener) OnReachesEnd(lang.Statement) {}
