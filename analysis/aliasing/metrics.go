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
	"sync/atomic"
	"time"
)

// Metrics are the counters of the alias queries of one analysis run. They are safe for concurrent use.
type Metrics struct {
	queries        atomic.Int64
	timeouts       atomic.Int64
	queryTime      atomic.Int64
	cacheHits      atomic.Int64
	untranslatable atomic.Int64
}

// NewMetrics returns zeroed counters
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Queries returns the number of alias queries issued
func (m *Metrics) Queries() int64 {
	return m.queries.Load()
}

// Timeouts returns the number of alias queries that ran out of time
func (m *Metrics) Timeouts() int64 {
	return m.timeouts.Load()
}

// QueryTime returns the cumulative time spent computing aliases
func (m *Metrics) QueryTime() time.Duration {
	return time.Duration(m.queryTime.Load())
}

// CacheHits returns the number of cached results replayed at call sites
func (m *Metrics) CacheHits() int64 {
	return m.cacheHits.Load()
}

// Untranslatable returns the number of aliases that could not be translated into taint abstractions
func (m *Metrics) Untranslatable() int64 {
	return m.untranslatable.Load()
}

func (m *Metrics) addQuery() {
	m.queries.Add(1)
}

func (m *Metrics) addTimeout() {
	m.timeouts.Add(1)
}

func (m *Metrics) addQueryTime(d time.Duration) {
	m.queryTime.Add(int64(d))
}

func (m *Metrics) addCacheHit() {
	m.cacheHits.Add(1)
}

func (m *Metrics) addUntranslatable() {
	m.untranslatable.Add(1)
}

func (m *Metrics) String() string {
	return fmt.Sprintf("alias queries: %d, timed out: %d, query time: %s, cache hits: %d, untranslatable: %d",
		m.Queries(), m.Timeouts(), m.QueryTime(), m.CacheHits(), m.Untranslatable())
}
