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

// BackwardResults are the results of a backward query
type BackwardResults struct {
	query           BackwardQuery
	timedOut        bool
	aliases         []AccessPath
	allocationSites map[ForwardQuery]Context
}

// NewBackwardResults returns the results of q.
func NewBackwardResults(q BackwardQuery, timedOut bool, aliases []AccessPath,
	allocationSites map[ForwardQuery]Context) *BackwardResults {
	if allocationSites == nil {
		allocationSites = map[ForwardQuery]Context{}
	}
	return &BackwardResults{query: q, timedOut: timedOut, aliases: aliases, allocationSites: allocationSites}
}

// Query returns the query the results answer
func (r *BackwardResults) Query() BackwardQuery {
	return r.query
}

// TimedOut returns true if the query ran out of time. The aliases are then partial.
func (r *BackwardResults) TimedOut() bool {
	return r.timedOut
}

// AllAliases returns the aliases of the query variable that are visible in the function of the query, including
// the query variable itself.
func (r *BackwardResults) AllAliases() []AccessPath {
	return r.aliases
}

// AllocationSites returns the allocation sites of the query variable, with the context in which each was found.
func (r *BackwardResults) AllocationSites() map[ForwardQuery]Context {
	return r.allocationSites
}
