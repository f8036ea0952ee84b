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

package config

const (
	// DefaultMaxCallDepth is the default maximum call stack depth explored by the alias engine
	DefaultMaxCallDepth = 32
	// DefaultAliasTimeoutMs is the default time budget of one alias query, in milliseconds
	DefaultAliasTimeoutMs = 1000
	// DefaultAccessPathLength is the default maximum number of fields in a taint access path
	DefaultAccessPathLength = 5
)

// Aliasing algorithms accepted by the aliasing-algorithm option
const (
	// AliasingContextSensitive runs on-demand alias queries restricted to the calling contexts of the taint analysis
	AliasingContextSensitive = "context-sensitive"
	// AliasingFlowSensitive runs on-demand alias queries over all static calling contexts
	AliasingFlowSensitive = "flow-sensitive"
	// AliasingFlowInsensitive uses a whole-program points-to analysis
	AliasingFlowInsensitive = "flow-insensitive"
	// AliasingNone disables alias analysis
	AliasingNone = "none"
)
