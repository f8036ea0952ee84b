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

// Package pds implements a demand-driven, context-sensitive alias analysis over SSA.
//
// A backward query asks which values a variable may alias at a statement. The engine first walks the definitions of
// the variable backwards to its allocation sites, following parameters into the callers a ContextRequester allows.
// Each allocation site is then solved forward by an AllocationSolver, which walks the uses of the allocated value with
// an explicit stack of return sites, and records every value and field access path that holds the allocation.
//
// Allocation solvers are shared by all the queries of the engine: they are created once per ForwardQuery and never
// change afterwards. Listeners registered on the call automaton of a solver are notified of every stack the queried
// variable is reached with.
package pds
