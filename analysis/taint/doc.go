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

/*
Package taint implements a forward taint analysis over the SSA form of a program. The main entry point of the
analysis is the [Analyze] function, which returns an [AnalysisResult] containing all the taint flows from sources to
sinks, as well as the counters of the alias analysis.

The analysis is an IFDS tabulation: facts are [dataflow.Abstraction] values propagated along the statements of every
function reachable from the program entry points, with function summaries reused across calling contexts. When a
tainted value is written into a field, or returned to a caller, the analysis asks its [aliasing.Strategy] for the
other values that may alias the written value, and taints them too.
*/
package taint
