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
The taint tool runs the taint analysis on your code, using its SSA representation. Field writes and call returns
query the aliases of the tainted values to find flows through aliased memory.

Usage:

	taint [flags] -config config.yaml package...

The flags are:

	-build=D          see the documentation of buildmode for the ssa package

	-config path      a path to the configuration file containing definitions for sinks and sources

	-alias name       the alias strategy: context-sensitive, flow-sensitive, flow-insensitive or none.
	                  Overrides the aliasing-algorithm option of the config file.

	-max-threads n    the number of workers of the taint solver. Overrides the config file option.

	-cycles=false     print the recursive functions of the program before running the analysis
*/
package main
