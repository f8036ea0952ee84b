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
Package config provides a simple way to manage configuration files.

Use [LoadFile](filename) to load a configuration from a specific filename.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml format. The top-level fields can be any of the fields defined in the Config
struct type. For example, a valid config file is as follows:

	options:
	  log-level: 4
	  aliasing-algorithm: context-sensitive
	  alias-timeout-ms: 500
	  access-path-length: 5

	taint-tracking-problems:
	  - sources:
	      - package: main
	        method: source
	    sinks:
	      - package: main
	        method: sink

	alias-ignore:
	  - package: runtime

# Identifying code elements

The config uses [CodeIdentifier] to identify specific code entities. For example, sinks and sources are CodeIdentifiers
which identify specific functions in specific packages. The string specifications are seen as regexes if they can be
compiled to regexes, otherwise they are strings.

# Aliasing

The aliasing-algorithm option selects how the taint analysis discovers aliases of tainted heap locations. The default,
context-sensitive, only explores the calling contexts that the taint analysis has itself traversed. Functions listed in
alias-ignore are never explored as calling contexts by the alias queries.
*/
package config
