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

// Package dataflow contains the representation of the facts of the taint analysis: access paths rooted at SSA values
// (or at package-level variables) and the taint abstractions the forward solver propagates.
//
// Access paths are immutable once built and can only be built through an AccessPathFactory, which bounds their length.
// Abstractions are derived from other abstractions; the only abstractions created from nothing are the ones the taint
// solver creates at sources.
package dataflow
