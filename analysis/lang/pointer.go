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

package lang

import (
	"golang.org/x/tools/go/pointer"
	"golang.org/x/tools/go/ssa"
)

// FindAllPointers returns all the pointers that point to v.
func FindAllPointers(res *pointer.Result, v ssa.Value) []pointer.Pointer {
	var allptr []pointer.Pointer
	if ptr, ptrExists := res.Queries[v]; ptrExists {
		allptr = append(allptr, ptr)
	}
	// By indirect query
	if ptr, ptrExists := res.IndirectQueries[v]; ptrExists {
		allptr = append(allptr, ptr)
	}
	return allptr
}

// MayAlias returns true if some pointer of a may alias some pointer of b according to res.
func MayAlias(res *pointer.Result, a ssa.Value, b ssa.Value) bool {
	for _, pa := range FindAllPointers(res, a) {
		for _, pb := range FindAllPointers(res, b) {
			if pa.MayAlias(pb) {
				return true
			}
		}
	}
	return false
}

// AddPointerQueries registers a direct query for every pointer-like value of f in cfg.
func AddPointerQueries(cfg *pointer.Config, f *ssa.Function) {
	IterateValues(f, func(v ssa.Value) {
		if _, isConst := v.(*ssa.Const); !isConst && pointer.CanPoint(v.Type()) {
			cfg.AddQuery(v)
		}
	})
}
