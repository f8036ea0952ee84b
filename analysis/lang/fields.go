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
	"go/types"

	"golang.org/x/tools/go/ssa"
)

// FieldVar returns the field object of field i if t is a struct or pointer to a struct, or nil.
func FieldVar(t types.Type, i int) *types.Var {
	switch typ := t.Underlying().(type) {
	case *types.Pointer:
		return FieldVar(typ.Elem(), i) // recursive call
	case *types.Struct:
		if 0 <= i && i < typ.NumFields() {
			return typ.Field(i)
		}
		return nil
	default:
		return nil
	}
}

// FieldAddrVar returns the field object accessed by a ssa.FieldAddr
func FieldAddrVar(fieldAddr *ssa.FieldAddr) *types.Var {
	return FieldVar(fieldAddr.X.Type(), fieldAddr.Field)
}

// FieldFieldVar returns the field object accessed by a ssa.Field
func FieldFieldVar(field *ssa.Field) *types.Var {
	return FieldVar(field.X.Type(), field.Field)
}

// GetFieldNameFromType returns the name of field i if t is a struct or pointer to a struct, or "?"
func GetFieldNameFromType(t types.Type, i int) string {
	if v := FieldVar(t, i); v != nil {
		return v.Name()
	}
	return "?"
}

// GlobalVar returns the package-level variable object of a global
func GlobalVar(g *ssa.Global) *types.Var {
	if g == nil {
		return nil
	}
	v, _ := g.Object().(*types.Var)
	return v
}

// IsGlobal returns true if v is a package-level variable
func IsGlobal(v ssa.Value) bool {
	_, ok := v.(*ssa.Global)
	return ok
}

// PointeeType returns the type pointed to by t if t is a pointer, or t itself.
func PointeeType(t types.Type) types.Type {
	if ptr, ok := t.Underlying().(*types.Pointer); ok {
		return ptr.Elem()
	}
	return t
}
