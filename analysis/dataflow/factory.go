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

package dataflow

import (
	"go/types"

	"golang.org/x/tools/go/ssa"
)

// An AccessPathFactory builds access paths whose length is bounded by a maximum
type AccessPathFactory struct {
	maxLength int
}

// NewAccessPathFactory returns a factory that truncates access paths longer than maxLength fields. A maxLength <= 0
// means paths are never truncated.
func NewAccessPathFactory(maxLength int) *AccessPathFactory {
	return &AccessPathFactory{maxLength: maxLength}
}

// MaxLength returns the maximum number of fields of the access paths built by the factory
func (f *AccessPathFactory) MaxLength() int {
	return f.maxLength
}

// NewLocal returns the access path of the plain value v
func (f *AccessPathFactory) NewLocal(v ssa.Value) *AccessPath {
	return f.New(v, nil, nil, nil, false, ArrayTaintContents)
}

// NewStatic returns the access path of the package-level variable g, followed by fields.
func (f *AccessPathFactory) NewStatic(g *types.Var, fields []*types.Var) *AccessPath {
	return f.New(nil, nil, append([]*types.Var{g}, fields...), nil, false, ArrayTaintContents)
}

// New builds an access path. If baseType is nil, the type of the base is used. If fieldTypes does not have one
// type per field, the declared types of the fields are used.
//
// Returns nil when the path is rooted nowhere: no base and no field.
// Paths longer than the maximum length are cut and taint all their sub-fields.
func (f *AccessPathFactory) New(base ssa.Value, baseType types.Type, fields []*types.Var, fieldTypes []types.Type,
	taintSubFields bool, arrayTaint ArrayTaint) *AccessPath {
	if base == nil && len(fields) == 0 {
		return nil
	}
	if baseType == nil && base != nil {
		baseType = base.Type()
	}
	if len(fieldTypes) != len(fields) {
		fieldTypes = make([]types.Type, len(fields))
		for i, field := range fields {
			fieldTypes[i] = field.Type()
		}
	}
	ap := &AccessPath{
		base:           base,
		baseType:       baseType,
		fields:         append([]*types.Var(nil), fields...),
		fieldTypes:     append([]types.Type(nil), fieldTypes...),
		TaintSubFields: taintSubFields,
		ArrayTaint:     arrayTaint,
	}
	if f.maxLength > 0 && len(ap.fields) > f.maxLength {
		ap.fields = ap.fields[:f.maxLength]
		ap.fieldTypes = ap.fieldTypes[:f.maxLength]
		ap.TaintSubFields = true
		ap.CutOff = true
	}
	return ap
}

// WithBase returns a copy of ap rooted at base instead, with base's type. Fields and flags are unchanged.
func (f *AccessPathFactory) WithBase(ap *AccessPath, base ssa.Value) *AccessPath {
	return f.New(base, nil, ap.fields, ap.fieldTypes, ap.TaintSubFields, ap.ArrayTaint)
}

// PrependField returns the access path base.field.<fields of ap>, the path of ap's value once stored in field of base.
func (f *AccessPathFactory) PrependField(ap *AccessPath, base ssa.Value, field *types.Var) *AccessPath {
	fields := append([]*types.Var{field}, ap.fields...)
	fieldTypes := append([]types.Type{field.Type()}, ap.fieldTypes...)
	return f.New(base, nil, fields, fieldTypes, ap.TaintSubFields, ap.ArrayTaint)
}

// StripFirstField returns the path of the value loaded from field of ap's base, rooted at v. If ap has no field
// but taints all its sub-fields, the loaded value is entirely tainted.
// Returns false if the value loaded is not tainted by ap.
func (f *AccessPathFactory) StripFirstField(ap *AccessPath, field *types.Var, v ssa.Value) (*AccessPath, bool) {
	if len(ap.fields) == 0 {
		if ap.TaintSubFields {
			return f.New(v, nil, nil, nil, true, ap.ArrayTaint), true
		}
		return nil, false
	}
	if ap.fields[0] != field {
		return nil, false
	}
	return f.New(v, nil, ap.fields[1:], ap.fieldTypes[1:], ap.TaintSubFields, ap.ArrayTaint), true
}
