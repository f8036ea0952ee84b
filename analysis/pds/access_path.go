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

import (
	"fmt"
	"go/types"
	"strings"

	"github.com/awslabs/ar-go-alias/analysis/lang"
	"golang.org/x/tools/go/ssa"
)

// A Val is a value in a function. A static Val is a package-level variable and has no function.
type Val struct {
	Value  ssa.Value
	Method *ssa.Function
}

// NewVal returns the Val of v in method. Globals are always static.
func NewVal(v ssa.Value, method *ssa.Function) Val {
	if _, isGlobal := v.(*ssa.Global); isGlobal {
		return Val{Value: v}
	}
	return Val{Value: v, Method: method}
}

// ValOf returns the Val of v in the function where v is defined.
func ValOf(v ssa.Value) Val {
	return NewVal(v, v.Parent())
}

// IsStatic returns true if the value is a package-level variable
func (v Val) IsStatic() bool {
	return lang.IsGlobal(v.Value)
}

// Global returns the variable of a static value, or nil
func (v Val) Global() *types.Var {
	if g, ok := v.Value.(*ssa.Global); ok {
		return lang.GlobalVar(g)
	}
	return nil
}

func (v Val) String() string {
	if v.Value == nil {
		return "<nil>"
	}
	if v.IsStatic() {
		return v.Value.String()
	}
	if v.Method != nil {
		return v.Value.Name() + "@" + v.Method.Name()
	}
	return v.Value.Name()
}

type fieldKind int

const (
	namedField fieldKind = iota
	arrayField
	emptyField
	epsilonField
)

// A Field is a field selector in an access path: a named struct field, or one of the sentinels array-element, empty
// (end of the access path) and epsilon (matches anything).
type Field struct {
	kind fieldKind
	v    *types.Var
}

// NewField returns the selector of the struct field v
func NewField(v *types.Var) Field {
	return Field{kind: namedField, v: v}
}

// ArrayField returns the array-element sentinel
func ArrayField() Field {
	return Field{kind: arrayField}
}

// EmptyField returns the empty sentinel, the end of an access path
func EmptyField() Field {
	return Field{kind: emptyField}
}

// EpsilonField returns the epsilon sentinel
func EpsilonField() Field {
	return Field{kind: epsilonField}
}

// IsSentinel returns true if the field is not a named field
func (f Field) IsSentinel() bool {
	return f.kind != namedField
}

// Var returns the struct field, nil for sentinels
func (f Field) Var() *types.Var {
	return f.v
}

func (f Field) String() string {
	switch f.kind {
	case arrayField:
		return "[]"
	case emptyField:
		return "<empty>"
	case epsilonField:
		return "<eps>"
	default:
		if f.v == nil {
			return "?"
		}
		return f.v.Name()
	}
}

// An AccessPath is a value followed by a sequence of fields. An over-approximated access path stands for all the
// paths it is a prefix of.
type AccessPath struct {
	base             Val
	fields           []Field
	overApproximated bool
}

// NewAccessPath returns the access path base.fields
func NewAccessPath(base Val, fields ...Field) AccessPath {
	return AccessPath{base: base, fields: append([]Field(nil), fields...)}
}

// NewOverApproximatedAccessPath returns the over-approximated access path base.fields.*
func NewOverApproximatedAccessPath(base Val, fields ...Field) AccessPath {
	return AccessPath{base: base, fields: append([]Field(nil), fields...), overApproximated: true}
}

// Base returns the base of the access path
func (ap AccessPath) Base() Val {
	return ap.base
}

// Fields returns a copy of the fields of the access path
func (ap AccessPath) Fields() []Field {
	return append([]Field(nil), ap.fields...)
}

// IsOverApproximated returns true if the access path stands for all the paths it is a prefix of
func (ap AccessPath) IsOverApproximated() bool {
	return ap.overApproximated
}

func (ap AccessPath) String() string {
	var b strings.Builder
	b.WriteString(ap.base.String())
	for _, f := range ap.fields {
		b.WriteString(".")
		b.WriteString(f.String())
	}
	if ap.overApproximated {
		b.WriteString(".*")
	}
	return b.String()
}

type accessPathKey struct {
	base   Val
	fields string
	over   bool
}

func (ap AccessPath) key() accessPathKey {
	var b strings.Builder
	for _, f := range ap.fields {
		fmt.Fprintf(&b, "%d:%p.", f.kind, f.v)
	}
	return accessPathKey{base: ap.base, fields: b.String(), over: ap.overApproximated}
}
