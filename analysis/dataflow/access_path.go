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
	"fmt"
	"go/types"
	"strings"

	"golang.org/x/tools/go/ssa"
)

// ArrayTaint indicates which part of an array-like value (slice, array, map, channel) is tainted.
type ArrayTaint int

const (
	// ArrayTaintContents means the elements are tainted
	ArrayTaintContents ArrayTaint = iota
	// ArrayTaintLength means only the length is tainted
	ArrayTaintLength
	// ArrayTaintContentsAndLength means both the elements and the length are tainted
	ArrayTaintContentsAndLength
)

func (a ArrayTaint) String() string {
	switch a {
	case ArrayTaintContents:
		return "contents"
	case ArrayTaintLength:
		return "length"
	case ArrayTaintContentsAndLength:
		return "contents+length"
	default:
		return "?"
	}
}

// An AccessPath is a base value followed by a sequence of struct fields, e.g. x.f.g is base x with fields [f, g].
// Fields are dereferenced implicitly: x.f denotes the field f of the struct x points to when x is a pointer.
//
// A static access path has no base. Its first field is the package-level variable it is rooted at.
type AccessPath struct {
	base       ssa.Value
	baseType   types.Type
	fields     []*types.Var
	fieldTypes []types.Type

	// TaintSubFields is true when every field reachable from the path is tainted
	TaintSubFields bool

	// ArrayTaint indicates which part of an array-like value is tainted
	ArrayTaint ArrayTaint

	// CutOff is true when the path was truncated to the maximum length
	CutOff bool
}

// Base returns the base value of the access path, nil for a static access path
func (ap *AccessPath) Base() ssa.Value {
	return ap.base
}

// BaseType returns the type of the base value
func (ap *AccessPath) BaseType() types.Type {
	return ap.baseType
}

// Fields returns a copy of the fields of the access path
func (ap *AccessPath) Fields() []*types.Var {
	return append([]*types.Var(nil), ap.fields...)
}

// FieldTypes returns a copy of the types of the fields of the access path
func (ap *AccessPath) FieldTypes() []types.Type {
	return append([]types.Type(nil), ap.fieldTypes...)
}

// FieldCount returns the number of fields
func (ap *AccessPath) FieldCount() int {
	return len(ap.fields)
}

// FirstField returns the first field of the path, or nil if there is none
func (ap *AccessPath) FirstField() *types.Var {
	if len(ap.fields) == 0 {
		return nil
	}
	return ap.fields[0]
}

// IsStatic returns true if the access path is rooted at a package-level variable
func (ap *AccessPath) IsStatic() bool {
	return ap.base == nil
}

// IsLocal returns true if the access path is a plain value, without fields
func (ap *AccessPath) IsLocal() bool {
	return ap.base != nil && len(ap.fields) == 0
}

// Equal returns true if the two access paths denote the same locations with the same flags
func (ap *AccessPath) Equal(other *AccessPath) bool {
	if ap == other {
		return true
	}
	if ap == nil || other == nil {
		return false
	}
	return ap.key() == other.key()
}

func (ap *AccessPath) String() string {
	var b strings.Builder
	if ap.base != nil {
		b.WriteString(ap.base.Name())
	} else {
		b.WriteString("<static>")
	}
	for _, f := range ap.fields {
		b.WriteString(".")
		b.WriteString(f.Name())
	}
	if ap.TaintSubFields {
		b.WriteString(".*")
	}
	if ap.ArrayTaint != ArrayTaintContents {
		b.WriteString(fmt.Sprintf(" (%s)", ap.ArrayTaint))
	}
	return b.String()
}

// accessPathKey is a comparable representation of an access path
type accessPathKey struct {
	base           ssa.Value
	fields         string
	taintSubFields bool
	arrayTaint     ArrayTaint
}

func (ap *AccessPath) key() accessPathKey {
	var b strings.Builder
	for _, f := range ap.fields {
		// field objects are unique, their address identifies them
		fmt.Fprintf(&b, "%p.", f)
	}
	return accessPathKey{
		base:           ap.base,
		fields:         b.String(),
		taintSubFields: ap.TaintSubFields,
		arrayTaint:     ap.ArrayTaint,
	}
}
