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
	"go/constant"
	"go/token"
	"go/types"
	"testing"

	"github.com/awslabs/ar-go-alias/analysis/lang"
	"golang.org/x/tools/go/ssa"
)

var testPkg = types.NewPackage("example.com/test", "test")

func newField(name string, t types.Type) *types.Var {
	return types.NewField(token.NoPos, testPkg, name, t, false)
}

func newValue(i int64, t types.Type) ssa.Value {
	return ssa.NewConst(constant.MakeInt64(i), t)
}

func TestNewAccessPath(t *testing.T) {
	f1 := newField("f1", types.Typ[types.Int])
	f2 := newField("f2", types.Typ[types.String])
	f3 := newField("f3", types.Typ[types.Bool])
	x := newValue(0, types.Typ[types.Int])

	tests := []struct {
		name         string
		maxLength    int
		base         ssa.Value
		fields       []*types.Var
		wantNil      bool
		wantFields   int
		wantCutOff   bool
		wantSubTaint bool
	}{
		{name: "static without field", maxLength: 3, base: nil, fields: nil, wantNil: true},
		{name: "local", maxLength: 3, base: x, fields: nil, wantFields: 0},
		{name: "static", maxLength: 3, base: nil, fields: []*types.Var{f1}, wantFields: 1},
		{name: "at max length", maxLength: 3, base: x, fields: []*types.Var{f1, f2, f3}, wantFields: 3},
		{name: "truncated", maxLength: 2, base: x, fields: []*types.Var{f1, f2, f3}, wantFields: 2,
			wantCutOff: true, wantSubTaint: true},
		{name: "unbounded", maxLength: 0, base: x, fields: []*types.Var{f1, f2, f3}, wantFields: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ap := NewAccessPathFactory(tt.maxLength).New(tt.base, nil, tt.fields, nil, false, ArrayTaintContents)
			if tt.wantNil {
				if ap != nil {
					t.Fatalf("expected nil access path, got %s", ap)
				}
				return
			}
			if ap == nil {
				t.Fatalf("expected an access path")
			}
			if ap.FieldCount() != tt.wantFields {
				t.Errorf("expected %d fields, got %d", tt.wantFields, ap.FieldCount())
			}
			if len(ap.FieldTypes()) != ap.FieldCount() {
				t.Errorf("expected one type per field")
			}
			if ap.CutOff != tt.wantCutOff {
				t.Errorf("expected CutOff=%v", tt.wantCutOff)
			}
			if ap.TaintSubFields != tt.wantSubTaint {
				t.Errorf("expected TaintSubFields=%v", tt.wantSubTaint)
			}
		})
	}
}

func TestAccessPathFieldOperations(t *testing.T) {
	f := NewAccessPathFactory(5)
	f1 := newField("f1", types.Typ[types.Int])
	f2 := newField("f2", types.Typ[types.String])
	x := newValue(0, types.Typ[types.Int])
	y := newValue(1, types.Typ[types.Int64])

	ap := f.PrependField(f.New(x, nil, []*types.Var{f2}, nil, true, ArrayTaintLength), y, f1)
	if ap.Base() != y || ap.FieldCount() != 2 || ap.FirstField() != f1 {
		t.Fatalf("unexpected prepended path %s", ap)
	}
	if !ap.TaintSubFields || ap.ArrayTaint != ArrayTaintLength {
		t.Errorf("flags should be carried over by PrependField")
	}

	stripped, ok := f.StripFirstField(ap, f1, x)
	if !ok {
		t.Fatalf("expected %s to match field f1", ap)
	}
	if stripped.Base() != x || stripped.FieldCount() != 1 || stripped.FirstField() != f2 {
		t.Errorf("unexpected stripped path %s", stripped)
	}
	if _, ok := f.StripFirstField(ap, f2, x); ok {
		t.Errorf("%s should not match field f2", ap)
	}

	whole, ok := f.StripFirstField(f.New(y, nil, nil, nil, true, ArrayTaintContents), f1, x)
	if !ok || !whole.IsLocal() || !whole.TaintSubFields {
		t.Errorf("loading a field of a value whose sub-fields are tainted should taint the loaded value")
	}

	renamed := f.WithBase(ap, x)
	if renamed.Base() != x || renamed.BaseType() != x.Type() {
		t.Errorf("WithBase should use the new base and its type")
	}
	if renamed.FieldCount() != ap.FieldCount() || renamed.TaintSubFields != ap.TaintSubFields {
		t.Errorf("WithBase should keep the fields and flags")
	}
	if renamed.Equal(ap) {
		t.Errorf("paths with different bases should not be equal")
	}
	if !renamed.Equal(f.WithBase(ap, x)) {
		t.Errorf("paths built the same way should be equal")
	}
}

func TestAbstractionDerivations(t *testing.T) {
	f := NewAccessPathFactory(5)
	x := newValue(0, types.Typ[types.Int])
	y := newValue(1, types.Typ[types.Int])
	src := NewSourceAbstraction(f.NewLocal(x), nil)
	if !src.IsActive() || src.IsZero() {
		t.Fatalf("source abstraction should be active and non-zero")
	}
	if NewSourceAbstraction(nil, nil) != nil {
		t.Errorf("source abstraction without access path should be nil")
	}

	stmt := lang.Statement{}
	d1 := src.DeriveNewAbstraction(f.NewLocal(y), stmt)
	d2 := src.DeriveNewAbstraction(f.NewLocal(y), stmt)
	if d1.Key() != d2.Key() {
		t.Errorf("abstractions derived identically should have the same key")
	}
	if d1.Key() == src.Key() {
		t.Errorf("abstractions with different paths should have different keys")
	}
	if src.DeriveNewAbstraction(nil, stmt) != nil {
		t.Errorf("deriving with a nil path should return nil")
	}

	inactive := d1.DeriveInactiveAbstraction(stmt)
	if inactive.IsActive() || inactive.Key() == d1.Key() {
		t.Errorf("inactive abstraction should differ from the active one")
	}
	if inactive.AccessPath() != d1.AccessPath() {
		t.Errorf("inactive abstraction should keep the access path")
	}
	if inactive.ActiveCopy().Key() != d1.Key() {
		t.Errorf("active copy of inactive abstraction should be equal to the original")
	}
	if !ZeroAbstraction().IsZero() {
		t.Errorf("zero abstraction should be zero")
	}
}
