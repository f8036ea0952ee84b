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
	"go/token"
	"go/types"
	"testing"
)

func TestFields(t *testing.T) {
	v := types.NewField(token.NoPos, nil, "f", types.Typ[types.Int], false)
	if NewField(v).IsSentinel() {
		t.Errorf("named field should not be a sentinel")
	}
	for _, f := range []Field{ArrayField(), EmptyField(), EpsilonField()} {
		if !f.IsSentinel() {
			t.Errorf("%s should be a sentinel", f)
		}
		if f.Var() != nil {
			t.Errorf("%s should have no struct field", f)
		}
	}
}

func TestAliasSet(t *testing.T) {
	v := types.NewField(token.NoPos, nil, "f", types.Typ[types.Int], false)
	s := newAliasSet()
	if !s.add(NewAccessPath(Val{}, NewField(v))) {
		t.Errorf("first insertion should succeed")
	}
	if s.add(NewAccessPath(Val{}, NewField(v))) {
		t.Errorf("equal access paths should be inserted once")
	}
	if !s.add(NewOverApproximatedAccessPath(Val{}, NewField(v))) {
		t.Errorf("over-approximated access path should differ from the precise one")
	}
	if len(s.list()) != 2 {
		t.Errorf("expected 2 access paths, got %d", len(s.list()))
	}
}
