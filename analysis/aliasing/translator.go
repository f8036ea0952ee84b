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

package aliasing

import (
	"errors"
	"go/types"

	"github.com/awslabs/ar-go-alias/analysis/dataflow"
	"github.com/awslabs/ar-go-alias/analysis/lang"
	"github.com/awslabs/ar-go-alias/analysis/pds"
)

var (
	// ErrOverApproximated is returned when translating an over-approximated alias. Such aliases are not propagated.
	ErrOverApproximated = errors.New("over-approximated alias")

	// ErrUntranslatable is returned when an alias has no base the taint analysis can represent.
	ErrUntranslatable = errors.New("untranslatable alias")
)

// A Translator converts the aliases found by the alias engine into taint abstractions.
type Translator struct {
	factory *dataflow.AccessPathFactory
}

// NewTranslator returns a translator building access paths with factory
func NewTranslator(factory *dataflow.AccessPathFactory) *Translator {
	return &Translator{factory: factory}
}

// Translate returns the abstraction, derived from orig at stmt, that taints the alias. The fields orig tracks from
// its base are appended to the fields of the alias.
//
// An alias without fields is a plain rename of the base of orig. An over-approximated alias returns
// ErrOverApproximated.
func (t *Translator) Translate(alias pds.AccessPath, stmt lang.Statement,
	orig *dataflow.Abstraction) (*dataflow.Abstraction, error) {
	origAp := orig.AccessPath()
	if origAp == nil || alias.Base().Value == nil {
		return nil, ErrUntranslatable
	}
	if len(alias.Fields()) == 0 && !alias.Base().IsStatic() {
		return derive(orig, t.factory.WithBase(origAp, alias.Base().Value), stmt)
	}
	if alias.IsOverApproximated() {
		return nil, ErrOverApproximated
	}

	var fields []*types.Var
	var fieldTypes []types.Type
	base := alias.Base().Value
	if alias.Base().IsStatic() {
		g := alias.Base().Global()
		if g == nil {
			return nil, ErrUntranslatable
		}
		fields = append(fields, g)
		fieldTypes = append(fieldTypes, g.Type())
		base = nil
	}
	for _, f := range namedFields(alias.Fields()) {
		fields = append(fields, f)
		fieldTypes = append(fieldTypes, f.Type())
	}
	fields = append(fields, origAp.Fields()...)
	fieldTypes = append(fieldTypes, origAp.FieldTypes()...)

	ap := t.factory.New(base, nil, fields, fieldTypes, origAp.TaintSubFields, origAp.ArrayTaint)
	return derive(orig, ap, stmt)
}

func derive(orig *dataflow.Abstraction, ap *dataflow.AccessPath, stmt lang.Statement) (*dataflow.Abstraction, error) {
	abs := orig.DeriveNewAbstraction(ap, stmt)
	if abs == nil {
		return nil, ErrUntranslatable
	}
	return abs, nil
}

// namedFields returns the struct fields of fields, without the sentinels
func namedFields(fields []pds.Field) []*types.Var {
	var res []*types.Var
	for _, f := range fields {
		if !f.IsSentinel() && f.Var() != nil {
			res = append(res, f.Var())
		}
	}
	return res
}
