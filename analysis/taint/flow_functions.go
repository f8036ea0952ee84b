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

package taint

import (
	"go/token"
	"go/types"

	"github.com/awslabs/ar-go-alias/analysis/dataflow"
	"github.com/awslabs/ar-go-alias/analysis/lang"
	"golang.org/x/tools/go/ssa"
)

// normalFlow returns the facts that hold after stmt, a statement that is neither a call nor an exit, when d2 holds
// before. Facts are never killed.
func (s *Solver) normalFlow(d1 *dataflow.Abstraction, stmt lang.Statement,
	d2 *dataflow.Abstraction) []*dataflow.Abstraction {
	res := []*dataflow.Abstraction{d2}
	if d2.IsZero() {
		return res
	}
	ap := d2.AccessPath()
	switch instr := stmt.Instr.(type) {
	case *ssa.Store:
		return append(res, s.storeFlow(d1, stmt, instr, d2)...)
	case *ssa.MapUpdate:
		if ap.Base() != nil && (instr.Value == ap.Base() || instr.Key == ap.Base()) {
			res = appendDerived(res, d2, s.factory.WithBase(ap, instr.Map), stmt)
		}
		return res
	}
	v, ok := stmt.Instr.(ssa.Value)
	if !ok {
		return res
	}
	if ap.IsStatic() {
		if load, isLoad := v.(*ssa.UnOp); isLoad && load.Op == token.MUL {
			if g, isGlobal := load.X.(*ssa.Global); isGlobal {
				if loaded, tainted := s.factory.StripFirstField(ap, lang.GlobalVar(g), load); tainted {
					res = appendDerived(res, d2, loaded, stmt)
				}
			}
		}
		return res
	}
	return appendDerived(res, d2, s.valueFlow(v, ap), stmt)
}

// valueFlow returns the access path of v tainted by ap, or nil if v is not tainted by ap. A pointer is tainted when
// the value it points to is tainted.
func (s *Solver) valueFlow(v ssa.Value, ap *dataflow.AccessPath) *dataflow.AccessPath {
	base := ap.Base()
	switch v := v.(type) {
	case *ssa.Phi:
		for _, edge := range v.Edges {
			if edge == base {
				return s.factory.WithBase(ap, v)
			}
		}
	case *ssa.ChangeType, *ssa.ChangeInterface, *ssa.Convert, *ssa.MakeInterface, *ssa.Slice, *ssa.TypeAssert,
		*ssa.IndexAddr, *ssa.Index, *ssa.Lookup, *ssa.Range:
		if operandOf(v) == base {
			return s.factory.WithBase(ap, v)
		}
	case *ssa.Extract:
		if v.Tuple == base {
			return s.factory.WithBase(ap, v)
		}
	case *ssa.Next:
		if v.Iter == base {
			return s.factory.WithBase(ap, v)
		}
	case *ssa.UnOp:
		if v.X == base {
			return s.factory.WithBase(ap, v)
		}
	case *ssa.BinOp:
		if v.X == base || v.Y == base {
			return s.factory.New(v, nil, nil, nil, true, dataflow.ArrayTaintContents)
		}
	case *ssa.FieldAddr:
		if v.X == base {
			if loaded, ok := s.factory.StripFirstField(ap, lang.FieldAddrVar(v), v); ok {
				return loaded
			}
		}
	case *ssa.Field:
		if v.X == base {
			if loaded, ok := s.factory.StripFirstField(ap, lang.FieldFieldVar(v), v); ok {
				return loaded
			}
		}
	}
	return nil
}

// operandOf returns the value copied, converted or indexed by v
func operandOf(v ssa.Value) ssa.Value {
	switch v := v.(type) {
	case *ssa.ChangeType:
		return v.X
	case *ssa.ChangeInterface:
		return v.X
	case *ssa.Convert:
		return v.X
	case *ssa.MakeInterface:
		return v.X
	case *ssa.Slice:
		return v.X
	case *ssa.TypeAssert:
		return v.X
	case *ssa.IndexAddr:
		return v.X
	case *ssa.Index:
		return v.X
	case *ssa.Lookup:
		return v.X
	case *ssa.Range:
		return v.X
	}
	return nil
}

// storeFlow returns the facts created by storing the tainted value of d2. Storing into a field or an element of an
// array queries the aliases of the written value.
func (s *Solver) storeFlow(d1 *dataflow.Abstraction, stmt lang.Statement, store *ssa.Store,
	d2 *dataflow.Abstraction) []*dataflow.Abstraction {
	ap := d2.AccessPath()
	if ap.Base() == nil || store.Val != ap.Base() {
		return nil
	}
	var written *dataflow.AccessPath
	isFieldWrite := false
	switch addr := store.Addr.(type) {
	case *ssa.FieldAddr:
		f := lang.FieldAddrVar(addr)
		if f == nil {
			return nil
		}
		written = s.factory.PrependField(ap, addr.X, f)
		isFieldWrite = true
	case *ssa.IndexAddr:
		written = s.factory.WithBase(ap, addr.X)
		isFieldWrite = true
	case *ssa.Global:
		g := lang.GlobalVar(addr)
		if g == nil {
			return nil
		}
		fields := append([]*types.Var{g}, ap.Fields()...)
		fieldTypes := append([]types.Type{g.Type()}, ap.FieldTypes()...)
		written = s.factory.New(nil, nil, fields, fieldTypes, ap.TaintSubFields, ap.ArrayTaint)
	default:
		written = s.factory.WithBase(ap, store.Addr)
	}
	newAbs := d2.DeriveNewAbstraction(written, stmt)
	if newAbs == nil {
		return nil
	}
	res := []*dataflow.Abstraction{newAbs}
	if isFieldWrite {
		res = append(res, s.aliases.ComputeAliasTaints(d1, stmt, store.Val, stmt.Method, newAbs)...)
	}
	return res
}

// callFlow returns the facts at the entry of callee when d2 holds at the call
func (s *Solver) callFlow(common *ssa.CallCommon, callee *ssa.Function, stmt lang.Statement,
	d2 *dataflow.Abstraction) []*dataflow.Abstraction {
	ap := d2.AccessPath()
	if d2.IsZero() || ap.IsStatic() {
		return []*dataflow.Abstraction{d2}
	}
	var res []*dataflow.Abstraction
	if closure, ok := common.Value.(*ssa.MakeClosure); ok {
		for i, b := range closure.Bindings {
			if b == ap.Base() && i < len(callee.FreeVars) {
				res = appendDerived(res, d2, s.factory.WithBase(ap, callee.FreeVars[i]), stmt)
			}
		}
	}
	for i, arg := range arguments(common) {
		if arg == ap.Base() && i < len(callee.Params) {
			res = appendDerived(res, d2, s.factory.WithBase(ap, callee.Params[i]), stmt)
		}
	}
	return res
}

// returnedFacts returns the facts in the caller of callee that correspond to the fact d4 at exit: the results of the
// call, and the arguments passed by reference.
func (s *Solver) returnedFacts(call ssa.CallInstruction, callSite lang.Statement, callee *ssa.Function,
	exit lang.Statement, d4 *dataflow.Abstraction) []*dataflow.Abstraction {
	ap := d4.AccessPath()
	if ap.IsStatic() {
		return []*dataflow.Abstraction{d4.DeriveNewAbstraction(ap, callSite)}
	}
	base := ap.Base()
	var res []*dataflow.Abstraction
	if ret, ok := exit.Instr.(*ssa.Return); ok {
		if value, isCall := call.(*ssa.Call); isCall {
			for i, r := range ret.Results {
				if r != base {
					continue
				}
				for _, v := range resultValues(value, i, len(ret.Results)) {
					res = appendDerived(res, d4, s.factory.WithBase(ap, v), callSite)
				}
			}
		}
	}
	args := arguments(call.Common())
	for i, p := range callee.Params {
		if p != base || i >= len(args) || !isReference(p.Type()) {
			continue
		}
		if _, isConst := args[i].(*ssa.Const); isConst {
			continue
		}
		res = appendDerived(res, d4, s.factory.WithBase(ap, args[i]), callSite)
	}
	return res
}

// arguments returns the values passed to the parameters of the callee, the receiver first for interface calls
func arguments(common *ssa.CallCommon) []ssa.Value {
	if common.IsInvoke() {
		return append([]ssa.Value{common.Value}, common.Args...)
	}
	return common.Args
}

// isArgument returns true if the base of d is passed to the callee
func isArgument(common *ssa.CallCommon, d *dataflow.Abstraction) bool {
	ap := d.AccessPath()
	if ap == nil || ap.Base() == nil {
		return false
	}
	for _, arg := range arguments(common) {
		if arg == ap.Base() {
			return true
		}
	}
	return false
}

// resultValues returns the values holding result i of a call returning n results
func resultValues(call *ssa.Call, i int, n int) []ssa.Value {
	if n == 1 {
		return []ssa.Value{call}
	}
	refs := call.Referrers()
	if refs == nil {
		return nil
	}
	var res []ssa.Value
	for _, ref := range *refs {
		if extract, ok := ref.(*ssa.Extract); ok && extract.Index == i {
			res = append(res, extract)
		}
	}
	return res
}

// isReference returns true if a callee can modify the caller's data through a value of type t
func isReference(t types.Type) bool {
	switch t.Underlying().(type) {
	case *types.Pointer, *types.Slice, *types.Map, *types.Chan, *types.Interface:
		return true
	}
	return false
}

func appendDerived(res []*dataflow.Abstraction, d *dataflow.Abstraction, ap *dataflow.AccessPath,
	stmt lang.Statement) []*dataflow.Abstraction {
	if derived := d.DeriveNewAbstraction(ap, stmt); derived != nil {
		return append(res, derived)
	}
	return res
}
