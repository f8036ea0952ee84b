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
	"strings"

	"github.com/awslabs/ar-go-alias/analysis/config"
	"golang.org/x/tools/go/ssa"
)

// IsExternal returns true if function is external (in ssa, when Blocks is nil)
func IsExternal(function *ssa.Function) bool {
	// This is indicated in the ssa documentation
	return function.Blocks == nil
}

// IterateInstructions iterates through all the instructions in the function, in no specific order.
// It ignores the order in which blocks should be executed, but always starts with the first block.
func IterateInstructions(function *ssa.Function, f func(index int, instruction ssa.Instruction)) {
	// If this is an external function, return.
	if function.Blocks == nil {
		return
	}

	for _, block := range function.Blocks {
		for index, instruction := range block.Instrs {
			f(index, instruction)
		}
	}
}

// IterateValues applies f to every value in the function. It might apply f several times to the same value.
func IterateValues(function *ssa.Function, f func(value ssa.Value)) {
	for _, param := range function.Params {
		f(param)
	}

	for _, freeVar := range function.FreeVars {
		f(freeVar)
	}

	IterateInstructions(function, func(_ int, i ssa.Instruction) {
		for _, operand := range i.Operands(nil) {
			if operand != nil && *operand != nil {
				f(*operand)
			}
		}
		if v, ok := i.(ssa.Value); ok {
			f(v)
		}
	})
}

// PackageNameFromFunction returns the best possible package name for a ssa.Function
// If the Function has a package, use that.
// If the function doesn't have a package, check if it's a method and use
// the package associated with its object
func PackageNameFromFunction(f *ssa.Function) string {
	if f.Pkg != nil {
		return f.Pkg.Pkg.Path()
	}
	if f.Object() != nil && f.Object().Pkg() != nil {
		return f.Object().Pkg().Path()
	}
	if f.Origin() != nil {
		return PackageNameFromFunction(f.Origin())
	}
	return ""
}

// FunctionIdentifier returns the code identifier matching exactly the function f. The receiver is set for methods.
func FunctionIdentifier(f *ssa.Function) config.CodeIdentifier {
	receiver := ""
	if recv := f.Signature.Recv(); recv != nil {
		receiver = ReceiverStr(recv.Type())
	}
	return config.NewFunctionIdentifier(PackageNameFromFunction(f), f.Name(), receiver)
}

// ReceiverStr returns the string receiver name of t.
// e.g. *repo/package.Method -> Method
func ReceiverStr(t types.Type) string {
	typ := t.String()
	// get rid of pointer prefix in type name
	typ = strings.Replace(typ, "*", "", -1)
	split := strings.Split(typ, ".")
	return split[len(split)-1]
}

// StaticCallee returns the callee of a call instruction, when it can be statically resolved.
func StaticCallee(call ssa.CallInstruction) *ssa.Function {
	if call == nil {
		return nil
	}
	return call.Common().StaticCallee()
}
