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
	"github.com/awslabs/ar-go-alias/analysis/config"
	"github.com/awslabs/ar-go-alias/analysis/lang"
	"golang.org/x/tools/go/ssa"
)

// callIdentifier returns the code identifier of the function called by call. Returns false when the callee cannot
// be determined from the call instruction, e.g. a call to a function value.
func callIdentifier(call ssa.CallInstruction) (config.CodeIdentifier, bool) {
	common := call.Common()
	if common.IsInvoke() {
		pkg := ""
		if common.Method.Pkg() != nil {
			pkg = common.Method.Pkg().Path()
		}
		return config.NewFunctionIdentifier(pkg, common.Method.Name(), lang.ReceiverStr(common.Value.Type())), true
	}
	if callee := common.StaticCallee(); callee != nil {
		return lang.FunctionIdentifier(callee), true
	}
	return config.CodeIdentifier{}, false
}

func isMatchingCall(codeIdOracle func(config.CodeIdentifier) bool, call ssa.CallInstruction) bool {
	cid, ok := callIdentifier(call)
	return ok && codeIdOracle(cid)
}

// isSourceCall returns true if the call matches the code identifier of a source in the taint specification
func isSourceCall(ts *config.TaintSpec, call ssa.CallInstruction) bool {
	return isMatchingCall(ts.IsSource, call)
}

// isSinkCall returns true if the call matches the code identifier of a sink in the taint specification
func isSinkCall(ts *config.TaintSpec, call ssa.CallInstruction) bool {
	return isMatchingCall(ts.IsSink, call)
}

// isSanitizerCall returns true if the call matches the code identifier of a sanitizer in the taint specification
func isSanitizerCall(ts *config.TaintSpec, call ssa.CallInstruction) bool {
	return isMatchingCall(ts.IsSanitizer, call)
}
