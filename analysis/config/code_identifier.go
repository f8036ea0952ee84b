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

package config

import "regexp"

// A CodeIdentifier identifies a code element that is a source, sink, sanitizer or an ignored function.
// Each non-empty field is matched against the corresponding property of the code element; fields that compile to
// regexes are matched as regexes.
type CodeIdentifier struct {
	Package  string `yaml:"package"`
	Method   string `yaml:"method"`
	Receiver string `yaml:"receiver"`
	Type     string `yaml:"type"`
	// This will not be part of the yaml config
	computedRegexs *codeIdentifierRegex
}

type codeIdentifierRegex struct {
	packageRegex  *regexp.Regexp
	methodRegex   *regexp.Regexp
	receiverRegex *regexp.Regexp
	typeRegex     *regexp.Regexp
}

// NewFunctionIdentifier returns the code identifier of a function or a method (when receiver is not empty)
func NewFunctionIdentifier(pkg string, method string, receiver string) CodeIdentifier {
	return CodeIdentifier{Package: pkg, Method: method, Receiver: receiver}
}

// CompileRegexes returns a copy of cid with its regexes compiled. If any of the fields is not a valid regex, then
// cid is returned unchanged and will be matched by string equality.
func CompileRegexes(cid CodeIdentifier) CodeIdentifier {
	packageRegex, err := regexp.Compile(cid.Package)
	if err != nil {
		return cid
	}
	methodRegex, err := regexp.Compile(cid.Method)
	if err != nil {
		return cid
	}
	receiverRegex, err := regexp.Compile(cid.Receiver)
	if err != nil {
		return cid
	}
	typeRegex, err := regexp.Compile(cid.Type)
	if err != nil {
		return cid
	}
	cid.computedRegexs = &codeIdentifierRegex{
		packageRegex:  packageRegex,
		methodRegex:   methodRegex,
		receiverRegex: receiverRegex,
		typeRegex:     typeRegex,
	}
	return cid
}

// equalOnNonEmptyFields returns true if every non-empty field of cidRef matches the same field of cid
func (cid CodeIdentifier) equalOnNonEmptyFields(cidRef CodeIdentifier) bool {
	if cidRef.computedRegexs != nil {
		return (cidRef.Package == "" || cidRef.computedRegexs.packageRegex.MatchString(cid.Package)) &&
			(cidRef.Method == "" || cidRef.computedRegexs.methodRegex.MatchString(cid.Method)) &&
			(cidRef.Receiver == "" || cidRef.computedRegexs.receiverRegex.MatchString(cid.Receiver)) &&
			(cidRef.Type == "" || cidRef.computedRegexs.typeRegex.MatchString(cid.Type))
	}
	return (cidRef.Package == "" || cid.Package == cidRef.Package) &&
		(cidRef.Method == "" || cid.Method == cidRef.Method) &&
		(cidRef.Receiver == "" || cid.Receiver == cidRef.Receiver) &&
		(cidRef.Type == "" || cid.Type == cidRef.Type)
}

// ExistsCid returns true if some code identifier of a satisfies f
func ExistsCid(a []CodeIdentifier, f func(identifier CodeIdentifier) bool) bool {
	for _, x := range a {
		if f(x) {
			return true
		}
	}
	return false
}
