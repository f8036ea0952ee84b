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

	"github.com/awslabs/ar-go-alias/analysis/lang"
	"golang.org/x/tools/go/ssa"
)

// An Abstraction is a fact of the taint analysis: the locations denoted by the access path may hold data coming from
// the source instruction.
//
// An inactive abstraction denotes a taint whose value has not been read yet: it can be matched by alias queries but
// must not reach sinks.
type Abstraction struct {
	ap     *AccessPath
	stmt   lang.Statement
	active bool
	source ssa.Instruction
}

// AbstractionKey is the comparable identity of an abstraction. The statement where the abstraction was created is not
// part of its identity.
type AbstractionKey struct {
	ap     accessPathKey
	active bool
	source ssa.Instruction
}

var zeroAbstraction = &Abstraction{active: true}

// ZeroAbstraction returns the fact that holds everywhere
func ZeroAbstraction() *Abstraction {
	return zeroAbstraction
}

// NewSourceAbstraction returns the active abstraction of the value produced by the source instruction.
func NewSourceAbstraction(ap *AccessPath, source ssa.Instruction) *Abstraction {
	if ap == nil {
		return nil
	}
	return &Abstraction{ap: ap, stmt: lang.NewStatement(source), active: true, source: source}
}

// IsZero returns true if a is the zero fact
func (a *Abstraction) IsZero() bool {
	return a.ap == nil
}

// AccessPath returns the access path of the abstraction
func (a *Abstraction) AccessPath() *AccessPath {
	return a.ap
}

// Stmt returns the statement where the abstraction was derived
func (a *Abstraction) Stmt() lang.Statement {
	return a.stmt
}

// IsActive returns true if the abstraction can reach sinks
func (a *Abstraction) IsActive() bool {
	return a.active
}

// Source returns the source instruction the abstraction originates from
func (a *Abstraction) Source() ssa.Instruction {
	return a.source
}

// DeriveNewAbstraction returns an abstraction with the same source and activation as a, but with access path ap,
// derived at stmt. Returns nil if ap is nil.
func (a *Abstraction) DeriveNewAbstraction(ap *AccessPath, stmt lang.Statement) *Abstraction {
	if ap == nil {
		return nil
	}
	return &Abstraction{ap: ap, stmt: stmt, active: a.active, source: a.source}
}

// DeriveInactiveAbstraction returns an inactive copy of a derived at stmt.
func (a *Abstraction) DeriveInactiveAbstraction(stmt lang.Statement) *Abstraction {
	return &Abstraction{ap: a.ap, stmt: stmt, active: false, source: a.source}
}

// ActiveCopy returns an active copy of a
func (a *Abstraction) ActiveCopy() *Abstraction {
	if a.active {
		return a
	}
	return &Abstraction{ap: a.ap, stmt: a.stmt, active: true, source: a.source}
}

// Key returns the comparable identity of the abstraction
func (a *Abstraction) Key() AbstractionKey {
	k := AbstractionKey{active: a.active, source: a.source}
	if a.ap != nil {
		k.ap = a.ap.key()
	}
	return k
}

func (a *Abstraction) String() string {
	if a.IsZero() {
		return "<zero>"
	}
	s := a.ap.String()
	if !a.active {
		s += " (inactive)"
	}
	if a.source != nil {
		s += fmt.Sprintf(" from %s", lang.FmtInstr(a.source))
	}
	return s
}
