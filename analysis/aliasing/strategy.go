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

// Package aliasing implements the alias strategies of the taint analysis. When a taint reaches a field write or
// returns from a call, the taint solver asks its strategy for the other values that may alias the tainted value, and
// taints them too.
//
// The ContextSensitive strategy issues on-demand queries to the alias engine of the pds package, restricted to the
// calling contexts the taint analysis has explored for the fact being propagated. Results that escape into callers
// are cached at the call sites and replayed when the taint analysis returns from those calls.
package aliasing

import (
	"fmt"

	"github.com/awslabs/ar-go-alias/analysis/config"
	"github.com/awslabs/ar-go-alias/analysis/dataflow"
	"github.com/awslabs/ar-go-alias/analysis/lang"
	"github.com/awslabs/ar-go-alias/analysis/pds"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
)

// A Strategy computes the aliases of the values tainted by the taint analysis.
type Strategy interface {
	// ComputeAliasTaints returns the abstractions of the aliases of the base of newAbs at stmt. stmt is either a
	// field write, in which case target is the written value, or a call the taint analysis returns from, in which
	// case target is the value returned or the argument modified by the callee. d1 is the fact at the entry of
	// method that newAbs has been derived from.
	ComputeAliasTaints(d1 *dataflow.Abstraction, stmt lang.Statement, target ssa.Value, method *ssa.Function,
		newAbs *dataflow.Abstraction) []*dataflow.Abstraction

	// InjectCallingContext is called every time the taint analysis adds the fact d3 at the entry of callee, from
	// the call site where the fact source holds, d1 being the fact at the entry of the caller.
	InjectCallingContext(d3 *dataflow.Abstraction, callee *ssa.Function, callSite lang.Statement,
		source *dataflow.Abstraction, d1 *dataflow.Abstraction)

	// IsFlowSensitive returns true if the aliases depend on the statement
	IsFlowSensitive() bool

	// RequiresAnalysisOnReturn returns true if the taint analysis must compute aliases when a tainted value returns
	// from a call
	RequiresAnalysisOnReturn() bool

	// Metrics returns the counters of the strategy
	Metrics() *Metrics

	// Cleanup releases the state of the strategy. The strategy must not be used afterwards.
	Cleanup()
}

// Dependencies are the components a strategy may need
type Dependencies struct {
	// Program is the program analyzed
	Program *ssa.Program

	// Config is the configuration of the analysis
	Config *config.Config

	// Logger is the logger of the analysis
	Logger *config.LogGroup

	// Factory builds the access paths of the taint analysis
	Factory *dataflow.AccessPathFactory

	// CallGraph is the call graph used by the flow-sensitive strategy to find callers
	CallGraph *callgraph.Graph

	// Engine is the alias engine. If nil, an engine is created for Program.
	Engine pds.Engine

	// Metrics receives the counters of the strategy. If nil, new counters are created.
	Metrics *Metrics
}

func (d *Dependencies) setDefaults() {
	if d.Config == nil {
		d.Config = config.NewDefault()
	}
	if d.Logger == nil {
		d.Logger = config.NewLogGroup(d.Config)
	}
	if d.Factory == nil {
		d.Factory = dataflow.NewAccessPathFactory(d.Config.AccessPathLength)
	}
	if d.Metrics == nil {
		d.Metrics = NewMetrics()
	}
}

func (d *Dependencies) engine() pds.Engine {
	if d.Engine != nil {
		return d.Engine
	}
	return pds.NewEngine(d.Program, pds.OptionsFromConfig(d.Config), d.Logger)
}

// New returns the strategy of the kind given, one of the aliasing algorithms of the config.
func New(kind string, deps Dependencies) (Strategy, error) {
	deps.setDefaults()
	switch kind {
	case config.AliasingContextSensitive, "":
		return NewContextSensitive(deps.engine(), deps.Factory, deps.Config, deps.Logger, deps.Metrics), nil
	case config.AliasingFlowSensitive:
		if deps.CallGraph == nil {
			return nil, fmt.Errorf("%s aliasing requires a call graph", kind)
		}
		return NewFlowSensitive(deps.engine(), deps.CallGraph, deps.Factory, deps.Logger, deps.Metrics), nil
	case config.AliasingFlowInsensitive:
		if deps.Program == nil {
			return nil, fmt.Errorf("%s aliasing requires a program", kind)
		}
		s, err := NewFlowInsensitive(deps.Program, deps.Factory, deps.Logger, deps.Metrics)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.AliasingNone:
		return NewNone(deps.Metrics), nil
	default:
		return nil, fmt.Errorf("unknown aliasing algorithm %q", kind)
	}
}
