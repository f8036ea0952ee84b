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
	"github.com/awslabs/ar-go-alias/analysis/dataflow"
	"github.com/awslabs/ar-go-alias/analysis/lang"
	"golang.org/x/tools/go/ssa"
)

// None is the strategy that finds no alias
type None struct {
	metrics *Metrics
}

// NewNone returns a strategy that finds no alias
func NewNone(metrics *Metrics) *None {
	return &None{metrics: metrics}
}

func (n *None) ComputeAliasTaints(*dataflow.Abstraction, lang.Statement, ssa.Value, *ssa.Function,
	*dataflow.Abstraction) []*dataflow.Abstraction {
	return nil
}

func (n *None) InjectCallingContext(*dataflow.Abstraction, *ssa.Function, lang.Statement, *dataflow.Abstraction,
	*dataflow.Abstraction) {
}

func (n *None) IsFlowSensitive() bool {
	return false
}

func (n *None) RequiresAnalysisOnReturn() bool {
	return false
}

func (n *None) Metrics() *Metrics {
	return n.metrics
}

func (n *None) Cleanup() {}
