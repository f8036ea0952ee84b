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

// Package graphutil adapts call graphs to the graph libraries used by the analyses, and implements the call graph
// algorithms they need: reachability from entry points and recursion cycles.
package graphutil

import (
	"sort"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/ssa"
	"gonum.org/v1/gonum/graph"
)

// CGraph is an abstraction over a callgraph to work with existing graph libraries. It implements the methods to
// satisfy yourbasic's graph.Iterator and Gonum's traversal graph.
type CGraph struct {
	// The order of the graph
	order int

	// The original callgraph the CGraph was constructed from
	Graph *callgraph.Graph

	// IDMap maps from node IDs to CNodes
	IDMap map[int64]CNode

	// Keys are all the node IDs, sorted
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge between IDMap[x] and IDMap[y]
	Edges map[int64]map[int64]bool
}

// NewCGraph returns the graph of cg, where node ids are the Node.ID of each callgraph node
func NewCGraph(cg *callgraph.Graph) CGraph {
	n := len(cg.Nodes)
	idmap := make(map[int64]CNode, n)
	edges := make(map[int64]map[int64]bool, n)
	keys := make([]int64, 0, n)
	for _, node := range cg.Nodes {
		id := int64(node.ID)
		keys = append(keys, id)
		idmap[id] = CNode{node}
		edges[id] = map[int64]bool{}
		for _, e := range node.Out {
			if e.Callee != nil {
				edges[id][int64(e.Callee.ID)] = true
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return CGraph{
		order: n,
		Graph: cg,
		IDMap: idmap,
		Edges: edges,
		Keys:  keys,
	}
}

// Subgraph returns a new graph that is the original graph with only the nodes in include. Only the edges that have
// both the origin and destination nodes in the include nodes are kept in the resulting graph.
// The subgraph's order and Graph are the same as in original, meaning that node indices will stay consistent
// across subgraphs.
func Subgraph(original CGraph, include []int64) CGraph {
	idmap := make(map[int64]CNode, len(include))
	edges := make(map[int64]map[int64]bool, len(include))
	for _, i := range include {
		idmap[i] = original.IDMap[i]
	}
	for _, i := range include {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if _, ok := idmap[e]; ok {
				edges[i][e] = true
			}
		}
	}
	return CGraph{
		order: original.Order(),
		Graph: original.Graph,
		IDMap: idmap,
		Edges: edges,
		Keys:  append([]int64(nil), include...),
	}
}

// Function returns the function of the node id, nil if there is none
func (c CGraph) Function(id int64) *ssa.Function {
	if n, ok := c.IDMap[id]; ok && n.Node != nil {
		return n.Node.Func
	}
	return nil
}

// NodeOf returns the node of the function f
func (c CGraph) NodeOf(f *ssa.Function) (CNode, bool) {
	n, ok := c.Graph.Nodes[f]
	if !ok {
		return CNode{}, false
	}
	return CNode{n}, true
}

// Order implements the order of the graph.Iterator interface for the CGraph
func (c CGraph) Order() int {
	return c.order
}

// Visit implements the graph.Iterator interface for the CGraph
func (c CGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	for w := range c.Edges[int64(v)] {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// Node implements the gonum Graph interface
func (c CGraph) Node(id int64) graph.Node {
	n, ok := c.IDMap[id]
	if !ok {
		return nil
	}
	return n
}

// Nodes returns the set of nodes in the graph
func (c CGraph) Nodes() graph.Nodes {
	return newNodeSet(c.IDMap, c.Keys)
}

// From returns the set of nodes that are called by the node id
func (c CGraph) From(id int64) graph.Nodes {
	keys := make([]int64, 0, len(c.Edges[id]))
	for out := range c.Edges[id] {
		keys = append(keys, out)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return newNodeSet(c.IDMap, keys)
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (c CGraph) HasEdgeBetween(xid, yid int64) bool {
	return c.Edges[xid][yid] || c.Edges[yid][xid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (c CGraph) Edge(uid, vid int64) graph.Edge {
	if c.Edges[uid][vid] {
		return CEdge{from: c.IDMap[uid], to: c.IDMap[vid]}
	}
	return nil
}

// CNode is a wrapper around a *callgraph.Node that implements the graph.Node interface
type CNode struct {
	Node *callgraph.Node
}

// ID returns the id of the node
func (n CNode) ID() int64 {
	return int64(n.Node.ID)
}

func (n CNode) String() string {
	if n.Node == nil {
		return ""
	}
	return n.Node.String()
}

// NodeSet implements the graph.Nodes interface, an iterator over a set of nodes
type NodeSet struct {
	nodes map[int64]CNode

	// ids is the set of node ids in the iterator
	ids []int64

	// cur is the current index of the iterator. The current node is nodes[ids[cur]]. Before the first call to Next,
	// cur is -1.
	cur int
}

func newNodeSet(nodes map[int64]CNode, ids []int64) *NodeSet {
	return &NodeSet{nodes: nodes, ids: ids, cur: -1}
}

// Next moves the current node to the next, and returns true if such a node exists. Otherwise, returns false
// and the current node has not changed.
func (ns *NodeSet) Next() bool {
	if ns.cur < len(ns.ids)-1 {
		ns.cur++
		return true
	}
	return false
}

// Len returns the number of nodes remaining in the iterator
func (ns *NodeSet) Len() int {
	return len(ns.ids) - ns.cur - 1
}

// Reset returns the iterator to its initial state
func (ns *NodeSet) Reset() {
	ns.cur = -1
}

// Node return the current node in the set, nil if Next has not been called
func (ns *NodeSet) Node() graph.Node {
	if ns.cur < 0 || ns.cur >= len(ns.ids) {
		return nil
	}
	return ns.nodes[ns.ids[ns.cur]]
}

// CEdge implements the graph.Edge interface
type CEdge struct {
	from CNode
	to   CNode
}

// From returns the origin of the edge
func (e CEdge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e CEdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e CEdge) ReversedEdge() graph.Edge {
	return CEdge{from: e.to, to: e.from}
}
