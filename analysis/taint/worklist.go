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

import "sync"

// worklist is the queue of path edges shared by the workers of a solver. pop blocks until an edge is available,
// or returns false when the queue is empty and no worker is processing an edge.
type worklist struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []pathEdge
	active int
}

func newWorklist() *worklist {
	w := &worklist{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *worklist) push(e pathEdge) {
	w.mu.Lock()
	w.items = append(w.items, e)
	w.mu.Unlock()
	w.cond.Signal()
}

// pop returns the next edge to process. Every edge returned must be marked done once processed.
func (w *worklist) pop() (pathEdge, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.items) == 0 && w.active > 0 {
		w.cond.Wait()
	}
	if len(w.items) == 0 {
		return pathEdge{}, false
	}
	e := w.items[len(w.items)-1]
	w.items = w.items[:len(w.items)-1]
	w.active++
	return e, true
}

func (w *worklist) done() {
	w.mu.Lock()
	w.active--
	idle := w.active == 0 && len(w.items) == 0
	w.mu.Unlock()
	if idle {
		w.cond.Broadcast()
	}
}
