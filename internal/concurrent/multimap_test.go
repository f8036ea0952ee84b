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

package concurrent

import (
	"strconv"
	"sync"
	"testing"
)

func TestSetMultimap_PutIsIdempotent(t *testing.T) {
	m := NewSetMultimap[string, int](StringHash(func(s string) string { return s }))
	if !m.Put("a", 1) {
		t.Errorf("first insert should modify the multimap")
	}
	if m.Put("a", 1) {
		t.Errorf("duplicate insert should be a no-op")
	}
	m.Put("a", 2)
	if got := len(m.Get("a")); got != 2 {
		t.Errorf("expected 2 values for a, got %d", got)
	}
	if m.Get("b") != nil {
		t.Errorf("unknown key should have no values")
	}
	if !m.Contains("a", 2) || m.Contains("a", 3) {
		t.Errorf("Contains does not match inserted values")
	}
}

func TestSetMultimap_ConcurrentInserts(t *testing.T) {
	m := NewSetMultimap[string, int](StringHash(func(s string) string { return s }))
	wg := &sync.WaitGroup{}
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				m.Put(strconv.Itoa(i%10), i)
				_ = m.Get(strconv.Itoa((i + g) % 10))
			}
		}(g)
	}
	wg.Wait()
	if m.Len() != 200 {
		t.Errorf("expected 200 distinct pairs, got %d", m.Len())
	}
	if len(m.Keys()) != 10 {
		t.Errorf("expected 10 keys, got %d", len(m.Keys()))
	}
	m.Clear()
	if m.Len() != 0 {
		t.Errorf("expected empty multimap after Clear")
	}
}

func TestSetMultimap_NilHash(t *testing.T) {
	m := NewSetMultimap[int, int](nil)
	m.Put(1, 1)
	m.Put(2, 1)
	if m.Len() != 2 {
		t.Errorf("expected 2 pairs, got %d", m.Len())
	}
}
