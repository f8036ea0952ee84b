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

// Package concurrent provides insert-mostly containers that are safe for concurrent use.
package concurrent

import (
	"hash/maphash"
	"sync"

	"github.com/hashicorp/go-set"
)

const numShards = 16

// SetMultimap maps keys to sets of values. Inserts and reads may happen concurrently from any number of goroutines.
// There is no removal of single entries: the multimap only grows until Clear is called.
type SetMultimap[K comparable, V comparable] struct {
	shards [numShards]shard[K, V]
	hash   func(K) uint64
}

type shard[K comparable, V comparable] struct {
	mu      sync.RWMutex
	entries map[K]*set.Set[V]
}

// NewSetMultimap returns an empty multimap. The hash function is used to spread keys over shards; it only needs to
// be consistent with key equality.
func NewSetMultimap[K comparable, V comparable](hash func(K) uint64) *SetMultimap[K, V] {
	m := &SetMultimap[K, V]{hash: hash}
	for i := range m.shards {
		m.shards[i].entries = map[K]*set.Set[V]{}
	}
	return m
}

// StringHash is a hash function for keys that have a canonical string representation.
func StringHash[K any](str func(K) string) func(K) uint64 {
	seed := maphash.MakeSeed()
	return func(k K) uint64 {
		return maphash.String(seed, str(k))
	}
}

func (m *SetMultimap[K, V]) shardOf(k K) *shard[K, V] {
	if m.hash == nil {
		return &m.shards[0]
	}
	return &m.shards[m.hash(k)%numShards]
}

// Put adds v to the set of k. Returns true if the set did not already contain v.
func (m *SetMultimap[K, V]) Put(k K, v V) bool {
	s := m.shardOf(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	vals, ok := s.entries[k]
	if !ok {
		vals = set.New[V](1)
		s.entries[k] = vals
	}
	return vals.Insert(v)
}

// Get returns a snapshot of the values of k. The returned slice can be used while other goroutines insert.
func (m *SetMultimap[K, V]) Get(k K) []V {
	s := m.shardOf(k)
	s.mu.RLock()
	defer s.mu.RUnlock()
	vals, ok := s.entries[k]
	if !ok {
		return nil
	}
	return vals.Slice()
}

// Contains returns true if v is in the set of k.
func (m *SetMultimap[K, V]) Contains(k K, v V) bool {
	s := m.shardOf(k)
	s.mu.RLock()
	defer s.mu.RUnlock()
	vals, ok := s.entries[k]
	return ok && vals.Contains(v)
}

// Len returns the total number of (key, value) pairs.
func (m *SetMultimap[K, V]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		for _, vals := range s.entries {
			n += vals.Size()
		}
		s.mu.RUnlock()
	}
	return n
}

// Keys returns a snapshot of the keys that have at least one value.
func (m *SetMultimap[K, V]) Keys() []K {
	var keys []K
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		for k := range s.entries {
			keys = append(keys, k)
		}
		s.mu.RUnlock()
	}
	return keys
}

// Clear drops every entry.
func (m *SetMultimap[K, V]) Clear() {
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		s.entries = map[K]*set.Set[V]{}
		s.mu.Unlock()
	}
}
