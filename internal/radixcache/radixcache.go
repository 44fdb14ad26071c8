// Package radixcache provides typed wrappers around a radix tree, so callers
// avoid repeating the interface{} type assertion at every call site.
//
// This mirrors the pattern the teacher uses for its own lookup tries: a thin
// struct embedding a mutex and the untyped tree, with Get/Insert/Delete
// methods that do the single type assertion in one place. Walks aren't
// implemented beyond ToMap; add them if/when needed.
package radixcache

import (
	"sync"

	"github.com/armon/go-radix"
)

// DescriptorTrie caches descriptor-fetch results (or the error they failed
// with) keyed by a string-encoded artifact coordinate.
type DescriptorTrie struct {
	mu sync.RWMutex
	t  *radix.Tree
}

// DescriptorEntry is the value type stored in a DescriptorTrie.
type DescriptorEntry struct {
	Value interface{}
	Err   error
}

func NewDescriptorTrie() *DescriptorTrie {
	return &DescriptorTrie{t: radix.New()}
}

func (c *DescriptorTrie) Get(key string) (DescriptorEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.t.Get(key)
	if !ok {
		return DescriptorEntry{}, false
	}
	return v.(DescriptorEntry), true
}

func (c *DescriptorTrie) Put(key string, e DescriptorEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t.Insert(key, e)
}

func (c *DescriptorTrie) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t.Len()
}

// ToMap walks the trie and returns a plain map snapshot, primarily for
// diagnostics and tests.
func (c *DescriptorTrie) ToMap() map[string]DescriptorEntry {
	m := make(map[string]DescriptorEntry)
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.t.Walk(func(s string, v interface{}) bool {
		m[s] = v.(DescriptorEntry)
		return false
	})
	return m
}

// GenericTrie is a second typed instantiation, used by the per-collection
// child-list and constraint caches where the stored value type varies by
// call site (spec §4.2's GraphKey/ConstraintKey caches).
type GenericTrie struct {
	mu sync.RWMutex
	t  *radix.Tree
}

func NewGenericTrie() *GenericTrie {
	return &GenericTrie{t: radix.New()}
}

func (c *GenericTrie) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t.Get(key)
}

func (c *GenericTrie) Insert(key string, value interface{}) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t.Insert(key, value)
}

func (c *GenericTrie) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t.Len()
}
