package resolve

import (
	"sync"

	"github.com/artifactgraph/resolve/internal/radixcache"
)

// GraphKey is the composite key under which the skip-and-reconcile
// optimizer's child-list cache is addressed (spec §4.2, §4.4): an artifact
// plus the repositories and policy instances in effect when it was
// expanded. Equality is by element equality of all six fields; per the
// Open Question in spec §9, policies without an equalPolicy method fall back
// to Go interface equality (==), documented in DESIGN.md.
type GraphKey struct {
	Artifact     Artifact
	Repositories []RemoteRepository
	Selector     DependencySelector
	Manager      DependencyManager
	Traverser    DependencyTraverser
	Filter       VersionFilter
}

func (k GraphKey) equal(o GraphKey) bool {
	return k.Artifact.Equal(o.Artifact) &&
		reposEqual(k.Repositories, o.Repositories) &&
		policyEqual(k.Selector, o.Selector) &&
		policyEqual(k.Manager, o.Manager) &&
		policyEqual(k.Traverser, o.Traverser) &&
		policyEqual(k.Filter, o.Filter)
}

// string renders a best-effort cache key. Exact equality among colliding
// keys is re-checked by equal() against the bucket contents, since policy
// identity (see policyEqual) can't always be captured in a plain string.
func (k GraphKey) string() string {
	return k.Artifact.internKey() + "#" + reposKey(k.Repositories)
}

// policyEqual implements the Open Question's chosen default: an Equatable
// implementation (if the concrete policy type provides one) is preferred;
// otherwise two policy values are equal iff they are equal interface values:
// pointer identity for pointer-backed implementations, value equality for
// the value-typed defaults (e.g. staticTrueSelector, noopVersionFilter).
func policyEqual(a, b interface{}) bool {
	if ea, ok := a.(interface{ equalPolicy(interface{}) bool }); ok {
		return ea.equalPolicy(b)
	}
	return a == b
}

// ConstraintKey is the composite key for the per-collection
// VersionRangeResult cache (spec §4.2): an artifact plus the repositories in
// effect, compared with policy-enabled-flag equality.
type ConstraintKey struct {
	Artifact     Artifact
	Repositories []RemoteRepository
}

func (k ConstraintKey) string() string {
	return k.Artifact.internKey() + "#" + reposKey(k.Repositories)
}

// PoolMode selects the DataPool's interning backing store.
type PoolMode uint8

const (
	// PoolStrong retains interned values for the lifetime of the pool
	// (session-scoped). This is the default.
	PoolStrong PoolMode = iota
	// PoolWeak drops an interned artifact/dependency once a whole
	// collection passes without re-interning it (see weakSlot and
	// PurgeUnused; spec §4.2, §9).
	PoolWeak
)

// DataPool is the session-scoped interner for artifacts/dependencies and
// descriptor fetches, plus collection-scoped caches for version-range
// results and computed child lists (spec §4.2). It is safe for concurrent
// use.
type DataPool struct {
	mode PoolMode

	artifactMu sync.RWMutex
	artifacts  map[string]*weakSlot

	depMu sync.RWMutex
	deps  map[string]*weakSlot

	descriptors *radixcache.DescriptorTrie

	// constraints and children are per-collection; ResetCollectionCaches
	// recreates them for every Collect invocation (spec §4.2). Each is
	// backed by a radixcache.GenericTrie; constraintMu/childrenMu guard only
	// the reassignment of the trie pointer itself plus, for children, the
	// bucket read-modify-write (the trie's own lock only covers a single
	// Get/Insert call, not that compound sequence).
	constraintMu sync.RWMutex
	constraints  *radixcache.GenericTrie

	childrenMu sync.RWMutex
	children   *radixcache.GenericTrie
}

// childCacheEntry resolves GraphKey string collisions (two distinct policy
// pointers that happen to hash to the same artifact+repos string) by keeping
// a short bucket checked with GraphKey.equal.
type childCacheEntry struct {
	key      GraphKey
	children []*DependencyNode
	depth    int
}

// NewDataPool builds an empty pool in the given mode.
func NewDataPool(mode PoolMode) *DataPool {
	p := &DataPool{
		mode:        mode,
		artifacts:   make(map[string]*weakSlot),
		deps:        make(map[string]*weakSlot),
		descriptors: radixcache.NewDescriptorTrie(),
	}
	p.ResetCollectionCaches()
	return p
}

// ResetCollectionCaches recreates the constraint and child-list caches,
// called once per Collect invocation (spec §4.2: "always strong and
// recreated per collection invocation").
func (p *DataPool) ResetCollectionCaches() {
	p.constraintMu.Lock()
	p.constraints = radixcache.NewGenericTrie()
	p.constraintMu.Unlock()

	p.childrenMu.Lock()
	p.children = radixcache.NewGenericTrie()
	p.childrenMu.Unlock()
}

// weakSlot holds one interned value. Go has no true weak pointers for a
// plain value type copied by callers everywhere (an Artifact/Dependency
// carries no identity a garbage collector could track once copied into a
// DependencyNode), so PoolWeak approximates "retained only while
// referenced" at collection granularity instead of per-value: a slot
// survives from one Collect call to the next only if something re-interned
// it during that collection (seen). PurgeUnused sweeps slots that weren't,
// so a value absent from the current collection's working set is dropped
// and, per spec §9's "an intern operation that finds a stale holder
// transparently re-inserts the new value," a later InternArtifact/
// InternDependency call for the same key simply creates a fresh slot. In
// PoolStrong mode seen is never consulted and slots live for the pool's
// whole lifetime.
type weakSlot struct {
	mu   sync.Mutex
	val  interface{}
	seen bool
}

// InternArtifact returns the pool's canonical instance equal to a, storing a
// if this is the first time it's been seen.
func (p *DataPool) InternArtifact(a Artifact) Artifact {
	key := a.internKey()
	p.artifactMu.Lock()
	defer p.artifactMu.Unlock()
	if slot, ok := p.artifacts[key]; ok {
		slot.mu.Lock()
		v := slot.val
		slot.seen = true
		slot.mu.Unlock()
		return v.(Artifact)
	}
	slot := &weakSlot{val: a, seen: true}
	p.artifacts[key] = slot
	return a
}

// InternDependency returns the pool's canonical instance equal to d.
func (p *DataPool) InternDependency(d Dependency) Dependency {
	key := d.internKey()
	p.depMu.Lock()
	defer p.depMu.Unlock()
	if slot, ok := p.deps[key]; ok {
		slot.mu.Lock()
		v := slot.val
		slot.seen = true
		slot.mu.Unlock()
		return v.(Dependency)
	}
	slot := &weakSlot{val: d, seen: true}
	p.deps[key] = slot
	return d
}

// PurgeUnused drops interned artifacts/dependencies that weren't re-interned
// since the last call, and clears the seen mark on everything that
// survives. In PoolStrong mode this is a no-op. Collector.Collect calls this
// at the start of every collection in PoolWeak mode (spec §4.2, §9), so a
// value only outlives the collection that produced it if some later
// collection interns it again.
func (p *DataPool) PurgeUnused() {
	if p.mode != PoolWeak {
		return
	}

	p.artifactMu.Lock()
	for k, s := range p.artifacts {
		s.mu.Lock()
		seen := s.seen
		s.seen = false
		s.mu.Unlock()
		if !seen {
			delete(p.artifacts, k)
		}
	}
	p.artifactMu.Unlock()

	p.depMu.Lock()
	for k, s := range p.deps {
		s.mu.Lock()
		seen := s.seen
		s.seen = false
		s.mu.Unlock()
		if !seen {
			delete(p.deps, k)
		}
	}
	p.depMu.Unlock()
}

// Descriptor looks up a cached descriptor fetch by key, returning the
// descriptor and any error it failed with. A failed fetch is stored as an
// empty-stub descriptor for that artifact together with its error (spec
// §4.2, §7).
func (p *DataPool) Descriptor(key string) (ArtifactDescriptor, error, bool) {
	e, ok := p.descriptors.Get(key)
	if !ok {
		return ArtifactDescriptor{}, nil, false
	}
	if e.Err != nil {
		return e.Value.(ArtifactDescriptor), e.Err, true
	}
	return e.Value.(ArtifactDescriptor), nil, true
}

// PutDescriptor stores a descriptor fetch result. On failure (err != nil)
// value should be the empty-stub descriptor for the requested artifact.
func (p *DataPool) PutDescriptor(key string, value ArtifactDescriptor, err error) {
	p.descriptors.Put(key, radixcache.DescriptorEntry{Value: value, Err: err})
}

// Constraint looks up a cached VersionRangeResult.
func (p *DataPool) Constraint(key ConstraintKey) (VersionRangeResult, bool) {
	p.constraintMu.RLock()
	t := p.constraints
	p.constraintMu.RUnlock()
	v, ok := t.Get(key.string())
	if !ok {
		return VersionRangeResult{}, false
	}
	return v.(VersionRangeResult), true
}

// PutConstraint stores a VersionRangeResult.
func (p *DataPool) PutConstraint(key ConstraintKey, result VersionRangeResult) {
	p.constraintMu.RLock()
	t := p.constraints
	p.constraintMu.RUnlock()
	t.Insert(key.string(), result)
}

// childBucket returns the bucket currently stored for s, or nil.
func (p *DataPool) childBucket(s string) []*childCacheEntry {
	v, ok := p.children.Get(s)
	if !ok {
		return nil
	}
	return v.([]*childCacheEntry)
}

// Children looks up a cached child-node list for key, honoring the
// GraphKey.equal bucket-collision check (spec §4.2, §4.4).
func (p *DataPool) Children(key GraphKey) ([]*DependencyNode, int, bool) {
	p.childrenMu.RLock()
	defer p.childrenMu.RUnlock()
	for _, e := range p.childBucket(key.string()) {
		if e.key.equal(key) {
			return e.children, e.depth, true
		}
	}
	return nil, 0, false
}

// PutChildren stores a child-node list for key at the given depth.
func (p *DataPool) PutChildren(key GraphKey, children []*DependencyNode, depth int) {
	p.childrenMu.Lock()
	defer p.childrenMu.Unlock()
	s := key.string()
	bucket := p.childBucket(s)
	for i, e := range bucket {
		if e.key.equal(key) {
			bucket[i] = &childCacheEntry{key: key, children: children, depth: depth}
			p.children.Insert(s, bucket)
			return
		}
	}
	bucket = append(bucket, &childCacheEntry{key: key, children: children, depth: depth})
	p.children.Insert(s, bucket)
}

// EvictChildren removes any cached child-node list for key, used by the
// reconcile pass to invalidate mis-selected winners (spec §4.4 step 4).
func (p *DataPool) EvictChildren(key GraphKey) {
	p.childrenMu.Lock()
	defer p.childrenMu.Unlock()
	s := key.string()
	bucket := p.childBucket(s)
	out := bucket[:0]
	for _, e := range bucket {
		if !e.key.equal(key) {
			out = append(out, e)
		}
	}
	p.children.Insert(s, out)
}
