package resolve

import "sync"

// Skipper implements the skip-and-reconcile optimizer of spec §4.4. The
// collector consults it at every node expansion; a no-op implementation
// (NoopSkipper) is the default when the caller doesn't configure one.
type Skipper interface {
	// ShouldSkip reports whether a cached child list for key is usable at
	// childDepth (spec §4.4 skip rule: cached depth <= childDepth).
	ShouldSkip(pool *DataPool, key GraphKey, childDepth int) bool
	// RecordSkip is called when a skip happens, so the reconcile pass can
	// later detect a mis-selected winner.
	RecordSkip(ex *expansion, node *DependencyNode, key GraphKey, ancestors []Artifact, cachedDepth, childDepth int)
	// AfterExpand is called once a node's children were freshly expanded
	// (not reused), giving the implementation a chance to memoize them.
	AfterExpand(pool *DataPool, key GraphKey, children []*DependencyNode, childDepth int)
}

// NoopSkipper never reuses a cached expansion; this is the spec's documented
// default "never-skip" behavior (spec §4.4).
type NoopSkipper struct{}

func (NoopSkipper) ShouldSkip(*DataPool, GraphKey, int) bool { return false }
func (NoopSkipper) RecordSkip(*expansion, *DependencyNode, GraphKey, []Artifact, int, int) {}
func (NoopSkipper) AfterExpand(*DataPool, GraphKey, []*DependencyNode, int) {}

// skipRecord is the deferred-expansion bookkeeping entry of spec §4.4: the
// node that reused a cached subtree, the key it was cached under, the
// ancestor path at the reuse site, and the depths of the cached entry and of
// the reuse site's children.
type skipRecord struct {
	node          *DependencyNode
	key           GraphKey
	ancestors     []Artifact
	cachedDepth   int
	childDepth    int
}

// CachingSkipper implements the full skip-and-reconcile algorithm: it
// memoizes (artifact, repositories, selector, manager, traverser, filter)
// expansions in the DataPool's child-list cache and, at the end of
// collection, re-expands any skip site that turns out to have been handed
// an empty subtree while also being the nearest (conflict-winning) node for
// its GACE -- the scenario spec §4.4 describes as "the conflict resolver
// picked *this* node as winner while its subtree had been stubbed out".
//
// The full algorithm in spec §4.4 detects this by cloning the graph, running
// a throwaway FULL-verbosity conflict resolution on the clone, and pairing
// clone nodes back to their pre-transformation originals by tree position
// (FULL verbosity never restructures the graph, so the positions line up).
// This implementation does not clone or resolve the graph. It compares
// depths only: a skip site with no children whose depth equals the minimum
// depth recorded for its GACE in the collected tree is re-expanded. The
// preorder tie-break is not checked, so when several nodes share that
// minimum depth, every such skip site is re-expanded, not just the eventual
// winner. See DESIGN.md for the rationale.
type CachingSkipper struct {
	mu      sync.Mutex
	records []skipRecord
}

// NewCachingSkipper builds a CachingSkipper.
func NewCachingSkipper() *CachingSkipper {
	return &CachingSkipper{}
}

func (s *CachingSkipper) ShouldSkip(pool *DataPool, key GraphKey, childDepth int) bool {
	_, cachedDepth, ok := pool.Children(key)
	return ok && cachedDepth <= childDepth
}

func (s *CachingSkipper) RecordSkip(ex *expansion, node *DependencyNode, key GraphKey, ancestors []Artifact, cachedDepth, childDepth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, skipRecord{
		node:        node,
		key:         key,
		ancestors:   append([]Artifact{}, ancestors...),
		cachedDepth: cachedDepth,
		childDepth:  childDepth,
	})
}

func (s *CachingSkipper) AfterExpand(pool *DataPool, key GraphKey, children []*DependencyNode, childDepth int) {
	pool.PutChildren(key, children, childDepth)
}

// Reconcile runs the post-collection reconcile pass described above.
func (s *CachingSkipper) Reconcile(ex *expansion) {
	s.mu.Lock()
	records := s.records
	s.records = nil
	s.mu.Unlock()

	if len(records) == 0 {
		return
	}

	minDepthByGACE := make(map[string]int)
	var walk func(n *DependencyNode)
	walk = func(n *DependencyNode) {
		if n.Dependency != nil {
			g := n.GACE()
			if d, ok := minDepthByGACE[g]; !ok || n.Depth() < d {
				minDepthByGACE[g] = n.Depth()
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(ex.result.Root)

	for _, rec := range records {
		if len(rec.node.Children) != 0 {
			continue // not the stubbed-empty case this pass handles
		}
		if rec.node.Dependency == nil {
			continue
		}
		g := rec.node.GACE()
		if minDepthByGACE[g] != rec.node.Depth() {
			continue // not the winner; leaving it stubbed is harmless
		}

		pool := ex.pool
		pool.EvictChildren(rec.key)
		desc, err, _ := ex.fetchDescriptor(ArtifactDescriptorRequest{Artifact: rec.node.Dependency.Artifact()})
		if err != nil {
			continue
		}
		childAncestors := append(append([]Artifact{}, rec.ancestors...), rec.node.Dependency.Artifact())
		children := ex.expandAll(desc.Dependencies, childAncestors, rec.childDepth, rec.key.Repositories, rec.key.Selector, rec.key.Manager, rec.key.Traverser, rec.key.Filter)
		rec.node.Children = children
		pool.PutChildren(rec.key, children, rec.childDepth)
	}
}
