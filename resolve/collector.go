package resolve

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/artifactgraph/resolve/internal/rlog"
	"github.com/artifactgraph/resolve/internal/workpool"
)

// Collector drives the depth-first expansion of a CollectRequest into a
// CollectResult (spec §4.3).
type Collector struct {
	Descriptors DescriptorSource
	Versions    VersionRangeSource
	Skipper     Skipper
	Logger      *rlog.Logger

	// Workers bounds the descriptor/version-range fan-out pool; 0 picks a
	// small sensible default.
	Workers int
}

// NewCollector builds a Collector with the given collaborators and a
// never-skip optimizer (spec §4.4: "a 'never-skip' implementation ... is the
// default if un-configured").
func NewCollector(descriptors DescriptorSource, versions VersionRangeSource) *Collector {
	return &Collector{
		Descriptors: descriptors,
		Versions:    versions,
		Skipper:     NoopSkipper{},
		Logger:      rlog.Discard,
	}
}

// expansion carries the per-Collect mutable state threaded through the
// recursive descent: the session, counters, and the accumulating result.
type expansion struct {
	ctx     context.Context
	session *Session
	pool    *DataPool
	c       *Collector
	pool2   *workpool.Pool

	mu         sync.Mutex
	result     *CollectResult
	preorder   int32
	rangeSite  int32
	exceptions int32
	cycles     int32
	aborted    error
}

// nextRangeSite returns a fresh id tagging the set of sibling candidate
// nodes about to be produced by one version-range expansion.
func (ex *expansion) nextRangeSite() string {
	return fmt.Sprintf("range-%d", atomic.AddInt32(&ex.rangeSite, 1))
}

// Collect expands req into a CollectResult (spec §4.3).
func (c *Collector) Collect(ctx context.Context, session *Session, req CollectRequest) (*CollectResult, error) {
	if session.Pool == nil {
		session.Pool = NewDataPool(PoolStrong)
	}
	session.Pool.PurgeUnused()
	session.Pool.ResetCollectionCaches()

	workers := c.Workers
	if workers == 0 {
		workers = 8
	}

	ex := &expansion{
		ctx:     ctx,
		session: session,
		pool:    session.Pool,
		c:       c,
		pool2:   workpool.New(workers),
		result:  &CollectResult{Request: req},
	}

	root := NewRootNode(req.Repositories)
	ex.result.Root = root

	ancestors := make([]Artifact, 0, 8)

	deps := req.Dependencies
	if req.RootArtifact != nil {
		desc, err, _ := ex.fetchDescriptor(ArtifactDescriptorRequest{Artifact: *req.RootArtifact, Repositories: req.Repositories, Trace: req.Trace})
		if err != nil {
			return ex.result, err
		}
		root.setData(DataConflictID, "") // root carries no conflict id; placeholder keeps Data non-nil
		root.Relocations = desc.Relocations
		root.Aliases = desc.Aliases
		deps = append(append([]Dependency{}, desc.Dependencies...), deps...)
		ancestors = append(ancestors, desc.Artifact)
	}

	selector := req.Selector
	if selector == nil {
		selector = NewDefaultDependencySelector()
	}
	manager := req.Manager
	if manager == nil {
		manager = NewNearestDependencyManager(req.ManagedDependencies)
	}
	traverser := req.Traverser
	if traverser == nil {
		traverser = NewDefaultDependencyTraverser()
	}
	filter := req.Filter
	if filter == nil {
		filter = NewDefaultVersionFilter()
	}

	children := ex.expandAll(deps, ancestors, 1, req.Repositories, selector, manager, traverser, filter)
	root.Children = children

	if ex.aborted != nil {
		return ex.result, ex.aborted
	}

	if skipper, ok := c.Skipper.(*CachingSkipper); ok {
		skipper.Reconcile(ex)
	}

	// Siblings expand concurrently, so renumber preorder indices in
	// declaration order once the tree is complete.
	next := 0
	seen := make(map[*DependencyNode]bool)
	var renumber func(n *DependencyNode)
	renumber = func(n *DependencyNode) {
		for _, ch := range n.Children {
			if !seen[ch] {
				seen[ch] = true
				next++
				ch.preorderIndex = next
				renumber(ch)
			}
		}
	}
	renumber(root)

	return ex.result, nil
}

// expandAll expands a list of sibling dependency declarations, each in its
// own goroutine (fetches and recursion into children alike), then assembles
// the results in declaration order (spec §5: "sibling order: descriptor
// order, preserved even under parallel descriptor fetch").
func (ex *expansion) expandAll(deps []Dependency, ancestors []Artifact, depth int, repos []RemoteRepository, selector DependencySelector, manager DependencyManager, traverser DependencyTraverser, filter VersionFilter) []*DependencyNode {
	if len(deps) == 0 {
		return nil
	}

	slots := make([][]*DependencyNode, len(deps))
	var wg sync.WaitGroup
	wg.Add(len(deps))
	for i, d := range deps {
		i, d := i, d
		go func() {
			defer wg.Done()
			slots[i] = ex.expandOne(d, ancestors, depth, repos, selector, manager, traverser, filter)
		}()
	}
	wg.Wait()

	out := make([]*DependencyNode, 0, len(deps))
	for _, s := range slots {
		out = append(out, s...)
	}
	return out
}

// expandOne expands a single dependency declaration, returning zero, one, or
// (for a version-range dependency) several sibling nodes (spec §4.3 step 2).
func (ex *expansion) expandOne(dep Dependency, ancestors []Artifact, depth int, repos []RemoteRepository, selector DependencySelector, manager DependencyManager, traverser DependencyTraverser, filter VersionFilter) []*DependencyNode {
	if ex.checkCancelled() {
		return nil
	}

	gace := dep.Artifact().GACE()
	for _, anc := range ancestors {
		if anc.GACE() == gace {
			ex.recordCycle(Cycle{Artifact: dep.Artifact(), Path: append(append([]Artifact{}, ancestors...), dep.Artifact())})
			node := NewChildNode(dep, depth, ex.nextPreorder())
			return []*DependencyNode{node}
		}
	}

	if !selector.Select(dep) {
		return nil
	}

	managedDep, managedBits, premanaged := applyManagement(dep, manager.Manage(dep))

	ck := ConstraintKey{Artifact: managedDep.Artifact(), Repositories: repos}
	rangeResult, ok := ex.pool.Constraint(ck)
	if !ok {
		var err error
		ex.pool2.Do(func() {
			rangeResult, err = ex.c.Versions.ResolveRange(ex.session, VersionRangeRequest{Artifact: managedDep.Artifact(), Repositories: repos})
		})
		if err != nil {
			ex.recordException(&CollectError{Kind: KindVersionRangeFailure, Dependency: managedDep, Path: ancestors, Cause: err})
			return nil
		}
		ex.pool.PutConstraint(ck, rangeResult)
	}

	fctx := &FilterContext{Dependency: managedDep, Candidates: append([]Version{}, rangeResult.Versions...)}
	filter.Filter(fctx)
	if len(fctx.Candidates) == 0 {
		ex.recordException(&CollectError{Kind: KindNoMatchingVersion, Dependency: managedDep, Path: ancestors})
		return nil
	}

	isRange := NewRangeConstraint(managedDep.Artifact().Version()).IsRange()
	var candidates []Version
	if isRange {
		candidates = fctx.Candidates
	} else {
		candidates = fctx.Candidates[:1]
	}

	var site string
	if len(candidates) > 1 {
		site = ex.nextRangeSite()
	}

	out := make([]*DependencyNode, 0, len(candidates))
	for _, v := range candidates {
		node := ex.expandVersion(managedDep, v, rangeResult, premanaged, managedBits, ancestors, depth, repos, selector, manager, traverser, filter)
		if node != nil {
			if site != "" {
				node.setData(DataRangeSite, site)
			}
			out = append(out, node)
		}
	}
	return out
}

// expandVersion builds (and, unless cut off, recurses into) the node for one
// concrete resolved version of a dependency.
func (ex *expansion) expandVersion(managedDep Dependency, v Version, rr VersionRangeResult, premanaged map[string]string, managedBits ManagedBit, ancestors []Artifact, depth int, repos []RemoteRepository, selector DependencySelector, manager DependencyManager, traverser DependencyTraverser, filter VersionFilter) *DependencyNode {
	artifact := ex.pool.InternArtifact(managedDep.Artifact().WithVersion(string(v)))

	desc, err, fromCache := ex.fetchDescriptor(ArtifactDescriptorRequest{Artifact: artifact, Repositories: repos})
	if err != nil {
		kind := KindDescriptorMissing
		if _, ok := err.(*InvalidDescriptorError); ok {
			kind = KindDescriptorInvalid
		}
		ex.recordException(&CollectError{Kind: kind, Dependency: managedDep, Path: ancestors, Cause: err, FromCache: fromCache})
		return nil
	}

	finalArtifact := desc.Artifact
	finalDep := managedDep.WithArtifact(ex.pool.InternArtifact(finalArtifact))
	finalDep = ex.pool.InternDependency(finalDep)

	node := NewChildNode(finalDep, depth, ex.nextPreorder())
	node.VersionConstraint = NewRangeConstraint(managedDep.Artifact().Version())
	node.Version = Version(finalArtifact.Version())
	node.Relocations = desc.Relocations
	node.Aliases = desc.Aliases
	node.Managed = managedBits
	if origin, ok := rr.RepositoryOf(v); ok {
		node.Repositories = []RemoteRepository{origin}
	}

	if ex.session.ManagerVerbose {
		for k, val := range premanaged {
			node.setData(k, val)
		}
	}

	if !traverser.Traverse(finalDep) {
		return node
	}

	merged := repos
	if !ex.session.IgnoreRepositoryDescriptors {
		merged = mergeRepositories(repos, desc.Repositories)
	}
	node.Repositories = merged

	pctx := PolicyContext{Dependency: finalDep, Descriptor: desc}
	childSelector := selector.DeriveChild(pctx)
	childManager := manager.DeriveChild(pctx)
	childTraverser := traverser.DeriveChild(pctx)
	childFilter := filter.DeriveChild(pctx)

	gk := GraphKey{Artifact: finalArtifact, Repositories: merged, Selector: childSelector, Manager: childManager, Traverser: childTraverser, Filter: childFilter}

	if ex.c.Skipper.ShouldSkip(ex.pool, gk, depth+1) {
		cached, cachedDepth, _ := ex.pool.Children(gk)
		node.Children = cloneNodeSlice(cached)
		ex.c.Skipper.RecordSkip(ex, node, gk, ancestors, cachedDepth, depth+1)
		return node
	}

	childAncestors := append(append([]Artifact{}, ancestors...), finalArtifact)
	children := ex.expandAll(desc.Dependencies, childAncestors, depth+1, merged, childSelector, childManager, childTraverser, childFilter)
	node.Children = children

	ex.c.Skipper.AfterExpand(ex.pool, gk, children, depth+1)

	return node
}

func cloneNodeSlice(nodes []*DependencyNode) []*DependencyNode {
	if nodes == nil {
		return nil
	}
	out := make([]*DependencyNode, len(nodes))
	copy(out, nodes)
	return out
}

// applyManagement applies a DependencyManagement to dep, returning the
// updated dependency, the ManagedBit set of attributes it changed, and the
// premanaged-attribute records keyed by the well-known Data keys (the caller
// stores them on the node only when ManagerVerbose is set).
func applyManagement(dep Dependency, mgmt DependencyManagement) (Dependency, ManagedBit, map[string]string) {
	out := dep
	var bits ManagedBit
	premanaged := make(map[string]string)

	if mgmt.Version != nil {
		premanaged[DataPremanagedVersion] = dep.Artifact().Version()
		out = out.WithArtifact(out.Artifact().WithVersion(*mgmt.Version))
		bits |= ManagedVersion
	}
	if mgmt.Scope != nil {
		premanaged[DataPremanagedScope] = dep.Scope()
		out = out.WithScope(*mgmt.Scope)
		bits |= ManagedScope
	}
	if mgmt.Optional != nil {
		if v, ok := dep.Optional(); ok {
			premanaged[DataPremanagedOptional] = fmt.Sprintf("%v", v)
		} else {
			premanaged[DataPremanagedOptional] = "unset"
		}
		out = out.WithOptional(*mgmt.Optional)
		bits |= ManagedOptional
	}
	if len(mgmt.Exclusions) > 0 {
		out = out.AddExclusions(mgmt.Exclusions)
		bits |= ManagedExclusions
	}
	return out, bits, premanaged
}

func mergeRepositories(base, extra []RemoteRepository) []RemoteRepository {
	if len(extra) == 0 {
		return base
	}
	out := make([]RemoteRepository, len(base), len(base)+len(extra))
	copy(out, base)
	seen := make(map[string]bool, len(base))
	for _, r := range base {
		seen[r.ID] = true
	}
	for _, r := range extra {
		if !seen[r.ID] {
			out = append(out, r)
			seen[r.ID] = true
		}
	}
	return out
}

// fetchDescriptor resolves req, consulting the pool's descriptor cache first.
// The returned bool reports whether the result (success or failure) was a
// replay of an already-cached fetch rather than a fresh one (spec §7's
// "error replay").
func (ex *expansion) fetchDescriptor(req ArtifactDescriptorRequest) (ArtifactDescriptor, error, bool) {
	key := req.Artifact.internKey()
	if desc, err, ok := ex.pool.Descriptor(key); ok {
		return desc, err, true
	}
	var desc ArtifactDescriptor
	var err error
	ex.pool2.Do(func() {
		desc, err = ex.c.Descriptors.ReadDescriptor(ex.session, req)
	})
	if err != nil {
		demoted := false
		switch err.(type) {
		case *MissingDescriptorError:
			demoted = ex.session.IgnoreMissingDescriptors
		case *InvalidDescriptorError:
			demoted = ex.session.IgnoreInvalidDescriptors
		}
		if demoted {
			stub := emptyDescriptor(req.Artifact)
			ex.pool.PutDescriptor(key, stub, nil)
			return stub, nil, false
		}
		ex.pool.PutDescriptor(key, emptyDescriptor(req.Artifact), err)
		return ArtifactDescriptor{}, err, false
	}
	ex.pool.PutDescriptor(key, desc, nil)
	return desc, nil, false
}

func (ex *expansion) nextPreorder() int {
	return int(atomic.AddInt32(&ex.preorder, 1))
}

func (ex *expansion) checkCancelled() bool {
	select {
	case <-ex.ctx.Done():
		ex.mu.Lock()
		if ex.aborted == nil {
			ex.aborted = &CancelledError{Cause: ex.ctx.Err()}
		}
		ex.mu.Unlock()
		return true
	default:
		return false
	}
}

func (ex *expansion) recordException(e *CollectError) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	max := ex.session.MaxExceptions
	if max >= 0 && int(ex.exceptions) >= max {
		return
	}
	ex.exceptions++
	ex.result.Exceptions = append(ex.result.Exceptions, e)
}

func (ex *expansion) recordCycle(c Cycle) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	max := ex.session.MaxCycles
	if max >= 0 && int(ex.cycles) >= max {
		return
	}
	ex.cycles++
	ex.result.Cycles = append(ex.result.Cycles, c)
}
