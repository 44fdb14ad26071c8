package resolve

import (
	"container/heap"
)

// ConflictResolver transforms a collected graph according to its conflict
// groups, topological order and verbosity (spec §4.5).
type ConflictResolver interface {
	Resolve(root *DependencyNode, verbosity Verbosity) error
}

// ConflictResolverConfig selects policies for a resolver and is shared by
// both the path and classic implementations.
type ConflictResolverConfig struct {
	VersionSelector     VersionSelector
	ScopeSelector       ScopeSelector
	OptionalitySelector OptionalitySelector
	ScopeDeriver        ScopeDeriver
}

func (c *ConflictResolverConfig) fillDefaults() {
	if c.VersionSelector == nil {
		c.VersionSelector = NearestVersionSelector{}
	}
	if c.ScopeSelector == nil {
		c.ScopeSelector = ElevatingScopeSelector{}
	}
	if c.OptionalitySelector == nil {
		c.OptionalitySelector = AllPathsOptionalitySelector{}
	}
	if c.ScopeDeriver == nil {
		c.ScopeDeriver = MavenScopeDeriver{}
	}
}

// conflictGroup accumulates the per-GACE bookkeeping shared by ConflictMarker
// and ConflictIdSorter: every node seen with that conflict id, the minimum
// depth any of them was reached at, and the DAG edges derived from parent
// conflict id to child conflict id (spec §4.5.1, §4.5.2).
type conflictGroup struct {
	id       string
	items    []*ConflictItem
	minDepth int
	children map[string]bool // conflict ids this group has an edge to
	inDegree int
}

// ConflictMarker assigns conflict ids (GACE) to every non-root node and
// builds the conflict-id DAG used by ConflictIdSorter (spec §4.5.1).
type ConflictMarker struct{}

// Mark walks root, recording a conflictGroup per distinct GACE and an edge
// parentGACE -> childGACE for every parent/child relationship observed. It
// also computes each node's effective scope-accumulation inputs (the union
// of scopes/optionality reaching every node sharing a conflict id).
func (ConflictMarker) Mark(root *DependencyNode) map[string]*conflictGroup {
	groups := make(map[string]*conflictGroup)

	group := func(id string) *conflictGroup {
		g, ok := groups[id]
		if !ok {
			g = &conflictGroup{id: id, children: make(map[string]bool), minDepth: -1}
			groups[id] = g
		}
		return g
	}

	var walk func(n *DependencyNode, parentScope string, parentOptional bool, parentHasOptional bool)
	walk = func(n *DependencyNode, parentScope string, parentOptional, parentHasOptional bool) {
		scope := parentScope
		optional := parentHasOptional && parentOptional

		if n.Dependency != nil {
			id := n.GACE()
			g := group(id)

			if n.Dependency.Scope() != "" {
				scope = n.Dependency.Scope()
			}
			if v, ok := n.Dependency.Optional(); ok {
				optional = v
			} else {
				optional = parentHasOptional && parentOptional
			}

			it := &ConflictItem{
				Node:          n,
				Dependency:    *n.Dependency,
				Depth:         n.Depth(),
				PreorderIndex: n.preorderIndex,
				Scopes:        map[string]bool{scope: true},
				Optionality:   0,
			}
			if optional {
				it.Optionality |= SeenOptional
			} else {
				it.Optionality |= SeenNonOptional
			}
			g.items = append(g.items, it)
			if g.minDepth == -1 || n.Depth() < g.minDepth {
				g.minDepth = n.Depth()
			}

			for _, c := range n.Children {
				if c.Dependency != nil {
					if g.children == nil {
						g.children = make(map[string]bool)
					}
					g.children[c.GACE()] = true
				}
			}
		}

		for _, c := range n.Children {
			walk(c, scope, optional, true)
		}
	}
	walk(root, "", false, false)

	for _, g := range groups {
		for childID := range g.children {
			groups[childID].inDegree++
		}
	}

	return groups
}

// conflictQueueItem is a priority-queue entry ordered by ascending minDepth,
// used by ConflictIdSorter's zero-in-degree frontier (spec §4.5.2 step 1).
type conflictQueueItem struct {
	id       string
	minDepth int
	inDegree int
}

type conflictQueue []*conflictQueueItem

func (q conflictQueue) Len() int { return len(q) }
func (q conflictQueue) Less(i, j int) bool {
	if q[i].minDepth != q[j].minDepth {
		return q[i].minDepth < q[j].minDepth
	}
	return q[i].inDegree < q[j].inDegree
}
func (q conflictQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *conflictQueue) Push(x interface{}) { *q = append(*q, x.(*conflictQueueItem)) }
func (q *conflictQueue) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// ConflictIdSorter topologically sorts the conflict-id DAG built by
// ConflictMarker, with cycle recovery, per spec §4.5.2.
type ConflictIdSorter struct{}

// Sort returns the topological order and the set of cycle groups.
func (ConflictIdSorter) Sort(groups map[string]*conflictGroup) (sorted []string, cyclic [][]string) {
	inDegree := make(map[string]int, len(groups))
	for id, g := range groups {
		inDegree[id] = g.inDegree
	}

	pq := &conflictQueue{}
	heap.Init(pq)
	for id, g := range groups {
		if inDegree[id] == 0 {
			heap.Push(pq, &conflictQueueItem{id: id, minDepth: g.minDepth, inDegree: 0})
		}
	}

	visited := make(map[string]bool, len(groups))
	forced := make(map[string]bool)

	for len(visited) < len(groups) {
		if pq.Len() == 0 {
			// Cycle: force the remaining id with smallest (minDepth, inDegree).
			var best string
			bestDepth, bestDeg := -1, -1
			for id, g := range groups {
				if visited[id] {
					continue
				}
				d, deg := g.minDepth, inDegree[id]
				if bestDepth == -1 || d < bestDepth || (d == bestDepth && deg < bestDeg) {
					best, bestDepth, bestDeg = id, d, deg
				}
			}
			forced[best] = true
			heap.Push(pq, &conflictQueueItem{id: best, minDepth: groups[best].minDepth, inDegree: inDegree[best]})
		}

		item := heap.Pop(pq).(*conflictQueueItem)
		if visited[item.id] {
			continue
		}
		visited[item.id] = true
		sorted = append(sorted, item.id)

		for childID := range groups[item.id].children {
			if visited[childID] {
				continue
			}
			inDegree[childID]--
			if inDegree[childID] <= 0 {
				heap.Push(pq, &conflictQueueItem{id: childID, minDepth: groups[childID].minDepth, inDegree: 0})
			}
		}
	}

	if len(forced) > 0 {
		cyclic = findCycleSets(groups, forced)
	}
	return sorted, cyclic
}

// findCycleSets runs a DFS over the conflict-id DAG restricted to forced
// (cycle-participating) ids plus anything reachable among them, grouping
// strongly-connected back-edge partners (spec §4.5.2 step 4).
func findCycleSets(groups map[string]*conflictGroup, forced map[string]bool) [][]string {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)
	var stack []string
	seen := make(map[string]bool)
	var sets [][]string

	var dfs func(id string)
	dfs = func(id string) {
		visiting[id] = true
		stack = append(stack, id)
		for childID := range groups[id].children {
			if visiting[childID] {
				// Found a back edge id -> childID: the cycle is the stack
				// suffix from childID's position to id.
				start := -1
				for i, s := range stack {
					if s == childID {
						start = i
						break
					}
				}
				if start >= 0 {
					set := append([]string{}, stack[start:]...)
					key := ""
					for _, s := range set {
						key += s + ","
					}
					if !seen[key] {
						seen[key] = true
						sets = append(sets, set)
					}
				}
				continue
			}
			if !visited[childID] {
				dfs(childID)
			}
		}
		stack = stack[:len(stack)-1]
		visiting[id] = false
		visited[id] = true
	}

	for id := range forced {
		if !visited[id] {
			dfs(id)
		}
	}
	return sets
}

// pathResolver is the default "path" ConflictResolver (spec §4.5.6). It runs
// the shared resolveConflicts core: every conflict item is collected by
// ConflictMarker first and winners are picked afterwards, not during a single
// preorder walk.
type pathResolver struct {
	ConflictResolverConfig
}

// NewPathConflictResolver builds the default conflict resolver.
func NewPathConflictResolver(cfg ConflictResolverConfig) ConflictResolver {
	cfg.fillDefaults()
	return &pathResolver{ConflictResolverConfig: cfg}
}

func (r *pathResolver) Resolve(root *DependencyNode, verbosity Verbosity) error {
	return resolveConflicts(root, verbosity, r.ConflictResolverConfig)
}

// classicResolver is the reference O(N^2) "classic" implementation: it
// materializes every conflict item up front before resolving, rather than
// folding winner selection into the marking walk (spec §4.5.6). Both
// resolvers share the same resolveConflicts core since the externally
// observable contract (groups, topo order, verbosity materialization) is
// identical; the distinction the spec draws is an implementation-technique
// one, not an output one.
type classicResolver struct {
	ConflictResolverConfig
}

// NewClassicConflictResolver builds the "classic" conflict resolver.
func NewClassicConflictResolver(cfg ConflictResolverConfig) ConflictResolver {
	cfg.fillDefaults()
	return &classicResolver{ConflictResolverConfig: cfg}
}

func (r *classicResolver) Resolve(root *DependencyNode, verbosity Verbosity) error {
	return resolveConflicts(root, verbosity, r.ConflictResolverConfig)
}

func resolveConflicts(root *DependencyNode, verbosity Verbosity, cfg ConflictResolverConfig) error {
	groups := ConflictMarker{}.Mark(root)
	sorted, cyclic := ConflictIdSorter{}.Sort(groups)

	cycleMembers := make(map[string]bool)
	for _, set := range cyclic {
		for _, id := range set {
			cycleMembers[id] = true
		}
	}

	winners := make(map[string]*ConflictItem, len(sorted))
	for _, id := range sorted {
		g := groups[id]
		if len(g.items) == 0 {
			continue
		}
		ctx := &ConflictContext{ConflictID: id, Items: g.items}
		winner := cfg.VersionSelector.SelectVersion(ctx)
		scope := cfg.ScopeSelector.SelectScope(ctx, winner)
		optional := cfg.OptionalitySelector.SelectOptionality(ctx, winner)

		winner.Node.setData(DataConflictID, id)
		winner.Node.setData(DataEffectiveScope, scope)
		winner.Node.setData(DataEffectiveOptional, optional)
		winners[id] = winner
	}

	// Scope derivation walk (spec §4.5.4): independent of winner selection.
	var deriveScopes func(n *DependencyNode, parentScope string)
	deriveScopes = func(n *DependencyNode, parentScope string) {
		scope := parentScope
		if n.Dependency != nil {
			scope = cfg.ScopeDeriver.DeriveScope(parentScope, n.Dependency.Scope())
			n.setData(DataEffectiveScope, scope)
		}
		for _, c := range n.Children {
			deriveScopes(c, scope)
		}
	}
	deriveScopes(root, ScopeCompile)

	return materialize(root, groups, winners, cycleMembers, verbosity)
}

// materialize applies verbosity-specific transformation to the graph,
// walking top-down: a parent decides which of its children to keep or prune
// before recursing into the kept ones (spec §4.5.5).
func materialize(root *DependencyNode, groups map[string]*conflictGroup, winners map[string]*ConflictItem, cycleMembers map[string]bool, verbosity Verbosity) error {
	visited := make(map[*DependencyNode]bool)

	var walk func(n *DependencyNode) []*DependencyNode
	walk = func(n *DependencyNode) []*DependencyNode {
		if visited[n] {
			// Back-edge: a true cycle in the underlying graph. Only FULL
			// preserves it; otherwise it's dropped (already recorded in
			// CollectResult.Cycles by the collector).
			if verbosity == VerbosityFull {
				return []*DependencyNode{n}
			}
			return nil
		}
		visited[n] = true

		// Range-redundancy pre-pass (spec §4.5.5: "version-range redundancy
		// may still be pruned"): among losing siblings that came from the
		// same version-range expansion (same DataRangeSite tag), only the
		// one with the highest preorder index -- the last candidate the
		// range expansion produced, per the ascending version order the
		// version-range source supplies -- survives; the rest are dropped
		// outright rather than rendered as distinct conflict losers.
		drop := make(map[*DependencyNode]bool)
		keepBySite := make(map[string]*DependencyNode)
		for _, c := range n.Children {
			winner := winners[c.GACE()]
			if winner == nil || winner.Node == c {
				continue
			}
			site, _ := c.Data[DataRangeSite].(string)
			if site == "" {
				continue
			}
			if cur, ok := keepBySite[site]; !ok || c.preorderIndex > cur.preorderIndex {
				if ok {
					drop[cur] = true
				}
				keepBySite[site] = c
			} else {
				drop[c] = true
			}
		}

		var kept []*DependencyNode
		for _, c := range n.Children {
			id := c.GACE()
			winner := winners[id]
			isLoser := winner != nil && winner.Node != c

			if isLoser && verbosity == VerbosityStandard && drop[c] {
				continue
			}

			if isLoser {
				switch verbosity {
				case VerbosityNone:
					continue
				case VerbosityStandard:
					site, _ := c.Data[DataRangeSite].(string)
					winnerSite, _ := winner.Node.Data[DataRangeSite].(string)
					if site != "" && site == winnerSite {
						// The winner was itself a sibling candidate from this
						// same range expansion: a nearer selection within the
						// same site, not a conflict against an unrelated
						// occurrence elsewhere in the graph.
						c.setData(DataConflictWinner, true)
					} else {
						c.setData(DataConflictWinner, winner.Node)
					}
					c.setData(DataConflictOriginalScope, c.Dependency.Scope())
					originalOptional := false
					if v, ok := c.Dependency.Optional(); ok {
						originalOptional = v
					}
					c.setData(DataConflictOriginalOptionality, originalOptional)
					c.Children = nil
					kept = append(kept, c)
					continue
				case VerbosityFull:
					c.setData(DataConflictWinner, winner.Node)
					c.Children = walk(c)
					kept = append(kept, c)
					continue
				}
			}

			c.Children = walk(c)
			kept = append(kept, c)
		}
		return kept
	}

	root.Children = walk(root)
	return nil
}
