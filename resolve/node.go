package resolve

// ManagedBit flags which attributes of a node's Dependency were changed by
// DependencyManager.manage() during collection (spec §4.3, §8 Premanaged
// round-trip).
type ManagedBit uint8

const (
	ManagedVersion ManagedBit = 1 << iota
	ManagedScope
	ManagedOptional
	ManagedExclusions
	ManagedProperties
)

// Well-known DependencyNode.Data keys.
const (
	// DataPremanagedVersion etc. hold the pre-management value of an
	// attribute, recorded only when ManagerVerbose is set (spec §4.3, §8).
	DataPremanagedVersion    = "premanaged.version"
	DataPremanagedScope      = "premanaged.scope"
	DataPremanagedOptional   = "premanaged.optional"
	DataPremanagedExclusions = "premanaged.exclusions"
	DataPremanagedProperties = "premanaged.properties"

	// DataConflictWinner/OriginalScope/OriginalOptionality are set on losing
	// nodes under VerbosityStandard (spec §4.5.5).
	DataConflictWinner             = "conflict.winner"
	DataConflictOriginalScope      = "conflict.originalScope"
	DataConflictOriginalOptionality = "conflict.originalOptionality"

	// DataConflictID stores the GACE conflict id assigned during resolution.
	DataConflictID = "conflict.id"

	// DataEffectiveScope stores the scope derived by the scope-derivation
	// walk (spec §4.5.4), distinct from the Dependency's declared scope.
	DataEffectiveScope = "scope.effective"

	// DataEffectiveOptional stores the optionality selected for a conflict
	// group's winner (spec §4.5.3).
	DataEffectiveOptional = "optional.effective"

	// DataRangeSite tags every candidate node produced by a single
	// version-range expansion (spec §4.3 step 2) with a shared opaque id, so
	// the conflict resolver can tell a loser that lost to a sibling
	// candidate from the very same range apart from one that lost to an
	// unrelated occurrence elsewhere in the graph (spec §4.6, §9's range-
	// redundancy Open Question).
	DataRangeSite = "collector.rangeSite"
)

// DependencyNode is a mutable graph node produced by the collector. A node
// with a nil Dependency represents the root of the tree (spec §3). Each node
// exclusively owns its Children slice; siblings never share it, and a reused
// cached child list is shallow-copied on attach to preserve this (spec §4.4).
type DependencyNode struct {
	Dependency  *Dependency
	Children    []*DependencyNode
	Aliases     []Artifact
	Relocations []Relocation

	Repositories []RemoteRepository

	VersionConstraint VersionConstraint
	Version           Version

	// Data is an open keyed map for annotations (managed-attribute records,
	// conflict-resolution annotations, etc.), mirroring the spec's "open
	// keyed map" (spec §3).
	Data map[string]interface{}

	// Managed records which attributes manage() actually changed on this
	// node's Dependency (spec §4.3).
	Managed ManagedBit

	// depth is the minimum DFS depth at which this node was first reached;
	// used by conflict resolution (spec §4.5.2, §4.5.3) and by the skip
	// optimizer (spec §4.4).
	depth int

	// preorderIndex breaks ties between nodes at equal depth by first
	// encounter (spec §4.5.3, Glossary "Nearest wins").
	preorderIndex int
}

// NewRootNode builds the collection root. Its Dependency is nil.
func NewRootNode(repos []RemoteRepository) *DependencyNode {
	return &DependencyNode{Repositories: repos, Data: make(map[string]interface{})}
}

// NewChildNode builds a child node for dep, to be attached under a parent at
// the given depth/preorder index. Version starts as dep's artifact version.
func NewChildNode(dep Dependency, depth, preorderIndex int) *DependencyNode {
	d := dep
	return &DependencyNode{
		Dependency:    &d,
		Version:       Version(dep.Artifact().Version()),
		Data:          make(map[string]interface{}),
		depth:         depth,
		preorderIndex: preorderIndex,
	}
}

// IsRoot reports whether n is the collection root.
func (n *DependencyNode) IsRoot() bool { return n.Dependency == nil }

// Depth returns the node's recorded minimum DFS depth.
func (n *DependencyNode) Depth() int { return n.depth }

// setData stores a value under key, creating the map if needed.
func (n *DependencyNode) setData(key string, value interface{}) {
	if n.Data == nil {
		n.Data = make(map[string]interface{})
	}
	n.Data[key] = value
}

// cloneShallow returns a copy of n with a fresh Children slice (but sharing
// the child node pointers) and a fresh Data map. Nothing in this package
// calls it at present; the collector attaches a cached child list through
// cloneNodeSlice.
func (n *DependencyNode) cloneShallow() *DependencyNode {
	cp := *n
	if n.Children != nil {
		cp.Children = make([]*DependencyNode, len(n.Children))
		copy(cp.Children, n.Children)
	}
	cp.Data = make(map[string]interface{}, len(n.Data))
	for k, v := range n.Data {
		cp.Data[k] = v
	}
	return &cp
}

// cloneDeep returns a recursive copy of the subtree rooted at n. Nothing in
// this package calls it at present: the reconcile pass and the conflict
// resolvers both work on the collected graph in place.
func (n *DependencyNode) cloneDeep() *DependencyNode {
	cp := n.cloneShallow()
	for i, c := range n.Children {
		cp.Children[i] = c.cloneDeep()
	}
	return cp
}

// GACE returns the conflict-group identity of the node's artifact, or "" at
// the root.
func (n *DependencyNode) GACE() string {
	if n.Dependency == nil {
		return ""
	}
	return n.Dependency.Artifact().GACE()
}

// CollectResult is the output of Collect: the assembled root node plus any
// accumulated non-fatal exceptions and detected cycles (spec §3, §4.3).
type CollectResult struct {
	Request    CollectRequest
	Root       *DependencyNode
	Exceptions []*CollectError
	Cycles     []Cycle
}

// Cycle records one detected back-edge: the repeated artifact and the
// ancestor path (root-first) at which it was found (spec §4.3, §7).
type Cycle struct {
	Artifact Artifact
	Path     []Artifact
}

// CollectRequest is the input to Collect (spec §6).
type CollectRequest struct {
	Root                *Dependency
	RootArtifact        *Artifact
	Dependencies        []Dependency
	ManagedDependencies []Dependency
	Repositories        []RemoteRepository
	Trace               interface{}

	// Selector, Manager, Traverser and Filter are the initial policies in
	// effect at the root (spec §4.3). Nil means "use the package default".
	Selector  DependencySelector
	Manager   DependencyManager
	Traverser DependencyTraverser
	Filter    VersionFilter
}
