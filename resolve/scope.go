package resolve

// ScopeDeriver computes a child's effective scope from its parent's
// effective scope and its own declared scope, during the preorder scope-
// derivation walk (spec §4.5.4). It is independent of conflict resolution.
type ScopeDeriver interface {
	DeriveScope(parentScope, childScope string) string
}

// MavenScopeDeriver implements the common Maven-like scope derivation table:
// a provided or test parent scope is "sticky" (children inherit it outright);
// a runtime child of a compile-scope parent is demoted to runtime; otherwise
// the child keeps its own declared scope.
type MavenScopeDeriver struct{}

func (MavenScopeDeriver) DeriveScope(parentScope, childScope string) string {
	switch parentScope {
	case ScopeProvided, ScopeTest:
		return parentScope
	}
	if parentScope == ScopeCompile && childScope == ScopeRuntime {
		return ScopeRuntime
	}
	if parentScope == ScopeRuntime && childScope == ScopeCompile {
		return ScopeRuntime
	}
	return childScope
}

// ConflictItem is one node's contribution to a conflict group: the node
// itself, its minimum depth, the union of scopes observed on paths reaching
// it, and an optionality bit-field (spec §4.5.3).
type ConflictItem struct {
	Node          *DependencyNode
	Dependency    Dependency
	Depth         int
	PreorderIndex int
	Scopes        map[string]bool
	Optionality   OptionalityBits
}

// OptionalityBits tracks which optionalities were observed reaching a node
// (spec §4.5.3: "0x01 seen-non-optional, 0x02 seen-optional").
type OptionalityBits uint8

const (
	SeenNonOptional OptionalityBits = 1 << iota
	SeenOptional
)

// ConflictContext is the per-group input to the VersionSelector,
// ScopeSelector and OptionalitySelector (spec §4.5.3).
type ConflictContext struct {
	ConflictID string
	Items      []*ConflictItem
}

// VersionSelector picks the winning node within a conflict group.
type VersionSelector interface {
	SelectVersion(ctx *ConflictContext) *ConflictItem
}

// NearestVersionSelector implements "nearest wins": minimum depth, ties
// broken by first-encountered preorder index (spec §4.5.3, Glossary).
type NearestVersionSelector struct{}

func (NearestVersionSelector) SelectVersion(ctx *ConflictContext) *ConflictItem {
	best := ctx.Items[0]
	for _, it := range ctx.Items[1:] {
		if it.Depth < best.Depth || (it.Depth == best.Depth && it.PreorderIndex < best.PreorderIndex) {
			best = it
		}
	}
	return best
}

// ScopeSelector derives the effective scope for a conflict group's winner.
type ScopeSelector interface {
	SelectScope(ctx *ConflictContext, winner *ConflictItem) string
}

// scopeRank orders scopes from "widest reach" to narrowest for the default
// elevation policy: compile beats runtime beats provided beats test.
var scopeRank = map[string]int{
	ScopeCompile:  0,
	ScopeRuntime:  1,
	ScopeProvided: 2,
	ScopeTest:     3,
	ScopeSystem:   4,
}

// ElevatingScopeSelector picks the widest-reach scope observed across all
// paths that reached the winner's conflict group, matching the common
// Maven policy that the most permissive scope wins a conflict (spec
// §4.5.3: "typical policy elevates compile over runtime over provided over
// test").
type ElevatingScopeSelector struct{}

func (ElevatingScopeSelector) SelectScope(ctx *ConflictContext, winner *ConflictItem) string {
	best := ""
	bestRank := -1
	for _, it := range ctx.Items {
		for s := range it.Scopes {
			r, ok := scopeRank[s]
			if !ok {
				r = len(scopeRank)
			}
			if bestRank == -1 || r < bestRank {
				bestRank = r
				best = s
			}
		}
	}
	if best == "" {
		return winner.Dependency.Scope()
	}
	return best
}

// OptionalitySelector derives the effective optionality for a conflict
// group's winner.
type OptionalitySelector interface {
	SelectOptionality(ctx *ConflictContext, winner *ConflictItem) bool
}

// AllPathsOptionalitySelector implements "optional iff every path is
// optional" (spec §4.5.3 default).
type AllPathsOptionalitySelector struct{}

func (AllPathsOptionalitySelector) SelectOptionality(ctx *ConflictContext, winner *ConflictItem) bool {
	for _, it := range ctx.Items {
		if it.Optionality&SeenNonOptional != 0 {
			return false
		}
	}
	return true
}
